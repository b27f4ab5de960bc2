// Copyright 2026 The Tacitus Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

import (
	"strings"
	"testing"

	"github.com/jhlagado/tacitus/vm"
)

func compileAndRun(t *testing.T, src string) *vm.Instance {
	t.Helper()
	vmi := vm.New()
	c := New(vmi)
	entry, err := c.Compile("<test>", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	if err := vmi.Run(entry); err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	return vmi
}

func TestCompileArithmetic(t *testing.T) {
	vmi := compileAndRun(t, "1 2 +")
	if vmi.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", vmi.Depth())
	}
	if got := vmi.Format(vmi.SP); got != "3" {
		t.Fatalf("Format = %q, want 3", got)
	}
}

func TestCompileListLiteral(t *testing.T) {
	vmi := compileAndRun(t, "( 1 2 3 )")
	if got := vmi.Format(vmi.SP); got != "(1 2 3)" {
		t.Fatalf("Format = %q, want (1 2 3)", got)
	}
}

func TestCompileColonDefinitionAndCall(t *testing.T) {
	vmi := compileAndRun(t, ": sq dup * ; 4 sq")
	if got := vmi.Format(vmi.SP); got != "16" {
		t.Fatalf("Format = %q, want 16", got)
	}
}

func TestCompileIfElse(t *testing.T) {
	vmi := compileAndRun(t, "0 if 1 else 2 ;")
	if got := vmi.Format(vmi.SP); got != "2" {
		t.Fatalf("Format = %q, want 2", got)
	}
	vmi2 := compileAndRun(t, "1 if 1 else 2 ;")
	if got := vmi2.Format(vmi2.SP); got != "1" {
		t.Fatalf("Format = %q, want 1", got)
	}
}

func TestCompileCaseWhenDo(t *testing.T) {
	src := `
2 case
  when dup 1 = do drop 100
  when dup 2 = do drop 200
  default drop 999
;
`
	vmi := compileAndRun(t, src)
	if got := vmi.Format(vmi.SP); got != "200" {
		t.Fatalf("Format = %q, want 200", got)
	}
}

func TestCompileCaseDefaultFallthrough(t *testing.T) {
	src := `
5 case
  when dup 1 = do drop 100
  when dup 2 = do drop 200
  default drop 999
;
`
	vmi := compileAndRun(t, src)
	if got := vmi.Format(vmi.SP); got != "999" {
		t.Fatalf("Format = %q, want 999", got)
	}
}

func TestCompileCaseNoDefaultFirstMatchWins(t *testing.T) {
	src := `
1 case
  when dup 1 = do drop 100
  when dup 2 = do drop 200
;
`
	vmi := compileAndRun(t, src)
	if got := vmi.Format(vmi.SP); got != "100" {
		t.Fatalf("Format = %q, want 100", got)
	}
}

func TestCompileGetBareIndexKey(t *testing.T) {
	vmi := compileAndRun(t, "( 1 2 3 ) 0 get")
	if got := vmi.Format(vmi.SP); got != "1" {
		t.Fatalf("Format = %q, want 1", got)
	}
}

func TestCompileGetBareIndexKeyOutOfRange(t *testing.T) {
	vmi := compileAndRun(t, "( 1 2 3 ) 5 get")
	if got := vmi.Format(vmi.SP); got != "nil" {
		t.Fatalf("Format = %q, want nil", got)
	}
}

func TestCompileGetBareMaplistKeyFallsBackToDefault(t *testing.T) {
	vmi := compileAndRun(t, `( "a" 1 "b" 2 "default" 99 ) "c" get`)
	if got := vmi.Format(vmi.SP); got != "99" {
		t.Fatalf("Format = %q, want 99", got)
	}
}

func TestCompileStandaloneWhenDoFirstMatchWins(t *testing.T) {
	src := `when 1 do "a" ; 1 do "b" ; "z" ;`
	vmi := compileAndRun(t, src)
	if got := vmi.Format(vmi.SP); got != `"a"` {
		t.Fatalf("Format = %q, want \"a\"", got)
	}
}

func TestCompileStandaloneWhenDoFallsThroughToDefault(t *testing.T) {
	src := `when 0 do "a" ; 0 do "b" ; "z" ;`
	vmi := compileAndRun(t, src)
	if got := vmi.Format(vmi.SP); got != `"z"` {
		t.Fatalf("Format = %q, want \"z\"", got)
	}
}

func TestCompileLocalsAndRef(t *testing.T) {
	vmi := compileAndRun(t, ": f 10 -> x x &x resolve ; f")
	data := vmi.Data()
	if len(data) != 2 {
		t.Fatalf("depth = %d, want 2", len(data))
	}
	if got := vmi.Format(0 + vmi.Arena.StackBase); got != "10" {
		t.Fatalf("Format(0) = %q, want 10", got)
	}
}

func TestCompileGlobalAssignAndFetch(t *testing.T) {
	vmi := compileAndRun(t, "10 -> g g g +")
	if got := vmi.Format(vmi.SP); got != "20" {
		t.Fatalf("Format = %q, want 20", got)
	}
}

func TestCompileUnclosedColonIsError(t *testing.T) {
	vmi := vm.New()
	c := New(vmi)
	_, err := c.Compile("<test>", strings.NewReader(": f dup *"))
	if err == nil {
		t.Fatal("unclosed colon definition should fail to compile")
	}
}

func TestCompileUndefinedWordIsError(t *testing.T) {
	vmi := vm.New()
	c := New(vmi)
	_, err := c.Compile("<test>", strings.NewReader("nosuchword"))
	if err == nil {
		t.Fatal("undefined word should fail to compile")
	}
}

func TestCompileElseWithoutIfIsError(t *testing.T) {
	vmi := vm.New()
	c := New(vmi)
	_, err := c.Compile("<test>", strings.NewReader("else"))
	if err == nil {
		t.Fatal("else without if should fail to compile")
	}
}
