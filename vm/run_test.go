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

package vm

import "testing"

func runCode(t *testing.T, i *Instance, code []Cell) {
	t.Helper()
	i.Code = code
	if err := i.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunArithmetic(t *testing.T) {
	i := New()
	runCode(t, i, []Cell{
		Cell(OpLit), MakeNumber(1),
		Cell(OpLit), MakeNumber(2),
		Cell(OpAdd),
		Cell(OpExit),
	})
	if i.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", i.Depth())
	}
	if got := i.Format(i.SP); got != "3" {
		t.Fatalf("Format = %q, want 3", got)
	}
}

func TestRunListLiteral(t *testing.T) {
	i := New()
	runCode(t, i, []Cell{
		Cell(OpListOpen),
		Cell(OpLit), MakeNumber(1),
		Cell(OpLit), MakeNumber(2),
		Cell(OpLit), MakeNumber(3),
		Cell(OpListClose),
		Cell(OpExit),
	})
	if i.Depth() != 4 { // 3 payload cells + 1 header
		t.Fatalf("depth = %d, want 4", i.Depth())
	}
	if got := i.Format(i.SP); got != "(1 2 3)" {
		t.Fatalf("Format = %q, want (1 2 3)", got)
	}
}

func TestRunLocalsRefResolve(t *testing.T) {
	i := New()
	runCode(t, i, []Cell{
		Cell(OpLit), MakeNumber(10),
		Cell(OpStoreLocal), Cell(1),
		Cell(OpFetchLocal), Cell(1),
		Cell(OpRefLocal), Cell(1),
		Cell(OpResolve),
		Cell(OpExit),
	})
	if i.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", i.Depth())
	}
	data := i.Data()
	if Number(data[0]) != 10 || Number(data[1]) != 10 {
		t.Fatalf("data = %v, want [10 10]", data)
	}
}

func TestRunIfFalseTakesElseBranch(t *testing.T) {
	i := New()
	// 0 if 1 else 2 ;  -- condition is false, so the else branch runs.
	code := make([]Cell, 0, 16)
	code = append(code, Cell(OpLit), MakeNumber(0)) // push false
	code = append(code, Cell(OpIfFalseJump), 0)     // operand patched below
	ifFalseOperandAt := len(code) - 1
	code = append(code, Cell(OpLit), MakeNumber(1)) // then-branch
	code = append(code, Cell(OpJump), 0)            // operand patched below
	jumpOperandAt := len(code) - 1
	elseStart := len(code)
	code = append(code, Cell(OpLit), MakeNumber(2)) // else-branch
	end := len(code)
	code = append(code, Cell(OpExit))

	code[ifFalseOperandAt] = Cell(elseStart)
	code[jumpOperandAt] = Cell(end)

	runCode(t, i, code)
	if i.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", i.Depth())
	}
	if got := i.Format(i.SP); got != "2" {
		t.Fatalf("Format = %q, want 2 (else branch)", got)
	}
}

func TestRunIfTrueTakesThenBranch(t *testing.T) {
	i := New()
	code := make([]Cell, 0, 16)
	code = append(code, Cell(OpLit), MakeNumber(1)) // push true
	code = append(code, Cell(OpIfFalseJump), 0)
	ifFalseOperandAt := len(code) - 1
	code = append(code, Cell(OpLit), MakeNumber(1))
	code = append(code, Cell(OpJump), 0)
	jumpOperandAt := len(code) - 1
	elseStart := len(code)
	code = append(code, Cell(OpLit), MakeNumber(2))
	end := len(code)
	code = append(code, Cell(OpExit))

	code[ifFalseOperandAt] = Cell(elseStart)
	code[jumpOperandAt] = Cell(end)

	runCode(t, i, code)
	if got := i.Format(i.SP); got != "1" {
		t.Fatalf("Format = %q, want 1 (then branch)", got)
	}
}

func TestRunExecIndirectBuiltin(t *testing.T) {
	i := New()
	v, ok := i.Lookup("+")
	if !ok {
		t.Fatal("builtin + missing from dictionary")
	}
	runCode(t, i, []Cell{
		Cell(OpLit), MakeNumber(3),
		Cell(OpLit), MakeNumber(4),
		Cell(OpLit), Cell(v), // push the BUILTIN value itself as data
		Cell(OpExec),
		Cell(OpExit),
	})
	if got := i.Format(i.SP); got != "7" {
		t.Fatalf("Format = %q, want 7", got)
	}
}

func TestStoreGlobalWidthAwareForLists(t *testing.T) {
	i := New()
	lo, err := i.AllocGlobal()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := i.AllocGlobal(); err != nil {
		t.Fatal(err)
	}
	addr, err := i.AllocGlobal()
	if err != nil {
		t.Fatal(err)
	}
	if err := i.Arena.Set(lo, NIL); err != nil {
		t.Fatal(err)
	}
	if err := i.Arena.Set(lo+1, NIL); err != nil {
		t.Fatal(err)
	}
	if err := i.Arena.Set(addr, MakeList(2)); err != nil {
		t.Fatal(err)
	}
	runCode(t, i, []Cell{
		Cell(OpListOpen),
		Cell(OpLit), MakeNumber(5),
		Cell(OpLit), MakeNumber(6),
		Cell(OpListClose),
		Cell(OpStoreGlobal), Cell(addr),
		Cell(OpExit),
	})
	if i.Depth() != 0 {
		t.Fatalf("depth = %d, want 0 (storeglobal must consume the whole list span)", i.Depth())
	}
}

func TestDivisionByZeroIsUserError(t *testing.T) {
	i := New()
	i.Code = []Cell{
		Cell(OpLit), MakeNumber(1),
		Cell(OpLit), MakeNumber(0),
		Cell(OpDiv),
		Cell(OpExit),
	}
	err := i.Run(0)
	if err == nil {
		t.Fatal("division by zero should fail")
	}
	verr, ok := err.(*Error)
	if !ok || verr.Kind != UserError {
		t.Fatalf("err = %v, want UserError", err)
	}
}
