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

func TestDictionaryDefineAndLookup(t *testing.T) {
	i := New()
	if _, err := i.DefineFunction("square", 42); err != nil {
		t.Fatalf("DefineFunction: %v", err)
	}
	v, ok := i.Lookup("square")
	if !ok {
		t.Fatal("Lookup(square) missed")
	}
	if !IsCode(v) || CodeAddr(v) != 42 {
		t.Fatalf("Lookup(square) = %#x, want CODE(42)", uint32(v))
	}
}

func TestDictionaryShadowing(t *testing.T) {
	i := New()
	if _, err := i.DefineFunction("x", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := i.DefineFunction("x", 2); err != nil {
		t.Fatal(err)
	}
	v, ok := i.Lookup("x")
	if !ok {
		t.Fatal("Lookup(x) missed")
	}
	if CodeAddr(v) != 2 {
		t.Fatalf("Lookup(x) should find the most recent entry, got CODE(%d)", CodeAddr(v))
	}
}

func TestDictionaryMarkRevert(t *testing.T) {
	i := New()
	mark := i.Mark()
	if _, err := i.DefineLocal("tmp", 1); err != nil {
		t.Fatal(err)
	}
	if _, ok := i.Lookup("tmp"); !ok {
		t.Fatal("tmp should be visible before Revert")
	}
	i.Revert(mark)
	if _, ok := i.Lookup("tmp"); ok {
		t.Fatal("tmp should not be visible after Revert")
	}
}

func TestDefineGlobalBindsDataRef(t *testing.T) {
	i := New()
	addr, err := i.AllocGlobal()
	if err != nil {
		t.Fatal(err)
	}
	if err := i.Arena.Set(addr, MakeNumber(7)); err != nil {
		t.Fatal(err)
	}
	if _, err := i.DefineGlobal("g", addr); err != nil {
		t.Fatal(err)
	}
	v, ok := i.Lookup("g")
	if !ok {
		t.Fatal("Lookup(g) missed")
	}
	if !IsRef(v) || RefAddr(v) != addr {
		t.Fatalf("Lookup(g) = %#x, want DATA_REF(%d)", uint32(v), addr)
	}
}

func TestHideSkipsEntry(t *testing.T) {
	i := New()
	addr, err := i.DefineFunction("hidden", 1)
	if err != nil {
		t.Fatal(err)
	}
	i.Hide(addr)
	if _, ok := i.Lookup("hidden"); ok {
		t.Fatal("hidden entry should not be found by Lookup")
	}
}
