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

func TestArenaRegionOrder(t *testing.T) {
	a := NewArena(16, 8, 8)
	if !(a.GlobalBase <= a.GlobalTop && a.GlobalTop <= a.StackBase &&
		a.StackBase <= a.StackTop && a.StackTop <= a.RStackBase &&
		a.RStackBase <= a.RStackTop) {
		t.Fatalf("region boundaries out of order: %+v", a)
	}
	if got := a.RegionOf(a.GlobalBase); got != RegionGlobal {
		t.Errorf("RegionOf(GlobalBase) = %v, want global", got)
	}
	if got := a.RegionOf(a.StackBase); got != RegionStack {
		t.Errorf("RegionOf(StackBase) = %v, want stack", got)
	}
	if got := a.RegionOf(a.RStackBase); got != RegionRStack {
		t.Errorf("RegionOf(RStackBase) = %v, want rstack", got)
	}
	if got := a.RegionOf(a.RStackTop); got != RegionNone {
		t.Errorf("RegionOf(RStackTop) = %v, want none (one past the end)", got)
	}
	if got := a.RegionOf(-1); got != RegionNone {
		t.Errorf("RegionOf(-1) = %v, want none", got)
	}
}

func TestArenaGetSetRoundTrip(t *testing.T) {
	a := NewArena(16, 8, 8)
	v := MakeNumber(42)
	if err := a.Set(a.GlobalBase, v); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := a.Get(a.GlobalBase)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if Number(got) != 42 {
		t.Errorf("got %v, want 42", Number(got))
	}
}

func TestArenaOutOfBounds(t *testing.T) {
	a := NewArena(4, 4, 4)
	if _, err := a.Get(-1); err == nil {
		t.Error("Get(-1) should fail")
	}
	if _, err := a.Get(len(a.Cells)); err == nil {
		t.Error("Get(len(Cells)) should fail")
	}
	if err := a.Set(a.RStackTop, NIL); err == nil {
		t.Error("Set(RStackTop) should fail, one past the end")
	}
}

func TestTaggedCellCodecRoundTrip(t *testing.T) {
	cases := []Cell{
		MakeDataRef(123),
		MakeList(7),
		MakeCode(99, false),
		MakeCode(99, true),
		MakeBuiltin(int(OpAdd), false),
		MakeBuiltin(int(OpAdd), true),
		MakeString(5),
		MakeLocalSlot(3),
		NIL,
	}
	for _, v := range cases {
		if IsNumber(v) {
			t.Errorf("tagged cell %#x misclassified as a number", uint32(v))
		}
	}
	if RefAddr(MakeDataRef(123)) != 123 {
		t.Error("DATA_REF payload round-trip failed")
	}
	if ListLen(MakeList(7)) != 7 {
		t.Error("LIST payload round-trip failed")
	}
	if CodeAddr(MakeCode(99, false)) != 99 || IsBlock(MakeCode(99, false)) {
		t.Error("CODE(function) round-trip failed")
	}
	if !IsBlock(MakeCode(99, true)) {
		t.Error("CODE(block) meta bit round-trip failed")
	}
	if BuiltinOpcode(MakeBuiltin(int(OpAdd), false)) != int(OpAdd) {
		t.Error("BUILTIN payload round-trip failed")
	}
	if !IsImmediate(MakeBuiltin(int(OpAdd), true)) {
		t.Error("BUILTIN immediate bit round-trip failed")
	}
	if !IsNumber(MakeNumber(3.5)) || Number(MakeNumber(3.5)) != 3.5 {
		t.Error("plain number round-trip failed")
	}
}
