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

func TestNumberRoundTrip(t *testing.T) {
	for _, f := range []float32{0, 1, -1, 3.5, -3.5, 1e10, -1e-10} {
		v := MakeNumber(f)
		if !IsNumber(v) {
			t.Fatalf("MakeNumber(%v) not recognized as a number", f)
		}
		if got := Number(v); got != f {
			t.Errorf("round trip %v: got %v", f, got)
		}
	}
}

func TestTaggedRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Cell
	}{
		{"nil", NIL},
		{"string", MakeString(42)},
		{"code-fn", MakeCode(100, false)},
		{"code-block", MakeCode(100, true)},
		{"builtin", MakeBuiltin(7, false)},
		{"builtin-immediate", MakeBuiltin(7, true)},
		{"list", MakeList(3)},
		{"sentinel", MakeSentinel(5)},
	}
	for _, tt := range tests {
		if IsNumber(tt.v) {
			t.Errorf("%s: encoded as a number", tt.name)
		}
	}
	if got := StringHandle(MakeString(42)); got != 42 {
		t.Errorf("StringHandle: got %d", got)
	}
	if got := CodeAddr(MakeCode(100, false)); got != 100 {
		t.Errorf("CodeAddr: got %d", got)
	}
	if IsBlock(MakeCode(100, false)) {
		t.Error("function CODE reported as block")
	}
	if !IsBlock(MakeCode(100, true)) {
		t.Error("block CODE not reported as block")
	}
	if got := ListLen(MakeList(3)); got != 3 {
		t.Errorf("ListLen: got %d", got)
	}
	if !IsImmediate(MakeBuiltin(7, true)) {
		t.Error("immediate builtin not reported as immediate")
	}
	if IsImmediate(MakeBuiltin(7, false)) {
		t.Error("non-immediate builtin reported as immediate")
	}
}

func TestPredicates(t *testing.T) {
	n := MakeNumber(1.5)
	s := MakeString(1)
	l := MakeList(2)
	r := MakeDataRef(10)
	c := MakeCode(5, false)
	b := MakeBuiltin(1, false)

	if !IsNil(NIL) {
		t.Error("NIL is not nil")
	}
	if IsNil(s) {
		t.Error("string reported as nil")
	}
	if !IsString(s) || IsString(n) || IsString(l) {
		t.Error("IsString mismatch")
	}
	if !IsList(l) || IsList(s) {
		t.Error("IsList mismatch")
	}
	if !IsRef(r) || IsRef(n) {
		t.Error("IsRef mismatch")
	}
	if !IsCode(c) || !IsBuiltin(b) {
		t.Error("IsCode/IsBuiltin mismatch")
	}
	if !IsExecutable(c) || !IsExecutable(b) || IsExecutable(n) {
		t.Error("IsExecutable mismatch")
	}
}

func TestPayloadRange(t *testing.T) {
	v := MakeDataRef(payloadMax)
	if payload(v) != payloadMax {
		t.Errorf("max payload round trip: got %d", payload(v))
	}
}
