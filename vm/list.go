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

// A LIST is a single header cell whose payload is a slot count n; the n
// cells immediately below the header (lower addresses) are its payload.
// "Top" of a list is its header, which is why cons of the topmost list
// is O(1): only the header's count changes. Concat is O(len(B)) and
// reverse is O(n); both touch only the topmost lists' own span.
//
// Every list operation accepts either a LIST header directly on the data
// stack, or a DATA_REF to one; derefList resolves that distinction once,
// up front, so the rest of this file only deals with (headerAddr, n)
// pairs.

// derefList resolves the value at addr (which may be a DATA_REF) to a
// LIST header, returning the absolute address of that header cell and its
// slot count. Fails with TypeMismatch if the resolved value is not a list.
func derefList(a *Arena, addr int) (headerAddr int, n int, err error) {
	valAddr, val, err := resolveAddr(a, addr)
	if err != nil {
		return 0, 0, err
	}
	if !IsList(val) {
		return 0, 0, NewError(TypeMismatch, addr, "expected a list")
	}
	return valAddr, ListLen(val), nil
}

// ListOpen marks the start of a list literal. It stashes the current
// data-stack depth on the return stack so that the matching ListClose can
// compute how many cells were produced.
func (i *Instance) ListOpen() error {
	return i.Rpush(Cell(i.SP))
}

// ListClose finalizes a list literal: every cell pushed since the
// matching ListOpen becomes the new list's payload, and a LIST(n) header
// is emitted on top.
func (i *Instance) ListClose() error {
	mark, err := i.Rpop()
	if err != nil {
		return err
	}
	n := i.SP - int(mark)
	if n < 0 {
		return NewError(TypeMismatch, i.IP, "list close without matching open")
	}
	return i.Push(MakeList(n))
}

// Length returns the slot count of the list at addr (a header, or a ref
// to one).
func (i *Instance) Length(addr int) (int, error) {
	_, n, err := derefList(i.Arena, addr)
	return n, err
}

// Head returns the first (lowest-address) payload element of the list at
// addr, or NIL for an empty list.
func (i *Instance) Head(addr int) (Cell, error) {
	headerAddr, n, err := derefList(i.Arena, addr)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return NIL, nil
	}
	return i.Arena.Get(headerAddr - n)
}

// Tail replaces the list at TOS with a new list containing every element
// but the first. Implemented by span-copying the payload down by one
// cell and re-emitting a LIST(n-1) header — O(n) since, unlike
// cons/concat/reverse, removing the bottom element is not free.
func (i *Instance) Tail() error {
	headerAddr, n, err := derefList(i.Arena, i.SP)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil // tail of an empty list is the empty list
	}
	lo := headerAddr - n
	for k := 0; k < n-1; k++ {
		i.Arena.Cells[lo+k] = i.Arena.Cells[lo+k+1]
	}
	i.SP = lo + (n - 1) - 1
	return i.Push(MakeList(n - 1))
}

// Cons prepends a value to the list at TOS (stack effect: v list --
// list'). Because the payload of the topmost list already sits directly
// above whatever cell comes before it on the stack, the value being
// prepended is already sitting exactly where the new bottom payload slot
// needs to be — cons only has to rewrite the header's count, making it
// genuinely O(1), unlike Tail (removing the bottom element, which is not
// free).
func (i *Instance) Cons() error {
	headerAddr, n, err := derefList(i.Arena, i.SP)
	if err != nil {
		return err
	}
	if headerAddr-n-1 < i.Arena.StackBase {
		return NewError(StackUnderflow, i.IP, "data stack underflow")
	}
	i.Arena.Cells[headerAddr] = MakeList(n + 1)
	return nil
}

// Tos2 returns the second cell from the top (NOS) without popping
// anything.
func (i *Instance) Tos2() (Cell, error) {
	if i.SP-1 < i.Arena.StackBase {
		return 0, NewError(StackUnderflow, i.IP, "data stack underflow")
	}
	return i.Arena.Cells[i.SP-1], nil
}

// Concat concatenates two lists: TOS (B) is appended after NOS (A). A's
// payload, B's payload and B's header are already contiguous on the
// stack except for A's own header cell sitting between A's payload and
// B's payload; concat removes exactly that one cell by shifting B's
// payload+header down by one slot, then rewrites the header count. This
// is O(len(B)), not O(len(A)+len(B)): a plain copy-both-lists-elsewhere
// concat would have to touch every cell of both operands.
func (i *Instance) Concat() error {
	rHeaderAddr, rn, err := derefList(i.Arena, i.SP)
	if err != nil {
		return err
	}
	lHeaderAddr, ln, err := derefList(i.Arena, rHeaderAddr-rn-1)
	if err != nil {
		return err
	}
	// shift B's payload plus its own header down by one cell, overwriting
	// A's header.
	for k := lHeaderAddr; k <= rHeaderAddr; k++ {
		i.Arena.Cells[k] = i.Arena.Cells[k+1]
	}
	i.SP--
	newHeaderAddr := rHeaderAddr - 1
	i.Arena.Cells[newHeaderAddr] = MakeList(ln + rn)
	return nil
}

// Reverse reverses the payload of the list at TOS in place and re-emits
// the header; O(n) but touches only the topmost list's span.
func (i *Instance) Reverse() error {
	headerAddr, n, err := derefList(i.Arena, i.SP)
	if err != nil {
		return err
	}
	lo := headerAddr - n
	for a, b := lo, headerAddr-1; a < b; a, b = a+1, b-1 {
		i.Arena.Cells[a], i.Arena.Cells[b] = i.Arena.Cells[b], i.Arena.Cells[a]
	}
	return nil
}

// keyEquals compares two maplist keys by the rule in §4.6: symbols
// (STRING values used as keys) compare by interned handle identity,
// numbers compare numerically, nothing else is a valid key.
func keyEquals(a, b Cell) bool {
	switch {
	case IsString(a) && IsString(b):
		return StringHandle(a) == StringHandle(b)
	case IsNumber(a) && IsNumber(b):
		return Number(a) == Number(b)
	default:
		return false
	}
}

const defaultKeyName = "default"

// Find implements the address-returning search of §4.6: for a numeric
// key it is an index lookup; for any other key it is a maplist key
// lookup; on a miss it returns the address of the reserved "default"
// pair's value if present, or NIL if neither is found.
func (i *Instance) Find(listAddr int, key Cell) (Cell, error) {
	headerAddr, n, err := derefList(i.Arena, listAddr)
	if err != nil {
		return NIL, err
	}
	lo := headerAddr - n
	if IsNumber(key) {
		idx := int(Number(key))
		if idx < 0 || idx >= n {
			return NIL, nil
		}
		return MakeDataRef(lo + idx), nil
	}
	defaultHandle, hasDefault := i.Digest.Lookup(defaultKeyName)
	defaultAddr := -1
	for p := lo; p+1 < headerAddr; p += 2 {
		k := i.Arena.Cells[p]
		if keyEquals(k, key) {
			return MakeDataRef(p + 1), nil
		}
		if hasDefault && IsString(k) && StringHandle(k) == defaultHandle {
			defaultAddr = p + 1
		}
	}
	if defaultAddr >= 0 {
		return MakeDataRef(defaultAddr), nil
	}
	return NIL, nil
}

// Path walks a path (a list of numbers and/or symbols) by repeated Find,
// returning the address of the terminal element, or NIL if any step of
// the walk misses.
func (i *Instance) Path(listAddr int, path []Cell) (Cell, error) {
	cur := Cell(MakeDataRef(listAddr))
	for _, key := range path {
		var curAddr int
		if IsRef(cur) {
			curAddr = RefAddr(cur)
		} else {
			return NIL, NewError(TypeMismatch, i.IP, "path step into non-reference")
		}
		found, err := i.Find(curAddr, key)
		if err != nil {
			return NIL, err
		}
		if IsNil(found) {
			return NIL, nil
		}
		cur = found
	}
	return cur, nil
}

// Get resolves path in list at listAddr and returns its value (after a
// single-hop resolve), or NIL if the path misses.
func (i *Instance) Get(listAddr int, path []Cell) (Cell, error) {
	addr, err := i.Path(listAddr, path)
	if err != nil {
		return NIL, err
	}
	if IsNil(addr) {
		return NIL, nil
	}
	return Resolve(i.Arena, addr)
}

// Set resolves path in list at listAddr and writes v through it, applying
// the usual write-compatibility rule (§4.5/§4.7). Returns whether the
// path was found at all (a miss is not itself an error).
func (i *Instance) Set(listAddr int, path []Cell, srcAddr int) (found bool, err error) {
	addr, err := i.Path(listAddr, path)
	if err != nil {
		return false, err
	}
	if IsNil(addr) {
		return false, nil
	}
	return true, Store(i.Arena, RefAddr(addr), srcAddr)
}
