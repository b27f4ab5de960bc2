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

// Call/return frames (§4.4). A function call pushes two cells onto the
// return stack — the caller's IP, then the caller's BP — and sets BP to
// the address of that saved-BP cell; locals bound afterwards by `->`
// simply grow the return stack above the frame, so a local's slot number
// is just its position counted up from the frame base. A block call
// pushes only the caller's IP: blocks share the caller's frame (no new
// locals scope, no new BP) exactly as §4.4 specifies for meta=1 CODE.
//
// Saved IP and BP are written as raw cell casts, not encoded numbers:
// they are addresses/registers, not Tacitus values. A saved IP is read
// back through int32 so that a negative IP (Run's haltIP) round-trips
// exactly.

// enterFunction pushes a new call frame for a non-block CODE value and
// transfers control to codeAddr.
func (i *Instance) enterFunction(codeAddr int) error {
	if err := i.Rpush(Cell(i.IP)); err != nil {
		return err
	}
	if err := i.Rpush(i.BP); err != nil {
		return err
	}
	i.BP = Cell(i.RSP)
	i.IP = codeAddr
	return nil
}

// exitFunction tears down the current call frame: every local bound
// since entry is discarded along with the frame itself, and control
// returns to the caller.
func (i *Instance) exitFunction() error {
	baseAddr, err := i.baseCellFor()
	if err != nil {
		return err
	}
	savedBP, err := i.Arena.Get(baseAddr)
	if err != nil {
		return err
	}
	savedIP, err := i.Arena.Get(baseAddr - 1)
	if err != nil {
		return err
	}
	i.RSP = baseAddr - 2
	i.BP = savedBP
	i.IP = int(int32(savedIP))
	return nil
}

// enterBlock transfers control to codeAddr without opening a new locals
// frame; only the return address is saved.
func (i *Instance) enterBlock(codeAddr int) error {
	if err := i.Rpush(Cell(i.IP)); err != nil {
		return err
	}
	i.IP = codeAddr
	return nil
}

// exitBlock pops the single saved return address pushed by enterBlock.
func (i *Instance) exitBlock() error {
	savedIP, err := i.Rpop()
	if err != nil {
		return err
	}
	i.IP = int(int32(savedIP))
	return nil
}

// enterMethod is enterFunction's capsule-dispatch counterpart (§4.4's BP
// polymorphism): the new frame's BP is bound to a DATA_REF naming the
// receiver rather than to a plain cell index, so LocalAddr resolves
// slots relative to the receiver's own storage instead of the return
// stack.
func (i *Instance) enterMethod(codeAddr int, receiver Cell) error {
	if !IsRef(receiver) {
		return NewError(TypeMismatch, i.IP, "callmethod: receiver is not a reference")
	}
	if err := i.Rpush(Cell(i.IP)); err != nil {
		return err
	}
	if err := i.Rpush(i.BP); err != nil {
		return err
	}
	i.BP = receiver
	i.IP = codeAddr
	return nil
}

// bindLocal grows the current frame by one cell, binding v as the next
// local slot. Slot numbers are assigned by the compiler in the same
// left-to-right order `->` bindings are compiled in, so no runtime
// bookkeeping beyond the push is needed; k is accepted (and checked)
// purely as a consistency guard against a miscompiled slot count.
func (i *Instance) bindLocal(k int) error {
	v, err := i.Pop()
	if err != nil {
		return err
	}
	if err := i.Rpush(v); err != nil {
		return err
	}
	base, err := i.baseCellFor()
	if err != nil {
		return err
	}
	if i.RSP != base+k {
		return NewError(CompileError, i.IP, "local slot %d does not match frame depth", k)
	}
	return nil
}
