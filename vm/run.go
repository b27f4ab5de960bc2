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

import (
	"fmt"
)

// haltIP is the sentinel IP value Run watches for: Run opens the entry's
// call frame with haltIP as its saved return address, so the Exit
// compiled at the end of every entry point lands here instead of walking
// off the code segment.
const haltIP = -1

// Run executes code starting at entry until the call frame opened for
// entry returns (i.e. until IP reaches haltIP), or until a fault occurs.
// Panics raised by an opcode handler (e.g. an out-of-range slice index
// slipping past a bounds check) are recovered at this boundary and
// reported as a *vm.Error with Kind UserError, so a single malformed
// program can never bring down the host process.
func (i *Instance) Run(entry int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if verr, ok := r.(*Error); ok {
				err = verr
				return
			}
			err = NewError(UserError, i.IP, "panic: %v", r)
		}
	}()

	i.IP = haltIP
	if err := i.enterFunction(entry); err != nil {
		return err
	}
	for i.IP != haltIP {
		if err := i.Step(); err != nil {
			return err
		}
	}
	return nil
}

// fetch reads the cell at IP and advances IP by one.
func (i *Instance) fetch() (Cell, error) {
	if i.IP < 0 || i.IP >= len(i.Code) {
		return 0, NewError(ArenaBounds, i.IP, "code address %d out of bounds", i.IP)
	}
	c := i.Code[i.IP]
	i.IP++
	return c, nil
}

// Step decodes and executes a single opcode at the current IP.
func (i *Instance) Step() error {
	i.insCount++
	instr, err := i.fetch()
	if err != nil {
		return err
	}

	op := Opcode(instr)
	if op >= OpUserBase {
		return i.dispatchCall(int(instr))
	}

	var operand Cell
	if takesOperand(op) {
		operand, err = i.fetch()
		if err != nil {
			return err
		}
	}

	switch op {
	case OpNop:
		return nil

	case OpLit:
		return i.Push(operand)

	case OpDup:
		return i.dup()

	case OpDrop:
		width, err := i.valueWidth(i.SP)
		if err != nil {
			return err
		}
		i.SP -= width
		return nil

	case OpSwap:
		b, err := i.Pop()
		if err != nil {
			return err
		}
		a, err := i.Pop()
		if err != nil {
			return err
		}
		if err := i.Push(b); err != nil {
			return err
		}
		return i.Push(a)

	// OpOver, like OpSwap, operates on a single cell: correct for numbers,
	// strings, refs and any other simple value, but it only grabs a list's
	// header, not its payload. Duplicating or reordering a compound value
	// positioned anywhere but the top of stack should go through a ref
	// (refLocal/refGlobal, or Cons/Concat, which are already defined in
	// terms of the topmost list) rather than swap/over.
	case OpOver:
		v, err := i.Tos2()
		if err != nil {
			return err
		}
		return i.Push(v)

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return i.binaryArith(op)

	case OpNeg:
		v, err := i.popNumber()
		if err != nil {
			return err
		}
		return i.Push(MakeNumber(-v))

	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		return i.compare(op)

	case OpNot:
		v, err := i.popNumber()
		if err != nil {
			return err
		}
		if v == 0 {
			return i.Push(MakeNumber(1))
		}
		return i.Push(MakeNumber(0))

	case OpListOpen:
		return i.ListOpen()
	case OpListClose:
		return i.ListClose()

	case OpHead:
		width, err := i.valueWidth(i.SP)
		if err != nil {
			return err
		}
		v, err := i.Head(i.SP)
		if err != nil {
			return err
		}
		i.SP -= width
		return i.Push(v)

	case OpTail:
		return i.Tail()
	case OpCons:
		return i.Cons()
	case OpConcat:
		return i.Concat()
	case OpReverse:
		return i.Reverse()

	case OpLength:
		width, err := i.valueWidth(i.SP)
		if err != nil {
			return err
		}
		n, err := i.Length(i.SP)
		if err != nil {
			return err
		}
		i.SP -= width
		return i.Push(MakeNumber(float32(n)))

	case OpFind:
		key, err := i.Pop()
		if err != nil {
			return err
		}
		width, err := i.valueWidth(i.SP)
		if err != nil {
			return err
		}
		found, err := i.Find(i.SP, key)
		if err != nil {
			return err
		}
		i.SP -= width
		return i.Push(found)

	case OpPathGet:
		return i.opPathGet()
	case OpPathSet:
		return i.opPathSet()

	case OpResolve:
		v, err := i.Pop()
		if err != nil {
			return err
		}
		out, err := Resolve(i.Arena, v)
		if err != nil {
			return err
		}
		return i.Push(out)

	case OpRefLocal:
		return i.opRefLocal(int(operand))
	case OpFetchLocal:
		return i.opFetchLocal(int(operand))
	case OpStoreLocal:
		return i.bindLocal(int(operand))

	case OpRefGlobal:
		return i.Push(MakeDataRef(int(operand)))
	case OpFetchGlobal:
		return i.opFetchGlobal(int(operand))
	case OpStoreGlobal:
		return i.opStoreGlobal(int(operand))

	case OpCall:
		return i.enterFunction(int(operand))
	case OpCallBlock:
		return i.enterBlock(int(operand))
	case OpCallMethod:
		receiver, err := i.Pop()
		if err != nil {
			return err
		}
		codeAddr, err := i.Pop()
		if err != nil {
			return err
		}
		return i.enterMethod(int(Number(codeAddr)), receiver)
	case OpExec:
		v, err := i.Pop()
		if err != nil {
			return err
		}
		if !IsExecutable(v) {
			return NewError(TypeMismatch, i.IP, "exec: value is not executable")
		}
		return i.dispatchCall(int(v))
	case OpExit:
		return i.exitFunction()
	case OpBlockEnd:
		return i.exitBlock()

	case OpJump:
		i.IP = int(operand)
		return nil
	case OpIfFalseJump:
		v, err := i.popNumber()
		if err != nil {
			return err
		}
		if v == 0 {
			i.IP = int(operand)
		}
		return nil
	case OpBranch:
		i.IP = int(operand)
		return nil

	case OpPrint:
		width, err := i.valueWidth(i.SP)
		if err != nil {
			return err
		}
		if i.Output != nil {
			fmt.Fprintln(i.Output, i.Format(i.SP))
		}
		i.SP -= width
		return nil

	default:
		return NewError(TypeMismatch, i.IP, "unknown opcode %d", op)
	}
}

// dispatchCall invokes an executable value: raw is itself a CODE or
// BUILTIN value (not merely an address). Step reaches it for an
// instruction cell at or above OpUserBase, and OpExec for a value popped
// off the data stack; named calls compiled by package compiler use
// OpCall/OpCallBlock with a plain code address instead.
func (i *Instance) dispatchCall(raw int) error {
	v := Cell(raw)
	switch {
	case IsBuiltin(v):
		return i.callBuiltinValue(v)
	case IsCode(v):
		addr := CodeAddr(v)
		if IsBlock(v) {
			return i.enterBlock(addr)
		}
		return i.enterFunction(addr)
	default:
		return NewError(TypeMismatch, i.IP, "call target is not executable")
	}
}

// callBuiltinValue re-enters Step's builtin switch for a BUILTIN value
// looked up out of the dictionary (as opposed to one compiled directly
// as a low opcode): it decodes the opcode and executes it. Opcodes that
// take an immediate operand cannot be called this way and fail with
// TypeMismatch.
func (i *Instance) callBuiltinValue(v Cell) error {
	op := Opcode(BuiltinOpcode(v))
	if takesOperand(op) {
		return NewError(TypeMismatch, i.IP, "builtin %s cannot be called indirectly (needs an immediate operand)", OpcodeName(op))
	}
	return i.stepOpcode(op)
}

// stepOpcode executes a builtin opcode known not to take an operand by
// running Step over a one-cell code segment holding just that opcode;
// used by callBuiltinValue's indirect path.
func (i *Instance) stepOpcode(op Opcode) error {
	saved := i.Code
	i.Code = []Cell{Cell(op)}
	savedIP := i.IP
	i.IP = 0
	err := i.Step()
	i.Code = saved
	i.IP = savedIP
	return err
}

// dup duplicates the top stack value. For a simple value this is a plain
// push; for a list, the entire span (payload plus header) is copied to
// the new top, since a list's payload is only meaningful relative to its
// own header's address — an O(n) copy, unlike Cons/Concat/Reverse, which
// only ever touch the topmost list's existing span.
func (i *Instance) dup() error {
	width, err := i.valueWidth(i.SP)
	if err != nil {
		return err
	}
	if width == 1 {
		v, err := i.Tos()
		if err != nil {
			return err
		}
		return i.Push(v)
	}
	lo := i.SP - width + 1
	if i.SP+width >= i.Arena.StackTop {
		return NewError(StackOverflow, i.IP, "data stack overflow")
	}
	for k := 0; k < width; k++ {
		i.Arena.Cells[i.SP+1+k] = i.Arena.Cells[lo+k]
	}
	i.SP += width
	return nil
}

func (i *Instance) popNumber() (float32, error) {
	v, err := i.Pop()
	if err != nil {
		return 0, err
	}
	if !IsNumber(v) {
		return 0, NewError(TypeMismatch, i.IP, "expected a number")
	}
	return Number(v), nil
}

func (i *Instance) binaryArith(op Opcode) error {
	b, err := i.popNumber()
	if err != nil {
		return err
	}
	a, err := i.popNumber()
	if err != nil {
		return err
	}
	var r float32
	switch op {
	case OpAdd:
		r = a + b
	case OpSub:
		r = a - b
	case OpMul:
		r = a * b
	case OpDiv:
		if b == 0 {
			return NewError(UserError, i.IP, "division by zero")
		}
		r = a / b
	case OpMod:
		if b == 0 {
			return NewError(UserError, i.IP, "division by zero")
		}
		r = float32(int(a) % int(b))
	}
	return i.Push(MakeNumber(r))
}

func (i *Instance) compare(op Opcode) error {
	b, err := i.popNumber()
	if err != nil {
		return err
	}
	a, err := i.popNumber()
	if err != nil {
		return err
	}
	var ok bool
	switch op {
	case OpEq:
		ok = a == b
	case OpNe:
		ok = a != b
	case OpLt:
		ok = a < b
	case OpGt:
		ok = a > b
	case OpLe:
		ok = a <= b
	case OpGe:
		ok = a >= b
	}
	if ok {
		return i.Push(MakeNumber(1))
	}
	return i.Push(MakeNumber(0))
}

func (i *Instance) opRefLocal(k int) error {
	addr, err := i.LocalAddr(k)
	if err != nil {
		return err
	}
	return i.Push(MakeDataRef(addr))
}

func (i *Instance) opFetchLocal(k int) error {
	addr, err := i.LocalAddr(k)
	if err != nil {
		return err
	}
	v, err := i.Arena.Get(addr)
	if err != nil {
		return err
	}
	if IsRef(v) {
		v, err = Resolve(i.Arena, v)
		if err != nil {
			return err
		}
	}
	return i.Push(v)
}

func (i *Instance) opFetchGlobal(addr int) error {
	v, err := i.Arena.Get(addr)
	if err != nil {
		return err
	}
	if IsRef(v) {
		v, err = Resolve(i.Arena, v)
		if err != nil {
			return err
		}
	}
	return i.Push(v)
}

func (i *Instance) opStoreGlobal(addr int) error {
	width, err := i.valueWidth(i.SP)
	if err != nil {
		return err
	}
	if err := Store(i.Arena, addr, i.SP); err != nil {
		return err
	}
	i.SP -= width
	return nil
}

// opPathGet implements the `get` builtin: stack effect
// list pathList get -- value. A bare (non-LIST) key on top is treated
// as a degenerate one-element path, the common case of indexing or
// keying one level deep without building a one-item list literal first.
func (i *Instance) opPathGet() error {
	pathAddr := i.SP
	path, pathWidth, err := i.pathAt(pathAddr)
	if err != nil {
		return err
	}
	listAddr := pathAddr - pathWidth
	listWidth, err := i.valueWidth(listAddr)
	if err != nil {
		return err
	}
	v, err := i.Get(listAddr, path)
	if err != nil {
		return err
	}
	i.SP = listAddr - listWidth
	return i.Push(v)
}

// opPathSet implements the `set` builtin: stack effect
// list pathList value set -- list. As with get, a bare key on top of
// the path position is a degenerate one-element path.
func (i *Instance) opPathSet() error {
	valueAddr := i.SP
	valueWidth, err := i.valueWidth(valueAddr)
	if err != nil {
		return err
	}
	pathAddr := valueAddr - valueWidth
	path, pathWidth, err := i.pathAt(pathAddr)
	if err != nil {
		return err
	}
	listAddr := pathAddr - pathWidth
	if _, err := i.Set(listAddr, path, valueAddr); err != nil {
		return err
	}
	i.SP = listAddr
	return nil
}

// pathAt returns the path segments found at addr along with the number
// of stack cells they occupy. A LIST header is walked as a multi-segment
// path; any other value (a bare number, string or ref) is a degenerate
// single-key path.
func (i *Instance) pathAt(addr int) ([]Cell, int, error) {
	v, err := i.Arena.Get(addr)
	if err != nil {
		return nil, 0, err
	}
	if IsList(v) {
		path, err := i.listToSliceAt(addr)
		if err != nil {
			return nil, 0, err
		}
		return path, ListLen(v) + 1, nil
	}
	return []Cell{v}, 1, nil
}

// valueWidth returns how many contiguous stack cells the value currently
// at addr occupies: n+1 for a LIST header (its payload plus itself), or
// 1 for anything else (including a DATA_REF — the reference itself is a
// single cell regardless of what it points to).
func (i *Instance) valueWidth(addr int) (int, error) {
	v, err := i.Arena.Get(addr)
	if err != nil {
		return 0, err
	}
	if IsList(v) {
		return ListLen(v) + 1, nil
	}
	return 1, nil
}

// listToSliceAt copies the payload of the LIST header at headerAddr into
// a plain slice, in head-to-tail (bottom-to-top) order.
func (i *Instance) listToSliceAt(headerAddr int) ([]Cell, error) {
	v, err := i.Arena.Get(headerAddr)
	if err != nil {
		return nil, err
	}
	if !IsList(v) {
		return nil, NewError(TypeMismatch, i.IP, "expected a path list")
	}
	n := ListLen(v)
	out := make([]Cell, n)
	lo := headerAddr - n
	for k := 0; k < n; k++ {
		c, err := i.Arena.Get(lo + k)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}
