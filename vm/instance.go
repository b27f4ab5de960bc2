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

import "io"

const (
	defaultGlobalSize = 4096
	defaultStackSize  = 1024
	defaultRStackSize = 1024
	defaultCodeSize   = 16384
)

// Option configures an Instance at construction time, following the
// functional-options pattern.
type Option func(*Instance)

// GlobalSize sets the size, in cells, of the globals region.
func GlobalSize(n int) Option { return func(i *Instance) { i.globalSize = n } }

// StackSize sets the size, in cells, of the data stack region.
func StackSize(n int) Option { return func(i *Instance) { i.stackSize = n } }

// ReturnStackSize sets the size, in cells, of the return stack region.
func ReturnStackSize(n int) Option { return func(i *Instance) { i.rstackSize = n } }

// CodeSize sets the initial capacity, in cells, of the code segment.
func CodeSize(n int) Option { return func(i *Instance) { i.codeSize = n } }

// Output sets the writer used for the `print`-family builtins.
func Output(w io.Writer) Option { return func(i *Instance) { i.Output = w } }

// Instance is a Tacitus virtual machine: registers, arena, code segment,
// digest and dictionary all bundled together, matching the "process-wide,
// single-owner" resource model of the design (§5).
type Instance struct {
	IP  int // instruction pointer, cell index into Code
	SP  int // data stack pointer, absolute arena address of top-of-stack
	RSP int // return stack pointer, absolute arena address of top
	GP  int // global bump pointer, absolute arena address of next free global
	BP  Cell // base pointer: a plain cell index, OR a DATA_REF under capsule dispatch

	Arena *Arena
	Code  []Cell

	Digest *Digest
	Dict   *Dictionary

	Output io.Writer

	insCount int64

	globalSize, stackSize, rstackSize, codeSize int
}

// New creates a new Instance with the given options applied.
func New(opts ...Option) *Instance {
	i := &Instance{
		globalSize: defaultGlobalSize,
		stackSize:  defaultStackSize,
		rstackSize: defaultRStackSize,
		codeSize:   defaultCodeSize,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.Arena = NewArena(i.globalSize, i.stackSize, i.rstackSize)
	i.Code = make([]Cell, 0, i.codeSize)
	i.Digest = NewDigest()
	i.Dict = NewDictionary()
	i.GP = i.Arena.GlobalBase
	i.SP = i.Arena.StackBase - 1
	i.RSP = i.Arena.RStackBase - 1
	i.InstallBuiltins()
	return i
}

// InstructionCount returns the number of opcodes dispatched so far by Run.
func (i *Instance) InstructionCount() int64 { return i.insCount }

// Push pushes v onto the data stack.
func (i *Instance) Push(v Cell) error {
	if i.SP+1 >= i.Arena.StackTop {
		return NewError(StackOverflow, i.IP, "data stack overflow")
	}
	i.SP++
	i.Arena.Cells[i.SP] = v
	return nil
}

// Pop pops and returns the top of the data stack.
func (i *Instance) Pop() (Cell, error) {
	if i.SP < i.Arena.StackBase {
		return 0, NewError(StackUnderflow, i.IP, "data stack underflow")
	}
	v := i.Arena.Cells[i.SP]
	i.SP--
	return v, nil
}

// Tos returns the top of the data stack without popping it.
func (i *Instance) Tos() (Cell, error) {
	if i.SP < i.Arena.StackBase {
		return 0, NewError(StackUnderflow, i.IP, "data stack is empty")
	}
	return i.Arena.Cells[i.SP], nil
}

// Depth returns the number of cells currently on the data stack.
func (i *Instance) Depth() int {
	return i.SP - i.Arena.StackBase + 1
}

// Data returns the live contents of the data stack, bottom first. The
// returned slice aliases the arena; do not retain it across further
// Push/Pop calls.
func (i *Instance) Data() []Cell {
	return i.Arena.Cells[i.Arena.StackBase : i.SP+1]
}

// Rpush pushes v onto the return stack.
func (i *Instance) Rpush(v Cell) error {
	if i.RSP+1 >= i.Arena.RStackTop {
		return NewError(StackOverflow, i.IP, "return stack overflow")
	}
	i.RSP++
	i.Arena.Cells[i.RSP] = v
	return nil
}

// Rpop pops and returns the top of the return stack.
func (i *Instance) Rpop() (Cell, error) {
	if i.RSP < i.Arena.RStackBase {
		return 0, NewError(StackUnderflow, i.IP, "return stack underflow")
	}
	v := i.Arena.Cells[i.RSP]
	i.RSP--
	return v, nil
}

// Rtos returns the top of the return stack without popping it.
func (i *Instance) Rtos() (Cell, error) {
	if i.RSP < i.Arena.RStackBase {
		return 0, NewError(StackUnderflow, i.IP, "return stack is empty")
	}
	return i.Arena.Cells[i.RSP], nil
}

// Address returns the live contents of the return stack, bottom first.
func (i *Instance) Address() []Cell {
	return i.Arena.Cells[i.Arena.RStackBase : i.RSP+1]
}

// AllocGlobal bumps GP by one cell and returns its address. It fails if
// the globals region is exhausted.
func (i *Instance) AllocGlobal() (int, error) {
	if i.GP >= i.Arena.GlobalTop {
		return 0, NewError(StackOverflow, i.IP, "globals region exhausted")
	}
	addr := i.GP
	i.GP++
	return addr, nil
}

// baseCellFor resolves BP to an absolute cell index, branching on whether
// BP currently holds a plain cell index or (under capsule dispatch) a
// DATA_REF to a capsule header. See §4.4.
func (i *Instance) baseCellFor() (int, error) {
	if IsRef(i.BP) {
		addr := RefAddr(i.BP)
		return addr, nil
	}
	return int(i.BP), nil
}

// LocalAddr returns the absolute address of local slot k relative to the
// current frame's base pointer, honoring capsule (ref) BP dispatch.
func (i *Instance) LocalAddr(k int) (int, error) {
	base, err := i.baseCellFor()
	if err != nil {
		return 0, err
	}
	return base + k, nil
}
