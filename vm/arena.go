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

// Region identifies one of the arena's three logical partitions. Storage
// is unified — Region is a label recovered from the boundaries, not a
// separate backing store.
type Region int

const (
	// RegionNone is returned for an address outside all three regions.
	RegionNone Region = iota
	RegionGlobal
	RegionStack
	RegionRStack
)

func (r Region) String() string {
	switch r {
	case RegionGlobal:
		return "global"
	case RegionStack:
		return "stack"
	case RegionRStack:
		return "rstack"
	default:
		return "none"
	}
}

// Arena is the flat cell array backing globals, the data stack and the
// return stack, addressed uniformly by absolute cell index. Region
// boundaries are fixed at construction time; Region order must be
// GlobalBase <= GlobalTop <= StackBase <= StackTop <= RStackBase <= RStackTop.
type Arena struct {
	Cells []Cell

	GlobalBase, GlobalTop   int
	StackBase, StackTop     int
	RStackBase, RStackTop   int
}

// NewArena allocates an Arena with the three regions laid out back to
// back in the order globals, data stack, return stack.
func NewArena(globalSize, stackSize, rstackSize int) *Arena {
	a := &Arena{
		GlobalBase: 0,
		GlobalTop:  globalSize,
	}
	a.StackBase = a.GlobalTop
	a.StackTop = a.StackBase + stackSize
	a.RStackBase = a.StackTop
	a.RStackTop = a.RStackBase + rstackSize
	a.Cells = make([]Cell, a.RStackTop)
	return a
}

// RegionOf returns the region an absolute cell address falls in, or
// RegionNone if it falls in none of them.
func (a *Arena) RegionOf(addr int) Region {
	switch {
	case addr >= a.GlobalBase && addr < a.GlobalTop:
		return RegionGlobal
	case addr >= a.StackBase && addr < a.StackTop:
		return RegionStack
	case addr >= a.RStackBase && addr < a.RStackTop:
		return RegionRStack
	default:
		return RegionNone
	}
}

// resolveAddress purely computes the region of addr from the region
// boundaries, as specified: DATA_REF payloads carry an absolute cell
// index and the region label is reconstructed, never stored.
func (a *Arena) resolveAddress(addr int) (Region, int) {
	return a.RegionOf(addr), addr
}

// Get reads the cell at an absolute address, bounds-checked.
func (a *Arena) Get(addr int) (Cell, error) {
	if addr < 0 || addr >= len(a.Cells) || a.RegionOf(addr) == RegionNone {
		return 0, NewError(ArenaBounds, addr, "address %d out of bounds", addr)
	}
	return a.Cells[addr], nil
}

// Set writes the cell at an absolute address, bounds-checked.
func (a *Arena) Set(addr int, v Cell) error {
	if addr < 0 || addr >= len(a.Cells) || a.RegionOf(addr) == RegionNone {
		return NewError(ArenaBounds, addr, "address %d out of bounds", addr)
	}
	a.Cells[addr] = v
	return nil
}

// InRegion reports whether the span [addr-n, addr-1] (a list's payload
// span below a header at addr) lies entirely inside a single region.
func (a *Arena) InRegion(addr, n int) bool {
	if n < 0 {
		return false
	}
	if n == 0 {
		return a.RegionOf(addr) != RegionNone || addr == a.GlobalTop || addr == a.StackTop || addr == a.RStackTop
	}
	lo, hi := addr-n, addr-1
	rLo, rHi := a.RegionOf(lo), a.RegionOf(hi)
	return rLo != RegionNone && rLo == rHi
}
