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

// entryNone marks an empty dictionary chain (no prior entry).
const entryNone = -1

// Dictionary is a LIFO chain of three-cell [prev, value, name] records
// living at the head of the globals region (§4.3). Head is the absolute
// address of the most recent entry's first cell, or entryNone if empty.
type Dictionary struct {
	Head int
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{Head: entryNone}
}

// Mark is a (dictionary head, global bump pointer) snapshot used to scope
// transient entries — most commonly a function or block's locals — so
// that Revert can remove every entry (and its global-cell allocation)
// added since the mark.
type Mark struct {
	head int
	gp   int
}

// Mark captures the current dictionary/global state.
func (i *Instance) Mark() Mark {
	return Mark{head: i.Dict.Head, gp: i.GP}
}

// Revert rewinds the dictionary and GP to a previous Mark, discarding
// every entry (and backing global cells) added since.
func (i *Instance) Revert(m Mark) {
	i.Dict.Head = m.head
	i.GP = m.gp
}

// defineEntry appends a new three-cell entry (prev=current head, value,
// name) to the globals region and makes it the new head.
func (i *Instance) defineEntry(value, name Cell) (addr int, err error) {
	base := i.GP
	if base+3 > i.Arena.GlobalTop {
		return 0, NewError(StackOverflow, i.IP, "globals region exhausted defining dictionary entry")
	}
	i.GP += 3
	prev := Cell(NIL)
	if i.Dict.Head != entryNone {
		prev = MakeDataRef(i.Dict.Head)
	}
	i.Arena.Cells[base+0] = prev
	i.Arena.Cells[base+1] = value
	i.Arena.Cells[base+2] = name
	i.Dict.Head = base
	return base, nil
}

// nameOf decodes the interned string of an entry's name cell, honoring
// the HIDDEN meta bit (carried on the STRING value itself).
func (i *Instance) nameOf(nameCell Cell) (name string, hidden bool) {
	return i.Digest.String(StringHandle(nameCell)), IsImmediate(nameCell)
}

// DefineBuiltin adds a builtin dictionary entry for name, bound to
// opcode. immediate marks it as compile-time-only.
func (i *Instance) DefineBuiltin(name string, opcode int, immediate bool) (addr int, err error) {
	h := i.Digest.Intern(name)
	return i.defineEntry(MakeBuiltin(opcode, immediate), MakeString(h))
}

// DefineFunction adds a colon-defined function entry for name, whose code
// starts at codeAddr.
func (i *Instance) DefineFunction(name string, codeAddr int) (addr int, err error) {
	h := i.Digest.Intern(name)
	return i.defineEntry(MakeCode(codeAddr, false), MakeString(h))
}

// DefineGlobal binds name to a DATA_REF pointing at addr, an already
// allocated storage cell. Unlike builtins, functions and locals, a
// global has no dedicated value tag of its own: its dictionary value
// is simply a ref to wherever its one cell of storage lives.
func (i *Instance) DefineGlobal(name string, addr int) (entryAddr int, err error) {
	h := i.Digest.Intern(name)
	return i.defineEntry(MakeDataRef(addr), MakeString(h))
}

// DefineLocal adds a transient local entry for name at BP-relative slot
// k. Locals are always defined between a definition's mark and its
// matching Revert.
func (i *Instance) DefineLocal(name string, k int) (addr int, err error) {
	h := i.Digest.Intern(name)
	return i.defineEntry(MakeLocalSlot(k), MakeString(h))
}

// Lookup walks the dictionary chain from the head, returning the value
// cell of the first non-hidden entry matching name, or (NIL, false) on a
// miss.
func (i *Instance) Lookup(name string) (value Cell, ok bool) {
	handle, known := i.Digest.Lookup(name)
	if !known {
		return NIL, false
	}
	addr := i.Dict.Head
	for addr != entryNone {
		value := i.Arena.Cells[addr+1]
		nameCell := i.Arena.Cells[addr+2]
		if !IsImmediate(nameCell) && StringHandle(nameCell) == handle {
			return value, true
		}
		prev := i.Arena.Cells[addr+0]
		if IsNil(prev) {
			break
		}
		addr = RefAddr(prev)
	}
	return NIL, false
}

// Hide marks the dictionary entry at addr as hidden, by setting the
// meta/HIDDEN bit on its name cell; Lookup skips hidden entries.
func (i *Instance) Hide(addr int) {
	nameCell := i.Arena.Cells[addr+2]
	h := StringHandle(nameCell)
	i.Arena.Cells[addr+2] = makeTagged(TagString, 1, h)
}
