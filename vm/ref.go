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

// MakeDataRef returns a DATA_REF to the absolute cell address addr. The
// region it falls in is reconstructed from the arena boundaries at
// dereference time; it is never stored in the tag.
func MakeDataRef(addr int) Cell {
	return makeTagged(TagDataRef, 0, addr)
}

// RefAddr returns the absolute cell address carried by a DATA_REF.
func RefAddr(v Cell) int {
	return payload(v)
}

// Resolve reads through v once if it is a DATA_REF, returning the
// dereferenced value. If v is not a ref, it is returned unchanged. A ref
// to a ref is followed exactly one hop further (single-level alias); if
// that target is itself a ref, Resolve fails with RefError (cycle beyond
// one hop).
func Resolve(a *Arena, v Cell) (Cell, error) {
	if !IsRef(v) {
		return v, nil
	}
	addr := RefAddr(v)
	target, err := a.Get(addr)
	if err != nil {
		return 0, err
	}
	if IsRef(target) {
		addr2 := RefAddr(target)
		target2, err := a.Get(addr2)
		if err != nil {
			return 0, err
		}
		if IsRef(target2) {
			return 0, NewError(RefError, addr2, "ref chain longer than one hop")
		}
		return target2, nil
	}
	return target, nil
}

// resolveAddr follows v exactly as Resolve does, but returns the absolute
// address of the cell holding the final value rather than its content.
// Used by compound writes, which need to locate a list header's payload
// span, not just its value.
func resolveAddr(a *Arena, startAddr int) (valAddr int, val Cell, err error) {
	v, err := a.Get(startAddr)
	if err != nil {
		return 0, 0, err
	}
	if !IsRef(v) {
		return startAddr, v, nil
	}
	addr := RefAddr(v)
	target, err := a.Get(addr)
	if err != nil {
		return 0, 0, err
	}
	if IsRef(target) {
		addr2 := RefAddr(target)
		target2, err := a.Get(addr2)
		if err != nil {
			return 0, 0, err
		}
		if IsRef(target2) {
			return 0, 0, NewError(RefError, addr2, "ref chain longer than one hop")
		}
		return addr2, target2, nil
	}
	return addr, target, nil
}

// copySpan copies n cells from [srcLo, srcLo+n) to [dstLo, dstLo+n),
// verifying that both spans lie within a single arena region.
func copySpan(a *Arena, dstLo, srcLo, n int) error {
	if !a.InRegion(srcLo+n, n) {
		return NewError(ArenaBounds, srcLo, "source span not within a single region")
	}
	if !a.InRegion(dstLo+n, n) {
		return NewError(ArenaBounds, dstLo, "destination span not within a single region")
	}
	for k := 0; k < n; k++ {
		a.Cells[dstLo+k] = a.Cells[srcLo+k]
	}
	return nil
}

// Store implements the write-compatibility policy of §4.5/§4.7: the value
// currently located at srcAddr is resolved (single hop) and then written
// into dstAddr. A simple value overwrites a slot unconditionally. A
// compound (LIST) value may only overwrite a slot that already holds a
// compatible compound — same header slot count — whether stored inline
// or behind a DATA_REF; otherwise Store fails with Incompatible. The
// arena is left in its prior state on any failure.
func Store(a *Arena, dstAddr, srcAddr int) error {
	valAddr, val, err := resolveAddr(a, srcAddr)
	if err != nil {
		return err
	}
	if !IsList(val) {
		return a.Set(dstAddr, val)
	}
	n := ListLen(val)
	dstCur, err := a.Get(dstAddr)
	if err != nil {
		return err
	}
	switch {
	case IsList(dstCur):
		if ListLen(dstCur) != n {
			return NewError(Incompatible, dstAddr, "compound write: slot count mismatch (%d != %d)", ListLen(dstCur), n)
		}
		return copySpan(a, dstAddr-n, valAddr-n, n+1)
	case IsRef(dstCur):
		dstTgt := RefAddr(dstCur)
		dstTgtVal, err := a.Get(dstTgt)
		if err != nil {
			return err
		}
		if !IsList(dstTgtVal) || ListLen(dstTgtVal) != n {
			return NewError(Incompatible, dstAddr, "compound write: incompatible ref target")
		}
		return copySpan(a, dstTgt-n, valAddr-n, n+1)
	default:
		return NewError(Incompatible, dstAddr, "compound write into non-compound slot")
	}
}
