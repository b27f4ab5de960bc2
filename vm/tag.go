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

import "math"

// Cell is the raw 32 bit value stored in every arena location. It is
// either a plain IEEE-754 float32 (a number) or a non-canonical NaN
// carrying a Tag, a meta bit and a payload.
type Cell uint32

// Tag discriminates the kinds of non-number value a Cell can hold.
type Tag uint8

// Tag values. NUMBER is never actually stored in the tag field: any Cell
// whose bits decode as a real float32 is implicitly a number.
const (
	TagNumber Tag = iota
	TagSentinel
	TagString
	TagCode
	TagBuiltin
	TagList
	TagDataRef
	// TagLocal is not a runtime data tag — it never appears in a value on
	// the data or return stack. It is used only as the value field of a
	// transient-local dictionary entry (§4.3), marking the entry's
	// payload as a BP-relative slot number rather than a code address.
	TagLocal
)

// The custom field layout, packed into the 22 mantissa bits of a
// non-canonical quiet NaN (bit 22, the quiet marker, is fixed at 1; the
// exponent, bits 23-30, is all ones; the sign bit is unused):
//
//	bit:  21 20 19 18 | 17 | 16 .......... 0
//	      \---tag----/ meta \---payload---/
const (
	// quietNaN is the canonical quiet-NaN bit pattern: exponent all ones,
	// top mantissa bit (the quiet marker) set, rest zero.
	quietNaN    = 0x7FC00000
	tagShift    = 18
	tagMask     = 0xF
	metaShift   = 17
	metaMask    = 0x1
	payloadBits = 17
	payloadMax  = 1<<payloadBits - 1
	payloadMask Cell = payloadMax
)

// makeTagged builds a tagged Cell from a tag, a meta bit (0 or 1) and a
// payload (must fit in payloadBits bits — see payloadMax).
func makeTagged(tag Tag, meta int, payload int) Cell {
	m := Cell(0)
	if meta != 0 {
		m = 1
	}
	return Cell(quietNaN) | (Cell(tag&tagMask) << tagShift) | (m << metaShift) | (Cell(payload) & payloadMask)
}

// tag returns the discriminator tag of v. Only meaningful if v is not a
// number — callers should check IsNumber first if that matters.
func tag(v Cell) Tag {
	return Tag((v >> tagShift) & tagMask)
}

// meta returns the repurposed meta bit of v.
func meta(v Cell) int {
	return int((v >> metaShift) & metaMask)
}

// payload returns the payload field of v.
func payload(v Cell) int {
	return int(v & payloadMask)
}

// IsNumber reports whether v holds a real (non-NaN) float32 number.
func IsNumber(v Cell) bool {
	f := math.Float32frombits(uint32(v))
	return !math.IsNaN(float64(f))
}

// Number decodes v as a float32. The caller must have already checked
// IsNumber (or be constructing the value itself); Number does not
// validate the tag.
func Number(v Cell) float32 {
	return math.Float32frombits(uint32(v))
}

// MakeNumber encodes f as a Cell.
func MakeNumber(f float32) Cell {
	return Cell(math.Float32bits(f))
}

// NIL is the sentinel value used for "no result" (SENTINEL with payload 0).
var NIL = makeTagged(TagSentinel, 0, 0)

// IsNil reports whether v is the NIL sentinel.
func IsNil(v Cell) bool {
	return !IsNumber(v) && tag(v) == TagSentinel && payload(v) == 0
}

// IsRef reports whether v is a DATA_REF.
func IsRef(v Cell) bool {
	return !IsNumber(v) && tag(v) == TagDataRef
}

// IsList reports whether v is a LIST header.
func IsList(v Cell) bool {
	return !IsNumber(v) && tag(v) == TagList
}

// IsCode reports whether v is a CODE value (colon-defined word or block).
func IsCode(v Cell) bool {
	return !IsNumber(v) && tag(v) == TagCode
}

// IsBuiltin reports whether v is a BUILTIN value.
func IsBuiltin(v Cell) bool {
	return !IsNumber(v) && tag(v) == TagBuiltin
}

// IsString reports whether v is a STRING handle.
func IsString(v Cell) bool {
	return !IsNumber(v) && tag(v) == TagString
}

// IsExecutable reports whether v can be invoked by the interpreter, i.e.
// is CODE or BUILTIN.
func IsExecutable(v Cell) bool {
	return IsCode(v) || IsBuiltin(v)
}

// IsBlock reports whether a CODE value v is a block (meta=1, inherits the
// caller's BP) as opposed to a function (meta=0, opens a new frame). The
// caller must have already checked IsCode.
func IsBlock(v Cell) bool {
	return meta(v) == 1
}

// MakeString returns a STRING value for the given digest handle.
func MakeString(handle int) Cell {
	return makeTagged(TagString, 0, handle)
}

// StringHandle returns the digest handle carried by a STRING value.
func StringHandle(v Cell) int {
	return payload(v)
}

// MakeCode returns a CODE value addressing codeAddr. isBlock selects the
// meta bit: true for a block (no new frame), false for a function.
func MakeCode(codeAddr int, isBlock bool) Cell {
	m := 0
	if isBlock {
		m = 1
	}
	return makeTagged(TagCode, m, codeAddr)
}

// CodeAddr returns the code-segment address carried by a CODE value.
func CodeAddr(v Cell) int {
	return payload(v)
}

// MakeBuiltin returns a BUILTIN value for the given opcode index. immediate
// marks the word as compile-time-only (the IMMEDIATE meta bit).
func MakeBuiltin(opcode int, immediate bool) Cell {
	m := 0
	if immediate {
		m = 1
	}
	return makeTagged(TagBuiltin, m, opcode)
}

// BuiltinOpcode returns the opcode index carried by a BUILTIN value.
func BuiltinOpcode(v Cell) int {
	return payload(v)
}

// IsImmediate reports whether a BUILTIN or CODE value has its meta/IMMEDIATE
// bit set.
func IsImmediate(v Cell) bool {
	return meta(v) == 1
}

// MakeList returns a LIST header for a payload of n slots (the n cells
// immediately below the header in whichever region it is emitted into).
func MakeList(n int) Cell {
	return makeTagged(TagList, 0, n)
}

// ListLen returns the slot count n carried by a LIST header.
func ListLen(v Cell) int {
	return payload(v)
}

// MakeSentinel returns a SENTINEL value with the given payload. NIL is
// MakeSentinel(0).
func MakeSentinel(payload int) Cell {
	return makeTagged(TagSentinel, 0, payload)
}

// MakeLocalSlot returns a dictionary-internal value marking a transient
// local's BP-relative slot number k. See TagLocal.
func MakeLocalSlot(k int) Cell {
	return makeTagged(TagLocal, 0, k)
}

// IsLocalSlot reports whether v is a dictionary-internal local-slot
// marker.
func IsLocalSlot(v Cell) bool {
	return !IsNumber(v) && tag(v) == TagLocal
}

// LocalSlot returns the BP-relative slot number carried by v.
func LocalSlot(v Cell) int {
	return payload(v)
}
