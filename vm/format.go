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
	"strconv"
	"strings"
)

// Format renders the value at addr as text. Numbers print as plain
// decimals (trailing fraction trimmed for integral values), strings
// print quoted, refs print as the value they resolve to (a ref chain
// longer than one hop prints as "?"), and lists print recursively as
// parenthesized sequences. A list's payload only has meaning relative
// to its header's own address (the n cells immediately below it), so
// Format is address-based throughout, not value-based: a bare Cell
// carries a LIST's slot count but not where its payload lives. This is
// the formatter `print` uses; package lang/tacitus builds a richer
// top-level pretty-printer (stack dumps, multi-value output) on top of
// it.
func (i *Instance) Format(addr int) string {
	var b strings.Builder
	i.formatAt(&b, addr)
	return b.String()
}

func (i *Instance) formatAt(b *strings.Builder, addr int) {
	v, err := i.Arena.Get(addr)
	if err != nil {
		b.WriteString("?")
		return
	}
	switch {
	case IsNumber(v):
		b.WriteString(formatNumber(Number(v)))
	case IsNil(v):
		b.WriteString("nil")
	case IsString(v):
		b.WriteByte('"')
		b.WriteString(i.Digest.String(StringHandle(v)))
		b.WriteByte('"')
	case IsRef(v):
		valAddr, _, err := resolveAddr(i.Arena, addr)
		if err != nil {
			b.WriteString("?")
			return
		}
		i.formatAt(b, valAddr)
	case IsCode(v):
		b.WriteString("<code:")
		b.WriteString(strconv.Itoa(CodeAddr(v)))
		b.WriteByte('>')
	case IsBuiltin(v):
		b.WriteString(OpcodeName(Opcode(BuiltinOpcode(v))))
	case IsList(v):
		i.formatList(b, addr, ListLen(v))
	default:
		b.WriteString("?")
	}
}

func (i *Instance) formatList(b *strings.Builder, headerAddr, n int) {
	lo := headerAddr - n
	b.WriteByte('(')
	for k := 0; k < n; k++ {
		if k > 0 {
			b.WriteByte(' ')
		}
		i.formatAt(b, lo+k)
	}
	b.WriteByte(')')
}

func formatNumber(f float32) string {
	if f == float32(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
