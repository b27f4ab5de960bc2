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

// Disassemble decodes a single instruction from code starting at ip,
// returning the address of the next instruction and a one-line textual
// rendering. A value at or above OpUserBase is rendered as the raw
// dictionary value it actually is (a call to a builtin or user word
// looked up indirectly), rather than as a bare opcode number, since
// Step's own dispatch treats it that way too.
func Disassemble(code []Cell, ip int) (next int, text string) {
	if ip < 0 || ip >= len(code) {
		return ip, "?"
	}
	instr := code[ip]
	op := Opcode(instr)
	if op >= OpUserBase {
		return ip + 1, fmt.Sprintf("%4d  dispatch %s", ip, describeCallTarget(instr))
	}
	if OpcodeTakesOperand(op) && ip+1 < len(code) {
		return ip + 2, fmt.Sprintf("%4d  %-14s %v", ip, OpcodeName(op), code[ip+1])
	}
	return ip + 1, fmt.Sprintf("%4d  %s", ip, OpcodeName(op))
}

func describeCallTarget(v Cell) string {
	switch {
	case IsBuiltin(v):
		return OpcodeName(Opcode(BuiltinOpcode(v)))
	case IsCode(v):
		if IsBlock(v) {
			return fmt.Sprintf("<block:%d>", CodeAddr(v))
		}
		return fmt.Sprintf("<code:%d>", CodeAddr(v))
	default:
		return "?"
	}
}

// DisassembleRange renders every instruction in code[from:to] as a
// newline-joined listing, one instruction per line.
func DisassembleRange(code []Cell, from, to int) string {
	var out string
	for addr := from; addr < to; {
		next, line := Disassemble(code, addr)
		out += line + "\n"
		addr = next
	}
	return out
}
