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

// Opcode is a bytecode instruction. Opcodes below OpUserBase are builtins
// dispatched directly by Step's switch; an instruction cell at or above
// OpUserBase is taken as a tagged CODE or BUILTIN value and invoked via
// dispatchCall (a CODE value's payload is the code address it calls).
type Opcode int

// OpUserBase is the first opcode value reserved for user-defined calls.
// It must stay comfortably above the builtin table below.
const OpUserBase Opcode = 128

// Builtin opcodes.
const (
	OpNop Opcode = iota
	OpLit
	OpDup
	OpDrop
	OpSwap
	OpOver

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg

	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpNot

	OpListOpen
	OpListClose
	OpHead
	OpTail
	OpCons
	OpConcat
	OpReverse
	OpLength
	OpFind
	OpPathGet
	OpPathSet

	OpResolve
	OpRefLocal
	OpFetchLocal
	OpStoreLocal
	OpRefGlobal
	OpFetchGlobal
	OpStoreGlobal

	OpCall
	OpCallBlock
	OpCallMethod
	OpExec
	OpExit
	OpBlockEnd

	OpJump
	OpIfFalseJump
	OpBranch

	OpPrint

	// opcodeCount must stay below OpUserBase.
	opcodeCount
)

func init() {
	if Opcode(opcodeCount) >= OpUserBase {
		panic("vm: builtin opcode table overflows OpUserBase")
	}
}

var opcodeNames = [...]string{
	"nop",
	"lit",
	"dup",
	"drop",
	"swap",
	"over",
	"+",
	"-",
	"*",
	"/",
	"mod",
	"neg",
	"=",
	"<>",
	"<",
	">",
	"<=",
	">=",
	"not",
	"(",
	")",
	"head",
	"tail",
	"cons",
	"concat",
	"reverse",
	"length",
	"find",
	"get",
	"set",
	"resolve",
	"reflocal",
	"fetchlocal",
	"storelocal",
	"refglobal",
	"fetchglobal",
	"storeglobal",
	"call",
	"callblock",
	"callmethod",
	"exec",
	"exit",
	"blockend",
	"jump",
	"iffalsejump",
	"branch",
	"print",
}

// takesOperand reports whether op is followed by one immediate-operand
// cell in the code segment (an address, a slot number, or a literal).
func takesOperand(op Opcode) bool {
	switch op {
	case OpLit, OpRefLocal, OpFetchLocal, OpStoreLocal, OpRefGlobal, OpFetchGlobal, OpStoreGlobal,
		OpCall, OpCallBlock, OpJump, OpIfFalseJump, OpBranch:
		return true
	default:
		return false
	}
}

// OpcodeTakesOperand reports whether op is followed by one immediate
// operand cell in the code segment. Exported for disassemblers.
func OpcodeTakesOperand(op Opcode) bool { return takesOperand(op) }

// OpcodeName returns the mnemonic for a builtin opcode, or "call" for a
// user-defined call.
func OpcodeName(op Opcode) string {
	if op < 0 || int(op) >= len(opcodeNames) {
		return "call"
	}
	return opcodeNames[op]
}
