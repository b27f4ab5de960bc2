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

// surfaceBuiltins lists every builtin opcode reachable directly by name
// from source text. Opcodes that only ever appear as compiler-emitted
// plumbing (lit, the jump family, the local/global/call family) are
// deliberately absent: package compiler emits those itself from
// context (a name lookup, a `->` binding, a control-flow keyword), the
// user never spells them.
var surfaceBuiltins = []Opcode{
	OpDup, OpDrop, OpSwap, OpOver,
	OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg,
	OpEq, OpNe, OpLt, OpGt, OpLe, OpGe, OpNot,
	OpListOpen, OpListClose,
	OpHead, OpTail, OpCons, OpConcat, OpReverse, OpLength,
	OpFind, OpPathGet, OpPathSet,
	OpResolve, OpExec,
	OpPrint,
}

// InstallBuiltins populates the dictionary with every surface builtin,
// keyed by its asm-style mnemonic (see opcodeNames). New calls this
// automatically; it is exported so a caller assembling a dictionary
// from scratch (e.g. a test harness bootstrapping a minimal VM) can
// call it again after a Revert that discarded everything.
func (i *Instance) InstallBuiltins() {
	for _, op := range surfaceBuiltins {
		i.DefineBuiltin(OpcodeName(op), int(op), false)
	}
}
