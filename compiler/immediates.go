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

package compiler

import "github.com/jhlagado/tacitus/vm"

// Immediate keywords (:, ;, if, else, case, when, do, ->) are not
// dictionary entries — the streaming compiler recognizes them as plain
// words before ever consulting the dictionary (see compileWord). Each
// one drives the compiler directly instead of compiling a call.
//
// Patch addresses for not-yet-resolved jumps travel on the VM's own
// data stack (if/else, and each case clause's pending skip) or return
// stack (a case construct's accumulating list of "jump to the end"
// exits, delimited by a NIL sentinel pushed when the case opens) — the
// compiler runs as an ordinary (if transient) user of the same
// Instance it is compiling into. Only which *kind* of construct is
// currently open needs bookkeeping with no runtime meaning, and that
// lives on a plain Go slice (closers).

func (c *Compiler) compileColonStart() error {
	next := c.lex.next()
	if next.kind != tokWord {
		return vm.NewError(vm.CompileError, next.pos.Line, ": must be followed by a name")
	}
	// Jump over the body so surrounding top-level code does not run it;
	// the operand is patched by the matching ";".
	c.emit(vm.Cell(vm.OpJump))
	skipAddr := c.here()
	c.emit(0)
	if err := c.VM.Push(vm.MakeNumber(float32(skipAddr))); err != nil {
		return err
	}
	if _, err := c.VM.DefineFunction(next.text, c.here()); err != nil {
		return err
	}
	c.closers = append(c.closers, closeDef)
	c.localMarks = append(c.localMarks, c.VM.Mark())
	c.localNext = append(c.localNext, 1)
	return nil
}

func (c *Compiler) compileSemicolon(tok token) error {
	if len(c.closers) == 0 {
		return vm.NewError(vm.CompileError, tok.pos.Line, "; without a matching :, if or case")
	}
	top := c.closers[len(c.closers)-1]
	switch top {
	case closeDef:
		c.emit(vm.Cell(vm.OpExit))
		skipAddr, err := c.VM.Pop()
		if err != nil {
			return err
		}
		c.patch(int(vm.Number(skipAddr)), c.here())
		c.VM.Revert(c.localMarks[len(c.localMarks)-1])
		c.localMarks = c.localMarks[:len(c.localMarks)-1]
		c.localNext = c.localNext[:len(c.localNext)-1]
		c.closers = c.closers[:len(c.closers)-1]
		return nil
	case closeIf, closeElse:
		patchAddr, err := c.VM.Pop()
		if err != nil {
			return err
		}
		c.patch(int(vm.Number(patchAddr)), c.here())
		c.closers = c.closers[:len(c.closers)-1]
		return nil
	case closeCase:
		return c.closeCaseConstruct()
	case closeWhen:
		idx := len(c.caseOpen) - 1
		if c.caseOpen[idx] {
			if err := c.closeClause(); err != nil {
				return err
			}
			c.caseOpen[idx] = false
			return nil
		}
		return c.closeCaseConstruct()
	default:
		return vm.NewError(vm.CompileError, tok.pos.Line, "unexpected ;")
	}
}

func (c *Compiler) compileIf() error {
	c.emit(vm.Cell(vm.OpIfFalseJump))
	operandAddr := c.here()
	c.emit(0)
	if err := c.VM.Push(vm.MakeNumber(float32(operandAddr))); err != nil {
		return err
	}
	c.closers = append(c.closers, closeIf)
	return nil
}

func (c *Compiler) compileElse(tok token) error {
	if len(c.closers) == 0 || c.closers[len(c.closers)-1] != closeIf {
		return vm.NewError(vm.CompileError, tok.pos.Line, "else without a matching if")
	}
	patchAddr, err := c.VM.Pop()
	if err != nil {
		return err
	}
	c.emit(vm.Cell(vm.OpJump))
	jumpOperandAddr := c.here()
	c.emit(0)
	c.patch(int(vm.Number(patchAddr)), c.here())
	if err := c.VM.Push(vm.MakeNumber(float32(jumpOperandAddr))); err != nil {
		return err
	}
	c.closers[len(c.closers)-1] = closeElse
	return nil
}

func (c *Compiler) compileCaseStart() error {
	if err := c.VM.Rpush(vm.NIL); err != nil {
		return err
	}
	c.closers = append(c.closers, closeCase)
	c.caseOpen = append(c.caseOpen, false)
	return nil
}

// closeClause emits an unconditional jump to the construct's end
// (recorded on the return stack for closeCaseConstruct to patch), then
// resolves the still-open clause's conditional skip to land right here
// — the start of whatever comes next (the next clause's condition, the
// default action, or the construct's end). Called by "when", "default"
// and, implicitly, by ";" for whichever clause is still open.
func (c *Compiler) closeClause() error {
	c.emit(vm.Cell(vm.OpJump))
	exitAddr := c.here()
	c.emit(0)
	if err := c.VM.Rpush(vm.MakeNumber(float32(exitAddr))); err != nil {
		return err
	}
	pendingSkip, err := c.VM.Pop()
	if err != nil {
		return err
	}
	c.patch(int(vm.Number(pendingSkip)), c.here())
	return nil
}

// compileWhen handles the "when" keyword, which plays two distinct
// roles depending on context (§2, §4.7):
//
//   - Inside an open "case", it is the clause separator: it closes
//     whichever when/do clause precedes it (if any) exactly like
//     "default" does, then leaves the construct open for the next
//     clause's condition.
//   - Anywhere else, it OPENS a standalone guarded construct of its
//     own: `when COND do ACTION ; COND do ACTION ; DEFAULT ;`. Unlike
//     "case", there is no leading value and no repeated "when" between
//     clauses — each clause is closed by a plain ";", and the
//     construct itself is closed by whichever ";" arrives with no
//     "do" pending since the last clause (see compileSemicolon).
func (c *Compiler) compileWhen(tok token) error {
	if len(c.closers) > 0 && c.closers[len(c.closers)-1] == closeCase {
		idx := len(c.caseOpen) - 1
		if c.caseOpen[idx] {
			if err := c.closeClause(); err != nil {
				return err
			}
			c.caseOpen[idx] = false
		}
		return nil
	}
	if err := c.VM.Rpush(vm.NIL); err != nil {
		return err
	}
	c.closers = append(c.closers, closeWhen)
	c.caseOpen = append(c.caseOpen, false)
	return nil
}

func (c *Compiler) compileDo(tok token) error {
	if len(c.closers) == 0 {
		return vm.NewError(vm.CompileError, tok.pos.Line, "do without when/case")
	}
	top := c.closers[len(c.closers)-1]
	if top != closeCase && top != closeWhen {
		return vm.NewError(vm.CompileError, tok.pos.Line, "do without when/case")
	}
	idx := len(c.caseOpen) - 1
	if c.caseOpen[idx] {
		return vm.NewError(vm.CompileError, tok.pos.Line, "do without a preceding when")
	}
	c.emit(vm.Cell(vm.OpIfFalseJump))
	operandAddr := c.here()
	c.emit(0)
	if err := c.VM.Push(vm.MakeNumber(float32(operandAddr))); err != nil {
		return err
	}
	c.caseOpen[idx] = true
	return nil
}

// compileDefault handles the DEFAULT keyword: it closes whichever
// when/do clause precedes it exactly as the next "when" would, but
// opens no new conditional clause of its own — everything compiled
// between here and the matching ";" runs unconditionally whenever no
// earlier clause matched.
func (c *Compiler) compileDefault(tok token) error {
	if len(c.closers) == 0 {
		return vm.NewError(vm.CompileError, tok.pos.Line, "default outside case")
	}
	top := c.closers[len(c.closers)-1]
	if top != closeCase && top != closeWhen {
		return vm.NewError(vm.CompileError, tok.pos.Line, "default outside case")
	}
	idx := len(c.caseOpen) - 1
	if !c.caseOpen[idx] {
		return vm.NewError(vm.CompileError, tok.pos.Line, "default without a preceding when/do")
	}
	if err := c.closeClause(); err != nil {
		return err
	}
	c.caseOpen[idx] = false
	return nil
}

// closeCaseConstruct fully closes an open "case" or standalone "when"
// construct: it closes whichever clause is still open (if the
// construct ended without a DEFAULT) so its skip lands on the
// construct's end, then patches every accumulated exit jump (one per
// clause closed by "when" or "default") to that same end address. For
// "case", compileSemicolon calls this unconditionally on the matching
// ";" (case has exactly one terminator). For standalone "when", it is
// called only when a ";" arrives with no clause pending — the implicit
// default/no-more-clauses case — since an ordinary clause-closing ";"
// there must leave the construct open for the next clause.
func (c *Compiler) closeCaseConstruct() error {
	idx := len(c.caseOpen) - 1
	if c.caseOpen[idx] {
		pendingSkip, err := c.VM.Pop()
		if err != nil {
			return err
		}
		c.patch(int(vm.Number(pendingSkip)), c.here())
	}
	end := c.here()
	for {
		v, err := c.VM.Rpop()
		if err != nil {
			return err
		}
		if vm.IsNil(v) {
			break
		}
		c.patch(int(vm.Number(v)), end)
	}
	c.closers = c.closers[:len(c.closers)-1]
	c.caseOpen = c.caseOpen[:len(c.caseOpen)-1]
	return nil
}
