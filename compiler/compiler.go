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

// Package compiler streams Tacitus source straight into VM bytecode, one
// token at a time, with no separate parse tree: numbers and strings
// compile as literals, plain words resolve against the dictionary and
// compile as calls, and a handful of immediate keywords (:, ;, if,
// else, case, when, do, ->) drive the compiler itself.
//
// Patch addresses for not-yet-resolved jumps are pushed and popped on
// the VM's own data stack, exactly as a colon definition's ordinary
// values would be — the compiler is simply another (transient) program
// running against the same Instance it is compiling into. Only the
// *kind* of control-flow construct currently open (needed to know what
// a given ";" should close) is kept on an ordinary Go slice, since that
// bookkeeping has no runtime meaning of its own.
package compiler

import (
	"io"

	"github.com/jhlagado/tacitus/vm"
)

type closerKind int

const (
	closeDef closerKind = iota
	closeIf
	closeElse
	closeCase
	closeWhen
)

// Compiler streams tokens from a lexer into a vm.Instance's code segment
// and dictionary.
type Compiler struct {
	VM  *vm.Instance
	lex *lexer

	closers    []closerKind
	localMarks []vm.Mark
	localNext  []int  // next local slot number per open colon definition
	caseOpen   []bool // whether the innermost clause of each open case still has an unresolved skip
}

// New creates a compiler that compiles into the given VM instance.
func New(vmi *vm.Instance) *Compiler {
	return &Compiler{VM: vmi}
}

// Compile streams source (named name, for error messages) into the
// VM's code segment, appending it after whatever was already compiled,
// and returns the code address the new material starts at so the
// caller can Run it. Every colon definition and top-level expression
// found is fully compiled; a top-level expression is wrapped so it can
// be run directly.
func (c *Compiler) Compile(name string, r io.Reader) (entry int, err error) {
	c.lex = newLexer(name, r)
	entry = len(c.VM.Code)

	for {
		tok := c.lex.next()
		if tok.kind == tokEOF {
			break
		}
		if err := c.compileToken(tok); err != nil {
			return 0, err
		}
	}
	if len(c.lex.errs) > 0 {
		return 0, vm.NewError(vm.CompileError, len(c.VM.Code), "%s", c.lex.errs[0])
	}
	if len(c.closers) > 0 {
		return 0, vm.NewError(vm.CompileError, len(c.VM.Code), "unclosed %s at end of input", closerName(c.closers[len(c.closers)-1]))
	}
	c.emit(vm.Cell(vm.OpExit))
	return entry, nil
}

func closerName(k closerKind) string {
	switch k {
	case closeDef:
		return ":"
	case closeIf:
		return "if"
	case closeElse:
		return "else"
	case closeCase:
		return "case"
	case closeWhen:
		return "when"
	default:
		return "?"
	}
}

func (c *Compiler) compileToken(tok token) error {
	switch tok.kind {
	case tokNumber:
		c.emit(vm.Cell(vm.OpLit))
		c.emit(vm.MakeNumber(tok.num))
		return nil
	case tokString:
		h := c.VM.Digest.Intern(tok.text)
		c.emit(vm.Cell(vm.OpLit))
		c.emit(vm.MakeString(h))
		return nil
	case tokRef:
		return c.compileRef(tok)
	case tokAssign:
		return c.compileAssign(tok)
	default:
		return c.compileWord(tok)
	}
}

// emit appends a raw cell to the code segment being compiled.
func (c *Compiler) emit(v vm.Cell) {
	c.VM.Code = append(c.VM.Code, v)
}

// patch overwrites the operand cell at addr (the cell right after an
// already-emitted jump opcode) with target.
func (c *Compiler) patch(addr int, target int) {
	c.VM.Code[addr] = vm.Cell(target)
}

func (c *Compiler) here() int { return len(c.VM.Code) }

func (c *Compiler) compileWord(tok token) error {
	switch tok.text {
	case ":":
		return c.compileColonStart()
	case ";":
		return c.compileSemicolon(tok)
	case "if":
		return c.compileIf()
	case "else":
		return c.compileElse(tok)
	case "case":
		return c.compileCaseStart()
	case "when":
		return c.compileWhen(tok)
	case "do":
		return c.compileDo(tok)
	case "default":
		return c.compileDefault(tok)
	}

	value, ok := c.VM.Lookup(tok.text)
	if !ok {
		return vm.NewError(vm.CompileError, c.here(), "undefined word %q at %s", tok.text, tok.pos)
	}
	switch {
	case vm.IsLocalSlot(value):
		c.emit(vm.Cell(vm.OpFetchLocal))
		c.emit(vm.Cell(vm.LocalSlot(value)))
	case vm.IsRef(value):
		c.emit(vm.Cell(vm.OpFetchGlobal))
		c.emit(vm.Cell(vm.RefAddr(value)))
	case vm.IsBuiltin(value):
		c.emit(vm.Cell(vm.BuiltinOpcode(value)))
	case vm.IsCode(value):
		if vm.IsBlock(value) {
			c.emit(vm.Cell(vm.OpCallBlock))
		} else {
			c.emit(vm.Cell(vm.OpCall))
		}
		c.emit(vm.Cell(vm.CodeAddr(value)))
	default:
		return vm.NewError(vm.CompileError, c.here(), "word %q resolves to a non-executable value", tok.text)
	}
	return nil
}

// compileRef handles &name: a local yields its slot's address directly,
// a global yields a DATA_REF to its storage cell, and anything else is
// a compile error (only addressable bindings have a meaningful &form).
func (c *Compiler) compileRef(tok token) error {
	value, ok := c.VM.Lookup(tok.text)
	if !ok {
		return vm.NewError(vm.CompileError, c.here(), "undefined word %q at %s", tok.text, tok.pos)
	}
	switch {
	case vm.IsLocalSlot(value):
		c.emit(vm.Cell(vm.OpRefLocal))
		c.emit(vm.Cell(vm.LocalSlot(value)))
	case vm.IsRef(value):
		c.emit(vm.Cell(vm.OpRefGlobal))
		c.emit(vm.Cell(vm.RefAddr(value)))
	default:
		return vm.NewError(vm.CompileError, c.here(), "%q is not a reference-capable binding", tok.text)
	}
	return nil
}

// compileAssign handles `->`: the next token must be a plain word naming
// the local (inside a colon definition) or global (at top level) being
// bound. A name seen for the first time is freshly defined; a name
// already bound is simply rebound (locals always shadow; globals are
// reassigned through their existing storage cell).
func (c *Compiler) compileAssign(tok token) error {
	next := c.lex.next()
	if next.kind != tokWord {
		return vm.NewError(vm.CompileError, next.pos.Line, "-> must be followed by a name")
	}
	name := next.text

	if c.inDef() {
		depth := len(c.localNext) - 1
		k := c.localNext[depth]
		c.localNext[depth] = k + 1
		if _, err := c.VM.DefineLocal(name, k); err != nil {
			return err
		}
		c.emit(vm.Cell(vm.OpStoreLocal))
		c.emit(vm.Cell(k))
		return nil
	}

	if value, ok := c.VM.Lookup(name); ok && vm.IsRef(value) {
		c.emit(vm.Cell(vm.OpStoreGlobal))
		c.emit(vm.Cell(vm.RefAddr(value)))
		return nil
	}
	addr, err := c.VM.AllocGlobal()
	if err != nil {
		return err
	}
	if err := c.VM.Arena.Set(addr, vm.NIL); err != nil {
		return err
	}
	if _, err := c.VM.DefineGlobal(name, addr); err != nil {
		return err
	}
	c.emit(vm.Cell(vm.OpStoreGlobal))
	c.emit(vm.Cell(addr))
	return nil
}

func (c *Compiler) inDef() bool {
	for _, k := range c.closers {
		if k == closeDef {
			return true
		}
	}
	return false
}
