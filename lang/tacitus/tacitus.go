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

// Package tacitus glues package compiler and package vm together into a
// single interpreter: compile a chunk of source, run it, report what is
// left on the data stack. This is the layer a REPL or a batch-file
// runner sits on top of.
package tacitus

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/jhlagado/tacitus/compiler"
	"github.com/jhlagado/tacitus/vm"
)

// Interpreter holds a single long-lived VM instance and compiles
// successive chunks of source into it, so that definitions and globals
// from one chunk are visible to the next — exactly the behavior a REPL
// needs.
type Interpreter struct {
	VM *vm.Instance
}

// New creates an Interpreter around a fresh VM instance built with opts.
func New(opts ...vm.Option) *Interpreter {
	return &Interpreter{VM: vm.New(opts...)}
}

// Eval compiles src (named name, for error messages) and runs it,
// returning the data stack contents left behind, bottom first.
func (in *Interpreter) Eval(name string, src io.Reader) ([]vm.Cell, error) {
	c := compiler.New(in.VM)
	entry, err := c.Compile(name, src)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}
	if err := in.VM.Run(entry); err != nil {
		return nil, errors.Wrap(err, "run")
	}
	out := make([]vm.Cell, len(in.VM.Data()))
	copy(out, in.VM.Data())
	return out, nil
}

// EvalString is a convenience wrapper around Eval for in-memory source.
func (in *Interpreter) EvalString(name, src string) ([]vm.Cell, error) {
	return in.Eval(name, strings.NewReader(src))
}

// FormatStack renders the current data stack bottom-to-top, one value
// per line, using the VM's own Format — the same renderer `print` uses
// for a single value.
func (in *Interpreter) FormatStack(w io.Writer) {
	// Walk down from the top so a list's payload cells are skipped and
	// only its header is formatted, then print bottom first.
	var addrs []int
	for addr := in.VM.SP; addr >= in.VM.Arena.StackBase; {
		addrs = append(addrs, addr)
		if v := in.VM.Arena.Cells[addr]; vm.IsList(v) {
			addr -= vm.ListLen(v) + 1
		} else {
			addr--
		}
	}
	for k := len(addrs) - 1; k >= 0; k-- {
		fmt.Fprintln(w, in.VM.Format(addrs[k]))
	}
}

// Format renders the value at addr the same way FormatStack does. It
// takes an arena address rather than a bare Cell because a LIST
// header's payload lives at the cells below it: formatting the list as
// a whole needs to know where it sits in the arena, not just its tag
// and length.
func Format(i *vm.Instance, addr int) string {
	return i.Format(addr)
}
