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

// Command tacitus runs Tacitus source files and, with no file arguments,
// drops into an interactive read-eval-print loop.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/jhlagado/tacitus/lang/tacitus"
	"github.com/jhlagado/tacitus/vm"
)

var (
	debug     bool
	dasm      bool
	globals   = flag.Int("globals", 0, "override the globals region size in cells (0 = default)")
	dataStack = flag.Int("stack", 0, "override the data stack size in cells (0 = default)")
)

func atExit(in *tacitus.Interpreter, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	if in != nil {
		fmt.Fprintf(os.Stderr, "stack: %v\n", in.VM.Data())
	}
	os.Exit(1)
}

func main() {
	flag.BoolVar(&debug, "debug", false, "print a full error trace and stack dump on failure")
	flag.BoolVar(&dasm, "dasm", false, "disassemble newly compiled code to stderr after running it")
	flag.Parse()

	var opts []vm.Option
	if *globals > 0 {
		opts = append(opts, vm.GlobalSize(*globals))
	}
	if *dataStack > 0 {
		opts = append(opts, vm.StackSize(*dataStack))
	}
	opts = append(opts, vm.Output(os.Stdout))

	in := tacitus.New(opts...)

	args := flag.Args()
	if len(args) == 0 {
		repl(in)
		return
	}

	var err error
	for _, name := range args {
		err = runFile(in, name)
		if err != nil {
			break
		}
	}
	atExit(in, err)
}

func runFile(in *tacitus.Interpreter, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()
	before := len(in.VM.Code)
	_, err = in.Eval(name, f)
	if dasm {
		disassemble(in.VM, before)
	}
	return err
}

// repl reads one line at a time from stdin, compiles and runs it against
// the same long-lived Interpreter, and prints the resulting data stack.
// A compile or runtime error is reported and the loop continues with the
// dictionary, global allocations and code segment rolled back to what
// they were before the failing line; the data stack is left as the
// failing line left it.
func repl(in *tacitus.Interpreter) {
	r := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			if err != io.EOF {
				fmt.Fprintln(os.Stderr, err)
			}
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		before := len(in.VM.Code)
		mark := in.VM.Mark()
		_, evalErr := in.EvalString("<stdin>", line)
		if dasm {
			disassemble(in.VM, before)
		}
		if evalErr != nil {
			in.VM.Revert(mark)
			in.VM.Code = in.VM.Code[:before]
			fmt.Fprintln(os.Stderr, evalErr)
			continue
		}
		in.FormatStack(os.Stdout)
	}
}

// disassemble prints the code compiled since addr, one instruction per
// line, as a debugging aid for -dasm.
func disassemble(i *vm.Instance, addr int) {
	fmt.Fprint(os.Stderr, vm.DisassembleRange(i.Code, addr, len(i.Code)))
}
