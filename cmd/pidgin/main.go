// SPDX-License-Identifier: Apache-2.0

// Command pidgin is the CLI driver: run evaluates a source file, disasm
// prints a compiled file's textual assembly form, and asm runs a
// hand-written (or disasm'd) assembly file directly, exercising the
// round trip independently of the in-memory bytecode representation
// (spec.md §6 supplement).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"pidgin/internal/asmtext"
	"pidgin/internal/errors"
	"pidgin/internal/symtab"
	"pidgin/internal/vm"
	"pidgin/repl"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "repl" {
		repl.Start(os.Stdin, os.Stdout)
		return
	}

	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	cmd, path := os.Args[1], os.Args[2]
	var err error
	switch cmd {
	case "run":
		err = runFile(path)
	case "disasm":
		err = disasmFile(path)
	case "asm":
		err = asmFile(path)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: pidgin run <file.pidgin>")
	fmt.Fprintln(os.Stderr, "       pidgin disasm <file.pidgin>")
	fmt.Fprintln(os.Stderr, "       pidgin asm <file.pasm>")
	fmt.Fprintln(os.Stderr, "       pidgin repl")
}

func runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		return err
	}

	syms := symtab.New()
	prog, err := vm.Compile(syms, string(source))
	if err != nil {
		reportError(path, string(source), err)
		return err
	}

	st := vm.New(syms)
	val, err := prog.Run(st)
	if err != nil {
		color.Red("runtime error: %s", err)
		return err
	}
	fmt.Println(val.Description())
	return nil
}

func disasmFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		return err
	}

	syms := symtab.New()
	prog, err := vm.Compile(syms, string(source))
	if err != nil {
		reportError(path, string(source), err)
		return err
	}

	for i, f := range prog.Forms() {
		if i > 0 {
			fmt.Println()
		}
		if f.IsDef {
			fmt.Printf("; def %s\n", f.DefName)
		}
		fmt.Print(asmtext.Print(f.Block))
	}
	return nil
}

func asmFile(path string) error {
	block, err := asmtext.ParseFile(path)
	if err != nil {
		return err
	}

	st := vm.New(symtab.New())
	val, err := st.RunBlock(block)
	if err != nil {
		color.Red("runtime error: %s", err)
		return err
	}
	fmt.Println(val.Description())
	return nil
}

func reportError(filename, source string, err error) {
	var ce errors.CompilerError
	switch e := err.(type) {
	case errors.CompilerError:
		ce = e
	case *errors.CompilerError:
		ce = *e
	default:
		color.Red("%s: %s", filename, err)
		return
	}
	fmt.Print(errors.NewErrorReporter(filename, source).FormatError(ce))
}
