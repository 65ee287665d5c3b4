// SPDX-License-Identifier: Apache-2.0

// Package repl implements a line-oriented read-compile-eval-print loop
// over a persistent symbol table and evaluator (spec.md §6 supplement):
// each submitted form shares the same global bindings as every form
// before it, exactly like a multi-form source file evaluated one chunk at
// a time.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"pidgin/internal/errors"
	"pidgin/internal/symtab"
	"pidgin/internal/vm"
)

const (
	prompt        = ">> "
	continuePrompt = ".. "
)

// Start runs the loop until in is exhausted (EOF on stdin, typically
// Ctrl-D), printing prompts and results to out.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	syms := symtab.New()
	st := vm.New(syms)

	var buf string
	for {
		if buf == "" {
			fmt.Fprint(out, prompt)
		} else {
			fmt.Fprint(out, continuePrompt)
		}

		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if buf == "" && line == "" {
			continue
		}
		if buf == "" {
			buf = line
		} else {
			buf = buf + "\n" + line
		}

		if parenBalance(buf) > 0 {
			continue
		}

		evalAndPrint(out, syms, st, buf)
		buf = ""
	}
}

func evalAndPrint(out io.Writer, syms *symtab.Table, st *vm.EvaluationState, src string) {
	prog, err := vm.Compile(syms, src)
	if err != nil {
		reportError(out, src, err)
		return
	}
	val, err := prog.Run(st)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "error: %s\n", err)
		return
	}
	fmt.Fprintln(out, val.Description())
}

func reportError(out io.Writer, src string, err error) {
	switch e := err.(type) {
	case errors.CompilerError:
		fmt.Fprint(out, errors.NewErrorReporter("<repl>", src).FormatError(e))
	case *errors.CompilerError:
		fmt.Fprint(out, errors.NewErrorReporter("<repl>", src).FormatError(*e))
	default:
		color.New(color.FgRed).Fprintf(out, "error: %s\n", err)
	}
}

// parenBalance counts open parens left unmatched in src, ignoring any
// inside a string literal (spec.md 6's string syntax) so the loop doesn't
// submit early on a quoted "(".
func parenBalance(src string) int {
	depth := 0
	inStr := false
	escaped := false
	for _, r := range src {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inStr {
				escaped = true
			}
		case '"':
			inStr = !inStr
		case '(':
			if !inStr {
				depth++
			}
		case ')':
			if !inStr {
				depth--
			}
		}
	}
	return depth
}
