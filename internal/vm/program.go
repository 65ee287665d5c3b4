// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"errors"

	"pidgin/internal/ast"
	"pidgin/internal/ir"
	"pidgin/internal/reader"
	"pidgin/internal/symtab"
	"pidgin/internal/value"
)

var errYieldAtTopLevel = errors.New("yield reached outside any coroutine")

// Program is a source text compiled down to runnable bytecode blocks, one
// per top-level form, in source order (spec.md 2's pipeline: SSA frontend
// -> lifetime/inlining/allocation passes -> bytecode).
type Program struct {
	forms []compiledForm
}

type compiledForm struct {
	block   *value.Block
	isDef   bool
	defName string
}

// Compile reads and compiles src against syms, running every top-level
// form through the full pass pipeline (spec.md 2.5: lifetime tracking,
// core-call inlining, dead-constant sweep, register allocation). Each
// pass already self-recurses into nested CompositeFn constants produced by
// lambda lifting, so one top-level call per form covers the whole program.
func Compile(syms *symtab.Table, src string) (*Program, error) {
	nodes, err := reader.ReadAll(src)
	if err != nil {
		return nil, err
	}
	compiler := ast.New(syms)
	tops, err := compiler.CompileProgram(nodes)
	if err != nil {
		return nil, err
	}
	forms := make([]compiledForm, len(tops))
	for i, tl := range tops {
		block, err := lower(tl.Block)
		if err != nil {
			return nil, err
		}
		forms[i] = compiledForm{block: block, isDef: tl.IsDef, defName: tl.DefName}
	}
	return &Program{forms: forms}, nil
}

// lower runs one SSA block through the pipeline passes (spec.md 8's
// idempotence properties hold regardless of the fixed order used here:
// erase, then inline, then allocate), producing physical-register
// bytecode ready for the evaluator.
func lower(block *ir.SSABlock) (*value.Block, error) {
	erased, err := ir.EraseUnusedConstants(block, 0)
	if err != nil {
		return nil, err
	}
	inlined, err := ir.InlineCoreFnCalls(erased, 0)
	if err != nil {
		return nil, err
	}
	return ir.AllocateRegisters(inlined, 0)
}

// Run evaluates every top-level form in order against st, installing a def
// form's result as a global binding before moving to the next form
// (spec.md 3's "Globals: ... def installs bindings between top-level
// evaluations"). It returns the last form's value, mirroring a REPL
// reporting only its final result for a multi-form paste.
func (p *Program) Run(st *EvaluationState) (value.Value, error) {
	var last value.Value
	for _, f := range p.forms {
		v, err := st.RunBlock(f.block)
		if err != nil {
			return value.Nil, err
		}
		if f.isDef {
			st.Define(f.defName, v)
		}
		last = v
	}
	return last, nil
}

// Forms exposes each top-level form's compiled block plus its def
// metadata, for tooling that needs to run or disassemble one form at a
// time instead of a whole Program (the REPL's incremental loop, and
// cmd/pidgin's disasm subcommand).
type Form struct {
	Block   *value.Block
	IsDef   bool
	DefName string
}

func (p *Program) Forms() []Form {
	forms := make([]Form, len(p.forms))
	for i, f := range p.forms {
		forms[i] = Form{Block: f.block, IsDef: f.isDef, DefName: f.defName}
	}
	return forms
}

// RunBlock evaluates a single compiled block to completion, either one
// top-level form (spec.md 3) or a block read back from the textual
// assembly form (internal/asmtext). A bare block can't itself yield
// (spec.md 5: suspension points are Yield/YieldAndAccept/child-return, all
// reachable only from inside a coroutine's own frames), so a yield
// escaping here means the block tried to yield with no coroutine on the
// stack to catch it.
func (st *EvaluationState) RunBlock(b *value.Block) (value.Value, error) {
	fn := &value.CompositeFn{Args: value.FixedArity(0), Block: b}
	if err := st.pushCall(fn, nil, sentinelReturn); err != nil {
		return value.Nil, err
	}
	val, yielded, err := st.run()
	if err != nil {
		return value.Nil, err
	}
	if yielded {
		return value.Nil, errYieldAtTopLevel
	}
	return val, nil
}
