// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"pidgin/internal/corefn"
	"pidgin/internal/errors"
	"pidgin/internal/instr"
	"pidgin/internal/ir"
	"pidgin/internal/reader"
	"pidgin/internal/symtab"
	"pidgin/internal/value"
)

// Compiler turns reader.Nodes into SSA blocks across a whole session: it
// tracks which names a previous top-level (def ...) has already installed
// so later forms can resolve them, and shares one symbol table with the
// evaluator's global bindings.
type Compiler struct {
	Syms    *symtab.Table
	Globals map[string]bool
}

func New(syms *symtab.Table) *Compiler {
	return &Compiler{Syms: syms, Globals: map[string]bool{}}
}

// TopLevel is one compiled top-level form. A driver runs Block, and if
// IsDef, installs the resulting value under DefName in the global table
// before moving on to the next form.
type TopLevel struct {
	Block   *ir.SSABlock
	IsDef   bool
	DefName string
}

// CompileProgram compiles every top-level form in sequence, threading
// Globals through so a later form can reference an earlier def and a
// self-recursive def can reference its own name.
func (c *Compiler) CompileProgram(forms []reader.Node) ([]TopLevel, error) {
	out := make([]TopLevel, 0, len(forms))
	for _, f := range forms {
		tl, err := c.CompileTopLevel(f)
		if err != nil {
			return nil, err
		}
		out = append(out, tl)
	}
	return out, nil
}

func (c *Compiler) CompileTopLevel(n reader.Node) (TopLevel, error) {
	if n.Kind == reader.NodeList && len(n.Items) > 0 &&
		n.Items[0].Kind == reader.NodeSymbol && n.Items[0].Sym == "def" {
		return c.compileDef(n)
	}
	b := newBuilder(c, nil, 0)
	reg, err := b.compileExpr(n)
	if err != nil {
		return TopLevel{}, err
	}
	b.emit(returnIns(reg))
	return TopLevel{Block: b.toBlock()}, nil
}

func (c *Compiler) compileDef(n reader.Node) (TopLevel, error) {
	if len(n.Items) != 3 {
		return TopLevel{}, errors.InvalidDefLength(toPosition(n))
	}
	nameNode := n.Items[1]
	if nameNode.Kind != reader.NodeSymbol {
		return TopLevel{}, errors.InvalidDefLength(toPosition(nameNode))
	}
	name := nameNode.Sym
	if isReserved(name) {
		return TopLevel{}, errors.ShadowedBinding(name, toPosition(nameNode))
	}
	// Installed before compiling the value expression so a (fn ...) value
	// can recurse on its own name.
	c.Globals[name] = true
	b := newBuilder(c, nil, 0)
	reg, err := b.compileExpr(n.Items[2])
	if err != nil {
		return TopLevel{}, err
	}
	b.emit(returnIns(reg))
	return TopLevel{Block: b.toBlock(), IsDef: true, DefName: name}, nil
}

// builder accumulates one block's instructions and constant pool.
type builder struct {
	c            *Compiler
	scope        *scope
	nextReg      ir.Reg
	instructions []ir.SSAInstruction
	constants    []ir.SSADatum
}

func newBuilder(c *Compiler, names map[string]ir.Reg, preallocated ir.Reg) *builder {
	return &builder{c: c, scope: &scope{names: names}, nextReg: preallocated}
}

func (b *builder) newReg() ir.Reg {
	r := b.nextReg
	b.nextReg++
	return r
}

func (b *builder) emit(ins ir.SSAInstruction) { b.instructions = append(b.instructions, ins) }

func (b *builder) addConst(d ir.SSADatum) ir.Reg {
	b.constants = append(b.constants, d)
	return ir.Reg(len(b.constants) - 1)
}

func (b *builder) emitConst(d ir.SSADatum) ir.Reg {
	idx := b.addConst(d)
	out := b.newReg()
	b.emit(constIns(out, idx))
	return out
}

func (b *builder) toBlock() *ir.SSABlock {
	return &ir.SSABlock{Instructions: b.instructions, Constants: b.constants}
}

func constIns(out, idx ir.Reg) ir.SSAInstruction {
	return instr.NullaryAux[ir.Reg, ir.Reg, ir.Replacement](instr.OpConst, out, uint32(idx))
}

func returnIns(reg ir.Reg) ir.SSAInstruction {
	return instr.NoOutput[ir.Reg, ir.Reg, ir.Replacement](instr.OpReturn, reg)
}

func copyArgIns(reg ir.Reg) ir.SSAInstruction {
	return instr.NoOutput[ir.Reg, ir.Reg, ir.Replacement](instr.OpCopyArgument, reg)
}

func (b *builder) compileExpr(n reader.Node) (ir.Reg, error) {
	switch n.Kind {
	case reader.NodeNil:
		return b.emitConst(value.NilDatum[ir.Reg, ir.Reg, ir.Replacement]()), nil
	case reader.NodeInt:
		return b.emitConst(value.NumberDatum[ir.Reg, ir.Reg, ir.Replacement](value.Int(n.Int))), nil
	case reader.NodeFloat:
		return b.emitConst(value.NumberDatum[ir.Reg, ir.Reg, ir.Replacement](value.Float(n.Float))), nil
	case reader.NodeString:
		return b.emitConst(value.StrDatum[ir.Reg, ir.Reg, ir.Replacement](n.Str)), nil
	case reader.NodeSymbol:
		return b.compileSymbol(n)
	case reader.NodeList:
		return b.compileList(n)
	default:
		return 0, errors.CantParseToken("", toPosition(n))
	}
}

func (b *builder) compileSymbol(n reader.Node) (ir.Reg, error) {
	name := n.Sym
	if reg, ok := b.scope.resolveOwn(name); ok {
		return reg, nil
	}
	if id, ok := corefn.Lookup(name); ok {
		return b.emitConst(value.CoreFnDatum[ir.Reg, ir.Reg, ir.Replacement](uint16(id))), nil
	}
	if b.c.Globals[name] {
		idx := b.c.Syms.Intern(name)
		out := b.newReg()
		b.emit(instr.NullaryAux[ir.Reg, ir.Reg, ir.Replacement](instr.OpLookup, out, uint32(idx)))
		return out, nil
	}
	return 0, errors.UnboundSymbol(name, toPosition(n))
}

func (b *builder) compileList(n reader.Node) (ir.Reg, error) {
	if len(n.Items) == 0 {
		return b.emitConst(value.ListDatum[ir.Reg, ir.Reg, ir.Replacement](nil)), nil
	}
	head := n.Items[0]
	if head.Kind == reader.NodeSymbol {
		switch head.Sym {
		case "fn":
			return b.compileFn(n)
		case "def":
			return 0, errors.NestedDef(toPosition(n))
		case "quote":
			return b.compileQuote(n, false)
		case "hard-quote":
			return b.compileQuote(n, true)
		case "unquote":
			return 0, errors.UnquoteNotImplemented(toPosition(n))
		case "partial":
			return b.compilePartial(n)
		case "create-coroutine":
			return b.compileCreateCoroutine(n)
		case "coroutine-alive?":
			return b.compileCoroutineAlive(n)
		case "yield":
			return b.compileYield(n)
		case "yield-and-accept":
			return b.compileYieldAndAccept(n)
		}
	}
	return b.compileCall(n)
}

func (b *builder) compileCreateCoroutine(n reader.Node) (ir.Reg, error) {
	if len(n.Items) != 2 {
		return 0, errors.InvalidArgumentCount(toPosition(n))
	}
	fReg, err := b.compileExpr(n.Items[1])
	if err != nil {
		return 0, err
	}
	out := b.newReg()
	b.emit(instr.Unary[ir.Reg, ir.Reg, ir.Replacement](instr.OpCreateCoroutine, fReg, out))
	return out, nil
}

func (b *builder) compileCoroutineAlive(n reader.Node) (ir.Reg, error) {
	if len(n.Items) != 2 {
		return 0, errors.InvalidArgumentCount(toPosition(n))
	}
	cReg, err := b.compileExpr(n.Items[1])
	if err != nil {
		return 0, err
	}
	out := b.newReg()
	b.emit(instr.Unary[ir.Reg, ir.Reg, ir.Replacement](instr.OpIsCoroutineAlive, cReg, out))
	return out, nil
}

// compileYield compiles (yield v), the plain suspension form: the next
// resume's arguments are simply discarded.
func (b *builder) compileYield(n reader.Node) (ir.Reg, error) {
	if len(n.Items) != 2 {
		return 0, errors.InvalidArgumentCount(toPosition(n))
	}
	vReg, err := b.compileExpr(n.Items[1])
	if err != nil {
		return 0, err
	}
	b.emit(instr.NoOutput[ir.Reg, ir.Reg, ir.Replacement](instr.OpYield, vReg))
	out := b.newReg()
	b.emit(constIns(out, b.addConst(value.NilDatum[ir.Reg, ir.Reg, ir.Replacement]())))
	return out, nil
}

// compileYieldAndAccept compiles (yield-and-accept v n), suspending and
// reserving n fresh registers, starting at the next unused one, to receive the
// next resume's arguments. n must be a compile-time integer literal: it
// sizes a fixed run of registers baked into the instruction the same way a
// function's own arity is fixed at compile time.
func (b *builder) compileYieldAndAccept(n reader.Node) (ir.Reg, error) {
	if len(n.Items) != 3 {
		return 0, errors.InvalidArgumentCount(toPosition(n))
	}
	vReg, err := b.compileExpr(n.Items[1])
	if err != nil {
		return 0, err
	}
	countNode := n.Items[2]
	if countNode.Kind != reader.NodeInt || countNode.Int < 0 {
		return 0, errors.InvalidArgumentCount(toPosition(countNode))
	}
	count := uint32(countNode.Int)
	base := b.nextReg
	for i := uint32(0); i < count; i++ {
		b.newReg()
	}
	b.emit(instr.UnaryAux[ir.Reg, ir.Reg, ir.Replacement](instr.OpYieldAndAccept, vReg, base, count))
	return base, nil
}

func (b *builder) compileQuote(n reader.Node, hard bool) (ir.Reg, error) {
	if len(n.Items) != 2 {
		return 0, errors.MultipleExpressionsInQuote(toPosition(n))
	}
	d, err := b.c.nodeToDatum(n.Items[1], hard)
	if err != nil {
		return 0, err
	}
	return b.emitConst(d), nil
}

func (b *builder) compilePartial(n reader.Node) (ir.Reg, error) {
	if len(n.Items) < 2 {
		return 0, errors.InvalidPartialLength(toPosition(n))
	}
	fReg, err := b.compileExpr(n.Items[1])
	if err != nil {
		return 0, err
	}
	argRegs := make([]ir.Reg, 0, len(n.Items)-2)
	for _, a := range n.Items[2:] {
		r, err := b.compileExpr(a)
		if err != nil {
			return 0, err
		}
		argRegs = append(argRegs, r)
	}
	out := b.newReg()
	b.emit(instr.UnaryAux[ir.Reg, ir.Reg, ir.Replacement](instr.OpPartial, fReg, out, uint32(len(argRegs))))
	for _, r := range argRegs {
		b.emit(copyArgIns(r))
	}
	return out, nil
}

func (b *builder) compileCall(n reader.Node) (ir.Reg, error) {
	fReg, err := b.compileExpr(n.Items[0])
	if err != nil {
		return 0, err
	}
	argRegs := make([]ir.Reg, 0, len(n.Items)-1)
	for _, a := range n.Items[1:] {
		r, err := b.compileExpr(a)
		if err != nil {
			return 0, err
		}
		argRegs = append(argRegs, r)
	}
	out := b.newReg()
	b.emit(instr.UnaryAux[ir.Reg, ir.Reg, ir.Replacement](instr.OpCall, fReg, out, uint32(len(argRegs))))
	for _, r := range argRegs {
		b.emit(copyArgIns(r))
	}
	return out, nil
}

// compileFn compiles an (fn (params...) body...) form, lambda-lifting any
// reference to a name bound by an enclosing fn's own parameter list into an
// explicit (partial (fn (g1..gk x1..xn) body') c1..ck) (spec.md 4.2).
func (b *builder) compileFn(n reader.Node) (ir.Reg, error) {
	if len(n.Items) < 2 {
		return 0, errors.FunctionDefinitionMissingBody(toPosition(n))
	}
	paramsNode := n.Items[1]
	body := n.Items[2:]
	if len(body) == 0 {
		return 0, errors.FunctionDefinitionMissingBody(toPosition(n))
	}

	paramNames := make([]string, 0, len(paramsNode.Items))
	seenParam := map[string]bool{}
	for _, p := range paramsNode.Items {
		if p.Kind != reader.NodeSymbol {
			return 0, errors.InvalidFunctionDefinitionArgumentName(describeNode(p), toPosition(p))
		}
		name := p.Sym
		if isReserved(name) || seenParam[name] {
			return 0, errors.ShadowedBinding(name, toPosition(p))
		}
		if _, isCore := corefn.Lookup(name); isCore {
			return 0, errors.ShadowedBinding(name, toPosition(p))
		}
		seenParam[name] = true
		paramNames = append(paramNames, name)
	}

	bound := make(map[string]bool, len(paramNames))
	for _, p := range paramNames {
		bound[p] = true
	}
	var free []string
	freeSeen := map[string]bool{}
	for _, expr := range body {
		collectFreeVars(expr, bound, &free, freeSeen)
	}

	var captureNames []string
	captureRegs := map[string]ir.Reg{}
	for _, name := range free {
		if reg, ok := b.scope.resolveOwn(name); ok {
			captureNames = append(captureNames, name)
			captureRegs[name] = reg
		}
	}

	k := len(captureNames)
	numParams := len(paramNames)
	innerNames := make(map[string]ir.Reg, k+numParams)
	for i, name := range captureNames {
		innerNames[name] = ir.Reg(i)
	}
	for i, name := range paramNames {
		if _, shadowed := innerNames[name]; shadowed {
			return 0, errors.ShadowedBinding(name, toPosition(n))
		}
		innerNames[name] = ir.Reg(k + i)
	}

	inner := newBuilder(b.c, innerNames, ir.Reg(k+numParams))
	var lastReg ir.Reg
	for _, expr := range body {
		r, err := inner.compileExpr(expr)
		if err != nil {
			return 0, err
		}
		lastReg = r
	}
	inner.emit(returnIns(lastReg))

	fn := &ir.SSACompositeFunction{
		Args:  value.FixedArity(uint8(k + numParams)),
		Block: inner.toBlock(),
	}
	fnReg := b.emitConst(value.CompositeFnDatum[ir.Reg, ir.Reg, ir.Replacement](fn))

	if k == 0 {
		return fnReg, nil
	}
	out := b.newReg()
	b.emit(instr.UnaryAux[ir.Reg, ir.Reg, ir.Replacement](instr.OpPartial, fnReg, out, uint32(k)))
	for _, name := range captureNames {
		b.emit(copyArgIns(captureRegs[name]))
	}
	return out, nil
}
