// SPDX-License-Identifier: Apache-2.0
package instr

// Instruction is the single generic instruction shape used for both SSA
// and bytecode forms (spec.md 4.1). I, O, and R are the register-role
// types: Input, Output, and Replacement. In SSA form R is typically a
// from/to pair; after register allocation R collapses to a single
// physical register, shared between the read and the write.
//
// Aux carries whatever small integer payload an opcode needs beyond its
// register slots: an argument count (Call), a jump target (Jump), a
// constant-pool index (Const), a symbol index (Lookup), or an iteration
// bound (BoundedRepeat and friends).
type Instruction[I, O, R any] struct {
	Op      Op
	In      [2]I
	NIn     uint8
	Out     O
	HasOut  bool
	Repl    R
	HasRepl bool
	Aux     uint32
}

// Usages is the uniform (inputs, outputs, replacements) view of an
// instruction (spec.md 4.1) that every pipeline pass queries instead of
// switching on Op.
type Usages[I, O, R any] struct {
	Inputs      []I
	Output      *O
	Replacement *R
}

func GetUsages[I, O, R any](ins Instruction[I, O, R]) Usages[I, O, R] {
	u := Usages[I, O, R]{Inputs: append([]I(nil), ins.In[:ins.NIn]...)}
	if ins.HasOut {
		o := ins.Out
		u.Output = &o
	}
	if ins.HasRepl {
		r := ins.Repl
		u.Replacement = &r
	}
	return u
}

// Translate maps an instruction across per-role transformer functions,
// producing an instruction with possibly different register-role types.
// This single function implements every SSA->bytecode lowering pass and
// any future rewrite (spec.md 9: "implementations should emit a
// translation function once and reuse it").
func Translate[I, O, R, I2, O2, R2 any](
	ins Instruction[I, O, R],
	mapIn func(I) I2,
	mapOut func(O) O2,
	mapRepl func(R) R2,
) Instruction[I2, O2, R2] {
	out := Instruction[I2, O2, R2]{
		Op:      ins.Op,
		NIn:     ins.NIn,
		HasOut:  ins.HasOut,
		HasRepl: ins.HasRepl,
		Aux:     ins.Aux,
	}
	for i := 0; i < int(ins.NIn); i++ {
		out.In[i] = mapIn(ins.In[i])
	}
	if ins.HasOut {
		out.Out = mapOut(ins.Out)
	}
	if ins.HasRepl {
		out.Repl = mapRepl(ins.Repl)
	}
	return out
}

// --- shape constructors -----------------------------------------------
//
// These build instructions of a given arity shape; they do not enumerate
// per-opcode logic (that lives in the ir/ast/vm packages), only the slot
// layout spec.md 4.1 assigns to each shape family.

func Nullary[I, O, R any](op Op, out O) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, Out: out, HasOut: true}
}

func NullaryAux[I, O, R any](op Op, out O, aux uint32) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, Out: out, HasOut: true, Aux: aux}
}

func NoOutput[I, O, R any](op Op, in I) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, In: [2]I{in}, NIn: 1}
}

func NoOutputNoInput[I, O, R any](op Op) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op}
}

func Unary[I, O, R any](op Op, in I, out O) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, In: [2]I{in}, NIn: 1, Out: out, HasOut: true}
}

func UnaryReplacing[I, O, R any](op Op, repl R) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, Repl: repl, HasRepl: true}
}

func Binary[I, O, R any](op Op, a, b I, out O) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, In: [2]I{a, b}, NIn: 2, Out: out, HasOut: true}
}

// BinaryReplacing covers instructions like Push(list, value) where the
// list register is replaced in place and the value register is read.
func BinaryReplacing[I, O, R any](op Op, in I, repl R) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, In: [2]I{in}, NIn: 1, Repl: repl, HasRepl: true}
}

func AuxOnly[I, O, R any](op Op, aux uint32) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, Aux: aux}
}

func InputAux[I, O, R any](op Op, in I, aux uint32) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, In: [2]I{in}, NIn: 1, Aux: aux}
}

func UnaryAux[I, O, R any](op Op, in I, out O, aux uint32) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, In: [2]I{in}, NIn: 1, Out: out, HasOut: true, Aux: aux}
}

func ReplAux[I, O, R any](op Op, repl R, aux uint32) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, Repl: repl, HasRepl: true, Aux: aux}
}

func InputReplAux[I, O, R any](op Op, in I, repl R, aux uint32) Instruction[I, O, R] {
	return Instruction[I, O, R]{Op: op, In: [2]I{in}, NIn: 1, Repl: repl, HasRepl: true, Aux: aux}
}
