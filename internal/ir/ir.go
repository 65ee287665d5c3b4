// SPDX-License-Identifier: Apache-2.0

// Package ir implements the compiler pipeline that turns a single SSA
// function body into allocated bytecode (spec.md 4): lifetime analysis,
// core-function inlining, dead-constant erasure, and register allocation.
package ir

import (
	"pidgin/internal/instr"
	"pidgin/internal/value"
)

// Reg is an SSA virtual register: an arbitrarily large identifier assigned
// once per value produced, never reused (spec.md 4.1).
type Reg = int

// Replacement names the (from, to) register pair of an instruction that
// consumes one register's value and produces a new one under a new name in
// its place (spec.md 4.1: e.g. Rest, ButLast, Push, Cons).
type Replacement struct {
	From Reg
	To   Reg
}

// SSAInstruction is an instruction still in virtual-register form.
type SSAInstruction = instr.Instruction[Reg, Reg, Replacement]

// SSADatum is a constant-pool entry in virtual-register form.
type SSADatum = value.Datum[Reg, Reg, Replacement]

// SSABlock is a function body in virtual-register form, prior to register
// allocation.
type SSABlock = value.GenericBlock[Reg, Reg, Replacement]

// SSACompositeFunction pairs an arity with an SSABlock, exactly as
// value.CompositeFn does for allocated bytecode.
type SSACompositeFunction = value.CompositeFunction[Reg, Reg, Replacement]

// Timestamp indexes an instruction's position within a block; lifetimes are
// expressed in terms of the timestamps at which a register is created,
// read, and (if applicable) replaced (spec.md 4.3).
type Timestamp = uint16
