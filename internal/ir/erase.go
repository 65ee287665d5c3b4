// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"pidgin/internal/instr"
	"pidgin/internal/value"
)

// EraseUnusedConstants drops every Const instruction whose output register
// is never read and removes the now-unreferenced entry from the constant
// pool, renumbering the remaining Const instructions' indices to match
// (spec.md 4.5). Function literals that are never called still get
// compiled and still occupy a constant slot if their Const is read; only
// truly dead constants (spec.md's `(def _ 5)`-style unused top-level
// values, or lambda-lifted closure constants erased by an earlier pass)
// are removed.
func EraseUnusedConstants(block *SSABlock, preallocatedRegisters uint8) (*SSABlock, error) {
	lifetimes, err := CalculateRegisterLifetimes(preallocatedRegisters, block.Instructions)
	if err != nil {
		return nil, err
	}

	filteredInstructions := make([]SSAInstruction, 0, len(block.Instructions))
	filteredConstants := make([]SSADatum, 0, len(block.Constants))

	for _, ins := range block.Instructions {
		if ins.Op == instr.OpConst {
			target := ins.Out
			if lifetimes[target].IsUsed() {
				oldIndex := int(ins.Aux)
				newIndex := len(filteredConstants)
				filteredConstants = append(filteredConstants, block.Constants[oldIndex])
				filteredInstructions = append(filteredInstructions,
					instr.NullaryAux[Reg, Reg, Replacement](instr.OpConst, target, uint32(newIndex)))
			}
			continue
		}
		filteredInstructions = append(filteredInstructions, ins)
	}

	for i, c := range filteredConstants {
		if c.Kind == value.KindCompositeFn {
			recursed, err := EraseUnusedConstants(c.CompositeFn.Block, c.CompositeFn.Args.RegisterCount())
			if err != nil {
				return nil, err
			}
			filteredConstants[i] = value.CompositeFnDatum[Reg, Reg, Replacement](&SSACompositeFunction{
				Args:  c.CompositeFn.Args,
				Block: recursed,
			})
		}
	}

	return &SSABlock{Instructions: filteredInstructions, Constants: filteredConstants}, nil
}
