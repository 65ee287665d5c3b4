// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"fmt"

	"pidgin/internal/instr"
	"pidgin/internal/value"
)

// AllocationError reports that a function body needs more than 256
// simultaneously live registers (spec.md 4.6: "bytecode registers are a
// single byte; allocation failure is fatal, there is no spilling").
type AllocationError struct {
	Timestamp Timestamp
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("function requires more than 256 live registers (exhausted at instruction %d)", e.Timestamp)
}

// AllocateRegisters performs a single forward linear-scan pass assigning
// each SSA register the lowest-numbered free physical register, reusing a
// register the instant its SSA lifetime ends (spec.md 4.6). Registers
// involved in a replacement pair are never freed and reassigned: the
// replacement register inherits the exact physical slot of the register it
// replaces, since a Replacing instruction mutates its operand's storage in
// place.
func AllocateRegisters(block *SSABlock, preallocatedRegisters uint8) (*value.Block, error) {
	instructions := block.Instructions
	lifetimes, err := CalculateRegisterLifetimes(preallocatedRegisters, instructions)
	if err != nil {
		return nil, err
	}

	ssaToRuntime := make(map[Reg]uint8)
	taken := make(map[uint8]bool)
	for r := uint8(0); r < preallocatedRegisters; r++ {
		ssaToRuntime[Reg(r)] = r
		taken[r] = true
	}

	translated := make([]value.BytecodeInstruction, 0, len(instructions))

	for i, ins := range instructions {
		timestamp := Timestamp(i)
		usages := instr.GetUsages(ins)
		finished := make(map[Reg]uint8)

		for reg, lifetime := range lifetimes {
			if lifetime.ReplacedBy != nil {
				continue
			}
			last := lifetime.lastUsage()
			if last != nil && *last == timestamp {
				if phys, ok := ssaToRuntime[reg]; ok {
					delete(ssaToRuntime, reg)
					delete(taken, phys)
					finished[reg] = phys
				}
			}
		}

		createdReg, creating := Reg(0), false
		var replacingFrom *Reg
		if usages.Output != nil {
			createdReg, creating = *usages.Output, true
		} else if usages.Replacement != nil {
			createdReg, creating = usages.Replacement.To, true
			from := usages.Replacement.From
			replacingFrom = &from
		}

		if creating && (timestamp != 0 || createdReg >= Reg(preallocatedRegisters)) {
			if replacingFrom != nil {
				phys, ok := ssaToRuntime[*replacingFrom]
				if !ok {
					return nil, fmt.Errorf("register %d not found when replacing at timestamp %d", *replacingFrom, timestamp)
				}
				delete(ssaToRuntime, *replacingFrom)
				ssaToRuntime[createdReg] = phys
			} else {
				phys, ok := firstFree(taken)
				if !ok {
					return nil, &AllocationError{Timestamp: timestamp}
				}
				ssaToRuntime[createdReg] = phys
				taken[phys] = true
			}
		}

		lookupInput := func(r Reg) uint8 {
			if phys, ok := ssaToRuntime[r]; ok {
				return phys
			}
			return finished[r]
		}
		lookupOutput := func(r Reg) uint8 { return ssaToRuntime[r] }
		lookupReplacement := func(repl Replacement) uint8 { return ssaToRuntime[repl.To] }

		translated = append(translated, instr.Translate(ins, lookupInput, lookupOutput, lookupReplacement))
	}

	constants := make([]value.Datum[value.Reg8, value.Reg8, value.Reg8], len(block.Constants))
	for i, c := range block.Constants {
		if c.Kind == value.KindCompositeFn {
			allocatedBody, err := AllocateRegisters(c.CompositeFn.Block, c.CompositeFn.Args.RegisterCount())
			if err != nil {
				return nil, err
			}
			constants[i] = value.CompositeFnDatum[value.Reg8, value.Reg8, value.Reg8](&value.CompositeFn{
				Args:  c.CompositeFn.Args,
				Block: allocatedBody,
			})
		} else {
			constants[i] = translateDatum(c)
		}
	}

	return &value.Block{Instructions: translated, Constants: constants}, nil
}

func firstFree(taken map[uint8]bool) (uint8, bool) {
	for r := 0; r < 256; r++ {
		if !taken[uint8(r)] {
			return uint8(r), true
		}
	}
	return 0, false
}

// translateDatum copies a non-function constant across the SSADatum ->
// bytecode Datum instantiation boundary; every field but CompositeFn is
// register-role-independent.
func translateDatum(d SSADatum) value.Datum[value.Reg8, value.Reg8, value.Reg8] {
	out := value.Datum[value.Reg8, value.Reg8, value.Reg8]{
		Kind: d.Kind, Bool: d.Bool, Char: d.Char, Num: d.Num, Sym: d.Sym, Str: d.Str, CoreFn: d.CoreFn,
	}
	if d.Kind == value.KindList {
		out.List = make([]value.Datum[value.Reg8, value.Reg8, value.Reg8], len(d.List))
		for i, item := range d.List {
			out.List[i] = translateDatum(item)
		}
	}
	return out
}
