// SPDX-License-Identifier: Apache-2.0
package ir

import (
	"fmt"

	"pidgin/internal/instr"
)

// LifetimeError reports a violation of the single-static-assignment
// discipline spec.md 4.3 requires every compiled block to satisfy: a
// register is created exactly once, read only after creation and only
// before being replaced, and a replacement only ever targets a register
// that currently exists.
type LifetimeError struct {
	Kind               LifetimeErrorKind
	Register           Reg
	Timestamp          Timestamp
	CreatedAt          *Timestamp
	ReplacedBy         Reg
	ReplacedByTimestamp Timestamp
}

type LifetimeErrorKind int

const (
	UsedBeforeCreation LifetimeErrorKind = iota
	OutputToExisting
	ReplacingNonexistent
	UsedAfterReplacement
)

func (e *LifetimeError) Error() string {
	switch e.Kind {
	case UsedBeforeCreation:
		return fmt.Sprintf("attempted to use register %d before creation at timestamp %d", e.Register, e.Timestamp)
	case OutputToExisting:
		return fmt.Sprintf("attempted to output to register %d at timestamp %d, but it was already created", e.Register, e.Timestamp)
	case ReplacingNonexistent:
		return fmt.Sprintf("attempted to replace register %d at timestamp %d, but it does not exist", e.Register, e.Timestamp)
	case UsedAfterReplacement:
		return fmt.Sprintf("attempted to use register %d at timestamp %d, but it was already replaced by %d at timestamp %d", e.Register, e.Timestamp, e.ReplacedBy, e.ReplacedByTimestamp)
	default:
		return "invalid register lifetime"
	}
}

// RegisterLifetime tracks one register's creation instant, every read
// instant, and the register (if any) it either replaces or was replaced by
// (spec.md 4.3).
type RegisterLifetime struct {
	Creation   *Timestamp
	Usages     []Timestamp
	Replacing  *Reg
	ReplacedBy *Reg
}

func (l *RegisterLifetime) lastUsage() *Timestamp {
	if len(l.Usages) == 0 {
		return nil
	}
	t := l.Usages[len(l.Usages)-1]
	return &t
}

func (l *RegisterLifetime) IsUsed() bool { return len(l.Usages) > 0 }

// Lifetimes maps every register live at some point in a block to its
// lifetime record.
type Lifetimes map[Reg]*RegisterLifetime

// CalculateRegisterLifetimes walks a block's instructions once, in order,
// building the lifetime table spec.md 4.3 describes and failing on the
// first violation of SSA discipline.
func CalculateRegisterLifetimes(preallocatedRegisters uint8, instructions []SSAInstruction) (Lifetimes, error) {
	lifetimes := make(Lifetimes)
	for r := uint8(0); r < preallocatedRegisters; r++ {
		lifetimes[Reg(r)] = &RegisterLifetime{}
	}
	for i, ins := range instructions {
		timestamp := Timestamp(i)
		usages := instr.GetUsages(ins)

		for _, in := range usages.Inputs {
			lifetime, ok := lifetimes[in]
			if !ok {
				return nil, &LifetimeError{Kind: UsedBeforeCreation, Register: in, Timestamp: timestamp}
			}
			if lifetime.ReplacedBy != nil {
				return nil, &LifetimeError{
					Kind: UsedAfterReplacement, Register: in, Timestamp: timestamp,
					ReplacedBy: *lifetime.ReplacedBy, ReplacedByTimestamp: *lifetime.lastUsage(),
				}
			}
			lifetime.Usages = append(lifetime.Usages, timestamp)
		}

		if usages.Output != nil {
			out := *usages.Output
			if existing, ok := lifetimes[out]; ok {
				return nil, &LifetimeError{Kind: OutputToExisting, Register: out, Timestamp: timestamp, CreatedAt: existing.Creation}
			}
			ts := timestamp
			lifetimes[out] = &RegisterLifetime{Creation: &ts}
		}

		if usages.Replacement != nil {
			from, to := usages.Replacement.From, usages.Replacement.To
			fromLifetime, ok := lifetimes[from]
			if !ok {
				return nil, &LifetimeError{Kind: ReplacingNonexistent, Register: from, Timestamp: timestamp}
			}
			if fromLifetime.ReplacedBy != nil {
				return nil, &LifetimeError{
					Kind: UsedAfterReplacement, Register: from, Timestamp: timestamp,
					ReplacedBy: *fromLifetime.ReplacedBy, ReplacedByTimestamp: *fromLifetime.lastUsage(),
				}
			}
			fromLifetime.Usages = append(fromLifetime.Usages, timestamp)
			toReg := to
			fromLifetime.ReplacedBy = &toReg
			if existing, ok := lifetimes[to]; ok {
				return nil, &LifetimeError{Kind: OutputToExisting, Register: to, Timestamp: timestamp, CreatedAt: existing.Creation}
			}
			ts := timestamp
			fromCopy := from
			lifetimes[to] = &RegisterLifetime{Creation: &ts, Replacing: &fromCopy}
		}
	}
	return lifetimes, nil
}

func maxRegister(instructions []SSAInstruction) Reg {
	max := 0
	for _, ins := range instructions {
		usages := instr.GetUsages(ins)
		for _, in := range usages.Inputs {
			if in > max {
				max = in
			}
		}
		if usages.Output != nil && *usages.Output > max {
			max = *usages.Output
		}
		if usages.Replacement != nil {
			if usages.Replacement.From > max {
				max = usages.Replacement.From
			}
			if usages.Replacement.To > max {
				max = usages.Replacement.To
			}
		}
	}
	return max
}
