package asmtext

import (
	"fmt"
	"strconv"
	"strings"

	"pidgin/internal/value"
)

// Print renders b as the textual assembly form ParseString reads back.
func Print(b *value.Block) string {
	var sb strings.Builder
	writeBlock(&sb, b, 0)
	return sb.String()
}

func writeBlock(sb *strings.Builder, b *value.Block, indent int) {
	pad := strings.Repeat("  ", indent)
	if len(b.Constants) > 0 {
		fmt.Fprintf(sb, "%s.constants\n", pad)
		for i, c := range b.Constants {
			fmt.Fprintf(sb, "%s  %d: ", pad, i)
			writeConst(sb, c, indent+1)
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(sb, "%s.code\n", pad)
	for _, ins := range b.Instructions {
		sb.WriteString(pad)
		sb.WriteString("  ")
		writeInstr(sb, ins)
		sb.WriteByte('\n')
	}
}

func writeConst(sb *strings.Builder, d value.Datum[value.Reg8, value.Reg8, value.Reg8], indent int) {
	switch d.Kind {
	case value.KindNil:
		sb.WriteString("nil")
	case value.KindBool:
		fmt.Fprintf(sb, "bool %t", d.Bool)
	case value.KindChar:
		fmt.Fprintf(sb, "char %s", strconv.QuoteRune(d.Char))
	case value.KindNumber:
		fmt.Fprintf(sb, "num %s", formatNumber(d.Num))
	case value.KindSymbol:
		fmt.Fprintf(sb, "sym %d", d.Sym)
	case value.KindStr:
		fmt.Fprintf(sb, "str %s", strconv.Quote(d.Str))
	case value.KindCoreFn:
		fmt.Fprintf(sb, "core-fn %d", d.CoreFn)
	case value.KindList:
		sb.WriteString("list [")
		for i, it := range d.List {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeConst(sb, it, indent)
		}
		sb.WriteString("]")
	case value.KindCompositeFn:
		fmt.Fprintf(sb, "fn arity=%d {\n", d.CompositeFn.Args.RegisterCount())
		writeBlock(sb, d.CompositeFn.Block, indent+1)
		fmt.Fprintf(sb, "%s}", strings.Repeat("  ", indent))
	default:
		fmt.Fprintf(sb, "nil /* unrepresentable constant kind %s */", d.Kind)
	}
}

func formatNumber(n value.Number) string {
	if n.IsInt() {
		return strconv.FormatInt(n.AsIntTruncating(), 10)
	}
	s := strconv.FormatFloat(n.AsFloat(), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func writeInstr(sb *strings.Builder, ins value.BytecodeInstruction) {
	sb.WriteString(ins.Op.String())
	if ins.HasOut {
		fmt.Fprintf(sb, " out=r%d", ins.Out)
	}
	if ins.HasRepl {
		fmt.Fprintf(sb, " repl=r%d", ins.Repl)
	}
	if ins.NIn > 0 {
		sb.WriteString(" in=")
		for i := 0; i < int(ins.NIn); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "r%d", ins.In[i])
		}
	}
	if ins.Aux != 0 {
		fmt.Fprintf(sb, " aux=%d", ins.Aux)
	}
}
