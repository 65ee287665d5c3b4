package asmtext

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"pidgin/internal/instr"
	"pidgin/internal/value"
)

var builder = mustBuildParser()

func mustBuildParser() *participle.Parser[File] {
	p, err := participle.Build[File](
		participle.Lexer(asmLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseFile reads path and parses it into a runnable bytecode block.
func ParseFile(path string) (*value.Block, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseString(path, string(source))
}

// ParseString parses src (named filename for error messages) into a
// bytecode block, the inverse of Print.
func ParseString(filename, src string) (*value.Block, error) {
	f, err := builder.ParseString(filename, src)
	if err != nil {
		reportParseError(src, err)
		return nil, err
	}
	return buildBlock(f)
}

func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}
	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"
	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}

func buildBlock(f *File) (*value.Block, error) {
	consts := make([]value.Datum[value.Reg8, value.Reg8, value.Reg8], len(f.Consts))
	for i, cd := range f.Consts {
		if int(cd.Index) != i {
			return nil, fmt.Errorf("constant %d declared out of order (saw index %d)", i, cd.Index)
		}
		d, err := buildConst(cd.Value)
		if err != nil {
			return nil, err
		}
		consts[i] = d
	}
	instrs := make([]value.BytecodeInstruction, len(f.Instrs))
	for i, line := range f.Instrs {
		ins, err := buildInstr(line)
		if err != nil {
			return nil, err
		}
		instrs[i] = ins
	}
	return &value.Block{Instructions: instrs, Constants: consts}, nil
}

func buildConst(cv *ConstVal) (value.Datum[value.Reg8, value.Reg8, value.Reg8], error) {
	var zero value.Datum[value.Reg8, value.Reg8, value.Reg8]
	switch {
	case cv.Nil:
		return value.NilDatum[value.Reg8, value.Reg8, value.Reg8](), nil
	case cv.BoolTok != nil:
		return value.BoolDatum[value.Reg8, value.Reg8, value.Reg8](*cv.BoolTok == "true"), nil
	case cv.CharTok != nil:
		r, err := parseCharLiteral(*cv.CharTok)
		if err != nil {
			return zero, err
		}
		return value.CharDatum[value.Reg8, value.Reg8, value.Reg8](r), nil
	case cv.NumTok != nil:
		n, err := parseNumberLiteral(*cv.NumTok)
		if err != nil {
			return zero, err
		}
		return value.NumberDatum[value.Reg8, value.Reg8, value.Reg8](n), nil
	case cv.SymTok != nil:
		return value.SymbolDatum[value.Reg8, value.Reg8, value.Reg8](uint16(*cv.SymTok)), nil
	case cv.StrTok != nil:
		s, err := strconv.Unquote(*cv.StrTok)
		if err != nil {
			return zero, fmt.Errorf("malformed string literal %s: %w", *cv.StrTok, err)
		}
		return value.StrDatum[value.Reg8, value.Reg8, value.Reg8](s), nil
	case cv.CoreTok != nil:
		return value.CoreFnDatum[value.Reg8, value.Reg8, value.Reg8](uint16(*cv.CoreTok)), nil
	case cv.List != nil:
		items := make([]value.Datum[value.Reg8, value.Reg8, value.Reg8], len(cv.List.Items))
		for i, it := range cv.List.Items {
			d, err := buildConst(it)
			if err != nil {
				return zero, err
			}
			items[i] = d
		}
		return value.ListDatum[value.Reg8, value.Reg8, value.Reg8](items), nil
	case cv.Fn != nil:
		block, err := buildBlock(cv.Fn.Body)
		if err != nil {
			return zero, err
		}
		fn := &value.CompositeFunction[value.Reg8, value.Reg8, value.Reg8]{
			Args:  value.FixedArity(uint8(cv.Fn.Arity)),
			Block: block,
		}
		return value.CompositeFnDatum[value.Reg8, value.Reg8, value.Reg8](fn), nil
	default:
		return zero, fmt.Errorf("empty constant value")
	}
}

func buildInstr(line *InstrLine) (value.BytecodeInstruction, error) {
	op, ok := instr.LookupOp(line.Mnemonic)
	if !ok {
		return value.BytecodeInstruction{}, fmt.Errorf("unknown mnemonic %q", line.Mnemonic)
	}
	ins := value.BytecodeInstruction{Op: op}
	if line.OutReg != nil {
		r, err := parseRegister(*line.OutReg)
		if err != nil {
			return ins, err
		}
		ins.Out, ins.HasOut = r, true
	}
	if line.ReplReg != nil {
		r, err := parseRegister(*line.ReplReg)
		if err != nil {
			return ins, err
		}
		ins.Repl, ins.HasRepl = r, true
	}
	if len(line.In) > 2 {
		return ins, fmt.Errorf("%s: at most two input registers, got %d", line.Mnemonic, len(line.In))
	}
	for i, reg := range line.In {
		r, err := parseRegister(reg)
		if err != nil {
			return ins, err
		}
		ins.In[i] = r
	}
	ins.NIn = uint8(len(line.In))
	if line.Aux != nil {
		ins.Aux = uint32(*line.Aux)
	}
	return ins, nil
}

func parseRegister(s string) (value.Reg8, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "r"), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("malformed register %q: %w", s, err)
	}
	return value.Reg8(n), nil
}

func parseCharLiteral(s string) (rune, error) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return 0, fmt.Errorf("malformed char literal %q", s)
	}
	r, _, tail, err := strconv.UnquoteChar(s[1:len(s)-1], '\'')
	if err != nil || tail != "" {
		return 0, fmt.Errorf("malformed char literal %q", s)
	}
	return r, nil
}

func parseNumberLiteral(s string) (value.Number, error) {
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Number{}, fmt.Errorf("malformed float literal %q: %w", s, err)
		}
		return value.Float(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return value.Number{}, fmt.Errorf("malformed int literal %q: %w", s, err)
	}
	return value.Int(i), nil
}
