package asmtext

// File is one assembled block: an optional constant pool followed by its
// instruction stream. It is also the shape a composite-fn constant's body
// nests as (FnVal.Body), so lambda bodies serialize as ordinary nested
// blocks rather than a separate sub-grammar.
type File struct {
	Consts []*ConstDecl `( "." "constants" @@* )?`
	Instrs []*InstrLine `"." "code" @@*`
}

// ConstDecl is one `index: value` line of a constant pool. Index must
// match the declaration's position in the pool (checked in parser.go,
// since participle has no way to express "equal to len(Consts) so far" in
// a grammar tag); writing it explicitly keeps a hand-edited file
// self-checking instead of silently reordering on typo.
type ConstDecl struct {
	Index uint64    `@Int ":"`
	Value *ConstVal `@@`
}

// ConstVal covers exactly the Datum kind subset spec.md 3 allows as a
// literal/constant-pool value (value.Datum's doc comment): collections
// beyond List, partial applications, coroutine handles, external
// functions and error values have no literal syntax and so no case here.
type ConstVal struct {
	Nil     bool     `(  @"nil"`
	BoolTok *string  ` | "bool" @( "true" | "false" )`
	CharTok *string  ` | "char" @Char`
	NumTok  *string  ` | "num" ( @Float | @Int )`
	SymTok  *uint64  ` | "sym" @Int`
	StrTok  *string  ` | "str" @Str`
	CoreTok *uint64  ` | "core-fn" @Int`
	List    *ListVal ` | @@`
	Fn      *FnVal   ` | @@ )`
}

// ListVal is a `list [ ... ]` literal, each element itself a ConstVal so
// lists of lists nest without any extra grammar.
type ListVal struct {
	Items []*ConstVal `"list" "[" [ @@ ( "," @@ )* ] "]"`
}

// FnVal is a `fn arity=N { ... }` composite-function constant: an arity
// plus a nested block, matching value.CompositeFunction exactly.
type FnVal struct {
	Arity uint64 `"fn" "arity" "=" @Int "{"`
	Body  *File  `@@ "}"`
}

// InstrLine is one `mnemonic [out=rN|repl=rN] [in=rA[,rB]] [aux=N]` line.
// Field presence, not position, carries the instruction's shape: opToCoreFn
// and the catalog in instr.Instruction never set both HasOut and HasRepl,
// so at most one of OutReg/ReplReg is ever populated by a real program.
type InstrLine struct {
	Mnemonic string   `@Ident`
	OutReg   *string  `( "out" "=" @Register`
	ReplReg  *string  `| "repl" "=" @Register )?`
	In       []string `( "in" "=" @Register ( "," @Register )? )?`
	Aux      *int64   `( "aux" "=" @Int )?`
}
