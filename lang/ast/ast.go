// Package ast defines the SysY abstract syntax tree. Building this tree
// (lexing and parsing SysY source) is out of scope for this module: callers
// construct a *CompUnit directly, the same way a parser would, and hand it to
// lang/irgen.
package ast

// FuncType is the declared return type of a function.
type FuncType int

const (
	Int FuncType = iota
	Void
)

func (t FuncType) String() string {
	if t == Void {
		return "void"
	}
	return "int"
}

// CompUnit is the root of a SysY translation unit: an ordered sequence of
// global declarations and function definitions. Order matters: a global
// const's initializer may reference an earlier global const, and name
// resolution for globals proceeds top to bottom.
type CompUnit struct {
	Items []CompItem
}

// CompItem is a top-level item: a Decl or a *FuncDef.
type CompItem interface {
	compItem()
}

func (*ConstDecl) compItem() {}
func (*VarDecl) compItem()   {}
func (*FuncDef) compItem()   {}

// FuncDef is a function definition.
type FuncDef struct {
	RetType FuncType
	Name    string
	Params  []*FuncParam
	Body    *Block
}

// FuncParam is one formal parameter. A scalar int parameter has Array
// false and a nil Dims. An array parameter elides its first dimension (it
// decays to a pointer, per the language rule that the first `[]` of a
// parameter carries no bound); Dims holds the remaining, non-elided
// dimensions in declaration order.
type FuncParam struct {
	Name  string
	Array bool
	Dims  []Exp
}

// Block is a brace-delimited sequence of declarations and statements. Each
// Block introduces a fresh scope.
type Block struct {
	Items []BlockItem
}

// BlockItem is either a Decl or a Stmt.
type BlockItem interface {
	blockItem()
}

func (*ConstDecl) blockItem() {}
func (*VarDecl) blockItem()   {}

// Decl is implemented by ConstDecl and VarDecl.
type Decl interface {
	CompItem
	BlockItem
	decl()
}

func (*ConstDecl) decl() {}
func (*VarDecl) decl()   {}

// ConstDecl is `const int a = 1, b[2] = {...};`.
type ConstDecl struct {
	Defs []*ConstDef
}

// ConstDef is one `name[dims] = init` binding inside a ConstDecl. Dims is
// empty for a scalar. Init is always present for a const (the language
// requires it) and every leaf of Init must be evaluable at compile time.
type ConstDef struct {
	Name string
	Dims []Exp
	Init ConstInitVal
}

// ConstInitVal is either a scalar ConstExp (ConstInitValExp) or a nested
// brace list (ConstInitValList).
type ConstInitVal interface {
	constInitVal()
}

type ConstInitValExp struct{ Exp Exp }
type ConstInitValList struct{ Items []ConstInitVal }

func (*ConstInitValExp) constInitVal()  {}
func (*ConstInitValList) constInitVal() {}

// VarDecl is `int a = 1, b[2];`.
type VarDecl struct {
	Defs []*VarDef
}

// VarDef is one `name[dims]` or `name[dims] = init` binding inside a
// VarDecl. Init is nil when there is no initializer.
type VarDef struct {
	Name string
	Dims []Exp
	Init InitVal
}

// InitVal mirrors ConstInitVal but its leaves need not be compile-time
// constants when the definition is local; they do when it is global (see
// lang/irgen's genGlobalVarDecl).
type InitVal interface {
	initVal()
}

type InitValExp struct{ Exp Exp }
type InitValList struct{ Items []InitVal }

func (*InitValExp) initVal()  {}
func (*InitValList) initVal() {}
