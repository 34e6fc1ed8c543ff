// Package koopa is the in-memory Koopa IR materializer: it parses the
// line-oriented textual IR lang/irgen emits into a *Program lang/asmgen can
// walk for code generation. This is the library named as an external
// collaborator in the language spec's data-flow description; since no such
// Go package exists in the wider ecosystem, it is supplied here, grounded
// on the teacher's lang/compiler/asm.go text-format reader (Asm/Dasm):
// a bufio.Scanner-driven line tokenizer, one parse method per syntactic
// form, with the first malformed line reported by panicking with an
// *ice.Error (no error accumulation).
package koopa

// Program is a whole compilation unit's materialized IR.
type Program struct {
	Decls   []*Decl
	Globals []*Global
	Funcs   []*Function
}

// Decl is a library function forward declaration ("decl @getint(): i32").
type Decl struct {
	Name    string
	Params  []Type
	RetType Type // "" for void
}

// Global is a global variable ("global @GLOBAL_x = alloc i32, 0").
type Global struct {
	Name string
	Type Type // the allocated type, e.g. "i32" or "[i32, 3]"
	Init string
}

// Function is a function definition.
type Function struct {
	Name    string
	Params  []Param
	RetType Type // "" for void
	Blocks  []*BasicBlock
}

// Param is one function parameter.
type Param struct {
	Name string // e.g. "%x", the name as it appears in the function header
	Type Type
}

// BasicBlock is a sequence of instructions ending in a terminator
// (br/jump/ret).
type BasicBlock struct {
	Label string // e.g. "%entry", including the leading '%'
	Insns []*Insn
}

// Insn is one instruction. Result is "" for instructions with no result
// (store, branch, jump, ret, a void call). Type is the result's Koopa type,
// set when Result != "", except for a call to a function whose definition
// appears later in the text, whose Type is left "". Args holds the raw operand texts in
// syntactic order (a value name like "%7"/"@GLOBAL_x", or a decimal integer
// literal).
type Insn struct {
	Result string
	Op     string
	Type   Type
	Args   []string

	// Callee and CallArgs are populated only for Op == "call".
	Callee   string
	CallArgs []string
}
