// Package irgen implements the IR emitter (component F): it walks a
// *ast.CompUnit and writes Koopa textual IR. It is the largest component
// per the language spec and is split across this file (orchestration,
// library decls, function prologue/epilogue), decl.go (global/local
// declarations and array types), stmt.go (statement lowering) and expr.go
// plus lval.go (expression and addressing lowering).
//
// Dead-code handling follows one rule throughout: Emitter.terminated tracks
// whether the current basic block has already been closed by a
// terminator (ret/br/jump). Once it is set, genBlock lowers no further
// items of the enclosing blocks, and if/while lowering omits its trailing
// jump; opening a new label always clears it, so code after a control
// structure still gets a syntactically valid (if unreachable) block
// instead of requiring a separate liveness analysis pass.
package irgen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/irctx"
	"github.com/mna/sysyc/lang/koopa"
	"github.com/mna/sysyc/lang/symtab"
)

// libFunc describes one predeclared SysY runtime function.
type libFunc struct {
	name    string
	params  []string // Koopa parameter types
	retType string   // "" for void
}

var libFuncs = []libFunc{
	{"getint", nil, "i32"},
	{"getch", nil, "i32"},
	{"getarray", []string{"*i32"}, "i32"},
	{"putint", []string{"i32"}, ""},
	{"putch", []string{"i32"}, ""},
	{"putarray", []string{"i32", "*i32"}, ""},
	{"starttime", nil, ""},
	{"stoptime", nil, ""},
}

// Emitter holds the state threaded through one CompUnit's IR emission.
type Emitter struct {
	w   *bufio.Writer
	ctx *irctx.Context

	curRetType  ast.FuncType
	terminated  bool
	firstInFile bool
}

// Generate writes the Koopa textual IR for cu to w.
func Generate(w io.Writer, cu *ast.CompUnit) {
	e := &Emitter{w: bufio.NewWriter(w), ctx: irctx.New()}
	e.genProgram(cu)
	if err := e.w.Flush(); err != nil {
		ice.Raise("irgen: flush: %v", err)
	}
}

func (e *Emitter) genProgram(cu *ast.CompUnit) {
	for _, lf := range libFuncs {
		e.emitf("decl @%s(%s)%s", lf.name, joinTypes(lf.params), retSuffix(lf.retType))
		e.ctx.Table.Insert(lf.name, &symtab.Symbol{Kind: symtab.KindFunc, FuncRetType: int(libRetType(lf.retType))})
	}
	e.emitf("")

	// Pre-scan: register every function's signature before lowering any
	// body, so forward references and recursion resolve regardless of
	// declaration order.
	for _, item := range cu.Items {
		if fd, ok := item.(*ast.FuncDef); ok {
			e.ctx.Table.Insert(fd.Name, &symtab.Symbol{Kind: symtab.KindFunc, FuncRetType: int(fd.RetType)})
		}
	}

	for _, item := range cu.Items {
		switch it := item.(type) {
		case *ast.ConstDecl:
			e.genGlobalConstDecl(it)
		case *ast.VarDecl:
			e.genGlobalVarDecl(it)
		case *ast.FuncDef:
			e.genFuncDef(it)
		default:
			ice.Raise("irgen: unexpected top-level item %T", item)
		}
	}
}

func libRetType(t string) ast.FuncType {
	if t == "" {
		return ast.Void
	}
	return ast.Int
}

func retSuffix(t string) string {
	if t == "" {
		return ""
	}
	return ": " + t
}

func joinTypes(ts []string) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t
	}
	return s
}

func (e *Emitter) genFuncDef(f *ast.FuncDef) {
	e.curRetType = f.RetType

	e.ctx.PushScope() // parameter frame
	paramNames := make([]string, len(f.Params))
	paramTypes := make([]string, len(f.Params))
	for i, p := range f.Params {
		pname := fmt.Sprintf("%%%s_param", p.Name)
		paramNames[i] = pname
		if p.Array {
			dims := e.evalConstDims(p.Dims)
			paramTypes[i] = koopa.ParamPointerType(dims)
			e.ctx.Table.Insert(p.Name, &symtab.Symbol{Kind: symtab.KindArray, Dims: dims, IsPointerParam: true})
		} else {
			paramTypes[i] = "i32"
			e.ctx.Table.Insert(p.Name, &symtab.Symbol{Kind: symtab.KindVar})
		}
	}

	header := "fun @" + f.Name + "("
	for i := range f.Params {
		if i > 0 {
			header += ", "
		}
		header += paramNames[i] + ": " + paramTypes[i]
	}
	header += ")" + retSuffix(funcTypeKoopa(f.RetType)) + " {"
	e.emitf(header)

	e.label("%entry")
	for i, p := range f.Params {
		mangled := e.ctx.Mangle(p.Name)
		if p.Array {
			e.emitf("  %s = alloc %s", mangled, paramTypes[i])
		} else {
			e.emitf("  %s = alloc i32", mangled)
		}
		e.emitf("  store %s, %s", paramNames[i], mangled)
	}

	e.genBlock(f.Body)

	if !e.terminated {
		if f.RetType == ast.Void {
			e.emitf("  ret")
		} else {
			e.emitf("  ret 0")
		}
		e.terminated = true
	}

	e.ctx.PopScope()
	e.emitf("}")
	e.emitf("")
}

func funcTypeKoopa(t ast.FuncType) string {
	if t == ast.Void {
		return ""
	}
	return "i32"
}

// evalConstDims folds every dimension expression to a constant, fatal if
// any isn't (array dimensions are always required to be compile-time
// constants by the language).
func (e *Emitter) evalConstDims(dims []ast.Exp) []int32 {
	out := make([]int32, len(dims))
	for i, d := range dims {
		out[i] = e.mustConst(d)
	}
	return out
}

func (e *Emitter) emitf(format string, args ...any) {
	if _, err := fmt.Fprintf(e.w, format+"\n", args...); err != nil {
		ice.Raise("irgen: write: %v", err)
	}
}

// label opens a new basic block, unconditionally (even if unreachable),
// and clears the terminated flag.
func (e *Emitter) label(name string) {
	e.emitf(name + ":")
	e.terminated = false
}

// nextID returns a fresh "%N" temp id.
func (e *Emitter) nextID() string {
	return fmt.Sprintf("%%%d", e.ctx.NextTempID())
}
