package irgen

import (
	"strconv"

	"github.com/mna/sysyc/lang/arraylit"
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/consteval"
	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/koopa"
	"github.com/mna/sysyc/lang/symtab"
)

func (e *Emitter) mustConst(exp ast.Exp) int32 {
	return consteval.MustEval(exp, e.ctx.Table)
}

// ---- global declarations ----

func (e *Emitter) genGlobalConstDecl(d *ast.ConstDecl) {
	for _, def := range d.Defs {
		dims := e.evalConstDims(def.Dims)
		if len(dims) == 0 {
			v := e.mustConst(constInitExp(def.Init))
			e.ctx.Table.Insert(def.Name, &symtab.Symbol{Kind: symtab.KindConst, ConstVal: v})
			continue
		}
		// Const arrays still get storage: they may be read with a
		// non-constant index, which requires a load from real memory.
		e.ctx.Table.Insert(def.Name, &symtab.Symbol{Kind: symtab.KindArray, Dims: dims})
		values := arraylit.Flatten(flattenConstItems(def.Init), dims,
			asListConst, e.scalarConst, zeroLit)
		mangled := e.ctx.Mangle(def.Name)
		typ := koopa.ArrayType("i32", dims)
		e.emitf("global %s = alloc %s, %s", mangled, typ, arraylit.RenderAggregate(values, dims))
	}
}

func (e *Emitter) genGlobalVarDecl(d *ast.VarDecl) {
	for _, def := range d.Defs {
		dims := e.evalConstDims(def.Dims)
		e.ctx.Table.Insert(def.Name, &symtab.Symbol{Kind: symVarKind(dims), Dims: dims})
		mangled := e.ctx.Mangle(def.Name)
		if len(dims) == 0 {
			init := "zeroinit"
			if def.Init != nil {
				init = strconv.Itoa(int(e.mustConst(varInitExp(def.Init))))
			}
			e.emitf("global %s = alloc i32, %s", mangled, init)
			continue
		}
		typ := koopa.ArrayType("i32", dims)
		init := "zeroinit"
		if def.Init != nil {
			values := arraylit.Flatten(flattenVarItems(def.Init), dims, asListVar, e.scalarVarConst, zeroLit)
			init = arraylit.RenderAggregate(values, dims)
		}
		e.emitf("global %s = alloc %s, %s", mangled, typ, init)
	}
}

func symVarKind(dims []int32) symtab.Kind {
	if len(dims) == 0 {
		return symtab.KindVar
	}
	return symtab.KindArray
}

// ---- local declarations ----

func (e *Emitter) genLocalConstDecl(d *ast.ConstDecl) {
	for _, def := range d.Defs {
		dims := e.evalConstDims(def.Dims)
		if len(dims) == 0 {
			v := e.mustConst(constInitExp(def.Init))
			e.ctx.Table.Insert(def.Name, &symtab.Symbol{Kind: symtab.KindConst, ConstVal: v})
			continue
		}
		e.ctx.Table.Insert(def.Name, &symtab.Symbol{Kind: symtab.KindArray, Dims: dims})
		mangled := e.ctx.Mangle(def.Name)
		typ := koopa.ArrayType("i32", dims)
		e.emitf("  %s = alloc %s", mangled, typ)
		values := arraylit.Flatten(flattenConstItems(def.Init), dims, asListConst, e.scalarConst, zeroLit)
		e.storeFlatArray(mangled, dims, values)
	}
}

func (e *Emitter) genLocalVarDecl(d *ast.VarDecl) {
	for _, def := range d.Defs {
		dims := e.evalConstDims(def.Dims)
		e.ctx.Table.Insert(def.Name, &symtab.Symbol{Kind: symVarKind(dims), Dims: dims})
		mangled := e.ctx.Mangle(def.Name)
		if len(dims) == 0 {
			e.emitf("  %s = alloc i32", mangled)
			if def.Init != nil {
				v := e.genExp(varInitExp(def.Init))
				e.emitf("  store %s, %s", v, mangled)
			}
			continue
		}
		typ := koopa.ArrayType("i32", dims)
		e.emitf("  %s = alloc %s", mangled, typ)
		if def.Init != nil {
			// Local array leaves are lowered like any other expression (each
			// yields a fresh SSA temp, or the literal "0" for padding), so
			// flattening and IR emission happen in the same pass.
			values := arraylit.Flatten(flattenVarItems(def.Init), dims, asListVar, e.scalarVarGen, zeroLit)
			e.storeFlatArray(mangled, dims, values)
		}
	}
}

// storeFlatArray emits the store sequence for a fully flattened, row-major
// initializer: one getelemptr chain + store per element.
func (e *Emitter) storeFlatArray(base string, dims []int32, values []string) {
	idx := make([]int, len(dims))
	for _, v := range values {
		addr := base
		for d := range dims {
			id := e.nextID()
			e.emitf("  %s = getelemptr %s, %d", id, addr, idx[d])
			addr = id
		}
		e.emitf("  store %s, %s", v, addr)
		// odometer increment over idx, row-major (rightmost fastest)
		for d := len(dims) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < int(dims[d]) {
				break
			}
			idx[d] = 0
		}
	}
}

func zeroLit() string { return "0" }

// ---- ConstInitVal / InitVal tree adapters for arraylit.Flatten ----

func constInitExp(v ast.ConstInitVal) ast.Exp {
	e, ok := v.(*ast.ConstInitValExp)
	if !ok {
		ice.Raise("irgen: expected scalar const initializer")
	}
	return e.Exp
}

func varInitExp(v ast.InitVal) ast.Exp {
	e, ok := v.(*ast.InitValExp)
	if !ok {
		ice.Raise("irgen: expected scalar initializer")
	}
	return e.Exp
}

func flattenConstItems(v ast.ConstInitVal) []ast.ConstInitVal {
	l, ok := v.(*ast.ConstInitValList)
	if !ok {
		ice.Raise("irgen: expected brace-list const initializer")
	}
	if len(l.Items) == 0 {
		ice.Raise("irgen: empty aggregate initializer {} is not allowed")
	}
	return l.Items
}

func flattenVarItems(v ast.InitVal) []ast.InitVal {
	l, ok := v.(*ast.InitValList)
	if !ok {
		ice.Raise("irgen: expected brace-list initializer")
	}
	if len(l.Items) == 0 {
		ice.Raise("irgen: empty aggregate initializer {} is not allowed")
	}
	return l.Items
}

func asListConst(it ast.ConstInitVal) ([]ast.ConstInitVal, bool) {
	l, ok := it.(*ast.ConstInitValList)
	if !ok {
		return nil, false
	}
	return l.Items, true
}

func asListVar(it ast.InitVal) ([]ast.InitVal, bool) {
	l, ok := it.(*ast.InitValList)
	if !ok {
		return nil, false
	}
	return l.Items, true
}

func (e *Emitter) scalarConst(it ast.ConstInitVal) string {
	return strconv.Itoa(int(e.mustConst(constInitExp(it))))
}

// scalarVarConst folds a global variable array's leaf to a constant: all
// global initializers must be compile-time constants in this language.
func (e *Emitter) scalarVarConst(it ast.InitVal) string {
	return strconv.Itoa(int(e.mustConst(varInitExp(it))))
}

// scalarVarGen lowers a local variable array's leaf like any other
// expression, returning the SSA temp id that holds its value.
func (e *Emitter) scalarVarGen(it ast.InitVal) string {
	return e.genExp(varInitExp(it))
}
