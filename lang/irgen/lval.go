package irgen

import (
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/symtab"
)

// lvalAddr lowers lv to an address and reports whether it is fully
// indexed: every one of the symbol's declared dimensions (for a scalar
// variable, trivially zero dimensions) had an explicit index applied.
//
// A fully indexed LVal addresses a scalar i32 — the normal case for
// assignment targets and for reading a scalar array element. A *not*
// fully indexed array LVal addresses a pointer to the remaining
// (possibly zero-dimensional) sub-array: this is the array-to-pointer
// decay C performs implicitly, and it is exactly the value a call
// argument of pointer type expects, so it is never loaded. The decay is
// realized as one extra getelemptr/getptr step with index 0 beyond
// whatever explicit indices were given — even zero of them, e.g. passing
// a bare array name strips exactly one dimension.
func (e *Emitter) lvalAddr(lv *ast.LVal) (addr string, fullyIndexed bool) {
	sym, _ := e.ctx.Lookup(lv.Name)
	switch sym.Kind {
	case symtab.KindVar, symtab.KindConst:
		if len(lv.Indices) != 0 {
			ice.Raise("irgen: indexing a non-array: %s", lv.Name)
		}
		return e.ctx.Mangle(lv.Name), true

	case symtab.KindArray:
		mangled := e.ctx.Mangle(lv.Name)
		cur := mangled
		first := true
		if sym.IsPointerParam {
			// The parameter's own slot holds the incoming pointer value; it
			// must be loaded before it can be used as a getptr/getelemptr base.
			id := e.nextID()
			e.emitf("  %s = load %s", id, mangled)
			cur = id
		}
		step := func(idxText string) {
			id := e.nextID()
			if first && sym.IsPointerParam {
				e.emitf("  %s = getptr %s, %s", id, cur, idxText)
			} else {
				e.emitf("  %s = getelemptr %s, %s", id, cur, idxText)
			}
			cur = id
			first = false
		}
		for _, idxExp := range lv.Indices {
			step(e.genExp(idxExp))
		}
		// total is the variable's full dimensionality: for a pointer param,
		// sym.Dims holds only the non-elided dims, so the elided one (already
		// consumed by the getptr step above) counts as one more.
		total := len(sym.Dims)
		if sym.IsPointerParam {
			total++
		}
		if len(lv.Indices) < total {
			step("0")
			return cur, false
		}
		return cur, true

	default:
		ice.Raise("irgen: %s does not name a variable", lv.Name)
		return "", false
	}
}

// genLValRead lowers lv used as an r-value: fully indexed loads and
// returns a fresh scalar temp; a decayed array reference returns its
// address with no load.
func (e *Emitter) genLValRead(lv *ast.LVal) string {
	addr, full := e.lvalAddr(lv)
	if full {
		id := e.nextID()
		e.emitf("  %s = load %s", id, addr)
		return id
	}
	return addr
}
