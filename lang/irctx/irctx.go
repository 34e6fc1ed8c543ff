// Package irctx implements the IR context (component C): the bookkeeping
// lang/irgen needs while lowering a function — a symbol table mirrored by a
// parallel scope-id stack for name mangling, monotonically increasing id
// counters for temporaries and labels, and a loop stack for break/continue
// targets. Grounded on original_source/src/ds_for_ir.rs's GenerateIrInfo,
// translated from its Vec<SymbolTable>/block_id pair into a single
// symtab.Table plus a parallel []int.
package irctx

import (
	"fmt"

	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/symtab"
)

// Context is the mutable state threaded through one compilation unit's IR
// emission. A single Context is created per CompUnit and lives for the
// whole file: scope ids are never reused, even across different functions,
// matching ds_for_ir.rs's single monotonic block_id counter.
type Context struct {
	Table *symtab.Table

	scopeIDs    []int // parallel to Table's frame stack; scopeIDs[0] == 0
	nextScopeID int

	nextTempID  int
	nextIfID    int
	nextAndOrID int
	nextWhileID int

	loopStack []int // while_ids of enclosing loops, innermost last
}

// New returns a Context with the global scope (id 0) already open.
func New() *Context {
	return &Context{
		Table:       symtab.New(),
		scopeIDs:    []int{0},
		nextScopeID: 1,
	}
}

// PushScope opens a new symtab frame and assigns it a fresh scope id.
func (c *Context) PushScope() {
	c.Table.Push()
	c.scopeIDs = append(c.scopeIDs, c.nextScopeID)
	c.nextScopeID++
}

// PopScope closes the innermost frame.
func (c *Context) PopScope() {
	c.Table.Pop()
	c.scopeIDs = c.scopeIDs[:len(c.scopeIDs)-1]
}

// NextTempID returns a fresh, file-unique id for a %k temporary.
func (c *Context) NextTempID() int {
	id := c.nextTempID
	c.nextTempID++
	return id
}

// NextIfID, NextAndOrID and NextWhileID return fresh ids used to build
// unique label names for, respectively, if/else, short-circuit && / ||, and
// while-loop control flow.
func (c *Context) NextIfID() int    { id := c.nextIfID; c.nextIfID++; return id }
func (c *Context) NextAndOrID() int { id := c.nextAndOrID; c.nextAndOrID++; return id }
func (c *Context) NextWhileID() int { id := c.nextWhileID; c.nextWhileID++; return id }

// PushLoop registers whileID as the innermost active loop.
func (c *Context) PushLoop(whileID int) { c.loopStack = append(c.loopStack, whileID) }

// PopLoop removes the innermost active loop.
func (c *Context) PopLoop() { c.loopStack = c.loopStack[:len(c.loopStack)-1] }

// CurrentLoop returns the innermost active loop's id. It is fatal to call
// this outside of a loop body; that can only happen for a break/continue
// that a well-formed SysY program would never contain.
func (c *Context) CurrentLoop() int {
	if len(c.loopStack) == 0 {
		ice.Raise("break/continue outside of a loop")
	}
	return c.loopStack[len(c.loopStack)-1]
}

// Mangle returns the Koopa identifier for name as currently bound: "@name"
// for a function (frame irrelevant), "@GLOBAL_name" for a symbol bound in
// the global frame, "@LOCAL_name_<scope>" otherwise, where <scope> is the
// scope id of the frame the symbol was actually found in (not the current
// scope).
func (c *Context) Mangle(name string) string {
	sym, depth := c.Table.MustLookup(name)
	if sym.Kind == symtab.KindFunc {
		return "@" + name
	}
	if depth == 0 {
		return "@GLOBAL_" + name
	}
	return fmt.Sprintf("@LOCAL_%s_%d", name, c.scopeIDs[depth])
}

// Lookup is a thin pass-through to the underlying symbol table, for callers
// (lang/irgen) that need the Symbol itself in addition to its mangled name.
func (c *Context) Lookup(name string) (*symtab.Symbol, int) {
	return c.Table.MustLookup(name)
}
