// Package symtab implements the scoped symbol table (component B): a stack
// of frames, one per enclosing block, mapping identifiers to what they
// denote. It mirrors the teacher's lang/resolver scope-stack (push/pop one
// frame per block, bind rejects re-declaration in the same frame) adapted
// to SysY's flatter binding shapes (const, variable, array, function)
// instead of lvalue/cell/label bindings.
package symtab

import (
	"golang.org/x/exp/slices"

	"github.com/dolthub/swiss"

	"github.com/mna/sysyc/lang/ice"
)

// Kind discriminates the payload of a Symbol.
type Kind int

const (
	KindConst Kind = iota
	KindVar
	KindArray
	KindFunc
)

// Symbol is what an identifier is bound to.
type Symbol struct {
	Kind Kind

	// KindConst: the folded scalar value.
	ConstVal int32

	// KindArray: declared dimensions (outermost first). IsPointerParam is
	// true when this array symbol names a function parameter that decayed
	// to a pointer (its first dimension was elided), which changes how
	// lang/irgen must address its first index (getptr, not getelemptr).
	Dims           []int32
	IsPointerParam bool

	// KindFunc: declared return type, as ast.FuncType, kept as an int to
	// avoid an import cycle with lang/ast (irgen, which does import both,
	// converts at the two call sites that need it).
	FuncRetType int
}

// frame is one scope: the bindings introduced directly in it. bindings uses
// the same swiss-table map the teacher reaches for on its own interpreter
// values, since a frame's lookups are exactly as hot as a running program's
// map accesses; order records insertion order for Names, since swiss.Map
// exposes no ordered iteration.
type frame struct {
	bindings *swiss.Map[string, *Symbol]
	order    []string
}

func newFrame() *frame {
	return &frame{bindings: swiss.NewMap[string, *Symbol](8)}
}

// Table is a stack of frames. The bottom frame (index 0) is the global
// scope; Table starts with it already pushed.
type Table struct {
	frames []*frame
}

// New returns a Table with the global frame already pushed.
func New() *Table {
	t := &Table{}
	t.Push()
	return t
}

// Push opens a new, innermost scope.
func (t *Table) Push() {
	t.frames = append(t.frames, newFrame())
}

// Pop closes the innermost scope. Popping the global frame is a bug in the
// caller, not a recoverable condition.
func (t *Table) Pop() {
	if len(t.frames) <= 1 {
		ice.Raise("symtab: pop of the global frame")
	}
	t.frames = t.frames[:len(t.frames)-1]
}

// Depth returns the index of the innermost frame (0 is global).
func (t *Table) Depth() int { return len(t.frames) - 1 }

// Insert binds name in the innermost frame. Re-declaring a name already
// bound in that same frame is a fatal error: shadowing is only legal from a
// child scope (this resolves the spec's Open Question on duplicate
// declarations in favor of the teacher's own resolver.bind rule rather than
// the original Rust table's silent overwrite; see DESIGN.md).
func (t *Table) Insert(name string, sym *Symbol) {
	f := t.frames[len(t.frames)-1]
	if _, ok := f.bindings.Get(name); ok {
		ice.Raise("already declared in this block: %s", name)
	}
	f.bindings.Put(name, sym)
	f.order = append(f.order, name)
}

// Lookup searches innermost-to-outermost and returns the binding and the
// depth of the frame it was found in (0 is global). ok is false if name is
// unbound anywhere, which is a fatal, not recoverable, condition at every
// call site in this compiler.
func (t *Table) Lookup(name string) (sym *Symbol, depth int, ok bool) {
	for i := len(t.frames) - 1; i >= 0; i-- {
		if s, found := t.frames[i].bindings.Get(name); found {
			return s, i, true
		}
	}
	return nil, 0, false
}

// MustLookup is Lookup but panics with an *ice.Error instead of returning
// ok=false, for the overwhelming majority of call sites where an unbound
// identifier can only mean the AST was built from a program that doesn't
// type-check (out of scope to diagnose more precisely than this).
func (t *Table) MustLookup(name string) (*Symbol, int) {
	sym, depth, ok := t.Lookup(name)
	if !ok {
		ice.Raise("unknown identifier: %s", name)
	}
	return sym, depth
}

// Names returns the identifiers bound directly in the innermost frame, in a
// stable (sorted) order. Used only for debug dumps.
func (t *Table) Names() []string {
	f := t.frames[len(t.frames)-1]
	names := slices.Clone(f.order)
	slices.Sort(names)
	return names
}
