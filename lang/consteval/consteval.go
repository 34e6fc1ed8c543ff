// Package consteval implements the constant evaluator (component D): a
// partial function folding a SysY expression to an int32 when every leaf it
// reaches is itself foldable. Folding uses plain Go int32 arithmetic, which
// wraps on overflow the same way target RV32 arithmetic does, so folded and
// unfolded (emitted-and-run) results agree.
package consteval

import (
	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/symtab"
)

// Eval attempts to fold exp to a constant using tbl for identifier lookups.
// It returns ok=false, never panicking, when exp is not foldable: a
// function call (its value is never known until run time), a variable or
// array reference, or an LVal with one or more indices (even an index into
// a const array — the array's storage is materialized in IR and read with
// a load, it is never itself a compile-time value, matching the language
// spec's explicit carve-out that indexed LVals are never foldable).
func Eval(exp ast.Exp, tbl *symtab.Table) (int32, bool) {
	switch e := exp.(type) {
	case *ast.IntLit:
		return e.Val, true

	case *ast.LValExp:
		if len(e.LVal.Indices) > 0 {
			return 0, false
		}
		sym, _, ok := tbl.Lookup(e.LVal.Name)
		if !ok || sym.Kind != symtab.KindConst {
			return 0, false
		}
		return sym.ConstVal, true

	case *ast.UnaryExp:
		x, ok := Eval(e.X, tbl)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case ast.Pos:
			return x, true
		case ast.Neg:
			return -x, true
		case ast.Not:
			if x == 0 {
				return 1, true
			}
			return 0, true
		}
		return 0, false

	case *ast.BinaryExp:
		return evalBinary(e, tbl)

	case *ast.CallExp:
		return 0, false

	default:
		return 0, false
	}
}

// MustEval is Eval but fatal (panics with an *ice.Error, via
// github.com/mna/sysyc/lang/ice.Raise) when exp is not foldable, for the
// call sites where the language requires a compile-time constant: array
// dimensions and const initializers.
func MustEval(exp ast.Exp, tbl *symtab.Table) int32 {
	v, ok := Eval(exp, tbl)
	if !ok {
		ice.Raise("expression is not a compile-time constant")
	}
	return v
}

func evalBinary(e *ast.BinaryExp, tbl *symtab.Table) (int32, bool) {
	// && and || are folded eagerly on both operands' integer values (not
	// short-circuited): the language spec is explicit that this differs
	// from the control-flow lowering used when the operands aren't both
	// foldable, matching calc_exp.rs's Eval impl for LAndExp/LOrExp, which
	// also evaluates both sides unconditionally.
	l, ok := Eval(e.Left, tbl)
	if !ok {
		return 0, false
	}
	r, ok := Eval(e.Right, tbl)
	if !ok {
		return 0, false
	}
	switch e.Op {
	case ast.Add:
		return l + r, true
	case ast.Sub:
		return l - r, true
	case ast.Mul:
		return l * r, true
	case ast.Div:
		// A genuinely constant division by zero is not folded here: letting
		// it fall through to ordinary IR emission keeps the "not intercepted,
		// target semantics apply" rule uniform between folded and unfolded
		// divisions, instead of making the compiler itself panic on a
		// div-by-zero Go would also reject.
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case ast.Mod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case ast.Lt:
		return boolInt(l < r), true
	case ast.Gt:
		return boolInt(l > r), true
	case ast.Le:
		return boolInt(l <= r), true
	case ast.Ge:
		return boolInt(l >= r), true
	case ast.Eq:
		return boolInt(l == r), true
	case ast.Ne:
		return boolInt(l != r), true
	case ast.And:
		return boolInt(l != 0 && r != 0), true
	case ast.Or:
		return boolInt(l != 0 || r != 0), true
	}
	return 0, false
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
