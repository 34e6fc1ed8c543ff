package irgen

import (
	"fmt"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/consteval"
	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/symtab"
)

var binOpName = map[ast.BinOp]string{
	ast.Add: "add", ast.Sub: "sub", ast.Mul: "mul", ast.Div: "div", ast.Mod: "mod",
	ast.Lt: "lt", ast.Gt: "gt", ast.Le: "le", ast.Ge: "ge", ast.Eq: "eq", ast.Ne: "ne",
}

// genExp lowers exp and returns the id ("%N") of the temp holding its
// value. The first action is always an attempt at constant folding: on
// success the literal idiom `%k = add <c>, 0` is emitted, guaranteeing
// every expression — including a bare integer literal — yields a temp id
// rather than sometimes returning a bare operand text.
func (e *Emitter) genExp(exp ast.Exp) string {
	if v, ok := consteval.Eval(exp, e.ctx.Table); ok {
		id := e.nextID()
		e.emitf("  %s = add %d, 0", id, v)
		return id
	}

	switch x := exp.(type) {
	case *ast.BinaryExp:
		switch x.Op {
		case ast.And:
			return e.genAnd(x)
		case ast.Or:
			return e.genOr(x)
		default:
			l := e.genExp(x.Left)
			r := e.genExp(x.Right)
			id := e.nextID()
			e.emitf("  %s = %s %s, %s", id, binOpName[x.Op], l, r)
			return id
		}

	case *ast.UnaryExp:
		switch x.Op {
		case ast.Pos:
			return e.genExp(x.X)
		case ast.Neg:
			v := e.genExp(x.X)
			id := e.nextID()
			e.emitf("  %s = sub 0, %s", id, v)
			return id
		case ast.Not:
			v := e.genExp(x.X)
			id := e.nextID()
			e.emitf("  %s = eq 0, %s", id, v)
			return id
		}
		ice.Raise("irgen: unknown unary op %v", x.Op)

	case *ast.CallExp:
		return e.genCall(x)

	case *ast.LValExp:
		return e.genLValRead(x.LVal)

	default:
		ice.Raise("irgen: unexpected expression %T", exp)
	}
	return ""
}

func (e *Emitter) genAnd(x *ast.BinaryExp) string {
	id := e.ctx.NextAndOrID()
	result := fmt.Sprintf("@and_result_%d", id)
	e.emitf("  %s = alloc i32", result)
	e.emitf("  store 0, %s", result)

	lhs := e.genExp(x.Left)
	lhsNe := fmt.Sprintf("%%lhs_ne_0_%d", id)
	e.emitf("  %s = ne %s, 0", lhsNe, lhs)
	calcRHS := labelName("calc_rhs", id)
	end := labelName("and_end", id)
	e.emitf("  br %s, %s, %s", lhsNe, calcRHS, end)

	e.label(calcRHS)
	rhs := e.genExp(x.Right)
	rhsNe := fmt.Sprintf("%%rhs_ne_0_%d", id)
	e.emitf("  %s = ne %s, 0", rhsNe, rhs)
	e.emitf("  store %s, %s", rhsNe, result)
	e.emitf("  jump %s", end)
	e.terminated = true

	e.label(end)
	res := e.nextID()
	e.emitf("  %s = load %s", res, result)
	return res
}

func (e *Emitter) genOr(x *ast.BinaryExp) string {
	id := e.ctx.NextAndOrID()
	result := fmt.Sprintf("@or_result_%d", id)
	e.emitf("  %s = alloc i32", result)
	e.emitf("  store 1, %s", result)

	lhs := e.genExp(x.Left)
	lhsEq := fmt.Sprintf("%%lhs_eq_0_%d", id)
	e.emitf("  %s = eq 0, %s", lhsEq, lhs)
	calcRHS := labelName("calc_rhs", id)
	end := labelName("or_end", id)
	e.emitf("  br %s, %s, %s", lhsEq, calcRHS, end)

	e.label(calcRHS)
	rhs := e.genExp(x.Right)
	rhsNe := fmt.Sprintf("%%rhs_ne_0_%d", id)
	e.emitf("  %s = ne %s, 0", rhsNe, rhs)
	e.emitf("  store %s, %s", rhsNe, result)
	e.emitf("  jump %s", end)
	e.terminated = true

	e.label(end)
	res := e.nextID()
	e.emitf("  %s = load %s", res, result)
	return res
}

func (e *Emitter) genCall(x *ast.CallExp) string {
	sym, _ := e.ctx.Lookup(x.Name)
	if sym.Kind != symtab.KindFunc {
		ice.Raise("irgen: call to non-function %s", x.Name)
	}
	args := make([]string, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.genExp(a)
	}
	argList := ""
	for i, a := range args {
		if i > 0 {
			argList += ", "
		}
		argList += a
	}
	if ast.FuncType(sym.FuncRetType) == ast.Void {
		e.emitf("  call @%s(%s)", x.Name, argList)
		return ""
	}
	id := e.nextID()
	e.emitf("  %s = call @%s(%s)", id, x.Name, argList)
	return id
}
