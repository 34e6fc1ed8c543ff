package consteval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/sysyc/lang/ast"
	"github.com/mna/sysyc/lang/consteval"
	"github.com/mna/sysyc/lang/symtab"
)

func lit(v int32) ast.Exp { return &ast.IntLit{Val: v} }

func TestFoldArithmetic(t *testing.T) {
	tbl := symtab.New()
	exp := &ast.BinaryExp{Op: ast.Add, Left: lit(2), Right: &ast.BinaryExp{Op: ast.Mul, Left: lit(3), Right: lit(4)}}
	v, ok := consteval.Eval(exp, tbl)
	require.True(t, ok)
	assert.Equal(t, int32(14), v)
}

func TestFoldConstIdent(t *testing.T) {
	tbl := symtab.New()
	tbl.Insert("N", &symtab.Symbol{Kind: symtab.KindConst, ConstVal: 10})
	exp := &ast.LValExp{LVal: &ast.LVal{Name: "N"}}
	v, ok := consteval.Eval(exp, tbl)
	require.True(t, ok)
	assert.Equal(t, int32(10), v)
}

func TestVarIsNotFoldable(t *testing.T) {
	tbl := symtab.New()
	tbl.Insert("x", &symtab.Symbol{Kind: symtab.KindVar})
	exp := &ast.LValExp{LVal: &ast.LVal{Name: "x"}}
	_, ok := consteval.Eval(exp, tbl)
	assert.False(t, ok)
}

func TestIndexedConstArrayIsNotFoldable(t *testing.T) {
	tbl := symtab.New()
	tbl.Insert("a", &symtab.Symbol{Kind: symtab.KindArray, Dims: []int32{3}})
	exp := &ast.LValExp{LVal: &ast.LVal{Name: "a", Indices: []ast.Exp{lit(0)}}}
	_, ok := consteval.Eval(exp, tbl)
	assert.False(t, ok)
}

func TestShortCircuitOpsFoldEagerly(t *testing.T) {
	tbl := symtab.New()
	exp := &ast.BinaryExp{Op: ast.Or, Left: lit(1), Right: lit(0)}
	v, ok := consteval.Eval(exp, tbl)
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestCallIsNotFoldable(t *testing.T) {
	tbl := symtab.New()
	exp := &ast.CallExp{Name: "f"}
	_, ok := consteval.Eval(exp, tbl)
	assert.False(t, ok)
}

func TestDivByZeroNotFolded(t *testing.T) {
	tbl := symtab.New()
	exp := &ast.BinaryExp{Op: ast.Div, Left: lit(1), Right: lit(0)}
	_, ok := consteval.Eval(exp, tbl)
	assert.False(t, ok)
}
