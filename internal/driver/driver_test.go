package driver_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/sysyc/internal/driver"
	"github.com/mna/sysyc/lang/ast"
)

// trivialMain builds `int main(){return 0;}`, the same minimal program
// TestReturnLiteral exercises in lang/irgen's own tests.
func trivialMain() *ast.CompUnit {
	return &ast.CompUnit{Items: []ast.CompItem{
		&ast.FuncDef{
			RetType: ast.Int,
			Name:    "main",
			Body: &ast.Block{Items: []ast.BlockItem{
				&ast.ReturnStmt{Exp: &ast.IntLit{Val: 0}},
			}},
		},
	}}
}

func TestRunKoopaMode(t *testing.T) {
	var buf bytes.Buffer
	err := driver.Run(context.Background(), driver.ModeKoopa, trivialMain(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "fun @main(): i32 {")
	assert.Contains(t, buf.String(), "ret")
}

func TestRunRISCVMode(t *testing.T) {
	var buf bytes.Buffer
	err := driver.Run(context.Background(), driver.ModeRISCV, trivialMain(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), ".globl main")
	assert.Contains(t, buf.String(), "ret")
}

func TestDefaultFrontendRefusesToParse(t *testing.T) {
	_, err := driver.DefaultFrontend([]byte("int main(){return 0;}"), "in.sy")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "out of scope"))
}
