package asmgen_test

import (
	"bytes"
	"testing"

	"github.com/mna/sysyc/lang/asmgen"
	"github.com/mna/sysyc/lang/koopa"
	"github.com/stretchr/testify/assert"
)

func generate(src string) string {
	var buf bytes.Buffer
	asmgen.Generate(&buf, koopa.Parse(src))
	return buf.String()
}

// TestTrivialReturn covers a function with a single instruction result and
// no calls: no saved ra, a minimal 16-byte frame (rounded up from 4 bytes
// of locals), and the final value routed through a0 before the epilogue.
func TestTrivialReturn(t *testing.T) {
	src := `
fun @main(): i32 {
%entry:
  %0 = add 0, 0
  ret %0
}
`
	want := `.text
.globl main
main:
  addi sp, sp, -16
main_entry:
  add t0, x0, x0
  sw t0, 0(sp)
  lw t0, 0(sp)
  mv a0, t0
  addi sp, sp, 16
  ret

`
	assert.Equal(t, want, generate(src))
}

// TestCallAcrossFunctions covers a call site: the caller reserves 4 bytes
// for a saved ra (hasCall is true even though it passes no stack
// arguments), and the callee's own parameter spill, load and return are
// lowered through its own independent frame.
func TestCallAcrossFunctions(t *testing.T) {
	src := `
fun @callee(%n_param: i32): i32 {
%entry:
  %0 = alloc i32
  store %n_param, %0
  %1 = load %0
  ret %1
}

fun @main(): i32 {
%entry:
  %0 = call @callee(5)
  ret %0
}
`
	want := `.text
.globl callee
callee:
  addi sp, sp, -16
callee_entry:
  addi t0, sp, 0
  sw a0, 0(t0)
  addi t0, sp, 0
  lw t1, 0(t0)
  sw t1, 4(sp)
  lw t0, 4(sp)
  mv a0, t0
  addi sp, sp, 16
  ret

.text
.globl main
main:
  addi sp, sp, -16
  sw ra, 4(sp)
main_entry:
  li t0, 5
  mv a0, t0
  call callee
  sw a0, 0(sp)
  lw t0, 0(sp)
  mv a0, t0
  lw ra, 4(sp)
  addi sp, sp, 16
  ret

`
	assert.Equal(t, want, generate(src))
}

// TestGlobalData covers the three shapes a global initializer takes: a
// bare scalar, a flat "zeroinit", and an aggregate whose nested subtree
// collapses to "zeroinit" while a sibling subtree does not.
func TestGlobalData(t *testing.T) {
	src := `
global @GLOBAL_a = alloc i32, 0
global @GLOBAL_b = alloc [i32, 3], zeroinit
global @GLOBAL_c = alloc [[i32, 2], 2], {{1, 2}, zeroinit}
`
	want := `.data
.globl GLOBAL_a
GLOBAL_a:
  .word 0

.data
.globl GLOBAL_b
GLOBAL_b:
  .zero 12

.data
.globl GLOBAL_c
GLOBAL_c:
  .word 1
  .word 2
  .zero 8

`
	assert.Equal(t, want, generate(src))
}
