package asmgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterFileAllocFree(t *testing.T) {
	r := newRegisterFile()
	a := r.Alloc()
	b := r.Alloc()
	assert.NotEqual(t, a, b)
	r.Free(a)
	c := r.Alloc()
	assert.Equal(t, a, c, "freeing a register should make it available again, first-free-wins")
}

func TestRegisterFileExhausted(t *testing.T) {
	r := newRegisterFile()
	for i := 0; i < 15; i++ {
		r.Alloc()
	}
	assert.Panics(t, func() { r.Alloc() })
}

func TestRegisterFileReserve(t *testing.T) {
	r := newRegisterFile()
	r.Reserve("a0")
	assert.Panics(t, func() { r.Reserve("a0") }, "reserving an already-occupied register is fatal")
	r.Free("a0")
	r.Reserve("a0") // no longer occupied, should succeed
}

func TestRegisterFileFreeAll(t *testing.T) {
	r := newRegisterFile()
	for i := 0; i < 15; i++ {
		r.Alloc()
	}
	r.FreeAll()
	assert.NotPanics(t, func() { r.Alloc() })
}

func TestRegisterFileFreeX0IsNoop(t *testing.T) {
	r := newRegisterFile()
	assert.NotPanics(t, func() { r.Free("x0") })
}
