// Package asmgen implements the ASM emitter (component G): it walks a
// *koopa.Program materialized by lang/koopa and writes RV32IM assembly. It
// never examines the original source again — only the IR.
//
// The four concerns split across this package's files:
//   - frame.go: the per-function pre-scan that assigns every result-bearing
//     instruction a stack slot and computes stack_size/local_size/param_size.
//   - register.go: the 15-slot scratch register file, grounded on
//     original_source/src/ds_for_asm.rs's GenerateAsmInfo.
//   - func.go: instruction selection, and the two operand-resolution
//     helpers (materializeValue, fetchAddress) everything else is built on.
//   - data.go: the .data section for global variables.
package asmgen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/koopa"
)

// writer wraps a *bufio.Writer with a panicking Fprintf, matching the rest
// of the compiler's "fatal on I/O error" convention (see lang/irgen.emitf).
type writer struct{ w *bufio.Writer }

func (wr *writer) emitf(format string, args ...any) {
	if _, err := fmt.Fprintf(wr.w, format+"\n", args...); err != nil {
		ice.Raise("asmgen: write: %v", err)
	}
}

// Generate writes RV32IM assembly for prog to w.
func Generate(w io.Writer, prog *koopa.Program) {
	wr := &writer{w: bufio.NewWriter(w)}
	for _, g := range prog.Globals {
		emitGlobal(wr, g)
	}
	for _, fn := range prog.Funcs {
		emitFunction(wr, fn)
	}
	if err := wr.w.Flush(); err != nil {
		ice.Raise("asmgen: flush: %v", err)
	}
}
