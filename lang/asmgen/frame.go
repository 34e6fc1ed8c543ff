package asmgen

import (
	"github.com/mna/sysyc/lang/koopa"
)

// frame is one function's stack layout, computed by a pre-scan before any
// instruction is lowered. Offsets are relative to sp after the prologue's
// "addi sp, sp, -stackSize".
//
// Layout, low to high address (matching the spec's frame diagram):
//
//	[0, paramSize)                    outgoing-argument area (this function's own calls)
//	[paramSize, paramSize+localSize)  every alloc / instruction result
//	[paramSize+localSize, stackSize)  saved ra, if raSize > 0
//
// Every one of this function's own parameters gets a real local slot too:
// lang/irgen always emits "%mangled = alloc T; store %i_param, %mangled"
// for every parameter regardless of index, so the first 8 parameters'
// slots fall out of the ordinary instruction scan below, just like any
// other local. Only parameters 9+ need special handling, because their
// *value* is never produced by any instruction in the stream — it has to
// be read lazily from the caller's outgoing-argument area the one time the
// prologue's "store %i_param, ..." materializes it (see
// funcGen.materializeValue). paramStackArgs records where that is.
type frame struct {
	stackSize int
	localSize int
	paramSize int
	raSize    int
	raOffset  int // valid only if raSize > 0

	// slots maps every instruction with a result (its "%N" or "@LOCAL_..."
	// name) to its stack offset, relative to sp.
	slots map[string]int

	// allocResult marks which of those names came from an "alloc": such a
	// name's slot is itself the address of real storage, never a spilled
	// pointer value (see funcGen.fetchAddress).
	allocResult map[string]bool

	// paramStackArgs maps parameter index (>= 8) to its offset, relative to
	// sp, in the *caller's* frame: stackSize + 4*(i-8).
	paramStackArgs map[int]int
}

// buildFrame pre-scans fn and computes its complete stack layout.
func buildFrame(fn *koopa.Function) *frame {
	fr := &frame{
		slots:          map[string]int{},
		allocResult:    map[string]bool{},
		paramStackArgs: map[int]int{},
	}

	// Pass 1: hasCall and paramSize (this function's own outgoing-argument
	// high-water mark) must be known before any local slot is assigned,
	// since the outgoing-argument area sits below the locals in the frame.
	hasCall := false
	maxOutgoing := 0
	for _, bb := range fn.Blocks {
		for _, insn := range bb.Insns {
			if insn.Op != "call" {
				continue
			}
			hasCall = true
			if n := len(insn.CallArgs); n > 8 {
				if sz := 4 * (n - 8); sz > maxOutgoing {
					maxOutgoing = sz
				}
			}
		}
	}
	fr.paramSize = maxOutgoing
	if hasCall {
		fr.raSize = 4
	}

	for i := range fn.Params {
		if i >= 8 {
			fr.paramStackArgs[i] = 4 * (i - 8) // relative to stackSize, fixed up below
		}
	}

	// Pass 2: assign local offsets in instruction order, starting right
	// after the outgoing-argument area.
	off := fr.paramSize
	for _, bb := range fn.Blocks {
		for _, insn := range bb.Insns {
			if insn.Result == "" {
				continue
			}
			size := 4
			if insn.Op == "alloc" {
				size = koopa.SizeOf(koopa.Pointee(insn.Type))
				fr.allocResult[insn.Result] = true
			}
			fr.slots[insn.Result] = off
			off += size
		}
	}

	fr.localSize = off - fr.paramSize
	fr.stackSize = roundUp16(fr.raSize + fr.localSize + fr.paramSize)
	if fr.raSize > 0 {
		fr.raOffset = fr.localSize + fr.paramSize
	}
	for i, rel := range fr.paramStackArgs {
		fr.paramStackArgs[i] = fr.stackSize + rel
	}
	return fr
}

func roundUp16(n int) int {
	return (n + 15) &^ 15
}
