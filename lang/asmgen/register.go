package asmgen

import "github.com/mna/sysyc/lang/ice"

// scratchRegs is the 15-register scratch file: t0-t6, then a0-a7. Grounded
// on original_source/src/ds_for_asm.rs's TMP_REG/GenerateAsmInfo: a fixed
// slot array, first-free-wins allocation, no spill heuristics beyond
// "every def is immediately written back to its stack slot".
var scratchRegs = [15]string{
	"t0", "t1", "t2", "t3", "t4", "t5", "t6",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
}

// registerFile is the per-function scratch register allocator. Every
// instruction materializes its operands into freshly allocated registers,
// computes its result, spills it to the owning stack slot, then frees
// every register it touched (funcGen.emitInsn): no value lives in a
// register across an instruction boundary, so a slot's "owner" need not be
// tracked, only whether it is currently occupied.
//
// Call-argument placement needs one refinement beyond plain alloc/free: the
// first 8 outgoing arguments land in a0-a7, which are also ordinary scratch
// registers. A later argument's own materialization must not clobber an
// earlier argument already placed in its ai — so the call lowering
// explicitly Reserves each ai right after writing it, and Frees them all
// only once the call instruction itself has been emitted.
type registerFile struct {
	occupied [15]bool
}

func newRegisterFile() *registerFile { return &registerFile{} }

// Alloc claims and returns the mnemonic of the first free register. Fatal
// if none is free: under the spill-every-def policy that means a single
// instruction needed more than 15 simultaneously live operands, which no
// SysY construct does.
func (r *registerFile) Alloc() string {
	for i, occ := range r.occupied {
		if !occ {
			r.occupied[i] = true
			return scratchRegs[i]
		}
	}
	ice.Raise("asmgen: scratch register file exhausted")
	return ""
}

// Reserve claims a specific register by name, fatal if already occupied.
func (r *registerFile) Reserve(reg string) {
	i := indexOf(reg)
	if r.occupied[i] {
		ice.Raise("asmgen: register %s already in use", reg)
	}
	r.occupied[i] = true
}

// Free releases reg. A no-op for "x0", which is never allocated from this
// file in the first place (the hardwired zero register needs no tracking).
func (r *registerFile) Free(reg string) {
	if reg == "x0" {
		return
	}
	r.occupied[indexOf(reg)] = false
}

// FreeAll releases every register. Nothing survives across a basic block
// boundary in this allocator.
func (r *registerFile) FreeAll() {
	for i := range r.occupied {
		r.occupied[i] = false
	}
}

func indexOf(reg string) int {
	for i, name := range scratchRegs {
		if name == reg {
			return i
		}
	}
	ice.Raise("asmgen: unknown register %q", reg)
	return -1
}
