package asmgen

import (
	"strconv"
	"strings"

	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/koopa"
)

// funcGen holds the state threaded through one function's code generation.
type funcGen struct {
	w    *writer
	fn   *koopa.Function
	fr   *frame
	regs *registerFile
}

func emitFunction(w *writer, fn *koopa.Function) {
	g := &funcGen{w: w, fn: fn, fr: buildFrame(fn), regs: newRegisterFile()}
	g.emit()
}

func (g *funcGen) emit() {
	name := strings.TrimPrefix(g.fn.Name, "@")
	g.w.emitf(".text")
	g.w.emitf(".globl %s", name)
	g.w.emitf("%s:", name)
	g.prologue()
	for _, bb := range g.fn.Blocks {
		g.regs.FreeAll() // nothing survives across a block boundary
		g.w.emitf("%s:", g.blockLabel(bb.Label))
		for _, insn := range bb.Insns {
			g.emitInsn(insn)
		}
	}
	g.w.emitf("")
}

// blockLabel renders a Koopa block label ("%entry") as an RV32 label,
// dropping the leading '%' (per the spec's convention) and prefixing the
// function name so labels don't collide across functions sharing a label
// like "%entry" or "%if_then_0".
func (g *funcGen) blockLabel(koopaLabel string) string {
	return strings.TrimPrefix(g.fn.Name, "@") + "_" + strings.TrimPrefix(koopaLabel, "%")
}

func (g *funcGen) prologue() {
	g.emitAdjustSP(-g.fr.stackSize)
	if g.fr.raSize > 0 {
		g.storeToOffset("ra", g.fr.raOffset)
	}
	// Parameter spilling itself is not special-cased here: lang/irgen always
	// emits "%mangled = alloc T; store %i_param, %mangled" as the first
	// instructions of every function, for every parameter regardless of
	// index, so it falls out of the ordinary store-instruction lowering
	// below (materializeValue recognizes a parameter name as its operand).
}

func (g *funcGen) emitInsn(insn *koopa.Insn) {
	switch insn.Op {
	case "alloc":
		// The slot was already assigned by buildFrame; nothing to emit.
	case "load":
		g.emitLoad(insn)
	case "store":
		g.emitStore(insn)
	case "getelemptr", "getptr":
		g.emitGetPtr(insn)
	case "br":
		g.emitBr(insn)
	case "jump":
		g.w.emitf("  j %s", g.blockLabel(insn.Args[0]))
	case "ret":
		g.emitRet(insn)
	case "call":
		g.emitCall(insn)
	default:
		g.emitBinary(insn)
	}
}

func (g *funcGen) emitLoad(insn *koopa.Insn) {
	addr := g.fetchAddress(insn.Args[0])
	dst := g.regs.Alloc()
	g.w.emitf("  lw %s, 0(%s)", dst, addr)
	g.regs.Free(addr)
	g.spill(dst, insn.Result)
	g.regs.Free(dst)
}

func (g *funcGen) emitStore(insn *koopa.Insn) {
	v := g.materializeValue(insn.Args[0])
	addr := g.fetchAddress(insn.Args[1])
	g.w.emitf("  sw %s, 0(%s)", v, addr)
	g.regs.Free(v)
	g.regs.Free(addr)
}

// emitGetPtr lowers both getelemptr and getptr: the result's own Koopa
// type already tells us the per-element stride regardless of which of the
// two instructions produced it (see lang/koopa's parser: getelemptr's
// result is a pointer to the base array's element type, getptr's result
// carries the base's own type forward unchanged — in both cases the
// stride is SizeOf(Pointee(insn.Type))).
func (g *funcGen) emitGetPtr(insn *koopa.Insn) {
	base, idx := insn.Args[0], insn.Args[1]
	baseReg := g.fetchAddress(base)
	idxReg := g.materializeValue(idx)
	elemSize := koopa.SizeOf(koopa.Pointee(insn.Type))

	offReg := idxReg
	freeOff := false
	if elemSize != 1 {
		tmp := g.regs.Alloc()
		g.w.emitf("  li %s, %d", tmp, elemSize)
		scaled := g.regs.Alloc()
		g.w.emitf("  mul %s, %s, %s", scaled, idxReg, tmp)
		g.regs.Free(tmp)
		offReg = scaled
		freeOff = true
	}

	dst := g.regs.Alloc()
	g.w.emitf("  add %s, %s, %s", dst, baseReg, offReg)
	g.regs.Free(baseReg)
	g.regs.Free(idxReg)
	if freeOff {
		g.regs.Free(offReg)
	}
	g.spill(dst, insn.Result)
	g.regs.Free(dst)
}

func (g *funcGen) emitBr(insn *koopa.Insn) {
	cond := g.materializeValue(insn.Args[0])
	g.w.emitf("  bnez %s, %s", cond, g.blockLabel(insn.Args[1]))
	g.regs.Free(cond)
	g.w.emitf("  j %s", g.blockLabel(insn.Args[2]))
}

func (g *funcGen) emitRet(insn *koopa.Insn) {
	if len(insn.Args) == 1 {
		v := g.materializeValue(insn.Args[0])
		if v != "a0" {
			g.w.emitf("  mv a0, %s", v)
		}
		g.regs.Free(v)
	}
	if g.fr.raSize > 0 {
		g.loadFromOffset("ra", g.fr.raOffset)
	}
	g.emitAdjustSP(g.fr.stackSize)
	g.w.emitf("  ret")
}

var directBinOps = map[string]string{
	"add": "add", "sub": "sub", "mul": "mul", "div": "div", "mod": "rem",
}

func (g *funcGen) emitBinary(insn *koopa.Insn) {
	l := g.materializeValue(insn.Args[0])
	r := g.materializeValue(insn.Args[1])
	dst := g.regs.Alloc()

	switch insn.Op {
	case "add", "sub", "mul", "div", "mod":
		g.w.emitf("  %s %s, %s, %s", directBinOps[insn.Op], dst, l, r)
	case "lt":
		g.w.emitf("  slt %s, %s, %s", dst, l, r)
	case "gt":
		g.w.emitf("  sgt %s, %s, %s", dst, l, r)
	case "eq":
		g.w.emitf("  xor %s, %s, %s", dst, l, r)
		g.w.emitf("  seqz %s, %s", dst, dst)
	case "ne":
		g.w.emitf("  xor %s, %s, %s", dst, l, r)
		g.w.emitf("  snez %s, %s", dst, dst)
	case "le":
		g.w.emitf("  sgt %s, %s, %s", dst, l, r)
		g.w.emitf("  seqz %s, %s", dst, dst)
	case "ge":
		g.w.emitf("  slt %s, %s, %s", dst, l, r)
		g.w.emitf("  seqz %s, %s", dst, dst)
	default:
		ice.Raise("asmgen: unrecognized opcode %q", insn.Op)
	}

	g.regs.Free(l)
	g.regs.Free(r)
	g.spill(dst, insn.Result)
	g.regs.Free(dst)
}

// emitCall places arguments, emits the call, and spills any result.
//
// Placing the first 8 arguments is not simply "materialize then mv": a
// later argument's own materialization could otherwise land in a register
// index an earlier argument already moved into (e.g. argument 2 needs a
// fresh scratch and the allocator hands back a1, clobbering argument 1's
// placement). So each ai is explicitly reserved in the register file
// immediately after being written, which keeps the allocator from handing
// it out again until the call has actually consumed it.
func (g *funcGen) emitCall(insn *koopa.Insn) {
	n := len(insn.CallArgs)
	regArgs := n
	if regArgs > 8 {
		regArgs = 8
	}

	for i := 0; i < regArgs; i++ {
		v := g.materializeValue(insn.CallArgs[i])
		reg := scratchRegs[7+i] // a0 is scratchRegs[7]
		if v != reg {
			g.w.emitf("  mv %s, %s", reg, v)
			g.regs.Free(v)
			g.regs.Reserve(reg)
		}
		// else: the allocator already handed v back as reg itself (it was
		// free at the time), so it is already reserved; nothing to move.
	}
	for i := 8; i < n; i++ {
		v := g.materializeValue(insn.CallArgs[i])
		g.storeToOffset(v, 4*(i-8))
		g.regs.Free(v)
	}

	g.w.emitf("  call %s", strings.TrimPrefix(insn.Callee, "@"))

	for i := 0; i < regArgs; i++ {
		g.regs.Free(scratchRegs[7+i])
	}
	if insn.Result != "" {
		g.spill("a0", insn.Result)
	}
}

// ---- operand resolution ----

// materializeValue resolves v to a register holding its ordinary i32
// value: x0 for the literal 0, a freshly li'd scratch for any other
// literal, a0-a7 or a caller-stack load for a raw parameter reference, or
// an lw from the value's own spill slot for anything else.
func (g *funcGen) materializeValue(v string) string {
	if n, ok := parseIntLiteral(v); ok {
		if n == 0 {
			return "x0"
		}
		r := g.regs.Alloc()
		g.w.emitf("  li %s, %d", r, n)
		return r
	}
	if i, ok := g.paramIndex(v); ok {
		if i < 8 {
			return scratchRegs[7+i]
		}
		r := g.regs.Alloc()
		g.loadFromOffset(r, g.fr.paramStackArgs[i])
		return r
	}
	off, ok := g.fr.slots[v]
	if !ok {
		ice.Raise("asmgen: reference to unknown value %q", v)
	}
	r := g.regs.Alloc()
	g.loadFromOffset(r, off)
	return r
}

// fetchAddress resolves v to a register holding an address: la for a
// global, addi sp,+off for a local alloc (the slot itself is the storage),
// or — for anything else, i.e. a pointer-typed SSA value such as a
// getelemptr/getptr result or a loaded array-parameter pointer — the same
// resolution as materializeValue, since such a value's slot holds the
// address as data, not the address of the slot.
func (g *funcGen) fetchAddress(v string) string {
	if strings.HasPrefix(v, "@GLOBAL_") {
		r := g.regs.Alloc()
		g.w.emitf("  la %s, %s", r, strings.TrimPrefix(v, "@"))
		return r
	}
	if g.fr.allocResult[v] {
		r := g.regs.Alloc()
		g.emitAddrOffset(r, g.fr.slots[v])
		return r
	}
	return g.materializeValue(v)
}

func (g *funcGen) paramIndex(name string) (int, bool) {
	for i, p := range g.fn.Params {
		if p.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (g *funcGen) spill(reg, name string) {
	off, ok := g.fr.slots[name]
	if !ok {
		ice.Raise("asmgen: no slot assigned for %q", name)
	}
	g.storeToOffset(reg, off)
}

func parseIntLiteral(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ---- immediate-range-aware stack access ----

func immOK(n int) bool { return n >= -2048 && n <= 2047 }

func (g *funcGen) loadFromOffset(dst string, off int) {
	if immOK(off) {
		g.w.emitf("  lw %s, %d(sp)", dst, off)
		return
	}
	tmp := g.regs.Alloc()
	g.w.emitf("  li %s, %d", tmp, off)
	g.w.emitf("  add %s, sp, %s", tmp, tmp)
	g.w.emitf("  lw %s, 0(%s)", dst, tmp)
	g.regs.Free(tmp)
}

func (g *funcGen) storeToOffset(src string, off int) {
	if immOK(off) {
		g.w.emitf("  sw %s, %d(sp)", src, off)
		return
	}
	tmp := g.regs.Alloc()
	g.w.emitf("  li %s, %d", tmp, off)
	g.w.emitf("  add %s, sp, %s", tmp, tmp)
	g.w.emitf("  sw %s, 0(%s)", src, tmp)
	g.regs.Free(tmp)
}

func (g *funcGen) emitAddrOffset(dst string, off int) {
	if immOK(off) {
		g.w.emitf("  addi %s, sp, %d", dst, off)
		return
	}
	g.w.emitf("  li %s, %d", dst, off)
	g.w.emitf("  add %s, sp, %s", dst, dst)
}

func (g *funcGen) emitAdjustSP(delta int) {
	if immOK(delta) {
		g.w.emitf("  addi sp, sp, %d", delta)
		return
	}
	tmp := g.regs.Alloc()
	g.w.emitf("  li %s, %d", tmp, delta)
	g.w.emitf("  add sp, sp, %s", tmp)
	g.regs.Free(tmp)
}
