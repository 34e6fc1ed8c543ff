package asmgen

import (
	"strconv"
	"strings"

	"github.com/mna/sysyc/lang/ice"
	"github.com/mna/sysyc/lang/koopa"
)

// emitGlobal writes the .data section for one global variable.
func emitGlobal(w *writer, g *koopa.Global) {
	name := strings.TrimPrefix(g.Name, "@")
	w.emitf(".data")
	w.emitf(".globl %s", name)
	w.emitf("%s:", name)
	emitInit(w, g.Init, g.Type)
	w.emitf("")
}

// emitInit recursively renders one initializer value, in lockstep with the
// type it initializes: a "zeroinit" collapses to a single .zero of the
// whole subtree's size, a brace-aggregate recurses into its elements (each
// one dimension further into typ), and a bare literal is one .word.
func emitInit(w *writer, init string, typ koopa.Type) {
	init = strings.TrimSpace(init)
	if init == "zeroinit" {
		w.emitf("  .zero %d", koopa.SizeOf(typ))
		return
	}
	if strings.HasPrefix(init, "{") {
		if !strings.HasSuffix(init, "}") {
			ice.Raise("asmgen: malformed aggregate initializer %q", init)
		}
		elem := koopa.ElemType(typ)
		for _, part := range splitTopLevel(init[1:len(init)-1], ',') {
			emitInit(w, part, elem)
		}
		return
	}
	n, err := strconv.Atoi(init)
	if err != nil {
		ice.Raise("asmgen: malformed scalar initializer %q", init)
	}
	w.emitf("  .word %d", n)
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// brackets/braces. Same technique as lang/koopa's own splitter, kept as a
// small private copy here rather than exported: the two packages split
// different textual grammars (IR operand lists vs. aggregate initializers)
// that only coincidentally share an algorithm.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
