package koopa

import (
	"bufio"
	"strings"

	"github.com/mna/sysyc/lang/ice"
)

var binaryOps = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true, "mod": true,
	"lt": true, "gt": true, "le": true, "ge": true, "eq": true, "ne": true,
}

// Parse materializes the textual IR in src into a *Program. It panics with
// an *ice.Error (see lang/ice) on malformed input: this parser only ever
// sees text produced by lang/irgen, so a malformed line is this compiler's
// own bug, not a user-facing error.
func Parse(src string) *Program {
	p := &parser{
		sc:         bufio.NewScanner(strings.NewReader(src)),
		prog:       &Program{},
		globalType: map[string]Type{},
		declRet:    map[string]Type{},
	}
	p.run()
	return p.prog
}

type parser struct {
	sc   *bufio.Scanner
	line string
	prog *Program

	globalType map[string]Type // @NAME -> declared alloc type, for all globals
	declRet    map[string]Type // @name -> return type, for decls and functions

	fn       *Function
	block    *BasicBlock
	localTyp map[string]Type // %id -> result type, reset per function
}

func (p *parser) run() {
	for p.next() {
		switch {
		case strings.HasPrefix(p.line, "decl "):
			p.parseDecl()
		case strings.HasPrefix(p.line, "global "):
			p.parseGlobal()
		case strings.HasPrefix(p.line, "fun "):
			p.parseFunction()
		default:
			ice.Raise("koopa: unexpected top-level line: %q", p.line)
		}
	}
}

// next advances to the next non-blank line, trimmed, and reports whether
// one was found.
func (p *parser) next() bool {
	for p.sc.Scan() {
		l := strings.TrimSpace(p.sc.Text())
		if l == "" {
			continue
		}
		p.line = l
		return true
	}
	return false
}

func (p *parser) parseDecl() {
	name, paramsText, retType := parseSignature(strings.TrimPrefix(p.line, "decl "))
	var params []Type
	if paramsText != "" {
		for _, t := range splitTopLevel(paramsText, ',') {
			params = append(params, strings.TrimSpace(t))
		}
	}
	p.declRet[name] = retType
	p.prog.Decls = append(p.prog.Decls, &Decl{Name: name, Params: params, RetType: retType})
}

func (p *parser) parseGlobal() {
	// global @NAME = alloc TYPE, INIT
	rest := strings.TrimPrefix(p.line, "global ")
	name, rest, ok := cut(rest, " = alloc ")
	if !ok {
		ice.Raise("koopa: malformed global: %q", p.line)
	}
	typ, init, ok := cutTopLevelComma(rest)
	if !ok {
		ice.Raise("koopa: malformed global: %q", p.line)
	}
	name = strings.TrimSpace(name)
	p.globalType[name] = typ
	p.prog.Globals = append(p.prog.Globals, &Global{Name: name, Type: typ, Init: init})
}

func (p *parser) parseFunction() {
	name, paramsText, retType := parseSignature(strings.TrimPrefix(p.line, "fun "))
	if !strings.HasSuffix(p.line, "{") {
		ice.Raise("koopa: malformed function header: %q", p.line)
	}
	var params []Param
	p.localTyp = map[string]Type{}
	if paramsText != "" {
		for _, one := range splitTopLevel(paramsText, ',') {
			pname, ptype, ok := cut(strings.TrimSpace(one), ": ")
			if !ok {
				ice.Raise("koopa: malformed parameter: %q", one)
			}
			pname = strings.TrimSpace(pname)
			ptype = strings.TrimSpace(ptype)
			params = append(params, Param{Name: pname, Type: ptype})
			p.localTyp[pname] = ptype
		}
	}
	p.declRet[name] = retType
	fn := &Function{Name: name, Params: params, RetType: retType}
	p.fn = fn
	p.block = nil

	for p.next() {
		if p.line == "}" {
			p.fn = nil
			p.block = nil
			p.prog.Funcs = append(p.prog.Funcs, fn)
			return
		}
		if strings.HasSuffix(p.line, ":") {
			p.block = &BasicBlock{Label: strings.TrimSuffix(p.line, ":")}
			fn.Blocks = append(fn.Blocks, p.block)
			continue
		}
		p.parseInsn()
	}
	ice.Raise("koopa: unterminated function %s", name)
}

func (p *parser) parseInsn() {
	if p.block == nil {
		ice.Raise("koopa: instruction outside of any block: %q", p.line)
	}
	line := p.line

	if result, rhs, ok := cut(line, " = "); ok {
		result = strings.TrimSpace(result)
		insn := p.parseRHS(result, rhs)
		p.localTyp[result] = insn.Type
		p.block.Insns = append(p.block.Insns, insn)
		return
	}

	switch {
	case strings.HasPrefix(line, "store "):
		val, dst, ok := cutTopLevelComma(strings.TrimPrefix(line, "store "))
		if !ok {
			ice.Raise("koopa: malformed store: %q", line)
		}
		p.block.Insns = append(p.block.Insns, &Insn{Op: "store", Args: []string{val, dst}})
	case strings.HasPrefix(line, "br "):
		rest := strings.TrimPrefix(line, "br ")
		parts := splitTopLevel(rest, ',')
		if len(parts) != 3 {
			ice.Raise("koopa: malformed br: %q", line)
		}
		p.block.Insns = append(p.block.Insns, &Insn{Op: "br", Args: []string{
			strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]),
		}})
	case strings.HasPrefix(line, "jump "):
		p.block.Insns = append(p.block.Insns, &Insn{Op: "jump", Args: []string{strings.TrimPrefix(line, "jump ")}})
	case line == "ret":
		p.block.Insns = append(p.block.Insns, &Insn{Op: "ret"})
	case strings.HasPrefix(line, "ret "):
		p.block.Insns = append(p.block.Insns, &Insn{Op: "ret", Args: []string{strings.TrimPrefix(line, "ret ")}})
	case strings.HasPrefix(line, "call "):
		callee, args := parseCall(strings.TrimPrefix(line, "call "))
		p.block.Insns = append(p.block.Insns, &Insn{Op: "call", Callee: callee, CallArgs: args})
	default:
		ice.Raise("koopa: unrecognized instruction: %q", line)
	}
}

// parseRHS parses the right-hand side of "%result = RHS" and returns the
// Insn, with Type resolved using p.localTyp/p.globalType/p.declRet.
func (p *parser) parseRHS(result, rhs string) *Insn {
	op, rest, ok := cut(rhs, " ")
	if !ok {
		op, rest = rhs, ""
	}
	switch op {
	case "alloc":
		return &Insn{Result: result, Op: op, Type: PointerTo(rest), Args: []string{rest}}
	case "load":
		// The result type is the pointee of the source's type, not always
		// i32: loading a function parameter's own pointer-typed slot (an
		// array parameter, decayed) yields a pointer, not a scalar.
		src := strings.TrimSpace(rest)
		return &Insn{Result: result, Op: op, Type: Pointee(p.typeOf(src)), Args: []string{src}}
	case "getelemptr":
		base, idx, ok := cutTopLevelComma(rest)
		if !ok {
			ice.Raise("koopa: malformed getelemptr: %q", rhs)
		}
		baseType := p.typeOf(base)
		return &Insn{Result: result, Op: op, Type: PointerTo(ElemType(Pointee(baseType))), Args: []string{base, idx}}
	case "getptr":
		base, idx, ok := cutTopLevelComma(rest)
		if !ok {
			ice.Raise("koopa: malformed getptr: %q", rhs)
		}
		return &Insn{Result: result, Op: op, Type: p.typeOf(base), Args: []string{base, idx}}
	case "call":
		callee, args := parseCall(rest)
		retType := p.declRet[callee]
		return &Insn{Result: result, Op: op, Type: retType, Callee: callee, CallArgs: args}
	default:
		if binaryOps[op] {
			a, b, ok := cutTopLevelComma(rest)
			if !ok {
				ice.Raise("koopa: malformed binary op %q: %q", op, rhs)
			}
			return &Insn{Result: result, Op: op, Type: "i32", Args: []string{a, b}}
		}
		ice.Raise("koopa: unrecognized rhs operator: %q", op)
		return nil
	}
}

// typeOf resolves the Koopa type of a value reference: a local temp, a
// function parameter, or a global.
func (p *parser) typeOf(name string) Type {
	name = strings.TrimSpace(name)
	if t, ok := p.localTyp[name]; ok {
		return t
	}
	if t, ok := p.globalType[name]; ok {
		return PointerTo(t)
	}
	ice.Raise("koopa: reference to unknown value %q", name)
	return ""
}

// parseSignature parses "name(params): rettype" or "name(params)" (void),
// as used by both decl and fun headers, returning rettype == "" for void.
// For a function header, s still carries the trailing " {" (parseFunction
// only checks that it is there), so it is trimmed before the colon search.
func parseSignature(s string) (name, params, retType string) {
	name, rest, ok := cut(s, "(")
	if !ok {
		ice.Raise("koopa: malformed signature: %q", s)
	}
	name = strings.TrimSpace(name)
	depth := 1
	i := 0
	for ; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			break
		}
	}
	params = rest[:i]
	tail := strings.TrimSpace(rest[i+1:])
	tail = strings.TrimSuffix(tail, "{")
	tail = strings.TrimSpace(tail)
	tail = strings.TrimSuffix(tail, ":") // shouldn't happen, defensive
	if strings.HasPrefix(tail, ":") {
		retType = strings.TrimSpace(strings.TrimPrefix(tail, ":"))
	}
	return name, params, retType
}

func parseCall(s string) (callee string, args []string) {
	callee, rest, ok := cut(s, "(")
	if !ok || !strings.HasSuffix(rest, ")") {
		ice.Raise("koopa: malformed call: %q", s)
	}
	inner := strings.TrimSpace(rest[:len(rest)-1])
	if inner == "" {
		return strings.TrimSpace(callee), nil
	}
	for _, a := range splitTopLevel(inner, ',') {
		args = append(args, strings.TrimSpace(a))
	}
	return strings.TrimSpace(callee), args
}

// cut splits s at the first occurrence of sep, trimming neither side.
func cut(s, sep string) (before, after string, found bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// cutTopLevelComma splits s at its first comma not nested inside
// parens/brackets, trimming surrounding space from both halves.
func cutTopLevelComma(s string) (before, after string, found bool) {
	parts := splitTopLevel(s, ',')
	if len(parts) < 2 {
		return "", "", false
	}
	before = strings.TrimSpace(parts[0])
	after = strings.TrimSpace(strings.Join(parts[1:], ","))
	return before, after, true
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// parens/brackets/braces.
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
