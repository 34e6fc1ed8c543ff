package koopa

import (
	"strconv"
	"strings"

	"github.com/mna/sysyc/lang/ice"
)

// Type is a Koopa type, always one of "i32", "*T" (pointer to T) or
// "[T, N]" (array of N T), rendered exactly as the textual IR spells it.
type Type = string

// SizeOf returns the size in bytes of t: 4 for "i32" and for any pointer
// type, or N * SizeOf(elem) for an array type "[elem, N]".
func SizeOf(t Type) int {
	t = strings.TrimSpace(t)
	if t == "i32" || strings.HasPrefix(t, "*") {
		return 4
	}
	if strings.HasPrefix(t, "[") {
		elem, n := splitArrayType(t)
		return n * SizeOf(elem)
	}
	ice.Raise("koopa: malformed type %q", t)
	return 0
}

// ElemType returns the element type of an array type "[elem, N]", for
// getelemptr: its base operand's pointee must be an array type, and the
// result is a pointer to elem.
func ElemType(t Type) Type {
	elem, _ := splitArrayType(t)
	return elem
}

// Pointee returns the type t points to: Pointee("*i32") == "i32". Used by
// getptr (the result has the same type as the base, since getptr performs
// pointer arithmetic rather than descending into an array) and by load,
// whose result type is the pointee of its source: ordinarily "i32" for a
// scalar slot, but a pointer type when the source is itself a slot holding
// an incoming array-parameter pointer.
func Pointee(t Type) Type {
	t = strings.TrimSpace(t)
	if !strings.HasPrefix(t, "*") {
		ice.Raise("koopa: %q is not a pointer type", t)
	}
	return t[1:]
}

// PointerTo returns "*t".
func PointerTo(t Type) Type { return "*" + t }

// splitArrayType parses "[elem, N]" into elem and N, respecting nested
// brackets (elem may itself be an array type).
func splitArrayType(t Type) (elem string, n int) {
	if !strings.HasPrefix(t, "[") || !strings.HasSuffix(t, "]") {
		ice.Raise("koopa: malformed array type %q", t)
	}
	inner := t[1 : len(t)-1]
	depth := 0
	cut := -1
	for i, r := range inner {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				cut = i
			}
		}
		if cut >= 0 {
			break
		}
	}
	if cut < 0 {
		ice.Raise("koopa: malformed array type %q", t)
	}
	elem = strings.TrimSpace(inner[:cut])
	count, err := strconv.Atoi(strings.TrimSpace(inner[cut+1:]))
	if err != nil {
		ice.Raise("koopa: malformed array type %q: %v", t, err)
	}
	return elem, count
}

// ArrayType renders the Koopa array type for a sequence of declared
// dimensions (outermost first) over element type elem, e.g.
// ArrayType("i32", []int32{3,2}) == "[[i32, 2], 3]".
func ArrayType(elem string, dims []int32) Type {
	t := elem
	for i := len(dims) - 1; i >= 0; i-- {
		t = "[" + t + ", " + strconv.Itoa(int(dims[i])) + "]"
	}
	return t
}

// ParamPointerType renders the Koopa type of a function parameter that
// decayed from an array (its first, elided, dimension made it a pointer):
// no remaining dims gives "*i32", remaining dims give a pointer to a
// (possibly multi-dimensional) array type.
func ParamPointerType(dims []int32) Type {
	if len(dims) == 0 {
		return "*i32"
	}
	return PointerTo(ArrayType("i32", dims))
}
