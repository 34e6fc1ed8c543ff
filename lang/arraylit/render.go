package arraylit

import "strings"

// RenderAggregate renders a flattened, row-major sequence of Koopa scalar
// operand texts (values) back into nested Koopa aggregate literal syntax
// matching dims, collapsing any subtree that is entirely "0" into
// "zeroinit" (Koopa's shorthand for an all-zero region, used liberally
// since most SysY array literals are mostly padding).
func RenderAggregate(values []string, dims []int32) string {
	return render(values, dims)
}

func render(values []string, dims []int32) string {
	n := product(dims)
	if allZero(values[:n]) {
		return "zeroinit"
	}
	if len(dims) == 1 {
		return "{" + strings.Join(values[:dims[0]], ", ") + "}"
	}
	chunk := product(dims[1:])
	parts := make([]string, dims[0])
	for i := range parts {
		parts[i] = render(values[i*chunk:(i+1)*chunk], dims[1:])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func product(dims []int32) int {
	n := 1
	for _, d := range dims {
		n *= int(d)
	}
	return n
}

func allZero(values []string) bool {
	for _, v := range values {
		if v != "0" {
			return false
		}
	}
	return true
}
