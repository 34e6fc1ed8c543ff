// Package arraylit implements array initializer flattening and alignment
// (component E). Flatten is grounded exactly on
// original_source/src/array_solve.rs's GlobalArrayInit/LocalArrayInit
// traits: a right-to-left divisor walk over the declared dimensions
// computes, for each nested brace list, how many trailing dimensions it
// aligns to, forcing a list that would otherwise align to every dimension
// (nothing filled yet) to cover all but the outermost one. It is written
// generic over the item and value types so the one alignment algorithm
// serves all four call sites: const and global variable aggregates
// (Value = string, a decimal literal), and local variable aggregates
// (Value = string, either an IR temp id or the literal "0" for padding).
package arraylit

// Flatten aligns a nested brace-list initializer (its top-level items) to
// dims, in C99 partial-brace style, and returns the fully flattened,
// zero-padded sequence of values. asList reports whether an item is itself
// a nested brace list and, if so, its contents. scalar computes the value
// for a leaf item. zero computes the value used to pad a list that didn't
// supply enough elements.
func Flatten[Item, Value any](
	items []Item,
	dims []int32,
	asList func(Item) ([]Item, bool),
	scalar func(Item) Value,
	zero func() Value,
) []Value {
	var out []Value
	flattenList(items, dims, asList, scalar, zero, &out)
	return out
}

func flattenList[Item, Value any](
	items []Item,
	dims []int32,
	asList func(Item) ([]Item, bool),
	scalar func(Item) Value,
	zero func() Value,
	out *[]Value,
) {
	preFilled := len(*out)
	for _, it := range items {
		if nested, ok := asList(it); ok {
			nowFilled := len(*out) - preFilled
			alignDim := len(dims)
			alignSize := 1
			for i := len(dims) - 1; i >= 0; i-- {
				alignSize *= int(dims[i])
				if alignSize != 0 && nowFilled%alignSize == 0 {
					alignDim--
				} else {
					break
				}
			}
			if alignDim == 0 {
				// Nothing has been filled yet at this level: a nested list
				// covers one element of the outermost dimension, dims[1:].
				alignDim = 1
			}
			flattenList(nested, dims[alignDim:], asList, scalar, zero, out)
		} else {
			*out = append(*out, scalar(it))
		}
	}

	required := 1
	for _, d := range dims {
		required *= int(d)
	}
	for len(*out)-preFilled < required {
		*out = append(*out, zero())
	}
}
