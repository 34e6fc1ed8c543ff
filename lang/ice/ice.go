// Package ice ("internal compiler error") defines the single error type
// every compiler-fatal condition is reported with. Per the language spec, no
// error is ever recovered mid-compile: a component detects a problem,
// panics with an *Error, and internal/driver recovers it exactly once at
// the process boundary.
package ice

import "fmt"

// Error is a fatal compiler error. Node, if non-nil, is the offending AST
// node, kept as an opaque value since lang/ast has no position information
// to report (parsing, and therefore source positions, are out of scope).
type Error struct {
	Msg  string
	Node any
}

func (e *Error) Error() string { return e.Msg }

// New builds an *Error with no associated node.
func New(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// At builds an *Error associated with node.
func At(node any, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Node: node}
}

// Raise panics with a New error. Used at call sites that can't return an
// error (deep in recursive lowering) per the package's no-recovery policy.
func Raise(format string, args ...any) {
	panic(New(format, args...))
}

// RaiseAt panics with an At error.
func RaiseAt(node any, format string, args ...any) {
	panic(At(node, format, args...))
}

// Recover turns a panicking *Error into a returned error. Call it deferred,
// exactly once, at the outermost entry point (internal/driver). Any other
// panic value is re-panicked: only *Error is a recognized compiler error.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*err = e
		return
	}
	panic(r)
}
