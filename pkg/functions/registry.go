// Package functions defines the extension point for user-supplied
// functions callable from ZQ queries.
package functions

import "context"

// CustomFunc is a user-defined function. It receives the current input
// value followed by the evaluated argument values, and returns a single
// result. Returning an error aborts evaluation of the current record.
type CustomFunc func(ctx context.Context, args ...interface{}) (interface{}, error)

// CustomFunctionDef binds a name to a custom function implementation.
// A custom function shadows a builtin of the same name.
type CustomFunctionDef struct {
	Name string
	Fn   CustomFunc
}
