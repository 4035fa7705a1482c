// Package evaluator implements the ZQ expression evaluation engine.
//
// The evaluator receives a parsed Abstract Syntax Tree (AST) from the parser
// and evaluates it against one input value at a time, producing zero, one,
// or many result values per input (streaming semantics). Iteration (.[]) is
// the sole source of one-to-many expansion; pipes compose with flat-map
// semantics.
//
// # Example
//
//	eval := evaluator.New()
//	results, err := eval.Eval(ctx, expr, record)
//	for _, v := range results {
//	    // emit v
//	}
//
// The evaluator holds no state across records: the AST is read-only and the
// configuration is immutable, so a single Evaluator is safe for concurrent
// use by multiple goroutines.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jnkit/zq/pkg/functions"
	"github.com/jnkit/zq/pkg/types"
)

// Evaluator evaluates compiled ZQ expressions against records.
type Evaluator struct {
	opts      EvalOptions
	logger    *slog.Logger
	customFns map[string]*FunctionDef // user-registered custom functions
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits evaluation recursion depth, bounding native stack
	// growth on pathologically nested queries and data.
	MaxDepth int
	// Config is the immutable run configuration, threaded through every
	// evaluation call instead of living in a process-wide global.
	Config types.Config
	// Debug enables per-node trace logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// CustomFunctions holds user-defined functions to register with the
	// evaluator.
	CustomFunctions []functions.CustomFunctionDef
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: 10000,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	// Build custom function lookup map. Custom functions have open arity:
	// MaxArgs of -1 disables the argument count check.
	customFns := make(map[string]*FunctionDef, len(options.CustomFunctions))
	for _, cfd := range options.CustomFunctions {
		customFns[cfd.Name] = &FunctionDef{
			Name:    cfd.Name,
			MinArgs: 0,
			MaxArgs: -1,
			Impl:    customImpl(cfd.Fn),
		}
	}

	return &Evaluator{
		opts:      options,
		logger:    options.Logger,
		customFns: customFns,
	}
}

// customImpl adapts a user-supplied CustomFunc to the builtin calling
// convention: arguments are evaluated to single values before the call and
// the scalar result is wrapped into a one-element sequence.
func customImpl(fn functions.CustomFunc) BuiltinFunc {
	return func(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
		vals := make([]interface{}, 0, len(call.Arguments)+1)
		vals = append(vals, input)
		for _, arg := range call.Arguments {
			v, err := e.evalSingle(ctx, arg, input, depth)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		out, err := fn(ctx, vals...)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = types.NullValue
		}
		return []interface{}{out}, nil
	}
}

// getCustomFunction returns a user-defined custom function by name.
func (e *Evaluator) getCustomFunction(name string) (*FunctionDef, bool) {
	if len(e.customFns) == 0 {
		return nil, false
	}
	fn, ok := e.customFns[name]
	return fn, ok
}

// Eval evaluates an expression against a single input value and returns the
// ordered sequence of result values it produces. The sequence may be empty
// (a filtered-out record) or contain multiple values (iteration).
func (e *Evaluator) Eval(ctx context.Context, expr *types.Expression, input interface{}) ([]interface{}, error) {
	if expr == nil || expr.AST() == nil {
		return nil, fmt.Errorf("invalid expression")
	}
	return e.evalNode(ctx, expr.AST(), input, 0)
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithMaxDepth sets the maximum recursion depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithConfig sets the run configuration carried through evaluation.
func WithConfig(cfg types.Config) EvalOption {
	return func(opts *EvalOptions) {
		opts.Config = cfg
	}
}

// WithDebug enables or disables per-node trace logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithCustomFunction registers a user-defined function with the evaluator.
// The function receives the current input value followed by its evaluated
// arguments.
//
// Example:
//
//	eval := evaluator.New(evaluator.WithCustomFunction("shout", func(ctx context.Context, args ...interface{}) (interface{}, error) {
//	    s, _ := args[0].(string)
//	    return strings.ToUpper(s) + "!", nil
//	}))
func WithCustomFunction(name string, fn functions.CustomFunc) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, functions.CustomFunctionDef{
			Name: name,
			Fn:   fn,
		})
	}
}
