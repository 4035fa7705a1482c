// Package zq implements a small jq-compatible query engine for filtering
// and transforming NDJSON streams.
//
// ZQ evaluates a subset of the jq language: path navigation, iteration,
// pipes, arithmetic and comparison operators, constructors, conditionals,
// and a fixed set of builtin functions. Evaluation is streaming: each input
// record produces zero, one, or many output values.
//
// # Quick Start
//
//	// Simple evaluation
//	results, err := zq.Eval(ctx, ".items[] | .price", record)
//
//	// Compile once, evaluate many times
//	expr, err := zq.Compile(".user.name // \"anonymous\"")
//	eval := evaluator.New()
//	out1, _ := eval.Eval(ctx, expr, record1)
//	out2, _ := eval.Eval(ctx, expr, record2)
//
//	// Full streaming loop over NDJSON
//	r := runner.New(expr, types.Config{Compact: true})
//	err = r.Run(ctx, os.Stdin, os.Stdout)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/jnkit/zq/pkg/parser
//   - Evaluator: github.com/jnkit/zq/pkg/evaluator
//   - Runner: github.com/jnkit/zq/pkg/runner
//   - Types: github.com/jnkit/zq/pkg/types
package zq

import (
	"context"
	"fmt"

	"github.com/jnkit/zq/pkg/cache"
	"github.com/jnkit/zq/pkg/evaluator"
	"github.com/jnkit/zq/pkg/parser"
	"github.com/jnkit/zq/pkg/types"
)

// Version returns the current version of ZQ.
func Version() string {
	return "v0.1.0-dev"
}

// Compile compiles a ZQ query for repeated evaluation.
//
// The compiled expression is read-only and safe for concurrent use. Queries
// using constructs outside the supported jq subset fail here with a U-coded
// error naming the construct.
func Compile(query string, opts ...parser.CompileOption) (*types.Expression, error) {
	return parser.Compile(query, opts...)
}

// MustCompile is like Compile but panics if the query cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(query string) *types.Expression {
	expr, err := Compile(query)
	if err != nil {
		panic(fmt.Sprintf("zq: Compile(%q): %v", query, err))
	}
	return expr
}

// Eval compiles and evaluates a query against a single value in one call.
//
// For repeated evaluations of the same query, use Compile once and an
// [evaluator.Evaluator] directly, or a [Compiler] for ad-hoc query strings.
func Eval(ctx context.Context, query string, input interface{}, opts ...evaluator.EvalOption) ([]interface{}, error) {
	expr, err := Compile(query)
	if err != nil {
		return nil, err
	}
	eval := evaluator.New(opts...)
	return eval.Eval(ctx, expr, input)
}

// Compiler compiles queries through an LRU cache, for embedders that
// evaluate many ad-hoc query strings with repeats.
//
// Safe for concurrent use.
type Compiler struct {
	cache *cache.Cache
	opts  []parser.CompileOption
}

// NewCompiler creates a caching compiler. capacity <= 0 selects the default
// cache size.
func NewCompiler(capacity int, opts ...parser.CompileOption) *Compiler {
	return &Compiler{
		cache: cache.New(capacity),
		opts:  opts,
	}
}

// Compile returns the compiled form of query, reusing a cached expression
// when the same query string was compiled before.
func (c *Compiler) Compile(query string) (*types.Expression, error) {
	return c.cache.GetOrCompile(query, func() (*types.Expression, error) {
		return parser.Compile(query, c.opts...)
	})
}
