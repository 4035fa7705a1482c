// Package parser implements the ZQ query compiler front end.
//
// The front end has three stages:
//   - Feature detector: rejects constructs outside the supported jq subset
//     before any parsing is attempted, with a named construct and a hint
//   - Lexer: tokenizes the query into a stream of tokens
//   - Parser: builds an Abstract Syntax Tree (AST) using hand-written
//     recursive descent with Pratt operator precedence
//
// Parsing stops at the first error and reports the byte offset together
// with a human-readable expectation message; it never silently recovers
// and never partially parses.
package parser

import (
	"github.com/jnkit/zq/pkg/types"
)

// Compile runs the feature detector and then parses the query, returning
// the compiled Expression.
//
// This is the entry point collaborators should use: it guarantees that
// unsupported jq constructs fail with a descriptive U-coded error instead
// of a confusing syntax error deeper in the grammar.
func Compile(query string, opts ...CompileOption) (*types.Expression, error) {
	if err := CheckSupported(query); err != nil {
		return nil, err
	}
	p := NewParser(query, opts...)
	return p.Parse()
}

// Parse parses a query without running the feature detector first.
// Unsupported constructs surface as plain syntax errors.
func Parse(query string) (*types.Expression, error) {
	p := NewParser(query)
	return p.Parse()
}

// CompileOption configures compilation behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits grammar recursion depth to prevent native stack
	// overflow on pathologically nested queries.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(opts *CompileOptions) {
		opts.MaxDepth = depth
	}
}
