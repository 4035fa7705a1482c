package types

// Expression represents a compiled ZQ query.
//
// An Expression is compiled once and can then be evaluated many times
// against different records. It is read-only after compilation and safe for
// concurrent use by multiple goroutines.
type Expression struct {
	ast    *ASTNode
	source string
	arena  *NodeArena // keeps arena-allocated nodes alive
}

// NewExpression creates a new Expression from an AST.
// arena may be nil when the nodes were heap-allocated individually.
func NewExpression(ast *ASTNode, source string, arena *NodeArena) *Expression {
	return &Expression{
		ast:    ast,
		source: source,
		arena:  arena,
	}
}

// AST returns the Abstract Syntax Tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original query text of the expression.
func (e *Expression) Source() string {
	return e.source
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}
