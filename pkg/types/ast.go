package types

// NodeType identifies the type of an AST node.
type NodeType string

// AST node types. The set is closed: the evaluator dispatches over it with
// an exhaustive switch and rejects anything else.
const (
	// Literals
	NodeLiteral NodeType = "literal" // string, number, boolean, null

	// Navigation
	NodeIdentity NodeType = "identity" // .
	NodeField    NodeType = "field"    // .name
	NodeIndex    NodeType = "index"    // .[expr]
	NodeSlice    NodeType = "slice"    // .[a:b]
	NodeIterate  NodeType = "iterate"  // .[]
	NodeOptional NodeType = "optional" // postfix ? (suppress type errors)

	// Composition
	NodePipe        NodeType = "pipe"        // a | b
	NodeAlternative NodeType = "alternative" // a // b

	// Operators
	NodeBinary  NodeType = "binary"  // + - * / %
	NodeCompare NodeType = "compare" // == != < <= > >=
	NodeAnd     NodeType = "and"     // and
	NodeOr      NodeType = "or"      // or

	// Constructors
	NodeArray  NodeType = "array"  // [...]
	NodeObject NodeType = "object" // {...}
	NodePair   NodeType = "pair"   // key: value inside {...}

	// Control flow and calls
	NodeCondition NodeType = "condition" // if ... then ... elif ... else ... end
	NodeCall      NodeType = "function"  // name(args...)
	NodeDelete    NodeType = "delete"    // del(path)
)

// ASTNode represents a node in the Abstract Syntax Tree.
//
// Each node owns its children exclusively: the AST is a tree, never a cycle.
// The tree is built once at compile time and is read-only afterwards, so a
// compiled expression is safe for concurrent evaluation.
type ASTNode struct {
	Type     NodeType
	Value    interface{} // Literal value for NodeLiteral
	StrValue string      // Field name (NodeField), operator (NodeBinary/NodeCompare), function name (NodeCall)
	Position int

	// Relations
	LHS         *ASTNode   // Left operand / access base / condition else-branch source
	RHS         *ASTNode   // Right operand / index expression / else expression
	Expressions []*ASTNode // Constructor entries; condition branches as (cond, then) pairs
	Arguments   []*ASTNode // Call arguments; slice bounds as [start, end] (entries may be nil)
}

// NewASTNode creates a new AST node of the specified type.
// Prefer NodeArena.Alloc when parsing to reduce per-node heap allocations.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// arenaChunkSize is the number of ASTNode values pre-allocated per arena chunk.
// Most ZQ queries fit in a single chunk.
const arenaChunkSize = 64

// NodeArena is a bump-pointer allocator for ASTNode values.
//
// Instead of allocating each node individually on the heap (one GC-tracked
// object per node), the arena pre-allocates fixed-size chunks of ASTNode
// structs and returns pointers into them. A typical query (< 64 nodes)
// requires only a single chunk allocation.
//
// The arena must stay alive as long as any pointer returned by Alloc is
// reachable; attaching it to the [Expression] achieves this.
//
// NodeArena is not thread-safe. Each parser owns its own arena and the
// arena is never shared across goroutines.
type NodeArena struct {
	chunks [][]ASTNode
	pos    int // next free index in the last chunk
}

// NewNodeArena allocates an arena pre-warmed with one initial chunk.
func NewNodeArena() *NodeArena {
	return &NodeArena{
		chunks: [][]ASTNode{make([]ASTNode, arenaChunkSize)},
		pos:    0,
	}
}

// Alloc returns a pointer to a zero-valued ASTNode inside the arena, with
// Type and Position set. All other fields remain at their zero values and
// must be filled by the caller.
func (a *NodeArena) Alloc(nodeType NodeType, position int) *ASTNode {
	if a.pos >= arenaChunkSize {
		a.chunks = append(a.chunks, make([]ASTNode, arenaChunkSize))
		a.pos = 0
	}
	n := &a.chunks[len(a.chunks)-1][a.pos]
	a.pos++
	n.Type = nodeType
	n.Position = position
	return n
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return string(n.Type)
}
