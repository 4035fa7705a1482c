package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/jnkit/zq/pkg/types"
)

// Parser implements a recursive descent parser for ZQ queries.
// It uses Pratt's "Top Down Operator Precedence" algorithm to handle
// operator precedence correctly.
type Parser struct {
	lexer   *Lexer
	current Token
	prev    Token
	arena   *types.NodeArena
	depth   int
	opts    CompileOptions
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(input),
		arena: types.NewNodeArena(),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire query and returns the compiled Expression.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrSyntax, "Empty query")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.error(types.ErrSyntax, fmt.Sprintf("Unexpected token: %s", p.current.Value))
	}

	return types.NewExpression(node, p.lexer.input, p.arena), nil
}

// Operator precedence table (binding power).
// Higher values bind more tightly. Pipe binds loosest; the postfix
// accessors (field, index, slice, iterate, ?) bind tightest and chain
// left-to-right.
var precedence = map[TokenType]int{
	TokenPipe:         10, // |
	TokenAlternative:  20, // //
	TokenOr:           25, // or
	TokenAnd:          30, // and
	TokenEqual:        40, // ==
	TokenNotEqual:     40, // !=
	TokenLess:         40, // <
	TokenLessEqual:    40, // <=
	TokenGreater:      40, // >
	TokenGreaterEqual: 40, // >=
	TokenPlus:         50, // +
	TokenMinus:        50, // -
	TokenMult:         60, // *
	TokenDiv:          60, // /
	TokenMod:          60, // %
	TokenDot:          80, // .
	TokenBracketOpen:  80, // [
	TokenOptional:     80, // ?
}

// getPrecedence returns the precedence of a token type.
func (p *Parser) getPrecedence(tt TokenType) int {
	if prec, ok := precedence[tt]; ok {
		return prec
	}
	return 0
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prev = p.current
	p.current = p.lexer.Next()
}

// expect checks if the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(types.ErrExpectedToken,
			fmt.Sprintf("Expected %s but got %s", tt.String(), p.current.Type.String()))
	}
	p.advance()
	return nil
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) error {
	if lexErr := p.lexer.Error(); lexErr != nil {
		return lexErr
	}
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
}

// node allocates an AST node in the parser's arena.
func (p *Parser) node(nodeType types.NodeType, position int) *types.ASTNode {
	return p.arena.Alloc(nodeType, position)
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.ASTNode, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrDepthExceeded, "Query is nested too deeply")
	}

	// Parse prefix expression (nud - null denotation)
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	// Parse infix expressions while precedence allows (led - left denotation)
	for rbp < p.getPrecedence(p.current.Type) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parsePrefix parses a prefix expression (nud - null denotation).
// These are expressions that don't require a left-hand side.
func (p *Parser) parsePrefix() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenDot:
		return p.parsePathStart()
	case TokenString:
		return p.parseString()
	case TokenNumber:
		return p.parseNumber()
	case TokenBoolean:
		return p.parseBoolean()
	case TokenNull:
		return p.parseNullLiteral()
	case TokenName:
		return p.parseCall()
	case TokenIf:
		return p.parseConditional()
	case TokenMinus:
		return p.parseUnaryMinus()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenBracketOpen:
		return p.parseArrayConstructor()
	case TokenBraceOpen:
		return p.parseObjectConstructor()
	case TokenError:
		return nil, p.lexer.Error()
	default:
		return nil, p.error(types.ErrSyntax, fmt.Sprintf("Unexpected token: %s", token.Type.String()))
	}
}

// parseInfix parses an infix expression (led - left denotation).
// These are expressions that require a left-hand side.
func (p *Parser) parseInfix(left *types.ASTNode) (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenDot:
		return p.parseFieldAccess(left)
	case TokenBracketOpen:
		return p.parseBracket(left)
	case TokenOptional:
		node := p.node(types.NodeOptional, token.Position)
		node.LHS = left
		p.advance()
		return node, nil
	case TokenPipe:
		return p.parseBinary(left, types.NodePipe)
	case TokenAlternative:
		return p.parseBinary(left, types.NodeAlternative)
	case TokenAnd:
		return p.parseBinary(left, types.NodeAnd)
	case TokenOr:
		return p.parseBinary(left, types.NodeOr)
	case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual,
		TokenGreater, TokenGreaterEqual:
		return p.parseBinaryOp(left, types.NodeCompare)
	case TokenPlus, TokenMinus, TokenMult, TokenDiv, TokenMod:
		return p.parseBinaryOp(left, types.NodeBinary)
	default:
		return nil, p.error(types.ErrSyntax, fmt.Sprintf("Unexpected infix token: %s", token.Type.String()))
	}
}

// parsePathStart parses a path expression starting with a dot: the bare
// identity ".", or a leading field access ".name" / ."quoted name".
// Bracket accessors after a bare dot (".[0]", ".[]") are produced by the
// infix loop applying "[" to the identity node.
func (p *Parser) parsePathStart() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // Skip '.'

	identity := p.node(types.NodeIdentity, pos)

	switch p.current.Type {
	case TokenName:
		node := p.node(types.NodeField, p.current.Position)
		node.LHS = identity
		node.StrValue = p.current.Value
		p.advance()
		return node, nil
	case TokenString:
		name, err := unescapeString(p.current.Value)
		if err != nil {
			return nil, p.error(types.ErrInvalidEscape, fmt.Sprintf("Invalid field name: %v", err))
		}
		node := p.node(types.NodeField, p.current.Position)
		node.LHS = identity
		node.StrValue = name
		p.advance()
		return node, nil
	default:
		return identity, nil
	}
}

// parseFieldAccess parses a chained field access: left.name.
func (p *Parser) parseFieldAccess(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // Skip '.'

	switch p.current.Type {
	case TokenName:
		node := p.node(types.NodeField, pos)
		node.LHS = left
		node.StrValue = p.current.Value
		p.advance()
		return node, nil
	case TokenString:
		name, err := unescapeString(p.current.Value)
		if err != nil {
			return nil, p.error(types.ErrInvalidEscape, fmt.Sprintf("Invalid field name: %v", err))
		}
		node := p.node(types.NodeField, pos)
		node.LHS = left
		node.StrValue = name
		p.advance()
		return node, nil
	default:
		return nil, p.error(types.ErrExpectedToken, "Expected field name after '.'")
	}
}

// parseBracket parses the bracket accessors applied to a base expression:
// iteration "base[]", indexing "base[expr]", and slicing "base[a:b]".
func (p *Parser) parseBracket(left *types.ASTNode) (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // Skip '['

	// base[] - iterate
	if p.current.Type == TokenBracketClose {
		p.advance()
		node := p.node(types.NodeIterate, pos)
		node.LHS = left
		return node, nil
	}

	// base[:end] - slice with open start
	if p.current.Type == TokenColon {
		p.advance()
		end, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenBracketClose); err != nil {
			return nil, err
		}
		node := p.node(types.NodeSlice, pos)
		node.LHS = left
		node.Arguments = []*types.ASTNode{nil, end}
		return node, nil
	}

	first, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	// base[start:] or base[start:end] - slice
	if p.current.Type == TokenColon {
		p.advance()
		var end *types.ASTNode
		if p.current.Type != TokenBracketClose {
			end, err = p.parseExpression(0)
			if err != nil {
				return nil, err
			}
		}
		if err := p.expect(TokenBracketClose); err != nil {
			return nil, err
		}
		node := p.node(types.NodeSlice, pos)
		node.LHS = left
		node.Arguments = []*types.ASTNode{first, end}
		return node, nil
	}

	// base[expr] - index
	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	node := p.node(types.NodeIndex, pos)
	node.LHS = left
	node.RHS = first
	return node, nil
}

// parseBinary parses a keyword/composition operator (|, //, and, or).
func (p *Parser) parseBinary(left *types.ASTNode, nodeType types.NodeType) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := p.node(nodeType, op.Position)
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseBinaryOp parses an arithmetic or comparison operator, recording the
// operator text in StrValue.
func (p *Parser) parseBinaryOp(left *types.ASTNode, nodeType types.NodeType) (*types.ASTNode, error) {
	op := p.current
	prec := p.getPrecedence(op.Type)
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	node := p.node(nodeType, op.Position)
	node.StrValue = op.Type.String()
	node.LHS = left
	node.RHS = right
	return node, nil
}

// parseString parses a string literal.
func (p *Parser) parseString() (*types.ASTNode, error) {
	node := p.node(types.NodeLiteral, p.current.Position)

	unescaped, err := unescapeString(p.current.Value)
	if err != nil {
		return nil, p.error(types.ErrInvalidEscape, fmt.Sprintf("Invalid string literal: %v", err))
	}

	node.Value = unescaped
	p.advance()
	return node, nil
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	node := p.node(types.NodeLiteral, p.current.Position)

	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.error(types.ErrInvalidNumber, fmt.Sprintf("Invalid number: %s", p.current.Value))
	}

	node.Value = val
	p.advance()
	return node, nil
}

// parseBoolean parses a boolean literal.
func (p *Parser) parseBoolean() (*types.ASTNode, error) {
	node := p.node(types.NodeLiteral, p.current.Position)
	node.Value = p.current.Value == "true"
	p.advance()
	return node, nil
}

// parseNullLiteral parses a null literal.
func (p *Parser) parseNullLiteral() (*types.ASTNode, error) {
	node := p.node(types.NodeLiteral, p.current.Position)
	node.Value = types.NullValue
	p.advance()
	return node, nil
}

// parseUnaryMinus parses a unary minus. A literal number operand is folded
// into a negative literal; anything else becomes a subtraction from zero.
func (p *Parser) parseUnaryMinus() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance()

	expr, err := p.parseExpression(70)
	if err != nil {
		return nil, err
	}

	if expr.Type == types.NodeLiteral {
		if n, ok := expr.Value.(float64); ok {
			expr.Value = -n
			return expr, nil
		}
	}

	zero := p.node(types.NodeLiteral, pos)
	zero.Value = float64(0)
	node := p.node(types.NodeBinary, pos)
	node.StrValue = "-"
	node.LHS = zero
	node.RHS = expr
	return node, nil
}

// parseGrouping parses a parenthesized expression.
func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	p.advance() // Skip '('

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseArrayConstructor parses an array constructor [...].
func (p *Parser) parseArrayConstructor() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // Skip '['

	node := p.node(types.NodeArray, pos)
	node.Expressions = []*types.ASTNode{}

	if p.current.Type == TokenBracketClose {
		p.advance()
		return node, nil
	}

	for {
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Expressions = append(node.Expressions, expr)

		if p.current.Type == TokenBracketClose {
			p.advance()
			break
		}

		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// parseObjectConstructor parses an object constructor {...}.
// Keys are names, string literals, or parenthesized computed expressions.
func (p *Parser) parseObjectConstructor() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // Skip '{'

	node := p.node(types.NodeObject, pos)
	node.Expressions = []*types.ASTNode{}

	if p.current.Type == TokenBraceClose {
		p.advance()
		return node, nil
	}

	for {
		key, err := p.parseObjectKey()
		if err != nil {
			return nil, err
		}

		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}

		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}

		pair := p.node(types.NodePair, key.Position)
		pair.LHS = key
		pair.RHS = value
		node.Expressions = append(node.Expressions, pair)

		if p.current.Type == TokenBraceClose {
			p.advance()
			break
		}

		if err := p.expect(TokenComma); err != nil {
			return nil, err
		}
	}

	return node, nil
}

// parseObjectKey parses a single object-constructor key.
func (p *Parser) parseObjectKey() (*types.ASTNode, error) {
	switch p.current.Type {
	case TokenName:
		key := p.node(types.NodeLiteral, p.current.Position)
		key.Value = p.current.Value
		p.advance()
		return key, nil
	case TokenString:
		return p.parseString()
	case TokenParenOpen:
		return p.parseGrouping()
	default:
		return nil, p.error(types.ErrExpectedToken, "Expected object key")
	}
}

// parseCall parses a function call: a bare name (zero-argument call such
// as "length") or name(arg, arg, ...). Arity and argument types are not
// validated here; that is the evaluator's responsibility.
//
// del(path) is recognized structurally and becomes a delete node.
func (p *Parser) parseCall() (*types.ASTNode, error) {
	name := p.current.Value
	pos := p.current.Position
	p.advance()

	if name == "del" {
		return p.parseDelete(pos)
	}

	node := p.node(types.NodeCall, pos)
	node.StrValue = name

	if p.current.Type != TokenParenOpen {
		return node, nil
	}
	p.advance() // Skip '('

	node.Arguments = []*types.ASTNode{}
	if p.current.Type != TokenParenClose {
		for {
			arg, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			node.Arguments = append(node.Arguments, arg)

			if p.current.Type == TokenParenClose {
				break
			}
			if err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return node, nil
}

// parseDelete parses del(path). The "del" name has been consumed.
func (p *Parser) parseDelete(pos int) (*types.ASTNode, error) {
	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	path, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	node := p.node(types.NodeDelete, pos)
	node.LHS = path
	return node, nil
}

// parseConditional parses if C then A elif C2 then B else D end.
// Branches are flattened into (condition, then) pairs; the else branch is
// mandatory.
func (p *Parser) parseConditional() (*types.ASTNode, error) {
	pos := p.current.Position
	p.advance() // Skip 'if'

	node := p.node(types.NodeCondition, pos)

	for {
		cond, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenThen); err != nil {
			return nil, err
		}
		then, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		node.Expressions = append(node.Expressions, cond, then)

		if p.current.Type != TokenElif {
			break
		}
		p.advance() // Skip 'elif'
	}

	if err := p.expect(TokenElse); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	node.RHS = elseExpr

	if err := p.expect(TokenEnd); err != nil {
		return nil, err
	}
	return node, nil
}

// unescapeString processes escape sequences in a string literal.
// Handles standard escapes (\n, \t, etc.) and Unicode escapes (\uXXXX),
// including UTF-16 surrogate pairs for characters outside the BMP.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil // Fast path: no escapes
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++ // Skip backslash
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case '\\':
			result.WriteByte('\\')
		case '"':
			result.WriteByte('"')
		case '/':
			result.WriteByte('/')
		case 'u':
			// Unicode escape: \uXXXX
			if i+4 >= len(s) {
				return "", fmt.Errorf("invalid \\u escape: not enough characters")
			}
			hex := s[i+1 : i+5]
			codePoint, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape: %s", hex)
			}
			i += 4

			r := rune(codePoint)

			// High surrogate: expect a low surrogate next
			if r >= 0xD800 && r <= 0xDBFF && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				lowHex := s[i+3 : i+7]
				lowCodePoint, err := strconv.ParseUint(lowHex, 16, 16)
				if err == nil {
					low := rune(lowCodePoint)
					if low >= 0xDC00 && low <= 0xDFFF {
						decoded := utf16.Decode([]uint16{uint16(r), uint16(low)})
						if len(decoded) > 0 {
							result.WriteRune(decoded[0])
							i += 6 // Skip \uXXXX
							continue
						}
					}
				}
			}
			result.WriteRune(r)
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}

	return result.String(), nil
}
