package parser_test

import (
	"strings"
	"testing"

	"github.com/jnkit/zq/pkg/parser"
	"github.com/jnkit/zq/pkg/types"
)

// parse compiles a query, failing the test on error.
func parse(t *testing.T, query string) *types.ASTNode {
	t.Helper()

	expr, err := parser.Compile(query)
	if err != nil {
		t.Fatalf("Compile(%q): %v", query, err)
	}
	return expr.AST()
}

// parseErr compiles a query that must fail and returns the error.
func parseErr(t *testing.T, query string) error {
	t.Helper()

	_, err := parser.Compile(query)
	if err == nil {
		t.Fatalf("Compile(%q): expected error", query)
	}
	return err
}

func TestParseIdentity(t *testing.T) {
	ast := parse(t, ".")
	if ast.Type != types.NodeIdentity {
		t.Errorf("got %s, want identity", ast.Type)
	}
}

func TestParseFieldChain(t *testing.T) {
	ast := parse(t, ".user.name")
	if ast.Type != types.NodeField || ast.StrValue != "name" {
		t.Fatalf("outer node: %s %q", ast.Type, ast.StrValue)
	}
	if ast.LHS.Type != types.NodeField || ast.LHS.StrValue != "user" {
		t.Fatalf("inner node: %s %q", ast.LHS.Type, ast.LHS.StrValue)
	}
	if ast.LHS.LHS.Type != types.NodeIdentity {
		t.Fatalf("base node: %s", ast.LHS.LHS.Type)
	}
}

func TestParseQuotedField(t *testing.T) {
	ast := parse(t, `."field with spaces"`)
	if ast.Type != types.NodeField || ast.StrValue != "field with spaces" {
		t.Errorf("got %s %q", ast.Type, ast.StrValue)
	}
}

func TestParseBracketForms(t *testing.T) {
	tests := []struct {
		query string
		want  types.NodeType
	}{
		{".[]", types.NodeIterate},
		{".items[]", types.NodeIterate},
		{".[0]", types.NodeIndex},
		{`.["key"]`, types.NodeIndex},
		{".[1:3]", types.NodeSlice},
		{".[2:]", types.NodeSlice},
		{".[:2]", types.NodeSlice},
	}

	for _, tt := range tests {
		ast := parse(t, tt.query)
		if ast.Type != tt.want {
			t.Errorf("%q: got %s, want %s", tt.query, ast.Type, tt.want)
		}
	}
}

func TestParseSliceBounds(t *testing.T) {
	ast := parse(t, ".[2:]")
	if len(ast.Arguments) != 2 {
		t.Fatalf("got %d slice bounds, want 2", len(ast.Arguments))
	}
	if ast.Arguments[0] == nil || ast.Arguments[1] != nil {
		t.Errorf("bounds = [%v, %v], want [set, nil]", ast.Arguments[0], ast.Arguments[1])
	}

	ast = parse(t, ".[:2]")
	if ast.Arguments[0] != nil || ast.Arguments[1] == nil {
		t.Errorf("bounds = [%v, %v], want [nil, set]", ast.Arguments[0], ast.Arguments[1])
	}
}

func TestParseOptional(t *testing.T) {
	ast := parse(t, ".a.b?")
	if ast.Type != types.NodeOptional {
		t.Fatalf("got %s, want optional", ast.Type)
	}
	if ast.LHS.Type != types.NodeField || ast.LHS.StrValue != "b" {
		t.Errorf("optional wraps %s %q", ast.LHS.Type, ast.LHS.StrValue)
	}
}

func TestParsePrecedence(t *testing.T) {
	// | binds loosest: .a | .b + 1 parses as .a | (.b + 1)
	ast := parse(t, ".a | .b + 1")
	if ast.Type != types.NodePipe {
		t.Fatalf("root: got %s, want pipe", ast.Type)
	}
	if ast.RHS.Type != types.NodeBinary || ast.RHS.StrValue != "+" {
		t.Errorf("pipe rhs: got %s %q", ast.RHS.Type, ast.RHS.StrValue)
	}

	// * binds tighter than +: 1 + 2 * 3 parses as 1 + (2 * 3)
	ast = parse(t, "1 + 2 * 3")
	if ast.Type != types.NodeBinary || ast.StrValue != "+" {
		t.Fatalf("root: got %s %q, want +", ast.Type, ast.StrValue)
	}
	if ast.RHS.Type != types.NodeBinary || ast.RHS.StrValue != "*" {
		t.Errorf("rhs: got %s %q, want *", ast.RHS.Type, ast.RHS.StrValue)
	}

	// comparison binds tighter than and
	ast = parse(t, ".a == 1 and .b == 2")
	if ast.Type != types.NodeAnd {
		t.Fatalf("root: got %s, want and", ast.Type)
	}

	// // binds tighter than |
	ast = parse(t, ".a | .b // 0")
	if ast.Type != types.NodePipe {
		t.Fatalf("root: got %s, want pipe", ast.Type)
	}
	if ast.RHS.Type != types.NodeAlternative {
		t.Errorf("rhs: got %s, want alternative", ast.RHS.Type)
	}
}

func TestParseConstructors(t *testing.T) {
	ast := parse(t, "[.a, .b, 1]")
	if ast.Type != types.NodeArray || len(ast.Expressions) != 3 {
		t.Fatalf("array: %s with %d elements", ast.Type, len(ast.Expressions))
	}

	ast = parse(t, `{name: .n, "full name": .f, (.k): 1}`)
	if ast.Type != types.NodeObject || len(ast.Expressions) != 3 {
		t.Fatalf("object: %s with %d pairs", ast.Type, len(ast.Expressions))
	}
	for _, pair := range ast.Expressions {
		if pair.Type != types.NodePair {
			t.Errorf("pair node: %s", pair.Type)
		}
	}
	// Bare name and string keys are literals; the parenthesized key stays an
	// expression.
	if ast.Expressions[0].LHS.Value != "name" {
		t.Errorf("first key: %v", ast.Expressions[0].LHS.Value)
	}
	if ast.Expressions[2].LHS.Type != types.NodeField {
		t.Errorf("computed key: %s", ast.Expressions[2].LHS.Type)
	}
}

func TestParseConditional(t *testing.T) {
	ast := parse(t, "if .a then 1 elif .b then 2 else 3 end")
	if ast.Type != types.NodeCondition {
		t.Fatalf("got %s, want condition", ast.Type)
	}
	if len(ast.Expressions) != 4 {
		t.Errorf("got %d branch nodes, want 4 (two cond/then pairs)", len(ast.Expressions))
	}
	if ast.RHS == nil {
		t.Error("missing else branch")
	}
}

func TestParseConditionalRequiresElseAndEnd(t *testing.T) {
	for _, query := range []string{
		"if .a then 1 end",
		"if .a then 1 else 2",
	} {
		err := parseErr(t, query)
		if types.CodeOf(err) != types.ErrExpectedToken {
			t.Errorf("%q: code %s, want %s", query, types.CodeOf(err), types.ErrExpectedToken)
		}
	}
}

func TestParseCalls(t *testing.T) {
	ast := parse(t, "length")
	if ast.Type != types.NodeCall || ast.StrValue != "length" {
		t.Fatalf("bare call: %s %q", ast.Type, ast.StrValue)
	}

	ast = parse(t, "ltrimstr(\"x\")")
	if ast.Type != types.NodeCall || len(ast.Arguments) != 1 {
		t.Fatalf("call with arg: %s, %d args", ast.Type, len(ast.Arguments))
	}
}

func TestParseDelete(t *testing.T) {
	ast := parse(t, "del(.a.b)")
	if ast.Type != types.NodeDelete {
		t.Fatalf("got %s, want delete", ast.Type)
	}
	if ast.LHS.Type != types.NodeField || ast.LHS.StrValue != "b" {
		t.Errorf("path leaf: %s %q", ast.LHS.Type, ast.LHS.StrValue)
	}
}

func TestParseNegativeNumbers(t *testing.T) {
	ast := parse(t, "-5")
	if ast.Type != types.NodeLiteral || ast.Value != -5.0 {
		t.Errorf("got %s %v, want literal -5", ast.Type, ast.Value)
	}

	// Negating a non-literal becomes 0 - expr.
	ast = parse(t, "-.a")
	if ast.Type != types.NodeBinary || ast.StrValue != "-" {
		t.Errorf("got %s %q, want binary -", ast.Type, ast.StrValue)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		query string
		code  types.ErrorCode
	}{
		{"", types.ErrSyntax},
		{".a |", types.ErrSyntax},
		{".a )", types.ErrSyntax},
		{"[1, 2", types.ErrExpectedToken},
		{"{a 1}", types.ErrExpectedToken},
		{`."unclosed`, types.ErrStringNotClosed},
	}

	for _, tt := range tests {
		err := parseErr(t, tt.query)
		if types.CodeOf(err) != tt.code {
			t.Errorf("%q: code %s, want %s", tt.query, types.CodeOf(err), tt.code)
		}
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := strings.Repeat("(", 200) + "." + strings.Repeat(")", 200)
	_, err := parser.Compile(deep)
	if types.CodeOf(err) != types.ErrDepthExceeded {
		t.Errorf("code %s, want %s", types.CodeOf(err), types.ErrDepthExceeded)
	}

	_, err = parser.Compile(deep, parser.WithMaxDepth(500))
	if err != nil {
		t.Errorf("raised limit: %v", err)
	}
}

func TestExpressionSource(t *testing.T) {
	expr, err := parser.Compile(".a | .b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if expr.Source() != ".a | .b" {
		t.Errorf("Source = %q", expr.Source())
	}
}
