package parser_test

import (
	"testing"

	"github.com/jnkit/zq/pkg/parser"
	"github.com/jnkit/zq/pkg/types"
)

// lex tokenizes the whole input, failing the test on a lexing error.
func lex(t *testing.T, input string) []parser.Token {
	t.Helper()

	l := parser.NewLexer(input)
	var tokens []parser.Token
	for {
		tok := l.Next()
		if tok.Type == parser.TokenError {
			t.Fatalf("lex error on %q: %v", input, l.Error())
		}
		if tok.Type == parser.TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func TestLexerSymbols(t *testing.T) {
	tests := []struct {
		input string
		want  []parser.TokenType
	}{
		{".", []parser.TokenType{parser.TokenDot}},
		{".[]", []parser.TokenType{parser.TokenDot, parser.TokenBracketOpen, parser.TokenBracketClose}},
		{"a | b", []parser.TokenType{parser.TokenName, parser.TokenPipe, parser.TokenName}},
		{"1 // 2", []parser.TokenType{parser.TokenNumber, parser.TokenAlternative, parser.TokenNumber}},
		{"1 / 2", []parser.TokenType{parser.TokenNumber, parser.TokenDiv, parser.TokenNumber}},
		{"a == b", []parser.TokenType{parser.TokenName, parser.TokenEqual, parser.TokenName}},
		{"a != b", []parser.TokenType{parser.TokenName, parser.TokenNotEqual, parser.TokenName}},
		{"a <= b", []parser.TokenType{parser.TokenName, parser.TokenLessEqual, parser.TokenName}},
		{"a < b", []parser.TokenType{parser.TokenName, parser.TokenLess, parser.TokenName}},
		{".a?", []parser.TokenType{parser.TokenDot, parser.TokenName, parser.TokenOptional}},
		{"{a: 1}", []parser.TokenType{parser.TokenBraceOpen, parser.TokenName, parser.TokenColon, parser.TokenNumber, parser.TokenBraceClose}},
	}

	for _, tt := range tests {
		tokens := lex(t, tt.input)
		if len(tokens) != len(tt.want) {
			t.Errorf("%q: got %d tokens, want %d", tt.input, len(tokens), len(tt.want))
			continue
		}
		for i, w := range tt.want {
			if tokens[i].Type != w {
				t.Errorf("%q token[%d]: got %s, want %s", tt.input, i, tokens[i].Type, w)
			}
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	tokens := lex(t, "if . then true elif false else null end and or")
	want := []parser.TokenType{
		parser.TokenIf, parser.TokenDot, parser.TokenThen, parser.TokenBoolean,
		parser.TokenElif, parser.TokenBoolean, parser.TokenElse, parser.TokenNull,
		parser.TokenEnd, parser.TokenAnd, parser.TokenOr,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token[%d]: got %s, want %s", i, tokens[i].Type, w)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"2.5e-3", "2.5e-3"},
	}

	for _, tt := range tests {
		tokens := lex(t, tt.input)
		if len(tokens) != 1 || tokens[0].Type != parser.TokenNumber {
			t.Errorf("%q: got %v, want one number token", tt.input, tokens)
			continue
		}
		if tokens[0].Value != tt.want {
			t.Errorf("%q: value %q, want %q", tt.input, tokens[0].Value, tt.want)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	tokens := lex(t, `"hello world"`)
	if len(tokens) != 1 || tokens[0].Type != parser.TokenString {
		t.Fatalf("got %v, want one string token", tokens)
	}
	if tokens[0].Value != "hello world" {
		t.Errorf("value %q, want %q", tokens[0].Value, "hello world")
	}
}

func TestLexerComments(t *testing.T) {
	tokens := lex(t, ".a # trailing comment\n| .b")
	want := []parser.TokenType{
		parser.TokenDot, parser.TokenName, parser.TokenPipe, parser.TokenDot, parser.TokenName,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		code  types.ErrorCode
	}{
		{`"unterminated`, types.ErrStringNotClosed},
		{`= 1`, types.ErrSyntax},
		{`! true`, types.ErrSyntax},
		{"`backtick`", types.ErrSyntax},
	}

	for _, tt := range tests {
		l := parser.NewLexer(tt.input)
		var tok parser.Token
		for {
			tok = l.Next()
			if tok.Type == parser.TokenError || tok.Type == parser.TokenEOF {
				break
			}
		}
		if tok.Type != parser.TokenError {
			t.Errorf("%q: expected a lex error", tt.input)
			continue
		}
		if types.CodeOf(l.Error()) != tt.code {
			t.Errorf("%q: code %s, want %s", tt.input, types.CodeOf(l.Error()), tt.code)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := lex(t, ".name | length")
	wantPos := []int{0, 1, 6, 8}
	for i, p := range wantPos {
		if tokens[i].Position != p {
			t.Errorf("token[%d] position = %d, want %d", i, tokens[i].Position, p)
		}
	}
}
