package parser

import (
	"fmt"

	"github.com/jnkit/zq/pkg/types"
)

// CheckSupported scans a raw query for jq constructs outside the supported
// subset and returns a structured U-coded error naming the construct, its
// byte offset, and a suggested alternative. It runs before parsing, using
// targeted pattern checks rather than a full grammar.
//
// The checks are deliberately conservative: a missed unsupported construct
// later fails as a parse error, which is acceptable; rejecting valid
// supported syntax is not.
func CheckSupported(query string) error {
	// Keywords that introduce unsupported constructs, with hints.
	keywords := map[string]string{
		"reduce":  "aggregate with slurp mode (-s) and add/group_by instead",
		"foreach": "aggregate with slurp mode (-s) and add/group_by instead",
		"def":     "user-defined functions are not supported; inline the expression",
		"import":  "modules are not supported",
		"include": "modules are not supported",
		"try":     "append the ? operator to the failing access instead",
		"catch":   "append the ? operator to the failing access instead",
		"label":   "label/break is not supported",
		"as":      "variable bindings are not supported; repeat the source expression",
	}

	inString := false
	inComment := false
	var prev byte

	for i := 0; i < len(query); i++ {
		c := query[i]

		if inComment {
			if c == '\n' {
				inComment = false
			}
			prev = c
			continue
		}

		if inString {
			switch c {
			case '\\':
				// String interpolation "\(expr)" or a plain escape.
				if i+1 < len(query) && query[i+1] == '(' {
					return unsupported("string interpolation", i,
						"concatenate with + and tostring instead")
				}
				i++ // Skip the escaped character
			case '"':
				inString = false
			}
			prev = c
			continue
		}

		switch {
		case c == '"':
			inString = true
		case c == '#':
			inComment = true
		case c == '$':
			return unsupported("variable reference", i,
				"parameters must be substituted into the query before it reaches the engine")
		case c == '@':
			return unsupported("format string", i,
				"format strings are not supported; use join and tostring")
		case c == '.' && prev == '.':
			return unsupported("recursive descent (..)", i-1,
				"spell out the path explicitly with .[] iteration")
		case c == '=' && prev != '=' && prev != '!' && prev != '<' && prev != '>':
			if i+1 >= len(query) || query[i+1] != '=' {
				return unsupported("assignment", i,
					"build a new value with an object constructor {...} instead")
			}
			i++ // Skip the second '=' of a comparison
			c = '='
		case isNameStart(rune(c)) && !isNameRune(rune(prev)):
			j := i
			for j < len(query) && isNameRune(rune(query[j])) {
				j++
			}
			word := query[i:j]
			// A keyword spelled as a field access (.reduce) or an object
			// key (reduce: ...) is an ordinary name, not the construct.
			if hint, ok := keywords[word]; ok && prev != '.' && !followedByColon(query, j) {
				return unsupported(fmt.Sprintf("%q", word), i, hint)
			}
			i = j - 1
			c = query[j-1]
		}
		prev = c
	}

	return nil
}

// followedByColon reports whether the next non-space character at or after
// pos is a colon, marking the preceding word as an object construction key.
func followedByColon(query string, pos int) bool {
	for pos < len(query) && (query[pos] == ' ' || query[pos] == '\t') {
		pos++
	}
	return pos < len(query) && query[pos] == ':'
}

// unsupported builds the structured feature-detector error.
func unsupported(construct string, position int, hint string) error {
	e := types.NewError(types.ErrUnsupportedFeature,
		fmt.Sprintf("Unsupported construct: %s", construct), position)
	e.Token = construct
	return e.WithHint(hint)
}
