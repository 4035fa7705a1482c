package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jnkit/zq/pkg/parser"
	"github.com/jnkit/zq/pkg/types"
)

func TestCheckSupportedRejects(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"variable", `.a as $x | $x`},
		{"variable alone", `$ENV`},
		{"format string", `@base64`},
		{"recursive descent", `.. | .name?`},
		{"assignment", `.a = 1`},
		{"update assignment", `.a |= . + 1`},
		{"string interpolation", `"value: \(.a)"`},
		{"reduce", `reduce .[] as $x (0; . + $x)`},
		{"foreach", `foreach .[] as $x (0; . + $x)`},
		{"def", `def f: . + 1; f`},
		{"try", `try .a`},
		{"catch", `try .a catch "oops"`},
		{"label", `label $out | break $out`},
		{"import", `import "mod"`},
		{"include", `include "mod"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parser.CheckSupported(tt.query)
			if err == nil {
				t.Fatalf("CheckSupported(%q): expected error", tt.query)
			}
			if types.CodeOf(err) != types.ErrUnsupportedFeature {
				t.Errorf("code %s, want %s", types.CodeOf(err), types.ErrUnsupportedFeature)
			}

			var ze *types.Error
			if !errors.As(err, &ze) {
				t.Fatalf("error is not *types.Error: %T", err)
			}
			if ze.Hint == "" {
				t.Error("missing hint")
			}
			if ze.Position < 0 {
				t.Errorf("position = %d", ze.Position)
			}
		})
	}
}

func TestCheckSupportedAccepts(t *testing.T) {
	queries := []string{
		".",
		".user.name",
		".items[] | select(.price > 100)",
		`.a == 1 and .b != 2`,
		`.x <= 3 or .y >= 4`,
		".count // 0",
		`"a $literal dollar stays in strings"`,
		`"an @at and a \"quote\" too"`,
		".a # comment with $ and @ and = inside\n| .b",
		"if .a then 1 else 2 end",
		"del(.secret)",
		"[.[] | . * 2]",
		"{ asname: .x }", // "as" only matches as a whole word
		".reduce",        // keyword spelled as a field name
		".try.catch",
		".data.as",
		"{ as: .x }", // keyword as an object key
		"{reduce: .n, try : .m}",
		".[1:3]",
	}

	for _, query := range queries {
		if err := parser.CheckSupported(query); err != nil {
			t.Errorf("CheckSupported(%q): %v", query, err)
		}
	}
}

func TestCheckSupportedNamesConstruct(t *testing.T) {
	err := parser.CheckSupported(".a = 1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "assignment") {
		t.Errorf("error does not name the construct: %v", err)
	}
	if !strings.Contains(err.Error(), "hint") {
		t.Errorf("error does not carry a hint: %v", err)
	}
}
