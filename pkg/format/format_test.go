package format_test

import (
	"testing"

	"github.com/jnkit/zq/pkg/format"
	"github.com/jnkit/zq/pkg/types"
)

func formatted(t *testing.T, v interface{}, cfg types.Config) string {
	t.Helper()

	out, err := format.Format(v, cfg)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	return out
}

func sampleObject() *types.Object {
	obj := types.NewObject()
	obj.Set("name", "ada")
	obj.Set("tags", []interface{}{"a", "b"})
	return obj
}

func TestFormatCompact(t *testing.T) {
	cfg := types.Config{Compact: true}

	tests := []struct {
		value interface{}
		want  string
	}{
		{types.NullValue, `null`},
		{true, `true`},
		{42.0, `42`},
		{"hi", `"hi"`},
		{[]interface{}{1.0, 2.0}, `[1,2]`},
		{sampleObject(), `{"name":"ada","tags":["a","b"]}`},
	}

	for _, tt := range tests {
		if got := formatted(t, tt.value, cfg); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestFormatPretty(t *testing.T) {
	got := formatted(t, sampleObject(), types.Config{})

	want := `{
  "name": "ada",
  "tags": ["a", "b"]
}`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatPrettyNoTrailingNewline(t *testing.T) {
	got := formatted(t, []interface{}{1.0}, types.Config{})
	if len(got) == 0 || got[len(got)-1] == '\n' {
		t.Errorf("trailing newline in %q", got)
	}
}

func TestFormatRaw(t *testing.T) {
	cfg := types.Config{Raw: true}

	// Top-level strings lose their quotes.
	if got := formatted(t, "hello world", cfg); got != "hello world" {
		t.Errorf("got %q", got)
	}
	// Everything else is unaffected.
	if got := formatted(t, 42.0, cfg); got != "42" {
		t.Errorf("got %q", got)
	}
	// Strings nested in containers stay quoted.
	cfg.Compact = true
	if got := formatted(t, []interface{}{"a"}, cfg); got != `["a"]` {
		t.Errorf("got %q", got)
	}
}

func TestFormatKeyOrderStable(t *testing.T) {
	obj := types.NewObject()
	obj.Set("z", 1.0)
	obj.Set("a", 2.0)

	if got := formatted(t, obj, types.Config{Compact: true}); got != `{"z":1,"a":2}` {
		t.Errorf("keys reordered: %q", got)
	}
}
