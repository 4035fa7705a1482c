package zq_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jnkit/zq"
	"github.com/jnkit/zq/pkg/types"
)

func TestEval(t *testing.T) {
	input, err := types.DecodeJSON(`{"user":{"name":"ada"},"tags":["x","y"]}`)
	if err != nil {
		t.Fatal(err)
	}

	results, err := zq.Eval(context.Background(), ".user.name", input)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(results) != 1 || results[0] != "ada" {
		t.Errorf("got %v", results)
	}

	results, err = zq.Eval(context.Background(), ".tags[]", input)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestCompileReuse(t *testing.T) {
	expr, err := zq.Compile(".n * 2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if expr.Source() != ".n * 2" {
		t.Errorf("Source = %q", expr.Source())
	}
}

func TestCompileRejectsUnsupported(t *testing.T) {
	_, err := zq.Compile(`.a as $x | $x`)
	if types.CodeOf(err) != types.ErrUnsupportedFeature {
		t.Errorf("code %s, want %s", types.CodeOf(err), types.ErrUnsupportedFeature)
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	zq.MustCompile(".a |")
}

func TestCompilerCaches(t *testing.T) {
	c := zq.NewCompiler(8)

	first, err := c.Compile(".a")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := c.Compile(".a")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if first != second {
		t.Error("second compile did not reuse the cached expression")
	}
}

func TestEndToEndTransform(t *testing.T) {
	input, err := types.DecodeJSON(`{"items":[{"name":"a","price":120},{"name":"b","price":80}]}`)
	if err != nil {
		t.Fatal(err)
	}

	results, err := zq.Eval(context.Background(),
		`[.items[] | select(.price > 100) | .name]`, input)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}

	data, err := json.Marshal(results[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a"]` {
		t.Errorf("got %s", data)
	}
}
