package runner_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"syscall"
	"testing"

	"github.com/jnkit/zq/pkg/parser"
	"github.com/jnkit/zq/pkg/runner"
	"github.com/jnkit/zq/pkg/types"
)

// runStream executes a query over an NDJSON input and returns the output
// and the final error.
func runStream(t *testing.T, query, input string, cfg types.Config) (string, error) {
	t.Helper()

	expr, err := parser.Compile(query)
	if err != nil {
		t.Fatalf("compile %q: %v", query, err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := runner.New(expr, cfg, runner.WithLogger(logger))

	var out strings.Builder
	runErr := r.Run(context.Background(), strings.NewReader(input), &out)
	return out.String(), runErr
}

func TestRunStreamBasic(t *testing.T) {
	input := `{"n":1}
{"n":2}
{"n":3}
`
	out, err := runStream(t, ".n", input, types.Config{Compact: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "1\n2\n3\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunStreamMultipleOutputsPerRecord(t *testing.T) {
	input := `{"xs":[1,2]}
{"xs":[]}
{"xs":[3]}
`
	out, err := runStream(t, ".xs[]", input, types.Config{Compact: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "1\n2\n3\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunStreamSkipsEmptyLines(t *testing.T) {
	input := "{\"n\":1}\n\n   \n{\"n\":2}\n"
	out, err := runStream(t, ".n", input, types.Config{Compact: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "1\n2\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunStreamSkipsBadRecords(t *testing.T) {
	input := `{"n":1}
not json at all
{"n":"string"}
{"n":3}
`
	// .n + 1 fails on the record where n is a string.
	out, err := runStream(t, ".n + 1", input, types.Config{Compact: true})

	// Good records still flow.
	if out != "2\n4\n" {
		t.Errorf("got %q", out)
	}
	// The run reports the failures at the end.
	if types.CodeOf(err) != types.ErrRecordFailures {
		t.Errorf("code %s, want %s", types.CodeOf(err), types.ErrRecordFailures)
	}
}

func TestRunStreamFiltering(t *testing.T) {
	input := `{"level":"error","msg":"a"}
{"level":"info","msg":"b"}
{"level":"error","msg":"c"}
`
	out, err := runStream(t, `select(.level == "error") | .msg`, input,
		types.Config{Compact: true, Raw: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "a\nc\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunSlurp(t *testing.T) {
	input := `{"n":3}
{"n":1}
{"n":2}
`
	out, err := runStream(t, "map(.n) | sort", input, types.Config{Compact: true, Slurp: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "[1,2,3]\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunSlurpLength(t *testing.T) {
	input := "{\"a\":1}\n{\"a\":2}\n"
	out, err := runStream(t, "length", input, types.Config{Compact: true, Slurp: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "2\n" {
		t.Errorf("got %q", out)
	}
}

func TestRunEmptyInput(t *testing.T) {
	out, err := runStream(t, ".", "", types.Config{Compact: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "" {
		t.Errorf("got %q", out)
	}
}

func TestRunPreservesKeyOrder(t *testing.T) {
	input := `{"zebra":1,"apple":2}
`
	out, err := runStream(t, ".", input, types.Config{Compact: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != `{"zebra":1,"apple":2}`+"\n" {
		t.Errorf("key order not preserved: %q", out)
	}
}

// brokenPipe fails every write the way a closed downstream pipe does.
type brokenPipe struct{}

func (brokenPipe) Write(p []byte) (int, error) {
	return 0, syscall.EPIPE
}

func TestRunClosedOutputPipe(t *testing.T) {
	expr, err := parser.Compile(".n")
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := runner.New(expr, types.Config{Compact: true}, runner.WithLogger(logger))

	runErr := r.Run(context.Background(), strings.NewReader("{\"n\":1}\n"), brokenPipe{})
	if types.CodeOf(runErr) != types.ErrBrokenPipe {
		t.Errorf("code %s, want %s", types.CodeOf(runErr), types.ErrBrokenPipe)
	}
}

func TestRunStructuralErrorIsFatal(t *testing.T) {
	// An unknown function is an eval error and skips records; but a
	// canceled context must abort the run.
	expr, err := parser.Compile(".")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := runner.New(expr, types.Config{}, runner.WithLogger(logger))

	var out strings.Builder
	if err := r.Run(ctx, strings.NewReader("{\"a\":1}\n"), &out); err == nil {
		t.Error("expected context error")
	}
}
