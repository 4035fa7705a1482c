// Package runner drives the streaming evaluation loop: it reads NDJSON
// records from an input stream, evaluates the compiled query against each
// one, and writes the formatted results to an output stream.
//
// The loop is strictly line-oriented and processes one record at a time;
// memory use is bounded by the largest single record, not the stream, except
// in slurp mode which by definition holds the whole input.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"syscall"

	"github.com/jnkit/zq/pkg/evaluator"
	"github.com/jnkit/zq/pkg/format"
	"github.com/jnkit/zq/pkg/types"
)

const (
	// initialBufSize is the starting size of the line scanner buffer.
	initialBufSize = 64 * 1024
	// maxLineSize bounds a single NDJSON record.
	maxLineSize = 16 * 1024 * 1024
)

// Runner executes a compiled query against an NDJSON stream.
type Runner struct {
	expr   *types.Expression
	eval   *evaluator.Evaluator
	cfg    types.Config
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-record diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithEvaluator replaces the default evaluator, for embedders that need
// custom functions or evaluation limits.
func WithEvaluator(eval *evaluator.Evaluator) Option {
	return func(r *Runner) {
		r.eval = eval
	}
}

// New creates a Runner for a compiled query.
func New(expr *types.Expression, cfg types.Config, opts ...Option) *Runner {
	r := &Runner{
		expr: expr,
		cfg:  cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.eval == nil {
		r.eval = evaluator.New(evaluator.WithConfig(cfg), evaluator.WithLogger(r.logger))
	}
	return r
}

// Run processes the input stream until EOF.
//
// Malformed records and per-record evaluation failures are logged with
// their line number and skipped; the stream keeps flowing. When any record
// failed, Run returns an R0103 error after the stream ends so callers can
// exit non-zero. A write failure on a closed pipe stops reading immediately
// and returns an R0102 error.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if r.cfg.Slurp {
		return r.runSlurp(ctx, in, out)
	}

	w := bufio.NewWriter(out)
	scanner := newLineScanner(in)

	var lineNo, failures int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := types.DecodeJSON(line)
		if err != nil {
			failures++
			r.logger.Error("skipping malformed record", "line", lineNo, "error", err)
			continue
		}

		results, err := r.eval.Eval(ctx, r.expr, record)
		if err != nil {
			if !types.IsEvalError(err) {
				return err
			}
			failures++
			r.logger.Error("skipping record", "line", lineNo, "error", err)
			continue
		}

		if err := r.writeResults(w, results); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return types.NewError(types.ErrInvalidInput, "Cannot read input", -1).WithCause(err)
	}

	if err := flush(w); err != nil {
		return err
	}
	if failures > 0 {
		return types.NewError(types.ErrRecordFailures,
			fmt.Sprintf("%d record(s) failed", failures), -1)
	}
	return nil
}

// runSlurp collects the entire input into a single array and evaluates the
// query once against it.
func (r *Runner) runSlurp(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := newLineScanner(in)

	var lineNo, failures int
	records := []interface{}{}
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := types.DecodeJSON(line)
		if err != nil {
			failures++
			r.logger.Error("skipping malformed record", "line", lineNo, "error", err)
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return types.NewError(types.ErrInvalidInput, "Cannot read input", -1).WithCause(err)
	}

	results, err := r.eval.Eval(ctx, r.expr, records)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	if err := r.writeResults(w, results); err != nil {
		return err
	}
	if err := flush(w); err != nil {
		return err
	}
	if failures > 0 {
		return types.NewError(types.ErrRecordFailures,
			fmt.Sprintf("%d record(s) failed", failures), -1)
	}
	return nil
}

// writeResults formats and writes one result sequence, one result per line.
func (r *Runner) writeResults(w *bufio.Writer, results []interface{}) error {
	for _, v := range results {
		text, err := format.Format(v, r.cfg)
		if err != nil {
			return err
		}
		if _, err := w.WriteString(text); err != nil {
			return writeError(err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return writeError(err)
		}
	}
	return nil
}

func flush(w *bufio.Writer) error {
	if err := w.Flush(); err != nil {
		return writeError(err)
	}
	return nil
}

// writeError classifies an output failure. Writing into a closed pipe (the
// downstream consumer exited, e.g. head) is expected in shell pipelines and
// gets its own code so the CLI can exit without noise.
func writeError(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) {
		return types.NewError(types.ErrBrokenPipe, "Output pipe closed", -1).WithCause(err)
	}
	return types.NewError(types.ErrInvalidInput, "Cannot write output", -1).WithCause(err)
}

// newLineScanner builds the shared line scanner with the streaming buffer
// limits.
func newLineScanner(in io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, initialBufSize), maxLineSize)
	return scanner
}
