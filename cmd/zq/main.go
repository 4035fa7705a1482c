// Command zq filters and transforms NDJSON streams with a jq-compatible
// query language.
//
// Usage:
//
//	zq [flags] QUERY < input.ndjson
//
// Exit codes: 0 on success, 1 when one or more records failed, 2 on a
// query compilation error. A closed output pipe (e.g. piping into head)
// exits 0 silently.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jnkit/zq/pkg/evaluator"
	"github.com/jnkit/zq/pkg/parser"
	"github.com/jnkit/zq/pkg/runner"
	"github.com/jnkit/zq/pkg/types"
)

var (
	flagCompact bool
	flagRaw     bool
	flagSlurp   bool
	flagDebug   bool
)

func main() {
	// Keep the runtime from re-raising SIGPIPE when stdout closes mid-stream
	// (zq ... | head). Writes then fail with EPIPE, which the runner maps to
	// a clean broken-pipe exit.
	signal.Ignore(syscall.SIGPIPE)

	root := &cobra.Command{
		Use:   "zq [flags] QUERY",
		Short: "Filter and transform NDJSON streams with jq-style queries",
		Long: `zq reads newline-delimited JSON from standard input, evaluates the
query against each record, and writes the results to standard output.

Examples:
  zq '.user.name' < events.ndjson
  zq -c '.items[] | select(.price > 100)' < catalog.ndjson
  zq -s 'group_by(.host) | map({host: .[0].host, n: length})' < logs.ndjson`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.Flags().BoolVarP(&flagCompact, "compact", "c", false, "compact output (no pretty-printing)")
	root.Flags().BoolVarP(&flagRaw, "raw", "r", false, "print top-level strings without quotes")
	root.Flags().BoolVarP(&flagSlurp, "slurp", "s", false, "read the whole input into one array and evaluate once")
	root.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		switch types.CodeOf(err) {
		case types.ErrBrokenPipe:
			os.Exit(0)
		case types.ErrRecordFailures:
			fmt.Fprintln(os.Stderr, "zq:", err)
			os.Exit(1)
		default:
			fmt.Fprintln(os.Stderr, "zq:", err)
			os.Exit(2)
		}
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger(flagDebug)

	expr, err := parser.Compile(args[0])
	if err != nil {
		return err
	}

	cfg := types.Config{
		Compact: flagCompact,
		Raw:     flagRaw,
		Slurp:   flagSlurp,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eval := evaluator.New(
		evaluator.WithConfig(cfg),
		evaluator.WithLogger(logger),
		evaluator.WithDebug(flagDebug),
	)
	r := runner.New(expr, cfg,
		runner.WithLogger(logger),
		runner.WithEvaluator(eval),
	)

	return r.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

// newLogger builds the process logger. Diagnostics go to stderr so stdout
// stays a clean result stream.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
