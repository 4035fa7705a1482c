package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/jnkit/zq/pkg/types"
)

// String builtins.

// stringArg evaluates a builtin argument that must be a string.
func (e *Evaluator) stringArg(ctx context.Context, name string, arg *types.ASTNode, input interface{}, depth, pos int) (string, error) {
	v, err := e.evalSingle(ctx, arg, input, depth)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", types.NewError(types.ErrArgumentType,
			fmt.Sprintf("%s requires a string argument, got %s", name, types.Kind(v)),
			pos).WithToken(name)
	}
	return s, nil
}

func fnSplit(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argTypeError("split", input, call.Position)
	}
	sep, err := e.stringArg(ctx, "split", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(s, sep)
	out := make([]interface{}, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return one(out), nil
}

func fnJoin(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("join", input, call.Position)
	}
	sep, err := e.stringArg(ctx, "join", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}

	parts := make([]string, len(arr))
	for i, v := range arr {
		switch elem := v.(type) {
		case string:
			parts[i] = elem
		case types.Null, nil:
			parts[i] = ""
		case float64, bool:
			s, err := encodeCompact(elem)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		default:
			return nil, types.NewError(types.ErrArgumentType,
				fmt.Sprintf("join cannot render %s element", types.Kind(v)),
				call.Position).WithToken("join")
		}
	}
	return one(strings.Join(parts, sep)), nil
}

func fnStartswith(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argTypeError("startswith", input, call.Position)
	}
	prefix, err := e.stringArg(ctx, "startswith", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}
	return one(strings.HasPrefix(s, prefix)), nil
}

func fnEndswith(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argTypeError("endswith", input, call.Position)
	}
	suffix, err := e.stringArg(ctx, "endswith", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}
	return one(strings.HasSuffix(s, suffix)), nil
}

func fnContains(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argTypeError("contains", input, call.Position)
	}
	sub, err := e.stringArg(ctx, "contains", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}
	return one(strings.Contains(s, sub)), nil
}

// fnLtrimstr removes a leading occurrence of the argument. Non-string
// inputs pass through unchanged.
func fnLtrimstr(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	prefix, err := e.stringArg(ctx, "ltrimstr", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}
	s, ok := input.(string)
	if !ok {
		return one(input), nil
	}
	return one(strings.TrimPrefix(s, prefix)), nil
}

// fnRtrimstr removes a trailing occurrence of the argument. Non-string
// inputs pass through unchanged.
func fnRtrimstr(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	suffix, err := e.stringArg(ctx, "rtrimstr", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}
	s, ok := input.(string)
	if !ok {
		return one(input), nil
	}
	return one(strings.TrimSuffix(s, suffix)), nil
}

func fnTest(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argTypeError("test", input, call.Position)
	}
	pattern, err := e.stringArg(ctx, "test", call.Arguments[0], input, depth, call.Position)
	if err != nil {
		return nil, err
	}

	re, err := getRegex(pattern)
	if err != nil {
		return nil, types.NewError(types.ErrArgumentType,
			fmt.Sprintf("Invalid regular expression: %s", pattern),
			call.Position).WithToken("test").WithCause(err)
	}
	return one(re.MatchString(s)), nil
}

func fnAsciiDowncase(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argTypeError("ascii_downcase", input, call.Position)
	}
	return one(asciiMap(s, 'A', 'Z', 'a'-'A')), nil
}

func fnAsciiUpcase(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, argTypeError("ascii_upcase", input, call.Position)
	}
	return one(asciiMap(s, 'a', 'z', 'A'-'a')), nil
}

// asciiMap shifts bytes in [lo, hi] by delta, leaving everything else
// untouched. Multi-byte UTF-8 sequences are outside the ASCII range and
// pass through unchanged.
func asciiMap(s string, lo, hi byte, delta int) string {
	mapped := []byte(s)
	changed := false
	for i, c := range mapped {
		if c >= lo && c <= hi {
			mapped[i] = byte(int(c) + delta)
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(mapped)
}
