package evaluator

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/jnkit/zq/pkg/types"
)

// Type conversion and inspection builtins.

func fnTonumber(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	switch v := input.(type) {
	case float64:
		return one(v), nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		// ParseFloat accepts "Inf" and "NaN"; neither is a JSON number.
		if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return nil, types.NewError(types.ErrArgumentType,
				fmt.Sprintf("Cannot parse %q as a number", v), call.Position).WithToken("tonumber")
		}
		return one(n), nil
	default:
		return nil, argTypeError("tonumber", input, call.Position)
	}
}

func fnTostring(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	if s, ok := input.(string); ok {
		return one(s), nil
	}
	s, err := encodeCompact(input)
	if err != nil {
		return nil, types.NewError(types.ErrArgumentType,
			fmt.Sprintf("Cannot convert %s to string", types.Kind(input)),
			call.Position).WithToken("tostring").WithCause(err)
	}
	return one(s), nil
}

func fnType(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	return one(types.Kind(input)), nil
}

func fnIsNumber(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	_, ok := input.(float64)
	return one(ok), nil
}

func fnIsString(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	_, ok := input.(string)
	return one(ok), nil
}

func fnIsArray(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	_, ok := input.([]interface{})
	return one(ok), nil
}

func fnIsObject(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	_, ok := input.(*types.Object)
	return one(ok), nil
}

func fnIsBoolean(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	_, ok := input.(bool)
	return one(ok), nil
}

func fnIsNull(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	_, ok := input.(types.Null)
	return one(ok || input == nil), nil
}
