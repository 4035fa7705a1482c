package evaluator

import (
	"context"
	"math"

	"github.com/jnkit/zq/pkg/types"
)

// Math builtins. All require a number input.

func numericInput(name string, input interface{}, pos int) (float64, error) {
	n, ok := input.(float64)
	if !ok {
		return 0, argTypeError(name, input, pos)
	}
	return n, nil
}

func fnFloor(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	n, err := numericInput("floor", input, call.Position)
	if err != nil {
		return nil, err
	}
	return one(math.Floor(n)), nil
}

func fnCeil(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	n, err := numericInput("ceil", input, call.Position)
	if err != nil {
		return nil, err
	}
	return one(math.Ceil(n)), nil
}

func fnRound(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	n, err := numericInput("round", input, call.Position)
	if err != nil {
		return nil, err
	}
	return one(math.Round(n)), nil
}

func fnFabs(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	n, err := numericInput("fabs", input, call.Position)
	if err != nil {
		return nil, err
	}
	return one(math.Abs(n)), nil
}
