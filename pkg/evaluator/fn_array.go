package evaluator

import (
	"context"
	"sort"

	"github.com/jnkit/zq/pkg/types"
)

// Array builtins. All of these require an array input and are total over
// the empty array (first/last/min/max of [] is null, the rest return []).

func fnFirst(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("first", input, call.Position)
	}
	if len(arr) == 0 {
		return one(types.NullValue), nil
	}
	return one(arr[0]), nil
}

func fnLast(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("last", input, call.Position)
	}
	if len(arr) == 0 {
		return one(types.NullValue), nil
	}
	return one(arr[len(arr)-1]), nil
}

func fnReverse(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("reverse", input, call.Position)
	}
	out := make([]interface{}, len(arr))
	for i, v := range arr {
		out[len(arr)-1-i] = v
	}
	return one(out), nil
}

func fnSort(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("sort", input, call.Position)
	}
	out := make([]interface{}, len(arr))
	copy(out, arr)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j]) < 0
	})
	return one(out), nil
}

// fnUnique removes duplicate values, keeping the first occurrence of each
// and preserving the original order of the survivors.
func fnUnique(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("unique", input, call.Position)
	}

	out := make([]interface{}, 0, len(arr))
	for _, v := range arr {
		seen := false
		for _, u := range out {
			if Equal(v, u) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return one(out), nil
}

func fnFlatten(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("flatten", input, call.Position)
	}

	levels := 1
	if len(call.Arguments) == 1 {
		v, err := e.evalSingle(ctx, call.Arguments[0], input, depth)
		if err != nil {
			return nil, err
		}
		n, ok := v.(float64)
		if !ok || n < 0 {
			return nil, types.NewError(types.ErrArgumentType,
				"flatten depth must be a non-negative number", call.Position).WithToken("flatten")
		}
		levels = int(n)
	}

	return one(flattenArray(arr, levels)), nil
}

func flattenArray(arr []interface{}, levels int) []interface{} {
	out := make([]interface{}, 0, len(arr))
	for _, v := range arr {
		if nested, ok := v.([]interface{}); ok && levels > 0 {
			out = append(out, flattenArray(nested, levels-1)...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

// fnAdd folds the array with +: sums numbers, concatenates strings or
// arrays, merges objects. Null elements are skipped; an empty array yields
// null.
func fnAdd(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("add", input, call.Position)
	}

	var acc interface{} = types.NullValue
	for _, v := range arr {
		if _, isNull := v.(types.Null); isNull {
			continue
		}
		if _, isNull := acc.(types.Null); isNull {
			acc = v
			continue
		}
		next, err := applyArith("+", acc, v, call.Position)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return one(acc), nil
}

func fnMin(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("min", input, call.Position)
	}
	if len(arr) == 0 {
		return one(types.NullValue), nil
	}
	best := arr[0]
	for _, v := range arr[1:] {
		if Compare(v, best) < 0 {
			best = v
		}
	}
	return one(best), nil
}

func fnMax(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("max", input, call.Position)
	}
	if len(arr) == 0 {
		return one(types.NullValue), nil
	}
	best := arr[0]
	for _, v := range arr[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return one(best), nil
}
