package evaluator

import (
	"context"
	"sort"

	"github.com/jnkit/zq/pkg/types"
)

// Higher-order builtins taking a filter expression argument.

// fnMap applies the filter to every element of the input and collects all
// produced values into one array. Arrays map over their elements, objects
// over their values in key order, matching .[] iteration. A filter that
// produces several values per element contributes all of them; empty
// outputs drop the element.
func fnMap(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	var elems []interface{}
	switch v := input.(type) {
	case []interface{}:
		elems = v
	case *types.Object:
		elems = make([]interface{}, 0, v.Len())
		for _, k := range v.Keys {
			elems = append(elems, v.Values[k])
		}
	default:
		return nil, argTypeError("map", input, call.Position)
	}

	out := make([]interface{}, 0, len(elems))
	for _, elem := range elems {
		seq, err := e.evalNode(ctx, call.Arguments[0], elem, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, seq...)
	}
	return one(out), nil
}

// fnSelect passes the input through once per truthy value the filter
// produces, and drops it otherwise. With a single-valued filter this is the
// usual keep-or-drop behavior.
func fnSelect(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	cond, err := e.evalNode(ctx, call.Arguments[0], input, depth)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	for _, c := range cond {
		if types.Truthy(c) {
			out = append(out, input)
		}
	}
	return out, nil
}

// fnEmpty produces no values at all.
func fnEmpty(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	return nil, nil
}

// fnNot negates the truthiness of the input.
func fnNot(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	return one(!types.Truthy(input)), nil
}

// sortKey evaluates the key filter for one element: the first produced
// value, or null for an empty output.
func (e *Evaluator) sortKey(ctx context.Context, filter *types.ASTNode, elem interface{}, depth int) (interface{}, error) {
	return e.evalSingle(ctx, filter, elem, depth)
}

// keyedElem pairs an element with its extracted sort key.
type keyedElem struct {
	elem interface{}
	key  interface{}
}

func (e *Evaluator) keyedElems(ctx context.Context, name string, input interface{}, call *types.ASTNode, depth int) ([]keyedElem, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError(name, input, call.Position)
	}

	keyed := make([]keyedElem, len(arr))
	for i, elem := range arr {
		key, err := e.sortKey(ctx, call.Arguments[0], elem, depth)
		if err != nil {
			return nil, err
		}
		keyed[i] = keyedElem{elem: elem, key: key}
	}
	return keyed, nil
}

func fnSortBy(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	keyed, err := e.keyedElems(ctx, "sort_by", input, call, depth)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		return Compare(keyed[i].key, keyed[j].key) < 0
	})

	out := make([]interface{}, len(keyed))
	for i, ke := range keyed {
		out[i] = ke.elem
	}
	return one(out), nil
}

// fnGroupBy partitions the array into groups of elements with equal keys.
// Groups appear in order of first appearance of their key, and elements
// keep their original relative order within each group.
func fnGroupBy(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	keyed, err := e.keyedElems(ctx, "group_by", input, call, depth)
	if err != nil {
		return nil, err
	}

	var groupKeys []interface{}
	var groups [][]interface{}
	for _, ke := range keyed {
		found := false
		for i, gk := range groupKeys {
			if Equal(ke.key, gk) {
				groups[i] = append(groups[i], ke.elem)
				found = true
				break
			}
		}
		if !found {
			groupKeys = append(groupKeys, ke.key)
			groups = append(groups, []interface{}{ke.elem})
		}
	}

	out := make([]interface{}, len(groups))
	for i, g := range groups {
		out[i] = g
	}
	return one(out), nil
}

// fnUniqueBy keeps the first element for each distinct key, preserving
// input order.
func fnUniqueBy(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	keyed, err := e.keyedElems(ctx, "unique_by", input, call, depth)
	if err != nil {
		return nil, err
	}

	var seenKeys []interface{}
	out := make([]interface{}, 0, len(keyed))
	for _, ke := range keyed {
		seen := false
		for _, sk := range seenKeys {
			if Equal(ke.key, sk) {
				seen = true
				break
			}
		}
		if !seen {
			seenKeys = append(seenKeys, ke.key)
			out = append(out, ke.elem)
		}
	}
	return one(out), nil
}

func fnMinBy(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	keyed, err := e.keyedElems(ctx, "min_by", input, call, depth)
	if err != nil {
		return nil, err
	}
	if len(keyed) == 0 {
		return one(types.NullValue), nil
	}

	best := keyed[0]
	for _, ke := range keyed[1:] {
		if Compare(ke.key, best.key) < 0 {
			best = ke
		}
	}
	return one(best.elem), nil
}

func fnMaxBy(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	keyed, err := e.keyedElems(ctx, "max_by", input, call, depth)
	if err != nil {
		return nil, err
	}
	if len(keyed) == 0 {
		return one(types.NullValue), nil
	}

	best := keyed[0]
	for _, ke := range keyed[1:] {
		if Compare(ke.key, best.key) > 0 {
			best = ke
		}
	}
	return one(best.elem), nil
}
