package evaluator

import (
	"context"
	"fmt"

	"github.com/jnkit/zq/pkg/types"
)

// evalArrayConstruct evaluates [e1, e2, ...]: every element expression runs
// against the input and all produced values are collected, in order, into a
// single array. An element that produces several values contributes all of
// them; one that produces none contributes nothing.
func (e *Evaluator) evalArrayConstruct(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	arr := []interface{}{}
	for _, expr := range node.Expressions {
		seq, err := e.evalNode(ctx, expr, input, depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, seq...)
	}
	return []interface{}{arr}, nil
}

// evalObjectConstruct evaluates {k1: v1, k2: v2, ...}. Keys are literal
// names, strings, or parenthesized expressions that must produce strings.
// When a key or value expression produces several values, the constructor
// produces one object per combination, in left-major order; when one
// produces none, the whole constructor produces nothing.
func (e *Evaluator) evalObjectConstruct(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	objs := []*types.Object{types.NewObjectCap(len(node.Expressions))}

	for _, pair := range node.Expressions {
		keys, err := e.evalNode(ctx, pair.LHS, input, depth)
		if err != nil {
			return nil, err
		}
		vals, err := e.evalNode(ctx, pair.RHS, input, depth)
		if err != nil {
			return nil, err
		}

		next := make([]*types.Object, 0, len(objs)*len(keys)*len(vals))
		for _, base := range objs {
			for _, k := range keys {
				ks, ok := k.(string)
				if !ok {
					return nil, types.NewError(types.ErrType,
						fmt.Sprintf("Object key must be a string, got %s", types.Kind(k)),
						pair.Position)
				}
				for _, v := range vals {
					obj := base.Clone()
					obj.Set(ks, v)
					next = append(next, obj)
				}
			}
		}
		objs = next
	}

	out := make([]interface{}, len(objs))
	for i, obj := range objs {
		out[i] = obj
	}
	return out, nil
}
