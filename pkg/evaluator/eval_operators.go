package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/jnkit/zq/pkg/types"
)

// evalBinary evaluates an arithmetic operator. Both operands are sequences
// evaluated against the same input; the operator distributes over their
// cartesian product in left-major order.
func (e *Evaluator) evalBinary(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	lhs, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}
	rhs, err := e.evalNode(ctx, node.RHS, input, depth)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, 0, len(lhs)*len(rhs))
	for _, l := range lhs {
		for _, r := range rhs {
			v, err := applyArith(node.StrValue, l, r, node.Position)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// applyArith applies one arithmetic operator to a pair of values.
//
// Supported overloads:
//
//	+  numbers, string concat, array concat, object merge (right wins)
//	-  numbers
//	*  numbers
//	/  numbers (division by zero is an error)
//	%  numbers, truncated to integers (modulo by zero is an error)
func applyArith(op string, l, r interface{}, pos int) (interface{}, error) {
	if ln, ok := l.(float64); ok {
		if rn, ok := r.(float64); ok {
			return applyNumeric(op, ln, rn, pos)
		}
	}

	if op == "+" {
		switch lv := l.(type) {
		case string:
			if rv, ok := r.(string); ok {
				return lv + rv, nil
			}
		case []interface{}:
			if rv, ok := r.([]interface{}); ok {
				merged := make([]interface{}, 0, len(lv)+len(rv))
				merged = append(merged, lv...)
				merged = append(merged, rv...)
				return merged, nil
			}
		case *types.Object:
			if rv, ok := r.(*types.Object); ok {
				return mergeObjects(lv, rv), nil
			}
		}
	}

	return nil, types.NewError(types.ErrType,
		fmt.Sprintf("Cannot apply %s to %s and %s", op, types.Kind(l), types.Kind(r)), pos)
}

// applyNumeric applies an arithmetic operator to two numbers. Results that
// overflow the float64 range are clamped to the largest finite value, so
// every number the engine holds stays JSON-encodable.
func applyNumeric(op string, l, r float64, pos int) (interface{}, error) {
	switch op {
	case "+":
		return clampFinite(l + r), nil
	case "-":
		return clampFinite(l - r), nil
	case "*":
		return clampFinite(l * r), nil
	case "/":
		if r == 0 {
			return nil, types.NewError(types.ErrDivisionByZero, "Division by zero", pos)
		}
		return clampFinite(l / r), nil
	case "%":
		ri := int64(r)
		if ri == 0 {
			return nil, types.NewError(types.ErrDivisionByZero, "Modulo by zero", pos)
		}
		return float64(int64(l) % ri), nil
	}
	return nil, types.NewError(types.ErrType, fmt.Sprintf("Unknown operator: %s", op), pos)
}

// clampFinite replaces an infinite result with the nearest finite float64.
func clampFinite(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	if math.IsInf(v, -1) {
		return -math.MaxFloat64
	}
	return v
}

// mergeObjects returns a shallow merge of two objects: the left object's
// keys in their order, updated and extended by the right object's entries.
func mergeObjects(l, r *types.Object) *types.Object {
	merged := types.NewObjectCap(l.Len() + r.Len())
	for _, k := range l.Keys {
		merged.Set(k, l.Values[k])
	}
	for _, k := range r.Keys {
		merged.Set(k, r.Values[k])
	}
	return merged
}

// evalCompare evaluates a comparison operator over the cartesian product of
// its operand sequences. All comparisons use the total value order, so mixed
// types compare consistently instead of erroring.
func (e *Evaluator) evalCompare(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	lhs, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}
	rhs, err := e.evalNode(ctx, node.RHS, input, depth)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, 0, len(lhs)*len(rhs))
	for _, l := range lhs {
		for _, r := range rhs {
			c := Compare(l, r)
			var v bool
			switch node.StrValue {
			case "==":
				v = c == 0
			case "!=":
				v = c != 0
			case "<":
				v = c < 0
			case "<=":
				v = c <= 0
			case ">":
				v = c > 0
			case ">=":
				v = c >= 0
			default:
				return nil, types.NewError(types.ErrType,
					fmt.Sprintf("Unknown comparison: %s", node.StrValue), node.Position)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

// evalLogical evaluates and/or with truthiness semantics. The result is
// always a boolean. The right side is evaluated at most once, and only when
// a left value does not short-circuit.
func (e *Evaluator) evalLogical(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	lhs, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}

	isAnd := node.Type == types.NodeAnd

	var rhs []interface{}
	rhsReady := false

	out := make([]interface{}, 0, len(lhs))
	for _, l := range lhs {
		lt := types.Truthy(l)
		if isAnd && !lt {
			out = append(out, false)
			continue
		}
		if !isAnd && lt {
			out = append(out, true)
			continue
		}

		if !rhsReady {
			rhs, err = e.evalNode(ctx, node.RHS, input, depth)
			if err != nil {
				return nil, err
			}
			rhsReady = true
		}
		for _, r := range rhs {
			out = append(out, types.Truthy(r))
		}
	}
	return out, nil
}
