package evaluator

import (
	"context"
	"fmt"

	"github.com/jnkit/zq/pkg/types"
)

// evalNode is the central dispatch for AST evaluation. Every node evaluates
// to a sequence of zero or more values; pipes and accessors distribute over
// the sequences their operands produce.
func (e *Evaluator) evalNode(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	if depth > e.opts.MaxDepth {
		return nil, types.NewError(types.ErrType, "Maximum evaluation depth exceeded", node.Position)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.opts.Debug {
		e.logger.Debug("eval", "node", string(node.Type), "position", node.Position)
	}

	switch node.Type {
	case types.NodeIdentity:
		return []interface{}{input}, nil
	case types.NodeLiteral:
		return []interface{}{node.Value}, nil
	case types.NodeField:
		return e.evalField(ctx, node, input, depth+1)
	case types.NodeIndex:
		return e.evalIndex(ctx, node, input, depth+1)
	case types.NodeSlice:
		return e.evalSlice(ctx, node, input, depth+1)
	case types.NodeIterate:
		return e.evalIterate(ctx, node, input, depth+1)
	case types.NodeOptional:
		return e.evalOptional(ctx, node, input, depth+1)
	case types.NodePipe:
		return e.evalPipe(ctx, node, input, depth+1)
	case types.NodeAlternative:
		return e.evalAlternative(ctx, node, input, depth+1)
	case types.NodeBinary:
		return e.evalBinary(ctx, node, input, depth+1)
	case types.NodeCompare:
		return e.evalCompare(ctx, node, input, depth+1)
	case types.NodeAnd, types.NodeOr:
		return e.evalLogical(ctx, node, input, depth+1)
	case types.NodeArray:
		return e.evalArrayConstruct(ctx, node, input, depth+1)
	case types.NodeObject:
		return e.evalObjectConstruct(ctx, node, input, depth+1)
	case types.NodeCondition:
		return e.evalCondition(ctx, node, input, depth+1)
	case types.NodeCall:
		return e.evalCall(ctx, node, input, depth+1)
	case types.NodeDelete:
		return e.evalDelete(ctx, node, input, depth+1)
	default:
		return nil, types.NewError(types.ErrSyntax,
			fmt.Sprintf("Unknown node type: %s", node.Type), node.Position)
	}
}

// evalField evaluates a field access base.name for every value the base
// produces. A missing key yields null; a non-object base is a type error.
func (e *Evaluator) evalField(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	base, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, 0, len(base))
	for _, v := range base {
		obj, ok := v.(*types.Object)
		if !ok {
			return nil, types.NewError(types.ErrType,
				fmt.Sprintf("Cannot index %s with %q", types.Kind(v), node.StrValue),
				node.Position)
		}
		field, ok := obj.Get(node.StrValue)
		if !ok {
			field = types.NullValue
		}
		out = append(out, field)
	}
	return out, nil
}

// evalIndex evaluates base[expr]. The index expression is evaluated against
// the record input, not the base value, matching path semantics. Numeric
// indices apply to arrays (negative counts from the end, out of range yields
// null); string indices apply to objects with field semantics.
func (e *Evaluator) evalIndex(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	base, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}
	indices, err := e.evalNode(ctx, node.RHS, input, depth)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, 0, len(base)*len(indices))
	for _, v := range base {
		for _, idx := range indices {
			r, err := indexValue(v, idx, node.Position)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// indexValue applies a single index to a single value.
func indexValue(v, idx interface{}, pos int) (interface{}, error) {
	switch i := idx.(type) {
	case float64:
		arr, ok := v.([]interface{})
		if !ok {
			return nil, types.NewError(types.ErrType,
				fmt.Sprintf("Cannot index %s with number", types.Kind(v)), pos)
		}
		n := int(i)
		if n < 0 {
			n += len(arr)
		}
		if n < 0 || n >= len(arr) {
			return types.NullValue, nil
		}
		return arr[n], nil
	case string:
		obj, ok := v.(*types.Object)
		if !ok {
			return nil, types.NewError(types.ErrType,
				fmt.Sprintf("Cannot index %s with %q", types.Kind(v), i), pos)
		}
		field, ok := obj.Get(i)
		if !ok {
			return types.NullValue, nil
		}
		return field, nil
	default:
		return nil, types.NewError(types.ErrType,
			fmt.Sprintf("Cannot index with %s", types.Kind(idx)), pos)
	}
}

// evalSlice evaluates base[start:end] on arrays and strings. Bounds are
// clamped; negative bounds count from the end; a missing bound defaults to
// the corresponding edge. String slicing operates on runes, not bytes.
func (e *Evaluator) evalSlice(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	base, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}

	start, hasStart, err := e.evalBound(ctx, node.Arguments[0], input, depth, node.Position)
	if err != nil {
		return nil, err
	}
	end, hasEnd, err := e.evalBound(ctx, node.Arguments[1], input, depth, node.Position)
	if err != nil {
		return nil, err
	}

	out := make([]interface{}, 0, len(base))
	for _, v := range base {
		switch val := v.(type) {
		case []interface{}:
			lo, hi := clampSlice(start, hasStart, end, hasEnd, len(val))
			sliced := make([]interface{}, hi-lo)
			copy(sliced, val[lo:hi])
			out = append(out, sliced)
		case string:
			runes := []rune(val)
			lo, hi := clampSlice(start, hasStart, end, hasEnd, len(runes))
			out = append(out, string(runes[lo:hi]))
		default:
			return nil, types.NewError(types.ErrType,
				fmt.Sprintf("Cannot slice %s", types.Kind(v)), node.Position)
		}
	}
	return out, nil
}

// evalBound evaluates one slice bound expression against the record input.
// A nil expression or a null value means the bound is absent.
func (e *Evaluator) evalBound(ctx context.Context, expr *types.ASTNode, input interface{}, depth, pos int) (int, bool, error) {
	if expr == nil {
		return 0, false, nil
	}
	v, err := e.evalSingle(ctx, expr, input, depth)
	if err != nil {
		return 0, false, err
	}
	if _, isNull := v.(types.Null); isNull {
		return 0, false, nil
	}
	n, ok := v.(float64)
	if !ok {
		return 0, false, types.NewError(types.ErrType,
			fmt.Sprintf("Slice bound must be a number, got %s", types.Kind(v)), pos)
	}
	return int(n), true, nil
}

// clampSlice normalizes slice bounds against a length: negative bounds count
// from the end, everything is clamped to [0, length], and an inverted range
// collapses to empty.
func clampSlice(start int, hasStart bool, end int, hasEnd bool, length int) (int, int) {
	lo := 0
	if hasStart {
		lo = start
		if lo < 0 {
			lo += length
		}
	}
	hi := length
	if hasEnd {
		hi = end
		if hi < 0 {
			hi += length
		}
	}
	if lo < 0 {
		lo = 0
	}
	if hi > length {
		hi = length
	}
	if lo > length {
		lo = length
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// evalIterate evaluates base[], expanding each array into its elements and
// each object into its values in insertion order. This is the sole
// one-to-many construct in the language.
func (e *Evaluator) evalIterate(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	base, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	for _, v := range base {
		switch val := v.(type) {
		case []interface{}:
			out = append(out, val...)
		case *types.Object:
			for _, k := range val.Keys {
				out = append(out, val.Values[k])
			}
		default:
			return nil, types.NewError(types.ErrType,
				fmt.Sprintf("Cannot iterate over %s", types.Kind(v)), node.Position)
		}
	}
	return out, nil
}

// evalOptional evaluates expr? by suppressing evaluation errors: an erroring
// operand contributes nothing to the output sequence. Structural errors
// (syntax, unsupported features) still propagate.
func (e *Evaluator) evalOptional(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	out, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		if types.IsEvalError(err) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

// evalPipe evaluates lhs | rhs with flat-map semantics: the right side runs
// once per value the left side produces, and the outputs are concatenated in
// order.
func (e *Evaluator) evalPipe(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	lhs, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	for _, v := range lhs {
		rhs, err := e.evalNode(ctx, node.RHS, v, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, rhs...)
	}
	return out, nil
}

// evalAlternative evaluates lhs // rhs: the truthy values of the left side
// if there are any, otherwise the right side. A failing left side also falls
// through to the right.
func (e *Evaluator) evalAlternative(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	lhs, err := e.evalNode(ctx, node.LHS, input, depth)
	if err != nil {
		if !types.IsEvalError(err) {
			return nil, err
		}
		lhs = nil
	}

	truthy := lhs[:0:0]
	for _, v := range lhs {
		if types.Truthy(v) {
			truthy = append(truthy, v)
		}
	}
	if len(truthy) > 0 {
		return truthy, nil
	}
	return e.evalNode(ctx, node.RHS, input, depth)
}

// evalCondition evaluates if/elif/else. Branch conditions are taken from
// the flattened (condition, then) pairs; a condition is considered true when
// the first value it produces is truthy, and an empty condition sequence is
// false.
func (e *Evaluator) evalCondition(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	for i := 0; i+1 < len(node.Expressions); i += 2 {
		cond, err := e.evalNode(ctx, node.Expressions[i], input, depth)
		if err != nil {
			return nil, err
		}
		if len(cond) > 0 && types.Truthy(cond[0]) {
			return e.evalNode(ctx, node.Expressions[i+1], input, depth)
		}
	}
	return e.evalNode(ctx, node.RHS, input, depth)
}

// evalDelete evaluates del(path): it returns a copy of the input with the
// value at the path removed. The input itself is never mutated; unchanged
// branches are shared between input and output.
func (e *Evaluator) evalDelete(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	steps, err := flattenPath(node.LHS)
	if err != nil {
		return nil, err
	}

	out, err := e.deleteAt(ctx, input, input, steps, depth)
	if err != nil {
		return nil, err
	}
	return []interface{}{out}, nil
}

// flattenPath converts a chained field/index access expression into the
// ordered list of steps from the root. Only field and index steps are
// allowed inside del().
func flattenPath(node *types.ASTNode) ([]*types.ASTNode, error) {
	var steps []*types.ASTNode
	for node != nil && node.Type != types.NodeIdentity {
		switch node.Type {
		case types.NodeField, types.NodeIndex:
			steps = append(steps, node)
			node = node.LHS
		default:
			return nil, types.NewError(types.ErrType,
				"del() requires a path of field and index accesses", node.Position)
		}
	}
	if len(steps) == 0 {
		return nil, types.NewError(types.ErrType, "del() requires a non-empty path", 0)
	}

	// Reverse into root-to-leaf order.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps, nil
}

// deleteAt removes the value reached by steps from v, copying the containers
// along the path. Index step expressions are evaluated against the record
// input. A path that does not exist leaves the value untouched.
func (e *Evaluator) deleteAt(ctx context.Context, input, v interface{}, steps []*types.ASTNode, depth int) (interface{}, error) {
	step := steps[0]
	last := len(steps) == 1

	switch step.Type {
	case types.NodeField:
		obj, ok := v.(*types.Object)
		if !ok {
			return nil, types.NewError(types.ErrType,
				fmt.Sprintf("Cannot delete field %q from %s", step.StrValue, types.Kind(v)),
				step.Position)
		}
		child, exists := obj.Get(step.StrValue)
		if !exists {
			return v, nil
		}
		clone := obj.Clone()
		if last {
			clone.Delete(step.StrValue)
			return clone, nil
		}
		newChild, err := e.deleteAt(ctx, input, child, steps[1:], depth)
		if err != nil {
			return nil, err
		}
		clone.Set(step.StrValue, newChild)
		return clone, nil

	case types.NodeIndex:
		idx, err := e.evalSingle(ctx, step.RHS, input, depth)
		if err != nil {
			return nil, err
		}
		switch i := idx.(type) {
		case float64:
			arr, ok := v.([]interface{})
			if !ok {
				return nil, types.NewError(types.ErrType,
					fmt.Sprintf("Cannot delete index from %s", types.Kind(v)), step.Position)
			}
			n := int(i)
			if n < 0 {
				n += len(arr)
			}
			if n < 0 || n >= len(arr) {
				return v, nil
			}
			if last {
				removed := make([]interface{}, 0, len(arr)-1)
				removed = append(removed, arr[:n]...)
				removed = append(removed, arr[n+1:]...)
				return removed, nil
			}
			newChild, err := e.deleteAt(ctx, input, arr[n], steps[1:], depth)
			if err != nil {
				return nil, err
			}
			replaced := make([]interface{}, len(arr))
			copy(replaced, arr)
			replaced[n] = newChild
			return replaced, nil
		case string:
			// A string index is field access in bracket form.
			obj, ok := v.(*types.Object)
			if !ok {
				return nil, types.NewError(types.ErrType,
					fmt.Sprintf("Cannot delete field %q from %s", i, types.Kind(v)), step.Position)
			}
			child, exists := obj.Get(i)
			if !exists {
				return v, nil
			}
			clone := obj.Clone()
			if last {
				clone.Delete(i)
				return clone, nil
			}
			newChild, err := e.deleteAt(ctx, input, child, steps[1:], depth)
			if err != nil {
				return nil, err
			}
			clone.Set(i, newChild)
			return clone, nil
		default:
			return nil, types.NewError(types.ErrType,
				fmt.Sprintf("Cannot delete with %s index", types.Kind(idx)), step.Position)
		}
	}

	return nil, types.NewError(types.ErrType, "Invalid delete path", step.Position)
}
