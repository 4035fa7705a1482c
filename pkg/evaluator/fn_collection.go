package evaluator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/jnkit/zq/pkg/types"
)

// Collection builtins: length, keys, values, has, to_entries, from_entries.

func fnLength(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	switch v := input.(type) {
	case string:
		return one(float64(utf8.RuneCountInString(v))), nil
	case []interface{}:
		return one(float64(len(v))), nil
	case *types.Object:
		return one(float64(v.Len())), nil
	case types.Null, nil:
		return one(float64(0)), nil
	case float64:
		return one(math.Abs(v)), nil
	default:
		return nil, argTypeError("length", input, call.Position)
	}
}

func fnKeys(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	switch v := input.(type) {
	case *types.Object:
		keys := make([]string, len(v.Keys))
		copy(keys, v.Keys)
		sort.Strings(keys)
		out := make([]interface{}, len(keys))
		for i, k := range keys {
			out[i] = k
		}
		return one(out), nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = float64(i)
		}
		return one(out), nil
	default:
		return nil, argTypeError("keys", input, call.Position)
	}
}

func fnValues(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	switch v := input.(type) {
	case *types.Object:
		keys := make([]string, len(v.Keys))
		copy(keys, v.Keys)
		sort.Strings(keys)
		out := make([]interface{}, len(keys))
		for i, k := range keys {
			out[i] = v.Values[k]
		}
		return one(out), nil
	case []interface{}:
		out := make([]interface{}, len(v))
		copy(out, v)
		return one(out), nil
	default:
		return nil, argTypeError("values", input, call.Position)
	}
}

func fnHas(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	key, err := e.evalSingle(ctx, call.Arguments[0], input, depth)
	if err != nil {
		return nil, err
	}

	switch v := input.(type) {
	case *types.Object:
		k, ok := key.(string)
		if !ok {
			return nil, types.NewError(types.ErrArgumentType,
				fmt.Sprintf("has on an object requires a string key, got %s", types.Kind(key)),
				call.Position).WithToken("has")
		}
		return one(v.Has(k)), nil
	case []interface{}:
		n, ok := key.(float64)
		if !ok {
			return nil, types.NewError(types.ErrArgumentType,
				fmt.Sprintf("has on an array requires a number index, got %s", types.Kind(key)),
				call.Position).WithToken("has")
		}
		i := int(n)
		return one(i >= 0 && i < len(v)), nil
	default:
		return nil, argTypeError("has", input, call.Position)
	}
}

func fnToEntries(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	obj, ok := input.(*types.Object)
	if !ok {
		return nil, argTypeError("to_entries", input, call.Position)
	}

	entries := make([]interface{}, 0, obj.Len())
	for _, k := range obj.Keys {
		entry := types.NewObjectCap(2)
		entry.Set("key", k)
		entry.Set("value", obj.Values[k])
		entries = append(entries, entry)
	}
	return one(entries), nil
}

func fnFromEntries(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error) {
	arr, ok := input.([]interface{})
	if !ok {
		return nil, argTypeError("from_entries", input, call.Position)
	}

	obj := types.NewObjectCap(len(arr))
	for _, elem := range arr {
		entry, ok := elem.(*types.Object)
		if !ok {
			return nil, types.NewError(types.ErrArgumentType,
				fmt.Sprintf("from_entries requires an array of objects, got %s element", types.Kind(elem)),
				call.Position).WithToken("from_entries")
		}
		key, err := entryKey(entry, call.Position)
		if err != nil {
			return nil, err
		}
		obj.Set(key, entryValue(entry))
	}
	return one(obj), nil
}

// entryKey extracts the key of a from_entries entry, accepting the "key",
// "k", and "name" spellings. Number keys are rendered as strings.
func entryKey(entry *types.Object, pos int) (string, error) {
	for _, field := range [...]string{"key", "k", "name"} {
		v, ok := entry.Get(field)
		if !ok {
			continue
		}
		switch k := v.(type) {
		case string:
			return k, nil
		case float64:
			s, err := encodeCompact(k)
			if err != nil {
				return "", err
			}
			return s, nil
		default:
			return "", types.NewError(types.ErrArgumentType,
				fmt.Sprintf("from_entries entry key must be a string, got %s", types.Kind(v)),
				pos).WithToken("from_entries")
		}
	}
	return "", types.NewError(types.ErrArgumentType,
		"from_entries entry has no key field", pos).WithToken("from_entries")
}

// entryValue extracts the value of a from_entries entry, accepting the
// "value" and "v" spellings. A missing value is null.
func entryValue(entry *types.Object) interface{} {
	for _, field := range [...]string{"value", "v"} {
		if v, ok := entry.Get(field); ok {
			return v
		}
	}
	return types.NullValue
}
