package evaluator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jnkit/zq/pkg/types"
)

// BuiltinFunc implements a builtin function. It receives the call node so
// arguments arrive as unevaluated expressions: filter-valued arguments
// (map, select, sort_by) are applied per element, scalar-valued builtins
// evaluate them with evalSingle.
type BuiltinFunc func(ctx context.Context, e *Evaluator, input interface{}, call *types.ASTNode, depth int) ([]interface{}, error)

// FunctionDef describes a callable function: its name, arity bounds, and
// implementation. MaxArgs of -1 means unbounded.
type FunctionDef struct {
	Name    string
	MinArgs int
	MaxArgs int
	Impl    BuiltinFunc
}

// builtins is the registry of builtin functions, keyed by name. It is
// populated in init rather than a package-level literal: the entries refer
// to implementations that recurse through evalCall back into the registry,
// which a var initializer would turn into an initialization cycle.
var builtins map[string]*FunctionDef

func init() {
	builtins = initBuiltinFunctions()
}

func initBuiltinFunctions() map[string]*FunctionDef {
	return map[string]*FunctionDef{
		// Type conversion and inspection
		"tonumber":  {Name: "tonumber", Impl: fnTonumber},
		"tostring":  {Name: "tostring", Impl: fnTostring},
		"type":      {Name: "type", Impl: fnType},
		"isnumber":  {Name: "isnumber", Impl: fnIsNumber},
		"isstring":  {Name: "isstring", Impl: fnIsString},
		"isarray":   {Name: "isarray", Impl: fnIsArray},
		"isobject":  {Name: "isobject", Impl: fnIsObject},
		"isboolean": {Name: "isboolean", Impl: fnIsBoolean},
		"isnull":    {Name: "isnull", Impl: fnIsNull},

		// Collection
		"length":       {Name: "length", Impl: fnLength},
		"keys":         {Name: "keys", Impl: fnKeys},
		"values":       {Name: "values", Impl: fnValues},
		"has":          {Name: "has", MinArgs: 1, MaxArgs: 1, Impl: fnHas},
		"to_entries":   {Name: "to_entries", Impl: fnToEntries},
		"from_entries": {Name: "from_entries", Impl: fnFromEntries},

		// Arrays
		"first":   {Name: "first", Impl: fnFirst},
		"last":    {Name: "last", Impl: fnLast},
		"reverse": {Name: "reverse", Impl: fnReverse},
		"sort":    {Name: "sort", Impl: fnSort},
		"unique":  {Name: "unique", Impl: fnUnique},
		"flatten": {Name: "flatten", MaxArgs: 1, Impl: fnFlatten},
		"add":     {Name: "add", Impl: fnAdd},
		"min":     {Name: "min", Impl: fnMin},
		"max":     {Name: "max", Impl: fnMax},

		// Math
		"floor": {Name: "floor", Impl: fnFloor},
		"ceil":  {Name: "ceil", Impl: fnCeil},
		"round": {Name: "round", Impl: fnRound},
		"fabs":  {Name: "fabs", Impl: fnFabs},

		// Strings
		"split":          {Name: "split", MinArgs: 1, MaxArgs: 1, Impl: fnSplit},
		"join":           {Name: "join", MinArgs: 1, MaxArgs: 1, Impl: fnJoin},
		"startswith":     {Name: "startswith", MinArgs: 1, MaxArgs: 1, Impl: fnStartswith},
		"endswith":       {Name: "endswith", MinArgs: 1, MaxArgs: 1, Impl: fnEndswith},
		"contains":       {Name: "contains", MinArgs: 1, MaxArgs: 1, Impl: fnContains},
		"ltrimstr":       {Name: "ltrimstr", MinArgs: 1, MaxArgs: 1, Impl: fnLtrimstr},
		"rtrimstr":       {Name: "rtrimstr", MinArgs: 1, MaxArgs: 1, Impl: fnRtrimstr},
		"test":           {Name: "test", MinArgs: 1, MaxArgs: 1, Impl: fnTest},
		"ascii_downcase": {Name: "ascii_downcase", Impl: fnAsciiDowncase},
		"ascii_upcase":   {Name: "ascii_upcase", Impl: fnAsciiUpcase},

		// Filters and higher-order functions
		"map":       {Name: "map", MinArgs: 1, MaxArgs: 1, Impl: fnMap},
		"select":    {Name: "select", MinArgs: 1, MaxArgs: 1, Impl: fnSelect},
		"empty":     {Name: "empty", Impl: fnEmpty},
		"not":       {Name: "not", Impl: fnNot},
		"sort_by":   {Name: "sort_by", MinArgs: 1, MaxArgs: 1, Impl: fnSortBy},
		"group_by":  {Name: "group_by", MinArgs: 1, MaxArgs: 1, Impl: fnGroupBy},
		"unique_by": {Name: "unique_by", MinArgs: 1, MaxArgs: 1, Impl: fnUniqueBy},
		"min_by":    {Name: "min_by", MinArgs: 1, MaxArgs: 1, Impl: fnMinBy},
		"max_by":    {Name: "max_by", MinArgs: 1, MaxArgs: 1, Impl: fnMaxBy},
	}
}

// evalCall resolves and invokes a function call node. Custom functions take
// precedence over builtins of the same name.
func (e *Evaluator) evalCall(ctx context.Context, node *types.ASTNode, input interface{}, depth int) ([]interface{}, error) {
	name := node.StrValue

	fn, ok := e.getCustomFunction(name)
	if !ok {
		fn, ok = builtins[name]
	}
	if !ok {
		return nil, types.NewError(types.ErrUnknownFunction,
			fmt.Sprintf("Unknown function: %s", name), node.Position).WithToken(name)
	}

	argc := len(node.Arguments)
	if argc < fn.MinArgs || (fn.MaxArgs >= 0 && argc > fn.MaxArgs) {
		return nil, types.NewError(types.ErrArgumentCount,
			fmt.Sprintf("Function %s expects %s, got %d", name, arityString(fn), argc),
			node.Position).WithToken(name)
	}

	return fn.Impl(ctx, e, input, node, depth)
}

// arityString renders a function's accepted argument count for error
// messages.
func arityString(fn *FunctionDef) string {
	switch {
	case fn.MaxArgs < 0:
		return fmt.Sprintf("at least %d arguments", fn.MinArgs)
	case fn.MinArgs == fn.MaxArgs && fn.MinArgs == 1:
		return "1 argument"
	case fn.MinArgs == fn.MaxArgs:
		return fmt.Sprintf("%d arguments", fn.MinArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", fn.MinArgs, fn.MaxArgs)
	}
}

// evalSingle evaluates an expression and returns the first value of its
// result sequence, or null when the sequence is empty. Builtins use this for
// scalar-valued arguments.
func (e *Evaluator) evalSingle(ctx context.Context, expr *types.ASTNode, input interface{}, depth int) (interface{}, error) {
	seq, err := e.evalNode(ctx, expr, input, depth)
	if err != nil {
		return nil, err
	}
	if len(seq) == 0 {
		return types.NullValue, nil
	}
	return seq[0], nil
}

// one wraps a single value into a result sequence.
func one(v interface{}) []interface{} {
	return []interface{}{v}
}

// argTypeError builds the T-coded error for a builtin applied to the wrong
// value type.
func argTypeError(name string, v interface{}, pos int) error {
	return types.NewError(types.ErrArgumentType,
		fmt.Sprintf("%s cannot be applied to %s", name, types.Kind(v)), pos).WithToken(name)
}

// encodeCompact renders a value as compact JSON, used by tostring and join
// for non-string values.
func encodeCompact(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
