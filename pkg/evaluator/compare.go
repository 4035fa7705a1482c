package evaluator

import (
	"sort"
	"strings"

	"github.com/jnkit/zq/pkg/types"
)

// Type ranks for the total value order:
// null < false < true < numbers < strings < arrays < objects.
const (
	rankNull = iota
	rankFalse
	rankTrue
	rankNumber
	rankString
	rankArray
	rankObject
)

func typeRank(v interface{}) int {
	switch t := v.(type) {
	case types.Null, nil:
		return rankNull
	case bool:
		if t {
			return rankTrue
		}
		return rankFalse
	case float64:
		return rankNumber
	case string:
		return rankString
	case []interface{}:
		return rankArray
	case *types.Object:
		return rankObject
	}
	return rankObject + 1
}

// Compare implements the total order over values: every pair of values is
// ordered, including values of different types. It returns a negative
// number, zero, or a positive number as a sorts before, equal to, or after
// b.
//
// Numbers compare numerically, strings lexicographically by bytes, arrays
// element-wise then by length. Objects compare by their sorted key sets
// first, then by the values in sorted key order.
func Compare(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}

	switch ra {
	case rankNull, rankFalse, rankTrue:
		return 0
	case rankNumber:
		na, nb := a.(float64), b.(float64)
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankArray:
		return compareArrays(a.([]interface{}), b.([]interface{}))
	case rankObject:
		return compareObjects(a.(*types.Object), b.(*types.Object))
	}
	return 0
}

// Equal reports whether two values are deeply equal under the total order.
func Equal(a, b interface{}) bool {
	return Compare(a, b) == 0
}

func compareArrays(a, b []interface{}) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func compareObjects(a, b *types.Object) int {
	ka := sortedKeys(a)
	kb := sortedKeys(b)

	n := len(ka)
	if len(kb) < n {
		n = len(kb)
	}
	for i := 0; i < n; i++ {
		if c := strings.Compare(ka[i], kb[i]); c != 0 {
			return c
		}
	}
	if d := len(ka) - len(kb); d != 0 {
		return d
	}

	for _, k := range ka {
		if c := Compare(a.Values[k], b.Values[k]); c != 0 {
			return c
		}
	}
	return 0
}

// sortedKeys returns a sorted copy of an object's keys. Insertion order is
// irrelevant for comparison and equality.
func sortedKeys(obj *types.Object) []string {
	keys := make([]string, len(obj.Keys))
	copy(keys, obj.Keys)
	sort.Strings(keys)
	return keys
}
