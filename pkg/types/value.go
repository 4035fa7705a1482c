// Package types defines the core type system for ZQ.
//
// This package contains type definitions for:
//   - Value model: the runtime representation of JSON data
//   - ASTNode: Abstract Syntax Tree nodes
//   - Expression: compiled ZQ queries
//   - Config: the immutable run configuration
//   - Error types: structured errors with codes
package types

import (
	"encoding/json"
	"strconv"
)

// A runtime value is one of the following Go types:
//
//	Null                 JSON null
//	bool                 JSON boolean
//	float64              JSON number
//	string               JSON string
//	[]interface{}        JSON array
//	*Object              JSON object (insertion order preserved)
//
// The set is closed: every value flowing through the evaluator is one of
// these six types, and evaluation dispatches over them exhaustively.

// Null represents a JSON null literal distinct from an absent value (nil).
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
// This ensures that Null serializes to JSON null instead of {}.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NullValue is the singleton value used for JSON null.
var NullValue = Null{}

// Object is a JSON object that preserves key insertion order.
//
// Output must be visually stable and round-trippable, so keys are never
// reordered: Keys holds the insertion order and Values the key/value pairs.
type Object struct {
	Keys   []string
	Values map[string]interface{}
}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{Values: make(map[string]interface{})}
}

// NewObjectCap creates an empty Object with capacity for n entries.
func NewObjectCap(n int) *Object {
	return &Object{
		Keys:   make([]string, 0, n),
		Values: make(map[string]interface{}, n),
	}
}

// Get retrieves a value by key.
func (o *Object) Get(key string) (interface{}, bool) {
	value, ok := o.Values[key]
	return value, ok
}

// Has reports whether the key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Values[key]
	return ok
}

// Set inserts or replaces a value. A new key is appended to the key order;
// an existing key keeps its original position.
func (o *Object) Set(key string, value interface{}) {
	if _, ok := o.Values[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Values[key] = value
}

// Delete removes a key. Deleting an absent key is a no-op.
func (o *Object) Delete(key string) {
	if _, ok := o.Values[key]; !ok {
		return
	}
	delete(o.Values, key)
	for i, k := range o.Keys {
		if k == key {
			o.Keys = append(o.Keys[:i], o.Keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.Keys)
}

// Clone returns a shallow copy of the object. Keys and the value map are
// copied; the values themselves are shared (values are immutable by
// convention, transformations build new ones).
func (o *Object) Clone() *Object {
	c := &Object{
		Keys:   make([]string, len(o.Keys)),
		Values: make(map[string]interface{}, len(o.Values)),
	}
	copy(c.Keys, o.Keys)
	for k, v := range o.Values {
		c.Values[k] = v
	}
	return c
}

// MarshalJSON preserves key order during marshaling.
func (o *Object) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 16*len(o.Keys))
	buf = append(buf, '{')
	for i, key := range o.Keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		// strconv.Quote is equivalent to json.Marshal for strings and
		// avoids the []byte+error allocation.
		buf = append(buf, strconv.Quote(key)...)
		buf = append(buf, ':')
		valueBytes, err := json.Marshal(o.Values[key])
		if err != nil {
			return nil, err
		}
		buf = append(buf, valueBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// Kind returns the JSON type name of a value, matching what the `type`
// builtin reports: "null", "boolean", "number", "string", "array", "object".
func Kind(v interface{}) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []interface{}:
		return "array"
	case *Object:
		return "object"
	default:
		return "unknown"
	}
}

// Truthy reports the truthiness of a value: null and false are falsy,
// every other value (including 0 and "") is truthy.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil, Null:
		return false
	case bool:
		return t
	default:
		return true
	}
}
