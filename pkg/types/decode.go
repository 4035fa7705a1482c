package types

import "github.com/tidwall/gjson"

// DecodeJSON parses one JSON document (an NDJSON line) into the Value model.
//
// The decoder is built on gjson rather than encoding/json because gjson's
// ForEach iterates object members in document order, which is required to
// honor the key-order invariant of the Value model. encoding/json decodes
// objects into unordered maps.
func DecodeJSON(data string) (interface{}, error) {
	if !gjson.Valid(data) {
		return nil, NewError(ErrInvalidInput, "invalid JSON", -1)
	}
	return fromResult(gjson.Parse(data)), nil
}

// fromResult converts a gjson.Result tree into the Value model.
func fromResult(r gjson.Result) interface{} {
	switch r.Type {
	case gjson.Null:
		return NullValue
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		return r.Num
	case gjson.String:
		return r.String()
	}

	if r.IsArray() {
		arr := make([]interface{}, 0, 8)
		r.ForEach(func(_, item gjson.Result) bool {
			arr = append(arr, fromResult(item))
			return true
		})
		return arr
	}

	if r.IsObject() {
		obj := NewObject()
		r.ForEach(func(key, item gjson.Result) bool {
			obj.Set(key.String(), fromResult(item))
			return true
		})
		return obj
	}

	return NullValue
}
