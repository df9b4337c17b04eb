package jsondata

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	keyText     = "text"
	keyFullText = "full_text"
	keyExtended = "extended_tweet"
)

// DecodeFunc converts a raw response body into a structured value.
// The default is Decode; clients accept a custom hook.
type DecodeFunc func(data []byte) (any, error)

// Object is a decoded JSON object with extended-field promotion.
type Object map[string]any

// Decode is the default decoding hook. Objects become Object values
// (recursively) and numbers become json.Number.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return convert(v), nil
}

// convert rewraps decoded maps as Object, depth first.
func convert(v any) any {
	switch t := v.(type) {
	case map[string]any:
		o := make(Object, len(t))
		for k, child := range t {
			o[k] = convert(child)
		}
		return o
	case []any:
		for i, child := range t {
			t[i] = convert(child)
		}
		return t
	default:
		return v
	}
}

// Has reports whether key resolves on the object, including through
// full_text and extended_tweet promotion.
func (o Object) Has(key string) bool {
	if key == keyText {
		if _, ok := o[keyFullText]; ok {
			return true
		}
	}
	if _, ok := o[key]; ok {
		return true
	}
	if key == keyExtended {
		return false
	}
	if ext, ok := o[keyExtended].(Object); ok {
		return ext.Has(key)
	}
	return false
}

// Get returns the value for key, or nil when absent.
//
// A "text" lookup prefers the "full_text" field. When the object
// carries an "extended_tweet" object that resolves the key, the
// extended value wins over the top-level one.
func (o Object) Get(key string) any {
	if key == keyText {
		if v, ok := o[keyFullText]; ok {
			return v
		}
	}
	if key == keyExtended {
		return o[keyExtended]
	}
	if ext, ok := o[keyExtended].(Object); ok {
		if ext.Has(key) {
			return ext.Get(key)
		}
	}
	return o[key]
}

// String returns the value for key as a string, or "" when the key is
// absent or not a string.
func (o Object) String(key string) string {
	s, _ := o.Get(key).(string)
	return s
}

// Int64 returns the value for key as an int64. Handles json.Number and
// the numeric types a custom decode hook may produce.
func (o Object) Int64(key string) int64 {
	switch n := o.Get(key).(type) {
	case json.Number:
		i, _ := n.Int64()
		return i
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Object returns the value for key as a nested Object, or nil.
func (o Object) Object(key string) Object {
	child, _ := o.Get(key).(Object)
	return child
}

// Slice returns the value for key as a []any, or nil.
func (o Object) Slice(key string) []any {
	s, _ := o.Get(key).([]any)
	return s
}

// AsObject converts a decoded value to an Object when possible.
func AsObject(v any) (Object, bool) {
	switch t := v.(type) {
	case Object:
		return t, true
	case map[string]any:
		o, _ := convert(t).(Object)
		return o, true
	default:
		return nil, false
	}
}

// Int64 converts a decoded scalar to int64. It is the counterpart of
// Object.Int64 for array elements.
func Int64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Int64()
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("jsondata: %T is not a number", v)
	}
}
