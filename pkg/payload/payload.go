// Package payload provides safe, path-based access to arbitrarily nested
// JSON documents as delivered by provider webhooks. Lookups never panic on
// missing keys or out-of-range indices; they return an absent Value that is
// distinct from JSON null, so callers can tell "field not provided" apart
// from "field explicitly null".
package payload

import (
	"encoding/json"
	"fmt"
)

// Doc is a parsed webhook payload. A Doc is immutable after Parse.
type Doc struct {
	root any
}

// Parse decodes a raw JSON document into a Doc.
func Parse(data []byte) (*Doc, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}
	return &Doc{root: root}, nil
}

// FromValue wraps an already-decoded JSON value in a Doc.
func FromValue(v any) *Doc {
	return &Doc{root: v}
}

// Root returns the document root as a Value.
func (d *Doc) Root() Value {
	return Value{raw: d.root, present: true}
}

// Get traverses the document by path. Path elements must be string keys
// (for objects) or int indices (for arrays).
func (d *Doc) Get(path ...any) Value {
	return d.Root().Get(path...)
}

// Unwrap returns the provider envelope body. Providers deliver payloads
// wrapped under a top-level "result" object; bare payloads, including ones
// that carry a scalar "result" member of their own, pass through unchanged.
func (d *Doc) Unwrap() Value {
	if inner := d.Get("result"); inner.Present() {
		if _, ok := inner.Object(); ok {
			return inner
		}
	}
	return d.Root()
}

// Value is a single location inside a payload. The zero Value is absent.
type Value struct {
	raw     any
	present bool
}

// Absent is the sentinel returned for paths that do not resolve.
var Absent = Value{}

// Present reports whether the path resolved to a value, including JSON null.
func (v Value) Present() bool {
	return v.present
}

// IsNull reports whether the value is an explicit JSON null.
func (v Value) IsNull() bool {
	return v.present && v.raw == nil
}

// Get continues traversal from this value. Any absent intermediate step
// makes the whole lookup absent.
func (v Value) Get(path ...any) Value {
	cur := v
	for _, step := range path {
		if !cur.present {
			return Absent
		}
		switch key := step.(type) {
		case string:
			obj, ok := cur.raw.(map[string]any)
			if !ok {
				return Absent
			}
			raw, ok := obj[key]
			if !ok {
				return Absent
			}
			cur = Value{raw: raw, present: true}
		case int:
			arr, ok := cur.raw.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return Absent
			}
			cur = Value{raw: arr[key], present: true}
		default:
			return Absent
		}
	}
	return cur
}

// Find scans an array of objects for the first element whose field key
// equals want. Returns Absent if the value is not an array or no element
// matches.
func (v Value) Find(key, want string) Value {
	arr, ok := v.Array()
	if !ok {
		return Absent
	}
	for _, elem := range arr {
		if s, ok := elem.Get(key).String(); ok && s == want {
			return elem
		}
	}
	return Absent
}

// String returns the value as a string. The second return is false when the
// value is absent, null, or not a string.
func (v Value) String() (string, bool) {
	s, ok := v.raw.(string)
	if !v.present || !ok {
		return "", false
	}
	return s, true
}

// StringOr returns the value as a string, or def when absent or mistyped.
func (v Value) StringOr(def string) string {
	if s, ok := v.String(); ok {
		return s
	}
	return def
}

// Bool returns the value as a bool.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	if !v.present || !ok {
		return false, false
	}
	return b, true
}

// Float returns the value as a float64 (the only JSON number type).
func (v Value) Float() (float64, bool) {
	f, ok := v.raw.(float64)
	if !v.present || !ok {
		return 0, false
	}
	return f, true
}

// Array returns the value's elements when it is a JSON array.
func (v Value) Array() ([]Value, bool) {
	arr, ok := v.raw.([]any)
	if !v.present || !ok {
		return nil, false
	}
	out := make([]Value, len(arr))
	for i, elem := range arr {
		out[i] = Value{raw: elem, present: true}
	}
	return out, true
}

// Object returns the value's fields when it is a JSON object.
func (v Value) Object() (map[string]any, bool) {
	obj, ok := v.raw.(map[string]any)
	if !v.present || !ok {
		return nil, false
	}
	return obj, true
}

// Raw returns the underlying decoded value, nil when absent.
func (v Value) Raw() any {
	return v.raw
}
