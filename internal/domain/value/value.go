// Package value is the JSON value model shared by schema inference and filtering.
//
// A decoded JSON value is one of: nil, string, float64, bool, []any or *Object.
// Objects keep the order in which their keys were first seen so that anything
// derived from a sample (schemas, filtered records) is reproducible.
package value

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
)

// Object is a JSON object that remembers key insertion order.
type Object struct {
	keys []string
	m    map[string]any
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{m: make(map[string]any)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored at key and whether the key is present.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.m[key]
	return v, ok
}

// Has reports whether key is present (a nil value still counts).
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores v at key. A new key is appended; an existing key keeps its position.
// o must be non-nil; use NewObject or a zero Object.
func (o *Object) Set(key string, v any) {
	if o.m == nil {
		o.m = make(map[string]any)
	}
	if _, ok := o.m[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.m[key] = v
}

// Delete removes key.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if _, ok := o.m[key]; !ok {
		return
	}
	delete(o.m, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for every key in order until fn returns false.
func (o *Object) Range(fn func(key string, v any) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.m[k]) {
			return
		}
	}
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.m[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value of %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %T", v)
	}
	*o = *obj
	return nil
}

// Parse decodes a single JSON document.
func Parse(data []byte) (any, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a single JSON document from r. Trailing data is an error.
func Decode(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("read trailing data: %w", err)
		}
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("read object key: %w", err)
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key must be a string, got %T", kt)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("close object: %w", err)
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("close array: %w", err)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", rune(d))
	}
}

// Marshal encodes any JSON value, keeping object key order.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(Normalize(v))
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return b, nil
}

// AsObject returns v as an *Object. map[string]any is converted with sorted keys.
func AsObject(v any) (*Object, bool) {
	switch t := v.(type) {
	case *Object:
		return t, t != nil
	case map[string]any:
		return fromMap(t), true
	default:
		return nil, false
	}
}

// Normalize converts Go maps and slices produced by other decoders into the
// canonical model: map[string]any becomes *Object, []map[string]any becomes []any.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return fromMap(t)
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = fromMap(m)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	default:
		return v
	}
}

func fromMap(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	obj := NewObject()
	for _, k := range keys {
		obj.Set(k, Normalize(m[k]))
	}
	return obj
}

// IsObject reports whether v is a plain (non-array) JSON object.
func IsObject(v any) bool {
	switch t := v.(type) {
	case *Object:
		return t != nil
	case map[string]any:
		return true
	}
	return false
}
