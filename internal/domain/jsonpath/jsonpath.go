// Package jsonpath reads and writes nested JSON values by an ordered key path.
// Path segments are strings (object keys) or ints (array indexes).
package jsonpath

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// Segment is a single path element: string or int.
type Segment = any

// Get walks path from root. It returns false as soon as an intermediate value
// is missing or of the wrong shape. A path made of a single empty string is
// the identity path and returns root itself.
func Get(root any, path []Segment) (any, bool) {
	if len(path) == 1 {
		if s, ok := path[0].(string); ok && s == "" {
			return root, true
		}
	}
	cur := root
	for _, seg := range path {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func step(cur any, seg Segment) (any, bool) {
	if m, ok := cur.(map[string]any); ok {
		key, ok := toKey(seg)
		if !ok {
			return nil, false
		}
		v, ok := m[key]
		return v, ok
	}
	switch key := seg.(type) {
	case string:
		if obj, ok := cur.(*value.Object); ok {
			return obj.Get(key)
		}
		// "0" on an array behaves like an index, as property access does in JSON land.
		if arr, ok := cur.([]any); ok {
			if i, err := strconv.Atoi(key); err == nil {
				return index(arr, i)
			}
		}
	case int:
		if arr, ok := cur.([]any); ok {
			return index(arr, key)
		}
		if obj, ok := cur.(*value.Object); ok {
			return obj.Get(strconv.Itoa(key))
		}
	}
	return nil, false
}

func index(arr []any, i int) (any, bool) {
	if i < 0 || i >= len(arr) {
		return nil, false
	}
	return arr[i], true
}

// SetOptions controls SetMutable.
type SetOptions struct {
	Value any
	// GetNestedFieldOnly returns the value at the last segment instead of assigning.
	GetNestedFieldOnly bool
	// IsArray initializes an absent last segment with an empty array when
	// GetNestedFieldOnly is set.
	IsArray bool
}

// SetMutable assigns opts.Value at path inside root, creating intermediate
// containers on the way. The container created for a segment is an array when
// the following segment is an int and an object otherwise.
//
// root is mutated in place and returned as the same reference. The one
// exception is a top-level []any that has to grow to reach an index: slices
// cannot grow in place, so the grown slice is returned instead.
// If root is not an object or array, or path is empty, root is returned unchanged.
func SetMutable(root any, path []Segment, opts SetOptions) any {
	if len(path) == 0 || !isContainer(root) {
		return root
	}

	w := &writer{root: root}
	var parent any
	var parentSeg Segment
	cur := root
	for i := 0; i < len(path)-1; i++ {
		seg := path[i]
		child, ok := step(cur, seg)
		if !ok || !isContainer(child) {
			if _, isIndex := path[i+1].(int); isIndex {
				child = []any{}
			} else {
				child = value.NewObject()
			}
			cur = w.put(parent, parentSeg, cur, seg, child)
		}
		parent, parentSeg, cur = cur, seg, child
	}

	last := path[len(path)-1]
	if opts.GetNestedFieldOnly {
		v, ok := step(cur, last)
		if opts.IsArray && (!ok || v == nil) {
			v = []any{}
			w.put(parent, parentSeg, cur, last, v)
		}
		return v
	}
	w.put(parent, parentSeg, cur, last, opts.Value)
	return w.root
}

type writer struct {
	root any
}

// put stores v at seg inside container and returns the container, which is a
// new slice when an array had to grow. A grown slice is written back into its
// parent (or becomes the new root).
func (w *writer) put(parent any, parentSeg Segment, container any, seg Segment, v any) any {
	switch c := container.(type) {
	case map[string]any:
		if key, ok := toKey(seg); ok {
			c[key] = v
		}
		return container
	case *value.Object:
		if key, ok := toKey(seg); ok {
			c.Set(key, v)
		}
		return container
	}

	arr, ok := container.([]any)
	if !ok {
		return container
	}
	i, ok := toIndex(seg)
	if !ok || i < 0 {
		return container
	}
	if i < len(arr) {
		arr[i] = v
		return arr
	}
	grown := append(arr, make([]any, i-len(arr)+1)...)
	grown[i] = v
	if parent == nil {
		w.root = grown
	} else {
		w.put(nil, nil, parent, parentSeg, grown)
	}
	return grown
}

func toKey(seg Segment) (string, bool) {
	switch s := seg.(type) {
	case string:
		return s, true
	case int:
		return strconv.Itoa(s), true
	}
	return "", false
}

func toIndex(seg Segment) (int, bool) {
	switch s := seg.(type) {
	case int:
		return s, true
	case string:
		i, err := strconv.Atoi(s)
		return i, err == nil
	}
	return 0, false
}

func isContainer(v any) bool {
	if _, ok := v.([]any); ok {
		return true
	}
	return value.IsObject(v)
}

// Parse splits a dot-separated path. Segments that are non-negative integers
// become array indexes.
func Parse(path string) []Segment {
	if path == "" {
		return []Segment{""}
	}
	parts := strings.Split(path, ".")
	out := make([]Segment, len(parts))
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil && n >= 0 {
			out[i] = n
			continue
		}
		out[i] = p
	}
	return out
}
