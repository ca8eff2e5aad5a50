// Package schema infers JSON Schema (draft 7) documents from sample JSON.
package schema

import (
	"math"
	"strings"

	"github.com/kailas-cloud/lowcms/internal/domain/lowtype"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// emptyArray marks a field occurrence whose value was []. It is tracked
// separately from plain unknown so empty arrays do not outvote real types.
const emptyArray lowtype.Type = "array-empty"

// Derive infers an object schema from sample, which is either a single object
// or an array of objects. Any other input yields an object schema with no
// properties. Derive never fails.
func Derive(sample any) *Node {
	return derive(value.Normalize(sample), NewRoot())
}

// derive fills node.Properties from sample and returns node.
func derive(sample any, node *Node) *Node {
	if node.Properties == nil {
		node.Properties = NewProperties()
	}
	if obj, ok := value.AsObject(sample); ok {
		deriveObject(obj, node)
		return node
	}
	if arr, ok := sample.([]any); ok {
		deriveArray(arr, node)
	}
	return node
}

func deriveObject(obj *value.Object, node *Node) {
	obj.Range(func(key string, v any) bool {
		if strings.Contains(key, ".") {
			return true
		}
		node.Properties.Set(key, deriveField(v))
		return true
	})
}

func deriveField(v any) *Node {
	t := lowtype.Classify(v)
	switch t {
	case lowtype.Array, lowtype.Unknown:
		return &Node{Type: TypeUnknown}
	case lowtype.ArrayOfObjects:
		return &Node{Type: "array", Items: derive(value.Normalize(v), &Node{Type: "object"})}
	case lowtype.ArrayOfStrings:
		return &Node{Type: "array", Items: &Node{Type: "string", Enum: uniqueStrings(stringsOf(v))}}
	case lowtype.Object:
		return derive(v, &Node{Type: "object"})
	default:
		return &Node{Type: string(t)}
	}
}

type fieldStats struct {
	types  []lowtype.Type
	values []string
}

func deriveArray(records []any, node *Node) {
	var names []string
	stats := make(map[string]*fieldStats)

	for _, rec := range records {
		obj, ok := value.AsObject(rec)
		if !ok {
			continue
		}
		obj.Range(func(key string, v any) bool {
			if strings.Contains(key, ".") {
				return true
			}
			st, seen := stats[key]
			if !seen {
				st = &fieldStats{}
				stats[key] = st
				names = append(names, key)
			}
			t := lowtype.Classify(v)
			if lowtype.IsEmptyArray(v) {
				t = emptyArray
			}
			st.types = append(st.types, t)
			switch t {
			case lowtype.String:
				st.values = append(st.values, v.(string))
			case lowtype.ArrayOfStrings:
				st.values = append(st.values, stringsOf(v)...)
			}
			return true
		})
	}

	for _, key := range names {
		st := stats[key]
		types := withoutEmptyArrays(st.types)
		if len(types) == 0 {
			types = []lowtype.Type{lowtype.Unknown}
		}
		node.Properties.Set(key, voteField(records, key, types, st.values))
	}
}

func voteField(records []any, key string, types []lowtype.Type, values []string) *Node {
	winner := mostFrequent(types)
	switch winner {
	case lowtype.ArrayOfObjects:
		merged := Reduce(objectsOf(records, key))
		return &Node{Type: "array", Items: derive(merged, &Node{Type: "object"})}
	case lowtype.Array, lowtype.Unknown:
		return &Node{Type: TypeUnknown}
	case lowtype.ArrayOfStrings:
		return &Node{Type: "array", Items: &Node{Type: "string", Enum: uniqueStrings(values)}}
	case lowtype.String:
		n := &Node{Type: "string"}
		// Compares distinct type labels, not distinct values, so it only fires
		// for fields that mix types while strings still win the vote.
		labels := uniqueTypes(types)
		if math.Sqrt(float64(len(types))) < float64(len(labels)) {
			n.Enum = labels
		}
		return n
	case lowtype.Object:
		var first any
		if len(records) > 0 {
			if obj, ok := value.AsObject(records[0]); ok {
				first, _ = obj.Get(key)
			}
		}
		return derive(first, &Node{Type: "object"})
	default:
		return &Node{Type: string(winner)}
	}
}

// mostFrequent returns the type with the highest count. On a tie the type
// that reached the count first keeps the lead.
func mostFrequent(types []lowtype.Type) lowtype.Type {
	counts := make(map[lowtype.Type]int, len(types))
	best, top := lowtype.Unknown, 0
	for _, t := range types {
		counts[t]++
		if counts[t] > top {
			best, top = t, counts[t]
		}
	}
	return best
}

func withoutEmptyArrays(types []lowtype.Type) []lowtype.Type {
	out := make([]lowtype.Type, 0, len(types))
	for _, t := range types {
		if t != emptyArray {
			out = append(out, t)
		}
	}
	return out
}

// objectsOf collects the object elements of field key across records, taking
// array values element-wise.
func objectsOf(records []any, key string) []*value.Object {
	var out []*value.Object
	for _, rec := range records {
		obj, ok := value.AsObject(rec)
		if !ok {
			continue
		}
		v, _ := obj.Get(key)
		if arr, ok := value.Normalize(v).([]any); ok {
			for _, e := range arr {
				if o, ok := value.AsObject(e); ok {
					out = append(out, o)
				}
			}
			continue
		}
		if o, ok := value.AsObject(v); ok {
			out = append(out, o)
		}
	}
	return out
}

func stringsOf(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func uniqueStrings(in []string) []any {
	seen := make(map[string]bool, len(in))
	out := make([]any, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func uniqueTypes(in []lowtype.Type) []any {
	seen := make(map[lowtype.Type]bool, len(in))
	out := make([]any, 0, len(in))
	for _, t := range in {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, string(t))
	}
	return out
}

// HasTypes reports whether n or any nested property or item schema has one of
// the given types. With no types it looks for "unknown".
func HasTypes(n *Node, types ...string) bool {
	if n == nil {
		return false
	}
	if len(types) == 0 {
		types = []string{TypeUnknown}
	}
	for _, t := range types {
		if n.Type == t {
			return true
		}
	}
	if n.Properties != nil {
		for _, name := range n.Properties.names {
			if HasTypes(n.Properties.nodes[name], types...) {
				return true
			}
		}
	}
	return HasTypes(n.Items, types...)
}
