package schema

import "github.com/kailas-cloud/lowcms/internal/domain/value"

// Reduce folds objects left into one representative object.
//
// For every key: a nil value is only recorded while the key is still unset; an
// array already in the accumulator gets the new value concatenated (arrays are
// flattened one level); a nil accumulator value is replaced; any other existing
// value wins. The inputs are not modified.
func Reduce(objects []*value.Object) *value.Object {
	acc := value.NewObject()
	for _, obj := range objects {
		obj.Range(func(key string, cur any) bool {
			existing, set := acc.Get(key)
			if cur == nil {
				if !set {
					acc.Set(key, nil)
				}
				return true
			}
			switch {
			case isArray(existing):
				acc.Set(key, concat(existing.([]any), cur))
			case existing == nil:
				acc.Set(key, cloneArray(cur))
			}
			return true
		})
	}
	return acc
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func concat(arr []any, v any) []any {
	out := make([]any, 0, len(arr)+1)
	out = append(out, arr...)
	if more, ok := v.([]any); ok {
		return append(out, more...)
	}
	return append(out, v)
}

// cloneArray keeps later concatenations from writing into a caller's slice.
func cloneArray(v any) any {
	if arr, ok := v.([]any); ok {
		return concat(nil, arr)
	}
	return v
}
