// Package lowtype classifies raw JSON values into the closed LowCMS type taxonomy,
// a superset of the JSON Schema type names with array shapes split out.
package lowtype

import "github.com/kailas-cloud/lowcms/internal/domain/value"

// Type is a LowCMS semantic type.
type Type string

// The closed set of LowCMS types.
const (
	String         Type = "string"
	Number         Type = "number"
	Boolean        Type = "boolean"
	Null           Type = "null"
	Object         Type = "object"
	Array          Type = "array"
	ArrayOfObjects Type = "array-of-objects"
	ArrayOfStrings Type = "array-of-strings"
	Unknown        Type = "unknown"
)

// All lists every LowCMS type.
var All = []Type{String, Number, Boolean, Null, Object, Array, ArrayOfObjects, ArrayOfStrings, Unknown}

// IsValid reports whether t belongs to the closed set.
func (t Type) IsValid() bool {
	for _, v := range All {
		if v == t {
			return true
		}
	}
	return false
}

// Classify returns the LowCMS type of v. It never fails: anything without a
// recognizable shape is Unknown. Only the first element of an array is probed
// for objects; mixed arrays are not detected beyond that.
func Classify(v any) Type {
	switch t := v.(type) {
	case nil:
		return Null
	case string:
		return String
	case bool:
		return Boolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return Number
	case []string:
		if len(t) == 0 {
			return Unknown
		}
		return ArrayOfStrings
	case []map[string]any:
		if len(t) == 0 {
			return Unknown
		}
		return ArrayOfObjects
	case []any:
		return classifyArray(t)
	}
	if value.IsObject(v) {
		return Object
	}
	return Unknown
}

func classifyArray(arr []any) Type {
	if len(arr) == 0 {
		return Unknown
	}
	if value.IsObject(arr[0]) {
		return ArrayOfObjects
	}
	for _, e := range arr {
		if _, ok := e.(string); !ok {
			return Unknown
		}
	}
	return ArrayOfStrings
}

// IsEmptyArray reports whether v is an array with no elements.
func IsEmptyArray(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case []map[string]any:
		return len(t) == 0
	}
	return false
}

var jsonTypes = map[Type]string{
	String:         "string",
	Number:         "number",
	Boolean:        "boolean",
	Object:         "object",
	Array:          "array",
	ArrayOfObjects: "array",
	ArrayOfStrings: "array",
	Null:           "null",
	Unknown:        "unknown",
}

// JSONType maps a LowCMS type onto its JSON Schema type name.
// "unknown" is the non-standard extension for undeterminable fields.
func JSONType(t Type) string {
	if s, ok := jsonTypes[t]; ok {
		return s
	}
	return "unknown"
}

// IsSelectable reports whether values of v can be drilled into (objects and
// arrays of objects).
func IsSelectable(v any) bool {
	t := Classify(v)
	return t == Object || t == ArrayOfObjects
}
