package lowtype

import (
	"testing"

	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want Type
	}{
		{"null", nil, Null},
		{"string", "x", String},
		{"float", 1.5, Number},
		{"int", 1, Number},
		{"bool", true, Boolean},
		{"empty array", []any{}, Unknown},
		{"strings", []any{"a", "b"}, ArrayOfStrings},
		{"typed strings", []string{"a"}, ArrayOfStrings},
		{"mixed", []any{1, "a"}, Unknown},
		{"numbers", []any{1.0, 2.0}, Unknown},
		{"objects", []any{value.NewObject()}, ArrayOfObjects},
		{"first element probed only", []any{map[string]any{}, "x"}, ArrayOfObjects},
		{"object", value.NewObject(), Object},
		{"map", map[string]any{"a": 1}, Object},
		{"unsupported", struct{}{}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.v)
			if got != tt.want {
				t.Errorf("Classify(%#v) = %q, want %q", tt.v, got, tt.want)
			}
			if !got.IsValid() {
				t.Errorf("Classify(%#v) = %q outside the closed set", tt.v, got)
			}
		})
	}
}

func TestJSONType(t *testing.T) {
	tests := map[Type]string{
		ArrayOfStrings: "array",
		ArrayOfObjects: "array",
		Number:         "number",
		Unknown:        "unknown",
		Type("bogus"):  "unknown",
	}
	for in, want := range tests {
		if got := JSONType(in); got != want {
			t.Errorf("JSONType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsEmptyArray(t *testing.T) {
	if !IsEmptyArray([]any{}) || !IsEmptyArray([]string{}) {
		t.Error("empty arrays not detected")
	}
	if IsEmptyArray([]any{1}) || IsEmptyArray(nil) {
		t.Error("false positive")
	}
}

func TestIsSelectable(t *testing.T) {
	if !IsSelectable(map[string]any{}) || !IsSelectable([]any{map[string]any{}}) {
		t.Error("objects and arrays of objects are selectable")
	}
	if IsSelectable([]any{"a"}) || IsSelectable("a") {
		t.Error("scalars and string arrays are not selectable")
	}
}
