package filter

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/lowcms/internal/domain/schema"
)

func TestTree_UnmarshalKeepsRegexLiteral(t *testing.T) {
	in := `{"$and":[{"$or":[{"name":{"$regex":".*a\\.b.*","$options":"i","____rawRegexValue____":"a.b"}},{"name":{"$eq":"x"}}]}]}`
	var tree Tree
	if err := json.Unmarshal([]byte(in), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	conds := tree.And[0].Conditions()
	if len(conds) != 2 || conds[0].Raw != "a.b" || conds[0].Options != "i" {
		t.Errorf("conditions = %+v", conds)
	}
	if s := treeJSON(t, &tree); s != in {
		t.Errorf("round trip = %s\nwant         %s", s, in)
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestTree_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"not an object", `[]`, "must be an object"},
		{"unknown root key", `{"$nor":[]}`, "unexpected filter key"},
		{"root not array", `{"$and":{}}`, "expected array"},
		{"bad block key", `{"$and":[{"$not":[]}]}`, "unexpected key"},
		{"bad condition", `{"$and":[{"$or":[{"a":1}]}]}`, "operators must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tree Tree
			err := tree.UnmarshalJSON([]byte(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestTree_Validate(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"both roots", `{"$and":[{"$or":[{"a":{"$eq":1}}]}],"$or":[{"$or":[{"b":{"$eq":1}}]}]}`, "both"},
		{"empty root", `{"$and":[]}`, "root is empty"},
		{"empty block", `{"$and":[{"$or":[]}]}`, "is empty"},
		{"mixed fields", `{"$and":[{"$or":[{"a":{"$eq":1}},{"b":{"$eq":1}}]}]}`, "mixes fields"},
		{"unknown operator", `{"$and":[{"$or":[{"a":{"$nin":[1]}}]}]}`, "unsupported operator"},
		{"duplicate operator", `{"$and":[{"$or":[{"a":{"$eq":1}},{"a":{"$eq":2}}]}]}`, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tree Tree
			if err := tree.UnmarshalJSON([]byte(tt.in)); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			err := tree.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestParseOperator(t *testing.T) {
	for _, in := range []string{"eq", "$eq", "regex", "$exists"} {
		if _, err := ParseOperator(in); err != nil {
			t.Errorf("ParseOperator(%q): %v", in, err)
		}
	}
	if _, err := ParseOperator("nin"); err == nil {
		t.Error("evaluator-only operators are not accepted by the builder")
	}
}

func TestOperatorsFor(t *testing.T) {
	tests := []struct {
		name string
		node *schema.Node
		want []Operator
	}{
		{"string", stringField, []Operator{OpEq, OpNe, OpRegex, OpIn, OpExists}},
		{"number", numberField, []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpExists}},
		{"boolean", boolField, []Operator{OpEq, OpExists}},
		{"array of strings", stringsField, []Operator{OpIn, OpExists}},
		{"object", &schema.Node{Type: "object"}, []Operator{OpExists}},
		{"nil", nil, []Operator{OpExists}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OperatorsFor(tt.node)
			if len(got) != len(tt.want) {
				t.Fatalf("OperatorsFor = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}
