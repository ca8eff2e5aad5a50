package filter

import (
	"regexp"

	"github.com/kailas-cloud/lowcms/internal/domain/lowtype"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
)

// Apply records the operator entry {field: {op: v}} in t and returns t itself.
// The field's schema decides which operators are accepted; other entries are
// ignored. Removal entries clear an existing condition: $in with "all", and
// $eq with a nil value on a boolean field.
//
// After every call t holds no empty block and no empty root list. A nil t is
// treated as an empty tree and a new tree is returned.
func Apply(t *Tree, field string, node *schema.Node, op Operator, v any) *Tree {
	if t == nil {
		t = &Tree{}
	}
	if t.root() == nil {
		t.And = []Block{}
	}
	root := t.root()

	bi := blockIndex(*root, field)
	if bi == -1 {
		*root = append(*root, Block{Or: []Condition{}})
		bi = len(*root) - 1
	}
	conds := (*root)[bi].conditions()

	fieldType := ""
	if node != nil {
		fieldType = node.Type
	}
	isArrayOfStrings := node.Shape() == lowtype.ArrayOfStrings

	switch {
	case op == OpExists:
		upsert(conds, Condition{Field: field, Operator: op, Value: v})
	case fieldType == "string" && (op == OpEq || op == OpNe):
		upsert(conds, Condition{Field: field, Operator: op, Value: v})
	case fieldType == "string" && op == OpRegex:
		upsert(conds, RegexCondition(field, toString(v)))
	case (fieldType == "string" || isArrayOfStrings) && op == OpIn:
		if s, ok := v.(string); ok && s == InAll {
			remove(conds, op)
		} else {
			upsert(conds, Condition{Field: field, Operator: op, Value: v})
		}
	case (fieldType == "number" || fieldType == "integer") && isNumberOperator(op):
		upsert(conds, Condition{Field: field, Operator: op, Value: v})
	case fieldType == "boolean" && op == OpEq:
		if v == nil {
			remove(conds, op)
		} else {
			upsert(conds, Condition{Field: field, Operator: op, Value: v})
		}
	}

	cleanup(t, root, bi)
	return t
}

// RegexCondition builds a case-insensitive "contains" condition for literal.
// The stored pattern escapes literal; Raw keeps it as typed.
func RegexCondition(field, literal string) Condition {
	return Condition{
		Field:    field,
		Operator: OpRegex,
		Value:    ".*" + regexp.QuoteMeta(literal) + ".*",
		Options:  "i",
		Raw:      literal,
	}
}

func blockIndex(blocks []Block, field string) int {
	for i := range blocks {
		for _, c := range blocks[i].Conditions() {
			if c.Field == field {
				return i
			}
		}
	}
	return -1
}

// upsert replaces the condition with the same operator or appends c.
func upsert(conds *[]Condition, c Condition) {
	for i := range *conds {
		if (*conds)[i].Operator == c.Operator {
			(*conds)[i] = c
			return
		}
	}
	*conds = append(*conds, c)
}

// remove drops the condition with operator op. A missing operator is a no-op.
func remove(conds *[]Condition, op Operator) {
	for i := range *conds {
		if (*conds)[i].Operator == op {
			*conds = append((*conds)[:i], (*conds)[i+1:]...)
			return
		}
	}
}

func cleanup(t *Tree, root *[]Block, bi int) {
	if len((*root)[bi].Conditions()) == 0 {
		*root = append((*root)[:bi], (*root)[bi+1:]...)
	}
	if len(*root) == 0 {
		*root = nil
	}
	if t.Or != nil && len(t.Or) == 0 {
		t.Or = nil
	}
	if t.And != nil && len(t.And) == 0 {
		t.And = nil
	}
}

func isNumberOperator(op Operator) bool {
	for _, o := range numberOperators {
		if o == op {
			return true
		}
	}
	return false
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
