package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// Predicate is the general query shape evaluated against records: nested
// $and/$or lists plus per-field conditions. A non-nil And or Or means the key
// is present, which matters for $or: a present but empty $or never matches.
type Predicate struct {
	And    []Predicate
	Or     []Predicate
	Fields []FieldCondition
}

// FieldCondition constrains one field either by a literal (Ops == nil) or by
// an operator map whose entries must all hold.
type FieldCondition struct {
	Field   string
	Literal any
	Ops     []OperatorValue
}

// OperatorValue is one entry of an operator map.
type OperatorValue struct {
	Operator Operator
	Value    any

	re *regexp.Regexp
}

// IsEmpty reports whether p places no constraint at all.
func (p Predicate) IsEmpty() bool {
	return p.And == nil && p.Or == nil && len(p.Fields) == 0
}

// Predicate converts the tree into an evaluable predicate: the root list
// combines blocks and each block is a disjunction of its conditions.
func (t *Tree) Predicate() Predicate {
	if t.IsEmpty() {
		return Predicate{}
	}
	var p Predicate
	if t.And != nil {
		p.And = blockPredicates(t.And)
	}
	if t.Or != nil {
		p.Or = blockPredicates(t.Or)
	}
	return p
}

func blockPredicates(blocks []Block) []Predicate {
	out := make([]Predicate, 0, len(blocks))
	for _, b := range blocks {
		var bp Predicate
		if b.Or != nil {
			bp.Or = conditionPredicates(b.Or)
		}
		if b.And != nil {
			bp.And = conditionPredicates(b.And)
		}
		out = append(out, bp)
	}
	return out
}

func conditionPredicates(conds []Condition) []Predicate {
	out := make([]Predicate, 0, len(conds))
	for _, c := range conds {
		ops := []OperatorValue{{Operator: c.Operator, Value: c.Value}}
		if c.Operator == OpRegex && c.Options != "" {
			ops = append(ops, OperatorValue{Operator: OpOptions, Value: c.Options})
		}
		fc := FieldCondition{Field: c.Field, Ops: ops}
		fc.compile()
		out = append(out, Predicate{Fields: []FieldCondition{fc}})
	}
	return out
}

// UnmarshalJSON decodes a predicate document.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	v, err := value.Parse(data)
	if err != nil {
		return fmt.Errorf("decode predicate: %w", err)
	}
	pred, err := PredicateFromValue(v)
	if err != nil {
		return err
	}
	*p = pred
	return nil
}

// PredicateFromValue converts a decoded JSON value into a Predicate. An
// object whose first key starts with "$" is read as an operator map, any other
// field value as a literal.
func PredicateFromValue(v any) (Predicate, error) {
	var p Predicate
	if v == nil {
		return p, nil
	}
	obj, ok := value.AsObject(v)
	if !ok {
		return p, fmt.Errorf("predicate must be an object, got %T", v)
	}
	var err error
	for _, key := range obj.Keys() {
		raw, _ := obj.Get(key)
		switch key {
		case "$and":
			if p.And, err = predicateList(raw); err != nil {
				return Predicate{}, fmt.Errorf("$and: %w", err)
			}
		case "$or":
			if p.Or, err = predicateList(raw); err != nil {
				return Predicate{}, fmt.Errorf("$or: %w", err)
			}
		default:
			if strings.HasPrefix(key, "$") {
				return Predicate{}, fmt.Errorf("unsupported top-level operator %q", key)
			}
			fc := FieldCondition{Field: key, Literal: raw}
			if ops, ok := value.AsObject(raw); ok && ops.Len() > 0 && strings.HasPrefix(ops.Keys()[0], "$") {
				fc.Literal = nil
				ops.Range(func(op string, ov any) bool {
					fc.Ops = append(fc.Ops, OperatorValue{Operator: Operator(op), Value: ov})
					return true
				})
				fc.compile()
			}
			p.Fields = append(p.Fields, fc)
		}
	}
	return p, nil
}

func predicateList(v any) ([]Predicate, error) {
	if v == nil {
		return []Predicate{}, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]Predicate, 0, len(arr))
	for i, e := range arr {
		sub, err := PredicateFromValue(e)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, sub)
	}
	return out, nil
}

// compile prepares $regex matchers. Invalid patterns are left nil and never match.
func (fc *FieldCondition) compile() {
	for i := range fc.Ops {
		if fc.Ops[i].Operator == OpRegex {
			fc.Ops[i].re = compileRegex(fc.Ops[i].Value, fc.options())
		}
	}
}

func (fc *FieldCondition) options() string {
	for _, o := range fc.Ops {
		if o.Operator == OpOptions {
			s, _ := o.Value.(string)
			return s
		}
	}
	return ""
}

func compileRegex(pattern any, options string) *regexp.Regexp {
	s, ok := pattern.(string)
	if !ok {
		return nil
	}
	var flags string
	for _, f := range "imsU" {
		if strings.ContainsRune(options, f) {
			flags += string(f)
		}
	}
	if flags != "" {
		s = "(?" + flags + ")" + s
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil
	}
	return re
}
