// Package filter builds, inspects and evaluates Mongo-style filter trees.
//
// A Tree has one active root key ($and or $or) holding field blocks. Each
// block is a disjunction of operator conditions on a single field:
//
//	{"$and": [{"$or": [{"age": {"$gt": 20}}, {"age": {"$lt": 5}}]}]}
package filter

import (
	"bytes"
	"fmt"

	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// Tree is a filter tree owned by the caller and edited in place by Apply.
// A non-nil slice means the root key is present.
type Tree struct {
	And []Block
	Or  []Block
}

// Block groups the conditions of one field. Conditions live under $or; $and
// is read when a block was written that way by a client.
type Block struct {
	Or  []Condition
	And []Condition
}

// Condition is a single {field: {operator: value}} entry.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
	// Options and Raw are only set for $regex.
	Options string
	Raw     string
}

// IsEmpty reports whether no root key is present.
func (t *Tree) IsEmpty() bool {
	return t == nil || (t.And == nil && t.Or == nil)
}

// root returns the active root list: $and when present, else $or.
func (t *Tree) root() *[]Block {
	if t.And != nil {
		return &t.And
	}
	if t.Or != nil {
		return &t.Or
	}
	return nil
}

// conditions returns the block's condition list: $or when present, else $and.
func (b *Block) conditions() *[]Condition {
	if b.Or != nil {
		return &b.Or
	}
	if b.And != nil {
		return &b.And
	}
	return &b.Or
}

// Conditions returns the conditions of the block.
func (b *Block) Conditions() []Condition { return *b.conditions() }

// Validate checks the structural invariants of a tree received from outside:
// a single root key, no empty lists, one field per block and known operators.
func (t *Tree) Validate() error {
	if t == nil {
		return nil
	}
	if t.And != nil && t.Or != nil {
		return fmt.Errorf("filter has both $and and $or")
	}
	root := t.root()
	if root == nil {
		return nil
	}
	if len(*root) == 0 {
		return fmt.Errorf("filter root is empty")
	}
	for i := range *root {
		conds := (*root)[i].Conditions()
		if len(conds) == 0 {
			return fmt.Errorf("block %d is empty", i)
		}
		seen := make(map[Operator]bool, len(conds))
		for _, c := range conds {
			if c.Field != conds[0].Field {
				return fmt.Errorf("block %d mixes fields %q and %q", i, conds[0].Field, c.Field)
			}
			if !c.Operator.IsBuilder() {
				return fmt.Errorf("block %d: unsupported operator %q", i, c.Operator)
			}
			if seen[c.Operator] {
				return fmt.Errorf("block %d: duplicate operator %q", i, c.Operator)
			}
			seen[c.Operator] = true
		}
	}
	return nil
}

// MarshalJSON encodes the tree with only its present root keys.
func (t *Tree) MarshalJSON() ([]byte, error) {
	obj := value.NewObject()
	if t.And != nil {
		obj.Set("$and", blocksValue(t.And))
	}
	if t.Or != nil {
		obj.Set("$or", blocksValue(t.Or))
	}
	return value.Marshal(obj)
}

// UnmarshalJSON decodes a tree.
func (t *Tree) UnmarshalJSON(data []byte) error {
	v, err := value.Parse(data)
	if err != nil {
		return fmt.Errorf("decode filter: %w", err)
	}
	tree, err := TreeFromValue(v)
	if err != nil {
		return err
	}
	*t = *tree
	return nil
}

// TreeFromValue converts a decoded JSON value into a Tree. nil gives an empty tree.
func TreeFromValue(v any) (*Tree, error) {
	t := &Tree{}
	if v == nil {
		return t, nil
	}
	obj, ok := value.AsObject(v)
	if !ok {
		return nil, fmt.Errorf("filter must be an object, got %T", v)
	}
	var err error
	for _, key := range obj.Keys() {
		raw, _ := obj.Get(key)
		switch key {
		case "$and":
			if t.And, err = blocksFromValue(raw); err != nil {
				return nil, fmt.Errorf("$and: %w", err)
			}
		case "$or":
			if t.Or, err = blocksFromValue(raw); err != nil {
				return nil, fmt.Errorf("$or: %w", err)
			}
		default:
			return nil, fmt.Errorf("unexpected filter key %q", key)
		}
	}
	return t, nil
}

// MarshalJSON encodes the block with its present sub-lists.
func (b Block) MarshalJSON() ([]byte, error) {
	return value.Marshal(b.toValue())
}

func (b Block) toValue() *value.Object {
	obj := value.NewObject()
	if b.Or != nil || b.And == nil {
		obj.Set("$or", conditionsValue(b.Or))
	}
	if b.And != nil {
		obj.Set("$and", conditionsValue(b.And))
	}
	return obj
}

// MarshalJSON encodes the condition as {field: {operator: value}}.
func (c Condition) MarshalJSON() ([]byte, error) {
	return value.Marshal(c.toValue())
}

func (c Condition) toValue() *value.Object {
	ops := value.NewObject()
	ops.Set(string(c.Operator), c.Value)
	if c.Operator == OpRegex {
		if c.Options != "" {
			ops.Set(string(OpOptions), c.Options)
		}
		ops.Set(RawRegexKey, c.Raw)
	}
	obj := value.NewObject()
	obj.Set(c.Field, ops)
	return obj
}

// UnmarshalJSON decodes a {field: {operator: value}} entry.
func (c *Condition) UnmarshalJSON(data []byte) error {
	v, err := value.Parse(data)
	if err != nil {
		return fmt.Errorf("decode condition: %w", err)
	}
	cond, err := conditionFromValue(v)
	if err != nil {
		return err
	}
	*c = cond
	return nil
}

func blocksValue(blocks []Block) []any {
	out := make([]any, len(blocks))
	for i, b := range blocks {
		out[i] = b.toValue()
	}
	return out
}

func conditionsValue(conds []Condition) []any {
	out := make([]any, len(conds))
	for i, c := range conds {
		out[i] = c.toValue()
	}
	return out
}

func blocksFromValue(v any) ([]Block, error) {
	if v == nil {
		return []Block{}, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]Block, 0, len(arr))
	for i, e := range arr {
		obj, ok := value.AsObject(e)
		if !ok {
			return nil, fmt.Errorf("block %d must be an object", i)
		}
		var b Block
		for _, key := range obj.Keys() {
			raw, _ := obj.Get(key)
			conds, err := conditionsFromValue(raw)
			if err != nil {
				return nil, fmt.Errorf("block %d %s: %w", i, key, err)
			}
			switch key {
			case "$or":
				b.Or = conds
			case "$and":
				b.And = conds
			default:
				return nil, fmt.Errorf("block %d: unexpected key %q", i, key)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func conditionsFromValue(v any) ([]Condition, error) {
	if v == nil {
		return []Condition{}, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]Condition, 0, len(arr))
	for i, e := range arr {
		c, err := conditionFromValue(e)
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func conditionFromValue(v any) (Condition, error) {
	obj, ok := value.AsObject(v)
	if !ok || obj.Len() == 0 {
		return Condition{}, fmt.Errorf("condition must be a non-empty object")
	}
	field := obj.Keys()[0]
	raw, _ := obj.Get(field)
	ops, ok := value.AsObject(raw)
	if !ok || ops.Len() == 0 {
		return Condition{}, fmt.Errorf("field %q: operators must be a non-empty object", field)
	}
	op := ops.Keys()[0]
	opValue, _ := ops.Get(op)
	c := Condition{Field: field, Operator: Operator(op), Value: opValue}
	if c.Operator == OpRegex {
		if s, ok := ops.Get(string(OpOptions)); ok {
			c.Options, _ = s.(string)
		}
		if s, ok := ops.Get(RawRegexKey); ok {
			c.Raw, _ = s.(string)
		}
	}
	return c, nil
}

// String renders the tree as compact JSON; used in logs.
func (t *Tree) String() string {
	if t == nil {
		return "{}"
	}
	b, err := t.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid filter: %v>", err)
	}
	return string(bytes.TrimSpace(b))
}
