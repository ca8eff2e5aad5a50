package filter

// Location describes where a field, and optionally one of its operators,
// sits inside a tree.
type Location struct {
	FieldIndex int
	// Conditions are the entries of the field's block.
	Conditions []Condition
	// OpIndex is -1 when the field is filtered but not on the requested operator.
	OpIndex int
	OpValue any
}

// HasOperator reports whether the requested operator was found.
func (l *Location) HasOperator() bool { return l != nil && l.OpIndex >= 0 }

// Condition returns the matched condition. Raw holds the literal of a $regex.
func (l *Location) Condition() (Condition, bool) {
	if !l.HasOperator() {
		return Condition{}, false
	}
	return l.Conditions[l.OpIndex], true
}

// Locate finds the block of field and the entry for operator name (given
// without "$") in t. Block ownership is decided by the block's first entry,
// and only the first owning block is inspected. nil means field is not
// filtered at all.
func Locate(t *Tree, field, name string) *Location {
	if t == nil {
		return nil
	}
	blocks := t.And
	if blocks == nil {
		blocks = t.Or
	}
	target := Operator("$" + name)

	for bi := range blocks {
		conds := blocks[bi].Or
		if len(conds) == 0 || conds[0].Field != field {
			continue
		}
		loc := &Location{FieldIndex: bi, Conditions: conds, OpIndex: -1}
		for oi, c := range conds {
			if c.Operator == target {
				loc.OpIndex = oi
				loc.OpValue = c.Value
				return loc
			}
		}
		return loc
	}
	return nil
}
