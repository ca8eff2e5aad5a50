package filter

import (
	"strings"

	"github.com/kailas-cloud/lowcms/internal/domain/jsonpath"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// Search returns the records matching p, or records unchanged when p is empty.
func Search(records []any, p Predicate) []any {
	if p.IsEmpty() {
		return records
	}
	out := make([]any, 0, len(records))
	for _, r := range records {
		if Matches(r, p) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether record satisfies p. Every present part of p must
// hold: all of $and (vacuously true when empty), at least one of $or (never
// true when empty) and every field condition.
func Matches(record any, p Predicate) bool {
	for _, sub := range p.And {
		if !Matches(record, sub) {
			return false
		}
	}
	if p.Or != nil {
		matched := false
		for _, sub := range p.Or {
			if Matches(record, sub) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, fc := range p.Fields {
		if !fc.matches(record) {
			return false
		}
	}
	return true
}

func (fc FieldCondition) matches(record any) bool {
	v, present := lookup(record, fc.Field)
	if fc.Ops == nil {
		if arr, ok := v.([]any); ok {
			return contains(arr, fc.Literal)
		}
		return equal(v, fc.Literal)
	}
	for _, ov := range fc.Ops {
		if !ov.holds(v, present, fc) {
			return false
		}
	}
	return true
}

func (ov OperatorValue) holds(v any, present bool, fc FieldCondition) bool {
	switch ov.Operator {
	case OpEq:
		return equal(v, ov.Value)
	case OpNe:
		return !equal(v, ov.Value)
	case OpGt, OpGte, OpLt, OpLte:
		c, ok := compare(v, ov.Value)
		if !ok {
			return false
		}
		switch ov.Operator {
		case OpGt:
			return c > 0
		case OpGte:
			return c >= 0
		case OpLt:
			return c < 0
		default:
			return c <= 0
		}
	case OpIn:
		return overlaps(v, operandList(ov.Value))
	case OpNin:
		return !overlaps(v, operandList(ov.Value))
	case OpAll:
		have, ok := v.([]any)
		want, ok2 := value.Normalize(ov.Value).([]any)
		if !ok || !ok2 {
			return false
		}
		for _, w := range want {
			if !contains(have, w) {
				return false
			}
		}
		return true
	case OpExists:
		return present == truthy(ov.Value)
	case OpRegex:
		re := ov.re
		if re == nil {
			re = compileRegex(ov.Value, fc.options())
		}
		if re == nil {
			return false
		}
		if s, ok := v.(string); ok {
			return re.MatchString(s)
		}
		if arr, ok := v.([]any); ok {
			for _, e := range arr {
				if s, ok := e.(string); ok && re.MatchString(s) {
					return true
				}
			}
		}
		return false
	default:
		// $options and operators nobody knows about do not constrain.
		return true
	}
}

// lookup reads field from record. Dotted names that are not literal keys are
// followed as nested paths.
func lookup(record any, field string) (any, bool) {
	v, ok := jsonpath.Get(record, []jsonpath.Segment{field})
	if !ok && strings.Contains(field, ".") {
		v, ok = jsonpath.Get(record, jsonpath.Parse(field))
	}
	return value.Normalize(v), ok
}

func operandList(v any) []any {
	if arr, ok := value.Normalize(v).([]any); ok {
		return arr
	}
	return []any{v}
}

func overlaps(v any, list []any) bool {
	if arr, ok := v.([]any); ok {
		for _, e := range arr {
			if contains(list, e) {
				return true
			}
		}
		return false
	}
	return contains(list, v)
}

func contains(arr []any, v any) bool {
	for _, e := range arr {
		if equal(e, v) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	a, b = value.Normalize(a), value.Normalize(b)
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *value.Object:
		y, ok := b.(*value.Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		same := true
		x.Range(func(k string, xv any) bool {
			yv, ok := y.Get(k)
			same = ok && equal(xv, yv)
			return same
		})
		return same
	}
	return false
}

// compare orders numbers against numbers and strings against strings.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}
