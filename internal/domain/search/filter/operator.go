package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/lowcms/internal/domain/lowtype"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
)

// Operator is a Mongo-style query operator name, "$" included.
type Operator string

// Operators produced by the builder.
const (
	OpEq     Operator = "$eq"
	OpNe     Operator = "$ne"
	OpRegex  Operator = "$regex"
	OpIn     Operator = "$in"
	OpGt     Operator = "$gt"
	OpGte    Operator = "$gte"
	OpLt     Operator = "$lt"
	OpLte    Operator = "$lte"
	OpExists Operator = "$exists"
)

// Operators understood only by the evaluator.
const (
	OpNin     Operator = "$nin"
	OpAll     Operator = "$all"
	OpOptions Operator = "$options"
)

// RawRegexKey stores the literal a $regex condition was built from, next to
// the escaped pattern, so the literal can be shown and edited again.
const RawRegexKey = "____rawRegexValue____"

// InAll is the $in value that clears the $in condition of a field.
const InAll = "all"

// BuilderOperators lists the operators a filter tree may hold.
var BuilderOperators = []Operator{OpEq, OpNe, OpRegex, OpIn, OpGt, OpGte, OpLt, OpLte, OpExists}

var (
	stringOperators = []Operator{OpEq, OpNe, OpRegex}
	numberOperators = []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte}
)

// Name returns the operator without its "$" prefix.
func (o Operator) Name() string { return strings.TrimPrefix(string(o), "$") }

// IsBuilder reports whether o can be stored in a filter tree.
func (o Operator) IsBuilder() bool {
	for _, b := range BuilderOperators {
		if b == o {
			return true
		}
	}
	return false
}

// ParseOperator accepts "eq" or "$eq" for every builder operator.
func ParseOperator(s string) (Operator, error) {
	op := Operator("$" + strings.TrimPrefix(s, "$"))
	if !op.IsBuilder() {
		return "", fmt.Errorf("unknown operator %q", s)
	}
	return op, nil
}

// OperatorsFor returns the operators offered for a field with schema n.
// Every field can be tested for existence.
func OperatorsFor(n *schema.Node) []Operator {
	if n == nil {
		return []Operator{OpExists}
	}
	var ops []Operator
	switch n.Type {
	case "string":
		ops = append(ops, stringOperators...)
		ops = append(ops, OpIn)
	case "number", "integer":
		ops = append(ops, numberOperators...)
	case "boolean":
		ops = append(ops, OpEq)
	}
	if n.Type != "string" && n.Shape() == lowtype.ArrayOfStrings {
		ops = append(ops, OpIn)
	}
	return append(ops, OpExists)
}
