package filter

import (
	"fmt"
	"strings"
)

// Operator compares a variable value against a rule value.
type Operator string

const (
	Equals      Operator = "Equals"
	NotEquals   Operator = "NotEquals"
	Contains    Operator = "Contains"
	NotContains Operator = "NotContains"
)

var operators = []Operator{Equals, NotEquals, Contains, NotContains}

// UnknownOperatorError is returned when an operator name is not one of the supported operators.
type UnknownOperatorError struct {
	Name string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q (available: %v)", e.Name, operators)
}

// ParseOperator returns the operator with the given name. Names are case sensitive.
func ParseOperator(name string) (Operator, error) {
	for _, op := range operators {
		if string(op) == name {
			return op, nil
		}
	}
	return "", &UnknownOperatorError{Name: name}
}

// negated reports whether the operator drops on a hit instead of keeping on a hit.
func (o Operator) negated() bool {
	return o == NotEquals || o == NotContains
}

func (o Operator) hit(value, want string) bool {
	switch o {
	case Equals, NotEquals:
		return value == want
	case Contains, NotContains:
		return strings.Contains(value, want)
	default:
		return false
	}
}
