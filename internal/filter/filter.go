// Package filter decides which entities are retained given their attributes and a list of rules.
package filter

import (
	"fmt"

	"github.com/samber/lo"
)

// Attribute is a key with an optional value. A nil Value never matches any rule.
type Attribute struct {
	Key   string
	Value *string
}

// Rule is a single key/operator/value predicate.
type Rule struct {
	Key      string
	Operator Operator
	Value    string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s(%s, %q)", r.Operator, r.Key, r.Value)
}

// Keeps reports whether an entity with the given attributes is retained by this rule alone.
//
// Equals and Contains keep when at least one attribute with the rule key hits.
// NotEquals and NotContains keep when none does.
func (r Rule) Keeps(attributes []Attribute) bool {
	hit := lo.SomeBy(attributes, func(a Attribute) bool {
		return a.Key == r.Key && a.Value != nil && r.Operator.hit(*a.Value, r.Value)
	})
	if r.Operator.negated() {
		return !hit
	}
	return hit
}

// Candidate pairs an entity with the attributes attached to it.
type Candidate[E any] struct {
	Entity     E
	Attributes []Attribute
}

// Keeps reports whether every rule retains the candidate. Evaluation stops at the first rule
// that drops it. An empty rule list keeps everything.
func Keeps(attributes []Attribute, rules []Rule) bool {
	return lo.EveryBy(rules, func(r Rule) bool {
		return r.Keeps(attributes)
	})
}

// Filter returns the candidates retained by all rules, in their original order.
// The input slice is not modified.
func Filter[E any](candidates []Candidate[E], rules []Rule) []Candidate[E] {
	return lo.Filter(candidates, func(c Candidate[E], _ int) bool {
		return Keeps(c.Attributes, rules)
	})
}

// Entities projects candidates back to their entities.
func Entities[E any](candidates []Candidate[E]) []E {
	return lo.Map(candidates, func(c Candidate[E], _ int) E {
		return c.Entity
	})
}
