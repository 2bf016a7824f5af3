// Package filter builds composable relay predicates from user criteria.
package filter

import (
	"relayping/internal/model"
)

// Predicate reports whether a relay is accepted.
type Predicate interface {
	Match(r model.Relay) bool
}

// Equals matches when attr is present and equal to Value.
type Equals struct {
	Attr  model.Attribute
	Value any
}

func (p Equals) Match(r model.Relay) bool {
	v, ok := r.Get(p.Attr)
	return ok && equal(v, p.Value)
}

// NotEquals matches when attr is present and differs from Value.
// A missing attribute never matches.
type NotEquals struct {
	Attr  model.Attribute
	Value any
}

func (p NotEquals) Match(r model.Relay) bool {
	v, ok := r.Get(p.Attr)
	return ok && !equal(v, p.Value)
}

// AtLeast matches numeric attributes greater than or equal to Min.
type AtLeast struct {
	Attr model.Attribute
	Min  float64
}

func (p AtLeast) Match(r model.Relay) bool {
	v, ok := r.Get(p.Attr)
	if !ok {
		return false
	}
	f, ok := model.ToFloat(v)
	return ok && f >= p.Min
}

// Present matches when attr exists and is not null.
type Present struct {
	Attr model.Attribute
}

func (p Present) Match(r model.Relay) bool {
	v, ok := r.Get(p.Attr)
	return ok && v != nil
}

// Not inverts a predicate.
type Not struct {
	P Predicate
}

func (p Not) Match(r model.Relay) bool { return !p.P.Match(r) }

// And matches when every predicate matches. An empty And matches everything.
type And []Predicate

func (ps And) Match(r model.Relay) bool {
	for _, p := range ps {
		if !p.Match(r) {
			return false
		}
	}
	return true
}

// Or matches when at least one predicate matches. An empty Or matches nothing.
type Or []Predicate

func (ps Or) Match(r model.Relay) bool {
	for _, p := range ps {
		if p.Match(r) {
			return true
		}
	}
	return false
}

// AnyOf ORs one predicate per value.
func AnyOf[T any](values []T, build func(T) Predicate) Predicate {
	out := make(Or, 0, len(values))
	for _, v := range values {
		out = append(out, build(v))
	}
	return out
}

// AllOf ANDs one predicate per value.
func AllOf[T any](values []T, build func(T) Predicate) Predicate {
	out := make(And, 0, len(values))
	for _, v := range values {
		out = append(out, build(v))
	}
	return out
}

func equal(a, b any) bool {
	if fa, ok := model.ToFloat(a); ok {
		fb, ok := model.ToFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		// Objects and arrays never compare equal to a scalar criterion.
		return false
	}
}
