package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

// Constraint restricts one filter dimension. The zero value is Any.
type Constraint[T comparable] struct {
	restricted bool
	set        map[T]struct{}
}

// Any accepts every value, including records where the value is missing.
func Any[T comparable]() Constraint[T] { return Constraint[T]{} }

// Only accepts exactly the listed values. Only() with no values accepts
// nothing.
func Only[T comparable](values ...T) Constraint[T] {
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return Constraint[T]{restricted: true, set: set}
}

// IsAny reports whether the constraint is unrestricted.
func (c Constraint[T]) IsAny() bool { return !c.restricted }

// Values returns the accepted values in no particular order; nil for Any.
func (c Constraint[T]) Values() []T {
	if !c.restricted {
		return nil
	}
	out := make([]T, 0, len(c.set))
	for v := range c.set {
		out = append(out, v)
	}
	return out
}

// Allows reports whether v passes. present is false when the record has no
// value on this dimension; such records only pass an Any constraint.
func (c Constraint[T]) Allows(v T, present bool) bool {
	if !c.restricted {
		return true
	}
	if !present {
		return false
	}
	_, ok := c.set[v]
	return ok
}

// Selection is the filter applied to a table, one constraint per dimension.
type Selection struct {
	Months   Constraint[time.Month]
	Cities   Constraint[string]
	Products Constraint[string]
}

// All returns the selection that keeps every row.
func All() Selection { return Selection{} }

// Match reports whether r passes every dimension of s.
func (s Selection) Match(r sales.Enriched) bool {
	return s.Months.Allows(r.Month, r.HasMonth()) &&
		s.Cities.Allows(r.City, r.City != "") &&
		s.Products.Allows(r.Product, true)
}

// Filter returns the rows of t that match s, in table order.
func Filter(t *sales.Table, s Selection) []sales.Enriched {
	if t == nil {
		return nil
	}
	out := make([]sales.Enriched, 0, len(t.Rows))
	for _, r := range t.Rows {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ParseMonths converts user supplied month names or numbers into a
// constraint. Blank entries are ignored, so a list of only blanks yields
// Only() and excludes every row.
func ParseMonths(values []string) (Constraint[time.Month], error) {
	months := make([]time.Month, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		m, ok := sales.ParseMonth(v)
		if !ok {
			return Constraint[time.Month]{}, fmt.Errorf("unknown month %q", v)
		}
		months = append(months, m)
	}
	return Only(months...), nil
}

// OnlyStrings trims values and drops blanks before building a constraint.
func OnlyStrings(values []string) Constraint[string] {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return Only(out...)
}
