package filter

import (
	"fmt"
	"slices"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should/must_not boolean semantics.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Negate inverts the expression. Required conditions move to must_not, so the
// result excludes documents matching any of them. An expression holding only
// must_not conditions negates to matching any of those. Mixed expressions keep
// the negation of their required side, which is a subset of the exact inverse.
func (e Expression) Negate() Expression {
	required := slices.Concat(e.must, e.should)
	switch {
	case len(required) > 0:
		return Expression{mustNot: required}
	case len(e.mustNot) == 1:
		return Expression{must: slices.Clone(e.mustNot)}
	default:
		return Expression{should: slices.Clone(e.mustNot)}
	}
}

// Composite ANDs independent expressions, one per active filter.
type Composite struct {
	parts []Expression
}

// NewComposite keeps the non-empty parts in order.
func NewComposite(parts ...Expression) Composite {
	c := Composite{}
	for _, p := range parts {
		if !p.IsEmpty() {
			c.parts = append(c.parts, p)
		}
	}
	return c
}

// Parts returns the expressions of the composite.
func (c Composite) Parts() []Expression { return c.parts }

// IsEmpty reports whether no expression contributes.
func (c Composite) IsEmpty() bool { return len(c.parts) == 0 }

// With returns a composite extended by e.
func (c Composite) With(e Expression) Composite {
	return NewComposite(append(slices.Clone(c.parts), e)...)
}

// Condition is a single filter clause: a tag match over one or more values,
// a tag prefix, or a numeric range.
type Condition struct {
	key       string
	values    []string
	prefix    string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, values: []string{match}}, nil
}

// NewMatchAny creates a tag condition matching any of values.
func NewMatchAny(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	if slices.Contains(values, "") {
		return Condition{}, fmt.Errorf("empty match value for key %q", key)
	}
	return Condition{key: key, values: slices.Clone(values)}, nil
}

// NewPrefix creates a tag prefix condition.
func NewPrefix(key, prefix string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if prefix == "" {
		return Condition{}, fmt.Errorf("prefix is required for key %q", key)
	}
	return Condition{key: key, prefix: prefix}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the first match value.
func (c Condition) Match() string {
	if len(c.values) == 0 {
		return ""
	}
	return c.values[0]
}

// Values returns every accepted match value.
func (c Condition) Values() []string { return c.values }

// Prefix returns the tag prefix.
func (c Condition) Prefix() string { return c.prefix }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return len(c.values) > 0 }

// IsPrefix reports whether this is a prefix condition.
func (c Condition) IsPrefix() bool { return c.prefix != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
