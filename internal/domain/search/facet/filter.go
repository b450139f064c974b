package facet

import (
	"errors"
	"path"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/textutil"
)

// Value encodings shared by yes/no and starred filters.
const (
	True  = "true"
	False = "false"
)

// DefaultDateLayout formats date bucket labels.
const DefaultDateLayout = "2006-01-02"

// NoStarredDocuments is matched when the starred set is empty, so that
// "starred only" returns no hit.
const NoStarredDocuments = "_none_"

// Definition describes a filter independently of its selected values.
type Definition struct {
	Name       string
	Field      string
	Icon       string
	MultiValue bool
	Kind       Kind
	// Category scopes named-entity filters: PERSON, ORGANIZATION or LOCATION.
	Category   string
	DateLayout string
	// Labels maps bucket keys to display labels.
	Labels map[string]string
	// Labeler overrides the label strategy of the kind.
	Labeler func(result.Bucket) string
	// Hinter overrides the query-hint strategy of the kind.
	Hinter func(input string, candidates []string) []string
}

func (d Definition) normalize() (Definition, error) {
	if d.Name == "" {
		return d, errors.New("filter name is required")
	}
	if !d.Kind.IsValid() {
		return d, errors.New("invalid filter kind for " + d.Name)
	}
	if d.Kind == KindNamedEntity {
		if d.Category == "" {
			return d, errors.New("category is required for named entity filter " + d.Name)
		}
		d.Category = strings.ToUpper(d.Category)
		if d.Field == "" {
			d.Field = "ne_" + strings.ToLower(d.Category)
		}
	}
	if d.Field == "" {
		return d, errors.New("field is required for filter " + d.Name)
	}
	if d.DateLayout == "" {
		d.DateLayout = DefaultDateLayout
	}
	return d, nil
}

// ClauseContext carries state a filter clause may depend on.
type ClauseContext struct {
	Starred []string
}

// Filter is an immutable filter: a definition plus its selected values.
type Filter struct {
	def      Definition
	values   []string
	reversed bool
}

// New validates a definition and creates a filter without values.
func New(def Definition) (Filter, error) {
	def, err := def.normalize()
	if err != nil {
		return Filter{}, err
	}
	return Filter{def: def}, nil
}

// Name returns the unique filter name.
func (f Filter) Name() string { return f.def.Name }

// Field returns the indexed field the filter applies to.
func (f Filter) Field() string { return f.def.Field }

// Icon returns the icon name.
func (f Filter) Icon() string { return f.def.Icon }

// MultiValue reports whether a document holds several values of the field.
func (f Filter) MultiValue() bool { return f.def.MultiValue }

// Kind returns the filter kind.
func (f Filter) Kind() Kind { return f.def.Kind }

// Category returns the named-entity category.
func (f Filter) Category() string { return f.def.Category }

// Definition returns the filter definition.
func (f Filter) Definition() Definition { return f.def }

// Values returns a copy of the selected values.
func (f Filter) Values() []string { return slices.Clone(f.values) }

// Reversed reports whether values are excluded rather than required.
func (f Filter) Reversed() bool { return f.reversed }

// HasValues reports whether the filter is active.
func (f Filter) HasValues() bool { return len(f.values) > 0 }

// Contains reports whether value is selected.
func (f Filter) Contains(value string) bool { return slices.Contains(f.values, value) }

func (f Filter) withValues(values []string) Filter {
	f.values = values
	return f
}

func (f Filter) withReversed(reversed bool) Filter {
	f.reversed = reversed
	return f
}

// Coerce normalizes raw values the way the kind stores them. Empty,
// unparsable and duplicate values are dropped.
func (f Filter) Coerce(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch f.def.Kind {
		case KindYesNo, KindStarred:
			v = coerceBool(v)
		case KindDate:
			ms, ok := parseDate(v)
			if !ok {
				continue
			}
			v = strconv.FormatInt(monthStart(ms), 10)
		case KindDateRange:
			ms, ok := parseDate(v)
			if !ok {
				continue
			}
			v = strconv.FormatInt(ms, 10)
		case KindPath:
			v = path.Clean(v)
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if f.def.Kind == KindDateRange && len(out) > 1 {
		sort.Slice(out, func(i, j int) bool { return millis(out[i]) < millis(out[j]) })
		out = []string{out[0], out[len(out)-1]}
	}
	return out
}

// Expression builds the backend clause of the filter. Inactive filters
// yield an empty expression; reversed filters exclude instead of require.
func (f Filter) Expression(ctx ClauseContext) filter.Expression {
	if !f.HasValues() {
		return filter.Expression{}
	}
	e := f.clause(ctx)
	if f.reversed && f.def.Kind != KindStarred {
		return e.Negate()
	}
	return e
}

func (f Filter) clause(ctx ClauseContext) filter.Expression {
	field := f.def.Field
	var must, should, mustNot []filter.Condition

	switch f.def.Kind {
	case KindText, KindNamedEntity, KindYesNo:
		must = appendCond(must)(filter.NewMatchAny(field, f.values...))

	case KindDate:
		for _, v := range f.values {
			from := monthStart(millis(v))
			to := time.UnixMilli(from).UTC().AddDate(0, 1, 0).UnixMilli()
			should = appendCond(should)(rangeCond(field, float64(from), float64(to), false))
		}

	case KindDateRange:
		from := float64(millis(f.values[0]))
		to := from
		if len(f.values) > 1 {
			to = float64(millis(f.values[1]))
		}
		must = appendCond(must)(rangeCond(field, from, to, true))

	case KindPath:
		for _, v := range f.values {
			should = appendCond(should)(filter.NewMatch(field, v))
			should = appendCond(should)(filter.NewPrefix(field, strings.TrimSuffix(v, "/")+"/"))
		}

	case KindStarred:
		// Reversed starred filters swap the selection so an empty starred set
		// still resolves to the right side.
		starred, unstarred := f.Contains(True), f.Contains(False)
		if f.reversed {
			starred, unstarred = unstarred, starred
		}
		switch {
		case starred && unstarred && f.reversed:
			must = appendCond(must)(filter.NewMatch(field, NoStarredDocuments))
		case starred && unstarred:
		case starred && len(ctx.Starred) == 0:
			must = appendCond(must)(filter.NewMatch(field, NoStarredDocuments))
		case starred:
			must = appendCond(must)(filter.NewMatchAny(field, ctx.Starred...))
		case unstarred && len(ctx.Starred) > 0:
			mustNot = appendCond(mustNot)(filter.NewMatchAny(field, ctx.Starred...))
		}
	}

	if len(should) == 1 {
		must, should = append(must, should...), nil
	}
	e, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}
	}
	return e
}

func appendCond(conds []filter.Condition) func(filter.Condition, error) []filter.Condition {
	return func(c filter.Condition, err error) []filter.Condition {
		if err != nil {
			return conds
		}
		return append(conds, c)
	}
}

// MaxValues is the number of values the filter can hold before its clause
// would exceed filter.MaxConditionsPerGroup. Zero means unbounded.
func (f Filter) MaxValues() int {
	switch f.def.Kind {
	case KindPath:
		return filter.MaxConditionsPerGroup / 2
	case KindDate:
		return filter.MaxConditionsPerGroup
	default:
		return 0
	}
}

// clamp coerces raw values and keeps at most MaxValues of them.
func (f Filter) clamp(raw []string) []string {
	values := f.Coerce(raw)
	if limit := f.MaxValues(); limit > 0 && len(values) > limit {
		return values[:limit]
	}
	return values
}

func rangeCond(field string, from, to float64, inclusive bool) (filter.Condition, error) {
	var r filter.Range
	var err error
	if inclusive {
		r, err = filter.NewRangeFilter(nil, &from, nil, &to)
	} else {
		r, err = filter.NewRangeFilter(nil, &from, &to, nil)
	}
	if err != nil {
		return filter.Condition{}, err
	}
	return filter.NewRange(field, r)
}

// Label maps an aggregation bucket to its display label.
func (f Filter) Label(b result.Bucket) string {
	if f.def.Labeler != nil {
		return f.def.Labeler(b)
	}
	if label, ok := f.def.Labels[b.Key]; ok {
		return label
	}
	switch f.def.Kind {
	case KindYesNo:
		if coerceBool(b.Key) == True {
			return "Yes"
		}
		return "No"
	case KindStarred:
		if coerceBool(b.Key) == True {
			return "Starred"
		}
		return "Not starred"
	case KindDate, KindDateRange:
		ms, err := strconv.ParseInt(b.Key, 10, 64)
		if err != nil {
			return b.Key
		}
		return time.UnixMilli(ms).UTC().Format(f.def.DateLayout)
	case KindPath:
		return path.Base(b.Key)
	case KindNamedEntity:
		return textutil.Capitalize(b.Key)
	}
	return b.Key
}

// Hint returns the candidate bucket keys matching a partial user input.
// Without candidates, keys of the label table are searched.
func (f Filter) Hint(input string, candidates []string) []string {
	if f.def.Hinter != nil {
		return f.def.Hinter(input, candidates)
	}
	if candidates == nil {
		candidates = make([]string, 0, len(f.def.Labels))
		for k := range f.def.Labels {
			candidates = append(candidates, k)
		}
		sort.Strings(candidates)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return slices.Clone(candidates)
	}

	if f.def.Kind == KindPath {
		return globPaths(input, candidates)
	}

	var out []string
	for _, c := range candidates {
		if textutil.ContainsFold(c, input) || textutil.ContainsFold(f.Label(result.Bucket{Key: c}), input) {
			out = append(out, c)
		}
	}
	return out
}

// globPaths matches input as a glob when it has meta characters, as a
// substring of any path segment otherwise.
func globPaths(input string, candidates []string) []string {
	pattern := input
	if !strings.ContainsAny(input, "*?[{") {
		pattern = "**/*" + input + "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil
	}
	var out []string
	for _, c := range candidates {
		if ok, _ := doublestar.Match(pattern, c); ok {
			out = append(out, c)
		}
	}
	return out
}

func coerceBool(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return True
	}
	return False
}

var dateLayouts = []string{"2006-01-02", "2006-01", time.RFC3339}

// parseDate reads epoch milliseconds or one of dateLayouts.
func parseDate(v string) (int64, bool) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return ms, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func millis(v string) int64 {
	ms, _ := strconv.ParseInt(v, 10, 64)
	return ms
}

func monthStart(ms int64) int64 {
	t := time.UnixMilli(ms).UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}
