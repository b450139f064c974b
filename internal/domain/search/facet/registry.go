package facet

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
)

// RouteKey returns the URL parameter encoding a filter: f[name], or
// f[-name] when reversed.
func RouteKey(name string, reversed bool) string {
	if reversed {
		return "f[-" + name + "]"
	}
	return "f[" + name + "]"
}

// Registry is an ordered, copy-on-write set of filters with unique names.
// Every mutating method returns a new Registry and leaves the receiver untouched.
type Registry struct {
	filters []Filter
}

// NewRegistry creates a registry from definitions, in order.
func NewRegistry(defs ...Definition) (Registry, error) {
	var r Registry
	for _, def := range defs {
		var err error
		if r, err = r.Add(def); err != nil {
			return Registry{}, err
		}
	}
	return r, nil
}

// All returns every filter in registration order.
func (r Registry) All() []Filter { return slices.Clone(r.filters) }

// Len returns the number of filters.
func (r Registry) Len() int { return len(r.filters) }

// Find looks a filter up by name.
func (r Registry) Find(name string) (Filter, bool) {
	i := r.index(name)
	if i < 0 {
		return Filter{}, false
	}
	return r.filters[i], true
}

func (r Registry) index(name string) int {
	return slices.IndexFunc(r.filters, func(f Filter) bool { return f.Name() == name })
}

// Add registers a new filter.
func (r Registry) Add(def Definition) (Registry, error) {
	if r.index(def.Name) >= 0 {
		return r, domain.NewDuplicateFilter(def.Name)
	}
	f, err := New(def)
	if err != nil {
		return r, err
	}
	return Registry{filters: append(slices.Clone(r.filters), f)}, nil
}

// Remove drops a filter with its values. Unknown names are ignored.
func (r Registry) Remove(name string) Registry {
	i := r.index(name)
	if i < 0 {
		return r
	}
	return Registry{filters: slices.Delete(slices.Clone(r.filters), i, i+1)}
}

func (r Registry) update(name string, fn func(Filter) Filter) (Registry, error) {
	i := r.index(name)
	if i < 0 {
		return r, domain.NewUnknownFilter(name)
	}
	filters := slices.Clone(r.filters)
	filters[i] = fn(filters[i])
	return Registry{filters: filters}, nil
}

// SetValue replaces the selected values.
func (r Registry) SetValue(name string, values ...string) (Registry, error) {
	return r.updateValues(name, func(f Filter) []string {
		return f.Coerce(values)
	})
}

// AddValue adds values to the selection, skipping those already present.
// A date range keeps only the outer bounds of the merged selection.
func (r Registry) AddValue(name string, values ...string) (Registry, error) {
	return r.updateValues(name, func(f Filter) []string {
		merged := slices.Clone(f.values)
		for _, v := range f.Coerce(values) {
			if !slices.Contains(merged, v) {
				merged = append(merged, v)
			}
		}
		if f.def.Kind == KindDateRange {
			return f.Coerce(merged)
		}
		return merged
	})
}

// updateValues applies a new selection, rejecting one that the filter's
// clause could not express.
func (r Registry) updateValues(name string, fn func(Filter) []string) (Registry, error) {
	i := r.index(name)
	if i < 0 {
		return r, domain.NewUnknownFilter(name)
	}
	f := r.filters[i]
	values := fn(f)
	if limit := f.MaxValues(); limit > 0 && len(values) > limit {
		return r, &domain.FilterError{
			Name: name,
			Err:  fmt.Errorf("%w: at most %d values, got %d", domain.ErrInvalidRequest, limit, len(values)),
		}
	}
	filters := slices.Clone(r.filters)
	filters[i] = f.withValues(values)
	return Registry{filters: filters}, nil
}

// RemoveValue deselects one value.
func (r Registry) RemoveValue(name, value string) (Registry, error) {
	return r.update(name, func(f Filter) Filter {
		drop := append(f.Coerce([]string{value}), value)
		return f.withValues(slices.DeleteFunc(slices.Clone(f.values), func(v string) bool {
			return slices.Contains(drop, v)
		}))
	})
}

// ResetValues deselects every value of a filter.
func (r Registry) ResetValues(name string) (Registry, error) {
	return r.update(name, func(f Filter) Filter { return f.withValues(nil) })
}

// ToggleReversed flips exclusion.
func (r Registry) ToggleReversed(name string) (Registry, error) {
	return r.update(name, func(f Filter) Filter { return f.withReversed(!f.reversed) })
}

// ExcludeOnly marks the filter reversed.
func (r Registry) ExcludeOnly(name string) (Registry, error) {
	return r.update(name, func(f Filter) Filter { return f.withReversed(true) })
}

// IncludeOnly clears exclusion.
func (r Registry) IncludeOnly(name string) (Registry, error) {
	return r.update(name, func(f Filter) Filter { return f.withReversed(false) })
}

// Clear deselects every value and clears every exclusion.
func (r Registry) Clear() Registry {
	filters := make([]Filter, len(r.filters))
	for i, f := range r.filters {
		filters[i] = f.withValues(nil).withReversed(false)
	}
	return Registry{filters: filters}
}

// Active returns the filters holding values.
func (r Registry) Active() []Filter {
	var out []Filter
	for _, f := range r.filters {
		if f.HasValues() {
			out = append(out, f)
		}
	}
	return out
}

// Composite ANDs the clauses of every active filter.
func (r Registry) Composite(ctx ClauseContext) filter.Composite {
	return r.CompositeExcept(ctx, "")
}

// CompositeExcept is Composite without the named filter.
func (r Registry) CompositeExcept(ctx ClauseContext, name string) filter.Composite {
	parts := make([]filter.Expression, 0, len(r.filters))
	for _, f := range r.filters {
		if f.Name() != name {
			parts = append(parts, f.Expression(ctx))
		}
	}
	return filter.NewComposite(parts...)
}

// RouteParams encodes every active filter as URL parameters.
func (r Registry) RouteParams() url.Values {
	params := url.Values{}
	for _, f := range r.Active() {
		params[RouteKey(f.Name(), f.reversed)] = f.Values()
	}
	return params
}

// FromRouteParams clears the registry and restores the values and
// exclusions encoded in params. Parameters naming no filter are ignored and
// selections beyond a filter's MaxValues are cut to that limit.
func (r Registry) FromRouteParams(params url.Values) Registry {
	out := r.Clear()
	for _, f := range r.filters {
		name := f.Name()
		if values, ok := params[RouteKey(name, false)]; ok {
			out, _ = out.AddValue(name, f.clamp(values)...)
		}
		if values, ok := params[RouteKey(name, true)]; ok {
			out, _ = out.AddValue(name, f.clamp(values)...)
			out, _ = out.ExcludeOnly(name)
		}
	}
	return out
}
