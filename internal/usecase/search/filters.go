package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// updateFilters replaces the registry with fn's result, then searches.
func (s *Store) updateFilters(ctx context.Context, fn func(facet.Registry) (facet.Registry, error)) (result.Set, error) {
	s.mu.Lock()
	reg, err := fn(s.state.Filters)
	if err != nil {
		s.mu.Unlock()
		return result.Set{}, err
	}
	s.apply(SetFilters{Filters: reg})
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// AddFilter registers a new filter.
func (s *Store) AddFilter(ctx context.Context, def facet.Definition) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.Add(def)
	})
}

// RemoveFilter unregisters a filter and its values.
func (s *Store) RemoveFilter(ctx context.Context, name string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.Remove(name), nil
	})
}

// SetFilterValue replaces the values of a filter.
func (s *Store) SetFilterValue(ctx context.Context, name string, values ...string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.SetValue(name, values...)
	})
}

// AddFilterValue adds values to a filter.
func (s *Store) AddFilterValue(ctx context.Context, name string, values ...string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.AddValue(name, values...)
	})
}

// RemoveFilterValue removes one value from a filter.
func (s *Store) RemoveFilterValue(ctx context.Context, name, value string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.RemoveValue(name, value)
	})
}

// ResetFilterValues clears the values of a filter.
func (s *Store) ResetFilterValues(ctx context.Context, name string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.ResetValues(name)
	})
}

// ToggleFilter flips the reversed flag of a filter.
func (s *Store) ToggleFilter(ctx context.Context, name string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.ToggleReversed(name)
	})
}

// ExcludeFilter reverses a filter.
func (s *Store) ExcludeFilter(ctx context.Context, name string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.ExcludeOnly(name)
	})
}

// IncludeFilter un-reverses a filter.
func (s *Store) IncludeFilter(ctx context.Context, name string) (result.Set, error) {
	return s.updateFilters(ctx, func(r facet.Registry) (facet.Registry, error) {
		return r.IncludeOnly(name)
	})
}

// FilterQuery pages and narrows the buckets of one filter.
type FilterQuery struct {
	Size   int
	Offset int
	// Contains keeps the buckets whose key or label matches, see facet.Filter.Hint.
	Contains string
}

// QueryFilter counts the buckets of one filter under the query and every other
// active filter. The session state is not changed.
func (s *Store) QueryFilter(ctx context.Context, name string, fq FilterQuery) (result.Set, error) {
	st := s.State()
	f, ok := st.Filters.Find(name)
	if !ok {
		return result.Set{}, domain.NewUnknownFilter(name)
	}

	opts := request.AggregationOptions{Size: fq.Size, Offset: fq.Offset}
	if fq.Contains != "" {
		opts = request.AggregationOptions{Size: request.MaxBuckets}
	}
	clauses := facet.ClauseContext{Starred: st.Starred}
	agg, err := request.NewAggregation(
		st.Index, f, st.Query, st.Filters.CompositeExcept(clauses, name),
		st.GlobalSearch, opts, s.settings.Fields(st.Field), st.Starred,
	)
	if err != nil {
		return result.Set{}, err
	}

	start := time.Now()
	raw, err := s.backend.SearchFilterAggregation(ctx, &agg)
	metrics.SearchDuration.WithLabelValues(metrics.KindAggregation).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(metrics.KindAggregation, metrics.Status(err)).Inc()
	if err != nil {
		return result.Set{}, fmt.Errorf("%w: aggregate %s: %w", domain.ErrBackend, name, err)
	}

	if fq.Contains != "" {
		raw.Aggregations = map[string][]result.Bucket{
			name: narrow(f, raw.Aggregations[name], fq),
		}
	}
	return result.FromRaw(raw), nil
}

// narrow keeps the hinted buckets and applies the requested page.
func narrow(f facet.Filter, buckets []result.Bucket, fq FilterQuery) []result.Bucket {
	keys := make([]string, len(buckets))
	for i, b := range buckets {
		keys[i] = b.Key
	}
	hinted := map[string]bool{}
	for _, k := range f.Hint(fq.Contains, keys) {
		hinted[k] = true
	}
	kept := make([]result.Bucket, 0, len(buckets))
	for _, b := range buckets {
		if hinted[b.Key] {
			kept = append(kept, b)
		}
	}
	size := fq.Size
	if size <= 0 {
		size = request.DefaultBuckets
	}
	from := min(max(fq.Offset, 0), len(kept))
	to := min(from+size, len(kept))
	return kept[from:to]
}

// LoadFilterBuckets queries the next buckets of a filter and appends them to
// the current response. It returns every bucket loaded so far.
func (s *Store) LoadFilterBuckets(ctx context.Context, name string, size int) ([]result.Bucket, error) {
	offset := len(s.State().Response.Aggregation(name))
	set, err := s.QueryFilter(ctx, name, FilterQuery{Size: size, Offset: offset})
	if err != nil {
		return nil, err
	}
	st := s.Commit(AppendAggregation{Filter: name, Buckets: set.Aggregation(name)})
	return st.Response.Aggregation(name), nil
}
