// Package request holds validated backend requests.
package request

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultSize    = 25
	MaxSize        = 1000
	// DefaultBuckets is the default number of aggregation buckets.
	DefaultBuckets = 10
	MaxBuckets     = 1000
)

// Request is a validated document search.
type Request struct {
	index   string
	query   string
	filters filter.Composite
	from    int
	size    int
	order   ordering.Order
	fields  []string
}

// New validates and normalizes search parameters.
// Defaults: size=25. A negative from is clamped to 0.
func New(
	index, query string,
	filters filter.Composite,
	from, size int,
	order ordering.Order,
	fields []string,
) (Request, error) {
	if index == "" {
		return Request{}, fmt.Errorf("%w: index is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Request{
		index:   index,
		query:   query,
		filters: filters,
		from:    from,
		size:    size,
		order:   order,
		fields:  slices.Clone(fields),
	}, nil
}

// Index returns the target index.
func (r *Request) Index() string { return r.index }

// Query returns the query-language text.
func (r *Request) Query() string { return r.query }

// Filters returns the clauses of the active filters.
func (r *Request) Filters() filter.Composite { return r.filters }

// From returns the offset of the first hit.
func (r *Request) From() int { return r.from }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// Order returns the sort order.
func (r *Request) Order() ordering.Order { return r.order }

// Fields returns the fields searched by default terms.
func (r *Request) Fields() []string { return r.fields }

// AggregationOptions page through the buckets of one filter.
type AggregationOptions struct {
	Size   int
	Offset int
}

// Aggregation is a validated bucket count for one filter.
type Aggregation struct {
	index   string
	filter  facet.Filter
	query   string
	others  filter.Composite
	global  bool
	options AggregationOptions
	fields  []string
	starred []string
}

// NewAggregation validates an aggregation. others holds the clauses of
// every other active filter; starred is the starred document set.
func NewAggregation(
	index string,
	f facet.Filter,
	query string,
	others filter.Composite,
	global bool,
	opts AggregationOptions,
	fields, starred []string,
) (Aggregation, error) {
	if index == "" {
		return Aggregation{}, fmt.Errorf("%w: index is required", domain.ErrInvalidRequest)
	}
	if f.Name() == "" {
		return Aggregation{}, fmt.Errorf("%w: filter is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Aggregation{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if opts.Size <= 0 {
		opts.Size = DefaultBuckets
	}
	if opts.Size > MaxBuckets {
		opts.Size = MaxBuckets
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	return Aggregation{
		index:   index,
		filter:  f,
		query:   query,
		others:  others,
		global:  global,
		options: opts,
		fields:  slices.Clone(fields),
		starred: slices.Clone(starred),
	}, nil
}

// Index returns the target index.
func (a *Aggregation) Index() string { return a.index }

// Filter returns the filter whose buckets are counted.
func (a *Aggregation) Filter() facet.Filter { return a.filter }

// Query returns the query-language text.
func (a *Aggregation) Query() string { return a.query }

// Others returns the clauses of the other active filters.
func (a *Aggregation) Others() filter.Composite { return a.others }

// Global reports whether counts ignore the free-text query.
func (a *Aggregation) Global() bool { return a.global }

// Options returns bucket paging.
func (a *Aggregation) Options() AggregationOptions { return a.options }

// Fields returns the fields searched by default terms.
func (a *Aggregation) Fields() []string { return a.fields }

// Starred returns the starred document ids.
func (a *Aggregation) Starred() []string { return a.starred }
