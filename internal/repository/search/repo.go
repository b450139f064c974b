package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
	Count(ctx context.Context, q *db.TextQuery) (int, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements usecase/search.Backend and StarTagger.
type Repo struct {
	store  store
	prefix string
	tr     translator
}

// New creates a search repository. types maps indexed fields to their FT type.
func New(s store, keyPrefix string, types map[string]db.IndexFieldType) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix, tr: translator{types: types}}
}

// backendError flags servers that cannot run full-text queries.
func backendError(err error) error {
	if errors.Is(err, db.ErrSearchUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrKeywordSearchNotSupported, err)
	}
	return err
}

// documentsOnly restricts a search to document hashes.
func documentsOnly() filter.Expression {
	cond, _ := filter.NewMatch(result.FieldType, string(result.TypeDocument))
	e, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)
	return e
}

// Search runs a document search.
func (r *Repo) Search(ctx context.Context, req *request.Request) (result.Raw, error) {
	// Unparsable text is searched as literal words.
	q, _ := r.tr.translate(req.Query(), req.Fields())

	order := req.Order()
	tq := &db.TextQuery{
		IndexName:  domain.IndexName(r.prefix, req.Index()),
		Query:      q,
		Filters:    req.Filters().With(documentsOnly()),
		Offset:     req.From(),
		Limit:      req.Size(),
		SortBy:     order.Field,
		SortAsc:    !order.Desc,
		WithScores: true,
	}
	sr, err := r.store.Search(ctx, tq)
	if err != nil {
		return result.Raw{}, fmt.Errorf("search %s: %w", req.Index(), backendError(err))
	}
	return r.toRaw(req.Index(), sr), nil
}

func (r *Repo) toRaw(index string, sr *db.SearchResult) result.Raw {
	if sr == nil {
		return result.Raw{}
	}
	keyPrefix := domain.DocumentKeyPrefix(r.prefix, index)
	hits := make([]result.RawHit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, result.RawHit{
			ID:     strings.TrimPrefix(e.Key, keyPrefix),
			Index:  index,
			Score:  e.Score,
			Source: e.Fields,
		})
	}
	return result.Raw{Total: sr.Total, Hits: hits}
}

// SearchFilterAggregation counts the documents of each value of one filter.
// In global mode the free text is ignored and only the other filters apply.
func (r *Repo) SearchFilterAggregation(ctx context.Context, agg *request.Aggregation) (result.Raw, error) {
	q := matchAll
	if !agg.Global() {
		q, _ = r.tr.translate(agg.Query(), agg.Fields())
	}
	f := agg.Filter()
	filters := agg.Others().With(documentsOnly())

	if f.Kind() == facet.KindStarred {
		return r.starredBuckets(ctx, agg, q, filters)
	}

	aq := &db.AggregateQuery{
		IndexName: domain.IndexName(r.prefix, agg.Index()),
		Query:     q,
		Filters:   filters,
		GroupBy:   f.Field(),
		Apply:     applyFor(f),
		Offset:    agg.Options().Offset,
		Limit:     agg.Options().Size,
	}
	ar, err := r.store.Aggregate(ctx, aq)
	if err != nil {
		return result.Raw{}, fmt.Errorf("aggregate %s on %s: %w", f.Name(), agg.Index(), backendError(err))
	}
	buckets := make([]result.Bucket, 0, len(ar.Buckets))
	for _, b := range ar.Buckets {
		buckets = append(buckets, result.Bucket{Key: b.Key, Count: b.Count})
	}
	return result.Raw{
		Total:        ar.Total,
		Aggregations: map[string][]result.Bucket{f.Name(): buckets},
	}, nil
}

// applyFor returns the APPLY expression turning field values into bucket keys.
func applyFor(f facet.Filter) string {
	switch {
	case f.Kind() == facet.KindDate || f.Kind() == facet.KindDateRange:
		return fmt.Sprintf("month(floor(@%s / 1000)) * 1000", f.Field())
	case f.Kind() == facet.KindNamedEntity || f.Field() == result.FieldTags:
		return fmt.Sprintf("split(@%s, '%s')", f.Field(), result.ListSeparator)
	}
	return ""
}

// starredBuckets counts starred and unstarred documents.
func (r *Repo) starredBuckets(
	ctx context.Context, agg *request.Aggregation, q string, filters filter.Composite,
) (result.Raw, error) {
	index := domain.IndexName(r.prefix, agg.Index())
	total, err := r.store.Count(ctx, &db.TextQuery{IndexName: index, Query: q, Filters: filters})
	if err != nil {
		return result.Raw{}, fmt.Errorf("count %s: %w", agg.Index(), backendError(err))
	}

	starred := 0
	if ids := agg.Starred(); len(ids) > 0 {
		cond, err := filter.NewMatchAny(agg.Filter().Field(), ids...)
		if err != nil {
			return result.Raw{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		expr, _ := filter.NewExpression([]filter.Condition{cond}, nil, nil)
		starred, err = r.store.Count(ctx, &db.TextQuery{IndexName: index, Query: q, Filters: filters.With(expr)})
		if err != nil {
			return result.Raw{}, fmt.Errorf("count starred %s: %w", agg.Index(), backendError(err))
		}
	}

	return result.Raw{
		Total: total,
		Aggregations: map[string][]result.Bucket{agg.Filter().Name(): {
			{Key: facet.True, Count: starred},
			{Key: facet.False, Count: total - starred},
		}},
	}, nil
}

// --- Stars ---

// StarDocuments adds documents to the starred set of an index.
func (r *Repo) StarDocuments(ctx context.Context, index string, ids []string) error {
	if err := r.store.SAdd(ctx, domain.StarredKey(r.prefix, index), ids...); err != nil {
		return fmt.Errorf("star %d documents: %w", len(ids), err)
	}
	return nil
}

// UnstarDocuments removes documents from the starred set of an index.
func (r *Repo) UnstarDocuments(ctx context.Context, index string, ids []string) error {
	if err := r.store.SRem(ctx, domain.StarredKey(r.prefix, index), ids...); err != nil {
		return fmt.Errorf("unstar %d documents: %w", len(ids), err)
	}
	return nil
}

// StarredDocuments lists the starred documents of an index.
func (r *Repo) StarredDocuments(ctx context.Context, index string) ([]string, error) {
	ids, err := r.store.SMembers(ctx, domain.StarredKey(r.prefix, index))
	if err != nil {
		return nil, fmt.Errorf("starred documents: %w", err)
	}
	return ids, nil
}

// DownloadList allows downloads from the listed indices. "*" allows every index.
type DownloadList []string

// IsDownloadAllowed implements usecase/search.DownloadPolicy.
func (l DownloadList) IsDownloadAllowed(_ context.Context, index string) (bool, error) {
	for _, allowed := range l {
		if allowed == index || allowed == matchAll {
			return true, nil
		}
	}
	return false, nil
}
