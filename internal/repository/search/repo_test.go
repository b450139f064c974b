package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
)

// --- Search ---

func TestSearch_BuildsTextQuery(t *testing.T) {
	repo, ms := newTestRepo(t)
	reg, err := facet.DefaultRegistry().SetValue(facet.Language, "ENGLISH")
	if err != nil {
		t.Fatal(err)
	}
	req, err := request.New("notes", "paris", reg.Composite(facet.ClauseContext{}), 10, 5,
		ordering.DefaultCatalog().Resolve("dateNewest"), []string{"content"})
	if err != nil {
		t.Fatal(err)
	}

	var got *db.TextQuery
	ms.searchFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{Total: 12, Entries: []db.SearchEntry{
			{Key: "test:notes:doc:d1", Score: 1.5, Fields: map[string]string{"type": "Document", "path": "/a.txt"}},
		}}, nil
	}

	raw, err := repo.Search(context.Background(), &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.IndexName != "test:notes:idx" || got.Query != "@content:paris" {
		t.Errorf("query = %s on %s", got.Query, got.IndexName)
	}
	if got.Offset != 10 || got.Limit != 5 || !got.WithScores {
		t.Errorf("paging = %+v", got)
	}
	if got.SortBy != "extraction_date" || got.SortAsc {
		t.Errorf("sort = %s asc=%v", got.SortBy, got.SortAsc)
	}
	parts := got.Filters.Parts()
	if len(parts) != 2 || parts[1].Must()[0].Match() != "Document" {
		t.Errorf("filters = %+v", parts)
	}

	if raw.Total != 12 || len(raw.Hits) != 1 {
		t.Fatalf("raw = %+v", raw)
	}
	if h := raw.Hits[0]; h.ID != "d1" || h.Index != "notes" || h.Score != 1.5 || h.Source["path"] != "/a.txt" {
		t.Errorf("hit = %+v", h)
	}
}

func TestSearch_RelevanceAndLiteralFallback(t *testing.T) {
	repo, ms := newTestRepo(t)
	req, err := request.New("notes", "(broken", filter.Composite{}, 0, 0, ordering.Order{Name: ordering.Relevance}, nil)
	if err != nil {
		t.Fatal(err)
	}
	ms.searchFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.SortBy != "" {
			t.Errorf("relevance must not sort, got %q", q.SortBy)
		}
		if q.Query != `@content:(\(broken)` {
			t.Errorf("query = %q", q.Query)
		}
		return nil, nil
	}
	raw, err := repo.Search(context.Background(), &req)
	if err != nil || raw.Total != 0 {
		t.Fatalf("raw=%+v err=%v", raw, err)
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	req, _ := request.New("notes", "", filter.Composite{}, 0, 10, ordering.Order{}, nil)
	ms.searchFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}
	}
	_, err := repo.Search(context.Background(), &req)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

// --- Aggregations ---

func TestSearchFilterAggregation(t *testing.T) {
	reg := facet.DefaultRegistry()
	others, err := reg.SetValue(facet.Language, "FRENCH")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		filter    string
		global    bool
		wantQuery string
		wantGroup string
		wantApply string
	}{
		{"plain", facet.ContentType, false, "@content:paris", "content_type", ""},
		{"global", facet.ContentType, true, "*", "content_type", ""},
		{"multi value", facet.Tags, false, "@content:paris", "tags", "split(@tags, ',')"},
		{"date", facet.IndexingDate, false, "@content:paris", "extraction_date", "month(floor(@extraction_date / 1000)) * 1000"},
		{"path", facet.Path, false, "@content:paris", "dirname", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			f := findFilter(t, reg, tt.filter)
			agg, err := request.NewAggregation("notes", f, "paris",
				others.CompositeExcept(facet.ClauseContext{}, tt.filter), tt.global,
				request.AggregationOptions{Size: 3, Offset: 6}, []string{"content"}, nil)
			if err != nil {
				t.Fatal(err)
			}

			var got *db.AggregateQuery
			ms.aggregateFn = func(_ context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
				got = q
				return &db.AggregateResult{Total: 2, Buckets: []db.AggregateBucket{{Key: "k", Count: 4}}}, nil
			}
			raw, err := repo.SearchFilterAggregation(context.Background(), &agg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.Query != tt.wantQuery || got.GroupBy != tt.wantGroup || got.Apply != tt.wantApply {
				t.Errorf("aggregate = %+v", got)
			}
			if got.Offset != 6 || got.Limit != 3 {
				t.Errorf("paging = %d/%d", got.Offset, got.Limit)
			}
			if len(got.Filters.Parts()) != 2 {
				t.Errorf("filters = %+v", got.Filters.Parts())
			}
			if b := raw.Aggregations[tt.filter]; len(b) != 1 || b[0].Count != 4 {
				t.Errorf("buckets = %+v", raw.Aggregations)
			}
		})
	}
}

func TestSearchFilterAggregation_Starred(t *testing.T) {
	repo, ms := newTestRepo(t)
	f := findFilter(t, facet.DefaultRegistry(), facet.Starred)
	agg, err := request.NewAggregation("notes", f, "", filter.Composite{}, false,
		request.AggregationOptions{}, nil, []string{"d1", "d2"})
	if err != nil {
		t.Fatal(err)
	}

	ms.countFn = func(_ context.Context, q *db.TextQuery) (int, error) {
		parts := q.Filters.Parts()
		if len(parts) == 2 {
			if !slices.Equal(parts[1].Must()[0].Values(), []string{"d1", "d2"}) {
				t.Errorf("starred clause = %+v", parts[1])
			}
			return 2, nil
		}
		return 10, nil
	}

	raw, err := repo.SearchFilterAggregation(context.Background(), &agg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := raw.Aggregations[facet.Starred]
	if len(b) != 2 || b[0].Key != facet.True || b[0].Count != 2 || b[1].Count != 8 {
		t.Errorf("buckets = %+v", b)
	}
}

// --- Stars ---

func TestStars(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	if err := repo.StarDocuments(ctx, "notes", []string{"d1", "d2"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UnstarDocuments(ctx, "notes", []string{"d1"}); err != nil {
		t.Fatal(err)
	}
	ids, err := repo.StarredDocuments(ctx, "notes")
	if err != nil || !slices.Equal(ids, []string{"d2"}) {
		t.Fatalf("ids=%v err=%v", ids, err)
	}
	if _, ok := ms.sets["test:starred:notes"]; !ok {
		t.Errorf("sets = %v", ms.sets)
	}

	ms.setErr = errors.New("READONLY")
	if err := repo.StarDocuments(ctx, "notes", []string{"d3"}); err == nil {
		t.Error("expected error")
	}
}

func TestDownloadList(t *testing.T) {
	ctx := context.Background()
	list := DownloadList{"notes"}
	if ok, _ := list.IsDownloadAllowed(ctx, "notes"); !ok {
		t.Error("notes should be allowed")
	}
	if ok, _ := list.IsDownloadAllowed(ctx, "other"); ok {
		t.Error("other should be denied")
	}
	if ok, _ := (DownloadList{"*"}).IsDownloadAllowed(ctx, "other"); !ok {
		t.Error("wildcard should allow every index")
	}
}

func TestSearch_ModuleUnavailable(t *testing.T) {
	repo, ms := newTestRepo(t)
	req, err := request.New("notes", "paris", filter.Composite{}, 0, 10,
		ordering.DefaultCatalog().Resolve(""), []string{"content"})
	if err != nil {
		t.Fatal(err)
	}
	ms.searchFn = func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: unknown command", db.ErrSearchUnavailable)}
	}

	_, err = repo.Search(context.Background(), &req)
	if !errors.Is(err, domain.ErrKeywordSearchNotSupported) {
		t.Errorf("expected ErrKeywordSearchNotSupported, got %v", err)
	}
}
