package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn    func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	aggregateFn func(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error)
	countFn     func(ctx context.Context, q *db.TextQuery) (int, error)
	sets        map[string][]string
	setErr      error
}

func (m *mockStore) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Aggregate(ctx context.Context, q *db.AggregateQuery) (*db.AggregateResult, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, q)
	}
	return &db.AggregateResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, q *db.TextQuery) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, q)
	}
	return 0, nil
}

func (m *mockStore) SAdd(_ context.Context, key string, members ...string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.sets == nil {
		m.sets = map[string][]string{}
	}
	m.sets[key] = append(m.sets[key], members...)
	return nil
}

func (m *mockStore) SRem(_ context.Context, key string, members ...string) error {
	if m.setErr != nil {
		return m.setErr
	}
	var kept []string
	for _, v := range m.sets[key] {
		remove := false
		for _, r := range members {
			remove = remove || r == v
		}
		if !remove {
			kept = append(kept, v)
		}
	}
	m.sets[key] = kept
	return nil
}

func (m *mockStore) SMembers(_ context.Context, key string) ([]string, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	return append([]string{}, m.sets[key]...), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "test:", testTypes), ms
}

func findFilter(t *testing.T, reg facet.Registry, name string) facet.Filter {
	t.Helper()
	f, ok := reg.Find(name)
	if !ok {
		t.Fatalf("filter %s not registered", name)
	}
	return f
}
