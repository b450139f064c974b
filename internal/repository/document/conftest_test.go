package document

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	replaceFn     func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	delFn         func(ctx context.Context, keys ...string) (int, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	countFn       func(ctx context.Context, q *db.TextQuery) (int, error)
}

func (m *mockStore) HReplaceMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) (int, error) {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return 0, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Count(ctx context.Context, q *db.TextQuery) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, q)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "test:"), ms
}

func testDocument(t *testing.T) Document {
	t.Helper()
	doc := result.NewDocument("doc-1", "notes", 0)
	doc.Content = "Quarterly report"
	doc.Path = "/data/reports/q1.pdf"
	doc.ContentType = "application/pdf"
	doc.ContentLength = 2048
	doc.Language = "ENGLISH"
	doc.Tags = []string{"finance", "q1"}
	doc.Metadata = map[string]string{"author": "Ada"}
	doc.CreationDate = time.UnixMilli(1700000000000).UTC()
	doc.ExtractionLevel = 1

	person := result.NewNamedEntity("ne-1", "notes", 0)
	person.Mention = "Ada Lovelace"
	person.Category = "PERSON"
	person.Offsets = []int{3, 40}
	return Document{Document: doc, Entities: []*result.NamedEntity{person}}
}
