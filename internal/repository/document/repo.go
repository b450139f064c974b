package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HReplaceMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Count(ctx context.Context, q *db.TextQuery) (int, error)
}

// Repo stores documents as hashes covered by one FT index per document index.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix}
}

// EnsureIndex creates the FT index of a document index. Returns true if created.
func (r *Repo) EnsureIndex(ctx context.Context, index string) (bool, error) {
	def, err := IndexDefinition(r.prefix, index)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", index, err)
	}
	return true, nil
}

// DropIndex removes the FT index of a document index. Documents are kept.
func (r *Repo) DropIndex(ctx context.Context, index string) error {
	if err := r.store.DropIndex(ctx, domain.IndexName(r.prefix, index)); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("drop index %s: %w", index, err)
	}
	return nil
}

// IndexExists reports whether the FT index of a document index exists.
func (r *Repo) IndexExists(ctx context.Context, index string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, domain.IndexName(r.prefix, index))
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", index, err)
	}
	return ok, nil
}

// Put writes documents and their named entities in one round trip,
// replacing any previous version.
func (r *Repo) Put(ctx context.Context, docs ...Document) error {
	var items []db.HashSetItem
	for _, d := range docs {
		if d.Document == nil || d.ID() == "" {
			return fmt.Errorf("%w: document id is required", domain.ErrInvalidRequest)
		}
		items = append(items, db.HashSetItem{
			Key:    domain.DocumentKey(r.prefix, d.Index(), d.ID()),
			Fields: buildHashFields(d),
		})
		for _, ne := range d.Entities {
			if ne.DocumentID == "" {
				ne.DocumentID = d.ID()
			}
			items = append(items, db.HashSetItem{
				Key:    domain.DocumentKey(r.prefix, d.Index(), ne.ID()),
				Fields: buildEntityFields(ne),
			})
		}
	}
	if len(items) == 0 {
		return nil
	}
	if err := r.store.HReplaceMulti(ctx, items); err != nil {
		return fmt.Errorf("put %d documents: %w", len(docs), err)
	}
	return nil
}

// Get returns a document or named entity by id.
func (r *Repo) Get(ctx context.Context, index, id string) (result.Hit, error) {
	key := domain.DocumentKey(r.prefix, index, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	set := result.FromRaw(result.Raw{Total: 1, Hits: []result.RawHit{{ID: id, Index: index, Source: m}}})
	return set.Hits()[0], nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, index, id string) error {
	key := domain.DocumentKey(r.prefix, index, id)
	n, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Count returns the number of documents in an index.
func (r *Repo) Count(ctx context.Context, index string) (int, error) {
	n, err := r.store.Count(ctx, &db.TextQuery{
		IndexName: domain.IndexName(r.prefix, index),
		Query:     fmt.Sprintf("@%s:{%s}", result.FieldType, result.TypeDocument),
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	return n, nil
}
