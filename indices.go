package docsearch

import (
	"context"

	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
)

// IndexService manages document indices.
type IndexService struct {
	repo *documentrepo.Repo
}

// Ensure creates an index if it does not exist. Returns true if created.
func (s *IndexService) Ensure(ctx context.Context, index string) (bool, error) {
	return s.repo.EnsureIndex(ctx, index)
}

// Drop removes an index. Its documents are kept.
func (s *IndexService) Drop(ctx context.Context, index string) error {
	return s.repo.DropIndex(ctx, index)
}

// Exists reports whether an index exists.
func (s *IndexService) Exists(ctx context.Context, index string) (bool, error) {
	return s.repo.IndexExists(ctx, index)
}

// Count returns the number of documents in an index.
func (s *IndexService) Count(ctx context.Context, index string) (int, error) {
	return s.repo.Count(ctx, index)
}
