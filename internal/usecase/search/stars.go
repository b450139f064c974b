package search

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// ToggleStarDocument stars an unstarred document and unstars a starred one.
// It returns whether the document is starred afterwards.
func (s *Store) ToggleStarDocument(ctx context.Context, id string) (bool, error) {
	if s.State().IsStarred(id) {
		return false, s.UnstarDocuments(ctx, id)
	}
	return true, s.StarDocuments(ctx, id)
}

// StarDocuments adds documents to the starred set of the current index.
func (s *Store) StarDocuments(ctx context.Context, ids ...string) error {
	if err := s.tag(ctx, ids, func(t StarTagger) tagFunc { return t.StarDocuments }); err != nil {
		return err
	}
	s.Commit(PushStarred{IDs: ids})
	return nil
}

// UnstarDocuments removes documents from the starred set of the current index.
func (s *Store) UnstarDocuments(ctx context.Context, ids ...string) error {
	if err := s.tag(ctx, ids, func(t StarTagger) tagFunc { return t.UnstarDocuments }); err != nil {
		return err
	}
	s.Commit(RemoveStarred{IDs: ids})
	return nil
}

type tagFunc func(ctx context.Context, index string, ids []string) error

// tag resolves the tagger method only once a tagger is known to be configured.
func (s *Store) tag(ctx context.Context, ids []string, method func(StarTagger) tagFunc) error {
	if s.stars == nil {
		return ErrNoStarTagger
	}
	fn := method(s.stars)
	if len(ids) == 0 {
		return fmt.Errorf("%w: no document ids", domain.ErrInvalidRequest)
	}
	index := s.State().Index
	start := time.Now()
	err := fn(ctx, index, ids)
	metrics.SearchDuration.WithLabelValues(metrics.KindStar).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(metrics.KindStar, metrics.Status(err)).Inc()
	if err != nil {
		return fmt.Errorf("%w: star documents in %s: %w", domain.ErrBackend, index, err)
	}
	return nil
}

// LoadStarredDocuments replaces the starred set with the backend's.
func (s *Store) LoadStarredDocuments(ctx context.Context) ([]string, error) {
	if s.stars == nil {
		return nil, ErrNoStarTagger
	}
	index := s.State().Index
	ids, err := s.stars.StarredDocuments(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("%w: load starred documents of %s: %w", domain.ErrBackend, index, err)
	}
	st := s.Commit(SetStarred{IDs: ids})
	return st.Starred, nil
}
