package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// ErrNoStarTagger is returned by star actions when the store has no tagger.
var ErrNoStarTagger = errors.New("star tagger is not configured")

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithStarTagger enables the star actions.
func WithStarTagger(t StarTagger) Option {
	return func(s *Store) { s.stars = t }
}

// WithDownloadPolicy enables LoadDownloadPermission.
func WithDownloadPolicy(p DownloadPolicy) Option {
	return func(s *Store) { s.download = p }
}

// Store owns one search session. Every change goes through commit and Reduce.
// Only the latest started search may write its response.
type Store struct {
	backend  Backend
	stars    StarTagger
	download DownloadPolicy
	settings Settings
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64

	pollMu sync.Mutex
	poll   *poller
}

// NewStore creates a session in its initial state.
func NewStore(backend Backend, settings Settings, opts ...Option) *Store {
	settings = settings.normalize()
	s := &Store{
		backend:  backend,
		settings: settings,
		logger:   zap.NewNop(),
		state:    InitialState(settings),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Settings returns the session settings.
func (s *Store) Settings() Settings { return s.settings }

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Starred = slices.Clone(st.Starred)
	return st
}

// Commit applies mutations in order and returns the resulting state.
func (s *Store) Commit(ms ...Mutation) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(ms...)
	return s.state
}

// apply requires s.mu.
func (s *Store) apply(ms ...Mutation) {
	for _, m := range ms {
		s.state = Reduce(s.state, m)
		s.logger.Debug("search state mutation", zap.String("mutation", m.Name()))
	}
}

// Params is a partial session update. Nil fields keep their current value.
type Params struct {
	Index *string
	Query *string
	From  *int
	Size  *int
	Sort  *string
	Field *string
}

func (p Params) mutations(settings Settings) []Mutation {
	var ms []Mutation
	if p.Index != nil {
		ms = append(ms, SetIndex{Index: *p.Index})
	}
	if p.Query != nil {
		ms = append(ms, SetQuery{Query: *p.Query})
	}
	if p.From != nil {
		ms = append(ms, SetFrom{From: *p.From})
	}
	if p.Size != nil {
		ms = append(ms, SetSize{Size: settings.clampSize(*p.Size)})
	}
	if p.Sort != nil {
		ms = append(ms, SetSort{Sort: *p.Sort})
	}
	if p.Field != nil {
		ms = append(ms, SetField{Field: settings.validField(*p.Field)})
	}
	return ms
}

// Query applies p and searches.
func (s *Store) Query(ctx context.Context, p Params) (result.Set, error) {
	s.Commit(p.mutations(s.settings)...)
	return s.Refresh(ctx)
}

// QueryText replaces the query text and searches.
func (s *Store) QueryText(ctx context.Context, q string) (result.Set, error) {
	return s.Query(ctx, Params{Query: &q})
}

// Refresh searches with the current state. A response arriving after a newer
// search started is returned to the caller but not stored.
func (s *Store) Refresh(ctx context.Context) (result.Set, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.apply(StartSearch{})
	st := s.state
	s.mu.Unlock()

	req, err := s.buildRequest(st)
	if err != nil {
		s.finish(gen, FailSearch{Err: err})
		return result.Set{}, err
	}

	start := time.Now()
	raw, err := s.backend.Search(ctx, &req)
	metrics.SearchDuration.WithLabelValues(metrics.KindSearch).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(metrics.KindSearch, metrics.Status(err)).Inc()
	if err != nil {
		err = fmt.Errorf("%w: search %s: %w", domain.ErrBackend, st.Index, err)
		s.logger.Warn("search failed", zap.String("index", st.Index), zap.Error(err))
		s.finish(gen, FailSearch{Err: err})
		return result.Set{}, err
	}

	set := result.FromRaw(raw)
	s.finish(gen, BuildResponse{Response: set})
	return set, nil
}

// finish commits the outcome of search gen unless a newer search started.
func (s *Store) finish(gen uint64, m Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		metrics.StaleResponsesTotal.Inc()
		s.logger.Debug("stale search response dropped",
			zap.Uint64("generation", gen), zap.Uint64("latest", s.generation))
		return
	}
	s.apply(m)
}

func (s *Store) buildRequest(st State) (request.Request, error) {
	return request.New(
		st.Index,
		st.Query,
		st.Filters.Composite(facet.ClauseContext{Starred: st.Starred}),
		st.From,
		st.Size,
		s.settings.Orders.Resolve(st.Sort),
		s.settings.Fields(st.Field),
	)
}

// NextPage moves one page forward while a next page exists.
func (s *Store) NextPage(ctx context.Context) (result.Set, error) {
	st := s.State()
	from := st.From
	if next := st.From + st.Size; next < st.Response.Total() {
		from = next
	}
	return s.Query(ctx, Params{From: &from})
}

// PreviousPage moves one page back, stopping at 0.
func (s *Store) PreviousPage(ctx context.Context) (result.Set, error) {
	st := s.State()
	from := max(st.From-st.Size, 0)
	return s.Query(ctx, Params{From: &from})
}

// FirstPage moves to offset 0.
func (s *Store) FirstPage(ctx context.Context) (result.Set, error) {
	from := 0
	return s.Query(ctx, Params{From: &from})
}

// LastPage moves to the offset of the last page of the current response.
func (s *Store) LastPage(ctx context.Context) (result.Set, error) {
	st := s.State()
	from := 0
	if total := st.Response.Total(); total > 0 && st.Size > 0 {
		from = (total - 1) / st.Size * st.Size
	}
	return s.Query(ctx, Params{From: &from})
}

// Reset restores the initial state except for excluded keys, then searches.
// Without keys the configured exclusions apply.
func (s *Store) Reset(ctx context.Context, excluded ...string) (result.Set, error) {
	if len(excluded) == 0 {
		excluded = s.settings.ResetExcluded
	}
	s.Commit(Reset{Initial: InitialState(s.settings), Excluded: excluded})
	return s.Refresh(ctx)
}

// SetGlobalSearch switches aggregation counts between global and query-scoped.
func (s *Store) SetGlobalSearch(global bool) {
	s.Commit(SetGlobalSearch{Global: global})
}

// SetLayout changes the result layout.
func (s *Store) SetLayout(l Layout) error {
	if !l.IsValid() {
		return fmt.Errorf("%w: unknown layout %q", domain.ErrInvalidRequest, l)
	}
	s.Commit(SetLayout{Layout: l})
	return nil
}

// ToggleFilters shows or hides the filter panel.
func (s *Store) ToggleFilters() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(SetShowFilters{Show: !s.state.ShowFilters})
	return s.state.ShowFilters
}

// LoadDownloadPermission asks the download policy about the current index.
// Policy errors deny downloads.
func (s *Store) LoadDownloadPermission(ctx context.Context) bool {
	if s.download == nil {
		return s.State().IsDownloadAllowed
	}
	index := s.State().Index
	allowed, err := s.download.IsDownloadAllowed(ctx, index)
	if err != nil {
		s.logger.Warn("download permission lookup failed", zap.String("index", index), zap.Error(err))
		allowed = false
	}
	s.Commit(SetDownloadAllowed{Allowed: allowed})
	return allowed
}
