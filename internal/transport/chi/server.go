package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/highlight"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/term"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// Page names accepted by GET /api/search/pages/{page}.
const (
	PageFirst    = "first"
	PagePrevious = "previous"
	PageNext     = "next"
	PageLast     = "last"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// StoreFactory creates a search session in its initial state.
type StoreFactory func() *searchuc.Store

// DocumentGetter loads one indexed document.
type DocumentGetter interface {
	Get(ctx context.Context, index, id string) (result.Hit, error)
}

// Server serves the search API. It keeps no session: every request
// restores a fresh store from its URL parameters.
type Server struct {
	newStore      StoreFactory
	documents     DocumentGetter
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	newStore StoreFactory,
	documents DocumentGetter,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		newStore:  newStore,
		documents: documents,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrParse, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrUnknownFilter, http.StatusNotFound, ErrorCodeFilterNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrDuplicateFilter, http.StatusConflict, ErrorCodeDuplicateFilter),
		sentinelHandler(searchuc.ErrNoStarTagger, http.StatusNotImplemented, ErrorCodeNotImplemented),
		sentinelHandler(domain.ErrKeywordSearchNotSupported, http.StatusNotImplemented, ErrorCodeNotImplemented),
		sentinelHandler(domain.ErrBackend, http.StatusBadGateway, ErrorCodeBackendError),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/search/filters/{name}", s.QueryFilter)
		r.Get("/search/pages/{page}", s.Page)
		r.Delete("/search/terms/{label}", s.DeleteTerm)
		r.Get("/indices/{index}/starred", s.Starred)
		r.Post("/indices/{index}/documents/{id}/star/toggle", s.ToggleStar)
		r.Get("/indices/{index}/documents/{id}/terms", s.DocumentTerms)
	})
}

// restore creates a store from the request's route parameters. Starred
// documents are loaded when a star tagger is configured.
func (s *Server) restore(r *http.Request) (*searchuc.Store, error) {
	store := s.newStore()
	store.UpdateFromRouteParams(r.URL.Query())
	return store, s.loadStarred(r.Context(), store)
}

func (s *Server) loadStarred(ctx context.Context, store *searchuc.Store) error {
	if _, err := store.LoadStarredDocuments(ctx); err != nil && !errors.Is(err, searchuc.ErrNoStarTagger) {
		return err
	}
	return nil
}

// Search handles GET /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	store, err := s.restore(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	set, err := store.Refresh(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(store, set))
}

// Page handles GET /api/search/pages/{page}.
func (s *Server) Page(w http.ResponseWriter, r *http.Request) {
	var page string
	if err := bindPath(r, "page", &page); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	var move func(context.Context) (result.Set, error)
	store, err := s.restore(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	switch page {
	case PageFirst:
		move = store.FirstPage
	case PagePrevious:
		move = store.PreviousPage
	case PageNext:
		move = store.NextPage
	case PageLast:
		move = store.LastPage
	default:
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "unknown page "+page)
		return
	}

	// Next and last need the total of the current page.
	if _, err := store.Refresh(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	set, err := move(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(store, set))
}

// DeleteTerm handles DELETE /api/search/terms/{label}.
func (s *Server) DeleteTerm(w http.ResponseWriter, r *http.Request) {
	var label string
	if err := bindPath(r, "label", &label); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	store, err := s.restore(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	set, err := store.DeleteQueryTerm(r.Context(), label)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse(store, set))
}

// filterParams are the bucket options of GET /api/search/filters/{name}.
type filterParams struct {
	Size     *int
	Offset   *int
	Contains *string
	Global   *bool
}

func bindFilterParams(r *http.Request) (filterParams, error) {
	var p filterParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "size", q, &p.Size); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", q, &p.Offset); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "contains", q, &p.Contains); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "global", q, &p.Global); err != nil {
		return p, err
	}
	return p, nil
}

// QueryFilter handles GET /api/search/filters/{name}.
func (s *Server) QueryFilter(w http.ResponseWriter, r *http.Request) {
	var name string
	if err := bindPath(r, "name", &name); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	params, err := bindFilterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	store, err := s.restore(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if params.Global != nil {
		store.SetGlobalSearch(*params.Global)
	}

	f, ok := store.State().Filters.Find(name)
	if !ok {
		s.handleDomainError(w, domain.NewUnknownFilter(name))
		return
	}
	set, err := store.QueryFilter(r.Context(), name, searchuc.FilterQuery{
		Size:     deref(params.Size),
		Offset:   deref(params.Offset),
		Contains: deref(params.Contains),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FilterResponse{
		Filter:  name,
		Buckets: bucketsToAPI(f, set.Aggregation(name)),
	})
}

// Starred handles GET /api/indices/{index}/starred.
func (s *Server) Starred(w http.ResponseWriter, r *http.Request) {
	var index string
	if err := bindPath(r, "index", &index); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	store := s.newStore()
	store.Commit(searchuc.SetIndex{Index: index})
	ids, err := store.LoadStarredDocuments(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, StarredResponse{Index: index, IDs: ids})
}

// ToggleStar handles POST /api/indices/{index}/documents/{id}/star/toggle.
func (s *Server) ToggleStar(w http.ResponseWriter, r *http.Request) {
	var index, id string
	if err := bindPath(r, "index", &index); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := bindPath(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	store := s.newStore()
	store.Commit(searchuc.SetIndex{Index: index})
	if _, err := store.LoadStarredDocuments(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	starred, err := store.ToggleStarDocument(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContext(r.Context()).Info("document star toggled",
		zap.String("index", index), zap.String("id", id), zap.Bool("starred", starred))
	writeJSON(w, http.StatusOK, StarResponse{ID: id, Starred: starred})
}

// DocumentTerms handles GET /api/indices/{index}/documents/{id}/terms.
// The query comes from the route parameters; "local" searches within the highlighted content.
func (s *Server) DocumentTerms(w http.ResponseWriter, r *http.Request) {
	var index, id string
	if err := bindPath(r, "index", &index); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := bindPath(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	var local *string
	if err := runtime.BindQueryParameter("form", true, false, "local", r.URL.Query(), &local); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	hit, err := s.documents.Get(r.Context(), index, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	doc, ok := hit.(*result.Document)
	if !ok {
		s.handleDomainError(w, domain.ErrDocumentNotFound)
		return
	}

	store := s.newStore()
	store.UpdateFromRouteParams(r.URL.Query())
	occurrences := store.TermsInDocument(doc)
	content := highlight.Highlight(doc.Content, term.Marks(occurrences, doc.Content),
		highlight.WithMarkFormatter(escapedMark),
		highlight.WithRestFormatter(highlight.HTMLEscape),
	)

	resp := DocumentTermsResponse{
		ID:          id,
		Occurrences: occurrencesToAPI(occurrences),
		Content:     content,
	}
	if label := deref(local); label != "" {
		found := highlight.AddLocalSearchMarks(content, label, false)
		resp.Content = found.Content
		resp.LocalIndex = found.Index
		resp.LocalOccurrences = found.Occurrences
	}
	writeJSON(w, http.StatusOK, resp)
}

func escapedMark(m highlight.Mark) string {
	m.Content = highlight.HTMLEscape(m.Content)
	return highlight.HTMLMark(m)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func searchResponse(store *searchuc.Store, set result.Set) SearchResponse {
	st := store.State()
	hits := make([]Hit, 0, len(set.Hits()))
	for _, h := range set.Hits() {
		hits = append(hits, hitToAPI(h, st.IsStarred))
	}
	return SearchResponse{
		Hits:  hits,
		Total: set.Total(),
		From:  st.From,
		Size:  st.Size,
		Route: store.RouteParams().Encode(),
		Terms: termsToAPI(store.QueryTerms()),
	}
}

func bindPath(r *http.Request, name string, dest *string) error {
	return runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var fe *domain.FilterError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrParse,
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		searchuc.ErrNoStarTagger,
		domain.ErrKeywordSearchNotSupported,
		domain.ErrBackend,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
