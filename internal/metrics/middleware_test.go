package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":[]}`))
	})
	r.Get("/api/search/filters/{name}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "name") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/indices/{index}/documents/{id}/star/toggle", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/noop", func(http.ResponseWriter, *http.Request) {})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		method string
		target string
		route  string
		status string
	}{
		{"body without header", http.MethodGet, "/api/search?q=paris", "/api/search", "200"},
		{"path param collapsed", http.MethodGet, "/api/search/filters/tags", "/api/search/filters/{name}", "200"},
		{"explicit not found", http.MethodGet, "/api/search/filters/missing", "/api/search/filters/{name}", "404"},
		{"nested params", http.MethodPost, "/api/indices/books/documents/d1/star/toggle",
			"/api/indices/{index}/documents/{id}/star/toggle", "502"},
		{"empty handler", http.MethodGet, "/noop", "/noop", "200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := httpRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status)
			before := testutil.ToFloat64(counter)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, http.NoBody))

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("requests_total{%s %s %s} grew by %v, want 1", tt.method, tt.route, tt.status, got)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()
	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, routeUnmatched, "404")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nope/123", http.NoBody))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched counter grew by %v, want 1", got)
	}
}

func TestMiddleware_ObservesDurationAndSize(t *testing.T) {
	r := newRouter()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/search", http.NoBody))

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
	if testutil.CollectAndCount(httpResponseBytes) == 0 {
		t.Error("expected response size observations")
	}
	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("in-flight gauge = %v after the request returned", got)
	}
}

func TestRoutePattern_NoRouteContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	if got := routePattern(req); got != routeUnmatched {
		t.Errorf("routePattern = %q, want %q", got, routeUnmatched)
	}
}
