package chi

import (
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/domain/search/term"
)

// ErrorCode identifies an API error class.
type ErrorCode string

// API error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeFilterNotFound   ErrorCode = "filter_not_found"
	ErrorCodeDocumentNotFound ErrorCode = "document_not_found"
	ErrorCodeDuplicateFilter  ErrorCode = "duplicate_filter"
	ErrorCodeBackendError     ErrorCode = "backend_error"
	ErrorCodeNotImplemented   ErrorCode = "not_implemented"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Hit is a search hit. Document and named entity fields are mutually exclusive.
type Hit struct {
	ID    string  `json:"id"`
	Index string  `json:"index"`
	Score float64 `json:"score"`
	Type  string  `json:"type"`

	Path            string            `json:"path,omitempty"`
	ContentType     string            `json:"content_type,omitempty"`
	ContentLength   int64             `json:"content_length,omitempty"`
	Language        string            `json:"language,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreationDate    *time.Time        `json:"creation_date,omitempty"`
	ExtractionDate  *time.Time        `json:"extraction_date,omitempty"`
	ExtractionLevel int               `json:"extraction_level,omitempty"`
	Starred         bool              `json:"starred,omitempty"`

	Mention  string `json:"mention,omitempty"`
	Category string `json:"category,omitempty"`
	Document string `json:"document,omitempty"`
}

// Term is a query term.
type Term struct {
	Field    string `json:"field,omitempty"`
	Label    string `json:"label"`
	Negation bool   `json:"negation,omitempty"`
	Regex    bool   `json:"regex,omitempty"`
}

// SearchResponse is a page of hits and the route that reproduces it.
type SearchResponse struct {
	Hits  []Hit `json:"hits"`
	Total int   `json:"total"`
	From  int   `json:"from"`
	Size  int   `json:"size"`
	// Route is the encoded query string that restores this page.
	Route string `json:"route"`
	Terms []Term `json:"terms"`
}

// Bucket is an aggregation bucket with its display label.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FilterResponse lists the buckets of one filter.
type FilterResponse struct {
	Filter  string   `json:"filter"`
	Buckets []Bucket `json:"buckets"`
}

// StarResponse reports whether a document is starred.
type StarResponse struct {
	ID      string `json:"id"`
	Starred bool   `json:"starred"`
}

// StarredResponse lists the starred documents of an index.
type StarredResponse struct {
	Index string   `json:"index"`
	IDs   []string `json:"ids"`
}

// Occurrence counts one term in a document.
type Occurrence struct {
	Term
	Content  int `json:"content"`
	Metadata int `json:"metadata"`
	Tags     int `json:"tags"`
}

// DocumentTermsResponse lists the query terms found in a document and its highlighted content.
type DocumentTermsResponse struct {
	ID          string       `json:"id"`
	Occurrences []Occurrence `json:"occurrences"`
	Content     string       `json:"content"`
	// LocalIndex and LocalOccurrences describe the in-document search, when requested.
	LocalIndex       int `json:"local_index,omitempty"`
	LocalOccurrences int `json:"local_occurrences,omitempty"`
}

// HealthResponse is the service health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func hitToAPI(h result.Hit, starred func(string) bool) Hit {
	out := Hit{ID: h.ID(), Index: h.Index(), Score: h.Score(), Type: string(h.Type())}
	switch v := h.(type) {
	case *result.Document:
		out.Path = v.Path
		out.ContentType = v.ContentType
		out.ContentLength = v.ContentLength
		out.Language = v.Language
		out.Tags = v.Tags
		out.Metadata = v.Metadata
		out.CreationDate = timePtr(v.CreationDate)
		out.ExtractionDate = timePtr(v.ExtractionDate)
		out.ExtractionLevel = v.ExtractionLevel
		out.Starred = starred(v.ID())
	case *result.NamedEntity:
		out.Mention = v.Mention
		out.Category = v.Category
		out.Document = v.DocumentID
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func termsToAPI(terms []term.Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = termToAPI(t)
	}
	return out
}

func termToAPI(t term.Term) Term {
	return Term{Field: t.Field, Label: t.Label, Negation: t.Negation, Regex: t.Regex}
}

func occurrencesToAPI(occ []term.Occurrence) []Occurrence {
	out := make([]Occurrence, len(occ))
	for i, o := range occ {
		out[i] = Occurrence{Term: termToAPI(o.Term), Content: o.Content, Metadata: o.Metadata, Tags: o.Tags}
	}
	return out
}

func bucketsToAPI(f facet.Filter, buckets []result.Bucket) []Bucket {
	out := make([]Bucket, len(buckets))
	for i, b := range buckets {
		out[i] = Bucket{Key: b.Key, Label: f.Label(b), Count: b.Count}
	}
	return out
}
