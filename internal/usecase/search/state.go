package search

import (
	"slices"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/ordering"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Layout is the result list presentation.
type Layout string

// Layouts.
const (
	LayoutList  Layout = "list"
	LayoutTable Layout = "table"
)

// IsValid reports whether l is a known layout.
func (l Layout) IsValid() bool { return l == LayoutList || l == LayoutTable }

// State keys, used to exclude parts of the state from a reset.
const (
	KeyQuery             = "query"
	KeyFrom              = "from"
	KeySize              = "size"
	KeySort              = "sort"
	KeyField             = "field"
	KeyIndex             = "index"
	KeyGlobalSearch      = "globalSearch"
	KeyFilters           = "filters"
	KeyResponse          = "response"
	KeyIsReady           = "isReady"
	KeyError             = "error"
	KeyStarred           = "starred"
	KeyShowFilters       = "showFilters"
	KeyLayout            = "layout"
	KeyIsDownloadAllowed = "isDownloadAllowed"
)

// DefaultResetExcluded lists the keys a plain reset keeps.
var DefaultResetExcluded = []string{KeyIndex, KeyShowFilters, KeyLayout, KeySize, KeySort}

// routeRestoreExcluded lists the keys kept when state is restored from a URL.
var routeRestoreExcluded = []string{
	KeyIndex, KeyGlobalSearch, KeyStarred, KeyShowFilters, KeyLayout, KeyField, KeyIsDownloadAllowed,
}

// State is the search session: query, paging, filters and the last response.
// Err and a fresh Response are exclusive; IsReady is false only while a search runs.
type State struct {
	Query             string
	From              int
	Size              int
	Sort              string
	Field             string
	Index             string
	GlobalSearch      bool
	Filters           facet.Registry
	Response          result.Set
	IsReady           bool
	Err               error
	Starred           []string
	ShowFilters       bool
	Layout            Layout
	IsDownloadAllowed bool
}

// IsStarred reports whether a document is in the starred set.
func (s State) IsStarred(id string) bool { return slices.Contains(s.Starred, id) }

// Settings holds the defaults and catalogs of a search session.
type Settings struct {
	Index   string
	Size    int
	MaxSize int
	Sort    string
	Field   string
	// FieldSets maps a field-set key to the fields searched by default terms.
	FieldSets     map[string][]string
	Orders        ordering.Catalog
	Layout        Layout
	Filters       facet.Registry
	ResetExcluded []string
	PollInterval  time.Duration
}

// DefaultSettings returns the settings of a local document index.
func DefaultSettings() Settings {
	return Settings{
		Index:   "local-datashare",
		Size:    25,
		MaxSize: 1000,
		Sort:    ordering.Relevance,
		Field:   "all",
		FieldSets: map[string][]string{
			"all":     {"content", "path", "tags", "metadata"},
			"name":    {"path"},
			"content": {"content"},
			"path":    {"path", "dirname"},
			"tags":    {"tags"},
		},
		Orders:        ordering.DefaultCatalog(),
		Layout:        LayoutList,
		Filters:       facet.DefaultRegistry(),
		ResetExcluded: DefaultResetExcluded,
		PollInterval:  5 * time.Second,
	}
}

func (s Settings) normalize() Settings {
	def := DefaultSettings()
	if s.Size <= 0 {
		s.Size = def.Size
	}
	if s.MaxSize <= 0 {
		s.MaxSize = def.MaxSize
	}
	if s.FieldSets == nil {
		s.FieldSets = def.FieldSets
	}
	if _, ok := s.FieldSets[s.Field]; !ok {
		s.Field = def.Field
	}
	if len(s.Orders.Names()) == 0 {
		s.Orders = def.Orders
	}
	if s.Sort == "" {
		s.Sort = s.Orders.Default()
	}
	if !s.Layout.IsValid() {
		s.Layout = def.Layout
	}
	if s.Filters.Len() == 0 {
		s.Filters = def.Filters
	}
	if s.ResetExcluded == nil {
		s.ResetExcluded = def.ResetExcluded
	}
	if s.PollInterval <= 0 {
		s.PollInterval = def.PollInterval
	}
	return s
}

// validField returns field when it names a field set, the default otherwise.
func (s Settings) validField(field string) string {
	if _, ok := s.FieldSets[field]; ok {
		return field
	}
	return s.Field
}

func (s Settings) clampSize(size int) int {
	if size > s.MaxSize {
		return s.MaxSize
	}
	return size
}

// Fields returns the fields of a field set.
func (s Settings) Fields(key string) []string { return s.FieldSets[key] }

// InitialState returns the state of a new session.
func InitialState(s Settings) State {
	return State{
		Size:         s.Size,
		Sort:         s.Sort,
		Field:        s.Field,
		Index:        s.Index,
		GlobalSearch: true,
		Filters:      s.Filters,
		Response:     result.None(),
		IsReady:      true,
		ShowFilters:  true,
		Layout:       s.Layout,
	}
}
