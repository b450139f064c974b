package search

import (
	"slices"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

// Mutation is a named change to the search state, applied by Reduce.
type Mutation interface {
	Name() string
}

type (
	// SetQuery replaces the query text.
	SetQuery struct{ Query string }
	// SetFrom moves the page offset. Negative offsets become 0.
	SetFrom struct{ From int }
	// SetSize changes the page size. Non-positive sizes are ignored.
	SetSize struct{ Size int }
	// SetSort selects a sort order by name.
	SetSort struct{ Sort string }
	// SetField selects a field set.
	SetField struct{ Field string }
	// SetIndex selects the target index.
	SetIndex struct{ Index string }
	// SetGlobalSearch switches aggregations between global and query-scoped counts.
	SetGlobalSearch struct{ Global bool }
	// SetLayout changes the result layout. Unknown layouts are ignored.
	SetLayout struct{ Layout Layout }
	// SetShowFilters shows or hides the filter panel.
	SetShowFilters struct{ Show bool }
	// SetDownloadAllowed records whether documents may be downloaded.
	SetDownloadAllowed struct{ Allowed bool }
	// SetFilters replaces the filter registry.
	SetFilters struct{ Filters facet.Registry }
	// StartSearch enters the searching state.
	StartSearch struct{}
	// BuildResponse stores a successful response.
	BuildResponse struct{ Response result.Set }
	// FailSearch records a failed search, keeping the previous response.
	FailSearch struct{ Err error }
	// AppendAggregation grows one aggregation of the current response.
	AppendAggregation struct {
		Filter  string
		Buckets []result.Bucket
	}
	// SetStarred replaces the starred set.
	SetStarred struct{ IDs []string }
	// PushStarred adds documents to the starred set.
	PushStarred struct{ IDs []string }
	// RemoveStarred removes documents from the starred set.
	RemoveStarred struct{ IDs []string }
	// Reset restores Initial for every key not in Excluded.
	Reset struct {
		Initial  State
		Excluded []string
	}
)

// Name implements Mutation.
func (SetQuery) Name() string { return "query" }

// Name implements Mutation.
func (SetFrom) Name() string { return "from" }

// Name implements Mutation.
func (SetSize) Name() string { return "size" }

// Name implements Mutation.
func (SetSort) Name() string { return "sort" }

// Name implements Mutation.
func (SetField) Name() string { return "field" }

// Name implements Mutation.
func (SetIndex) Name() string { return "index" }

// Name implements Mutation.
func (SetGlobalSearch) Name() string { return "setGlobalSearch" }

// Name implements Mutation.
func (SetLayout) Name() string { return "layout" }

// Name implements Mutation.
func (SetShowFilters) Name() string { return "toggleFilters" }

// Name implements Mutation.
func (SetDownloadAllowed) Name() string { return "isDownloadAllowed" }

// Name implements Mutation.
func (SetFilters) Name() string { return "filters" }

// Name implements Mutation.
func (StartSearch) Name() string { return "startSearch" }

// Name implements Mutation.
func (BuildResponse) Name() string { return "buildResponse" }

// Name implements Mutation.
func (FailSearch) Name() string { return "error" }

// Name implements Mutation.
func (AppendAggregation) Name() string { return "appendAggregation" }

// Name implements Mutation.
func (SetStarred) Name() string { return "starredDocuments" }

// Name implements Mutation.
func (PushStarred) Name() string { return "pushFromStarredDocuments" }

// Name implements Mutation.
func (RemoveStarred) Name() string { return "removeFromStarredDocuments" }

// Name implements Mutation.
func (Reset) Name() string { return "reset" }

// Reduce returns the state after applying m. It never modifies s.
func Reduce(s State, m Mutation) State {
	switch m := m.(type) {
	case SetQuery:
		s.Query = m.Query
	case SetFrom:
		s.From = max(m.From, 0)
	case SetSize:
		if m.Size > 0 {
			s.Size = m.Size
		}
	case SetSort:
		s.Sort = m.Sort
	case SetField:
		s.Field = m.Field
	case SetIndex:
		s.Index = m.Index
	case SetGlobalSearch:
		s.GlobalSearch = m.Global
	case SetLayout:
		if m.Layout.IsValid() {
			s.Layout = m.Layout
		}
	case SetShowFilters:
		s.ShowFilters = m.Show
	case SetDownloadAllowed:
		s.IsDownloadAllowed = m.Allowed
	case SetFilters:
		s.Filters = m.Filters
	case StartSearch:
		s.IsReady = false
		s.Err = nil
	case BuildResponse:
		s.Response = m.Response
		s.Err = nil
		s.IsReady = true
	case FailSearch:
		s.Err = m.Err
		s.IsReady = true
	case AppendAggregation:
		s.Response = s.Response.AppendAggregation(m.Filter, m.Buckets...)
	case SetStarred:
		s.Starred = dedup(m.IDs)
	case PushStarred:
		s.Starred = dedup(slices.Concat(s.Starred, m.IDs))
	case RemoveStarred:
		s.Starred = slices.DeleteFunc(slices.Clone(s.Starred), func(id string) bool {
			return slices.Contains(m.IDs, id)
		})
	case Reset:
		for key, restore := range stateKeys {
			if !slices.Contains(m.Excluded, key) {
				restore(&s, m.Initial)
			}
		}
	}
	return s
}

var stateKeys = map[string]func(dst *State, src State){
	KeyQuery:             func(d *State, s State) { d.Query = s.Query },
	KeyFrom:              func(d *State, s State) { d.From = s.From },
	KeySize:              func(d *State, s State) { d.Size = s.Size },
	KeySort:              func(d *State, s State) { d.Sort = s.Sort },
	KeyField:             func(d *State, s State) { d.Field = s.Field },
	KeyIndex:             func(d *State, s State) { d.Index = s.Index },
	KeyGlobalSearch:      func(d *State, s State) { d.GlobalSearch = s.GlobalSearch },
	KeyFilters:           func(d *State, s State) { d.Filters = s.Filters },
	KeyResponse:          func(d *State, s State) { d.Response = s.Response },
	KeyIsReady:           func(d *State, s State) { d.IsReady = s.IsReady },
	KeyError:             func(d *State, s State) { d.Err = s.Err },
	KeyStarred:           func(d *State, s State) { d.Starred = slices.Clone(s.Starred) },
	KeyShowFilters:       func(d *State, s State) { d.ShowFilters = s.ShowFilters },
	KeyLayout:            func(d *State, s State) { d.Layout = s.Layout },
	KeyIsDownloadAllowed: func(d *State, s State) { d.IsDownloadAllowed = s.IsDownloadAllowed },
}

func dedup(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
