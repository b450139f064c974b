package search

import (
	"math/rand/v2"
	"net/url"
	"strconv"
)

// Route parameter names.
const (
	ParamQuery = "q"
	ParamFrom  = "from"
	ParamSize  = "size"
	ParamSort  = "sort"
	ParamIndex = "index"
	ParamField = "field"
	ParamStamp = "stamp"
)

const stampLength = 6

// RouteParams encodes the session as URL parameters.
func (s *Store) RouteParams() url.Values {
	st := s.State()
	params := st.Filters.RouteParams()
	params.Set(ParamQuery, st.Query)
	params.Set(ParamFrom, strconv.Itoa(st.From))
	params.Set(ParamSize, strconv.Itoa(st.Size))
	params.Set(ParamSort, st.Sort)
	params.Set(ParamIndex, st.Index)
	params.Set(ParamField, st.Field)
	return params
}

// RouteParamsWithStamp adds a random stamp so two identical searches produce distinct URLs.
func (s *Store) RouteParamsWithStamp() url.Values {
	params := s.RouteParams()
	params.Set(ParamStamp, stamp())
	return params
}

func stamp() string {
	b := make([]byte, stampLength)
	for i := range b {
		b[i] = byte('a' + rand.IntN(26))
	}
	return string(b)
}

// UpdateFromRouteParams restores the session from URL parameters without searching.
// Index, starred documents and presentation settings are kept.
func (s *Store) UpdateFromRouteParams(params url.Values) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(Reset{Initial: InitialState(s.settings), Excluded: routeRestoreExcluded})
	ms := []Mutation{SetQuery{Query: params.Get(ParamQuery)}}
	if from, ok := intParam(params, ParamFrom); ok {
		ms = append(ms, SetFrom{From: from})
	}
	if size, ok := intParam(params, ParamSize); ok {
		ms = append(ms, SetSize{Size: s.settings.clampSize(size)})
	}
	if sort := params.Get(ParamSort); sort != "" {
		ms = append(ms, SetSort{Sort: sort})
	}
	if index := params.Get(ParamIndex); index != "" {
		ms = append(ms, SetIndex{Index: index})
	}
	if field := params.Get(ParamField); field != "" {
		ms = append(ms, SetField{Field: s.settings.validField(field)})
	}
	ms = append(ms, SetFilters{Filters: s.state.Filters.FromRouteParams(params)})
	s.apply(ms...)
	return s.state
}

func intParam(params url.Values, key string) (int, bool) {
	v := params.Get(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
