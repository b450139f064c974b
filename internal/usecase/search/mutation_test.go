package search

import (
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain/search/facet"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

func TestReduce_DoesNotModifyInput(t *testing.T) {
	s := InitialState(DefaultSettings())
	s.Starred = []string{"a"}
	next := Reduce(s, PushStarred{IDs: []string{"b"}})
	next = Reduce(next, SetQuery{Query: "paris"})

	if s.Query != "" || len(s.Starred) != 1 {
		t.Errorf("input modified: %+v", s)
	}
	if next.Query != "paris" || !slices.Equal(next.Starred, []string{"a", "b"}) {
		t.Errorf("next = %+v", next)
	}
}

func TestReduce_Bounds(t *testing.T) {
	s := InitialState(DefaultSettings())
	s = Reduce(s, SetFrom{From: -4})
	if s.From != 0 {
		t.Errorf("From = %d", s.From)
	}
	s = Reduce(s, SetSize{Size: 0})
	if s.Size != 25 {
		t.Errorf("Size = %d", s.Size)
	}
	s = Reduce(s, SetLayout{Layout: "grid"})
	if s.Layout != LayoutList {
		t.Errorf("Layout = %q", s.Layout)
	}
}

func TestReduce_SearchLifecycle(t *testing.T) {
	s := InitialState(DefaultSettings())
	ok := result.FromRaw(result.Raw{Total: 3})

	s = Reduce(s, StartSearch{})
	if s.IsReady {
		t.Fatal("expected searching")
	}
	s = Reduce(s, BuildResponse{Response: ok})
	if !s.IsReady || s.Err != nil || s.Response.Total() != 3 {
		t.Fatalf("after response: %+v", s)
	}

	boom := errors.New("boom")
	s = Reduce(Reduce(s, StartSearch{}), FailSearch{Err: boom})
	if !s.IsReady || !errors.Is(s.Err, boom) {
		t.Errorf("after failure: ready=%v err=%v", s.IsReady, s.Err)
	}
	if s.Response.Total() != 3 {
		t.Error("failure must keep the previous response")
	}

	s = Reduce(s, StartSearch{})
	if s.Err != nil {
		t.Error("a new search clears the error")
	}
}

func TestReduce_Starred(t *testing.T) {
	s := InitialState(DefaultSettings())
	s = Reduce(s, SetStarred{IDs: []string{"a", "b", "a"}})
	s = Reduce(s, PushStarred{IDs: []string{"b", "c"}})
	s = Reduce(s, RemoveStarred{IDs: []string{"a"}})
	if !slices.Equal(s.Starred, []string{"b", "c"}) {
		t.Errorf("Starred = %v", s.Starred)
	}
}

func TestReduce_AppendAggregation(t *testing.T) {
	s := InitialState(DefaultSettings())
	s = Reduce(s, AppendAggregation{Filter: facet.Tags, Buckets: []result.Bucket{{Key: "x", Count: 2}}})
	s = Reduce(s, AppendAggregation{Filter: facet.Tags, Buckets: []result.Bucket{{Key: "x", Count: 9}, {Key: "y", Count: 1}}})
	got := s.Response.Aggregation(facet.Tags)
	if len(got) != 2 || got[0].Count != 2 || got[1].Key != "y" {
		t.Errorf("buckets = %+v", got)
	}
}

func TestReduce_ResetKeepsExcluded(t *testing.T) {
	settings := DefaultSettings()
	initial := InitialState(settings)
	filters, err := initial.Filters.SetValue(facet.ContentType, "application/pdf")
	if err != nil {
		t.Fatal(err)
	}

	s := initial
	s.Query = "paris"
	s.From = 50
	s.Index = "other"
	s.Layout = LayoutTable
	s.Sort = "dateNewest"
	s.Size = 10
	s.ShowFilters = false
	s.Filters = filters
	s.Response = result.FromRaw(result.Raw{Total: 8})

	s = Reduce(s, Reset{Initial: initial, Excluded: DefaultResetExcluded})

	if s.Query != "" || s.From != 0 || len(s.Filters.Active()) != 0 || s.Response.Total() != 0 {
		t.Errorf("reset keys not restored: %+v", s)
	}
	if s.Index != "other" || s.Layout != LayoutTable || s.Sort != "dateNewest" || s.Size != 10 || s.ShowFilters {
		t.Errorf("excluded keys changed: %+v", s)
	}
}

func TestMutationNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range []Mutation{
		SetQuery{}, SetFrom{}, SetSize{}, SetSort{}, SetField{}, SetIndex{},
		SetGlobalSearch{}, SetLayout{}, SetShowFilters{}, SetDownloadAllowed{},
		SetFilters{}, StartSearch{}, BuildResponse{}, FailSearch{},
		AppendAggregation{}, SetStarred{}, PushStarred{}, RemoveStarred{}, Reset{},
	} {
		if seen[m.Name()] {
			t.Errorf("duplicate mutation name %q", m.Name())
		}
		seen[m.Name()] = true
	}
}
