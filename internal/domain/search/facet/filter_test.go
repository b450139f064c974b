package facet

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

func mustFilter(t *testing.T, def Definition, values ...string) Filter {
	t.Helper()
	f, err := New(def)
	if err != nil {
		t.Fatalf("New(%q): %v", def.Name, err)
	}
	return f.withValues(f.Coerce(values))
}

func TestKind_String(t *testing.T) {
	for k := KindText; k <= KindStarred; k++ {
		parsed, err := ParseKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, err)
		}
	}
	if Kind(42).IsValid() {
		t.Error("Kind(42) should be invalid")
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"no name", Definition{Field: "f"}},
		{"no field", Definition{Name: "x"}},
		{"bad kind", Definition{Name: "x", Field: "f", Kind: Kind(99)}},
		{"entity without category", Definition{Name: "x", Kind: KindNamedEntity}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.def); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNew_NamedEntityField(t *testing.T) {
	f, err := New(Definition{Name: "people", Kind: KindNamedEntity, Category: "person"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Field() != "ne_person" || f.Category() != "PERSON" {
		t.Errorf("field=%q category=%q", f.Field(), f.Category())
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		raw  []string
		want []string
	}{
		{"text dedup", KindText, []string{"a", " a ", "", "b"}, []string{"a", "b"}},
		{"yes no", KindYesNo, []string{"Yes", "on", "0", "nope"}, []string{"true", "false"}},
		{"date month", KindDate, []string{"2020-03-15", "1583020800000", "junk"}, []string{"1583020800000"}},
		{"date range sorted", KindDateRange, []string{"2021-01-01", "2020-01-01", "2020-06-01"}, []string{"1577836800000", "1609459200000"}},
		{"path cleaned", KindPath, []string{"/a/b/../c/", "/a/c"}, []string{"/a/c"}},
		{"starred", KindStarred, []string{"1", "true"}, []string{"true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFilter(t, Definition{Name: "x", Field: "f", Kind: tt.kind})
			if got := f.Coerce(tt.raw); !slices.Equal(got, tt.want) {
				t.Errorf("Coerce() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpression_Inactive(t *testing.T) {
	for k := KindText; k <= KindStarred; k++ {
		def := Definition{Name: "x", Field: "f", Kind: k, Category: "PERSON"}
		f := mustFilter(t, def)
		if !f.Expression(ClauseContext{Starred: []string{"d1"}}).IsEmpty() {
			t.Errorf("%s: inactive filter produced a clause", k)
		}
		reversed := f.withReversed(true)
		if !reversed.Expression(ClauseContext{}).IsEmpty() {
			t.Errorf("%s: inactive reversed filter produced a clause", k)
		}
	}
}

func TestExpression_Text(t *testing.T) {
	f := mustFilter(t, Definition{Name: "tags", Field: "tags", Kind: KindText}, "a", "b")
	e := f.Expression(ClauseContext{})
	if len(e.Must()) != 1 || !slices.Equal(e.Must()[0].Values(), []string{"a", "b"}) {
		t.Fatalf("must = %+v", e.Must())
	}

	r := f.withReversed(true).Expression(ClauseContext{})
	if len(r.Must()) != 0 || len(r.MustNot()) != 1 || r.MustNot()[0].Key() != "tags" {
		t.Errorf("reversed = %+v", r)
	}
	if !slices.Equal(f.withReversed(true).Values(), f.Values()) {
		t.Error("reversing changed values")
	}
}

func TestExpression_Date(t *testing.T) {
	f := mustFilter(t, Definition{Name: "d", Field: "extraction_date", Kind: KindDate}, "2020-01", "2020-02")
	e := f.Expression(ClauseContext{})
	if len(e.Should()) != 2 {
		t.Fatalf("should = %+v", e.Should())
	}
	r := e.Should()[0].Range()
	if r == nil || *r.GTE() != 1577836800000 || *r.LT() != 1580515200000 {
		t.Errorf("range = %+v", r)
	}

	single := mustFilter(t, Definition{Name: "d", Field: "f", Kind: KindDate}, "2020-01")
	if e := single.Expression(ClauseContext{}); len(e.Must()) != 1 || len(e.Should()) != 0 {
		t.Errorf("single month = %+v", e)
	}
}

func TestExpression_DateRange(t *testing.T) {
	f := mustFilter(t, Definition{Name: "c", Field: "creation_date", Kind: KindDateRange}, "2020-01-01", "2020-12-31")
	e := f.Expression(ClauseContext{})
	if len(e.Must()) != 1 {
		t.Fatalf("must = %+v", e.Must())
	}
	r := e.Must()[0].Range()
	if *r.GTE() != 1577836800000 || *r.LTE() != 1609372800000 {
		t.Errorf("range = gte %v lte %v", *r.GTE(), *r.LTE())
	}
}

func TestExpression_Path(t *testing.T) {
	f := mustFilter(t, Definition{Name: "path", Field: "dirname", Kind: KindPath}, "/data/docs")
	e := f.Expression(ClauseContext{})
	conds := e.Should()
	if len(conds) != 2 {
		t.Fatalf("should = %+v", e)
	}
	if conds[0].Match() != "/data/docs" || conds[1].Prefix() != "/data/docs/" {
		t.Errorf("conditions = %+v", conds)
	}
}

func TestExpression_Starred(t *testing.T) {
	def := Definition{Name: Starred, Field: "id", Kind: KindStarred}
	tests := []struct {
		name    string
		values  []string
		starred []string
		check   func(t *testing.T, e filter.Expression)
	}{
		{"starred only", []string{"true"}, []string{"d1", "d2"}, func(t *testing.T, e filter.Expression) {
			if len(e.Must()) != 1 || !slices.Equal(e.Must()[0].Values(), []string{"d1", "d2"}) {
				t.Errorf("e = %+v", e)
			}
		}},
		{"starred with empty set", []string{"true"}, nil, func(t *testing.T, e filter.Expression) {
			if len(e.Must()) != 1 || e.Must()[0].Match() != NoStarredDocuments {
				t.Errorf("e = %+v", e)
			}
		}},
		{"not starred", []string{"false"}, []string{"d1"}, func(t *testing.T, e filter.Expression) {
			if len(e.MustNot()) != 1 || e.MustNot()[0].Match() != "d1" {
				t.Errorf("e = %+v", e)
			}
		}},
		{"not starred with empty set", []string{"false"}, nil, func(t *testing.T, e filter.Expression) {
			if !e.IsEmpty() {
				t.Errorf("e = %+v", e)
			}
		}},
		{"both", []string{"true", "false"}, []string{"d1"}, func(t *testing.T, e filter.Expression) {
			if !e.IsEmpty() {
				t.Errorf("e = %+v", e)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFilter(t, def, tt.values...)
			tt.check(t, f.Expression(ClauseContext{Starred: tt.starred}))
		})
	}
}

func TestExpression_StarredReversed(t *testing.T) {
	def := Definition{Name: Starred, Field: "id", Kind: KindStarred}
	tests := []struct {
		name    string
		values  []string
		starred []string
		check   func(t *testing.T, e filter.Expression)
	}{
		{"excluding unstarred keeps starred", []string{"false"}, []string{"d1", "d2"}, func(t *testing.T, e filter.Expression) {
			if len(e.Must()) != 1 || !slices.Equal(e.Must()[0].Values(), []string{"d1", "d2"}) || len(e.MustNot()) != 0 {
				t.Errorf("e = %+v", e)
			}
		}},
		{"excluding unstarred with empty set", []string{"false"}, nil, func(t *testing.T, e filter.Expression) {
			if len(e.Must()) != 1 || e.Must()[0].Match() != NoStarredDocuments {
				t.Errorf("e = %+v", e)
			}
		}},
		{"excluding starred", []string{"true"}, []string{"d1"}, func(t *testing.T, e filter.Expression) {
			if len(e.MustNot()) != 1 || e.MustNot()[0].Match() != "d1" || len(e.Must()) != 0 {
				t.Errorf("e = %+v", e)
			}
		}},
		{"excluding starred with empty set", []string{"true"}, nil, func(t *testing.T, e filter.Expression) {
			if !e.IsEmpty() {
				t.Errorf("e = %+v", e)
			}
		}},
		{"excluding both", []string{"true", "false"}, []string{"d1"}, func(t *testing.T, e filter.Expression) {
			if len(e.Must()) != 1 || e.Must()[0].Match() != NoStarredDocuments {
				t.Errorf("e = %+v", e)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFilter(t, def, tt.values...).withReversed(true)
			tt.check(t, f.Expression(ClauseContext{Starred: tt.starred}))
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		key  string
		want string
	}{
		{"text identity", Definition{Name: "t", Field: "f"}, "abc", "abc"},
		{"label table", Definition{Name: "t", Field: "f", Labels: ContentTypeLabels}, "application/pdf", "Portable Document Format (PDF)"},
		{"yes", Definition{Name: "t", Field: "f", Kind: KindYesNo}, "1", "Yes"},
		{"no", Definition{Name: "t", Field: "f", Kind: KindYesNo}, "false", "No"},
		{"date default layout", Definition{Name: "t", Field: "f", Kind: KindDateRange}, "1577836800000", "2020-01-01"},
		{"date layout", Definition{Name: "t", Field: "f", Kind: KindDate, DateLayout: "2006-01"}, "1577836800000", "2020-01"},
		{"date not numeric", Definition{Name: "t", Field: "f", Kind: KindDate}, "soon", "soon"},
		{"path base", Definition{Name: "t", Field: "f", Kind: KindPath}, "/data/docs", "docs"},
		{"entity", Definition{Name: "t", Kind: KindNamedEntity, Category: "PERSON"}, "jane DOE", "Jane Doe"},
		{"starred", Definition{Name: "t", Field: "f", Kind: KindStarred}, "true", "Starred"},
		{"labeler", Definition{Name: "t", Field: "f", Labeler: extractionLevelLabel}, "2", "2nd level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustFilter(t, tt.def)
			if got := f.Label(result.Bucket{Key: tt.key}); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHint(t *testing.T) {
	text := mustFilter(t, Definition{Name: "c", Field: "f", Labels: ContentTypeLabels})
	got := text.Hint("pdf", []string{"application/pdf", "text/plain"})
	if !slices.Equal(got, []string{"application/pdf"}) {
		t.Errorf("Hint(pdf) = %v", got)
	}
	if got := text.Hint("spreadsheet", nil); len(got) != 2 {
		t.Errorf("Hint over label table = %v", got)
	}
	if got := text.Hint("", []string{"a", "b"}); len(got) != 2 {
		t.Errorf("empty input = %v", got)
	}

	accents := mustFilter(t, Definition{Name: "e", Kind: KindNamedEntity, Category: "PERSON"})
	if got := accents.Hint("jose", []string{"José", "Maria"}); !slices.Equal(got, []string{"José"}) {
		t.Errorf("accent-insensitive hint = %v", got)
	}
}

func TestHint_PathGlob(t *testing.T) {
	f := mustFilter(t, Definition{Name: "path", Field: "dirname", Kind: KindPath})
	candidates := []string{"/data/docs", "/data/docs/2020", "/data/mail"}

	if got := f.Hint("docs", candidates); !slices.Equal(got, []string{"/data/docs"}) {
		t.Errorf("Hint(docs) = %v", got)
	}
	if got := f.Hint("/data/**", candidates); len(got) != 3 {
		t.Errorf("Hint(glob) = %v", got)
	}
	if got := f.Hint("[", candidates); got != nil {
		t.Errorf("invalid pattern = %v", got)
	}
}
