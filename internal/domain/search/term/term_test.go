package term

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

func mustTerms(t *testing.T, text string) []Term {
	t.Helper()
	terms, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return terms
}

func labels(terms []Term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Label
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtract_Order(t *testing.T) {
	got := labels(mustTerms(t, "result test document other"))
	want := []string{"result", "test", "document", "other"}
	if !equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
}

func TestExtract_Deduplicates(t *testing.T) {
	got := labels(mustTerms(t, "test OR test AND (test other)"))
	if !equal(got, []string{"test", "other"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestExtract_SkipsWildcardAndRanges(t *testing.T) {
	got := labels(mustTerms(t, "* size:[1 TO 2] term"))
	if !equal(got, []string{"term"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestExtract_Empty(t *testing.T) {
	terms := mustTerms(t, "")
	if terms == nil || len(terms) != 0 {
		t.Errorf("terms = %v, want empty", terms)
	}
}

func TestExtract_Fields(t *testing.T) {
	terms := mustTerms(t, "content:term_01 field_name:term_02")
	if len(terms) != 2 {
		t.Fatalf("len = %d", len(terms))
	}
	if terms[0].Field != "content" || terms[1].Field != "field_name" {
		t.Errorf("fields = %q, %q", terms[0].Field, terms[1].Field)
	}
	content := Content(terms)
	if !equal(labels(content), []string{"term_01"}) {
		t.Errorf("content terms = %v", labels(content))
	}
}

func TestExtract_GroupFieldIsInherited(t *testing.T) {
	terms := mustTerms(t, "title:(alpha beta) gamma")
	want := []Term{
		{Field: "title", Label: "alpha"},
		{Field: "title", Label: "beta"},
		{Field: "", Label: "gamma"},
	}
	if len(terms) != len(want) {
		t.Fatalf("terms = %+v", terms)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %+v, want %+v", i, terms[i], want[i])
		}
	}
}

func TestExtract_Negation(t *testing.T) {
	tests := []struct {
		text    string
		negated map[string]bool
	}{
		{"-term_02", map[string]bool{"term_02": true}},
		{"!term", map[string]bool{"term": true}},
		{"+term", map[string]bool{"term": false}},
		{"NOT a b", map[string]bool{"a": true, "b": false}},
		{"a NOT b c", map[string]bool{"a": false, "b": true, "c": false}},
		{"a AND NOT b", map[string]bool{"a": false, "b": true}},
		{"a OR NOT b OR c", map[string]bool{"a": false, "b": true, "c": false}},
		{"a -(b c)", map[string]bool{"a": false, "b": true, "c": true}},
		{"a NOT (b OR c)", map[string]bool{"a": false, "b": true, "c": true}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			terms := mustTerms(t, tt.text)
			if len(terms) != len(tt.negated) {
				t.Fatalf("terms = %+v", terms)
			}
			for _, term := range terms {
				if term.Negation != tt.negated[term.Label] {
					t.Errorf("%s negation = %v", term.Label, term.Negation)
				}
			}
		})
	}
}

func TestExtract_RegexAndEscapes(t *testing.T) {
	terms := mustTerms(t, `/joh?n/ john\@example.org`)
	if !terms[0].Regex || terms[0].Label != "joh?n" {
		t.Errorf("regex term = %+v", terms[0])
	}
	if terms[1].Regex || terms[1].Label != "john@example.org" {
		t.Errorf("escaped term = %+v", terms[1])
	}
}

func TestExtract_RejectsLeftLeaningTree(t *testing.T) {
	root := &query.Node{
		Left: &query.Node{
			Left:     &query.Node{Term: "a"},
			Operator: query.And,
			Right:    &query.Node{Term: "b"},
		},
		Operator: query.Or,
		Right:    &query.Node{Term: "c"},
	}
	_, err := Extract(root)
	if !errors.Is(err, domain.ErrNotRightLeaning) {
		t.Fatalf("expected ErrNotRightLeaning, got %v", err)
	}

	root.Left.Parenthesized = true
	terms, err := Extract(root)
	if err != nil {
		t.Fatalf("grouped left: %v", err)
	}
	if !equal(labels(terms), []string{"a", "b", "c"}) {
		t.Errorf("labels = %v", labels(terms))
	}
}

func TestParse_InvalidQuery(t *testing.T) {
	_, err := Parse("(unbalanced")
	if !errors.Is(err, domain.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestRoundTrip_PreservesTerms(t *testing.T) {
	for _, text := range []string{
		"result test document other",
		"content:term_01 field_name:term_02 -term_03",
		"a AND NOT (b OR c) title:d",
		`"exact phrase" /re.ex/ NOT x`,
	} {
		root, err := query.Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q): %v", text, err)
		}
		before, err := Extract(root)
		if err != nil {
			t.Fatal(err)
		}
		after := mustTerms(t, root.String())
		if len(before) != len(after) {
			t.Fatalf("%q: %+v != %+v", text, before, after)
		}
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("%q: term %d %+v != %+v", text, i, before[i], after[i])
			}
		}
	}
}
