package term

import (
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

func TestDeleteFromText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
		want  string
	}{
		{"only term", "document", "document", ""},
		{"first of chain", "a b c", "a", "b c"},
		{"middle of chain", "a b c", "b", "a c"},
		{"last of chain", "a b c", "c", "a b"},
		{"operator dropped", "a AND b", "b", "a"},
		{"negated term", "a -b", "b", "a"},
		{"start dropped", "NOT a b", "a", "b"},
		{"negation does not leak", "a NOT b c", "b", "a c"},
		{"inside group", "(a OR b) c", "a", "b c"},
		{"group keeps parentheses", "x AND (a OR b OR c)", "a", "x AND (b OR c)"},
		{"field group", "title:(a b c)", "a", "title:(b c)"},
		{"every occurrence", "a b a", "a", "b"},
		{"fielded term", "content:term_01 field_name:term_02", "term_02", "content:term_01"},
		{"escaped label", `john\@example.org other`, "john@example.org", "other"},
		{"absent label", "a AND (b)", "z", "a AND (b)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeleteFromText(tt.text, tt.label)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DeleteFromText(%q, %q) = %q, want %q", tt.text, tt.label, got, tt.want)
			}
		})
	}
}

func TestDelete_Idempotent(t *testing.T) {
	for _, text := range []string{"a b c", "a NOT b c", "(a OR b) AND c", "NOT a"} {
		root, err := query.Parse(text)
		if err != nil {
			t.Fatal(err)
		}
		once := Delete(root, "b")
		twice := Delete(once, "b")
		if once.String() != twice.String() {
			t.Errorf("%q: once = %q, twice = %q", text, once.String(), twice.String())
		}
	}
}

func TestDelete_DoesNotMutateInput(t *testing.T) {
	root, err := query.Parse("a b c")
	if err != nil {
		t.Fatal(err)
	}
	_ = Delete(root, "b")
	if root.String() != "a b c" {
		t.Errorf("input mutated: %q", root.String())
	}
}

func TestDelete_ResultIsExtractable(t *testing.T) {
	root, err := query.Parse("(a b) c")
	if err != nil {
		t.Fatal(err)
	}
	terms, err := Extract(Delete(root, "a"))
	if err != nil {
		t.Fatalf("Extract after Delete: %v", err)
	}
	if !equal(labels(terms), []string{"b", "c"}) {
		t.Errorf("labels = %v", labels(terms))
	}
}

func TestDeleteFromText_ParseError(t *testing.T) {
	if _, err := DeleteFromText("(a", "a"); err == nil {
		t.Error("expected parse error")
	}
}
