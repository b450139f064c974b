package term

import (
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain/search/highlight"
)

func TestInDocument_OrdersByContentCount(t *testing.T) {
	terms := mustTerms(t, "result test document other")
	got := InDocument(terms, Fields{Content: "document result test document test test"})

	want := []struct {
		label string
		count int
	}{
		{"test", 3},
		{"document", 2},
		{"result", 1},
		{"other", 0},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, w := range want {
		if got[i].Label != w.label || got[i].Content != w.count {
			t.Errorf("[%d] = %s(%d), want %s(%d)", i, got[i].Label, got[i].Content, w.label, w.count)
		}
	}
}

func TestInDocument_OutsideContentLast(t *testing.T) {
	terms := []Term{{Label: "meta"}, {Label: "missing"}, {Label: "body"}, {Label: "tagged"}}
	got := InDocument(terms, Fields{
		Content:  "body text",
		Metadata: "meta author",
		Tags:     "tagged",
	})
	order := []string{"body", "missing", "meta", "tagged"}
	for i, label := range order {
		if got[i].Label != label {
			t.Errorf("[%d] = %s, want %s", i, got[i].Label, label)
		}
	}
	if got[2].Metadata != 1 || got[3].Tags != 1 {
		t.Errorf("outside counts = %+v", got[2:])
	}
	if !got[2].OutsideContentOnly() || got[1].OutsideContentOnly() {
		t.Error("OutsideContentOnly mismatch")
	}
}

func TestCountIn(t *testing.T) {
	tests := []struct {
		name string
		term Term
		text string
		want int
	}{
		{"case insensitive", Term{Label: "Paris"}, "paris PARIS Paris", 3},
		{"literal metacharacters", Term{Label: "a.b"}, "a.b axb", 1},
		{"regex", Term{Label: "a.b", Regex: true}, "a.b axb", 2},
		{"invalid regex", Term{Label: "(", Regex: true}, "(((", 0},
		{"empty text", Term{Label: "x"}, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountIn(tt.term, tt.text); got != tt.want {
				t.Errorf("CountIn() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMarks(t *testing.T) {
	text := "Test the result of a test"
	occ := InDocument([]Term{{Label: "result"}, {Label: "test"}, {Label: "absent"}, {Label: "the", Negation: true}}, Fields{Content: text})
	marks := Marks(occ, text)
	want := []highlight.Mark{
		{Content: "Test", Index: 0, Category: "term-0"},
		{Content: "result", Index: 9, Category: "term-1"},
		{Content: "test", Index: 21, Category: "term-0"},
	}
	if len(marks) != len(want) {
		t.Fatalf("marks = %+v", marks)
	}
	for i := range want {
		if marks[i] != want[i] {
			t.Errorf("marks[%d] = %+v, want %+v", i, marks[i], want[i])
		}
	}
	got := highlight.Highlight(text, marks, highlight.WithMarkFormatter(highlight.HTMLMark))
	expected := `<mark class="term-0">Test</mark> the <mark class="term-1">result</mark> of a <mark class="term-0">test</mark>`
	if got != expected {
		t.Errorf("Highlight() = %q", got)
	}
}

func TestMarks_SkipsOverlaps(t *testing.T) {
	text := "database"
	occ := InDocument([]Term{{Label: "database"}, {Label: "base"}}, Fields{Content: text})
	marks := Marks(occ, text)
	if len(marks) != 1 || marks[0].Content != "database" {
		t.Errorf("marks = %+v", marks)
	}
}
