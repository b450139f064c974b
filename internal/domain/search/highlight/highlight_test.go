package highlight

import (
	"strings"
	"testing"
)

func TestHighlight_Default(t *testing.T) {
	got := Highlight("say hi to the world", []Mark{{Content: "hi", Index: 4}})
	if want := "say <mark>hi</mark> to the world"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_NoMarks(t *testing.T) {
	if got := Highlight("plain", nil); got != "plain" {
		t.Errorf("Highlight() = %q", got)
	}
	if got := Highlight("", []Mark{{Content: "x", Index: 0}}); got != "" {
		t.Errorf("Highlight(empty) = %q", got)
	}
}

func TestHighlight_SortsMarks(t *testing.T) {
	marks := []Mark{
		{Content: "world", Index: 14},
		{Content: "say", Index: 0},
	}
	got := Highlight("say hi to the world", marks)
	if want := "<mark>say</mark> hi to the <mark>world</mark>"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_CustomFormatters(t *testing.T) {
	marks := []Mark{{Content: "hi", Index: 4, Category: "term-0"}}
	got := Highlight("say hi to <the> world", marks,
		WithMarkFormatter(func(m Mark) string { return "[" + strings.ToUpper(m.Content) + "|" + m.Category + "]" }),
		WithRestFormatter(HTMLEscape),
	)
	if want := "say [HI|term-0] to &lt;the&gt; world"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_RestFormatterAppliesToLeadingSpan(t *testing.T) {
	got := Highlight("<b> hi", []Mark{{Content: "hi", Index: 4}}, WithRestFormatter(HTMLEscape))
	if want := "&lt;b&gt; <mark>hi</mark>"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_ContentLength(t *testing.T) {
	// The displayed content is longer than the two source runes it replaces.
	marks := []Mark{{Content: "hello", Index: 4}}
	got := Highlight("say hi to the world", marks, WithContentLength(func(Mark) int { return 2 }))
	if want := "say <mark>hello</mark> to the world"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_RuneOffsets(t *testing.T) {
	got := Highlight("crème brûlée", []Mark{{Content: "brûlée", Index: 6}})
	if want := "crème <mark>brûlée</mark>"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlight_IgnoresInvalidMarks(t *testing.T) {
	marks := []Mark{
		{Content: "hi", Index: 4},
		{Content: "hi", Index: 4},
		{Content: "x", Index: 100},
		{Content: "y", Index: -1},
	}
	got := Highlight("say hi", marks)
	if want := "say <mark>hi</mark>"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHTMLMark(t *testing.T) {
	if got := HTMLMark(Mark{Content: "a"}); got != "<mark>a</mark>" {
		t.Errorf("HTMLMark() = %q", got)
	}
	if got := HTMLMark(Mark{Content: "a", Category: "term-1"}); got != `<mark class="term-1">a</mark>` {
		t.Errorf("HTMLMark() = %q", got)
	}
}

func TestSliceIndexes(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		indexes []int
		want    []string
	}{
		{"empty text", "", []int{1}, []string{}},
		{"no indexes", "abc", nil, []string{"abc"}},
		{"single", "say hi", []int{4}, []string{"say ", "hi"}},
		{"unsorted with duplicates", "abcdef", []int{4, 2, 2}, []string{"ab", "cd", "ef"}},
		{"out of range", "abc", []int{-1, 1, 3, 10}, []string{"a", "bc"}},
		{"zero", "abc", []int{0}, []string{"", "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SliceIndexes(tt.text, tt.indexes)
			if len(got) != len(tt.want) {
				t.Fatalf("SliceIndexes() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("slice[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAddLocalSearchMarks(t *testing.T) {
	res := AddLocalSearchMarks(`<p class="lead">Lead paragraph with lead</p>`, "lead", false)
	if res.Occurrences != 2 {
		t.Errorf("Occurrences = %d, want 2", res.Occurrences)
	}
	if res.Index != 1 {
		t.Errorf("Index = %d, want 1", res.Index)
	}
	want := `<p class="lead"><mark class="local-search-term">Lead</mark> paragraph with <mark class="local-search-term">lead</mark></p>`
	if res.Content != want {
		t.Errorf("Content = %q, want %q", res.Content, want)
	}
}

func TestAddLocalSearchMarks_Regex(t *testing.T) {
	res := AddLocalSearchMarks("<div>ID 123 and 456</div>", `\d+`, true)
	if res.Occurrences != 2 {
		t.Errorf("Occurrences = %d", res.Occurrences)
	}
}

func TestAddLocalSearchMarks_NoMatch(t *testing.T) {
	content := "<div>nothing here</div>"
	res := AddLocalSearchMarks(content, "absent", false)
	if res.Content != content || res.Index != 0 || res.Occurrences != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestAddLocalSearchMarks_InvalidPattern(t *testing.T) {
	content := "<div>a(b</div>"
	res := AddLocalSearchMarks(content, "(", true)
	if res.Content != content || res.Occurrences != 0 {
		t.Errorf("unexpected result %+v", res)
	}
	// Literal mode escapes the same input.
	res = AddLocalSearchMarks(content, "(", false)
	if res.Occurrences != 1 {
		t.Errorf("Occurrences = %d", res.Occurrences)
	}
}
