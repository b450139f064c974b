// Package highlight inserts term marks into document text.
//
// Offsets are counted in runes. Marks must not overlap; a mark that starts
// inside the span of a previous one is cut at the boundary.
package highlight

import (
	"cmp"
	"html"
	"slices"
	"strings"
	"unicode/utf8"
)

// Mark is a span of text to wrap, starting at rune offset Index.
type Mark struct {
	Content  string
	Index    int
	Category string
}

// Formatter renders a mark.
type Formatter func(Mark) string

// RestFormatter renders an unmarked span.
type RestFormatter func(string) string

// ContentLength returns how many runes of source text a mark covers.
type ContentLength func(Mark) int

type options struct {
	mark    Formatter
	rest    RestFormatter
	content ContentLength
}

// Option configures Highlight.
type Option func(*options)

// WithMarkFormatter replaces the default <mark> rendering.
func WithMarkFormatter(f Formatter) Option {
	return func(o *options) { o.mark = f }
}

// WithRestFormatter transforms every unmarked span, for instance to escape it.
func WithRestFormatter(f RestFormatter) Option {
	return func(o *options) { o.rest = f }
}

// WithContentLength sets the source length of marks whose display differs from the match.
func WithContentLength(f ContentLength) Option {
	return func(o *options) { o.content = f }
}

// HTMLMark wraps the mark content in a <mark> element, with its category as class.
func HTMLMark(m Mark) string {
	if m.Category == "" {
		return "<mark>" + m.Content + "</mark>"
	}
	return `<mark class="` + html.EscapeString(m.Category) + `">` + m.Content + "</mark>"
}

// HTMLEscape escapes an unmarked span for HTML output.
func HTMLEscape(s string) string { return html.EscapeString(s) }

func defaultOptions() options {
	return options{
		mark:    func(m Mark) string { return "<mark>" + m.Content + "</mark>" },
		rest:    func(s string) string { return s },
		content: func(m Mark) int { return utf8.RuneCountInString(m.Content) },
	}
}

// Highlight renders text with marks inserted at their offsets.
// Marks out of range or sharing an offset with an earlier mark are ignored.
func Highlight(text string, marks []Mark, opts ...Option) string {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	runes := []rune(text)
	sorted := usable(marks, len(runes))
	if len(sorted) == 0 {
		return o.rest(text)
	}

	var b strings.Builder
	b.WriteString(o.rest(string(runes[:sorted[0].Index])))
	for i, m := range sorted {
		end := len(runes)
		if i+1 < len(sorted) {
			end = sorted[i+1].Index
		}
		skip := min(m.Index+max(o.content(m), 0), end)
		b.WriteString(o.mark(m))
		b.WriteString(o.rest(string(runes[skip:end])))
	}
	return b.String()
}

// SliceIndexes cuts text at the given rune offsets. Offsets are deduplicated and
// sorted; those outside the text are ignored. Empty text yields no slices.
func SliceIndexes(text string, indexes []int) []string {
	if text == "" {
		return []string{}
	}
	runes := []rune(text)
	ordered := slices.Clone(indexes)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	out := make([]string, 0, len(ordered)+1)
	current := 0
	for _, idx := range ordered {
		if idx < 0 || idx >= len(runes) {
			continue
		}
		out = append(out, string(runes[current:idx]))
		current = idx
	}
	return append(out, string(runes[current:]))
}

func usable(marks []Mark, length int) []Mark {
	sorted := make([]Mark, 0, len(marks))
	for _, m := range marks {
		if m.Index >= 0 && m.Index < length {
			sorted = append(sorted, m)
		}
	}
	slices.SortStableFunc(sorted, func(a, b Mark) int { return cmp.Compare(a.Index, b.Index) })
	return slices.CompactFunc(sorted, func(a, b Mark) bool { return a.Index == b.Index })
}
