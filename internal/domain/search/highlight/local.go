package highlight

import (
	"bytes"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LocalSearchClass is the class of marks added by AddLocalSearchMarks.
const LocalSearchClass = "local-search-term"

// LocalSearch is the outcome of searching within one rendered document.
type LocalSearch struct {
	Content string
	// Index is the 1-based position of the focused occurrence, 0 without occurrences.
	Index       int
	Occurrences int
}

// AddLocalSearchMarks wraps every occurrence of label found in the text nodes of an
// HTML fragment. Tags and attributes are never matched. When nothing matches or the
// fragment cannot be processed, the content is returned untouched.
func AddLocalSearchMarks(content, label string, isRegex bool) LocalSearch {
	unchanged := LocalSearch{Content: content}
	if label == "" {
		return unchanged
	}
	pattern := regexp.QuoteMeta(label)
	if isRegex {
		pattern = label
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return unchanged
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return unchanged
	}
	body := findBody(doc)
	if body == nil {
		return unchanged
	}

	var texts []*html.Node
	collectText(body, &texts)
	count := 0
	for _, t := range texts {
		count += markText(t, re)
	}
	if count == 0 {
		return unchanged
	}

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return LocalSearch{Content: content, Index: 1, Occurrences: count}
		}
	}
	return LocalSearch{Content: buf.String(), Index: 1, Occurrences: count}
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func collectText(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
		return
	}
	if n.Type == html.TextNode {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

// markText splits a text node around the matches of re and returns the match count.
func markText(t *html.Node, re *regexp.Regexp) int {
	locs := slices.DeleteFunc(re.FindAllStringIndex(t.Data, -1), func(loc []int) bool {
		return loc[0] == loc[1]
	})
	if len(locs) == 0 {
		return 0
	}
	parent := t.Parent
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: t.Data[last:loc[0]]}, t)
		}
		mark := &html.Node{
			Type:     html.ElementNode,
			Data:     "mark",
			DataAtom: atom.Mark,
			Attr:     []html.Attribute{{Key: "class", Val: LocalSearchClass}},
		}
		mark.AppendChild(&html.Node{Type: html.TextNode, Data: t.Data[loc[0]:loc[1]]})
		parent.InsertBefore(mark, t)
		last = loc[1]
	}
	if last < len(t.Data) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: t.Data[last:]}, t)
	}
	parent.RemoveChild(t)
	return len(locs)
}
