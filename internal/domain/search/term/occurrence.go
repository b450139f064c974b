package term

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/domain/search/highlight"
)

// Fields are the document texts searched for term occurrences.
type Fields struct {
	Content  string
	Metadata string
	Tags     string
}

// Occurrence counts one term in each document field.
// Its position in the slice returned by InDocument is the term color index.
type Occurrence struct {
	Term
	Content  int
	Metadata int
	Tags     int
}

// OutsideContentOnly reports whether the term is found in metadata or tags but not in content.
func (o Occurrence) OutsideContentOnly() bool {
	return o.Content == 0 && (o.Metadata > 0 || o.Tags > 0)
}

// Pattern compiles the case-insensitive matcher of a term.
func Pattern(t Term) (*regexp.Regexp, error) {
	expr := regexp.QuoteMeta(t.Label)
	if t.Regex {
		expr = t.Label
	}
	return regexp.Compile("(?i)" + expr)
}

// CountIn counts the occurrences of t in text. Invalid regular expressions count zero.
func CountIn(t Term, text string) int {
	if text == "" || t.Label == "" {
		return 0
	}
	re, err := Pattern(t)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// InDocument counts terms in every document field, most frequent in content first.
// Terms found only outside the content are moved after the others.
func InDocument(terms []Term, doc Fields) []Occurrence {
	out := make([]Occurrence, 0, len(terms))
	for _, t := range terms {
		out = append(out, Occurrence{
			Term:     t,
			Content:  CountIn(t, doc.Content),
			Metadata: CountIn(t, doc.Metadata),
			Tags:     CountIn(t, doc.Tags),
		})
	}
	slices.SortStableFunc(out, func(a, b Occurrence) int {
		if c := cmp.Compare(b.Content, a.Content); c != 0 {
			return c
		}
		return cmp.Compare(rank(a), rank(b))
	})
	return out
}

func rank(o Occurrence) int {
	if o.OutsideContentOnly() {
		return 1
	}
	return 0
}

// Category is the highlight class of the term at color index i.
func Category(i int) string {
	return "term-" + strconv.Itoa(i)
}

// Marks lists highlight marks for the content occurrences of each term, labelled
// with the term color index. Matches overlapping an earlier mark are dropped.
func Marks(occurrences []Occurrence, text string) []highlight.Mark {
	type span struct{ start, end int }
	var taken []span
	var marks []highlight.Mark
	for i, o := range occurrences {
		if o.Content == 0 || o.Negation {
			continue
		}
		re, err := Pattern(o.Term)
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[0] == loc[1] {
				continue
			}
			overlap := slices.ContainsFunc(taken, func(s span) bool {
				return loc[0] < s.end && s.start < loc[1]
			})
			if overlap {
				continue
			}
			taken = append(taken, span{loc[0], loc[1]})
			marks = append(marks, highlight.Mark{
				Content:  text[loc[0]:loc[1]],
				Index:    utf8.RuneCountInString(text[:loc[0]]),
				Category: Category(i),
			})
		}
	}
	slices.SortFunc(marks, func(a, b highlight.Mark) int { return cmp.Compare(a.Index, b.Index) })
	return marks
}
