package search

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

const (
	matchAll       = "*"
	metadataField  = "metadata"
	metadataPrefix = "metadata."
	contentField   = "content"
)

// translator renders query trees in RediSearch DIALECT 2 syntax.
type translator struct {
	types map[string]db.IndexFieldType
}

// translate parses text and renders it over the default fields.
// Text that does not parse is searched as escaped literal words.
func (t translator) translate(text string, defaults []string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return matchAll, nil
	}
	root, err := query.Parse(text)
	if err != nil {
		return t.literal(text, defaults), err
	}
	if root.IsEmpty() {
		return matchAll, nil
	}
	return t.node(root, "", t.defaultFields(defaults)), nil
}

// literal searches every word of text as an escaped term.
func (t translator) literal(text string, defaults []string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = db.EscapeQuery(w)
	}
	if len(words) == 0 {
		return matchAll
	}
	return t.fieldClause(t.defaultFields(defaults), "("+strings.Join(words, " ")+")", nil)
}

func (t translator) defaultFields(defaults []string) []string {
	var out []string
	for _, f := range defaults {
		if _, ok := t.types[f]; ok {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{contentField}
	}
	return out
}

func (t translator) node(n *query.Node, field string, defaults []string) string {
	if n.IsEmpty() {
		return ""
	}
	if n.Field != "" {
		field = n.Field
	}
	if n.IsLeaf() {
		return modify(n, t.leaf(n, field, defaults))
	}

	left := t.node(n.Left, field, defaults)
	if n.Start.Negates() && left != "" {
		left = negate(left)
	}
	right := t.node(n.Right, field, defaults)
	return modify(n, join(left, right, n.Operator))
}

func join(left, right string, op query.Operator) string {
	switch {
	case right == "":
		return left
	case left == "":
		if op.Negates() {
			return negate(right)
		}
		return right
	}
	switch op {
	case query.Or:
		if left == matchAll || right == matchAll {
			return matchAll
		}
		return "(" + left + " | " + right + ")"
	case query.OrNot:
		return "(" + left + " | " + negate(right) + ")"
	case query.Not, query.AndNot:
		return "(" + left + " " + negate(right) + ")"
	default:
		if left == matchAll {
			return right
		}
		if right == matchAll {
			return left
		}
		return "(" + left + " " + right + ")"
	}
}

func negate(clause string) string {
	if clause == matchAll {
		return "-" + matchAll
	}
	return "-" + clause
}

// modify applies the negation prefix and boost of n.
func modify(n *query.Node, clause string) string {
	if clause == "" {
		return ""
	}
	if w, err := strconv.ParseFloat(strings.TrimPrefix(n.Boost, "^"), 64); err == nil && n.Boost != "" {
		clause = "(" + clause + ") => { $weight: " + strconv.FormatFloat(w, 'f', -1, 64) + "; }"
	}
	if n.Negated() {
		return negate(clause)
	}
	return clause
}

func (t translator) leaf(n *query.Node, field string, defaults []string) string {
	fields := defaults
	if field != "" {
		fields = []string{t.resolve(field, defaults)}
	}
	if n.Range != nil {
		return t.rangeClause(fields, *n.Range)
	}
	label := n.Label()
	if label == query.Wildcard {
		return matchAll
	}
	return t.fieldClause(fields, textTerm(n, label), n)
}

// resolve maps a query field to an indexed field.
func (t translator) resolve(field string, defaults []string) string {
	if _, ok := t.types[field]; ok {
		return field
	}
	if strings.HasPrefix(field, metadataPrefix) {
		return metadataField
	}
	return defaults[0]
}

// fieldClause ORs term over fields, grouping TEXT fields in one @a|b: clause.
// n is nil for literal text, which only targets TEXT fields.
func (t translator) fieldClause(fields []string, text string, n *query.Node) string {
	var textFields, parts []string
	for _, f := range fields {
		switch t.types[f] {
		case db.IndexFieldText:
			textFields = append(textFields, f)
		case db.IndexFieldTag:
			if n != nil {
				parts = append(parts, "@"+f+":{"+tagTerm(n)+"}")
			}
		case db.IndexFieldNumeric:
			if n == nil {
				continue
			}
			if v, ok := number(n.Label()); ok {
				s := formatNumber(v)
				parts = append(parts, "@"+f+":["+s+" "+s+"]")
			}
		}
	}
	if len(textFields) > 0 {
		parts = append([]string{"@" + strings.Join(textFields, "|") + ":" + text}, parts...)
	}
	switch len(parts) {
	case 0:
		return "@" + contentField + ":" + text
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, " | ") + ")"
	}
}

func textTerm(n *query.Node, label string) string {
	switch {
	case n.Quoted:
		return `"` + db.EscapeQuery(label) + `"`
	case n.Regex:
		return wildcard(regexToWildcard(label))
	case n.Fuzzy != "":
		d := 1
		if n.Fuzzy == "~2" {
			d = 2
		}
		pad := strings.Repeat("%", d)
		return pad + db.EscapeQuery(label) + pad
	case strings.ContainsAny(strings.TrimSuffix(label, "*"), "*?"):
		return wildcard(label)
	case strings.HasSuffix(label, "*"):
		return db.EscapeQuery(strings.TrimSuffix(label, "*")) + "*"
	default:
		return db.EscapeQuery(label)
	}
}

func tagTerm(n *query.Node) string {
	label := n.Label()
	if base, ok := strings.CutSuffix(label, "*"); ok && !n.Quoted && base != "" {
		return db.EscapeTag(base) + "*"
	}
	return db.EscapeTag(label)
}

func wildcard(pattern string) string {
	return "w'" + strings.ReplaceAll(pattern, "'", `\'`) + "'"
}

// regexToWildcard approximates a regular expression with a wildcard pattern.
func regexToWildcard(re string) string {
	re = strings.TrimPrefix(re, "^")
	re = strings.TrimSuffix(re, "$")
	var b strings.Builder
	for i := 0; i < len(re); i++ {
		c := re[i]
		switch {
		case c == '.' && i+1 < len(re) && (re[i+1] == '*' || re[i+1] == '+'):
			b.WriteByte('*')
			i++
		case c == '.':
			b.WriteByte('?')
		case c == '\\' && i+1 < len(re):
			b.WriteByte(re[i+1])
			i++
		case strings.IndexByte("()[]{}|+*?", c) >= 0:
			b.WriteByte('*')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (t translator) rangeClause(fields []string, r query.Range) string {
	var parts []string
	for _, f := range fields {
		if t.types[f] != db.IndexFieldNumeric {
			continue
		}
		parts = append(parts, "@"+f+":["+bound(r.Min, r.InclusiveMin, "-inf")+" "+bound(r.Max, r.InclusiveMax, "+inf")+"]")
	}
	switch len(parts) {
	case 0:
		return matchAll
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, " | ") + ")"
	}
}

func bound(v string, inclusive bool, open string) string {
	n, ok := number(v)
	if !ok {
		return open
	}
	s := formatNumber(n)
	if inclusive {
		return s
	}
	return "(" + s
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "2006-01"}

// number reads a numeric bound or a date, dates as epoch milliseconds.
func number(v string) (float64, bool) {
	if v == "" || v == matchAll {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) {
		return f, true
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return float64(ts.UnixMilli()), true
		}
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
