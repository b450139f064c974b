package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// MaxDepth bounds group nesting.
const MaxDepth = 64

// ParseError wraps ErrParse with the byte offset where parsing stopped.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", domain.ErrParse.Error(), e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error { return domain.ErrParse }

// Parse builds a right-leaning query tree from text.
// Blank text yields an empty root node.
func Parse(text string) (*Node, error) {
	p := &parser{src: text}
	p.skipSpace()
	if p.eof() {
		return &Node{}, nil
	}
	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unbalanced parenthesis")
	}
	return n, nil
}

type parser struct {
	src   string
	pos   int
	depth int
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) skipSpace() {
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

// keyword consumes word when it appears as a standalone token.
func (p *parser) keyword(word string) bool {
	if !strings.HasPrefix(p.src[p.pos:], word) {
		return false
	}
	end := p.pos + len(word)
	if end < len(p.src) {
		r, _ := utf8.DecodeRuneInString(p.src[end:])
		if !unicode.IsSpace(r) && r != '(' {
			return false
		}
	}
	p.pos = end
	return true
}

// parseNode reads [NOT] clause [operator node].
func (p *parser) parseNode() (*Node, error) {
	n := &Node{}
	p.skipSpace()
	if p.keyword(string(Not)) {
		n.Start = Not
		p.skipSpace()
	}
	left, err := p.parseClause()
	if err != nil {
		return nil, err
	}
	n.Left = left

	p.skipSpace()
	if p.eof() || p.peek() == ')' {
		return n, nil
	}
	n.Operator = p.parseOperator()
	p.skipSpace()
	if p.eof() || p.peek() == ')' {
		return nil, p.errorf("missing operand after %s", n.Operator)
	}
	right, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if right.Start == "" && right.Right == nil && right.Operator == "" {
		n.Right = right.Left
	} else {
		n.Right = right
	}
	return n, nil
}

func (p *parser) parseOperator() Operator {
	var op Operator
	switch {
	case p.keyword(string(And)):
		op = And
	case p.keyword(string(Or)):
		op = Or
	case p.keyword(string(Not)):
		return Not
	case strings.HasPrefix(p.src[p.pos:], "&&"):
		p.pos += 2
		op = And
	case strings.HasPrefix(p.src[p.pos:], "||"):
		p.pos += 2
		op = Or
	default:
		return Implicit
	}
	save := p.pos
	p.skipSpace()
	if p.keyword(string(Not)) {
		return op + " " + Not
	}
	p.pos = save
	return op
}

// parseClause reads [prefix] [field:] (group | term).
func (p *parser) parseClause() (*Node, error) {
	if p.eof() {
		return nil, p.errorf("unexpected end of query")
	}
	var prefix string
	switch p.peek() {
	case '+', '-', '!':
		if p.pos+1 < len(p.src) {
			next, _ := utf8.DecodeRuneInString(p.src[p.pos+1:])
			if !unicode.IsSpace(next) {
				prefix = p.src[p.pos : p.pos+1]
				p.pos++
			}
		}
	}

	var field string
	if r := p.peek(); r != '(' && r != '"' && r != '/' && r != '[' && r != '{' {
		start := p.pos
		word := p.word(false)
		if !p.eof() && p.peek() == ':' && word != "" {
			p.pos++
			field = word
			if p.eof() || unicode.IsSpace(p.peek()) || p.peek() == ')' {
				return nil, p.errorf("missing value for field %q", field)
			}
		} else {
			p.pos = start
		}
	}

	var n *Node
	var err error
	if p.peek() == '(' {
		n, err = p.parseGroup()
	} else {
		n, err = p.parseTerm(field != "")
	}
	if err != nil {
		return nil, err
	}
	n.Prefix = prefix
	n.Field = field
	return n, nil
}

func (p *parser) parseGroup() (*Node, error) {
	if p.depth >= MaxDepth {
		return nil, p.errorf("groups nested deeper than %d", MaxDepth)
	}
	open := p.pos
	p.pos++
	p.depth++
	p.skipSpace()
	if p.eof() {
		p.pos = open
		return nil, p.errorf("unbalanced parenthesis")
	}
	if p.peek() == ')' {
		return nil, p.errorf("empty group")
	}
	inner, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() || p.peek() != ')' {
		p.pos = open
		return nil, p.errorf("unbalanced parenthesis")
	}
	p.pos++
	p.depth--

	inner.Parenthesized = true
	inner.Boost = p.modifier('^')
	return inner, nil
}

func (p *parser) parseTerm(valueOfField bool) (*Node, error) {
	n := &Node{}
	switch p.peek() {
	case '"':
		term, err := p.delimited('"', '"')
		if err != nil {
			return nil, err
		}
		n.Term, n.Quoted = term, true
	case '/':
		term, err := p.delimited('/', '/')
		if err != nil {
			return nil, err
		}
		n.Term, n.Regex = term, true
	case '[', '{':
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		n.Range = r
	case ')':
		return nil, p.errorf("unbalanced parenthesis")
	default:
		word := p.word(valueOfField)
		if word == "" {
			return nil, p.errorf("unexpected %q", p.peek())
		}
		if word == string(And) || word == string(Or) || word == "&&" || word == "||" {
			return nil, p.errorf("unexpected operator %s", word)
		}
		n.Term = word
	}
	n.Fuzzy = p.modifier('~')
	n.Boost = p.modifier('^')
	return n, nil
}

// word reads a bare term. Backslash escapes are kept verbatim.
func (p *parser) word(allowColon bool) string {
	start := p.pos
	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if r == '\\' {
			p.pos += size
			if !p.eof() {
				_, next := utf8.DecodeRuneInString(p.src[p.pos:])
				p.pos += next
			}
			continue
		}
		if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' || r == '^' || r == '~' {
			break
		}
		if r == ':' && !allowColon {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *parser) delimited(open, closing byte) (string, error) {
	start := p.pos
	p.pos++
	for !p.eof() {
		c := p.src[p.pos]
		if c == '\\' {
			p.pos += 2
			continue
		}
		if c == closing {
			term := p.src[start+1 : p.pos]
			p.pos++
			return term, nil
		}
		p.pos++
	}
	p.pos = start
	if open == '"' {
		return "", p.errorf("unterminated quoted phrase")
	}
	return "", p.errorf("unterminated regular expression")
}

func (p *parser) parseRange() (*Range, error) {
	start := p.pos
	r := &Range{InclusiveMin: p.src[p.pos] == '['}
	p.pos++
	p.skipSpace()
	r.Min = p.rangeBound()
	p.skipSpace()
	if !p.keyword("TO") {
		p.pos = start
		return nil, p.errorf("range requires TO")
	}
	p.skipSpace()
	r.Max = p.rangeBound()
	p.skipSpace()
	if p.eof() || (p.src[p.pos] != ']' && p.src[p.pos] != '}') {
		p.pos = start
		return nil, p.errorf("unterminated range")
	}
	r.InclusiveMax = p.src[p.pos] == ']'
	p.pos++
	if r.Min == "" || r.Max == "" {
		p.pos = start
		return nil, p.errorf("range bounds are required")
	}
	return r, nil
}

func (p *parser) rangeBound() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == ']' || c == '}' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// modifier reads a ~ or ^ suffix with its optional number.
func (p *parser) modifier(sign byte) string {
	if p.eof() || p.src[p.pos] != sign {
		return ""
	}
	start := p.pos
	p.pos++
	for !p.eof() && strings.IndexByte("0123456789.", p.src[p.pos]) >= 0 {
		p.pos++
	}
	return p.src[start:p.pos]
}
