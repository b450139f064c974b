// Package term derives flat search terms from a parsed query tree.
//
// Extraction expects the right-leaning shape produced by query.Parse: operator
// chains continue through Right and every compound Left is a group. Trees built
// by hand that break this shape are rejected with domain.ErrNotRightLeaning.
package term

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// ContentField is the document body field.
const ContentField = "content"

// Term is a single search term found in a query.
type Term struct {
	// Field is empty for the default search fields.
	Field    string
	Label    string
	Negation bool
	Regex    bool
}

// IsContent reports whether the term targets document content.
func (t Term) IsContent() bool {
	return t.Field == "" || t.Field == ContentField
}

type scope struct {
	negated bool
	field   string
}

type extractor struct {
	terms []Term
}

// Extract lists the terms of root in reading order, deduplicated by label.
// Wildcard and empty terms are skipped.
func Extract(root *query.Node) ([]Term, error) {
	if root.IsEmpty() {
		return []Term{}, nil
	}
	e := &extractor{terms: []Term{}}
	if root.IsLeaf() {
		e.add(root, scope{negated: root.Negated()})
		return e.terms, nil
	}
	if err := e.walk(root, scope{}, ""); err != nil {
		return nil, err
	}
	return e.terms, nil
}

// Parse extracts the terms of query text.
func Parse(text string) ([]Term, error) {
	root, err := query.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return Extract(root)
}

// Content keeps the terms that apply to document content.
func Content(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if t.IsContent() {
			out = append(out, t)
		}
	}
	return out
}

// walk visits the left operand of n with the node's own start, then either the right
// leaf or the right chain carrying op for negation.
func (e *extractor) walk(n *query.Node, s scope, op query.Operator) error {
	if n.Left != nil {
		left := s
		left.negated = s.negated || n.Start == query.Not || op.Negates()
		if err := e.visit(n.Left, left, true); err != nil {
			return err
		}
	}
	if n.Right == nil {
		return nil
	}
	if n.Right.IsLeaf() || n.Right.IsGroup() {
		right := s
		right.negated = s.negated || n.Operator.Negates()
		return e.visit(n.Right, right, false)
	}
	return e.walk(n.Right, s, n.Operator)
}

func (e *extractor) visit(n *query.Node, s scope, isLeft bool) error {
	if n.IsLeaf() {
		e.add(n, s)
		return nil
	}
	if isLeft && !n.IsGroup() {
		return fmt.Errorf("%w: ungrouped compound left operand", domain.ErrNotRightLeaning)
	}
	inner := scope{negated: s.negated || n.Negated(), field: s.field}
	if n.Field != "" {
		inner.field = n.Field
	}
	return e.walk(n, inner, "")
}

func (e *extractor) add(n *query.Node, s scope) {
	label := n.Label()
	if label == "" || label == query.Wildcard {
		return
	}
	if slices.ContainsFunc(e.terms, func(t Term) bool { return t.Label == label }) {
		return
	}
	field := n.Field
	if field == "" {
		field = s.field
	}
	e.terms = append(e.terms, Term{
		Field:    field,
		Label:    label,
		Negation: s.negated || n.Negated(),
		Regex:    n.Regex,
	})
}
