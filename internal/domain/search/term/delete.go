package term

import (
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// Delete returns a copy of root without the leaves matching label.
// Operators, starts and parentheses left without operands are pruned.
// Deleting a label that is absent returns an equivalent tree.
func Delete(root *query.Node, label string) *query.Node {
	if root.IsEmpty() {
		return &query.Node{}
	}
	c := root.Clone()
	if c.IsLeaf() {
		if matches(c, label) {
			return &query.Node{}
		}
		return c
	}
	pruned, changed := prune(c, label)
	if !changed {
		return pruned
	}
	if pruned == nil {
		return &query.Node{}
	}
	if r := collapse(pruned); r.IsLeaf() || r.IsGroup() {
		return &query.Node{Left: r}
	}
	return collapse(pruned)
}

// DeleteFromText removes label from query text and serializes the result.
func DeleteFromText(text, label string) (string, error) {
	root, err := query.Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse query: %w", err)
	}
	return Delete(root, label).String(), nil
}

func matches(n *query.Node, label string) bool {
	return n.IsLeaf() && (n.Term == label || n.Label() == label)
}

// prune works bottom-up on n in place. Structure is only pruned in subtrees that
// lost a leaf; it returns nil when nothing is left.
func prune(n *query.Node, label string) (*query.Node, bool) {
	changed := false
	if n.Left != nil && matches(n.Left, label) {
		n.Left, changed = nil, true
	}
	if n.Right != nil && matches(n.Right, label) {
		n.Right, changed = nil, true
	}
	if n.Left != nil && !n.Left.IsLeaf() {
		var c bool
		n.Left, c = prune(n.Left, label)
		changed = changed || c
	}
	if n.Right != nil && !n.Right.IsLeaf() {
		var c bool
		n.Right, c = prune(n.Right, label)
		changed = changed || c
	}
	if !changed {
		return n, false
	}
	// The negation belonged to the removed operand.
	if n.Right != nil && n.Right.Right != nil && n.Right.Left == nil && n.Operator.Negates() {
		n.Operator = query.Implicit
	}
	if n.Start != "" && n.Left == nil {
		n.Start = ""
	}
	if n.Operator != "" && (n.Left == nil || n.Right == nil) {
		n.Operator = ""
	}
	if n.Parenthesized && (n.Left == nil || n.Right == nil) && len(n.Leaves()) < 2 {
		n.Parenthesized = false
	}
	if n.Left == nil && n.Right == nil {
		return nil, true
	}
	n.Left, n.Right = collapse(n.Left), collapse(n.Right)
	return n, true
}

// collapse replaces a bare node holding a single operand by that operand.
func collapse(n *query.Node) *query.Node {
	for n != nil && !n.IsLeaf() && (n.Left == nil) != (n.Right == nil) &&
		n.Start == "" && n.Field == "" && n.Prefix == "" && n.Boost == "" && !n.Parenthesized {
		if n.Left != nil {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n
}
