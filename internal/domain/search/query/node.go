package query

import "strings"

// Operator joins two operands of a Node, or negates the left operand when used as Start.
type Operator string

// Query language operators.
const (
	Implicit Operator = "<implicit>"
	And      Operator = "AND"
	Or       Operator = "OR"
	Not      Operator = "NOT"
	AndNot   Operator = "AND NOT"
	OrNot    Operator = "OR NOT"
)

// Negates reports whether the operator negates its right operand.
func (o Operator) Negates() bool {
	return strings.HasSuffix(string(o), string(Not))
}

// Leaf prefixes.
const (
	PrefixMust  = "+"
	PrefixMinus = "-"
	PrefixBang  = "!"
)

// Wildcard matches every document.
const Wildcard = "*"

// Range is an interval term such as [a TO b] or {a TO b}.
type Range struct {
	Min          string
	Max          string
	InclusiveMin bool
	InclusiveMax bool
}

// Node is an element of the query tree. A Node with neither Left nor Right is a leaf
// carrying a term (or range); otherwise it joins its operands with Operator.
//
// The parser produces right-leaning trees: operator chains continue through Right,
// and a compound Left is always a parenthesized or field-scoped group.
type Node struct {
	Left          *Node
	Right         *Node
	Operator      Operator
	Start         Operator
	Parenthesized bool

	// Field scopes a leaf or a group. Empty means the default field.
	Field  string
	Prefix string
	Boost  string

	// Leaf payload. Term keeps escape sequences as typed.
	Term   string
	Quoted bool
	Regex  bool
	Fuzzy  string
	Range  *Range
}

// IsLeaf reports whether the node has no operands.
func (n *Node) IsLeaf() bool {
	return n != nil && n.Left == nil && n.Right == nil
}

// IsEmpty reports whether the node carries neither operands nor a term.
func (n *Node) IsEmpty() bool {
	return n == nil || (n.IsLeaf() && n.Term == "" && n.Range == nil)
}

// IsGroup reports whether the node is a compound scoped by parentheses or a field.
func (n *Node) IsGroup() bool {
	return n != nil && !n.IsLeaf() && (n.Parenthesized || n.Field != "")
}

// Negated reports whether the leaf or group prefix excludes it.
func (n *Node) Negated() bool {
	return n != nil && (n.Prefix == PrefixMinus || n.Prefix == PrefixBang)
}

// Label returns the term with escape sequences resolved.
func (n *Node) Label() string {
	if n == nil {
		return ""
	}
	if !strings.ContainsRune(n.Term, '\\') {
		return n.Term
	}
	var b strings.Builder
	escaped := false
	for _, r := range n.Term {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// Clone returns a deep copy of the tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Left = n.Left.Clone()
	c.Right = n.Right.Clone()
	if n.Range != nil {
		r := *n.Range
		c.Range = &r
	}
	return &c
}

// Leaves returns the leaf nodes in reading order.
func (n *Node) Leaves() []*Node {
	if n.IsEmpty() {
		return nil
	}
	if n.IsLeaf() {
		return []*Node{n}
	}
	return append(n.Left.Leaves(), n.Right.Leaves()...)
}

// String serializes the tree back to query text.
func (n *Node) String() string {
	if n.IsEmpty() {
		return ""
	}
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n.IsLeaf() {
		n.writeLeaf(b)
		return
	}
	if n.Start != "" {
		b.WriteString(string(n.Start))
		b.WriteByte(' ')
	}
	b.WriteString(n.Prefix)
	if n.Field != "" {
		b.WriteString(n.Field)
		b.WriteByte(':')
	}
	paren := n.Parenthesized || (n.Field != "" && len(n.Leaves()) > 1) || (n.Prefix != "" && len(n.Leaves()) > 1)
	if paren {
		b.WriteByte('(')
	}
	left, right := !n.Left.IsEmpty(), !n.Right.IsEmpty()
	if left {
		n.Left.write(b)
	}
	if left && right {
		if n.Operator == "" || n.Operator == Implicit {
			b.WriteByte(' ')
		} else {
			b.WriteByte(' ')
			b.WriteString(string(n.Operator))
			b.WriteByte(' ')
		}
	}
	if right {
		n.Right.write(b)
	}
	if paren {
		b.WriteByte(')')
	}
	b.WriteString(n.Boost)
}

func (n *Node) writeLeaf(b *strings.Builder) {
	b.WriteString(n.Prefix)
	if n.Field != "" {
		b.WriteString(n.Field)
		b.WriteByte(':')
	}
	switch {
	case n.Range != nil:
		if n.Range.InclusiveMin {
			b.WriteByte('[')
		} else {
			b.WriteByte('{')
		}
		b.WriteString(n.Range.Min)
		b.WriteString(" TO ")
		b.WriteString(n.Range.Max)
		if n.Range.InclusiveMax {
			b.WriteByte(']')
		} else {
			b.WriteByte('}')
		}
	case n.Quoted:
		b.WriteByte('"')
		b.WriteString(n.Term)
		b.WriteByte('"')
	case n.Regex:
		b.WriteByte('/')
		b.WriteString(n.Term)
		b.WriteByte('/')
	default:
		b.WriteString(n.Term)
	}
	b.WriteString(n.Fuzzy)
	b.WriteString(n.Boost)
}
