// Package syntax holds the parse tree consumed by the query, menu and
// projection engines: an error-tolerant JSON tree with byte-offset spans.
package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the syntactic type tag of a node.
type Kind int

const (
	KindJSONText Kind = iota
	KindObject
	KindArray
	KindProperty
	KindPropertyName
	KindString
	KindNumber
	KindTrue
	KindFalse
	KindNull
	KindError
	KindLBrace
	KindRBrace
	KindLBracket
	KindRBracket
	KindComma
	KindColon
)

var kindNames = [...]string{
	KindJSONText:     "JsonText",
	KindObject:       "Object",
	KindArray:        "Array",
	KindProperty:     "Property",
	KindPropertyName: "PropertyName",
	KindString:       "String",
	KindNumber:       "Number",
	KindTrue:         "True",
	KindFalse:        "False",
	KindNull:         "Null",
	KindError:        "⚠",
	KindLBrace:       "{",
	KindRBrace:       "}",
	KindLBracket:     "[",
	KindRBracket:     "]",
	KindComma:        ",",
	KindColon:        ":",
}

// String returns the type name used by nodeType queries and config files.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsPunctuation reports whether k is one of the structural tokens { } [ ] , :.
func (k Kind) IsPunctuation() bool {
	return k >= KindLBrace && k <= KindColon
}

// IsValue reports whether a node of kind k can stand as a JSON value.
func (k Kind) IsValue() bool {
	switch k {
	case KindObject, KindArray, KindString, KindNumber, KindTrue, KindFalse, KindNull:
		return true
	default:
		return false
	}
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind maps a type name (as returned by Kind.String) back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// Span is a half-open [From, To) byte range.
type Span struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Key renders the span as the "from-to" key used by schema fragment maps.
func (s Span) Key() string {
	return strconv.Itoa(s.From) + "-" + strconv.Itoa(s.To)
}

// Contains reports whether pos lies inside the span, boundaries included.
func (s Span) Contains(pos int) bool {
	return s.From <= pos && pos <= s.To
}

// Overlaps reports whether s and o share at least one byte. An empty span
// overlaps a non-empty one when it sits at or after its start and before
// its end.
func (s Span) Overlaps(o Span) bool {
	switch {
	case s.From == s.To && o.From == o.To:
		return s.From == o.From
	case s.From == s.To:
		return o.From <= s.From && s.From < o.To
	case o.From == o.To:
		return s.From <= o.From && o.From < s.To
	default:
		return s.From < o.To && o.From < s.To
	}
}

// Node is one element of the parse tree. Nodes are recreated on every parse
// and never mutated by the engines.
type Node struct {
	Kind     Kind
	From     int
	To       int
	Parent   *Node
	Children []*Node

	index int
}

// Span returns the node's byte range.
func (n *Node) Span() Span { return Span{From: n.From, To: n.To} }

// Type returns the node's type name.
func (n *Node) Type() string { return n.Kind.String() }

// Text returns the node's slice of src, clamped to src's bounds.
func (n *Node) Text(src string) string {
	from, to := n.From, n.To
	if from < 0 {
		from = 0
	}
	if to > len(src) {
		to = len(src)
	}
	if from >= to {
		return ""
	}
	return src[from:to]
}

func (n *Node) FirstChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

func (n *Node) LastChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[len(n.Children)-1]
}

func (n *Node) PrevSibling() *Node {
	if n.Parent == nil || n.index == 0 {
		return nil
	}
	return n.Parent.Children[n.index-1]
}

func (n *Node) NextSibling() *Node {
	if n.Parent == nil || n.index+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[n.index+1]
}

// Values returns the children that are neither punctuation nor error
// placeholders: the elements of an array, the properties of an object.
func (n *Node) Values() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Kind.IsPunctuation() || c.Kind == KindError {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%d,%d)", n.Kind, n.From, n.To)
}

func (n *Node) add(child *Node) {
	child.Parent = n
	child.index = len(n.Children)
	n.Children = append(n.Children, child)
	if child.To > n.To {
		n.To = child.To
	}
}

// Walk visits n and its descendants in document order. When enter returns
// false the node's subtree is skipped.
func Walk(n *Node, enter func(*Node) bool) {
	if n == nil {
		return
	}
	if !enter(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, enter)
	}
}

// Tree pairs a parsed root with the text it was parsed from.
type Tree struct {
	Root *Node
	Text string
}

// NodeAt returns the smallest node enclosing pos. A caret touching the
// boundary of an error placeholder resolves to the placeholder; otherwise
// nodes ending at pos are preferred over nodes starting there.
func (t *Tree) NodeAt(pos int) *Node {
	if t == nil || t.Root == nil {
		return nil
	}
	n := t.Root
	for {
		next := childAt(n, pos)
		if next == nil {
			return n
		}
		n = next
	}
}

func childAt(n *Node, pos int) *Node {
	for _, c := range n.Children {
		if c.Kind == KindError && (c.From == pos || c.To == pos) {
			return c
		}
	}
	for _, c := range n.Children {
		if c.From < pos && pos <= c.To {
			return c
		}
	}
	for _, c := range n.Children {
		if c.From == pos && c.To > pos {
			return c
		}
	}
	return nil
}

// Unquote strips JSON string quoting, falling back to trimming a single
// quote character from each end when the literal is malformed.
func Unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
