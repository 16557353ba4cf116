package menu

import (
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

func replaceNode(n *syntax.Node, insert string) []Edit {
	return []Edit{{From: n.From, To: n.To, Insert: insert}}
}

// removeMember deletes member from its container together with one
// adjacent comma.
func removeMember(container, member *syntax.Node) []Edit {
	siblings := container.Values()
	i := indexOf(siblings, member)
	switch {
	case i < 0:
		return nil
	case i+1 < len(siblings):
		return []Edit{{From: member.From, To: siblings[i+1].From}}
	case i > 0:
		return []Edit{{From: siblings[i-1].To, To: member.To}}
	default:
		return []Edit{{From: member.From, To: member.To}}
	}
}

// swapWith exchanges member's text with the sibling offset positions away.
func swapWith(container, member *syntax.Node, text string, offset int) []Edit {
	siblings := container.Values()
	i := indexOf(siblings, member)
	j := i + offset
	if i < 0 || j < 0 || j >= len(siblings) {
		return nil
	}
	other := siblings[j]
	return []Edit{
		{From: member.From, To: member.To, Insert: other.Text(text)},
		{From: other.From, To: other.To, Insert: member.Text(text)},
	}
}

// appendValue inserts literal as the last element of arr.
func appendValue(arr *syntax.Node, literal string) []Edit {
	values := arr.Values()
	if len(values) == 0 {
		at := arr.From + 1
		return []Edit{{From: at, To: at, Insert: literal}}
	}
	at := values[len(values)-1].To
	return []Edit{{From: at, To: at, Insert: ", " + literal}}
}

// prependField inserts a "key": value pair as the first property of obj.
func prependField(obj *syntax.Node, key, literal string) []Edit {
	at := obj.From + 1
	insert := schema.Literal(key) + ": " + literal
	if len(obj.Values()) > 0 {
		insert += ", "
	}
	return []Edit{{From: at, To: at, Insert: insert}}
}

// addFieldTemplate is the free-input template for adding a field to obj.
func addFieldTemplate(obj *syntax.Node) string {
	if len(obj.Values()) > 0 {
		return `{{quote .Input}}: "", `
	}
	return `{{quote .Input}}: ""`
}

func indexOf(nodes []*syntax.Node, n *syntax.Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}
