package formatter

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// TreeOptions controls parse tree output.
type TreeOptions struct {
	// NoValues hides leaf text (structure only).
	NoValues bool
	// Punctuation includes brace, bracket, comma and colon tokens.
	Punctuation bool
	// MaxDepth limits tree depth (0 = unlimited).
	MaxDepth int
	// MaxStringLen truncates leaf text; 0 or negative means unlimited.
	MaxStringLen int
}

// FormatTree renders a parse tree as an ASCII tree. Each line shows the
// node type and its span; leaves also show their source text.
func FormatTree(t *syntax.Tree, opts TreeOptions) string {
	if t == nil || t.Root == nil {
		return ""
	}
	root := treeprint.NewWithRoot(treeLabel(t.Root, t.Text, opts))
	for _, c := range t.Root.Children {
		addTreeNode(root, c, t.Text, opts, 1)
	}
	return root.String()
}

func addTreeNode(branch treeprint.Tree, n *syntax.Node, text string, opts TreeOptions, depth int) {
	if n.Kind.IsPunctuation() && !opts.Punctuation {
		return
	}
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		branch.AddNode("...")
		return
	}
	label := treeLabel(n, text, opts)
	if len(n.Children) == 0 {
		branch.AddNode(label)
		return
	}
	child := branch.AddBranch(label)
	for _, c := range n.Children {
		addTreeNode(child, c, text, opts, depth+1)
	}
}

func treeLabel(n *syntax.Node, text string, opts TreeOptions) string {
	label := fmt.Sprintf("%s %s", n.Type(), n.Span().Key())
	if opts.NoValues || len(n.Children) > 0 || n.Kind.IsPunctuation() {
		return label
	}
	v := n.Text(text)
	if v == "" {
		return label
	}
	if opts.MaxStringLen > 0 {
		v = truncate(v, opts.MaxStringLen)
	}
	return label + ": " + v
}
