package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindsOf(nodes []*Node) []Kind {
	out := make([]Kind, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Kind)
	}
	return out
}

func TestParseObject(t *testing.T) {
	src := `{"a": 1, "b": [true, null]}`
	tree := Parse(src)
	require.Len(t, tree.Root.Children, 1)

	obj := tree.Root.Children[0]
	assert.Equal(t, KindObject, obj.Kind)
	assert.Equal(t, Span{From: 0, To: len(src)}, obj.Span())
	assert.Equal(t, []Kind{KindLBrace, KindProperty, KindComma, KindProperty, KindRBrace}, kindsOf(obj.Children))

	first := obj.Children[1]
	assert.Equal(t, "a", PropertyKey(first, src))
	value := PropertyValue(first)
	require.NotNil(t, value)
	assert.Equal(t, KindNumber, value.Kind)
	assert.Equal(t, "1", value.Text(src))

	arr := PropertyValue(obj.Children[3])
	require.NotNil(t, arr)
	assert.Equal(t, KindArray, arr.Kind)
	assert.Equal(t, []Kind{KindTrue, KindNull}, kindsOf(arr.Values()))
}

func TestParseRecoversFromErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "missing value", src: `{"a": }`},
		{name: "missing colon", src: `{"a" 1}`},
		{name: "bare word", src: `[1, nope]`},
		{name: "unterminated", src: `{"a": [1, 2`},
		{name: "trailing junk", src: `{} }`},
		{name: "stray bracket in object", src: `{]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Parse(tt.src)
			require.NotNil(t, tree.Root)
			found := false
			Walk(tree.Root, func(n *Node) bool {
				if n.Kind == KindError {
					found = true
				}
				assert.LessOrEqual(t, n.From, n.To)
				assert.LessOrEqual(t, n.To, len(tt.src))
				return true
			})
			if tt.name != "unterminated" {
				assert.True(t, found, "expected an error placeholder")
			}
		})
	}
}

func TestMissingValueIsZeroWidthPlaceholder(t *testing.T) {
	src := `{"a": }`
	tree := Parse(src)
	prop := tree.Root.Children[0].Children[1]
	require.Equal(t, KindProperty, prop.Kind)
	last := prop.LastChild()
	assert.Equal(t, KindError, last.Kind)
	assert.Equal(t, last.From, last.To)
	assert.Nil(t, PropertyValue(prop))
}

func TestNodeAt(t *testing.T) {
	src := `{"a": 12, "b": "x"}`
	tree := Parse(src)

	assert.Equal(t, KindNumber, tree.NodeAt(7).Kind, "inside number")
	assert.Equal(t, KindNumber, tree.NodeAt(8).Kind, "caret at end of number")
	assert.Equal(t, KindPropertyName, tree.NodeAt(2).Kind)
	assert.Equal(t, KindLBrace, tree.NodeAt(0).Kind)
	assert.Equal(t, KindRBrace, tree.NodeAt(len(src)).Kind)
}

func TestNodeAtPrefersErrorPlaceholder(t *testing.T) {
	src := `{"a": }`
	tree := Parse(src)
	n := tree.NodeAt(6)
	assert.Equal(t, KindError, n.Kind)
}

func TestStructuralAndSchemaTargets(t *testing.T) {
	src := `{"a": [1, 2]}`
	tree := Parse(src)

	comma := tree.NodeAt(9)
	require.Equal(t, KindComma, comma.Kind)
	assert.Equal(t, KindArray, StructuralTarget(comma).Kind)

	name := tree.NodeAt(2)
	require.Equal(t, KindPropertyName, name.Kind)
	assert.Equal(t, KindPropertyName, StructuralTarget(name).Kind)
	assert.Equal(t, KindArray, SchemaTarget(name).Kind)
	assert.Equal(t, KindObject, LogicalParent(name).Kind)
	assert.Equal(t, KindProperty, MemberNode(name).Kind)
}

func TestKindsRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("Nope")
	assert.False(t, ok)
}

func TestWalkSkipsSubtree(t *testing.T) {
	tree := Parse(`{"a": {"b": 1}}`)
	var visited []Kind
	Walk(tree.Root, func(n *Node) bool {
		visited = append(visited, n.Kind)
		return n.Kind != KindProperty
	})
	assert.NotContains(t, visited, KindNumber)
	assert.Contains(t, visited, KindProperty)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "a\"b", Unquote(`"a\"b"`))
	assert.Equal(t, "open", Unquote(`"open`))
}

func TestSpanOverlaps(t *testing.T) {
	target := Span{From: 6, To: 10}
	tests := []struct {
		name string
		span Span
		want bool
	}{
		{name: "same", span: Span{From: 6, To: 10}, want: true},
		{name: "enclosing", span: Span{From: 0, To: 20}, want: true},
		{name: "starts at end", span: Span{From: 10, To: 11}, want: false},
		{name: "ends at start", span: Span{From: 4, To: 6}, want: false},
		{name: "empty at start", span: Span{From: 6, To: 6}, want: true},
		{name: "empty inside", span: Span{From: 8, To: 8}, want: true},
		{name: "empty at end", span: Span{From: 10, To: 10}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.span.Overlaps(target))
			assert.Equal(t, tt.want, target.Overlaps(tt.span))
		})
	}
	assert.True(t, Span{From: 3, To: 3}.Overlaps(Span{From: 3, To: 3}))
}
