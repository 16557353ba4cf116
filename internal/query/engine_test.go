package query

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcnuttandrew/prong-sub001/internal/keypath"
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

func TestNodeTypeIsExhaustive(t *testing.T) {
	e := NewEngine()
	q := NodeType{Types: []string{"String", "Number", "⚠"}}
	member := map[string]bool{"String": true, "Number": true, "⚠": true}
	for _, k := range syntax.Kinds() {
		got := e.Evaluate(q, Context{NodeType: k.String()})
		assert.Equal(t, member[k.String()], got, k.String())
	}
}

func TestIndexQuery(t *testing.T) {
	e := NewEngine()
	q := Index{Path: keypath.Of("a", "*", "c")}

	tests := []struct {
		path keypath.Path
		want bool
	}{
		{path: keypath.Of("a", 5, "c"), want: true},
		{path: keypath.Of("a", "b", "c"), want: true},
		{path: keypath.Of("a", "b", "d"), want: false},
		{path: keypath.Of("a", "b"), want: false},
		{path: keypath.Of("a", "b", "c", "d"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, e.Evaluate(q, Context{KeyPath: tt.path}))
		})
	}
}

func TestMultiIndexIsLogicalOr(t *testing.T) {
	e := NewEngine()
	q := MultiIndex{Queries: []Index{
		{Path: keypath.Of("x")},
		{Path: keypath.Of("a", "*")},
	}}
	assert.True(t, e.Evaluate(q, Context{KeyPath: keypath.Of("a", 0)}))
	assert.True(t, e.Evaluate(q, Context{KeyPath: keypath.Of("x")}))
	assert.False(t, e.Evaluate(q, Context{KeyPath: keypath.Of("y")}))
	assert.False(t, e.Evaluate(MultiIndex{}, Context{KeyPath: keypath.Of("y")}))
}

func TestValueAndRegexAsymmetry(t *testing.T) {
	e := NewEngine()
	value := Value{Values: []string{"red"}}
	assert.True(t, e.Evaluate(value, Context{NodeValue: `"red"`}))
	assert.True(t, e.Evaluate(value, Context{NodeValue: `red`}))
	assert.False(t, e.Evaluate(value, Context{NodeValue: `""red""`}))

	unquoted := Regex{Pattern: regexp.MustCompile(`^red$`)}
	assert.False(t, e.Evaluate(unquoted, Context{NodeValue: `"red"`}))
	quoted := Regex{Pattern: regexp.MustCompile(`^"#[0-9a-f]{6}"$`)}
	assert.True(t, e.Evaluate(quoted, Context{NodeValue: `"#ff00aa"`}))
	assert.False(t, e.Evaluate(Regex{}, Context{NodeValue: `x`}))
}

func TestSchemaMatch(t *testing.T) {
	e := NewEngine()
	q := SchemaMatch{Names: []string{"markdef"}}

	byRef := Context{SchemaTypings: []schema.Fragment{{RefName: "#/definitions/MarkDef"}}}
	assert.True(t, e.Evaluate(q, byRef))

	byLabel := Context{KeyPath: keypath.Of("z"), SchemaTypings: []schema.Fragment{{LabeledType: "MARKDEF"}}}
	assert.True(t, e.Evaluate(q, byLabel))

	miss := Context{KeyPath: keypath.Of("y"), SchemaTypings: []schema.Fragment{{RefName: "#/definitions/MarkDef/extra"}}}
	assert.False(t, e.Evaluate(q, miss))
}

func TestSchemaMatchThroughUnionOfRefs(t *testing.T) {
	root, err := schema.Load([]byte(`{
  "definitions": {"Color": {"type": "string", "enum": ["red", "blue"]}},
  "properties": {"c": {"anyOf": [{"$ref": "#/definitions/Color"}, {"type": "null"}]}}
}`))
	require.NoError(t, err)
	src := `{"c": "red"}`
	m, err := schema.NewResolver().Resolve(context.Background(), root, src)
	require.NoError(t, err)

	node := syntax.Parse(src).NodeAt(8)
	require.Equal(t, syntax.KindString, node.Kind)
	ctx := Context{
		KeyPath:       keypath.Of("c___value"),
		NodeValue:     node.Text(src),
		NodeType:      node.Kind.String(),
		SchemaTypings: m.At(node.Span()),
		NodeSpan:      node.Span(),
	}
	e := NewEngine()
	assert.True(t, e.Evaluate(SchemaMatch{Names: []string{"color"}}, ctx))
	assert.False(t, e.Evaluate(SchemaMatch{Names: []string{"mark"}}, ctx))
}

func TestSchemaMatchSeesNewerTypings(t *testing.T) {
	e := NewEngine()
	q := SchemaMatch{Names: []string{"Color"}}
	ctx := Context{KeyPath: keypath.Of("fill___value"), NodeValue: `"red"`}
	assert.False(t, e.Evaluate(q, ctx))

	ctx.SchemaTypings = []schema.Fragment{{RefName: "#/$defs/Color"}}
	assert.True(t, e.Evaluate(q, ctx))
}

func TestFunctionQueryIsMemoized(t *testing.T) {
	e := NewEngine()
	calls := 0
	q := Function{Name: "long", Fn: func(value, _ string, _ keypath.Path, cursor int, _ syntax.Span) bool {
		calls++
		return len(value) > 3 && cursor >= 0
	}}
	ctx := Context{NodeValue: `"long"`, Cursor: 4, QueryIdentity: "p1"}

	assert.True(t, e.Evaluate(q, ctx))
	assert.True(t, e.Evaluate(q, ctx))
	assert.Equal(t, 1, calls)
	hits, misses := e.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	ctx.Cursor = 5
	assert.True(t, e.Evaluate(q, ctx))
	assert.Equal(t, 2, calls, "cursor is part of a function query's cache key")

	ctx.QueryIdentity = "p2"
	e.Evaluate(q, ctx)
	assert.Equal(t, 3, calls, "query identity is part of the cache key")
}

func TestCursorDoesNotKeyNonFunctionQueries(t *testing.T) {
	e := NewEngine()
	q := Value{Values: []string{"a"}}
	e.Evaluate(q, Context{NodeValue: `"a"`, Cursor: 1})
	e.Evaluate(q, Context{NodeValue: `"a"`, Cursor: 2})
	assert.Equal(t, 1, e.Len())
}

func TestFailsClosed(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.Evaluate(Unknown{Name: "fuzzy"}, Context{}))
	assert.False(t, e.Evaluate(nil, Context{}))
	assert.False(t, e.Evaluate(Function{Name: "nil"}, Context{}))

	boom := Function{Name: "boom", Fn: func(string, string, keypath.Path, int, syntax.Span) bool {
		panic("predicate failure")
	}}
	assert.NotPanics(t, func() {
		assert.False(t, e.Evaluate(boom, Context{}))
	})
}

func TestEnginesDoNotShareCaches(t *testing.T) {
	a, b := NewEngine(), NewEngine()
	a.Evaluate(Value{Values: []string{"x"}}, Context{NodeValue: "x"})
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())

	a.Reset()
	assert.Equal(t, 0, a.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, `index:["a",1]`, Key(Index{Path: keypath.Of("a", 1)}))
	assert.Equal(t, `regex:"^x$"`, Key(Regex{Pattern: regexp.MustCompile(`^x$`)}))
	assert.Equal(t, "<nil>", Key(nil))
}
