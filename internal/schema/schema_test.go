package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

func TestMaterialize(t *testing.T) {
	tests := []struct {
		name  string
		shape map[string]any
		want  any
		ok    bool
	}{
		{name: "string", shape: map[string]any{"type": "string"}, want: "", ok: true},
		{name: "number", shape: map[string]any{"type": "number"}, want: 0, ok: true},
		{name: "object", shape: map[string]any{"type": "object"}, want: map[string]any{}, ok: true},
		{name: "array", shape: map[string]any{"type": "array"}, want: []any{}, ok: true},
		{name: "null", shape: map[string]any{"type": "null"}, want: nil, ok: true},
		{name: "enum first", shape: map[string]any{"type": "string", "enum": []any{"red", "blue"}}, want: "red", ok: true},
		{name: "type list", shape: map[string]any{"type": []any{"integer", "null"}}, want: 0, ok: true},
		{
			name: "boolean beats later alternatives",
			shape: map[string]any{"oneOf": []any{
				map[string]any{"type": "boolean"},
				map[string]any{"type": "object", "properties": map[string]any{"path": map[string]any{"type": "string"}}},
			}},
			want: true, ok: true,
		},
		{
			name: "nested union",
			shape: map[string]any{"anyOf": []any{
				map[string]any{"description": "no type"},
				map[string]any{"oneOf": []any{map[string]any{"enum": []any{"x"}}}},
			}},
			want: "x", ok: true,
		},
		{name: "nothing to materialize", shape: map[string]any{"description": "free"}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Materialize(tt.shape)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, `""`, Literal(""))
	assert.Equal(t, `{}`, Literal(map[string]any{}))
	assert.Equal(t, `[]`, Literal([]any{}))
	assert.Equal(t, `null`, Literal(nil))
	assert.Equal(t, `true`, Literal(true))
}

func TestFragmentTypeName(t *testing.T) {
	assert.Equal(t, "Mark", Fragment{RefName: "#/definitions/Mark"}.TypeName())
	assert.Equal(t, "", Fragment{}.TypeName())
}

const testSchema = `{
  "definitions": {
    "Mark": {"title": "MarkDef", "type": "object", "properties": {"type": {"enum": ["bar", "line"]}}}
  },
  "type": "object",
  "properties": {
    "mark": {"$ref": "#/definitions/Mark"},
    "width": {"type": "number", "description": "Width in **pixels**"},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`

func TestResolverBindsSpans(t *testing.T) {
	root, err := Load([]byte(testSchema))
	require.NoError(t, err)

	src := `{"mark": {"type": "bar"}, "width": 10, "tags": ["a"], "extra": 1}`
	m, err := NewResolver().Resolve(context.Background(), root, src)
	require.NoError(t, err)

	tree := syntax.Parse(src)
	mark := syntax.SchemaTarget(tree.NodeAt(3))
	frags := m.At(mark.Span())
	require.Len(t, frags, 1)
	assert.Equal(t, "#/definitions/Mark", frags[0].RefName)
	assert.Equal(t, "Mark", frags[0].TypeName())
	assert.Equal(t, "MarkDef", frags[0].LabeledType)

	bar := tree.NodeAt(20)
	require.Equal(t, syntax.KindString, bar.Kind)
	barFrags := m.At(bar.Span())
	require.Len(t, barFrags, 1)
	assert.Equal(t, []any{"bar", "line"}, barFrags[0].Shape["enum"])

	width := syntax.SchemaTarget(tree.NodeAt(28))
	require.Len(t, m.At(width.Span()), 1)
	assert.Equal(t, "Width in **pixels**", m.At(width.Span())[0].Description())

	tag := tree.NodeAt(49)
	require.Equal(t, syntax.KindString, tag.Kind)
	assert.Len(t, m.At(tag.Span()), 1)

	extra := syntax.SchemaTarget(tree.NodeAt(56))
	assert.Empty(t, m.At(extra.Span()))
}

func TestResolverHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewResolver().Resolve(ctx, map[string]any{"type": "object"}, `{}`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	obj, err := Load([]byte("type: object\nproperties:\n  a:\n    type: string\n"))
	require.NoError(t, err)
	assert.Equal(t, "object", obj["type"])

	_, err = Load([]byte("[1, 2]"))
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = Load(nil)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestMapKeys(t *testing.T) {
	m := Map{"5-9": nil, "0-2": nil}
	assert.Equal(t, []string{"0-2", "5-9"}, m.Keys())
	assert.Nil(t, Map(nil).At(syntax.Span{From: 0, To: 1}))
}

const unionSchema = `{
  "definitions": {
    "A": {"title": "ADef", "type": "object", "properties": {"x": {"type": "string", "description": "The x"}}},
    "Color": {"type": "string", "enum": ["red", "blue"]},
    "Node": {"anyOf": [{"$ref": "#/definitions/Node"}, {"type": "string"}]}
  },
  "type": "object",
  "properties": {
    "enc": {"oneOf": [{"$ref": "#/definitions/A"}, {"type": "string"}]},
    "c": {"anyOf": [{"$ref": "#/definitions/Color"}, {"type": "null"}]},
    "n": {"$ref": "#/definitions/Node"}
  }
}`

func TestResolverSplitsUnionsOfRefs(t *testing.T) {
	root, err := Load([]byte(unionSchema))
	require.NoError(t, err)

	src := `{"enc": {"x": "v"}, "c": "red"}`
	m, err := NewResolver().Resolve(context.Background(), root, src)
	require.NoError(t, err)
	tree := syntax.Parse(src)

	enc := syntax.SchemaTarget(tree.NodeAt(3))
	require.Equal(t, syntax.KindObject, enc.Kind)
	encFrags := m.At(enc.Span())
	require.Len(t, encFrags, 3)
	assert.Empty(t, encFrags[0].RefName)
	assert.Equal(t, "A", encFrags[1].TypeName())
	assert.Equal(t, "ADef", encFrags[1].LabeledType)
	assert.Equal(t, []string{"string"}, encFrags[2].Types())
	v, ok := Materialize(encFrags[0].Shape)
	require.True(t, ok)
	assert.Equal(t, map[string]any{}, v)

	x := tree.NodeAt(15)
	require.Equal(t, syntax.KindString, x.Kind)
	xFrags := m.At(x.Span())
	require.Len(t, xFrags, 1)
	assert.Equal(t, "The x", xFrags[0].Description())

	c := tree.NodeAt(27)
	require.Equal(t, syntax.KindString, c.Kind)
	cFrags := m.At(c.Span())
	require.Len(t, cFrags, 3)
	assert.Equal(t, "Color", cFrags[1].TypeName())
	v, ok = Materialize(cFrags[0].Shape)
	require.True(t, ok)
	assert.Equal(t, "red", v)
}

func TestResolverStopsOnRecursiveUnion(t *testing.T) {
	root, err := Load([]byte(unionSchema))
	require.NoError(t, err)

	src := `{"n": "s"}`
	m, err := NewResolver().Resolve(context.Background(), root, src)
	require.NoError(t, err)

	n := syntax.Parse(src).NodeAt(7)
	require.Equal(t, syntax.KindString, n.Kind)
	frags := m.At(n.Span())
	require.Len(t, frags, 2)
	assert.Equal(t, "Node", frags[0].TypeName())
	assert.Equal(t, []string{"string"}, frags[1].Types())
}
