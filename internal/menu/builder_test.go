package menu

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

const doc = `{"a": true, "b": [1, 2], "c": {"d": null}}`

func buildAt(t *testing.T, src string, pos int, schemas schema.Map) []Row {
	t.Helper()
	tree := syntax.Parse(src)
	node := tree.NodeAt(pos)
	require.NotNil(t, node)
	return NewBuilder().Build(node, schemas, src)
}

func labels(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Label
	}
	return out
}

func texts(r Row) []string {
	out := make([]string, len(r.Elements))
	for i, e := range r.Elements {
		out[i] = e.Text()
	}
	return out
}

func find(t *testing.T, rows []Row, label string) Row {
	t.Helper()
	for _, r := range rows {
		if r.Label == label {
			return r
		}
	}
	t.Fatalf("no %q row in %v", label, labels(rows))
	return Row{}
}

func apply(t *testing.T, src string, e Element) string {
	t.Helper()
	var edits []Edit
	switch el := e.(type) {
	case Button:
		edits = el.Edits
	default:
		t.Fatalf("element %T has no edits", e)
	}
	out, err := ApplyEdits(src, edits)
	require.NoError(t, err)
	return out
}

func TestBooleanValue(t *testing.T) {
	rows := buildAt(t, doc, 8, nil)
	assert.Equal(t, []string{"Toggle", "Remove"}, labels(rows))

	toggle := find(t, rows, "Toggle")
	assert.Equal(t, []string{"false"}, texts(toggle))
	assert.Equal(t, `{"a": false, "b": [1, 2], "c": {"d": null}}`, apply(t, doc, toggle.Elements[0]))

	remove := find(t, rows, "Remove")
	assert.Equal(t, []string{"remove key"}, texts(remove))
	assert.Equal(t, `{"b": [1, 2], "c": {"d": null}}`, apply(t, doc, remove.Elements[0]))
}

func TestPropertyNameKeepsStructuralTarget(t *testing.T) {
	rows := buildAt(t, doc, 2, nil)
	assert.Equal(t, []string{"Remove", "Re-arrange"}, labels(rows))

	move := find(t, rows, "Re-arrange")
	assert.Equal(t, []string{"move down"}, texts(move))
	assert.Equal(t, `{"b": [1, 2], "a": true, "c": {"d": null}}`, apply(t, doc, move.Elements[0]))
}

func TestArrayElement(t *testing.T) {
	rows := buildAt(t, doc, 21, nil)
	assert.Equal(t, []string{"Remove", "Re-arrange"}, labels(rows))
	assert.Equal(t, `{"a": true, "b": [1], "c": {"d": null}}`, apply(t, doc, find(t, rows, "Remove").Elements[0]))

	move := find(t, rows, "Re-arrange")
	assert.Equal(t, []string{"move up"}, texts(move))
	assert.Equal(t, `{"a": true, "b": [2, 1], "c": {"d": null}}`, apply(t, doc, move.Elements[0]))
}

func TestPunctuationRetargetsToParent(t *testing.T) {
	rows := buildAt(t, doc, 17, nil)
	insert := find(t, rows, "Insert")
	assert.Equal(t, []string{"array", "boolean", "null", "number", "object", "string"}, texts(insert))
	assert.Equal(t, `{"a": true, "b": [1, 2, true], "c": {"d": null}}`, apply(t, doc, insert.Elements[1]))
}

func TestObjectAddField(t *testing.T) {
	rows := buildAt(t, doc, 30, nil)
	add := find(t, rows, "Add Field")
	require.Len(t, add.Elements, 1)
	input, ok := add.Elements[0].(FreeInput)
	require.True(t, ok)

	edits, err := input.Render(`e"x`)
	require.NoError(t, err)
	out, err := ApplyEdits(doc, edits)
	require.NoError(t, err)
	assert.Equal(t, `{"a": true, "b": [1, 2], "c": {"e\"x": "", "d": null}}`, out)

	remove := find(t, rows, "Remove")
	assert.Equal(t, `{"a": true, "b": [1, 2]}`, apply(t, doc, remove.Elements[0]))
}

func TestInferredObject(t *testing.T) {
	t.Run("heterogeneous keys", func(t *testing.T) {
		src := `[{"x":1,"y":2},{"x":3,"z":4}]`
		insert := find(t, buildAt(t, src, 0, nil), "Insert")
		assert.Equal(t, []string{"array", "boolean", "null", "number", "object", "string"}, texts(insert))
	})
	t.Run("shared keys", func(t *testing.T) {
		src := `[{"x":1,"y":2},{"y":3,"x":4}]`
		insert := find(t, buildAt(t, src, 0, nil), "Insert")
		assert.Contains(t, texts(insert), `{"x":"","y":""}`)
		last := insert.Elements[len(insert.Elements)-1]
		assert.Equal(t, `[{"x":1,"y":2},{"y":3,"x":4}, {"x":"","y":""}]`, apply(t, src, last))
	})
	t.Run("non-object sibling", func(t *testing.T) {
		src := `[{"x":1}, 2]`
		insert := find(t, buildAt(t, src, 0, nil), "Insert")
		assert.Len(t, insert.Elements, len(insertables))
	})
}

func TestBuildIsIdempotent(t *testing.T) {
	schemas := resolve(t, testSchema, doc)
	for _, pos := range []int{0, 2, 8, 17, 21, 30, 37} {
		first := buildAt(t, doc, pos, schemas)
		second := buildAt(t, doc, pos, schemas)
		assert.Equal(t, first, second, "pos %d", pos)
	}
}

const testSchema = `{
  "type": "object",
  "properties": {
    "a": {"type": "boolean", "description": "Turns **a** on"},
    "b": {"type": "array", "items": {"type": "number"}},
    "c": {"oneOf": [{"type": "boolean"}, {"type": "object", "properties": {"path": {"type": "string"}}}]},
    "e": {"enum": ["x", "y"]}
  }
}`

func resolve(t *testing.T, schemaText, src string) schema.Map {
	t.Helper()
	root, err := schema.Load([]byte(schemaText))
	require.NoError(t, err)
	m, err := schema.NewResolver().Resolve(context.Background(), root, src)
	require.NoError(t, err)
	return m
}

func TestSchemaDescription(t *testing.T) {
	rows := buildAt(t, doc, 8, resolve(t, testSchema, doc))
	assert.Equal(t, []string{LabelDescription, "Toggle", "Remove"}, labels(rows))
	assert.Equal(t, []string{"Turns a on"}, texts(rows[0]))
}

func TestSchemaAddField(t *testing.T) {
	rows := buildAt(t, doc, 0, resolve(t, testSchema, doc))
	add := find(t, rows, "Add Field")
	assert.Equal(t, []string{"e", "Add Field"}, texts(add))
	assert.Equal(t, `{"e": "x", "a": true, "b": [1, 2], "c": {"d": null}}`, apply(t, doc, add.Elements[0]))
}

func TestSchemaArrayItems(t *testing.T) {
	rows := buildAt(t, doc, 17, resolve(t, testSchema, doc))
	insert := find(t, rows, "Insert")
	assert.Equal(t, "0", insert.Elements[0].Text())
}

func TestSchemaUnionSwitch(t *testing.T) {
	rows := buildAt(t, doc, 30, resolve(t, testSchema, doc))
	sw := find(t, rows, "Switch to")
	assert.Equal(t, []string{"true", "{}"}, texts(sw))
	assert.Equal(t, `{"a": true, "b": [1, 2], "c": true}`, apply(t, doc, sw.Elements[0]))
}

func TestSchemaEnumSwitch(t *testing.T) {
	src := `{"e": "x"}`
	rows := buildAt(t, src, 7, resolve(t, testSchema, src))
	sw := find(t, rows, "Switch to")
	assert.Equal(t, []string{`"y"`}, texts(sw))
	assert.Equal(t, `{"e": "y"}`, apply(t, src, sw.Elements[0]))
}

func TestDiagnosticsAndProjections(t *testing.T) {
	tree := syntax.Parse(doc)
	rows := NewBuilder().BuildRequest(Request{
		Node:    tree.NodeAt(8),
		Schemas: resolve(t, testSchema, doc),
		Text:    doc,
		Diagnostics: []Diagnostic{
			{Span: syntax.Span{From: 6, To: 10}, Severity: SeverityInfo, Message: "consider false"},
			{Span: syntax.Span{From: 0, To: 42}, Severity: SeverityError, Message: "broken"},
			{Span: syntax.Span{From: 30, To: 41}, Severity: SeverityWarning, Message: "elsewhere"},
		},
		Projections: []ProjectionRef{{Name: "bool-switch", Span: syntax.Span{From: 6, To: 10}}},
	})
	assert.Equal(t, []string{LabelDescription, LabelLintError, LabelLintInfo, "Toggle", "Remove", "bool-switch"}, labels(rows))
	assert.Equal(t, KindProjection, rows[5].Elements[0].Kind())
}

func TestMergeRows(t *testing.T) {
	rows := mergeRows([]Row{
		{Label: "Insert", Elements: []Element{Button{Content: "b"}, FreeInput{Label: "first"}}},
		{Label: "Empty"},
		{Label: "Other", Elements: []Element{Display{Content: "z"}}},
		{Label: "Insert", Elements: []Element{
			Button{Content: "b", Edits: []Edit{{From: 1}}},
			Button{Content: "a"},
			FreeInput{Label: "second"},
			ProjectionRef{Name: "p"},
			ProjectionRef{Name: "p"},
			Display{Content: "c"},
		}},
		{Label: LabelLintWarning, Elements: []Element{Display{Content: "w"}}},
	})
	assert.Equal(t, []string{LabelLintWarning, "Insert", "Other"}, labels(rows))
	assert.Equal(t, []string{"a", "b", "c", "first", "p"}, texts(rows[1]))
	assert.Empty(t, rows[1].Elements[1].(Button).Edits, "first button occurrence wins")
}

type panickyValue struct{}

func (panickyValue) MarshalJSON() ([]byte, error) { panic("bad enum value") }

func TestPassFailureIsIsolated(t *testing.T) {
	b := NewBuilder()
	rows := b.guard("boom", func() []Row { panic("bad fragment") })
	assert.Nil(t, rows)
	assert.Nil(t, b.Build(nil, nil, ""))

	src := `{"a": true}`
	node := syntax.Parse(src).NodeAt(7)
	require.Equal(t, syntax.KindTrue, node.Kind)
	schemas := schema.Map{node.Span().Key(): {{Shape: map[string]any{
		"description": "dropped with the failing pass",
		"enum":        []any{panickyValue{}},
	}}}}
	rows = b.Build(node, schemas, src)
	assert.Equal(t, []string{"Toggle", "Remove"}, labels(rows))
}

const refUnionSchema = `{
  "definitions": {
    "Color": {"type": "string", "enum": ["red", "blue"]},
    "Enc": {"type": "object", "properties": {"x": {"type": "string"}}}
  },
  "properties": {
    "c": {"anyOf": [{"$ref": "#/definitions/Color"}, {"type": "null"}]},
    "enc": {"oneOf": [{"$ref": "#/definitions/Enc"}, {"type": "string"}]}
  }
}`

func TestSchemaUnionOfRefs(t *testing.T) {
	src := `{"c": "blue"}`
	rows := buildAt(t, src, 8, resolve(t, refUnionSchema, src))
	sw := find(t, rows, "Switch to")
	assert.Equal(t, []string{`"red"`, "null"}, texts(sw))
	assert.Equal(t, `{"c": "red"}`, apply(t, src, sw.Elements[0]))

	src = `{"enc": "s"}`
	rows = buildAt(t, src, 9, resolve(t, refUnionSchema, src))
	assert.Equal(t, []string{`""`, "{}"}, texts(find(t, rows, "Switch to")))

	src = `{"enc": {}}`
	rows = buildAt(t, src, 8, resolve(t, refUnionSchema, src))
	assert.Equal(t, []string{"x", "Add Field"}, texts(find(t, rows, "Add Field")))
}

func TestDiagnosticsUseHalfOpenSpans(t *testing.T) {
	src := `{"a": true, "b": 1}`
	tree := syntax.Parse(src)
	rows := NewBuilder().BuildRequest(Request{
		Node: tree.NodeAt(7),
		Text: src,
		Diagnostics: []Diagnostic{
			{Span: syntax.Span{From: 10, To: 11}, Severity: SeverityError, Message: "stray comma"},
			{Span: syntax.Span{From: 10, To: 10}, Severity: SeverityWarning, Message: "after value"},
			{Span: syntax.Span{From: 6, To: 6}, Severity: SeverityInfo, Message: "before value"},
		},
	})
	assert.Equal(t, []string{LabelLintInfo, "Toggle", "Remove"}, labels(rows))
	assert.Equal(t, []string{"before value"}, texts(rows[0]))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Width in pixels.", PlainText("Width in **pixels**."))
	assert.Equal(t, "Title Body with code", PlainText("# Title\n\nBody with `code`"))
	assert.Equal(t, "", PlainText("  "))
}

func TestApplyEditsRejectsOverlap(t *testing.T) {
	_, err := ApplyEdits("abcdef", []Edit{{From: 1, To: 4}, {From: 3, To: 5}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "overlapping"))
}
