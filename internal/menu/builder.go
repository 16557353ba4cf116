package menu

import (
	"fmt"
	"sort"

	"github.com/go-logr/logr"

	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is an externally produced message bound to a span.
type Diagnostic struct {
	Span     syntax.Span `json:"span" yaml:"span"`
	Severity Severity    `json:"severity" yaml:"severity"`
	Message  string      `json:"message" yaml:"message"`
}

func (d Diagnostic) label() string {
	switch d.Severity {
	case SeverityError:
		return LabelLintError
	case SeverityWarning:
		return LabelLintWarning
	default:
		return LabelLintInfo
	}
}

// Request carries everything a menu is built from.
type Request struct {
	Node    *syntax.Node
	Schemas schema.Map
	Text    string
	// Diagnostics whose span overlaps the target's half-open span become
	// lint rows.
	Diagnostics []Diagnostic
	// Projections are tooltip projections matching the target; each becomes
	// a row holding a projection-ref element.
	Projections []ProjectionRef
}

// Builder synthesizes menu rows. A Builder holds no state between calls.
type Builder struct {
	log logr.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(l logr.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{log: logr.Discard()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the menu rows for node.
func (b *Builder) Build(node *syntax.Node, schemas schema.Map, text string) []Row {
	return b.BuildRequest(Request{Node: node, Schemas: schemas, Text: text})
}

// BuildRequest returns the menu rows for req. Each synthesis pass runs in
// isolation: a failing pass contributes nothing and is logged.
func (b *Builder) BuildRequest(req Request) []Row {
	target := syntax.StructuralTarget(req.Node)
	if target == nil {
		return nil
	}
	lookup := syntax.SchemaTarget(req.Node)

	var rows []Row
	rows = append(rows, diagnosticRows(target, req.Diagnostics)...)
	rows = append(rows, b.guard("schema", func() []Row {
		return schemaRows(lookup, req.Schemas.At(lookup.Span()), req.Text)
	})...)
	rows = append(rows, b.guard("type", func() []Row {
		return b.typeRows(target, req.Text)
	})...)
	rows = append(rows, b.guard("parent", func() []Row {
		return parentRows(target, req.Text)
	})...)
	for _, p := range req.Projections {
		rows = append(rows, Row{Label: p.Name, Elements: []Element{p}})
	}
	return mergeRows(rows)
}

func (b *Builder) guard(pass string, fn func() []Row) (rows []Row) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error(fmt.Errorf("%v", r), "menu pass failed", "pass", pass)
			rows = nil
		}
	}()
	return fn()
}

func diagnosticRows(target *syntax.Node, diags []Diagnostic) []Row {
	var rows []Row
	for _, d := range diags {
		if !d.Span.Overlaps(target.Span()) {
			continue
		}
		rows = append(rows, Row{Label: d.label(), Elements: []Element{Display{Content: d.Message}}})
	}
	return rows
}

// schemaRows suggests values described by the fragments bound to n.
func schemaRows(n *syntax.Node, frags []schema.Fragment, text string) []Row {
	var rows []Row
	current := n.Text(text)
	for _, f := range frags {
		if desc := PlainText(f.Description()); desc != "" {
			rows = append(rows, Row{Label: LabelDescription, Elements: []Element{Display{Content: desc}}})
		}
		if !n.Kind.IsValue() {
			continue
		}

		var switches []Element
		offer := func(v any) {
			lit := schema.Literal(v)
			if lit != current {
				switches = append(switches, Button{Content: lit, Edits: replaceNode(n, lit)})
			}
		}
		if enum, ok := f.Shape["enum"].([]any); ok {
			for _, v := range enum {
				offer(v)
			}
		}
		for _, alt := range schema.Alternatives(f.Shape) {
			if v, ok := schema.Materialize(alt); ok {
				offer(v)
			}
		}
		for _, t := range f.Types() {
			if jsonType(n.Kind) == t || (t == "integer" && n.Kind == syntax.KindNumber) {
				continue
			}
			if v, ok := schema.EmptyValue(t); ok {
				offer(v)
			}
		}
		rows = append(rows, Row{Label: "Switch to", Elements: switches})

		switch n.Kind {
		case syntax.KindObject:
			rows = append(rows, Row{Label: "Add Field", Elements: missingFields(n, f, text)})
		case syntax.KindArray:
			if items, ok := f.Shape["items"].(map[string]any); ok {
				if v, ok := schema.Materialize(items); ok {
					lit := schema.Literal(v)
					rows = append(rows, Row{Label: "Insert", Elements: []Element{Button{Content: lit, Edits: appendValue(n, lit)}}})
				}
			}
		default:
		}
	}
	return rows
}

func missingFields(obj *syntax.Node, f schema.Fragment, text string) []Element {
	props, _ := f.Shape["properties"].(map[string]any)
	present := make(map[string]bool)
	for _, p := range obj.Values() {
		present[syntax.PropertyKey(p, text)] = true
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		if !present[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]Element, 0, len(keys))
	for _, k := range keys {
		lit := `""`
		if shape, ok := props[k].(map[string]any); ok {
			if v, ok := schema.Materialize(shape); ok {
				lit = schema.Literal(v)
			}
		}
		out = append(out, Button{Content: k, Edits: prependField(obj, k, lit)})
	}
	return out
}

func jsonType(k syntax.Kind) string {
	switch k {
	case syntax.KindString:
		return "string"
	case syntax.KindNumber:
		return "number"
	case syntax.KindTrue, syntax.KindFalse:
		return "boolean"
	case syntax.KindObject:
		return "object"
	case syntax.KindArray:
		return "array"
	case syntax.KindNull:
		return "null"
	default:
		return ""
	}
}

// typeRows dispatches on the target's syntactic kind.
func (b *Builder) typeRows(n *syntax.Node, text string) []Row {
	switch n.Kind {
	case syntax.KindPropertyName:
		prop := n.Parent
		obj := prop.Parent
		return []Row{
			{Label: "Remove", Elements: []Element{Button{Content: "remove key", Edits: removeMember(obj, prop)}}},
			{Label: "Re-arrange", Elements: moveButtons(obj, prop, text)},
		}
	case syntax.KindObject:
		return []Row{{Label: "Add Field", Elements: []Element{
			FreeInput{Label: "Add Field", Template: addFieldTemplate(n), Span: syntax.Span{From: n.From + 1, To: n.From + 1}},
		}}}
	case syntax.KindArray:
		return []Row{{Label: "Insert", Elements: insertButtons(n, text)}}
	case syntax.KindTrue:
		return []Row{{Label: "Toggle", Elements: []Element{Button{Content: "false", Edits: replaceNode(n, "false")}}}}
	case syntax.KindFalse:
		return []Row{{Label: "Toggle", Elements: []Element{Button{Content: "true", Edits: replaceNode(n, "true")}}}}
	case syntax.KindString, syntax.KindNumber, syntax.KindNull,
		syntax.KindProperty, syntax.KindJSONText, syntax.KindError,
		syntax.KindLBrace, syntax.KindRBrace, syntax.KindLBracket, syntax.KindRBracket,
		syntax.KindComma, syntax.KindColon:
		return nil
	default:
		b.log.Info("unhandled node kind in menu dispatch", "kind", n.Kind.String())
		return nil
	}
}

var insertables = []struct {
	name    string
	literal string
}{
	{"boolean", "true"},
	{"number", "0"},
	{"string", `""`},
	{"object", "{}"},
	{"array", "[]"},
	{"null", "null"},
}

func insertButtons(arr *syntax.Node, text string) []Element {
	out := make([]Element, 0, len(insertables)+1)
	for _, in := range insertables {
		out = append(out, Button{Content: in.name, Edits: appendValue(arr, in.literal)})
	}
	if lit, ok := inferredObject(arr, text); ok {
		out = append(out, Button{Content: lit, Edits: appendValue(arr, lit)})
	}
	return out
}

// inferredObject builds an object with every sibling key mapped to "". It is
// offered only when the array holds objects that all share one key set.
func inferredObject(arr *syntax.Node, text string) (string, bool) {
	elems := arr.Values()
	if len(elems) == 0 {
		return "", false
	}
	var keys []string
	for i, el := range elems {
		if el.Kind != syntax.KindObject {
			return "", false
		}
		own := objectKeys(el, text)
		if i == 0 {
			keys = own
			continue
		}
		if !sameKeys(keys, own) {
			return "", false
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	fields := make(map[string]any, len(keys))
	for _, k := range keys {
		fields[k] = ""
	}
	return schema.Literal(fields), true
}

func objectKeys(obj *syntax.Node, text string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, p := range obj.Values() {
		k := syntax.PropertyKey(p, text)
		if p.Kind != syntax.KindProperty || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func moveButtons(container, member *syntax.Node, text string) []Element {
	var out []Element
	if e := swapWith(container, member, text, -1); e != nil {
		out = append(out, Button{Content: "move up", Edits: e})
	}
	if e := swapWith(container, member, text, 1); e != nil {
		out = append(out, Button{Content: "move down", Edits: e})
	}
	return out
}

// parentRows adds actions keyed by the container that owns n.
func parentRows(n *syntax.Node, text string) []Row {
	if n.Kind == syntax.KindPropertyName || n.Parent == nil {
		return nil
	}
	switch n.Parent.Kind {
	case syntax.KindArray:
		return []Row{
			{Label: "Remove", Elements: []Element{Button{Content: "remove item", Edits: removeMember(n.Parent, n)}}},
			{Label: "Re-arrange", Elements: moveButtons(n.Parent, n, text)},
		}
	case syntax.KindProperty:
		prop := n.Parent
		if prop.Parent == nil {
			return nil
		}
		return []Row{{Label: "Remove", Elements: []Element{Button{Content: "remove key", Edits: removeMember(prop.Parent, prop)}}}}
	default:
		return nil
	}
}
