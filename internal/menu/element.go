// Package menu builds the contextual action menu for a focused node.
package menu

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// ElementKind tags the element variants.
type ElementKind string

const (
	KindButton     ElementKind = "button"
	KindDisplay    ElementKind = "display"
	KindFreeInput  ElementKind = "free-input"
	KindProjection ElementKind = "projection-ref"
)

// Element is one entry of a menu row. The set of implementations is closed.
type Element interface {
	Kind() ElementKind
	// Text is the element's visible text.
	Text() string
	element()
}

// Button applies its edits when activated.
type Button struct {
	Content string `json:"content" yaml:"content"`
	Edits   []Edit `json:"edits,omitempty" yaml:"edits,omitempty"`
}

// Display is informational only.
type Display struct {
	Content string `json:"content" yaml:"content"`
}

// FreeInput asks the user for text and renders it through Template into an
// edit replacing Span. The template sees the input as .Input and has a
// "quote" function producing a JSON string literal.
type FreeInput struct {
	Label    string      `json:"label" yaml:"label"`
	Template string      `json:"template" yaml:"template"`
	Span     syntax.Span `json:"span" yaml:"span"`
}

// ProjectionRef embeds the content of a tooltip projection.
type ProjectionRef struct {
	Name string      `json:"name" yaml:"name"`
	Span syntax.Span `json:"span" yaml:"span"`
}

func (Button) Kind() ElementKind        { return KindButton }
func (Display) Kind() ElementKind       { return KindDisplay }
func (FreeInput) Kind() ElementKind     { return KindFreeInput }
func (ProjectionRef) Kind() ElementKind { return KindProjection }

func (b Button) Text() string        { return b.Content }
func (d Display) Text() string       { return d.Content }
func (f FreeInput) Text() string     { return f.Label }
func (p ProjectionRef) Text() string { return p.Name }

func (Button) element()        {}
func (Display) element()       {}
func (FreeInput) element()     {}
func (ProjectionRef) element() {}

var templateFuncs = template.FuncMap{
	"quote": func(s string) string { return schema.Literal(s) },
}

// Render executes the template with input and returns the resulting edit.
func (f FreeInput) Render(input string) ([]Edit, error) {
	tmpl, err := template.New(f.Label).Funcs(templateFuncs).Parse(f.Template)
	if err != nil {
		return nil, fmt.Errorf("parse %q template: %w", f.Label, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Input string }{Input: input}); err != nil {
		return nil, fmt.Errorf("render %q template: %w", f.Label, err)
	}
	return []Edit{{From: f.Span.From, To: f.Span.To, Insert: buf.String()}}, nil
}

// Row is a labeled group of elements.
type Row struct {
	Label    string    `json:"label" yaml:"label"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Edit replaces [From, To) with Insert.
type Edit struct {
	From   int    `json:"from" yaml:"from"`
	To     int    `json:"to" yaml:"to"`
	Insert string `json:"insert" yaml:"insert"`
}

// ApplyEdits applies non-overlapping edits to text. Offsets refer to the
// original text.
func ApplyEdits(text string, edits []Edit) (string, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].From > sorted[j].From })
	end := len(text)
	for _, e := range sorted {
		if e.From < 0 || e.From > e.To || e.To > end {
			return "", fmt.Errorf("edit [%d,%d) out of range or overlapping", e.From, e.To)
		}
		text = text[:e.From] + e.Insert + text[e.To:]
		end = e.From
	}
	return text, nil
}
