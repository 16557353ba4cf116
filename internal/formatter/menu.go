package formatter

import (
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/mcnuttandrew/prong-sub001/internal/menu"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// Cursor marks the routed menu cell. Col 0 is the row label.
type Cursor struct {
	Row int
	Col int
}

const cellSep = "  "

// ElementText returns the one-cell rendering of an element: buttons in
// brackets, free inputs in angle brackets, projection refs with a leading @.
func ElementText(e menu.Element) string {
	switch t := e.(type) {
	case menu.Button:
		return "[" + t.Content + "]"
	case menu.FreeInput:
		return "<" + t.Label + ">"
	case menu.ProjectionRef:
		return "@" + t.Name
	case menu.Display:
		return t.Content
	default:
		return e.Text()
	}
}

// RenderMenu renders rows as a label column followed by the elements.
// A non-nil cursor highlights the routed cell.
func RenderMenu(rows []menu.Row, opts Options, cursor *Cursor) string {
	if len(rows) == 0 {
		return ""
	}
	labelWidth := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r.Label); w > labelWidth {
			labelWidth = w
		}
	}

	sep := opts.style(separatorStyle, "│")
	var b strings.Builder
	for i, r := range rows {
		cells := make([]string, 0, len(r.Elements))
		label := padRight(r.Label, labelWidth)
		if cursor != nil && cursor.Row == i && cursor.Col == 0 && !opts.NoColor {
			label = selectedStyle.Render(label)
		} else {
			label = opts.style(labelStyleFor(r.Label), label)
		}
		for j, e := range r.Elements {
			text := ElementText(e)
			switch {
			case cursor != nil && cursor.Row == i && cursor.Col == j+1:
				if opts.NoColor {
					text = ">" + text
				} else {
					text = selectedStyle.Render(text)
				}
			case e.Kind() == menu.KindDisplay:
				text = opts.style(mutedStyle, text)
			default:
				text = opts.style(buttonStyle, text)
			}
			cells = append(cells, text)
		}
		line := label + " " + sep
		if len(cells) > 0 {
			line += " " + strings.Join(cells, cellSep)
		}
		b.WriteString(opts.fit(line))
		b.WriteString("\n")
	}
	return b.String()
}

func labelStyleFor(label string) lipgloss.Style {
	switch label {
	case menu.LabelLintError:
		return errorStyle
	case menu.LabelLintWarning:
		return warnStyle
	default:
		return labelStyle
	}
}

// MenuReport is the document form of a menu.
type MenuReport struct {
	Target string      `json:"target" yaml:"target"`
	Span   syntax.Span `json:"span" yaml:"span"`
	Text   string      `json:"text" yaml:"text"`
	Rows   []RowReport `json:"rows" yaml:"rows"`
}

// RowReport is the document form of a menu row.
type RowReport struct {
	Label    string          `json:"label" yaml:"label"`
	Elements []ElementReport `json:"elements" yaml:"elements"`
}

// ElementReport is the document form of a menu element.
type ElementReport struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Text     string      `json:"text" yaml:"text"`
	Edits    []menu.Edit `json:"edits,omitempty" yaml:"edits,omitempty"`
	Template string      `json:"template,omitempty" yaml:"template,omitempty"`
}

// NewMenuReport describes the menu built for target.
func NewMenuReport(target *syntax.Node, text string, rows []menu.Row) MenuReport {
	r := MenuReport{Rows: make([]RowReport, 0, len(rows))}
	if target != nil {
		r.Target = target.Type()
		r.Span = target.Span()
		r.Text = target.Text(text)
	}
	for _, row := range rows {
		rr := RowReport{Label: row.Label, Elements: make([]ElementReport, 0, len(row.Elements))}
		for _, e := range row.Elements {
			er := ElementReport{Kind: string(e.Kind()), Text: e.Text()}
			switch t := e.(type) {
			case menu.Button:
				er.Edits = t.Edits
			case menu.FreeInput:
				er.Template = t.Template
			}
			rr.Elements = append(rr.Elements, er)
		}
		r.Rows = append(r.Rows, rr)
	}
	return r
}
