package ui

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
	"github.com/mcnuttandrew/prong-sub001/internal/popover"
	"github.com/mcnuttandrew/prong-sub001/internal/projection"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

const (
	caretMarker  = "|"
	inlineOpen   = "⟨"
	inlineClose  = "⟩"
	defaultWidth = 80
)

// View renders the document and the popover for the current mode.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	st := m.engine.CurrentState()
	doc := m.renderDocument()

	var body string
	switch st.Mode {
	case popover.TooltipOpen, popover.TooltipInUse:
		body = m.withTooltip(doc, m.renderMenu(st))
	case popover.MonocleOpen:
		body = m.renderMenu(st)
	case popover.DockOpen:
		body = lipgloss.JoinHorizontal(lipgloss.Top, doc+"  ", m.renderMenu(st))
	default:
		body = doc
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(m.statusLine(st))
	if m.ErrMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.errorText.Render(m.ErrMsg))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.footer.Render(helpLine))
	return b.String()
}

// renderMenu renders the popover box, or "" when there is nothing to show.
func (m *Model) renderMenu(st popover.State) string {
	opts := formatter.Options{NoColor: m.NoColor}
	var cursor *formatter.Cursor
	if m.menuFocused() {
		cursor = &formatter.Cursor{Row: st.Routing.Row, Col: st.Routing.Col}
	}
	content := formatter.RenderMenu(st.Menu, opts, cursor)
	if m.editing {
		if content != "" {
			content += "\n"
		}
		content += m.input.Placeholder + ": " + m.input.View()
	}
	if content == "" {
		return ""
	}
	return m.styles.border.Render(content)
}

// withTooltip places box under the caret's line, shifted to the caret
// column as far as the width allows.
func (m *Model) withTooltip(doc, box string) string {
	if box == "" {
		return doc
	}
	text := m.engine.Text()
	line := strings.Count(text[:m.Caret], "\n")
	lineStart := strings.LastIndexByte(text[:m.Caret], '\n') + 1
	col := runewidth.StringWidth(text[lineStart:m.Caret])

	width := m.Width
	if width <= 0 {
		width = defaultWidth
	}
	if boxWidth := lipgloss.Width(box); col+boxWidth > width {
		col = max(0, width-boxWidth)
	}
	indent := strings.Repeat(" ", col)
	boxLines := strings.Split(box, "\n")
	for i, l := range boxLines {
		boxLines[i] = indent + l
	}

	lines := strings.Split(doc, "\n")
	if line >= len(lines) {
		line = len(lines) - 1
	}
	out := make([]string, 0, len(lines)+len(boxLines))
	out = append(out, lines[:line+1]...)
	out = append(out, boxLines...)
	out = append(out, lines[line+1:]...)
	return strings.Join(out, "\n")
}

func (m *Model) statusLine(st popover.State) string {
	target := "none"
	if st.Target != nil {
		sp := st.Target.Span()
		target = fmt.Sprintf("%s %d-%d", st.Target.Type(), sp.From, sp.To)
	}
	line := fmt.Sprintf("%s · %s · %d projections", st.Mode, target, m.engine.Attachments().Len())
	if m.Status != "" {
		line += " · " + m.Status
	}
	return m.styles.status.Render(line)
}

// renderDocument renders the text with the caret, highlight projections
// and inline projection markers.
func (m *Model) renderDocument() string {
	return renderDocument(m.engine.Text(), m.Caret, m.engine.Attachments(), m.NoColor, m.styles)
}

func renderDocument(text string, caret int, res projection.Result, noColor bool, s styles) string {
	prefixes := map[int][]string{}
	suffixes := map[int][]string{}
	replaced := map[int]projection.Attachment{}
	for _, a := range res.Inline {
		switch a.Projection.Mode {
		case projection.ModePrefix:
			prefixes[a.Span.From] = append(prefixes[a.Span.From], marker(a))
		case projection.ModeSuffix:
			suffixes[a.Span.To] = append(suffixes[a.Span.To], marker(a))
		default:
			replaced[a.Span.From] = a
		}
	}
	for _, a := range res.Multiline {
		replaced[a.Span.From] = a
	}
	highlights := make([]syntax.Span, 0, len(res.Highlight))
	for _, a := range res.Highlight {
		highlights = append(highlights, a.Span)
	}
	sort.Slice(highlights, func(i, j int) bool { return highlights[i].From < highlights[j].From })

	caretText := func(t string) string {
		if noColor {
			return caretMarker + t
		}
		return s.caret.Render(t)
	}

	var b strings.Builder
	for i := 0; i <= len(text); {
		for _, mk := range suffixes[i] {
			b.WriteString(mk)
		}
		for _, mk := range prefixes[i] {
			b.WriteString(mk)
		}
		if a, ok := replaced[i]; ok && a.Span.To > i {
			mk := marker(a)
			if caret >= a.Span.From && caret < a.Span.To {
				mk = caretText(mk)
			}
			b.WriteString(mk)
			i = a.Span.To
			continue
		}
		if i == len(text) {
			if caret == i {
				if noColor {
					b.WriteString(caretMarker)
				} else {
					b.WriteString(s.caret.Render(" "))
				}
			}
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		ch := string(r)
		switch {
		case caret == i && r == '\n':
			if noColor {
				b.WriteString(caretMarker)
			} else {
				b.WriteString(s.caret.Render(" "))
			}
			b.WriteString(ch)
		case caret == i:
			b.WriteString(caretText(ch))
		case !noColor && r != '\n' && inAny(highlights, i):
			b.WriteString(s.highlight.Render(ch))
		default:
			b.WriteString(ch)
		}
		i += size
	}
	return b.String()
}

func marker(a projection.Attachment) string {
	return inlineOpen + a.Projection.Name + inlineClose
}

func inAny(spans []syntax.Span, pos int) bool {
	for _, sp := range spans {
		if sp.From > pos {
			return false
		}
		if pos < sp.To {
			return true
		}
	}
	return false
}
