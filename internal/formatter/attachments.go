package formatter

import (
	"sort"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/mcnuttandrew/prong-sub001/internal/projection"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// AttachmentReport is the document form of one attachment.
type AttachmentReport struct {
	Set   string      `json:"set" yaml:"set"`
	Name  string      `json:"name" yaml:"name"`
	Kind  string      `json:"kind" yaml:"kind"`
	Mode  string      `json:"mode,omitempty" yaml:"mode,omitempty"`
	Class string      `json:"class,omitempty" yaml:"class,omitempty"`
	Span  syntax.Span `json:"span" yaml:"span"`
	Text  string      `json:"text" yaml:"text"`
}

// NewAttachmentReports flattens a located result, ordered by span start and
// then by set (inline, multiline, highlight).
func NewAttachmentReports(res projection.Result, text string) []AttachmentReport {
	out := make([]AttachmentReport, 0, res.Len())
	add := func(set string, atts []projection.Attachment) {
		for _, a := range atts {
			out = append(out, AttachmentReport{
				Set:   set,
				Name:  a.Projection.Name,
				Kind:  string(a.Projection.Kind),
				Mode:  string(a.Projection.Mode),
				Class: a.Projection.Class,
				Span:  a.Span,
				Text:  sliceText(text, a.Span),
			})
		}
	}
	add("inline", res.Inline)
	add("multiline", res.Multiline)
	add("highlight", res.Highlight)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span.From < out[j].Span.From })
	return out
}

func sliceText(text string, s syntax.Span) string {
	from, to := s.From, s.To
	if from < 0 {
		from = 0
	}
	if to > len(text) {
		to = len(text)
	}
	if from >= to {
		return ""
	}
	return text[from:to]
}

var attachmentHeader = []string{"SPAN", "SET", "NAME", "KIND", "MODE", "TEXT"}

// RenderAttachments renders attachments as an aligned table.
func RenderAttachments(reports []AttachmentReport, opts Options) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		mode := r.Mode
		if r.Class != "" {
			mode = "." + r.Class
		}
		rows = append(rows, []string{r.Span.Key(), r.Set, r.Name, r.Kind, mode, strings.ReplaceAll(r.Text, "\n", `\n`)})
	}

	widths := make([]int, len(attachmentHeader))
	for i, h := range attachmentHeader {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	header := joinPadded(attachmentHeader, widths)
	b.WriteString(opts.style(labelStyle, header) + "\n")
	b.WriteString(opts.style(separatorStyle, strings.Repeat("─", runewidth.StringWidth(header))) + "\n")
	for _, row := range rows {
		b.WriteString(opts.fit(joinPadded(row, widths)))
		b.WriteString("\n")
	}
	return b.String()
}

func joinPadded(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i == len(cells)-1 {
			parts[i] = c
			continue
		}
		parts[i] = padRight(c, widths[i])
	}
	return strings.Join(parts, cellSep)
}
