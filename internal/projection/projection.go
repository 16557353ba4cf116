// Package projection locates the spans that projection definitions attach to.
package projection

import (
	"strconv"
	"strings"

	"github.com/mcnuttandrew/prong-sub001/internal/query"
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// Kind tags the projection variants.
type Kind string

const (
	KindInline      Kind = "inline"
	KindTooltip     Kind = "tooltip"
	KindFullTooltip Kind = "full-tooltip"
	KindHighlight   Kind = "highlight"
)

// Mode places an inline projection relative to the text it matches.
type Mode string

const (
	ModeReplace          Mode = "replace"
	ModePrefix           Mode = "prefix"
	ModeSuffix           Mode = "suffix"
	ModeReplaceMultiline Mode = "replace-multiline"
)

// Projection pairs a query with a placement. Mode and HasInternalState
// apply to inline projections, Class to highlights.
type Projection struct {
	Name             string
	Kind             Kind
	Mode             Mode
	HasInternalState bool
	Class            string
	Query            query.Query
}

// Blocks reports whether a match occludes the node's descendants.
func (p Projection) Blocks() bool {
	return p.Kind == KindInline && (p.Mode == ModeReplace || p.Mode == ModeReplaceMultiline)
}

// Key serializes the definition for fingerprints.
func (p Projection) Key() string {
	return strings.Join([]string{
		strconv.Quote(p.Name), string(p.Kind), string(p.Mode),
		strconv.FormatBool(p.HasInternalState), strconv.Quote(p.Class), query.Key(p.Query),
	}, "/")
}

// Attachment is a projection resolved to a span.
type Attachment struct {
	Span       syntax.Span
	Projection Projection
}

// Result partitions the attachments of one document state.
type Result struct {
	Inline    []Attachment
	Multiline []Attachment
	Highlight []Attachment
}

// Len returns the total number of attachments.
func (r Result) Len() int {
	return len(r.Inline) + len(r.Multiline) + len(r.Highlight)
}

// State is the document snapshot projections are located against.
type State struct {
	Tree *syntax.Tree
	// Selection is the main selection range; From is the caret for
	// collapsed selections.
	Selection syntax.Span
	// Focus is the span of the node the popover targets.
	Focus       syntax.Span
	Schemas     schema.Map
	Projections []Projection
}

func (s State) text() string {
	if s.Tree == nil {
		return ""
	}
	return s.Tree.Text
}
