package projection

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/mcnuttandrew/prong-sub001/internal/keypath"
	"github.com/mcnuttandrew/prong-sub001/internal/menu"
	"github.com/mcnuttandrew/prong-sub001/internal/query"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// Locator walks the tree once per document state and remembers the most
// recent result. A Locator is not safe for concurrent use.
type Locator struct {
	log    logr.Logger
	engine *query.Engine

	fingerprint string
	last        Result
	cached      bool
}

// Option configures a Locator.
type Option func(*Locator)

// WithLogger sets the locator's logger.
func WithLogger(l logr.Logger) Option {
	return func(lc *Locator) { lc.log = l }
}

// WithEngine shares a query engine (and its cache) with the locator.
func WithEngine(e *query.Engine) Option {
	return func(lc *Locator) { lc.engine = e }
}

// NewLocator creates a Locator with its own query engine unless one is
// supplied.
func NewLocator(opts ...Option) *Locator {
	lc := &Locator{log: logr.Discard()}
	for _, opt := range opts {
		opt(lc)
	}
	if lc.engine == nil {
		lc.engine = query.NewEngine(query.WithLogger(lc.log))
	}
	return lc
}

// Locate returns the attachments for st. An unchanged fingerprint returns
// the previous result; a failing walk yields an empty result.
func (lc *Locator) Locate(st State) Result {
	fp := fingerprint(st)
	if lc.cached && fp == lc.fingerprint {
		lc.log.V(1).Info("projection fingerprint unchanged")
		return lc.last
	}
	res, err := lc.locate(st)
	if err != nil {
		lc.log.Error(err, "projection location failed")
		lc.cached = false
		return Result{}
	}
	lc.fingerprint, lc.last, lc.cached = fp, res, true
	return res
}

// Invalidate drops the remembered result.
func (lc *Locator) Invalidate() {
	lc.cached = false
	lc.last = Result{}
}

func fingerprint(st State) string {
	var b strings.Builder
	b.WriteString(st.text())
	b.WriteString("\x00")
	b.WriteString(st.Focus.Key())
	for _, p := range st.Projections {
		b.WriteString("\x00")
		b.WriteString(p.Key())
	}
	b.WriteString("\x00")
	b.WriteString(strings.Join(st.Schemas.Keys(), ","))
	return b.String()
}

func (lc *Locator) locate(st State) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("walk panicked: %v", r)
		}
	}()
	if st.Tree == nil || st.Tree.Root == nil {
		return Result{}, nil
	}
	text := st.Tree.Text
	caret := st.Selection.From

	syntax.Walk(st.Tree.Root, func(n *syntax.Node) bool {
		if n.Kind == syntax.KindError {
			return false
		}
		if !attachable(n) {
			return true
		}
		ctx := lc.context(n, st, text)
		blocked := false
		for _, p := range st.Projections {
			switch p.Kind {
			case KindInline:
				if p.Mode == ModeReplace && !p.HasInternalState && n.Span().Contains(caret) {
					continue
				}
				if !lc.matches(p, ctx) {
					continue
				}
				att := Attachment{Span: n.Span(), Projection: p}
				if p.Mode == ModeReplaceMultiline {
					res.Multiline = append(res.Multiline, att)
				} else {
					res.Inline = append(res.Inline, att)
				}
				if p.Blocks() {
					blocked = true
				}
			case KindHighlight:
				if lc.matches(p, ctx) {
					res.Highlight = append(res.Highlight, Attachment{Span: n.Span(), Projection: p})
				}
			case KindTooltip, KindFullTooltip:
			default:
				lc.log.Info("unhandled projection kind", "kind", string(p.Kind), "projection", p.Name)
			}
		}
		return !blocked
	})
	return res, nil
}

// attachable reports whether projections may attach to n: values and
// property names. Containers without a value of their own (the document
// root, properties) share their key path with a child and are only walked.
func attachable(n *syntax.Node) bool {
	return n.Kind.IsValue() || n.Kind == syntax.KindPropertyName
}

// Tooltips returns the tooltip and full-tooltip projections whose query
// passes for n. Punctuation and error placeholders are redirected to their
// structural target first.
func (lc *Locator) Tooltips(st State, n *syntax.Node) []Projection {
	n = syntax.StructuralTarget(n)
	if n == nil {
		return nil
	}
	ctx := lc.context(n, st, st.text())
	var out []Projection
	for _, p := range st.Projections {
		if p.Kind != KindTooltip && p.Kind != KindFullTooltip {
			continue
		}
		if lc.matches(p, ctx) {
			out = append(out, p)
		}
	}
	return out
}

// TooltipRefs returns the matching tooltip projections of n as menu
// elements bound to its structural target.
func (lc *Locator) TooltipRefs(st State, n *syntax.Node) []menu.ProjectionRef {
	tooltips := lc.Tooltips(st, n)
	if len(tooltips) == 0 {
		return nil
	}
	span := syntax.StructuralTarget(n).Span()
	refs := make([]menu.ProjectionRef, 0, len(tooltips))
	for _, p := range tooltips {
		refs = append(refs, menu.ProjectionRef{Name: p.Name, Span: span})
	}
	return refs
}

func (lc *Locator) context(n *syntax.Node, st State, text string) query.Context {
	return query.Context{
		KeyPath:       keypath.Resolve(n, text),
		NodeValue:     n.Text(text),
		NodeType:      n.Type(),
		SchemaTypings: st.Schemas.At(n.Span()),
		Cursor:        st.Selection.From,
		NodeSpan:      n.Span(),
	}
}

func (lc *Locator) matches(p Projection, ctx query.Context) bool {
	ctx.QueryIdentity = p.Name
	return lc.engine.Evaluate(p.Query, ctx)
}
