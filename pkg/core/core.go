// Package core is the embeddable API of prong: one Engine per editor view
// owning the query cache, the projection locator and the popover state.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/mcnuttandrew/prong-sub001/internal/cel"
	"github.com/mcnuttandrew/prong-sub001/internal/config"
	"github.com/mcnuttandrew/prong-sub001/internal/keypath"
	"github.com/mcnuttandrew/prong-sub001/internal/menu"
	"github.com/mcnuttandrew/prong-sub001/internal/popover"
	"github.com/mcnuttandrew/prong-sub001/internal/projection"
	"github.com/mcnuttandrew/prong-sub001/internal/query"
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
	"github.com/mcnuttandrew/prong-sub001/pkg/logger"
)

// ErrNoDocument is returned by operations that need a document before
// SetText has been called.
var ErrNoDocument = errors.New("no document loaded")

// Engine ties the editing engines to one document. Its methods are safe to
// call from several goroutines; schema maps in particular may arrive from a
// background resolution.
type Engine struct {
	mu sync.Mutex

	log      logr.Logger
	queries  *query.Engine
	builder  *menu.Builder
	locator  *projection.Locator
	machine  *popover.Machine
	resolver schema.CrossReference
	compiler *cel.Compiler
	store    popover.ModeStore

	schemaRoot  map[string]any
	projections []projection.Projection
	diagnostics []menu.Diagnostic

	tree       *syntax.Tree
	schemas    schema.Map
	schemaText string
	ranges     []syntax.Span
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by every engine component.
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithSchema sets the JSON Schema documents are resolved against.
func WithSchema(root map[string]any) Option {
	return func(e *Engine) { e.schemaRoot = root }
}

// WithCrossReference replaces the schema resolver.
func WithCrossReference(cr schema.CrossReference) Option {
	return func(e *Engine) { e.resolver = cr }
}

// WithProjections sets the initial projection definitions.
func WithProjections(ps ...projection.Projection) Option {
	return func(e *Engine) { e.projections = ps }
}

// WithModeStore persists the popover mode.
func WithModeStore(s popover.ModeStore) Option {
	return func(e *Engine) { e.store = s }
}

// New creates an Engine with its own caches.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{log: logr.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	compiler, err := cel.NewCompiler()
	if err != nil {
		return nil, fmt.Errorf("create predicate compiler: %w", err)
	}
	e.compiler = compiler
	if e.resolver == nil {
		e.resolver = schema.NewResolver(schema.WithLogger(logger.Named(e.log, logger.ComponentSchema)))
	}
	e.queries = query.NewEngine(query.WithLogger(logger.Named(e.log, logger.ComponentQuery)))
	e.builder = menu.NewBuilder(menu.WithLogger(logger.Named(e.log, logger.ComponentMenu)))
	e.locator = projection.NewLocator(
		projection.WithLogger(logger.Named(e.log, logger.ComponentProjection)),
		projection.WithEngine(e.queries),
	)
	machineOpts := []popover.Option{
		popover.WithLogger(logger.Named(e.log, logger.ComponentPopover)),
		popover.WithBuilder(e.builder),
		popover.WithLocator(e.locator),
	}
	if e.store != nil {
		machineOpts = append(machineOpts, popover.WithStore(e.store))
	}
	e.machine = popover.New(machineOpts...)
	return e, nil
}

// Compiler returns the compiler used for function query predicates.
func (e *Engine) Compiler() *cel.Compiler { return e.compiler }

// SetText replaces the document. Schema maps computed for other text are
// dropped and the selection is cleared.
func (e *Engine) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setText(text)
}

func (e *Engine) setText(text string) {
	e.tree = syntax.Parse(text)
	if e.schemaText != text {
		e.schemas = nil
		e.schemaText = ""
	}
	e.ranges = nil
}

// Text returns the current document text.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return ""
	}
	return e.tree.Text
}

// Tree returns the current parse tree, or nil before SetText.
func (e *Engine) Tree() *syntax.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// SetSchema replaces the schema root. The current schema map is dropped.
func (e *Engine) SetSchema(root map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.schemaRoot = root
	e.schemas = nil
	e.schemaText = ""
}

// ResolveSchemaMap resolves the schema against text without touching the
// engine's state, for hosts that resolve in the background and hand the
// result to SetSchemaMap.
func (e *Engine) ResolveSchemaMap(ctx context.Context, text string) (schema.Map, error) {
	e.mu.Lock()
	root, resolver := e.schemaRoot, e.resolver
	e.mu.Unlock()
	return resolver.Resolve(ctx, root, text)
}

// ResolveSchemas resolves the schema against the current document and
// installs the result.
func (e *Engine) ResolveSchemas(ctx context.Context) (schema.Map, error) {
	e.mu.Lock()
	if e.tree == nil {
		e.mu.Unlock()
		return nil, ErrNoDocument
	}
	text := e.tree.Text
	e.mu.Unlock()

	m, err := e.ResolveSchemaMap(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	e.SetSchemaMap(text, m)
	return m, nil
}

// SetSchemaMap installs a schema map computed for text. Maps for text other
// than the current document are stale and dropped; the result reports
// whether m was installed.
func (e *Engine) SetSchemaMap(text string, m schema.Map) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil || e.tree.Text != text {
		e.log.V(1).Info("dropped stale schema map", "spans", len(m))
		return false
	}
	e.schemas = m
	e.schemaText = text
	return true
}

// Schemas returns the installed schema map.
func (e *Engine) Schemas() schema.Map {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.schemas
}

// SetProjections replaces the projection definitions.
func (e *Engine) SetProjections(ps []projection.Projection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.projections = ps
}

// Projections returns the projection definitions.
func (e *Engine) Projections() []projection.Projection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]projection.Projection(nil), e.projections...)
}

// LoadProjections loads a projection definition file and installs its
// projections. Warnings, such as unknown query types, do not fail the load.
func (e *Engine) LoadProjections(path string) (*config.Loaded, error) {
	loaded, err := config.LoadFile(path, e.compiler)
	if err != nil {
		return nil, err
	}
	for _, w := range loaded.Warnings {
		e.log.Info("projection file warning", "path", path, "warning", w.Error())
	}
	e.SetProjections(loaded.Projections)
	return loaded, nil
}

// SetDiagnostics replaces the externally produced diagnostics.
func (e *Engine) SetDiagnostics(d []menu.Diagnostic) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.diagnostics = d
}

// EvaluateQuery evaluates q against ctx using the engine's cache.
func (e *Engine) EvaluateQuery(q query.Query, ctx query.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queries.Evaluate(q, ctx)
}

// QueryContextAt builds the query context of the node at pos, redirecting
// punctuation and error placeholders to their structural target.
func (e *Engine) QueryContextAt(pos int, identity string) (query.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return query.Context{}, ErrNoDocument
	}
	n := syntax.StructuralTarget(e.tree.NodeAt(pos))
	if n == nil {
		return query.Context{}, fmt.Errorf("no node at %d", pos)
	}
	text := e.tree.Text
	return query.Context{
		KeyPath:       keypath.Resolve(n, text),
		NodeValue:     n.Text(text),
		NodeType:      n.Type(),
		SchemaTypings: e.schemas.At(n.Span()),
		Cursor:        pos,
		NodeSpan:      n.Span(),
		QueryIdentity: identity,
	}, nil
}

// BuildMenuContent builds the menu for node with the installed schema map,
// diagnostics and tooltip projections.
func (e *Engine) BuildMenuContent(node *syntax.Node) []menu.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil || node == nil {
		return nil
	}
	cursor := node.From
	if len(e.ranges) > 0 {
		cursor = e.ranges[0].From
	}
	return e.buildMenu(node, cursor)
}

// MenuAt resolves the node at pos and builds its menu as if the caret sat
// at pos.
func (e *Engine) MenuAt(pos int) (*syntax.Node, []menu.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return nil, nil, ErrNoDocument
	}
	n := e.tree.NodeAt(pos)
	if n == nil {
		return nil, nil, fmt.Errorf("no node at %d", pos)
	}
	return n, e.buildMenu(n, pos), nil
}

func (e *Engine) buildMenu(node *syntax.Node, cursor int) []menu.Row {
	st := e.projectionState()
	st.Selection = syntax.Span{From: cursor, To: cursor}
	st.Focus = syntax.StructuralTarget(node).Span()
	return e.builder.BuildRequest(menu.Request{
		Node:        node,
		Schemas:     e.schemas,
		Text:        e.tree.Text,
		Diagnostics: e.diagnostics,
		Projections: e.locator.TooltipRefs(st, node),
	})
}

// LocateProjections locates the projections for the current selection.
func (e *Engine) LocateProjections() (projection.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return projection.Result{}, ErrNoDocument
	}
	return e.locator.Locate(e.projectionState()), nil
}

func (e *Engine) projectionState() projection.State {
	st := projection.State{
		Tree:        e.tree,
		Schemas:     e.schemas,
		Projections: e.projections,
	}
	if len(e.ranges) > 0 {
		st.Selection = e.ranges[0]
		if n := syntax.StructuralTarget(e.tree.NodeAt(st.Selection.From)); n != nil {
			st.Focus = n.Span()
		}
	}
	return st
}

// Select records the selection ranges and runs the popover's selection
// change handling.
func (e *Engine) Select(ranges ...syntax.Span) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return ErrNoDocument
	}
	e.ranges = append([]syntax.Span(nil), ranges...)
	e.machine.OnSelectionChange(popover.Document{
		Tree:        e.tree,
		Ranges:      e.ranges,
		Schemas:     e.schemas,
		Projections: e.projections,
		Diagnostics: e.diagnostics,
	})
	return nil
}

// Caret selects the collapsed range at pos.
func (e *Engine) Caret(pos int) error {
	return e.Select(syntax.Span{From: pos, To: pos})
}

// Dispatch sends a mode event to the popover.
func (e *Engine) Dispatch(ev popover.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.Dispatch(ev)
}

// CurrentState returns a copy of the popover state.
func (e *Engine) CurrentState() popover.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.State()
}

// Attachments returns the projections located on the last selection change.
func (e *Engine) Attachments() projection.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Attachments()
}

// MoveSelection moves the routed menu cell.
func (e *Engine) MoveSelection(d popover.Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.MoveSelection(d)
}

// Selected returns the routed menu element, if any.
func (e *Engine) Selected() (menu.Element, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Selected()
}

// SetInput records text typed into the routed free-input element.
func (e *Engine) SetInput(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.SetInput(s)
}

// ActivateSelection runs the routed element and applies its edits to the
// document. The document is reparsed and the schema map dropped when the
// text changes.
func (e *Engine) ActivateSelection() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tree == nil {
		return ErrNoDocument
	}
	return e.machine.ActivateSelection(popover.ApplierFunc(func(edits []menu.Edit) error {
		next, err := menu.ApplyEdits(e.tree.Text, edits)
		if err != nil {
			return err
		}
		e.setText(next)
		return nil
	}))
}
