package popover

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/mcnuttandrew/prong-sub001/internal/menu"
	"github.com/mcnuttandrew/prong-sub001/internal/projection"
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// Routing addresses a menu cell. Col 0 is the row label; cols 1..N are the
// row's elements.
type Routing struct {
	Row int
	Col int
}

func (r Routing) String() string { return fmt.Sprintf("[%d,%d]", r.Row, r.Col) }

// State is the long-lived popover state.
type State struct {
	Mode                 Mode
	Target               *syntax.Node
	Routing              Routing
	Menu                 []menu.Row
	HasProjectionContent bool
}

// Direction is a keyboard routing move.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Document is the editor snapshot a selection change is processed against.
type Document struct {
	Tree *syntax.Tree
	// Ranges holds every selection range; resolution only happens for a
	// single collapsed range.
	Ranges      []syntax.Span
	Schemas     schema.Map
	Projections []projection.Projection
	Diagnostics []menu.Diagnostic
}

// Applier applies the edits of an activated menu element to the document.
type Applier interface {
	ApplyEdits([]menu.Edit) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func([]menu.Edit) error

func (f ApplierFunc) ApplyEdits(edits []menu.Edit) error { return f(edits) }

// Machine owns the popover state. It is not safe for concurrent use; each
// editor view owns its own Machine.
type Machine struct {
	log     logr.Logger
	builder *menu.Builder
	locator *projection.Locator
	store   ModeStore

	state       State
	attachments projection.Result
	input       string
}

// Option configures a Machine.
type Option func(*Machine)

func WithLogger(l logr.Logger) Option {
	return func(m *Machine) { m.log = l }
}

func WithBuilder(b *menu.Builder) Option {
	return func(m *Machine) { m.builder = b }
}

func WithLocator(l *projection.Locator) Option {
	return func(m *Machine) { m.locator = l }
}

// WithStore persists the mode after every transition and restores it when
// the machine is created.
func WithStore(s ModeStore) Option {
	return func(m *Machine) { m.store = s }
}

// New creates a Machine in PreFirstUse, or in the restored stored mode.
func New(opts ...Option) *Machine {
	m := &Machine{log: logr.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	if m.builder == nil {
		m.builder = menu.NewBuilder(menu.WithLogger(m.log))
	}
	if m.locator == nil {
		m.locator = projection.NewLocator(projection.WithLogger(m.log))
	}
	if m.store != nil {
		mode, err := m.store.Load()
		if err != nil {
			m.log.Error(err, "failed to restore popover mode")
		} else {
			m.state.Mode = Restored(mode)
		}
	}
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := m.state
	s.Menu = append([]menu.Row(nil), m.state.Menu...)
	return s
}

// Attachments returns the projections located on the last selection change.
func (m *Machine) Attachments() projection.Result {
	return m.attachments
}

// Dispatch applies e. Pairs without a transition are ignored.
func (m *Machine) Dispatch(e Event) {
	next, ok := Next(m.state.Mode, e)
	if !ok {
		m.log.V(1).Info("ignored popover event", "mode", m.state.Mode.String(), "event", e.String())
		return
	}
	m.log.V(1).Info("popover transition", "from", m.state.Mode.String(), "event", e.String(), "to", next.String())
	m.state.Mode = next
	if m.store != nil {
		if err := m.store.Save(next); err != nil {
			m.log.Error(err, "failed to persist popover mode")
		}
	}
}

// OnSelectionChange processes a selection or document change.
func (m *Machine) OnSelectionChange(doc Document) {
	if m.state.Mode == PreFirstUse {
		m.Dispatch(FirstUse)
		return
	}
	if doc.Tree == nil || len(doc.Ranges) != 1 || doc.Ranges[0].From != doc.Ranges[0].To {
		return
	}
	caret := doc.Ranges[0].From
	target := doc.Tree.NodeAt(caret)
	if target == nil {
		return
	}
	if prev := m.state.Target; prev == nil || prev.Span() != target.Span() {
		m.state.Routing = Routing{}
	}
	m.state.Target = target

	projState := projection.State{
		Tree:        doc.Tree,
		Selection:   doc.Ranges[0],
		Focus:       syntax.StructuralTarget(target).Span(),
		Schemas:     doc.Schemas,
		Projections: doc.Projections,
	}
	refs := m.locator.TooltipRefs(projState, target)
	m.state.Menu = m.builder.BuildRequest(menu.Request{
		Node:        target,
		Schemas:     doc.Schemas,
		Text:        doc.Tree.Text,
		Diagnostics: doc.Diagnostics,
		Projections: refs,
	})
	m.state.HasProjectionContent = len(refs) > 0
	m.attachments = m.locator.Locate(projState)
	m.clampRouting()
	m.Dispatch(OpenTooltip)
}

// MoveSelection moves the routed cell.
func (m *Machine) MoveSelection(d Direction) {
	r := m.state.Routing
	switch d {
	case Down:
		if r.Row+1 < len(m.state.Menu) {
			r.Row++
		}
		r.Col = 0
	case Up:
		if r.Row == 0 {
			m.Dispatch(StopUsingTooltip)
			return
		}
		r.Row--
		r.Col = 0
	case Left:
		if r.Col > 0 {
			r.Col--
		}
	case Right:
		if r.Col < m.elementCount(r.Row) {
			r.Col++
		}
	default:
		m.log.Info("unhandled routing direction", "direction", d.String())
		return
	}
	m.state.Routing = r
}

// SetInput records the text typed into the routed free-input element.
func (m *Machine) SetInput(s string) { m.input = s }

// Selected returns the routed element, if the routing addresses one.
func (m *Machine) Selected() (menu.Element, bool) {
	r := m.state.Routing
	if r.Col == 0 || r.Row >= len(m.state.Menu) {
		return nil, false
	}
	elems := m.state.Menu[r.Row].Elements
	if r.Col-1 >= len(elems) {
		return nil, false
	}
	return elems[r.Col-1], true
}

// ActivateSelection runs the routed element's action through a, then
// closes the tooltip and resets routing. Col 0 is a no-op.
func (m *Machine) ActivateSelection(a Applier) error {
	el, ok := m.Selected()
	if !ok {
		return nil
	}
	var err error
	switch t := el.(type) {
	case menu.Button:
		if a != nil && len(t.Edits) > 0 {
			err = a.ApplyEdits(t.Edits)
		}
	case menu.FreeInput:
		var edits []menu.Edit
		edits, err = t.Render(m.input)
		if err == nil && a != nil {
			err = a.ApplyEdits(edits)
		}
		m.input = ""
	case menu.Display, menu.ProjectionRef:
	default:
		m.log.Info("unhandled menu element", "kind", string(el.Kind()))
	}
	m.Dispatch(CloseTooltip)
	m.state.Routing = Routing{}
	return err
}

func (m *Machine) elementCount(row int) int {
	if row < 0 || row >= len(m.state.Menu) {
		return 0
	}
	return len(m.state.Menu[row].Elements)
}

func (m *Machine) clampRouting() {
	r := m.state.Routing
	if r.Row >= len(m.state.Menu) {
		r = Routing{}
	}
	if n := m.elementCount(r.Row); r.Col > n {
		r.Col = n
	}
	m.state.Routing = r
}
