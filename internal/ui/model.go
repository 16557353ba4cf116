// Package ui hosts the contextual menu in a terminal: a read-only document
// view with a caret, and the popover rendered as a tooltip, a full-screen
// monocle or a side dock.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/mcnuttandrew/prong-sub001/internal/menu"
	"github.com/mcnuttandrew/prong-sub001/internal/popover"
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/pkg/core"
	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

// Options configure a Model.
type Options struct {
	Caret   int
	NoColor bool
	Keymap  settings.Keymap
	Logger  logr.Logger
	// Context bounds background schema resolution.
	Context context.Context
	Theme   *Theme
	Width   int
	Height  int
}

// schemaResolvedMsg carries a background schema resolution for Text.
type schemaResolvedMsg struct {
	Text   string
	Schema schema.Map
	Err    error
}

// Model is the Bubble Tea model driving a core.Engine.
type Model struct {
	engine *core.Engine
	ctx    context.Context
	log    logr.Logger
	keys   map[string]Action
	styles styles

	NoColor bool
	Caret   int
	Width   int
	Height  int

	// menuFocus routes arrows to the menu in monocle and dock modes.
	menuFocus bool
	editing   bool
	input     textinput.Model

	Status   string
	ErrMsg   string
	quitting bool
}

// NewModel creates a Model for engine, which must already hold a document.
func NewModel(engine *core.Engine, opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.SetWidth(40)

	m := &Model{
		engine:  engine,
		ctx:     ctx,
		log:     log,
		keys:    Bindings(opts.Keymap),
		styles:  newStyles(theme, opts.NoColor),
		NoColor: opts.NoColor,
		Width:   opts.Width,
		Height:  opts.Height,
		input:   ti,
	}
	m.Caret = m.clamp(opts.Caret)
	if err := engine.Caret(m.Caret); err != nil {
		m.ErrMsg = err.Error()
	}
	return m
}

// Engine returns the engine the model drives.
func (m *Model) Engine() *core.Engine { return m.engine }

// Mode returns the popover mode.
func (m *Model) Mode() popover.Mode { return m.engine.CurrentState().Mode }

// Editing reports whether a free input is being typed into.
func (m *Model) Editing() bool { return m.editing }

// Init starts resolving the schema for the loaded document.
func (m *Model) Init() tea.Cmd {
	return m.resolveSchema()
}

func (m *Model) resolveSchema() tea.Cmd {
	text := m.engine.Text()
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		sm, err := engine.ResolveSchemaMap(ctx, text)
		return schemaResolvedMsg{Text: text, Schema: sm, Err: err}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil
	case schemaResolvedMsg:
		m.applySchema(msg)
		return m, nil
	case tea.KeyPressMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.handleKey(msg)
	}
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applySchema(msg schemaResolvedMsg) {
	if msg.Err != nil {
		m.log.Error(msg.Err, "schema resolution failed")
		m.ErrMsg = fmt.Sprintf("schema: %v", msg.Err)
		return
	}
	if !m.engine.SetSchemaMap(msg.Text, msg.Schema) {
		return
	}
	// Rebuild the open menu so schema rows show up; a closed tooltip stays
	// closed.
	switch m.Mode() {
	case popover.PreFirstUse, popover.TooltipClosed:
		return
	}
	if err := m.engine.Caret(m.Caret); err != nil {
		m.ErrMsg = err.Error()
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	action := m.keys[msg.String()]
	m.ErrMsg = ""
	switch action {
	case ActionQuit:
		m.quitting = true
		return m, tea.Quit
	case ActionUp, ActionDown, ActionLeft, ActionRight:
		if m.menuFocused() {
			m.engine.MoveSelection(direction(action))
			return m, nil
		}
		m.moveCaret(action)
	case ActionUseTooltip:
		switch m.Mode() {
		case popover.MonocleOpen, popover.DockOpen:
			m.menuFocus = !m.menuFocus
		default:
			m.engine.Dispatch(popover.UseTooltip)
		}
	case ActionClose:
		switch m.Mode() {
		case popover.MonocleOpen, popover.DockOpen:
			m.menuFocus = false
			m.engine.Dispatch(popover.SwitchToTooltip)
		default:
			m.engine.Dispatch(popover.CloseTooltip)
		}
	case ActionActivate:
		return m, m.activate()
	case ActionMonocle:
		m.engine.Dispatch(popover.SwitchToMonocle)
	case ActionDock:
		m.engine.Dispatch(popover.SwitchToDocked)
	case ActionTooltip:
		m.menuFocus = false
		m.engine.Dispatch(popover.SwitchToTooltip)
	}
	return m, nil
}

func (m *Model) menuFocused() bool {
	switch m.Mode() {
	case popover.TooltipInUse:
		return true
	case popover.MonocleOpen, popover.DockOpen:
		return m.menuFocus
	default:
		return false
	}
}

func direction(a Action) popover.Direction {
	switch a {
	case ActionUp:
		return popover.Up
	case ActionDown:
		return popover.Down
	case ActionLeft:
		return popover.Left
	default:
		return popover.Right
	}
}

// activate runs the routed element. Free inputs start editing instead;
// the edit is applied when the input is submitted.
func (m *Model) activate() tea.Cmd {
	if !m.menuFocused() {
		if m.Mode() == popover.TooltipClosed {
			m.setCaret(m.Caret)
		}
		return nil
	}
	el, ok := m.engine.Selected()
	if !ok {
		return nil
	}
	if fi, isInput := el.(menu.FreeInput); isInput {
		m.editing = true
		m.input.Placeholder = fi.Label
		m.input.SetValue("")
		return m.input.Focus()
	}
	return m.apply()
}

func (m *Model) updateEditing(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.engine.SetInput(m.input.Value())
		m.stopEditing()
		return m, m.apply()
	case "esc":
		m.stopEditing()
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.SetValue("")
}

// apply activates the routed element and re-resolves the schema when the
// document changed.
func (m *Model) apply() tea.Cmd {
	before := m.engine.Text()
	if err := m.engine.ActivateSelection(); err != nil {
		m.log.Error(err, "menu action failed")
		m.ErrMsg = err.Error()
		return nil
	}
	m.menuFocus = false
	if m.engine.Text() == before {
		return nil
	}
	m.Caret = m.clamp(m.Caret)
	m.Status = "applied edit"
	return m.resolveSchema()
}

func (m *Model) moveCaret(a Action) {
	text := m.engine.Text()
	pos := m.Caret
	switch a {
	case ActionLeft:
		if pos > 0 {
			_, size := utf8.DecodeLastRuneInString(text[:pos])
			pos -= size
		}
	case ActionRight:
		if pos < len(text) {
			_, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
		}
	case ActionUp:
		pos = verticalMove(text, pos, -1)
	case ActionDown:
		pos = verticalMove(text, pos, 1)
	}
	m.setCaret(pos)
}

func (m *Model) setCaret(pos int) {
	m.Caret = m.clamp(pos)
	if err := m.engine.Caret(m.Caret); err != nil {
		if errors.Is(err, core.ErrNoDocument) {
			m.ErrMsg = "no document"
			return
		}
		m.ErrMsg = err.Error()
	}
}

func (m *Model) clamp(pos int) int {
	n := len(m.engine.Text())
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}

// verticalMove moves pos to the same column on the line delta lines away,
// clamped to that line's length. Columns count bytes.
func verticalMove(text string, pos, delta int) int {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	col := pos - lineStart
	var target int
	if delta < 0 {
		if lineStart == 0 {
			return pos
		}
		target = strings.LastIndexByte(text[:lineStart-1], '\n') + 1
	} else {
		next := strings.IndexByte(text[pos:], '\n')
		if next < 0 {
			return pos
		}
		target = pos + next + 1
	}
	end := strings.IndexByte(text[target:], '\n')
	lineLen := len(text) - target
	if end >= 0 {
		lineLen = end
	}
	if col > lineLen {
		col = lineLen
	}
	return target + col
}
