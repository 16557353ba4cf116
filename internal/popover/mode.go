// Package popover drives the interaction modes of the contextual menu and
// routes keyboard selection through its rows.
package popover

import "fmt"

// Mode is the discrete interaction state.
type Mode int

const (
	PreFirstUse Mode = iota
	TooltipClosed
	TooltipOpen
	TooltipInUse
	MonocleOpen
	DockOpen
)

var modeNames = [...]string{
	PreFirstUse:   "preFirstUse",
	TooltipClosed: "tooltipClosed",
	TooltipOpen:   "tooltipOpen",
	TooltipInUse:  "tooltipInUse",
	MonocleOpen:   "monocleOpen",
	DockOpen:      "dockOpen",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode maps a mode name back to its Mode.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), nil
		}
	}
	return PreFirstUse, fmt.Errorf("unknown popover mode %q", s)
}

// Modes returns every mode in declaration order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range modeNames {
		out[i] = Mode(i)
	}
	return out
}

// Event requests a mode transition.
type Event int

const (
	FirstUse Event = iota
	OpenTooltip
	CloseTooltip
	UseTooltip
	StopUsingTooltip
	SwitchToMonocle
	SwitchToDocked
	SwitchToTooltip
)

var eventNames = [...]string{
	FirstUse:         "firstUse",
	OpenTooltip:      "openTooltip",
	CloseTooltip:     "closeTooltip",
	UseTooltip:       "useTooltip",
	StopUsingTooltip: "stopUsingTooltip",
	SwitchToMonocle:  "switchToMonocle",
	SwitchToDocked:   "switchToDocked",
	SwitchToTooltip:  "switchToTooltip",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

// Events returns every event in declaration order.
func Events() []Event {
	out := make([]Event, len(eventNames))
	for i := range eventNames {
		out[i] = Event(i)
	}
	return out
}

// Next returns the mode reached from m on e. ok is false when the pair has
// no transition; the mode is then unchanged.
func Next(m Mode, e Event) (next Mode, ok bool) {
	switch m {
	case PreFirstUse:
		if e == FirstUse {
			return TooltipClosed, true
		}
	case TooltipClosed:
		if e == OpenTooltip {
			return TooltipOpen, true
		}
	case TooltipOpen:
		switch e {
		case UseTooltip:
			return TooltipInUse, true
		case CloseTooltip:
			return TooltipClosed, true
		case SwitchToMonocle:
			return MonocleOpen, true
		case SwitchToDocked:
			return DockOpen, true
		}
	case TooltipInUse:
		switch e {
		case StopUsingTooltip:
			return TooltipOpen, true
		case CloseTooltip:
			return TooltipClosed, true
		case SwitchToMonocle:
			return MonocleOpen, true
		case SwitchToDocked:
			return DockOpen, true
		}
	case MonocleOpen:
		switch e {
		case SwitchToTooltip:
			return TooltipOpen, true
		case SwitchToDocked:
			return DockOpen, true
		}
	case DockOpen:
		switch e {
		case SwitchToTooltip:
			return TooltipOpen, true
		case SwitchToMonocle:
			return MonocleOpen, true
		}
	}
	return m, false
}

// Restored maps a persisted mode to the mode a fresh session starts in.
// An armed session always reopens closed; only whether the popover was ever
// used survives a reload.
func Restored(m Mode) Mode {
	switch m {
	case TooltipClosed, TooltipOpen, TooltipInUse, MonocleOpen, DockOpen:
		return TooltipClosed
	default:
		return PreFirstUse
	}
}
