package ui

import (
	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

// Action is what a key press does in the host.
type Action string

const (
	ActionNone       Action = ""
	ActionQuit       Action = "quit"
	ActionUp         Action = "up"
	ActionDown       Action = "down"
	ActionLeft       Action = "left"
	ActionRight      Action = "right"
	ActionUseTooltip Action = "use_tooltip"
	ActionClose      Action = "close"
	ActionActivate   Action = "activate"
	ActionMonocle    Action = "monocle"
	ActionDock       Action = "dock"
	ActionTooltip    Action = "tooltip"
)

// DefaultKeyBindings maps keys to actions for the default keymap.
var DefaultKeyBindings = map[string]Action{
	"ctrl+c": ActionQuit,
	"q":      ActionQuit,
	"up":     ActionUp,
	"down":   ActionDown,
	"left":   ActionLeft,
	"right":  ActionRight,
	"tab":    ActionUseTooltip,
	"esc":    ActionClose,
	"enter":  ActionActivate,
	"f2":     ActionMonocle,
	"f3":     ActionDock,
	"f4":     ActionTooltip,
}

// VimKeyBindings adds hjkl movement on top of the default keys.
var VimKeyBindings = map[string]Action{
	"h": ActionLeft,
	"j": ActionDown,
	"k": ActionUp,
	"l": ActionRight,
}

// Bindings returns the key map for a keymap preset.
func Bindings(km settings.Keymap) map[string]Action {
	out := make(map[string]Action, len(DefaultKeyBindings)+len(VimKeyBindings))
	for k, a := range DefaultKeyBindings {
		out[k] = a
	}
	if km == settings.KeymapVim {
		for k, a := range VimKeyBindings {
			out[k] = a
		}
	}
	return out
}

// helpLine lists the main bindings for the footer.
const helpLine = "arrows move · tab use menu · enter apply · esc close · f2 monocle · f3 dock · f4 tooltip · q quit"
