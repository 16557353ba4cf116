package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
)

// Theme defines the colors used by the host.
type Theme struct {
	Accent    color.Color // labels, borders
	Muted     color.Color // display rows, footer
	Caret     color.Color // caret background
	Highlight color.Color // highlight projections
	Error     color.Color
	Separator color.Color
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		Accent:    lipgloss.Color("81"),
		Muted:     lipgloss.Color("245"),
		Caret:     lipgloss.Color("24"),
		Highlight: lipgloss.Color("58"),
		Error:     lipgloss.Color("203"),
		Separator: lipgloss.Color("238"),
	}
}

type styles struct {
	border    lipgloss.Style
	caret     lipgloss.Style
	highlight lipgloss.Style
	status    lipgloss.Style
	errorText lipgloss.Style
	footer    lipgloss.Style
}

func newStyles(t Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			border:    plain.Border(lipgloss.NormalBorder()),
			caret:     plain,
			highlight: plain,
			status:    plain,
			errorText: plain,
			footer:    plain,
		}
	}
	formatter.SetTheme(formatter.Colors{Label: t.Accent, Muted: t.Muted, Error: t.Error, Separator: t.Separator})
	return styles{
		border:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Accent),
		caret:     lipgloss.NewStyle().Background(t.Caret).Reverse(true),
		highlight: lipgloss.NewStyle().Background(t.Highlight),
		status:    lipgloss.NewStyle().Foreground(t.Accent),
		errorText: lipgloss.NewStyle().Foreground(t.Error),
		footer:    lipgloss.NewStyle().Foreground(t.Muted),
	}
}
