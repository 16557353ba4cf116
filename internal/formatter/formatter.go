// Package formatter renders menus, projection attachments and parse trees
// for the terminal, or as JSON and YAML documents.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ValidFormats lists the accepted --output values.
var ValidFormats = []Format{FormatText, FormatJSON, FormatYAML}

// ParseFormat validates an output format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range ValidFormats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output %q: valid values are text, json, yaml", s)
}

var (
	defaultLabelColor  = lipgloss.Color("12")
	defaultButtonColor = lipgloss.Color("14")
	defaultMutedColor  = lipgloss.Color("248")
	defaultErrorColor  = lipgloss.Color("9")
	defaultWarnColor   = lipgloss.Color("11")
	defaultSeparator   = lipgloss.Color("240")

	labelStyle     lipgloss.Style
	buttonStyle    lipgloss.Style
	mutedStyle     lipgloss.Style
	errorStyle     lipgloss.Style
	warnStyle      lipgloss.Style
	separatorStyle lipgloss.Style
	selectedStyle  lipgloss.Style
)

// Colors controls the rendered colors. Nil fields fall back to ANSI 256
// defaults.
type Colors struct {
	Label     color.Color
	Button    color.Color
	Muted     color.Color
	Error     color.Color
	Warning   color.Color
	Separator color.Color
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

func applyTheme(c Colors) {
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(orDefault(c.Label, defaultLabelColor))
	buttonStyle = lipgloss.NewStyle().Foreground(orDefault(c.Button, defaultButtonColor))
	mutedStyle = lipgloss.NewStyle().Foreground(orDefault(c.Muted, defaultMutedColor))
	errorStyle = lipgloss.NewStyle().Foreground(orDefault(c.Error, defaultErrorColor))
	warnStyle = lipgloss.NewStyle().Foreground(orDefault(c.Warning, defaultWarnColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(c.Separator, defaultSeparator))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
}

// SetTheme overrides the global styles.
func SetTheme(c Colors) {
	applyTheme(c)
}

//nolint:gochecknoinits // initialize default theme for package consumers
func init() {
	applyTheme(Colors{})
}

// Options control text rendering.
type Options struct {
	NoColor bool
	// Width truncates lines to this many cells; 0 disables truncation.
	Width int
}

func (o Options) style(s lipgloss.Style, text string) string {
	if o.NoColor {
		return text
	}
	return s.Render(text)
}

func (o Options) fit(line string) string {
	if o.Width <= 0 || lipgloss.Width(line) <= o.Width {
		return line
	}
	if !o.NoColor {
		return lipgloss.NewStyle().MaxWidth(o.Width).Render(line)
	}
	return truncate(line, o.Width)
}

// truncate cuts s to maxLen cells, ending in "..." when there is room.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		out, err := FormatYAMLDoc(v, YAMLFormatOptions{LiteralBlockStrings: true})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("format %q is not a document encoding", format)
	}
}
