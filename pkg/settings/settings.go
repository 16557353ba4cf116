// Package settings provides build metadata, run configuration and the
// context helpers shared by the prong CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "prong"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Keymap names a key binding preset for the interactive host.
type Keymap string

const (
	KeymapDefault Keymap = "default"
	KeymapVim     Keymap = "vim"
)

// Run holds the settings of a single execution.
type Run struct {
	MinLogLevel int8
	IsQuiet     bool
	NoColor     bool
	Keymap      Keymap
	// ConfigFile is the resolved projection definition file, if any.
	ConfigFile  string
	// StatePath is where the interactive host persists the popover mode.
	// Empty disables persistence.
	StatePath   string
	ExitOnError bool
}

// NewCliParams returns the CLI defaults.
func NewCliParams() *Run {
	return &Run{
		Keymap:      KeymapDefault,
		ExitOnError: true,
	}
}
