package popover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ModeStore persists the popover mode between sessions.
type ModeStore interface {
	Load() (Mode, error)
	Save(Mode) error
}

// FileStore keeps the mode in a small YAML document.
type FileStore struct {
	Path string
}

type stateFile struct {
	Mode string `yaml:"mode"`
}

// DefaultStatePath returns $XDG_STATE_HOME/prong/state.yaml, falling back
// to ~/.local/state/prong/state.yaml. It returns "" when neither can be
// determined.
func DefaultStatePath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "prong", "state.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "prong", "state.yaml")
	}
	return ""
}

// Load reads the stored mode. A missing file yields PreFirstUse.
func (s FileStore) Load() (Mode, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return PreFirstUse, nil
	}
	if err != nil {
		return PreFirstUse, fmt.Errorf("read state: %w", err)
	}
	var sf stateFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return PreFirstUse, fmt.Errorf("decode state %s: %w", s.Path, err)
	}
	if sf.Mode == "" {
		return PreFirstUse, nil
	}
	return ParseMode(sf.Mode)
}

// Save writes m, creating the parent directory as needed.
func (s FileStore) Save(m Mode) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := yaml.Marshal(stateFile{Mode: m.String()})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
