package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/mcnuttandrew/prong-sub001/pkg/core"
)

// Run starts the interactive host on engine. Width/height of 0 are
// auto-detected from the terminal, falling back to 80x24.
func Run(engine *core.Engine, opts Options, progOpts ...tea.ProgramOption) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if opts.Width <= 0 {
				opts.Width = w
			}
			if opts.Height <= 0 {
				opts.Height = h
			}
		}
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	progOpts = append(progOpts, tea.WithWindowSize(opts.Width, opts.Height))

	m := NewModel(engine, opts)
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}
