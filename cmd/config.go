package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcnuttandrew/prong-sub001/internal/cel"
	"github.com/mcnuttandrew/prong-sub001/internal/config"
	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
	"github.com/mcnuttandrew/prong-sub001/internal/projection"
	"github.com/mcnuttandrew/prong-sub001/internal/query"
	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

// projectionReport describes one validated projection definition.
type projectionReport struct {
	Name  string   `json:"name" yaml:"name"`
	Kind  string   `json:"kind" yaml:"kind"`
	Mode  string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Class string   `json:"class,omitempty" yaml:"class,omitempty"`
	Query string   `json:"query" yaml:"query"`
	Uses  []string `json:"uses,omitempty" yaml:"uses,omitempty"`
}

type configReport struct {
	Path        string             `json:"path" yaml:"path"`
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Version     string             `json:"version,omitempty" yaml:"version,omitempty"`
	Projections []projectionReport `json:"projections" yaml:"projections"`
	Warnings    []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect projection definition files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Validate a projection file and list what each function query reads",
		Long: `Validate a projection definition file. FILE defaults to --config-file,
then $XDG_CONFIG_HOME/prong/config.yaml. Unknown query types are reported
as warnings; such projections never match.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := settings.FromContextOrDefault(cmd.Context()).ConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no projection file: pass FILE or --config-file")
			}
			compiler, err := cel.NewCompiler()
			if err != nil {
				return err
			}
			loaded, err := config.LoadFile(path, compiler)
			if err != nil {
				return err
			}
			report := newConfigReport(path, loaded)

			out := cmd.OutOrStdout()
			if format := opts.format(); format != formatter.FormatText {
				return formatter.Encode(out, format, report)
			}
			writeConfigReport(out, report)
			return nil
		},
	}

	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "List the functions and variables available to function queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			compiler, err := cel.NewCompiler()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format := opts.format(); format != formatter.FormatText {
				return formatter.Encode(out, format, map[string]any{
					"variables": cel.Variables,
					"functions": compiler.Functions(),
				})
			}
			fmt.Fprintf(out, "variables: %s\n\n", strings.Join(cel.Variables, ", "))
			for _, fn := range compiler.Functions() {
				fmt.Fprintln(out, fn)
			}
			return nil
		},
	}

	configCmd.AddCommand(validateCmd, functionsCmd)
	return configCmd
}

func newConfigReport(path string, loaded *config.Loaded) configReport {
	r := configReport{
		Path:        path,
		Name:        loaded.Config.Name,
		Version:     loaded.Config.Version,
		Projections: make([]projectionReport, 0, len(loaded.Projections)),
	}
	for _, p := range loaded.Projections {
		pr := projectionReport{
			Name:  p.Name,
			Kind:  string(p.Kind),
			Class: p.Class,
			Query: query.Key(p.Query),
		}
		if p.Kind == projection.KindInline {
			pr.Mode = string(p.Mode)
		}
		if pred, ok := loaded.Predicates[p.Name]; ok {
			pr.Uses = pred.Uses
		}
		r.Projections = append(r.Projections, pr)
	}
	for _, w := range loaded.Warnings {
		r.Warnings = append(r.Warnings, w.Error())
	}
	return r
}

func writeConfigReport(w io.Writer, r configReport) {
	header := r.Path
	if r.Name != "" {
		header = fmt.Sprintf("%s (%s %s)", r.Path, r.Name, r.Version)
	}
	fmt.Fprintf(w, "%s: %d projections\n", strings.TrimSpace(header), len(r.Projections))
	for _, p := range r.Projections {
		line := fmt.Sprintf("  %s  %s", p.Name, p.Kind)
		if p.Mode != "" {
			line += "/" + p.Mode
		}
		if p.Class != "" {
			line += " ." + p.Class
		}
		line += "  " + p.Query
		if len(p.Uses) > 0 {
			line += "  uses: " + strings.Join(p.Uses, ", ")
		}
		fmt.Fprintln(w, line)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
