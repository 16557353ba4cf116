package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
	"github.com/mcnuttandrew/prong-sub001/internal/popover"
	"github.com/mcnuttandrew/prong-sub001/internal/ui"
	"github.com/mcnuttandrew/prong-sub001/pkg/logger"
	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile  string
	output      string
	noColor     bool
	logLevel    int8
	keymap      string
	interactive bool
	pos         int
	schemaFile  string
	width       int
	height      int
}

// NewRootCommand builds the prong command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [FILE]",
		Short: "Contextual JSON editing menus, projections and queries",
		Long: `prong builds the contextual menu for a position in a JSON document,
locates projection definitions against it and evaluates single queries.

JSON input keeps its byte offsets. YAML and TOML input is converted to
indented JSON first; positions then refer to the converted text.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.interactive {
				return cmd.Help()
			}
			if len(args) == 0 {
				return fmt.Errorf("interactive mode needs a FILE")
			}
			return runInteractive(cmd, opts, args[0])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config-file", "", "path to a projection definition file (YAML or TOML)")
	pf.StringVarP(&opts.output, "output", "o", "text", "output format: text|json|yaml")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable color output")
	pf.Int8Var(&opts.logLevel, "log-level", 1, "log level: -1 debug, 0 info, 1 warn, 2 error")
	pf.StringVar(&opts.schemaFile, "schema", "", "path to a JSON Schema (JSON or YAML)")

	rootCmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "start the interactive menu host")
	rootCmd.Flags().IntVar(&opts.pos, "pos", 0, "initial caret offset")
	rootCmd.Flags().StringVar(&opts.keymap, "keymap", string(settings.KeymapDefault), "key bindings: default|vim")
	rootCmd.Flags().IntVar(&opts.width, "width", 0, "terminal width (0 = detect)")
	rootCmd.Flags().IntVar(&opts.height, "height", 0, "terminal height (0 = detect)")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(
		newMenuCommand(opts),
		newProjectionsCommand(opts),
		newQueryCommand(opts),
		newTreeCommand(),
		newConfigCommand(opts),
		newVersionCommand(opts),
	)
	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// prepare resolves the run settings and stores them with the logger in the
// command context.
func (o *rootOptions) prepare(cmd *cobra.Command) error {
	if _, err := formatter.ParseFormat(o.output); err != nil {
		return err
	}
	run := settings.NewCliParams()
	run.MinLogLevel = o.logLevel
	run.NoColor = o.noColor || os.Getenv("NO_COLOR") != ""
	run.ConfigFile = resolveConfigPath(o.configFile)
	run.StatePath = popover.DefaultStatePath()
	switch km := settings.Keymap(strings.ToLower(o.keymap)); km {
	case "", settings.KeymapDefault:
	case settings.KeymapVim:
		run.Keymap = km
	default:
		return fmt.Errorf("invalid keymap %q: valid values are default, vim", o.keymap)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	lgr := logger.WithValues(logger.Get(run.MinLogLevel), logger.CommandKey, cmd.Name())
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	return nil
}

func (o *rootOptions) format() formatter.Format {
	f, err := formatter.ParseFormat(o.output)
	if err != nil {
		return formatter.FormatText
	}
	return f
}

func runInteractive(cmd *cobra.Command, opts *rootOptions, file string) error {
	ctx := cmd.Context()
	run := settings.FromContextOrDefault(ctx)
	engine, err := openDocument(ctx, file, documentOptions{
		schemaFile:     opts.schemaFile,
		configFile:     run.ConfigFile,
		statePath:      run.StatePath,
		skipResolution: true,
	})
	if err != nil {
		return err
	}
	return ui.Run(engine, ui.Options{
		Caret:   opts.pos,
		NoColor: run.NoColor,
		Keymap:  run.Keymap,
		Logger:  logger.Named(*logger.FromContext(ctx), logger.ComponentUI),
		Context: ctx,
		Width:   opts.width,
		Height:  opts.height,
	})
}

// resolveConfigPath returns the explicit path if set, otherwise
// $XDG_CONFIG_HOME/prong/config.yaml or ~/.config/prong/config.yaml when
// present.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	xdg := os.Getenv("XDG_CONFIG_HOME")
	candidate := ""
	if xdg != "" {
		candidate = filepath.Join(xdg, settings.CliBinaryName, "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}
