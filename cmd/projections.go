package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
	"github.com/mcnuttandrew/prong-sub001/internal/limiter"
	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

func newProjectionsCommand(opts *rootOptions) *cobra.Command {
	var pos int
	var configPath string
	var limits limiter.Config
	cmd := &cobra.Command{
		Use:   "projections FILE",
		Short: "Locate projection definitions in a document",
		Long: `Locate the inline, multiline and highlight projections of a definition
file. With --pos the caret is placed first, so cursor-dependent function
queries see it.`,
		Example: `  prong projections doc.json --config projections.yaml
  prong projections doc.json --config projections.yaml --pos 8 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := limits.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			run := settings.FromContextOrDefault(ctx)
			path := configPath
			if path == "" {
				path = run.ConfigFile
			}
			if path == "" {
				return fmt.Errorf("no projection file: pass --config or --config-file")
			}
			engine, err := openDocument(ctx, args[0], documentOptions{
				schemaFile: opts.schemaFile,
				configFile: path,
			})
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pos") {
				if err := engine.Caret(pos); err != nil {
					return err
				}
			}
			res, err := engine.LocateProjections()
			if err != nil {
				return err
			}
			reports := limiter.Apply(limits, formatter.NewAttachmentReports(res, engine.Text()))

			out := cmd.OutOrStdout()
			if format := opts.format(); format != formatter.FormatText {
				return formatter.Encode(out, format, reports)
			}
			if len(reports) == 0 {
				fmt.Fprintln(out, "(no attachments)")
				return nil
			}
			fmt.Fprint(out, formatter.RenderAttachments(reports, formatter.Options{NoColor: run.NoColor}))
			return nil
		},
	}
	cmd.Flags().IntVar(&pos, "pos", 0, "caret offset to select before locating")
	limits.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "projection definition file (defaults to --config-file)")
	return cmd
}
