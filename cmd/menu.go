package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

func newMenuCommand(opts *rootOptions) *cobra.Command {
	var pos int
	var width int
	cmd := &cobra.Command{
		Use:   "menu FILE",
		Short: "Print the contextual menu at a position",
		Example: `  prong menu doc.json --pos 12
  prong menu doc.json --pos 12 --schema schema.json -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			run := settings.FromContextOrDefault(ctx)
			engine, err := openDocument(ctx, args[0], documentOptions{
				schemaFile: opts.schemaFile,
				configFile: run.ConfigFile,
			})
			if err != nil {
				return err
			}
			node, rows, err := engine.MenuAt(pos)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			format := opts.format()
			if format != formatter.FormatText {
				return formatter.Encode(out, format, formatter.NewMenuReport(node, engine.Text(), rows))
			}
			sp := node.Span()
			fmt.Fprintf(out, "%s %d-%d\n", node.Type(), sp.From, sp.To)
			if len(rows) == 0 {
				fmt.Fprintln(out, "(no menu)")
				return nil
			}
			fmt.Fprintln(out, formatter.RenderMenu(rows, formatter.Options{NoColor: run.NoColor, Width: width}, nil))
			return nil
		},
	}
	cmd.Flags().IntVar(&pos, "pos", 0, "caret offset in the document")
	cmd.Flags().IntVar(&width, "width", 0, "truncate lines to this width (0 = no limit)")
	return cmd
}
