package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
)

func newTreeCommand() *cobra.Command {
	var treeOpts formatter.TreeOptions
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the parse tree with node types and spans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openDocument(cmd.Context(), args[0], documentOptions{})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTree(engine.Tree(), treeOpts))
			return nil
		},
	}
	cmd.Flags().BoolVar(&treeOpts.NoValues, "no-values", false, "show structure only (hide leaf text)")
	cmd.Flags().BoolVar(&treeOpts.Punctuation, "punctuation", false, "include brace, bracket, comma and colon tokens")
	cmd.Flags().IntVar(&treeOpts.MaxDepth, "depth", 0, "limit tree depth (0 = unlimited)")
	cmd.Flags().IntVar(&treeOpts.MaxStringLen, "max-string", 0, "truncate leaf text (0 = unlimited)")
	return cmd
}
