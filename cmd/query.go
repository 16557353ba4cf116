package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcnuttandrew/prong-sub001/internal/config"
	"github.com/mcnuttandrew/prong-sub001/internal/formatter"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
	"github.com/mcnuttandrew/prong-sub001/pkg/logger"
)

// queryReport is the document form of a query evaluation.
type queryReport struct {
	Query    string      `json:"query" yaml:"query"`
	Matched  bool        `json:"matched" yaml:"matched"`
	NodeType string      `json:"nodeType" yaml:"nodeType"`
	KeyPath  string      `json:"keyPath" yaml:"keyPath"`
	Value    string      `json:"value" yaml:"value"`
	Span     syntax.Span `json:"span" yaml:"span"`
	Schemas  []string    `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

type queryFlags struct {
	pos     int
	spec    config.QuerySpec
	path    string
	paths   []string
	pattern string
}

func newQueryCommand(opts *rootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query FILE",
		Short: "Evaluate one query against the node at a position",
		Long: `Evaluate a single query against the node at --pos. Punctuation resolves
to the node it belongs to. Query types: index, multi-index, regex, value,
schemaMatch, nodeType, function.`,
		Example: `  prong query doc.json --pos 21 --type index --path '["b", 1]'
  prong query doc.json --pos 8 --type nodeType --node-type True --node-type False
  prong query doc.json --pos 8 --type function --expr 'nodeType == "True" && cursor > from'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := qf.decode(); err != nil {
				return err
			}
			engine, err := openDocument(ctx, args[0], documentOptions{schemaFile: opts.schemaFile})
			if err != nil {
				return err
			}
			q, _, err := config.BuildQuery(qf.spec, engine.Compiler())
			switch {
			case errors.Is(err, config.ErrUnknownQueryType):
				logger.FromContext(ctx).Info("query never matches", "warning", err.Error())
			case err != nil:
				return err
			}
			qctx, err := engine.QueryContextAt(qf.pos, "cli")
			if err != nil {
				return err
			}
			report := queryReport{
				Query:    qf.spec.Type,
				Matched:  engine.EvaluateQuery(q, qctx),
				NodeType: qctx.NodeType,
				KeyPath:  qctx.KeyPath.String(),
				Value:    qctx.NodeValue,
				Span:     qctx.NodeSpan,
			}
			for _, f := range qctx.SchemaTypings {
				report.Schemas = append(report.Schemas, f.TypeName())
			}

			out := cmd.OutOrStdout()
			if format := opts.format(); format != formatter.FormatText {
				return formatter.Encode(out, format, report)
			}
			fmt.Fprintf(out, "matched:  %t\n", report.Matched)
			fmt.Fprintf(out, "node:     %s %d-%d\n", report.NodeType, report.Span.From, report.Span.To)
			fmt.Fprintf(out, "keyPath:  %s\n", report.KeyPath)
			fmt.Fprintf(out, "value:    %s\n", report.Value)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&qf.pos, "pos", 0, "caret offset in the document")
	f.StringVar(&qf.spec.Type, "type", "", "query type")
	f.StringVar(&qf.path, "path", "", `index path as a JSON array, e.g. '["b", 1]'`)
	f.StringArrayVar(&qf.paths, "paths", nil, "multi-index path as a JSON array (repeatable)")
	f.StringVar(&qf.pattern, "pattern", "", "regex pattern")
	f.StringArrayVar(&qf.spec.Values, "value", nil, "value or schema name to match (repeatable)")
	f.StringArrayVar(&qf.spec.Types, "node-type", nil, "node type to match (repeatable)")
	f.StringVar(&qf.spec.Expr, "expr", "", "CEL predicate for function queries")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

// decode fills the query fields that arrive as JSON text.
func (qf *queryFlags) decode() error {
	qf.spec.Pattern = qf.pattern
	if qf.path != "" {
		if err := json.Unmarshal([]byte(qf.path), &qf.spec.Path); err != nil {
			return fmt.Errorf("--path: %w", err)
		}
	}
	qf.spec.Paths = qf.spec.Paths[:0]
	for i, raw := range qf.paths {
		var p []any
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return fmt.Errorf("--paths %d: %w", i, err)
		}
		qf.spec.Paths = append(qf.spec.Paths, p)
	}
	return nil
}
