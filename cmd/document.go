package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mcnuttandrew/prong-sub001/internal/popover"
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/pkg/core"
	"github.com/mcnuttandrew/prong-sub001/pkg/loader"
	"github.com/mcnuttandrew/prong-sub001/pkg/logger"
)

type documentOptions struct {
	schemaFile string
	configFile string
	statePath  string
	// skipResolution leaves schema resolution to the caller.
	skipResolution bool
}

// openDocument loads file ("-" reads stdin) into a new engine, installing
// the schema and projection definitions named by opts.
func openDocument(ctx context.Context, file string, opts documentOptions) (*core.Engine, error) {
	lgr := logger.FromContext(ctx)

	doc, err := loadDocument(file)
	if err != nil {
		return nil, err
	}
	lgr.V(1).Info("loaded document", "file", file, "format", string(doc.Source), "bytes", len(doc.Text))

	engineOpts := []core.Option{core.WithLogger(*lgr)}
	if opts.schemaFile != "" {
		root, err := schema.LoadFile(opts.schemaFile)
		if err != nil {
			return nil, fmt.Errorf("load schema: %w", err)
		}
		engineOpts = append(engineOpts, core.WithSchema(root))
	}
	if opts.statePath != "" {
		engineOpts = append(engineOpts, core.WithModeStore(popover.FileStore{Path: opts.statePath}))
	}
	engine, err := core.New(engineOpts...)
	if err != nil {
		return nil, err
	}
	if opts.configFile != "" {
		if _, err := engine.LoadProjections(opts.configFile); err != nil {
			return nil, err
		}
	}
	engine.SetText(doc.Text)
	if opts.schemaFile != "" && !opts.skipResolution {
		if _, err := engine.ResolveSchemas(ctx); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

func loadDocument(file string) (loader.Document, error) {
	if file != "-" {
		doc, err := loader.LoadFile(file)
		if err != nil {
			return loader.Document{}, fmt.Errorf("load %s: %w", file, err)
		}
		return doc, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return loader.Document{}, fmt.Errorf("read stdin: %w", err)
	}
	return loader.Load(string(data))
}
