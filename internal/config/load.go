package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mcnuttandrew/prong-sub001/internal/cel"
	"github.com/mcnuttandrew/prong-sub001/internal/keypath"
	"github.com/mcnuttandrew/prong-sub001/internal/projection"
	"github.com/mcnuttandrew/prong-sub001/internal/query"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// ErrUnknownQueryType is reported, as a warning, for query types this
// version does not know. Such queries never match.
var ErrUnknownQueryType = errors.New("unknown query type")

// Format selects the file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from a file extension; anything but .toml is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (File, error) {
	var f File
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("decode yaml: %w", err)
		}
	}
	return f, nil
}

// Loaded is the result of building a projection file.
type Loaded struct {
	Config      Config
	Projections []projection.Projection
	// Predicates holds the compiled function queries by projection name.
	Predicates map[string]*cel.Predicate
	// Warnings lists problems that did not prevent loading.
	Warnings []error
}

// LoadFile reads, decodes and builds the projection file at path.
func LoadFile(path string, c *cel.Compiler) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read projections: %w", err)
	}
	f, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Build(f, c)
}

// Build turns the declarations of f into projections. Function queries are
// compiled with c, which may be nil when f declares none.
func Build(f File, c *cel.Compiler) (*Loaded, error) {
	out := &Loaded{Config: f.Config, Predicates: make(map[string]*cel.Predicate)}
	seen := make(map[string]bool)
	for i, spec := range f.Projections {
		if spec.Name == "" {
			return nil, fmt.Errorf("projection %d: name is required", i)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("projection %q: duplicate name", spec.Name)
		}
		seen[spec.Name] = true

		p, err := buildProjection(spec)
		if err != nil {
			return nil, fmt.Errorf("projection %q: %w", spec.Name, err)
		}
		q, pred, err := BuildQuery(spec.Query, c)
		switch {
		case errors.Is(err, ErrUnknownQueryType):
			out.Warnings = append(out.Warnings, fmt.Errorf("projection %q: %w", spec.Name, err))
		case err != nil:
			return nil, fmt.Errorf("projection %q: %w", spec.Name, err)
		}
		p.Query = q
		if pred != nil {
			out.Predicates[spec.Name] = pred
		}
		out.Projections = append(out.Projections, p)
	}
	return out, nil
}

func buildProjection(spec ProjectionSpec) (projection.Projection, error) {
	p := projection.Projection{
		Name:             spec.Name,
		Kind:             projection.Kind(spec.Kind),
		HasInternalState: spec.HasInternalState,
		Class:            spec.Class,
	}
	switch p.Kind {
	case projection.KindInline:
		p.Mode = projection.Mode(spec.Mode)
		switch p.Mode {
		case projection.ModeReplace, projection.ModePrefix, projection.ModeSuffix, projection.ModeReplaceMultiline:
		case "":
			p.Mode = projection.ModeReplace
		default:
			return p, fmt.Errorf("unknown inline mode %q", spec.Mode)
		}
	case projection.KindHighlight:
		if spec.Class == "" {
			return p, fmt.Errorf("highlight requires a class")
		}
	case projection.KindTooltip, projection.KindFullTooltip:
	default:
		return p, fmt.Errorf("unknown kind %q", spec.Kind)
	}
	return p, nil
}

// BuildQuery builds the query declared by spec. An unknown type yields a
// fail-closed query.Unknown together with ErrUnknownQueryType.
func BuildQuery(spec QuerySpec, c *cel.Compiler) (query.Query, *cel.Predicate, error) {
	switch query.Type(spec.Type) {
	case query.TypeIndex:
		path, err := keypath.FromValues(spec.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("index path: %w", err)
		}
		return query.Index{Path: path}, nil, nil
	case query.TypeMultiIndex:
		q := query.MultiIndex{}
		for i, raw := range spec.Paths {
			path, err := keypath.FromValues(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("multi-index path %d: %w", i, err)
			}
			q.Queries = append(q.Queries, query.Index{Path: path})
		}
		return q, nil, nil
	case query.TypeRegex:
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("regex: %w", err)
		}
		return query.Regex{Pattern: re}, nil, nil
	case query.TypeValue:
		return query.Value{Values: spec.Values}, nil, nil
	case query.TypeSchemaMatch:
		return query.SchemaMatch{Names: spec.Values}, nil, nil
	case query.TypeNodeType:
		for _, t := range spec.Types {
			if _, ok := syntax.ParseKind(t); !ok {
				return nil, nil, fmt.Errorf("nodeType: unknown type %q", t)
			}
		}
		return query.NodeType{Types: spec.Types}, nil, nil
	case query.TypeFunction:
		if c == nil {
			return nil, nil, fmt.Errorf("function query needs a CEL compiler")
		}
		pred, err := c.Compile(spec.Expr)
		if err != nil {
			return nil, nil, fmt.Errorf("function: %w", err)
		}
		return query.Function{Name: spec.Expr, Fn: pred.Match}, pred, nil
	default:
		return query.Unknown{Name: spec.Type}, nil, fmt.Errorf("%w %q", ErrUnknownQueryType, spec.Type)
	}
}
