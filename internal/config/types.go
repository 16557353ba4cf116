// Package config decodes projection definition files.
package config

// Config is the optional header of a projection file. Name and Version are
// shown by `prong config`.
type Config struct {
	Name    string `yaml:"name" toml:"name"`
	Version string `yaml:"version" toml:"version"`
}

// File is a decoded projection definition file.
type File struct {
	Config      `yaml:",inline"`
	Projections []ProjectionSpec `yaml:"projections" toml:"projections"`
}

// ProjectionSpec declares one projection.
//
//	- name: color-swatch
//	  kind: inline
//	  mode: prefix
//	  query:
//	    type: regex
//	    pattern: '^"#[0-9a-f]{6}"$'
type ProjectionSpec struct {
	Name             string    `yaml:"name" toml:"name"`
	Kind             string    `yaml:"kind" toml:"kind"`
	Mode             string    `yaml:"mode,omitempty" toml:"mode,omitempty"`
	HasInternalState bool      `yaml:"hasInternalState,omitempty" toml:"hasInternalState,omitempty"`
	Class            string    `yaml:"class,omitempty" toml:"class,omitempty"`
	Query            QuerySpec `yaml:"query" toml:"query"`
}

// QuerySpec declares a query. Which fields apply depends on Type:
// index uses Path, multi-index Paths, regex Pattern, value Values,
// schemaMatch Values, nodeType Types and function Expr.
type QuerySpec struct {
	Type    string   `yaml:"type" toml:"type"`
	Path    []any    `yaml:"path,omitempty" toml:"path,omitempty"`
	Paths   [][]any  `yaml:"paths,omitempty" toml:"paths,omitempty"`
	Pattern string   `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Values  []string `yaml:"values,omitempty" toml:"values,omitempty"`
	Types   []string `yaml:"types,omitempty" toml:"types,omitempty"`
	Expr    string   `yaml:"expr,omitempty" toml:"expr,omitempty"`
}
