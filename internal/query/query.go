// Package query evaluates declarative location tests against a node context.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mcnuttandrew/prong-sub001/internal/keypath"
	"github.com/mcnuttandrew/prong-sub001/internal/schema"
	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// Type names the query variants.
type Type string

const (
	TypeFunction    Type = "function"
	TypeIndex       Type = "index"
	TypeMultiIndex  Type = "multi-index"
	TypeRegex       Type = "regex"
	TypeValue       Type = "value"
	TypeSchemaMatch Type = "schemaMatch"
	TypeNodeType    Type = "nodeType"
)

// Query is one of the closed set of query variants defined in this package.
type Query interface {
	Type() Type
	// key serializes every field the variant matches on.
	key() string
}

// Predicate decides a function query.
type Predicate func(value, nodeType string, path keypath.Path, cursor int, span syntax.Span) bool

// Function passes when its predicate returns true. Name identifies the
// predicate in cache keys, since functions cannot be serialized.
type Function struct {
	Name string
	Fn   Predicate
}

// Index passes when the key path has the same length and every segment
// matches, "*" matching any one segment.
type Index struct {
	Path keypath.Path
}

// MultiIndex passes when any of its index queries passes.
type MultiIndex struct {
	Queries []Index
}

// Regex passes when the raw node text (quotes included) matches Pattern.
type Regex struct {
	Pattern *regexp.Regexp
}

// Value passes when the node text, with one leading and one trailing quote
// stripped, is a member of Values.
type Value struct {
	Values []string
}

// SchemaMatch passes when a bound fragment's type name or labeled type
// equals one of Names, ignoring case.
type SchemaMatch struct {
	Names []string
}

// NodeType passes when the node's type name is a member of Types.
type NodeType struct {
	Types []string
}

// Unknown carries a query type this package does not recognize. It never
// passes.
type Unknown struct {
	Name string
}

func (Function) Type() Type    { return TypeFunction }
func (Index) Type() Type       { return TypeIndex }
func (MultiIndex) Type() Type  { return TypeMultiIndex }
func (Regex) Type() Type       { return TypeRegex }
func (Value) Type() Type       { return TypeValue }
func (SchemaMatch) Type() Type { return TypeSchemaMatch }
func (NodeType) Type() Type    { return TypeNodeType }
func (u Unknown) Type() Type   { return Type(u.Name) }

func (q Function) key() string { return "function:" + strconv.Quote(q.Name) }
func (q Index) key() string    { return "index:" + q.Path.String() }
func (q MultiIndex) key() string {
	parts := make([]string, len(q.Queries))
	for i, sub := range q.Queries {
		parts[i] = sub.Path.String()
	}
	return "multi-index:[" + strings.Join(parts, ",") + "]"
}

func (q Regex) key() string {
	if q.Pattern == nil {
		return "regex:<nil>"
	}
	return "regex:" + strconv.Quote(q.Pattern.String())
}
func (q Value) key() string       { return "value:" + quoteAll(q.Values) }
func (q SchemaMatch) key() string { return "schemaMatch:" + quoteAll(q.Names) }
func (q NodeType) key() string    { return "nodeType:" + quoteAll(q.Types) }
func (q Unknown) key() string     { return "unknown:" + strconv.Quote(q.Name) }

func quoteAll(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Key returns the serialized form of q used in cache keys and fingerprints.
func Key(q Query) string {
	if q == nil {
		return "<nil>"
	}
	return q.key()
}

// Context is everything a query may read about the node under test.
type Context struct {
	KeyPath       keypath.Path
	NodeValue     string
	NodeType      string
	SchemaTypings []schema.Fragment
	Cursor        int
	NodeSpan      syntax.Span
	// QueryIdentity distinguishes otherwise identical queries owned by
	// different projections.
	QueryIdentity string
}
