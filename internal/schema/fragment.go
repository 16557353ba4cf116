// Package schema binds JSON Schema fragments to document spans and turns
// schema shapes into concrete placeholder values.
package schema

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// ErrInvalidSchema is returned when a schema document cannot be decoded
// into an object.
var ErrInvalidSchema = errors.New("invalid schema")

// Fragment is the part of a schema that describes one location in the
// document. Shape is the raw schema object; RefName is the $ref it was
// reached through, if any, and LabeledType an optional display label.
type Fragment struct {
	Shape       map[string]any `json:"shape" yaml:"shape"`
	RefName     string         `json:"refName,omitempty" yaml:"refName,omitempty"`
	LabeledType string         `json:"labeledType,omitempty" yaml:"labeledType,omitempty"`
}

// TypeName returns the last "/" segment of RefName.
func (f Fragment) TypeName() string {
	if f.RefName == "" {
		return ""
	}
	parts := strings.Split(f.RefName, "/")
	return parts[len(parts)-1]
}

// Description returns the fragment's description, if any.
func (f Fragment) Description() string {
	s, _ := f.Shape["description"].(string)
	return s
}

// Types returns the declared JSON types, in declaration order.
func (f Fragment) Types() []string {
	return declaredTypes(f.Shape)
}

// Map binds fragments to spans, keyed by Span.Key ("from-to").
type Map map[string][]Fragment

// At returns the fragments bound to span s.
func (m Map) At(s syntax.Span) []Fragment {
	if m == nil {
		return nil
	}
	return m[s.Key()]
}

// Keys returns the bound span keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func declaredTypes(shape map[string]any) []string {
	switch t := shape["type"].(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}

// Literal renders a materialized value as JSON text.
func Literal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
