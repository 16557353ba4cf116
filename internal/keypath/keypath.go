// Package keypath resolves parse-tree nodes to logical key paths.
//
// A key path addresses a value independently of character offsets. The last
// segment of a property name's path carries the "___key" suffix and the last
// segment of a property value's path carries "___value":
//
//	{"a": {"b": [10, 20]}}
//	"b"  -> ["a", "b___key"]
//	20   -> ["a", "b", 1]
//	[..] -> ["a", "b___value"]
package keypath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

const (
	KeySuffix   = "___key"
	ValueSuffix = "___value"
	// Wildcard matches exactly one segment of any kind in index queries.
	Wildcard = "*"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Key builds a key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index builds an index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return strconv.Quote(s.Key)
}

// Matches reports whether the pattern segment s accepts seg. A "*" key
// accepts any segment.
func (s Segment) Matches(seg Segment) bool {
	if !s.IsIndex && s.Key == Wildcard {
		return true
	}
	return s == seg
}

// Path is an ordered list of segments.
type Path []Segment

// String serializes the path as a JSON-style array; it is used in cache keys.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// FromValues converts decoded config values (strings and numbers) into a Path.
func FromValues(values []any) (Path, error) {
	out := make(Path, 0, len(values))
	for i, v := range values {
		switch t := v.(type) {
		case string:
			out = append(out, Key(t))
		case int:
			out = append(out, Index(t))
		case int64:
			out = append(out, Index(int(t)))
		case uint64:
			out = append(out, Index(int(t)))
		case float64:
			if t != float64(int(t)) {
				return nil, fmt.Errorf("segment %d: non-integer index %v", i, t)
			}
			out = append(out, Index(int(t)))
		default:
			return nil, fmt.Errorf("segment %d: unsupported type %T", i, v)
		}
	}
	return out, nil
}

// Of builds a Path from strings and ints; other values are formatted as keys.
func Of(values ...any) Path {
	out := make(Path, 0, len(values))
	for _, v := range values {
		switch t := v.(type) {
		case int:
			out = append(out, Index(t))
		case string:
			out = append(out, Key(t))
		default:
			out = append(out, Key(fmt.Sprint(t)))
		}
	}
	return out
}

// Resolver computes key paths. The zero value is ready to use.
type Resolver struct{}

// Resolve returns the key path of n within text. Punctuation and error
// placeholders resolve to the path of their enclosing node.
func (Resolver) Resolve(n *syntax.Node, text string) Path {
	return Resolve(n, text)
}

// Resolve is the package-level form of Resolver.Resolve.
func Resolve(n *syntax.Node, text string) Path {
	cur := syntax.StructuralTarget(n)
	var rev Path
	first := true
	for cur != nil && cur.Parent != nil {
		parent := cur.Parent
		switch parent.Kind {
		case syntax.KindProperty:
			key := syntax.PropertyKey(parent, text)
			if first {
				if cur.Kind == syntax.KindPropertyName {
					key += KeySuffix
				} else {
					key += ValueSuffix
				}
			}
			rev = append(rev, Key(key))
		case syntax.KindArray:
			rev = append(rev, Index(elementIndex(parent, cur)))
		default:
		}
		first = false
		cur = parent
	}
	out := make(Path, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out
}

func elementIndex(arr, elem *syntax.Node) int {
	for i, v := range arr.Values() {
		if v == elem {
			return i
		}
	}
	return -1
}
