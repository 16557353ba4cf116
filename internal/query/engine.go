package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// Engine evaluates queries and memoizes the results. Each Engine owns its
// cache; the cache grows without bound until Reset is called.
type Engine struct {
	log   logr.Logger
	cache map[string]bool
	hits  int
	miss  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an Engine with an empty cache.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: logr.Discard(), cache: make(map[string]bool)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate reports whether q passes for ctx. It never panics: unknown
// variants and failing predicates evaluate to false.
func (e *Engine) Evaluate(q Query, ctx Context) bool {
	if q == nil {
		return false
	}
	key := cacheKey(q, ctx)
	if v, ok := e.cache[key]; ok {
		e.hits++
		return v
	}
	e.miss++
	v := e.evaluate(q, ctx)
	e.cache[key] = v
	return v
}

// Len returns the number of memoized results.
func (e *Engine) Len() int { return len(e.cache) }

// Stats returns cache hit and miss counts.
func (e *Engine) Stats() (hits, misses int) { return e.hits, e.miss }

// Reset drops every memoized result.
func (e *Engine) Reset() {
	e.cache = make(map[string]bool)
	e.hits, e.miss = 0, 0
}

// cacheKey serializes the query together with the context fields the
// variant reads.
func cacheKey(q Query, ctx Context) string {
	var b strings.Builder
	b.WriteString(q.key())
	b.WriteByte('|')
	b.WriteString(ctx.KeyPath.String())
	b.WriteByte('|')
	b.WriteString(strconv.Quote(ctx.NodeValue))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(ctx.QueryIdentity))
	switch q.(type) {
	case Function:
		fmt.Fprintf(&b, "|%d|%s|%s", ctx.Cursor, strconv.Quote(ctx.NodeType), ctx.NodeSpan.Key())
	case NodeType:
		b.WriteString("|" + strconv.Quote(ctx.NodeType))
	case SchemaMatch:
		for _, f := range ctx.SchemaTypings {
			b.WriteString("|" + strconv.Quote(f.RefName) + ":" + strconv.Quote(f.LabeledType))
		}
	}
	return b.String()
}

func (e *Engine) evaluate(q Query, ctx Context) (passed bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(fmt.Errorf("%v", r), "query evaluation panicked", "query", q.key())
			passed = false
		}
	}()

	switch t := q.(type) {
	case Index:
		return matchIndex(t, ctx)
	case MultiIndex:
		for _, sub := range t.Queries {
			if matchIndex(sub, ctx) {
				return true
			}
		}
		return false
	case NodeType:
		return slices.Contains(t.Types, ctx.NodeType)
	case Value:
		return slices.Contains(t.Values, stripQuotes(ctx.NodeValue))
	case Regex:
		// Unlike Value, the pattern sees the quotes.
		return t.Pattern != nil && t.Pattern.MatchString(ctx.NodeValue)
	case SchemaMatch:
		return matchSchema(t, ctx)
	case Function:
		if t.Fn == nil {
			return false
		}
		return t.Fn(ctx.NodeValue, ctx.NodeType, ctx.KeyPath, ctx.Cursor, ctx.NodeSpan)
	default:
		e.log.Info("unknown query type, failing closed", "type", string(q.Type()))
		return false
	}
}

func matchIndex(q Index, ctx Context) bool {
	if len(q.Path) != len(ctx.KeyPath) {
		return false
	}
	for i, seg := range q.Path {
		if !seg.Matches(ctx.KeyPath[i]) {
			return false
		}
	}
	return true
}

func matchSchema(q SchemaMatch, ctx Context) bool {
	for _, f := range ctx.SchemaTypings {
		candidates := []string{f.TypeName(), f.LabeledType}
		for _, c := range candidates {
			if c == "" {
				continue
			}
			for _, name := range q.Names {
				if strings.EqualFold(c, name) {
					return true
				}
			}
		}
	}
	return false
}

// stripQuotes removes exactly one leading and one trailing quote character.
func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
