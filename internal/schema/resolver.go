package schema

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

// CrossReference binds schema fragments to the spans of a document. Hosts
// typically run it off the interaction loop and hand the resulting Map back
// when it is ready.
type CrossReference interface {
	Resolve(ctx context.Context, root map[string]any, text string) (Map, error)
}

// Resolver walks a document alongside its schema, following properties,
// items, unions and local $refs.
type Resolver struct {
	log      logr.Logger
	maxDepth int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver's logger.
func WithLogger(l logr.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithMaxRefDepth bounds how many $ref hops are followed for one location.
func WithMaxRefDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{log: logr.Discard(), maxDepth: 32}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses text and returns the fragments bound to every value span.
func (r *Resolver) Resolve(ctx context.Context, root map[string]any, text string) (Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := Map{}
	if root == nil {
		return out, nil
	}
	tree := syntax.Parse(text)
	var top *syntax.Node
	for _, c := range tree.Root.Values() {
		top = c
		break
	}
	if top == nil {
		return out, nil
	}
	w := &walk{r: r, ctx: ctx, root: root, text: text, out: out}
	w.visit(top, []Fragment{{Shape: root}})
	if w.err != nil {
		return nil, w.err
	}
	r.log.V(1).Info("resolved schema fragments", "spans", len(out))
	return out, nil
}

type walk struct {
	r    *Resolver
	ctx  context.Context
	root map[string]any
	text string
	out  Map
	err  error
}

func (w *walk) visit(n *syntax.Node, frags []Fragment) {
	if w.err != nil {
		return
	}
	if err := w.ctx.Err(); err != nil {
		w.err = err
		return
	}
	frags = w.expand(frags)
	if len(frags) == 0 {
		return
	}
	w.out[n.Span().Key()] = frags

	switch n.Kind {
	case syntax.KindObject:
		for _, prop := range n.Values() {
			if prop.Kind != syntax.KindProperty {
				continue
			}
			value := syntax.PropertyValue(prop)
			if value == nil {
				continue
			}
			key := syntax.PropertyKey(prop, w.text)
			w.visit(value, childFragments(frags, func(shape map[string]any) map[string]any {
				return propertyShape(shape, key)
			}))
		}
	case syntax.KindArray:
		for i, elem := range n.Values() {
			w.visit(elem, childFragments(frags, func(shape map[string]any) map[string]any {
				return itemShape(shape, i)
			}))
		}
	default:
	}
}

// expand follows $refs and records the name each fragment was reached by.
// Every oneOf/anyOf member becomes a fragment of its own, after the union
// itself.
func (w *walk) expand(frags []Fragment) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		out = w.expandShape(out, f.Shape, f.RefName, nil)
	}
	return out
}

func (w *walk) expandShape(out []Fragment, shape map[string]any, ref string, seen []string) []Fragment {
	shape, ref = w.deref(shape, ref)
	if shape == nil || len(seen) > w.r.maxDepth {
		return out
	}
	alts := Alternatives(shape)
	if len(alts) == 0 {
		return append(out, Fragment{Shape: shape, RefName: ref, LabeledType: labeledType(shape)})
	}
	if ref != "" {
		if slices.Contains(seen, ref) {
			return out
		}
		seen = append(slices.Clip(seen), ref)
	}
	out = append(out, Fragment{Shape: w.resolveUnion(shape, seen), RefName: ref, LabeledType: labeledType(shape)})
	for _, alt := range alts {
		out = w.expandShape(out, alt, "", seen)
	}
	return out
}

// deref follows a chain of $refs starting at shape.
func (w *walk) deref(shape map[string]any, ref string) (map[string]any, string) {
	for hops := 0; hops < w.r.maxDepth; hops++ {
		target, ok := shape["$ref"].(string)
		if !ok {
			break
		}
		resolved := lookupPointer(w.root, target)
		if resolved == nil {
			w.r.log.V(1).Info("unresolved schema reference", "ref", target)
			break
		}
		shape, ref = resolved, target
	}
	return shape, ref
}

// resolveUnion returns a copy of shape whose union members are dereferenced,
// so Materialize and Alternatives see the shapes the members point at.
func (w *walk) resolveUnion(shape map[string]any, seen []string) map[string]any {
	cp := make(map[string]any, len(shape))
	for k, v := range shape {
		cp[k] = v
	}
	for _, key := range []string{"oneOf", "anyOf"} {
		list, ok := shape[key].([]any)
		if !ok {
			continue
		}
		members := make([]any, len(list))
		for i, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				members[i] = item
				continue
			}
			m, ref := w.deref(m, "")
			if ref != "" && slices.Contains(seen, ref) {
				members[i] = map[string]any{}
				continue
			}
			if len(Alternatives(m)) > 0 && len(seen) < w.r.maxDepth {
				next := seen
				if ref != "" {
					next = append(slices.Clip(seen), ref)
				}
				m = w.resolveUnion(m, next)
			}
			members[i] = m
		}
		cp[key] = members
	}
	return cp
}

func labeledType(shape map[string]any) string {
	if s, ok := shape["$$labeledType"].(string); ok {
		return s
	}
	s, _ := shape["title"].(string)
	return s
}

// childFragments applies pick to each fragment, keeping the shapes that
// describe the child. Union members are already fragments of their own.
func childFragments(frags []Fragment, pick func(map[string]any) map[string]any) []Fragment {
	var out []Fragment
	for _, f := range frags {
		if s := pick(f.Shape); s != nil {
			out = append(out, Fragment{Shape: s})
		}
	}
	return out
}

func propertyShape(shape map[string]any, key string) map[string]any {
	if props, ok := shape["properties"].(map[string]any); ok {
		if s, ok := props[key].(map[string]any); ok {
			return s
		}
	}
	if s, ok := shape["additionalProperties"].(map[string]any); ok {
		return s
	}
	return nil
}

func itemShape(shape map[string]any, i int) map[string]any {
	if prefix, ok := shape["prefixItems"].([]any); ok && i < len(prefix) {
		if s, ok := prefix[i].(map[string]any); ok {
			return s
		}
	}
	switch items := shape["items"].(type) {
	case map[string]any:
		return items
	case []any:
		if i < len(items) {
			if s, ok := items[i].(map[string]any); ok {
				return s
			}
		}
	}
	return nil
}

// lookupPointer resolves a local "#/a/b" reference within root.
func lookupPointer(root map[string]any, ref string) map[string]any {
	if !strings.HasPrefix(ref, "#") {
		return nil
	}
	var cur any = root
	for _, raw := range strings.Split(strings.TrimPrefix(ref, "#"), "/") {
		if raw == "" {
			continue
		}
		part := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		switch t := cur.(type) {
		case map[string]any:
			cur = t[part]
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(t) {
				return nil
			}
			cur = t[i]
		default:
			return nil
		}
	}
	m, _ := cur.(map[string]any)
	return m
}
