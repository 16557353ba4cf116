package syntax

// Both the menu builder and the projection locator resolve "real" targets
// through the helpers below so they agree on redirect rules.

// StructuralTarget redirects punctuation and error placeholders to their
// nearest ancestor that is neither. Structural actions (remove, reorder)
// bind to the returned node.
func StructuralTarget(n *Node) *Node {
	for n != nil && n.Parent != nil && (n.Kind.IsPunctuation() || n.Kind == KindError) {
		n = n.Parent
	}
	return n
}

// SchemaTarget is StructuralTarget, except that a property name further
// redirects to its sibling value. It is used only for schema fragment lookup.
func SchemaTarget(n *Node) *Node {
	t := StructuralTarget(n)
	if t != nil && t.Kind == KindPropertyName && t.Parent != nil {
		if v := PropertyValue(t.Parent); v != nil {
			return v
		}
	}
	return t
}

// PropertyName returns the name node of a Property.
func PropertyName(prop *Node) *Node {
	if prop == nil || prop.Kind != KindProperty {
		return nil
	}
	for _, c := range prop.Children {
		if c.Kind == KindPropertyName {
			return c
		}
	}
	return nil
}

// PropertyValue returns the value node of a Property, or nil when the value
// is missing.
func PropertyValue(prop *Node) *Node {
	if prop == nil || prop.Kind != KindProperty {
		return nil
	}
	for i := len(prop.Children) - 1; i >= 0; i-- {
		c := prop.Children[i]
		if c.Kind.IsValue() {
			return c
		}
		if c.Kind == KindColon || c.Kind == KindPropertyName {
			return nil
		}
	}
	return nil
}

// PropertyKey returns the unquoted key of a Property.
func PropertyKey(prop *Node, src string) string {
	name := PropertyName(prop)
	if name == nil {
		return ""
	}
	return Unquote(name.Text(src))
}

// LogicalParent returns the container that owns n as a member: the array
// of an element, the property of a value, and the object of a property name.
func LogicalParent(n *Node) *Node {
	if n == nil || n.Parent == nil {
		return nil
	}
	if n.Kind == KindPropertyName {
		return n.Parent.Parent
	}
	return n.Parent
}

// MemberNode returns the node that represents n inside its container: the
// Property for property names and property values, n itself otherwise.
func MemberNode(n *Node) *Node {
	if n == nil || n.Parent == nil {
		return n
	}
	if n.Parent.Kind == KindProperty {
		return n.Parent
	}
	return n
}
