package schema

// Materialize picks a concrete value for a schema shape: the first enum
// value, else the first union alternative that materializes, else the empty
// literal of the first declared type.
func Materialize(shape map[string]any) (any, bool) {
	return materialize(shape, 0)
}

const maxUnionDepth = 16

func materialize(shape map[string]any, depth int) (any, bool) {
	if shape == nil || depth > maxUnionDepth {
		return nil, false
	}
	if enum, ok := shape["enum"].([]any); ok && len(enum) > 0 {
		return enum[0], true
	}
	if c, ok := shape["const"]; ok {
		return c, true
	}
	for _, alt := range Alternatives(shape) {
		if v, ok := materialize(alt, depth+1); ok {
			return v, true
		}
	}
	for _, t := range declaredTypes(shape) {
		if v, ok := EmptyValue(t); ok {
			return v, true
		}
	}
	return nil, false
}

// Alternatives returns the members of a oneOf or anyOf union, oneOf first.
func Alternatives(shape map[string]any) []map[string]any {
	var out []map[string]any
	for _, key := range []string{"oneOf", "anyOf"} {
		list, ok := shape[key].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// EmptyValue returns the canonical empty value of a JSON type name.
func EmptyValue(typ string) (any, bool) {
	switch typ {
	case "string":
		return "", true
	case "number", "integer":
		return 0, true
	case "boolean":
		return true, true
	case "object":
		return map[string]any{}, true
	case "array":
		return []any{}, true
	case "null":
		return nil, true
	default:
		return nil, false
	}
}
