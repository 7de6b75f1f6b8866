package schema

// ApplyDefaults fills every top-level schema property missing from saved
// with the schema-declared default, or a type-appropriate zero value when
// the schema has none. Existing saved values are never replaced or removed,
// and keys no longer present in the schema are preserved untouched, so the
// operation is idempotent. The inputs are not mutated.
func ApplyDefaults(saved, schemaDoc map[string]any) map[string]any {
	merged := cloneMap(saved)
	if merged == nil {
		merged = map[string]any{}
	}

	properties, ok := schemaDoc["properties"].(map[string]any)
	if !ok {
		return merged
	}

	for name, raw := range properties {
		if _, exists := merged[name]; exists {
			continue
		}
		property, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		merged[name] = buildDefault(property)
	}
	return merged
}

func buildDefault(property map[string]any) any {
	if def, ok := property["default"]; ok {
		switch typed := def.(type) {
		case map[string]any:
			return cloneMap(typed)
		case []any:
			return cloneSlice(typed)
		default:
			return typed
		}
	}

	switch propertyType(property) {
	case "string":
		return ""
	case "number":
		return float64(0)
	case "integer":
		return 0
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		// Build the nested object from its own property defaults.
		return ApplyDefaults(nil, property)
	default:
		return nil
	}
}

func propertyType(property map[string]any) string {
	switch typed := property["type"].(type) {
	case string:
		return typed
	case []any:
		for _, candidate := range typed {
			if name, ok := candidate.(string); ok && name != "null" {
				return name
			}
		}
	}
	return ""
}
