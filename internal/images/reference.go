package images

import "strings"

// ReferenceFromValue interprets a frontmatter value as an image reference.
// Authors write either a bare source string or a map with src/alt fields.
func ReferenceFromValue(value any) (Reference, bool) {
	switch v := value.(type) {
	case string:
		src := strings.TrimSpace(v)
		if src == "" {
			return Reference{}, false
		}
		return Reference{Src: src}, true
	case map[string]any:
		ref := Reference{}
		if src, ok := v["src"].(string); ok {
			ref.Src = strings.TrimSpace(src)
		}
		if ref.Src == "" {
			return Reference{}, false
		}
		if alt, ok := v["alt"].(string); ok {
			ref.Alt = alt
		}
		if serviceID, ok := v["serviceId"].(string); ok {
			ref.ServiceID = serviceID
		}
		if width, ok := intValue(v["width"]); ok {
			ref.Width = width
		}
		if height, ok := intValue(v["height"]); ok {
			ref.Height = height
		}
		return ref, true
	case Reference:
		return v, !v.IsZero()
	case *Reference:
		if v == nil {
			return Reference{}, false
		}
		return *v, !v.IsZero()
	}
	return Reference{}, false
}

func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
