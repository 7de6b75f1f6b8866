package content

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
)

// ParseFile splits a markdown blob into frontmatter and body. Nested YAML
// maps are normalized to string keys so template lookups and JSON encoding
// behave the same regardless of how the frontmatter was written.
func ParseFile(blobPath string, data []byte) (*File, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("content: parse frontmatter of %q: %w", blobPath, err)
	}

	ext := path.Ext(blobPath)
	return &File{
		Slug:        strings.TrimSuffix(path.Base(blobPath), ext),
		Path:        blobPath,
		Frontmatter: normalizeMap(meta),
		Body:        body,
	}, nil
}

func normalizeMap(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeMap(typed)
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return typed
	}
}
