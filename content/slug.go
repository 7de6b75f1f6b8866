package content

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether the slug matches the default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// SlugifyTreePath normalizes every segment of a structure tree path so
// editor-supplied titles like "Blog/My First Post" become stable node paths.
// Empty segments collapse; the result never carries leading or trailing
// slashes.
func SlugifyTreePath(value string) (string, error) {
	segments := strings.Split(strings.Trim(strings.TrimSpace(value), "/"), "/")
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		normalized, err := slug.Normalize(segment)
		if err != nil {
			return "", err
		}
		out = append(out, normalized)
	}
	return strings.Join(out, "/"), nil
}
