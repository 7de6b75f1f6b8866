package content

import (
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// File is one parsed markdown document: slug, blob path, open frontmatter
// map, and the raw markdown body with delimiters stripped.
type File struct {
	Slug        string         `json:"slug"`
	Path        string         `json:"path"`
	Frontmatter map[string]any `json:"frontmatter"`
	Body        []byte         `json:"content"`
}

// Title returns the frontmatter title, falling back to the slug.
func (f *File) Title() string {
	if f == nil {
		return ""
	}
	if title, ok := f.Frontmatter["title"].(string); ok && strings.TrimSpace(title) != "" {
		return title
	}
	return f.Slug
}

// Draft reports whether the document is excluded from collections, nav, and
// exports. Both `draft: true` and `status: draft` mark drafts.
func (f *File) Draft() bool {
	if f == nil {
		return false
	}
	if draft, ok := f.Frontmatter["draft"].(bool); ok && draft {
		return true
	}
	if status, ok := f.Frontmatter["status"].(string); ok {
		return strings.EqualFold(strings.TrimSpace(status), "draft")
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date returns the frontmatter date when present. YAML timestamps arrive as
// time.Time; string dates are tried against a small set of layouts.
func (f *File) Date() (time.Time, bool) {
	if f == nil {
		return time.Time{}, false
	}
	switch value := f.Frontmatter["date"].(type) {
	case time.Time:
		return value, true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// Field returns an arbitrary frontmatter value.
func (f *File) Field(name string) (any, bool) {
	if f == nil {
		return nil, false
	}
	value, ok := f.Frontmatter[name]
	return value, ok
}

// CollectionConfig is the reserved `collection` frontmatter block that turns
// a page into a collection listing.
type CollectionConfig struct {
	SortBy         string `json:"sortBy"         mapstructure:"sortBy"`
	Order          string `json:"order"          mapstructure:"order"`
	ItemLayout     string `json:"itemLayout"     mapstructure:"itemLayout"`
	ItemPageLayout string `json:"itemPageLayout" mapstructure:"itemPageLayout"`
	PageSize       int    `json:"pageSize"       mapstructure:"pageSize"`
}

const (
	defaultSortField = "date"
	defaultSortOrder = "desc"
)

// DefaultCollectionConfig returns the sort configuration used for folders
// that have no reserved block of their own.
func DefaultCollectionConfig() *CollectionConfig {
	return &CollectionConfig{SortBy: defaultSortField, Order: defaultSortOrder}
}

// Collection decodes the reserved frontmatter block, applying the default
// date-descending sort when the block leaves them out.
func (f *File) Collection() (*CollectionConfig, bool) {
	if f == nil {
		return nil, false
	}
	raw, ok := f.Frontmatter["collection"]
	if !ok || raw == nil {
		return nil, false
	}

	cfg := CollectionConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, false
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, false
	}

	if strings.TrimSpace(cfg.SortBy) == "" {
		cfg.SortBy = defaultSortField
	}
	if strings.TrimSpace(cfg.Order) == "" {
		cfg.Order = defaultSortOrder
	}
	return &cfg, true
}

// Descending reports whether the configured order sorts newest-first.
func (c *CollectionConfig) Descending() bool {
	if c == nil {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(c.Order), "asc")
}
