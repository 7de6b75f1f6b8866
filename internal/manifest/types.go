package manifest

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/images"
)

// NodeKind discriminates structure tree entries.
type NodeKind string

const (
	// NodeKindPage marks a leaf node backed by exactly one content file.
	NodeKindPage NodeKind = "page"
	// NodeKindCollection marks a node with ordered children and an item layout.
	NodeKindCollection NodeKind = "collection"
)

// Node is one entry in the navigation/content hierarchy. Paths are stable
// identifiers, unique across the tree, and map 1:1 onto content files for
// page nodes and collection items.
type Node struct {
	ID         uuid.UUID `json:"id,omitempty"`
	Path       string    `json:"path"`
	Title      string    `json:"title,omitempty"`
	Kind       NodeKind  `json:"kind"`
	Layout     string    `json:"layout,omitempty"`
	ItemLayout string    `json:"itemLayout,omitempty"`
	NavOrder   *int      `json:"navOrder,omitempty"`
	Hidden     bool      `json:"hidden,omitempty"`
}

// ThemeSelection records the active theme and its saved configuration values.
type ThemeSelection struct {
	Name   string         `json:"name"`
	Type   string         `json:"type,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// Manifest is the per-site root document: metadata, theme selection, and the
// structure tree.
type Manifest struct {
	SiteID      string            `json:"siteId"`
	Generator   string            `json:"generator,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Author      string            `json:"author,omitempty"`
	BaseURL     string            `json:"baseUrl,omitempty"`
	Logo        *images.Reference `json:"logo,omitempty"`
	Favicon     *images.Reference `json:"favicon,omitempty"`
	Theme       ThemeSelection    `json:"theme"`
	Tree        *Tree             `json:"structure"`
	UpdatedAt   time.Time         `json:"updatedAt,omitempty"`
}

// Validate checks the fields the rendering pipeline cannot degrade around.
func (m *Manifest) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.SiteID, validation.Required, validation.By(requireTrimmed("siteId"))),
		validation.Field(&m.Theme, validation.By(func(any) error {
			if strings.TrimSpace(m.Theme.Name) == "" {
				return validation.NewError("sitebuilder.manifest.theme_required", "theme name is required")
			}
			return nil
		})),
	)
}

func requireTrimmed(field string) validation.RuleFunc {
	return func(value any) error {
		str, _ := value.(string)
		if strings.TrimSpace(str) == "" {
			return validation.NewError("sitebuilder.manifest."+field+"_required", field+" must not be blank")
		}
		return nil
	}
}

// Clone returns a deep copy so callers can mutate without sharing state.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	cloned := *m
	cloned.Theme.Config = cloneConfigMap(m.Theme.Config)
	if m.Logo != nil {
		logo := *m.Logo
		cloned.Logo = &logo
	}
	if m.Favicon != nil {
		favicon := *m.Favicon
		cloned.Favicon = &favicon
	}
	if m.Tree != nil {
		cloned.Tree = m.Tree.Clone()
	}
	return &cloned
}

func cloneConfigMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	cloned := make(map[string]any, len(src))
	for key, value := range src {
		cloned[key] = cloneConfigValue(value)
	}
	return cloned
}

func cloneConfigValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneConfigMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneConfigValue(item)
		}
		return out
	default:
		return typed
	}
}
