package themes

import (
	"path"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitebuilder/internal/images"
)

// File kinds inside theme and layout manifests.
const (
	FileTypeBase     = "base"
	FileTypePartial  = "partial"
	FileTypeTemplate = "template"
)

// Layout kinds.
const (
	LayoutTypePage       = "page"
	LayoutTypeCollection = "collection"
)

// File declares one template file a theme or layout exposes. Path is stored
// relative to the theme directory after loading.
type File struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

// PartialName is the stable name the file registers under: the declared name
// or the path basename without extension.
func (f File) PartialName() string {
	if name := strings.TrimSpace(f.Name); name != "" {
		return name
	}
	base := path.Base(f.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Manifest is the theme.json document: the layouts the theme ships, its
// shared template files, and the JSON Schema describing its appearance
// config.
type Manifest struct {
	Name             string         `json:"name,omitempty"`
	Layouts          []string       `json:"layouts"`
	Files            []File         `json:"files"`
	AppearanceSchema map[string]any `json:"appearanceSchema,omitempty"`
}

// ImagePreset maps a frontmatter field onto a derivative transform.
type ImagePreset struct {
	Source  string `json:"source"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Crop    string `json:"crop,omitempty"`
	Gravity string `json:"gravity,omitempty"`
}

// Transform converts the preset into the image pipeline's request shape.
func (p ImagePreset) Transform() images.Transform {
	return images.Transform{
		Width:   p.Width,
		Height:  p.Height,
		Crop:    images.Crop(strings.ToLower(strings.TrimSpace(p.Crop))),
		Gravity: images.Gravity(strings.ToLower(strings.TrimSpace(p.Gravity))),
	}
}

// LayoutManifest is the layout.json document for one reusable template unit.
type LayoutManifest struct {
	Name           string                 `json:"name"`
	Type           string                 `json:"type"`
	Files          []File                 `json:"files"`
	PageSchema     map[string]any         `json:"pageSchema,omitempty"`
	ItemSchema     map[string]any         `json:"itemSchema,omitempty"`
	ImagePresets   map[string]ImagePreset `json:"image_presets,omitempty"`
	DisplayOptions map[string]any         `json:"display_options,omitempty"`
}

// TemplateFile returns the layout's main template: the first file declared
// as a template, falling back to the first file at all.
func (l *LayoutManifest) TemplateFile() (File, bool) {
	if l == nil {
		return File{}, false
	}
	for _, f := range l.Files {
		if f.Type == FileTypeTemplate {
			return f, true
		}
	}
	if len(l.Files) > 0 {
		return l.Files[0], true
	}
	return File{}, false
}

// PartialFiles lists the layout's partial declarations.
func (l *LayoutManifest) PartialFiles() []File {
	if l == nil {
		return nil
	}
	var partials []File
	for _, f := range l.Files {
		if f.Type == FileTypePartial {
			partials = append(partials, f)
		}
	}
	return partials
}

// SupportsItems reports whether the layout renders collection items.
func (l *LayoutManifest) SupportsItems() bool {
	return l != nil && l.Type == LayoutTypeCollection
}

// Theme bundles a loaded theme: manifest, resolved layouts, and optional
// design tokens.
type Theme struct {
	Name     string
	Manifest *Manifest
	Layouts  map[string]*LayoutManifest
	Tokens   *gotheme.Manifest
}

// BaseFile returns the document shell template declaration.
func (t *Theme) BaseFile() (File, bool) {
	if t == nil || t.Manifest == nil {
		return File{}, false
	}
	for _, f := range t.Manifest.Files {
		if f.Type == FileTypeBase {
			return f, true
		}
	}
	return File{}, false
}

// PartialFiles lists the theme's shared partial declarations.
func (t *Theme) PartialFiles() []File {
	if t == nil || t.Manifest == nil {
		return nil
	}
	var partials []File
	for _, f := range t.Manifest.Files {
		if f.Type == FileTypePartial {
			partials = append(partials, f)
		}
	}
	return partials
}

// Layout resolves one of the theme's layouts by identifier.
func (t *Theme) Layout(id string) (*LayoutManifest, bool) {
	if t == nil {
		return nil, false
	}
	layout, ok := t.Layouts[strings.TrimSpace(id)]
	return layout, ok
}
