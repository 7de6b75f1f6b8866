// Package themes exposes the theme and layout manifest types for consumers
// of the sitebuilder module.
package themes

import internalthemes "github.com/goliatone/go-sitebuilder/internal/themes"

// Theme is a fully loaded theme: manifest, layouts, and appearance schema.
type Theme = internalthemes.Theme

// Manifest is the parsed theme.json document.
type Manifest = internalthemes.Manifest

// LayoutManifest is the parsed layout.json document for one layout.
type LayoutManifest = internalthemes.LayoutManifest

// ImagePreset declares a named derivative a layout wants rendered.
type ImagePreset = internalthemes.ImagePreset

// File points at one template source inside a theme.
type File = internalthemes.File

// Service loads themes and resolves design token selections.
type Service = internalthemes.Service

// NotFoundError reports missing themes, layouts, and template files.
type NotFoundError = internalthemes.NotFoundError

var (
	ErrThemeNameRequired = internalthemes.ErrThemeNameRequired
	ErrLayoutTypeInvalid = internalthemes.ErrLayoutTypeInvalid
	ErrFeatureDisabled   = internalthemes.ErrFeatureDisabled
)
