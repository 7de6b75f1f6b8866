package sitebuilder

import (
	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/di"
	"github.com/goliatone/go-sitebuilder/internal/export"
	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/navigation"
	"github.com/goliatone/go-sitebuilder/internal/render"
	"github.com/goliatone/go-sitebuilder/internal/templates"
	"github.com/goliatone/go-sitebuilder/internal/themes"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// ManifestService exports the site manifest service contract for consumers of
// the sitebuilder package.
type ManifestService = manifest.Service

// ContentService exports the content source service contract.
type ContentService = content.Service

// ThemeService exports the theme service contract.
type ThemeService = themes.Service

// ImageService exports the image derivative pipeline contract.
type ImageService = images.Service

// RenderService exports the page renderer contract.
type RenderService = render.Service

// ExportService exports the static export service contract.
type ExportService = export.Service

// Option configures the underlying dependency container.
type Option = di.Option

// Module represents the top level site builder runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a site builder module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Manifests returns the configured manifest service.
func (m *Module) Manifests() ManifestService {
	return m.container.ManifestService()
}

// Content returns the configured content source service.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	return m.container.ThemeService()
}

// Images returns the configured image derivative pipeline.
func (m *Module) Images() ImageService {
	return m.container.ImageService()
}

// Renderer returns the configured page renderer.
func (m *Module) Renderer() RenderService {
	return m.container.RenderService()
}

// Exporter returns the configured static export service.
func (m *Module) Exporter() ExportService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ExportService()
}

// Navigation returns the navigation link builder.
func (m *Module) Navigation() *navigation.Builder {
	return m.container.NavigationBuilder()
}

// Templates returns the compiled template store backing the renderer.
func (m *Module) Templates() *templates.Store {
	return m.container.TemplateStore()
}

// Blobs returns the blob store content and media are read from.
func (m *Module) Blobs() interfaces.BlobStore {
	return m.container.BlobStore()
}

// Markdown returns the configured markdown parser.
func (m *Module) Markdown() interfaces.MarkdownParser {
	return m.container.MarkdownParser()
}

// LoggerProvider returns the logging provider, or nil when logging is
// disabled and no override was supplied.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.LoggerProvider()
}
