package sitecmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/export"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/render"
)

const (
	exportSiteMessageType       = "sitebuilder.site.export"
	renderPageMessageType       = "sitebuilder.site.render"
	clearDerivativesMessageType = "sitebuilder.site.derivatives.clear"
)

// ManifestLoader is the slice of the manifest service the handlers need.
type ManifestLoader interface {
	Load(ctx context.Context, siteID string) (*manifest.Manifest, error)
}

// ContentLoader is the slice of the content service the handlers need.
type ContentLoader interface {
	Load(ctx context.Context, siteID string) (*content.Set, error)
}

// PathRenderer is the slice of the render service the handlers need.
type PathRenderer interface {
	RenderPath(ctx context.Context, site *manifest.Manifest, files *content.Set, requestedPath string, opts render.Options) (*render.Page, error)
}

// DerivativeCleaner is the slice of the image pipeline the handlers need.
type DerivativeCleaner interface {
	ClearSite(ctx context.Context, siteID string) (int, error)
}

// ResultCallback receives results produced by site command executions. The
// callback is optional and is invoked synchronously from the handler.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a site command execution. Only the
// field matching the executed operation is populated.
type ResultEnvelope struct {
	Export   *export.Result
	Page     *render.Page
	Metadata map[string]any
}

// ExportSiteCommand renders one site into its static bundle.
type ExportSiteCommand struct {
	SiteID         string         `json:"site_id"`
	Routes         []string       `json:"routes,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ExportSiteCommand) Type() string { return exportSiteMessageType }

// Validate ensures the command names a target site and well-formed routes.
func (m ExportSiteCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.SiteID) == "" {
		errs["site_id"] = validation.NewError("sitebuilder.site.export.site_id_required", "site_id is required")
	}
	for _, route := range m.Routes {
		if strings.TrimSpace(route) == "" {
			errs["routes"] = validation.NewError("sitebuilder.site.export.route_invalid", "routes must not contain empty values")
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RenderPageCommand renders a single path, warming caches and surfacing
// degraded documents without writing artifacts.
type RenderPageCommand struct {
	SiteID         string         `json:"site_id"`
	Path           string         `json:"path"`
	SiteRoot       string         `json:"site_root,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (RenderPageCommand) Type() string { return renderPageMessageType }

// Validate ensures the command names a site; an empty path resolves the index.
func (m RenderPageCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.SiteID) == "" {
		errs["site_id"] = validation.NewError("sitebuilder.site.render.site_id_required", "site_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ClearDerivativesCommand evicts every generated image derivative for a site.
type ClearDerivativesCommand struct {
	SiteID         string         `json:"site_id"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (ClearDerivativesCommand) Type() string { return clearDerivativesMessageType }

// Validate ensures the command names a target site.
func (m ClearDerivativesCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.SiteID) == "" {
		errs["site_id"] = validation.NewError("sitebuilder.site.derivatives.clear.site_id_required", "site_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FeatureGates exposes runtime switches used to guard handler execution.
// Callers inject closures reading their config so handlers stay free of
// concrete configuration dependencies.
type FeatureGates struct {
	// ExportEnabled returns true when the static export service is active.
	ExportEnabled func() bool
	// ImagesEnabled returns true when the image derivative pipeline is active.
	ImagesEnabled func() bool
}

func (g FeatureGates) exportEnabled() bool {
	if g.ExportEnabled == nil {
		return true
	}
	return g.ExportEnabled()
}

func (g FeatureGates) imagesEnabled() bool {
	if g.ImagesEnabled == nil {
		return true
	}
	return g.ImagesEnabled()
}
