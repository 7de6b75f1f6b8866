package sitecmd

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-sitebuilder/internal/commands"
	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/export"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/render"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

const (
	exportFailedCode      = "SITE_EXPORT_FAILED"
	renderFailedCode      = "SITE_RENDER_FAILED"
	derivativesFailedCode = "SITE_DERIVATIVES_CLEAR_FAILED"
)

var (
	errManifestsUnavailable = errors.New("site commands: manifest service unavailable")
	errContentUnavailable   = errors.New("site commands: content service unavailable")
	errRendererUnavailable  = errors.New("site commands: renderer unavailable")
	errImagesUnavailable    = errors.New("site commands: image pipeline unavailable")
)

// ExportSiteHandler drives the static exporter using the shared command handler foundation.
type ExportSiteHandler struct {
	inner *commands.Handler[ExportSiteCommand]
}

// NewExportSiteHandler constructs a handler wired to the manifest, content, and export services.
func NewExportSiteHandler(manifests ManifestLoader, contents ContentLoader, exporter export.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ExportSiteCommand]) *ExportSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ExportSiteCommand) error {
		if exporter == nil || !gates.exportEnabled() {
			return export.ErrServiceDisabled
		}

		site, files, err := loadSite(ctx, manifests, contents, msg.SiteID)
		if err != nil {
			return tagFailure(err, exportFailedCode, "site export failed")
		}

		result, err := exporter.Export(ctx, export.Request{
			Site:   site,
			Files:  files,
			Routes: msg.Routes,
			DryRun: msg.DryRun,
		})
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Export: result,
			Metadata: map[string]any{
				"operation": "export",
				"site_id":   msg.SiteID,
			},
		})
		if err != nil {
			return tagFailure(err, exportFailedCode, "site export failed")
		}

		logging.WithFields(baseLogger, map[string]any{
			"site_id":       msg.SiteID,
			"pages_built":   result.PagesBuilt,
			"pages_skipped": result.PagesSkipped,
			"assets_built":  result.AssetsBuilt,
			"duration_ms":   result.Duration.Milliseconds(),
		}).Info("site.command.export.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExportSiteCommand]{
		commands.WithLogger[ExportSiteCommand](baseLogger),
		commands.WithOperation[ExportSiteCommand]("site.export"),
		commands.WithMessageFields(func(msg ExportSiteCommand) map[string]any {
			fields := map[string]any{}
			if trimmed := strings.TrimSpace(msg.SiteID); trimmed != "" {
				fields["site_id"] = trimmed
			}
			if len(msg.Routes) > 0 {
				fields["routes"] = len(msg.Routes)
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ExportSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ExportSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ExportSiteCommand].
func (h *ExportSiteHandler) Execute(ctx context.Context, msg ExportSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderPageHandler renders a single route for previews and cache warming.
type RenderPageHandler struct {
	inner *commands.Handler[RenderPageCommand]
}

// NewRenderPageHandler constructs a handler wired to the renderer and the site loaders.
// Misses and degraded documents do not fail the command; the envelope carries the
// rendered page so callers can inspect its NotFound and Err fields.
func NewRenderPageHandler(renderer PathRenderer, manifests ManifestLoader, contents ContentLoader, logger interfaces.Logger, opts ...commands.HandlerOption[RenderPageCommand]) *RenderPageHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RenderPageCommand) error {
		if renderer == nil {
			return errRendererUnavailable
		}

		site, files, err := loadSite(ctx, manifests, contents, msg.SiteID)
		if err != nil {
			return tagFailure(err, renderFailedCode, "page render failed")
		}

		page, err := renderer.RenderPath(ctx, site, files, msg.Path, render.Options{SiteRoot: msg.SiteRoot})
		if err != nil {
			return tagFailure(err, renderFailedCode, "page render failed")
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Page: page,
			Metadata: map[string]any{
				"operation": "render",
				"site_id":   msg.SiteID,
			},
		})

		fields := map[string]any{
			"site_id":     msg.SiteID,
			"path":        page.Path,
			"title":       page.Title,
			"bytes":       len(page.HTML),
			"duration_ms": page.Duration.Milliseconds(),
		}
		if page.NotFound {
			fields["not_found"] = true
		}
		if page.Err != nil {
			fields["degraded"] = true
		}
		logging.WithFields(baseLogger, fields).Info("site.command.render.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderPageCommand]{
		commands.WithLogger[RenderPageCommand](baseLogger),
		commands.WithOperation[RenderPageCommand]("site.render"),
		commands.WithMessageFields(func(msg RenderPageCommand) map[string]any {
			fields := map[string]any{}
			if trimmed := strings.TrimSpace(msg.SiteID); trimmed != "" {
				fields["site_id"] = trimmed
			}
			if trimmed := strings.TrimSpace(msg.Path); trimmed != "" {
				fields["path"] = trimmed
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderPageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderPageCommand].
func (h *RenderPageHandler) Execute(ctx context.Context, msg RenderPageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ClearDerivativesHandler evicts a site's generated image derivatives.
type ClearDerivativesHandler struct {
	inner *commands.Handler[ClearDerivativesCommand]
}

// NewClearDerivativesHandler constructs a handler wired to the image pipeline.
func NewClearDerivativesHandler(pipeline DerivativeCleaner, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ClearDerivativesCommand]) *ClearDerivativesHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ClearDerivativesCommand) error {
		if pipeline == nil || !gates.imagesEnabled() {
			return errImagesUnavailable
		}

		removed, err := pipeline.ClearSite(ctx, msg.SiteID)
		if err != nil {
			return tagFailure(err, derivativesFailedCode, "derivative clear failed")
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Metadata: map[string]any{
				"operation":           "derivatives.clear",
				"site_id":             msg.SiteID,
				"derivatives_removed": removed,
			},
		})

		logging.WithFields(baseLogger, map[string]any{
			"site_id":             msg.SiteID,
			"derivatives_removed": removed,
		}).Info("site.command.derivatives.clear.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ClearDerivativesCommand]{
		commands.WithLogger[ClearDerivativesCommand](baseLogger),
		commands.WithOperation[ClearDerivativesCommand]("site.derivatives.clear"),
		commands.WithMessageFields(func(msg ClearDerivativesCommand) map[string]any {
			if trimmed := strings.TrimSpace(msg.SiteID); trimmed != "" {
				return map[string]any{"site_id": trimmed}
			}
			return nil
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ClearDerivativesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ClearDerivativesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ClearDerivativesCommand].
func (h *ClearDerivativesHandler) Execute(ctx context.Context, msg ClearDerivativesCommand) error {
	return h.inner.Execute(ctx, msg)
}

func loadSite(ctx context.Context, manifests ManifestLoader, contents ContentLoader, siteID string) (*manifest.Manifest, *content.Set, error) {
	if manifests == nil {
		return nil, nil, errManifestsUnavailable
	}
	if contents == nil {
		return nil, nil, errContentUnavailable
	}
	site, err := manifests.Load(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}
	files, err := contents.Load(ctx, siteID)
	if err != nil {
		return nil, nil, err
	}
	return site, files, nil
}

func tagFailure(err error, code, message string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
