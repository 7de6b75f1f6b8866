// Package render composes the site builder pipeline into final HTML: it
// merges theme configuration, warms the template store, resolves image
// presets, renders the body for the resolved content type, and wraps it in
// the theme's base document shell. Content-level failures degrade into
// fallback documents; Render only errors on unusable inputs.
package render

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/navigation"
	"github.com/goliatone/go-sitebuilder/internal/resolver"
	"github.com/goliatone/go-sitebuilder/internal/schema"
	"github.com/goliatone/go-sitebuilder/internal/templates"
	"github.com/goliatone/go-sitebuilder/internal/themes"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

var (
	// ErrSiteRequired indicates Render was called without a manifest.
	ErrSiteRequired = errors.New("render: site manifest is required")
	// ErrResolutionRequired indicates Render was called without a resolution.
	ErrResolutionRequired = errors.New("render: resolution is required")
)

// Service renders resolved pages into complete HTML documents.
type Service interface {
	// Render produces the document for an already-resolved path. The page is
	// always populated on a nil error: not-found and template failures come
	// back as fallback documents, never as errors.
	Render(ctx context.Context, site *manifest.Manifest, files *content.Set, res resolver.Resolution, opts Options) (*Page, error)
	// RenderPath resolves the requested path and renders the outcome.
	RenderPath(ctx context.Context, site *manifest.Manifest, files *content.Set, requestedPath string, opts Options) (*Page, error)
	// InvalidateTemplates drops every compiled template and forces a re-warm
	// on the next render. Call it when theme sources change mid-session.
	InvalidateTemplates()
}

// Config captures renderer behaviour toggles.
type Config struct {
	// DefaultLayout renders pages whose resolution carries no layout id.
	DefaultLayout string
	// DefaultVariant selects the design token variant for inline CSS.
	DefaultVariant string
	// CSSVariablePrefix names the custom property namespace, "sb" by default.
	CSSVariablePrefix string
}

// Dependencies lists the collaborating services the renderer composes.
type Dependencies struct {
	Merger     *schema.Merger
	Store      *templates.Store
	Warmer     *templates.Warmer
	Themes     themes.Service
	Images     images.Service
	Navigation *navigation.Builder
	Markdown   interfaces.MarkdownParser
	Logger     interfaces.Logger
}

// Options shape one render call. Live preview and static export differ only
// in the roots links and asset URLs are computed against.
type Options struct {
	// SiteRoot prefixes page links, e.g. "/preview/demo" for the preview
	// surface or "" for exported documents served from the site root.
	SiteRoot string
	// IsExport switches asset URLs to export-relative paths.
	IsExport bool
	// RelativeAssetPath overrides the asset URL base when set.
	RelativeAssetPath string
}

// AssetHref maps a stored blob path onto the URL the rendered document
// references for it.
func (o Options) AssetHref(blobPath string) string {
	blobPath = strings.TrimLeft(strings.TrimSpace(blobPath), "/")
	base := strings.TrimSpace(o.RelativeAssetPath)
	switch {
	case base != "":
	case o.IsExport:
		base = "assets"
	default:
		base = strings.TrimRight(o.SiteRoot, "/") + "/assets"
	}
	return strings.TrimRight(base, "/") + "/" + blobPath
}

// Page is the outcome of one render call. HTML is always usable: not-found
// resolutions and render failures produce fallback documents, with Err
// carrying the underlying failure for diagnostics.
type Page struct {
	HTML     string
	Path     string
	Title    string
	NotFound bool
	Err      error
	Duration time.Duration
}

type service struct {
	cfg  Config
	deps Dependencies
	log  interfaces.Logger

	mu     sync.Mutex
	warmed string
}

// NewService wires the renderer. Every collaborator except the logger is
// required.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Merger == nil {
		panic("render: schema merger is required")
	}
	if deps.Store == nil {
		panic("render: template store is required")
	}
	if deps.Warmer == nil {
		panic("render: template warmer is required")
	}
	if deps.Themes == nil {
		panic("render: theme service is required")
	}
	if deps.Images == nil {
		panic("render: image service is required")
	}
	if deps.Navigation == nil {
		panic("render: navigation builder is required")
	}
	if deps.Markdown == nil {
		panic("render: markdown parser is required")
	}

	log := deps.Logger
	if log == nil {
		log = logging.NoOp()
	}
	return &service{cfg: cfg, deps: deps, log: log}
}

func (s *service) RenderPath(ctx context.Context, site *manifest.Manifest, files *content.Set, requestedPath string, opts Options) (*Page, error) {
	if site == nil {
		return nil, ErrSiteRequired
	}
	res := resolver.Resolve(site.Tree, files, requestedPath)
	return s.Render(ctx, site, files, res, opts)
}

func (s *service) Render(ctx context.Context, site *manifest.Manifest, files *content.Set, res resolver.Resolution, opts Options) (*Page, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if site == nil {
		return nil, ErrSiteRequired
	}
	if res == nil {
		return nil, ErrResolutionRequired
	}
	start := time.Now()

	if notFound, ok := res.(*resolver.NotFound); ok {
		page := s.notFoundPage(notFound)
		page.Duration = time.Since(start)
		return page, nil
	}

	merged := s.mergedManifest(ctx, site)

	if err := s.ensureWarm(ctx, merged.Theme.Name); err != nil {
		return s.errorPage(res.ResolvedPath(), "", err, start), nil
	}
	theme, err := s.deps.Themes.GetTheme(ctx, merged.Theme.Name)
	if err != nil {
		return s.errorPage(res.ResolvedPath(), "", err, start), nil
	}

	links := s.deps.Navigation.Build(merged.Tree, files, navigation.Options{
		SiteRoot:     opts.SiteRoot,
		CurrentPath:  res.ResolvedPath(),
		DefaultHrefs: opts.IsExport,
	})

	var (
		body       string
		title      string
		pageImages map[string]string
	)
	switch resolved := res.(type) {
	case *resolver.SinglePage:
		title = resolved.Title
		body, pageImages, err = s.renderSinglePage(ctx, merged, theme, resolved, links, opts)
	case *resolver.Collection:
		title = resolved.Title
		body, pageImages, err = s.renderCollection(ctx, merged, theme, resolved, links, opts)
	default:
		err = fmt.Errorf("render: unsupported resolution %T", res)
	}
	if err != nil {
		return s.errorPage(res.ResolvedPath(), title, err, start), nil
	}

	document, err := s.renderShell(ctx, merged, res.ResolvedPath(), title, body, pageImages, links, opts)
	if err != nil {
		return s.errorPage(res.ResolvedPath(), title, err, start), nil
	}

	return &Page{
		HTML:     document,
		Path:     res.ResolvedPath(),
		Title:    title,
		Duration: time.Since(start),
	}, nil
}

func (s *service) InvalidateTemplates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Store.Clear()
	s.warmed = ""
}

// mergedManifest clones the site and synchronizes its theme config against
// the theme's current appearance schema. The merger degrades to the saved
// config when the theme cannot be loaded, so this never fails a render.
func (s *service) mergedManifest(ctx context.Context, site *manifest.Manifest) *manifest.Manifest {
	merged := site.Clone()
	merged.Theme.Config = s.deps.Merger.MergeConfig(ctx, merged.Theme.Name, merged.Theme.Config)
	return merged
}

// ensureWarm registers the theme's base, partials, and layouts once per
// active theme. The compiled template cache survives across renders;
// switching themes re-warms and clears stale partial names.
func (s *service) ensureWarm(ctx context.Context, themeName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.warmed == themeName {
		return nil
	}
	if err := s.deps.Warmer.Warm(ctx, themeName); err != nil {
		return err
	}
	s.warmed = themeName
	return nil
}

func (s *service) layoutOrDefault(layoutID string) string {
	if strings.TrimSpace(layoutID) != "" {
		return layoutID
	}
	return strings.TrimSpace(s.cfg.DefaultLayout)
}

const notFoundDocument = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Not Found</title></head>
<body><main><h1>Page not found</h1><p>%s</p></main></body>
</html>
`

const errorDocument = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Render Error</title></head>
<body><main><h1>Unable to render this page</h1><p>%s</p></main></body>
</html>
`

// notFoundPage builds the minimal miss document. The theme is never invoked
// for a miss, so this works even when no theme loads at all.
func (s *service) notFoundPage(res *resolver.NotFound) *Page {
	reason := strings.TrimSpace(res.Reason)
	if reason == "" {
		reason = "the requested page does not exist"
	}
	return &Page{
		HTML:     fmt.Sprintf(notFoundDocument, html.EscapeString(reason)),
		Path:     res.Path,
		Title:    "Not Found",
		NotFound: true,
	}
}

func (s *service) errorPage(path, title string, err error, started time.Time) *Page {
	s.log.Error("render failed, serving error document", "path", path, "error", err)
	return &Page{
		HTML:     fmt.Sprintf(errorDocument, html.EscapeString(err.Error())),
		Path:     path,
		Title:    title,
		Err:      err,
		Duration: time.Since(started),
	}
}
