package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/render"
	"github.com/goliatone/go-sitebuilder/internal/resolver"
	"github.com/goliatone/go-sitebuilder/internal/themes"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
	"github.com/goliatone/go-sitebuilder/pkg/storage"
)

var (
	// ErrServiceDisabled indicates the export feature is disabled.
	ErrServiceDisabled   = errors.New("export: service disabled")
	errRendererRequired  = errors.New("export: renderer is required")
	errSiteRequired      = errors.New("export: site manifest is required")
	errOutputDirRequired = errors.New("export: output directory is required")
)

// Service writes a site out as a static bundle.
type Service interface {
	Export(ctx context.Context, req Request) (*Result, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the exporter.
type Config struct {
	OutputDir       string
	BaseURL         string
	CleanBuild      bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	Workers         int
}

// Request carries the site snapshot for one export run. Routes narrows the
// run to specific paths; empty exports the whole tree.
type Request struct {
	Site   *manifest.Manifest
	Files  *content.Set
	Routes []string
	DryRun bool
}

// Result reports aggregated export metadata.
type Result struct {
	PagesBuilt   int
	PagesSkipped int
	AssetsBuilt  int
	Duration     time.Duration
	Pages        []ExportedPage
	Diagnostics  []Diagnostic
	Errors       []error
	DryRun       bool
}

// ExportedPage is one rendered document headed for the bundle.
type ExportedPage struct {
	Route        string
	Title        string
	HTML         string
	Output       string
	Checksum     string
	LastModified time.Time
	Duration     time.Duration
}

// Diagnostic records rendering timing and errors for individual routes.
type Diagnostic struct {
	Route    string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       ExportedPage
	refs       []images.Reference
	diagnostic Diagnostic
	err        error
	skipped    bool
}

// Dependencies lists the collaborating services required by the exporter.
type Dependencies struct {
	Renderer render.Service
	Themes   themes.Service
	Images   images.Service
	Storage  storage.Provider
	Logger   interfaces.Logger
}

// NewService wires an exporter with the provided configuration and
// dependencies. Storage may be nil for render-only runs.
func NewService(cfg Config, deps Dependencies) Service {
	log := deps.Logger
	if log == nil {
		log = logging.NoOp()
	}
	return &service{
		cfg:  cfg,
		deps: deps,
		log:  log,
		now:  time.Now,
	}
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg  Config
	deps Dependencies
	log  interfaces.Logger
	now  func() time.Time
}

type disabledService struct{}

func (s *service) Export(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if req.Site == nil {
		return nil, errSiteRequired
	}

	start := time.Now()
	generatedAt := s.now().UTC()
	paths := s.exportPaths(req)

	var theme *themes.Theme
	if s.deps.Themes != nil {
		loaded, err := s.deps.Themes.GetTheme(ctx, req.Site.Theme.Name)
		if err != nil {
			s.log.Warn("export proceeding without theme presets", "theme", req.Site.Theme.Name, "error", err)
		} else {
			theme = loaded
		}
	}

	result := &Result{
		DryRun:      req.DryRun,
		Diagnostics: make([]Diagnostic, 0, len(paths)),
	}

	var (
		mu          sync.Mutex
		rendered    = make([]ExportedPage, 0, len(paths))
		refs        = chromeRefs(req.Site)
		errorsSlice []error
	)

	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.PagesSkipped++
			return
		}
		result.PagesBuilt++
		refs = append(refs, outcome.refs...)
		if !req.DryRun {
			rendered = append(rendered, outcome.page)
		}
	}

	workerCount := s.effectiveWorkerCount(len(paths))
	if workerCount <= 1 || len(paths) <= 1 {
		for _, treePath := range paths {
			select {
			case <-ctx.Done():
				collect(renderOutcome{
					diagnostic: Diagnostic{Route: routeFor(treePath), Err: ctx.Err()},
					err:        ctx.Err(),
				})
				return result, ctx.Err()
			default:
				collect(s.renderRoute(ctx, req, theme, treePath))
			}
		}
	} else {
		if err := s.renderConcurrently(ctx, req, theme, paths, workerCount, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if req.DryRun {
		result.Pages = rendered
		result.Duration = time.Since(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	// Workers finish in arbitrary order; persist by route.
	sort.Slice(rendered, func(i, j int) bool { return rendered[i].Route < rendered[j].Route })

	writer := newArtifactWriter(s.deps.Storage)
	if s.cfg.CleanBuild {
		if err := s.removeOutput(ctx); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if err := s.persistPages(ctx, writer, rendered); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	if s.cfg.CopyAssets {
		built, err := s.copyAssets(ctx, writer, req.Site.SiteID, refs)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt += built
		}
	}

	if s.cfg.GenerateSitemap {
		if err := s.writeSitemap(ctx, writer, rendered, generatedAt); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, generatedAt); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Pages = rendered
	result.Duration = time.Since(start)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// Clean removes the previously exported bundle.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Storage == nil {
		return nil
	}
	return s.removeOutput(ctx)
}

func (s *service) removeOutput(ctx context.Context) error {
	base := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	if base == "" {
		// An empty output dir would remove the storage root.
		return errOutputDirRequired
	}
	if s.deps.Storage == nil {
		return nil
	}
	_, err := s.deps.Storage.Exec(ctx, storage.OpRemove, base)
	return err
}

// exportPaths enumerates every exportable tree path: structure nodes plus
// the items inside collection folders. Explicit request routes bypass the
// enumeration.
func (s *service) exportPaths(req Request) []string {
	if len(req.Routes) > 0 {
		paths := make([]string, 0, len(req.Routes))
		for _, route := range req.Routes {
			paths = append(paths, normalizeTreePath(route))
		}
		return paths
	}

	var paths []string
	seen := map[string]struct{}{}
	add := func(treePath string) {
		if _, ok := seen[treePath]; ok {
			return
		}
		seen[treePath] = struct{}{}
		paths = append(paths, treePath)
	}
	req.Site.Tree.Walk(func(node manifest.Node, _ int) bool {
		add(node.Path)
		if node.Kind == manifest.NodeKindCollection {
			for _, item := range req.Files.Children(node.Path) {
				if treePath, ok := req.Files.TreePath(item.Path); ok {
					add(treePath)
				}
			}
		}
		return true
	})
	return paths
}

func (s *service) renderConcurrently(
	ctx context.Context,
	req Request,
	theme *themes.Theme,
	paths []string,
	workers int,
	collect func(renderOutcome),
) error {
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for treePath := range jobs {
				select {
				case <-ctx.Done():
					collect(renderOutcome{
						diagnostic: Diagnostic{Route: routeFor(treePath), Err: ctx.Err()},
						err:        ctx.Err(),
					})
					return
				default:
					collect(s.renderRoute(ctx, req, theme, treePath))
				}
			}
		}()
	}

	for _, treePath := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- treePath:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (s *service) renderRoute(ctx context.Context, req Request, theme *themes.Theme, treePath string) renderOutcome {
	route := routeFor(treePath)
	outcome := renderOutcome{diagnostic: Diagnostic{Route: route}}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	res := resolver.Resolve(req.Site.Tree, req.Files, treePath)
	if notFound, ok := res.(*resolver.NotFound); ok {
		err := fmt.Errorf("export: route %q has no content: %s", route, notFound.Reason)
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}
	if resolutionFile(res).Draft() {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	start := time.Now()
	page, err := s.deps.Renderer.Render(ctx, req.Site, req.Files, res, renderOptionsFor(route))
	duration := time.Since(start)
	outcome.diagnostic.Duration = duration
	if err == nil && page.Err != nil {
		err = page.Err
	}
	if err != nil {
		wrapped := fmt.Errorf("export: render route %q: %w", route, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.refs = resolutionRefs(theme, res)
	outcome.page = ExportedPage{
		Route:        route,
		Title:        page.Title,
		HTML:         page.HTML,
		LastModified: resolutionLastModified(res),
		Duration:     duration,
	}
	return outcome
}

// renderOptionsFor points asset URLs at the bundle's assets directory
// relative to the page's output file, so the bundle works from any mount
// point.
func renderOptionsFor(route string) render.Options {
	return render.Options{
		IsExport:          true,
		RelativeAssetPath: strings.Repeat("../", pageDepth(route)) + "assets",
	}
}

func (s *service) persistPages(ctx context.Context, writer artifactWriter, pages []ExportedPage) error {
	if len(pages) == 0 {
		return nil
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		destRel := outputPath(pages[i].Route)
		fullPath := joinOutputPath(baseDir, destRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}
		checksum := computeHashFromString(pages[i].HTML)
		pages[i].Output = fullPath
		pages[i].Checksum = checksum

		req := writeFileRequest{
			Path:        fullPath,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Category:    categoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    checksum,
			Metadata: map[string]string{
				"route": pages[i].Route,
				"title": pages[i].Title,
			},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) copyAssets(ctx context.Context, writer artifactWriter, siteID string, refs []images.Reference) (int, error) {
	if s.deps.Images == nil {
		return 0, nil
	}
	assets, err := s.deps.Images.ExportAssets(ctx, siteID, refs)
	if err != nil {
		return 0, err
	}
	if len(assets) == 0 {
		return 0, nil
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })

	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return 0, err
		}
	}
	built := 0
	for _, asset := range assets {
		destRel := path.Join("assets", asset.Path)
		fullPath := joinOutputPath(baseDir, destRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return built, err
		}
		req := writeFileRequest{
			Path:        fullPath,
			Content:     bytes.NewReader(asset.Data),
			Size:        int64(len(asset.Data)),
			Category:    categoryAsset,
			ContentType: detectAssetContentType(destRel),
			Checksum:    computeHash(asset.Data),
			Metadata:    map[string]string{"source": asset.Path},
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return built, err
		}
		built++
	}
	return built, nil
}

func (s *service) writeSitemap(ctx context.Context, writer artifactWriter, pages []ExportedPage, generatedAt time.Time) error {
	content := buildSitemap(s.cfg.BaseURL, pages, generatedAt)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": generatedAt.Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) writeRobots(ctx context.Context, writer artifactWriter, generatedAt time.Time) error {
	content := buildRobots(s.cfg.BaseURL, s.cfg.GenerateSitemap)
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	fullPath := joinOutputPath(baseDir, "robots.txt")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	req := writeFileRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata: map[string]string{
			"generated_at": generatedAt.Format(time.RFC3339),
		},
	}
	return writer.WriteFile(ctx, req)
}

func (s *service) effectiveWorkerCount(routeCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if routeCount > 0 && workers > routeCount {
		return routeCount
	}
	return workers
}

// chromeRefs returns the site chrome images every bundle carries.
func chromeRefs(site *manifest.Manifest) []images.Reference {
	var refs []images.Reference
	if site.Logo != nil && !site.Logo.IsZero() {
		refs = append(refs, *site.Logo)
	}
	if site.Favicon != nil && !site.Favicon.IsZero() {
		refs = append(refs, *site.Favicon)
	}
	return refs
}

// resolutionRefs collects the source images the resolved page references
// through its layout presets, mirroring how the renderer binds them.
func resolutionRefs(theme *themes.Theme, res resolver.Resolution) []images.Reference {
	switch r := res.(type) {
	case *resolver.SinglePage:
		return presetRefs(theme, r.Layout, r.File)
	case *resolver.Collection:
		refs := presetRefs(theme, r.Layout, r.File)
		for _, item := range r.Items {
			refs = append(refs, presetRefs(theme, item.Layout, item.File)...)
		}
		return refs
	}
	return nil
}

func presetRefs(theme *themes.Theme, layoutID string, file *content.File) []images.Reference {
	layout, ok := theme.Layout(layoutID)
	if !ok || file == nil || len(layout.ImagePresets) == 0 {
		return nil
	}
	var refs []images.Reference
	for _, preset := range layout.ImagePresets {
		value, ok := file.Field(preset.Source)
		if !ok {
			continue
		}
		if ref, ok := images.ReferenceFromValue(value); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func resolutionFile(res resolver.Resolution) *content.File {
	switch r := res.(type) {
	case *resolver.SinglePage:
		return r.File
	case *resolver.Collection:
		return r.File
	}
	return nil
}

// resolutionLastModified picks the sitemap timestamp: the page's own date,
// or for listings the newest date across the index and its items.
func resolutionLastModified(res resolver.Resolution) time.Time {
	switch r := res.(type) {
	case *resolver.SinglePage:
		if ts, ok := r.File.Date(); ok {
			return ts
		}
	case *resolver.Collection:
		var latest time.Time
		if ts, ok := r.File.Date(); ok {
			latest = ts
		}
		for _, item := range r.Items {
			if ts, ok := item.File.Date(); ok && ts.After(latest) {
				latest = ts
			}
		}
		return latest
	}
	return time.Time{}
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.Trim(dir, " ")
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func (disabledService) Export(context.Context, Request) (*Result, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}
