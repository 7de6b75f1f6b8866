// Package di assembles the site builder service graph from one Config.
// Construction is eager: NewContainer wires logging, storage, caching, and
// every pipeline service up front so misconfiguration surfaces at startup
// instead of first use.
package di

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-sitebuilder/internal/blob"
	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/export"
	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/logging/console"
	"github.com/goliatone/go-sitebuilder/internal/logging/gologger"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/markdown"
	"github.com/goliatone/go-sitebuilder/internal/navigation"
	"github.com/goliatone/go-sitebuilder/internal/render"
	"github.com/goliatone/go-sitebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-sitebuilder/internal/schema"
	"github.com/goliatone/go-sitebuilder/internal/templates"
	"github.com/goliatone/go-sitebuilder/internal/themes"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
	"github.com/goliatone/go-sitebuilder/pkg/storage"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/uptrace/bun"
)

const diModule = "sitebuilder.di"

// Container wires module dependencies. Options override individual
// collaborators before the wiring runs.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	blobs          interfaces.BlobStore
	themesFS       fs.FS
	exportTarget   storage.Provider
	now            func() time.Time

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	derivatives  images.DerivativeStore
	routeManager *urlkit.RouteManager
	navResolver  navigation.URLResolver

	manifestSvc    manifest.Service
	contentSvc     content.Service
	markdownParser interfaces.MarkdownParser
	themeSvc       themes.Service
	merger         *schema.Merger
	store          *templates.Store
	warmer         *templates.Warmer
	imageSvc       images.Service
	navBuilder     *navigation.Builder
	renderSvc      render.Service
	exportSvc      export.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logging provider backing every module
// logger.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBlobStore overrides the blob store backing manifests, documents, and
// image sources.
func WithBlobStore(store interfaces.BlobStore) Option {
	return func(c *Container) {
		c.blobs = store
	}
}

func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache service and key serializer used by cached
// derivative stores.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithClock overrides the time source services stamp records with.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		c.now = now
	}
}

// WithThemesFS overrides the filesystem themes are loaded from. Tests use
// this to serve fixture themes from memory.
func WithThemesFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.themesFS = fsys
	}
}

// WithExportTarget overrides the storage provider export artifacts are
// written through.
func WithExportTarget(target storage.Provider) Option {
	return func(c *Container) {
		c.exportTarget = target
	}
}

// WithDerivativeStore overrides the derivative record store.
func WithDerivativeStore(store images.DerivativeStore) Option {
	return func(c *Container) {
		c.derivatives = store
	}
}

// WithNavigationResolver overrides the href resolver installed on the
// navigation builder.
func WithNavigationResolver(r navigation.URLResolver) Option {
	return func(c *Container) {
		c.navResolver = r
	}
}

// WithMarkdownParser overrides the markdown parser binding.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.markdownParser = parser
	}
}

// WithManifestService overrides the default manifest service binding.
func WithManifestService(svc manifest.Service) Option {
	return func(c *Container) {
		c.manifestSvc = svc
	}
}

// WithContentService overrides the default content service binding.
func WithContentService(svc content.Service) Option {
	return func(c *Container) {
		c.contentSvc = svc
	}
}

func WithThemeService(svc themes.Service) Option {
	return func(c *Container) {
		c.themeSvc = svc
	}
}

func WithImageService(svc images.Service) Option {
	return func(c *Container) {
		c.imageSvc = svc
	}
}

// WithRenderService overrides the default render service binding.
func WithRenderService(svc render.Service) Option {
	return func(c *Container) {
		c.renderSvc = svc
	}
}

// WithExportService overrides the default export service binding.
func WithExportService(svc export.Service) Option {
	return func(c *Container) {
		c.exportSvc = svc
	}
}

// NewContainer creates a container with the provided configuration. Options
// run before the wiring so callers can swap any collaborator.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureBlobStore(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureDerivatives(); err != nil {
		return nil, err
	}
	c.configureContent()
	c.configureTheming()
	c.configureImages()
	c.configureNavigation()
	c.configureRenderer()
	c.configureExporter()
	c.logConfigured()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure go-logger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{
			MinLevel: consoleLevel(logCfg.Level),
		})
	}

	return nil
}

func (c *Container) configureBlobStore() error {
	if c.blobs != nil {
		return nil
	}

	storageCfg := c.Config.Storage
	switch strings.ToLower(strings.TrimSpace(storageCfg.Provider)) {
	case "", "memory":
		c.blobs = blob.NewMemoryStore()
	case "dir":
		root := strings.TrimSpace(storageCfg.DSN)
		if root == "" {
			return fmt.Errorf("di: dir blob storage requires a root path in storage DSN")
		}
		c.blobs = blob.NewDirStore(root)
	case "bun":
		if c.bunDB == nil {
			return fmt.Errorf("di: bun blob storage requires a database; supply one with WithBunDB")
		}
		bunOpts := []blob.BunStoreOption{}
		if c.now != nil {
			bunOpts = append(bunOpts, blob.WithBunNow(c.now))
		}
		c.blobs = blob.NewBunStore(c.bunDB, bunOpts...)
	default:
		return fmt.Errorf("di: unknown storage provider %q", storageCfg.Provider)
	}

	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureDerivatives() error {
	if c.derivatives != nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Images.DerivativeStore)) {
	case "", "memory":
		c.derivatives = images.NewMemoryDerivativeStore()
	case "bun":
		if c.bunDB == nil {
			return fmt.Errorf("di: bun derivative store requires a database; supply one with WithBunDB")
		}
		if c.cacheService != nil && c.keySerializer != nil {
			c.derivatives = images.NewBunDerivativeStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.derivatives = images.NewBunDerivativeStore(c.bunDB)
		}
	default:
		return fmt.Errorf("di: unknown derivative store %q", c.Config.Images.DerivativeStore)
	}

	return nil
}

func (c *Container) configureContent() {
	if c.manifestSvc == nil {
		opts := []manifest.ServiceOption{}
		if c.now != nil {
			opts = append(opts, manifest.WithNow(c.now))
		}
		c.manifestSvc = manifest.NewService(c.blobs, opts...)
	}

	if c.contentSvc == nil {
		opts := []content.ServiceOption{}
		if root := strings.TrimSpace(c.Config.Content.RootPrefix); root != "" {
			opts = append(opts, content.WithContentRoot(root))
		}
		if ext := strings.TrimSpace(c.Config.Content.Extension); ext != "" {
			opts = append(opts, content.WithExtension(ext))
		}
		c.contentSvc = content.NewService(c.blobs, opts...)
	}

	if c.markdownParser == nil {
		parserCfg := c.Config.Content.Parser
		c.markdownParser = markdown.NewGoldmarkParser(interfaces.ParseOptions{
			Extensions: parserCfg.Extensions,
			HardWraps:  parserCfg.HardWraps,
			SafeMode:   parserCfg.SafeMode,
		})
	}
}

func (c *Container) configureTheming() {
	if c.themeSvc == nil {
		if !c.Config.Features.Themes {
			c.themeSvc = themes.NewNoOpService()
		} else {
			fsys := c.themesFS
			if fsys == nil {
				fsys = os.DirFS(c.Config.Themes.BasePath)
			}
			c.themeSvc = themes.NewService(fsys,
				themes.WithDefaultTheme(c.Config.Themes.DefaultTheme),
				themes.WithDefaultVariant(c.Config.Themes.DefaultVariant),
				themes.WithLogger(logging.ThemesLogger(c.loggerProvider)),
			)
		}
	}

	if c.merger == nil {
		c.merger = schema.NewMerger(c.themeSvc, schema.WithLogger(logging.SchemaLogger(c.loggerProvider)))
	}
	if c.store == nil {
		c.store = templates.NewStore(templates.WithLogger(logging.TemplatesLogger(c.loggerProvider)))
	}
	if c.warmer == nil {
		c.warmer = templates.NewWarmer(c.store, c.themeSvc, templates.WithWarmerLogger(logging.TemplatesLogger(c.loggerProvider)))
	}
}

func (c *Container) configureImages() {
	if c.imageSvc != nil {
		return
	}

	log := logging.ImagesLogger(c.loggerProvider)
	if !c.Config.Features.Images {
		c.imageSvc = images.NewPassthroughService(c.blobs, log)
		return
	}

	opts := []images.ServiceOption{
		images.WithLogger(log),
		images.WithQuality(c.Config.Images.Quality),
		images.WithSourceCache(blob.NewMemoryCache(), c.cacheTTL),
	}
	if c.now != nil {
		opts = append(opts, images.WithNow(c.now))
	}
	c.imageSvc = images.NewService(c.blobs, c.derivatives, opts...)
}

func (c *Container) configureNavigation() {
	if c.navBuilder != nil {
		return
	}

	navCfg := c.Config.Navigation
	if c.navResolver == nil && c.Config.Features.Navigation && navCfg.RouteConfig != nil {
		manager := urlkit.NewRouteManager(navCfg.RouteConfig)
		c.routeManager = manager
		c.navResolver = navigation.NewURLKitResolver(navigation.URLKitResolverOptions{
			Manager: manager,
			Group:   strings.TrimSpace(navCfg.PreviewGroup),
		})
	}

	opts := []navigation.BuilderOption{
		navigation.WithLogger(logging.NavigationLogger(c.loggerProvider)),
	}
	if c.navResolver != nil {
		opts = append(opts, navigation.WithURLResolver(c.navResolver))
	}
	c.navBuilder = navigation.NewBuilder(opts...)
}

func (c *Container) configureRenderer() {
	if c.renderSvc != nil {
		return
	}

	c.renderSvc = render.NewService(render.Config{
		DefaultVariant:    c.Config.Themes.DefaultVariant,
		CSSVariablePrefix: strings.TrimLeft(strings.TrimSpace(c.Config.Themes.CSSVarPrefix), "-"),
	}, render.Dependencies{
		Merger:     c.merger,
		Store:      c.store,
		Warmer:     c.warmer,
		Themes:     c.themeSvc,
		Images:     c.imageSvc,
		Navigation: c.navBuilder,
		Markdown:   c.markdownParser,
		Logger:     logging.RenderLogger(c.loggerProvider),
	})
}

func (c *Container) configureExporter() {
	if c.exportSvc != nil {
		return
	}

	exportCfg := c.Config.Export
	if !c.Config.Features.Export && !exportCfg.Enabled {
		c.exportSvc = export.NewDisabledService()
		return
	}

	if c.exportTarget == nil {
		c.exportTarget = storage.NewFilesystemTarget(exportCfg.OutputDir, exportCfg.OutputDir)
	}

	c.exportSvc = export.NewService(export.Config{
		OutputDir:       exportCfg.OutputDir,
		BaseURL:         c.Config.Site.BaseURL,
		CleanBuild:      exportCfg.CleanBuild,
		CopyAssets:      exportCfg.CopyAssets,
		GenerateSitemap: exportCfg.GenerateSitemap,
		GenerateRobots:  exportCfg.GenerateRobots,
		Workers:         exportCfg.Workers,
	}, export.Dependencies{
		Renderer: c.renderSvc,
		Themes:   c.themeSvc,
		Images:   c.imageSvc,
		Storage:  c.exportTarget,
		Logger:   logging.ExportLogger(c.loggerProvider),
	})
}

func (c *Container) logConfigured() {
	log := logging.ModuleLogger(c.loggerProvider, diModule)

	storageProvider := strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
	if storageProvider == "" {
		storageProvider = "memory"
	}
	log.Info("storage.configured",
		"provider", storageProvider,
		"cache_enabled", c.Config.Cache.Enabled,
	)

	derivativeStore := strings.ToLower(strings.TrimSpace(c.Config.Images.DerivativeStore))
	if derivativeStore == "" {
		derivativeStore = "memory"
	}
	log.Info("images.configured",
		"enabled", c.Config.Features.Images,
		"store", derivativeStore,
		"quality", c.Config.Images.Quality,
	)

	log.Info("export.configured",
		"enabled", c.Config.Features.Export || c.Config.Export.Enabled,
		"output_dir", c.Config.Export.OutputDir,
		"workers", c.Config.Export.Workers,
	)
}

func consoleLevel(level string) *console.Level {
	var parsed console.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		parsed = console.LevelTrace
	case "debug":
		parsed = console.LevelDebug
	case "info":
		parsed = console.LevelInfo
	case "warn", "warning":
		parsed = console.LevelWarn
	case "error":
		parsed = console.LevelError
	case "fatal":
		parsed = console.LevelFatal
	default:
		return nil
	}
	return &parsed
}

// LoggerProvider exposes the configured logging provider. It is nil when
// logging is disabled and no override was supplied.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BlobStore exposes the configured blob store.
func (c *Container) BlobStore() interfaces.BlobStore {
	return c.blobs
}

// DerivativeStore exposes the configured derivative record store.
func (c *Container) DerivativeStore() images.DerivativeStore {
	return c.derivatives
}

// ManifestService returns the configured manifest service.
func (c *Container) ManifestService() manifest.Service {
	return c.manifestSvc
}

// ContentService returns the configured content service.
func (c *Container) ContentService() content.Service {
	return c.contentSvc
}

// MarkdownParser returns the configured markdown parser.
func (c *Container) MarkdownParser() interfaces.MarkdownParser {
	return c.markdownParser
}

// ThemeService returns the configured theme service.
func (c *Container) ThemeService() themes.Service {
	return c.themeSvc
}

// TemplateStore exposes the compiled template store.
func (c *Container) TemplateStore() *templates.Store {
	return c.store
}

// ImageService returns the configured derivative pipeline.
func (c *Container) ImageService() images.Service {
	return c.imageSvc
}

// NavigationBuilder returns the configured navigation builder.
func (c *Container) NavigationBuilder() *navigation.Builder {
	return c.navBuilder
}

// RouteManager exposes the go-urlkit route manager when navigation route
// groups are configured.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

// RenderService returns the configured renderer.
func (c *Container) RenderService() render.Service {
	return c.renderSvc
}

// ExportService returns the configured exporter. It is the disabled
// implementation when neither the feature flag nor the export section
// enables static builds.
func (c *Container) ExportService() export.Service {
	return c.exportSvc
}

// ExportTarget exposes the storage provider export artifacts are written
// through. It is nil when export is disabled and no override was supplied.
func (c *Container) ExportTarget() storage.Provider {
	return c.exportTarget
}
