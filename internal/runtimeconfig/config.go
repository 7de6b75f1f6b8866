package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var ErrSiteIDRequired = errors.New("sitebuilder config: site id is required")
var ErrThemesBasePathRequired = errors.New("sitebuilder config: themes base path is required when themes are enabled")
var ErrExportOutputDirRequired = errors.New("sitebuilder config: export output directory is required when export is enabled")
var ErrExportWorkersInvalid = errors.New("sitebuilder config: export workers must be zero or positive")
var ErrImageQualityInvalid = errors.New("sitebuilder config: image quality must be between 1 and 100")
var ErrImageCropModeInvalid = errors.New("sitebuilder config: image crop mode is invalid")
var ErrDerivativeStoreUnknown = errors.New("sitebuilder config: derivative store is invalid")
var ErrLoggingProviderRequired = errors.New("sitebuilder config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("sitebuilder config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("sitebuilder config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("sitebuilder config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the site builder
// module. Fields intentionally use simple types so host applications can
// extend them later.
type Config struct {
	Enabled    bool
	Site       SiteConfig
	Content    ContentConfig
	Storage    StorageConfig
	Cache      CacheConfig
	Navigation NavigationConfig
	Themes     ThemeConfig
	Images     ImageConfig
	Export     ExportConfig
	Features   Features
	Commands   CommandsConfig
	Logging    LoggingConfig
}

// SiteConfig identifies the active site and its public address.
type SiteConfig struct {
	ID      string
	BaseURL string
}

// ContentConfig captures behaviour for the content-file layer.
type ContentConfig struct {
	RootPrefix string
	Extension  string
	Parser     MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
	DSN      string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// NavigationConfig captures routing configuration for nav URL resolution.
// Exported documents always link root-relative; the route group only shapes
// hrefs on the interactive preview surface.
type NavigationConfig struct {
	RouteConfig  *urlkit.Config
	PreviewGroup string
}

// ThemeConfig captures configuration for the themes module.
type ThemeConfig struct {
	BasePath       string
	DefaultTheme   string
	DefaultVariant string
	CSSVarPrefix   string
}

// ImageConfig captures derivative pipeline behaviour.
type ImageConfig struct {
	Quality         int
	DefaultCrop     string
	DefaultGravity  string
	DerivativeStore string
	OGPresetOrder   []string
}

// ExportConfig captures behaviour for the static export service.
type ExportConfig struct {
	Enabled         bool
	OutputDir       string
	CleanBuild      bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	Workers         int
	RenderTimeout   time.Duration
}

// Features toggles module functionality.
type Features struct {
	Themes     bool
	Images     bool
	Export     bool
	Navigation bool
	Logger     bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a single-site preview setup.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Site: SiteConfig{
			ID: "default",
		},
		Content: ContentConfig{
			RootPrefix: "content",
			Extension:  ".md",
		},
		Storage: StorageConfig{
			Provider: "memory",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Navigation: NavigationConfig{
			PreviewGroup: "preview",
		},
		Themes: ThemeConfig{
			BasePath:     "themes",
			CSSVarPrefix: "--sb",
		},
		Images: ImageConfig{
			Quality:         85,
			DefaultCrop:     "fit",
			DefaultGravity:  "center",
			DerivativeStore: "memory",
			OGPresetOrder:   []string{"og:image", "og", "social", "hero"},
		},
		Export: ExportConfig{
			OutputDir:       "dist",
			CleanBuild:      true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  false,
			Workers:         0,
		},
		Features: Features{
			Themes:     true,
			Images:     true,
			Navigation: true,
		},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Site.ID) == "" {
		return ErrSiteIDRequired
	}
	if cfg.Features.Themes {
		if strings.TrimSpace(cfg.Themes.BasePath) == "" {
			return ErrThemesBasePathRequired
		}
	}
	if cfg.Features.Export || cfg.Export.Enabled {
		if strings.TrimSpace(cfg.Export.OutputDir) == "" {
			return ErrExportOutputDirRequired
		}
		if cfg.Export.Workers < 0 {
			return ErrExportWorkersInvalid
		}
	}
	if cfg.Images.Quality < 1 || cfg.Images.Quality > 100 {
		return ErrImageQualityInvalid
	}
	if crop := strings.TrimSpace(cfg.Images.DefaultCrop); crop != "" && !isSupportedCrop(crop) {
		return fmt.Errorf("%w: %s", ErrImageCropModeInvalid, crop)
	}
	if store := normalizeStore(cfg.Images.DerivativeStore); store != "" && !isSupportedStore(store) {
		return fmt.Errorf("%w: %s", ErrDerivativeStoreUnknown, store)
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func normalizeStore(store string) string {
	return strings.ToLower(strings.TrimSpace(store))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedStore(store string) bool {
	switch store {
	case "memory", "bun":
		return true
	default:
		return false
	}
}

func isSupportedCrop(crop string) bool {
	switch strings.ToLower(strings.TrimSpace(crop)) {
	case "fill", "fit", "scale":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
