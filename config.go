package sitebuilder

import "github.com/goliatone/go-sitebuilder/internal/runtimeconfig"

var (
	ErrSiteIDRequired          = runtimeconfig.ErrSiteIDRequired
	ErrThemesBasePathRequired  = runtimeconfig.ErrThemesBasePathRequired
	ErrExportOutputDirRequired = runtimeconfig.ErrExportOutputDirRequired
	ErrExportWorkersInvalid    = runtimeconfig.ErrExportWorkersInvalid
	ErrImageQualityInvalid     = runtimeconfig.ErrImageQualityInvalid
	ErrImageCropModeInvalid    = runtimeconfig.ErrImageCropModeInvalid
	ErrDerivativeStoreUnknown  = runtimeconfig.ErrDerivativeStoreUnknown
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	SiteConfig           = runtimeconfig.SiteConfig
	ContentConfig        = runtimeconfig.ContentConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	StorageConfig        = runtimeconfig.StorageConfig
	CacheConfig          = runtimeconfig.CacheConfig
	NavigationConfig     = runtimeconfig.NavigationConfig
	ThemeConfig          = runtimeconfig.ThemeConfig
	ImageConfig          = runtimeconfig.ImageConfig
	ExportConfig         = runtimeconfig.ExportConfig
	Features             = runtimeconfig.Features
	CommandsConfig       = runtimeconfig.CommandsConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
