package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

const (
	rootModule       = "sitebuilder"
	renderModule     = "sitebuilder.render"
	resolverModule   = "sitebuilder.resolver"
	templatesModule  = "sitebuilder.templates"
	imagesModule     = "sitebuilder.images"
	schemaModule     = "sitebuilder.schema"
	themesModule     = "sitebuilder.themes"
	navigationModule = "sitebuilder.navigation"
	manifestModule   = "sitebuilder.manifest"
	exportModule     = "sitebuilder.export"
)

const (
	fieldSiteID = "site_id"
	fieldPath   = "path"
	fieldTheme  = "theme"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// RenderLogger returns the logger namespace reserved for the renderer.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// ResolverLogger returns the logger namespace reserved for page resolution.
func ResolverLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolverModule)
}

// TemplatesLogger returns the logger namespace reserved for the template store.
func TemplatesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templatesModule)
}

// ImagesLogger returns the logger namespace reserved for the derivative pipeline.
func ImagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, imagesModule)
}

// SchemaLogger returns the logger namespace reserved for schema merging.
func SchemaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schemaModule)
}

// ThemesLogger returns the logger namespace reserved for theme services.
func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

// NavigationLogger returns the logger namespace reserved for nav building.
func NavigationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, navigationModule)
}

// ManifestLogger returns the logger namespace reserved for manifest services.
func ManifestLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, manifestModule)
}

// ExportLogger returns the logger namespace reserved for static export runs.
func ExportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, exportModule)
}

// WithSiteContext enriches the provided logger with common site fields such as
// site identifier, request path, and active theme. Empty values are ignored.
func WithSiteContext(logger interfaces.Logger, siteID, path, theme string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(siteID); trimmed != "" {
		fields[fieldSiteID] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPath] = trimmed
	}
	if trimmed := strings.TrimSpace(theme); trimmed != "" {
		fields[fieldTheme] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
