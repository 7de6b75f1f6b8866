package bootstrap

import (
	"fmt"
	"strings"

	sitebuilder "github.com/goliatone/go-sitebuilder"
	"github.com/goliatone/go-sitebuilder/commands"
	"github.com/goliatone/go-sitebuilder/internal/di"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
	"github.com/goliatone/go-sitebuilder/pkg/storage"
	"github.com/uptrace/bun"
)

// Options captures the tunable configuration for a CLI-driven site module.
type Options struct {
	SiteID          string
	OutputDir       string
	BaseURL         string
	ThemesDir       string
	StorageProvider string
	StorageDSN      string
	Logger          interfaces.LoggerProvider
	DB              *bun.DB
	ExportTarget    storage.Provider
	EnableCommands  bool // collect command handlers for CLI execution when true
}

// Resources groups the module runtime and optional command registry used by CLI commands.
type Resources struct {
	Module    *sitebuilder.Module
	Collector *CommandCollector
}

// CommandCollector records handlers registered by the DI container so CLI commands can
// invoke them directly when dispatcher integrations are requested.
type CommandCollector struct {
	handlers []any
}

// RegisterCommand satisfies commands.CommandRegistry.
func (c *CommandCollector) RegisterCommand(handler any) error {
	c.handlers = append(c.handlers, handler)
	return nil
}

// Handlers returns the collected handlers.
func (c *CommandCollector) Handlers() []any {
	if len(c.handlers) == 0 {
		return nil
	}
	out := make([]any, len(c.handlers))
	copy(out, c.handlers)
	return out
}

// BuildModule initialises a sitebuilder.Module configured for export operations and, when
// requested, collects command handlers for CLI invocation.
func BuildModule(opts Options) (*Resources, error) {
	cfg := sitebuilder.DefaultConfig()
	cfg.Features.Export = true
	cfg.Export.Enabled = true
	cfg.Commands.Enabled = opts.EnableCommands
	if trimmed := strings.TrimSpace(opts.SiteID); trimmed != "" {
		cfg.Site.ID = trimmed
	}
	if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
		cfg.Export.OutputDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.BaseURL); trimmed != "" {
		cfg.Site.BaseURL = trimmed
	}
	if trimmed := strings.TrimSpace(opts.ThemesDir); trimmed != "" {
		cfg.Themes.BasePath = trimmed
	}
	if trimmed := strings.TrimSpace(opts.StorageProvider); trimmed != "" {
		cfg.Storage.Provider = trimmed
	}
	if trimmed := strings.TrimSpace(opts.StorageDSN); trimmed != "" {
		cfg.Storage.DSN = trimmed
	}

	var collector *CommandCollector
	diOpts := []di.Option{}

	if opts.Logger != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.Logger))
	}
	if opts.DB != nil {
		diOpts = append(diOpts, di.WithBunDB(opts.DB))
	}
	if opts.ExportTarget != nil {
		diOpts = append(diOpts, di.WithExportTarget(opts.ExportTarget))
	}

	module, err := sitebuilder.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise sitebuilder module: %w", err)
	}

	if opts.EnableCommands {
		collector = &CommandCollector{
			handlers: make([]any, 0),
		}
		if _, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
			Registry:       collector,
			LoggerProvider: opts.Logger,
		}); err != nil {
			return nil, fmt.Errorf("register site commands: %w", err)
		}
	}

	return &Resources{
		Module:    module,
		Collector: collector,
	}, nil
}
