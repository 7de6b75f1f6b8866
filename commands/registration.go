// Package commands exposes the site builder's command handlers to host
// applications: registries, dispatchers, and cron schedulers all receive the
// same handler set built from a configured container.
package commands

import (
	"errors"

	command "github.com/goliatone/go-command"
	internalcmd "github.com/goliatone/go-sitebuilder/internal/commands"
	sitecmd "github.com/goliatone/go-sitebuilder/internal/commands/site"
	"github.com/goliatone/go-sitebuilder/internal/di"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterContainerCommands builds the command handlers exposed by the provided
// container and optionally registers them with registry/dispatcher/cron
// integrations. The command layer must be enabled in the container's config;
// otherwise no handlers exist and an error describes what to switch on.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok && reg != nil {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}

		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return internalcmd.CommandLogger(provider, module)
	}

	if cfg.Commands.Enabled {
		gates := sitecmd.FeatureGates{
			ExportEnabled: func() bool { return cfg.Features.Export || cfg.Export.Enabled },
			ImagesEnabled: func() bool { return cfg.Features.Images },
		}
		manifests := container.ManifestService()
		contents := container.ContentService()
		siteLogger := loggerFor("site")

		// Export commands.
		if exporter := container.ExportService(); exporter != nil && gates.ExportEnabled() {
			exportOpts := []internalcmd.HandlerOption[sitecmd.ExportSiteCommand]{}
			if cfg.Export.RenderTimeout > 0 {
				exportOpts = append(exportOpts, internalcmd.WithTimeout[sitecmd.ExportSiteCommand](cfg.Export.RenderTimeout))
			}
			register(sitecmd.NewExportSiteHandler(manifests, contents, exporter, siteLogger, gates, exportOpts...))
		}

		// Preview render commands.
		if renderer := container.RenderService(); renderer != nil {
			renderOpts := []internalcmd.HandlerOption[sitecmd.RenderPageCommand]{}
			if cfg.Export.RenderTimeout > 0 {
				renderOpts = append(renderOpts, internalcmd.WithTimeout[sitecmd.RenderPageCommand](cfg.Export.RenderTimeout))
			}
			register(sitecmd.NewRenderPageHandler(renderer, manifests, contents, siteLogger, renderOpts...))
		}

		// Derivative cache commands.
		if pipeline := container.ImageService(); pipeline != nil && gates.ImagesEnabled() {
			register(sitecmd.NewClearDerivativesHandler(pipeline, loggerFor("images"), gates))
		}
	}

	if errs != nil && len(result.Handlers) == 0 {
		return result, errs
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; enable the command layer and the features the handlers serve")
	}

	return result, errs
}
