package main

import (
	"context"
	"fmt"
	"strings"

	sitebuilder "github.com/goliatone/go-sitebuilder"
	"github.com/goliatone/go-sitebuilder/commands/bootstrap"
	"github.com/goliatone/go-sitebuilder/internal/blob"
	sitecmd "github.com/goliatone/go-sitebuilder/internal/commands/site"
	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/pkg/storage"
	"github.com/uptrace/bun"
)

// moduleOptions carries the CLI settings needed to assemble the runtime.
type moduleOptions struct {
	siteID          string
	outputDir       string
	baseURL         string
	themesDir       string
	storageProvider string
	storageDSN      string
	databaseDSN     string
}

type exportHandler interface {
	Execute(ctx context.Context, msg sitecmd.ExportSiteCommand) error
}

type renderHandler interface {
	Execute(ctx context.Context, msg sitecmd.RenderPageCommand) error
}

type derivativesHandler interface {
	Execute(ctx context.Context, msg sitecmd.ClearDerivativesCommand) error
}

// handlerSet groups the command handlers the CLI drives.
type handlerSet struct {
	export      exportHandler
	render      renderHandler
	derivatives derivativesHandler
}

// moduleResources bundles the runtime pieces a subcommand needs.
type moduleResources struct {
	handlers handlerSet
	cleanup  func()
}

func (r *moduleResources) close() {
	if r.cleanup != nil {
		r.cleanup()
	}
}

// moduleBuilder assembles the runtime; tests swap it to avoid real wiring.
var moduleBuilder = buildModuleResources

func optionsFromSettings(settings cliSettings) moduleOptions {
	return moduleOptions{
		siteID:          settings.Site,
		outputDir:       settings.OutputDir,
		baseURL:         settings.BaseURL,
		themesDir:       settings.ThemesDir,
		storageProvider: settings.StorageProvider,
		storageDSN:      settings.StorageDSN,
		databaseDSN:     settings.DatabaseDSN,
	}
}

func buildModuleResources(opts moduleOptions) (*moduleResources, error) {
	var db *bun.DB
	if strings.TrimSpace(opts.databaseDSN) != "" {
		handle, err := storage.OpenDatabase(opts.databaseDSN)
		if err != nil {
			return nil, err
		}
		db = handle
	}

	resources, err := bootstrap.BuildModule(bootstrap.Options{
		SiteID:          opts.siteID,
		OutputDir:       opts.outputDir,
		BaseURL:         opts.baseURL,
		ThemesDir:       opts.themesDir,
		StorageProvider: opts.storageProvider,
		StorageDSN:      opts.storageDSN,
		DB:              db,
		EnableCommands:  true,
	})
	if err != nil {
		return nil, err
	}

	if db != nil {
		if err := initBunStores(context.Background(), resources.Module); err != nil {
			return nil, err
		}
	}

	set := handlerSet{}
	for _, handler := range resources.Collector.Handlers() {
		switch h := handler.(type) {
		case *sitecmd.ExportSiteHandler:
			set.export = h
		case *sitecmd.RenderPageHandler:
			set.render = h
		case *sitecmd.ClearDerivativesHandler:
			set.derivatives = h
		}
	}

	out := &moduleResources{handlers: set}
	if db != nil {
		out.cleanup = func() { db.Close() }
	}
	return out, nil
}

// initBunStores creates the backing tables for database-backed stores so a
// fresh DSN works on first run.
func initBunStores(ctx context.Context, module *sitebuilder.Module) error {
	if store, ok := module.Blobs().(*blob.BunStore); ok {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("initialise blob tables: %w", err)
		}
	}
	if store, ok := module.Container().DerivativeStore().(*images.BunDerivativeStore); ok {
		if err := store.Init(ctx); err != nil {
			return fmt.Errorf("initialise derivative tables: %w", err)
		}
	}
	return nil
}
