package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	sitecmd "github.com/goliatone/go-sitebuilder/internal/commands/site"
	"github.com/goliatone/go-sitebuilder/internal/export"
	"github.com/goliatone/go-sitebuilder/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliSettings mirrors the keys accepted in sitebuilder.yaml and the
// SITEBUILDER_* environment variables.
type cliSettings struct {
	Site            string `mapstructure:"site"`
	OutputDir       string `mapstructure:"outputDir"`
	BaseURL         string `mapstructure:"baseURL"`
	ThemesDir       string `mapstructure:"themesDir"`
	StorageProvider string `mapstructure:"storageProvider"`
	StorageDSN      string `mapstructure:"storageDSN"`
	DatabaseDSN     string `mapstructure:"databaseDSN"`
}

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func newRootCommand() *cobra.Command {
	var cfgFile string
	var settings cliSettings

	root := &cobra.Command{
		Use:   "sitebuilder",
		Short: "Render manifest-driven sites and export static bundles",
		Long: `sitebuilder loads a site manifest and its content documents, renders
pages through the configured theme, and writes the result as a static
bundle ready for any host.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cfgFile, &settings)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sitebuilder.yaml)")

	root.AddCommand(newExportCommand(&settings))
	root.AddCommand(newRenderCommand(&settings))
	root.AddCommand(newDerivativesCommand(&settings))
	return root
}

func loadSettings(cfgFile string, out *cliSettings) error {
	v := viper.New()

	v.SetDefault("site", "default")
	v.SetDefault("outputDir", "dist")
	v.SetDefault("baseURL", "")
	v.SetDefault("themesDir", "themes")
	v.SetDefault("storageProvider", "")
	v.SetDefault("storageDSN", "")
	v.SetDefault("databaseDSN", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("sitebuilder")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SITEBUILDER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if cfgFile != "" {
				return fmt.Errorf("read config file %s: %w", cfgFile, err)
			}
			return fmt.Errorf("read config file: %w", err)
		}
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	return nil
}

func newExportCommand(settings *cliSettings) *cobra.Command {
	var routes []string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render every route and write the static bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(*settings, routes, dryRun)
		},
	}
	cmd.Flags().StringSliceVar(&routes, "route", nil, "restrict the export to specific routes (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be exported without writing artifacts")
	return cmd
}

func runExport(settings cliSettings, routes []string, dryRun bool) error {
	resources, err := moduleBuilder(optionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer resources.close()
	handler := resources.handlers.export
	if handler == nil {
		return errors.New("export handler not configured")
	}

	var result *export.Result
	msg := sitecmd.ExportSiteCommand{
		SiteID: settings.Site,
		Routes: routes,
		DryRun: dryRun,
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			if env.Export != nil {
				result = env.Export
			}
		},
	}
	if err := handler.Execute(context.Background(), msg); err != nil {
		return err
	}
	if result != nil {
		log.Printf("module=site operation=export summary pages_built=%d pages_skipped=%d assets=%d duration=%s",
			result.PagesBuilt, result.PagesSkipped, result.AssetsBuilt, result.Duration)
	}
	return nil
}

func newRenderCommand(settings *cliSettings) *cobra.Command {
	var path string
	var siteRoot string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a single path and report the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(*settings, path, siteRoot)
		},
	}
	cmd.Flags().StringVar(&path, "path", "/", "site path to render")
	cmd.Flags().StringVar(&siteRoot, "site-root", "", "path prefix prepended to generated links")
	return cmd
}

func runRender(settings cliSettings, path, siteRoot string) error {
	resources, err := moduleBuilder(optionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer resources.close()
	handler := resources.handlers.render
	if handler == nil {
		return errors.New("render handler not configured")
	}

	var page *render.Page
	msg := sitecmd.RenderPageCommand{
		SiteID:   settings.Site,
		Path:     path,
		SiteRoot: siteRoot,
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			if env.Page != nil {
				page = env.Page
			}
		},
	}
	if err := handler.Execute(context.Background(), msg); err != nil {
		return err
	}
	if page != nil {
		log.Printf("module=site operation=render path=%s title=%q bytes=%d not_found=%t duration=%s",
			page.Path, page.Title, len(page.HTML), page.NotFound, page.Duration)
	}
	return nil
}

func newDerivativesCommand(settings *cliSettings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derivatives",
		Short: "Manage generated image derivatives",
	}
	cmd.AddCommand(newDerivativesClearCommand(settings))
	return cmd
}

func newDerivativesClearCommand(settings *cliSettings) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached derivative for the site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClearDerivatives(*settings)
		},
	}
}

func runClearDerivatives(settings cliSettings) error {
	resources, err := moduleBuilder(optionsFromSettings(settings))
	if err != nil {
		return err
	}
	defer resources.close()
	handler := resources.handlers.derivatives
	if handler == nil {
		return errors.New("derivatives handler not configured")
	}

	removed := -1
	msg := sitecmd.ClearDerivativesCommand{
		SiteID: settings.Site,
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			if env.Metadata == nil {
				return
			}
			if n, ok := env.Metadata["derivatives_removed"].(int); ok {
				removed = n
			}
		},
	}
	if err := handler.Execute(context.Background(), msg); err != nil {
		return err
	}
	log.Printf("module=site operation=derivatives_clear removed=%d", removed)
	return nil
}
