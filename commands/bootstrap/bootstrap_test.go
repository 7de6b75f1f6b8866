package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sitebuilder "github.com/goliatone/go-sitebuilder"
	"github.com/goliatone/go-sitebuilder/commands/bootstrap"
	sitecmd "github.com/goliatone/go-sitebuilder/internal/commands/site"
	"github.com/goliatone/go-sitebuilder/manifest"
)

func writeThemeFixture(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"aurora/theme.json": `{
			"name": "aurora",
			"layouts": ["landing"],
			"files": [{"type": "base", "path": "base.hbs"}]
		}`,
		"aurora/base.hbs": `<!DOCTYPE html><html><head><title>{{meta.title}}</title></head>` +
			`<body>{{{body}}}</body></html>`,
		"aurora/layouts/landing/layout.json": `{
			"name": "Landing",
			"type": "page",
			"files": [{"type": "template", "path": "landing.hbs"}]
		}`,
		"aurora/layouts/landing/landing.hbs": `<main><h1>{{page.title}}</h1>{{{content}}}</main>`,
	}
	for rel, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir theme fixture: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write theme fixture: %v", err)
		}
	}
}

func seedSite(t *testing.T, module *sitebuilder.Module) {
	t.Helper()

	ctx := context.Background()
	tree := manifest.NewTree()
	node := manifest.Node{Path: "index", Title: "Home", Kind: manifest.NodeKindPage, Layout: "landing"}
	if err := tree.Insert("", node); err != nil {
		t.Fatalf("insert index node: %v", err)
	}
	site := &manifest.Manifest{
		SiteID:  "site-demo",
		Title:   "Demo Studio",
		BaseURL: "https://demo.example.com",
		Theme:   manifest.ThemeSelection{Name: "aurora"},
		Tree:    tree,
	}
	if err := module.Manifests().Save(ctx, site); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	doc := "---\ntitle: Home\n---\nWelcome to the studio.\n"
	if err := module.Blobs().PutBlob(ctx, "site-demo", "content/index.md", []byte(doc)); err != nil {
		t.Fatalf("seed content: %v", err)
	}
}

func TestBuildModuleExportsThroughCollectedHandler(t *testing.T) {
	themesDir := t.TempDir()
	writeThemeFixture(t, themesDir)
	outputDir := t.TempDir()

	resources, err := bootstrap.BuildModule(bootstrap.Options{
		SiteID:         "site-demo",
		OutputDir:      outputDir,
		BaseURL:        "https://demo.example.com",
		ThemesDir:      themesDir,
		EnableCommands: true,
	})
	if err != nil {
		t.Fatalf("BuildModule returned error: %v", err)
	}
	if resources.Module == nil {
		t.Fatal("expected module runtime")
	}
	if resources.Collector == nil {
		t.Fatal("expected command collector")
	}
	handlers := resources.Collector.Handlers()
	if len(handlers) != 3 {
		t.Fatalf("expected export, render and derivative handlers, got %d", len(handlers))
	}

	seedSite(t, resources.Module)

	var exporter *sitecmd.ExportSiteHandler
	for _, handler := range handlers {
		if h, ok := handler.(*sitecmd.ExportSiteHandler); ok {
			exporter = h
		}
	}
	if exporter == nil {
		t.Fatal("expected export handler among collected handlers")
	}

	pagesBuilt := -1
	msg := sitecmd.ExportSiteCommand{
		SiteID: "site-demo",
		ResultCallback: func(env sitecmd.ResultEnvelope) {
			if env.Export != nil {
				pagesBuilt = env.Export.PagesBuilt
			}
		},
	}
	if err := exporter.Execute(context.Background(), msg); err != nil {
		t.Fatalf("export command failed: %v", err)
	}
	if pagesBuilt != 1 {
		t.Fatalf("expected one exported page, got %d", pagesBuilt)
	}

	html, err := os.ReadFile(filepath.Join(outputDir, "index.html"))
	if err != nil {
		t.Fatalf("read exported page: %v", err)
	}
	if !strings.Contains(string(html), "Welcome to the studio") {
		t.Fatalf("exported page missing rendered body:\n%s", html)
	}
}

func TestBuildModuleWithoutCommands(t *testing.T) {
	themesDir := t.TempDir()
	writeThemeFixture(t, themesDir)

	resources, err := bootstrap.BuildModule(bootstrap.Options{
		OutputDir: t.TempDir(),
		ThemesDir: themesDir,
	})
	if err != nil {
		t.Fatalf("BuildModule returned error: %v", err)
	}
	if resources.Collector != nil {
		t.Fatal("expected no collector when commands are disabled")
	}
	if resources.Module.Exporter() == nil {
		t.Fatal("expected export service to be configured")
	}
}
