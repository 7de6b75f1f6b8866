package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-sitebuilder/internal/blob"
	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/markdown"
	"github.com/goliatone/go-sitebuilder/internal/navigation"
	"github.com/goliatone/go-sitebuilder/internal/schema"
	"github.com/goliatone/go-sitebuilder/internal/templates"
	"github.com/goliatone/go-sitebuilder/internal/themes"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

func themeFixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"aurora/theme.json": &fstest.MapFile{Data: []byte(`{
			"name": "aurora",
			"layouts": ["landing", "listing", "post-card"],
			"files": [
				{"type": "base", "path": "base.hbs"},
				{"type": "partial", "path": "partials/header.hbs"}
			],
			"appearanceSchema": {
				"type": "object",
				"properties": {
					"accentColor": {"type": "string", "default": "#ff6600"},
					"fontScale": {"type": "number", "default": 1.25}
				}
			}
		}`)},
		"aurora/base.hbs": &fstest.MapFile{
			Data: []byte(`<!DOCTYPE html><html><head><title>{{meta.title}}</title>` +
				`<meta name="description" content="{{meta.description}}">` +
				`{{#if meta.canonicalUrl}}<link rel="canonical" href="{{meta.canonicalUrl}}">{{/if}}` +
				`{{#if meta.faviconUrl}}<link rel="icon" href="{{meta.faviconUrl}}">{{/if}}` +
				`{{#if meta.ogImage}}<meta property="og:image" content="{{meta.ogImage}}">{{/if}}` +
				`{{meta.style}}</head><body>{{> header}}` +
				`<nav>{{#each nav}}<a href="{{href}}">{{label}}</a>{{/each}}</nav>` +
				`{{{body}}}</body></html>`),
		},
		"aurora/partials/header.hbs": &fstest.MapFile{
			Data: []byte("<header>{{site.title}}</header>"),
		},
		"aurora/layouts/landing/layout.json": &fstest.MapFile{Data: []byte(`{
			"name": "Landing",
			"type": "page",
			"files": [{"type": "template", "path": "landing.hbs"}],
			"image_presets": {
				"hero": {"source": "cover", "width": 40, "height": 20, "crop": "fill"}
			}
		}`)},
		"aurora/layouts/landing/landing.hbs": &fstest.MapFile{
			Data: []byte(`<main><h1>{{page.title}}</h1>{{#if images.hero}}<img src="{{images.hero}}">{{/if}}{{{content}}}</main>`),
		},
		"aurora/layouts/listing/layout.json": &fstest.MapFile{Data: []byte(`{
			"name": "Listing",
			"type": "collection",
			"files": [{"type": "template", "path": "listing.hbs"}]
		}`)},
		"aurora/layouts/listing/listing.hbs": &fstest.MapFile{
			Data: []byte(`<section><h1>{{page.title}}</h1>{{{content}}}{{#each items}}{{renderItem this}}{{/each}}</section>`),
		},
		"aurora/layouts/post-card/layout.json": &fstest.MapFile{Data: []byte(`{
			"name": "Post Card",
			"type": "page",
			"files": [{"type": "template", "path": "post-card.hbs"}]
		}`)},
		"aurora/layouts/post-card/post-card.hbs": &fstest.MapFile{
			Data: []byte(`<article><a href="{{href}}">{{title}}</a></article>`),
		},
	}
}

func addDoc(t *testing.T, set *content.Set, treePath, doc string) {
	t.Helper()

	file, err := content.ParseFile("content/"+treePath+".md", []byte(doc))
	if err != nil {
		t.Fatalf("parse %s: %v", treePath, err)
	}
	if err := set.Add(file); err != nil {
		t.Fatalf("add %s: %v", treePath, err)
	}
}

const blogListing = `---
title: Blog
collection:
  sortBy: date
  order: desc
  itemLayout: post-card
---
All posts.
`

func siteFixture(t *testing.T) (*manifest.Manifest, *content.Set) {
	t.Helper()

	set := content.NewSet("content", ".md")
	addDoc(t, set, "index", "---\ntitle: Home\ncover: media/cover.png\n---\nWelcome to the studio.\n")
	addDoc(t, set, "blog", blogListing)
	addDoc(t, set, "blog/first", "---\ntitle: First Post\ndate: 2024-01-10\n---\nOne.\n")
	addDoc(t, set, "blog/second", "---\ntitle: Second Post\ndate: 2024-03-05\n---\nTwo.\n")

	tree := manifest.NewTree()
	nodes := []manifest.Node{
		{Path: "index", Title: "Home", Kind: manifest.NodeKindPage, Layout: "landing"},
		{Path: "blog", Title: "Blog", Kind: manifest.NodeKindCollection, Layout: "listing", ItemLayout: "post-card"},
	}
	for _, node := range nodes {
		if err := tree.Insert("", node); err != nil {
			t.Fatalf("insert %s: %v", node.Path, err)
		}
	}

	site := &manifest.Manifest{
		SiteID:      "site-demo",
		Title:       "Demo Studio",
		Description: "A tiny portfolio.",
		BaseURL:     "https://demo.example.com",
		Favicon:     &images.Reference{Src: "media/favicon.svg"},
		Theme:       manifest.ThemeSelection{Name: "aurora", Config: map[string]any{"accentColor": "#112233"}},
		Tree:        tree,
	}
	return site, set
}

func newRenderer(t *testing.T, cfg Config, blobs *blob.MemoryStore) (Service, *templates.Store) {
	t.Helper()

	themeSvc := themes.NewService(themeFixtureFS())
	store := templates.NewStore()
	svc := NewService(cfg, Dependencies{
		Merger:     schema.NewMerger(themeSvc),
		Store:      store,
		Warmer:     templates.NewWarmer(store, themeSvc),
		Themes:     themeSvc,
		Images:     images.NewService(blobs, images.NewMemoryDerivativeStore()),
		Navigation: navigation.NewBuilder(),
		Markdown:   markdown.NewGoldmarkParser(interfaces.ParseOptions{}),
	})
	return svc, store
}

func seedCover(t *testing.T, blobs *blob.MemoryStore) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 96, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode cover: %v", err)
	}
	if err := blobs.PutBlob(context.Background(), "site-demo", "media/cover.png", buf.Bytes()); err != nil {
		t.Fatalf("seed cover: %v", err)
	}
}

func TestRenderSinglePageDocument(t *testing.T) {
	site, files := siteFixture(t)
	blobs := blob.NewMemoryStore()
	seedCover(t, blobs)
	svc, _ := newRenderer(t, Config{}, blobs)

	page, err := svc.RenderPath(context.Background(), site, files, "/", Options{SiteRoot: "/preview/demo"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Err != nil {
		t.Fatalf("expected clean render, got %v", page.Err)
	}
	if page.NotFound {
		t.Fatal("index should resolve")
	}
	if page.Path != "index" || page.Title != "Home" {
		t.Fatalf("unexpected page identity %q %q", page.Path, page.Title)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Home | Demo Studio</title>",
		`<meta name="description" content="A tiny portfolio.">`,
		`<link rel="canonical" href="https://demo.example.com/">`,
		`<link rel="icon" href="/preview/demo/assets/media/favicon.svg">`,
		"<header>Demo Studio</header>",
		`<a href="/preview/demo">Home</a>`,
		`<a href="/preview/demo/blog">Blog</a>`,
		"<h1>Home</h1>",
		"<p>Welcome to the studio.</p>",
		`<img src="/preview/demo/assets/derivatives/cover-40x20-`,
		`<meta property="og:image" content="/preview/demo/assets/derivatives/cover-40x20-`,
		"<style>:root{--sb-accent-color:#112233;--sb-font-scale:1.25;}</style>",
	} {
		if !strings.Contains(page.HTML, want) {
			t.Fatalf("document missing %q:\n%s", want, page.HTML)
		}
	}
}

func TestRenderCollectionListing(t *testing.T) {
	site, files := siteFixture(t)
	svc, _ := newRenderer(t, Config{}, blob.NewMemoryStore())

	page, err := svc.RenderPath(context.Background(), site, files, "blog", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Err != nil {
		t.Fatalf("expected clean render, got %v", page.Err)
	}
	if page.Title != "Blog" || page.Path != "blog" {
		t.Fatalf("unexpected page identity %q %q", page.Path, page.Title)
	}

	for _, want := range []string{
		"<h1>Blog</h1>",
		"<p>All posts.</p>",
		`<link rel="canonical" href="https://demo.example.com/blog">`,
		`<article><a href="/blog/second">Second Post</a></article>`,
		`<article><a href="/blog/first">First Post</a></article>`,
	} {
		if !strings.Contains(page.HTML, want) {
			t.Fatalf("document missing %q:\n%s", want, page.HTML)
		}
	}
	if strings.Index(page.HTML, "Second Post") > strings.Index(page.HTML, "First Post") {
		t.Fatal("expected newest item first")
	}
}

func TestRenderPathNotFound(t *testing.T) {
	site, files := siteFixture(t)
	svc, _ := newRenderer(t, Config{}, blob.NewMemoryStore())

	page, err := svc.RenderPath(context.Background(), site, files, "missing/page", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !page.NotFound {
		t.Fatal("expected a miss")
	}
	if page.Err != nil {
		t.Fatalf("a miss is not a render failure: %v", page.Err)
	}
	if page.Title != "Not Found" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if !strings.Contains(page.HTML, "Page not found") || !strings.Contains(page.HTML, "missing/page") {
		t.Fatalf("unexpected miss document:\n%s", page.HTML)
	}
	if strings.Contains(page.HTML, "<nav>") {
		t.Fatal("miss document must not invoke the theme")
	}
}

func TestRenderMissingLayoutServesErrorDocument(t *testing.T) {
	site, files := siteFixture(t)
	addDoc(t, files, "about", "---\ntitle: About\n---\nHi.\n")
	svc, _ := newRenderer(t, Config{}, blob.NewMemoryStore())

	page, err := svc.RenderPath(context.Background(), site, files, "about", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Err == nil {
		t.Fatal("expected a page error for a layout-less page")
	}
	if page.NotFound {
		t.Fatal("error document is not a miss")
	}
	if !strings.Contains(page.HTML, "Unable to render this page") {
		t.Fatalf("expected error document:\n%s", page.HTML)
	}
}

func TestRenderDefaultLayoutFallback(t *testing.T) {
	site, files := siteFixture(t)
	addDoc(t, files, "about", "---\ntitle: About\n---\nHi.\n")
	svc, _ := newRenderer(t, Config{DefaultLayout: "landing"}, blob.NewMemoryStore())

	page, err := svc.RenderPath(context.Background(), site, files, "about", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Err != nil {
		t.Fatalf("expected clean render, got %v", page.Err)
	}
	if !strings.Contains(page.HTML, "<h1>About</h1>") || !strings.Contains(page.HTML, "<p>Hi.</p>") {
		t.Fatalf("default layout not applied:\n%s", page.HTML)
	}
}

func TestRenderUnknownThemeServesErrorDocument(t *testing.T) {
	site, files := siteFixture(t)
	site.Theme.Name = "nocturne"
	svc, _ := newRenderer(t, Config{}, blob.NewMemoryStore())

	page, err := svc.RenderPath(context.Background(), site, files, "/", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var notFound *themes.NotFoundError
	if !errors.As(page.Err, &notFound) {
		t.Fatalf("expected theme not-found, got %v", page.Err)
	}
	if !strings.Contains(page.HTML, "Unable to render this page") {
		t.Fatalf("expected error document:\n%s", page.HTML)
	}
}

func TestRenderSchemaDefaultsWithoutSavedConfig(t *testing.T) {
	site, files := siteFixture(t)
	site.Theme.Config = nil
	svc, _ := newRenderer(t, Config{}, blob.NewMemoryStore())

	page, err := svc.RenderPath(context.Background(), site, files, "/", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Err != nil {
		t.Fatalf("expected clean render, got %v", page.Err)
	}
	if !strings.Contains(page.HTML, "--sb-accent-color:#ff6600;") || !strings.Contains(page.HTML, "--sb-font-scale:1.25;") {
		t.Fatalf("schema defaults missing from style block:\n%s", page.HTML)
	}
}

func TestRenderOmitsFailedImagePreset(t *testing.T) {
	site, files := siteFixture(t)
	svc, _ := newRenderer(t, Config{}, blob.NewMemoryStore())

	page, err := svc.RenderPath(context.Background(), site, files, "/", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Err != nil {
		t.Fatalf("a broken preset must not fail the page: %v", page.Err)
	}
	if strings.Contains(page.HTML, "<img") || strings.Contains(page.HTML, "og:image") {
		t.Fatalf("expected image-free document:\n%s", page.HTML)
	}
}

func TestRenderExportAssetPaths(t *testing.T) {
	site, files := siteFixture(t)
	blobs := blob.NewMemoryStore()
	seedCover(t, blobs)
	svc, _ := newRenderer(t, Config{}, blobs)

	page, err := svc.RenderPath(context.Background(), site, files, "/", Options{IsExport: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if page.Err != nil {
		t.Fatalf("expected clean render, got %v", page.Err)
	}
	if !strings.Contains(page.HTML, `<img src="assets/derivatives/cover-40x20-`) {
		t.Fatalf("expected export-relative image path:\n%s", page.HTML)
	}
	if !strings.Contains(page.HTML, `<link rel="icon" href="assets/media/favicon.svg">`) {
		t.Fatalf("expected export-relative favicon path:\n%s", page.HTML)
	}
	if !strings.Contains(page.HTML, `<a href="/">Home</a>`) {
		t.Fatalf("expected root-relative nav links:\n%s", page.HTML)
	}
}

func TestRenderWarmsOncePerTheme(t *testing.T) {
	site, files := siteFixture(t)
	svc, store := newRenderer(t, Config{}, blob.NewMemoryStore())
	ctx := context.Background()

	page, err := svc.RenderPath(ctx, site, files, "/", Options{})
	if err != nil || page.Err != nil {
		t.Fatalf("first render: %v %v", err, page.Err)
	}

	// Clearing the store directly leaves the renderer's warm marker in
	// place, so the next render must hit a template miss instead of
	// silently re-warming.
	store.Clear()
	page, err = svc.RenderPath(ctx, site, files, "/", Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var tplErr *templates.TemplateError
	if !errors.As(page.Err, &tplErr) {
		t.Fatalf("expected template miss, got %v", page.Err)
	}

	svc.InvalidateTemplates()
	page, err = svc.RenderPath(ctx, site, files, "/", Options{})
	if err != nil {
		t.Fatalf("render after invalidate: %v", err)
	}
	if page.Err != nil {
		t.Fatalf("expected invalidation to force a rewarm, got %v", page.Err)
	}
}

func TestRenderNilArguments(t *testing.T) {
	site, files := siteFixture(t)
	svc, _ := newRenderer(t, Config{}, blob.NewMemoryStore())

	if _, err := svc.RenderPath(context.Background(), nil, files, "index", Options{}); !errors.Is(err, ErrSiteRequired) {
		t.Fatalf("expected ErrSiteRequired, got %v", err)
	}
	if _, err := svc.Render(context.Background(), site, files, nil, Options{}); !errors.Is(err, ErrResolutionRequired) {
		t.Fatalf("expected ErrResolutionRequired, got %v", err)
	}
}

func TestOptionsAssetHref(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		blob string
		want string
	}{
		{"preview", Options{SiteRoot: "/preview/demo"}, "media/a.png", "/preview/demo/assets/media/a.png"},
		{"preview at root", Options{SiteRoot: "/"}, "media/a.png", "/assets/media/a.png"},
		{"export", Options{IsExport: true}, "/media/a.png", "assets/media/a.png"},
		{"override wins", Options{IsExport: true, RelativeAssetPath: "../assets"}, "media/a.png", "../assets/media/a.png"},
		{"bare", Options{}, "derivatives/x.jpg", "/assets/derivatives/x.jpg"},
	}
	for _, tc := range cases {
		if got := tc.opts.AssetHref(tc.blob); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
