package render

import (
	"context"
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/navigation"
	"github.com/goliatone/go-sitebuilder/internal/resolver"
	"github.com/goliatone/go-sitebuilder/internal/templates"
	"github.com/goliatone/go-sitebuilder/internal/themes"
)

func (s *service) renderSinglePage(
	ctx context.Context,
	m *manifest.Manifest,
	theme *themes.Theme,
	page *resolver.SinglePage,
	links []navigation.Link,
	opts Options,
) (string, map[string]string, error) {
	layoutID := s.layoutOrDefault(page.Layout)
	if layoutID == "" {
		return "", nil, fmt.Errorf("render: page %q declares no layout", page.Path)
	}

	layout, _ := theme.Layout(layoutID)
	presets := s.resolvePresets(ctx, m.SiteID, layout, page.File, opts)

	data := s.baseContext(m, links, opts)
	data["page"] = s.pageEntry(page.File, page.Path, page.Title, opts)
	data["content"] = s.markdownHTML(page.File)
	data["images"] = presets

	body, err := s.deps.Store.Render(templates.LayoutTemplateName(layoutID), data)
	if err != nil {
		return "", nil, err
	}
	return body, presets, nil
}

func (s *service) renderCollection(
	ctx context.Context,
	m *manifest.Manifest,
	theme *themes.Theme,
	col *resolver.Collection,
	links []navigation.Link,
	opts Options,
) (string, map[string]string, error) {
	layoutID := s.layoutOrDefault(col.Layout)
	if layoutID == "" {
		return "", nil, fmt.Errorf("render: collection %q declares no layout", col.Path)
	}

	layout, _ := theme.Layout(layoutID)
	presets := s.resolvePresets(ctx, m.SiteID, layout, col.File, opts)

	items := make([]map[string]any, 0, len(col.Items))
	for _, item := range col.Items {
		items = append(items, s.itemEntry(ctx, m, theme, item, opts))
	}

	data := s.baseContext(m, links, opts)
	data["page"] = s.pageEntry(col.File, col.Path, col.Title, opts)
	data["content"] = s.markdownHTML(col.File)
	data["images"] = presets
	data["items"] = items
	data["collection"] = collectionEntry(col.Config)

	body, err := s.deps.Store.Render(templates.LayoutTemplateName(layoutID), data)
	if err != nil {
		return "", nil, err
	}
	return body, presets, nil
}

// baseContext carries the values every template sees regardless of the
// resolved content type.
func (s *service) baseContext(m *manifest.Manifest, links []navigation.Link, opts Options) map[string]any {
	return map[string]any{
		"site":    siteEntry(m),
		"theme":   themeEntry(m),
		"nav":     navEntries(links),
		"options": optionsEntry(opts),
	}
}

// navEntries converts links into the plain maps template expressions
// resolve against, matching the camelCase keys of the serialized form.
func navEntries(links []navigation.Link) []map[string]any {
	entries := make([]map[string]any, 0, len(links))
	for _, link := range links {
		entry := map[string]any{
			"href":     link.Href,
			"label":    link.Label,
			"isActive": link.IsActive,
		}
		if len(link.Children) > 0 {
			entry["children"] = navEntries(link.Children)
		}
		entries = append(entries, entry)
	}
	return entries
}

func siteEntry(m *manifest.Manifest) map[string]any {
	return map[string]any{
		"id":          m.SiteID,
		"title":       m.Title,
		"description": m.Description,
		"author":      m.Author,
		"baseUrl":     m.BaseURL,
	}
}

func themeEntry(m *manifest.Manifest) map[string]any {
	return map[string]any{
		"name":   m.Theme.Name,
		"config": m.Theme.Config,
	}
}

func optionsEntry(opts Options) map[string]any {
	return map[string]any{
		"siteRoot": opts.SiteRoot,
		"isExport": opts.IsExport,
	}
}

func (s *service) pageEntry(file *content.File, treePath, title string, opts Options) map[string]any {
	entry := frontmatterEntry(file)
	entry["title"] = title
	entry["path"] = treePath
	entry["href"] = navigation.Href(opts.SiteRoot, treePath)
	return entry
}

// itemEntry shapes one collection item for the listing template and for the
// renderItem helper, which re-renders the entry through its own layout.
func (s *service) itemEntry(
	ctx context.Context,
	m *manifest.Manifest,
	theme *themes.Theme,
	item resolver.Item,
	opts Options,
) map[string]any {
	entry := frontmatterEntry(item.File)
	entry["title"] = item.Title()
	entry["path"] = item.Path
	entry["href"] = navigation.Href(opts.SiteRoot, item.Path)
	entry["layout"] = item.Layout
	entry["content"] = s.markdownHTML(item.File)
	if layout, ok := theme.Layout(item.Layout); ok {
		entry["images"] = s.resolvePresets(ctx, m.SiteID, layout, item.File, opts)
	}
	return entry
}

// frontmatterEntry clones the file's frontmatter so computed keys never leak
// back into the content snapshot.
func frontmatterEntry(file *content.File) map[string]any {
	entry := map[string]any{}
	if file == nil {
		return entry
	}
	for key, value := range file.Frontmatter {
		entry[key] = value
	}
	return entry
}

func collectionEntry(cfg *content.CollectionConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"sortBy":   cfg.SortBy,
		"order":    cfg.Order,
		"pageSize": cfg.PageSize,
	}
}

func (s *service) markdownHTML(file *content.File) raymond.SafeString {
	if file == nil || len(file.Body) == 0 {
		return ""
	}
	rendered, err := s.deps.Markdown.Parse(file.Body)
	if err != nil {
		s.log.Warn("markdown render failed, body omitted", "path", file.Path, "error", err)
		return ""
	}
	return raymond.SafeString(rendered)
}

// resolvePresets maps the layout's declared image presets onto display URLs
// using the file's frontmatter. A failed preset is logged and omitted; one
// bad image never fails the page.
func (s *service) resolvePresets(
	ctx context.Context,
	siteID string,
	layout *themes.LayoutManifest,
	file *content.File,
	opts Options,
) map[string]string {
	resolved := map[string]string{}
	if layout == nil || file == nil || len(layout.ImagePresets) == 0 {
		return resolved
	}

	for name, preset := range layout.ImagePresets {
		value, ok := file.Field(preset.Source)
		if !ok {
			continue
		}
		ref, ok := images.ReferenceFromValue(value)
		if !ok {
			continue
		}
		path, err := s.deps.Images.Resolve(ctx, siteID, ref, preset.Transform())
		if err != nil {
			s.log.Warn("image preset failed, omitted from page",
				"preset", name,
				"source", ref.Src,
				"error", err,
			)
			continue
		}
		resolved[name] = opts.AssetHref(path)
	}
	return resolved
}
