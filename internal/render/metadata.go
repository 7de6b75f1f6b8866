package render

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/aymerick/raymond"

	"github.com/goliatone/go-sitebuilder/internal/images"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/navigation"
	"github.com/goliatone/go-sitebuilder/internal/resolver"
	"github.com/goliatone/go-sitebuilder/internal/templates"
)

// ogImagePriority orders the preset names considered for the Open Graph
// image, most specific first.
var ogImagePriority = []string{"og:image", "ogImage", "og", "social", "share", "hero", "banner"}

const defaultCSSPrefix = "sb"

func (s *service) renderShell(
	ctx context.Context,
	m *manifest.Manifest,
	treePath, title, body string,
	pageImages map[string]string,
	links []navigation.Link,
	opts Options,
) (string, error) {
	data := s.baseContext(m, links, opts)
	data["meta"] = s.metadata(ctx, m, treePath, title, pageImages, opts)
	data["body"] = raymond.SafeString(body)
	return s.deps.Store.Render(templates.BaseTemplateName, data)
}

// metadata computes the document head values: title, canonical URL, site
// chrome images, the Open Graph image, and the inline style block derived
// from design tokens and the merged theme config.
func (s *service) metadata(
	ctx context.Context,
	m *manifest.Manifest,
	treePath, title string,
	pageImages map[string]string,
	opts Options,
) map[string]any {
	meta := map[string]any{
		"title":       headTitle(title, m.Title),
		"description": m.Description,
	}
	if canonical := canonicalURL(m.BaseURL, treePath); canonical != "" {
		meta["canonicalUrl"] = canonical
	}
	if url, ok := s.chromeImage(ctx, m, m.Logo, "logo", opts); ok {
		meta["logoUrl"] = url
	}
	if url, ok := s.chromeImage(ctx, m, m.Favicon, "favicon", opts); ok {
		meta["faviconUrl"] = url
	}
	if og := ogImage(pageImages); og != "" {
		meta["ogImage"] = og
	}
	if css := s.inlineCSS(ctx, m); css != "" {
		meta["style"] = raymond.SafeString(css)
	}
	return meta
}

// chromeImage resolves the manifest-level logo and favicon references
// through the pipeline without a transform, serving the original bytes.
func (s *service) chromeImage(
	ctx context.Context,
	m *manifest.Manifest,
	ref *images.Reference,
	kind string,
	opts Options,
) (string, bool) {
	if ref == nil || ref.IsZero() {
		return "", false
	}
	path, err := s.deps.Images.Resolve(ctx, m.SiteID, *ref, images.Transform{})
	if err != nil {
		s.log.Warn("site image failed, omitted from head", "image", kind, "source", ref.Src, "error", err)
		return "", false
	}
	return opts.AssetHref(path), true
}

func headTitle(pageTitle, siteTitle string) string {
	pageTitle = strings.TrimSpace(pageTitle)
	siteTitle = strings.TrimSpace(siteTitle)
	switch {
	case pageTitle == "":
		return siteTitle
	case siteTitle == "" || pageTitle == siteTitle:
		return pageTitle
	default:
		return pageTitle + " | " + siteTitle
	}
}

func canonicalURL(baseURL, treePath string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return ""
	}
	if treePath == resolver.IndexPath {
		return base + "/"
	}
	return base + "/" + treePath
}

func ogImage(pageImages map[string]string) string {
	for _, name := range ogImagePriority {
		if url, ok := pageImages[name]; ok && url != "" {
			return url
		}
	}
	return ""
}

// inlineCSS derives a :root custom property block from the theme's design
// tokens and the merged appearance config. Config values win over token
// values of the same name, and properties are emitted sorted so repeated
// renders produce byte-identical documents.
func (s *service) inlineCSS(ctx context.Context, m *manifest.Manifest) string {
	prefix := s.cssPrefix()
	vars := map[string]string{}

	selection, err := s.deps.Themes.Selection(ctx, m.Theme.Name, s.cfg.DefaultVariant)
	if err != nil {
		s.log.Warn("design token selection failed, config variables only", "theme", m.Theme.Name, "error", err)
	} else if selection != nil {
		for token, value := range selection.Tokens() {
			vars["--"+prefix+"-"+kebabCase(token)] = value
		}
	}

	flattenConfigVars(vars, prefix, "", m.Theme.Config)
	if len(vars) == 0 {
		return ""
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("<style>:root{")
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(vars[name])
		b.WriteByte(';')
	}
	b.WriteString("}</style>")
	return b.String()
}

func (s *service) cssPrefix() string {
	if prefix := strings.TrimSpace(s.cfg.CSSVariablePrefix); prefix != "" {
		return prefix
	}
	return defaultCSSPrefix
}

// flattenConfigVars emits one custom property per scalar config leaf,
// joining nested object keys with dashes. Arrays have no CSS shape and are
// skipped.
func flattenConfigVars(out map[string]string, prefix, parent string, config map[string]any) {
	for key, value := range config {
		name := kebabCase(key)
		if parent != "" {
			name = parent + "-" + name
		}
		switch typed := value.(type) {
		case map[string]any:
			flattenConfigVars(out, prefix, name, typed)
		case string:
			if strings.TrimSpace(typed) != "" {
				out["--"+prefix+"-"+name] = typed
			}
		case bool:
			out["--"+prefix+"-"+name] = strconv.FormatBool(typed)
		case int:
			out["--"+prefix+"-"+name] = strconv.Itoa(typed)
		case int64:
			out["--"+prefix+"-"+name] = strconv.FormatInt(typed, 10)
		case float64:
			out["--"+prefix+"-"+name] = strconv.FormatFloat(typed, 'f', -1, 64)
		}
	}
}

func kebabCase(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '_' || r == ' ' || r == '.' || r == ':':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
