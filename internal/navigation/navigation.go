// Package navigation turns the structure tree into ordered link lists for
// theme menus. Hrefs are computed against a site-root prefix so the same
// tree serves live preview and static export.
package navigation

import (
	"sort"
	"strings"

	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/resolver"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Link is one navigation entry. Children mirror the structure tree's
// nesting for dropdown-style menus.
type Link struct {
	Href     string `json:"href"`
	Label    string `json:"label"`
	IsActive bool   `json:"isActive"`
	Children []Link `json:"children,omitempty"`
}

// Options shape one Build call.
type Options struct {
	// SiteRoot prefixes every href: "" or "/" for export, something like
	// "/preview/demo" for the live preview surface.
	SiteRoot string
	// CurrentPath marks the matching link active. Normalized the same way
	// the resolver normalizes request paths.
	CurrentPath string
	// MaxDepth caps nesting; 1 keeps only top-level links, 0 is unlimited.
	MaxDepth int
	// IncludeHidden keeps nodes flagged hidden, for authoring surfaces.
	IncludeHidden bool
	// DefaultHrefs bypasses the installed resolver and joins paths under
	// SiteRoot. Export bundles link root-relative regardless of resolver.
	DefaultHrefs bool
}

// URLResolver overrides href computation for a node. Returning false falls
// back to the default root-relative path join.
type URLResolver interface {
	Resolve(node manifest.Node) (string, bool)
}

// Builder assembles navigation from a tree and a content snapshot.
type Builder struct {
	resolver URLResolver
	log      interfaces.Logger
}

type BuilderOption func(*Builder)

// WithURLResolver installs an href resolver, such as the go-urlkit one.
func WithURLResolver(r URLResolver) BuilderOption {
	return func(b *Builder) {
		if r != nil {
			b.resolver = r
		}
	}
}

func WithLogger(log interfaces.Logger) BuilderOption {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{log: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Build walks the tree top-down and returns the link forest. Draft-backed
// nodes are dropped with their subtrees, and links resolving to an href
// already emitted are dropped as duplicates.
func (b *Builder) Build(tree *manifest.Tree, files *content.Set, opts Options) []Link {
	if tree == nil {
		return nil
	}

	current := normalizePath(opts.CurrentPath)
	root := normalizeRoot(opts.SiteRoot)
	seen := map[string]bool{}

	return b.buildLevel(tree, files, tree.ChildrenOf(""), opts, root, current, seen, 1)
}

func (b *Builder) buildLevel(
	tree *manifest.Tree,
	files *content.Set,
	nodes []manifest.Node,
	opts Options,
	root, current string,
	seen map[string]bool,
	depth int,
) []Link {
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return nil
	}

	ordered := orderSiblings(nodes)
	links := make([]Link, 0, len(ordered))
	for _, node := range ordered {
		if node.Hidden && !opts.IncludeHidden {
			continue
		}

		var file *content.File
		if files != nil {
			if f, ok := files.Get(node.Path); ok {
				file = f
			}
		}
		if file != nil && file.Draft() {
			continue
		}

		href := b.hrefFor(node, root, opts.DefaultHrefs)
		if seen[href] {
			b.log.Debug("navigation link skipped, duplicate href", "path", node.Path, "href", href)
			continue
		}
		seen[href] = true

		link := Link{
			Href:     href,
			Label:    labelFor(node, file),
			IsActive: node.Path == current,
		}
		link.Children = b.buildLevel(tree, files, tree.ChildrenOf(node.Path), opts, root, current, seen, depth+1)
		links = append(links, link)
	}
	return links
}

func (b *Builder) hrefFor(node manifest.Node, root string, defaultOnly bool) string {
	if b.resolver != nil && !defaultOnly {
		if href, ok := b.resolver.Resolve(node); ok {
			return href
		}
	}
	return defaultHref(root, node.Path)
}

// Href computes the default link target for a tree path under a site root.
func Href(siteRoot, treePath string) string {
	return defaultHref(normalizeRoot(siteRoot), normalizePath(treePath))
}

// defaultHref joins the site root and the tree path. The index node maps to
// the root itself.
func defaultHref(root, path string) string {
	if path == resolver.IndexPath {
		if root == "" {
			return "/"
		}
		return root
	}
	return root + "/" + path
}

func labelFor(node manifest.Node, file *content.File) string {
	if node.Title != "" {
		return node.Title
	}
	if file != nil {
		if title := file.Title(); title != "" {
			return title
		}
	}
	if idx := strings.LastIndex(node.Path, "/"); idx >= 0 {
		return node.Path[idx+1:]
	}
	return node.Path
}

// orderSiblings applies explicit navOrder keys: ordered nodes first by key,
// unordered nodes after in tree order. The sort is stable so equal keys keep
// their tree positions.
func orderSiblings(nodes []manifest.Node) []manifest.Node {
	ordered := make([]manifest.Node, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].NavOrder, ordered[j].NavOrder
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
	return ordered
}

func normalizePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return resolver.IndexPath
	}
	return trimmed
}

func normalizeRoot(root string) string {
	trimmed := strings.TrimSpace(root)
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") && !strings.Contains(trimmed, "://") {
		trimmed = "/" + trimmed
	}
	return trimmed
}
