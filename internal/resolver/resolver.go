// Package resolver matches requested paths against a site's structure tree
// and content snapshot. Resolve is a pure function: it performs no I/O and
// reports misses as a NotFound resolution instead of an error, so nothing
// escapes the resolution boundary.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
)

// IndexPath is the tree path the empty request normalizes to.
const IndexPath = "index"

// layoutField is the frontmatter key a file can use to pick its own layout.
const layoutField = "layout"

// Resolve decides what the requested path means for this site. Matching
// order: an exact content file wins over a same-named folder; folders
// resolve to collection listings with draft items excluded and a stable,
// fully deterministic sort.
func Resolve(tree *manifest.Tree, files *content.Set, requestedPath string) Resolution {
	path := normalizeRequestPath(requestedPath)

	if files == nil {
		return &NotFound{Path: path, Reason: "site has no content"}
	}

	node := findNode(tree, path)

	if file, ok := files.Get(path); ok {
		_, hasBlock := file.Collection()
		if hasBlock || (node != nil && node.Kind == manifest.NodeKindCollection) {
			return resolveCollection(files, path, node, file)
		}
		return resolvePage(files, path, node, file)
	}

	if node != nil && node.Kind == manifest.NodeKindCollection {
		return resolveCollection(files, path, node, nil)
	}

	if files.HasFolder(path) {
		listing := resolveCollection(files, path, node, nil)
		if col, ok := listing.(*Collection); ok && len(col.Items) == 0 {
			return &NotFound{
				Path:   path,
				Reason: fmt.Sprintf("folder %q has no published content", path),
			}
		}
		return listing
	}

	return &NotFound{
		Path:   path,
		Reason: fmt.Sprintf("no page or folder matches path %q", path),
	}
}

func normalizeRequestPath(requested string) string {
	path := strings.Trim(strings.TrimSpace(requested), "/")
	if path == "" {
		return IndexPath
	}
	return path
}

func findNode(tree *manifest.Tree, path string) *manifest.Node {
	if tree == nil {
		return nil
	}
	node, ok := tree.FindByPath(path)
	if !ok {
		return nil
	}
	return &node
}

func resolvePage(files *content.Set, path string, node *manifest.Node, file *content.File) Resolution {
	return &SinglePage{
		Path:   path,
		Node:   node,
		File:   file,
		Layout: pageLayout(files, path, node, file),
		Title:  file.Title(),
	}
}

// pageLayout picks the template for a single page: the structure node's
// layout, then the file's own frontmatter layout, then the parent
// collection's item-page layout for files that live inside a folder.
func pageLayout(files *content.Set, path string, node *manifest.Node, file *content.File) string {
	if node != nil && node.Layout != "" {
		return node.Layout
	}
	if layout, ok := file.Field(layoutField); ok {
		if name, ok := layout.(string); ok && name != "" {
			return name
		}
	}
	if parent := parentPath(path); parent != "" {
		if parentFile, ok := files.Get(parent); ok {
			if cfg, ok := parentFile.Collection(); ok && cfg.ItemPageLayout != "" {
				return cfg.ItemPageLayout
			}
		}
	}
	return ""
}

func parentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

func resolveCollection(files *content.Set, path string, node *manifest.Node, file *content.File) Resolution {
	var cfg *content.CollectionConfig
	if file != nil {
		if parsed, ok := file.Collection(); ok {
			cfg = parsed
		}
	}
	if cfg == nil {
		cfg = content.DefaultCollectionConfig()
	}

	col := &Collection{
		Path:   path,
		Node:   node,
		File:   file,
		Config: cfg,
		Title:  collectionTitle(path, node, file),
	}
	if node != nil {
		col.Layout = node.Layout
	}
	if col.Layout == "" && file != nil {
		if layout, ok := file.Field(layoutField); ok {
			if name, ok := layout.(string); ok {
				col.Layout = name
			}
		}
	}

	col.Items = gatherItems(files, path, col)
	sortItems(col.Items, cfg)
	return col
}

func collectionTitle(path string, node *manifest.Node, file *content.File) string {
	if file != nil {
		return file.Title()
	}
	if node != nil && node.Title != "" {
		return node.Title
	}
	base := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		base = path[idx+1:]
	}
	return base
}

func gatherItems(files *content.Set, path string, col *Collection) []Item {
	children := files.Children(path)
	items := make([]Item, 0, len(children))
	for _, child := range children {
		if child.Draft() {
			continue
		}
		treePath, ok := files.TreePath(child.Path)
		if !ok {
			continue
		}
		items = append(items, Item{
			Path:   treePath,
			File:   child,
			Layout: itemLayout(child, col),
		})
	}
	return items
}

func itemLayout(file *content.File, col *Collection) string {
	if layout, ok := file.Field(layoutField); ok {
		if name, ok := layout.(string); ok && name != "" {
			return name
		}
	}
	return col.itemLayout()
}

// sortItems orders the listing by the configured field. Items missing the
// field sort after items that carry it regardless of direction, and every
// comparison ends with title-then-path so repeated runs always agree.
func sortItems(items []Item, cfg *content.CollectionConfig) {
	desc := cfg.Descending()
	sortBy := strings.TrimSpace(cfg.SortBy)
	if sortBy == "" {
		sortBy = "date"
	}

	sort.SliceStable(items, func(i, j int) bool {
		if less, decided := lessByField(items[i], items[j], sortBy, desc); decided {
			return less
		}
		a, b := items[i], items[j]
		at, bt := strings.ToLower(a.Title()), strings.ToLower(b.Title())
		if at != bt {
			return at < bt
		}
		return a.Path < b.Path
	})
}

// lessByField reports the primary ordering between two items. The second
// return is false when the items tie on the sort field and the tie-breaks
// should run. An item missing the field sorts after one that carries it in
// both directions.
func lessByField(a, b Item, sortBy string, desc bool) (bool, bool) {
	if sortBy == "title" {
		at, bt := strings.ToLower(a.Title()), strings.ToLower(b.Title())
		if at == bt {
			return false, false
		}
		if desc {
			return at > bt, true
		}
		return at < bt, true
	}

	if sortBy == "date" {
		ad, aok := a.File.Date()
		bd, bok := b.File.Date()
		switch {
		case aok && bok:
			if ad.Equal(bd) {
				return false, false
			}
			if desc {
				return ad.After(bd), true
			}
			return ad.Before(bd), true
		case aok:
			return true, true
		case bok:
			return false, true
		default:
			return false, false
		}
	}

	av, aok := a.File.Field(sortBy)
	bv, bok := b.File.Field(sortBy)
	switch {
	case aok && bok:
		c := compareValues(av, bv)
		if c == 0 {
			return false, false
		}
		if desc {
			return c > 0, true
		}
		return c < 0, true
	case aok:
		return true, true
	case bok:
		return false, true
	default:
		return false, false
	}
}

func compareValues(a, b any) int {
	if fa, aok := numeric(a); aok {
		if fb, bok := numeric(b); bok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(
		strings.ToLower(fmt.Sprintf("%v", a)),
		strings.ToLower(fmt.Sprintf("%v", b)),
	)
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
