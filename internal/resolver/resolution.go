package resolver

import (
	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
)

// Resolution is the outcome of matching a requested path against a site.
// Exactly one of SinglePage, Collection, or NotFound is produced; callers
// switch on the concrete type.
type Resolution interface {
	resolution()
	// ResolvedPath returns the normalized path the resolution answers for.
	ResolvedPath() string
}

// SinglePage is a direct hit on one content file.
type SinglePage struct {
	Path   string
	Node   *manifest.Node
	File   *content.File
	Layout string
	Title  string
}

// Item is one entry of a collection listing.
type Item struct {
	Path   string
	File   *content.File
	Layout string
}

// Title returns the item's display title.
func (i Item) Title() string {
	return i.File.Title()
}

// Collection is a listing page over the published files inside a folder.
type Collection struct {
	Path   string
	Node   *manifest.Node
	File   *content.File
	Config *content.CollectionConfig
	Items  []Item
	Layout string
	Title  string
}

// ItemPageLayout returns the layout items use when rendered as their own
// page, falling back to the per-item listing layout.
func (c *Collection) ItemPageLayout() string {
	if c.Config != nil && c.Config.ItemPageLayout != "" {
		return c.Config.ItemPageLayout
	}
	return c.itemLayout()
}

func (c *Collection) itemLayout() string {
	if c.Config != nil && c.Config.ItemLayout != "" {
		return c.Config.ItemLayout
	}
	if c.Node != nil && c.Node.ItemLayout != "" {
		return c.Node.ItemLayout
	}
	return ""
}

// NotFound is the no-match outcome. Reason is a human-readable sentence
// naming the requested path.
type NotFound struct {
	Path   string
	Reason string
}

func (r *SinglePage) resolution() {}
func (r *Collection) resolution() {}
func (r *NotFound) resolution()   {}

func (r *SinglePage) ResolvedPath() string { return r.Path }
func (r *Collection) ResolvedPath() string { return r.Path }
func (r *NotFound) ResolvedPath() string   { return r.Path }
