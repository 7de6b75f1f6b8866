// Package manifest exposes the site manifest and structure tree types for
// consumers of the sitebuilder module.
package manifest

import internalmanifest "github.com/goliatone/go-sitebuilder/internal/manifest"

// Manifest is the per-site document describing identity, theme selection,
// and the page structure tree.
type Manifest = internalmanifest.Manifest

// Tree is the ordered page structure.
type Tree = internalmanifest.Tree

// Node is one entry in the structure tree.
type Node = internalmanifest.Node

// NodeKind distinguishes single pages from collections.
type NodeKind = internalmanifest.NodeKind

const (
	// NodeKindPage marks a leaf node backed by exactly one content file.
	NodeKindPage = internalmanifest.NodeKindPage
	// NodeKindCollection marks a node with ordered children and an item layout.
	NodeKindCollection = internalmanifest.NodeKindCollection
)

// ThemeSelection names the active theme plus its saved appearance config.
type ThemeSelection = internalmanifest.ThemeSelection

// Service loads, persists, and mutates site manifests.
type Service = internalmanifest.Service

// NotFoundError represents missing manifests and structure nodes.
type NotFoundError = internalmanifest.NotFoundError

// DuplicatePathError rejects inserts that would shadow an existing node.
type DuplicatePathError = internalmanifest.DuplicatePathError

var (
	ErrSiteIDRequired   = internalmanifest.ErrSiteIDRequired
	ErrThemeRequired    = internalmanifest.ErrThemeRequired
	ErrNodePathRequired = internalmanifest.ErrNodePathRequired
	ErrNodeKindInvalid  = internalmanifest.ErrNodeKindInvalid
	ErrMoveIntoSubtree  = internalmanifest.ErrMoveIntoSubtree
	ErrManifestNil      = internalmanifest.ErrManifestNil
)

// NewTree returns an empty structure tree.
func NewTree() *Tree {
	return internalmanifest.NewTree()
}
