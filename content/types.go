// Package content exposes the markdown content source types for consumers of
// the sitebuilder module.
package content

import internalcontent "github.com/goliatone/go-sitebuilder/internal/content"

// File is one parsed markdown source: frontmatter plus body.
type File = internalcontent.File

// Set is a whole-site content snapshot keyed by tree path.
type Set = internalcontent.Set

// CollectionConfig is the reserved frontmatter block configuring collection
// ordering and item layout.
type CollectionConfig = internalcontent.CollectionConfig

// Service loads a site's markdown sources out of the blob store.
type Service = internalcontent.Service

// NotFoundError reports a missing content file.
type NotFoundError = internalcontent.NotFoundError

var (
	ErrSiteIDRequired  = internalcontent.ErrSiteIDRequired
	ErrFileNil         = internalcontent.ErrFileNil
	ErrPathOutsideRoot = internalcontent.ErrPathOutsideRoot
)

// ParseFile parses one markdown blob into a File.
func ParseFile(blobPath string, data []byte) (*File, error) {
	return internalcontent.ParseFile(blobPath, data)
}

// NewSet returns an empty snapshot rooted at the given content prefix.
func NewSet(root, ext string) *Set {
	return internalcontent.NewSet(root, ext)
}
