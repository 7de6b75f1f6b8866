package manifest

import (
	"errors"
	"fmt"
)

var (
	ErrSiteIDRequired   = errors.New("manifest: site id is required")
	ErrThemeRequired    = errors.New("manifest: theme name is required")
	ErrNodePathRequired = errors.New("manifest: node path is required")
	ErrNodeKindInvalid  = errors.New("manifest: node kind must be page or collection")
	ErrMoveIntoSubtree  = errors.New("manifest: cannot move a node into its own subtree")
	ErrManifestNil      = errors.New("manifest: manifest payload is required")
)

// NotFoundError represents missing manifests and structure nodes.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// DuplicatePathError rejects inserts that would shadow an existing node.
// Paths are stable identifiers, so collisions are never resolved silently.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("manifest: structure path %q already exists", e.Path)
}
