package blob

import "fmt"

// NotFoundError reports a missing blob lookup.
type NotFoundError struct {
	SiteID string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blob: %q not found for site %q", e.Path, e.SiteID)
}
