package content

import (
	"errors"
	"fmt"
)

var (
	ErrSiteIDRequired  = errors.New("content: site id is required")
	ErrFileNil         = errors.New("content: file is required")
	ErrPathOutsideRoot = errors.New("content: path violates content root invariant")
)

// NotFoundError reports a missing content file.
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
