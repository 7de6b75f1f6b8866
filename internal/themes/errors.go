package themes

import (
	"errors"
	"fmt"
)

var (
	ErrThemeNameRequired = errors.New("themes: theme name is required")
	ErrLayoutTypeInvalid = errors.New("themes: layout type must be page or collection")
	ErrFeatureDisabled   = errors.New("themes: feature disabled")
)

// NotFoundError reports missing themes, layouts, and template files.
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
