package templates

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateNameRequired  = errors.New("templates: template name is required")
	ErrPartialNameRequired   = errors.New("templates: partial name is required")
	ErrTemplateNotRegistered = errors.New("templates: template is not registered")
)

// TemplateError reports a template that could not be found, compiled, or
// executed. The renderer turns these into inline error fragments instead of
// failing the whole render call.
type TemplateError struct {
	Name  string
	Cause error
}

func (e *TemplateError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("templates: template %q failed", e.Name)
	}
	return fmt.Sprintf("templates: template %q failed: %v", e.Name, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
