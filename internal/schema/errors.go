package schema

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaMissing   = errors.New("schema: schema not found")
	ErrSchemaMalformed = errors.New("schema: schema malformed")
)

// SchemaError wraps failures loading or applying a theme/layout schema. The
// render path treats these as degradable: the saved config keeps flowing
// while the cause is logged.
type SchemaError struct {
	Resource string
	Cause    error
}

func (e *SchemaError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("schema: %s unavailable", e.Resource)
	}
	return fmt.Sprintf("schema: %s unavailable: %v", e.Resource, e.Cause)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}
