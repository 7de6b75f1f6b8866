package images

import (
	"errors"
	"fmt"
)

var (
	ErrSourceRequired    = errors.New("images: source path is required")
	ErrUnsupportedFormat = errors.New("images: unsupported image format")
)

// NotFoundError reports a missing source blob or derivative record.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ImageProcessingError wraps a failure inside the derivative pipeline. The
// renderer catches these per preset, logs, and omits the preset from the
// resolved image map.
type ImageProcessingError struct {
	Source string
	Stage  string
	Cause  error
}

func (e *ImageProcessingError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("images: %s failed for %q", e.Stage, e.Source)
	}
	return fmt.Sprintf("images: %s failed for %q: %v", e.Stage, e.Source, e.Cause)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Cause
}

func processingError(source, stage string, cause error) *ImageProcessingError {
	return &ImageProcessingError{Source: source, Stage: stage, Cause: cause}
}
