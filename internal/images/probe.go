package images

import (
	"bytes"
	"fmt"
	"image"

	// Register the formats the pipeline accepts with image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Probe reads format and dimensions from encoded image bytes without
// decoding the full pixel data.
func Probe(data []byte) (SourceInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return SourceInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return SourceInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
