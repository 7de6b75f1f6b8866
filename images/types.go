// Package images exposes the image derivative pipeline types for consumers
// of the sitebuilder module.
package images

import internalimages "github.com/goliatone/go-sitebuilder/internal/images"

// Reference points at a source image inside a site's media space.
type Reference = internalimages.Reference

// Transform describes the derivative to produce from a source.
type Transform = internalimages.Transform

// Crop selects how a transform fits the source into its box.
type Crop = internalimages.Crop

// Gravity anchors fill crops.
type Gravity = internalimages.Gravity

const (
	// CropFill crops the source so both width and height are met exactly.
	CropFill = internalimages.CropFill
	// CropFit bounds the longer dimension and preserves aspect ratio.
	CropFit = internalimages.CropFit
	// CropScale is accepted as an alias of fit for older manifests.
	CropScale = internalimages.CropScale

	GravityCenter = internalimages.GravityCenter
	GravityTop    = internalimages.GravityTop
	GravityBottom = internalimages.GravityBottom
	GravityLeft   = internalimages.GravityLeft
	GravityRight  = internalimages.GravityRight
)

// DerivativeKey identifies one derivative: source content hash + transform.
type DerivativeKey = internalimages.DerivativeKey

// DerivativeRecord is the persisted metadata for a generated derivative.
type DerivativeRecord = internalimages.DerivativeRecord

// Asset is one file an export bundle carries.
type Asset = internalimages.Asset

// Service is the derivative pipeline contract.
type Service = internalimages.Service

// NotFoundError reports a missing source blob or derivative record.
type NotFoundError = internalimages.NotFoundError

// ImageProcessingError wraps a failure inside the derivative pipeline.
type ImageProcessingError = internalimages.ImageProcessingError

var (
	ErrSourceRequired    = internalimages.ErrSourceRequired
	ErrUnsupportedFormat = internalimages.ErrUnsupportedFormat
)
