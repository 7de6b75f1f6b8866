package images

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Crop selects how a derivative honors the requested bounds.
type Crop string

const (
	// CropFill crops the source so both width and height are met exactly.
	CropFill Crop = "fill"
	// CropFit bounds the longer dimension and preserves aspect ratio.
	CropFit Crop = "fit"
	// CropScale is accepted as an alias of fit for older manifests.
	CropScale Crop = "scale"
)

// Valid reports whether the crop mode is one the pipeline understands.
func (c Crop) Valid() bool {
	switch c {
	case CropFill, CropFit, CropScale:
		return true
	}
	return false
}

// Gravity anchors fill crops inside the source image.
type Gravity string

const (
	GravityCenter      Gravity = "center"
	GravityTop         Gravity = "top"
	GravityBottom      Gravity = "bottom"
	GravityLeft        Gravity = "left"
	GravityRight       Gravity = "right"
	GravityTopLeft     Gravity = "top-left"
	GravityTopRight    Gravity = "top-right"
	GravityBottomLeft  Gravity = "bottom-left"
	GravityBottomRight Gravity = "bottom-right"
)

// Valid reports whether the gravity anchor is recognized.
func (g Gravity) Valid() bool {
	switch g {
	case GravityCenter, GravityTop, GravityBottom, GravityLeft, GravityRight,
		GravityTopLeft, GravityTopRight, GravityBottomLeft, GravityBottomRight:
		return true
	}
	return false
}

// Reference is an opaque pointer into an image storage backend. It never
// carries pixel data; the pipeline resolves it to blobs on demand.
type Reference struct {
	ServiceID string `json:"serviceId"`
	Src       string `json:"src"`
	Alt       string `json:"alt,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// IsZero reports whether the reference points at nothing.
func (r Reference) IsZero() bool {
	return r.Src == ""
}

// IsVector reports whether the reference names a vector format. Vector
// sources bypass the derivative pipeline entirely.
func (r Reference) IsVector() bool {
	return strings.EqualFold(path.Ext(r.Src), ".svg")
}

// Transform describes a requested derivative of a source image.
type Transform struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Crop    Crop    `json:"crop,omitempty"`
	Gravity Gravity `json:"gravity,omitempty"`
	Quality int     `json:"quality,omitempty"`
}

// IsZero reports whether the transform requests no resizing at all.
func (t Transform) IsZero() bool {
	return t.Width == 0 && t.Height == 0
}

// Normalize lowercases the crop and gravity so manifests written by hand
// still hit the cache deterministically.
func (t Transform) Normalize() Transform {
	t.Crop = Crop(strings.ToLower(strings.TrimSpace(string(t.Crop))))
	t.Gravity = Gravity(strings.ToLower(strings.TrimSpace(string(t.Gravity))))
	return t
}

// DerivativeKey identifies one generated derivative. The site identifier is
// part of the key itself, so two sites can share source filenames without
// their caches colliding. SourceHash folds the source bytes into the key;
// replacing an image at the same path produces a fresh key instead of
// serving stale derivatives.
type DerivativeKey struct {
	SiteID     string  `json:"siteId"`
	Source     string  `json:"source"`
	SourceHash string  `json:"sourceHash"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Crop       Crop    `json:"crop"`
	Gravity    Gravity `json:"gravity"`
}

// Token returns a short stable digest of the full key. It seeds the
// singleflight group, the persistent store lookup, and derivative IDs.
func (k DerivativeKey) Token() string {
	payload := strings.Join([]string{
		k.SiteID,
		k.Source,
		k.SourceHash,
		fmt.Sprintf("%dx%d", k.Width, k.Height),
		string(k.Crop),
		string(k.Gravity),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:16]
}

// Filename renders the stable export name for the derivative, derived from
// the source basename so exported bundles stay readable.
func (k DerivativeKey) Filename() string {
	ext := path.Ext(k.Source)
	stem := strings.TrimSuffix(path.Base(k.Source), ext)
	if stem == "" {
		stem = "image"
	}
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s-%dx%d-%s", stem, k.Width, k.Height, k.Token()) + ext
}

// derivativePrefix namespaces generated blobs away from site sources.
const derivativePrefix = "derivatives/"

// BlobPath is the location of the derivative inside the site's blob
// namespace.
func (k DerivativeKey) BlobPath() string {
	return derivativePrefix + k.Filename()
}

// DerivativeRecord persists derivative metadata so exports and cache clears
// can enumerate what was generated without scanning blobs.
type DerivativeRecord struct {
	bun.BaseModel `bun:"table:image_derivatives,alias:ideriv"`

	ID         uuid.UUID `bun:",pk,type:uuid"           json:"id"`
	SiteID     string    `bun:"site_id,notnull"         json:"site_id"`
	Token      string    `bun:"token,notnull,unique"    json:"token"`
	Source     string    `bun:"source,notnull"          json:"source"`
	SourceHash string    `bun:"source_hash,notnull"     json:"source_hash"`
	Width      int       `bun:"width,notnull"           json:"width"`
	Height     int       `bun:"height,notnull"          json:"height"`
	Crop       string    `bun:"crop,notnull"            json:"crop"`
	Gravity    string    `bun:"gravity,notnull"         json:"gravity"`
	Path       string    `bun:"path,notnull"            json:"path"`
	Format     string    `bun:"format,notnull"          json:"format"`
	Size       int64     `bun:"size,notnull"            json:"size"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Asset pairs an export-relative path with the bytes to write there.
type Asset struct {
	Path string `json:"path"`
	Data []byte `json:"-"`
}

// SourceInfo captures the probed dimensions and format of a source blob.
type SourceInfo struct {
	Format string
	Width  int
	Height int
}
