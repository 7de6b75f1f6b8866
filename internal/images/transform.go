package images

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

const defaultQuality = 85

var gravityAnchors = map[Gravity]imaging.Anchor{
	GravityCenter:      imaging.Center,
	GravityTop:         imaging.Top,
	GravityBottom:      imaging.Bottom,
	GravityLeft:        imaging.Left,
	GravityRight:       imaging.Right,
	GravityTopLeft:     imaging.TopLeft,
	GravityTopRight:    imaging.TopRight,
	GravityBottomLeft:  imaging.BottomLeft,
	GravityBottomRight: imaging.BottomRight,
}

var encodeFormats = map[string]imaging.Format{
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"gif":  imaging.GIF,
}

// applyTransform decodes src, applies the transform, and re-encodes in the
// source format. Derivatives are never upscaled: requested boxes larger than
// the source collapse onto the source dimensions.
func applyTransform(src []byte, t Transform, quality int) ([]byte, SourceInfo, error) {
	info, err := Probe(src)
	if err != nil {
		return nil, SourceInfo{}, err
	}
	format, ok := encodeFormats[info.Format]
	if !ok {
		return nil, SourceInfo{}, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, SourceInfo{}, err
	}

	out := transformImage(img, t)
	bounds := out.Bounds()

	var buf bytes.Buffer
	opts := []imaging.EncodeOption{}
	if format == imaging.JPEG {
		if quality <= 0 {
			quality = defaultQuality
		}
		opts = append(opts, imaging.JPEGQuality(quality))
	}
	if err := imaging.Encode(&buf, out, format, opts...); err != nil {
		return nil, SourceInfo{}, err
	}

	result := SourceInfo{
		Format: info.Format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	return buf.Bytes(), result, nil
}

func transformImage(img image.Image, t Transform) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	width, height := clampBox(t.Width, t.Height, srcW, srcH, t.Crop)

	if width <= 0 && height <= 0 {
		return img
	}

	switch t.Crop {
	case CropFill:
		if width <= 0 {
			width = srcW
		}
		if height <= 0 {
			height = srcH
		}
		anchor, ok := gravityAnchors[t.Gravity]
		if !ok {
			anchor = imaging.Center
		}
		return imaging.Fill(img, width, height, anchor, imaging.Lanczos)
	case CropScale:
		if width > 0 && height > 0 {
			return imaging.Fit(img, width, height, imaging.Lanczos)
		}
		return imaging.Resize(img, width, height, imaging.Lanczos)
	default:
		// fit, and any unknown mode, bounds the image inside the box.
		if width <= 0 {
			width = srcW
		}
		if height <= 0 {
			height = srcH
		}
		return imaging.Fit(img, width, height, imaging.Lanczos)
	}
}

// clampBox shrinks the requested box so it never exceeds the source. Fill
// preserves the requested aspect ratio while shrinking; the other modes cap
// each axis independently.
func clampBox(width, height, srcW, srcH int, crop Crop) (int, int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	if crop == CropFill && width > 0 && height > 0 {
		if width > srcW || height > srcH {
			fw := float64(srcW) / float64(width)
			fh := float64(srcH) / float64(height)
			factor := fw
			if fh < fw {
				factor = fh
			}
			width = max(1, int(float64(width)*factor))
			height = max(1, int(float64(height)*factor))
		}
		return width, height
	}

	if width > srcW {
		width = srcW
	}
	if height > srcH {
		height = srcH
	}
	return width, height
}
