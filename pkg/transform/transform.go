// Package transform implements the geometric and encoding tools: resize,
// crop, rotate/flip, compress and merge.
//
// Scaling and compositing are delegated to github.com/disintegration/imaging;
// this package only computes target geometry and validates parameters.
package transform

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// ResizeOptions configures Resize.
type ResizeOptions struct {
	Width  int
	Height int
	// MaintainAspect derives one dimension from the other and the source
	// aspect ratio. Width wins when both are given.
	MaintainAspect bool
}

// TargetSize computes the output dimensions for a src-sized image.
//
// Without MaintainAspect the requested size is used verbatim (no implicit
// letterboxing). With it, the missing dimension is round(other × aspect)
// where aspect is the source ratio of the derived side over the given side.
func TargetSize(src image.Point, opts ResizeOptions) (image.Point, error) {
	if src.X <= 0 || src.Y <= 0 {
		return image.Point{}, errors.New(errors.ErrCodeNoImage, "source image is empty")
	}
	if opts.Width < 0 || opts.Height < 0 {
		return image.Point{}, errors.New(errors.ErrCodeInvalidInput, "dimensions must not be negative")
	}

	if !opts.MaintainAspect {
		if opts.Width == 0 || opts.Height == 0 {
			return image.Point{}, errors.New(errors.ErrCodeInvalidInput, "width and height are required unless aspect ratio is maintained")
		}
		return image.Pt(opts.Width, opts.Height), nil
	}

	switch {
	case opts.Width > 0:
		h := int(math.Round(float64(opts.Width) * float64(src.Y) / float64(src.X)))
		return image.Pt(opts.Width, max(h, 1)), nil
	case opts.Height > 0:
		w := int(math.Round(float64(opts.Height) * float64(src.X) / float64(src.Y)))
		return image.Pt(max(w, 1), opts.Height), nil
	default:
		return image.Point{}, errors.New(errors.ErrCodeInvalidInput, "width or height is required")
	}
}

// Resize scales img to the size computed by TargetSize using Lanczos
// resampling.
func Resize(img *image.NRGBA, opts ResizeOptions) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	size, err := TargetSize(img.Bounds().Size(), opts)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, size.X, size.Y, imaging.Lanczos), nil
}

// Scale resizes by a percentage of the original dimensions.
func Scale(img *image.NRGBA, percent float64) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if percent <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g%%", percent)
	}
	b := img.Bounds()
	w := max(int(math.Round(float64(b.Dx())*percent/100)), 1)
	h := max(int(math.Round(float64(b.Dy())*percent/100)), 1)
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}

// Fit scales img down so it fits within maxW×maxH, preserving aspect.
// Images already inside the box are returned as a copy.
func Fit(img *image.NRGBA, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	if (maxW <= 0 || b.Dx() <= maxW) && (maxH <= 0 || b.Dy() <= maxH) {
		return raster.Clone(img)
	}
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// Crop cuts rect out of img. The rectangle is clipped to the image bounds;
// an empty intersection is an error.
func Crop(img *image.NRGBA, rect image.Rectangle) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	r := rect.Canon().Intersect(img.Bounds())
	if r.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "crop rectangle %v lies outside the %dx%d image", rect, img.Bounds().Dx(), img.Bounds().Dy())
	}
	return imaging.Crop(img, r), nil
}

// CropAspect cuts the largest centred region with the given width:height ratio.
func CropAspect(img *image.NRGBA, ratioW, ratioH float64) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if ratioW <= 0 || ratioH <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "aspect ratio must be positive")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	target := ratioW / ratioH

	cw, ch := w, h
	if float64(w)/float64(h) > target {
		cw = max(int(math.Round(float64(h)*target)), 1)
	} else {
		ch = max(int(math.Round(float64(w)/target)), 1)
	}
	return imaging.CropCenter(img, cw, ch), nil
}

// Rotate turns img clockwise by a multiple of 90 degrees.
func Rotate(img *image.NRGBA, degrees int) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		return raster.Clone(img), nil
	case 90:
		return imaging.Rotate270(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "rotation must be a multiple of 90 degrees, got %d", degrees)
	}
}

// Flip mirrors img horizontally or vertically.
func Flip(img *image.NRGBA, horizontal bool) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if horizontal {
		return imaging.FlipH(img), nil
	}
	return imaging.FlipV(img), nil
}
