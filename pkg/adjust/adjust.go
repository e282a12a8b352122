// Package adjust implements per-pixel tone passes over an image buffer.
//
// Each pass walks the NRGBA sample array once, rewrites the colour channels
// and leaves alpha untouched. Passes return a new buffer.
package adjust

import (
	"image"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// Options bundles the passes applied by Apply, in field order.
type Options struct {
	Brightness float64 // -100..100
	Contrast   float64 // -100..100
	Grayscale  bool
	Invert     bool
}

// IsZero reports whether opts would leave the image unchanged.
func (o Options) IsZero() bool {
	return o.Brightness == 0 && o.Contrast == 0 && !o.Grayscale && !o.Invert
}

// Apply runs brightness, contrast, grayscale and invert in that order.
func Apply(img *image.NRGBA, opts Options) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	out := raster.Clone(img)
	var err error
	if opts.Brightness != 0 {
		if out, err = Brightness(out, opts.Brightness); err != nil {
			return nil, err
		}
	}
	if opts.Contrast != 0 {
		if out, err = Contrast(out, opts.Contrast); err != nil {
			return nil, err
		}
	}
	if opts.Grayscale {
		out = Grayscale(out)
	}
	if opts.Invert {
		out = Invert(out)
	}
	return out, nil
}

// Brightness shifts every channel by amount×2.55 (amount in -100..100).
func Brightness(img *image.NRGBA, amount float64) (*image.NRGBA, error) {
	if amount < -100 || amount > 100 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "brightness must be between -100 and 100, got %g", amount)
	}
	delta := amount * 255 / 100
	return mapChannels(img, func(v uint8) uint8 {
		return raster.Clamp8(float64(v) + delta)
	}), nil
}

// Contrast stretches channels around mid-grey. amount in -100..100 is
// scaled to ±255 and turned into the usual 259(c+255)/(255(259−c)) factor.
func Contrast(img *image.NRGBA, amount float64) (*image.NRGBA, error) {
	if amount < -100 || amount > 100 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "contrast must be between -100 and 100, got %g", amount)
	}
	c := amount * 255 / 100
	factor := (259 * (c + 255)) / (255 * (259 - c))
	return mapChannels(img, func(v uint8) uint8 {
		return raster.Clamp8(factor*(float64(v)-128) + 128)
	}), nil
}

// Grayscale replaces colour with Rec. 601 luma.
func Grayscale(img *image.NRGBA) *image.NRGBA {
	out := raster.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		l := raster.Clamp8(0.299*float64(out.Pix[i]) + 0.587*float64(out.Pix[i+1]) + 0.114*float64(out.Pix[i+2]))
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = l, l, l
	}
	return out
}

// Invert produces the colour negative.
func Invert(img *image.NRGBA) *image.NRGBA {
	return mapChannels(img, func(v uint8) uint8 { return 255 - v })
}

// mapChannels applies f to R, G and B through a 256-entry lookup table.
func mapChannels(img *image.NRGBA, f func(uint8) uint8) *image.NRGBA {
	var lut [256]uint8
	for i := range lut {
		lut[i] = f(uint8(i))
	}
	out := raster.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] = lut[out.Pix[i]]
		out.Pix[i+1] = lut[out.Pix[i+1]]
		out.Pix[i+2] = lut[out.Pix[i+2]]
	}
	return out
}
