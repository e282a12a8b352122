package transform

import (
	"fmt"
	"image"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// CompressOptions configures Compress.
type CompressOptions struct {
	// Format of the output. Defaults to JPEG.
	Format raster.Format
	// Quality is the lossy quality (1-100), used for JPEG.
	Quality int
	// MaxWidth and MaxHeight downscale before encoding when positive.
	MaxWidth  int
	MaxHeight int
}

// CompressResult carries the encoded bytes and size statistics.
type CompressResult struct {
	Data           []byte
	Format         raster.Format
	Width          int
	Height         int
	OriginalSize   int
	CompressedSize int
}

// Ratio returns compressed/original size, or 0 when the original size is unknown.
func (r CompressResult) Ratio() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.CompressedSize) / float64(r.OriginalSize)
}

// Savings describes the size reduction for status output.
func (r CompressResult) Savings() string {
	if r.OriginalSize == 0 {
		return fmt.Sprintf("%d bytes", r.CompressedSize)
	}
	return fmt.Sprintf("%d → %d bytes (%.1f%% smaller)", r.OriginalSize, r.CompressedSize, (1-r.Ratio())*100)
}

// Compress re-encodes img with the requested lossy settings. originalSize is
// the byte size of the source file and is only used for statistics.
func Compress(img *image.NRGBA, originalSize int, opts CompressOptions) (CompressResult, error) {
	if err := raster.Require(img); err != nil {
		return CompressResult{}, err
	}
	if opts.Format == "" {
		opts.Format = raster.FormatJPEG
	}
	if !opts.Format.CanEncode() {
		return CompressResult{}, errors.New(errors.ErrCodeInvalidFormat, "cannot compress to %s", opts.Format)
	}
	if opts.Quality < 0 || opts.Quality > 100 {
		return CompressResult{}, errors.New(errors.ErrCodeInvalidInput, "quality must be between 1 and 100, got %d", opts.Quality)
	}

	out := img
	if opts.MaxWidth > 0 || opts.MaxHeight > 0 {
		out = Fit(img, opts.MaxWidth, opts.MaxHeight)
	}

	data, err := raster.EncodeBytes(out, raster.EncodeOptions{Format: opts.Format, Quality: opts.Quality})
	if err != nil {
		return CompressResult{}, err
	}

	b := out.Bounds()
	return CompressResult{
		Data:           data,
		Format:         opts.Format,
		Width:          b.Dx(),
		Height:         b.Dy(),
		OriginalSize:   originalSize,
		CompressedSize: len(data),
	}, nil
}
