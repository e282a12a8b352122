// Package raster holds the in-memory image buffer every deskkit tool works on.
//
// A buffer is a width×height grid of 8-bit RGBA samples, represented as
// *image.NRGBA (non-premultiplied, so alpha can be zeroed per pixel without
// touching colour). Buffers are created when a file is decoded, mutated by
// tool passes, and encoded back to bytes at the end; nothing here is shared
// between tools.
//
// # Formats
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding supports
// PNG, JPEG (with quality), GIF, BMP, TIFF and lossless WebP.
//
//	img, format, err := raster.Load("photo.jpg")
//	if err != nil {
//	    return err
//	}
//	err = raster.Save("photo.png", img, raster.EncodeOptions{})
package raster

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/deskkit/pkg/errors"
)

// Format identifies an image codec.
type Format string

// Supported formats.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatWebP Format = "webp"
)

// DefaultJPEGQuality is used when EncodeOptions.Quality is zero.
const DefaultJPEGQuality = 85

// encodable lists the formats Encode can write.
var encodable = map[Format]bool{
	FormatPNG:  true,
	FormatJPEG: true,
	FormatGIF:  true,
	FormatBMP:  true,
	FormatTIFF: true,
	FormatWebP: true,
}

// aliases maps file extensions and loose names onto canonical formats.
var aliases = map[string]Format{
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"jpe":  FormatJPEG,
	"gif":  FormatGIF,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
	"webp": FormatWebP,
}

// ParseFormat resolves a format name or extension ("jpg", ".PNG", "tif").
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if f, ok := aliases[key]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image format: %q", s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer image format from %q", path)
	}
	return ParseFormat(ext)
}

// Extension returns the conventional file extension for f, with a leading dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// MIMEType returns the content type for f.
func (f Format) MIMEType() string {
	return "image/" + string(f)
}

// CanEncode reports whether Encode supports f.
func (f Format) CanEncode() bool {
	return encodable[f]
}

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// Format selects the codec. Save falls back to the path extension when empty.
	Format Format
	// Quality is the JPEG quality (1-100). Zero means DefaultJPEGQuality.
	Quality int
}

// Require returns a NO_IMAGE error when img is nil or has no pixels.
// Every tool calls it first so "nothing loaded" is a user-facing no-op.
func Require(img *image.NRGBA) error {
	if img == nil || img.Bounds().Empty() {
		return errors.New(errors.ErrCodeNoImage, "no image loaded")
	}
	return nil
}

// Clone copies any image into a fresh NRGBA buffer whose bounds start at (0,0).
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// Decode reads and decodes an image, returning it as an NRGBA buffer.
func Decode(r io.Reader) (*image.NRGBA, Format, error) {
	src, name, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image")
	}
	f, err := ParseFormat(name)
	if err != nil {
		f = Format(name)
	}
	return Clone(src), f, nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte) (*image.NRGBA, Format, error) {
	return Decode(bytes.NewReader(data))
}

// Load opens and decodes the image at path.
func Load(path string) (*image.NRGBA, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes img to w in the requested format.
func Encode(w io.Writer, img image.Image, opts EncodeOptions) error {
	if img == nil {
		return errors.New(errors.ErrCodeNoImage, "no image to encode")
	}
	format := opts.Format
	if format == "" {
		format = FormatPNG
	}

	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		q := opts.Quality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		if q > 100 {
			q = 100
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case FormatGIF:
		return gif.Encode(w, img, nil)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "cannot encode %s images", format)
	}
}

// EncodeBytes encodes img into a byte slice.
func EncodeBytes(img image.Image, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes img to path, creating parent directories as needed.
// When opts.Format is empty the format is taken from the path extension.
func Save(path string, img image.Image, opts EncodeOptions) error {
	if opts.Format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return err
		}
		opts.Format = f
	}
	if !opts.Format.CanEncode() {
		return errors.New(errors.ErrCodeInvalidFormat, "cannot encode %s images", opts.Format)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, img, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
