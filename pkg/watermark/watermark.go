// Package watermark stamps text or image marks onto raster images at one of
// nine named anchors, or tiles text diagonally across the whole canvas.
//
// Anchors are shared with PDF watermarking: Anchor.Code and PDFOffset map
// the same names onto PDF position codes.
package watermark

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/fonts"
	"github.com/matzehuels/deskkit/pkg/raster"
)

const (
	DefaultFontSize  = 32
	DefaultOpacity   = 0.5
	DefaultMargin    = 20
	DefaultTileAngle = 30
)

// TextOptions configures Text. Margin is used as given, so zero places the
// text flush against the anchored edges.
type TextOptions struct {
	Text    string
	Anchor  Anchor
	Size    float64
	Color   color.NRGBA
	Opacity float64
	Margin  int
	Bold    bool
	// Tile repeats the text across the canvas rotated by Angle degrees,
	// ignoring Anchor.
	Tile  bool
	Angle float64
}

func (o *TextOptions) setDefaults() error {
	if o.Text == "" {
		return errors.New(errors.ErrCodeInvalidInput, "watermark text is empty")
	}
	if o.Anchor == "" {
		o.Anchor = DefaultAnchor
	}
	if !o.Anchor.Valid() {
		return errors.New(errors.ErrCodeInvalidAnchor, "unknown anchor %q", o.Anchor)
	}
	if o.Size <= 0 {
		o.Size = DefaultFontSize
	}
	if o.Opacity == 0 {
		o.Opacity = DefaultOpacity
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "opacity must be between 0 and 1, got %g", o.Opacity)
	}
	if o.Color.A == 0 {
		o.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must not be negative")
	}
	if o.Tile && o.Angle == 0 {
		o.Angle = DefaultTileAngle
	}
	return nil
}

// Text draws a text watermark onto a copy of img.
func Text(img *image.NRGBA, opts TextOptions) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}

	weight := fonts.Regular
	if opts.Bold {
		weight = fonts.Bold
	}
	face, err := fonts.Face(weight, opts.Size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load font")
	}
	defer face.Close()

	label := RenderText(face, opts.Text, opts.Color)
	if opts.Tile {
		return tile(img, label, opts.Angle, opts.Opacity), nil
	}

	pt, err := Offset(opts.Anchor, img.Bounds().Size(), label.Bounds().Size(), opts.Margin)
	if err != nil {
		return nil, err
	}
	return imaging.Overlay(img, label, pt, opts.Opacity), nil
}

// RenderText draws s onto a tightly sized transparent layer.
func RenderText(face font.Face, s string, c color.NRGBA) *image.NRGBA {
	m := face.Metrics()
	width := font.MeasureString(face, s).Ceil()
	height := (m.Ascent + m.Descent).Ceil()

	layer := image.NewNRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	d := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: m.Ascent},
	}
	d.DrawString(s)
	return layer
}

// tile repeats label rotated by angle in a staggered grid.
func tile(img, label *image.NRGBA, angle, opacity float64) *image.NRGBA {
	rotated := imaging.Rotate(label, angle, color.NRGBA{})
	rw, rh := rotated.Bounds().Dx(), rotated.Bounds().Dy()
	stepX := rw + rw/2
	stepY := rh + rh/2

	out := raster.Clone(img)
	b := img.Bounds()
	for row, y := 0, -rh/2; y < b.Dy(); row, y = row+1, y+stepY {
		x0 := -rw / 2
		if row%2 == 1 {
			x0 += stepX / 2
		}
		for x := x0; x < b.Dx(); x += stepX {
			out = imaging.Overlay(out, rotated, image.Pt(x, y), opacity)
		}
	}
	return out
}

// ImageOptions configures Image.
type ImageOptions struct {
	Anchor Anchor
	// Scale is the mark width as a fraction of the canvas width. Zero keeps
	// the mark's own size.
	Scale   float64
	Opacity float64
	// Margin is the distance from the anchored edges in pixels.
	Margin int
}

// Image stamps mark onto a copy of img.
func Image(img, mark *image.NRGBA, opts ImageOptions) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if err := raster.Require(mark); err != nil {
		return nil, errors.New(errors.ErrCodeNoImage, "no watermark image")
	}
	if opts.Anchor == "" {
		opts.Anchor = DefaultAnchor
	}
	if opts.Margin < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "margin must not be negative")
	}
	if opts.Opacity == 0 {
		opts.Opacity = DefaultOpacity
	}
	if opts.Opacity < 0 || opts.Opacity > 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "opacity must be between 0 and 1, got %g", opts.Opacity)
	}
	if opts.Scale < 0 || opts.Scale > 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "scale must be between 0 and 1, got %g", opts.Scale)
	}

	if opts.Scale > 0 {
		w := max(int(math.Round(float64(img.Bounds().Dx())*opts.Scale)), 1)
		mark = imaging.Resize(mark, w, 0, imaging.Lanczos)
	}

	pt, err := Offset(opts.Anchor, img.Bounds().Size(), mark.Bounds().Size(), opts.Margin)
	if err != nil {
		return nil, err
	}
	return imaging.Overlay(img, mark, pt, opts.Opacity), nil
}
