package bgremove

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// Mode selects a classifier.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeChromaKey Mode = "chroma"
	ModeEdge      Mode = "edge"
	ModeFloodFill Mode = "flood"
)

// Modes lists every supported classifier in presentation order.
var Modes = []Mode{ModeAuto, ModeChromaKey, ModeEdge, ModeFloodFill}

// Classifier thresholds.
const (
	// AutoBorderFraction is the share of each dimension treated as the border band.
	AutoBorderFraction = 0.10
	// AutoBrightThreshold: border pixels brighter than this are removed.
	AutoBrightThreshold = 240
	// AutoDarkThreshold: border pixels darker than this are removed.
	AutoDarkThreshold = 15
	// EdgeAlphaDecrement is subtracted from the alpha of flat pixels.
	EdgeAlphaDecrement = 50
	// DefaultTolerance is the suggested chroma key and flood fill tolerance.
	DefaultTolerance = 30
	// DefaultSensitivity is the suggested Edge gradient threshold.
	DefaultSensitivity = 30
)

// ParseMode resolves a mode name. Aliases "chroma-key", "magic-wand" and
// "floodfill" are accepted.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto", "":
		return ModeAuto, nil
	case "chroma", "chroma-key", "chromakey", "color":
		return ModeChromaKey, nil
	case "edge", "edges":
		return ModeEdge, nil
	case "flood", "floodfill", "flood-fill", "magic-wand", "wand":
		return ModeFloodFill, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown removal mode %q (must be auto, chroma, edge or flood)", s)
}

// Options configures Apply. Zero tolerance and zero sensitivity are taken
// literally; start from DefaultOptions for the usual settings.
type Options struct {
	Mode Mode

	// Key is the chroma-key colour.
	Key color.NRGBA
	// Tolerance is the 0–100 similarity percentage for chroma key and flood fill.
	Tolerance float64
	// Sensitivity is the gradient magnitude below which Edge fades a pixel.
	Sensitivity float64
	// Seed is the flood fill starting point in image coordinates.
	Seed image.Point
}

// DefaultOptions returns options for mode with the suggested thresholds.
func DefaultOptions(mode Mode) Options {
	return Options{Mode: mode, Tolerance: DefaultTolerance, Sensitivity: DefaultSensitivity}
}

// Result is the outcome of a classifier pass.
type Result struct {
	Image *image.NRGBA
	// Affected counts pixels whose alpha was changed.
	Affected int
}

// Ratio returns the fraction of pixels affected.
func (r Result) Ratio() float64 {
	if r.Image == nil {
		return 0
	}
	b := r.Image.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	return float64(r.Affected) / float64(total)
}

// Apply dispatches to the classifier named by opts.Mode.
func Apply(img *image.NRGBA, opts Options) (Result, error) {
	if err := raster.Require(img); err != nil {
		return Result{}, err
	}

	switch opts.Mode {
	case ModeAuto, "":
		return Auto(img)
	case ModeChromaKey:
		return ChromaKey(img, opts.Key, opts.Tolerance)
	case ModeEdge:
		return Edge(img, opts.Sensitivity)
	case ModeFloodFill:
		return FloodFill(img, opts.Seed, opts.Tolerance)
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "unknown removal mode %q", opts.Mode)
	}
}

// ChromaKey makes transparent every pixel whose RGB distance to key is
// within tolerance×2.55. A pixel equal to key is always removed; pixels
// farther than the radius keep their alpha.
func ChromaKey(img *image.NRGBA, key color.NRGBA, tolerance float64) (Result, error) {
	if err := raster.Require(img); err != nil {
		return Result{}, err
	}
	if err := errors.ValidatePercent("tolerance", tolerance); err != nil {
		return Result{}, err
	}

	out := raster.Clone(img)
	radius := raster.ToleranceRadius(tolerance)
	affected := 0

	for i := 0; i < len(out.Pix); i += 4 {
		c := color.NRGBA{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2]}
		if raster.ColorDistance(c, key) <= radius {
			if out.Pix[i+3] != 0 {
				affected++
			}
			out.Pix[i+3] = 0
		}
	}
	return Result{Image: out, Affected: affected}, nil
}

// Edge fades pixels in flat regions. The intensity gradient is approximated
// by central finite differences over the 3×3 neighbourhood; interior pixels
// whose gradient magnitude is below sensitivity lose EdgeAlphaDecrement of
// alpha (partial transparency, floored at zero). Border pixels have no full
// neighbourhood and are left alone.
func Edge(img *image.NRGBA, sensitivity float64) (Result, error) {
	if err := raster.Require(img); err != nil {
		return Result{}, err
	}
	if sensitivity < 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "sensitivity must not be negative")
	}

	src := raster.Clone(img)
	out := raster.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	intensity := func(x, y int) float64 {
		return raster.Brightness(raster.At(src, x, y))
	}

	affected := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := intensity(x+1, y) - intensity(x-1, y)
			gy := intensity(x, y+1) - intensity(x, y-1)
			if math.Sqrt(gx*gx+gy*gy) >= sensitivity {
				continue
			}
			i := out.PixOffset(x, y)
			a := out.Pix[i+3]
			if a == 0 {
				continue
			}
			if a > EdgeAlphaDecrement {
				out.Pix[i+3] = a - EdgeAlphaDecrement
			} else {
				out.Pix[i+3] = 0
			}
			affected++
		}
	}
	return Result{Image: out, Affected: affected}, nil
}

// FloodFill removes the 4-connected region around seed whose pixels are
// within tolerance×2.55 of the seed colour. The fill is iterative and uses a
// visited bitmap, so each pixel is examined at most once; worst case is the
// whole buffer. Regions of the same colour that are not connected to the
// seed are untouched.
func FloodFill(img *image.NRGBA, seed image.Point, tolerance float64) (Result, error) {
	if err := raster.Require(img); err != nil {
		return Result{}, err
	}
	if err := errors.ValidatePercent("tolerance", tolerance); err != nil {
		return Result{}, err
	}

	out := raster.Clone(img)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	if seed.X < 0 || seed.Y < 0 || seed.X >= w || seed.Y >= h {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "seed %v outside %dx%d image", seed, w, h)
	}

	target := raster.At(out, seed.X, seed.Y)
	radius := raster.ToleranceRadius(tolerance)
	region := Region(out, seed, func(c color.NRGBA) bool {
		return raster.ColorDistance(c, target) <= radius
	})

	affected := 0
	for idx, in := range region {
		if !in {
			continue
		}
		i := out.PixOffset(idx%w, idx/w)
		if out.Pix[i+3] != 0 {
			affected++
		}
		out.Pix[i+3] = 0
	}
	return Result{Image: out, Affected: affected}, nil
}

// Region returns the 4-connected component containing seed whose pixels
// satisfy match, as a row-major membership mask of length w×h.
func Region(img *image.NRGBA, seed image.Point, match func(color.NRGBA) bool) []bool {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	mask := make([]bool, w*h)
	visited := make([]bool, w*h)

	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			continue
		}
		idx := p.Y*w + p.X
		if visited[idx] {
			continue
		}
		visited[idx] = true

		if !match(raster.At(img, p.X, p.Y)) {
			continue
		}
		mask[idx] = true

		stack = append(stack,
			image.Pt(p.X+1, p.Y),
			image.Pt(p.X-1, p.Y),
			image.Pt(p.X, p.Y+1),
			image.Pt(p.X, p.Y-1),
		)
	}
	return mask
}

// Auto treats the outer border band (10% of each dimension, at least one
// pixel) as background candidates and removes band pixels that are very
// bright or very dark. The interior is never touched.
func Auto(img *image.NRGBA) (Result, error) {
	if err := raster.Require(img); err != nil {
		return Result{}, err
	}

	out := raster.Clone(img)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	bx, by := BorderBand(w, h)

	affected := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= bx && x < w-bx && y >= by && y < h-by {
				continue
			}
			i := out.PixOffset(x, y)
			c := color.NRGBA{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2]}
			b := raster.Brightness(c)
			if b > AutoBrightThreshold || b < AutoDarkThreshold {
				if out.Pix[i+3] != 0 {
					affected++
				}
				out.Pix[i+3] = 0
			}
		}
	}
	return Result{Image: out, Affected: affected}, nil
}

// BorderBand returns the horizontal and vertical border widths Auto uses.
func BorderBand(w, h int) (int, int) {
	bx := int(float64(w) * AutoBorderFraction)
	by := int(float64(h) * AutoBorderFraction)
	if bx < 1 {
		bx = 1
	}
	if by < 1 {
		by = 1
	}
	return bx, by
}

// String implements fmt.Stringer for log output.
func (m Mode) String() string { return string(m) }

// Describe summarises a result for status lines.
func (r Result) Describe() string {
	return fmt.Sprintf("%d pixels removed (%.1f%%)", r.Affected, r.Ratio()*100)
}
