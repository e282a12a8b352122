// Package idphoto sizes portrait photos to standard ID formats and lays them
// out on printable sheets.
//
// Sizes are physical (millimetres) and converted to pixels at a DPI:
//
//	px = round(mm / 25.4 × dpi)
//
// A photo is produced by centre-cropping the source to the target aspect,
// scaling it to the pixel size and optionally replacing the backdrop with a
// solid colour.
package idphoto

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/deskkit/pkg/bgremove"
	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
	"github.com/matzehuels/deskkit/pkg/transform"
)

const (
	DefaultDPI           = 300
	DefaultTolerance     = 25
	DefaultPaperWidthMM  = 152.4 // 6 in
	DefaultPaperHeightMM = 101.6 // 4 in
	DefaultSheetGapMM    = 2
	DefaultSheetMarginMM = 3
	mmPerInch            = 25.4
)

// Preset is a named physical photo size.
type Preset struct {
	Name     string
	WidthMM  float64
	HeightMM float64
}

var presets = map[string]Preset{
	"1inch":       {"1inch", 25, 35},
	"2inch":       {"2inch", 35, 49},
	"passport":    {"passport", 35, 45},
	"visa-us":     {"visa-us", 51, 51},
	"small-2inch": {"small-2inch", 33, 48},
}

// Presets returns all presets sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset finds a preset by name.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeInvalidInput, "unknown ID photo preset %q", name)
	}
	return p, nil
}

// MMToPixels converts a physical length to pixels at dpi.
func MMToPixels(mm float64, dpi int) int {
	return int(math.Round(mm / mmPerInch * float64(dpi)))
}

// PixelSize converts a physical size to pixel dimensions at dpi.
func PixelSize(widthMM, heightMM float64, dpi int) image.Point {
	return image.Pt(MMToPixels(widthMM, dpi), MMToPixels(heightMM, dpi))
}

// Options configures Make. When Preset is empty, WidthMM and HeightMM are
// used directly. Tolerance is used as given; DefaultTolerance suits most
// plain backdrops.
type Options struct {
	Preset            string
	WidthMM           float64
	HeightMM          float64
	DPI               int
	Background        color.NRGBA
	ReplaceBackground bool
	Tolerance         float64
}

func (o *Options) resolve() error {
	if o.Preset != "" {
		p, err := LookupPreset(o.Preset)
		if err != nil {
			return err
		}
		o.WidthMM, o.HeightMM = p.WidthMM, p.HeightMM
	}
	if o.WidthMM <= 0 || o.HeightMM <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "photo size must be positive (got %gx%g mm)", o.WidthMM, o.HeightMM)
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be positive")
	}
	return nil
}

// Make produces a single ID photo.
func Make(img *image.NRGBA, opts Options) (*image.NRGBA, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if err := opts.resolve(); err != nil {
		return nil, err
	}

	cropped, err := transform.CropAspect(img, opts.WidthMM, opts.HeightMM)
	if err != nil {
		return nil, err
	}
	size := PixelSize(opts.WidthMM, opts.HeightMM, opts.DPI)
	photo := imaging.Resize(cropped, size.X, size.Y, imaging.Lanczos)

	if !opts.ReplaceBackground {
		return photo, nil
	}

	// The top-left corner of a portrait is assumed to be backdrop.
	keyed, err := bgremove.ChromaKey(photo, raster.At(photo, 0, 0), opts.Tolerance)
	if err != nil {
		return nil, err
	}
	bg := opts.Background
	if bg.A == 0 {
		bg = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	canvas := imaging.New(size.X, size.Y, bg)
	return imaging.Overlay(canvas, keyed.Image, image.Pt(0, 0), 1.0), nil
}

// SheetOptions configures Sheet. Zero values take the 6×4 in defaults.
type SheetOptions struct {
	PaperWidthMM  float64
	PaperHeightMM float64
	DPI           int
	GapMM         float64
	MarginMM      float64
	Background    color.NRGBA
}

func (o *SheetOptions) setDefaults() {
	if o.PaperWidthMM == 0 {
		o.PaperWidthMM = DefaultPaperWidthMM
	}
	if o.PaperHeightMM == 0 {
		o.PaperHeightMM = DefaultPaperHeightMM
	}
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.GapMM == 0 {
		o.GapMM = DefaultSheetGapMM
	}
	if o.MarginMM == 0 {
		o.MarginMM = DefaultSheetMarginMM
	}
	if o.Background.A == 0 {
		o.Background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// Sheet tiles as many copies of photo as fit on the paper. It returns the
// sheet and the number of copies placed.
func Sheet(photo *image.NRGBA, opts SheetOptions) (*image.NRGBA, int, error) {
	if err := raster.Require(photo); err != nil {
		return nil, 0, err
	}
	opts.setDefaults()

	paper := PixelSize(opts.PaperWidthMM, opts.PaperHeightMM, opts.DPI)
	gap := MMToPixels(opts.GapMM, opts.DPI)
	margin := MMToPixels(opts.MarginMM, opts.DPI)
	pw, ph := photo.Bounds().Dx(), photo.Bounds().Dy()

	cols := fitCount(paper.X-2*margin, pw, gap)
	rows := fitCount(paper.Y-2*margin, ph, gap)
	if cols == 0 || rows == 0 {
		return nil, 0, errors.New(errors.ErrCodeInvalidInput, "a %dx%d px photo does not fit on a %dx%d px sheet", pw, ph, paper.X, paper.Y)
	}

	// Centre the grid on the paper.
	gridW := cols*pw + (cols-1)*gap
	gridH := rows*ph + (rows-1)*gap
	x0 := (paper.X - gridW) / 2
	y0 := (paper.Y - gridH) / 2

	sheet := imaging.New(paper.X, paper.Y, opts.Background)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pt := image.Pt(x0+c*(pw+gap), y0+r*(ph+gap))
			sheet = imaging.Paste(sheet, photo, pt)
		}
	}
	return sheet, rows * cols, nil
}

// fitCount returns how many items of size n separated by gap fit in avail.
func fitCount(avail, n, gap int) int {
	if avail < n || n <= 0 {
		return 0
	}
	return (avail + gap) / (n + gap)
}
