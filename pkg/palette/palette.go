// Package palette extracts dominant colours from images and manages named
// colour palettes: hex formatting, harmony schemes, and JSON/CSS/SVG export.
//
// Colour maths (hex parsing, HSL rotation) uses github.com/lucasb-eyer/go-colorful.
package palette

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

const (
	DefaultCount = 5
	MaxCount     = 32
	// MinAlpha is the alpha below which a pixel does not vote.
	MinAlpha = 128
	// bucketShift reduces each channel to 5 bits.
	bucketShift = 3
)

// Palette is an ordered, named list of colours.
type Palette struct {
	Name      string    `json:"name"`
	Colors    []string  `json:"colors"`
	CreatedAt time.Time `json:"createdAt"`
}

// New builds a palette from hex strings, normalising each to #rrggbb.
func New(name string, hexes []string) (Palette, error) {
	colors := make([]string, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return Palette{}, err
		}
		colors[i] = Hex(c)
	}
	return Palette{Name: name, Colors: colors, CreatedAt: time.Now().UTC()}, nil
}

// Hex formats c as lowercase #rrggbb.
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(opaque(c))
	return cf.Hex()
}

// ParseHex parses #rgb or #rrggbb, with or without the leading '#'.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	cf, err := colorful.Hex("#" + h)
	if err != nil || len(h) != 6 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "invalid hex colour %q", s)
	}
	r, g, b := cf.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 255
	return n
}

// Swatch is one extracted colour with its share of the voting pixels.
type Swatch struct {
	Color color.NRGBA
	Count int
	Share float64
}

// Hex returns the swatch colour as #rrggbb.
func (s Swatch) Hex() string { return Hex(s.Color) }

type bucket struct {
	r, g, b uint64
	n       int
	key     uint16
}

// Extract returns up to n dominant colours of img. Pixels are quantised to
// 5 bits per channel; each bucket reports the average colour of its
// members. Buckets are ordered by population, ties by bucket key.
func Extract(img *image.NRGBA, n int) ([]Swatch, error) {
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if n == 0 {
		n = DefaultCount
	}
	if n < 0 || n > MaxCount {
		return nil, errors.New(errors.ErrCodeInvalidInput, "colour count must be between 1 and %d, got %d", MaxCount, n)
	}

	buckets := map[uint16]*bucket{}
	total := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] < MinAlpha {
			continue
		}
		r, g, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
		key := uint16(r>>bucketShift)<<10 | uint16(g>>bucketShift)<<5 | uint16(b>>bucketShift)
		bk := buckets[key]
		if bk == nil {
			bk = &bucket{key: key}
			buckets[key] = bk
		}
		bk.r += uint64(r)
		bk.g += uint64(g)
		bk.b += uint64(b)
		bk.n++
		total++
	}
	if total == 0 {
		return nil, errors.New(errors.ErrCodeNoImage, "image has no opaque pixels")
	}

	list := make([]*bucket, 0, len(buckets))
	for _, bk := range buckets {
		list = append(list, bk)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].n != list[j].n {
			return list[i].n > list[j].n
		}
		return list[i].key < list[j].key
	})

	out := make([]Swatch, 0, min(n, len(list)))
	for _, bk := range list[:min(n, len(list))] {
		cnt := uint64(bk.n)
		out = append(out, Swatch{
			Color: color.NRGBA{
				R: uint8((bk.r + cnt/2) / cnt),
				G: uint8((bk.g + cnt/2) / cnt),
				B: uint8((bk.b + cnt/2) / cnt),
				A: 255,
			},
			Count: bk.n,
			Share: float64(bk.n) / float64(total),
		})
	}
	return out, nil
}

// FromSwatches turns extracted swatches into a named palette.
func FromSwatches(name string, swatches []Swatch) Palette {
	colors := make([]string, len(swatches))
	for i, s := range swatches {
		colors[i] = s.Hex()
	}
	return Palette{Name: name, Colors: colors, CreatedAt: time.Now().UTC()}
}

// Random returns n pleasant colours. The same seed yields the same palette.
func Random(n int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	out := make([]string, n)
	for i := range out {
		c := colorful.Hsv(rng.Float64()*360, 0.45+rng.Float64()*0.4, 0.6+rng.Float64()*0.35)
		out[i] = c.Clamped().Hex()
	}
	return out
}

// Scheme names a colour harmony.
type Scheme string

const (
	Complementary Scheme = "complementary"
	Analogous     Scheme = "analogous"
	Triadic       Scheme = "triadic"
	Monochrome    Scheme = "monochrome"
)

// Harmony derives a scheme from base. The base colour is always first.
func Harmony(base string, scheme Scheme) ([]string, error) {
	b, err := ParseHex(base)
	if err != nil {
		return nil, err
	}
	cf, _ := colorful.MakeColor(b)
	h, s, l := cf.Hsl()

	rotate := func(deg ...float64) []string {
		out := make([]string, len(deg))
		for i, d := range deg {
			if d == 0 {
				out[i] = cf.Hex()
				continue
			}
			out[i] = colorful.Hsl(math.Mod(h+d+360, 360), s, l).Clamped().Hex()
		}
		return out
	}

	switch scheme {
	case Complementary:
		return rotate(0, 180), nil
	case Analogous:
		return rotate(0, -30, 30), nil
	case Triadic:
		return rotate(0, 120, 240), nil
	case Monochrome:
		out := []string{cf.Hex()}
		for _, dl := range []float64{-0.3, -0.15, 0.15, 0.3} {
			out = append(out, colorful.Hsl(h, s, math.Max(0, math.Min(1, l+dl))).Clamped().Hex())
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown harmony %q (must be complementary, analogous, triadic or monochrome)", scheme)
	}
}
