// Package fonts provides the fonts used for raster text and SVG labels.
//
// The Go font family ships inside golang.org/x/image, so the fonts are
// compiled into the binary without external files. Parsed fonts are cached
// after first use.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name used when the regular face is
// embedded into SVG output.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers that ignore embedded fonts.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// Weight selects a face from the family.
type Weight int

const (
	Regular Weight = iota
	Bold
)

var (
	parseOnce [2]sync.Once
	parsed    [2]*opentype.Font
	parseErr  [2]error
)

// TTF returns the raw TrueType data for w.
func TTF(w Weight) []byte {
	if w == Bold {
		return gobold.TTF
	}
	return goregular.TTF
}

// Font returns the parsed font for w.
func Font(w Weight) (*opentype.Font, error) {
	i := int(w)
	if i < 0 || i >= len(parsed) {
		i = int(Regular)
	}
	parseOnce[i].Do(func() {
		parsed[i], parseErr[i] = opentype.Parse(TTF(Weight(i)))
	})
	return parsed[i], parseErr[i]
}

// Face returns a drawable face of the given point size at 72 DPI, so that
// size equals the pixel height of the em square.
func Face(w Weight, size float64) (font.Face, error) {
	f, err := Font(w)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// RegularBase64 returns the regular TTF as a base64 string for @font-face
// embedding. The result is cached after first computation.
func RegularBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}
