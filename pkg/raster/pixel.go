package raster

import (
	"image"
	"image/color"
	"math"
)

// At returns the pixel at (x, y) without bounds conversion.
// Coordinates are relative to img.Rect.Min.
func At(img *image.NRGBA, x, y int) color.NRGBA {
	i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	p := img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// ColorDistance is the Euclidean distance between two colours in RGB space.
// Alpha is ignored. The result lies in [0, 441.68].
func ColorDistance(a, b color.NRGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Brightness is the unweighted mean of the colour channels.
func Brightness(c color.NRGBA) float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// ToleranceRadius maps a 0–100 tolerance percentage to a colour-space radius
// on the 0–255 scale.
func ToleranceRadius(tolerance float64) float64 {
	return tolerance * 255 / 100
}

// Clamp8 rounds v and clamps it to a byte.
func Clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

// Fill returns a new w×h buffer filled with c.
func Fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}
