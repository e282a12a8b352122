package idphoto

import (
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

func TestPixelSize(t *testing.T) {
	tests := []struct {
		preset string
		dpi    int
		want   image.Point
	}{
		{"1inch", 300, image.Pt(295, 413)},
		{"passport", 300, image.Pt(413, 531)},
		{"visa-us", 300, image.Pt(602, 602)},
		{"2inch", 600, image.Pt(827, 1157)},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			p, err := LookupPreset(tt.preset)
			if err != nil {
				t.Fatal(err)
			}
			if got := PixelSize(p.WidthMM, p.HeightMM, tt.dpi); got != tt.want {
				t.Errorf("PixelSize(%s @ %d) = %v, want %v", tt.preset, tt.dpi, got, tt.want)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	ps := Presets()
	if len(ps) != 5 {
		t.Fatalf("len(Presets()) = %d, want 5", len(ps))
	}
	for i := 1; i < len(ps); i++ {
		if ps[i-1].Name >= ps[i].Name {
			t.Errorf("presets not sorted: %s before %s", ps[i-1].Name, ps[i].Name)
		}
	}
	if _, err := LookupPreset("poster"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("LookupPreset(poster) = %v, want INVALID_INPUT", err)
	}
}

func portrait() *image.NRGBA {
	img := raster.Fill(200, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for y := 30; y < 70; y++ {
		for x := 80; x < 120; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	return img
}

func TestMake(t *testing.T) {
	photo, err := Make(portrait(), Options{WidthMM: 10, HeightMM: 10, DPI: 254})
	if err != nil {
		t.Fatal(err)
	}
	if got := photo.Bounds().Size(); got != image.Pt(100, 100) {
		t.Errorf("size = %v, want 100x100", got)
	}

	blue := color.NRGBA{B: 255, A: 255}
	photo, err = Make(portrait(), Options{WidthMM: 10, HeightMM: 10, DPI: 254, ReplaceBackground: true, Background: blue, Tolerance: DefaultTolerance})
	if err != nil {
		t.Fatal(err)
	}
	if got := raster.At(photo, 0, 0); got != blue {
		t.Errorf("corner = %v, want replaced backdrop %v", got, blue)
	}
	if got := raster.At(photo, 50, 50); got.R > 10 || got.B > 10 || got.A != 255 {
		t.Errorf("subject = %v, want opaque black", got)
	}

	if _, err := Make(portrait(), Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Make without size = %v, want INVALID_INPUT", err)
	}
	if _, err := Make(nil, Options{Preset: "1inch"}); !errors.Is(err, errors.ErrCodeNoImage) {
		t.Errorf("Make(nil) = %v, want NO_IMAGE", err)
	}
}

func TestMakeToleranceBoundaries(t *testing.T) {
	// backdrop white, subject off-white at distance ≈17.3
	img := raster.Fill(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	for y := 30; y < 70; y++ {
		for x := 30; x < 70; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 245, G: 245, B: 245, A: 255})
		}
	}
	blue := color.NRGBA{B: 255, A: 255}

	tests := []struct {
		tolerance float64
		wantBlue  bool
	}{
		{0, false},
		{100, true},
	}
	for _, tt := range tests {
		photo, err := Make(img, Options{WidthMM: 10, HeightMM: 10, DPI: 254, ReplaceBackground: true, Background: blue, Tolerance: tt.tolerance})
		if err != nil {
			t.Fatal(err)
		}
		if got := raster.At(photo, 0, 0); got != blue {
			t.Errorf("tolerance %v: corner = %v, want %v", tt.tolerance, got, blue)
		}
		if got := raster.At(photo, 50, 50); (got == blue) != tt.wantBlue {
			t.Errorf("tolerance %v: centre = %v, replaced = %v, want %v", tt.tolerance, got, got == blue, tt.wantBlue)
		}
	}
}

func TestSheet(t *testing.T) {
	photo, err := Make(portrait(), Options{Preset: "1inch", DPI: 100})
	if err != nil {
		t.Fatal(err)
	}
	if got := photo.Bounds().Size(); got != image.Pt(98, 138) {
		t.Fatalf("photo size = %v, want 98x138", got)
	}

	sheet, n, err := Sheet(photo, SheetOptions{DPI: 100})
	if err != nil {
		t.Fatal(err)
	}
	if got := sheet.Bounds().Size(); got != image.Pt(600, 400) {
		t.Errorf("sheet size = %v, want 600x400", got)
	}
	if n != 10 {
		t.Errorf("copies = %d, want 10 (5 columns x 2 rows)", n)
	}

	if _, _, err := Sheet(photo, SheetOptions{PaperWidthMM: 20, PaperHeightMM: 20, DPI: 100}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("oversized photo = %v, want INVALID_INPUT", err)
	}
}

func TestFitCount(t *testing.T) {
	tests := []struct {
		avail, n, gap, want int
	}{
		{100, 10, 0, 10},
		{100, 10, 5, 7},
		{9, 10, 0, 0},
		{10, 10, 99, 1},
	}
	for _, tt := range tests {
		if got := fitCount(tt.avail, tt.n, tt.gap); got != tt.want {
			t.Errorf("fitCount(%d, %d, %d) = %d, want %d", tt.avail, tt.n, tt.gap, got, tt.want)
		}
	}
}
