package transform

import (
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

func TestTargetSize(t *testing.T) {
	src := image.Pt(400, 300)

	tests := []struct {
		name string
		opts ResizeOptions
		want image.Point
		code errors.Code
	}{
		{"exact", ResizeOptions{Width: 100, Height: 100}, image.Pt(100, 100), ""},
		{"aspect from width", ResizeOptions{Width: 200, MaintainAspect: true}, image.Pt(200, 150), ""},
		{"aspect from height", ResizeOptions{Height: 150, MaintainAspect: true}, image.Pt(200, 150), ""},
		{"width wins", ResizeOptions{Width: 100, Height: 999, MaintainAspect: true}, image.Pt(100, 75), ""},
		{"rounding", ResizeOptions{Width: 101, MaintainAspect: true}, image.Pt(101, 76), ""},
		{"missing height", ResizeOptions{Width: 100}, image.Point{}, errors.ErrCodeInvalidInput},
		{"nothing", ResizeOptions{MaintainAspect: true}, image.Point{}, errors.ErrCodeInvalidInput},
		{"negative", ResizeOptions{Width: -1, Height: 10}, image.Point{}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TargetSize(src, tt.opts)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("TargetSize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResize(t *testing.T) {
	img := raster.Fill(40, 20, color.NRGBA{R: 255, A: 255})

	out, err := Resize(img, ResizeOptions{Width: 7, Height: 13})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds().Size(); got != image.Pt(7, 13) {
		t.Errorf("size = %v, want 7x13", got)
	}

	out, err = Resize(img, ResizeOptions{Width: 10, MaintainAspect: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds().Size(); got != image.Pt(10, 5) {
		t.Errorf("size = %v, want 10x5", got)
	}

	if _, err := Resize(nil, ResizeOptions{Width: 1, Height: 1}); !errors.Is(err, errors.ErrCodeNoImage) {
		t.Errorf("Resize(nil) = %v, want NO_IMAGE", err)
	}
}

func TestScaleAndFit(t *testing.T) {
	img := raster.Fill(100, 50, color.NRGBA{A: 255})

	out, err := Scale(img, 50)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds().Size(); got != image.Pt(50, 25) {
		t.Errorf("Scale(50%%) = %v", got)
	}
	if _, err := Scale(img, 0); err == nil {
		t.Error("Scale(0) should fail")
	}

	if got := Fit(img, 200, 200).Bounds().Size(); got != image.Pt(100, 50) {
		t.Errorf("Fit should not upscale, got %v", got)
	}
	if got := Fit(img, 20, 0).Bounds().Size(); got != image.Pt(20, 10) {
		t.Errorf("Fit(20, 0) = %v, want 20x10", got)
	}
}

func TestCrop(t *testing.T) {
	img := raster.Fill(10, 10, color.NRGBA{A: 255})
	img.SetNRGBA(5, 5, color.NRGBA{G: 255, A: 255})

	out, err := Crop(img, image.Rect(5, 5, 8, 9))
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds().Size(); got != image.Pt(3, 4) {
		t.Errorf("size = %v, want 3x4", got)
	}
	if got := raster.At(out, 0, 0); got.G != 255 {
		t.Errorf("origin pixel = %v, want the marked pixel", got)
	}

	out, err = Crop(img, image.Rect(8, 8, 20, 20))
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds().Size(); got != image.Pt(2, 2) {
		t.Errorf("clipped size = %v, want 2x2", got)
	}

	if _, err := Crop(img, image.Rect(20, 20, 30, 30)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("outside crop = %v, want INVALID_INPUT", err)
	}
}

func TestCropAspect(t *testing.T) {
	img := raster.Fill(200, 100, color.NRGBA{A: 255})

	tests := []struct {
		w, h float64
		want image.Point
	}{
		{1, 1, image.Pt(100, 100)},
		{4, 1, image.Pt(200, 50)},
		{16, 9, image.Pt(178, 100)},
	}
	for _, tt := range tests {
		out, err := CropAspect(img, tt.w, tt.h)
		if err != nil {
			t.Fatal(err)
		}
		if got := out.Bounds().Size(); got != tt.want {
			t.Errorf("CropAspect(%g:%g) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRotateFlip(t *testing.T) {
	img := raster.Fill(4, 2, color.NRGBA{A: 255})
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	out, err := Rotate(img, 90)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Bounds().Size(); got != image.Pt(2, 4) {
		t.Errorf("rotated size = %v, want 2x4", got)
	}
	// Clockwise: top-left moves to top-right.
	if got := raster.At(out, 1, 0); got.R != 255 {
		t.Errorf("marked pixel not at top-right after 90° cw: %v", got)
	}

	if _, err := Rotate(img, 45); err == nil {
		t.Error("Rotate(45) should fail")
	}

	flipped, _ := Flip(img, true)
	if got := raster.At(flipped, 3, 0); got.R != 255 {
		t.Errorf("FlipH did not mirror: %v", got)
	}
}

func TestCompress(t *testing.T) {
	img := raster.Fill(64, 64, color.NRGBA{R: 120, G: 80, B: 40, A: 255})

	res, err := Compress(img, 100000, CompressOptions{Quality: 50, MaxWidth: 32})
	if err != nil {
		t.Fatal(err)
	}
	if res.Format != raster.FormatJPEG {
		t.Errorf("format = %s, want jpeg", res.Format)
	}
	if res.Width != 32 || res.Height != 32 {
		t.Errorf("size = %dx%d, want 32x32", res.Width, res.Height)
	}
	if res.CompressedSize != len(res.Data) || res.CompressedSize == 0 {
		t.Errorf("CompressedSize = %d, len(Data) = %d", res.CompressedSize, len(res.Data))
	}
	if res.Ratio() <= 0 || res.Ratio() >= 1 {
		t.Errorf("Ratio() = %g", res.Ratio())
	}

	if _, err := Compress(img, 0, CompressOptions{Format: raster.Format("psd")}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("psd compress = %v, want INVALID_FORMAT", err)
	}
	if _, err := Compress(img, 0, CompressOptions{Quality: 101}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("quality 101 = %v, want INVALID_INPUT", err)
	}
}

func TestMerge(t *testing.T) {
	a := raster.Fill(10, 20, color.NRGBA{R: 255, A: 255})
	b := raster.Fill(30, 5, color.NRGBA{B: 255, A: 255})
	c := raster.Fill(4, 4, color.NRGBA{G: 255, A: 255})

	tests := []struct {
		name string
		opts MergeOptions
		want image.Point
	}{
		{"horizontal", MergeOptions{Direction: Horizontal}, image.Pt(44, 20)},
		{"horizontal gap", MergeOptions{Direction: Horizontal, Gap: 2}, image.Pt(48, 20)},
		{"vertical", MergeOptions{Direction: Vertical}, image.Pt(30, 29)},
		{"grid", MergeOptions{Direction: Grid, Columns: 2}, image.Pt(60, 40)},
		{"grid gap", MergeOptions{Direction: Grid, Columns: 3, Gap: 1}, image.Pt(92, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Merge([]*image.NRGBA{a, b, c}, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := out.Bounds().Size(); got != tt.want {
				t.Errorf("size = %v, want %v", got, tt.want)
			}
		})
	}

	out, _ := Merge([]*image.NRGBA{a, b}, MergeOptions{Direction: Horizontal, Background: color.NRGBA{A: 0}})
	if got := raster.At(out, 11, 0); got.B != 255 {
		t.Errorf("second image not placed after first: %v", got)
	}
	if got := raster.At(out, 20, 10); got.A != 0 {
		t.Errorf("padding should be background, got %v", got)
	}

	if _, err := Merge(nil, MergeOptions{}); !errors.Is(err, errors.ErrCodeNoImage) {
		t.Errorf("Merge(nil) = %v, want NO_IMAGE", err)
	}
	if _, err := ParseDirection("diagonal"); err == nil {
		t.Error("ParseDirection(diagonal) should fail")
	}
}
