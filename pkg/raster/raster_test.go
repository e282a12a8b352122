package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/matzehuels/deskkit/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{".PNG", FormatPNG, false},
		{"jpg", FormatJPEG, false},
		{"jpeg", FormatJPEG, false},
		{"tif", FormatTIFF, false},
		{"webp", FormatWebP, false},
		{"tga", "", true},
		{"psd", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %v, want INVALID_FORMAT", errors.GetCode(err))
			}
		})
	}
}

func TestFormatExtension(t *testing.T) {
	if FormatJPEG.Extension() != ".jpg" {
		t.Errorf("JPEG extension = %q", FormatJPEG.Extension())
	}
	if FormatPNG.Extension() != ".png" {
		t.Errorf("PNG extension = %q", FormatPNG.Extension())
	}
	if Format("psd").CanEncode() {
		t.Error("unknown format should not be encodable")
	}
}

func TestRequire(t *testing.T) {
	if err := Require(nil); !errors.Is(err, errors.ErrCodeNoImage) {
		t.Errorf("Require(nil) = %v, want NO_IMAGE", err)
	}
	if err := Require(image.NewNRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, errors.ErrCodeNoImage) {
		t.Errorf("Require(empty) = %v, want NO_IMAGE", err)
	}
	if err := Require(image.NewNRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Errorf("Require(1x1) = %v", err)
	}
}

func TestEncodeDecodeFormats(t *testing.T) {
	src := Fill(8, 6, color.NRGBA{R: 200, G: 10, B: 10, A: 255})

	for _, f := range []Format{FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatWebP} {
		t.Run(string(f), func(t *testing.T) {
			data, err := EncodeBytes(src, EncodeOptions{Format: f, Quality: 90})
			if err != nil {
				t.Fatalf("EncodeBytes: %v", err)
			}
			img, got, err := DecodeBytes(data)
			if err != nil {
				t.Fatalf("DecodeBytes: %v", err)
			}
			if got != f {
				t.Errorf("decoded format = %q, want %q", got, f)
			}
			if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
				t.Errorf("decoded size = %v", img.Bounds())
			}
		})
	}
}

func TestDecodeStdlibEncoded(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
		want   Format
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, src) }, FormatPNG},
		{"jpeg", func(b *bytes.Buffer) error { return jpeg.Encode(b, src, nil) }, FormatJPEG},
		{"gif", func(b *bytes.Buffer) error { return gif.Encode(b, src, nil) }, FormatGIF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatal(err)
			}
			img, f, err := DecodeBytes(buf.Bytes())
			if err != nil {
				t.Fatalf("DecodeBytes: %v", err)
			}
			if f != tt.want {
				t.Errorf("format = %q, want %q", f, tt.want)
			}
			if img.Bounds() != image.Rect(0, 0, 4, 4) {
				t.Errorf("bounds = %v", img.Bounds())
			}
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not an image")))
	if !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("Decode(garbage) = %v, want INVALID_IMAGE", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.png")
	src := Fill(3, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 128})

	if err := Save(path, src, EncodeOptions{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	img, f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f != FormatPNG {
		t.Errorf("format = %q", f)
	}
	if got := At(img, 2, 1); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 128}) {
		t.Errorf("pixel = %v", got)
	}

	if err := Save(filepath.Join(dir, "out.tga"), src, EncodeOptions{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Save(.tga) = %v, want INVALID_FORMAT", err)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestColorDistance(t *testing.T) {
	black := color.NRGBA{A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	if d := ColorDistance(black, black); d != 0 {
		t.Errorf("distance to self = %v", d)
	}
	want := math.Sqrt(3 * 255 * 255)
	if d := ColorDistance(black, white); math.Abs(d-want) > 1e-9 {
		t.Errorf("black/white distance = %v, want %v", d, want)
	}
	// alpha is ignored
	if d := ColorDistance(black, color.NRGBA{}); d != 0 {
		t.Errorf("alpha should not contribute, got %v", d)
	}
}

func TestToleranceRadius(t *testing.T) {
	tests := []struct {
		tolerance, want float64
	}{
		{0, 0}, {50, 127.5}, {100, 255},
	}
	for _, tt := range tests {
		if r := ToleranceRadius(tt.tolerance); r != tt.want {
			t.Errorf("ToleranceRadius(%v) = %v, want %v", tt.tolerance, r, tt.want)
		}
	}

	// black sits exactly 255 from pure red
	red := color.NRGBA{R: 255, A: 255}
	black := color.NRGBA{A: 255}
	if d := ColorDistance(red, black); d > ToleranceRadius(100) {
		t.Errorf("distance %v exceeds full radius %v", d, ToleranceRadius(100))
	}
}

func TestClamp8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-10, 0}, {0, 0}, {12.4, 12}, {12.5, 13}, {254.6, 255}, {300, 255},
	}
	for _, tt := range tests {
		if got := Clamp8(tt.in); got != tt.want {
			t.Errorf("Clamp8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
