package pdfdoc

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/deskkit/internal/pdftest"
	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/watermark"
)

func TestPageCount(t *testing.T) {
	n, err := PageCount(bytes.NewReader(pdftest.Document("a", "b", "c")))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("PageCount = %d, want 3", n)
	}

	if _, err := PageCount(strings.NewReader("not a pdf")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("garbage = %v, want INVALID_FORMAT", err)
	}
}

func TestMerge(t *testing.T) {
	inputs := []io.ReadSeeker{
		bytes.NewReader(pdftest.Document("one")),
		bytes.NewReader(pdftest.Document("two", "three")),
	}
	var out bytes.Buffer
	if err := Merge(context.Background(), inputs, &out); err != nil {
		t.Fatal(err)
	}
	n, err := PageCount(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("merged page count = %d, want 3", n)
	}

	if err := Merge(context.Background(), nil, &out); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty merge = %v, want INVALID_INPUT", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Merge(ctx, inputs, &out); err == nil {
		t.Error("cancelled merge should fail")
	}
}

func TestMergeFiles(t *testing.T) {
	a := pdftest.WriteFile(t, "a.pdf", "1", "2")
	b := pdftest.WriteFile(t, "b.pdf", "3")
	out := filepath.Join(t.TempDir(), "nested", "merged.pdf")

	if err := MergeFiles(context.Background(), []string{a, b}, out); err != nil {
		t.Fatal(err)
	}
	n, err := PageCountFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("page count = %d, want 3", n)
	}

	err = MergeFiles(context.Background(), []string{a, "/nonexistent.pdf"}, out)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input = %v, want FILE_NOT_FOUND", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"text ok", Options{Text: "DRAFT"}, ""},
		{"neither", Options{}, errors.ErrCodeInvalidInput},
		{"both", Options{Text: "x", ImagePath: "y.png"}, errors.ErrCodeInvalidInput},
		{"bad anchor", Options{Text: "x", Anchor: "north"}, errors.ErrCodeInvalidAnchor},
		{"bad opacity", Options{Text: "x", Opacity: 1.5}, errors.ErrCodeInvalidInput},
		{"negative margin", Options{Text: "x", Margin: -1}, errors.ErrCodeInvalidInput},
		{"missing image", Options{ImagePath: "/nonexistent.png"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	o := Options{Text: "CONFIDENTIAL", Anchor: watermark.BottomRight, Margin: DefaultMargin}
	if err := o.Validate(); err != nil {
		t.Fatal(err)
	}
	d := o.Description()
	for _, want := range []string{"pos:br", "off:-36 36", "op:0.3", "points:48", "fillc:#808080"} {
		if !strings.Contains(d, want) {
			t.Errorf("description %q missing %q", d, want)
		}
	}

	o = Options{Text: "x"}
	_ = o.Validate()
	if d := o.Description(); !strings.Contains(d, "pos:c") || !strings.Contains(d, "off:0 0") {
		t.Errorf("centred description = %q", d)
	}
}

func TestDescriptionParses(t *testing.T) {
	mark := filepath.Join(t.TempDir(), "mark.png")
	f, err := os.Create(mark)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	tests := []struct {
		name string
		opts Options
	}{
		{"text", Options{Text: "DRAFT", Anchor: watermark.BottomRight}},
		{"image", Options{ImagePath: mark, Anchor: watermark.TopLeft, Scale: 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(tt.opts.Description(), "scale:") {
				t.Errorf("description %q has no scale", tt.opts.Description())
			}
			if _, err := tt.opts.build(); err != nil {
				t.Errorf("build() = %v", err)
			}
		})
	}
}

func TestWatermark(t *testing.T) {
	src := pdftest.Document("page one", "page two")

	var out bytes.Buffer
	err := Watermark(bytes.NewReader(src), &out, Options{Text: "DRAFT", Anchor: watermark.TopLeft})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() <= len(src) {
		t.Errorf("watermarked output (%d bytes) not larger than input (%d bytes)", out.Len(), len(src))
	}
	n, err := PageCount(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("page count = %d, want 2", n)
	}
}

func TestWatermarkFile(t *testing.T) {
	in := pdftest.WriteFile(t, "in.pdf", "hello")
	out := filepath.Join(t.TempDir(), "out.pdf")

	if err := WatermarkFile(in, out, Options{Text: "COPY", Anchor: watermark.Center, Pages: []string{"1"}}); err != nil {
		t.Fatal(err)
	}
	if n, err := PageCountFile(out); err != nil || n != 1 {
		t.Errorf("PageCountFile = %d, %v", n, err)
	}

	if err := WatermarkFile(in, out, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty options = %v, want INVALID_INPUT", err)
	}
}
