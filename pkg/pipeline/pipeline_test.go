package pipeline

import (
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/observability"
	"github.com/matzehuels/deskkit/pkg/raster"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }

func TestOutputName(t *testing.T) {
	tests := []struct {
		input  string
		tool   string
		format raster.Format
		want   string
	}{
		{"photo.jpg", "resize", raster.FormatJPEG, "photo_resize_20240309-140507.jpg"},
		{"dir/scan.tiff", "bgremove", raster.FormatPNG, filepath.Join("dir", "scan_bgremove_20240309-140507.png")},
		{"a.b.png", "compress", raster.FormatWebP, "a.b_compress_20240309-140507.webp"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := OutputName(tt.input, tt.tool, tt.format, fixedNow()); got != tt.want {
				t.Errorf("OutputName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantFormat raster.Format
		wantCode   errors.Code
	}{
		{"format from output", Options{Tool: "x", Input: "a.png", Output: "b.jpg"}, raster.FormatJPEG, ""},
		{"format from input", Options{Tool: "x", Input: "a.webp"}, raster.FormatWebP, ""},
		{"unknown input extension", Options{Tool: "x", Input: "a.psd"}, DefaultFormat, ""},
		{"explicit format", Options{Tool: "x", Input: "a.png", Format: raster.FormatBMP}, raster.FormatBMP, ""},
		{"no paths", Options{Tool: "x"}, DefaultFormat, ""},
		{"missing tool", Options{Input: "a.png"}, "", errors.ErrCodeInvalidInput},
		{"bad quality", Options{Tool: "x", Quality: 101}, "", errors.ErrCodeInvalidInput},
		{"unwritable format", Options{Tool: "x", Format: raster.Format("psd")}, "", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Now = fixedNow
			err := opts.ValidateAndSetDefaults()
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if opts.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", opts.Format, tt.wantFormat)
			}
			if opts.Quality != DefaultQuality {
				t.Errorf("Quality = %d", opts.Quality)
			}
			if opts.Input != "" && opts.Output == "" {
				t.Error("Output not derived")
			}
		})
	}
}

func solid(w, h int) *image.NRGBA {
	return raster.Fill(w, h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
}

type recordingHooks struct {
	observability.NoopToolHooks
	started   []string
	completed []observability.ToolStats
	errs      []error
}

func (h *recordingHooks) OnToolStart(_ context.Context, tool string) {
	h.started = append(h.started, tool)
}

func (h *recordingHooks) OnToolComplete(_ context.Context, _ string, s observability.ToolStats, _ time.Duration, err error) {
	h.completed = append(h.completed, s)
	h.errs = append(h.errs, err)
}

func TestRun(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetToolHooks(hooks)
	defer observability.Reset()

	r := NewRunner(log.New(io.Discard))
	half := func(img *image.NRGBA) (*image.NRGBA, error) {
		return solid(img.Bounds().Dx()/2, img.Bounds().Dy()/2), nil
	}
	res, err := r.Run(context.Background(), solid(40, 20), Options{Tool: "half", Format: raster.FormatPNG}, half)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Width != 20 || res.Stats.Height != 10 || res.Stats.Bytes != len(res.Data) {
		t.Errorf("Stats = %+v", res.Stats)
	}
	decoded, format, err := raster.DecodeBytes(res.Data)
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	if format != raster.FormatPNG || decoded.Bounds().Dx() != 20 {
		t.Errorf("decoded %v as %q", decoded.Bounds(), format)
	}
	if len(hooks.started) != 1 || hooks.started[0] != "half" || hooks.completed[0].Width != 20 || hooks.errs[0] != nil {
		t.Errorf("hooks = %+v", hooks)
	}
}

func TestRunErrors(t *testing.T) {
	r := NewRunner(log.New(io.Discard))
	ctx := context.Background()

	if _, err := r.Run(ctx, nil, Options{Tool: "x"}, Identity); !errors.Is(err, errors.ErrCodeNoImage) {
		t.Errorf("nil image = %v, want NO_IMAGE", err)
	}

	stepErr := errors.New(errors.ErrCodeInvalidInput, "bad width")
	failing := func(*image.NRGBA) (*image.NRGBA, error) { return nil, stepErr }
	if _, err := r.Run(ctx, solid(2, 2), Options{Tool: "x"}, failing); err != stepErr {
		t.Errorf("step error = %v, want passthrough", err)
	}

	empty := func(*image.NRGBA) (*image.NRGBA, error) { return image.NewNRGBA(image.Rect(0, 0, 0, 0)), nil }
	if _, err := r.Run(ctx, solid(2, 2), Options{Tool: "x"}, empty); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("empty output = %v, want INTERNAL_ERROR", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Run(cctx, solid(2, 2), Options{Tool: "x"}, Identity); err != context.Canceled {
		t.Errorf("cancelled = %v", err)
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "pic.png")
	if err := raster.Save(in, solid(8, 8), raster.EncodeOptions{}); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(log.New(io.Discard))
	res, err := r.RunFile(context.Background(), Options{Tool: "copy", Input: in, Format: raster.FormatJPEG, Now: fixedNow}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "pic_copy_20240309-140507.jpg")
	if res.Output != want {
		t.Errorf("Output = %q, want %q", res.Output, want)
	}
	if _, format, err := raster.Load(want); err != nil || format != raster.FormatJPEG {
		t.Errorf("written file: %v %v", format, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("temporary files left behind: %v", entries)
	}

	if _, err := r.RunFile(context.Background(), Options{Tool: "copy"}, nil); !errors.Is(err, errors.ErrCodeNoImage) {
		t.Errorf("no input = %v, want NO_IMAGE", err)
	}
	if _, err := r.RunFile(context.Background(), Options{Tool: "copy", Input: filepath.Join(dir, "gone.png")}, nil); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input = %v, want FILE_NOT_FOUND", err)
	}
}
