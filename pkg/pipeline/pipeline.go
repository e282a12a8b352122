// Package pipeline runs the decode → tool → encode sequence shared by the
// image commands.
//
// A tool is a Step: a function from one NRGBA buffer to another. The Runner
// loads the input, applies the step, encodes the result in the requested
// format and reports timing and size through the observability hooks.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Tool:   "resize",
//	    Input:  "photo.jpg",
//	    Format: raster.FormatWebP,
//	}
//	result, err := runner.RunFile(ctx, opts, func(img *image.NRGBA) (*image.NRGBA, error) {
//	    return transform.Resize(img, transform.ResizeOptions{Width: 800, MaintainAspect: true})
//	})
//	fmt.Println(result.Output, result.Stats.Bytes)
package pipeline

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is used when neither the output path nor the input
	// decides the format.
	DefaultFormat = raster.FormatPNG

	// DefaultQuality is the lossy encoder quality.
	DefaultQuality = raster.DefaultJPEGQuality

	// TimestampLayout is the timestamp embedded in generated output names.
	TimestampLayout = "20060102-150405"
)

// Step transforms one image into another.
type Step func(*image.NRGBA) (*image.NRGBA, error)

// =============================================================================
// Options
// =============================================================================

// Options configures a single run.
type Options struct {
	Tool    string        `json:"tool"`
	Input   string        `json:"input,omitempty"`
	Output  string        `json:"output,omitempty"`
	Format  raster.Format `json:"format,omitempty"`
	Quality int           `json:"quality,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the outcome of a run.
type Result struct {
	Image  *image.NRGBA
	Data   []byte
	Format raster.Format
	// Output is the written path; empty for in-memory runs.
	Output string
	Stats  Stats
}

// Stats contains timing and size information.
type Stats struct {
	Width    int
	Height   int
	Duration time.Duration
	Bytes    int
}

// ValidateAndSetDefaults checks required fields and fills in the format,
// quality and output name. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if strings.TrimSpace(o.Tool) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "tool is required")
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be between 1 and 100, got %d", o.Quality)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	if o.Format == "" {
		o.Format = o.inferFormat()
	}
	if !o.Format.CanEncode() {
		return errors.New(errors.ErrCodeInvalidFormat, "cannot write %s images", o.Format)
	}
	if o.Output == "" && o.Input != "" {
		o.Output = OutputName(o.Input, o.Tool, o.Format, o.Now())
	}
	o.validated = true
	return nil
}

// inferFormat picks the output path extension, then the input extension,
// then DefaultFormat. Unknown extensions fall back to the default.
func (o *Options) inferFormat() raster.Format {
	for _, p := range []string{o.Output, o.Input} {
		if p == "" {
			continue
		}
		if f, err := raster.FormatFromPath(p); err == nil && f.CanEncode() {
			return f
		}
	}
	return DefaultFormat
}

// OutputName derives "<base>_<tool>_<timestamp>.<ext>" next to input.
func OutputName(input, tool string, format raster.Format, t time.Time) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_%s_%s%s", base, tool, t.Format(TimestampLayout), format.Extension())
	return filepath.Join(filepath.Dir(input), name)
}
