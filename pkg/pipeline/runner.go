package pipeline

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/observability"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// Identity returns its input; use it to encode an image built elsewhere.
func Identity(img *image.NRGBA) (*image.NRGBA, error) { return img, nil }

// Runner executes steps. It holds no per-run state, so one Runner can serve
// concurrent runs.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Run applies step to img and encodes the result. Nothing is written to disk.
func (r *Runner) Run(ctx context.Context, img *image.NRGBA, opts Options, step Step) (res *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := raster.Require(img); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if step == nil {
		step = Identity
	}

	hooks := observability.Tool()
	start := time.Now()
	hooks.OnToolStart(ctx, opts.Tool)
	defer func() {
		var stats observability.ToolStats
		if res != nil {
			stats = observability.ToolStats{Width: res.Stats.Width, Height: res.Stats.Height, Bytes: res.Stats.Bytes}
		}
		hooks.OnToolComplete(ctx, opts.Tool, stats, time.Since(start), err)
	}()

	out, err := step(img)
	if err != nil {
		return nil, err
	}
	if err := raster.Require(out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s produced no image", opts.Tool)
	}

	data, err := raster.EncodeBytes(out, raster.EncodeOptions{Format: opts.Format, Quality: opts.Quality})
	if err != nil {
		return nil, err
	}

	b := out.Bounds()
	res = &Result{
		Image:  out,
		Data:   data,
		Format: opts.Format,
		Stats: Stats{
			Width:    b.Dx(),
			Height:   b.Dy(),
			Duration: time.Since(start),
			Bytes:    len(data),
		},
	}
	r.logger().Debug("ran tool",
		"tool", opts.Tool,
		"size", b.Size(),
		"format", opts.Format,
		"bytes", len(data),
		"duration", res.Stats.Duration)
	return res, nil
}

// RunFile loads opts.Input, runs step and writes the encoded result to
// opts.Output (derived from the input name when empty).
func (r *Runner) RunFile(ctx context.Context, opts Options, step Step) (*Result, error) {
	if opts.Input == "" {
		return nil, errors.New(errors.ErrCodeNoImage, "no input image given")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	img, _, err := raster.Load(opts.Input)
	if err != nil {
		return nil, err
	}
	res, err := r.Run(ctx, img, opts, step)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(opts.Output, res.Data); err != nil {
		return nil, err
	}
	res.Output = opts.Output
	r.logger().Info("wrote output", "tool", opts.Tool, "path", opts.Output, "bytes", res.Stats.Bytes)
	return res, nil
}

// WriteFile writes data to path through a temporary file, creating parent
// directories as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".deskkit-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
