package cli

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/adjust"
	"github.com/matzehuels/deskkit/pkg/bgremove"
	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/pipeline"
	"github.com/matzehuels/deskkit/pkg/raster"
	"github.com/matzehuels/deskkit/pkg/transform"
)

// runImage loads input, applies step and writes the encoded result.
func (c *CLI) runImage(ctx context.Context, tool, input string, out outputFlags, step pipeline.Step) (*pipeline.Result, error) {
	opts, err := c.imageOptions(tool, input, out)
	if err != nil {
		return nil, err
	}
	res, err := c.newRunner().RunFile(c.commandContext(ctx), opts, step)
	if err != nil {
		return nil, err
	}
	printSuccess("%s", tool)
	printStats(res.Stats.Width, res.Stats.Height, res.Stats.Bytes)
	printFile(res.Output)
	return res, nil
}

// =============================================================================
// bgremove
// =============================================================================

func (c *CLI) bgremoveCommand() *cobra.Command {
	var (
		out         outputFlags
		mode        string
		key         string
		seed        string
		tolerance   float64
		sensitivity float64
	)

	cmd := &cobra.Command{
		Use:   "bgremove <image>",
		Short: "Make the background of an image transparent",
		Long: `Make the background of an image transparent.

Modes:
  auto    clear near-white and near-black pixels in a 10% border band
  chroma  clear every pixel within --tolerance of --key
  flood   clear the region connected to --seed that matches its colour
  edge    fade flat areas, keeping strong edges

Output defaults to PNG so transparency survives.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := bgremove.ParseMode(mode)
			if err != nil {
				return err
			}
			keyColor, err := parseColor("key", key)
			if err != nil {
				return err
			}
			if m == bgremove.ModeChromaKey && key == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--key is required in chroma mode")
			}
			pt, err := parsePoint("seed", seed)
			if err != nil {
				return err
			}
			if out.format == "" && out.path == "" {
				out.format = string(raster.FormatPNG)
			}

			opts := bgremove.Options{
				Mode:        m,
				Key:         keyColor,
				Tolerance:   tolerance,
				Sensitivity: sensitivity,
				Seed:        pt,
			}
			var removed bgremove.Result
			_, err = c.runImage(cmd.Context(), "bgremove", args[0], out, func(img *image.NRGBA) (*image.NRGBA, error) {
				r, err := bgremove.Apply(img, opts)
				removed = r
				return r.Image, err
			})
			if err != nil {
				return err
			}
			printDetail("%s", removed.Describe())
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", string(bgremove.ModeAuto), "removal mode: "+joinNames(bgremove.Modes))
	cmd.Flags().StringVar(&key, "key", "", "key colour for chroma mode (#rrggbb)")
	cmd.Flags().StringVar(&seed, "seed", "0,0", "seed pixel x,y for flood mode")
	cmd.Flags().Float64Var(&tolerance, "tolerance", bgremove.DefaultTolerance, "colour tolerance 0-100")
	cmd.Flags().Float64Var(&sensitivity, "sensitivity", bgremove.DefaultSensitivity, "edge sensitivity 0-100")
	cmd.RegisterFlagCompletionFunc("mode", completeNames(bgremove.Modes))

	return cmd
}

// =============================================================================
// resize
// =============================================================================

func (c *CLI) resizeCommand() *cobra.Command {
	var (
		out     outputFlags
		width   int
		height  int
		percent float64
		stretch bool
	)

	cmd := &cobra.Command{
		Use:   "resize <image>",
		Short: "Resize an image by pixels or percentage",
		Long: `Resize an image by pixels or percentage.

With aspect ratio kept (the default), a missing dimension is derived from
the other one. When both are given, width wins and height follows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var step pipeline.Step
			switch {
			case percent != 0:
				step = func(img *image.NRGBA) (*image.NRGBA, error) { return transform.Scale(img, percent) }
			default:
				opts := transform.ResizeOptions{Width: width, Height: height, MaintainAspect: !stretch}
				step = func(img *image.NRGBA) (*image.NRGBA, error) { return transform.Resize(img, opts) }
			}
			_, err := c.runImage(cmd.Context(), "resize", args[0], out, step)
			return err
		},
	}

	out.register(cmd)
	cmd.Flags().IntVarP(&width, "width", "W", 0, "target width in pixels")
	cmd.Flags().IntVarP(&height, "height", "H", 0, "target height in pixels")
	cmd.Flags().Float64VarP(&percent, "percent", "p", 0, "scale by percentage instead of pixels")
	cmd.Flags().BoolVar(&stretch, "stretch", false, "ignore the aspect ratio")
	cmd.MarkFlagsMutuallyExclusive("percent", "width")
	cmd.MarkFlagsMutuallyExclusive("percent", "height")

	return cmd
}

// =============================================================================
// crop
// =============================================================================

func (c *CLI) cropCommand() *cobra.Command {
	var (
		out    outputFlags
		rect   string
		aspect string
	)

	cmd := &cobra.Command{
		Use:   "crop <image>",
		Short: "Crop an image to a rectangle or aspect ratio",
		Example: `  deskkit crop photo.jpg --rect 10,10,400,300
  deskkit crop photo.jpg --aspect 16:9`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var step pipeline.Step
			switch {
			case rect != "":
				r, err := parseRect(rect)
				if err != nil {
					return err
				}
				step = func(img *image.NRGBA) (*image.NRGBA, error) { return transform.Crop(img, r) }
			case aspect != "":
				w, h, err := parseRatio(aspect)
				if err != nil {
					return err
				}
				step = func(img *image.NRGBA) (*image.NRGBA, error) { return transform.CropAspect(img, w, h) }
			default:
				return errors.New(errors.ErrCodeInvalidInput, "one of --rect or --aspect is required")
			}
			_, err := c.runImage(cmd.Context(), "crop", args[0], out, step)
			return err
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&rect, "rect", "", "crop rectangle x,y,width,height")
	cmd.Flags().StringVar(&aspect, "aspect", "", "centred crop to ratio w:h, e.g. 1:1 or 16:9")
	cmd.MarkFlagsMutuallyExclusive("rect", "aspect")

	return cmd
}

// =============================================================================
// rotate
// =============================================================================

func (c *CLI) rotateCommand() *cobra.Command {
	var (
		out     outputFlags
		degrees int
		flipH   bool
		flipV   bool
	)

	cmd := &cobra.Command{
		Use:   "rotate <image>",
		Short: "Rotate by quarter turns or flip an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step := func(img *image.NRGBA) (*image.NRGBA, error) {
				var err error
				if degrees != 0 {
					if img, err = transform.Rotate(img, degrees); err != nil {
						return nil, err
					}
				}
				if flipH {
					if img, err = transform.Flip(img, true); err != nil {
						return nil, err
					}
				}
				if flipV {
					if img, err = transform.Flip(img, false); err != nil {
						return nil, err
					}
				}
				return img, nil
			}
			_, err := c.runImage(cmd.Context(), "rotate", args[0], out, step)
			return err
		},
	}

	out.register(cmd)
	cmd.Flags().IntVarP(&degrees, "degrees", "d", 90, "clockwise rotation: 0, 90, 180 or 270")
	cmd.Flags().BoolVar(&flipH, "flip-h", false, "mirror left to right")
	cmd.Flags().BoolVar(&flipV, "flip-v", false, "mirror top to bottom")

	return cmd
}

// =============================================================================
// compress
// =============================================================================

func (c *CLI) compressCommand() *cobra.Command {
	var (
		out       outputFlags
		maxWidth  int
		maxHeight int
	)

	cmd := &cobra.Command{
		Use:   "compress <image>",
		Short: "Re-encode an image with lossy compression",
		Long: `Re-encode an image with lossy compression and report the saving.

The output format defaults to JPEG. Use --format webp for lossless WebP.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			info, err := os.Stat(input)
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", input)
			}
			if out.format == "" {
				out.format = string(raster.FormatJPEG)
			}
			opts, err := c.imageOptions("compress", input, out)
			if err != nil {
				return err
			}
			img, _, err := raster.Load(input)
			if err != nil {
				return err
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			res, err := transform.Compress(img, int(info.Size()), transform.CompressOptions{
				Format:    opts.Format,
				Quality:   opts.Quality,
				MaxWidth:  maxWidth,
				MaxHeight: maxHeight,
			})
			if err != nil {
				return err
			}
			if err := pipeline.WriteFile(opts.Output, res.Data); err != nil {
				return err
			}

			printSuccess("compress")
			printStats(res.Width, res.Height, len(res.Data))
			printDetail("%s → %s (%s)", formatBytes(int64(res.OriginalSize)), formatBytes(int64(res.CompressedSize)), res.Savings())
			printFile(opts.Output)
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().IntVar(&maxWidth, "max-width", 0, "shrink to fit this width first")
	cmd.Flags().IntVar(&maxHeight, "max-height", 0, "shrink to fit this height first")

	return cmd
}

// =============================================================================
// merge
// =============================================================================

func (c *CLI) mergeCommand() *cobra.Command {
	var (
		out        outputFlags
		direction  string
		gap        int
		columns    int
		background string
	)

	cmd := &cobra.Command{
		Use:   "merge <image> <image>...",
		Short: "Combine images side by side, stacked or in a grid",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := transform.ParseDirection(direction)
			if err != nil {
				return err
			}
			bg, err := parseColor("background", background)
			if err != nil {
				return err
			}

			images := make([]*image.NRGBA, len(args))
			for i, path := range args {
				if images[i], _, err = raster.Load(path); err != nil {
					return err
				}
			}
			merged, err := transform.Merge(images, transform.MergeOptions{
				Direction:  dir,
				Gap:        gap,
				Background: bg,
				Columns:    columns,
			})
			if err != nil {
				return err
			}

			// The first input names the output; the step just hands over the merged canvas.
			_, err = c.runImage(cmd.Context(), "merge", args[0], out, func(*image.NRGBA) (*image.NRGBA, error) {
				return merged, nil
			})
			if err != nil {
				return err
			}
			printDetail("%d images, %s", len(args), dir)
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVarP(&direction, "direction", "d", string(transform.Horizontal), "layout: horizontal, vertical, grid")
	cmd.Flags().IntVar(&gap, "gap", 0, "pixels between images")
	cmd.Flags().IntVar(&columns, "columns", 0, "grid columns (default: square-ish)")
	cmd.Flags().StringVar(&background, "background", "", "gap and padding colour (#rrggbb, default transparent)")
	cmd.RegisterFlagCompletionFunc("direction", completeNames([]transform.Direction{transform.Horizontal, transform.Vertical, transform.Grid}))

	return cmd
}

// =============================================================================
// adjust
// =============================================================================

func (c *CLI) adjustCommand() *cobra.Command {
	var (
		out  outputFlags
		opts adjust.Options
	)

	cmd := &cobra.Command{
		Use:   "adjust <image>",
		Short: "Change brightness or contrast, or convert to grayscale or inverted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.IsZero() {
				return errors.New(errors.ErrCodeInvalidInput, "nothing to adjust")
			}
			_, err := c.runImage(cmd.Context(), "adjust", args[0], out, func(img *image.NRGBA) (*image.NRGBA, error) {
				return adjust.Apply(img, opts)
			})
			return err
		},
	}

	out.register(cmd)
	cmd.Flags().Float64Var(&opts.Brightness, "brightness", 0, "brightness shift -100..100")
	cmd.Flags().Float64Var(&opts.Contrast, "contrast", 0, "contrast change -100..100")
	cmd.Flags().BoolVar(&opts.Grayscale, "grayscale", false, "convert to grayscale")
	cmd.Flags().BoolVar(&opts.Invert, "invert", false, "invert colours")

	return cmd
}

// =============================================================================
// Argument Parsing
// =============================================================================

// parseInts splits s on commas and parses exactly n integers.
func parseInts(flag, s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--%s wants %d comma-separated numbers, got %q", flag, n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--%s", flag)
		}
		out[i] = v
	}
	return out, nil
}

func parsePoint(flag, s string) (image.Point, error) {
	v, err := parseInts(flag, s, 2)
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(v[0], v[1]), nil
}

// parseRect parses "x,y,width,height".
func parseRect(s string) (image.Rectangle, error) {
	v, err := parseInts("rect", s, 4)
	if err != nil {
		return image.Rectangle{}, err
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// parseRatio parses "w:h" into positive numbers.
func parseRatio(s string) (float64, float64, error) {
	w, h, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "aspect ratio must look like w:h, got %q", s)
	}
	rw, err1 := strconv.ParseFloat(w, 64)
	rh, err2 := strconv.ParseFloat(h, 64)
	if err1 != nil || err2 != nil || rw <= 0 || rh <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "invalid aspect ratio %q", s)
	}
	return rw, rh, nil
}

// joinNames renders values as "a, b, c" for help text.
func joinNames[T fmt.Stringer](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = v.String()
	}
	return strings.Join(s, ", ")
}
