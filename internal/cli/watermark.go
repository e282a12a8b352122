package cli

import (
	"image"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/history"
	"github.com/matzehuels/deskkit/pkg/raster"
	"github.com/matzehuels/deskkit/pkg/watermark"
)

// watermarkRecord is the history payload for a watermark run.
type watermarkRecord struct {
	Input   string  `json:"input"`
	Output  string  `json:"output"`
	Text    string  `json:"text,omitempty"`
	Image   string  `json:"image,omitempty"`
	Anchor  string  `json:"anchor"`
	Opacity float64 `json:"opacity"`
	Tile    bool    `json:"tile,omitempty"`
}

func (c *CLI) watermarkCommand() *cobra.Command {
	var (
		out      outputFlags
		text     watermark.TextOptions
		markOpts watermark.ImageOptions
		anchor   string
		colorHex string
		markPath string
	)

	cmd := &cobra.Command{
		Use:   "watermark <image>",
		Short: "Stamp text or a logo onto an image",
		Long: `Stamp text or a logo onto an image.

Use --text for a text mark or --image for a logo. The mark is placed at one
of nine anchors, or tiled diagonally with --tile (text only). PDFs are
handled by "deskkit pdf watermark".`,
		Example: `  deskkit watermark photo.jpg --text "© 2026 Jo" --anchor bottom-right
  deskkit watermark photo.jpg --image logo.png --scale 0.2 --opacity 0.8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (text.Text == "") == (markPath == "") {
				return errors.New(errors.ErrCodeInvalidInput, "exactly one of --text or --image is required")
			}
			a, err := watermark.ParseAnchor(anchor)
			if err != nil {
				return err
			}
			rec := watermarkRecord{Input: args[0], Anchor: string(a), Text: text.Text, Image: markPath, Tile: text.Tile}

			var step func(*image.NRGBA) (*image.NRGBA, error)
			if text.Text != "" {
				if text.Color, err = parseColor("color", colorHex); err != nil {
					return err
				}
				text.Anchor = a
				rec.Opacity = text.Opacity
				step = func(img *image.NRGBA) (*image.NRGBA, error) { return watermark.Text(img, text) }
			} else {
				mark, _, err := raster.Load(markPath)
				if err != nil {
					return err
				}
				markOpts.Anchor = a
				markOpts.Margin = text.Margin
				markOpts.Opacity = text.Opacity
				rec.Opacity = markOpts.Opacity
				step = func(img *image.NRGBA) (*image.NRGBA, error) { return watermark.Image(img, mark, markOpts) }
			}

			res, err := c.runImage(cmd.Context(), "watermark", args[0], out, step)
			if err != nil {
				return err
			}
			rec.Output = res.Output
			title := rec.Text
			if title == "" {
				title = rec.Image
			}
			c.remember(cmd.Context(), history.WatermarkKey, title, rec)
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&text.Text, "text", "", "watermark text")
	cmd.Flags().StringVar(&markPath, "image", "", "watermark image (logo)")
	cmd.Flags().StringVarP(&anchor, "anchor", "a", string(watermark.DefaultAnchor), "placement anchor")
	cmd.Flags().Float64Var(&text.Opacity, "opacity", watermark.DefaultOpacity, "opacity 0-1")
	cmd.Flags().IntVar(&text.Margin, "margin", watermark.DefaultMargin, "distance from the edge in pixels")
	cmd.Flags().Float64Var(&text.Size, "size", watermark.DefaultFontSize, "text size in points")
	cmd.Flags().StringVar(&colorHex, "color", "#ffffff", "text colour (#rrggbb)")
	cmd.Flags().BoolVar(&text.Bold, "bold", false, "bold text")
	cmd.Flags().BoolVar(&text.Tile, "tile", false, "repeat the text diagonally across the image")
	cmd.Flags().Float64Var(&text.Angle, "angle", watermark.DefaultTileAngle, "tile angle in degrees")
	cmd.Flags().Float64Var(&markOpts.Scale, "scale", 0, "logo width as a fraction of the image width")
	cmd.MarkFlagsMutuallyExclusive("text", "image")
	cmd.RegisterFlagCompletionFunc("anchor", completeNames(watermark.Anchors))

	return cmd
}
