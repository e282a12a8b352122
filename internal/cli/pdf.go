package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/history"
	"github.com/matzehuels/deskkit/pkg/pdfdoc"
	"github.com/matzehuels/deskkit/pkg/watermark"
)

func (c *CLI) pdfCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Merge, watermark and inspect PDF files",
	}

	cmd.AddCommand(c.pdfMergeCommand())
	cmd.AddCommand(c.pdfWatermarkCommand())
	cmd.AddCommand(c.pdfPagesCommand())

	return cmd
}

func (c *CLI) pdfMergeCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge <file.pdf> <file.pdf>...",
		Short: "Concatenate PDFs in the given order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd.Context())
			out := outputFor(output, args[0], "merged", ".pdf")
			prog := newProgress(c.Logger)

			_, err := runWithSpinner(ctx, fmt.Sprintf("Merging %d PDFs", len(args)), func(ctx context.Context) (struct{}, error) {
				return struct{}{}, pdfdoc.MergeFiles(ctx, args, out)
			})
			if err != nil {
				return err
			}

			prog.done(fmt.Sprintf("Merged %d PDFs", len(args)))
			if n, err := pdfdoc.PageCountFile(out); err == nil {
				printSuccess("Merged %d files, %d pages", len(args), n)
			} else {
				printSuccess("Merged %d files", len(args))
			}
			printFile(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <first>_merged_<timestamp>.pdf)")
	return cmd
}

func (c *CLI) pdfWatermarkCommand() *cobra.Command {
	var (
		output string
		anchor string
		opts   pdfdoc.Options
	)
	cmd := &cobra.Command{
		Use:   "watermark <file.pdf>",
		Short: "Stamp text or an image onto PDF pages",
		Example: `  deskkit pdf watermark report.pdf --text DRAFT --rotation 45
  deskkit pdf watermark report.pdf --image logo.png --anchor top-right --pages 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := watermark.ParseAnchor(anchor)
			if err != nil {
				return err
			}
			opts.Anchor = a
			if err := opts.Validate(); err != nil {
				return err
			}
			c.Logger.Debug("pdf watermark", "desc", opts.Description())

			out := outputFor(output, args[0], "watermark", ".pdf")
			if err := pdfdoc.WatermarkFile(args[0], out, opts); err != nil {
				return err
			}
			printSuccess("Watermarked %s", args[0])
			printFile(out)

			title := opts.Text
			if title == "" {
				title = opts.ImagePath
			}
			c.remember(cmd.Context(), history.WatermarkKey, title, watermarkRecord{
				Input:   args[0],
				Output:  out,
				Text:    opts.Text,
				Image:   opts.ImagePath,
				Anchor:  string(opts.Anchor),
				Opacity: opts.Opacity,
			})
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>_watermark_<timestamp>.pdf)")
	cmd.Flags().StringVar(&opts.Text, "text", "", "watermark text")
	cmd.Flags().StringVar(&opts.ImagePath, "image", "", "watermark image")
	cmd.Flags().StringVarP(&anchor, "anchor", "a", string(pdfdoc.DefaultAnchor), "placement anchor")
	cmd.Flags().Float64Var(&opts.Margin, "margin", pdfdoc.DefaultMargin, "distance from the anchored edges in points")
	cmd.Flags().Float64Var(&opts.Opacity, "opacity", pdfdoc.DefaultOpacity, "opacity 0-1")
	cmd.Flags().IntVar(&opts.FontSize, "font-size", pdfdoc.DefaultFontSize, "text size in points")
	cmd.Flags().StringVar(&opts.Color, "color", pdfdoc.DefaultColor, "text colour (#rrggbb)")
	cmd.Flags().Float64Var(&opts.Rotation, "rotation", 0, "rotation in degrees")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pdfdoc.DefaultImageScale, "image width relative to the page")
	cmd.Flags().StringSliceVar(&opts.Pages, "pages", nil, "page selection, e.g. 1-3,5 (default: all)")
	cmd.MarkFlagsMutuallyExclusive("text", "image")
	cmd.RegisterFlagCompletionFunc("anchor", completeNames(watermark.Anchors))
	return cmd
}

func (c *CLI) pdfPagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <file.pdf>...",
		Short: "Print the page count of PDF files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				n, err := pdfdoc.PageCountFile(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(c.Out, n)
				return nil
			}

			var (
				rows  [][]string
				total int
			)
			for _, path := range args {
				n, err := pdfdoc.PageCountFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				total += n
				rows = append(rows, []string{path, strconv.Itoa(n)})
			}
			rows = append(rows, []string{StyleDim.Render("total"), strconv.Itoa(total)})
			fmt.Fprintln(c.Out, renderTable([]string{"File", "Pages"}, rows))
			return nil
		},
	}
}
