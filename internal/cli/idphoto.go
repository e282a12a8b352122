package cli

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/idphoto"
)

func (c *CLI) idphotoCommand() *cobra.Command {
	var (
		out        outputFlags
		opts       idphoto.Options
		background string
		sheet      bool
		sheetOpts  idphoto.SheetOptions
	)

	cmd := &cobra.Command{
		Use:   "idphoto <image>",
		Short: "Crop a portrait to ID photo size, optionally as a print sheet",
		Long: `Crop a portrait to a standard ID photo size at print resolution.

The crop is centred and scaled to fill the target. With --background the
existing backdrop (sampled from the corners) is replaced by a solid colour.
With --sheet the photo is tiled onto a 6x4 in print sheet.`,
		Example: `  deskkit idphoto me.jpg --preset passport --background "#ffffff"
  deskkit idphoto me.jpg --preset 1inch --sheet`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if background == "" {
				return nil
			}
			bg, err := parseColor("background", background)
			if err != nil {
				return err
			}
			opts.Background = bg
			opts.ReplaceBackground = true
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := "idphoto"
			if sheet {
				tool = "idsheet"
			}
			sheetOpts.DPI = opts.DPI

			var copies int
			_, err := c.runImage(cmd.Context(), tool, args[0], out, func(img *image.NRGBA) (*image.NRGBA, error) {
				photo, err := idphoto.Make(img, opts)
				if err != nil || !sheet {
					return photo, err
				}
				page, n, err := idphoto.Sheet(photo, sheetOpts)
				copies = n
				return page, err
			})
			if err != nil {
				return err
			}
			if sheet {
				printDetail("%d copies", copies)
			}
			return nil
		},
	}

	out.register(cmd)
	cmd.Flags().StringVar(&opts.Preset, "preset", "1inch", "size preset: "+presetNames())
	cmd.Flags().Float64Var(&opts.WidthMM, "width-mm", 0, "custom width in millimetres (with --preset \"\")")
	cmd.Flags().Float64Var(&opts.HeightMM, "height-mm", 0, "custom height in millimetres (with --preset \"\")")
	cmd.Flags().IntVar(&opts.DPI, "dpi", idphoto.DefaultDPI, "print resolution")
	cmd.Flags().StringVar(&background, "background", "", "replace the backdrop with this colour (#rrggbb)")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", idphoto.DefaultTolerance, "backdrop match tolerance 0-100")
	cmd.Flags().BoolVar(&sheet, "sheet", false, "tile the photo onto a print sheet")
	cmd.Flags().Float64Var(&sheetOpts.PaperWidthMM, "paper-width-mm", idphoto.DefaultPaperWidthMM, "sheet width")
	cmd.Flags().Float64Var(&sheetOpts.PaperHeightMM, "paper-height-mm", idphoto.DefaultPaperHeightMM, "sheet height")
	cmd.RegisterFlagCompletionFunc("preset", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, p := range idphoto.Presets() {
			names = append(names, p.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(c.idphotoPresetsCommand())
	return cmd
}

func (c *CLI) idphotoPresetsCommand() *cobra.Command {
	var dpi int
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List ID photo size presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, p := range idphoto.Presets() {
				px := idphoto.PixelSize(p.WidthMM, p.HeightMM, dpi)
				rows = append(rows, []string{
					p.Name,
					fmt.Sprintf("%g×%g mm", p.WidthMM, p.HeightMM),
					fmt.Sprintf("%d×%d px", px.X, px.Y),
				})
			}
			fmt.Fprintln(c.Out, renderTable([]string{"Preset", "Size", fmt.Sprintf("@ %d dpi", dpi)}, rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&dpi, "dpi", idphoto.DefaultDPI, "print resolution")
	return cmd
}

func presetNames() string {
	var s string
	for i, p := range idphoto.Presets() {
		if i > 0 {
			s += ", "
		}
		s += p.Name
	}
	return s
}
