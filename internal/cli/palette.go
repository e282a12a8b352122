package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/history"
	"github.com/matzehuels/deskkit/pkg/palette"
	"github.com/matzehuels/deskkit/pkg/pipeline"
	"github.com/matzehuels/deskkit/pkg/raster"
)

const (
	paletteJSON = "json"
	paletteCSS  = "css"
	paletteSVG  = "svg"
)

var paletteSchemes = []palette.Scheme{palette.Complementary, palette.Analogous, palette.Triadic, palette.Monochrome}

// paletteOutput are the flags for commands that produce a palette.
type paletteOutput struct {
	name   string
	export string
	output string
}

func (o *paletteOutput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.name, "name", "", "palette name")
	cmd.Flags().StringVarP(&o.export, "export", "e", "", "also write the palette as json, css or svg")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "export file (default: <name>.<format>)")
	cmd.RegisterFlagCompletionFunc("export", completeNames([]string{paletteJSON, paletteCSS, paletteSVG}))
}

func (c *CLI) paletteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Extract, generate and export colour palettes",
	}

	cmd.AddCommand(c.paletteExtractCommand())
	cmd.AddCommand(c.paletteExportCommand())
	cmd.AddCommand(c.paletteImportCommand())
	cmd.AddCommand(c.paletteHarmonyCommand())
	cmd.AddCommand(c.paletteRandomCommand())

	return cmd
}

func (c *CLI) paletteExtractCommand() *cobra.Command {
	var (
		out   paletteOutput
		count int
	)
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Find the dominant colours of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, _, err := raster.Load(args[0])
			if err != nil {
				return err
			}
			swatches, err := palette.Extract(img, count)
			if err != nil {
				return err
			}
			if out.name == "" {
				out.name = baseName(args[0])
			}
			p := palette.FromSwatches(out.name, swatches)

			printSuccess("%d colours from %s", len(p.Colors), args[0])
			for _, s := range swatches {
				printDetail("%s  %4.1f%%", s.Hex(), s.Share*100)
			}
			printSwatches(p.Colors)
			return c.finishPalette(cmd, p, out)
		},
	}
	out.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", palette.DefaultCount, fmt.Sprintf("number of colours (max %d)", palette.MaxCount))
	return cmd
}

func (c *CLI) paletteExportCommand() *cobra.Command {
	var out paletteOutput
	cmd := &cobra.Command{
		Use:     "export <hex>...",
		Short:   "Write a palette of given colours as JSON, CSS or SVG",
		Example: `  deskkit palette export "#264653" "#2a9d8f" "#e9c46a" --export css`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out.export == "" {
				out.export = paletteJSON
			}
			if out.name == "" {
				out.name = "palette"
			}
			p, err := palette.New(out.name, args)
			if err != nil {
				return err
			}
			return c.exportPalette(p, out)
		},
	}
	out.register(cmd)
	return cmd
}

func (c *CLI) paletteImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Show a palette saved as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", args[0])
			}
			defer f.Close()
			p, err := palette.ImportJSON(f)
			if err != nil {
				return err
			}
			printKeyValue("Name", p.Name)
			if !p.CreatedAt.IsZero() {
				printKeyValue("Created", p.CreatedAt.Local().Format(time.DateTime))
			}
			printSwatches(p.Colors)
			return nil
		},
	}
}

func (c *CLI) paletteHarmonyCommand() *cobra.Command {
	var (
		out    paletteOutput
		scheme string
	)
	cmd := &cobra.Command{
		Use:   "harmony <hex>",
		Short: "Derive a colour scheme from a base colour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hexes, err := palette.Harmony(args[0], palette.Scheme(scheme))
			if err != nil {
				return err
			}
			if out.name == "" {
				out.name = scheme + " " + strings.ToLower(args[0])
			}
			p, err := palette.New(out.name, hexes)
			if err != nil {
				return err
			}
			printSuccess("%s", p.Name)
			printSwatches(p.Colors)
			return c.finishPalette(cmd, p, out)
		},
	}
	out.register(cmd)
	cmd.Flags().StringVar(&scheme, "scheme", string(palette.Complementary), "complementary, analogous, triadic or monochrome")
	cmd.RegisterFlagCompletionFunc("scheme", completeNames(paletteSchemes))
	return cmd
}

func (c *CLI) paletteRandomCommand() *cobra.Command {
	var (
		out   paletteOutput
		count int
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate a random pleasant palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 || count > palette.MaxCount {
				return errors.New(errors.ErrCodeInvalidInput, "count must be between 1 and %d", palette.MaxCount)
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}
			if out.name == "" {
				out.name = "random"
			}
			p, err := palette.New(out.name, palette.Random(count, seed))
			if err != nil {
				return err
			}
			printSuccess("%s", p.Name)
			printSwatches(p.Colors)
			printDetail("seed %d", seed)
			return c.finishPalette(cmd, p, out)
		},
	}
	out.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", palette.DefaultCount, "number of colours")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible palette")
	return cmd
}

// finishPalette exports p when requested and records it in palette history.
func (c *CLI) finishPalette(cmd *cobra.Command, p palette.Palette, out paletteOutput) error {
	if out.export != "" {
		if err := c.exportPalette(p, out); err != nil {
			return err
		}
	}
	c.remember(cmd.Context(), history.PaletteKey, p.Name, p)
	return nil
}

func (c *CLI) exportPalette(p palette.Palette, out paletteOutput) error {
	var (
		buf bytes.Buffer
		err error
	)
	format := strings.ToLower(out.export)
	switch format {
	case paletteJSON:
		err = palette.ExportJSON(&buf, p)
	case paletteCSS:
		err = palette.ExportCSS(&buf, p)
	case paletteSVG:
		err = palette.ExportSVG(&buf, p)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown palette format %q (must be json, css or svg)", out.export)
	}
	if err != nil {
		return err
	}

	if out.output == "-" {
		_, err := io.Copy(c.Out, &buf)
		return err
	}
	path := out.output
	if path == "" {
		path = fileSafe(p.Name) + "." + format
	}
	if err := pipeline.WriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// baseName returns the file name of path without its extension.
func baseName(path string) string {
	name := path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}

// fileSafe replaces characters that do not belong in a file name.
func fileSafe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.TrimSpace(s))
	if s == "" {
		return "palette"
	}
	return s
}
