package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/convert"
)

// converter builds a document converter from config, with flag overrides.
func (c *CLI) converter(binary string, timeout time.Duration) (*convert.Converter, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if binary == "" {
		binary = cfg.Server.Converter
	}
	if timeout == 0 {
		timeout = cfg.Server.ConvertTimeout.Duration
	}
	return convert.New(binary, timeout, c.Logger), nil
}

func (c *CLI) convertCommand() *cobra.Command {
	var (
		outDir  string
		binary  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "convert <document>...",
		Short: "Convert office documents to PDF with LibreOffice",
		Long: `Convert office documents to PDF with a headless LibreOffice.

Supported inputs: .doc .docx .odt .rtf .txt .ppt .pptx .odp .xls .xlsx
.ods .html. The PDF is written next to each input unless --outdir is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd.Context())
			conv, err := c.converter(binary, timeout)
			if err != nil {
				return err
			}
			path, err := conv.Available()
			if err != nil {
				return err
			}
			c.Logger.Debug("using converter", "path", path)

			for _, input := range args {
				if err := convert.Supported(input); err != nil {
					return err
				}
				dir := outDir
				if dir == "" {
					dir = filepath.Dir(input)
				}
				prog := newProgress(loggerFromContext(ctx))
				out, err := runWithSpinner(ctx, "Converting "+filepath.Base(input), func(ctx context.Context) (string, error) {
					return conv.Convert(ctx, input, dir)
				})
				if err != nil {
					printError("%s", input)
					return err
				}
				prog.done("Converted " + filepath.Base(input))
				printFile(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "", "directory for the PDFs (default: next to each input)")
	cmd.Flags().StringVar(&binary, "binary", "", "LibreOffice executable (default from config: soffice)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-document time limit (default from config)")

	return cmd
}
