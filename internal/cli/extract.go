package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/extract"
	"github.com/matzehuels/deskkit/pkg/extract/tesseract"
	"github.com/matzehuels/deskkit/pkg/history"
	"github.com/matzehuels/deskkit/pkg/pipeline"
)

// extractPreview is how much extracted text the history entry title keeps.
const extractPreview = 60

func (c *CLI) extractCommand() *cobra.Command {
	var (
		output    string
		languages []string
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Pull text out of a PDF, image or text file",
		Long: `Pull text out of a PDF, image or text file.

PDFs are read from their text layer, page by page. Images go through
Tesseract OCR (--lang picks the trained data, e.g. eng+deu). Plain text
files are passed through.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd.Context())
			ex := &extract.Extractor{OCR: tesseract.New(), Languages: languages}

			prog := newProgress(loggerFromContext(ctx))
			res, err := runWithSpinner(ctx, "Extracting text from "+filepath.Base(args[0]), func(ctx context.Context) (extract.Result, error) {
				return ex.Extract(ctx, args[0])
			})
			if err != nil {
				return err
			}

			if output != "" {
				if err := pipeline.WriteFile(output, []byte(res.Text)); err != nil {
					return err
				}
				printSuccess("Extracted %d characters (%s)", res.Chars, res.Method)
				printFile(output)
			} else {
				fmt.Fprintln(c.Out, res.Text)
				if !quiet {
					prog.done(extractSummary(res))
				}
			}

			title := filepath.Base(args[0])
			if preview := truncate(res.Text, extractPreview); preview != "" {
				title += ": " + preview
			}
			c.remember(cmd.Context(), history.ExtractionKey, title, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the text to a file instead of stdout")
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", []string{"eng"}, "OCR languages")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not log a summary after printing")

	return cmd
}

// extractSummary describes an extraction result for the progress log.
func extractSummary(res extract.Result) string {
	switch res.Method {
	case extract.MethodOCR:
		return fmt.Sprintf("Recognised %d characters with OCR", res.Chars)
	case extract.MethodTextLayer:
		pages := "pages"
		if res.Pages == 1 {
			pages = "page"
		}
		return fmt.Sprintf("Extracted %d characters from %d %s", res.Chars, res.Pages, pages)
	}
	return fmt.Sprintf("Read %d characters", res.Chars)
}
