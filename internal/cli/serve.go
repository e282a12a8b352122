package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		uploadDir   string
		maxUploadMB int64
		binary      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the document-to-PDF conversion server",
		Long: `Run the HTTP conversion server.

  POST /api/pdf-convert   multipart field "file", responds with the PDF
  GET  /health            liveness check

Settings come from the [server] config section; flags override them.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			opts := server.OptionsFromConfig(cfg.Server)
			if addr != "" {
				opts.Addr = addr
			}
			if uploadDir != "" {
				opts.UploadDir = uploadDir
			}
			if maxUploadMB > 0 {
				opts.MaxUploadBytes = maxUploadMB << 20
			}

			conv, err := c.converter(binary, 0)
			if err != nil {
				return err
			}
			if _, err := conv.Available(); err != nil {
				printWarning("%v", err)
				printDetail("conversions will fail until the converter is installed")
			}

			srv := server.New(conv, opts, c.Logger)
			printInfo("Serving on %s", StyleValue.Render(srv.Addr()))
			printNextStep("Try it", "curl -F file=@letter.docx http://localhost"+portOf(srv.Addr())+"/api/pdf-convert -o letter.pdf")
			return srv.ListenAndServe(c.commandContext(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: :3000)")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", "", "working directory for uploads (default from config: uploads)")
	cmd.Flags().Int64Var(&maxUploadMB, "max-upload-mb", 0, "upload size limit in MB (default from config: 50)")
	cmd.Flags().StringVar(&binary, "binary", "", "LibreOffice executable (default from config: soffice)")

	return cmd
}

// portOf returns the ":port" suffix of a listen address.
func portOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return ""
}
