package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, set by main through SetLogLevel
//
// Every command reads its configuration lazily from --config or the default
// location, so commands that never touch the store work without a config file.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "deskkit is a toolbox for everyday image and document chores",
		Long:         `deskkit bundles small single-purpose utilities: background removal, resizing, cropping, compression, merging, ID photos, watermarks, QR codes, colour palettes, PDF merging and watermarking, text extraction, a text vault, and a document-to-PDF conversion server.`,
		Version:      buildinfo.Current().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/deskkit/config.toml)")

	// Image tools
	root.AddCommand(c.bgremoveCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.cropCommand())
	root.AddCommand(c.rotateCommand())
	root.AddCommand(c.compressCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.adjustCommand())
	root.AddCommand(c.idphotoCommand())
	root.AddCommand(c.watermarkCommand())
	root.AddCommand(c.qrCommand())
	root.AddCommand(c.paletteCommand())

	// Document tools
	root.AddCommand(c.pdfCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.convertCommand())

	// Storage
	root.AddCommand(c.vaultCommand())
	root.AddCommand(c.historyCommand())

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}
