package cli

import (
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/config"
	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/history"
	"github.com/matzehuels/deskkit/pkg/kv"
	"github.com/matzehuels/deskkit/pkg/palette"
	"github.com/matzehuels/deskkit/pkg/pipeline"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is set by the --config flag. Empty means the default location.
	ConfigPath string
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// config loads the configuration once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	c.cfg = &cfg
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "store", cfg.Store.Backend)
	return cfg, nil
}

// =============================================================================
// Store and Runner Factories
// =============================================================================

// openStore opens the configured key-value store. Callers close it.
func (c *CLI) openStore(ctx context.Context) (kv.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return kv.Open(ctx, cfg.Store)
}

// history opens the named list on store with the configured limit.
func (c *CLI) history(store kv.Store, key string) *history.History {
	limit := history.DefaultLimit
	if cfg, err := c.config(); err == nil && cfg.History.Limit > 0 {
		limit = cfg.History.Limit
	}
	return history.New(store, key, history.WithLimit(limit), history.WithLogger(c.Logger))
}

// remember appends an entry to a history list. Failures are logged, never
// returned: the tool already succeeded.
func (c *CLI) remember(ctx context.Context, key, title string, data any) {
	store, err := c.openStore(ctx)
	if err != nil {
		c.Logger.Warn("history unavailable", "error", err)
		return
	}
	defer store.Close()

	entry, err := history.NewEntry(title, data)
	if err != nil {
		c.Logger.Warn("history entry", "error", err)
		return
	}
	if _, err := c.history(store, key).Add(ctx, entry); err != nil {
		c.Logger.Warn("history unavailable", "error", err)
	}
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// imageOptions builds pipeline options from the shared output flags and the
// [image] config section.
func (c *CLI) imageOptions(tool, input string, out outputFlags) (pipeline.Options, error) {
	opts := pipeline.Options{
		Tool:    tool,
		Input:   input,
		Output:  out.path,
		Quality: out.quality,
		Logger:  c.Logger,
	}
	cfg, err := c.config()
	if err != nil {
		return opts, err
	}
	if opts.Quality == 0 {
		opts.Quality = cfg.Image.JPEGQuality
	}
	format := out.format
	if format == "" && out.path == "" {
		if f, err := raster.FormatFromPath(input); err != nil || !f.CanEncode() {
			format = cfg.Image.DefaultFormat
		}
	}
	if format != "" {
		f, err := raster.ParseFormat(format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	return opts, nil
}

// =============================================================================
// Paths
// =============================================================================

// outputFor returns explicit when set, otherwise "<base>_<tool>_<timestamp><ext>"
// next to input.
func outputFor(explicit, input, tool, ext string) string {
	if explicit != "" {
		return explicit
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := base + "_" + tool + "_" + timestamp() + ext
	return filepath.Join(filepath.Dir(input), name)
}

func timestamp() string {
	return time.Now().Format(pipeline.TimestampLayout)
}

// =============================================================================
// Flag Helpers
// =============================================================================

// outputFlags are shared by every command that writes an image.
type outputFlags struct {
	path    string
	format  string
	quality int
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.path, "output", "o", "", "output file (default: <name>_<tool>_<timestamp>.<ext>)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: png, jpeg, webp, gif, bmp, tiff (default: input format)")
	cmd.Flags().IntVarP(&o.quality, "quality", "q", 0, "lossy quality 1-100 (default from config)")
}

// parseColor parses a hex colour flag. Empty returns the zero colour.
func parseColor(flag, s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	c, err := palette.ParseHex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "--%s", flag)
	}
	return c, nil
}
