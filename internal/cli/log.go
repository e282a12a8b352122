// Package cli implements the deskkit command-line interface.
//
// Each tool is a cobra subcommand that loads its input, runs one
// transformation from pkg/ and writes the result next to the input (or to
// --output). Tools that keep history (palette, extract, watermark) record a
// short entry in the configured key-value store.
//
// # Commands
//
// The main commands are:
//   - bgremove, resize, crop, rotate, compress, merge, adjust: image edits
//   - idphoto: passport-style photos and print sheets
//   - watermark: text or image marks on images
//   - qr: QR codes for text, links, contacts, WiFi and more
//   - palette: extract, export, import and derive colour palettes
//   - pdf: merge, watermark and count pages of PDF files
//   - extract: pull text out of PDFs, images and text files
//   - convert, serve: office documents to PDF, locally or over HTTP
//   - vault, history: stored notes and past tool runs
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Merged 3 PDFs (412ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// commandContext attaches the CLI logger to ctx.
func (c *CLI) commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return withLogger(ctx, c.Logger)
}
