// Package convert turns office documents into PDF by shelling out to
// LibreOffice.
//
// The converter runs
//
//	soffice --headless --convert-to pdf --outdir <dir> <input>
//
// with a throwaway user profile per call, so concurrent conversions do not
// fight over the profile lock.
package convert

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/observability"
)

// DefaultBinary is the LibreOffice executable looked up on PATH.
const DefaultBinary = "soffice"

// DefaultTimeout bounds a single conversion.
const DefaultTimeout = 2 * time.Minute

// Extensions lists the input types the converter accepts.
var Extensions = []string{
	".doc", ".docx", ".odt", ".rtf", ".txt",
	".ppt", ".pptx", ".odp",
	".xls", ".xlsx", ".ods",
	".html", ".htm",
}

const installHint = "PDF conversion requires LibreOffice. Install with:\n  macOS:  brew install --cask libreoffice\n  Linux:  apt install libreoffice-core libreoffice-writer"

// Converter runs the external document converter.
type Converter struct {
	Binary  string
	Timeout time.Duration
	Logger  *log.Logger
}

// New returns a converter for binary. Empty values fall back to the defaults.
func New(binary string, timeout time.Duration, logger *log.Logger) *Converter {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Converter{Binary: binary, Timeout: timeout, Logger: logger}
}

// Supported reports whether name has an accepted extension.
func Supported(name string) error {
	return errors.ValidateExtension(name, Extensions)
}

// Available checks that the converter binary can be found.
func (c *Converter) Available() (string, error) {
	path, err := exec.LookPath(c.Binary)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnsupported, err, "%s", installHint)
	}
	return path, nil
}

// OutputPath returns where the converter writes the PDF for inputPath.
func OutputPath(inputPath, outDir string) string {
	base := filepath.Base(inputPath)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")
}

// Convert converts inputPath into outDir and returns the PDF path.
func (c *Converter) Convert(ctx context.Context, inputPath, outDir string) (out string, err error) {
	start := time.Now()
	observability.Conversion().OnConvertStart(ctx, inputPath)
	defer func() {
		observability.Conversion().OnConvertComplete(ctx, inputPath, time.Since(start), err)
	}()

	if err := Supported(inputPath); err != nil {
		return "", err
	}
	if _, err := os.Stat(inputPath); err != nil {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", inputPath)
	}
	bin, err := c.Available()
	if err != nil {
		return "", err
	}

	profile, err := os.MkdirTemp("", "deskkit-soffice-")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "create converter profile")
	}
	defer os.RemoveAll(profile)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(profile),
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	c.logger().Debug("converting document", "input", inputPath, "binary", bin)
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Wrap(errors.ErrCodeConversionFailed, err, "conversion timed out after %s", timeout)
		}
		return "", errors.Wrap(errors.ErrCodeConversionFailed, err, "%s: %s", filepath.Base(bin), strings.TrimSpace(stderr.String()))
	}

	out = OutputPath(inputPath, outDir)
	if _, err := os.Stat(out); err != nil {
		// soffice exits 0 for some unreadable inputs.
		return "", errors.Wrap(errors.ErrCodeConversionFailed, err, "converter produced no output: %s", strings.TrimSpace(stdout.String()+" "+stderr.String()))
	}
	c.logger().Debug("converted document", "output", out, "duration", time.Since(start))
	return out, nil
}

func (c *Converter) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}
