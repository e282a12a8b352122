// Package pdfdoc merges PDF documents and stamps text or image watermarks
// onto their pages.
//
// All document work is done by github.com/pdfcpu/pdfcpu. This package
// validates inputs, maps the shared watermark anchors onto pdfcpu position
// codes and builds pdfcpu watermark descriptions.
package pdfdoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/watermark"
)

func config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Merge concatenates inputs in order and writes the result to w.
func Merge(ctx context.Context, inputs []io.ReadSeeker, w io.Writer) error {
	if len(inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no PDF files to merge")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.MergeRaw(inputs, w, false, config()); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "merge PDFs")
	}
	return nil
}

// MergeFiles concatenates the PDFs at paths into out.
func MergeFiles(ctx context.Context, paths []string, out string) error {
	if len(paths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no PDF files to merge")
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", p)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := api.MergeCreateFile(paths, out, false, config()); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "merge PDFs")
	}
	return nil
}

// PageCount returns the number of pages in the document.
func PageCount(rs io.ReadSeeker) (int, error) {
	n, err := api.PageCount(rs, config())
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read PDF")
	}
	return n, nil
}

// PageCountFile returns the number of pages in the PDF at path.
func PageCountFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return PageCount(f)
}

const (
	DefaultFontSize   = 48
	DefaultOpacity    = 0.3
	DefaultColor      = "#808080"
	DefaultImageScale = 0.25
	DefaultMargin     = 36
	// DefaultAnchor centres PDF marks, unlike raster watermarks which sit
	// in a corner.
	DefaultAnchor = watermark.Center
)

// Options configures Watermark. Exactly one of Text and ImagePath is set.
type Options struct {
	Text      string
	ImagePath string
	Anchor    watermark.Anchor
	Opacity   float64
	FontSize  int
	Color     string
	Rotation  float64
	// Scale is the image width relative to the page width.
	Scale float64
	// Margin insets the mark from the anchored edges, in points. Zero is
	// flush; centred marks ignore it.
	Margin float64
	// Pages selects pages using pdfcpu syntax ("1-3", "even", "!2"). Empty
	// means all pages.
	Pages []string
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if (o.Text == "") == (o.ImagePath == "") {
		return errors.New(errors.ErrCodeInvalidInput, "exactly one of watermark text or image is required")
	}
	if o.Anchor == "" {
		o.Anchor = DefaultAnchor
	}
	if !o.Anchor.Valid() {
		return errors.New(errors.ErrCodeInvalidAnchor, "unknown anchor %q", o.Anchor)
	}
	if o.Opacity == 0 {
		o.Opacity = DefaultOpacity
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "opacity must be between 0 and 1, got %g", o.Opacity)
	}
	if o.FontSize == 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Color == "" {
		o.Color = DefaultColor
	}
	if o.Scale == 0 {
		o.Scale = DefaultImageScale
	}
	if o.Scale < 0 || o.Scale > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be between 0 and 1, got %g", o.Scale)
	}
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "margin must not be negative")
	}
	if o.ImagePath != "" {
		if _, err := os.Stat(o.ImagePath); err != nil {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "watermark image %s", o.ImagePath)
		}
	}
	return nil
}

// Description renders the options as a pdfcpu watermark description.
func (o Options) Description() string {
	dx, dy := watermark.PDFOffset(o.Anchor, o.Margin)
	parts := []string{
		"pos:" + o.Anchor.Code(),
		fmt.Sprintf("off:%g %g", dx, dy),
		fmt.Sprintf("rot:%g", o.Rotation),
		fmt.Sprintf("op:%g", o.Opacity),
	}
	if o.Text != "" {
		parts = append(parts,
			"font:Helvetica",
			fmt.Sprintf("points:%d", o.FontSize),
			"fillc:"+o.Color,
			"scale:1 abs",
		)
	} else {
		parts = append(parts, fmt.Sprintf("scale:%g rel", o.Scale))
	}
	return strings.Join(parts, ", ")
}

func (o Options) build() (*model.Watermark, error) {
	var (
		wm  *model.Watermark
		err error
	)
	if o.Text != "" {
		wm, err = pdfcpu.ParseTextWatermarkDetails(o.Text, o.Description(), true, types.POINTS)
	} else {
		wm, err = pdfcpu.ParseImageWatermarkDetails(o.ImagePath, o.Description(), true, types.POINTS)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "watermark settings")
	}
	return wm, nil
}

// Watermark stamps the mark described by opts onto rs and writes the result to w.
func Watermark(rs io.ReadSeeker, w io.Writer, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	wm, err := opts.build()
	if err != nil {
		return err
	}
	if err := api.AddWatermarks(rs, w, opts.Pages, wm, config()); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "watermark PDF")
	}
	return nil
}

// WatermarkFile stamps the PDF at in and writes it to out.
func WatermarkFile(in, out string, opts Options) error {
	f, err := os.Open(in)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", in)
	}
	defer f.Close()

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := out + ".tmp"
	dst, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Watermark(f, dst, opts); err != nil {
		dst.Close()
		os.Remove(tmp)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, out)
}
