// Package extract recovers plain text from documents.
//
// PDFs are read through their embedded text layer (github.com/ledongthuc/pdf),
// images go through an OCR engine, and plain text files are returned as-is.
// OCR is pluggable: the tesseract subpackage provides the gosseract-backed
// engine, kept separate because it needs cgo and libtesseract.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/matzehuels/deskkit/pkg/errors"
)

// PageSeparator joins the text of consecutive PDF pages.
const PageSeparator = "\n\n---\n\n"

// Method records how text was obtained.
type Method string

const (
	MethodTextLayer Method = "text-layer"
	MethodOCR       Method = "ocr"
	MethodPlain     Method = "plain"
)

// Result is the outcome of an extraction.
type Result struct {
	Text   string `json:"text"`
	Pages  int    `json:"pages"`
	Method Method `json:"method"`
	Chars  int    `json:"chars"`
	Source string `json:"source"`
}

func newResult(text string, pages int, m Method, source string) Result {
	return Result{Text: text, Pages: pages, Method: m, Chars: utf8.RuneCountInString(text), Source: source}
}

// OCREngine recognises text in an encoded image.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, languages []string) (string, error)
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tif": true, ".tiff": true, ".webp": true,
}

// Extractor chooses an extraction method by file extension.
type Extractor struct {
	// OCR handles image inputs. Nil makes images unsupported.
	OCR       OCREngine
	Languages []string
}

// Extract reads path and returns its text.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return PDFText(path)
	case ext == ".txt" || ext == ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return Result{}, err
		}
		if !utf8.Valid(data) {
			return Result{}, errors.New(errors.ErrCodeInvalidFormat, "%s is not UTF-8 text", filepath.Base(path))
		}
		return newResult(string(data), 1, MethodPlain, path), nil
	case imageExts[ext]:
		data, err := os.ReadFile(path)
		if err != nil {
			return Result{}, err
		}
		res, err := e.OCRBytes(ctx, data)
		if err != nil {
			return Result{}, err
		}
		res.Source = path
		return res, nil
	default:
		return Result{}, errors.New(errors.ErrCodeInvalidFormat, "cannot extract text from %s files", ext)
	}
}

// OCRBytes runs the OCR engine over an encoded image.
func (e *Extractor) OCRBytes(ctx context.Context, image []byte) (Result, error) {
	if e.OCR == nil {
		return Result{}, errors.New(errors.ErrCodeUnsupported, "OCR is not available in this build")
	}
	if len(image) == 0 {
		return Result{}, errors.New(errors.ErrCodeNoImage, "no image data")
	}
	langs := e.Languages
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	text, err := e.OCR.Recognize(ctx, image, langs)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, errors.Wrap(errors.ErrCodeConversionFailed, err, "%s OCR", e.OCR.Name())
	}
	return newResult(strings.TrimSpace(text), 1, MethodOCR, ""), nil
}

// PDFText returns the text layer of the PDF at path. Pages without text are
// skipped; the remaining pages are trimmed and joined with PageSeparator.
func PDFText(path string) (Result, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open PDF %s", path)
	}
	defer f.Close()

	numPages := r.NumPage()
	fonts := make(map[string]*pdf.Font)
	var parts []string

	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read PDF page %d", i)
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return newResult(strings.Join(parts, PageSeparator), numPages, MethodTextLayer, path), nil
}
