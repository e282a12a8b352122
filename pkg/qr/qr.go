// Package qr formats structured payloads (contacts, WiFi credentials,
// locations, links) into QR content and renders codes as PNG, SVG or
// terminal text.
//
// Encoding is done by github.com/skip2/go-qrcode; SVG output is built from
// the module bitmap so it scales without resampling.
package qr

import (
	"fmt"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/matzehuels/deskkit/pkg/errors"
)

// DefaultSize is the PNG and SVG edge length in pixels.
const DefaultSize = 256

// Level is the error-correction level.
type Level string

const (
	Low     Level = "L"
	Medium  Level = "M"
	High    Level = "Q"
	Highest Level = "H"
)

// ParseLevel accepts L/M/Q/H or low/medium/high/highest.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "l", "low":
		return Low, nil
	case "", "m", "medium":
		return Medium, nil
	case "q", "high":
		return High, nil
	case "h", "highest":
		return Highest, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown error correction level %q", s)
}

func (l Level) recovery() qrcode.RecoveryLevel {
	switch l {
	case Low:
		return qrcode.Low
	case High:
		return qrcode.High
	case Highest:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func newCode(content string, level Level) (*qrcode.QRCode, error) {
	if content == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "QR content is empty")
	}
	q, err := qrcode.New(content, level.recovery())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode QR code")
	}
	return q, nil
}

// PNGOptions configures PNG.
type PNGOptions struct {
	Size       int
	Level      Level
	Foreground color.Color
	Background color.Color
}

// PNG renders content as a size×size PNG.
func PNG(content string, opts PNGOptions) ([]byte, error) {
	q, err := newCode(content, opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Foreground != nil {
		q.ForegroundColor = opts.Foreground
	}
	if opts.Background != nil {
		q.BackgroundColor = opts.Background
	}
	return q.PNG(opts.Size)
}

// SVGOptions configures SVG. Colours are CSS colour strings.
type SVGOptions struct {
	Size       int
	Level      Level
	Foreground string
	Background string
}

// SVG renders content as a scalable SVG document. Adjacent dark modules in a
// row are merged into one rect.
func SVG(content string, opts SVGOptions) (string, error) {
	q, err := newCode(content, opts.Level)
	if err != nil {
		return "", err
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Foreground == "" {
		opts.Foreground = "#000000"
	}
	if opts.Background == "" {
		opts.Background = "#ffffff"
	}

	bitmap := q.Bitmap()
	n := len(bitmap)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, opts.Size, opts.Size, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, n, n, opts.Background)
	fmt.Fprintf(&b, `<g fill="%s">`, opts.Foreground)
	for y, row := range bitmap {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="1"/>`, start, y, x-start)
		}
	}
	b.WriteString(`</g></svg>`)
	return b.String(), nil
}

// Terminal renders content with half-block characters for a terminal.
func Terminal(content string, level Level) (string, error) {
	q, err := newCode(content, level)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

// Modules returns the module grid, including the quiet zone.
func Modules(content string, level Level) ([][]bool, error) {
	q, err := newCode(content, level)
	if err != nil {
		return nil, err
	}
	return q.Bitmap(), nil
}
