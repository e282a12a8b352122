package watermark

import (
	"image"
	"strings"

	"github.com/matzehuels/deskkit/pkg/errors"
)

// Anchor names one of nine placement positions on a canvas.
type Anchor string

const (
	TopLeft      Anchor = "top-left"
	TopCenter    Anchor = "top-center"
	TopRight     Anchor = "top-right"
	CenterLeft   Anchor = "center-left"
	Center       Anchor = "center"
	CenterRight  Anchor = "center-right"
	BottomLeft   Anchor = "bottom-left"
	BottomCenter Anchor = "bottom-center"
	BottomRight  Anchor = "bottom-right"
)

// Anchors lists every anchor in reading order.
var Anchors = []Anchor{
	TopLeft, TopCenter, TopRight,
	CenterLeft, Center, CenterRight,
	BottomLeft, BottomCenter, BottomRight,
}

// placement holds the horizontal and vertical alignment of an anchor as
// 0 (start), 1 (middle) or 2 (end), plus the short position code used by
// PDF tooling.
type placement struct {
	h, v int
	code string
}

var placements = map[Anchor]placement{
	TopLeft:      {0, 0, "tl"},
	TopCenter:    {1, 0, "tc"},
	TopRight:     {2, 0, "tr"},
	CenterLeft:   {0, 1, "l"},
	Center:       {1, 1, "c"},
	CenterRight:  {2, 1, "r"},
	BottomLeft:   {0, 2, "bl"},
	BottomCenter: {1, 2, "bc"},
	BottomRight:  {2, 2, "br"},
}

// DefaultAnchor is used when no anchor is named.
const DefaultAnchor = BottomRight

// ParseAnchor resolves an anchor name. Underscores and spaces are accepted
// in place of hyphens, and "middle" is accepted for "center". The empty
// string resolves to DefaultAnchor.
func ParseAnchor(s string) (Anchor, error) {
	if s == "" {
		return DefaultAnchor, nil
	}
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-", "middle", "center", "centre", "center").Replace(norm)
	if norm == "center-center" {
		norm = "center"
	}
	a := Anchor(norm)
	if _, ok := placements[a]; !ok {
		return "", errors.New(errors.ErrCodeInvalidAnchor, "unknown anchor %q (must be one of %s)", s, anchorList())
	}
	return a, nil
}

func anchorList() string {
	names := make([]string, len(Anchors))
	for i, a := range Anchors {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// Code returns the short position code (tl, tc, tr, l, c, r, bl, bc, br).
func (a Anchor) Code() string {
	return placements[a].code
}

// Valid reports whether a is a known anchor.
func (a Anchor) Valid() bool {
	_, ok := placements[a]
	return ok
}

// Offset returns the top-left point at which an item of size item must be
// drawn so that it sits at anchor inside canvas, inset by margin on the
// anchored edges. Image coordinates, y grows downward.
func Offset(anchor Anchor, canvas, item image.Point, margin int) (image.Point, error) {
	p, ok := placements[anchor]
	if !ok {
		return image.Point{}, errors.New(errors.ErrCodeInvalidAnchor, "unknown anchor %q", anchor)
	}
	return image.Pt(
		align(p.h, canvas.X, item.X, margin),
		align(p.v, canvas.Y, item.Y, margin),
	), nil
}

func align(mode, canvas, item, margin int) int {
	switch mode {
	case 0:
		return margin
	case 1:
		return (canvas - item) / 2
	default:
		return canvas - item - margin
	}
}

// PDFOffset converts margin into the dx/dy pair expected for a PDF stamp at
// anchor. PDF coordinates grow upward, so the signs point inward from the
// anchored edges.
func PDFOffset(anchor Anchor, margin float64) (dx, dy float64) {
	p := placements[anchor]
	switch p.h {
	case 0:
		dx = margin
	case 2:
		dx = -margin
	}
	switch p.v {
	case 0:
		dy = -margin
	case 2:
		dy = margin
	}
	return dx, dy
}
