package transform

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/deskkit/pkg/errors"
)

// Direction controls how Merge arranges its inputs.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
	Grid       Direction = "grid"
)

// ParseDirection resolves a merge direction name.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Horizontal, Vertical, Grid:
		return Direction(s), nil
	case "":
		return Horizontal, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown merge direction %q (must be horizontal, vertical or grid)", s)
}

// MergeOptions configures Merge.
type MergeOptions struct {
	Direction  Direction
	Gap        int
	Background color.NRGBA
	// Columns is the number of cells per row for Grid. Defaults to 2.
	Columns int
}

// Merge composes images onto one canvas. Horizontal and vertical layouts
// place images edge to edge (top- or left-aligned); Grid uses uniform cells
// sized to the largest input with each image centred in its cell.
func Merge(images []*image.NRGBA, opts MergeOptions) (*image.NRGBA, error) {
	if len(images) == 0 {
		return nil, errors.New(errors.ErrCodeNoImage, "no images to merge")
	}
	for i, img := range images {
		if img == nil || img.Bounds().Empty() {
			return nil, errors.New(errors.ErrCodeNoImage, "image %d is empty", i+1)
		}
	}
	if opts.Gap < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "gap must not be negative")
	}

	switch opts.Direction {
	case Horizontal, "":
		return mergeLinear(images, opts, true), nil
	case Vertical:
		return mergeLinear(images, opts, false), nil
	case Grid:
		return mergeGrid(images, opts), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown merge direction %q", opts.Direction)
	}
}

func mergeLinear(images []*image.NRGBA, opts MergeOptions, horizontal bool) *image.NRGBA {
	var w, h int
	for i, img := range images {
		b := img.Bounds()
		if horizontal {
			w += b.Dx()
			if i > 0 {
				w += opts.Gap
			}
			h = max(h, b.Dy())
		} else {
			h += b.Dy()
			if i > 0 {
				h += opts.Gap
			}
			w = max(w, b.Dx())
		}
	}

	canvas := imaging.New(w, h, opts.Background)
	offset := 0
	for _, img := range images {
		b := img.Bounds()
		if horizontal {
			canvas = imaging.Paste(canvas, img, image.Pt(offset, 0))
			offset += b.Dx() + opts.Gap
		} else {
			canvas = imaging.Paste(canvas, img, image.Pt(0, offset))
			offset += b.Dy() + opts.Gap
		}
	}
	return canvas
}

func mergeGrid(images []*image.NRGBA, opts MergeOptions) *image.NRGBA {
	cols := opts.Columns
	if cols <= 0 {
		cols = 2
	}
	cols = min(cols, len(images))
	rows := (len(images) + cols - 1) / cols

	var cellW, cellH int
	for _, img := range images {
		cellW = max(cellW, img.Bounds().Dx())
		cellH = max(cellH, img.Bounds().Dy())
	}

	w := cols*cellW + (cols-1)*opts.Gap
	h := rows*cellH + (rows-1)*opts.Gap
	canvas := imaging.New(w, h, opts.Background)

	for i, img := range images {
		col, row := i%cols, i/cols
		b := img.Bounds()
		x := col*(cellW+opts.Gap) + (cellW-b.Dx())/2
		y := row*(cellH+opts.Gap) + (cellH-b.Dy())/2
		canvas = imaging.Paste(canvas, img, image.Pt(x, y))
	}
	return canvas
}
