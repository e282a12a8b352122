// Package bgremove classifies pixels of an image buffer as background and
// makes them transparent.
//
// Four independent classifiers are provided. None of them segments
// foreground from background; each is a per-pixel decision rule and the
// result is a best-effort cutout, not a guaranteed closed mask.
//
//   - [ChromaKey] removes pixels within a colour radius of a key colour.
//   - [Edge] fades pixels that sit in flat (low-gradient) regions.
//   - [FloodFill] grows a 4-connected region from a seed point.
//   - [Auto] removes very bright or very dark pixels in the outer border band.
//
// Tolerances are 0–100 percentages mapped linearly to a 0–255 radius in RGB
// space (see [raster.ToleranceRadius]).
//
// Every classifier works on a copy of the input and reports how many pixels
// it touched:
//
//	opts := bgremove.DefaultOptions(bgremove.ModeFloodFill)
//	opts.Seed = image.Pt(0, 0)
//	res, err := bgremove.Apply(img, opts)
//	if err != nil {
//	    return err
//	}
//	raster.Save("cutout.png", res.Image, raster.EncodeOptions{})
package bgremove
