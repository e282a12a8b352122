package palette

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/fonts"
)

// ExportJSON writes p as indented JSON.
func ExportJSON(w io.Writer, p Palette) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ImportJSON reads a palette written by ExportJSON. A bare JSON array of hex
// strings is accepted too. Colours are normalised and order is preserved.
func ImportJSON(r io.Reader) (Palette, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Palette{}, err
	}

	var p Palette
	if err := json.Unmarshal(data, &p); err != nil {
		var hexes []string
		if err2 := json.Unmarshal(data, &hexes); err2 != nil {
			return Palette{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode palette JSON")
		}
		p.Colors = hexes
	}
	if len(p.Colors) == 0 {
		return Palette{}, errors.New(errors.ErrCodeInvalidInput, "palette has no colours")
	}

	created := p.CreatedAt
	out, err := New(p.Name, p.Colors)
	if err != nil {
		return Palette{}, err
	}
	if !created.IsZero() {
		out.CreatedAt = created
	}
	return out, nil
}

var cssIdent = regexp.MustCompile(`[^a-z0-9]+`)

// ExportCSS writes the palette as CSS custom properties on :root.
func ExportCSS(w io.Writer, p Palette) error {
	prefix := strings.Trim(cssIdent.ReplaceAllString(strings.ToLower(p.Name), "-"), "-")
	if prefix == "" {
		prefix = "color"
	}
	var b strings.Builder
	b.WriteString(":root {\n")
	for i, c := range p.Colors {
		fmt.Fprintf(&b, "  --%s-%d: %s;\n", prefix, i+1, c)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// ExportSVG writes the palette as a strip of labelled swatches.
func ExportSVG(w io.Writer, p Palette) error {
	const sw, sh, label = 120, 120, 28
	width := sw * max(len(p.Colors), 1)
	height := sh + label

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&b, `<style>@font-face{font-family:'%s';src:url(data:font/ttf;base64,%s)}text{font-family:%s;font-size:14px}</style>`,
		fonts.FontFamily, fonts.RegularBase64(), fonts.FallbackFontFamily)
	if p.Name != "" {
		fmt.Fprintf(&b, `<title>%s</title>`, html.EscapeString(p.Name))
	}
	for i, c := range p.Colors {
		x := i * sw
		fmt.Fprintf(&b, `<rect x="%d" y="0" width="%d" height="%d" fill="%s"/>`, x, sw, sh, c)
		fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle">%s</text>`, x+sw/2, sh+label-9, c)
	}
	b.WriteString(`</svg>`)
	_, err := io.WriteString(w, b.String())
	return err
}
