package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/history"
	"github.com/matzehuels/deskkit/pkg/palette"
	"github.com/matzehuels/deskkit/pkg/raster"
)

// testEnv holds a config file pointing at a file store inside a temp dir.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	body := "[store]\nbackend = \"file\"\npath = " + strconvQuote(filepath.Join(dir, "store")) + "\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return testEnv{dir: dir, config: cfg}
}

// strconvQuote quotes s as a TOML basic string.
func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// run executes one deskkit invocation and returns what it wrote to Out.
func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", e.config}, args...))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("deskkit %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// writeTestImage writes a w×h PNG split into a red left half and blue right half.
func writeTestImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 220, A: 255}
			if x >= w/2 {
				c = color.NRGBA{B: 220, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	if err := raster.Save(path, img, raster.EncodeOptions{Format: raster.FormatPNG}); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadSize(t *testing.T, path string) image.Point {
	t.Helper()
	img, _, err := raster.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return img.Bounds().Size()
}

func TestResizeCommand(t *testing.T) {
	env := newTestEnv(t)
	in := writeTestImage(t, env.dir, "photo.png", 40, 20)
	out := filepath.Join(env.dir, "small.png")

	env.mustRun(t, "resize", in, "--width", "20", "-o", out)

	if got := loadSize(t, out); got != image.Pt(20, 10) {
		t.Errorf("resized to %v, want 20x10", got)
	}
}

func TestCropCommandDefaultOutputName(t *testing.T) {
	env := newTestEnv(t)
	in := writeTestImage(t, env.dir, "photo.png", 40, 20)

	env.mustRun(t, "crop", in, "--aspect", "1:1")

	matches, err := filepath.Glob(filepath.Join(env.dir, "photo_crop_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("outputs = %v, want one photo_crop_<timestamp>.png", matches)
	}
	if got := loadSize(t, matches[0]); got != image.Pt(20, 20) {
		t.Errorf("cropped to %v, want 20x20", got)
	}
}

func TestBgremoveChromaCommand(t *testing.T) {
	env := newTestEnv(t)
	in := writeTestImage(t, env.dir, "photo.png", 10, 10)
	out := filepath.Join(env.dir, "cut.png")

	env.mustRun(t, "bgremove", in, "--mode", "chroma", "--key", "#dc0000", "-o", out)

	img, _, err := raster.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("key pixel alpha = %d, want 0", a)
	}
	if a := img.NRGBAAt(9, 0).A; a != 255 {
		t.Errorf("blue pixel alpha = %d, want 255", a)
	}
}

func TestMergeCommand(t *testing.T) {
	env := newTestEnv(t)
	a := writeTestImage(t, env.dir, "a.png", 10, 10)
	b := writeTestImage(t, env.dir, "b.png", 10, 10)
	out := filepath.Join(env.dir, "merged.png")

	env.mustRun(t, "merge", a, b, "--direction", "vertical", "-o", out)

	if got := loadSize(t, out); got != image.Pt(10, 20) {
		t.Errorf("merged size %v, want 10x20", got)
	}
}

func TestImageCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	in := writeTestImage(t, env.dir, "photo.png", 10, 10)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"resize", filepath.Join(env.dir, "nope.png"), "--width", "5"}, errors.ErrCodeFileNotFound},
		{"crop without mode", []string{"crop", in}, errors.ErrCodeInvalidInput},
		{"bad aspect", []string{"crop", in, "--aspect", "wide"}, errors.ErrCodeInvalidInput},
		{"chroma without key", []string{"bgremove", in, "--mode", "chroma"}, errors.ErrCodeInvalidInput},
		{"bad colour", []string{"bgremove", in, "--mode", "chroma", "--key", "#zz"}, errors.ErrCodeInvalidInput},
		{"nothing to adjust", []string{"adjust", in}, errors.ErrCodeInvalidInput},
		{"bad anchor", []string{"watermark", in, "--text", "x", "--anchor", "nowhere"}, errors.ErrCodeInvalidAnchor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWatermarkCommandRecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	in := writeTestImage(t, env.dir, "photo.png", 200, 100)
	out := filepath.Join(env.dir, "marked.png")

	env.mustRun(t, "watermark", in, "--text", "DRAFT", "-o", out)

	if got := loadSize(t, out); got != image.Pt(200, 100) {
		t.Errorf("watermarked size %v", got)
	}
	list := env.mustRun(t, "history", "list", "watermark")
	if !strings.Contains(list, "DRAFT") {
		t.Errorf("history list %q missing entry", list)
	}
}

func TestPaletteCommands(t *testing.T) {
	env := newTestEnv(t)
	in := writeTestImage(t, env.dir, "photo.png", 20, 20)
	jsonPath := filepath.Join(env.dir, "brand.json")

	env.mustRun(t, "palette", "extract", in, "-n", "2", "--name", "brand", "--export", "json", "-o", jsonPath)

	f, err := os.Open(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	p, err := palette.ImportJSON(f)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "brand" || len(p.Colors) != 2 {
		t.Errorf("exported palette = %+v", p)
	}

	css := env.mustRun(t, "palette", "export", "#264653", "#2a9d8f", "--export", "css", "-o", "-")
	if !strings.Contains(css, "#264653") || !strings.Contains(css, "#2a9d8f") {
		t.Errorf("css export = %q", css)
	}

	list := env.mustRun(t, "history", "list", "palette")
	if !strings.Contains(list, "brand") {
		t.Errorf("palette history %q missing brand", list)
	}
}

func TestHistoryCapsAtLimit(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < history.DefaultLimit+2; i++ {
		env.mustRun(t, "palette", "random", "--seed", "7", "--name", "p"+string(rune('a'+i)))
	}

	list := env.mustRun(t, "history", "list", "palette")
	if strings.Contains(list, " pa ") || strings.Contains(list, " pb ") {
		t.Errorf("oldest entries should have been dropped:\n%s", list)
	}
	if !strings.Contains(list, "pl") {
		t.Errorf("newest entry missing:\n%s", list)
	}

	env.mustRun(t, "history", "clear", "palette")
	_, err := env.run(t, "history", "list", "nonsense")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown list error = %v", err)
	}
}

func TestHistorySummary(t *testing.T) {
	env := newTestEnv(t)
	in := writeTestImage(t, env.dir, "photo.png", 60, 40)

	env.mustRun(t, "watermark", in, "--text", "DRAFT", "-o", filepath.Join(env.dir, "marked.png"))
	env.mustRun(t, "palette", "random", "--seed", "3", "--name", "first")
	env.mustRun(t, "palette", "random", "--seed", "4", "--name", "second")

	summary := env.mustRun(t, "history", "list")
	for _, want := range []string{"palette", "watermark", "second", "DRAFT"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if strings.Contains(summary, "extraction") {
		t.Errorf("summary lists an empty history:\n%s", summary)
	}
}

func TestNoneBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("[store]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := testEnv{dir: dir, config: cfg}

	env.mustRun(t, "palette", "random", "--seed", "1", "--name", "kept-nowhere")
	if list := env.mustRun(t, "history", "list", "palette"); strings.Contains(list, "kept-nowhere") {
		t.Errorf("none backend remembered an entry:\n%s", list)
	}
	if _, err := env.run(t, "vault", "save", "n", "-p", "pw", "--text", "x"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("vault on none backend = %v, want UNSUPPORTED", err)
	}
}

func TestVaultCommands(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "vault", "save", "groceries", "-p", "pw", "--text", "milk, eggs")

	got := env.mustRun(t, "vault", "load", "groceries", "-p", "pw")
	if strings.TrimSpace(got) != "milk, eggs" {
		t.Errorf("load = %q", got)
	}

	if _, err := env.run(t, "vault", "load", "groceries", "-p", "wrong"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("wrong password error = %v, want NOT_FOUND", err)
	}

	names := env.mustRun(t, "vault", "list")
	if strings.TrimSpace(names) != "groceries" {
		t.Errorf("list = %q", names)
	}

	env.mustRun(t, "vault", "delete", "groceries", "-p", "pw")
	if _, err := env.run(t, "vault", "load", "groceries", "-p", "pw"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("load after delete = %v, want NOT_FOUND", err)
	}
}

func TestQRCommand(t *testing.T) {
	env := newTestEnv(t)
	png := filepath.Join(env.dir, "site.png")
	svg := filepath.Join(env.dir, "wifi.svg")

	env.mustRun(t, "qr", "url", "https://example.com", "-o", png, "--size", "128")
	if got := loadSize(t, png); got != image.Pt(128, 128) {
		t.Errorf("qr png size %v", got)
	}

	env.mustRun(t, "qr", "wifi", "Home", "-p", "secret", "-f", "svg", "-o", svg)
	data, err := os.ReadFile(svg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("<svg")) && !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("svg output = %.60q", data)
	}

	term := env.mustRun(t, "qr", "text", "hello", "-f", "terminal")
	if term == "" {
		t.Error("terminal QR is empty")
	}

	if _, err := env.run(t, "qr", "text", "hello", "-f", "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}
}

func TestIDPhotoPresetsCommand(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "idphoto", "presets")
	for _, want := range []string{"passport", "1inch", "295×413 px"} {
		if !strings.Contains(out, want) {
			t.Errorf("presets table missing %q:\n%s", want, out)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	r, err := parseRect("10,20,30,40")
	if err != nil || r != image.Rect(10, 20, 40, 60) {
		t.Errorf("parseRect = %v, %v", r, err)
	}
	if _, err := parseRect("1,2,3"); err == nil {
		t.Error("parseRect accepted three numbers")
	}
	w, h, err := parseRatio("16:9")
	if err != nil || w != 16 || h != 9 {
		t.Errorf("parseRatio = %v:%v, %v", w, h, err)
	}
	if _, _, err := parseRatio("0:1"); err == nil {
		t.Error("parseRatio accepted zero")
	}
	if p, err := parsePoint("seed", " 3, 4"); err != nil || p != image.Pt(3, 4) {
		t.Errorf("parsePoint = %v, %v", p, err)
	}
}

func TestOutputFor(t *testing.T) {
	if got := outputFor("explicit.pdf", "a/b.docx", "merged", ".pdf"); got != "explicit.pdf" {
		t.Errorf("explicit output = %q", got)
	}
	got := outputFor("", filepath.Join("docs", "report.pdf"), "watermark", ".pdf")
	dir, name := filepath.Split(got)
	if filepath.Clean(dir) != "docs" || !strings.HasPrefix(name, "report_watermark_") || !strings.HasSuffix(name, ".pdf") {
		t.Errorf("outputFor = %q", got)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{formatBytes(512), "512 B"},
		{formatBytes(1536), "1.5 KB"},
		{formatBytes(3 << 20), "3.0 MB"},
		{truncate("short", 10), "short"},
		{truncate("a  long\nline of text", 8), "a long …"},
		{fileSafe("My Palette/2"), "My-Palette-2"},
		{fileSafe("  "), "palette"},
		{baseName("dir/photo.final.png"), "photo.final"},
		{portOf(":3000"), ":3000"},
		{portOf("127.0.0.1:8080"), ":8080"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestFindEntry(t *testing.T) {
	entries := []history.Entry{{ID: "abc123"}, {ID: "abd456"}}
	if e, err := findEntry(entries, "abc"); err != nil || e.ID != "abc123" {
		t.Errorf("findEntry(abc) = %v, %v", e, err)
	}
	if _, err := findEntry(entries, "ab"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ambiguous prefix error = %v", err)
	}
	if _, err := findEntry(entries, "zz"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing prefix error = %v", err)
	}
}
