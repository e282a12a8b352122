package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskkit/pkg/extract"
	"github.com/matzehuels/deskkit/pkg/server"
)

// sofficeStub writes "<base>.pdf" into the --outdir it is given.
const sofficeStub = `#!/bin/sh
out=""
while [ $# -gt 1 ]; do
  if [ "$1" = "--outdir" ]; then out="$2"; shift; fi
  shift
done
base=$(basename "$1")
printf '%%PDF-1.4\n' > "$out/${base%.*}.pdf"
`

// isolatedCLI returns a CLI logging into buf at level, with config and data
// directories inside a temp dir.
func isolatedCLI(t *testing.T, buf *bytes.Buffer, level log.Level) *CLI {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return New(buf, level)
}

func TestProgressDone(t *testing.T) {
	tests := []struct {
		name string
		msg  string
	}{
		{"conversion", "Converted letter.docx"},
		{"pdf text", extractSummary(extract.Result{Chars: 1200, Pages: 3, Method: extract.MethodTextLayer})},
		{"ocr", extractSummary(extract.Result{Chars: 42, Pages: 1, Method: extract.MethodOCR})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prog := newProgress(newLogger(&buf, log.InfoLevel))
			time.Sleep(2 * time.Millisecond)
			prog.done(tt.msg)

			out := buf.String()
			if !strings.Contains(out, tt.msg+" (") || !strings.Contains(out, "ms)") {
				t.Errorf("progress line = %q, want %q followed by elapsed time", out, tt.msg)
			}
		})
	}
}

func TestProgressHiddenBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.WarnLevel)).done("Converted letter.docx")
	if buf.Len() != 0 {
		t.Errorf("progress logged at warn level: %q", buf.String())
	}
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		res  extract.Result
		want string
	}{
		{extract.Result{Chars: 1200, Pages: 3, Method: extract.MethodTextLayer}, "Extracted 1200 characters from 3 pages"},
		{extract.Result{Chars: 80, Pages: 1, Method: extract.MethodTextLayer}, "Extracted 80 characters from 1 page"},
		{extract.Result{Chars: 42, Pages: 1, Method: extract.MethodOCR}, "Recognised 42 characters with OCR"},
		{extract.Result{Chars: 5, Pages: 1, Method: extract.MethodPlain}, "Read 5 characters"},
	}
	for _, tt := range tests {
		t.Run(string(tt.res.Method), func(t *testing.T) {
			if got := extractSummary(tt.res); got != tt.want {
				t.Errorf("extractSummary = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield log.Default()")
	}

	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)
	ctx := c.commandContext(context.Background())
	if loggerFromContext(ctx) != c.Logger {
		t.Fatal("commandContext should attach the CLI logger")
	}

	c.SetLogLevel(log.DebugLevel)
	loggerFromContext(ctx).Debug("converting document", "input", "letter.docx")
	if !strings.Contains(buf.String(), "letter.docx") {
		t.Error("SetLogLevel should reach loggers taken from the context")
	}
}

func TestConverterLogsThroughCLI(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "soffice")
	if err := os.WriteFile(bin, []byte(sofficeStub), 0o755); err != nil {
		t.Fatal(err)
	}
	in := filepath.Join(dir, "letter.docx")
	if err := os.WriteFile(in, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	c := isolatedCLI(t, &buf, log.DebugLevel)
	conv, err := c.converter(bin, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if conv.Logger != c.Logger {
		t.Fatal("converter should log through the CLI logger")
	}

	out, err := conv.Convert(c.commandContext(context.Background()), in, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(out) != "letter.pdf" {
		t.Errorf("output = %s", out)
	}
	for _, want := range []string{"converting document", "converted document", "letter.docx"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log missing %q:\n%s", want, buf.String())
		}
	}
}

func TestServerLogsThroughCLI(t *testing.T) {
	var buf bytes.Buffer
	c := isolatedCLI(t, &buf, log.InfoLevel)
	conv, err := c.converter("soffice", 0)
	if err != nil {
		t.Fatal(err)
	}
	srv := server.New(conv, server.Options{UploadDir: t.TempDir()}, c.Logger)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{"request", "path=/health", "status=200"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("request log missing %q:\n%s", want, buf.String())
		}
	}
}
