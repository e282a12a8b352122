package errors

import (
	"strings"
	"testing"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid docx", "report.docx", false},
		{"valid with spaces", "my report (final).docx", false},
		{"valid unicode", "résumé.odt", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300) + ".docx", true},
		{"slash", "dir/report.docx", true},
		{"backslash", "dir\\report.docx", true},
		{"traversal", "..docx", true},
		{"hidden", ".bashrc", true},
		{"null byte", "foo\x00.docx", true},
		{"newline", "foo\n.docx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateFilename(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateExtension(t *testing.T) {
	allowed := []string{".docx", ".odt", ".txt"}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"allowed", "a.docx", false},
		{"allowed uppercase", "A.DOCX", false},
		{"allowed txt", "notes.txt", false},
		{"not allowed", "a.exe", true},
		{"no extension", "README", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExtension(tt.input, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExtension(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFormat) {
				t.Errorf("ValidateExtension(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidatePercent(t *testing.T) {
	for _, v := range []float64{0, 50, 100} {
		if err := ValidatePercent("tolerance", v); err != nil {
			t.Errorf("ValidatePercent(%g) = %v", v, err)
		}
	}
	for _, v := range []float64{-1, 100.5} {
		if err := ValidatePercent("tolerance", v); err == nil {
			t.Errorf("ValidatePercent(%g) should fail", v)
		}
	}
}
