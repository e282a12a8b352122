package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxFilenameLength matches the common filesystem limit for a single path element.
const maxFilenameLength = 255

// ValidateFilename validates an uploaded or user-supplied filename for safety.
// It rejects names that could be used for path traversal once joined onto a
// working directory.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No hidden files (leading dot)
//   - Maximum length of 255 bytes
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if len(name) > maxFilenameLength {
		return New(ErrCodeInvalidPath, "filename too long (max %d characters)", maxFilenameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "filename cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "filename cannot be a hidden file")
	}

	return nil
}

// ValidateExtension checks that name ends in one of the allowed extensions.
// Extensions are compared case-insensitively and given with their leading dot.
func ValidateExtension(name string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return New(ErrCodeInvalidFormat, "file %q has no extension", name)
	}
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported file type %q (allowed: %s)", ext, strings.Join(allowed, ", "))
}

// ValidatePercent checks that v lies in the inclusive 0–100 range used by
// tolerance, opacity and quality parameters.
func ValidatePercent(field string, v float64) error {
	if v < 0 || v > 100 {
		return New(ErrCodeInvalidInput, "%s must be between 0 and 100, got %g", field, v)
	}
	return nil
}
