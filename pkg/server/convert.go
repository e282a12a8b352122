package server

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/deskkit/pkg/convert"
	"github.com/matzehuels/deskkit/pkg/errors"
)

// Response messages for /api/pdf-convert.
const (
	msgNoFile           = "No file uploaded"
	msgTooLarge         = "File too large"
	msgConversionFailed = "Conversion failed"
)

// multipartMemory is the part of an upload kept in memory before spilling to
// temporary files.
const multipartMemory = 8 << 20

func (s *Server) handlePDFConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	name := filepath.Base(filepath.FromSlash(strings.ReplaceAll(header.Filename, `\`, "/")))
	if err := errors.ValidateFilename(name); err != nil {
		writeError(w, errors.HTTPStatus(err), errors.UserMessage(err))
		return
	}
	if err := convert.Supported(name); err != nil {
		writeError(w, errors.HTTPStatus(err), errors.UserMessage(err))
		return
	}

	work := filepath.Join(s.opts.UploadDir, uuid.NewString())
	if err := os.MkdirAll(work, 0o755); err != nil {
		s.logger.Error("create upload directory", "dir", work, "error", err)
		writeError(w, http.StatusInternalServerError, msgConversionFailed)
		return
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			s.logger.Warn("remove upload directory", "dir", work, "error", err)
		}
	}()

	input := filepath.Join(work, name)
	if err := saveUpload(file, input); err != nil {
		s.logger.Error("save upload", "file", name, "error", err)
		writeError(w, http.StatusInternalServerError, msgConversionFailed)
		return
	}

	s.logger.Info("converting", "file", name, "size", header.Size)
	out, err := s.conv.Convert(r.Context(), input, work)
	if err != nil {
		s.logger.Error("conversion failed", "file", name, "error", err)
		writeError(w, http.StatusInternalServerError, msgConversionFailed)
		return
	}

	pdf, err := os.Open(out)
	if err != nil {
		s.logger.Error("open converted file", "file", out, "error", err)
		writeError(w, http.StatusInternalServerError, msgConversionFailed)
		return
	}
	defer pdf.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", contentDisposition(pdfName(name)))
	if info, err := pdf.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, pdf); err != nil {
		s.logger.Warn("write response", "file", name, "error", err)
	}
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// pdfName swaps the extension of name for .pdf.
func pdfName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".pdf"
}

// contentDisposition builds an attachment header. Names outside printable
// ASCII also get an RFC 5987 filename* parameter.
func contentDisposition(name string) string {
	ascii := true
	safe := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\':
			return '_'
		case r < 0x20 || r > 0x7e:
			ascii = false
			return '_'
		}
		return r
	}, name)
	if ascii {
		return fmt.Sprintf("attachment; filename=%q", safe)
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", safe, url.PathEscape(name))
}
