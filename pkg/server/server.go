// Package server exposes the document-to-PDF converter over HTTP.
//
// Routes:
//
//	POST /api/pdf-convert   multipart field "file" -> application/pdf
//	GET  /health            {"status":"ok","version":...}
//
// Every upload is written into its own uploads/<uuid>/ directory, which is
// removed when the request finishes, whether the conversion succeeded or not.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/deskkit/pkg/buildinfo"
	"github.com/matzehuels/deskkit/pkg/config"
)

// Converter turns the document at inputPath into a PDF inside outDir and
// returns the PDF path. *convert.Converter implements it.
type Converter interface {
	Convert(ctx context.Context, inputPath, outDir string) (string, error)
}

// Options configures the server.
type Options struct {
	Addr           string
	UploadDir      string
	MaxUploadBytes int64
}

// OptionsFromConfig maps the [server] config section onto Options.
func OptionsFromConfig(c config.Server) Options {
	return Options{
		Addr:           c.Addr,
		UploadDir:      c.UploadDir,
		MaxUploadBytes: c.MaxUploadBytes(),
	}
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = ":3000"
	}
	if o.UploadDir == "" {
		o.UploadDir = "uploads"
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 50 << 20
	}
}

// Server is the HTTP front end.
type Server struct {
	opts   Options
	conv   Converter
	logger *log.Logger
	router chi.Router
}

// New builds a server around conv.
func New(conv Converter, opts Options, logger *log.Logger) *Server {
	opts.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{opts: opts, conv: conv, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Current()})
	})
	r.Post("/api/pdf-convert", s.handlePDFConvert)
	return r
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.opts.Addr }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown", "error", err)
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs one line per request through logger.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr)
		})
	}
}
