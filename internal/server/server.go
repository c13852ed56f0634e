// Package server provides the HTTP gateway: the upload page, the processing
// and export API, and the static file routes for processed images.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/yourpalette/internal/config"
	"github.com/jmylchreest/yourpalette/internal/pipeline"
	"github.com/jmylchreest/yourpalette/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	// UploadsPath is the URL prefix processed and uploaded images are served from.
	UploadsPath = "/static/uploads/"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server is the HTTP gateway in front of the palette pipeline.
type Server struct {
	cfg       config.Config
	store     *storage.Store
	processor *pipeline.Processor
	logger    hclog.Logger
	index     *template.Template
	handler   http.Handler
}

// New creates a Server, creating the upload directory if needed.
func New(cfg config.Config, logger hclog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	store := storage.New(cfg.UploadDir, cfg.UniqueNames, logger)
	if err := store.EnsureDir(); err != nil {
		return nil, err
	}

	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	seed := cfg.Seed
	s := &Server{
		cfg:   cfg,
		store: store,
		processor: pipeline.NewProcessor(pipeline.Options{
			Seed:            &seed,
			MaxSamplePixels: cfg.MaxSamplePixels,
			Logger:          logger,
		}),
		logger: logger.Named("http"),
		index:  index,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleUpload)
	mux.HandleFunc("POST /api/process-image", s.handleProcessImage)
	mux.HandleFunc("POST /api/export-palette", s.handleExportPalette)
	mux.HandleFunc("GET /display/{filename}", s.handleDisplay)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.Handle("GET "+UploadsPath, http.StripPrefix(UploadsPath, http.FileServer(http.Dir(s.cfg.UploadDir))))

	assets, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(assets)))

	return s.logRequests(s.recoverPanics(s.limitBody(mux)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr, "upload_dir", s.cfg.UploadDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
