// Package server exposes classification and history over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ppiankov/wastewise/internal/ledger"
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/pipeline"
)

// Classifier turns a validated image into a verdict
type Classifier interface {
	Classify(ctx context.Context, img *pipeline.Image) (*model.Verdict, error)
}

// ImageFetcher downloads an image from a URL
type ImageFetcher interface {
	FetchWithRetry(ctx context.Context, rawURL string) (*pipeline.Image, error)
}

// Options configures a Server
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	Version        string
	Fetcher        ImageFetcher     // Optional; enables the url form field
	Now            func() time.Time // Clock for the days filter
}

// Server holds the handlers' dependencies
type Server struct {
	classifier Classifier
	ledger     *ledger.Ledger
	fetcher    ImageFetcher
	maxUpload  int64
	version    string
	now        func() time.Time
	router     chi.Router
}

// New builds the server and its routes
func New(classifier Classifier, l *ledger.Ledger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		classifier: classifier,
		ledger:     l,
		fetcher:    opts.Fetcher,
		maxUpload:  opts.MaxUploadBytes,
		version:    opts.Version,
		now:        opts.Now,
	}
	s.router = s.routes(opts.AllowedOrigins)
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(origins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/classify", s.handleClassify)
	r.Get("/stats", s.handleStats)

	r.Route("/records", func(r chi.Router) {
		r.Get("/", s.handleListRecords)
		r.Delete("/", s.handleClearRecords)
		r.Get("/{id}", s.handleGetRecord)
	})

	r.Get("/export", s.handleExport)
	r.Post("/import", s.handleImport)

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
