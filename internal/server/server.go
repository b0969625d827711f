// Package server provides the interactive web surface: a single-page UI
// plus a small JSON API around the session front-end. It holds no state of
// its own; sessions and datasets live behind the front-end.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"csv-chat/internal/common/config"
	"csv-chat/internal/common/logger"
	"csv-chat/internal/session"
)

// Server is the HTTP server for the CSV chat UI and API.
type Server struct {
	frontend    *session.FrontEnd
	cfg         config.ServerConfig
	previewRows int
	log         logger.Logger
}

// New creates the HTTP server. previewRows caps how many dataset rows the
// API returns to the browser.
func New(frontend *session.FrontEnd, cfg config.ServerConfig, previewRows int, log logger.Logger) *Server {
	if previewRows <= 0 {
		previewRows = defaultPreviewRows
	}
	return &Server{
		frontend:    frontend,
		cfg:         cfg,
		previewRows: previewRows,
		log:         log.With(map[string]interface{}{"component": "server"}),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// UI
	mux.HandleFunc("GET /{$}", s.handleIndex)

	// API
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}/dataset", s.handleGetDataset)
	mux.HandleFunc("POST /api/sessions/{id}/dataset", s.handleUploadDataset)
	mux.HandleFunc("POST /api/sessions/{id}/query", s.handleQuery)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Operational
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.loggingMiddleware(mux)
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		// Engine calls block the response; the write timeout must outlive them.
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}

	s.log.Info("server starting", map[string]interface{}{"addr": s.cfg.Addr()})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// loggingMiddleware logs each request with its duration and status.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("request", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
