package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/spacesedan/nytsentiment/internal/monitoring"
	"github.com/spacesedan/nytsentiment/internal/pipeline"
)

const (
	MAX_UPLOAD_BYTES = 64 << 20
	PREVIEW_ROWS     = 10
)

type Server struct {
	Pipeline *pipeline.Pipeline
	// Health is optional; without it /healthz always reports ok.
	Health *monitoring.Monitor
	Router *chi.Mux
}

func NewServer(p *pipeline.Pipeline, health *monitoring.Monitor) *Server {
	s := &Server{Pipeline: p, Health: health}
	s.Router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/export/{role}", s.handleExport)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[API] Listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("[API] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type HealthResponse struct {
	Status       string          `json:"status"`
	Dependencies map[string]bool `json:"dependencies,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.Health == nil {
		render.JSON(w, r, HealthResponse{Status: "ok"})
		return
	}

	healthy, _ := s.Health.Healthy()
	resp := HealthResponse{Status: "ok", Dependencies: s.Health.Status()}
	if !healthy {
		resp.Status = "degraded"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}
