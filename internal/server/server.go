// Package server exposes the webhook ingestion surface over HTTP:
// alert intake (auto-detected or explicitly named format), health, and
// metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/oncallops/triage/internal/config"
	"github.com/oncallops/triage/internal/orchestrator"
)

// Processor runs one raw payload through the triage pipeline
type Processor interface {
	Process(ctx context.Context, raw []byte, format string) (*orchestrator.Outcome, error)
}

// Server is the webhook ingestion server
type Server struct {
	cfg       config.ServerConfig
	processor Processor
	limiter   *rate.Limiter
	log       zerolog.Logger
	http      *http.Server
}

// New creates the server, routing intake through the given processor
func New(cfg config.ServerConfig, processor Processor, log zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		processor: processor,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		log:       log,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/webhooks/alert", s.handleAlert)
		r.Post("/webhooks/alert/{format}", s.handleAlert)
	})
	return r
}

// Run serves until ctx is canceled, then drains in-flight requests
// within the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("webhook server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
		defer cancel()
		s.log.Info().Msg("shutting down webhook server")
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// rateLimit sheds load during alert storms beyond the configured rate
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
