// Package server exposes the recommendation engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spigell/assessment-recommender/internal/recommend"
	"go.uber.org/zap"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Recommender is the engine surface the server depends on.
type Recommender interface {
	Recommend(ctx context.Context, query string, constraints recommend.Constraints) (*recommend.Outcome, error)
	Ready() bool
}

// Server is the HTTP front of the recommendation service.
type Server struct {
	addr     string
	engine   Recommender
	data     *recommend.Holder
	logger   *zap.Logger
	validate *validator.Validate
	metrics  *Metrics
	registry *prometheus.Registry
}

// New wires the server around an engine and the shared dataset holder.
func New(addr string, engine Recommender, data *recommend.Holder, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()

	return &Server{
		addr:     addr,
		engine:   engine,
		data:     data,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  NewMetrics(registry),
		registry: registry,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogging)

	r.Get("/health", s.handleHealth)
	r.Post("/recommend", s.handleRecommend)
	r.Post("/recommend/batch", s.handleRecommendBatch)
	r.Get("/assessments/search", s.handleSearch)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Run serves until ctx is canceled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogging tags every request with an id and logs its outcome.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		started := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request handled",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(started)),
		)
	})
}
