// Package api exposes the booking engine over HTTP JSON. It is the
// presentation collaborator: it translates requests into engine calls
// and engine results, validation reasons, and conflict advisories back
// into responses.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"probook/internal/engine"
)

// Config holds HTTP server settings.
type Config struct {
	Port int

	// APIKey, when non-empty, is required in the x-api-key header of
	// every /api request.
	APIKey string

	// RateLimitRPS / RateLimitBurst bound request throughput.
	RateLimitRPS   float64
	RateLimitBurst int
}

// HTTPServer serves the booking API.
type HTTPServer struct {
	engine  *engine.Engine
	config  Config
	logger  *zerolog.Logger
	limiter *rate.Limiter
	server  *http.Server
}

// NewHTTPServer wires routes and middleware around the engine.
func NewHTTPServer(eng *engine.Engine, cfg Config, logger *zerolog.Logger) *HTTPServer {
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 20
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 40
	}

	s := &HTTPServer{
		engine:  eng,
		config:  cfg,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/services", s.handleServices)
	mux.HandleFunc("GET /api/bookings", s.handleListBookings)
	mux.HandleFunc("POST /api/bookings", s.handleCreateBooking)
	mux.HandleFunc("PUT /api/bookings/{id}", s.handleUpdateBooking)
	mux.HandleFunc("DELETE /api/bookings/{id}", s.handleDeleteBooking)
	mux.HandleFunc("POST /api/bookings/{id}/status", s.handleSetStatus)
	mux.HandleFunc("GET /api/bookings/export", s.handleExport)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler (used by tests).
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("api server started")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func (s *HTTPServer) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		if s.config.APIKey != "" && r.Header.Get("x-api-key") != s.config.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
