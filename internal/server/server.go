// Package server exposes the ingestion entry points over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/quote-intake/internal/config"
	"github.com/sells-group/quote-intake/internal/intake"
	"github.com/sells-group/quote-intake/internal/store"
)

// Ingester processes one named document per call.
type Ingester interface {
	ProcessEmailBody(ctx context.Context, blobName string) *intake.Outcome
	ProcessPDFAttachment(ctx context.Context, attachmentName string) *intake.Outcome
}

// Server routes trigger requests to an Ingester and serves read-only
// submission queries from the store.
type Server struct {
	ingester Ingester
	store    store.Store
	limiter  *clientLimiter
	router   chi.Router
}

// New builds a Server. A zero rate limit disables throttling.
func New(ing Ingester, st store.Store, cfg config.ServerConfig) *Server {
	s := &Server{
		ingester: ing,
		store:    st,
		limiter:  newClientLimiter(cfg.RateLimit, cfg.RateBurst),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Post("/api/ProcessEmailBody", s.handleEmailBody)
		r.Post("/api/ProcessPDFAttachment", s.handlePDFAttachment)
	})

	r.Get("/submissions", s.handleListSubmissions)
	r.Get("/submissions/{id}", s.handleGetSubmission)

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
