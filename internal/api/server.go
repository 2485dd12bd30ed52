// Package api serves the application over HTTP to the local UI shell.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cognitypin/cognitypin/internal/app"
	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/platform/metrics"
)

const (
	maxBody      = 1 << 16
	checkTimeout = 2 * time.Second
)

// Check is a named readiness probe, such as a database ping.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Config holds dependencies for the API server.
type Config struct {
	App     *app.Service
	Metrics *metrics.Metrics // optional
	Checks  []Check
}

// Server routes HTTP requests to the application service.
type Server struct {
	app     *app.Service
	metrics *metrics.Metrics
	checks  []Check
}

// New creates an API server.
func New(cfg Config) *Server {
	return &Server{app: cfg.App, metrics: cfg.Metrics, checks: cfg.Checks}
}

// Handler returns the routed handler, wrapped with request metrics when
// configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("GET /events", s.handleEvents)

	mux.HandleFunc("GET /api/feed", s.handleHome)
	mux.HandleFunc("PUT /api/feed", s.handleSetFeedFilters)
	mux.HandleFunc("DELETE /api/feed", s.handleClearFeedFilters)

	mux.HandleFunc("GET /api/articles", s.handleListArticles)
	mux.HandleFunc("GET /api/articles/{id}", s.handleGetArticle)
	mux.HandleFunc("GET /api/articles/{id}/related", s.handleRelated)
	mux.HandleFunc("GET /api/articles/{id}/questions", s.handleQuestions)
	mux.HandleFunc("POST /api/articles/{id}/bookmark", s.handleToggleBookmark)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/bookmarks", s.handleBookmarks)
	mux.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("POST /api/health/insights", s.handleInsights)

	mux.HandleFunc("POST /api/reading", s.handleStartReading)
	mux.HandleFunc("GET /api/reading/{id}", s.handleGetReading)
	mux.HandleFunc("PUT /api/reading/{id}/progress", s.handleUpdateReading)
	mux.HandleFunc("POST /api/reading/{id}/complete", s.handleCompleteReading)
	mux.HandleFunc("DELETE /api/reading/{id}", s.handleCloseReading)

	mux.HandleFunc("POST /api/quiz", s.handleStartQuiz)
	mux.HandleFunc("GET /api/quiz/{id}", s.handleGetQuiz)
	mux.HandleFunc("POST /api/quiz/{id}/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/quiz/{id}/next", s.handleNext)
	mux.HandleFunc("POST /api/quiz/{id}/previous", s.handlePrevious)
	mux.HandleFunc("DELETE /api/quiz/{id}", s.handleCloseQuiz)

	mux.HandleFunc("GET /api/progress", s.handleProgress)
	mux.HandleFunc("GET /api/progress/export", s.handleExport)
	mux.HandleFunc("DELETE /api/account", s.handleDeleteAccount)

	if s.metrics == nil {
		return mux
	}
	return s.metrics.Middleware(mux)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	failed := map[string]string{}
	for _, c := range s.checks {
		if err := c.Fn(ctx); err != nil {
			slog.Warn("readiness check failed", "check", c.Name, "error", err)
			failed[c.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondErr(w http.ResponseWriter, code int, err error) {
	respondJSON(w, code, map[string]any{"error": err.Error()})
}

// respondAppErr maps service errors to status codes.
func respondAppErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrArticleNotFound), errors.Is(err, app.ErrSessionNotFound):
		respondErr(w, http.StatusNotFound, err)
	case errors.Is(err, app.ErrInvalidOption):
		respondErr(w, http.StatusBadRequest, err)
	case errors.Is(err, app.ErrNoQuestions), errors.Is(err, app.ErrQuizNotInProgress):
		respondErr(w, http.StatusConflict, err)
	default:
		slog.Error("request failed", "error", err)
		respondErr(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
