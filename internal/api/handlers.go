package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/progress"
	"github.com/cognitypin/cognitypin/internal/scoring"
)

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	var category content.Category
	if v := r.URL.Query().Get("category"); v != "" {
		c, ok := content.ParseCategory(v)
		if !ok {
			// Unknown categories match nothing.
			respondJSON(w, http.StatusOK, []content.Article{})
			return
		}
		category = c
	}
	respondJSON(w, http.StatusOK, s.app.Articles(category, r.URL.Query().Get("q")))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.app.Home())
}

type feedFilters struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

func (s *Server) handleSetFeedFilters(w http.ResponseWriter, r *http.Request) {
	var req feedFilters
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, fmt.Errorf("invalid filters: %w", err))
		return
	}
	var category content.Category
	if req.Category != "" {
		c, ok := content.ParseCategory(req.Category)
		if !ok {
			respondErr(w, http.StatusBadRequest, fmt.Errorf("unknown category %q", req.Category))
			return
		}
		category = c
	}
	s.app.SetFeedFilters(req.Query, category)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleClearFeedFilters(w http.ResponseWriter, r *http.Request) {
	s.app.ClearFeedFilters()
	w.WriteHeader(http.StatusAccepted)
}

type articleResponse struct {
	content.Article
	IsBookmarked bool   `json:"isBookmarked"`
	IsRead       bool   `json:"isRead"`
	ReadingLabel string `json:"readingLabel"`
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.app.Article(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, articleResponse{
		Article:      a,
		IsBookmarked: s.app.Repository().IsBookmarked(a.ID),
		IsRead:       s.app.Progress().IsRead(a.ID),
		ReadingLabel: a.ReadingLabel(),
	})
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	limit := scoring.DefaultRelatedLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondErr(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}
	related, err := s.app.Related(r.PathValue("id"), limit)
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, related)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := s.app.Questions(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, qs)
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	on, err := s.app.ToggleBookmark(id)
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "isBookmarked": on})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.app.Repository().CategoryCounts())
}

func (s *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.app.Bookmarks())
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.app.Recommendations())
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var m scoring.Metrics
	if err := decodeJSON(r, &m); err != nil {
		respondErr(w, http.StatusBadRequest, fmt.Errorf("invalid metrics: %w", err))
		return
	}
	if m.Steps < 0 || m.HeartRate < 0 || m.SleepHours < 0 {
		respondErr(w, http.StatusBadRequest, errors.New("metrics must not be negative"))
		return
	}
	respondJSON(w, http.StatusOK, s.app.HealthInsights(m))
}

type progressResponse struct {
	Summary      progress.Summary `json:"summary"`
	ReadingRatio float64          `json:"readingRatio"`
	ArticlesRead []string         `json:"articlesRead"`
	QuizScores   map[string]int   `json:"quizScores"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p := s.app.Progress().Snapshot()
	respondJSON(w, http.StatusOK, progressResponse{
		Summary:      s.app.Summary(),
		ReadingRatio: s.app.Progress().ReadingRatio(s.app.Repository().Len()),
		ArticlesRead: p.ArticlesRead.Sorted(),
		QuizScores:   p.QuizScores,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	goal := s.app.DailyGoal()
	var buf bytes.Buffer

	if r.URL.Query().Get("format") == "text" {
		if err := s.app.Progress().Export(&buf, goal); err != nil {
			respondAppErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = buf.WriteTo(w)
		return
	}

	if err := s.app.Progress().ExportWorkbook(&buf, goal); err != nil {
		respondAppErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="cognitypin-progress.xlsx"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteAccount(); err != nil {
		respondAppErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
