package api

import (
	"fmt"
	"net/http"
)

type startRequest struct {
	ArticleID string `json:"articleId"`
}

func (s *Server) handleStartReading(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}
	view, err := s.app.StartReading(req.ArticleID)
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.Reading(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

func (s *Server) handleUpdateReading(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decodeJSON(r, &req); err != nil || req.Progress == nil {
		respondErr(w, http.StatusBadRequest, fmt.Errorf("invalid request: progress is required"))
		return
	}
	view, err := s.app.UpdateReading(r.PathValue("id"), *req.Progress)
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCompleteReading(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.CompleteReading(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCloseReading(w http.ResponseWriter, r *http.Request) {
	completed, err := s.app.CloseReading(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}
	view, err := s.app.StartQuiz(req.ArticleID)
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.Quiz(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type answerRequest struct {
	Option *int `json:"option"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil || req.Option == nil {
		respondErr(w, http.StatusBadRequest, fmt.Errorf("invalid request: option is required"))
		return
	}
	view, err := s.app.SelectAnswer(r.PathValue("id"), *req.Option)
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.NextQuestion(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	view, err := s.app.PreviousQuestion(r.PathValue("id"))
	if err != nil {
		respondAppErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCloseQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.app.CloseQuiz(r.PathValue("id")); err != nil {
		respondAppErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
