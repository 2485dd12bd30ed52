package app

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cognitypin/cognitypin/internal/session"
)

// ReadingView is a reading session with its registry id.
type ReadingView struct {
	ID string `json:"id"`
	session.ReadingSnapshot
}

// QuizView is a quiz session with its registry id.
type QuizView struct {
	ID string `json:"id"`
	session.QuizSnapshot
}

// StartReading opens a reading session for an article and starts its
// auto-progress ticker.
func (s *Service) StartReading(articleID string) (ReadingView, error) {
	a, err := s.Article(articleID)
	if err != nil {
		return ReadingView{}, err
	}

	r := session.NewReading(a, s.clock, s.bus)
	r.Start()
	id := uuid.NewString()

	s.mu.Lock()
	s.readings[id] = r
	s.mu.Unlock()
	s.metrics.SessionOpened("reading")

	return ReadingView{ID: id, ReadingSnapshot: r.Snapshot()}, nil
}

func (s *Service) reading(id string) (*session.ReadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.readings[id]
	if !ok {
		return nil, fmt.Errorf("reading session %s: %w", id, ErrSessionNotFound)
	}
	return r, nil
}

// Reading returns the state of a reading session.
func (s *Service) Reading(id string) (ReadingView, error) {
	r, err := s.reading(id)
	if err != nil {
		return ReadingView{}, err
	}
	return ReadingView{ID: id, ReadingSnapshot: r.Snapshot()}, nil
}

// UpdateReading applies an externally observed progress ratio.
func (s *Service) UpdateReading(id string, ratio float64) (ReadingView, error) {
	r, err := s.reading(id)
	if err != nil {
		return ReadingView{}, err
	}
	r.UpdateProgress(ratio)
	return ReadingView{ID: id, ReadingSnapshot: r.Snapshot()}, nil
}

// CompleteReading finishes a reading session. The session stays open until
// CloseReading.
func (s *Service) CompleteReading(id string) (ReadingView, error) {
	r, err := s.reading(id)
	if err != nil {
		return ReadingView{}, err
	}
	r.Complete()
	return ReadingView{ID: id, ReadingSnapshot: r.Snapshot()}, nil
}

// CloseReading discards a reading session. It reports whether closing
// completed the article.
func (s *Service) CloseReading(id string) (bool, error) {
	s.mu.Lock()
	r, ok := s.readings[id]
	delete(s.readings, id)
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("reading session %s: %w", id, ErrSessionNotFound)
	}
	s.metrics.SessionClosed("reading")
	return r.Close(), nil
}

// StartQuiz opens a quiz over an article's questions.
func (s *Service) StartQuiz(articleID string) (QuizView, error) {
	questions, err := s.Questions(articleID)
	if err != nil {
		return QuizView{}, err
	}

	q := session.NewQuiz(articleID, s.bus)
	if !q.Start(questions) {
		return QuizView{}, fmt.Errorf("quiz for %s: %w", articleID, ErrNoQuestions)
	}
	id := uuid.NewString()

	s.mu.Lock()
	s.quizzes[id] = q
	s.mu.Unlock()
	s.metrics.SessionOpened("quiz")

	return QuizView{ID: id, QuizSnapshot: q.Snapshot()}, nil
}

func (s *Service) quiz(id string) (*session.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz session %s: %w", id, ErrSessionNotFound)
	}
	return q, nil
}

// Quiz returns the state of a quiz session.
func (s *Service) Quiz(id string) (QuizView, error) {
	q, err := s.quiz(id)
	if err != nil {
		return QuizView{}, err
	}
	return QuizView{ID: id, QuizSnapshot: q.Snapshot()}, nil
}

// SelectAnswer records an option for the current question.
func (s *Service) SelectAnswer(id string, option int) (QuizView, error) {
	q, err := s.quiz(id)
	if err != nil {
		return QuizView{}, err
	}
	if !q.SelectAnswer(option) {
		if q.State() != session.InProgress {
			return QuizView{}, fmt.Errorf("quiz session %s: %w", id, ErrQuizNotInProgress)
		}
		return QuizView{}, fmt.Errorf("option %d: %w", option, ErrInvalidOption)
	}
	return QuizView{ID: id, QuizSnapshot: q.Snapshot()}, nil
}

// NextQuestion advances the quiz, completing it on the last question.
func (s *Service) NextQuestion(id string) (QuizView, error) {
	q, err := s.quiz(id)
	if err != nil {
		return QuizView{}, err
	}
	q.Next()
	return QuizView{ID: id, QuizSnapshot: q.Snapshot()}, nil
}

func (s *Service) PreviousQuestion(id string) (QuizView, error) {
	q, err := s.quiz(id)
	if err != nil {
		return QuizView{}, err
	}
	q.Previous()
	return QuizView{ID: id, QuizSnapshot: q.Snapshot()}, nil
}

// CloseQuiz discards a quiz session.
func (s *Service) CloseQuiz(id string) error {
	s.mu.Lock()
	q, ok := s.quizzes[id]
	delete(s.quizzes, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("quiz session %s: %w", id, ErrSessionNotFound)
	}
	q.Close()
	s.metrics.SessionClosed("quiz")
	return nil
}
