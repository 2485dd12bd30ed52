// Package app wires the catalog, progress store and sessions together and
// exposes the operations used by the HTTP API and the CLI.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/events"
	"github.com/cognitypin/cognitypin/internal/feed"
	"github.com/cognitypin/cognitypin/internal/platform/clock"
	"github.com/cognitypin/cognitypin/internal/platform/metrics"
	"github.com/cognitypin/cognitypin/internal/prefs"
	"github.com/cognitypin/cognitypin/internal/progress"
	"github.com/cognitypin/cognitypin/internal/scoring"
	"github.com/cognitypin/cognitypin/internal/session"
)

const defaultDailyGoal = 3

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoQuestions       = errors.New("article has no quiz questions")
	ErrInvalidOption     = errors.New("invalid answer option")
	ErrQuizNotInProgress = errors.New("quiz is not in progress")
)

// Config holds dependencies for the service.
type Config struct {
	Catalog   *content.Catalog
	Prefs     prefs.Store // nil keeps everything in memory
	Bus       *events.Bus
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	DailyGoal int // reads per day (default 3)
}

// Service is the application core. It is safe for concurrent use.
type Service struct {
	repo      *content.Repository
	progress  *progress.Store
	prefs     prefs.Store
	bus       *events.Bus
	clock     clock.Clock
	metrics   *metrics.Metrics
	dailyGoal int
	feed      *feed.Feed

	mu       sync.Mutex
	readings map[string]*session.ReadingSession
	quizzes  map[string]*session.QuizSession
	unsub    []func()
}

// New creates the service, loads persisted progress and subscribes the
// progress store to completion events.
func New(cfg Config) *Service {
	c := cfg.Clock
	if c == nil {
		c = clock.Real{}
	}
	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus().WithNow(c.Now)
	}
	goal := cfg.DailyGoal
	if goal <= 0 {
		goal = defaultDailyGoal
	}

	store := progress.NewStore(cfg.Prefs, progress.WithClock(c))
	s := &Service{
		repo:      content.NewRepository(cfg.Catalog, store, cfg.Prefs),
		progress:  store,
		prefs:     cfg.Prefs,
		bus:       bus,
		clock:     c,
		metrics:   cfg.Metrics,
		dailyGoal: goal,
		readings:  make(map[string]*session.ReadingSession),
		quizzes:   make(map[string]*session.QuizSession),
	}
	s.repo.RestoreBookmarks()
	s.feed = feed.New(s.repo, c)

	s.unsub = append(s.unsub, bus.Subscribe(s.apply))
	if cfg.Metrics != nil {
		s.unsub = append(s.unsub, bus.Subscribe(cfg.Metrics.Observe))
	}
	return s
}

// apply folds completion events into the progress store.
func (s *Service) apply(ev events.Event) {
	switch ev.Kind {
	case events.KindArticleCompleted:
		s.progress.MarkRead(ev.ArticleID, ev.ReadingMinutes)
		slog.Info("article completed", "article_id", ev.ArticleID, "minutes", ev.ReadingMinutes)
	case events.KindQuizCompleted:
		s.progress.RecordQuizScore(ev.ArticleID, ev.Score)
		slog.Info("quiz completed", "article_id", ev.ArticleID, "score", ev.Score)
	}
}

func (s *Service) Repository() *content.Repository { return s.repo }
func (s *Service) Progress() *progress.Store       { return s.progress }
func (s *Service) Bus() *events.Bus                { return s.bus }
func (s *Service) Clock() clock.Clock              { return s.clock }
func (s *Service) DailyGoal() int                  { return s.dailyGoal }

// Close ends every open session and detaches from the bus. Sessions that
// were mostly read still complete.
func (s *Service) Close() {
	s.mu.Lock()
	readings := s.readings
	quizzes := s.quizzes
	s.readings = make(map[string]*session.ReadingSession)
	s.quizzes = make(map[string]*session.QuizSession)
	s.mu.Unlock()

	for _, r := range readings {
		r.Close()
		s.metrics.SessionClosed("reading")
	}
	for _, q := range quizzes {
		q.Close()
		s.metrics.SessionClosed("quiz")
	}
	for _, fn := range s.unsub {
		fn()
	}
	s.unsub = nil
	s.feed.Close()
}

// Home is the home screen: the feed plus the featured and health picks.
type Home struct {
	Query         string            `json:"query"`
	Category      content.Category  `json:"category,omitempty"`
	HasFilters    bool              `json:"hasFilters"`
	Articles      []content.Article `json:"articles"`
	Featured      []content.Article `json:"featured"`
	HealthRelated []content.Article `json:"healthRelated"`
}

// Home returns the home screen, applying any pending filter change.
func (s *Service) Home() Home {
	articles := s.feed.Articles()
	return Home{
		Query:         s.feed.Query(),
		Category:      s.feed.Category(),
		HasFilters:    s.feed.HasFilters(),
		Articles:      articles,
		Featured:      s.repo.Featured(),
		HealthRelated: s.repo.HealthRelated(),
	}
}

// SetFeedFilters updates the home feed's search text and category. The
// list is recomputed once the changes settle.
func (s *Service) SetFeedFilters(query string, category content.Category) {
	s.feed.SetQuery(query)
	s.feed.SetCategory(category)
}

func (s *Service) ClearFeedFilters() {
	s.feed.ClearFilters()
}

// Articles lists the catalog filtered by category and search text.
func (s *Service) Articles(category content.Category, query string) []content.Article {
	return s.repo.Filter(query, category)
}

// Article looks up one article.
func (s *Service) Article(id string) (content.Article, error) {
	a, ok := s.repo.Get(id)
	if !ok {
		return content.Article{}, fmt.Errorf("article %s: %w", id, content.ErrArticleNotFound)
	}
	return a, nil
}

// Related ranks the catalog against one article.
func (s *Service) Related(id string, limit int) ([]content.Article, error) {
	a, err := s.Article(id)
	if err != nil {
		return nil, err
	}
	return scoring.Related(a, s.repo.All(), limit), nil
}

// Questions returns the quiz questions of an article.
func (s *Service) Questions(id string) ([]content.QuizQuestion, error) {
	if _, err := s.Article(id); err != nil {
		return nil, err
	}
	return s.repo.QuestionsFor(id), nil
}

func (s *Service) ToggleBookmark(id string) (bool, error) {
	return s.repo.ToggleBookmark(id)
}

func (s *Service) Bookmarks() []content.Article {
	return s.repo.Bookmarked()
}

// Recommendations returns unread articles for the home screen.
func (s *Service) Recommendations() []content.Article {
	return scoring.ForReader(s.repo.All(), s.progress.IsRead, scoring.DefaultReaderLimit)
}

// InsightSuggestion pairs a health insight with articles to read.
type InsightSuggestion struct {
	scoring.Insight
	Articles []content.Article `json:"articles"`
}

// HealthInsights derives insights from host-supplied metrics.
func (s *Service) HealthInsights(m scoring.Metrics) []InsightSuggestion {
	insights := scoring.Insights(m)
	out := make([]InsightSuggestion, 0, len(insights))
	for _, in := range insights {
		out = append(out, InsightSuggestion{Insight: in, Articles: scoring.ForInsight(in, s.repo.All())})
	}
	return out
}

// Summary returns the reader's statistics.
func (s *Service) Summary() progress.Summary {
	return s.progress.Summarize(s.dailyGoal)
}

// DeleteAccount clears progress and removes every persisted key. Open
// sessions are discarded without completing.
func (s *Service) DeleteAccount() error {
	s.mu.Lock()
	for id, r := range s.readings {
		r.Discard()
		delete(s.readings, id)
		s.metrics.SessionClosed("reading")
	}
	for id, q := range s.quizzes {
		q.Close()
		delete(s.quizzes, id)
		s.metrics.SessionClosed("quiz")
	}
	s.mu.Unlock()

	s.progress.Reset()
	if s.prefs == nil {
		return nil
	}
	if err := prefs.DeleteAll(s.prefs, prefs.AccountKeys...); err != nil {
		return fmt.Errorf("deleting account data: %w", err)
	}
	slog.Info("account deleted")
	return nil
}
