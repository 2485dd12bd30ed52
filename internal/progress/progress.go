// Package progress tracks what the reader has read, bookmarked and scored,
// and keeps the daily reading streak.
package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cognitypin/cognitypin/internal/platform/clock"
	"github.com/cognitypin/cognitypin/internal/prefs"
)

// IDSet is a set of article ids. It encodes as a sorted JSON array.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

// UserProgress is the persisted progress record.
type UserProgress struct {
	ArticlesRead       IDSet          `json:"articlesRead"`
	BookmarkedArticles IDSet          `json:"bookmarkedArticles"`
	QuizScores         map[string]int `json:"quizScores"`
	TotalReadingTime   int            `json:"totalReadingTime"` // minutes
	StreakDays         int            `json:"streakDays"`
	LastReadDate       *time.Time     `json:"lastReadDate,omitempty"`
	ReadsToday         int            `json:"readsToday"`
}

// New returns an empty progress record.
func New() UserProgress {
	return UserProgress{
		ArticlesRead:       IDSet{},
		BookmarkedArticles: IDSet{},
		QuizScores:         map[string]int{},
	}
}

func (p UserProgress) clone() UserProgress {
	out := p
	out.ArticlesRead = make(IDSet, len(p.ArticlesRead))
	for id := range p.ArticlesRead {
		out.ArticlesRead[id] = struct{}{}
	}
	out.BookmarkedArticles = make(IDSet, len(p.BookmarkedArticles))
	for id := range p.BookmarkedArticles {
		out.BookmarkedArticles[id] = struct{}{}
	}
	out.QuizScores = make(map[string]int, len(p.QuizScores))
	for id, s := range p.QuizScores {
		out.QuizScores[id] = s
	}
	if p.LastReadDate != nil {
		t := *p.LastReadDate
		out.LastReadDate = &t
	}
	return out
}

// Store owns the progress record and writes it back to the preferences
// store after every mutation. Persistence failures are logged, never
// returned.
type Store struct {
	mu    sync.Mutex
	prefs prefs.Store
	clock clock.Clock
	loc   *time.Location
	p     UserProgress
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for streak arithmetic.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLocation sets the time zone that defines a calendar day.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// NewStore loads the record from store. A missing or malformed record
// starts a fresh one. store may be nil for an in-memory only record.
func NewStore(store prefs.Store, opts ...Option) *Store {
	s := &Store{
		prefs: store,
		clock: clock.Real{},
		loc:   time.Local,
		p:     New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *Store) load() {
	if s.prefs == nil {
		return
	}
	data, ok, err := s.prefs.Get(prefs.KeyUserProgress)
	if err != nil {
		slog.Warn("failed to load user progress, starting fresh", "error", err)
		return
	}
	if !ok {
		return
	}

	p := New()
	if err := json.Unmarshal(data, &p); err != nil {
		slog.Warn("ignoring malformed user progress", "error", err)
		return
	}
	if p.ArticlesRead == nil {
		p.ArticlesRead = IDSet{}
	}
	if p.BookmarkedArticles == nil {
		p.BookmarkedArticles = IDSet{}
	}
	if p.QuizScores == nil {
		p.QuizScores = map[string]int{}
	}
	s.p = p
}

// save must be called with mu held.
func (s *Store) save() {
	if s.prefs == nil {
		return
	}
	data, err := json.Marshal(s.p)
	if err != nil {
		slog.Warn("failed to encode user progress", "error", err)
		return
	}
	if err := s.prefs.Set(prefs.KeyUserProgress, data); err != nil {
		slog.Warn("failed to persist user progress", "error", err)
	}
}

// DaysBetween returns the number of calendar days from a to b in loc. It is
// safe across daylight saving changes.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// MarkRead records a completed article. minutes is added to the total on
// every call; the read set ignores repeats.
func (s *Store) MarkRead(articleID string, minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.p.ArticlesRead[articleID] = struct{}{}
	s.p.TotalReadingTime += max(minutes, 0)

	if s.p.LastReadDate == nil {
		s.p.StreakDays = 1
		s.p.ReadsToday = 0
	} else {
		switch gap := DaysBetween(*s.p.LastReadDate, now, s.loc); {
		case gap == 0:
		case gap == 1:
			s.p.StreakDays++
			s.p.ReadsToday = 0
		case gap > 1:
			s.p.StreakDays = 1
			s.p.ReadsToday = 0
		}
	}
	s.p.ReadsToday++
	s.p.LastReadDate = &now
	s.save()
}

// RecordQuizScore stores the latest score of an article, clamped to 0..100.
func (s *Store) RecordQuizScore(articleID string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.QuizScores[articleID] = min(max(score, 0), 100)
	s.save()
}

// ToggleBookmark flips the bookmark flag and returns the new value.
func (s *Store) ToggleBookmark(articleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	on := !s.p.BookmarkedArticles.Has(articleID)
	if on {
		s.p.BookmarkedArticles[articleID] = struct{}{}
	} else {
		delete(s.p.BookmarkedArticles, articleID)
	}
	s.save()
	return on
}

func (s *Store) IsBookmarked(articleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.BookmarkedArticles.Has(articleID)
}

func (s *Store) IsRead(articleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.ArticlesRead.Has(articleID)
}

// Reset clears the record and persists the empty state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = New()
	s.save()
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.clone()
}

// ReadingRatio returns the share of the catalog that has been read, capped
// at 1 since the read set may hold ids from an earlier catalog.
func (s *Store) ReadingRatio(totalArticles int) float64 {
	if totalArticles <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min(float64(len(s.p.ArticlesRead))/float64(totalArticles), 1)
}

// AverageQuizScore returns the integer mean of all recorded scores. ok is
// false when no quiz has been taken.
func (s *Store) AverageQuizScore() (avg int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.p.QuizScores) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range s.p.QuizScores {
		sum += v
	}
	return sum / len(s.p.QuizScores), true
}

// ReadsToday returns the number of completions on the current calendar day.
func (s *Store) ReadsToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readsToday()
}

func (s *Store) readsToday() int {
	if s.p.LastReadDate == nil || DaysBetween(*s.p.LastReadDate, s.clock.Now(), s.loc) != 0 {
		return 0
	}
	return s.p.ReadsToday
}

// DailyGoalProgress returns today's completions relative to goal, capped
// at 1.
func (s *Store) DailyGoalProgress(goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return min(float64(s.ReadsToday())/float64(goal), 1)
}

// FormatReadingTime renders minutes as "1h 5m" or "45m".
func FormatReadingTime(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// StreakLabel renders a streak length for display.
func StreakLabel(days int) string {
	switch {
	case days <= 0:
		return "No streak"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
