// Package session implements the ephemeral reading and quiz state
// machines. Their only durable effect is the completion event they publish.
package session

import (
	"sync"
	"time"

	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/events"
	"github.com/cognitypin/cognitypin/internal/platform/clock"
)

// ReadingState is the lifecycle state of a ReadingSession.
type ReadingState string

const (
	Idle      ReadingState = "idle"
	Reading   ReadingState = "reading"
	Completed ReadingState = "completed"
)

const (
	// TickInterval is the cadence of auto-progress updates.
	TickInterval = time.Second
	// CompletionThreshold is the progress above which closing a session
	// still counts as finishing the article.
	CompletionThreshold = 0.8
)

// ReadingSession tracks progress through one article.
type ReadingSession struct {
	mu        sync.Mutex
	article   content.Article
	clock     clock.Clock
	pub       events.Publisher
	state     ReadingState
	progress  float64
	startedAt time.Time
	stopTick  func()
	closed    bool
}

// NewReading creates an idle session for article. pub may be nil.
func NewReading(article content.Article, c clock.Clock, pub events.Publisher) *ReadingSession {
	return &ReadingSession{article: article, clock: c, pub: pub, state: Idle}
}

// Start begins reading and the auto-progress ticker. It is a no-op unless
// the session is idle.
func (s *ReadingSession) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != Idle {
		return
	}
	s.state = Reading
	s.startedAt = s.clock.Now()
	s.stopTick = s.clock.Every(TickInterval, s.tick)
}

func (s *ReadingSession) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != Reading {
		return
	}
	if auto := s.autoProgress(s.clock.Now()); auto > s.progress {
		s.progress = auto
	}
}

// autoProgress is elapsed time over the reading estimate, clamped to [0,1].
func (s *ReadingSession) autoProgress(now time.Time) float64 {
	total := float64(s.article.ReadingTime) * 60
	if total <= 0 {
		return 0
	}
	return clamp(now.Sub(s.startedAt).Seconds() / total)
}

// UpdateProgress sets progress from an external driver such as a scroll
// observer. The value may move progress in either direction.
func (s *ReadingSession) UpdateProgress(ratio float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == Completed {
		return
	}
	s.progress = clamp(ratio)
}

// Complete finishes the session and publishes ArticleCompleted. It reports
// whether this call completed the session.
func (s *ReadingSession) Complete() bool {
	s.mu.Lock()
	if s.closed || s.state == Completed {
		s.mu.Unlock()
		return false
	}
	s.complete()
	ev := events.ArticleCompleted(s.article.ID, s.article.ReadingTime)
	s.mu.Unlock()

	if s.pub != nil {
		s.pub.Publish(ev)
	}
	return true
}

// complete must be called with mu held.
func (s *ReadingSession) complete() {
	s.progress = 1
	s.state = Completed
	s.stop()
}

func (s *ReadingSession) stop() {
	if s.stopTick != nil {
		s.stopTick()
		s.stopTick = nil
	}
}

// Discard tears the session down without completing it, whatever its
// progress.
func (s *ReadingSession) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stop()
}

// Close tears the session down. A session closed above
// CompletionThreshold is completed first. It reports whether Close
// completed the session.
func (s *ReadingSession) Close() bool {
	s.mu.Lock()
	mostlyRead := !s.closed && s.state != Completed && s.progress > CompletionThreshold
	s.mu.Unlock()

	completed := mostlyRead && s.Complete()

	s.mu.Lock()
	s.closed = true
	s.stop()
	s.mu.Unlock()
	return completed
}

// ReadingSnapshot is a point-in-time view of a ReadingSession.
type ReadingSnapshot struct {
	ArticleID string       `json:"articleId"`
	State     ReadingState `json:"state"`
	Progress  float64      `json:"progress"`
	Percent   int          `json:"percent"`
	StartedAt *time.Time   `json:"startedAt,omitempty"`
}

func (s *ReadingSession) Snapshot() ReadingSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := ReadingSnapshot{
		ArticleID: s.article.ID,
		State:     s.state,
		Progress:  s.progress,
		Percent:   percent(s.progress),
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		snap.StartedAt = &t
	}
	return snap
}

func (s *ReadingSession) ArticleID() string {
	return s.article.ID
}

func (s *ReadingSession) State() ReadingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ReadingSession) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Percent returns progress as a whole percentage for display.
func (s *ReadingSession) Percent() int {
	return percent(s.Progress())
}

func percent(p float64) int {
	return int(p * 100)
}

func clamp(v float64) float64 {
	return min(max(v, 0), 1)
}
