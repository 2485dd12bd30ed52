// Package events carries completion events from reading and quiz sessions
// to whoever listens: the progress store, metrics, the websocket feed and
// the optional event log.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Kind identifies an event type.
type Kind string

const (
	KindArticleCompleted Kind = "article_completed"
	KindQuizCompleted    Kind = "quiz_completed"
	KindStreakReminder   Kind = "streak_reminder"
)

const dbTimeout = 5 * time.Second

// Event is a single completion or reminder notification.
type Event struct {
	Kind           Kind      `json:"kind"`
	ArticleID      string    `json:"article_id,omitempty"`
	ReadingMinutes int       `json:"reading_minutes,omitempty"`
	Score          int       `json:"score"`
	Streak         int       `json:"streak,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ArticleCompleted builds the event emitted when a reading session completes.
func ArticleCompleted(articleID string, readingMinutes int) Event {
	return Event{Kind: KindArticleCompleted, ArticleID: articleID, ReadingMinutes: readingMinutes}
}

// QuizCompleted builds the event emitted when a quiz is scored.
func QuizCompleted(articleID string, score int) Event {
	return Event{Kind: KindQuizCompleted, ArticleID: articleID, Score: score}
}

// Publisher emits events.
type Publisher interface {
	Publish(ev Event)
}

// Bus is a synchronous publish/subscribe hub. Subscribers are called in
// subscription order on the publishing goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
	now    func() time.Time
}

type subscription struct {
	id int
	fn func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{now: time.Now}
}

// WithNow overrides the timestamp source.
func (b *Bus) WithNow(now func() time.Time) *Bus {
	b.now = now
	return b
}

// Subscribe registers fn and returns a function removing it.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish stamps ev and delivers it to every subscriber.
func (b *Bus) Publish(ev Event) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = b.now()
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.subs...)
	b.mu.RUnlock()

	slog.Debug("event published", "kind", ev.Kind, "article_id", ev.ArticleID, "subscribers", len(subs))
	for _, s := range subs {
		s.fn(ev)
	}
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// Record adapts an EventLogger into a bus subscriber. Failures are logged
// and dropped.
func Record(l EventLogger) func(Event) {
	return func(ev Event) {
		if err := l.LogEvent(ev); err != nil {
			slog.Warn("failed to record event", "kind", ev.Kind, "error", err)
		}
	}
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.Kind == "" {
		return fmt.Errorf("event kind is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the reading_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

// EnsureSchema creates the reading_events table when missing.
func (l *PostgresEventLogger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	_, err := l.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS reading_events (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			article_id TEXT,
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create reading_events: %w", err)
	}
	return nil
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.Kind == "" {
		return fmt.Errorf("event kind is required")
	}

	data, err := json.Marshal(map[string]any{
		"reading_minutes": event.ReadingMinutes,
		"score":           event.Score,
		"streak":          event.Streak,
	})
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := l.pool.Exec(ctx,
		`INSERT INTO reading_events (kind, article_id, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		string(event.Kind),
		nullIfEmpty(event.ArticleID),
		string(data),
		createdAt,
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged", "kind", event.Kind, "article_id", event.ArticleID)
	return nil
}

// Count returns the number of logged events of the given kind.
func (l *PostgresEventLogger) Count(ctx context.Context, kind Kind) (int, error) {
	if l == nil || l.pool == nil {
		return 0, fmt.Errorf("event logger pool is nil")
	}
	var n int
	if err := l.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reading_events WHERE kind = $1`,
		string(kind),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
