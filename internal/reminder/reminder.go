// Package reminder nudges the reader once a day when their streak is
// about to lapse.
package reminder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/cognitypin/cognitypin/internal/events"
	"github.com/cognitypin/cognitypin/internal/platform/clock"
	"github.com/cognitypin/cognitypin/internal/progress"
)

// DefaultTime is the local time of day the check runs.
const DefaultTime = "19:00"

// StreakAtRisk reports whether p has a running streak whose last read was
// the calendar day before now, in now's location. Reading today keeps the
// streak; not reading breaks it.
func StreakAtRisk(p progress.UserProgress, now time.Time) bool {
	if p.StreakDays <= 0 || p.LastReadDate == nil {
		return false
	}
	return progress.DaysBetween(*p.LastReadDate, now, now.Location()) == 1
}

// Scheduler runs the daily streak check.
type Scheduler struct {
	cron     *gocron.Scheduler
	job      *gocron.Job
	progress *progress.Store
	pub      events.Publisher
	clock    clock.Clock
	loc      *time.Location
	at       string
}

// New creates a scheduler checking store at the given "HH:MM" in loc.
func New(store *progress.Store, pub events.Publisher, c clock.Clock, at string, loc *time.Location) *Scheduler {
	if at == "" {
		at = DefaultTime
	}
	if loc == nil {
		loc = time.Local
	}
	if c == nil {
		c = clock.Real{}
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(loc),
		progress: store,
		pub:      pub,
		clock:    c,
		loc:      loc,
		at:       at,
	}
}

// Start schedules the daily job and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	job, err := s.cron.Every(1).Day().At(s.at).Do(s.Check)
	if err != nil {
		return fmt.Errorf("scheduling streak reminder at %q: %w", s.at, err)
	}
	s.job = job
	s.cron.StartAsync()
	slog.Info("streak reminder scheduled", "at", s.at, "location", s.loc.String())
	return nil
}

// NextRun returns when the job fires next, or zero before Start.
func (s *Scheduler) NextRun() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// Stop terminates the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Check publishes a streak reminder when the streak is at risk. It reports
// whether a reminder was sent.
func (s *Scheduler) Check() bool {
	p := s.progress.Snapshot()
	if !StreakAtRisk(p, s.clock.Now().In(s.loc)) {
		slog.Debug("streak not at risk", "streak", p.StreakDays)
		return false
	}
	s.pub.Publish(events.Event{Kind: events.KindStreakReminder, Streak: p.StreakDays})
	slog.Info("streak reminder sent", "streak", p.StreakDays)
	return true
}
