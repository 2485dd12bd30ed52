// Package clock abstracts wall time and timed callbacks so sessions and
// debounced views can be driven by a fake clock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock provides the current time and cancellable timed tasks.
type Clock interface {
	Now() time.Time
	// Every runs fn on a fixed cadence until the returned stop is called.
	Every(d time.Duration, fn func()) (stop func())
	// AfterFunc runs fn once after d. stop reports whether it prevented the call.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// Real is a Clock backed by the runtime timers.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

func (Real) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// Fake is a manually advanced Clock for tests.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*fakeTask
}

type fakeTask struct {
	seq     int
	next    time.Time
	period  time.Duration
	fn      func()
	stopped bool
}

// NewFake creates a fake clock starting at now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) Every(d time.Duration, fn func()) func() {
	t := c.schedule(d, d, fn)
	return func() { c.stop(t) }
}

func (c *Fake) AfterFunc(d time.Duration, fn func()) func() bool {
	t := c.schedule(d, 0, fn)
	return func() bool { return c.stop(t) }
}

// Pending returns the number of scheduled tasks that have not run or been stopped.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Set moves the clock to t without firing any task.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d, running every task that falls due
// in time order. Callbacks run without the clock lock held.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		t := c.nextDue(target)
		if t == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = t.next
		if t.period > 0 {
			t.next = t.next.Add(t.period)
		} else {
			c.remove(t)
		}
		fn := t.fn
		c.mu.Unlock()

		fn()
	}
}

func (c *Fake) schedule(d, period time.Duration, fn func()) *fakeTask {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTask{seq: c.seq, next: c.now.Add(d), period: period, fn: fn}
	c.tasks = append(c.tasks, t)
	return t
}

func (c *Fake) stop(t *fakeTask) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return c.remove(t)
}

func (c *Fake) remove(t *fakeTask) bool {
	for i, x := range c.tasks {
		if x == t {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Fake) nextDue(target time.Time) *fakeTask {
	due := make([]*fakeTask, 0, len(c.tasks))
	for _, t := range c.tasks {
		if !t.next.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].next.Equal(due[j].next) {
			return due[i].seq < due[j].seq
		}
		return due[i].next.Before(due[j].next)
	})
	return due[0]
}
