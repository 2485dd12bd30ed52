// Package feed keeps the home screen's filtered article list, recomputed
// after the search text and category settle.
package feed

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/platform/clock"
)

// Debounce is the quiet period before a filter change is applied.
const Debounce = 300 * time.Millisecond

// Feed is a debounced view over the repository.
type Feed struct {
	mu       sync.Mutex
	repo     *content.Repository
	clock    clock.Clock
	query    string
	category content.Category
	filtered []content.Article
	pending  func() bool
	dirty    bool
	gen      int
	closed   bool
	onChange func([]content.Article)
}

// New creates a feed with no filters.
func New(repo *content.Repository, c clock.Clock) *Feed {
	return &Feed{repo: repo, clock: c}
}

// OnChange registers fn to receive the list after every recomputation.
func (f *Feed) OnChange(fn func([]content.Article)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

func (f *Feed) SetQuery(q string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = q
	f.schedule()
}

func (f *Feed) SetCategory(c content.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.category = c
	f.schedule()
}

// ClearFilters drops the query and category.
func (f *Feed) ClearFilters() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = ""
	f.category = ""
	f.schedule()
}

// schedule must be called with mu held. Only the last change within the
// window triggers a recomputation.
func (f *Feed) schedule() {
	f.dirty = true
	if f.closed {
		return
	}
	f.cancel()
	f.gen++
	gen := f.gen
	f.pending = f.clock.AfterFunc(Debounce, func() { f.fire(gen) })
}

func (f *Feed) cancel() {
	if f.pending != nil {
		f.pending()
		f.pending = nil
	}
}

func (f *Feed) fire(gen int) {
	f.mu.Lock()
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.pending = nil
	list, notify := f.recompute()
	f.mu.Unlock()

	if notify != nil {
		notify(list)
	}
}

// recompute must be called with mu held.
func (f *Feed) recompute() ([]content.Article, func([]content.Article)) {
	f.filtered = f.repo.Filter(f.query, f.category)
	f.dirty = false
	slog.Debug("feed recomputed", "query", f.query, "category", f.category, "articles", len(f.filtered))
	return append([]content.Article(nil), f.filtered...), f.onChange
}

// Articles returns the filtered list when a filter is active, otherwise the
// whole catalog. A pending change is applied first.
func (f *Feed) Articles() []content.Article {
	f.mu.Lock()
	var (
		list   []content.Article
		notify func([]content.Article)
	)
	if f.dirty {
		f.cancel()
		f.gen++
		list, notify = f.recompute()
	}
	out := f.current()
	f.mu.Unlock()

	if notify != nil {
		notify(list)
	}
	return out
}

func (f *Feed) current() []content.Article {
	if f.query == "" && f.category == "" {
		return f.repo.All()
	}
	return append([]content.Article(nil), f.filtered...)
}

func (f *Feed) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

func (f *Feed) Category() content.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.category
}

// HasFilters reports whether a query or category is set.
func (f *Feed) HasFilters() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query != "" || f.category != ""
}

// Close cancels pending work. Later changes are recorded but never applied
// in the background.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cancel()
}
