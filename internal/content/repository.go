// Package content holds the immutable article and quiz catalog and answers
// list, search and lookup queries over it.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"github.com/cognitypin/cognitypin/internal/prefs"
)

// ErrArticleNotFound is returned when an operation names an unknown article.
var ErrArticleNotFound = errors.New("article not found")

const featuredCount = 3

// BookmarkState owns the bookmarked-article set. The progress store
// implements it.
type BookmarkState interface {
	IsBookmarked(articleID string) bool
	ToggleBookmark(articleID string) bool
}

// Repository serves catalog queries. Articles live in an insertion-ordered
// slice with an id index; bookmark flags come from BookmarkState.
type Repository struct {
	articles  []Article
	index     map[string]int
	questions []QuizQuestion
	marks     BookmarkState
	store     prefs.Store
}

// NewRepository creates a repository over c. marks and store may be nil,
// in which case nothing is ever bookmarked or persisted.
func NewRepository(c *Catalog, marks BookmarkState, store prefs.Store) *Repository {
	r := &Repository{
		index: make(map[string]int),
		marks: marks,
		store: store,
	}
	if c == nil {
		return r
	}
	r.articles = append(r.articles, c.Articles...)
	r.questions = append(r.questions, c.Questions...)
	for i, a := range r.articles {
		r.index[a.ID] = i
	}
	return r
}

// Len returns the number of articles.
func (r *Repository) Len() int {
	return len(r.articles)
}

// All returns every article in catalog order.
func (r *Repository) All() []Article {
	return append([]Article(nil), r.articles...)
}

// Get looks up an article by id.
func (r *Repository) Get(id string) (Article, bool) {
	i, ok := r.index[id]
	if !ok {
		return Article{}, false
	}
	return r.articles[i], true
}

// List returns the articles of one category, or all of them when category
// is empty. Unknown categories yield an empty list.
func (r *Repository) List(category Category) []Article {
	if category == "" {
		return r.All()
	}
	out := []Article{}
	for _, a := range r.articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Search returns articles whose title, body or any tag contains query,
// ignoring case. An empty query returns the full catalog.
func (r *Repository) Search(query string) []Article {
	return r.Filter(query, "")
}

// Filter applies the category filter and then the search query.
func (r *Repository) Filter(query string, category Category) []Article {
	articles := r.List(category)
	if query == "" {
		return articles
	}

	folder := cases.Fold()
	q := folder.String(query)
	contains := func(s string) bool {
		return strings.Contains(folder.String(s), q)
	}

	out := []Article{}
	for _, a := range articles {
		if contains(a.Title) || contains(a.Body) || anyTag(a.Tags, contains) {
			out = append(out, a)
		}
	}
	return out
}

func anyTag(tags []string, match func(string) bool) bool {
	for _, t := range tags {
		if match(t) {
			return true
		}
	}
	return false
}

// QuestionsFor returns the quiz questions of an article in catalog order.
func (r *Repository) QuestionsFor(articleID string) []QuizQuestion {
	out := []QuizQuestion{}
	for _, q := range r.questions {
		if q.ArticleID == articleID {
			out = append(out, q)
		}
	}
	return out
}

// Featured returns the first articles of the catalog.
func (r *Repository) Featured() []Article {
	n := min(featuredCount, len(r.articles))
	return append([]Article(nil), r.articles[:n]...)
}

// HealthRelated returns the articles flagged as health relevant.
func (r *Repository) HealthRelated() []Article {
	out := []Article{}
	for _, a := range r.articles {
		if a.HealthRelated {
			out = append(out, a)
		}
	}
	return out
}

// CategoryCounts returns the article count of every category.
func (r *Repository) CategoryCounts() []CategoryCount {
	counts := make([]CategoryCount, 0, len(Categories))
	for _, c := range Categories {
		counts = append(counts, CategoryCount{Category: c, Count: len(r.List(c))})
	}
	return counts
}

// IsBookmarked reports the bookmark flag of an article.
func (r *Repository) IsBookmarked(id string) bool {
	if r.marks == nil {
		return false
	}
	return r.marks.IsBookmarked(id)
}

// Bookmarked returns bookmarked articles in catalog order.
func (r *Repository) Bookmarked() []Article {
	out := []Article{}
	for _, a := range r.articles {
		if r.IsBookmarked(a.ID) {
			out = append(out, a)
		}
	}
	return out
}

// ToggleBookmark flips the bookmark flag of an article and persists the
// catalog snapshot. It returns the new flag.
func (r *Repository) ToggleBookmark(id string) (bool, error) {
	if _, ok := r.index[id]; !ok {
		return false, fmt.Errorf("toggle bookmark %s: %w", id, ErrArticleNotFound)
	}
	if r.marks == nil {
		return false, nil
	}
	on := r.marks.ToggleBookmark(id)
	r.save()
	return on, nil
}

// savedArticle is the persisted form of an article, carrying the derived
// bookmark flag.
type savedArticle struct {
	Article
	IsBookmarked bool `json:"isBookmarked"`
}

// save writes the savedArticles and savedQuestions snapshots. Failures are
// logged only.
func (r *Repository) save() {
	if r.store == nil {
		return
	}

	saved := make([]savedArticle, 0, len(r.articles))
	for _, a := range r.articles {
		saved = append(saved, savedArticle{Article: a, IsBookmarked: r.IsBookmarked(a.ID)})
	}
	if data, err := json.Marshal(saved); err == nil {
		if err := r.store.Set(prefs.KeySavedArticles, data); err != nil {
			slog.Warn("failed to persist articles", "error", err)
		}
	}
	if data, err := json.Marshal(r.questions); err == nil {
		if err := r.store.Set(prefs.KeySavedQuestions, data); err != nil {
			slog.Warn("failed to persist questions", "error", err)
		}
	}
}

// RestoreBookmarks applies bookmark flags from a persisted savedArticles
// snapshot, matched by title. Only flags that are set and not yet applied
// are toggled. It returns the number of bookmarks restored.
func (r *Repository) RestoreBookmarks() int {
	if r.store == nil || r.marks == nil {
		return 0
	}
	data, ok, err := r.store.Get(prefs.KeySavedArticles)
	if err != nil {
		slog.Warn("failed to load saved articles", "error", err)
		return 0
	}
	if !ok {
		return 0
	}

	var saved []struct {
		Title        string `json:"title"`
		IsBookmarked bool   `json:"isBookmarked"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		slog.Warn("ignoring malformed saved articles", "error", err)
		return 0
	}

	restored := 0
	for _, s := range saved {
		if !s.IsBookmarked {
			continue
		}
		for _, a := range r.articles {
			if a.Title == s.Title && !r.marks.IsBookmarked(a.ID) {
				r.marks.ToggleBookmark(a.ID)
				restored++
				break
			}
		}
	}
	if restored > 0 {
		slog.Info("bookmarks restored from saved articles", "count", restored)
	}
	return restored
}
