// Package scoring ranks articles against each other and against the
// reader's history.
package scoring

import (
	"sort"

	"github.com/cognitypin/cognitypin/internal/content"
)

// Weights of the relevance score.
const (
	CategoryWeight   = 10
	SharedTagWeight  = 3
	DifficultyWeight = 2
	HealthWeight     = 5
)

const (
	DefaultRelatedLimit = 3
	DefaultReaderLimit  = 5
)

// Score returns the relevance of b to a. Tags are compared as sets.
func Score(a, b content.Article) int {
	score := 0
	if a.Category == b.Category {
		score += CategoryWeight
	}

	tags := make(map[string]struct{}, len(a.Tags))
	for _, t := range a.Tags {
		tags[t] = struct{}{}
	}
	shared := make(map[string]struct{})
	for _, t := range b.Tags {
		if _, ok := tags[t]; ok {
			shared[t] = struct{}{}
		}
	}
	score += SharedTagWeight * len(shared)

	if a.Difficulty == b.Difficulty {
		score += DifficultyWeight
	}
	if a.HealthRelated && b.HealthRelated {
		score += HealthWeight
	}
	return score
}

type scored struct {
	article content.Article
	score   int
}

// Related returns up to limit articles from corpus ranked by Score against
// source. The source itself and zero-score candidates are excluded; equal
// scores keep corpus order. A non-positive limit means DefaultRelatedLimit.
func Related(source content.Article, corpus []content.Article, limit int) []content.Article {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	candidates := make([]scored, 0, len(corpus))
	for _, a := range corpus {
		if a.ID == source.ID {
			continue
		}
		if s := Score(source, a); s > 0 {
			candidates = append(candidates, scored{article: a, score: s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]content.Article, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		out = append(out, c.article)
	}
	return out
}

// ForReader picks unread articles for the home screen: the first unread
// article of every category the reader has completed something in, then
// the remaining unread articles in corpus order, up to limit.
func ForReader(corpus []content.Article, isRead func(id string) bool, limit int) []content.Article {
	if limit <= 0 {
		limit = DefaultReaderLimit
	}

	var preferred []content.Category
	seenCategory := make(map[content.Category]bool)
	for _, a := range corpus {
		if isRead(a.ID) && !seenCategory[a.Category] {
			seenCategory[a.Category] = true
			preferred = append(preferred, a.Category)
		}
	}

	out := make([]content.Article, 0, limit)
	picked := make(map[string]bool)
	add := func(a content.Article) {
		if len(out) < limit && !picked[a.ID] {
			picked[a.ID] = true
			out = append(out, a)
		}
	}

	for _, c := range preferred {
		for _, a := range corpus {
			if a.Category == c && !isRead(a.ID) {
				add(a)
				break
			}
		}
	}
	for _, a := range corpus {
		if !isRead(a.ID) {
			add(a)
		}
	}
	return out
}
