package content_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/prefs"
)

// marks is a minimal BookmarkState.
type marks map[string]bool

func (m marks) IsBookmarked(id string) bool { return m[id] }

func (m marks) ToggleBookmark(id string) bool {
	m[id] = !m[id]
	return m[id]
}

func seedRepository(t *testing.T, store prefs.Store) (*content.Repository, marks) {
	t.Helper()
	c, err := content.LoadSeed()
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	m := marks{}
	return content.NewRepository(c, m, store), m
}

func TestRepository_List(t *testing.T) {
	repo, _ := seedRepository(t, nil)

	tests := []struct {
		name     string
		category content.Category
		want     int
	}{
		{"all", "", 5},
		{"health", content.CategoryHealth, 2},
		{"science", content.CategoryScience, 1},
		{"empty category", content.CategoryHistory, 0},
		{"unknown category", content.Category("cooking"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repo.List(tt.category)
			if len(got) != tt.want {
				t.Errorf("List(%q) = %d articles, want %d", tt.category, len(got), tt.want)
			}
			for _, a := range got {
				if tt.category != "" && a.Category != tt.category {
					t.Errorf("List(%q) returned %s article", tt.category, a.Category)
				}
			}
		})
	}
}

func TestRepository_ListPreservesOrder(t *testing.T) {
	repo, _ := seedRepository(t, nil)

	got := repo.List(content.CategoryHealth)
	if got[0].ID != "heart-rate-variability" || got[1].ID != "science-of-sleep-cycles" {
		t.Errorf("List(health) order = [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestRepository_Search(t *testing.T) {
	repo, _ := seedRepository(t, nil)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query returns catalog", "", nil},
		{"title match ignores case", "QUANTUM", []string{"quantum-entanglement-explained"}},
		{"tag match", "Wellness", []string{"heart-rate-variability"}},
		{"body match", "hypothalamus", []string{"heart-rate-variability"}},
		{"no match", "volcano", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repo.Search(tt.query)
			if tt.want == nil {
				if len(got) != repo.Len() {
					t.Errorf("Search(%q) = %d articles, want full catalog %d", tt.query, len(got), repo.Len())
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %d articles, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Search(%q)[%d] = %s, want %s", tt.query, i, got[i].ID, id)
				}
			}
		})
	}
}

func TestRepository_FilterCombinesCategoryAndQuery(t *testing.T) {
	repo, _ := seedRepository(t, nil)

	got := repo.Filter("stress", content.CategoryPsychology)
	if len(got) != 1 || got[0].ID != "psychology-of-habit-formation" {
		t.Errorf("Filter(stress, psychology) = %v", ids(got))
	}
}

func TestRepository_QuestionsFor(t *testing.T) {
	repo, _ := seedRepository(t, nil)

	qs := repo.QuestionsFor("heart-rate-variability")
	if len(qs) != 1 {
		t.Fatalf("QuestionsFor() = %d, want 1", len(qs))
	}
	if qs[0].CorrectIndex != 1 {
		t.Errorf("CorrectIndex = %d, want 1", qs[0].CorrectIndex)
	}

	if got := repo.QuestionsFor("nonexistent"); len(got) != 0 {
		t.Errorf("QuestionsFor(nonexistent) = %d, want 0", len(got))
	}
}

func TestRepository_ToggleBookmarkTwiceRestoresState(t *testing.T) {
	repo, _ := seedRepository(t, nil)
	id := "science-of-sleep-cycles"

	before := repo.IsBookmarked(id)
	if _, err := repo.ToggleBookmark(id); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if repo.IsBookmarked(id) == before {
		t.Fatal("first toggle should flip the flag")
	}
	if _, err := repo.ToggleBookmark(id); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}
	if repo.IsBookmarked(id) != before {
		t.Error("second toggle should restore the original flag")
	}
}

func TestRepository_ToggleBookmarkUnknown(t *testing.T) {
	repo, m := seedRepository(t, nil)

	_, err := repo.ToggleBookmark("nonexistent")
	if !errors.Is(err, content.ErrArticleNotFound) {
		t.Errorf("ToggleBookmark(nonexistent) error = %v, want ErrArticleNotFound", err)
	}
	if len(m) != 0 {
		t.Errorf("bookmark state changed for unknown id: %v", m)
	}
}

func TestRepository_ToggleBookmarkPersistsSnapshot(t *testing.T) {
	store := prefs.NewMemoryStore()
	repo, _ := seedRepository(t, store)

	if _, err := repo.ToggleBookmark("quantum-entanglement-explained"); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}

	data, ok, _ := store.Get(prefs.KeySavedArticles)
	if !ok {
		t.Fatal("savedArticles not written")
	}
	var saved []struct {
		ID           string `json:"id"`
		IsBookmarked bool   `json:"isBookmarked"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("unmarshal savedArticles: %v", err)
	}
	if len(saved) != 5 {
		t.Fatalf("saved %d articles, want 5", len(saved))
	}
	for _, s := range saved {
		want := s.ID == "quantum-entanglement-explained"
		if s.IsBookmarked != want {
			t.Errorf("%s isBookmarked = %v, want %v", s.ID, s.IsBookmarked, want)
		}
	}

	if _, ok, _ := store.Get(prefs.KeySavedQuestions); !ok {
		t.Error("savedQuestions not written")
	}
}

func TestRepository_RestoreBookmarksByTitle(t *testing.T) {
	store := prefs.NewMemoryStore()
	_ = store.Set(prefs.KeySavedArticles, []byte(`[
		{"title": "The Science of Sleep Cycles", "isBookmarked": true},
		{"title": "Quantum Entanglement Explained", "isBookmarked": false},
		{"title": "Removed Article", "isBookmarked": true}
	]`))
	repo, _ := seedRepository(t, store)

	if n := repo.RestoreBookmarks(); n != 1 {
		t.Errorf("RestoreBookmarks() = %d, want 1", n)
	}
	if got := ids(repo.Bookmarked()); len(got) != 1 || got[0] != "science-of-sleep-cycles" {
		t.Errorf("Bookmarked() = %v", got)
	}

	// Already applied flags are not toggled back.
	if n := repo.RestoreBookmarks(); n != 0 {
		t.Errorf("second RestoreBookmarks() = %d, want 0", n)
	}
}

func TestRepository_RestoreBookmarksMalformed(t *testing.T) {
	store := prefs.NewMemoryStore()
	_ = store.Set(prefs.KeySavedArticles, []byte(`not json`))
	repo, _ := seedRepository(t, store)

	if n := repo.RestoreBookmarks(); n != 0 {
		t.Errorf("RestoreBookmarks() = %d, want 0", n)
	}
}

func TestRepository_CategoryCounts(t *testing.T) {
	repo, _ := seedRepository(t, nil)

	counts := repo.CategoryCounts()
	if len(counts) != len(content.Categories) {
		t.Fatalf("len(counts) = %d, want %d", len(counts), len(content.Categories))
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total != repo.Len() {
		t.Errorf("sum of counts = %d, want %d", total, repo.Len())
	}
	if counts[0].Category != content.CategoryHealth || counts[0].Count != 2 {
		t.Errorf("counts[0] = %+v, want health:2", counts[0])
	}
}

func TestRepository_FeaturedAndHealthRelated(t *testing.T) {
	repo, _ := seedRepository(t, nil)

	if got := repo.Featured(); len(got) != 3 {
		t.Errorf("Featured() = %d, want 3", len(got))
	}
	if got := repo.HealthRelated(); len(got) != 3 {
		t.Errorf("HealthRelated() = %d, want 3", len(got))
	}

	empty := content.NewRepository(nil, nil, nil)
	if got := empty.Featured(); len(got) != 0 {
		t.Errorf("empty Featured() = %d, want 0", len(got))
	}
	if empty.IsBookmarked("x") {
		t.Error("repository without bookmark state reports a bookmark")
	}
}

func ids(articles []content.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}
