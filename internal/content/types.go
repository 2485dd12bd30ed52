package content

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the fixed topical sections of the catalog.
type Category string

const (
	CategoryHealth     Category = "health"
	CategoryScience    Category = "science"
	CategoryHistory    Category = "history"
	CategoryTechnology Category = "technology"
	CategoryPsychology Category = "psychology"
	CategoryNutrition  Category = "nutrition"
	CategoryFitness    Category = "fitness"
	CategoryMedicine   Category = "medicine"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryHealth,
	CategoryScience,
	CategoryHistory,
	CategoryTechnology,
	CategoryPsychology,
	CategoryNutrition,
	CategoryFitness,
	CategoryMedicine,
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Title returns the display name, e.g. "Health".
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Difficulty is the reading level of an article.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// ParseDifficulty accepts a difficulty name in any letter case.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Beginner, Intermediate, Advanced:
		return d, true
	}
	return "", false
}

// Article is an immutable catalog entry. Bookmark state is not part of
// the record; it is owned by the progress store.
type Article struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Body          string     `json:"body" yaml:"body"`
	Category      Category   `json:"category" yaml:"category"`
	ReadingTime   int        `json:"readingTime" yaml:"reading_time"` // minutes
	Tags          []string   `json:"tags" yaml:"tags"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	HealthRelated bool       `json:"healthRelated" yaml:"health_related"`
	ImageURL      string     `json:"imageURL,omitempty" yaml:"image_url"`
	CreatedAt     time.Time  `json:"createdAt" yaml:"created_at"`
}

// ReadingLabel formats the reading-time estimate for display.
func (a Article) ReadingLabel() string {
	return fmt.Sprintf("%d min read", a.ReadingTime)
}

// QuizQuestion is a multiple-choice question attached to an article.
type QuizQuestion struct {
	ID           string   `json:"id" yaml:"id"`
	ArticleID    string   `json:"articleId" yaml:"article_id"`
	Question     string   `json:"question" yaml:"question"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"correctIndex" yaml:"correct_index"`
	Explanation  string   `json:"explanation" yaml:"explanation"`
}

// Validate checks the option list and the correct index.
func (q QuizQuestion) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q: needs at least 2 options, got %d", q.ID, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("question %q: correct index %d out of range", q.ID, q.CorrectIndex)
	}
	return nil
}

// CategoryCount pairs a category with its number of articles.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}
