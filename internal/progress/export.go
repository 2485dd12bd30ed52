package progress

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
)

// Summary holds the statistics shown on the profile screen and exported.
type Summary struct {
	ArticlesRead      int       `json:"articlesRead"`
	TotalReadingTime  int       `json:"totalReadingTime"`
	ReadingTimeLabel  string    `json:"readingTimeLabel"`
	StreakDays        int       `json:"streakDays"`
	StreakLabel       string    `json:"streakLabel"`
	Bookmarked        int       `json:"bookmarked"`
	AverageQuizScore  int       `json:"averageQuizScore"`
	QuizzesTaken      int       `json:"quizzesTaken"`
	ReadsToday        int       `json:"readsToday"`
	DailyGoal         int       `json:"dailyGoal"`
	DailyGoalProgress float64   `json:"dailyGoalProgress"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// Summarize computes the statistics for a daily goal.
func (s *Store) Summarize(goal int) Summary {
	avg, _ := s.AverageQuizScore()
	p := s.Snapshot()
	return Summary{
		ArticlesRead:      len(p.ArticlesRead),
		TotalReadingTime:  p.TotalReadingTime,
		ReadingTimeLabel:  FormatReadingTime(p.TotalReadingTime),
		StreakDays:        p.StreakDays,
		StreakLabel:       StreakLabel(p.StreakDays),
		Bookmarked:        len(p.BookmarkedArticles),
		AverageQuizScore:  avg,
		QuizzesTaken:      len(p.QuizScores),
		ReadsToday:        s.ReadsToday(),
		DailyGoal:         goal,
		DailyGoalProgress: s.DailyGoalProgress(goal),
		GeneratedAt:       s.clock.Now(),
	}
}

func (sum Summary) rows() [][2]any {
	return [][2]any{
		{"Articles Read", sum.ArticlesRead},
		{"Total Reading Time", sum.ReadingTimeLabel},
		{"Current Streak", sum.StreakLabel},
		{"Bookmarked Articles", sum.Bookmarked},
		{"Average Quiz Score", sum.AverageQuizScore},
		{"Daily Reading Goal", sum.DailyGoal},
	}
}

// Export writes a human-readable summary of the record.
func (s *Store) Export(w io.Writer, goal int) error {
	sum := s.Summarize(goal)
	if _, err := fmt.Fprintf(w, "CognityPin User Data Export\nGenerated on: %s\n\n", sum.GeneratedAt.Format(time.RFC1123)); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	for _, r := range sum.rows() {
		if _, err := fmt.Fprintf(w, "%s: %v\n", r[0], r[1]); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
	}
	return nil
}

const (
	summarySheet = "Summary"
	scoresSheet  = "Quiz Scores"
)

// ExportWorkbook writes the summary and the per-article quiz scores as an
// XLSX workbook.
func (s *Store) ExportWorkbook(w io.Writer, goal int) error {
	sum := s.Summarize(goal)
	p := s.Snapshot()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Metric", "Value"}); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	for i, r := range sum.rows() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{r[0], r[1]}); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}

	if _, err := f.NewSheet(scoresSheet); err != nil {
		return fmt.Errorf("creating scores sheet: %w", err)
	}
	if err := f.SetSheetRow(scoresSheet, "A1", &[]any{"Article", "Score"}); err != nil {
		return fmt.Errorf("writing scores header: %w", err)
	}
	ids := make([]string, 0, len(p.QuizScores))
	for id := range p.QuizScores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, id := range ids {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(scoresSheet, cell, &[]any{id, p.QuizScores[id]}); err != nil {
			return fmt.Errorf("writing score row: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
