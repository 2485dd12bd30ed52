package progress_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportWorkbook(t *testing.T) {
	s, _ := newStore(t, nil)
	s.MarkRead("heart-rate-variability", 5)
	s.RecordQuizScore("science-of-sleep-cycles", 50)
	s.RecordQuizScore("heart-rate-variability", 100)

	var buf bytes.Buffer
	if err := s.ExportWorkbook(&buf, 3); err != nil {
		t.Fatalf("ExportWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows(Summary) error = %v", err)
	}
	if len(summary) != 7 {
		t.Fatalf("summary rows = %d, want 7", len(summary))
	}
	if summary[1][0] != "Articles Read" || summary[1][1] != "1" {
		t.Errorf("summary row = %v", summary[1])
	}

	scores, err := f.GetRows("Quiz Scores")
	if err != nil {
		t.Fatalf("GetRows(Quiz Scores) error = %v", err)
	}
	want := [][]string{
		{"Article", "Score"},
		{"heart-rate-variability", "100"},
		{"science-of-sleep-cycles", "50"},
	}
	if len(scores) != len(want) {
		t.Fatalf("score rows = %v", scores)
	}
	for i := range want {
		if scores[i][0] != want[i][0] || scores[i][1] != want[i][1] {
			t.Errorf("row %d = %v, want %v", i, scores[i], want[i])
		}
	}
}
