package scoring_test

import (
	"testing"

	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/scoring"
)

func TestInsights(t *testing.T) {
	tests := []struct {
		name string
		m    scoring.Metrics
		want []string
	}{
		{"no data", scoring.Metrics{}, nil},
		{"step goal reached", scoring.Metrics{Steps: 10000}, []string{"Great Activity Level!"}},
		{"below step goal", scoring.Metrics{Steps: 4200}, []string{"Increase Your Activity"}},
		{"healthy heart rate", scoring.Metrics{HeartRate: 72}, []string{"Healthy Resting Heart Rate"}},
		{"fast heart rate", scoring.Metrics{HeartRate: 110}, nil},
		{"optimal sleep", scoring.Metrics{SleepHours: 7.5}, []string{"Optimal Sleep Duration"}},
		{"short sleep", scoring.Metrics{SleepHours: 5}, []string{"Consider More Sleep"}},
		{"long sleep", scoring.Metrics{SleepHours: 10}, nil},
		{"all metrics", scoring.Metrics{Steps: 12000, HeartRate: 60, SleepHours: 9}, []string{
			"Great Activity Level!", "Healthy Resting Heart Rate", "Optimal Sleep Duration",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.Insights(tt.m)
			if len(got) != len(tt.want) {
				t.Fatalf("Insights() = %d insights, want %d", len(got), len(tt.want))
			}
			for i, title := range tt.want {
				if got[i].Title != title {
					t.Errorf("Insights()[%d] = %q, want %q", i, got[i].Title, title)
				}
			}
		})
	}
}

func TestForInsight(t *testing.T) {
	c, err := content.LoadSeed()
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}

	got := scoring.ForInsight(scoring.Insight{Metric: "Sleep"}, c.Articles)
	want := []string{"heart-rate-variability", "science-of-sleep-cycles", "psychology-of-habit-formation"}
	if len(got) != len(want) {
		t.Fatalf("ForInsight() = %v", ids(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("ForInsight()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	if got := scoring.ForInsight(scoring.Insight{}, nil); len(got) != 0 {
		t.Errorf("ForInsight(nil) = %d, want 0", len(got))
	}
}
