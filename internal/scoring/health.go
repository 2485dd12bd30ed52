package scoring

import "github.com/cognitypin/cognitypin/internal/content"

// Metrics are the daily readings supplied by the host's health source.
// Zero means the reading is unavailable.
type Metrics struct {
	Steps      float64 `json:"steps"`
	HeartRate  float64 `json:"heartRate"`
	SleepHours float64 `json:"sleepHours"`
}

// Insight is a short health observation derived from Metrics.
type Insight struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
}

const (
	stepGoal     = 10000
	minHeartRate = 60
	maxHeartRate = 100
	minSleep     = 7
	maxSleep     = 9
)

// Insights derives observations from m. Readings outside every rule (a
// fast heart rate, oversleeping) produce nothing.
func Insights(m Metrics) []Insight {
	out := []Insight{}

	if m.Steps > 0 {
		if m.Steps >= stepGoal {
			out = append(out, Insight{
				Title:       "Great Activity Level!",
				Description: "You've reached the recommended 10,000 steps today. This level of activity is associated with numerous health benefits.",
				Metric:      "Steps", Value: m.Steps, Unit: "steps",
			})
		} else {
			out = append(out, Insight{
				Title:       "Increase Your Activity",
				Description: "Consider adding more movement to your day. Even small increases in activity can have significant health benefits.",
				Metric:      "Steps", Value: m.Steps, Unit: "steps",
			})
		}
	}

	if m.HeartRate >= minHeartRate && m.HeartRate <= maxHeartRate {
		out = append(out, Insight{
			Title:       "Healthy Resting Heart Rate",
			Description: "Your heart rate is within the normal range. A lower resting heart rate often indicates better cardiovascular fitness.",
			Metric:      "Heart Rate", Value: m.HeartRate, Unit: "bpm",
		})
	}

	if m.SleepHours > 0 {
		switch {
		case m.SleepHours >= minSleep && m.SleepHours <= maxSleep:
			out = append(out, Insight{
				Title:       "Optimal Sleep Duration",
				Description: "You're getting the recommended amount of sleep. Quality sleep is crucial for physical recovery and mental health.",
				Metric:      "Sleep", Value: m.SleepHours, Unit: "hours",
			})
		case m.SleepHours < minSleep:
			out = append(out, Insight{
				Title:       "Consider More Sleep",
				Description: "You might benefit from getting more sleep. Most adults need 7-9 hours of sleep for optimal health.",
				Metric:      "Sleep", Value: m.SleepHours, Unit: "hours",
			})
		}
	}
	return out
}

const insightArticles = 3

// ForInsight returns reading suggestions for an insight: the first
// health-related articles of the corpus.
func ForInsight(_ Insight, corpus []content.Article) []content.Article {
	out := []content.Article{}
	for _, a := range corpus {
		if len(out) == insightArticles {
			break
		}
		if a.HealthRelated {
			out = append(out, a)
		}
	}
	return out
}
