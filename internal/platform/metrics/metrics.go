// Package metrics exposes Prometheus counters for completions, sessions and
// HTTP traffic on a dedicated registry.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cognitypin/cognitypin/internal/events"
)

const namespace = "cognitypin"

// Metrics holds the application collectors.
type Metrics struct {
	Registry          *prometheus.Registry
	ArticlesCompleted prometheus.Counter
	QuizzesCompleted  prometheus.Counter
	QuizScore         prometheus.Histogram
	Reminders         prometheus.Counter
	ActiveSessions    *prometheus.GaugeVec
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all collectors, including the Go runtime
// collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ArticlesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_completed_total",
			Help:      "Total number of completed reading sessions",
		}),
		QuizzesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_completed_total",
			Help:      "Total number of completed quizzes",
		}),
		QuizScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quiz_score",
			Help:      "Distribution of quiz scores",
			Buckets:   []float64{0, 25, 50, 75, 100},
		}),
		Reminders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streak_reminders_total",
			Help:      "Total number of streak reminders sent",
		}),
		ActiveSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of open reading and quiz sessions",
		}, []string{"kind"}),
		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "endpoint"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ArticlesCompleted,
		m.QuizzesCompleted,
		m.QuizScore,
		m.Reminders,
		m.ActiveSessions,
		m.RequestCounter,
		m.RequestDuration,
	)
	return m
}

// Observe is a bus subscriber counting completion events.
func (m *Metrics) Observe(ev events.Event) {
	switch ev.Kind {
	case events.KindArticleCompleted:
		m.ArticlesCompleted.Inc()
	case events.KindQuizCompleted:
		m.QuizzesCompleted.Inc()
		m.QuizScore.Observe(float64(ev.Score))
	case events.KindStreakReminder:
		m.Reminders.Inc()
	}
}

// SessionOpened and SessionClosed track open sessions by kind. Both are
// safe on a nil receiver.
func (m *Metrics) SessionOpened(kind string) {
	if m != nil {
		m.ActiveSessions.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) SessionClosed(kind string) {
	if m != nil {
		m.ActiveSessions.WithLabelValues(kind).Dec()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records request counts and latency, labelled by the matched
// route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
