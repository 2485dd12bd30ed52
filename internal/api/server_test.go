package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cognitypin/cognitypin/internal/api"
	"github.com/cognitypin/cognitypin/internal/app"
	"github.com/cognitypin/cognitypin/internal/content"
	"github.com/cognitypin/cognitypin/internal/platform/clock"
	"github.com/cognitypin/cognitypin/internal/platform/metrics"
	"github.com/cognitypin/cognitypin/internal/prefs"
)

type fixture struct {
	svc     *app.Service
	clock   *clock.Fake
	handler http.Handler
}

func newFixture(t *testing.T, checks ...api.Check) *fixture {
	t.Helper()
	c, err := content.LoadSeed()
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	fc := clock.NewFake(time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC))
	m := metrics.New()
	svc := app.New(app.Config{Catalog: c, Prefs: prefs.NewMemoryStore(), Clock: fc, Metrics: m})
	t.Cleanup(svc.Close)

	srv := api.New(api.Config{App: svc, Metrics: m, Checks: checks})
	return &fixture{svc: svc, clock: fc, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"healthz returns 200", "/healthz", http.StatusOK, `{"status":"ok"}`},
		{"readyz returns 200", "/readyz", http.StatusOK, `{"status":"ready"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestReadyzReportsFailedChecks(t *testing.T) {
	f := newFixture(t, api.Check{Name: "database", Fn: func(context.Context) error {
		return errors.New("connection refused")
	}})

	rec := f.do(t, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestListArticles(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/articles", 5},
		{"/api/articles?category=health", 2},
		{"/api/articles?category=Health&q=rem", 1},
		{"/api/articles?category=cooking", 0},
		{"/api/articles?q=QUANTUM", 1},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := decode[[]content.Article](t, rec); len(got) != tt.want {
				t.Errorf("articles = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestGetArticle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/articles/heart-rate-variability", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[map[string]any](t, rec)
	if got["readingLabel"] != "5 min read" || got["isBookmarked"] != false {
		t.Errorf("article = %v", got)
	}

	if rec := f.do(t, http.MethodGet, "/api/articles/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown article status = %d, want 404", rec.Code)
	}
}

func TestRelatedAndQuestions(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/articles/heart-rate-variability/related?limit=2", "")
	if got := decode[[]content.Article](t, rec); len(got) != 2 || got[0].ID != "science-of-sleep-cycles" {
		t.Errorf("related = %v", got)
	}
	if rec := f.do(t, http.MethodGet, "/api/articles/heart-rate-variability/related?limit=x", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/articles/science-of-sleep-cycles/questions", "")
	if got := decode[[]content.QuizQuestion](t, rec); len(got) != 1 || got[0].CorrectIndex != 2 {
		t.Errorf("questions = %v", got)
	}
}

func TestBookmarkFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/articles/quantum-entanglement-explained/bookmark", "")
	if got := decode[map[string]any](t, rec); got["isBookmarked"] != true {
		t.Fatalf("toggle = %v", got)
	}
	rec = f.do(t, http.MethodGet, "/api/bookmarks", "")
	if got := decode[[]content.Article](t, rec); len(got) != 1 {
		t.Errorf("bookmarks = %d, want 1", len(got))
	}
	if rec := f.do(t, http.MethodPost, "/api/articles/nope/bookmark", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown bookmark status = %d", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/categories", "")
	if got := decode[[]content.CategoryCount](t, rec); len(got) != 8 {
		t.Errorf("categories = %d, want 8", len(got))
	}
}

func TestReadingFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/reading", `{"articleId":"heart-rate-variability"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body.String())
	}
	id := decode[app.ReadingView](t, rec).ID

	f.clock.Advance(150 * time.Second)
	rec = f.do(t, http.MethodGet, "/api/reading/"+id, "")
	if got := decode[app.ReadingView](t, rec); got.Percent != 50 {
		t.Errorf("percent = %d, want 50", got.Percent)
	}

	rec = f.do(t, http.MethodPut, "/api/reading/"+id+"/progress", `{"progress":0.9}`)
	if got := decode[app.ReadingView](t, rec); got.Progress != 0.9 {
		t.Errorf("progress = %v, want 0.9", got.Progress)
	}
	if rec := f.do(t, http.MethodPut, "/api/reading/"+id+"/progress", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing progress status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/reading/"+id, "")
	if got := decode[map[string]bool](t, rec); !got["completed"] {
		t.Error("closing a mostly read session should complete it")
	}

	rec = f.do(t, http.MethodGet, "/api/progress", "")
	got := decode[map[string]any](t, rec)
	if ids, _ := got["articlesRead"].([]any); len(ids) != 1 {
		t.Errorf("articlesRead = %v", got["articlesRead"])
	}
	if got["readingRatio"] != 0.2 {
		t.Errorf("readingRatio = %v, want 0.2", got["readingRatio"])
	}

	if rec := f.do(t, http.MethodDelete, "/api/reading/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second close status = %d", rec.Code)
	}
}

func TestReadingRejectsBadRequests(t *testing.T) {
	f := newFixture(t)

	if rec := f.do(t, http.MethodPost, "/api/reading", `{"articleId":"nope"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unknown article status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/reading", `{"article":"x"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d", rec.Code)
	}
}

func TestQuizFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/quiz", `{"articleId":"science-of-sleep-cycles"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body.String())
	}
	view := decode[app.QuizView](t, rec)
	if view.Current == nil || view.Current.CorrectIndex != nil {
		t.Fatal("answer key exposed before completion")
	}

	if rec := f.do(t, http.MethodPost, "/api/quiz/"+view.ID+"/answer", `{"option":7}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid option status = %d", rec.Code)
	}
	f.do(t, http.MethodPost, "/api/quiz/"+view.ID+"/answer", `{"option":1}`)
	f.do(t, http.MethodPost, "/api/quiz/"+view.ID+"/previous", "")
	rec = f.do(t, http.MethodPost, "/api/quiz/"+view.ID+"/next", "")
	view = decode[app.QuizView](t, rec)
	if view.Score == nil || *view.Score != 0 {
		t.Errorf("score = %v, want 0", view.Score)
	}

	rec = f.do(t, http.MethodGet, "/api/quiz/"+view.ID, "")
	if got := decode[app.QuizView](t, rec); got.State != "completed" {
		t.Errorf("state = %s", got.State)
	}
	if rec := f.do(t, http.MethodPost, "/api/quiz/"+view.ID+"/answer", `{"option":2}`); rec.Code != http.StatusConflict {
		t.Errorf("answer after completion status = %d, want 409", rec.Code)
	}
	if rec := f.do(t, http.MethodDelete, "/api/quiz/"+view.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("close status = %d", rec.Code)
	}

	if rec := f.do(t, http.MethodPost, "/api/quiz", `{"articleId":"quantum-entanglement-explained"}`); rec.Code != http.StatusConflict {
		t.Errorf("quiz without questions status = %d", rec.Code)
	}
}

func TestInsightsAndRecommendations(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/health/insights", `{"steps":12000,"heartRate":72,"sleepHours":6}`)
	got := decode[[]app.InsightSuggestion](t, rec)
	if len(got) != 3 || got[2].Title != "Consider More Sleep" {
		t.Errorf("insights = %+v", got)
	}
	if rec := f.do(t, http.MethodPost, "/api/health/insights", `{"steps":-1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative metrics status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/recommendations", "")
	if got := decode[[]content.Article](t, rec); len(got) != 5 {
		t.Errorf("recommendations = %d, want 5", len(got))
	}
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	f.svc.Progress().MarkRead("heart-rate-variability", 5)

	rec := f.do(t, http.MethodGet, "/api/progress/export?format=text", "")
	if !strings.Contains(rec.Body.String(), "Articles Read: 1") {
		t.Errorf("text export = %s", rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/api/progress/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d", rec.Code)
	}
	wb, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer wb.Close()
	if idx, _ := wb.GetSheetIndex("Summary"); idx < 0 {
		t.Error("workbook has no Summary sheet")
	}
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	f.svc.Progress().MarkRead("heart-rate-variability", 5)

	if rec := f.do(t, http.MethodDelete, "/api/account", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if f.svc.Progress().IsRead("heart-rate-variability") {
		t.Error("progress survived account deletion")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/articles", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), `endpoint="GET /api/articles"`) {
		t.Error("/metrics does not include the articles route")
	}
}

func TestHomeFeed(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/feed", "")
	home := decode[app.Home](t, rec)
	if home.HasFilters || len(home.Articles) != 5 || len(home.Featured) != 3 || len(home.HealthRelated) != 3 {
		t.Fatalf("home = %+v", home)
	}

	if rec := f.do(t, http.MethodPut, "/api/feed", `{"query":"REM","category":"Health"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("set filters status = %d", rec.Code)
	}
	// Reading before the debounce settles applies the pending change.
	home = decode[app.Home](t, f.do(t, http.MethodGet, "/api/feed", ""))
	if !home.HasFilters || home.Category != content.CategoryHealth || len(home.Articles) != 1 {
		t.Errorf("filtered home = %+v", home)
	}

	if rec := f.do(t, http.MethodPut, "/api/feed", `{"category":"cooking"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d", rec.Code)
	}

	f.do(t, http.MethodDelete, "/api/feed", "")
	f.clock.Advance(time.Second)
	home = decode[app.Home](t, f.do(t, http.MethodGet, "/api/feed", ""))
	if home.HasFilters || len(home.Articles) != 5 {
		t.Errorf("cleared home = %+v", home)
	}
}
