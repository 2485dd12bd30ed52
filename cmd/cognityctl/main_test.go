package main

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/cognitypin/cognitypin/internal/scoring"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("COGNITY_STORAGE_DRIVER", "sqlite")
	t.Setenv("COGNITY_SQLITE_PATH", filepath.Join(t.TempDir(), "cognitypin.db"))
	t.Setenv("COGNITY_CATALOG_PATH", "")
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	listCategory, relatedLimit, exportXLSX, forceReset = "", scoring.DefaultRelatedLimit, "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "missing.env")}, args...))

	err := rootCmd.Execute()
	teardown()
	return out.String(), err
}

func TestArticles(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr bool
	}{
		{
			name: "all",
			args: []string{"articles"},
			want: []string{"heart-rate-variability", "quantum-entanglement-explained", "5 min read"},
		},
		{
			name:    "by category",
			args:    []string{"articles", "--category", "Science"},
			want:    []string{"quantum-entanglement-explained"},
			notWant: []string{"heart-rate-variability"},
		},
		{
			name:    "unknown category",
			args:    []string{"articles", "-c", "cooking"},
			wantErr: true,
		},
		{
			name: "search",
			args: []string{"search", "hypothalamus"},
			want: []string{"heart-rate-variability"},
		},
		{
			name: "search without matches",
			args: []string{"search", "volcano"},
			want: []string{"No articles found."},
		},
		{
			name:    "related",
			args:    []string{"related", "heart-rate-variability", "-n", "1"},
			want:    []string{"science-of-sleep-cycles"},
			notWant: []string{"psychology-of-habit-formation"},
		},
		{
			name:    "related to unknown article",
			args:    []string{"related", "nope"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v\n%s", err, tt.wantErr, out)
			}
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestReadProgressAndExport(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "", "read", "science-of-sleep-cycles")
	if err != nil {
		t.Fatalf("read error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Streak: 1 day") {
		t.Errorf("read output = %q", out)
	}

	if _, err := run(t, "", "bookmark", "quantum-entanglement-explained"); err != nil {
		t.Fatalf("bookmark error = %v", err)
	}

	// Each run reopens the SQLite file, so progress must have persisted.
	out, err = run(t, "", "progress")
	if err != nil {
		t.Fatalf("progress error = %v", err)
	}
	for _, want := range []string{`Articles read\s+1 of 5`, `Reading time\s+4m`, `Bookmarked\s+1\n`} {
		if !regexp.MustCompile(want).MatchString(out) {
			t.Errorf("progress output does not match %q:\n%s", want, out)
		}
	}

	out, err = run(t, "", "export")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.HasPrefix(out, "CognityPin User Data Export") || !strings.Contains(out, "Articles Read: 1") {
		t.Errorf("export output = %q", out)
	}

	path := filepath.Join(t.TempDir(), "progress.xlsx")
	if _, err := run(t, "", "export", "--xlsx", path); err != nil {
		t.Fatalf("export --xlsx error = %v", err)
	}
	wb, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer wb.Close()
	rows, err := wb.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) < 2 || rows[1][0] != "Articles Read" || rows[1][1] != "1" {
		t.Errorf("summary rows = %v", rows)
	}
}

func TestReadUnknownArticle(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "", "read", "nope"); err == nil {
		t.Error("expected error for unknown article")
	}
}

func TestReset(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "", "read", "heart-rate-variability"); err != nil {
		t.Fatalf("read error = %v", err)
	}

	out, err := run(t, "n\n", "reset")
	if err != nil || !strings.Contains(out, "Cancelled.") {
		t.Fatalf("reset n: err = %v, out = %q", err, out)
	}
	if out, _ := run(t, "", "progress"); !strings.Contains(out, "1 of 5") {
		t.Errorf("progress after cancelled reset:\n%s", out)
	}

	out, err = run(t, "y\n", "reset")
	if err != nil || !strings.Contains(out, "All progress deleted.") {
		t.Fatalf("reset y: err = %v, out = %q", err, out)
	}
	if out, _ := run(t, "", "progress"); !strings.Contains(out, "0 of 5") {
		t.Errorf("progress after reset:\n%s", out)
	}
}
