package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/silver2dream/repo-readiness/internal/advise"
	"github.com/silver2dream/repo-readiness/internal/console"
	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/git"
	"github.com/silver2dream/repo-readiness/internal/history"
	"github.com/silver2dream/repo-readiness/internal/score"
)

// sampleDocument builds the 80/60/100/50 scenario: 24+18+20+10 = 72, MVP.
func sampleDocument(t *testing.T) *Document {
	t.Helper()
	m, err := score.NewModel([]score.CategorySpec{
		{ID: "tests", Weight: 30, Checks: []string{"t"}},
		{ID: "security", Weight: 30, Checks: []string{"s"}},
		{ID: "documentation", Weight: 20, Checks: []string{"d"}},
		{ID: "developer_experience", Weight: 20, Checks: []string{"x", "y"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := m.Score(score.Input{
		Repository: "github.com/acme/widget",
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Signals: map[string][]score.Check{
			"tests":                {score.Numeric("t", 80, "ratio 0.24")},
			"security":             {score.Numeric("s", 60, "")},
			"documentation":        {score.Pass("d", "README.md")},
			"developer_experience": {score.Pass("x", ""), score.Unavailable("y", errors.New("git not found"))},
		},
	})
	recs := advise.Recommend(r, nil)
	return New(r, git.Identity{ID: r.Repository, Branch: "main", Commit: "0123456789abcdef"}, recs, nil)
}

func TestWriteJSON_WireFields(t *testing.T) {
	d := sampleDocument(t)
	var buf bytes.Buffer
	if err := d.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got struct {
		Repository     string  `json:"repository"`
		TotalScore     float64 `json:"total_score"`
		PhaseReadiness string  `json:"phase_readiness"`
		NextPhase      string  `json:"next_phase"`
		Branch         string  `json:"branch"`
		Categories     map[string]struct {
			Score            float64 `json:"score"`
			Weight           float64 `json:"weight"`
			WeightedScore    float64 `json:"weighted_score"`
			InsufficientData bool    `json:"insufficient_data"`
		} `json:"categories"`
		Recommendations []advise.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}

	if got.Repository != "github.com/acme/widget" || got.TotalScore != 72 || got.PhaseReadiness != "MVP" {
		t.Errorf("header = %q %g %q", got.Repository, got.TotalScore, got.PhaseReadiness)
	}
	if got.NextPhase != "BETA" || got.Branch != "main" {
		t.Errorf("next phase %q, branch %q", got.NextPhase, got.Branch)
	}

	weighted := map[string]float64{}
	for id, c := range got.Categories {
		weighted[id] = c.WeightedScore
	}
	want := map[string]float64{"tests": 24, "security": 18, "documentation": 20, "developer_experience": 10}
	if diff := cmp.Diff(want, weighted); diff != "" {
		t.Errorf("weighted scores mismatch (-want +got):\n%s", diff)
	}
	if !got.Categories["developer_experience"].InsufficientData {
		t.Error("developer_experience should be flagged insufficient")
	}
	if len(got.Recommendations) == 0 {
		t.Error("expected recommendations in JSON")
	}
	if strings.Contains(buf.String(), `"trend"`) {
		t.Error("trend should be omitted when history is off")
	}
}

func TestWriteJSON_EmptyRecommendations(t *testing.T) {
	d := New(&score.Report{Categories: map[string]score.Category{}}, git.Identity{}, nil, nil)
	var buf bytes.Buffer
	if err := d.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"recommendations": []`) {
		t.Errorf("recommendations should encode as an empty list:\n%s", buf.String())
	}
}

func TestWriteMarkdown(t *testing.T) {
	d := sampleDocument(t)

	var plain, verbose bytes.Buffer
	if err := d.WriteMarkdown(&plain, false); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteMarkdown(&verbose, true); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"# DevPilot Readiness Score",
		"github.com/acme/widget",
		"main @ 0123456789ab",
		"**Total score:** 72 / 100",
		"**Phase:** MVP",
		"BETA, 8 points to go",
		"| tests",
		"Insufficient data for: developer_experience",
		"## Recommendations",
	} {
		if !strings.Contains(plain.String(), want) {
			t.Errorf("expected %q in markdown:\n%s", want, plain.String())
		}
	}
	if strings.Contains(plain.String(), "Score Details") {
		t.Error("non-verbose markdown should not include Score Details")
	}
	for _, want := range []string{"## Score Details", "### security", "unavailable: git not found", "README.md"} {
		if !strings.Contains(verbose.String(), want) {
			t.Errorf("expected %q in verbose markdown", want)
		}
	}
}

func TestWriteMarkdown_Trend(t *testing.T) {
	d := sampleDocument(t)
	d.Trend = &history.Trend{Direction: history.Up, Delta: 4, PreviousAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}

	var buf bytes.Buffer
	if err := d.WriteMarkdown(&buf, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "**Trend:** up (+4.00 since 2026-02-01T00:00:00Z)") {
		t.Errorf("trend line missing:\n%s", buf.String())
	}
}

func TestEmit(t *testing.T) {
	d := sampleDocument(t)
	dir := filepath.Join(t.TempDir(), "artifacts")

	paths, err := Emit(dir, d, false)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	want := []string{filepath.Join(dir, JSONFile), filepath.Join(dir, MarkdownFile)}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	var decoded score.Report
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("dprs.json is not valid: %v", err)
	}
	if decoded.TotalScore != d.TotalScore || decoded.PhaseReadiness != d.PhaseReadiness {
		t.Errorf("decoded %g %s, want %g %s", decoded.TotalScore, decoded.PhaseReadiness, d.TotalScore, d.PhaseReadiness)
	}
}

func TestEmit_OutputError(t *testing.T) {
	d := sampleDocument(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Emit(blocker, d, false)
	if err == nil {
		t.Fatal("expected error when output dir is a file")
	}
	if !rerr.IsOutputError(err) {
		t.Errorf("expected output error, got %v", err)
	}
	if got := rerr.GetExitCode(err); got != rerr.ExitOutputError {
		t.Errorf("exit code = %d", got)
	}
}

func TestPrintSummary(t *testing.T) {
	d := sampleDocument(t)

	var buf bytes.Buffer
	PrintSummary(console.New(&buf, true), d, false)
	out := buf.String()
	for _, want := range []string{"DevPilot Readiness Score", "Total: 72", "Phase: MVP", "8 points to BETA", "developer_experience *", "Top recommendations"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Score Details") {
		t.Error("Score Details should only be printed in verbose mode")
	}

	buf.Reset()
	PrintSummary(console.New(&buf, true), d, true)
	if !strings.Contains(buf.String(), "Score Details") || !strings.Contains(buf.String(), "git not found") {
		t.Errorf("verbose summary missing details:\n%s", buf.String())
	}
}
