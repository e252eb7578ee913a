package advise

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/silver2dream/repo-readiness/internal/score"
)

func sampleReport(t *testing.T) *score.Report {
	t.Helper()
	m, err := score.NewModel([]score.CategorySpec{
		{ID: "tests", Weight: 30, Checks: []string{"t1", "t2"}},
		{ID: "security", Weight: 30, Checks: []string{"s1", "s2"}},
		{ID: "documentation", Weight: 40, Checks: []string{"d1", "d2", "d3", "d4", "d5"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m.Score(score.Input{Signals: map[string][]score.Check{
		"tests":    {score.Pass("t1", ""), score.Fail("t2", "no CI")},
		"security": {score.Numeric("s1", 40, "partial"), score.Unavailable("s2", errors.New("git missing"))},
		"documentation": {
			score.Pass("d1", ""), score.Pass("d2", ""), score.Pass("d3", ""), score.Pass("d4", ""),
			score.Numeric("d5", 90, "README lacks usage"),
		},
	}})
}

func TestRecommend(t *testing.T) {
	remedies := map[string]string{
		"t2": "Add CI",
		"s1": "Harden",
	}
	recs := Recommend(sampleReport(t), func(id string) string { return remedies[id] })

	want := []Recommendation{
		{Check: "t2", Category: "tests", Severity: SeverityP0, Gain: 15, Message: "Add CI", Detail: "no CI"},
		{Check: "s2", Category: "security", Severity: SeverityP0, Gain: 15, Message: "Improve s2", Detail: "signal unavailable: git missing"},
		{Check: "s1", Category: "security", Severity: SeverityP0, Gain: 9, Message: "Harden", Detail: "partial"},
		{Check: "d5", Category: "documentation", Severity: SeverityP2, Gain: 0.8, Message: "Improve d5", Detail: "README lacks usage"},
	}
	if diff := cmp.Diff(want, recs); diff != "" {
		t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommend_GainsBoundTheGap(t *testing.T) {
	r := sampleReport(t)
	var total float64
	for _, rec := range Recommend(r, nil) {
		total += rec.Gain
	}
	gap := 100 - r.TotalScore
	if d := total - gap; d > 1 || d < -1 {
		t.Errorf("sum of gains %g should close the gap %g", total, gap)
	}
}

func TestRecommend_PerfectReport(t *testing.T) {
	m, err := score.NewModel([]score.CategorySpec{{ID: "a", Weight: 100, Checks: []string{"x"}}})
	if err != nil {
		t.Fatal(err)
	}
	r := m.Score(score.Input{Signals: map[string][]score.Check{"a": {score.Pass("x", "")}}})
	if recs := Recommend(r, nil); len(recs) != 0 {
		t.Errorf("expected no recommendations, got %v", recs)
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		gain float64
		want Severity
	}{
		{15, SeverityP0},
		{5, SeverityP0},
		{4.99, SeverityP1},
		{2, SeverityP1},
		{1.99, SeverityP2},
		{0.01, SeverityP2},
	}
	for _, tt := range tests {
		if got := SeverityFor(tt.gain); got != tt.want {
			t.Errorf("SeverityFor(%g) = %s, want %s", tt.gain, got, tt.want)
		}
	}
}

func TestCalculateSummary(t *testing.T) {
	recs := []Recommendation{
		{Severity: SeverityP0},
		{Severity: SeverityP0},
		{Severity: SeverityP1},
		{Severity: SeverityP2},
	}
	want := Summary{P0Count: 2, P1Count: 1, P2Count: 1}
	if got := CalculateSummary(recs); got != want {
		t.Errorf("CalculateSummary = %+v, want %+v", got, want)
	}
	if got := CalculateSummary(nil); got != (Summary{}) {
		t.Errorf("empty summary = %+v", got)
	}
}

func TestTop(t *testing.T) {
	recs := []Recommendation{{Check: "a"}, {Check: "b"}, {Check: "c"}}
	if got := len(Top(recs, 2)); got != 2 {
		t.Errorf("Top(2) returned %d", got)
	}
	if got := len(Top(recs, 10)); got != 3 {
		t.Errorf("Top(10) returned %d", got)
	}
	if got := len(Top(recs, -1)); got != 3 {
		t.Errorf("Top(-1) returned %d", got)
	}
}
