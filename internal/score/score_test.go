package score

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/phase"
)

var fixedTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func defaultSpecs() []CategorySpec {
	return []CategorySpec{
		{ID: "tests", Weight: 30, Checks: []string{"t1"}},
		{ID: "security", Weight: 30, Checks: []string{"s1"}},
		{ID: "documentation", Weight: 20, Checks: []string{"d1"}},
		{ID: "developer_experience", Weight: 20, Checks: []string{"x1"}},
	}
}

func mustModel(t *testing.T, specs []CategorySpec, opts ...Option) *Model {
	t.Helper()
	m, err := NewModel(specs, opts...)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestScore_ReferenceScenario(t *testing.T) {
	m := mustModel(t, defaultSpecs())

	r := m.Score(Input{
		Repository: "github.com/acme/widget",
		Timestamp:  fixedTime,
		Signals: map[string][]Check{
			"tests":                {Numeric("t1", 80, "")},
			"security":             {Numeric("s1", 60, "")},
			"documentation":        {Numeric("d1", 100, "")},
			"developer_experience": {Numeric("x1", 50, "")},
		},
	})

	want := map[string]float64{
		"tests":                24,
		"security":             18,
		"documentation":        20,
		"developer_experience": 10,
	}
	for id, ws := range want {
		if got := r.Categories[id].WeightedScore; got != ws {
			t.Errorf("%s weighted_score = %g, want %g", id, got, ws)
		}
	}
	if r.TotalScore != 72 {
		t.Errorf("total_score = %g, want 72", r.TotalScore)
	}
	if r.PhaseReadiness != phase.MVP {
		t.Errorf("phase_readiness = %s, want MVP", r.PhaseReadiness)
	}
	if r.NextPhase != phase.Beta || r.PointsToNextPhase != 8 {
		t.Errorf("next = %s (+%g), want BETA (+8)", r.NextPhase, r.PointsToNextPhase)
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		checks    []Check
		precision int
		want      float64
		flagged   bool
	}{
		{"all pass", []Check{Pass("a", ""), Pass("b", "")}, 0, 100, false},
		{"half", []Check{Pass("a", ""), Fail("b", "")}, 0, 50, false},
		{"thirds round down", []Check{Pass("a", ""), Fail("b", ""), Fail("c", "")}, 0, 33, false},
		{"thirds round up", []Check{Pass("a", ""), Pass("b", ""), Fail("c", "")}, 0, 67, false},
		{"thirds one decimal", []Check{Pass("a", ""), Pass("b", ""), Fail("c", "")}, 1, 66.7, false},
		{"half rounds away from zero", []Check{Numeric("a", 50, ""), Numeric("b", 51, "")}, 0, 51, false},
		{"numeric mean", []Check{Numeric("a", 25, ""), Numeric("b", 75, ""), Pass("c", "")}, 0, 67, false},
		{"empty falls back to zero", nil, 0, 0, true},
		{"unavailable counts zero", []Check{Pass("a", ""), Unavailable("b", errors.New("boom"))}, 0, 50, true},
		{"all unavailable", []Check{Unavailable("a", nil)}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.checks, tt.precision)
			if got.Score != tt.want {
				t.Errorf("Score = %g, want %g", got.Score, tt.want)
			}
			if got.InsufficientData != tt.flagged {
				t.Errorf("InsufficientData = %v, want %v", got.InsufficientData, tt.flagged)
			}
			if got.Score < 0 || got.Score > 100 {
				t.Errorf("Score %g outside [0,100]", got.Score)
			}
		})
	}
}

func TestScore_ZeroChecksCollected(t *testing.T) {
	m := mustModel(t, defaultSpecs())

	r := m.Score(Input{
		Repository: "repo",
		Timestamp:  fixedTime,
		Signals: map[string][]Check{
			"tests":                {Pass("t1", "")},
			"documentation":        {Pass("d1", "")},
			"developer_experience": {Pass("x1", "")},
		},
	})

	sec := r.Categories["security"]
	if !sec.InsufficientData {
		t.Error("security should be flagged insufficient_data")
	}
	if sec.Score != 0 || sec.WeightedScore != 0 {
		t.Errorf("security score = %g/%g, want 0/0", sec.Score, sec.WeightedScore)
	}
	if r.TotalScore != 70 {
		t.Errorf("total_score = %g, want 70", r.TotalScore)
	}
	if diff := cmp.Diff([]string{"security"}, r.InsufficientCategories()); diff != "" {
		t.Errorf("InsufficientCategories mismatch (-want +got):\n%s", diff)
	}
}

func TestNewModel_RejectsWeightsNot100(t *testing.T) {
	specs := defaultSpecs()
	specs[3].Weight = 15 // 30+30+20+15 = 95

	_, err := NewModel(specs)
	if err == nil {
		t.Fatal("expected error for weights summing to 95")
	}
	if !rerr.IsConfigError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestNewModel_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		specs []CategorySpec
		opts  []Option
	}{
		{"no categories", nil, nil},
		{"over 100", []CategorySpec{{ID: "a", Weight: 60, Checks: []string{"x"}}, {ID: "b", Weight: 41, Checks: []string{"y"}}}, nil},
		{"zero checks", []CategorySpec{{ID: "a", Weight: 100}}, nil},
		{"blank id", []CategorySpec{{ID: " ", Weight: 100, Checks: []string{"x"}}}, nil},
		{"duplicate id", []CategorySpec{{ID: "a", Weight: 50, Checks: []string{"x"}}, {ID: "a", Weight: 50, Checks: []string{"y"}}}, nil},
		{"zero weight", []CategorySpec{{ID: "a", Weight: 100, Checks: []string{"x"}}, {ID: "b", Weight: 0, Checks: []string{"y"}}}, nil},
		{"negative weight", []CategorySpec{{ID: "a", Weight: 110, Checks: []string{"x"}}, {ID: "b", Weight: -10, Checks: []string{"y"}}}, nil},
		{"weight below one hundredth", []CategorySpec{{ID: "a", Weight: 99.999, Checks: []string{"x"}}, {ID: "b", Weight: 0.001, Checks: []string{"y"}}}, nil},
		{"NaN weight", []CategorySpec{{ID: "a", Weight: 100, Checks: []string{"x"}}, {ID: "b", Weight: math.NaN(), Checks: []string{"y"}}}, nil},
		{"infinite weight", []CategorySpec{{ID: "a", Weight: math.Inf(1), Checks: []string{"x"}}}, nil},
		{"duplicate check", []CategorySpec{{ID: "a", Weight: 100, Checks: []string{"x", "x"}}}, nil},
		{"blank check", []CategorySpec{{ID: "a", Weight: 100, Checks: []string{""}}}, nil},
		{"precision", []CategorySpec{{ID: "a", Weight: 100, Checks: []string{"x"}}}, []Option{WithPrecision(5)}},
		{"empty phases", []CategorySpec{{ID: "a", Weight: 100, Checks: []string{"x"}}}, []Option{WithPhases(phase.Table{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(tt.specs, tt.opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !rerr.IsConfigError(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestNewModel_AcceptsThirds(t *testing.T) {
	specs := []CategorySpec{
		{ID: "a", Weight: 33.333, Checks: []string{"x"}},
		{ID: "b", Weight: 33.333, Checks: []string{"y"}},
		{ID: "c", Weight: 33.333, Checks: []string{"z"}},
	}
	if _, err := NewModel(specs); err != nil {
		t.Fatalf("NewModel: %v", err)
	}
}

func TestNewModel_AcceptsMinimumWeight(t *testing.T) {
	specs := []CategorySpec{
		{ID: "a", Weight: 99.99, Checks: []string{"x"}},
		{ID: "b", Weight: MinWeight, Checks: []string{"y"}},
	}
	m, err := NewModel(specs)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	r := m.Score(Input{Signals: map[string][]Check{"b": {Pass("y", "")}}})
	if got := r.Categories["b"].Weight; got != MinWeight {
		t.Errorf("weight = %g, want %g", got, MinWeight)
	}
}

func TestScore_WeightedInvariants(t *testing.T) {
	specs := []CategorySpec{
		{ID: "a", Weight: 17, Checks: []string{"1"}},
		{ID: "b", Weight: 23, Checks: []string{"1"}},
		{ID: "c", Weight: 41, Checks: []string{"1"}},
		{ID: "d", Weight: 19, Checks: []string{"1"}},
	}

	for _, precision := range []int{0, 1, 2} {
		m := mustModel(t, specs, WithPrecision(precision))
		tolerance := 0.5/math.Pow10(precision) + 1e-9
		for v := 0; v <= 100; v += 7 {
			r := m.Score(Input{Signals: map[string][]Check{
				"a": {Numeric("1", float64(v), "")},
				"b": {Numeric("1", float64(100-v), "")},
				"c": {Numeric("1", float64(v)/3, "")},
				"d": {Numeric("1", 99.5, "")},
			}})

			for _, c := range r.Ordered() {
				if c.Score < 0 || c.Score > 100 {
					t.Fatalf("%s score %g outside [0,100]", c.ID, c.Score)
				}
				// Off by at most half a unit in the last kept decimal.
				want := c.Score * c.Weight / 100
				if math.Abs(want-c.WeightedScore) > tolerance {
					t.Fatalf("%s weighted %g, raw %g", c.ID, c.WeightedScore, want)
				}
				if got := Weighted(c.Score, c.Weight, precision); got != c.WeightedScore {
					t.Fatalf("%s Weighted() = %g, report has %g", c.ID, got, c.WeightedScore)
				}
			}
			if math.Abs(r.TotalScore-r.WeightedSum()) >= 1 {
				t.Fatalf("total %g vs weighted sum %g", r.TotalScore, r.WeightedSum())
			}
			if r.TotalScore < 0 || r.TotalScore > 100 {
				t.Fatalf("total %g outside [0,100]", r.TotalScore)
			}
		}
	}
}

func TestScore_Idempotent(t *testing.T) {
	m := mustModel(t, defaultSpecs(), WithPrecision(2))
	in := Input{
		Repository: "repo",
		Timestamp:  fixedTime,
		Signals: map[string][]Check{
			"tests":    {Numeric("t1", 33.3333, "x"), Pass("t2", "")},
			"security": {Unavailable("s1", errors.New("git missing"))},
		},
	}

	first, err := json.Marshal(m.Score(in))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(m.Score(in))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("reports differ:\n%s\n%s", first, second)
	}
}

func TestScore_IgnoresUnknownCategoriesAndCopiesInput(t *testing.T) {
	m := mustModel(t, defaultSpecs())
	checks := []Check{Pass("t1", "")}
	r := m.Score(Input{Signals: map[string][]Check{
		"tests":   checks,
		"unknown": {Pass("u", "")},
	}})

	if _, ok := r.Categories["unknown"]; ok {
		t.Error("unknown category should not appear in report")
	}
	checks[0] = Fail("t1", "")
	if !r.Categories["tests"].Checks[0].Passed() {
		t.Error("report must not alias caller's check slice")
	}
}

func TestScore_TopPhaseHasNoNext(t *testing.T) {
	m := mustModel(t, []CategorySpec{{ID: "a", Weight: 100, Checks: []string{"x"}}})
	r := m.Score(Input{Signals: map[string][]Check{"a": {Pass("x", "")}}})

	if r.PhaseReadiness != phase.Scale {
		t.Errorf("phase = %s, want SCALE", r.PhaseReadiness)
	}
	if r.NextPhase != "" || r.PointsToNextPhase != 0 {
		t.Errorf("next = %q (+%g), want none", r.NextPhase, r.PointsToNextPhase)
	}
}

func TestReport_JSONWireFields(t *testing.T) {
	m := mustModel(t, defaultSpecs())
	r := m.Score(Input{Repository: "repo", Timestamp: fixedTime})

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"repository", "total_score", "phase_readiness", "categories"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("missing wire field %q", field)
		}
	}
	cats := decoded["categories"].(map[string]any)
	tests := cats["tests"].(map[string]any)
	for _, field := range []string{"score", "weight", "weighted_score", "insufficient_data"} {
		if _, ok := tests[field]; !ok {
			t.Errorf("missing category field %q", field)
		}
	}
}

func TestReport_OrderedAfterDecode(t *testing.T) {
	m := mustModel(t, defaultSpecs())
	r := m.Score(Input{Repository: "repo", Timestamp: fixedTime})
	data, _ := json.Marshal(r)

	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, c := range decoded.Ordered() {
		ids = append(ids, c.ID)
	}
	want := []string{"developer_experience", "documentation", "security", "tests"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("decoded order mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckConstructors(t *testing.T) {
	got := []Check{
		Pass("a", "ok"),
		Fail("b", ""),
		Numeric("c", 140, ""),
		Numeric("d", math.NaN(), ""),
		Ratio("e", 1, 4, ""),
		Ratio("f", 3, 0, ""),
		Unavailable("g", errors.New("timeout")),
	}
	want := []Check{
		{ID: "a", Kind: KindBool, Value: 100, Available: true, Description: "ok"},
		{ID: "b", Kind: KindBool, Value: 0, Available: true},
		{ID: "c", Kind: KindNumeric, Value: 100, Available: true},
		{ID: "d", Kind: KindNumeric, Value: 0, Available: true},
		{ID: "e", Kind: KindNumeric, Value: 25, Available: true},
		{ID: "f", Kind: KindNumeric, Value: 0, Available: true},
		{ID: "g", Kind: KindBool, Available: false, Error: "timeout"},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("constructors mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_CategoriesReturnsCopy(t *testing.T) {
	m := mustModel(t, defaultSpecs())
	cats := m.Categories()
	cats[0].Checks[0] = "mutated"
	cats[0].Weight = 99

	if m.Categories()[0].Checks[0] != "t1" || m.Categories()[0].Weight != 30 {
		t.Error("Categories() must return a copy")
	}
}
