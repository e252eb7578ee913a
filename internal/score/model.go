// Package score is the readiness scoring engine.
//
// A Model is built once from the category configuration and validated up
// front; a configuration whose weights do not sum to 100 never produces a
// score. Model.Score then turns collected checks into an immutable Report:
// checks are averaged per category, each category score is weighted, the
// weighted scores are summed into the total and the total is classified
// into a phase.
package score

import (
	"math"
	"strings"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/phase"
)

// WeightTotal is the required sum of all category weights.
const WeightTotal = 100

// MinWeight is the smallest category weight, one hundredth of a point.
const MinWeight = 1.0 / weightUnit

// weightTolerance is the allowed drift of the weight sum, in hundredths of
// a point, so that thirds like 33.33/33.33/33.34 or 33.333 x3 are accepted.
const weightTolerance = 1

// CategorySpec is the fixed configuration of one category.
type CategorySpec struct {
	ID          string
	Description string
	Weight      float64
	Checks      []string
}

// Model is a validated scoring configuration. It is immutable and safe for
// concurrent use.
type Model struct {
	specs     []CategorySpec
	weights   map[string]int64
	precision int
	phases    phase.Table
}

// Option configures a Model.
type Option func(*Model)

// WithPrecision sets the number of decimals kept on scores. Default 0.
func WithPrecision(p int) Option {
	return func(m *Model) {
		m.precision = p
	}
}

// WithPhases sets the phase table. Default phase.DefaultTable().
func WithPhases(t phase.Table) Option {
	return func(m *Model) {
		m.phases = t
	}
}

// NewModel validates specs and returns a Model. Any violation is a
// configuration error: no categories, blank or duplicate ids, weights below
// MinWeight, a category with zero checks, duplicate check ids, weights not
// summing to 100 or a precision outside [0,4].
func NewModel(specs []CategorySpec, opts ...Option) (*Model, error) {
	m := &Model{
		weights: make(map[string]int64, len(specs)),
		phases:  phase.DefaultTable(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.precision < 0 || m.precision > maxPrec {
		return nil, rerr.NewConfigErrorf("precision %d is outside [0,%d]", m.precision, maxPrec)
	}
	if len(m.phases.Phases()) == 0 {
		return nil, rerr.NewConfigError("phase table is empty")
	}
	if len(specs) == 0 {
		return nil, rerr.NewConfigError("no categories configured")
	}

	var sum int64
	for _, s := range specs {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return nil, rerr.NewConfigError("category id is required")
		}
		if _, dup := m.weights[id]; dup {
			return nil, rerr.NewConfigErrorf("duplicate category %q", id)
		}
		if !(s.Weight >= MinWeight) || math.IsInf(s.Weight, 0) {
			return nil, rerr.NewConfigErrorf("category %q weight must be at least %g, got %g", id, MinWeight, s.Weight)
		}
		if len(s.Checks) == 0 {
			return nil, rerr.NewConfigErrorf("category %q has no checks configured", id)
		}
		seen := make(map[string]bool, len(s.Checks))
		for _, c := range s.Checks {
			if strings.TrimSpace(c) == "" {
				return nil, rerr.NewConfigErrorf("category %q has a blank check id", id)
			}
			if seen[c] {
				return nil, rerr.NewConfigErrorf("category %q lists check %q twice", id, c)
			}
			seen[c] = true
		}

		w := ticks(s.Weight, weightUnit)
		m.weights[id] = w
		sum += w

		spec := s
		spec.ID = id
		spec.Checks = append([]string(nil), s.Checks...)
		m.specs = append(m.specs, spec)
	}

	if diff := sum - WeightTotal*weightUnit; diff > weightTolerance || diff < -weightTolerance {
		return nil, rerr.NewConfigErrorf("category weights sum to %g, must sum to %d", points(sum, weightUnit), WeightTotal)
	}

	return m, nil
}

// Categories returns a copy of the category configuration in order.
func (m *Model) Categories() []CategorySpec {
	out := make([]CategorySpec, len(m.specs))
	for i, s := range m.specs {
		out[i] = s
		out[i].Checks = append([]string(nil), s.Checks...)
	}
	return out
}

// Precision returns the number of decimals kept on scores.
func (m *Model) Precision() int {
	return m.precision
}

// Phases returns the phase table.
func (m *Model) Phases() phase.Table {
	return m.phases
}
