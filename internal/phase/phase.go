// Package phase maps a composite readiness score to a named phase.
//
// A Table is an ordered list of minimum scores evaluated from the highest
// minimum down; the first entry whose minimum is at or below the score wins,
// so a score sitting exactly on a boundary belongs to the higher phase.
package phase

import (
	"math"
	"sort"
	"strings"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
)

// Phase is one readiness tier.
type Phase struct {
	Name        string  `yaml:"name" json:"name"`
	Min         float64 `yaml:"min" json:"min"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// Default phase names.
const (
	Scale     = "SCALE"
	Beta      = "BETA"
	MVP       = "MVP"
	POC       = "POC"
	Inception = "INCEPTION"
)

// Defaults is the built-in threshold table, highest first.
var Defaults = []Phase{
	{Name: Scale, Min: 90, Description: "Ready to scale - production hardened"},
	{Name: Beta, Min: 80, Description: "Beta ready - minor gaps remain"},
	{Name: MVP, Min: 60, Description: "MVP ready - core practices in place"},
	{Name: POC, Min: 40, Description: "Proof of concept - foundations missing"},
	{Name: Inception, Min: 0, Description: "Inception - little readiness signal"},
}

// Table is a validated, immutable threshold table.
type Table struct {
	phases []Phase
}

// DefaultTable returns the built-in table.
func DefaultTable() Table {
	t, err := NewTable(Defaults)
	if err != nil {
		panic("phase: invalid default table: " + err.Error())
	}
	return t
}

// NewTable validates phases and returns a table ordered highest minimum
// first. The table must cover [0,100] with no gaps: the lowest minimum is
// exactly 0, minimums are unique and none exceeds 100.
func NewTable(phases []Phase) (Table, error) {
	if len(phases) == 0 {
		return Table{}, rerr.NewConfigError("phase table is empty")
	}
	for _, p := range phases {
		if math.IsNaN(p.Min) || math.IsInf(p.Min, 0) {
			return Table{}, rerr.NewConfigErrorf("phase %q minimum must be a finite number, got %g", strings.TrimSpace(p.Name), p.Min)
		}
	}

	sorted := make([]Phase, len(phases))
	copy(sorted, phases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Min > sorted[j].Min
	})

	seen := make(map[string]bool, len(sorted))
	for i, p := range sorted {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return Table{}, rerr.NewConfigError("phase name is required")
		}
		if seen[name] {
			return Table{}, rerr.NewConfigErrorf("duplicate phase %q", name)
		}
		seen[name] = true
		sorted[i].Name = name

		if p.Min < 0 || p.Min > 100 {
			return Table{}, rerr.NewConfigErrorf("phase %q minimum %g is outside [0,100]", name, p.Min)
		}
		if i > 0 && sorted[i-1].Min == p.Min {
			return Table{}, rerr.NewConfigErrorf("phases %q and %q share minimum %g", sorted[i-1].Name, name, p.Min)
		}
	}

	if lowest := sorted[len(sorted)-1]; lowest.Min != 0 {
		return Table{}, rerr.NewConfigErrorf("lowest phase %q must start at 0, got %g", lowest.Name, lowest.Min)
	}

	return Table{phases: sorted}, nil
}

// Classify returns the single phase that applies to score. Scores outside
// [0,100] are clamped.
func (t Table) Classify(score float64) Phase {
	_, p := t.lookup(score)
	return p
}

// Next returns the phase directly above the one score falls in. The second
// result is false when score is already in the top phase.
func (t Table) Next(score float64) (Phase, bool) {
	i, _ := t.lookup(score)
	if i <= 0 {
		return Phase{}, false
	}
	return t.phases[i-1], true
}

// Phases returns a copy of the table, highest minimum first.
func (t Table) Phases() []Phase {
	out := make([]Phase, len(t.phases))
	copy(out, t.phases)
	return out
}

// Describe returns the description of the named phase.
func (t Table) Describe(name string) string {
	for _, p := range t.phases {
		if p.Name == name {
			return p.Description
		}
	}
	return ""
}

func (t Table) lookup(score float64) (int, Phase) {
	if len(t.phases) == 0 {
		return -1, Phase{}
	}
	score = clamp(score)
	for i, p := range t.phases {
		if score >= p.Min {
			return i, p
		}
	}
	// Unreachable for a validated table; the lowest minimum is 0.
	last := len(t.phases) - 1
	return last, t.phases[last]
}

func clamp(score float64) float64 {
	switch {
	case math.IsNaN(score):
		return 0
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}
