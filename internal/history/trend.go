package history

import (
	"context"
	"math"
	"time"

	"github.com/silver2dream/repo-readiness/internal/score"
)

// Direction of a score change.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Trend compares a report with the previous run of the same repository.
type Trend struct {
	Direction     Direction          `json:"direction"`
	Delta         float64            `json:"delta"`
	From          float64            `json:"from"`
	To            float64            `json:"to"`
	PreviousPhase string             `json:"previous_phase"`
	PhaseChanged  bool               `json:"phase_changed"`
	PreviousAt    time.Time          `json:"previous_at"`
	Categories    map[string]float64 `json:"category_deltas,omitempty"`
}

const epsilon = 0.00001

// Compute builds the trend from prev to the current report.
func Compute(prev Run, curr *score.Report) Trend {
	d := curr.TotalScore - prev.TotalScore

	t := Trend{
		Direction:     direction(d),
		Delta:         round(d, 2),
		From:          prev.TotalScore,
		To:            curr.TotalScore,
		PreviousPhase: prev.Phase,
		PhaseChanged:  prev.Phase != curr.PhaseReadiness,
		PreviousAt:    prev.Timestamp,
	}

	for id, c := range curr.Categories {
		before, ok := prev.Categories[id]
		if !ok {
			continue
		}
		if t.Categories == nil {
			t.Categories = make(map[string]float64)
		}
		t.Categories[id] = round(c.Score-before, 2)
	}
	return t
}

// Compare looks up the latest run for the report's repository and computes
// the trend against it. It returns ErrNoHistory on a first run. Call it
// before Record, or the report is compared with itself.
func (s *Store) Compare(ctx context.Context, r *score.Report) (Trend, error) {
	prev, ok, err := s.Latest(ctx, r.Repository)
	if err != nil {
		return Trend{}, err
	}
	if !ok {
		return Trend{}, ErrNoHistory
	}
	return Compute(prev, r), nil
}

func direction(d float64) Direction {
	switch {
	case d > epsilon:
		return Up
	case d < -epsilon:
		return Down
	default:
		return Flat
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
