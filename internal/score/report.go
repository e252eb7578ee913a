package score

import (
	"sort"
	"time"
)

// Category is a scored category in a Report.
type Category struct {
	ID               string  `json:"-"`
	Description      string  `json:"description,omitempty"`
	Score            float64 `json:"score"`
	Weight           float64 `json:"weight"`
	WeightedScore    float64 `json:"weighted_score"`
	InsufficientData bool    `json:"insufficient_data"`
	Unavailable      int     `json:"unavailable_checks"`
	Checks           []Check `json:"checks"`
}

// Report is the immutable result of one scoring run. Field names of the
// JSON encoding are the wire contract of dprs.json.
type Report struct {
	Repository        string              `json:"repository"`
	Timestamp         time.Time           `json:"timestamp"`
	TotalScore        float64             `json:"total_score"`
	PhaseReadiness    string              `json:"phase_readiness"`
	PhaseDescription  string              `json:"phase_description,omitempty"`
	NextPhase         string              `json:"next_phase,omitempty"`
	PointsToNextPhase float64             `json:"points_to_next_phase,omitempty"`
	Precision         int                 `json:"precision"`
	Categories        map[string]Category `json:"categories"`

	order []string
}

// Input is what the collector hands to the scorer.
type Input struct {
	Repository string
	Timestamp  time.Time

	// Signals maps category id to its collected checks. A configured
	// category missing from the map scores the no-signal fallback.
	// Categories not in the model are ignored.
	Signals map[string][]Check
}

// Score computes a Report from collected checks.
func (m *Model) Score(in Input) *Report {
	scale := precisionScale(m.precision)

	r := &Report{
		Repository: in.Repository,
		Timestamp:  in.Timestamp,
		Precision:  m.precision,
		Categories: make(map[string]Category, len(m.specs)),
		order:      make([]string, 0, len(m.specs)),
	}

	var total int64
	for _, spec := range m.specs {
		checks := append(make([]Check, 0, len(in.Signals[spec.ID])), in.Signals[spec.ID]...)
		agg := Aggregate(checks, m.precision)
		w := m.weights[spec.ID]
		wt := weightedTicks(agg.ticks, w)
		total += wt

		r.Categories[spec.ID] = Category{
			ID:               spec.ID,
			Description:      spec.Description,
			Score:            agg.Score,
			Weight:           points(w, weightUnit),
			WeightedScore:    points(wt, scale),
			InsufficientData: agg.InsufficientData,
			Unavailable:      agg.Unavailable,
			Checks:           checks,
		}
		r.order = append(r.order, spec.ID)
	}

	if ceiling := int64(WeightTotal) * scale; total > ceiling {
		total = ceiling
	} else if total < 0 {
		total = 0
	}
	r.TotalScore = points(total, scale)

	current := m.phases.Classify(r.TotalScore)
	r.PhaseReadiness = current.Name
	r.PhaseDescription = current.Description
	if next, ok := m.phases.Next(r.TotalScore); ok {
		r.NextPhase = next.Name
		r.PointsToNextPhase = points(ticks(next.Min, scale)-total, scale)
	}

	return r
}

// Ordered returns the categories in configuration order.
func (r *Report) Ordered() []Category {
	out := make([]Category, 0, len(r.Categories))
	if len(r.order) == len(r.Categories) {
		for _, id := range r.order {
			out = append(out, r.Categories[id])
		}
		return out
	}
	// Report decoded from JSON: fall back to id order.
	for _, id := range sortedKeys(r.Categories) {
		c := r.Categories[id]
		c.ID = id
		out = append(out, c)
	}
	return out
}

// InsufficientCategories returns the ids of categories flagged for missing
// signals, in configuration order.
func (r *Report) InsufficientCategories() []string {
	var ids []string
	for _, c := range r.Ordered() {
		if c.InsufficientData {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// WeightedSum returns the sum of category weighted scores. It differs from
// TotalScore only when the total was clamped.
func (r *Report) WeightedSum() float64 {
	scale := precisionScale(r.Precision)
	var sum int64
	for _, c := range r.Categories {
		sum += ticks(c.WeightedScore, scale)
	}
	return points(sum, scale)
}

func sortedKeys(m map[string]Category) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
