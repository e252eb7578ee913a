// Package advise turns a scored report into a ranked list of improvements.
package advise

import (
	"sort"

	"github.com/silver2dream/repo-readiness/internal/score"
)

// gainPrecision is the number of decimals kept on potential gains.
const gainPrecision = 2

// RemedyFunc returns the remedy text for a check id, or "".
type RemedyFunc func(check string) string

// Recommend lists every check below full value with the total points it
// would add, highest gain first. Ties keep category order, then check id.
func Recommend(r *score.Report, remedy RemedyFunc) []Recommendation {
	var recs []Recommendation
	rank := make(map[string]int)

	for i, cat := range r.Ordered() {
		rank[cat.ID] = i
		n := len(cat.Checks)
		if n == 0 {
			continue
		}
		for _, c := range cat.Checks {
			if c.Passed() {
				continue
			}
			delta := (100 - c.Value) / float64(n)
			gain := score.Weighted(delta, cat.Weight, gainPrecision)
			if gain <= 0 {
				continue
			}

			msg := ""
			if remedy != nil {
				msg = remedy(c.ID)
			}
			if msg == "" {
				msg = "Improve " + c.ID
			}
			detail := c.Description
			if !c.Available {
				detail = "signal unavailable: " + c.Error
			}

			recs = append(recs, Recommendation{
				Check:    c.ID,
				Category: cat.ID,
				Severity: SeverityFor(gain),
				Gain:     gain,
				Message:  msg,
				Detail:   detail,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Gain != recs[j].Gain {
			return recs[i].Gain > recs[j].Gain
		}
		if rank[recs[i].Category] != rank[recs[j].Category] {
			return rank[recs[i].Category] < rank[recs[j].Category]
		}
		return recs[i].Check < recs[j].Check
	})
	return recs
}

// CalculateSummary calculates recommendation counts by severity.
func CalculateSummary(recs []Recommendation) Summary {
	var summary Summary

	for _, r := range recs {
		switch r.Severity {
		case SeverityP0:
			summary.P0Count++
		case SeverityP1:
			summary.P1Count++
		case SeverityP2:
			summary.P2Count++
		}
	}

	return summary
}

// Top returns at most n recommendations.
func Top(recs []Recommendation, n int) []Recommendation {
	if n < 0 || len(recs) <= n {
		return recs
	}
	return recs[:n]
}
