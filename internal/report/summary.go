package report

import (
	"fmt"

	"github.com/silver2dream/repo-readiness/internal/advise"
	"github.com/silver2dream/repo-readiness/internal/console"
	"github.com/silver2dream/repo-readiness/internal/format"
)

// summaryRecommendations caps the recommendations shown on the console.
const summaryRecommendations = 5

// PrintSummary writes the console summary of d. verbose adds the per-check
// Score Details.
func PrintSummary(p *console.Printer, d *Document, verbose bool) {
	prec := d.Precision

	p.Info(p.Bold("DevPilot Readiness Score") + "  " + d.Repository)
	p.Info("")

	tb := format.NewTable(format.ASCII)
	tb.Header("Category", "Score", "", "Weight", "Weighted")
	for _, c := range d.Ordered() {
		name := c.ID
		if c.InsufficientData {
			name += " *"
		}
		tb.Row(name, format.Score(c.Score, prec), format.Bar(c.Score, 10), format.Score(c.Weight, 0), format.Score(c.WeightedScore, prec))
	}
	tb.Footer("Total", format.Score(d.TotalScore, prec), format.Bar(d.TotalScore, 10), "100", format.Score(d.TotalScore, prec))
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	p.Info(tb.String())

	total := format.Score(d.TotalScore, prec)
	p.Infof("Total: %s  Phase: %s", p.ScoreColor(d.TotalScore, total), p.Bold(d.PhaseReadiness))
	if d.NextPhase != "" {
		p.Infof("%s points to %s", format.Score(d.PointsToNextPhase, prec), d.NextPhase)
	}
	if t := d.Trend; t != nil {
		p.Infof("Trend: %s %s (previous %s, %s)", t.Direction, format.Signed(t.Delta, 2), format.Score(t.From, prec), t.PreviousPhase)
	}
	if ids := d.InsufficientCategories(); len(ids) > 0 {
		p.Warning(fmt.Sprintf("insufficient data: %v (marked *)", ids))
	}

	if top := advise.Top(d.Recommendations, summaryRecommendations); len(top) > 0 {
		p.Info("")
		p.Info(p.Bold("Top recommendations"))
		for _, r := range top {
			p.Infof("  [%s] +%s %s: %s", r.Severity, format.Score(r.Gain, 2), r.Check, r.Message)
		}
	}

	if verbose {
		p.Info("")
		p.Info(p.Bold("Score Details"))
		for _, c := range d.Ordered() {
			p.Info(p.Cyan(c.ID))
			if len(c.Checks) == 0 {
				p.Info("  (no checks collected)")
				continue
			}
			for _, chk := range c.Checks {
				p.Infof("  %-20s %5s  %s", chk.ID, checkValue(chk), format.Truncate(checkDetail(chk), 72))
			}
		}
	}
}
