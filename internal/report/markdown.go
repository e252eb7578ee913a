package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/silver2dream/repo-readiness/internal/format"
	"github.com/silver2dream/repo-readiness/internal/score"
)

// WriteMarkdown renders dprs.md. verbose adds a Score Details section with
// every check; it never changes any number.
func (d *Document) WriteMarkdown(w io.Writer, verbose bool) error {
	var b strings.Builder
	prec := d.Precision

	b.WriteString("# DevPilot Readiness Score\n\n")
	fmt.Fprintf(&b, "- **Repository:** %s\n", d.Repository)
	if d.Branch != "" || d.Commit != "" {
		fmt.Fprintf(&b, "- **Revision:** %s\n", revision(d.Branch, d.Commit))
	}
	fmt.Fprintf(&b, "- **Generated:** %s\n", d.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Total score:** %s / 100\n", format.Score(d.TotalScore, prec))
	fmt.Fprintf(&b, "- **Phase:** %s", d.PhaseReadiness)
	if d.PhaseDescription != "" {
		fmt.Fprintf(&b, " (%s)", d.PhaseDescription)
	}
	b.WriteString("\n")
	if d.NextPhase != "" {
		fmt.Fprintf(&b, "- **Next phase:** %s, %s points to go\n", d.NextPhase, format.Score(d.PointsToNextPhase, prec))
	}
	if t := d.Trend; t != nil {
		fmt.Fprintf(&b, "- **Trend:** %s (%s since %s)\n", t.Direction, format.Signed(t.Delta, 2), t.PreviousAt.UTC().Format(time.RFC3339))
	}

	b.WriteString("\n## Categories\n\n")
	tb := format.NewTable(format.Markdown)
	tb.Header("Category", "Score", "Weight", "Weighted", "Data")
	for _, c := range d.Ordered() {
		tb.Row(c.ID, format.Score(c.Score, prec), format.Score(c.Weight, 0), format.Score(c.WeightedScore, prec), dataMark(c))
	}
	tb.Footer("Total", "", "", format.Score(d.TotalScore, prec), "")
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
	)
	b.WriteString(tb.String())
	b.WriteString("\n")

	if insufficient := d.InsufficientCategories(); len(insufficient) > 0 {
		fmt.Fprintf(&b, "\n> Insufficient data for: %s\n", strings.Join(insufficient, ", "))
	}

	if len(d.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		rt := format.NewTable(format.Markdown)
		rt.Header("Severity", "Check", "Category", "Gain", "Action")
		for _, r := range d.Recommendations {
			rt.Row(string(r.Severity), r.Check, r.Category, "+"+format.Score(r.Gain, 2), r.Message)
		}
		b.WriteString(rt.String())
		b.WriteString("\n")
	}

	if verbose {
		b.WriteString("\n## Score Details\n")
		for _, c := range d.Ordered() {
			fmt.Fprintf(&b, "\n### %s\n\n", c.ID)
			if c.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", c.Description)
			}
			if len(c.Checks) == 0 {
				b.WriteString("No checks collected.\n")
				continue
			}
			ct := format.NewTable(format.Markdown)
			ct.Header("Check", "Value", "Detail")
			for _, chk := range c.Checks {
				ct.Row(chk.ID, checkValue(chk), checkDetail(chk))
			}
			b.WriteString(ct.String())
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func revision(branch, commit string) string {
	if len(commit) > 12 {
		commit = commit[:12]
	}
	switch {
	case branch == "":
		return commit
	case commit == "":
		return branch
	default:
		return branch + " @ " + commit
	}
}

func dataMark(c score.Category) string {
	if c.InsufficientData {
		return "insufficient"
	}
	return "ok"
}

func checkValue(c score.Check) string {
	if !c.Available {
		return "n/a"
	}
	if c.Kind == score.KindBool {
		return format.BoolMark(c.Passed())
	}
	return format.Score(c.Value, 0)
}

func checkDetail(c score.Check) string {
	if !c.Available {
		return "unavailable: " + c.Error
	}
	return c.Description
}
