// Package report renders a scored run as dprs.json, dprs.md and a console
// summary. Every form is derived from the same Document; nothing is
// recomputed while rendering.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/silver2dream/repo-readiness/internal/advise"
	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/git"
	"github.com/silver2dream/repo-readiness/internal/history"
	"github.com/silver2dream/repo-readiness/internal/score"
	"github.com/silver2dream/repo-readiness/internal/util"
)

// Artifact file names.
const (
	JSONFile     = "dprs.json"
	MarkdownFile = "dprs.md"
)

// Document is everything emitted for one run. The embedded Report carries
// the wire fields of dprs.json.
type Document struct {
	*score.Report

	Branch          string                  `json:"branch,omitempty"`
	Commit          string                  `json:"commit,omitempty"`
	Recommendations []advise.Recommendation `json:"recommendations"`
	Summary         advise.Summary          `json:"recommendation_summary"`
	Trend           *history.Trend          `json:"trend,omitempty"`
}

// New assembles a Document. trend may be nil.
func New(r *score.Report, id git.Identity, recs []advise.Recommendation, trend *history.Trend) *Document {
	if recs == nil {
		recs = []advise.Recommendation{}
	}
	return &Document{
		Report:          r,
		Branch:          id.Branch,
		Commit:          id.Commit,
		Recommendations: recs,
		Summary:         advise.CalculateSummary(recs),
		Trend:           trend,
	}
}

// WriteJSON writes the indented JSON form of d.
func (d *Document) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Emit writes dprs.json and dprs.md into dir and returns their paths. A
// write failure is an output error; d is unchanged and can still be
// printed.
func Emit(dir string, d *Document, verbose bool) ([]string, error) {
	var js bytes.Buffer
	if err := d.WriteJSON(&js); err != nil {
		return nil, rerr.NewOutputErrorWithCause("encode "+JSONFile, err)
	}
	var md bytes.Buffer
	if err := d.WriteMarkdown(&md, verbose); err != nil {
		return nil, rerr.NewOutputErrorWithCause("render "+MarkdownFile, err)
	}

	var written []string
	for _, a := range []struct {
		name string
		data []byte
	}{
		{JSONFile, js.Bytes()},
		{MarkdownFile, md.Bytes()},
	} {
		path := filepath.Join(dir, a.name)
		if err := util.WriteFileAtomic(path, a.data, 0o644); err != nil {
			return written, rerr.NewOutputErrorWithCause(fmt.Sprintf("write %s", path), err)
		}
		written = append(written, path)
	}
	return written, nil
}
