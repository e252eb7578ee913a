// Package readiness wires one scoring run end to end: configuration,
// signal collection, scoring, recommendations and run history.
package readiness

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/silver2dream/repo-readiness/internal/advise"
	"github.com/silver2dream/repo-readiness/internal/collect"
	"github.com/silver2dream/repo-readiness/internal/config"
	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/git"
	"github.com/silver2dream/repo-readiness/internal/history"
	"github.com/silver2dream/repo-readiness/internal/logging"
	"github.com/silver2dream/repo-readiness/internal/probe"
	"github.com/silver2dream/repo-readiness/internal/report"
	"github.com/silver2dream/repo-readiness/internal/scan"
	"github.com/silver2dream/repo-readiness/internal/score"
)

// Options configures a run.
type Options struct {
	// Root is the repository to score.
	Root string
	// ConfigPath and EnvConfigPath feed config.Resolve.
	ConfigPath    string
	EnvConfigPath string

	Parallel     int
	ProbeTimeout time.Duration

	// HistoryDB enables run history when non-empty.
	HistoryDB string

	// Registry defaults to probe.Builtin().
	Registry *probe.Registry
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Result is the outcome of a run.
type Result struct {
	Document     *report.Document
	ConfigSource string
	ConfigPath   string
	Failures     []*rerr.SignalError
	Elapsed      time.Duration
	// HistoryErr is set when the report was computed but history could not
	// be read or written.
	HistoryErr error
}

// Run scores the repository at opts.Root. Configuration problems are
// returned before any probe runs.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logging.New("readiness")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	reg := opts.Registry
	if reg == nil {
		reg = probe.Builtin()
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, rerr.NewConfigErrorWithCause("resolve repository path", err)
	}
	if !scan.DirExists(root) {
		return nil, rerr.NewConfigErrorf("repository path %s is not a directory", root)
	}

	cfg, source, err := config.Resolve(opts.ConfigPath, opts.EnvConfigPath, root)
	if err != nil {
		return nil, err
	}
	model, err := cfg.Model(reg.Known)
	if err != nil {
		return nil, err
	}
	log.Debug("configuration loaded", "source", source, "path", cfg.Path, "categories", len(model.Categories()))

	id := git.Identify(ctx, root)
	target, err := probe.NewTarget(ctx, root)
	if err != nil {
		return nil, rerr.NewGeneralErrorWithCause("inspect repository", err)
	}
	if target.Files.Truncated {
		log.Warn("file inventory truncated", "limit", scan.MaxFiles)
	}

	collector := collect.New(reg, collect.Options{
		Parallel: opts.Parallel,
		Timeout:  opts.ProbeTimeout,
		Logger:   log,
	})
	collected, err := collector.Collect(ctx, target, model.Categories())
	if err != nil {
		return nil, rerr.NewGeneralErrorWithCause("collect signals", err)
	}

	r := model.Score(score.Input{
		Repository: id.ID,
		Timestamp:  now().UTC(),
		Signals:    collected.Signals,
	})
	recs := advise.Recommend(r, func(check string) string {
		if p, ok := reg.Get(check); ok {
			return p.Remedy
		}
		return ""
	})

	res := &Result{
		ConfigSource: source,
		ConfigPath:   cfg.Path,
		Failures:     collected.Failures,
		Elapsed:      collected.Elapsed,
	}

	var trend *history.Trend
	if opts.HistoryDB != "" {
		trend, res.HistoryErr = recordHistory(ctx, opts.HistoryDB, r, id)
		if res.HistoryErr != nil {
			log.Warn("run history unavailable", "db", opts.HistoryDB, "error", res.HistoryErr)
		}
	}

	res.Document = report.New(r, id, recs, trend)
	log.Info("repository scored", "repository", r.Repository, "total", r.TotalScore, "phase", r.PhaseReadiness)
	return res, nil
}

// recordHistory compares r with the previous run and then records it.
func recordHistory(ctx context.Context, path string, r *score.Report, id git.Identity) (*history.Trend, error) {
	store, err := history.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	var trend *history.Trend
	t, err := store.Compare(ctx, r)
	switch {
	case err == nil:
		trend = &t
	case !errors.Is(err, history.ErrNoHistory):
		return nil, err
	}

	if _, err := store.Record(ctx, r, id.Branch, id.Commit); err != nil {
		return trend, err
	}
	return trend, nil
}

// Gate applies the CI gates to a finished run: a total below minScore, then
// insufficient data when strict. A zero minScore disables the first gate.
func Gate(r *score.Report, minScore float64, strict bool) error {
	if minScore > 0 && r.TotalScore < minScore {
		return rerr.NewBelowMinimumError(r.TotalScore, minScore)
	}
	if strict {
		if ids := r.InsufficientCategories(); len(ids) > 0 {
			return rerr.NewInsufficientDataError(ids)
		}
	}
	return nil
}
