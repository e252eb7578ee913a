// Package collect runs probes against a repository and groups the resulting
// checks by category.
//
// Probes run concurrently up to a limit. Every probe gets its own deadline
// and a failing, panicking or slow probe yields an unavailable check rather
// than an error: collection itself only fails when the context is cancelled.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/logging"
	"github.com/silver2dream/repo-readiness/internal/probe"
	"github.com/silver2dream/repo-readiness/internal/score"
)

// Defaults for Options.
const (
	DefaultParallel = 4
	DefaultTimeout  = 10 * time.Second
)

// Options tunes a Collector.
type Options struct {
	Parallel int
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Collector runs probes from a registry.
type Collector struct {
	registry *probe.Registry
	parallel int
	timeout  time.Duration
	log      *slog.Logger
}

// New creates a Collector. Zero options fall back to the defaults.
func New(reg *probe.Registry, opts Options) *Collector {
	c := &Collector{
		registry: reg,
		parallel: opts.Parallel,
		timeout:  opts.Timeout,
		log:      opts.Logger,
	}
	if c.parallel < 1 {
		c.parallel = DefaultParallel
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.log == nil {
		c.log = logging.New("collect")
	}
	return c
}

// Result is the outcome of one collection.
type Result struct {
	// Signals maps category id to its checks in configured order.
	Signals map[string][]score.Check
	// Failures lists the probes whose signal was unavailable.
	Failures []*rerr.SignalError
	Elapsed  time.Duration
}

type job struct {
	category string
	check    string
}

// Collect runs the checks configured for each category against target.
// It returns only after every probe finished or timed out.
func (c *Collector) Collect(ctx context.Context, target *probe.Target, categories []score.CategorySpec) (*Result, error) {
	start := time.Now()

	var jobs []job
	for _, cat := range categories {
		for _, id := range cat.Checks {
			jobs = append(jobs, job{category: cat.ID, check: id})
		}
	}

	checks := make([]score.Check, len(jobs))
	failures := make([]*rerr.SignalError, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallel)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			check, err := c.runOne(gCtx, target, j.check)
			if err != nil {
				failures[i] = rerr.NewSignalError(j.check, err)
				check = score.Unavailable(j.check, err)
				c.log.Warn("signal unavailable", "check", j.check, "category", j.category, "error", err)
			} else {
				c.log.Debug("probe finished", "check", j.check, "value", check.Value)
			}
			checks[i] = check
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Signals: make(map[string][]score.Check, len(categories)),
		Elapsed: time.Since(start),
	}
	for _, cat := range categories {
		res.Signals[cat.ID] = make([]score.Check, 0, len(cat.Checks))
	}
	for i, j := range jobs {
		res.Signals[j.category] = append(res.Signals[j.category], checks[i])
		if failures[i] != nil {
			res.Failures = append(res.Failures, failures[i])
		}
	}

	c.log.Debug("collection finished", "checks", len(jobs), "unavailable", len(res.Failures), "elapsed", res.Elapsed)
	return res, nil
}

// ErrTimeout is recorded when a probe exceeds its deadline.
var ErrTimeout = errors.New("probe timed out")

type outcome struct {
	finding probe.Finding
	err     error
}

// runOne runs a single probe under its own deadline. The probe runs in its
// own goroutine so that a probe ignoring its context cannot stall the run.
func (c *Collector) runOne(ctx context.Context, target *probe.Target, id string) (score.Check, error) {
	p, ok := c.registry.Get(id)
	if !ok {
		return score.Check{}, fmt.Errorf("unknown check %q", id)
	}

	pCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("probe panicked: %v", r)}
			}
		}()
		f, err := p.Run(pCtx, target)
		done <- outcome{finding: f, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return score.Check{}, o.err
		}
		return p.Check(o.finding), nil
	case <-pCtx.Done():
		if ctx.Err() != nil {
			return score.Check{}, ctx.Err()
		}
		return score.Check{}, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
}
