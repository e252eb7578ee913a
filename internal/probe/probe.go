// Package probe defines the catalog of repository probes. A probe inspects
// one aspect of a repository and yields a single check value; the collector
// decides which probes run and turns probe failures into unavailable checks.
package probe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/silver2dream/repo-readiness/internal/git"
	"github.com/silver2dream/repo-readiness/internal/scan"
	"github.com/silver2dream/repo-readiness/internal/score"
)

// ErrNoSignal is returned by a probe when the repository offers nothing it
// can measure, for example a test ratio with no source files.
var ErrNoSignal = errors.New("no signal")

// Target is the repository under inspection. It is read-only and shared by
// all probes of a run.
type Target struct {
	Root  string
	Files *scan.Inventory
	IsGit bool
}

// NewTarget scans root once and records whether it is a git work tree.
func NewTarget(ctx context.Context, root string) (*Target, error) {
	inv, err := scan.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return &Target{
		Root:  inv.Root,
		Files: inv,
		IsGit: git.IsRepository(ctx, inv.Root),
	}, nil
}

// Finding is the raw outcome of a probe.
type Finding struct {
	Value  float64
	Detail string
}

// Found returns 100 with yes when ok, else 0 with no.
func Found(ok bool, yes, no string) Finding {
	if ok {
		return Finding{Value: 100, Detail: yes}
	}
	return Finding{Value: 0, Detail: no}
}

// Func inspects a target.
type Func func(ctx context.Context, t *Target) (Finding, error)

// Probe is one catalog entry.
type Probe struct {
	ID          string
	Category    string
	Kind        score.Kind
	Description string
	// Remedy tells the user how to make the check pass.
	Remedy string
	Run    Func
}

// Check converts a finding into a normalized check.
func (p Probe) Check(f Finding) score.Check {
	if p.Kind == score.KindNumeric {
		return score.Numeric(p.ID, f.Value, f.Detail)
	}
	return score.Bool(p.ID, f.Value >= 100, f.Detail)
}

// Registry is an immutable set of probes keyed by id.
type Registry struct {
	probes map[string]Probe
	order  []string
}

// NewRegistry builds a registry. Ids must be unique and every probe needs a
// Run func.
func NewRegistry(probes ...Probe) (*Registry, error) {
	r := &Registry{probes: make(map[string]Probe, len(probes))}
	for _, p := range probes {
		if p.ID == "" {
			return nil, errors.New("probe id is required")
		}
		if p.Run == nil {
			return nil, fmt.Errorf("probe %s has no run func", p.ID)
		}
		if _, dup := r.probes[p.ID]; dup {
			return nil, fmt.Errorf("duplicate probe %s", p.ID)
		}
		r.probes[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r, nil
}

// Get returns the probe with id.
func (r *Registry) Get(id string) (Probe, bool) {
	p, ok := r.probes[id]
	return p, ok
}

// Known reports whether id is registered.
func (r *Registry) Known(id string) bool {
	_, ok := r.probes[id]
	return ok
}

// All returns the probes in registration order.
func (r *Registry) All() []Probe {
	out := make([]Probe, len(r.order))
	for i, id := range r.order {
		out[i] = r.probes[id]
	}
	return out
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}

// Builtin returns the built-in catalog.
func Builtin() *Registry {
	var all []Probe
	all = append(all, testProbes()...)
	all = append(all, securityProbes()...)
	all = append(all, documentationProbes()...)
	all = append(all, devExProbes()...)

	r, err := NewRegistry(all...)
	if err != nil {
		panic("probe: invalid builtin catalog: " + err.Error())
	}
	return r
}

// firstFile returns the first of names present in the inventory.
func firstFile(t *Target, names ...string) (string, bool) {
	return t.Files.First(names...)
}

// existsProbe is a boolean probe passing when any of names exists.
func existsProbe(names ...string) Func {
	return func(_ context.Context, t *Target) (Finding, error) {
		if f, ok := firstFile(t, names...); ok {
			return Finding{Value: 100, Detail: "found " + f}, nil
		}
		return Finding{Value: 0, Detail: "none of " + joinNames(names, 3) + " found"}, nil
	}
}

// globAny returns the first file matching any of the patterns.
func globAny(t *Target, patterns ...string) (string, bool) {
	for _, p := range patterns {
		if m := t.Files.Glob(p); len(m) > 0 {
			return m[0], true
		}
	}
	return "", false
}

func joinNames(names []string, limit int) string {
	if len(names) <= limit {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:limit], ", "), len(names)-limit)
}
