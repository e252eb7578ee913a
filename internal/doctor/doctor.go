// Package doctor checks that the environment can produce a complete score:
// git is available, the configuration is valid and the output locations are
// writable.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/silver2dream/repo-readiness/internal/config"
	"github.com/silver2dream/repo-readiness/internal/git"
	"github.com/silver2dream/repo-readiness/internal/history"
	"github.com/silver2dream/repo-readiness/internal/scan"
)

// Check statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// CheckResult represents the result of a single check
type CheckResult struct {
	Name    string
	Status  string
	Message string
}

// Doctor inspects the environment of one score run.
type Doctor struct {
	Root       string
	ConfigPath string
	EnvConfig  string
	OutputDir  string
	HistoryDB  string

	// Known validates configured check ids. Nil skips that step.
	Known func(id string) bool

	lookPath func(string) (string, error)
}

// New creates a Doctor for the repository at root.
func New(root string) *Doctor {
	if root == "" {
		root = "."
	}
	return &Doctor{
		Root:      root,
		OutputDir: config.DefaultOutputDir,
		lookPath:  exec.LookPath,
	}
}

// RunAll executes all checks.
func (d *Doctor) RunAll(ctx context.Context) []CheckResult {
	var results []CheckResult
	results = append(results, d.CheckRepository())
	results = append(results, d.CheckGit(ctx)...)
	results = append(results, d.CheckConfig())
	results = append(results, d.CheckOutputDir())
	if d.HistoryDB != "" {
		results = append(results, d.CheckHistory(ctx))
	}
	return results
}

// CheckRepository verifies the target directory exists.
func (d *Doctor) CheckRepository() CheckResult {
	r := CheckResult{Name: "repository"}
	if !scan.DirExists(d.Root) {
		r.Status = StatusError
		r.Message = fmt.Sprintf("%s is not a directory", d.Root)
		return r
	}
	r.Status = StatusOK
	r.Message = fmt.Sprintf("%s (%s)", d.Root, scan.DetectLanguage(d.Root))
	return r
}

// CheckGit reports whether git-based probes can run.
func (d *Doctor) CheckGit(ctx context.Context) []CheckResult {
	bin := CheckResult{Name: "git"}
	path, err := d.lookPath("git")
	if err != nil {
		bin.Status = StatusWarning
		bin.Message = "git not found in PATH; git-based checks will be unavailable"
		return []CheckResult{bin}
	}
	bin.Status = StatusOK
	bin.Message = path

	repo := CheckResult{Name: "git repository"}
	if !git.IsRepository(ctx, d.Root) {
		repo.Status = StatusWarning
		repo.Message = "not a git work tree; git-based checks will be unavailable"
		return []CheckResult{bin, repo}
	}
	id := git.Identify(ctx, d.Root)
	repo.Status = StatusOK
	repo.Message = id.ID
	if id.Remote == "" {
		repo.Status = StatusWarning
		repo.Message = id.ID + " (no origin remote; history is keyed by directory name)"
	}
	return []CheckResult{bin, repo}
}

// CheckConfig resolves and validates the configuration.
func (d *Doctor) CheckConfig() CheckResult {
	r := CheckResult{Name: "config"}
	cfg, source, err := config.Resolve(d.ConfigPath, d.EnvConfig, d.Root)
	if err != nil {
		r.Status = StatusError
		r.Message = err.Error()
		return r
	}
	if _, err := cfg.Model(d.Known); err != nil {
		r.Status = StatusError
		r.Message = err.Error()
		return r
	}
	r.Status = StatusOK
	r.Message = source
	if cfg.Path != "" {
		r.Message += " " + cfg.Path
	}
	return r
}

// CheckOutputDir verifies artifacts can be written.
func (d *Doctor) CheckOutputDir() CheckResult {
	r := CheckResult{Name: "output"}
	if err := writable(d.OutputDir); err != nil {
		r.Status = StatusError
		r.Message = fmt.Sprintf("%s: %v", d.OutputDir, err)
		return r
	}
	r.Status = StatusOK
	r.Message = d.OutputDir
	return r
}

// CheckHistory verifies the history database opens.
func (d *Doctor) CheckHistory(ctx context.Context) CheckResult {
	r := CheckResult{Name: "history"}
	store, err := history.Open(ctx, d.HistoryDB)
	if err != nil {
		r.Status = StatusError
		r.Message = err.Error()
		return r
	}
	defer store.Close()

	repos, err := store.Repositories(ctx)
	if err != nil {
		r.Status = StatusError
		r.Message = err.Error()
		return r
	}
	r.Status = StatusOK
	r.Message = fmt.Sprintf("%s (%d repositories)", d.HistoryDB, len(repos))
	return r
}

// writable creates dir if needed and probes it with a temp file. A missing
// dir is created the same way a score run would create it.
func writable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".dprs-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// Counts returns the number of warnings and errors in results.
func Counts(results []CheckResult) (warnings, errors int) {
	for _, r := range results {
		switch r.Status {
		case StatusWarning:
			warnings++
		case StatusError:
			errors++
		}
	}
	return warnings, errors
}
