// Package history records scoring runs in a SQLite database so that a run
// can be compared against the previous one for the same repository.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/silver2dream/repo-readiness/internal/score"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Run is one recorded scoring run.
type Run struct {
	ID         int64              `json:"id"`
	Repository string             `json:"repository"`
	Branch     string             `json:"branch,omitempty"`
	Commit     string             `json:"commit,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	TotalScore float64            `json:"total_score"`
	Phase      string             `json:"phase"`
	Categories map[string]float64 `json:"categories,omitempty"`
}

// Store is a run history backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent directories
// as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: create dir: %w", err)
		}
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			repository  TEXT    NOT NULL,
			branch      TEXT    NOT NULL DEFAULT '',
			commit_sha  TEXT    NOT NULL DEFAULT '',
			created_at  TEXT    NOT NULL,
			total_score REAL    NOT NULL,
			phase       TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_repository ON runs(repository, id);

		CREATE TABLE IF NOT EXISTS category_scores (
			run_id         INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			category       TEXT    NOT NULL,
			score          REAL    NOT NULL,
			weight         REAL    NOT NULL,
			weighted_score REAL    NOT NULL,
			insufficient   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, category)
		);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Record stores a report and returns the new run.
func (s *Store) Record(ctx context.Context, r *score.Report, branch, commit string) (Run, error) {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ts = ts.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (repository, branch, commit_sha, created_at, total_score, phase)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Repository, branch, commit, ts.Format(time.RFC3339Nano), r.TotalScore, r.PhaseReadiness)
	if err != nil {
		return Run{}, fmt.Errorf("history: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("history: run id: %w", err)
	}

	run := Run{
		ID:         id,
		Repository: r.Repository,
		Branch:     branch,
		Commit:     commit,
		Timestamp:  ts,
		TotalScore: r.TotalScore,
		Phase:      r.PhaseReadiness,
		Categories: make(map[string]float64, len(r.Categories)),
	}
	for _, c := range r.Ordered() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO category_scores (run_id, category, score, weight, weighted_score, insufficient)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, c.ID, c.Score, c.Weight, c.WeightedScore, c.InsufficientData); err != nil {
			return Run{}, fmt.Errorf("history: insert category %s: %w", c.ID, err)
		}
		run.Categories[c.ID] = c.Score
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("history: commit: %w", err)
	}
	return run, nil
}

// List returns up to limit runs for repository, newest first. A limit of
// zero or less returns every run.
func (s *Store) List(ctx context.Context, repository string, limit int) ([]Run, error) {
	query := `SELECT id, repository, branch, commit_sha, created_at, total_score, phase
		FROM runs WHERE repository = ? ORDER BY id DESC`
	args := []any{repository}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		cats, err := s.categories(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Categories = cats
	}
	return runs, nil
}

// Latest returns the most recent run for repository. ok is false when the
// repository has no recorded runs.
func (s *Store) Latest(ctx context.Context, repository string) (run Run, ok bool, err error) {
	runs, err := s.List(ctx, repository, 1)
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	return runs[0], true, nil
}

// Repositories lists every repository with at least one run.
func (s *Store) Repositories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT repository FROM runs ORDER BY repository`)
	if err != nil {
		return nil, fmt.Errorf("history: list repositories: %w", err)
	}
	defer rows.Close()

	var repos []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

func (s *Store) categories(ctx context.Context, runID int64) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, score FROM category_scores WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: list categories: %w", err)
	}
	defer rows.Close()

	cats := make(map[string]float64)
	for rows.Next() {
		var (
			id string
			v  float64
		)
		if err := rows.Scan(&id, &v); err != nil {
			return nil, err
		}
		cats[id] = v
	}
	return cats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run Run
		ts  string
	)
	if err := row.Scan(&run.ID, &run.Repository, &run.Branch, &run.Commit, &ts, &run.TotalScore, &run.Phase); err != nil {
		return Run{}, fmt.Errorf("history: scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Run{}, fmt.Errorf("history: run %d timestamp: %w", run.ID, err)
	}
	run.Timestamp = t
	return run, nil
}

// ErrNoHistory is returned by Compare when no earlier run exists.
var ErrNoHistory = errors.New("no previous run")
