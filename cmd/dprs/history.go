package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/format"
	"github.com/silver2dream/repo-readiness/internal/git"
	"github.com/silver2dream/repo-readiness/internal/history"
)

type historyOptions struct {
	db      string
	repo    string
	limit   int
	jsonOut bool
}

func newHistoryCmd(g *globals) *cobra.Command {
	o := &historyOptions{}
	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recorded runs for a repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, g, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.db, "history-db", "", "SQLite history database (env DPRS_HISTORY_DB)")
	f.StringVar(&o.repo, "repo", "", "repository id (default: derived from path)")
	f.IntVar(&o.limit, "limit", 20, "maximum runs to show (0 = all)")
	f.BoolVar(&o.jsonOut, "json", false, "print runs as JSON")
	return cmd
}

func runHistory(cmd *cobra.Command, g *globals, o *historyOptions, args []string) error {
	if !cmd.Flags().Changed("history-db") {
		o.db = g.env.HistoryDB
	}
	if o.db == "" {
		return rerr.NewConfigError("no history database: set --history-db or DPRS_HISTORY_DB")
	}

	repo := o.repo
	if repo == "" {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		repo = git.Identify(cmd.Context(), path).ID
	}

	store, err := history.Open(cmd.Context(), o.db)
	if err != nil {
		return rerr.NewGeneralErrorWithCause("open history", err)
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), repo, o.limit)
	if err != nil {
		return rerr.NewGeneralErrorWithCause("read history", err)
	}

	out := cmd.OutOrStdout()
	if o.jsonOut {
		if runs == nil {
			runs = []history.Run{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	p := g.printer(out)
	if len(runs) == 0 {
		p.Info(fmt.Sprintf("No runs recorded for %s", repo))
		return nil
	}

	tb := format.NewTable(format.ASCII)
	tb.Header("Run", "Timestamp", "Total", "Phase", "Revision")
	for _, r := range runs {
		rev := strings.TrimSpace(r.Branch + " " + r.Commit[:min(12, len(r.Commit))])
		tb.Row(r.ID, r.Timestamp.Format("2006-01-02 15:04:05Z07:00"), r.TotalScore, r.Phase, rev)
	}
	tb.Columns(format.ColumnConfig{Number: 3, Align: format.AlignRight})
	p.Info(p.Bold(repo))
	p.Info(tb.String())
	return nil
}
