package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/silver2dream/repo-readiness/internal/config"
	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/format"
	"github.com/silver2dream/repo-readiness/internal/readiness"
	"github.com/silver2dream/repo-readiness/internal/report"
)

type scoreOptions struct {
	output       string
	verbose      bool
	configPath   string
	jsonOut      bool
	minScore     float64
	strict       bool
	historyDB    string
	parallel     int
	probeTimeout time.Duration
}

func newScoreCmd(g *globals) *cobra.Command {
	o := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score [path]",
		Short: "Score a repository and write dprs.json and dprs.md",
		Long: "Score inspects the repository at path (default: current directory),\n" +
			"writes dprs.json and dprs.md to the output directory and prints a summary.\n\n" +
			"Exit codes: 0 ok, 1 error, 2 configuration error, 3 output error,\n" +
			"4 score below --min-score, 5 insufficient data with --strict.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, g, o, args)
		},
	}

	o.addFlags(cmd.Flags())
	return cmd
}

func (o *scoreOptions) addFlags(f *pflag.FlagSet) {
	f.StringVarP(&o.output, "output", "o", config.DefaultOutputDir, "output directory for artifacts (env DPRS_OUTPUT)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "show per-check score details (env DPRS_VERBOSE)")
	f.StringVar(&o.configPath, "config", "", "configuration file (env DPRS_CONFIG, default <path>/.dprs.yaml)")
	f.BoolVar(&o.jsonOut, "json", false, "print the JSON report to stdout instead of the summary")
	f.Float64Var(&o.minScore, "min-score", 0, "exit 4 when the total score is below this value (env DPRS_MIN_SCORE)")
	f.BoolVar(&o.strict, "strict", false, "exit 5 when any category has insufficient data")
	f.StringVar(&o.historyDB, "history-db", "", "SQLite database recording runs for trends (env DPRS_HISTORY_DB)")
	f.IntVar(&o.parallel, "parallel", 4, "number of probes run concurrently (env DPRS_PARALLEL)")
	f.DurationVar(&o.probeTimeout, "probe-timeout", 10*time.Second, "deadline for each probe (env DPRS_PROBE_TIMEOUT)")
}

// applyEnv fills every flag the user did not set from the environment.
func (o *scoreOptions) applyEnv(cmd *cobra.Command, e config.Env) {
	f := cmd.Flags()
	if !f.Changed("output") {
		o.output = e.Output
	}
	if !f.Changed("verbose") {
		o.verbose = e.Verbose
	}
	if !f.Changed("min-score") {
		o.minScore = e.MinScore
	}
	if !f.Changed("history-db") {
		o.historyDB = e.HistoryDB
	}
	if !f.Changed("parallel") {
		o.parallel = e.Parallel
	}
	if !f.Changed("probe-timeout") {
		o.probeTimeout = e.ProbeTimeout
	}
}

func (o *scoreOptions) validate() error {
	if o.output == "" {
		return rerr.NewConfigError("output directory must not be empty")
	}
	if o.minScore < 0 || o.minScore > 100 {
		return rerr.NewConfigErrorf("--min-score must be within [0,100], got %g", o.minScore)
	}
	if o.parallel < 1 {
		return rerr.NewConfigErrorf("--parallel must be at least 1, got %d", o.parallel)
	}
	if o.probeTimeout <= 0 {
		return rerr.NewConfigErrorf("--probe-timeout must be positive, got %s", o.probeTimeout)
	}
	return nil
}

func runScore(cmd *cobra.Command, g *globals, o *scoreOptions, args []string) error {
	o.applyEnv(cmd, g.env)
	if err := o.validate(); err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	out := g.printer(cmd.OutOrStdout())
	// With --json stdout carries only the report.
	progress := out
	if o.jsonOut {
		progress = g.printer(cmd.ErrOrStderr())
	}

	if o.verbose {
		progress.Info(fmt.Sprintf("Calculating DevPilot Readiness Score for %s ...", root))
	}

	res, err := readiness.Run(cmd.Context(), readiness.Options{
		Root:          root,
		ConfigPath:    o.configPath,
		EnvConfigPath: g.env.Config,
		Parallel:      o.parallel,
		ProbeTimeout:  o.probeTimeout,
		HistoryDB:     o.historyDB,
	})
	if err != nil {
		return err
	}
	doc := res.Document

	if o.verbose {
		source := res.ConfigSource
		if res.ConfigPath != "" {
			source += " (" + res.ConfigPath + ")"
		}
		progress.Info(fmt.Sprintf("Configuration: %s", source))
		progress.Info(fmt.Sprintf("Collected signals in %s", format.Duration(res.Elapsed)))
		for _, f := range res.Failures {
			progress.Warning(f.Error())
		}
	}
	if res.HistoryErr != nil {
		progress.Warning(fmt.Sprintf("run history not updated: %v", res.HistoryErr))
	}

	written, emitErr := report.Emit(o.output, doc, o.verbose)

	if o.jsonOut {
		if err := doc.WriteJSON(cmd.OutOrStdout()); err != nil {
			return rerr.NewOutputErrorWithCause("write JSON to stdout", err)
		}
	} else {
		report.PrintSummary(out, doc, o.verbose)
		out.Info("")
	}
	for _, path := range written {
		progress.Success("Wrote " + path)
	}
	if emitErr != nil {
		return emitErr
	}

	return readiness.Gate(doc.Report, o.minScore, o.strict)
}
