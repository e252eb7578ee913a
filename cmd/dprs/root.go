package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/silver2dream/repo-readiness/internal/buildinfo"
	"github.com/silver2dream/repo-readiness/internal/config"
	"github.com/silver2dream/repo-readiness/internal/console"
	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/logging"
	"github.com/silver2dream/repo-readiness/internal/score"
)

// globals holds settings shared by every subcommand.
type globals struct {
	env       config.Env
	logLevel  string
	logFormat string
	noColor   bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{}
	o := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "dprs [path]",
		Short: "DevPilot Readiness Score for software repositories",
		Long: "dprs computes the DevPilot Readiness Score of a repository: a weighted\n" +
			"0-100 score over tests, security, documentation and developer experience,\n" +
			"mapped to a readiness phase (INCEPTION, POC, MVP, BETA, SCALE).\n\n" +
			"Without a subcommand dprs scores path like \"dprs score\" and accepts its flags.",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd, stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, g, o, args)
		},
	}
	o.addFlags(cmd.Flags())
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return rerr.NewConfigErrorWithCause("invalid arguments", err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (env DPRS_LOG_LEVEL)")
	pf.StringVar(&g.logFormat, "log-format", "", "log format: text or json (env DPRS_LOG_FORMAT)")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored output (env NO_COLOR)")

	cmd.AddCommand(
		newScoreCmd(g),
		newPhasesCmd(g),
		newChecksCmd(g),
		newConfigCmd(g),
		newHistoryCmd(g),
		newDoctorCmd(g),
		newVersionCmd(),
	)
	return cmd
}

// init reads the environment and configures logging. Flags override env.
func (g *globals) init(cmd *cobra.Command, stderr io.Writer) error {
	e, err := config.LoadEnv()
	if err != nil {
		return err
	}
	g.env = e

	level := e.LogLevel
	if cmd.Flags().Changed("log-level") {
		level = g.logLevel
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return rerr.NewConfigErrorWithCause("invalid log level", err)
	}

	format := e.LogFormat
	if cmd.Flags().Changed("log-format") {
		format = g.logFormat
	}
	if !logging.ValidFormat(format) {
		return rerr.NewConfigErrorf("invalid log format %q: want text or json", format)
	}

	logging.Init(lvl, format, stderr)
	return nil
}

func (g *globals) printer(w io.Writer) *console.Printer {
	return console.New(w, g.noColor || g.env.ColorDisabled())
}

// loadModel resolves the configuration the way a score run would for
// repoDir and builds its model.
func (g *globals) loadModel(configPath, repoDir string, known func(string) bool) (*config.Config, string, *score.Model, error) {
	cfg, source, err := config.Resolve(configPath, g.env.Config, repoDir)
	if err != nil {
		return nil, "", nil, err
	}
	model, err := cfg.Model(known)
	if err != nil {
		return nil, "", nil, err
	}
	return cfg, source, model, nil
}
