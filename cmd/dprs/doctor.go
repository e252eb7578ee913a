package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silver2dream/repo-readiness/internal/doctor"
	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/probe"
)

func newDoctorCmd(g *globals) *cobra.Command {
	var configPath, output, historyDB string
	cmd := &cobra.Command{
		Use:   "doctor [path]",
		Short: "Check that git, configuration and output locations are usable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := doctor.New(".")
			if len(args) == 1 {
				d.Root = args[0]
			}
			d.ConfigPath = configPath
			d.EnvConfig = g.env.Config
			d.OutputDir = g.env.Output
			if cmd.Flags().Changed("output") {
				d.OutputDir = output
			}
			d.HistoryDB = g.env.HistoryDB
			if cmd.Flags().Changed("history-db") {
				d.HistoryDB = historyDB
			}
			d.Known = probe.Builtin().Known

			p := g.printer(cmd.OutOrStdout())
			p.Info("DPRS Health Check")
			p.Info("=================")
			p.Info("")

			results := d.RunAll(cmd.Context())
			for _, r := range results {
				msg := fmt.Sprintf("%s: %s", r.Name, r.Message)
				switch r.Status {
				case doctor.StatusOK:
					p.Success(msg)
				case doctor.StatusWarning:
					p.Warning(msg)
				default:
					p.Error(msg)
				}
			}

			warnings, errs := doctor.Counts(results)
			p.Info("")
			if errs > 0 {
				return rerr.NewGeneralError(fmt.Sprintf("%d check(s) failed, %d warning(s)", errs, warnings))
			}
			if warnings > 0 {
				p.Info(fmt.Sprintf("Found %d warning(s)", warnings))
				return nil
			}
			p.Success("All checks passed!")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "configuration file (env DPRS_CONFIG)")
	f.StringVarP(&output, "output", "o", "", "output directory to check (env DPRS_OUTPUT)")
	f.StringVar(&historyDB, "history-db", "", "history database to check (env DPRS_HISTORY_DB)")
	return cmd
}
