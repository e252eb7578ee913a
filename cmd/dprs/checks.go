package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/silver2dream/repo-readiness/internal/format"
	"github.com/silver2dream/repo-readiness/internal/probe"
)

func newChecksCmd(g *globals) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List the probe catalog and the configured categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := probe.Builtin()
			_, _, model, err := g.loadModel(configPath, ".", reg.Known)
			if err != nil {
				return err
			}

			configured := make(map[string]string)
			for _, c := range model.Categories() {
				for _, id := range c.Checks {
					configured[id] = c.ID
				}
			}

			p := g.printer(cmd.OutOrStdout())
			catalog := format.NewTable(format.ASCII)
			catalog.Header("Check", "Kind", "Scored in", "Description")
			for _, pr := range reg.All() {
				cat := configured[pr.ID]
				if cat == "" {
					cat = "-"
				}
				catalog.Row(pr.ID, string(pr.Kind), cat, pr.Description)
			}
			p.Info(catalog.String())
			p.Info("")

			cats := format.NewTable(format.ASCII)
			cats.Header("Category", "Weight", "Checks")
			for _, c := range model.Categories() {
				cats.Row(c.ID, format.Score(c.Weight, 0), strings.Join(c.Checks, ", "))
			}
			cats.Columns(
				format.ColumnConfig{Number: 2, Align: format.AlignRight},
				format.ColumnConfig{Number: 3, MaxWidth: 60},
			)
			p.Info(cats.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "configuration file (env DPRS_CONFIG)")
	return cmd
}
