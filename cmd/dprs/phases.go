package main

import (
	"github.com/spf13/cobra"

	"github.com/silver2dream/repo-readiness/internal/format"
	"github.com/silver2dream/repo-readiness/internal/probe"
)

func newPhasesCmd(g *globals) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "phases",
		Short: "Print the phase threshold table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, model, err := g.loadModel(configPath, ".", probe.Builtin().Known)
			if err != nil {
				return err
			}

			tb := format.NewTable(format.ASCII)
			tb.Header("Phase", "Min score", "Description")
			for _, p := range model.Phases().Phases() {
				tb.Row(p.Name, p.Min, p.Description)
			}
			tb.Columns(format.ColumnConfig{Number: 2, Align: format.AlignRight})
			g.printer(cmd.OutOrStdout()).Info(tb.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "configuration file (env DPRS_CONFIG)")
	return cmd
}
