package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silver2dream/repo-readiness/internal/config"
	rerr "github.com/silver2dream/repo-readiness/internal/errors"
	"github.com/silver2dream/repo-readiness/internal/probe"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate or print the scoring configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(g), newConfigShowCmd(g))
	return cmd
}

func newConfigValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a configuration file (default: the effective configuration)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg    *config.Config
				source string
				err    error
			)
			if len(args) == 1 {
				cfg, err = config.LoadConfig(args[0])
				source = args[0]
			} else {
				cfg, source, err = config.Resolve("", g.env.Config, ".")
				if cfg != nil && cfg.Path != "" {
					source = cfg.Path
				}
			}
			if err != nil {
				return err
			}

			p := g.printer(cmd.OutOrStdout())
			problems := append(cfg.Validate(), cfg.ValidateChecks(probe.Builtin().Known)...)
			if len(problems) > 0 {
				for _, v := range problems {
					p.Error(v.Error())
				}
				return rerr.NewConfigErrorf("%s: %d configuration problem(s)", source, len(problems))
			}
			p.Success(fmt.Sprintf("%s: configuration is valid", source))
			return nil
		},
	}
}

func newConfigShowCmd(g *globals) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, source, _, err := g.loadModel(configPath, ".", probe.Builtin().Known)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return rerr.NewOutputErrorWithCause("encode configuration", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# source: %s\n", source)
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "configuration file (env DPRS_CONFIG)")
	return cmd
}
