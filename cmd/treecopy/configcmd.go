package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bamsammich/treecopy/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.Path())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Load again so a broken file is reported, not just logged.
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return config.Encode(cmd.OutOrStdout(), cfg)
		},
	})

	return cmd
}
