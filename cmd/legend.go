package cmd

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iofs"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/status"
	"github.com/spf13/cobra"
)

// getLegendCmd returns the legend command.
func getLegendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legend",
		Short: "Explain status tokens printed by tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), status.Legend())
			return nil
		},
	}
}

// getConfigCmd returns the config command.
func getConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after config file, environment variables
and .env files are applied. The password is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := iofs.ConfigToYAML(cfg)
			if err != nil {
				gn.PrintErrorMessage(err)
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", config.ConfigFilePath(cfg.HomeDir, cfg.Mode))
			fmt.Fprint(out, s)
			return nil
		},
	}
}
