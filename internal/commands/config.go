package commands

import (
	"github.com/spf13/cobra"

	"github.com/dbo2taxer/dbo2taxer/internal/config"
)

func newConfigCommand(global *globalFlags, e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, the config file and
` + config.EnvPrefix + `* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(global.sources(e))
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	})

	return cmd
}
