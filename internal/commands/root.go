package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dbo2taxer/dbo2taxer/internal/buildinfo"
	"github.com/dbo2taxer/dbo2taxer/internal/config"
	"github.com/dbo2taxer/dbo2taxer/internal/logger"
)

// env is what the commands read from outside their flags. The zero value
// means the process environment and the user config directory.
type env struct {
	environ   map[string]string
	configDir string
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func (g *globalFlags) sources(e env) config.Sources {
	return config.Sources{Path: g.configPath, Dir: e.configDir, Environ: e.environ}
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(env{})
}

func newRootCommand(e env) *cobra.Command {
	var global globalFlags

	rootCmd := &cobra.Command{
		Use:   "dbo2taxer",
		Short: "Convert DBO bank statements into Taxer CSV",
		Long: `Convert a DBO bank statement export into a CSV file that can be imported
into Taxer. Credit-based and coverage-based exports are supported; records
can be limited to a year and quarter.`,
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logger.ParseLevel(global.logLevel)
			if err != nil {
				return err
			}
			var log zerolog.Logger
			switch global.logFormat {
			case "console":
				log = logger.New(cmd.ErrOrStderr(), level)
			case "json":
				log = logger.NewWithWriter(cmd.ErrOrStderr()).Level(level)
			default:
				return fmt.Errorf("invalid log format %q: expected console or json", global.logFormat)
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&global.configPath, "config", "c", "", "config file (default: user config dir, or $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&global.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&global.logFormat, "log-format", "console", "log format: console, json")

	addConvertFlags(rootCmd, &global, e)
	rootCmd.AddCommand(newConfigCommand(&global, e))
	rootCmd.AddCommand(newCheckCommand())

	return rootCmd
}
