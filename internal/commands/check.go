package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbo2taxer/dbo2taxer/internal/logger"
	"github.com/dbo2taxer/dbo2taxer/internal/taxer"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <taxer.csv>",
		Short: "Validate a Taxer CSV file",
		Long: `Read a Taxer CSV file and validate every record the same way the
converter does. Useful before uploading a hand-edited file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			records, err := taxer.ReadRecords(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			log := logger.FromContext(cmd.Context())
			log.Debug().Str("file", args[0]).Int("records", len(records)).Msg("file valid")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records OK\n", args[0], len(records))
			return err
		},
	}
}
