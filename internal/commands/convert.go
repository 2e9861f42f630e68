package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbo2taxer/dbo2taxer/internal/config"
	"github.com/dbo2taxer/dbo2taxer/internal/convert"
	"github.com/dbo2taxer/dbo2taxer/internal/dbo"
	"github.com/dbo2taxer/dbo2taxer/internal/filter"
	"github.com/dbo2taxer/dbo2taxer/internal/logger"
	"github.com/dbo2taxer/dbo2taxer/internal/taxer"
)

type convertFlags struct {
	input    string
	output   string
	quarter  string
	year     int
	format   string
	encoding string
}

// addConvertFlags makes the root command itself run a conversion.
func addConvertFlags(cmd *cobra.Command, global *globalFlags, e env) {
	var flags convertFlags

	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Resolve(global.sources(e))
		if err != nil {
			return err
		}
		cfg, err = applyOverrides(cmd, cfg, flags)
		if err != nil {
			return err
		}
		period, err := flags.dateFilter(cmd)
		if err != nil {
			return err
		}
		return runConvert(cmd, cfg, period, flags)
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "statement file (default: stdin)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Taxer CSV file (default: stdout)")
	cmd.Flags().StringVarP(&flags.quarter, "quarter", "q", "", "keep only records of this quarter (Q1-Q4)")
	cmd.Flags().IntVarP(&flags.year, "year", "y", 0, "keep only records of this year")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "statement format: auto, credit, coverage")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "statement encoding: auto, utf-8, windows-1251")
}

// applyOverrides puts explicitly set flags on top of the resolved config.
func applyOverrides(cmd *cobra.Command, cfg config.Config, flags convertFlags) (config.Config, error) {
	if cmd.Flags().Changed("format") {
		cfg.SourceFormat = flags.format
	}
	if cmd.Flags().Changed("encoding") {
		cfg.InputEncoding = flags.encoding
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func (f convertFlags) dateFilter(cmd *cobra.Command) (filter.DateFilter, error) {
	var period filter.DateFilter
	if cmd.Flags().Changed("year") {
		if f.year <= 0 {
			return period, fmt.Errorf("invalid year %d", f.year)
		}
		period.Year = f.year
	}
	if strings.TrimSpace(f.quarter) != "" {
		q, err := filter.ParseQuarter(f.quarter)
		if err != nil {
			return period, err
		}
		period.Quarter = q
	}
	return period, nil
}

func runConvert(cmd *cobra.Command, cfg config.Config, period filter.DateFilter, flags convertFlags) error {
	log := logger.FromContext(cmd.Context())

	data, err := readInput(cmd, flags.input)
	if err != nil {
		return err
	}

	stmt, err := dbo.Decode(data, dbo.Options{Format: cfg.SourceFormat, Encoding: cfg.InputEncoding})
	if err != nil {
		return err
	}
	log.Debug().
		Str("format", stmt.Format).
		Str("account", stmt.Account).
		Int("records", len(stmt.Records)).
		Msg("statement decoded")

	res, err := convert.Run(stmt, cfg, period, log)
	if err != nil {
		return err
	}

	// Encode fully before touching the output so a failure leaves no
	// partial file behind.
	var buf bytes.Buffer
	if err := taxer.WriteRecords(&buf, res.Records); err != nil {
		return err
	}
	return writeOutput(cmd, flags.output, buf.Bytes())
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading statement: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return &taxer.EncodeError{Err: fmt.Errorf("writing output: %w", err)}
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &taxer.EncodeError{Err: fmt.Errorf("writing output: %w", err)}
	}
	return nil
}
