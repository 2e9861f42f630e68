// Package convert turns a decoded bank statement into Taxer records.
package convert

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dbo2taxer/dbo2taxer/internal/config"
	"github.com/dbo2taxer/dbo2taxer/internal/filter"
	"github.com/dbo2taxer/dbo2taxer/internal/model"
	"github.com/dbo2taxer/dbo2taxer/internal/taxer"
)

// Result is the outcome of a successful run.
type Result struct {
	Records []taxer.Record

	Total      int // statement records seen
	Converted  int // records in Records
	Ineligible int // records without an amount, e.g. debits
	Filtered   int // valid records outside the date filter
}

// Run converts every eligible record of stmt and keeps those matching f,
// in statement order. The first record that fails validation aborts the
// run; no records are returned in that case.
func Run(stmt model.Statement, cfg config.Config, f filter.DateFilter, log zerolog.Logger) (Result, error) {
	res := Result{Total: len(stmt.Records)}

	for _, src := range stmt.Records {
		if !src.Eligible() {
			res.Ineligible++
			log.Debug().Int("row", src.Row).Msg("skipping record without amount")
			continue
		}

		rec, err := taxer.FromSource(src, cfg)
		if err != nil {
			return Result{}, fmt.Errorf("converting statement: %w", err)
		}

		if !f.Matches(rec.Date()) {
			res.Filtered++
			log.Debug().
				Int("row", src.Row).
				Time("date", rec.Date()).
				Stringer("filter", f).
				Msg("record outside period")
			continue
		}

		log.Debug().
			Int("row", src.Row).
			Str("party_kind", string(rec.TaxCode().Kind())).
			Msg("record converted")
		res.Records = append(res.Records, rec)
	}
	res.Converted = len(res.Records)

	log.Info().
		Str("format", stmt.Format).
		Stringer("period", f).
		Int("total", res.Total).
		Int("converted", res.Converted).
		Int("ineligible", res.Ineligible).
		Int("filtered", res.Filtered).
		Msg("statement converted")
	return res, nil
}
