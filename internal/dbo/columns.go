package dbo

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/dbo2taxer/dbo2taxer/internal/model"
)

// column is a statement column; names[0] is the canonical header, the
// rest are spellings seen in exports from other banks.
type column struct {
	names []string
}

func (c column) String() string { return c.names[0] }

var (
	colAccount    = column{[]string{"Рахунок", "Номер рахунку"}}
	colDate       = column{[]string{"Дата операції", "Дата і час операції", "Дата"}}
	colPartyTaxID = column{[]string{"ЄДРПОУ кореспондента", "Код кореспондента", "ІПН/ЄДРПОУ кореспондента"}}
	colPurpose    = column{[]string{"Призначення платежу", "Призначення"}}
	colCurrency   = column{[]string{"Валюта"}}
	colCredit     = column{[]string{"Кредит"}}
	colCoverage   = column{[]string{"Гривневе покриття", "Еквівалент у гривні"}}
)

// maxSuggestDistance bounds how far a header may be from a known column
// name and still be offered as a suggestion.
const maxSuggestDistance = 2

// dateLayouts are tried in order.
var dateLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type headerIndex map[string]int

func indexHeader(header []string) headerIndex {
	h := make(headerIndex, len(header))
	for i, name := range header {
		key := normalizeHeader(name)
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

func (h headerIndex) find(c column) (int, bool) {
	for _, name := range c.names {
		if i, ok := h[normalizeHeader(name)]; ok {
			return i, true
		}
	}
	return 0, false
}

func (h headerIndex) has(c column) bool {
	_, ok := h.find(c)
	return ok
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// closestHeader returns the header cell nearest to any spelling of c.
func closestHeader(header []string, c column) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	for _, cell := range header {
		got := normalizeHeader(cell)
		if got == "" {
			continue
		}
		for _, name := range c.names {
			if d := levenshtein.ComputeDistance(got, normalizeHeader(name)); d < bestDist {
				best, bestDist = strings.TrimSpace(cell), d
			}
		}
	}
	return best, best != ""
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseStatement reads a statement whose amount lives in amountCol.
func parseStatement(r io.Reader, format string, amountCol column, amount func(string) model.Amount) (model.Statement, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return model.Statement{}, &DecodeError{Err: fmt.Errorf("reading %s statement: %w", format, err)}
	}

	cr := newCSVReader(text)
	records, err := cr.ReadAll()
	if err != nil {
		return model.Statement{}, &DecodeError{Err: fmt.Errorf("reading %s statement: %w", format, err)}
	}

	stmt := model.Statement{Format: format}
	if len(records) == 0 {
		return stmt, nil
	}

	h := indexHeader(records[0])
	required := []column{colDate, colPartyTaxID, colPurpose, amountCol}
	cols := make(map[string]int, len(required))
	for _, c := range required {
		i, ok := h.find(c)
		if !ok {
			err := fmt.Errorf("missing column in %s statement", format)
			if near, ok := closestHeader(records[0], c); ok {
				err = fmt.Errorf("missing column in %s statement (did you mean %q?)", format, near)
			}
			return model.Statement{}, &DecodeError{Row: 1, Column: c.String(), Err: err}
		}
		cols[c.String()] = i
	}
	currencyIdx, hasCurrency := h.find(colCurrency)
	accountIdx, hasAccount := h.find(colAccount)

	for i, rec := range records[1:] {
		row := i + 2
		if blankRow(rec) {
			continue
		}

		dateCell := rec[cols[colDate.String()]]
		date, err := parseDate(dateCell)
		if err != nil {
			return model.Statement{}, &DecodeError{Row: row, Column: colDate.String(), Err: err}
		}

		src := model.SourceRecord{
			Row:            row,
			PartyTaxID:     strings.TrimSpace(rec[cols[colPartyTaxID.String()]]),
			OperationDate:  date,
			PaymentPurpose: strings.TrimSpace(rec[cols[colPurpose.String()]]),
			Amount:         amount(rec[cols[amountCol.String()]]),
		}
		if hasCurrency {
			src.Currency = strings.TrimSpace(rec[currencyIdx])
		}
		if hasAccount && stmt.Account == "" {
			stmt.Account = strings.TrimSpace(rec[accountIdx])
		}
		stmt.Records = append(stmt.Records, src)
	}
	return stmt, nil
}

func blankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
