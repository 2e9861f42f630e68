package taxer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Header is the first line of a Taxer import file.
const Header = FieldTaxCode + "," + FieldAmount + "," + FieldDate + "," + FieldComment + "," +
	FieldOperation + "," + FieldIncomeType + "," + FieldAccountName + "," + FieldCurrencyCode

// DateFormat is how dates are written in Taxer files.
const DateFormat = "02.01.2006 15:04:05"

const (
	numFields      = 8
	colTaxCode     = 0
	colAmount      = 1
	colDate        = 2
	colComment     = 3
	colOperation   = 4
	colIncomeType  = 5
	colAccountName = 6
	colCurrency    = 7
)

// WriteRecords writes records, header first. Failures are *EncodeError.
func WriteRecords(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return &EncodeError{Row: 1, Err: fmt.Errorf("writing header: %w", err)}
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return &EncodeError{Row: i + 2, Err: err}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return &EncodeError{Err: err}
	}
	return nil
}

// ReadRecords reads a Taxer file written by WriteRecords. Every row goes
// through the Builder, so a file with invalid rows is rejected.
func ReadRecords(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading taxer CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, errors.New("reading taxer CSV: missing header")
	}
	if got := strings.Join(rows[0], ","); got != Header {
		return nil, fmt.Errorf("reading taxer CSV: unexpected header %q", got)
	}

	var records []Record
	for i, row := range rows[1:] {
		rec, err := UnmarshalRecord(row)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Row = i + 2
				return nil, verr
			}
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// MarshalRecord converts a Record to a CSV row.
func MarshalRecord(rec Record) []string {
	row := make([]string, numFields)
	row[colTaxCode] = rec.taxCode.String()
	row[colAmount] = rec.amount.StringFixed(2)
	row[colDate] = rec.date.Format(DateFormat)
	row[colComment] = rec.comment
	row[colOperation] = rec.operation
	row[colIncomeType] = rec.incomeType
	row[colAccountName] = rec.accountName
	row[colCurrency] = rec.currency
	return row
}

// UnmarshalRecord converts a CSV row to a Record.
func UnmarshalRecord(row []string) (Record, error) {
	if len(row) != numFields {
		return Record{}, fmt.Errorf("expected %d fields, got %d", numFields, len(row))
	}

	date, err := time.Parse(DateFormat, row[colDate])
	if err != nil {
		return Record{}, fmt.Errorf("parsing date %q: %w", row[colDate], err)
	}

	return NewBuilder().
		TaxCodeRaw(row[colTaxCode]).
		AmountRaw(row[colAmount]).
		Date(date).
		Comment(row[colComment]).
		Operation(row[colOperation]).
		IncomeType(row[colIncomeType]).
		AccountName(row[colAccountName]).
		CurrencyCode(row[colCurrency]).
		Build()
}
