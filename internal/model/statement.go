package model

import (
	"strings"
	"time"
)

// Amount is the money column of a statement row. It is either a Credit or
// a Coverage, depending on the export variant the row came from.
type Amount interface {
	// Raw returns the amount text as exported and whether the row carries
	// an amount at all.
	Raw() (string, bool)
	isAmount()
}

// Credit is the credit column of a credit-based statement. Debit rows
// leave it blank or fill it with zeros.
type Credit struct {
	Value string
}

// Raw returns the credit text; ok is false for a blank or all-zero credit
// cell such as "0,00".
func (c Credit) Raw() (string, bool) {
	v := strings.TrimSpace(c.Value)
	return v, v != "" && !zeroFilled(v)
}

// zeroFilled reports whether s spells zero with digits and separators only.
func zeroFilled(s string) bool {
	return strings.Trim(s, "0.,- \u00a0") == ""
}

func (Credit) isAmount() {}

// Coverage is the hryvnia coverage column of a coverage-based statement.
// It is present on every row regardless of direction.
type Coverage struct {
	Value string
}

// Raw returns the coverage text. Coverage is always present; a blank value
// is left for validation to reject.
func (c Coverage) Raw() (string, bool) {
	return strings.TrimSpace(c.Value), true
}

func (Coverage) isAmount() {}

// SourceRecord is one parsed row of a bank statement export.
type SourceRecord struct {
	Row            int       // 1-based CSV line number, header included
	PartyTaxID     string    // counter-party tax identifier, as exported
	OperationDate  time.Time
	PaymentPurpose string
	Currency       string // empty when the export has no currency column
	Amount         Amount
}

// Eligible reports whether the record carries an amount. Rows without one
// (debits in a credit-based export) are not convertible and are skipped.
func (r SourceRecord) Eligible() bool {
	if r.Amount == nil {
		return false
	}
	_, ok := r.Amount.Raw()
	return ok
}

// Statement is one decoded bank export.
type Statement struct {
	Format  string // name of the variant it was decoded as
	Account string // own account number, when the export has one
	Records []SourceRecord
}
