package dbo

import (
	"io"

	"github.com/dbo2taxer/dbo2taxer/internal/model"
)

// CreditParser parses statements with separate debit and credit columns.
// Only rows with a credit amount are convertible.
type CreditParser struct{}

// Format returns the parser name.
func (p *CreditParser) Format() string { return "credit" }

// Detect matches headers that carry a credit column.
func (p *CreditParser) Detect(header []string) bool {
	return indexHeader(header).has(colCredit)
}

// Parse reads a credit statement.
func (p *CreditParser) Parse(r io.Reader) (model.Statement, error) {
	return parseStatement(r, p.Format(), colCredit, func(v string) model.Amount {
		return model.Credit{Value: v}
	})
}
