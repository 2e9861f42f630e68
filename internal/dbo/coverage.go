package dbo

import (
	"io"

	"github.com/dbo2taxer/dbo2taxer/internal/model"
)

// CoverageParser parses statements that report a hryvnia coverage amount
// on every row.
type CoverageParser struct{}

// Format returns the parser name.
func (p *CoverageParser) Format() string { return "coverage" }

// Detect matches headers with a coverage column and no credit column.
func (p *CoverageParser) Detect(header []string) bool {
	h := indexHeader(header)
	return h.has(colCoverage) && !h.has(colCredit)
}

// Parse reads a coverage statement.
func (p *CoverageParser) Parse(r io.Reader) (model.Statement, error) {
	return parseStatement(r, p.Format(), colCoverage, func(v string) model.Amount {
		return model.Coverage{Value: v}
	})
}
