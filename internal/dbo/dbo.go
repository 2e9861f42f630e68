// Package dbo decodes bank statement exports in the DBO CSV format.
//
// Two variants exist. Credit statements have separate debit and credit
// columns and leave the credit blank on outgoing payments. Coverage
// statements carry a hryvnia coverage amount on every row.
package dbo

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dbo2taxer/dbo2taxer/internal/model"
)

// FormatAuto selects the variant from the header row.
const FormatAuto = "auto"

// DecodeError is a malformed statement. Row is the 1-based CSV line
// (0 when the failure is not tied to a line); Column names the header
// of the offending cell, if any.
type DecodeError struct {
	Row    int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decoding statement")
	if e.Row > 0 {
		fmt.Fprintf(&b, ": row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Parser decodes one statement variant.
type Parser interface {
	// Format returns the variant name.
	Format() string
	// Detect reports whether a header row belongs to this variant.
	Detect(header []string) bool
	// Parse reads a UTF-8 statement, header first.
	Parse(r io.Reader) (model.Statement, error)
}

// Registry holds parsers in registration order.
type Registry struct {
	parsers map[string]Parser
	order   []string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate statement format: " + key)
	}
	r.parsers[key] = p
	r.order = append(r.order, key)
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists registered format names in registration order.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.order...)
}

// Detect returns the first parser that recognizes header, or nil.
func (r *Registry) Detect(header []string) Parser {
	for _, key := range r.order {
		if p := r.parsers[key]; p.Detect(header) {
			return p
		}
	}
	return nil
}

// DefaultRegistry returns a registry with both statement variants.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CreditParser{})
	r.Register(&CoverageParser{})
	return r
}

// Options control decoding.
type Options struct {
	Format   string // registered format name or FormatAuto; empty means auto
	Encoding string // see DecodeText; empty means auto
}

// Decode decodes a raw statement with the default registry.
func Decode(data []byte, opts Options) (model.Statement, error) {
	return DefaultRegistry().Decode(data, opts)
}

// Decode converts data to UTF-8, picks a parser and parses the statement.
// An input without any lines is an empty statement.
func (r *Registry) Decode(data []byte, opts Options) (model.Statement, error) {
	text, err := DecodeText(data, opts.Encoding)
	if err != nil {
		return model.Statement{}, &DecodeError{Err: err}
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return model.Statement{}, nil
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	var p Parser
	if format == "" || format == FormatAuto {
		header, err := readHeader(text)
		if err != nil {
			return model.Statement{}, &DecodeError{Row: 1, Err: err}
		}
		if p = r.Detect(header); p == nil {
			return model.Statement{}, &DecodeError{Row: 1, Err: fmt.Errorf("unrecognized statement header %q", strings.Join(header, ","))}
		}
	} else if p = r.Get(format); p == nil {
		return model.Statement{}, &DecodeError{Err: fmt.Errorf("unknown statement format %q", opts.Format)}
	}

	return p.Parse(bytes.NewReader(text))
}

func readHeader(text []byte) ([]string, error) {
	cr := newCSVReader(text)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	return header, nil
}

// newCSVReader picks ';' or ',' from whichever is more frequent on the
// first line.
func newCSVReader(text []byte) *csv.Reader {
	first := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		first = text[:i]
	}
	cr := csv.NewReader(bytes.NewReader(text))
	if bytes.Count(first, []byte{';'}) > bytes.Count(first, []byte{','}) {
		cr.Comma = ';'
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr
}
