package taxer

import (
	"fmt"
	"strings"
)

// Field names used in validation errors and the CSV header.
const (
	FieldTaxCode      = "tax_code"
	FieldAmount       = "amount"
	FieldDate         = "date"
	FieldComment      = "comment"
	FieldOperation    = "operation"
	FieldIncomeType   = "income_type"
	FieldAccountName  = "account_name"
	FieldCurrencyCode = "currency_code"
)

// FieldError describes one missing or invalid field.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

// ValidationError reports every field that kept a record from being built.
// Row is the statement line the record came from, or 0 when unknown.
type ValidationError struct {
	Row    int
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Error()
	}
	joined := strings.Join(msgs, "; ")
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid record: %s", e.Row, joined)
	}
	return "invalid record: " + joined
}

// HasField reports whether field is among the failures.
func (e *ValidationError) HasField(field string) bool {
	for _, fe := range e.Fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// EncodeError is a failure to serialize or write output records.
type EncodeError struct {
	Row int // 1-based output line, 0 when not tied to a row
	Err error
}

func (e *EncodeError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("encoding taxer CSV: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("encoding taxer CSV: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
