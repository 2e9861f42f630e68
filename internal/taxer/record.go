package taxer

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dbo2taxer/dbo2taxer/internal/config"
	"github.com/dbo2taxer/dbo2taxer/internal/model"
	"github.com/dbo2taxer/dbo2taxer/internal/taxid"
)

// Record is one row of a Taxer import file. Records are only produced by
// Builder.Build, so every field of a Record has passed validation.
type Record struct {
	taxCode     taxid.Code
	amount      decimal.Decimal
	date        time.Time
	comment     string
	operation   string
	incomeType  string
	accountName string
	currency    string
}

// TaxCode returns the counter-party tax identifier.
func (r Record) TaxCode() taxid.Code { return r.taxCode }

// Amount returns the positive income amount.
func (r Record) Amount() decimal.Decimal { return r.amount }

// Date returns the operation date.
func (r Record) Date() time.Time { return r.date }

// Comment returns the payment purpose.
func (r Record) Comment() string { return r.comment }

// Operation returns the Taxer operation label.
func (r Record) Operation() string { return r.operation }

// IncomeType returns the Taxer income type label.
func (r Record) IncomeType() string { return r.incomeType }

// AccountName returns the Taxer account name; it may be empty.
func (r Record) AccountName() string { return r.accountName }

// CurrencyCode returns the upper-case ISO 4217 code.
func (r Record) CurrencyCode() string { return r.currency }

// Builder collects record fields. Invalid input is remembered rather than
// returned, and Build reports all of it at once.
type Builder struct {
	rec        Record
	hasTaxCode bool
	hasAmount  bool
	errs       []FieldError
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// TaxCodeRaw normalizes a counter-party identifier.
func (b *Builder) TaxCodeRaw(raw string) *Builder {
	code, err := taxid.Parse(raw)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, taxid.ErrEmpty) {
			reason = "required"
		}
		b.fail(FieldTaxCode, raw, reason)
		return b
	}
	b.rec.taxCode = code
	b.hasTaxCode = true
	return b
}

// AmountRaw parses an exported amount, see ParseAmount.
func (b *Builder) AmountRaw(raw string) *Builder {
	amount, err := ParseAmount(raw)
	if err != nil {
		b.fail(FieldAmount, raw, err.Error())
		return b
	}
	b.rec.amount = amount
	b.hasAmount = true
	return b
}

// Date sets the operation date. A zero time counts as missing.
func (b *Builder) Date(t time.Time) *Builder {
	b.rec.date = t
	return b
}

// Comment sets the free-text comment, copied verbatim.
func (b *Builder) Comment(s string) *Builder {
	b.rec.comment = s
	return b
}

// Operation sets the operation label.
func (b *Builder) Operation(s string) *Builder {
	b.rec.operation = s
	return b
}

// IncomeType sets the income type label.
func (b *Builder) IncomeType(s string) *Builder {
	b.rec.incomeType = s
	return b
}

// AccountName sets the account name label.
func (b *Builder) AccountName(s string) *Builder {
	b.rec.accountName = s
	return b
}

// CurrencyCode sets an ISO 4217 alphabetic code; case is normalized.
func (b *Builder) CurrencyCode(s string) *Builder {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code != "" && !isCurrencyCode(code) {
		b.fail(FieldCurrencyCode, s, "expected a three-letter code")
		return b
	}
	b.rec.currency = code
	return b
}

// Build returns the record, or a *ValidationError naming every required
// field that is missing or was rejected.
func (b *Builder) Build() (Record, error) {
	errs := append([]FieldError(nil), b.errs...)
	if !b.hasTaxCode && !b.failed(FieldTaxCode) {
		errs = append(errs, FieldError{Field: FieldTaxCode, Reason: "required"})
	}
	if !b.hasAmount && !b.failed(FieldAmount) {
		errs = append(errs, FieldError{Field: FieldAmount, Reason: "required"})
	}
	if b.rec.date.IsZero() {
		errs = append(errs, FieldError{Field: FieldDate, Reason: "required"})
	}
	if b.rec.currency == "" && !b.failed(FieldCurrencyCode) {
		errs = append(errs, FieldError{Field: FieldCurrencyCode, Reason: "required"})
	}
	if len(errs) > 0 {
		return Record{}, &ValidationError{Fields: errs}
	}
	return b.rec, nil
}

func (b *Builder) fail(field, value, reason string) {
	b.errs = append(b.errs, FieldError{Field: field, Value: value, Reason: reason})
}

func (b *Builder) failed(field string) bool {
	for _, fe := range b.errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// FromSource converts one statement row. Labels come from cfg; the
// currency is picked by cfg.CurrencyPolicy. Validation errors carry the
// row number of rec.
func FromSource(rec model.SourceRecord, cfg config.Config) (Record, error) {
	b := NewBuilder().
		TaxCodeRaw(rec.PartyTaxID).
		Date(rec.OperationDate).
		Comment(rec.PaymentPurpose).
		Operation(cfg.Operation).
		IncomeType(cfg.IncomeType).
		AccountName(cfg.AccountName).
		CurrencyCode(ResolveCurrency(rec.Currency, cfg))

	if rec.Amount != nil {
		if raw, ok := rec.Amount.Raw(); ok {
			b.AmountRaw(raw)
		}
	}

	out, err := b.Build()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Row = rec.Row
		}
		return Record{}, err
	}
	return out, nil
}

// ResolveCurrency applies the configured currency policy.
func ResolveCurrency(source string, cfg config.Config) string {
	if cfg.CurrencyPolicy == config.CurrencyFromConfig {
		return cfg.Currency
	}
	if s := strings.TrimSpace(source); s != "" {
		return s
	}
	return cfg.Currency
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
