package convert

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbo2taxer/dbo2taxer/internal/config"
	"github.com/dbo2taxer/dbo2taxer/internal/filter"
	"github.com/dbo2taxer/dbo2taxer/internal/model"
	"github.com/dbo2taxer/dbo2taxer/internal/taxer"
)

func credit(row int, taxID, amount string, date time.Time) model.SourceRecord {
	return model.SourceRecord{
		Row:            row,
		PartyTaxID:     taxID,
		OperationDate:  date,
		PaymentPurpose: "payment",
		Currency:       "UAH",
		Amount:         model.Credit{Value: amount},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRun_ConvertsAll(t *testing.T) {
	stmt := model.Statement{Format: "credit", Records: []model.SourceRecord{
		credit(2, "1234567890", "150.00", day(2024, 8, 15)),
		credit(3, "12345678", "20,5", day(2024, 1, 2)),
	}}

	res, err := Run(stmt, config.Default(), filter.DateFilter{}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Converted)

	assert.Equal(t, "1234567890", res.Records[0].TaxCode().String())
	assert.Equal(t, "Дохід", res.Records[0].Operation())
	assert.Equal(t, "Основний дохід", res.Records[0].IncomeType())
	assert.Equal(t, "20.50", res.Records[1].Amount().StringFixed(2))
}

func TestRun_SkipsBlankCredit(t *testing.T) {
	stmt := model.Statement{Records: []model.SourceRecord{
		credit(2, "1234567890", "", day(2024, 8, 15)),
		credit(3, "1234567890", "10.00", day(2024, 8, 16)),
	}}

	res, err := Run(stmt, config.Default(), filter.DateFilter{}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Ineligible)
	assert.True(t, res.Records[0].Date().Equal(day(2024, 8, 16)))
}

func TestRun_SkipsZeroFilledCredit(t *testing.T) {
	stmt := model.Statement{Records: []model.SourceRecord{
		credit(2, "1234567890", "150.00", day(2024, 8, 15)),
		credit(3, "14360570", "0,00", day(2024, 8, 16)),
	}}

	res, err := Run(stmt, config.Default(), filter.DateFilter{}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Ineligible)
}

func TestRun_FailsFast(t *testing.T) {
	stmt := model.Statement{Records: []model.SourceRecord{
		credit(2, "1234567890", "10.00", day(2024, 8, 15)),
		credit(3, "", "10.00", day(2024, 8, 16)),
		credit(4, "1234567890", "10.00", day(2024, 8, 17)),
	}}

	res, err := Run(stmt, config.Default(), filter.DateFilter{}, zerolog.Nop())
	require.Error(t, err)
	assert.Empty(t, res.Records)

	var verr *taxer.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 3, verr.Row)
	assert.True(t, verr.HasField(taxer.FieldTaxCode))
}

func TestRun_MalformedAmountFails(t *testing.T) {
	stmt := model.Statement{Records: []model.SourceRecord{
		credit(2, "1234567890", "abc", day(2024, 8, 15)),
	}}

	_, err := Run(stmt, config.Default(), filter.DateFilter{}, zerolog.Nop())
	var verr *taxer.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField(taxer.FieldAmount))
}

func TestRun_InvalidRecordFailsEvenWhenFilteredOut(t *testing.T) {
	// Validation happens before filtering.
	stmt := model.Statement{Records: []model.SourceRecord{
		credit(2, "bad", "10.00", day(2023, 1, 1)),
	}}

	_, err := Run(stmt, config.Default(), filter.DateFilter{Year: 2024}, zerolog.Nop())
	require.Error(t, err)
}

func TestRun_QuarterFilter(t *testing.T) {
	stmt := model.Statement{Records: []model.SourceRecord{
		credit(2, "1234567890", "150.00", day(2024, 8, 15)),
	}}

	res, err := Run(stmt, config.Default(), filter.DateFilter{Year: 2024, Quarter: filter.Q3}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "1234567890", rec.TaxCode().String())
	assert.Equal(t, "150.00", rec.Amount().StringFixed(2))
	assert.Equal(t, "UAH", rec.CurrencyCode())

	res, err = Run(stmt, config.Default(), filter.DateFilter{Year: 2024, Quarter: filter.Q1}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.Filtered)
}

func TestRun_PreservesOrder(t *testing.T) {
	dates := []time.Time{day(2024, 9, 30), day(2024, 7, 1), day(2024, 8, 15), day(2024, 7, 20)}
	var stmt model.Statement
	for i, d := range dates {
		stmt.Records = append(stmt.Records, credit(i+2, "1234567890", "1.00", d))
	}

	res, err := Run(stmt, config.Default(), filter.DateFilter{Quarter: filter.Q3}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, res.Records, len(dates))
	for i, d := range dates {
		assert.True(t, res.Records[i].Date().Equal(d), "record %d out of order", i)
	}
}

func TestRun_Empty(t *testing.T) {
	res, err := Run(model.Statement{}, config.Default(), filter.DateFilter{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Total)
}

func TestRun_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	stmt := model.Statement{Format: "credit", Records: []model.SourceRecord{
		credit(2, "1234567890", "", day(2024, 8, 15)),
		credit(3, "1234567890", "5.00", day(2023, 8, 15)),
		credit(4, "12345678", "7.00", day(2024, 2, 1)),
	}}

	_, err := Run(stmt, config.Default(), filter.DateFilter{Year: 2024}, log)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "skipping record without amount")
	assert.Contains(t, out, "record outside period")
	assert.Contains(t, out, `"filtered":1`)
	assert.Contains(t, out, `"ineligible":1`)
	assert.Contains(t, out, `"party_kind":"edrpou"`)
}

func TestRun_CurrencyPolicy(t *testing.T) {
	src := credit(2, "1234567890", "5.00", day(2024, 8, 15))
	src.Currency = "usd"
	stmt := model.Statement{Records: []model.SourceRecord{src}}

	res, err := Run(stmt, config.Default(), filter.DateFilter{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "USD", res.Records[0].CurrencyCode())

	cfg := config.Default()
	cfg.CurrencyPolicy = config.CurrencyFromConfig
	res, err = Run(stmt, cfg, filter.DateFilter{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "UAH", res.Records[0].CurrencyCode())
}
