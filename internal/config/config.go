package config

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrencyPolicy decides where the output currency comes from.
type CurrencyPolicy string

const (
	// CurrencyFromSource uses the statement row's currency and falls back
	// to the configured currency when the row has none.
	CurrencyFromSource CurrencyPolicy = "source"
	// CurrencyFromConfig always uses the configured currency.
	CurrencyFromConfig CurrencyPolicy = "config"
)

// Source formats and input encodings accepted in configuration.
const (
	FormatAuto     = "auto"
	FormatCredit   = "credit"
	FormatCoverage = "coverage"

	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingWindows1251 = "windows-1251"
)

var (
	knownFormats   = []string{FormatAuto, FormatCredit, FormatCoverage}
	knownEncodings = []string{EncodingAuto, EncodingUTF8, EncodingWindows1251}
	knownPolicies  = []CurrencyPolicy{CurrencyFromSource, CurrencyFromConfig}
)

// Config holds the labels copied into every output record and the options
// that control how statements are read.
type Config struct {
	Operation      string         `yaml:"operation" toml:"operation" env:"OPERATION"`
	IncomeType     string         `yaml:"income_type" toml:"income_type" env:"INCOME_TYPE"`
	AccountName    string         `yaml:"account_name" toml:"account_name" env:"ACCOUNT_NAME"`
	Currency       string         `yaml:"currency" toml:"currency" env:"CURRENCY"` // fallback currency code
	CurrencyPolicy CurrencyPolicy `yaml:"currency_policy" toml:"currency_policy" env:"CURRENCY_POLICY"`
	SourceFormat   string         `yaml:"source_format" toml:"source_format" env:"SOURCE_FORMAT"`
	InputEncoding  string         `yaml:"input_encoding" toml:"input_encoding" env:"INPUT_ENCODING"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Operation:      "Дохід",
		IncomeType:     "Основний дохід",
		AccountName:    "",
		Currency:       "UAH",
		CurrencyPolicy: CurrencyFromSource,
		SourceFormat:   FormatAuto,
		InputEncoding:  EncodingAuto,
	}
}

// Normalize trims values and lower-cases the enumerated ones.
func (c Config) Normalize() Config {
	c.Operation = strings.TrimSpace(c.Operation)
	c.IncomeType = strings.TrimSpace(c.IncomeType)
	c.AccountName = strings.TrimSpace(c.AccountName)
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.CurrencyPolicy = CurrencyPolicy(strings.ToLower(strings.TrimSpace(string(c.CurrencyPolicy))))
	c.SourceFormat = strings.ToLower(strings.TrimSpace(c.SourceFormat))
	c.InputEncoding = strings.ToLower(strings.TrimSpace(c.InputEncoding))
	return c
}

// Validate checks enumerated values and the fallback currency.
func (c Config) Validate() error {
	if !slices.Contains(knownPolicies, c.CurrencyPolicy) {
		return fmt.Errorf("currency_policy %q: expected one of source, config", c.CurrencyPolicy)
	}
	if c.Currency != "" && !isCurrencyCode(c.Currency) {
		return fmt.Errorf("currency %q: expected a three-letter code", c.Currency)
	}
	if c.CurrencyPolicy == CurrencyFromConfig && c.Currency == "" {
		return fmt.Errorf("currency_policy %q requires currency to be set", c.CurrencyPolicy)
	}
	if !slices.Contains(knownFormats, c.SourceFormat) {
		return fmt.Errorf("source_format %q: expected one of %s", c.SourceFormat, strings.Join(knownFormats, ", "))
	}
	if !slices.Contains(knownEncodings, c.InputEncoding) {
		return fmt.Errorf("input_encoding %q: expected one of %s", c.InputEncoding, strings.Join(knownEncodings, ", "))
	}
	return nil
}

// Write renders cfg as YAML.
func Write(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return enc.Close()
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
