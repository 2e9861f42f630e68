package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Дохід", cfg.Operation)
	assert.Equal(t, "Основний дохід", cfg.IncomeType)
	assert.Empty(t, cfg.AccountName)
	assert.Equal(t, "UAH", cfg.Currency)
	assert.Equal(t, CurrencyFromSource, cfg.CurrencyPolicy)
	assert.Equal(t, FormatAuto, cfg.SourceFormat)
	assert.Equal(t, EncodingAuto, cfg.InputEncoding)
	assert.NoError(t, cfg.Validate())
}

func TestResolve_DefaultsOnly(t *testing.T) {
	cfg, err := Resolve(Sources{Dir: t.TempDir(), Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolve_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "account_name: ФОП Іваненко\ncurrency: usd\n")

	cfg, err := Resolve(Sources{Dir: dir, Environ: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, "ФОП Іваненко", cfg.AccountName)
	assert.Equal(t, "USD", cfg.Currency)
	// Untouched fields keep their defaults.
	assert.Equal(t, "Дохід", cfg.Operation)
	assert.Equal(t, "Основний дохід", cfg.IncomeType)
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.toml", "operation = \"Файл\"\naccount_name = \"Рахунок з файлу\"\n")

	cfg, err := Resolve(Sources{Dir: dir, Environ: map[string]string{
		"DBO2TAXER_OPERATION": "Середовище",
	}})
	require.NoError(t, err)

	assert.Equal(t, "Середовище", cfg.Operation)
	assert.Equal(t, "Рахунок з файлу", cfg.AccountName)
}

func TestResolve_EmptyEnvDoesNotClear(t *testing.T) {
	cfg, err := Resolve(Sources{Dir: t.TempDir(), Environ: map[string]string{
		"DBO2TAXER_OPERATION": "",
	}})
	require.NoError(t, err)
	assert.Equal(t, "Дохід", cfg.Operation)
}

func TestResolve_ExplicitPathWinsOverDefaultLocation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "account_name: default location\n")
	explicit := writeFile(t, t.TempDir(), "custom.yml", "account_name: explicit\n")

	cfg, err := Resolve(Sources{Path: explicit, Dir: dir, Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.AccountName)
}

func TestResolve_ExplicitPathFromEnv(t *testing.T) {
	explicit := writeFile(t, t.TempDir(), "custom.json", `{"income_type": "Інший дохід"}`)

	cfg, err := Resolve(Sources{Dir: t.TempDir(), Environ: map[string]string{
		EnvConfigPath: explicit,
	}})
	require.NoError(t, err)
	assert.Equal(t, "Інший дохід", cfg.IncomeType)
}

func TestResolve_ExplicitPathMissing(t *testing.T) {
	_, err := Resolve(Sources{
		Path:    filepath.Join(t.TempDir(), "nonexistent.yaml"),
		Environ: map[string]string{},
	})
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve_MalformedFile(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"config.yaml", "operation: [unterminated\n"},
		{"config.toml", "operation = \n"},
		{"config.yaml", "opration: typo\n"},
		{"config.toml", "opration = \"typo\"\n"},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		writeFile(t, dir, tt.name, tt.contents)

		_, err := Resolve(Sources{Dir: dir, Environ: map[string]string{}})
		require.Error(t, err, "%s: %q", tt.name, tt.contents)
		var cfgErr *Error
		assert.True(t, errors.As(err, &cfgErr), "expected *Error, got %T", err)
	}
}

func TestResolve_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.ini", "operation=x\n")
	_, err := Resolve(Sources{Path: path, Environ: map[string]string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestResolve_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "")

	cfg, err := Resolve(Sources{Dir: dir, Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestResolve_InvalidEnumerations(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"DBO2TAXER_CURRENCY_POLICY", "sometimes", "currency_policy"},
		{"DBO2TAXER_SOURCE_FORMAT", "xlsx", "source_format"},
		{"DBO2TAXER_INPUT_ENCODING", "koi8-u", "input_encoding"},
		{"DBO2TAXER_CURRENCY", "hryvnia", "currency"},
	}
	for _, tt := range tests {
		_, err := Resolve(Sources{Dir: t.TempDir(), Environ: map[string]string{tt.key: tt.value}})
		require.Error(t, err, "%s=%s", tt.key, tt.value)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestResolve_NormalizesEnumerations(t *testing.T) {
	cfg, err := Resolve(Sources{Dir: t.TempDir(), Environ: map[string]string{
		"DBO2TAXER_CURRENCY_POLICY": " Config ",
		"DBO2TAXER_SOURCE_FORMAT":   "CREDIT",
		"DBO2TAXER_INPUT_ENCODING":  "Windows-1251",
	}})
	require.NoError(t, err)
	assert.Equal(t, CurrencyFromConfig, cfg.CurrencyPolicy)
	assert.Equal(t, FormatCredit, cfg.SourceFormat)
	assert.Equal(t, EncodingWindows1251, cfg.InputEncoding)
}

func TestLoad_ProviderOrder(t *testing.T) {
	first := func() (Config, error) { return Config{Operation: "first", AccountName: "kept"}, nil }
	second := func() (Config, error) { return Config{Operation: "second"}, nil }

	cfg, err := Load(Defaults(), first, second)
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.Operation)
	assert.Equal(t, "kept", cfg.AccountName)
}

func TestLoad_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Load(Defaults(), func() (Config, error) { return Config{}, boom })
	assert.ErrorIs(t, err, boom)
}

func TestValidate_ConfigPolicyNeedsCurrency(t *testing.T) {
	cfg := Default()
	cfg.CurrencyPolicy = CurrencyFromConfig
	cfg.Currency = ""
	assert.Error(t, cfg.Validate())
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Default()))

	contents := buf.String()
	assert.Contains(t, contents, "operation: Дохід")
	assert.Contains(t, contents, "currency: UAH")
	assert.Contains(t, contents, "currency_policy: source")

	// The rendered YAML is a valid config file.
	path := writeFile(t, t.TempDir(), "config.yaml", contents)
	cfg, err := Resolve(Sources{Path: path, Environ: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
