package taxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Code
		kind Kind
	}{
		{"1234567890", "1234567890", KindRNOKPP},
		{"12345678", "12345678", KindEDRPOU},
		{" 12345678 ", "12345678", KindEDRPOU},
		{"1234 567 890", "1234567890", KindRNOKPP},
		{"\t00123456\n", "00123456", KindEDRPOU},
	}
	for _, tt := range tests {
		got, err := Parse(tt.raw)
		require.NoError(t, err, "Parse(%q)", tt.raw)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.kind, got.Kind())
	}
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrEmpty, "Parse(%q)", raw)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"12345", "expected 8 or 10 digits"},
		{"123456789", "expected 8 or 10 digits"},
		{"12345678901", "expected 8 or 10 digits"},
		{"12345A78", "digits only"},
		{"АБ123456", "digits only"},
		{"1234-5678", "digits only"},
	}
	for _, tt := range tests {
		_, err := Parse(tt.raw)
		require.Error(t, err, "Parse(%q)", tt.raw)
		assert.NotErrorIs(t, err, ErrEmpty)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestCodeString(t *testing.T) {
	c, err := Parse("1234567890")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", c.String())
}
