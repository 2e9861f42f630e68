package taxid

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Kind distinguishes the two Ukrainian tax identifier registers.
type Kind string

const (
	// KindEDRPOU is an 8-digit legal entity code.
	KindEDRPOU Kind = "edrpou"
	// KindRNOKPP is a 10-digit individual taxpayer number.
	KindRNOKPP Kind = "rnokpp"
)

const (
	edrpouLen = 8
	rnokppLen = 10
)

// ErrEmpty is returned for blank identifiers.
var ErrEmpty = errors.New("tax code is empty")

// Code is a normalized counter-party tax identifier.
type Code string

// Parse normalizes a raw identifier from a bank export: surrounding
// whitespace and inner spaces are dropped, then the rest must be
// 8 or 10 ASCII digits.
// " 1234 5678 " -> "12345678"
func Parse(raw string) (Code, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return "", ErrEmpty
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid tax code %q: must contain digits only", raw)
		}
	}
	if len(s) != edrpouLen && len(s) != rnokppLen {
		return "", fmt.Errorf("invalid tax code %q: expected %d or %d digits, got %d", raw, edrpouLen, rnokppLen, len(s))
	}
	return Code(s), nil
}

// Kind reports which register the code belongs to.
func (c Code) Kind() Kind {
	if len(c) == edrpouLen {
		return KindEDRPOU
	}
	return KindRNOKPP
}

func (c Code) String() string { return string(c) }
