package taxer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a money amount as banks export it. Both "," and "."
// are accepted as the decimal separator; spaces, NBSP and apostrophes are
// accepted as group separators. The amount must be positive with at most
// two decimal places.
// "1 500,00" -> 1500.00
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'', '\t':
			return -1
		case ',':
			return '.'
		}
		return r
	}, raw)
	if s == "" {
		return decimal.Zero, errors.New("amount is empty")
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("not a number: %q", raw)
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, fmt.Errorf("ambiguous decimal separator in %q", raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", raw)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %s is not positive", d)
	}
	if !d.Mul(hundred).Equal(d.Mul(hundred).Floor()) {
		return decimal.Zero, fmt.Errorf("amount %s has more than 2 decimal places", d)
	}
	return d, nil
}
