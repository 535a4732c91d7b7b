package money

import (
	"fmt"
	"strings"
)

// Money is an amount in minor units (øre, cents) with its ISO 4217
// currency code. All arithmetic stays in integers; decimal strings are
// parsed digit by digit so no float ever touches an amount.
type Money struct {
	Amount   int64
	Currency string
}

func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// ParseMinor converts a decimal string like "12.50" into minor units.
// At most two decimals are accepted; the processor's contract is
// two-exponent currencies.
func ParseMinor(value, currency string) (Money, error) {
	s := strings.TrimSpace(value)
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return Money{}, fmt.Errorf("money: empty amount %q", value)
	}
	if len(frac) > 2 {
		return Money{}, fmt.Errorf("money: too many decimals in %q", value)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	var minor int64
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return Money{}, fmt.Errorf("money: invalid amount %q", value)
			}
			minor = minor*10 + int64(c-'0')
		}
	}
	if negative {
		minor = -minor
	}

	return Money{Amount: minor, Currency: currency}, nil
}

// Format renders the amount back as a decimal string, e.g. 1250 -> "12.50".
func (m Money) Format() string {
	minor := m.Amount
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) LessThan(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, currencyMismatch(m, other)
	}
	return m.Amount < other.Amount, nil
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, currencyMismatch(m, other)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, currencyMismatch(m, other)
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

func currencyMismatch(a, b Money) error {
	return fmt.Errorf("money: currency mismatch %s vs %s", a.Currency, b.Currency)
}
