package models

import (
	"bytes"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is a 2-decimal currency value held as integer cents.
// All arithmetic is integer-only.
type Money int64

// MaxMoney is the largest amount ParseMoney accepts: 10,000,000,000,000.00.
// Thousands of maximal amounts still sum without overflowing int64.
const MaxMoney Money = 1_000_000_000_000_000

// Cents constructs Money from a cent count.
func Cents(c int64) Money { return Money(c) }

// ParseMoney parses a decimal string such as "12.5" or "100.00".
// Values with more than two decimal places or a negative sign are rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return fromDecimal(d)
}

// MustParseMoney is ParseMoney for constants and tests. It panics on error.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than two decimal places", ErrInvalidAmount, d)
	}
	if cents.GreaterThan(decimal.NewFromInt(int64(MaxMoney))) {
		return 0, fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, d, MaxMoney)
	}
	return Money(cents.IntPart()), nil
}

// Add returns m+o, or ErrInvalidAmount if the sum overflows.
func (m Money) Add(o Money) (Money, error) {
	if (o > 0 && m > math.MaxInt64-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, fmt.Errorf("%w: %s + %s overflows", ErrInvalidAmount, m, o)
	}
	return m + o, nil
}

// Cents returns the amount in cents.
func (m Money) Cents() int64 { return int64(m) }

// Decimal returns the amount as a decimal with exponent -2.
func (m Money) Decimal() decimal.Decimal { return decimal.New(int64(m), -2) }

// String renders the amount with exactly two decimals, e.g. "66.67".
func (m Money) String() string { return m.Decimal().StringFixed(2) }

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	parsed, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
