// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Text is converted at the edges with
// shopspring/decimal so that sums never accumulate binary rounding error.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

// maxAmount caps a single amount at 100 billion units so that sums over any
// realistic record count stay well inside int64 cents.
var maxAmount = decimal.New(1, 11)

// maxAmountLen bounds the accepted text before it reaches decimal.
const maxAmountLen = 32

// ParseDecimal converts decimal text to cents, rounding half away from zero.
//
// Both dot (12.34) and comma (12,34) separators are accepted; exponent forms
// such as 1e3 are not. The sign is kept, which is what filters and budgets
// want; ParseAmount is the strict variant.
//
// Examples:
//
//	ParseDecimal("12.34")  -> 1234
//	ParseDecimal("12,345") -> 1235
//	ParseDecimal("-3")     -> -300
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if len(s) > maxAmountLen || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.Abs().GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Round(2).Shift(2).IntPart()}, nil
}

// ParseAmount parses an expense amount. Zero is allowed, negatives are not.
func ParseAmount(s string) (Money, error) {
	m, err := ParseDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add saturates at the int64 bounds instead of wrapping.
func (m Money) Add(o Money) Money {
	return Money{Cents: addCents(m.Cents, o.Cents)}
}

func (m Money) Sub(o Money) Money {
	if o.Cents == math.MinInt64 {
		return Money{Cents: addCents(addCents(m.Cents, math.MaxInt64), 1)}
	}
	return Money{Cents: addCents(m.Cents, -o.Cents)}
}

func addCents(a, b int64) int64 {
	sum := a + b
	switch {
	case a > 0 && b > 0 && sum < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the shortest decimal form: 450 cents is "4.5", 200 is "2".
func (m Money) String() string {
	return m.Decimal().String()
}

// Fixed renders exactly two decimals for display, e.g. "4.50".
func (m Money) Fixed() string {
	return m.Decimal().StringFixed(2)
}
