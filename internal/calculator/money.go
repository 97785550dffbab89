package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places every amount carries once it leaves
// this package.
const Scale = 2

// Tolerance is the magnitude at or below which an amount counts as zero.
var Tolerance = decimal.New(1, -Scale)

// Round rounds an amount to Scale places, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Negligible reports whether |d| <= Tolerance.
func Negligible(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Tolerance)
}

// ParseAmount parses a decimal string such as "12.50". Non-numeric input is
// an ErrInvalidInput.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidInput, s)
	}
	return d, nil
}

// FormatAmount renders an amount with exactly Scale decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
