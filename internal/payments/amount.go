package payments

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ToMinorUnits converts a major-unit amount (rupees) to minor units (paise),
// rounding half away from zero. The result is positive or the error is ErrInvalidAmount.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Shift(2).Round(0)
	if !minor.IsPositive() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	return minor.IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
