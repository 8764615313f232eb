// Package money holds the 2-decimal arithmetic shared by inventory, orders,
// and invoices. Every derived value is rounded as soon as it is produced so
// that stored figures always equal what the UI displays.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places kept for quantities and money.
const Places int32 = 2

var hundred = decimal.NewFromInt(100)

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// HasAtMost2DP reports whether d carries no more than two decimal places.
func HasAtMost2DP(d decimal.Decimal) bool {
	return d.Equal(Round2(d))
}

// Total returns round2(unitPrice * (quantity / unitSize)).
func Total(unitPrice, quantity, unitSize decimal.Decimal) decimal.Decimal {
	if unitSize.IsZero() {
		return decimal.Zero
	}
	return Round2(unitPrice.Mul(quantity.Div(unitSize)))
}

// PerUnitPrice returns the unrounded price of one base unit.
func PerUnitPrice(unitPrice, unitSize decimal.Decimal) decimal.Decimal {
	if unitSize.IsZero() {
		return decimal.Zero
	}
	return unitPrice.DivRound(unitSize, 16)
}

// ValidatePrecision rejects prices whose per-unit value cannot be represented
// in two decimals without rounding.
func ValidatePrecision(unitPrice, unitSize decimal.Decimal) error {
	if !unitSize.IsPositive() {
		return fmt.Errorf("unit size must be greater than 0")
	}
	perUnit := PerUnitPrice(unitPrice, unitSize)
	if !HasAtMost2DP(perUnit) {
		return fmt.Errorf("price per unit %s loses precision when rounded to 2 decimals (%s)",
			perUnit.Truncate(6).String(), Round2(perUnit).StringFixed(Places))
	}
	return nil
}

// Cents converts d to integer cents after rounding.
func Cents(d decimal.Decimal) int64 {
	return Round2(d).Mul(hundred).IntPart()
}

// Float returns the float64 used in JSON payloads.
func Float(d decimal.Decimal) float64 {
	return Round2(d).InexactFloat64()
}

// Sum adds values without intermediate rounding; callers round the result.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
