package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound2(t *testing.T) {
	assert.True(t, d("1.01").Equal(Round2(d("1.005"))))
	assert.True(t, d("-1.01").Equal(Round2(d("-1.005"))))
	assert.True(t, d("2.5").Equal(Round2(d("2.499999"))))
	assert.True(t, d("3").Equal(Round2(d("3"))))
}

func TestHasAtMost2DP(t *testing.T) {
	assert.True(t, HasAtMost2DP(d("4")))
	assert.True(t, HasAtMost2DP(d("4.25")))
	assert.True(t, HasAtMost2DP(d("4.250")))
	assert.False(t, HasAtMost2DP(d("4.251")))
}

func TestTotal(t *testing.T) {
	assert.Equal(t, "500.00", Total(d("100"), d("5"), d("1")).StringFixed(2))
	assert.Equal(t, "400.00", Total(d("100"), d("4"), d("1")).StringFixed(2))
	assert.Equal(t, "33.33", Total(d("100"), d("1"), d("3")).StringFixed(2))
	assert.Equal(t, "12.50", Total(d("25"), d("1.5"), d("3")).StringFixed(2))
	assert.True(t, Total(d("10"), d("1"), decimal.Zero).IsZero())
}

func TestValidatePrecision(t *testing.T) {
	assert.NoError(t, ValidatePrecision(d("100"), d("1")))
	assert.NoError(t, ValidatePrecision(d("25"), d("2")))
	assert.NoError(t, ValidatePrecision(d("1"), d("4")))
	assert.Error(t, ValidatePrecision(d("100"), d("3")))
	assert.Error(t, ValidatePrecision(d("1"), d("8")))
	assert.Error(t, ValidatePrecision(d("1"), decimal.Zero))
}

func TestCentsAndFloat(t *testing.T) {
	assert.EqualValues(t, 12346, Cents(d("123.456")))
	assert.Equal(t, 400.0, Float(d("400")))
	assert.Equal(t, 0.1, Float(d("0.1")))
}

func TestSum(t *testing.T) {
	assert.True(t, d("6.6").Equal(Sum(d("1.1"), d("2.2"), d("3.3"))))
	assert.True(t, Sum().IsZero())
}
