package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/fleetstock-backend/pkg/money"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeOutScenario(t *testing.T) {
	calc, err := ComputeOut(d("5"), d("100"), d("1"), d("4"))
	require.NoError(t, err)
	assert.True(t, calc.Remaining.Equal(d("1")))
	assert.True(t, calc.ItemTotal.Equal(d("100")))
	assert.True(t, calc.OrderTotal.Equal(d("400")))
}

func TestComputeOutConservesStock(t *testing.T) {
	stocks := []string{"5", "10.5", "0.75", "123.45"}
	fractions := []string{"0.01", "0.25", "0.5", "1"}
	for _, s := range stocks {
		stock := d(s)
		for _, f := range fractions {
			q := money.Round2(stock.Mul(d(f)))
			if !q.IsPositive() {
				continue
			}
			calc, err := ComputeOut(stock, d("12.5"), d("0.5"), q)
			require.NoError(t, err, "stock %s qty %s", s, q)
			assert.True(t, calc.Remaining.Add(q).Equal(stock), "stock %s qty %s", s, q)
			assert.True(t, money.HasAtMost2DP(calc.Remaining))
			assert.True(t, money.HasAtMost2DP(calc.ItemTotal))
			assert.True(t, money.HasAtMost2DP(calc.OrderTotal))
		}
	}
}

func TestComputeOutRejects(t *testing.T) {
	cases := []struct {
		name      string
		stock     string
		price     string
		size      string
		qty       string
		errSubstr string
	}{
		{"zero quantity", "5", "100", "1", "0", "greater than 0"},
		{"negative quantity", "5", "100", "1", "-1", "greater than 0"},
		{"over stock", "5", "100", "1", "6", "cannot exceed 5"},
		{"three decimals", "5", "100", "1", "1.005", "2 decimal places"},
		{"lossy unit price", "5", "10", "3", "1", "loses precision"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeOut(d(tc.stock), d(tc.price), d(tc.size), d(tc.qty))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSubstr)
		})
	}
}

func TestComputeModifyRejectsAboveMaxAllowed(t *testing.T) {
	stock := d("0")
	plan := ModifyQuantity{Stock: &stock, Original: d("5"), Requested: d("20"), UnitPrice: d("100"), UnitSize: d("1")}
	assert.True(t, plan.MaxAllowed().Equal(d("5")))

	_, err := ComputeModify(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed")
}

func TestComputeModifyRestocks(t *testing.T) {
	stock := d("3")
	calc, err := ComputeModify(ModifyQuantity{Stock: &stock, Original: d("4"), Requested: d("2.5"), UnitPrice: d("100"), UnitSize: d("1")})
	require.NoError(t, err)
	assert.True(t, calc.MaxAllowed.Equal(d("7")))
	assert.True(t, calc.Remaining.Equal(d("4.5")))
	assert.True(t, calc.OrderTotal.Equal(d("250")))
}

func TestComputeModifyWithoutSource(t *testing.T) {
	plan := ModifyQuantity{Original: d("4"), Requested: d("3"), UnitPrice: d("10"), UnitSize: d("2")}
	calc, err := ComputeModify(plan)
	require.NoError(t, err)
	assert.True(t, calc.MaxAllowed.Equal(d("4")))
	assert.True(t, calc.OrderTotal.Equal(d("15")))
	assert.True(t, calc.Remaining.Equal(d("1")))

	plan.Requested = d("4.01")
	_, err = ComputeModify(plan)
	assert.Error(t, err)

	plan.Requested = d("-1")
	_, err = ComputeModify(plan)
	assert.Error(t, err)
}
