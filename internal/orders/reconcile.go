package orders

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fleetstock-backend/pkg/money"
)

// OutComputation is the outcome of taking quantity out of an item.
type OutComputation struct {
	Quantity   decimal.Decimal
	Remaining  decimal.Decimal
	ItemTotal  decimal.Decimal
	OrderTotal decimal.Decimal
}

// ComputeOut validates an out request against the item's stock and derives
// the remaining stock and both totals. Each value is rounded as it is
// produced.
func ComputeOut(stock, unitPrice, unitSize, quantity decimal.Decimal) (OutComputation, error) {
	if !quantity.IsPositive() {
		return OutComputation{}, fmt.Errorf("quantity must be greater than 0")
	}
	if !money.HasAtMost2DP(quantity) {
		return OutComputation{}, fmt.Errorf("quantity can have at most 2 decimal places")
	}
	if quantity.GreaterThan(stock) {
		return OutComputation{}, fmt.Errorf("quantity cannot exceed %s", display(stock))
	}
	if err := money.ValidatePrecision(unitPrice, unitSize); err != nil {
		return OutComputation{}, err
	}

	remaining := money.Round2(stock.Sub(quantity))
	return OutComputation{
		Quantity:   quantity,
		Remaining:  remaining,
		ItemTotal:  money.Total(unitPrice, remaining, unitSize),
		OrderTotal: money.Total(unitPrice, quantity, unitSize),
	}, nil
}

// ModifyQuantity describes an order quantity change.
type ModifyQuantity struct {
	// Stock is the source item's current quantity; nil when the item is gone.
	Stock     *decimal.Decimal
	Original  decimal.Decimal
	Requested decimal.Decimal
	UnitPrice decimal.Decimal
	UnitSize  decimal.Decimal
}

// ModifyComputation is the outcome of re-reconciling an order.
type ModifyComputation struct {
	MaxAllowed decimal.Decimal
	Remaining  decimal.Decimal
	OrderTotal decimal.Decimal
}

// MaxAllowed is the largest quantity an order may be changed to: the stock
// left plus what the order already holds, or only what it holds when the
// source item no longer exists.
func (m ModifyQuantity) MaxAllowed() decimal.Decimal {
	if m.Stock == nil {
		return m.Original
	}
	return money.Round2(m.Stock.Add(m.Original))
}

// ComputeModify validates the requested quantity and derives the new stock
// and order total. When the source item is gone Remaining is the quantity
// the change releases, which is used to recreate the item.
func ComputeModify(in ModifyQuantity) (ModifyComputation, error) {
	maxAllowed := in.MaxAllowed()
	out := ModifyComputation{MaxAllowed: maxAllowed}

	if in.Requested.IsNegative() {
		return out, fmt.Errorf("quantity cannot be negative")
	}
	if !money.HasAtMost2DP(in.Requested) {
		return out, fmt.Errorf("quantity can have at most 2 decimal places")
	}
	if in.Requested.GreaterThan(maxAllowed) {
		return out, fmt.Errorf("quantity cannot exceed %s", display(maxAllowed))
	}

	if in.Stock != nil {
		out.Remaining = money.Round2(in.Stock.Add(in.Original).Sub(in.Requested))
	} else {
		out.Remaining = money.Round2(in.Original.Sub(in.Requested))
	}
	out.OrderTotal = money.Total(in.UnitPrice, in.Requested, in.UnitSize)
	return out, nil
}

func display(d decimal.Decimal) string {
	return money.Round2(d).String()
}
