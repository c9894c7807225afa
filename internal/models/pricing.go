package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountPercentage derives the discount rate of a bill. A percentage
// discount already is the rate; a fixed amount is expressed relative to the
// subtotal, and a zero subtotal yields zero.
func DiscountPercentage(isPercentage bool, amount, subtotal float64) float64 {
	if isPercentage {
		return amount
	}
	if subtotal <= 0 {
		return 0
	}
	rate := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(subtotal)).Mul(hundred)
	return rate.InexactFloat64()
}

// ResolveDiscount fills DiscountPercentage when the client left it out.
func (b *Bill) ResolveDiscount() {
	if b.DiscountPercentage != nil {
		return
	}
	rate := DiscountPercentage(b.IsPercentageDiscount, b.DiscountAmount, b.Subtotal)
	b.DiscountPercentage = &rate
}

// Validate checks the amount fields of a bill.
func (b Bill) Validate() error {
	if b.Subtotal < 0 {
		return fmt.Errorf("subtotal must not be negative")
	}
	if b.DiscountAmount < 0 {
		return fmt.Errorf("discount_amount must not be negative")
	}
	if b.Total < 0 {
		return fmt.Errorf("total must not be negative")
	}
	if b.IsPercentageDiscount && b.DiscountAmount > 100 {
		return fmt.Errorf("percentage discount must not exceed 100")
	}
	return nil
}
