// Package pricing computes order totals from a cart snapshot.
//
// Everything here is pure: no I/O, no clock, no randomness. The same input
// always yields the same Totals.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Config holds the pricing rules supplied by configuration.
type Config struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultConfig returns 5% tax, free shipping over 500, otherwise 50.
func DefaultConfig() Config {
	return Config{
		TaxRate:               decimal.RequireFromString("0.05"),
		FreeShippingThreshold: decimal.NewFromInt(500),
		FlatShippingFee:       decimal.NewFromInt(50),
	}
}

// Line is a priced cart line: the discounted unit price and a quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the result of pricing a set of lines.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingCost   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Verify checks total == subtotal + tax + shipping - discount at two decimal places.
func (t Totals) Verify() error {
	expected := t.Subtotal.Add(t.TaxAmount).Add(t.ShippingCost).Sub(t.DiscountAmount).Round(2)
	if !expected.Equal(t.TotalAmount.Round(2)) {
		return fmt.Errorf("pricing identity broken: total %s, expected %s", t.TotalAmount.StringFixed(2), expected.StringFixed(2))
	}
	if t.DiscountAmount.GreaterThan(t.Subtotal) || t.TotalAmount.IsNegative() {
		return fmt.Errorf("pricing bounds broken: discount %s, subtotal %s, total %s",
			t.DiscountAmount.StringFixed(2), t.Subtotal.StringFixed(2), t.TotalAmount.StringFixed(2))
	}
	return nil
}

// Engine applies a Config to cart lines.
type Engine struct {
	cfg Config
}

// NewEngine creates a pricing engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the rules the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// DiscountedPrice returns price * (1 - pct/100) rounded to 2 places.
// The percentage is clamped to [0, 100] so the result is never negative.
func DiscountedPrice(price, pct decimal.Decimal) decimal.Decimal {
	if price.IsNegative() {
		return zero
	}
	pct = clampPercent(pct)
	if pct.IsZero() {
		return price.Round(2)
	}
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return price.Mul(factor).Round(2)
}

// LineSubtotal returns unit price * quantity rounded to 2 places.
func LineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Compute prices the lines. promoPct is the promo discount percentage
// applied to the subtotal; pass decimal.Zero when no promo applies.
func (e *Engine) Compute(lines []Line, promoPct decimal.Decimal) Totals {
	subtotal := zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(e.cfg.TaxRate).Round(2)

	shipping := e.cfg.FlatShippingFee.Round(2)
	if subtotal.GreaterThan(e.cfg.FreeShippingThreshold) {
		shipping = zero
	}

	discount := subtotal.Mul(clampPercent(promoPct)).Div(hundred).Round(2)
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingCost:   shipping,
		DiscountAmount: discount,
		TotalAmount:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}

func clampPercent(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return zero
	}
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
