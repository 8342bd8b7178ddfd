// Package payment charges orders. Only a mock gateway exists: every charge
// succeeds immediately.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MethodMock is recorded as the payment method of mock charges.
const MethodMock = "mock"

// Receipt identifies a successful charge.
type Receipt struct {
	PaymentID string
	Method    string
}

// Gateway charges an order total.
type Gateway interface {
	Charge(ctx context.Context, orderNumber string, amount decimal.Decimal) (Receipt, error)
}

// MockGateway approves every non-negative charge.
type MockGateway struct {
	logger zerolog.Logger
}

// NewMockGateway creates a gateway that never declines.
func NewMockGateway(logger zerolog.Logger) *MockGateway {
	return &MockGateway{logger: logger.With().Str("component", "payment-mock").Logger()}
}

// Charge returns a receipt with a pay_<16 hex> payment id.
func (g *MockGateway) Charge(ctx context.Context, orderNumber string, amount decimal.Decimal) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if amount.IsNegative() {
		return Receipt{}, fmt.Errorf("cannot charge negative amount %s", amount.StringFixed(2))
	}

	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return Receipt{}, fmt.Errorf("failed to generate payment id: %w", err)
	}

	receipt := Receipt{
		PaymentID: "pay_" + hex.EncodeToString(b[:]),
		Method:    MethodMock,
	}

	g.logger.Info().
		Str("order_number", orderNumber).
		Str("amount", amount.StringFixed(2)).
		Str("payment_id", receipt.PaymentID).
		Msg("payment approved")

	return receipt, nil
}
