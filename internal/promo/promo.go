// Package promo validates promo codes against gzip code lists loaded from
// local disk or S3. A code is accepted when it is 8 to 10 characters long and
// appears in at least a configured number of the lists.
package promo

import (
	"context"

	"github.com/shopspring/decimal"
)

const (
	MinCodeLength = 8
	MaxCodeLength = 10
)

// Validator checks promo codes and reports the discount they grant.
type Validator interface {
	// Validate returns model.ErrInvalidPromoLength or model.ErrInvalidPromoCode
	// for a rejected code and nil for an accepted one.
	Validate(ctx context.Context, code string) error

	// DiscountPercent is applied to the subtotal of an order using a valid code.
	DiscountPercent() decimal.Decimal

	// Close releases the loaded code lists.
	Close() error
}

// CodeSet is one loaded code list.
type CodeSet interface {
	Contains(code string) bool
	Size() int
}

// Loader reads one gzip code list.
type Loader interface {
	Load(ctx context.Context, path string) (CodeSet, error)
}
