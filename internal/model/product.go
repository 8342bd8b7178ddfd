package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalogue record checkout reads from. Checkout never
// changes anything here except stock, and only through the inventory guard.
type Product struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Size               string          `json:"size,omitempty"`
	SKU                string          `json:"sku"`
	Price              decimal.Decimal `json:"price"`
	MRP                decimal.Decimal `json:"mrp"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	StockQuantity      int             `json:"stockQuantity"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Available reports whether the product can currently be sold.
func (p *Product) Available() bool {
	return p != nil && p.IsActive
}
