package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product/quantity entry in a user's cart.
type CartLine struct {
	UserID    int64     `json:"-"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartItemRequest is the payload for adding or updating a cart line.
type CartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CartView is a cart joined with live catalogue prices.
type CartView struct {
	Lines    []CartViewLine  `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartViewLine is a single cart line with current product data.
type CartViewLine struct {
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductSKU    string          `json:"productSku"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	StockQuantity int             `json:"stockQuantity"`
	IsActive      bool            `json:"isActive"`
}
