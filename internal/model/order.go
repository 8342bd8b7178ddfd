package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ParseOrderStatus maps a string onto one of the known order statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(s))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusConfirmed:
		return OrderStatusConfirmed, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// ParsePaymentStatus maps a string onto one of the known payment statuses.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentStatusPending:
		return PaymentStatusPending, nil
	case PaymentStatusPaid:
		return PaymentStatusPaid, nil
	case PaymentStatusFailed:
		return PaymentStatusFailed, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FullName     string `json:"fullName" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"required,min=10,max=20"`
	AddressLine1 string `json:"addressLine1" validate:"required,max=200"`
	AddressLine2 string `json:"addressLine2,omitempty" validate:"max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"required,max=100"`
	PostalCode   string `json:"postalCode" validate:"required,min=6,max=10"`
}

// Order is an immutable purchase record. Only Status and PaymentStatus
// change after creation.
type Order struct {
	ID             uuid.UUID       `json:"-"`
	CheckoutID     uuid.UUID       `json:"-"`
	OrderNumber    string          `json:"orderNumber"`
	UserID         int64           `json:"-"`
	Status         OrderStatus     `json:"status"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	PaymentMethod  string          `json:"paymentMethod"`
	PaymentID      string          `json:"paymentId,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PromoCode      *string         `json:"promoCode,omitempty"`
	Shipping       ShippingInfo    `json:"shipping"`
	Notes          string          `json:"notes,omitempty"`
	Items          []OrderItem     `json:"items,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// OrderItem is a snapshot of a purchased line. ProductID is nil once the
// product has been deleted from the catalogue.
type OrderItem struct {
	ID          uuid.UUID       `json:"-"`
	OrderID     uuid.UUID       `json:"-"`
	ProductID   *int64          `json:"productId,omitempty"`
	ProductName string          `json:"productName"`
	ProductSize string          `json:"productSize,omitempty"`
	ProductSKU  string          `json:"productSku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CheckoutRequest is the shopper's input to checkout.
type CheckoutRequest struct {
	Shipping       ShippingInfo `json:"shipping"`
	Notes          string       `json:"notes,omitempty" validate:"max=2000"`
	PromoCode      *string      `json:"promoCode,omitempty"`
	IdempotencyKey string       `json:"-" validate:"max=128"`
}

// OrderConfirmation is returned after a successful checkout.
type OrderConfirmation struct {
	OrderNumber   string          `json:"orderNumber"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	LineCount     int             `json:"lineCount"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Replayed      bool            `json:"replayed,omitempty"`
}

// CheckoutPreview is the priced view of a cart before it is submitted.
type CheckoutPreview struct {
	Lines          []CartViewLine   `json:"lines"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	TaxAmount      decimal.Decimal  `json:"taxAmount"`
	ShippingCost   decimal.Decimal  `json:"shippingCost"`
	DiscountAmount decimal.Decimal  `json:"discountAmount"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	Shipping       ShippingDefaults `json:"shipping"`
}

// OrderPage is one page of a user's order history.
type OrderPage struct {
	Orders  []Order `json:"orders"`
	Page    int     `json:"page"`
	PerPage int     `json:"perPage"`
	Total   int     `json:"total"`
}

// StatusUpdateRequest is the admin payload for status changes.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// Reservation records stock taken for a product within one checkout.
type Reservation struct {
	CheckoutID uuid.UUID `json:"checkoutId"`
	ProductID  int64     `json:"productId"`
	Quantity   int       `json:"quantity"`
	Remaining  int       `json:"remaining"`
}

// OutboxEvent is a domain event waiting to be published.
type OutboxEvent struct {
	ID        int64     `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	Topic     string    `json:"topic"`
	Key       string    `json:"key"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderPlacedEvent is the payload of the order.placed event.
type OrderPlacedEvent struct {
	OrderNumber string          `json:"orderNumber"`
	UserID      int64           `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	LineCount   int             `json:"lineCount"`
	PlacedAt    time.Time       `json:"placedAt"`
}

// EventOrderPlaced is the event type written when checkout commits.
const EventOrderPlaced = "order.placed"
