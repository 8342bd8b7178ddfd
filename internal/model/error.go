package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Available     *int   `json:"available,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidPromoCode     = "INVALID_PROMO_CODE"
	ErrCodeInvalidPromoLength   = "INVALID_PROMO_LENGTH"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeProductUnavailable   = "PRODUCT_UNAVAILABLE"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeInvalidShippingInfo  = "INVALID_SHIPPING_INFO"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidOrderStatus   = "INVALID_ORDER_STATUS"
	ErrCodeReservationConflict  = "RESERVATION_CONFLICT"
	ErrCodeCheckoutFailed       = "CHECKOUT_FAILED"
	ErrCodeOrderNumberExhausted = "ORDER_NUMBER_EXHAUSTED"
	ErrCodeInvariantViolation   = "INVARIANT_VIOLATION"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// User-correctable errors. These are returned verbatim to the caller.
var (
	ErrInvalidPromoCode    = NewDomainError(ErrCodeInvalidPromoCode, "Promo code is not valid")
	ErrInvalidPromoLength  = NewDomainError(ErrCodeInvalidPromoLength, "Promo code must be between 8 and 10 characters")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrProductUnavailable  = NewDomainError(ErrCodeProductUnavailable, "One or more products in your cart are no longer available")
	ErrInsufficientStock   = NewDomainError(ErrCodeInsufficientStock, "Not enough stock for one or more products")
	ErrInvalidShippingInfo = NewDomainError(ErrCodeInvalidShippingInfo, "Shipping information is incomplete or invalid")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidOrderStatus  = NewDomainError(ErrCodeInvalidOrderStatus, "Invalid order status")
)

// Transient errors. Callers may retry.
var (
	ErrCheckoutFailed       = NewDomainError(ErrCodeCheckoutFailed, "Checkout could not be completed, please try again")
	ErrOrderNumberExhausted = NewDomainError(ErrCodeOrderNumberExhausted, "Could not allocate an order number")
)

// Internal errors that indicate a bug rather than bad input.
var (
	ErrReservationConflict = NewDomainError(ErrCodeReservationConflict, "Product already reserved with a different quantity in this checkout")
	ErrInvariantViolation  = NewDomainError(ErrCodeInvariantViolation, "Internal invariant violated")

	// ErrOrderNumberTaken is returned by the order ledger when the candidate
	// order number collides with an existing one.
	ErrOrderNumberTaken = errors.New("order number already exists")

	// ErrIdempotencyKeyUsed is returned when a concurrent checkout already
	// claimed the same idempotency key.
	ErrIdempotencyKeyUsed = errors.New("idempotency key already used")
)

// InsufficientStockError reports the quantity actually available for a product.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Is lets errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsTransient reports whether err is a retryable infrastructure failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrCheckoutFailed) || errors.Is(err, ErrOrderNumberExhausted)
}
