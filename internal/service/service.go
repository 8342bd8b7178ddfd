package service

import (
	"context"
	"reflect"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductService defines read operations on the catalogue.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// CartService manages a user's cart. Nothing here touches stock.
type CartService interface {
	View(ctx context.Context, userID int64) (*model.CartView, error)
	AddItem(ctx context.Context, userID int64, req *model.CartItemRequest) (*model.CartView, error)
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) (*model.CartView, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*model.CartView, error)
	Clear(ctx context.Context, userID int64) error
}

// CheckoutService converts a cart into an order.
type CheckoutService interface {
	// Checkout runs the whole cart-to-order conversion in one transaction.
	Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (*model.OrderConfirmation, error)

	// Preview prices the current cart without writing anything.
	Preview(ctx context.Context, userID int64, promoCode *string) (*model.CheckoutPreview, error)
}

// OrderService defines order history and lifecycle operations.
type OrderService interface {
	// GetOrderByNumber returns the order only when it belongs to userID.
	GetOrderByNumber(ctx context.Context, orderNumber string, userID int64) (*model.Order, error)

	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID int64, page, perPage int) (*model.OrderPage, error)

	// UpdateStatus changes the fulfilment status (admin).
	UpdateStatus(ctx context.Context, orderNumber, status string) (*model.Order, error)

	// UpdatePaymentStatus changes the payment status (admin).
	UpdatePaymentStatus(ctx context.Context, orderNumber, status string) (*model.Order, error)
}

// StockReserver takes stock on the checkout transaction.
type StockReserver interface {
	Reserve(ctx context.Context, tx pgx.Tx, checkoutID uuid.UUID, productID int64, quantity int) (*model.Reservation, error)
}

// CheckoutRecorder receives one observation per checkout call.
type CheckoutRecorder interface {
	ObserveCheckout(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCheckout(string, time.Duration) {}

// newValidate reports json field names in validation errors.
func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// invalidFields lists the offending fields of a validation error.
func invalidFields(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Namespace()
	}
	return fields
}
