package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. Reads that
// must see a checkout's own writes take a Querier so callers can pass the tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when missing.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetProduct reads a product through q. Returns nil when missing.
	GetProduct(ctx context.Context, q Querier, id int64) (*model.Product, error)
}

// CartRepository defines the interface for cart line storage.
type CartRepository interface {
	// ListCartLines returns the user's lines ordered by product id.
	ListCartLines(ctx context.Context, q Querier, userID int64) ([]model.CartLine, error)

	// LockCartLines is ListCartLines with row locks held until tx ends.
	LockCartLines(ctx context.Context, tx pgx.Tx, userID int64) ([]model.CartLine, error)

	// GetCartLine returns one line or nil.
	GetCartLine(ctx context.Context, userID, productID int64) (*model.CartLine, error)

	// SetCartLine inserts the line or overwrites its quantity.
	SetCartLine(ctx context.Context, userID, productID int64, quantity int) error

	// RemoveCartLine deletes one line and reports whether it existed.
	RemoveCartLine(ctx context.Context, userID, productID int64) (bool, error)

	// ClearCart deletes every line the user has and returns the count.
	ClearCart(ctx context.Context, q Querier, userID int64) (int64, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// Returns model.ErrOrderNumberTaken on an order number collision, leaving
	// tx usable for another attempt.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByNumber retrieves an order and its items. Returns nil when missing.
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// ListByUser returns one page of the user's orders, newest first, plus the total count.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, int, error)

	// UpdateStatus sets the fulfilment status. Reports false when no order matched.
	UpdateStatus(ctx context.Context, orderNumber string, status model.OrderStatus) (bool, error)

	// UpdatePaymentStatus sets the payment status. Reports false when no order matched.
	UpdatePaymentStatus(ctx context.Context, orderNumber string, status model.PaymentStatus) (bool, error)
}

// IdempotencyRepository maps per-user idempotency keys onto checkouts.
type IdempotencyRepository interface {
	// Claim records key for the checkout inside tx. Returns
	// model.ErrIdempotencyKeyUsed when another checkout owns it.
	Claim(ctx context.Context, tx pgx.Tx, userID int64, key string, checkoutID uuid.UUID) error

	// FindConfirmation returns the confirmation of the order created under
	// key, or nil when the key is unknown.
	FindConfirmation(ctx context.Context, userID int64, key string) (*model.OrderConfirmation, error)
}

// OutboxRepository stores domain events until they are relayed.
type OutboxRepository interface {
	// Insert queues an event on the caller's transaction.
	Insert(ctx context.Context, tx pgx.Tx, event *model.OutboxEvent) error

	// FetchPending returns up to limit unsent events, oldest first.
	FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)

	// MarkSent flags events as published.
	MarkSent(ctx context.Context, ids []int64) error
}

// UserRepository reads user profile data.
type UserRepository interface {
	// GetShippingDefaults returns the stored address or nil for an unknown user.
	GetShippingDefaults(ctx context.Context, userID int64) (*model.ShippingDefaults, error)
}
