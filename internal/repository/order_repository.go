package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, checkout_id, order_number, user_id, status, payment_status,
	payment_method, payment_id, subtotal, tax_amount, shipping_cost, discount_amount,
	total_amount, promo_code, shipping_full_name, shipping_phone, shipping_address_line1,
	shipping_address_line2, shipping_city, shipping_state, shipping_postal_code, notes,
	created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts the order inside a savepoint. PostgreSQL aborts the
// whole transaction on a failed statement, so a collision is rolled back to
// the savepoint to keep the reservations already made.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24)
	`

	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}

	_, err = sp.Exec(ctx, query,
		order.ID,
		order.CheckoutID,
		order.OrderNumber,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.PaymentID,
		order.Subtotal,
		order.TaxAmount,
		order.ShippingCost,
		order.DiscountAmount,
		order.TotalAmount,
		order.PromoCode,
		order.Shipping.FullName,
		order.Shipping.Phone,
		order.Shipping.AddressLine1,
		order.Shipping.AddressLine2,
		order.Shipping.City,
		order.Shipping.State,
		order.Shipping.PostalCode,
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			r.logger.Error().Err(rbErr).Msg("failed to roll back order savepoint")
		}
		if isUniqueViolation(err, orderNumberConstraint) {
			r.logger.Warn().
				Str("order_number", order.OrderNumber).
				Msg("order number collision")
			return model.ErrOrderNumberTaken
		}
		r.logger.Error().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}

	r.logger.Debug().
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_size,
			product_sku, quantity, unit_price, subtotal, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.ProductSize,
			item.ProductSKU,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
			i,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_sku", items[i].ProductSKU).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID,
		&o.CheckoutID,
		&o.OrderNumber,
		&o.UserID,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.PaymentID,
		&o.Subtotal,
		&o.TaxAmount,
		&o.ShippingCost,
		&o.DiscountAmount,
		&o.TotalAmount,
		&o.PromoCode,
		&o.Shipping.FullName,
		&o.Shipping.Phone,
		&o.Shipping.AddressLine1,
		&o.Shipping.AddressLine2,
		&o.Shipping.City,
		&o.Shipping.State,
		&o.Shipping.PostalCode,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// GetByNumber retrieves an order by its number along with its items.
func (r *orderRepository) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	var order model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, orderNumber), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_number", orderNumber).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]

	return &order, nil
}

// ListByUser returns one page of the user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, order_number DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query orders")
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, total, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, total, nil
}

func (r *orderRepository) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_size, product_sku,
			quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductSize,
			&item.ProductSKU,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateStatus changes only the fulfilment status; items and stock are untouched.
func (r *orderRepository) UpdateStatus(ctx context.Context, orderNumber string, status model.OrderStatus) (bool, error) {
	return r.updateColumn(ctx, "status", orderNumber, string(status))
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, orderNumber string, status model.PaymentStatus) (bool, error) {
	return r.updateColumn(ctx, "payment_status", orderNumber, string(status))
}

func (r *orderRepository) updateColumn(ctx context.Context, column, orderNumber, value string) (bool, error) {
	query := `UPDATE orders SET ` + column + ` = $2, updated_at = NOW() WHERE order_number = $1`

	tag, err := r.pool.Exec(ctx, query, orderNumber, value)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_number", orderNumber).
			Str("column", column).
			Msg("failed to update order")
		return false, fmt.Errorf("failed to update order %s: %w", column, err)
	}

	r.logger.Info().
		Str("order_number", orderNumber).
		Str(column, value).
		Int64("rows", tag.RowsAffected()).
		Msg("order updated")

	return tag.RowsAffected() > 0, nil
}
