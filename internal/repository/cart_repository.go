package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

func (r *cartRepository) ListCartLines(ctx context.Context, q Querier, userID int64) ([]model.CartLine, error) {
	return r.queryLines(ctx, q, userID, "")
}

// LockCartLines takes row locks so a concurrent checkout for the same user
// waits here and then observes the emptied cart.
func (r *cartRepository) LockCartLines(ctx context.Context, tx pgx.Tx, userID int64) ([]model.CartLine, error) {
	return r.queryLines(ctx, tx, userID, "FOR UPDATE")
}

func (r *cartRepository) queryLines(ctx context.Context, q Querier, userID int64, lock string) ([]model.CartLine, error) {
	query := `
		SELECT user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY product_id
	` + lock

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query cart lines")
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart line row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart line rows")
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) GetCartLine(ctx context.Context, userID, productID int64) (*model.CartLine, error) {
	query := `
		SELECT user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`

	var l model.CartLine
	err := r.pool.QueryRow(ctx, query, userID, productID).
		Scan(&l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("product_id", productID).
			Msg("failed to query cart line")
		return nil, fmt.Errorf("failed to query cart line: %w", err)
	}

	return &l, nil
}

func (r *cartRepository) SetCartLine(ctx context.Context, userID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, userID, productID, quantity); err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to save cart line")
		return fmt.Errorf("failed to save cart line: %w", err)
	}

	return nil
}

func (r *cartRepository) RemoveCartLine(ctx context.Context, userID, productID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("product_id", productID).
			Msg("failed to remove cart line")
		return false, fmt.Errorf("failed to remove cart line: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ClearCart removes all of the user's lines, including any added after the
// checkout snapshot was taken.
func (r *cartRepository) ClearCart(ctx context.Context, q Querier, userID int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear cart")
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().
		Int64("user_id", userID).
		Int64("lines", tag.RowsAffected()).
		Msg("cart cleared")

	return tag.RowsAffected(), nil
}
