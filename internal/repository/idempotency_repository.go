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

type idempotencyRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewIdempotencyRepository creates a new PostgreSQL-backed idempotency store.
func NewIdempotencyRepository(pool *pgxpool.Pool, logger zerolog.Logger) IdempotencyRepository {
	return &idempotencyRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "idempotency").Logger(),
	}
}

// Claim must run first in the checkout tx: a concurrent request with the same
// key blocks on the primary key until the winner commits, then fails here
// before touching the cart or stock.
func (r *idempotencyRepository) Claim(ctx context.Context, tx pgx.Tx, userID int64, key string, checkoutID uuid.UUID) error {
	query := `
		INSERT INTO checkout_idempotency (user_id, idempotency_key, checkout_id)
		VALUES ($1, $2, $3)
	`

	if _, err := tx.Exec(ctx, query, userID, key, checkoutID); err != nil {
		if isUniqueViolation(err, idempotencyConstraint) {
			r.logger.Info().
				Int64("user_id", userID).
				Str("idempotency_key", key).
				Msg("idempotency key already claimed")
			return model.ErrIdempotencyKeyUsed
		}
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to claim idempotency key")
		return fmt.Errorf("failed to claim idempotency key: %w", err)
	}

	return nil
}

func (r *idempotencyRepository) FindConfirmation(ctx context.Context, userID int64, key string) (*model.OrderConfirmation, error) {
	query := `
		SELECT o.order_number, o.total_amount, o.status, o.payment_status,
			(SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id)
		FROM checkout_idempotency k
		JOIN orders o ON o.checkout_id = k.checkout_id
		WHERE k.user_id = $1 AND k.idempotency_key = $2
	`

	var c model.OrderConfirmation
	err := r.pool.QueryRow(ctx, query, userID, key).
		Scan(&c.OrderNumber, &c.TotalAmount, &c.Status, &c.PaymentStatus, &c.LineCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to look up idempotency key")
		return nil, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	c.Replayed = true
	return &c, nil
}
