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

type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func (r *userRepository) GetShippingDefaults(ctx context.Context, userID int64) (*model.ShippingDefaults, error) {
	query := `
		SELECT full_name, phone, address_line1, address_line2, city, state, postal_code
		FROM users
		WHERE id = $1
	`

	var d model.ShippingDefaults
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&d.FullName,
		&d.Phone,
		&d.AddressLine1,
		&d.AddressLine2,
		&d.City,
		&d.State,
		&d.PostalCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &d, nil
}
