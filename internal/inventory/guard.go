// Package inventory owns every stock decrement. Reservations run on the
// caller's transaction and are recorded per checkout so repeating one is
// harmless.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Reservation outcomes reported to the Recorder.
const (
	ResultReserved     = "reserved"
	ResultReplayed     = "replayed"
	ResultInsufficient = "insufficient"
	ResultUnavailable  = "unavailable"
	ResultError        = "error"
)

// Recorder receives one call per Reserve.
type Recorder interface {
	ObserveReservation(result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveReservation(string) {}

// Guard validates and reserves stock.
type Guard struct {
	recorder Recorder
	logger   zerolog.Logger
}

// NewGuard creates a Guard. A nil recorder disables metrics.
func NewGuard(recorder Recorder, logger zerolog.Logger) *Guard {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Guard{
		recorder: recorder,
		logger:   logger.With().Str("component", "inventory-guard").Logger(),
	}
}

// Reserve takes quantity units of productID for the checkout. It never
// commits or rolls back tx.
//
// A reservation already recorded for the checkout is returned untouched.
// Otherwise stock is decremented with a conditional update, so under READ
// COMMITTED a concurrent buyer either waits for the row lock and re-evaluates
// the predicate or loses.
func (g *Guard) Reserve(ctx context.Context, tx pgx.Tx, checkoutID uuid.UUID, productID int64, quantity int) (*model.Reservation, error) {
	if quantity <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	log := g.logger.With().
		Str("checkout_id", checkoutID.String()).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Logger()

	existing, err := g.recorded(ctx, tx, checkoutID, productID)
	if err != nil {
		g.recorder.ObserveReservation(ResultError)
		return nil, err
	}
	if existing != nil {
		if existing.Quantity != quantity {
			log.Error().Int("recorded_quantity", existing.Quantity).Msg("reservation repeated with a different quantity")
			g.recorder.ObserveReservation(ResultError)
			return nil, model.ErrReservationConflict
		}
		g.recorder.ObserveReservation(ResultReplayed)
		return existing, nil
	}

	var remaining int
	err = tx.QueryRow(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND is_active AND stock_quantity >= $2
		RETURNING stock_quantity
	`, productID, quantity).Scan(&remaining)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Error().Err(err).Msg("failed to decrement stock")
			g.recorder.ObserveReservation(ResultError)
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		return nil, g.explainRefusal(ctx, tx, log, productID, quantity)
	}

	if remaining < 0 {
		log.Error().
			Str("invariant", "stock_non_negative").
			Int("remaining", remaining).
			Msg("stock went negative after decrement")
		g.recorder.ObserveReservation(ResultError)
		return nil, model.ErrInvariantViolation
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_reservations (checkout_id, product_id, quantity, remaining)
		VALUES ($1, $2, $3, $4)
	`, checkoutID, productID, quantity, remaining); err != nil {
		log.Error().Err(err).Msg("failed to record reservation")
		g.recorder.ObserveReservation(ResultError)
		return nil, fmt.Errorf("failed to record reservation: %w", err)
	}

	log.Debug().Int("remaining", remaining).Msg("stock reserved")
	g.recorder.ObserveReservation(ResultReserved)

	return &model.Reservation{
		CheckoutID: checkoutID,
		ProductID:  productID,
		Quantity:   quantity,
		Remaining:  remaining,
	}, nil
}

// recorded returns the reservation already made for this checkout and
// product, or nil.
func (g *Guard) recorded(ctx context.Context, tx pgx.Tx, checkoutID uuid.UUID, productID int64) (*model.Reservation, error) {
	r := model.Reservation{CheckoutID: checkoutID, ProductID: productID}
	err := tx.QueryRow(ctx, `
		SELECT quantity, remaining FROM stock_reservations
		WHERE checkout_id = $1 AND product_id = $2
	`, checkoutID, productID).Scan(&r.Quantity, &r.Remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reservation: %w", err)
	}
	return &r, nil
}

// explainRefusal turns a decrement that matched no row into the precise
// domain error.
func (g *Guard) explainRefusal(ctx context.Context, tx pgx.Tx, log zerolog.Logger, productID int64, quantity int) error {
	var (
		stock  int
		active bool
	)
	err := tx.QueryRow(ctx,
		`SELECT stock_quantity, is_active FROM products WHERE id = $1`, productID,
	).Scan(&stock, &active)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && !active) {
		log.Info().Msg("product unavailable")
		g.recorder.ObserveReservation(ResultUnavailable)
		return model.ErrProductUnavailable
	}
	if err != nil {
		g.recorder.ObserveReservation(ResultError)
		return fmt.Errorf("failed to read stock: %w", err)
	}

	log.Info().Int("available", stock).Msg("insufficient stock")
	g.recorder.ObserveReservation(ResultInsufficient)
	return &model.InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: stock,
	}
}
