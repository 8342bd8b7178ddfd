package events

import (
	"context"
	"time"

	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Relay polls the outbox and publishes pending events in id order. Delivery
// is at least once: a crash between publish and MarkSent republishes the batch.
type Relay struct {
	outbox    repository.OutboxRepository
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

// NewRelay creates a relay.
func NewRelay(outbox repository.OutboxRepository, publisher Publisher, interval time.Duration, batchSize int, logger zerolog.Logger) *Relay {
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "outbox-relay").Logger(),
	}
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info().Dur("interval", r.interval).Int("batch_size", r.batchSize).Msg("outbox relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay stopped")
			return
		case <-ticker.C:
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					r.logger.Warn().Err(err).Msg("outbox relay pass failed")
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RelayOnce publishes at most one batch and returns how many events it sent.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.outbox.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, events); err != nil {
		return 0, err
	}

	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	if err := r.outbox.MarkSent(ctx, ids); err != nil {
		return 0, err
	}

	r.logger.Debug().Int("count", len(events)).Msg("outbox events published")
	return len(events), nil
}
