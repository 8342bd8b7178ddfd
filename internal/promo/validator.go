package promo

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config controls which lists are loaded and how a code is judged.
type Config struct {
	Files           []string
	MinMatches      int
	DiscountPercent decimal.Decimal
}

type validator struct {
	sets       []CodeSet
	minMatches int
	percent    decimal.Decimal
	logger     zerolog.Logger
}

// NewValidator loads every configured list concurrently. Any load failure
// aborts construction.
func NewValidator(ctx context.Context, cfg Config, loader Loader, logger zerolog.Logger) (Validator, error) {
	logger = logger.With().Str("component", "promo-validator").Logger()

	if cfg.MinMatches < 1 || cfg.MinMatches > len(cfg.Files) {
		return nil, fmt.Errorf("min matches %d out of range for %d files", cfg.MinMatches, len(cfg.Files))
	}

	sets := make([]CodeSet, len(cfg.Files))
	errs := make([]error, len(cfg.Files))

	var wg sync.WaitGroup
	for i, path := range cfg.Files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sets[i], errs[i] = loader.Load(ctx, path)
		}(i, path)
	}
	wg.Wait()

	total := 0
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to load promo file %s: %w", cfg.Files[i], err)
		}
		total += sets[i].Size()
	}

	logger.Info().
		Int("files", len(sets)).
		Int("codes", total).
		Int("min_matches", cfg.MinMatches).
		Str("discount_percent", cfg.DiscountPercent.String()).
		Msg("promo validator ready")

	return &validator{
		sets:       sets,
		minMatches: cfg.MinMatches,
		percent:    cfg.DiscountPercent,
		logger:     logger,
	}, nil
}

func (v *validator) Validate(ctx context.Context, code string) error {
	if n := utf8.RuneCountInString(code); n < MinCodeLength || n > MaxCodeLength {
		return model.ErrInvalidPromoLength
	}

	matches := v.countMatches(ctx, code)
	if matches < v.minMatches {
		v.logger.Debug().
			Str("promo_code", code).
			Int("matches", matches).
			Msg("promo code rejected")
		return model.ErrInvalidPromoCode
	}

	return nil
}

// countMatches checks the sets in parallel and stops as soon as the outcome
// is decided either way.
func (v *validator) countMatches(ctx context.Context, code string) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan bool, len(v.sets))
	for _, set := range v.sets {
		go func(s CodeSet) {
			if ctx.Err() != nil {
				results <- false
				return
			}
			results <- s.Contains(code)
		}(set)
	}

	matches := 0
	for checked := 1; checked <= len(v.sets); checked++ {
		select {
		case found := <-results:
			if found {
				matches++
			}
			if matches >= v.minMatches || matches+len(v.sets)-checked < v.minMatches {
				return matches
			}
		case <-ctx.Done():
			return matches
		}
	}

	return matches
}

func (v *validator) DiscountPercent() decimal.Decimal {
	return v.percent
}

func (v *validator) Close() error {
	v.sets = nil
	v.logger.Info().Msg("promo validator closed")
	return nil
}

type disabled struct{}

// Disabled rejects every code. Used when promo codes are switched off.
func Disabled() Validator {
	return disabled{}
}

func (disabled) Validate(context.Context, string) error { return model.ErrInvalidPromoCode }
func (disabled) DiscountPercent() decimal.Decimal       { return decimal.Zero }
func (disabled) Close() error                           { return nil }
