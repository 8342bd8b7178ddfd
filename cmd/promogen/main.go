// Command promogen writes sample promo code lists in the gzip format the API
// loads, then checks them with the same validator the API uses.
package main

import (
	"compress/gzip"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"storefront/internal/config"
	"storefront/internal/model"
	"storefront/internal/promo"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// List membership:
//
//	WELCOME10, FESTIVE26, RICEBRAN1 appear in two or more lists (valid)
//	ONLYONE111, ONLYTWO222, ONLYTHREE3 appear in one list (invalid)
var lists = map[string][]string{
	"promobase1.gz": {"WELCOME10", "FESTIVE26", "RICEBRAN1", "ONLYONE111"},
	"promobase2.gz": {"WELCOME10", "FESTIVE26", "ONLYTWO222"},
	"promobase3.gz": {"RICEBRAN1", "FESTIVE26", "ONLYTHREE3"},
}

func main() {
	dir := flag.String("dir", "promos", "output directory for the code lists")
	flag.Parse()

	logger := config.NewLogger(config.LoggerConfig{Level: "info", Format: "console"})

	if err := run(context.Background(), *dir, logger); err != nil {
		logger.Fatal().Err(err).Msg("promo generation failed")
	}
}

func run(ctx context.Context, dir string, logger zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	files := make([]string, 0, len(lists))
	for _, name := range []string{"promobase1.gz", "promobase2.gz", "promobase3.gz"} {
		path := filepath.Join(dir, name)
		if err := writeList(path, lists[name]); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		logger.Info().Str("file", path).Int("codes", len(lists[name])).Msg("promo list written")
		files = append(files, path)
	}

	v, err := promo.NewValidator(ctx, promo.Config{
		Files:           files,
		MinMatches:      2,
		DiscountPercent: decimal.NewFromInt(10),
	}, promo.NewFileLoader(logger), logger)
	if err != nil {
		return fmt.Errorf("failed to load generated lists: %w", err)
	}
	defer v.Close()

	seen := make(map[string]bool)
	for _, name := range []string{"promobase1.gz", "promobase2.gz", "promobase3.gz"} {
		for _, code := range lists[name] {
			if seen[code] {
				continue
			}
			seen[code] = true

			err := v.Validate(ctx, code)
			switch {
			case err == nil:
				logger.Info().Str("code", code).Msg("valid")
			case errors.Is(err, model.ErrInvalidPromoCode):
				logger.Info().Str("code", code).Msg("invalid")
			default:
				return fmt.Errorf("unexpected result for %s: %w", code, err)
			}
		}
	}

	return nil
}

func writeList(path string, codes []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	for _, code := range codes {
		if _, err := fmt.Fprintf(gz, "%s\n", code); err != nil {
			gz.Close()
			return fmt.Errorf("failed to write code: %w", err)
		}
	}
	return gz.Close()
}
