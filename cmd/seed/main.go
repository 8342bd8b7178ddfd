// Command seed loads a demo catalogue, two users and a customer cart into the
// configured database. Running it again updates the same rows in place.
package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	Name     string
	Size     string
	SKU      string
	Price    string
	MRP      string
	Discount string
	Stock    int
	Active   bool
}

type seedUser struct {
	Email      string
	FullName   string
	Phone      string
	Line1      string
	City       string
	State      string
	PostalCode string
}

var catalogue = []seedProduct{
	{"Refined Rice Bran Oil - 1L", "1L", "RBO-1L-001", "180.00", "200.00", "10", 500, true},
	{"Refined Rice Bran Oil - 5L", "5L", "RBO-5L-001", "850.00", "950.00", "11", 300, true},
	{"Refined Rice Bran Oil - 15L", "15L", "RBO-15L-001", "2400.00", "2700.00", "11", 200, true},
	{"Cold Pressed Rice Bran Oil - 1L", "1L", "CP-RBO-1L-001", "250.00", "280.00", "11", 150, true},
	{"Premium Rice Bran Oil - 1L", "1L", "PREM-RBO-1L-001", "220.00", "250.00", "12", 250, true},
	{"Rice Bran Oil Gift Pack - 2x1L", "2L", "RBO-GIFT-001", "380.00", "420.00", "10", 100, true},
	{"Refined Rice Bran Oil - 500ml", "500ml", "RBO-500ML-001", "95.00", "105.00", "0", 0, false},
}

type seedCartLine struct {
	Email    string
	SKU      string
	Quantity int
}

var users = []seedUser{
	{"admin@storefront.local", "Store Admin", "9000000001", "1 Warehouse Road", "Pune", "MH", "411001"},
	{"customer@storefront.local", "Demo Customer", "9000000002", "42 Market Street", "Mumbai", "MH", "400001"},
}

// The customer's cart prices to 180*0.9*2 + 850*0.89 = 1080.50, above the free shipping threshold.
var carts = []seedCartLine{
	{"customer@storefront.local", "RBO-1L-001", 2},
	{"customer@storefront.local", "RBO-5L-001", 1},
}

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logger)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, using process environment")
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, p := range catalogue {
			id, err := upsertProduct(ctx, tx, p)
			if err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
			}
			logger.Info().Int64("product_id", id).Str("sku", p.SKU).Bool("active", p.Active).Msg("product seeded")
		}

		for _, u := range users {
			id, err := upsertUser(ctx, tx, u)
			if err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
			}
			logger.Info().Int64("user_id", id).Str("email", u.Email).Msg("user seeded")
		}

		for _, c := range carts {
			if err := upsertCartLine(ctx, tx, c); err != nil {
				return fmt.Errorf("failed to seed cart line %s/%s: %w", c.Email, c.SKU, err)
			}
		}
		logger.Info().Int("lines", len(carts)).Msg("carts seeded")

		return nil
	})
}

func upsertProduct(ctx context.Context, tx pgx.Tx, p seedProduct) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO products (name, size, sku, price, mrp, discount_percentage, stock_quantity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			size = EXCLUDED.size,
			price = EXCLUDED.price,
			mrp = EXCLUDED.mrp,
			discount_percentage = EXCLUDED.discount_percentage,
			stock_quantity = EXCLUDED.stock_quantity,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id`,
		p.Name, p.Size, p.SKU,
		decimal.RequireFromString(p.Price),
		decimal.RequireFromString(p.MRP),
		decimal.RequireFromString(p.Discount),
		p.Stock, p.Active,
	).Scan(&id)
	return id, err
}

func upsertUser(ctx context.Context, tx pgx.Tx, u seedUser) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO users (email, full_name, phone, address_line1, city, state, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			address_line1 = EXCLUDED.address_line1,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			postal_code = EXCLUDED.postal_code
		RETURNING id`,
		u.Email, u.FullName, u.Phone, u.Line1, u.City, u.State, u.PostalCode,
	).Scan(&id)
	return id, err
}

func upsertCartLine(ctx context.Context, tx pgx.Tx, c seedCartLine) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		SELECT u.id, p.id, $3
		FROM users u, products p
		WHERE u.email = $1 AND p.sku = $2
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			updated_at = NOW()`,
		c.Email, c.SKU, c.Quantity,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("user or product missing")
	}
	return nil
}
