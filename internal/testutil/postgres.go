// Package testutil starts throwaway PostgreSQL instances and seeds them for
// repository, inventory and end-to-end tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the application schema
// applied. Skipped under -short.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)
	poolConfig.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Truncate empties every table and resets sequences.
func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), `
		TRUNCATE outbox, checkout_idempotency, stock_reservations, order_items, orders,
			cart_items, products, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// ProductSeed describes a catalogue row to insert.
type ProductSeed struct {
	Name     string
	Size     string
	SKU      string
	Price    string
	Discount string
	Stock    int
	Inactive bool
}

// SeedUser inserts a user with a complete shipping profile and returns its id.
func (db *TestDB) SeedUser(t *testing.T, email string) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (email, full_name, phone, address_line1, city, state, postal_code)
		VALUES ($1, 'Test Shopper', '9876543210', '221B Baker Street', 'Pune', 'Maharashtra', '411001')
		RETURNING id`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedProduct inserts a product and returns its id.
func (db *TestDB) SeedProduct(t *testing.T, p ProductSeed) int64 {
	t.Helper()

	if p.SKU == "" {
		p.SKU = fmt.Sprintf("SKU-%d", time.Now().UnixNano())
	}
	if p.Discount == "" {
		p.Discount = "0"
	}
	price := decimal.RequireFromString(p.Price)

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO products (name, size, sku, price, mrp, discount_percentage, stock_quantity, is_active)
		VALUES ($1, $2, $3, $4, $4, $5, $6, $7)
		RETURNING id`,
		p.Name, p.Size, p.SKU, price, decimal.RequireFromString(p.Discount), p.Stock, !p.Inactive,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// AddToCart writes a cart line directly.
func (db *TestDB) AddToCart(t *testing.T, userID, productID int64, quantity int) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), `
		INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		userID, productID, quantity)
	require.NoError(t, err)
}

// Stock returns the current stock of a product.
func (db *TestDB) Stock(t *testing.T, productID int64) int {
	t.Helper()
	var stock int
	err := db.Pool.QueryRow(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

// Count returns SELECT COUNT(*) for a table, optionally filtered by a where clause.
func (db *TestDB) Count(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, db.Pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}
