package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"storefront/internal/model"
	"storefront/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) ObserveReservation(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[result]++
}

func (r *countingRecorder) get(result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[result]
}

func TestGuard_Reserve_RejectsNonPositiveQuantity(t *testing.T) {
	guard := NewGuard(nil, zerolog.Nop())

	for _, q := range []int{0, -1} {
		res, err := guard.Reserve(context.Background(), nil, uuid.New(), 1, q)
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
		assert.Nil(t, res)
	}
}

func withTx(t *testing.T, db *testutil.TestDB, fn func(tx pgx.Tx)) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.Pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	fn(tx)
}

func TestGuard_Reserve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	recorder := &countingRecorder{}
	guard := NewGuard(recorder, zerolog.Nop())
	ctx := context.Background()

	t.Run("Exact quantity drains stock to zero", func(t *testing.T) {
		id := db.SeedProduct(t, testutil.ProductSeed{Name: "Mug", Price: "10.00", Stock: 3})

		withTx(t, db, func(tx pgx.Tx) {
			res, err := guard.Reserve(ctx, tx, uuid.New(), id, 3)
			require.NoError(t, err)
			assert.Equal(t, 0, res.Remaining)
			require.NoError(t, tx.Commit(ctx))
		})

		assert.Equal(t, 0, db.Stock(t, id))
	})

	t.Run("Insufficient stock reports availability", func(t *testing.T) {
		id := db.SeedProduct(t, testutil.ProductSeed{Name: "Cap", Price: "10.00", Stock: 2})

		withTx(t, db, func(tx pgx.Tx) {
			_, err := guard.Reserve(ctx, tx, uuid.New(), id, 3)
			require.ErrorIs(t, err, model.ErrInsufficientStock)

			var stockErr *model.InsufficientStockError
			require.True(t, errors.As(err, &stockErr))
			assert.Equal(t, 3, stockErr.Requested)
			assert.Equal(t, 2, stockErr.Available)
		})

		assert.Equal(t, 2, db.Stock(t, id))
	})

	t.Run("Inactive product is unavailable", func(t *testing.T) {
		id := db.SeedProduct(t, testutil.ProductSeed{Name: "Old", Price: "10.00", Stock: 9, Inactive: true})

		withTx(t, db, func(tx pgx.Tx) {
			_, err := guard.Reserve(ctx, tx, uuid.New(), id, 1)
			assert.ErrorIs(t, err, model.ErrProductUnavailable)
		})

		assert.Equal(t, 9, db.Stock(t, id))
	})

	t.Run("Missing product is unavailable", func(t *testing.T) {
		withTx(t, db, func(tx pgx.Tx) {
			_, err := guard.Reserve(ctx, tx, uuid.New(), 987654, 1)
			assert.ErrorIs(t, err, model.ErrProductUnavailable)
		})
	})

	t.Run("Repeating a reservation is a no-op", func(t *testing.T) {
		id := db.SeedProduct(t, testutil.ProductSeed{Name: "Pen", Price: "2.00", Stock: 10})
		checkoutID := uuid.New()

		withTx(t, db, func(tx pgx.Tx) {
			first, err := guard.Reserve(ctx, tx, checkoutID, id, 4)
			require.NoError(t, err)

			second, err := guard.Reserve(ctx, tx, checkoutID, id, 4)
			require.NoError(t, err)
			assert.Equal(t, first.Remaining, second.Remaining)

			_, err = guard.Reserve(ctx, tx, checkoutID, id, 5)
			assert.ErrorIs(t, err, model.ErrReservationConflict)

			require.NoError(t, tx.Commit(ctx))
		})

		assert.Equal(t, 6, db.Stock(t, id))
		assert.GreaterOrEqual(t, recorder.get(ResultReplayed), 1)
	})

	t.Run("Rollback restores stock", func(t *testing.T) {
		id := db.SeedProduct(t, testutil.ProductSeed{Name: "Bag", Price: "5.00", Stock: 4})

		withTx(t, db, func(tx pgx.Tx) {
			_, err := guard.Reserve(ctx, tx, uuid.New(), id, 4)
			require.NoError(t, err)
		})

		assert.Equal(t, 4, db.Stock(t, id))
		assert.Equal(t, 0, db.Count(t, "stock_reservations", "product_id = $1", id))
	})
}

func TestGuard_Reserve_ConcurrentLastUnit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	guard := NewGuard(nil, zerolog.Nop())
	ctx := context.Background()

	id := db.SeedProduct(t, testutil.ProductSeed{Name: "Last one", Price: "99.00", Stock: 1})

	const buyers = 8
	var (
		wg           sync.WaitGroup
		successes    atomic.Int32
		insufficient atomic.Int32
		start        = make(chan struct{})
	)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			tx, err := db.Pool.Begin(ctx)
			if err != nil {
				return
			}
			defer tx.Rollback(ctx)

			_, err = guard.Reserve(ctx, tx, uuid.New(), id, 1)
			switch {
			case err == nil:
				if tx.Commit(ctx) == nil {
					successes.Add(1)
				}
			case errors.Is(err, model.ErrInsufficientStock):
				insufficient.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(buyers-1), insufficient.Load())
	assert.Equal(t, 0, db.Stock(t, id))
}
