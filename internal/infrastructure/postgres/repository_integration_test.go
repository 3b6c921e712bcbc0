package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
)

// testPool abre la base de TEST_DATABASE_URL, aplica migraciones y vacía las tablas.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	_, err = pool.Exec(ctx, `TRUNCATE inventory_transactions, products, locations, suppliers RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	versions, err := postgres.AppliedMigrations(ctx, pool)
	require.NoError(t, err)
	assert.Contains(t, versions, "001_init")
}

func TestProductRepo_RoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	suppliers := postgres.NewSupplierRepository(pool)
	products := postgres.NewProductRepository(pool)

	sup := &entity.Supplier{Name: "Global Tech Inc."}
	require.NoError(t, suppliers.Create(ctx, sup))

	price := decimal.RequireFromString("19.99")
	p := &entity.Product{SKU: "ELEC-GLO-0001", Name: "Smart Widget", UnitPrice: &price, SupplierID: &sup.ID}
	require.NoError(t, products.Create(ctx, p))
	assert.NotZero(t, p.ID)

	got, err := products.GetBySKU(ctx, "ELEC-GLO-0001")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.UnitPrice)
	assert.True(t, price.Equal(*got.UnitPrice))
	assert.Equal(t, "", got.Description)

	err = products.Create(ctx, &entity.Product{SKU: "ELEC-GLO-0001", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	missing, err := products.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLocationRepo_UniqueSlot(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := postgres.NewLocationRepository(pool)

	require.NoError(t, repo.Create(ctx, &entity.Location{Aisle: 3, Shelf: "B", Bin: 12}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Location{Aisle: 3, Shelf: "B", Bin: 12}), domain.ErrDuplicate)

	l, err := repo.GetBySlot(ctx, 3, "B", 12)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "03-B-12", l.Code())
}

func TestTransactionRepo_AppendListAndScan(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)
	ledger := postgres.NewTransactionRepository(pool, postgres.NewTxRunner(pool))

	p := &entity.Product{SKU: "ABC123", Name: "Widget"}
	require.NoError(t, products.Create(ctx, p))

	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	var ids []int64
	for _, dir := range []entity.Direction{entity.DirectionIN, entity.DirectionIN, entity.DirectionOUT} {
		tx := &entity.InventoryTransaction{ProductID: p.ID, Quantity: 5, Direction: dir, ScannedAt: at}
		require.NoError(t, ledger.Append(ctx, tx))
		ids = append(ids, tx.ID)
	}
	assert.Less(t, ids[0], ids[1])

	views, err := ledger.ListRecent(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, ids[2], views[0].ID)
	assert.Equal(t, "ABC123", views[0].SKU)
	assert.Nil(t, views[0].Location)

	var onHand int64
	require.NoError(t, ledger.ScanMovements(ctx, func(m entity.Movement) error {
		onHand += int64(m.Direction.Sign() * m.Quantity)
		return nil
	}))
	assert.Equal(t, int64(5), onHand)

	err = ledger.Append(ctx, &entity.InventoryTransaction{ProductID: 424242, Quantity: 1, Direction: entity.DirectionIN})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_ConcurrentCreateSameSKU(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	products := postgres.NewProductRepository(pool)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		created    int
		duplicates int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := products.Create(ctx, &entity.Product{SKU: "RACE", Name: fmt.Sprintf("n%d", i)})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, domain.ErrDuplicate) {
				duplicates++
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, created)
	assert.Equal(t, 19, duplicates)
}
