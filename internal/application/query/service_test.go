package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/query"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

// mapCache caché versionada en memoria con la misma semántica que la de Redis.
type mapCache struct {
	version int64
	pages   map[[3]int64][]dto.ActivityDTO
	getErr  error
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{pages: make(map[[3]int64][]dto.ActivityDTO)}
}

func (c *mapCache) Get(_ context.Context, limit, offset int) ([]dto.ActivityDTO, int64, bool, error) {
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	items, ok := c.pages[[3]int64{c.version, int64(limit), int64(offset)}]
	return items, c.version, ok, nil
}

func (c *mapCache) Set(_ context.Context, version int64, limit, offset int, items []dto.ActivityDTO) error {
	c.sets++
	c.pages[[3]int64{version, int64(limit), int64(offset)}] = items
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.version++
	return nil
}

// racingLedger ejecuta afterList una sola vez, entre la lectura del libro y el guardado en caché.
type racingLedger struct {
	*memory.TransactionRepo
	afterList func()
}

func (r *racingLedger) ListRecent(ctx context.Context, limit, offset int) ([]entity.TransactionView, error) {
	views, err := r.TransactionRepo.ListRecent(ctx, limit, offset)
	if r.afterList != nil {
		hook := r.afterList
		r.afterList = nil
		hook()
	}
	return views, err
}

func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	p := &entity.Product{SKU: "ABC123", Name: "Widget"}
	require.NoError(t, store.Products().Create(ctx, p))
	base := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	for i, dir := range []entity.Direction{entity.DirectionIN, entity.DirectionOUT, entity.DirectionIN} {
		require.NoError(t, store.Transactions().Append(ctx, &entity.InventoryTransaction{
			ProductID: p.ID, Quantity: 5, Direction: dir, ScannedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func TestRecentActivity_NewestFirst(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	svc := query.NewService(store.Transactions(), nil, zerolog.Nop())

	items, err := svc.RecentActivity(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Equal(t, "ABC123", items[0].SKU)
	assert.Equal(t, "Widget", items[0].ProductName)
	assert.Equal(t, "OUT", items[1].Status)
	assert.True(t, items[0].LastScanned.After(items[1].LastScanned))
}

func TestRecentActivity_ReadsThroughCache(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	cache := newMapCache()
	svc := query.NewService(store.Transactions(), cache, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.RecentActivity(ctx, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.RecentActivity(ctx, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
}

func TestRecentActivity_CacheErrorFallsBack(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	cache := newMapCache()
	cache.getErr = errors.New("redis: connection refused")
	svc := query.NewService(store.Transactions(), cache, zerolog.Nop())

	items, err := svc.RecentActivity(context.Background(), dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].ID)
	assert.Zero(t, cache.sets)
}

// Un append confirmado mientras se arma la página no queda oculto por la caché.
func TestRecentActivity_AppendDuringMissIsVisible(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	p := &entity.Product{SKU: "ABC123", Name: "Widget"}
	require.NoError(t, store.Products().Create(ctx, p))

	cache := newMapCache()
	ledger := &racingLedger{TransactionRepo: store.Transactions()}
	ledger.afterList = func() {
		require.NoError(t, store.Transactions().Append(ctx, &entity.InventoryTransaction{
			ProductID: p.ID, Quantity: 5, Direction: entity.DirectionIN,
		}))
		require.NoError(t, cache.Invalidate(ctx))
	}
	svc := query.NewService(ledger, cache, zerolog.Nop())

	stale, err := svc.RecentActivity(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, stale)

	fresh, err := svc.RecentActivity(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "ABC123", fresh[0].SKU)
}
