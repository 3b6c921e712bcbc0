package ledger_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/ledger"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

func setup(t *testing.T) (*ledger.UseCase, *memory.Store, *entity.Product) {
	t.Helper()
	store := memory.NewStore()
	p := &entity.Product{SKU: "ABC123", Name: "Widget"}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return ledger.NewUseCase(store.Transactions(), store.Products(), store.Locations()), store, p
}

func TestAppend_AssignsIncreasingIDs(t *testing.T) {
	uc, _, p := setup(t)
	ctx := context.Background()

	id1, err := uc.Append(ctx, ledger.AppendInput{ProductID: p.ID, Quantity: 5, Direction: entity.DirectionIN})
	require.NoError(t, err)
	id2, err := uc.Append(ctx, ledger.AppendInput{ProductID: p.ID, Quantity: 2, Direction: entity.DirectionOUT})
	require.NoError(t, err)

	assert.Greater(t, id2, id1)
}

func TestAppend_Validation(t *testing.T) {
	uc, _, p := setup(t)
	ctx := context.Background()
	future := time.Now().Add(time.Hour)

	cases := map[string]struct {
		in    ledger.AppendInput
		field string
	}{
		"cantidad cero":        {ledger.AppendInput{ProductID: p.ID, Quantity: 0, Direction: entity.DirectionIN}, "quantity"},
		"cantidad negativa":    {ledger.AppendInput{ProductID: p.ID, Quantity: -3, Direction: entity.DirectionIN}, "quantity"},
		"cantidad enorme":      {ledger.AppendInput{ProductID: p.ID, Quantity: math.MaxInt32 + 1, Direction: entity.DirectionIN}, "quantity"},
		"sentido inválido":     {ledger.AppendInput{ProductID: p.ID, Quantity: 1, Direction: "MOVE"}, "status"},
		"sin producto":         {ledger.AppendInput{Quantity: 1, Direction: entity.DirectionIN}, "product_id"},
		"producto inexistente": {ledger.AppendInput{ProductID: 999, Quantity: 1, Direction: entity.DirectionIN}, "product_id"},
		"notas largas":         {ledger.AppendInput{ProductID: p.ID, Quantity: 1, Direction: entity.DirectionIN, Notes: strings.Repeat("n", 1001)}, "notes"},
		"escaneo futuro":       {ledger.AppendInput{ProductID: p.ID, Quantity: 1, Direction: entity.DirectionIN, ScannedAt: &future}, "scanned_at"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Append(ctx, tc.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestAppend_UnknownLocation(t *testing.T) {
	uc, _, p := setup(t)
	missing := int64(77)

	_, err := uc.Append(context.Background(), ledger.AppendInput{ProductID: p.ID, LocationID: &missing, Quantity: 1, Direction: entity.DirectionIN})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "location_id")
}

func TestAppend_DefaultsScannedAtToNow(t *testing.T) {
	uc, _, p := setup(t)
	ctx := context.Background()
	before := time.Now()

	_, err := uc.Append(ctx, ledger.AppendInput{ProductID: p.ID, Quantity: 1, Direction: entity.DirectionIN})
	require.NoError(t, err)

	views, err := uc.ListRecent(ctx, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].ScannedAt.Before(before))
}

func TestListRecent_OrderedByScanThenID(t *testing.T) {
	uc, store, p := setup(t)
	ctx := context.Background()
	loc := &entity.Location{Aisle: 1, Shelf: "A", Bin: 2}
	require.NoError(t, store.Locations().Create(ctx, loc))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := at.Add(-time.Minute)
	first, err := uc.Append(ctx, ledger.AppendInput{ProductID: p.ID, Quantity: 1, Direction: entity.DirectionIN, ScannedAt: &at})
	require.NoError(t, err)
	second, err := uc.Append(ctx, ledger.AppendInput{ProductID: p.ID, Quantity: 2, Direction: entity.DirectionIN, ScannedAt: &at, LocationID: &loc.ID})
	require.NoError(t, err)
	oldest, err := uc.Append(ctx, ledger.AppendInput{ProductID: p.ID, Quantity: 3, Direction: entity.DirectionOUT, ScannedAt: &earlier})
	require.NoError(t, err)

	views, err := uc.ListRecent(ctx, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []int64{second, first, oldest}, []int64{views[0].ID, views[1].ID, views[2].ID})
	require.NotNil(t, views[0].Location)
	assert.Equal(t, "01-A-02", views[0].Location.Code())
}

func TestListByProduct(t *testing.T) {
	uc, store, p := setup(t)
	ctx := context.Background()
	other := &entity.Product{SKU: "OTHER", Name: "Otro"}
	require.NoError(t, store.Products().Create(ctx, other))

	_, err := uc.Append(ctx, ledger.AppendInput{ProductID: p.ID, Quantity: 1, Direction: entity.DirectionIN, Notes: "recepción"})
	require.NoError(t, err)
	_, err = uc.Append(ctx, ledger.AppendInput{ProductID: other.ID, Quantity: 1, Direction: entity.DirectionIN})
	require.NoError(t, err)

	out, err := uc.ListByProduct(ctx, p.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "ABC123", out.Items[0].SKU)
	assert.Equal(t, "IN", out.Items[0].Status)
	assert.Equal(t, "recepción", out.Items[0].Notes)
	assert.Equal(t, dto.DefaultPageLimit, out.Page.Limit)

	_, err = uc.ListByProduct(ctx, 12345, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type downLedger struct {
	*memory.TransactionRepo
}

func (downLedger) Append(context.Context, *entity.InventoryTransaction) error {
	return errors.New("dial tcp: connection refused")
}

func TestAppend_StorageFailure(t *testing.T) {
	store := memory.NewStore()
	p := &entity.Product{SKU: "X", Name: "X"}
	require.NoError(t, store.Products().Create(context.Background(), p))
	uc := ledger.NewUseCase(downLedger{store.Transactions()}, store.Products(), store.Locations())

	_, err := uc.Append(context.Background(), ledger.AppendInput{ProductID: p.ID, Quantity: 1, Direction: entity.DirectionIN})
	var serr *domain.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "append transaction", serr.Op)
}
