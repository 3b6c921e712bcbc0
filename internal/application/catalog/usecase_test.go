package catalog_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/internal/application/catalog"
	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
)

func newCatalog() (*catalog.UseCase, *memory.Store) {
	store := memory.NewStore()
	return catalog.NewUseCase(store.Products(), store.Locations(), store.Suppliers()), store
}

func TestResolveProduct_CreatesOnFirstReference(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	p, err := uc.ResolveProduct(ctx, " ABC123 ", catalog.ProductDefaults{Name: "Widget"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "ABC123", p.SKU)

	// Segunda resolución: mismos datos, los defaults se ignoran.
	again, err := uc.ResolveProduct(ctx, "ABC123", catalog.ProductDefaults{Name: "Otro nombre"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "Widget", again.Name)
}

// 100 resoluciones concurrentes del mismo SKU producen una sola fila.
func TestResolveProduct_ConcurrentSameSKU(t *testing.T) {
	uc, store := newCatalog()
	ctx := context.Background()

	const workers = 100
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			p, err := uc.ResolveProduct(ctx, "RACE-1", catalog.ProductDefaults{Name: "Carrera"})
			errs[i] = err
			if p != nil {
				ids[i] = p.ID
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	all, err := store.Products().List(ctx, 1000, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResolveProduct_Validation(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	_, err := uc.ResolveProduct(ctx, "", catalog.ProductDefaults{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ResolveProduct(ctx, strings.Repeat("A", 51), catalog.ProductDefaults{Name: "x"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "sku")

	_, err = uc.ResolveProduct(ctx, "NEW-1", catalog.ProductDefaults{})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	neg := decimal.NewFromInt(-1)
	_, err = uc.ResolveProduct(ctx, "NEW-2", catalog.ProductDefaults{Name: "x", UnitPrice: &neg})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "unit_price")

	missingSupplier := int64(99)
	_, err = uc.ResolveProduct(ctx, "NEW-3", catalog.ProductDefaults{Name: "x", SupplierID: &missingSupplier})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "supplier_id")
}

// duplicateOnceRepo simula otra instancia que inserta el SKU entre la lectura y el insert.
type duplicateOnceRepo struct {
	*memory.ProductRepo
	once sync.Once
}

func (r *duplicateOnceRepo) Create(ctx context.Context, p *entity.Product) error {
	var raced bool
	r.once.Do(func() {
		raced = true
		_ = r.ProductRepo.Create(ctx, &entity.Product{SKU: p.SKU, Name: "Creado por otra instancia"})
	})
	if raced {
		return domain.ErrDuplicate
	}
	return r.ProductRepo.Create(ctx, p)
}

func TestResolveProduct_RereadsAfterDuplicate(t *testing.T) {
	store := memory.NewStore()
	repo := &duplicateOnceRepo{ProductRepo: store.Products()}
	uc := catalog.NewUseCase(repo, store.Locations(), store.Suppliers())

	p, err := uc.ResolveProduct(context.Background(), "RACE-2", catalog.ProductDefaults{Name: "Mío"})
	require.NoError(t, err)
	assert.Equal(t, "Creado por otra instancia", p.Name)
}

// alwaysDuplicateRepo nunca encuentra el SKU y siempre choca: conflicto no idempotente.
type alwaysDuplicateRepo struct {
	*memory.ProductRepo
}

func (r alwaysDuplicateRepo) Create(context.Context, *entity.Product) error {
	return domain.ErrDuplicate
}

func TestResolveProduct_ConflictAfterRetries(t *testing.T) {
	store := memory.NewStore()
	uc := catalog.NewUseCase(alwaysDuplicateRepo{store.Products()}, store.Locations(), store.Suppliers())

	_, err := uc.ResolveProduct(context.Background(), "GHOST", catalog.ProductDefaults{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

type brokenProductRepo struct {
	*memory.ProductRepo
}

func (brokenProductRepo) GetBySKU(context.Context, string) (*entity.Product, error) {
	return nil, errors.New("connection refused")
}

func TestResolveProduct_StorageFailure(t *testing.T) {
	store := memory.NewStore()
	uc := catalog.NewUseCase(brokenProductRepo{store.Products()}, store.Locations(), store.Suppliers())

	_, err := uc.ResolveProduct(context.Background(), "X", catalog.ProductDefaults{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestResolveLocation_UniqueTripleAndNormalization(t *testing.T) {
	uc, store := newCatalog()
	ctx := context.Background()

	a, err := uc.ResolveLocation(ctx, 3, "b", 12, catalog.LocationDefaults{Description: "Frío"})
	require.NoError(t, err)
	assert.Equal(t, "B", a.Shelf)

	b, err := uc.ResolveLocation(ctx, 3, "B", 12, catalog.LocationDefaults{})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ResolveLocation(ctx, 4, "C", 1, catalog.LocationDefaults{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := store.Locations().List(ctx, 100, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResolveLocation_Validation(t *testing.T) {
	uc, _ := newCatalog()

	_, err := uc.ResolveLocation(context.Background(), 0, "AB", -1, catalog.LocationDefaults{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "aisle")
	assert.Contains(t, verr.Fields, "shelf")
	assert.Contains(t, verr.Fields, "bin")
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "P-1", Name: "Uno"})
	require.NoError(t, err)

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "P-1", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUpdateProductDetails_KeepsSKU(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	sup, err := uc.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: "Global Tech Inc.", ContactEmail: "sales@globaltech.com"})
	require.NoError(t, err)

	created, err := uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "P-1", Name: "Uno"})
	require.NoError(t, err)

	name := "Uno renombrado"
	price := decimal.RequireFromString("12.50")
	updated, err := uc.UpdateProductDetails(ctx, created.ID, dto.UpdateProductRequest{Name: &name, UnitPrice: &price, SupplierID: &sup.ID})
	require.NoError(t, err)
	assert.Equal(t, "P-1", updated.SKU)
	assert.Equal(t, name, updated.Name)
	assert.True(t, price.Equal(*updated.UnitPrice))

	got, err := uc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)

	_, err = uc.UpdateProductDetails(ctx, 999, dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty := ""
	_, err = uc.UpdateProductDetails(ctx, created.ID, dto.UpdateProductRequest{Name: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSupplier_Validation(t *testing.T) {
	uc, _ := newCatalog()

	_, err := uc.CreateSupplier(context.Background(), dto.CreateSupplierRequest{ContactEmail: "no-arroba"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "contact_email")
}

func TestListProducts_Paginates(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()
	for _, sku := range []string{"A", "B", "C"} {
		_, err := uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: sku, Name: sku})
		require.NoError(t, err)
	}

	page, err := uc.ListProducts(ctx, dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "B", page.Items[0].SKU)
	assert.Equal(t, 2, page.Page.Limit)
}
