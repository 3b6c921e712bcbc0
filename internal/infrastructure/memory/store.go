// Package memory implementa los puertos de persistencia en memoria con las mismas
// garantías que PostgreSQL: SKU y ubicación únicos, claves foráneas, IDs monótonos
// y orden estable del libro. Pensado para desarrollo local (STORAGE_DRIVER=memory) y tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository     = (*ProductRepo)(nil)
	_ repository.LocationRepository    = (*LocationRepo)(nil)
	_ repository.SupplierRepository    = (*SupplierRepo)(nil)
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
)

type slotKey struct {
	aisle int
	shelf string
	bin   int
}

// Store estado compartido por los repositorios en memoria.
type Store struct {
	mu sync.RWMutex

	products     map[int64]entity.Product
	productBySKU map[string]int64
	locations    map[int64]entity.Location
	locationBy   map[slotKey]int64
	suppliers    map[int64]entity.Supplier
	transactions []entity.InventoryTransaction

	nextProduct, nextLocation, nextSupplier, nextTransaction int64

	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:     make(map[int64]entity.Product),
		productBySKU: make(map[string]int64),
		locations:    make(map[int64]entity.Location),
		locationBy:   make(map[slotKey]int64),
		suppliers:    make(map[int64]entity.Supplier),
		now:          time.Now,
	}
}

// Products devuelve el repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Locations devuelve el repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Suppliers devuelve el repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Transactions devuelve el libro de movimientos.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

func window(n, limit, offset int) (int, int) {
	if offset >= n {
		return n, n
	}
	end := offset + limit
	if limit <= 0 || end > n {
		end = n
	}
	return offset, end
}

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.productBySKU[p.SKU]; ok {
		return domain.ErrDuplicate
	}
	if p.SupplierID != nil {
		if _, ok := r.s.suppliers[*p.SupplierID]; !ok {
			return domain.ErrNotFound
		}
	}
	r.s.nextProduct++
	p.ID = r.s.nextProduct
	r.s.products[p.ID] = *p
	r.s.productBySKU[p.SKU] = p.ID
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.productBySKU[sku]
	if !ok {
		return nil, nil
	}
	p := r.s.products[id]
	return &p, nil
}

func (r *ProductRepo) UpdateDetails(ctx context.Context, p *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name, cur.Description, cur.Category, cur.Brand = p.Name, p.Description, p.Category, p.Brand
	cur.UnitPrice, cur.SupplierID, cur.UpdatedAt = p.UnitPrice, p.SupplierID, p.UpdatedAt
	r.s.products[p.ID] = cur
	return nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]int64, 0, len(r.s.products))
	for id := range r.s.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	from, to := window(len(ids), limit, offset)
	out := make([]*entity.Product, 0, to-from)
	for _, id := range ids[from:to] {
		p := r.s.products[id]
		out = append(out, &p)
	}
	return out, nil
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ s *Store }

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := slotKey{l.Aisle, l.Shelf, l.Bin}
	if _, ok := r.s.locationBy[key]; ok {
		return domain.ErrDuplicate
	}
	r.s.nextLocation++
	l.ID = r.s.nextLocation
	r.s.locations[l.ID] = *l
	r.s.locationBy[key] = l.ID
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LocationRepo) GetBySlot(ctx context.Context, aisle int, shelf string, bin int) (*entity.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.locationBy[slotKey{aisle, shelf, bin}]
	if !ok {
		return nil, nil
	}
	l := r.s.locations[id]
	return &l, nil
}

func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Aisle != b.Aisle {
			return a.Aisle < b.Aisle
		}
		if a.Shelf != b.Shelf {
			return a.Shelf < b.Shelf
		}
		return a.Bin < b.Bin
	})
	from, to := window(len(all), limit, offset)
	out := make([]*entity.Location, 0, to-from)
	for i := from; i < to; i++ {
		l := all[i]
		out = append(out, &l)
	}
	return out, nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ s *Store }

func (r *SupplierRepo) Create(ctx context.Context, sup *entity.Supplier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextSupplier++
	sup.ID = r.s.nextSupplier
	r.s.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id int64) (*entity.Supplier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &sup, nil
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]int64, 0, len(r.s.suppliers))
	for id := range r.s.suppliers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	from, to := window(len(ids), limit, offset)
	out := make([]*entity.Supplier, 0, to-from)
	for _, id := range ids[from:to] {
		sup := r.s.suppliers[id]
		out = append(out, &sup)
	}
	return out, nil
}

// TransactionRepo libro de movimientos en memoria (solo inserción).
type TransactionRepo struct{ s *Store }

func (r *TransactionRepo) Append(ctx context.Context, tx *entity.InventoryTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[tx.ProductID]; !ok {
		return domain.ErrNotFound
	}
	if tx.LocationID != nil {
		if _, ok := r.s.locations[*tx.LocationID]; !ok {
			return domain.ErrNotFound
		}
	}
	r.s.nextTransaction++
	tx.ID = r.s.nextTransaction
	tx.CreatedAt = r.s.now()
	if tx.ScannedAt.IsZero() {
		tx.ScannedAt = tx.CreatedAt
	}
	r.s.transactions = append(r.s.transactions, *tx)
	return nil
}

func (r *TransactionRepo) ListRecent(ctx context.Context, limit, offset int) ([]entity.TransactionView, error) {
	return r.list(ctx, func(entity.InventoryTransaction) bool { return true }, limit, offset)
}

func (r *TransactionRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]entity.TransactionView, error) {
	return r.list(ctx, func(t entity.InventoryTransaction) bool { return t.ProductID == productID }, limit, offset)
}

func (r *TransactionRepo) list(ctx context.Context, keep func(entity.InventoryTransaction) bool, limit, offset int) ([]entity.TransactionView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	selected := make([]entity.InventoryTransaction, 0, len(r.s.transactions))
	for _, t := range r.s.transactions {
		if keep(t) {
			selected = append(selected, t)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.ScannedAt.Equal(b.ScannedAt) {
			return a.ScannedAt.After(b.ScannedAt)
		}
		return a.ID > b.ID
	})
	from, to := window(len(selected), limit, offset)
	out := make([]entity.TransactionView, 0, to-from)
	for _, t := range selected[from:to] {
		p := r.s.products[t.ProductID]
		view := entity.TransactionView{
			ID:          t.ID,
			ProductID:   t.ProductID,
			SKU:         p.SKU,
			ProductName: p.Name,
			Quantity:    t.Quantity,
			Direction:   t.Direction,
			ScannedAt:   t.ScannedAt,
			Notes:       t.Notes,
			CreatedAt:   t.CreatedAt,
		}
		if t.LocationID != nil {
			l := r.s.locations[*t.LocationID]
			view.Location = &l
		}
		out = append(out, view)
	}
	return out, nil
}

// ScanMovements recorre una copia tomada bajo lock: los appends posteriores no se observan.
func (r *TransactionRepo) ScanMovements(ctx context.Context, fn func(entity.Movement) error) error {
	return r.scan(ctx, func(entity.InventoryTransaction) bool { return true }, fn)
}

func (r *TransactionRepo) ScanProductMovements(ctx context.Context, productID int64, fn func(entity.Movement) error) error {
	return r.scan(ctx, func(t entity.InventoryTransaction) bool { return t.ProductID == productID }, fn)
}

func (r *TransactionRepo) scan(ctx context.Context, keep func(entity.InventoryTransaction) bool, fn func(entity.Movement) error) error {
	r.s.mu.RLock()
	snapshot := make([]entity.InventoryTransaction, len(r.s.transactions))
	copy(snapshot, r.s.transactions)
	r.s.mu.RUnlock()

	for _, t := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !keep(t) {
			continue
		}
		if err := fn(entity.Movement{ProductID: t.ProductID, Quantity: t.Quantity, Direction: t.Direction}); err != nil {
			return err
		}
	}
	return nil
}
