package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialecto postgres para goqu

	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

var dialect = goqu.Dialect("postgres")

// TransactionRepo libro de movimientos sobre PostgreSQL. Solo INSERT y SELECT.
type TransactionRepo struct {
	q         Querier
	snapshots *TxRunner // nil: las lecturas completas corren directamente sobre q
}

// NewTransactionRepository construye el adaptador del libro. snapshots puede ser nil
// cuando q ya es una transacción.
func NewTransactionRepository(q Querier, snapshots *TxRunner) *TransactionRepo {
	return &TransactionRepo{q: q, snapshots: snapshots}
}

// Append inserta la transacción; si ScannedAt es cero se usa now() del servidor.
func (r *TransactionRepo) Append(ctx context.Context, tx *entity.InventoryTransaction) error {
	var scannedAt *time.Time
	if !tx.ScannedAt.IsZero() {
		scannedAt = &tx.ScannedAt
	}
	query := `
		INSERT INTO inventory_transactions (product_id, location_id, quantity, status, scanned_at, notes)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), $6)
		RETURNING id, scanned_at, created_at`
	err := r.q.QueryRow(ctx, query,
		tx.ProductID, tx.LocationID, tx.Quantity, string(tx.Direction), scannedAt, nullIfEmpty(tx.Notes),
	).Scan(&tx.ID, &tx.ScannedAt, &tx.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert inventory transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) ListRecent(ctx context.Context, limit, offset int) ([]entity.TransactionView, error) {
	return r.listViews(ctx, recentQuery(nil, limit, offset))
}

func (r *TransactionRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]entity.TransactionView, error) {
	return r.listViews(ctx, recentQuery(&productID, limit, offset))
}

// recentQuery arma el SELECT unido con producto y ubicación,
// ordenado por scanned_at DESC y luego id DESC.
func recentQuery(productID *int64, limit, offset int) *goqu.SelectDataset {
	ds := dialect.
		From(goqu.T("inventory_transactions").As("t")).
		Join(goqu.T("products").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("t.product_id")))).
		LeftJoin(goqu.T("locations").As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("t.location_id")))).
		Select(
			"t.id", "t.product_id", "p.sku", "p.name",
			"l.id", "l.aisle", "l.shelf", "l.bin",
			"t.quantity", "t.status", "t.scanned_at",
			goqu.L("COALESCE(t.notes, '')").As("notes"),
			"t.created_at",
		).
		Order(goqu.I("t.scanned_at").Desc(), goqu.I("t.id").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		Prepared(true)
	if productID != nil {
		ds = ds.Where(goqu.I("t.product_id").Eq(*productID))
	}
	return ds
}

func (r *TransactionRepo) listViews(ctx context.Context, ds *goqu.SelectDataset) ([]entity.TransactionView, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ledger query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory transactions: %w", err)
	}
	defer rows.Close()

	list := make([]entity.TransactionView, 0)
	for rows.Next() {
		var (
			v      entity.TransactionView
			status string
			locID  *int64
			aisle  *int
			shelf  *string
			bin    *int
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.ProductName,
			&locID, &aisle, &shelf, &bin,
			&v.Quantity, &status, &v.ScannedAt, &v.Notes, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory transaction: %w", err)
		}
		v.Direction = entity.Direction(status)
		if locID != nil {
			v.Location = &entity.Location{ID: *locID, Aisle: *aisle, Shelf: *shelf, Bin: *bin}
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// ScanMovements recorre el libro completo dentro de una instantánea de solo lectura.
func (r *TransactionRepo) ScanMovements(ctx context.Context, fn func(entity.Movement) error) error {
	return r.scan(ctx, `SELECT product_id, quantity, status FROM inventory_transactions`, nil, fn)
}

func (r *TransactionRepo) ScanProductMovements(ctx context.Context, productID int64, fn func(entity.Movement) error) error {
	return r.scan(ctx, `SELECT product_id, quantity, status FROM inventory_transactions WHERE product_id = $1`,
		[]any{productID}, fn)
}

func (r *TransactionRepo) scan(ctx context.Context, query string, args []any, fn func(entity.Movement) error) error {
	read := func(q Querier) error {
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("scan movements: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				m      entity.Movement
				status string
			)
			if err := rows.Scan(&m.ProductID, &m.Quantity, &status); err != nil {
				return fmt.Errorf("scan movement: %w", err)
			}
			m.Direction = entity.Direction(status)
			if err := fn(m); err != nil {
				return err
			}
		}
		return rows.Err()
	}
	if r.snapshots == nil {
		return read(r.q)
	}
	return r.snapshots.ReadSnapshot(ctx, read)
}
