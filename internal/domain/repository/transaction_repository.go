package repository

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// TransactionRepository puerto del libro de movimientos. Solo admite inserción:
// no existe operación de actualización ni borrado.
type TransactionRepository interface {
	// Append persiste la transacción y completa ID y CreatedAt. El ID es monótono creciente.
	Append(ctx context.Context, tx *entity.InventoryTransaction) error

	// ListRecent devuelve transacciones unidas con producto y ubicación,
	// ordenadas por scanned_at DESC y luego id DESC.
	ListRecent(ctx context.Context, limit, offset int) ([]entity.TransactionView, error)

	// ListByProduct igual que ListRecent, filtrado por producto.
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]entity.TransactionView, error)

	// ScanMovements recorre todo el libro una sola vez sobre una instantánea consistente.
	ScanMovements(ctx context.Context, fn func(entity.Movement) error) error

	// ScanProductMovements recorre los movimientos de un producto.
	ScanProductMovements(ctx context.Context, productID int64, fn func(entity.Movement) error) error
}
