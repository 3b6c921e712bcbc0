package repository

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location.
// Create devuelve domain.ErrDuplicate si el triple (aisle, shelf, bin) ya existe.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	GetBySlot(ctx context.Context, aisle int, shelf string, bin int) (*entity.Location, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)
}
