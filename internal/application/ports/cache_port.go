package ports

import (
	"context"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
)

// ActivityCache modelo de lectura cacheado del feed de actividad reciente.
// Get devuelve la versión vigente aun sin hit; Set recibe esa misma versión.
type ActivityCache interface {
	Get(ctx context.Context, limit, offset int) (items []dto.ActivityDTO, version int64, hit bool, err error)
	Set(ctx context.Context, version int64, limit, offset int, items []dto.ActivityDTO) error
	// Invalidate descarta todas las páginas cacheadas; se invoca tras cada append.
	Invalidate(ctx context.Context) error
}
