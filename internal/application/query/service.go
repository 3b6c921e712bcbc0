// Package query expone las lecturas de solo consulta para el dashboard.
package query

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/ports"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// Service feed de actividad reciente. No modifica nada.
type Service struct {
	transactions repository.TransactionRepository
	cache        ports.ActivityCache // opcional
	log          zerolog.Logger
}

// NewService construye el servicio de consultas. cache puede ser nil.
func NewService(transactions repository.TransactionRepository, cache ports.ActivityCache, log zerolog.Logger) *Service {
	return &Service{transactions: transactions, cache: cache, log: log}
}

// RecentActivity últimas transacciones ordenadas por last_scanned DESC (desempate por id DESC).
// Con caché configurada se lee primero de ella; un fallo de caché cae al libro.
func (s *Service) RecentActivity(ctx context.Context, page dto.PageRequest) ([]dto.ActivityDTO, error) {
	page.Normalize()

	// version se lee antes que el libro; solo se guarda la página si la lectura de caché funcionó.
	var (
		version   int64
		cacheable bool
	)
	if s.cache != nil {
		items, ver, hit, err := s.cache.Get(ctx, page.Limit, page.Offset)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("caché de actividad no disponible, leyendo del libro")
		case hit:
			return items, nil
		default:
			version, cacheable = ver, true
		}
	}

	views, err := s.transactions.ListRecent(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.AsStorage("list recent transactions", err)
	}
	items := make([]dto.ActivityDTO, 0, len(views))
	for _, v := range views {
		items = append(items, ToActivityDTO(v))
	}

	if cacheable {
		if err := s.cache.Set(ctx, version, page.Limit, page.Offset, items); err != nil {
			s.log.Warn().Err(err).Msg("no se pudo guardar la página de actividad en caché")
		}
	}
	return items, nil
}

// ToActivityDTO proyecta una transacción al elemento del feed.
func ToActivityDTO(v entity.TransactionView) dto.ActivityDTO {
	return dto.ActivityDTO{
		ID:          v.ID,
		SKU:         v.SKU,
		ProductName: v.ProductName,
		Quantity:    v.Quantity,
		Status:      string(v.Direction),
		LastScanned: v.ScannedAt,
	}
}
