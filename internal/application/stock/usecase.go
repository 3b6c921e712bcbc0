// Package stock deriva saldos de inventario a partir del libro de movimientos.
// El saldo nunca se almacena: cada consulta es un fold puro sobre la historia.
package stock

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

const productPageSize = 500

// StockReport saldos de todos los productos con movimientos y sus anomalías.
type StockReport struct {
	GeneratedAt time.Time
	Levels      map[int64]entity.StockLevel
	Anomalies   []inventory.StockAnomaly
}

// UseCase proyector de stock.
type UseCase struct {
	transactions repository.TransactionRepository
	products     repository.ProductRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewUseCase construye el proyector.
func NewUseCase(transactions repository.TransactionRepository, products repository.ProductRepository, log zerolog.Logger) *UseCase {
	return &UseCase{transactions: transactions, products: products, log: log, now: time.Now}
}

// QuantityOnHand saldo de un producto. Un saldo negativo se devuelve tal cual con Anomaly=true.
func (uc *UseCase) QuantityOnHand(ctx context.Context, productID int64) (entity.StockLevel, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return entity.StockLevel{}, domain.AsStorage("get product", err)
	}
	if product == nil {
		return entity.StockLevel{}, domain.ErrNotFound
	}

	fold := inventory.NewStockFold()
	err = uc.transactions.ScanProductMovements(ctx, productID, func(m entity.Movement) error {
		fold.Apply(m)
		return nil
	})
	if err != nil {
		return entity.StockLevel{}, domain.AsStorage("scan product movements", err)
	}
	lvl := fold.Level(productID)
	if lvl.Anomaly {
		uc.log.Warn().Int64("product_id", productID).Int64("on_hand", lvl.OnHand).Msg("stock negativo detectado")
	}
	return lvl, nil
}

// QuantityOnHandAll recorre el libro una sola vez sobre una instantánea y devuelve todos los saldos.
func (uc *UseCase) QuantityOnHandAll(ctx context.Context) (*StockReport, error) {
	fold := inventory.NewStockFold()
	err := uc.transactions.ScanMovements(ctx, func(m entity.Movement) error {
		fold.Apply(m)
		return nil
	})
	if err != nil {
		return nil, domain.AsStorage("scan movements", err)
	}

	levels := fold.Levels()
	report := &StockReport{
		GeneratedAt: uc.now(),
		Levels:      levels,
		Anomalies:   inventory.Anomalies(levels),
	}
	for _, a := range report.Anomalies {
		uc.log.Warn().Int64("product_id", a.ProductID).Int64("on_hand", a.OnHand).Msg("stock negativo detectado")
	}
	return report, nil
}

// Report arma la respuesta de GET /api/stock con SKU y nombre de cada producto.
// Los productos sin movimientos aparecen con saldo cero.
func (uc *UseCase) Report(ctx context.Context) (*dto.StockReportResponse, error) {
	report, err := uc.QuantityOnHandAll(ctx)
	if err != nil {
		return nil, err
	}

	out := &dto.StockReportResponse{
		GeneratedAt: report.GeneratedAt,
		Levels:      make([]dto.StockLevelDTO, 0, len(report.Levels)),
		Anomalies:   make([]dto.StockAnomalyDTO, 0, len(report.Anomalies)),
	}
	seen := make(map[int64]bool, len(report.Levels))
	for offset := 0; ; offset += productPageSize {
		page, err := uc.products.List(ctx, productPageSize, offset)
		if err != nil {
			return nil, domain.AsStorage("list products", err)
		}
		for _, p := range page {
			lvl, ok := report.Levels[p.ID]
			if !ok {
				lvl = entity.StockLevel{ProductID: p.ID}
			}
			seen[p.ID] = true
			row := ToStockLevelDTO(lvl)
			row.SKU = p.SKU
			row.Name = p.Name
			out.Levels = append(out.Levels, row)
		}
		if len(page) < productPageSize {
			break
		}
	}
	// un producto creado entre el recorrido del libro y el listado no puede tener movimientos
	// en la instantánea, pero sí puede ocurrir lo inverso con páginas desplazadas
	for id, lvl := range report.Levels {
		if !seen[id] {
			out.Levels = append(out.Levels, ToStockLevelDTO(lvl))
		}
	}
	sort.Slice(out.Levels, func(i, j int) bool { return out.Levels[i].ProductID < out.Levels[j].ProductID })

	for _, a := range report.Anomalies {
		out.Anomalies = append(out.Anomalies, dto.StockAnomalyDTO{ProductID: a.ProductID, OnHand: a.OnHand})
	}
	return out, nil
}

// ToStockLevelDTO convierte un saldo al DTO.
func ToStockLevelDTO(lvl entity.StockLevel) dto.StockLevelDTO {
	return dto.StockLevelDTO{
		ProductID: lvl.ProductID,
		InQty:     lvl.InQty,
		OutQty:    lvl.OutQty,
		OnHand:    lvl.OnHand,
		Anomaly:   lvl.Anomaly,
	}
}
