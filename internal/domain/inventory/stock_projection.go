package inventory

import (
	"sort"

	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

// StockAnomaly saldo derivado negativo. No es un error: es un resultado marcado
// para que el consumidor lo muestre al operador.
type StockAnomaly struct {
	ProductID int64
	OnHand    int64
}

// StockFold acumula movimientos en saldos por producto (servicio de dominio, sin efectos).
// OnHand = Σ(IN) − Σ(OUT).
type StockFold struct {
	levels map[int64]*entity.StockLevel
}

// NewStockFold crea un acumulador vacío.
func NewStockFold() *StockFold {
	return &StockFold{levels: make(map[int64]*entity.StockLevel)}
}

// Apply suma un movimiento. Movimientos con sentido desconocido se ignoran.
func (f *StockFold) Apply(m entity.Movement) {
	if !m.Direction.Valid() {
		return
	}
	lvl, ok := f.levels[m.ProductID]
	if !ok {
		lvl = &entity.StockLevel{ProductID: m.ProductID}
		f.levels[m.ProductID] = lvl
	}
	qty := int64(m.Quantity)
	if m.Direction == entity.DirectionIN {
		lvl.InQty += qty
	} else {
		lvl.OutQty += qty
	}
	lvl.OnHand = lvl.InQty - lvl.OutQty
	lvl.Anomaly = lvl.OnHand < 0
}

// Level devuelve el saldo de un producto; cero si no tuvo movimientos.
func (f *StockFold) Level(productID int64) entity.StockLevel {
	if lvl, ok := f.levels[productID]; ok {
		return *lvl
	}
	return entity.StockLevel{ProductID: productID}
}

// Levels devuelve una copia de todos los saldos.
func (f *StockFold) Levels() map[int64]entity.StockLevel {
	out := make(map[int64]entity.StockLevel, len(f.levels))
	for id, lvl := range f.levels {
		out[id] = *lvl
	}
	return out
}

// Fold proyecta una historia completa en una pasada.
func Fold(history []entity.Movement) map[int64]entity.StockLevel {
	f := NewStockFold()
	for _, m := range history {
		f.Apply(m)
	}
	return f.Levels()
}

// Anomalies lista los saldos negativos ordenados por producto.
func Anomalies(levels map[int64]entity.StockLevel) []StockAnomaly {
	var out []StockAnomaly
	for _, lvl := range levels {
		if lvl.Anomaly {
			out = append(out, StockAnomaly{ProductID: lvl.ProductID, OnHand: lvl.OnHand})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
