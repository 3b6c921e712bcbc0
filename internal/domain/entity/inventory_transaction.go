package entity

import "time"

// Direction sentido de un movimiento. La cantidad siempre es positiva; el sentido codifica entrada o salida.
type Direction string

const (
	DirectionIN  Direction = "IN"  // entrada
	DirectionOUT Direction = "OUT" // salida
)

// Valid indica si el sentido es uno de los admitidos.
func (d Direction) Valid() bool {
	return d == DirectionIN || d == DirectionOUT
}

// Sign devuelve +1 para IN y -1 para OUT.
func (d Direction) Sign() int {
	if d == DirectionOUT {
		return -1
	}
	return 1
}

// InventoryTransaction entrada del libro de movimientos. Inmutable una vez persistida:
// las correcciones se registran como nuevas transacciones compensatorias.
type InventoryTransaction struct {
	ID         int64
	ProductID  int64
	LocationID *int64
	Quantity   int
	Direction  Direction
	ScannedAt  time.Time
	Notes      string
	CreatedAt  time.Time
}

// TransactionView transacción unida con los datos de catálogo para lecturas.
type TransactionView struct {
	ID          int64
	ProductID   int64
	SKU         string
	ProductName string
	Location    *Location
	Quantity    int
	Direction   Direction
	ScannedAt   time.Time
	Notes       string
	CreatedAt   time.Time
}

// Movement proyección mínima de una transacción usada por el proyector de stock.
type Movement struct {
	ProductID int64
	Quantity  int
	Direction Direction
}
