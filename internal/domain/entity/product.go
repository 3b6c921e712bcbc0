package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxSKULength longitud máxima de un SKU en el catálogo.
const MaxSKULength = 50

// Product representa un producto del catálogo. El SKU es único e inmutable;
// los campos descriptivos pueden actualizarse.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	Category    string
	Brand       string
	UnitPrice   *decimal.Decimal // nil = sin precio
	SupplierID  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
