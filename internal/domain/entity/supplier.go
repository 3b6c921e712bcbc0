package entity

import "time"

// Supplier proveedor referenciado opcionalmente por los productos.
type Supplier struct {
	ID           int64
	Name         string
	ContactEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
