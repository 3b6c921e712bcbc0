package dto

import "time"

// CreateLocationRequest entrada para registrar una ubicación.
type CreateLocationRequest struct {
	Aisle       int    `json:"aisle"`
	Shelf       string `json:"shelf"`
	Bin         int    `json:"bin"`
	Description string `json:"description"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID          int64     `json:"id"`
	Aisle       int       `json:"aisle"`
	Shelf       string    `json:"shelf"`
	Bin         int       `json:"bin"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSupplierRequest entrada para registrar un proveedor.
type CreateSupplierRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
