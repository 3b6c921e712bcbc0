package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto desde la gestión de catálogo.
type CreateProductRequest struct {
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Brand       string           `json:"brand"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	SupplierID  *int64           `json:"supplier_id"`
}

// UpdateProductRequest solo campos descriptivos; el SKU es inmutable.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Brand       *string          `json:"brand"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	SupplierID  *int64           `json:"supplier_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          int64            `json:"id"`
	SKU         string           `json:"sku"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category,omitempty"`
	Brand       string           `json:"brand,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	SupplierID  *int64           `json:"supplier_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
