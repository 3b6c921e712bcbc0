package dto

import "time"

// LocationRef ubicación opcional de un escaneo.
type LocationRef struct {
	Aisle int    `json:"aisle"`
	Shelf string `json:"shelf"`
	Bin   int    `json:"bin"`
}

// ScanRequest body para POST /api/inventory.
// sku, product_name, quantity y status son obligatorios; el resto es opcional.
type ScanRequest struct {
	SKU         string       `json:"sku"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	Status      string       `json:"status"`
	Location    *LocationRef `json:"location,omitempty"`
	ScannedAt   *time.Time   `json:"scanned_at,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

// ScanAcceptedResponse respuesta 201 de POST /api/inventory.
type ScanAcceptedResponse struct {
	Message       string `json:"message"`
	TransactionID int64  `json:"transaction_id"`
	Forwarded     bool   `json:"forwarded"`
}

// ScanForwardFailedResponse respuesta cuando el escaneo quedó registrado pero el reenvío falló.
type ScanForwardFailedResponse struct {
	Error         string `json:"error"`
	TransactionID int64  `json:"transaction_id"`
	Recorded      bool   `json:"recorded"`
}

// ActivityDTO elemento de GET /api/inventory (feed de actividad para el dashboard).
type ActivityDTO struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	LastScanned time.Time `json:"last_scanned"`
}

// TransactionDTO detalle de una transacción del libro (historial por producto).
type TransactionDTO struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"product_name"`
	Location    string    `json:"location,omitempty"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	ScannedAt   time.Time `json:"scanned_at"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionListResponse historial paginado.
type TransactionListResponse struct {
	Items []TransactionDTO `json:"items"`
	Page  PageResponse     `json:"page"`
}
