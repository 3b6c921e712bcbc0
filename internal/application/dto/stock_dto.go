package dto

import "time"

// StockLevelDTO saldo derivado de un producto. Anomaly = saldo negativo a revisar por un operador.
type StockLevelDTO struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	InQty     int64  `json:"in_qty"`
	OutQty    int64  `json:"out_qty"`
	OnHand    int64  `json:"on_hand"`
	Anomaly   bool   `json:"anomaly"`
}

// StockAnomalyDTO saldo negativo detectado por el proyector.
type StockAnomalyDTO struct {
	ProductID int64 `json:"product_id"`
	OnHand    int64 `json:"on_hand"`
}

// StockReportResponse respuesta de GET /api/stock.
type StockReportResponse struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Levels      []StockLevelDTO   `json:"levels"`
	Anomalies   []StockAnomalyDTO `json:"anomalies"`
}
