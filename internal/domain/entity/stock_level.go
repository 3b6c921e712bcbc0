package entity

// StockLevel cantidad disponible derivada de los movimientos de un producto.
// Anomaly marca un saldo negativo: se devuelve tal cual, nunca se recorta a cero.
type StockLevel struct {
	ProductID int64
	InQty     int64
	OutQty    int64
	OnHand    int64
	Anomaly   bool
}
