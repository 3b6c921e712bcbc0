package ports

import "context"

// ScanPayload copia validada de un escaneo tal como la recibe el subsistema externo.
type ScanPayload struct {
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"`
}

// ScannerForwarder define el puerto de salida hacia el subsistema de escaneo externo.
// Es un canal lateral de mejor esfuerzo: un fallo devuelve *domain.ForwardingError
// y nunca deshace el registro ya confirmado en el libro.
type ScannerForwarder interface {
	// Forward envía el payload a target. requestID se propaga como cabecera para correlación.
	// El vencimiento del contexto se reporta como ForwardingError.
	Forward(ctx context.Context, target, requestID string, payload ScanPayload) error
}
