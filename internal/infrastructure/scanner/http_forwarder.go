// Package scanner reenvía escaneos registrados al subsistema de escaneo externo por HTTP.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/jhoicas/warehouse-ledger/internal/application/ports"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
)

// Verificar en tiempo de compilación que HTTPForwarder implementa ScannerForwarder.
var _ ports.ScannerForwarder = (*HTTPForwarder)(nil)

const (
	// RequestIDHeader cabecera de correlación con el subsistema externo.
	RequestIDHeader = "X-Request-ID"

	maxBodyExcerpt = 512
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPForwarder adaptador HTTP del puerto ScannerForwarder.
type HTTPForwarder struct {
	httpClient *http.Client
}

// NewHTTPForwarder construye el adaptador. timeout es el tope de red por llamada;
// el servicio de ingestión impone además un context.WithTimeout.
func NewHTTPForwarder(timeout time.Duration) *HTTPForwarder {
	return &HTTPForwarder{httpClient: &http.Client{Timeout: timeout}}
}

// Forward envía el payload como JSON. 2xx = entregado; cualquier otro caso devuelve *domain.ForwardingError.
func (f *HTTPForwarder) Forward(ctx context.Context, target, requestID string, payload ports.ScanPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.ForwardingError{Err: fmt.Errorf("serializar payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return &domain.ForwardingError{Err: fmt.Errorf("crear HTTP request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &domain.ForwardingError{Err: ctx.Err()}
		}
		return &domain.ForwardingError{Err: fmt.Errorf("llamada HTTP fallida: %w", err)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ForwardingError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}
