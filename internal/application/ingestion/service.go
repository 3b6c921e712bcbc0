// Package ingestion recibe escaneos, los registra en el libro y los reenvía al
// subsistema de escaneo externo.
package ingestion

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-ledger/internal/application/catalog"
	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/ledger"
	"github.com/jhoicas/warehouse-ledger/internal/application/ports"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

const (
	maxScanSKULength      = 20
	defaultForwardTimeout = 5 * time.Second
)

// Config configuración explícita del servicio. ScannerURL vacío desactiva el reenvío.
type Config struct {
	ScannerURL     string
	ForwardTimeout time.Duration
}

// Catalog resolución de referencias de catálogo usada al ingerir.
type Catalog interface {
	ResolveProduct(ctx context.Context, sku string, def catalog.ProductDefaults) (*entity.Product, error)
	ResolveLocation(ctx context.Context, aisle int, shelf string, bin int, def catalog.LocationDefaults) (*entity.Location, error)
}

// Ledger registro de transacciones.
type Ledger interface {
	Append(ctx context.Context, in ledger.AppendInput) (int64, error)
}

// ForwardOutcome resultado del reenvío, independiente del registro.
type ForwardOutcome struct {
	Attempted  bool
	Delivered  bool
	StatusCode int
	Err        error // *domain.ForwardingError cuando Attempted && !Delivered
}

// Result informe en dos fases: qué se registró y qué pasó con el reenvío.
type Result struct {
	TransactionID int64
	ProductID     int64
	RequestID     string
	Forward       ForwardOutcome
}

// ForwardErr devuelve el ForwardingError del reenvío, si lo hubo.
func (r *Result) ForwardErr() *domain.ForwardingError {
	var ferr *domain.ForwardingError
	if r != nil && errors.As(r.Forward.Err, &ferr) {
		return ferr
	}
	return nil
}

// Service servicio de ingestión.
type Service struct {
	cfg       Config
	catalog   Catalog
	ledger    Ledger
	forwarder ports.ScannerForwarder
	cache     ports.ActivityCache // opcional
	log       zerolog.Logger
}

// NewService construye el servicio. cache puede ser nil.
func NewService(cfg Config, resolver Catalog, book Ledger, forwarder ports.ScannerForwarder, cache ports.ActivityCache, log zerolog.Logger) *Service {
	if cfg.ForwardTimeout <= 0 {
		cfg.ForwardTimeout = defaultForwardTimeout
	}
	s := &Service{cfg: cfg, catalog: resolver, ledger: book, forwarder: forwarder, cache: cache, log: log}
	if !s.forwardingEnabled() {
		log.Warn().Msg("reenvío al escáner desactivado: SCANNER_URL vacío")
	}
	return s
}

func (s *Service) forwardingEnabled() bool {
	return s.cfg.ScannerURL != "" && s.forwarder != nil
}

// Ingest valida, resuelve el producto, registra y reenvía.
// El error devuelto es de validación, conflicto o almacenamiento; en ese caso no se reenvía nada.
// Un fallo de reenvío no es error de Ingest: viaja en Result.Forward y el registro permanece.
func (s *Service) Ingest(ctx context.Context, requestID string, req dto.ScanRequest) (*Result, error) {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.SKU = strings.TrimSpace(req.SKU)
	req.ProductName = strings.TrimSpace(req.ProductName)
	req.Status = strings.TrimSpace(req.Status)
	if err := validate(req); err != nil {
		return nil, err
	}
	log := s.log.With().Str("request_id", requestID).Str("sku", req.SKU).Logger()

	product, err := s.catalog.ResolveProduct(ctx, req.SKU, catalog.ProductDefaults{Name: req.ProductName})
	if err != nil {
		return nil, err
	}

	in := ledger.AppendInput{
		ProductID: product.ID,
		Quantity:  req.Quantity,
		Direction: entity.Direction(req.Status),
		ScannedAt: req.ScannedAt,
		Notes:     req.Notes,
	}
	if req.Location != nil {
		loc, err := s.catalog.ResolveLocation(ctx, req.Location.Aisle, req.Location.Shelf, req.Location.Bin, catalog.LocationDefaults{})
		if err != nil {
			return nil, err
		}
		in.LocationID = &loc.ID
	}

	txID, err := s.ledger.Append(ctx, in)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("transaction_id", txID).Str("status", req.Status).Int("quantity", req.Quantity).Msg("escaneo registrado")

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("no se pudo invalidar la caché de actividad")
		}
	}

	res := &Result{TransactionID: txID, ProductID: product.ID, RequestID: requestID}
	if !s.forwardingEnabled() {
		return res, nil
	}
	res.Forward = s.forward(ctx, requestID, req)
	if res.Forward.Err != nil {
		ev := log.Error().Err(res.Forward.Err).Int64("transaction_id", txID)
		if ferr := res.ForwardErr(); ferr != nil {
			ev = ev.Int("upstream_status", ferr.StatusCode).Str("upstream_body", ferr.Body)
		}
		ev.Msg("el subsistema de escaneo rechazó el reenvío")
	}
	return res, nil
}

func (s *Service) forward(ctx context.Context, requestID string, req dto.ScanRequest) ForwardOutcome {
	fctx, cancel := context.WithTimeout(ctx, s.cfg.ForwardTimeout)
	defer cancel()

	out := ForwardOutcome{Attempted: true}
	err := s.forwarder.Forward(fctx, s.cfg.ScannerURL, requestID, ports.ScanPayload{
		SKU:         req.SKU,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Status:      req.Status,
	})
	if err == nil {
		out.Delivered = true
		return out
	}
	var ferr *domain.ForwardingError
	if !errors.As(err, &ferr) {
		ferr = &domain.ForwardingError{Err: err}
	}
	out.StatusCode = ferr.StatusCode
	out.Err = ferr
	return out
}

func validate(req dto.ScanRequest) error {
	verr := &domain.ValidationError{}
	switch {
	case req.SKU == "":
		verr.Add("sku", "requerido")
	case utf8.RuneCountInString(req.SKU) > maxScanSKULength:
		verr.Add("sku", "máximo 20 caracteres")
	}
	if req.ProductName == "" {
		verr.Add("product_name", "requerido")
	}
	switch {
	case req.Quantity <= 0:
		verr.Add("quantity", "debe ser un entero positivo")
	case req.Quantity > ledger.MaxQuantity:
		verr.Add("quantity", "excede el máximo permitido")
	}
	// IN/OUT exactos, sin normalizar mayúsculas.
	if !entity.Direction(req.Status).Valid() {
		verr.Add("status", "debe ser IN u OUT")
	}
	if req.Location != nil {
		if req.Location.Aisle < 1 {
			verr.Add("location.aisle", "debe ser mayor o igual a 1")
		}
		if req.Location.Bin < 1 {
			verr.Add("location.bin", "debe ser mayor o igual a 1")
		}
	}
	return verr.OrNil()
}
