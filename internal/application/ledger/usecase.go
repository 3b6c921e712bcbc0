// Package ledger expone el libro de movimientos de inventario: registro de solo inserción
// y lecturas ordenadas. Es el sistema de registro del stock.
package ledger

import (
	"context"
	"math"
	"time"
	"unicode/utf8"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// MaxQuantity cota superior de una transacción; la columna quantity es INT (int4).
const MaxQuantity = math.MaxInt32

const (
	maxNotesLength = 1000
	// maxClockSkew tolerancia para escaneos con reloj adelantado en el dispositivo.
	maxClockSkew = 5 * time.Minute
)

// AppendInput entrada para registrar una transacción.
type AppendInput struct {
	ProductID  int64
	LocationID *int64
	Quantity   int
	Direction  entity.Direction
	ScannedAt  *time.Time // nil = hora de ingreso
	Notes      string
}

// UseCase registra y lee transacciones. Append es la única mutación.
type UseCase struct {
	transactions repository.TransactionRepository
	products     repository.ProductRepository
	locations    repository.LocationRepository
	now          func() time.Time
}

// NewUseCase construye el caso de uso del libro.
func NewUseCase(
	transactions repository.TransactionRepository,
	products repository.ProductRepository,
	locations repository.LocationRepository,
) *UseCase {
	return &UseCase{
		transactions: transactions,
		products:     products,
		locations:    locations,
		now:          time.Now,
	}
}

// Append valida y persiste una transacción; devuelve su ID.
func (uc *UseCase) Append(ctx context.Context, in AppendInput) (int64, error) {
	now := uc.now()
	verr := &domain.ValidationError{}
	if in.ProductID <= 0 {
		verr.Add("product_id", "requerido")
	}
	switch {
	case in.Quantity <= 0:
		verr.Add("quantity", "debe ser un entero positivo")
	case in.Quantity > MaxQuantity:
		verr.Add("quantity", "excede el máximo permitido")
	}
	if !in.Direction.Valid() {
		verr.Add("status", "debe ser IN u OUT")
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		verr.Add("notes", "máximo 1000 caracteres")
	}
	if in.ScannedAt != nil && in.ScannedAt.After(now.Add(maxClockSkew)) {
		verr.Add("scanned_at", "no puede estar en el futuro")
	}
	if err := verr.OrNil(); err != nil {
		return 0, err
	}

	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return 0, domain.AsStorage("get product", err)
	}
	if product == nil {
		return 0, domain.NewValidationError("product_id", "producto no existe")
	}
	if in.LocationID != nil {
		location, err := uc.locations.GetByID(ctx, *in.LocationID)
		if err != nil {
			return 0, domain.AsStorage("get location", err)
		}
		if location == nil {
			return 0, domain.NewValidationError("location_id", "ubicación no existe")
		}
	}

	tx := &entity.InventoryTransaction{
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Quantity:   in.Quantity,
		Direction:  in.Direction,
		ScannedAt:  now,
		Notes:      in.Notes,
	}
	if in.ScannedAt != nil {
		tx.ScannedAt = *in.ScannedAt
	}
	if err := uc.transactions.Append(ctx, tx); err != nil {
		return 0, domain.AsStorage("append transaction", err)
	}
	return tx.ID, nil
}

// ListRecent devuelve la página más reciente del libro (scanned_at DESC, id DESC).
func (uc *UseCase) ListRecent(ctx context.Context, page dto.PageRequest) ([]entity.TransactionView, error) {
	page.Normalize()
	views, err := uc.transactions.ListRecent(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.AsStorage("list recent transactions", err)
	}
	return views, nil
}

// ListByProduct historial de un producto con el mismo orden que ListRecent.
func (uc *UseCase) ListByProduct(ctx context.Context, productID int64, page dto.PageRequest) (*dto.TransactionListResponse, error) {
	page.Normalize()
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, domain.AsStorage("get product", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	views, err := uc.transactions.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.AsStorage("list product transactions", err)
	}
	items := make([]dto.TransactionDTO, 0, len(views))
	for _, v := range views {
		items = append(items, ToTransactionDTO(v))
	}
	return &dto.TransactionListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// ToTransactionDTO convierte la vista al DTO de historial.
func ToTransactionDTO(v entity.TransactionView) dto.TransactionDTO {
	out := dto.TransactionDTO{
		ID:          v.ID,
		ProductID:   v.ProductID,
		SKU:         v.SKU,
		ProductName: v.ProductName,
		Quantity:    v.Quantity,
		Status:      string(v.Direction),
		ScannedAt:   v.ScannedAt,
		Notes:       v.Notes,
		CreatedAt:   v.CreatedAt,
	}
	if v.Location != nil {
		out.Location = v.Location.Code()
	}
	return out
}
