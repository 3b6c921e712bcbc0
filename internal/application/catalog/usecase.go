// Package catalog contiene el almacén de catálogo: productos, ubicaciones y proveedores
// referenciados por el libro de movimientos.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
)

// resolveAttempts lecturas tras un conflicto de unicidad antes de rendirse.
const resolveAttempts = 3

const (
	maxNameLength     = 255
	maxCategoryLength = 100
	maxBrandLength    = 100
)

// ProductDefaults valores usados solo si el SKU no existe todavía.
type ProductDefaults struct {
	Name        string
	Description string
	Category    string
	Brand       string
	UnitPrice   *decimal.Decimal
	SupplierID  *int64
}

// LocationDefaults valores usados solo si la ubicación no existe todavía.
type LocationDefaults struct {
	Description string
}

// UseCase resuelve y administra el catálogo. La unicidad la garantiza el almacén
// (restricción única + releer ante conflicto), no un lock en proceso: puede haber varias instancias.
type UseCase struct {
	products  repository.ProductRepository
	locations repository.LocationRepository
	suppliers repository.SupplierRepository
	now       func() time.Time
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(
	products repository.ProductRepository,
	locations repository.LocationRepository,
	suppliers repository.SupplierRepository,
) *UseCase {
	return &UseCase{
		products:  products,
		locations: locations,
		suppliers: suppliers,
		now:       time.Now,
	}
}

// ResolveProduct busca por SKU y, si no existe, lo crea con defaults.
// Dos resoluciones concurrentes del mismo SKU terminan en la misma fila.
func (uc *UseCase) ResolveProduct(ctx context.Context, sku string, def ProductDefaults) (*entity.Product, error) {
	sku = strings.TrimSpace(sku)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	validated := false
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		existing, err := uc.products.GetBySKU(ctx, sku)
		if err != nil {
			return nil, domain.AsStorage("get product by sku", err)
		}
		if existing != nil {
			return existing, nil
		}
		if !validated {
			if err := uc.validateProductDefaults(ctx, def); err != nil {
				return nil, err
			}
			validated = true
		}
		product := uc.newProduct(sku, def)
		err = uc.products.Create(ctx, product)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.AsStorage("create product", err)
		}
		// Otra petición lo creó entre la lectura y la inserción: releer.
	}
	return nil, &domain.ConflictError{Entity: "product", Key: sku}
}

// ResolveLocation busca por (aisle, shelf, bin) y, si no existe, la crea.
func (uc *UseCase) ResolveLocation(ctx context.Context, aisle int, shelf string, bin int, def LocationDefaults) (*entity.Location, error) {
	shelf, err := normalizeSlot(aisle, shelf, bin)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < resolveAttempts; attempt++ {
		existing, err := uc.locations.GetBySlot(ctx, aisle, shelf, bin)
		if err != nil {
			return nil, domain.AsStorage("get location", err)
		}
		if existing != nil {
			return existing, nil
		}
		now := uc.now()
		location := &entity.Location{
			Aisle:       aisle,
			Shelf:       shelf,
			Bin:         bin,
			Description: strings.TrimSpace(def.Description),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = uc.locations.Create(ctx, location)
		if err == nil {
			return location, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.AsStorage("create location", err)
		}
	}
	return nil, &domain.ConflictError{Entity: "location", Key: entity.Location{Aisle: aisle, Shelf: shelf, Bin: bin}.Code()}
}

// CreateProduct alta explícita desde la gestión de catálogo. ErrDuplicate si el SKU existe.
func (uc *UseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	def := ProductDefaults{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Brand:       in.Brand,
		UnitPrice:   in.UnitPrice,
		SupplierID:  in.SupplierID,
	}
	if err := uc.validateProductDefaults(ctx, def); err != nil {
		return nil, err
	}
	existing, err := uc.products.GetBySKU(ctx, sku)
	if err != nil {
		return nil, domain.AsStorage("get product by sku", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	product := uc.newProduct(sku, def)
	if err := uc.products.Create(ctx, product); err != nil {
		return nil, domain.AsStorage("create product", err)
	}
	return ToProductResponse(product), nil
}

// GetProduct obtiene un producto por ID.
func (uc *UseCase) GetProduct(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, domain.AsStorage("get product", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// ListProducts lista productos paginados.
func (uc *UseCase) ListProducts(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.Normalize()
	list, err := uc.products.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.AsStorage("list products", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// UpdateProductDetails actualiza solo campos descriptivos. El SKU no se modifica.
func (uc *UseCase) UpdateProductDetails(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, domain.AsStorage("get product", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Brand != nil {
		product.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.UnitPrice != nil {
		product.UnitPrice = in.UnitPrice
	}
	if in.SupplierID != nil {
		product.SupplierID = in.SupplierID
	}
	def := ProductDefaults{
		Name:       product.Name,
		Category:   product.Category,
		Brand:      product.Brand,
		UnitPrice:  product.UnitPrice,
		SupplierID: product.SupplierID,
	}
	if err := uc.validateProductDefaults(ctx, def); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.products.UpdateDetails(ctx, product); err != nil {
		return nil, domain.AsStorage("update product", err)
	}
	return ToProductResponse(product), nil
}

// CreateLocation alta explícita de una ubicación. ErrDuplicate si el triple existe.
func (uc *UseCase) CreateLocation(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	shelf, err := normalizeSlot(in.Aisle, in.Shelf, in.Bin)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	location := &entity.Location{
		Aisle:       in.Aisle,
		Shelf:       shelf,
		Bin:         in.Bin,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.locations.Create(ctx, location); err != nil {
		return nil, domain.AsStorage("create location", err)
	}
	return ToLocationResponse(location), nil
}

// ListLocations lista ubicaciones paginadas.
func (uc *UseCase) ListLocations(ctx context.Context, page dto.PageRequest) ([]dto.LocationResponse, error) {
	page.Normalize()
	list, err := uc.locations.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.AsStorage("list locations", err)
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *ToLocationResponse(l))
	}
	return out, nil
}

// CreateSupplier registra un proveedor.
func (uc *UseCase) CreateSupplier(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.ContactEmail)
	verr := &domain.ValidationError{}
	if name == "" {
		verr.Add("name", "requerido")
	} else if utf8.RuneCountInString(name) > maxNameLength {
		verr.Add("name", "máximo 255 caracteres")
	}
	if email != "" && !strings.Contains(email, "@") {
		verr.Add("contact_email", "email inválido")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	now := uc.now()
	supplier := &entity.Supplier{Name: name, ContactEmail: email, CreatedAt: now, UpdatedAt: now}
	if err := uc.suppliers.Create(ctx, supplier); err != nil {
		return nil, domain.AsStorage("create supplier", err)
	}
	return &dto.SupplierResponse{ID: supplier.ID, Name: supplier.Name, ContactEmail: supplier.ContactEmail, CreatedAt: supplier.CreatedAt}, nil
}

// ListSuppliers lista proveedores paginados.
func (uc *UseCase) ListSuppliers(ctx context.Context, page dto.PageRequest) ([]dto.SupplierResponse, error) {
	page.Normalize()
	list, err := uc.suppliers.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.AsStorage("list suppliers", err)
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SupplierResponse{ID: s.ID, Name: s.Name, ContactEmail: s.ContactEmail, CreatedAt: s.CreatedAt})
	}
	return out, nil
}

func (uc *UseCase) newProduct(sku string, def ProductDefaults) *entity.Product {
	now := uc.now()
	return &entity.Product{
		SKU:         sku,
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Category:    strings.TrimSpace(def.Category),
		Brand:       strings.TrimSpace(def.Brand),
		UnitPrice:   def.UnitPrice,
		SupplierID:  def.SupplierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (uc *UseCase) validateProductDefaults(ctx context.Context, def ProductDefaults) error {
	verr := &domain.ValidationError{}
	name := strings.TrimSpace(def.Name)
	if name == "" {
		verr.Add("name", "requerido")
	} else if utf8.RuneCountInString(name) > maxNameLength {
		verr.Add("name", "máximo 255 caracteres")
	}
	if utf8.RuneCountInString(strings.TrimSpace(def.Category)) > maxCategoryLength {
		verr.Add("category", "máximo 100 caracteres")
	}
	if utf8.RuneCountInString(strings.TrimSpace(def.Brand)) > maxBrandLength {
		verr.Add("brand", "máximo 100 caracteres")
	}
	if def.UnitPrice != nil && def.UnitPrice.IsNegative() {
		verr.Add("unit_price", "no puede ser negativo")
	}
	if !verr.Empty() {
		return verr
	}
	if def.SupplierID != nil {
		supplier, err := uc.suppliers.GetByID(ctx, *def.SupplierID)
		if err != nil {
			return domain.AsStorage("get supplier", err)
		}
		if supplier == nil {
			return domain.NewValidationError("supplier_id", "proveedor no existe")
		}
	}
	return nil
}

func validateSKU(sku string) error {
	if sku == "" {
		return domain.NewValidationError("sku", "requerido")
	}
	if utf8.RuneCountInString(sku) > entity.MaxSKULength {
		return domain.NewValidationError("sku", "máximo 50 caracteres")
	}
	return nil
}

// normalizeSlot valida el triple y devuelve el estante en mayúscula.
func normalizeSlot(aisle int, shelf string, bin int) (string, error) {
	verr := &domain.ValidationError{}
	if aisle < 1 {
		verr.Add("aisle", "debe ser mayor o igual a 1")
	}
	if bin < 1 {
		verr.Add("bin", "debe ser mayor o igual a 1")
	}
	shelf = strings.ToUpper(strings.TrimSpace(shelf))
	r, size := utf8.DecodeRuneInString(shelf)
	if shelf == "" || size != len(shelf) || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
		verr.Add("shelf", "debe ser un único carácter alfanumérico")
	}
	return shelf, verr.OrNil()
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		UnitPrice:   p.UnitPrice,
		SupplierID:  p.SupplierID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToLocationResponse convierte la entidad al DTO de salida.
func ToLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		Aisle:       l.Aisle,
		Shelf:       l.Shelf,
		Bin:         l.Bin,
		Code:        l.Code(),
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
	}
}
