package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/ingestion"
	"github.com/jhoicas/warehouse-ledger/internal/application/query"
)

// requestIDHeader cabecera de correlación; la middleware requestid la completa si falta.
const requestIDHeader = "X-Request-ID"

// InventoryHandler maneja la ingestión de escaneos y el feed de actividad.
type InventoryHandler struct {
	ingest *ingestion.Service
	query  *query.Service
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ingest *ingestion.Service, queries *query.Service) *InventoryHandler {
	return &InventoryHandler{ingest: ingest, query: queries}
}

// List godoc
// @Summary      Actividad reciente
// @Tags         inventory
// @Produce      json
// @Param        limit   query  int  false  "Límite (1-500)"  default(50)
// @Param        offset  query  int  false  "Offset"          default(0)
// @Success      200     {array}   dto.ActivityDTO
// @Failure      503     {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	items, err := h.query.RecentActivity(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// Create godoc
// @Summary      Registrar escaneo
// @Description  Registra el escaneo en el libro y lo reenvía al subsistema de escaneo.
// @Description  Si el reenvío falla la transacción queda registrada y se devuelve el estado del subsistema.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "sku, product_name, quantity, status"
// @Success      201   {object}  dto.ScanAcceptedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ScanForwardFailedResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.ingest.Ingest(c.UserContext(), requestID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	if ferr := res.ForwardErr(); ferr != nil {
		return c.Status(forwardStatus(res.Forward)).JSON(dto.ScanForwardFailedResponse{
			Error:         "no se pudo reenviar el escaneo al subsistema de escaneo",
			TransactionID: res.TransactionID,
			Recorded:      true,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ScanAcceptedResponse{
		Message:       "escaneo registrado",
		TransactionID: res.TransactionID,
		Forwarded:     res.Forward.Delivered,
	})
}

// forwardStatus replica el código del subsistema cuando es un error HTTP;
// sin respuesta usa 504 (timeout) o 502.
func forwardStatus(out ingestion.ForwardOutcome) int {
	if out.StatusCode >= fiber.StatusBadRequest {
		return out.StatusCode
	}
	if ferr, ok := out.Err.(interface{ Timeout() bool }); ok && ferr.Timeout() {
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusBadGateway
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(requestIDHeader)
}
