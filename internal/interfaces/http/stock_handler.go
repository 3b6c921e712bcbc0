package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/stock"
)

// StockHandler expone los saldos derivados del libro.
type StockHandler struct {
	uc *stock.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Report godoc
// @Summary      Saldos de todos los productos
// @Description  Saldo = Σ IN − Σ OUT. Los negativos se listan en anomalies para revisión.
// @Tags         stock
// @Produce      json
// @Success      200  {object}  dto.StockReportResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) Report(c *fiber.Ctx) error {
	out, err := h.uc.Report(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByProduct godoc
// @Summary      Saldo de un producto
// @Tags         stock
// @Produce      json
// @Param        product_id  path  int  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "product_id")
	if !ok {
		return invalidID(c)
	}
	lvl, err := h.uc.QuantityOnHand(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stock.ToStockLevelDTO(lvl))
}
