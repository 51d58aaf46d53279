package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clawops/clawfleet-api/internal/application/dto"
	"github.com/clawops/clawfleet-api/internal/application/stock"
	"github.com/clawops/clawfleet-api/internal/domain"
)

// StockHandler lecturas del libro de stock y override manual de nivel (protegido).
type StockHandler struct {
	uc *stock.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetItem godoc
// @Summary      Obtener un artículo con su nivel de stock calculado
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del artículo"
// @Success      200  {object}  dto.StockItemDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *StockHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.uc.GetItem(c.Params("id"))
	if err != nil {
		return mapStockError(c, err)
	}
	return c.JSON(dto.FromStockItem(item))
}

// GetItemHistory godoc
// @Summary      Historial de asignaciones de un artículo
// @Description  Entradas ordenadas de más reciente a más antigua, incluidas
//
//	las generadas por el motor (AUTO_PROMOTED, AUTO_UNASSIGNED).
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del artículo"
// @Param        limit  query  int     false  "Máximo de entradas (por defecto 50)"
// @Success      200  {array}   dto.AssignmentLogDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/history [get]
func (h *StockHandler) GetItemHistory(c *fiber.Ctx) error {
	logs, err := h.uc.GetItemHistory(c.Params("id"), c.QueryInt("limit"))
	if err != nil {
		return mapStockError(c, err)
	}
	out := make([]dto.AssignmentLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.FromAssignmentLog(l))
	}
	return c.JSON(out)
}

// SetStockStatus godoc
// @Summary      Fijar o borrar el override manual de nivel de stock
// @Description  status vacío vuelve a la clasificación automática. El override
//
//	manual gana siempre sobre el nivel calculado.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del artículo"
// @Param        body  body  dto.SetStockStatusRequest  true  "status (Out of Stock|Low Stock|Limited Stock|In Stock) o vacío"
// @Success      200   {object}  dto.StockItemDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/stock-status [patch]
func (h *StockHandler) SetStockStatus(c *fiber.Ctx) error {
	var in dto.SetStockStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.SetManualStatus(c.Params("id"), in.Status)
	if err != nil {
		return mapStockError(c, err)
	}
	return c.JSON(dto.FromStockItem(item))
}

func mapStockError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
