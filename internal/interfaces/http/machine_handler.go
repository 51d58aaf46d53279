package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clawops/clawfleet-api/internal/application/dto"
	"github.com/clawops/clawfleet-api/internal/application/stock"
	"github.com/clawops/clawfleet-api/internal/domain"
)

// MachineHandler lecturas del libro de máquinas (protegido).
type MachineHandler struct {
	uc *stock.UseCase
}

// NewMachineHandler construye el handler.
func NewMachineHandler(uc *stock.UseCase) *MachineHandler {
	return &MachineHandler{uc: uc}
}

// GetByID godoc
// @Summary      Obtener una máquina con el estado de sus ranuras
// @Tags         machines
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la máquina"
// @Success      200  {object}  dto.MachineDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/machines/{id} [get]
func (h *MachineHandler) GetByID(c *fiber.Ctx) error {
	machine, err := h.uc.GetMachine(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "máquina no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromMachine(machine))
}
