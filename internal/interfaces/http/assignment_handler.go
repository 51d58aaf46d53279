package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
	"github.com/clawops/clawfleet-api/internal/application/dto"
	"github.com/clawops/clawfleet-api/internal/domain"
)

// AssignmentHandler maneja las transiciones de asignación (protegido).
type AssignmentHandler struct {
	engine *assignment.Engine
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(engine *assignment.Engine) *AssignmentHandler {
	return &AssignmentHandler{engine: engine}
}

// Assign godoc
// @Summary      Asignar un artículo a una ranura
// @Description  Asigna como activo o encola según mode. Idempotente: si el
//
//	estado ya coincide con el objetivo responde 200 con no_op=true.
//
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignRequest  true  "item_id, machine_id, slot_id, mode (Active|Queued), override_granted"
// @Success      200   {object}  dto.TransitionResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/assignments [post]
func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.Assign(c.Context(), assignment.AssignInput{
		ItemID:    in.ItemID,
		MachineID: in.MachineID,
		SlotID:    in.SlotID,
		Mode:      assignment.Mode(in.Mode),
		Actor:     actorFromCtx(c, in.OverrideGranted),
	})
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(dto.FromResult(res))
}

// ConfirmReplace godoc
// @Summary      Confirmar el reemplazo del activo de una ranura
// @Description  Respuesta del llamador a un 409 CONFLICT previo: desplaza al
//
//	activo actual a no asignado y asigna el artículo entrante. El conflicto se
//	recalcula desde cero, así que la respuesta puede diferir de la original.
//
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignRequest  true  "item_id, machine_id, slot_id, override_granted"
// @Success      200   {object}  dto.TransitionResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/assignments/confirm-replace [post]
func (h *AssignmentHandler) ConfirmReplace(c *fiber.Ctx) error {
	var in dto.AssignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.ConfirmReplace(c.Context(), assignment.AssignInput{
		ItemID:    in.ItemID,
		MachineID: in.MachineID,
		SlotID:    in.SlotID,
		Actor:     actorFromCtx(c, in.OverrideGranted),
	})
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(dto.FromResult(res))
}

// Unassign godoc
// @Summary      Liberar un artículo
// @Description  Pasa el artículo a no asignado. Retirar un activo exige rol
//
//	manager/admin u override y promueve a la cabeza de la cola en la misma
//	transacción. Idempotente sobre artículos ya libres.
//
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UnassignRequest  true  "item_id, override_granted"
// @Success      200   {object}  dto.TransitionResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/assignments/unassign [post]
func (h *AssignmentHandler) Unassign(c *fiber.Ctx) error {
	var in dto.UnassignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.Unassign(c.Context(), in.ItemID, actorFromCtx(c, in.OverrideGranted))
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(dto.FromResult(res))
}

// RemoveFromQueue godoc
// @Summary      Retirar un artículo de su cola de reemplazo
// @Description  No toca el activo de la ranura ni dispara promoción.
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QueueRemoveRequest  true  "item_id"
// @Success      200   {object}  dto.TransitionResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/assignments/queue-remove [post]
func (h *AssignmentHandler) RemoveFromQueue(c *fiber.Ctx) error {
	var in dto.QueueRemoveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.RemoveFromQueue(c.Context(), in.ItemID, actorFromCtx(c, false))
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(dto.FromResult(res))
}

// Reassign godoc
// @Summary      Trasladar un artículo a otra ranura
// @Description  Dos transiciones explícitas (liberar y asignar), no atómicas
//
//	entre máquinas: si la segunda falla el artículo queda sin asignar y el
//	llamador debe reenviar la asignación.
//
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReassignRequest  true  "item_id, machine_id, slot_id, mode, override_granted"
// @Success      200   {object}  dto.TransitionResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/assignments/reassign [post]
func (h *AssignmentHandler) Reassign(c *fiber.Ctx) error {
	var in dto.ReassignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.engine.Reassign(c.Context(), assignment.AssignInput{
		ItemID:    in.ItemID,
		MachineID: in.MachineID,
		SlotID:    in.SlotID,
		Mode:      assignment.Mode(in.Mode),
		Actor:     actorFromCtx(c, in.OverrideGranted),
	})
	if err != nil {
		return mapEngineError(c, err)
	}
	return c.JSON(dto.FromResult(res))
}

// mapEngineError traduce los errores del motor a códigos HTTP. Los tipos con
// datos estructurados se inspeccionan con errors.As; los sentinel con errors.Is.
func mapEngineError(c *fiber.Ctx, err error) error {
	var denied *assignment.DeniedError
	if errors.As(err, &denied) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "DENIED", Message: denied.Reason})
	}
	var conflict *assignment.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:                "CONFLICT",
			Message:             "la ranura ya tiene un artículo activo; confirme el reemplazo",
			CurrentActiveItemID: conflict.CurrentActiveItemID,
		})
	}
	var confirm *assignment.ConfirmationRequiredError
	if errors.As(err, &confirm) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFIRMATION_REQUIRED", Message: confirm.Reason})
	}
	var invariant *assignment.InvariantError
	if errors.As(err, &invariant) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INVARIANT", Message: "estado inconsistente detectado; operación abortada"})
	}
	switch {
	case errors.Is(err, assignment.ErrBusy):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BUSY", Message: "ranura o artículo ocupado; reintente"})
	case errors.Is(err, assignment.ErrNotQueued):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NOT_QUEUED", Message: "el artículo no está en una cola de reemplazo"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo, máquina o ranura no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
