package assignment

import (
	"errors"
	"fmt"
)

// Errores del motor de asignación. Los tipos con datos estructurados se
// inspeccionan con errors.As en la capa HTTP para mapear códigos de estado.
var (
	// ErrBusy la espera por el bloqueo de ranura/artículo expiró; el llamador
	// puede reintentar.
	ErrBusy = errors.New("ranura o artículo ocupado por otra operación; reintente")
	// ErrNotQueued el artículo no está en ninguna cola de reemplazo.
	ErrNotQueued = errors.New("el artículo no está en una cola de reemplazo")
)

// DeniedError rechazo de política: no reintentable sin cambio de rol u override.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "operación denegada: " + e.Reason
}

// ConflictError la ranura ya tiene un artículo activo distinto. No es un fallo:
// el llamador decide y reinvoca con confirmación de reemplazo.
type ConflictError struct {
	CurrentActiveItemID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("la ranura ya tiene el artículo %s activo; requiere confirmación de reemplazo", e.CurrentActiveItemID)
}

// ConfirmationRequiredError advertencia de política (ej. stock bajo): el
// llamador puede proceder reinvocando con override_granted = true.
type ConfirmationRequiredError struct {
	Reason string
}

func (e *ConfirmationRequiredError) Error() string {
	return "requiere confirmación: " + e.Reason
}

// InvariantError un chequeo defensivo encontró estado corrupto (ej. la cola
// contiene al artículo activo). La operación se aborta sin escribir nada.
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "violación de invariante: " + e.Detail
}
