package repository

import "github.com/clawops/clawfleet-api/internal/domain/entity"

// MachineRepository puerto de persistencia del almacén de ranuras (Machine Slot
// Store). GetByID y GetForUpdate devuelven (nil, nil) si la máquina no existe.
type MachineRepository interface {
	GetByID(id string) (*entity.Machine, error)
	// GetForUpdate obtiene la máquina bloqueando su fila (SELECT FOR UPDATE);
	// cubre todas las ranuras de la máquina durante la transición.
	GetForUpdate(id string) (*entity.Machine, error)
	// UpdateSlots persiste la lista de ranuras (activo + colas) y updated_at.
	UpdateSlots(machine *entity.Machine) error
}
