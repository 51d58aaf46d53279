package stock

import (
	"time"

	"github.com/clawops/clawfleet-api/internal/domain"
	"github.com/clawops/clawfleet-api/internal/domain/entity"
	"github.com/clawops/clawfleet-api/internal/domain/repository"
	"github.com/clawops/clawfleet-api/internal/domain/stocklevel"
)

// UseCase lecturas del libro de stock y del libro de máquinas, más el override
// manual de nivel de stock. Las transiciones de asignación NO pasan por aquí:
// son exclusivas del motor.
type UseCase struct {
	items    repository.StockItemRepository
	machines repository.MachineRepository
	logs     repository.AssignmentLogRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	items repository.StockItemRepository,
	machines repository.MachineRepository,
	logs repository.AssignmentLogRepository,
) *UseCase {
	return &UseCase{items: items, machines: machines, logs: logs}
}

// GetItem devuelve el artículo o ErrNotFound.
func (uc *UseCase) GetItem(id string) (*entity.StockItem, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.items.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// GetMachine devuelve la máquina con sus ranuras o ErrNotFound.
func (uc *UseCase) GetMachine(id string) (*entity.Machine, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	machine, err := uc.machines.GetByID(id)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, domain.ErrNotFound
	}
	return machine, nil
}

// GetItemHistory devuelve el historial de asignaciones del artículo, el más
// reciente primero. Valida que el artículo exista.
func (uc *UseCase) GetItemHistory(id string, limit int) ([]entity.AssignmentLog, error) {
	if _, err := uc.GetItem(id); err != nil {
		return nil, err
	}
	return uc.logs.ListByItem(id, limit)
}

// SetManualStatus fija el override manual de nivel de stock del artículo, o lo
// borra si status es vacío (vuelve a la clasificación automática).
func (uc *UseCase) SetManualStatus(id, status string) (*entity.StockItem, error) {
	item, err := uc.GetItem(id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		item.ManualStockStatus = nil
	} else {
		s := stocklevel.Status(status)
		if !s.Valid() {
			return nil, domain.ErrInvalidInput
		}
		item.ManualStockStatus = &s
	}
	item.UpdatedAt = time.Now()
	if err := uc.items.UpdateManualStatus(item); err != nil {
		return nil, err
	}
	return item, nil
}
