package repository

import "github.com/clawops/clawfleet-api/internal/domain/entity"

// StockItemRepository puerto de persistencia del libro de stock (Stock Ledger).
// GetByID y GetForUpdate devuelven (nil, nil) si el artículo no existe.
type StockItemRepository interface {
	GetByID(id string) (*entity.StockItem, error)
	// GetForUpdate obtiene el artículo bloqueando su fila (SELECT FOR UPDATE)
	// para serializar transiciones concurrentes sobre el mismo artículo.
	GetForUpdate(id string) (*entity.StockItem, error)
	// UpdateAssignment persiste el descriptor de asignación y updated_at.
	UpdateAssignment(item *entity.StockItem) error
	// UpdateManualStatus persiste el override manual de nivel de stock (o su borrado).
	UpdateManualStatus(item *entity.StockItem) error
}
