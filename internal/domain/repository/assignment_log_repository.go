package repository

import "github.com/clawops/clawfleet-api/internal/domain/entity"

// AssignmentLogRepository puerto del historial de transiciones de asignación.
type AssignmentLogRepository interface {
	Insert(log *entity.AssignmentLog) error
	// ListByItem devuelve el historial del artículo, el más reciente primero.
	ListByItem(itemID string, limit int) ([]entity.AssignmentLog, error)
}
