package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clawops/clawfleet-api/internal/domain/entity"
	"github.com/clawops/clawfleet-api/internal/domain/repository"
)

var _ repository.AssignmentLogRepository = (*AssignmentLogRepo)(nil)

// AssignmentLogRepo historial de transiciones de asignación sobre PostgreSQL.
type AssignmentLogRepo struct {
	q Querier
}

// NewAssignmentLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssignmentLogRepository(q Querier) *AssignmentLogRepo {
	return &AssignmentLogRepo{q: q}
}

// Insert persiste una entrada del historial.
func (r *AssignmentLogRepo) Insert(log *entity.AssignmentLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	query := `
		INSERT INTO assignment_logs (id, item_id, machine_id, slot_id, action, actor_id, actor_role, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		log.ID, log.ItemID, log.MachineID, log.SlotID, log.Action,
		log.ActorID, log.ActorRole, log.Detail, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assignment log: %w", err)
	}
	return nil
}

// ListByItem devuelve el historial del artículo, el más reciente primero.
func (r *AssignmentLogRepo) ListByItem(itemID string, limit int) ([]entity.AssignmentLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, item_id, machine_id, slot_id, action, actor_id, actor_role, detail, created_at
		FROM assignment_logs WHERE item_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("list assignment logs: %w", err)
	}
	defer rows.Close()

	var out []entity.AssignmentLog
	for rows.Next() {
		var l entity.AssignmentLog
		if err := rows.Scan(&l.ID, &l.ItemID, &l.MachineID, &l.SlotID, &l.Action, &l.ActorID, &l.ActorRole, &l.Detail, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
