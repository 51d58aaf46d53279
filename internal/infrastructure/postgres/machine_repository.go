package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clawops/clawfleet-api/internal/domain/entity"
	"github.com/clawops/clawfleet-api/internal/domain/repository"
)

var _ repository.MachineRepository = (*MachineRepo)(nil)

// MachineRepo implementación del almacén de ranuras sobre PostgreSQL (usable
// con pool o tx). Las ranuras (activo + cola) viven como JSONB en la fila de
// la máquina: bloquear la fila bloquea todas sus ranuras a la vez.
type MachineRepo struct {
	q Querier
}

// NewMachineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMachineRepository(q Querier) *MachineRepo {
	return &MachineRepo{q: q}
}

const machineColumns = `id, name, location, slots, created_at, updated_at`

func (r *MachineRepo) scanOne(row pgx.Row) (*entity.Machine, error) {
	var m entity.Machine
	err := row.Scan(&m.ID, &m.Name, &m.Location, &m.Slots, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan machine: %w", err)
	}
	return &m, nil
}

// GetByID obtiene la máquina por id; (nil, nil) si no existe.
func (r *MachineRepo) GetByID(id string) (*entity.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene la máquina bloqueando su fila (SELECT FOR UPDATE);
// (nil, nil) si no existe.
func (r *MachineRepo) GetForUpdate(id string) (*entity.Machine, error) {
	query := `SELECT ` + machineColumns + ` FROM machines WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// UpdateSlots persiste la lista de ranuras y updated_at.
func (r *MachineRepo) UpdateSlots(machine *entity.Machine) error {
	query := `UPDATE machines SET slots = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, machine.ID, machine.Slots, machine.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update slots: %w", err)
	}
	return nil
}
