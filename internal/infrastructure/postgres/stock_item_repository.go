package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clawops/clawfleet-api/internal/domain/entity"
	"github.com/clawops/clawfleet-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo implementación del libro de stock sobre PostgreSQL (usable con
// pool o tx). Las cantidades por ubicación y el descriptor de asignación se
// guardan como JSONB; el motor es el único escritor de la columna assignment.
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

const stockItemColumns = `id, name, quantities, low_stock_threshold, manual_stock_status, unit_cost, assignment, created_at, updated_at`

func (r *StockItemRepo) scanOne(row pgx.Row) (*entity.StockItem, error) {
	var it entity.StockItem
	err := row.Scan(
		&it.ID, &it.Name, &it.Quantities, &it.LowStockThreshold,
		&it.ManualStockStatus, &it.UnitCost, &it.Assignment,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan stock item: %w", err)
	}
	return &it, nil
}

// GetByID obtiene el artículo por id; (nil, nil) si no existe.
func (r *StockItemRepo) GetByID(id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene el artículo bloqueando su fila (SELECT FOR UPDATE) para
// serializar transiciones concurrentes; (nil, nil) si no existe.
func (r *StockItemRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// UpdateAssignment persiste el descriptor de asignación (o su borrado) y updated_at.
func (r *StockItemRepo) UpdateAssignment(item *entity.StockItem) error {
	query := `UPDATE stock_items SET assignment = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, item.ID, item.Assignment, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// UpdateManualStatus persiste el override manual de nivel de stock (NULL = calculado).
func (r *StockItemRepo) UpdateManualStatus(item *entity.StockItem) error {
	query := `UPDATE stock_items SET manual_stock_status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, item.ID, item.ManualStockStatus, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update manual status: %w", err)
	}
	return nil
}
