package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
	"github.com/clawops/clawfleet-api/internal/domain/repository"
)

// Ensure TxRunner implements assignment.TxRunner.
var _ assignment.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta los callbacks del motor de asignación dentro de una
// transacción PostgreSQL: los SELECT FOR UPDATE de los repositorios atados a
// la tx serializan las transiciones que tocan el mismo artículo o máquina.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. La auto-promoción corre dentro de la misma transacción
// que la transición que la dispara: ningún estado intermedio es visible.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	machineRepo repository.MachineRepository,
	logRepo repository.AssignmentLogRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewStockItemRepository(tx)
	machineRepo := NewMachineRepository(tx)
	logRepo := NewAssignmentLogRepository(tx)

	if err := fn(itemRepo, machineRepo, logRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
