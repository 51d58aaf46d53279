package assignment

import (
	"context"

	"github.com/clawops/clawfleet-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que lectura, autorización, mutación
// y auto-promoción sean una unidad atómica: ningún estado intermedio es
// observable por otros llamadores.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		machineRepo repository.MachineRepository,
		logRepo repository.AssignmentLogRepository,
	) error) error
}

// SlotLocker serializa transiciones conflictivas sobre la misma ranura o el
// mismo artículo. Acquire toma todas las claves en orden lexicográfico (evita
// interbloqueos) con espera acotada; si la espera expira devuelve ErrBusy.
// La función devuelta libera todas las claves adquiridas.
type SlotLocker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// Claves de bloqueo: una sección crítica por artículo y por pareja
// (máquina, ranura).
func itemKey(itemID string) string {
	return "item:" + itemID
}

func slotKey(machineID, slotID string) string {
	return "slot:" + machineID + "/" + slotID
}
