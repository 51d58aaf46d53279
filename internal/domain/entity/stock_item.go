package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clawops/clawfleet-api/internal/domain/stocklevel"
)

// AssignmentRole rol de un artículo dentro de una ranura.
type AssignmentRole string

const (
	// RoleActive el artículo está actualmente dispensándose en la ranura.
	RoleActive AssignmentRole = "active"
	// RoleQueued el artículo espera en la cola FIFO de la ranura.
	RoleQueued AssignmentRole = "queued"
)

// Assignment referencia de asignación que porta el artículo. Es espejo del
// estado de la ranura: cada artículo participa en a lo sumo una ranura de una
// máquina a la vez.
type Assignment struct {
	MachineID  string         `json:"machine_id"`
	SlotID     string         `json:"slot_id"`
	Role       AssignmentRole `json:"role"`
	AssignedAt time.Time      `json:"assigned_at"`
}

// LocationQuantity cantidad de unidades en una ubicación de almacenamiento.
type LocationQuantity struct {
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

// StockItem artículo de inventario (premio) de la flota.
type StockItem struct {
	ID                string
	Name              string
	Quantities        []LocationQuantity
	LowStockThreshold int
	// ManualStockStatus anulación manual del nivel calculado; nil = automático.
	ManualStockStatus *stocklevel.Status
	UnitCost          decimal.Decimal
	// Assignment nil cuando el artículo no participa en ninguna ranura.
	Assignment *Assignment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalQuantity suma las cantidades de todas las ubicaciones.
func (i *StockItem) TotalQuantity() int {
	total := 0
	for _, q := range i.Quantities {
		total += q.Quantity
	}
	return total
}

// StockLevel nivel de stock efectivo del artículo (manual si existe, si no el
// calculado a partir de la cantidad total y el umbral).
func (i *StockItem) StockLevel() stocklevel.Status {
	return stocklevel.Classify(i.TotalQuantity(), i.LowStockThreshold, i.ManualStockStatus)
}

// AssignedTo indica si el artículo ya ocupa exactamente esa posición.
func (i *StockItem) AssignedTo(machineID, slotID string, role AssignmentRole) bool {
	a := i.Assignment
	return a != nil && a.MachineID == machineID && a.SlotID == slotID && a.Role == role
}
