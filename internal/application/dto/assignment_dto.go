package dto

import (
	"time"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
	"github.com/clawops/clawfleet-api/internal/domain/entity"
)

// AssignRequest petición de asignación de un artículo a una ranura.
type AssignRequest struct {
	ItemID    string `json:"item_id"`
	MachineID string `json:"machine_id"`
	SlotID    string `json:"slot_id"`
	// Mode "Active" o "Queued".
	Mode string `json:"mode"`
	// OverrideGranted resultado de la verificación de credencial del host;
	// también sirve de acuse a una advertencia previa de stock bajo.
	OverrideGranted bool `json:"override_granted"`
}

// UnassignRequest petición de liberación de un artículo.
type UnassignRequest struct {
	ItemID          string `json:"item_id"`
	OverrideGranted bool   `json:"override_granted"`
}

// QueueRemoveRequest petición de retirada de un artículo de su cola.
type QueueRemoveRequest struct {
	ItemID string `json:"item_id"`
}

// ReassignRequest petición de traslado de un artículo a otra ranura.
type ReassignRequest struct {
	ItemID          string `json:"item_id"`
	MachineID       string `json:"machine_id"`
	SlotID          string `json:"slot_id"`
	Mode            string `json:"mode"`
	OverrideGranted bool   `json:"override_granted"`
}

// SetStockStatusRequest fija o borra el override manual de nivel de stock.
// Status vacío = volver a la clasificación automática.
type SetStockStatusRequest struct {
	Status string `json:"status"`
}

// AssignmentDTO descriptor de asignación de un artículo.
type AssignmentDTO struct {
	MachineID  string    `json:"machine_id"`
	SlotID     string    `json:"slot_id"`
	Role       string    `json:"role"`
	AssignedAt time.Time `json:"assigned_at"`
}

// LocationQuantityDTO cantidad por ubicación de almacenamiento.
type LocationQuantityDTO struct {
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

// StockItemDTO artículo del libro de stock con su nivel calculado.
type StockItemDTO struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Quantities        []LocationQuantityDTO `json:"quantities"`
	TotalQuantity     int                   `json:"total_quantity"`
	LowStockThreshold int                   `json:"low_stock_threshold"`
	StockLevel        string                `json:"stock_level"`
	ManualStockStatus string                `json:"manual_stock_status,omitempty"`
	UnitCost          string                `json:"unit_cost"`
	Assignment        *AssignmentDTO        `json:"assignment,omitempty"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// SlotDTO ranura de una máquina.
type SlotDTO struct {
	ID           string   `json:"id"`
	SizeTag      string   `json:"size_tag,omitempty"`
	ActiveItemID string   `json:"active_item_id,omitempty"`
	Queue        []string `json:"queue"`
}

// MachineDTO máquina con sus ranuras.
type MachineDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Slots     []SlotDTO `json:"slots"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransitionResultDTO resultado de una transición del motor.
type TransitionResultDTO struct {
	NoOp bool          `json:"no_op"`
	Item *StockItemDTO `json:"item,omitempty"`
	Slot *SlotDTO      `json:"slot,omitempty"`
	// PromotedItemID artículo auto-promovido de la cola, si lo hubo.
	PromotedItemID string `json:"promoted_item_id,omitempty"`
	// DisplacedItemID artículo desplazado por un reemplazo confirmado, si lo hubo.
	DisplacedItemID string `json:"displaced_item_id,omitempty"`
}

// AssignmentLogDTO entrada del historial de asignaciones.
type AssignmentLogDTO struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	MachineID string    `json:"machine_id"`
	SlotID    string    `json:"slot_id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromStockItem mapea la entidad al DTO, calculando el nivel efectivo.
func FromStockItem(i *entity.StockItem) *StockItemDTO {
	if i == nil {
		return nil
	}
	out := &StockItemDTO{
		ID:                i.ID,
		Name:              i.Name,
		Quantities:        make([]LocationQuantityDTO, 0, len(i.Quantities)),
		TotalQuantity:     i.TotalQuantity(),
		LowStockThreshold: i.LowStockThreshold,
		StockLevel:        string(i.StockLevel()),
		UnitCost:          i.UnitCost.String(),
		UpdatedAt:         i.UpdatedAt,
	}
	for _, q := range i.Quantities {
		out.Quantities = append(out.Quantities, LocationQuantityDTO{LocationID: q.LocationID, Quantity: q.Quantity})
	}
	if i.ManualStockStatus != nil {
		out.ManualStockStatus = string(*i.ManualStockStatus)
	}
	if a := i.Assignment; a != nil {
		out.Assignment = &AssignmentDTO{MachineID: a.MachineID, SlotID: a.SlotID, Role: string(a.Role), AssignedAt: a.AssignedAt}
	}
	return out
}

// FromSlot mapea la ranura al DTO. Queue nunca es null en la respuesta.
func FromSlot(s *entity.Slot) *SlotDTO {
	if s == nil {
		return nil
	}
	queue := s.Queue
	if queue == nil {
		queue = []string{}
	}
	return &SlotDTO{ID: s.ID, SizeTag: s.SizeTag, ActiveItemID: s.ActiveItemID, Queue: queue}
}

// FromMachine mapea la máquina al DTO.
func FromMachine(m *entity.Machine) *MachineDTO {
	if m == nil {
		return nil
	}
	out := &MachineDTO{ID: m.ID, Name: m.Name, Location: m.Location, Slots: make([]SlotDTO, 0, len(m.Slots)), UpdatedAt: m.UpdatedAt}
	for i := range m.Slots {
		out.Slots = append(out.Slots, *FromSlot(&m.Slots[i]))
	}
	return out
}

// FromResult mapea el resultado de una transición del motor.
func FromResult(r *assignment.Result) *TransitionResultDTO {
	if r == nil {
		return nil
	}
	out := &TransitionResultDTO{
		NoOp: r.NoOp,
		Item: FromStockItem(r.Item),
		Slot: FromSlot(r.Slot),
	}
	if r.Promoted != nil {
		out.PromotedItemID = r.Promoted.ID
	}
	if r.Displaced != nil {
		out.DisplacedItemID = r.Displaced.ID
	}
	return out
}

// FromAssignmentLog mapea una entrada del historial.
func FromAssignmentLog(l entity.AssignmentLog) AssignmentLogDTO {
	return AssignmentLogDTO{
		ID:        l.ID,
		ItemID:    l.ItemID,
		MachineID: l.MachineID,
		SlotID:    l.SlotID,
		Action:    string(l.Action),
		ActorID:   l.ActorID,
		ActorRole: l.ActorRole,
		Detail:    l.Detail,
		CreatedAt: l.CreatedAt,
	}
}
