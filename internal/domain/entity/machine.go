package entity

import "time"

// Slot ranura física de una máquina de garra. Mantiene a lo sumo un artículo
// activo y una cola FIFO de artículos en espera.
type Slot struct {
	ID      string `json:"id"`
	SizeTag string `json:"size_tag,omitempty"`
	// ActiveItemID vacío cuando la ranura está libre.
	ActiveItemID string `json:"active_item_id,omitempty"`
	// Queue IDs de artículos en orden de llegada (el primero es el siguiente
	// en promoverse).
	Queue []string `json:"queue,omitempty"`
}

// InQueue indica si el artículo ya está encolado en la ranura.
func (s *Slot) InQueue(itemID string) bool {
	for _, id := range s.Queue {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveFromQueue elimina el artículo de la cola conservando el orden del
// resto. Devuelve false si no estaba.
func (s *Slot) RemoveFromQueue(itemID string) bool {
	for i, id := range s.Queue {
		if id == itemID {
			s.Queue = append(s.Queue[:i], s.Queue[i+1:]...)
			return true
		}
	}
	return false
}

// QueueHasDuplicates detecta entradas repetidas en la cola (corrupción).
func (s *Slot) QueueHasDuplicates() bool {
	seen := make(map[string]struct{}, len(s.Queue))
	for _, id := range s.Queue {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// Machine máquina de garra con sus ranuras.
type Machine struct {
	ID        string
	Name      string
	Location  string
	Slots     []Slot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindSlot devuelve un puntero a la ranura con ese ID, o nil si no existe.
// El puntero apunta dentro de Slots: mutarlo muta la máquina.
func (m *Machine) FindSlot(slotID string) *Slot {
	for i := range m.Slots {
		if m.Slots[i].ID == slotID {
			return &m.Slots[i]
		}
	}
	return nil
}
