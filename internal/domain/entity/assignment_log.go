package entity

import "time"

// LogAction acción registrada en el historial de asignaciones.
type LogAction string

const (
	LogAssigned       LogAction = "ASSIGNED"
	LogQueued         LogAction = "QUEUED"
	LogPromoted       LogAction = "PROMOTED"
	LogAutoPromoted   LogAction = "AUTO_PROMOTED"
	LogUnassigned     LogAction = "UNASSIGNED"
	LogAutoUnassigned LogAction = "AUTO_UNASSIGNED"
	LogDowngraded     LogAction = "DOWNGRADED"
	LogQueueRemoved   LogAction = "QUEUE_REMOVED"
)

// SystemActor actor registrado en las entradas generadas por el motor
// (auto-promoción, desplazamiento por reemplazo).
const SystemActor = "system"

// AssignmentLog entrada del historial de asignaciones de un artículo.
type AssignmentLog struct {
	ID        string
	ItemID    string
	MachineID string
	SlotID    string
	Action    LogAction
	// ActorID usuario que disparó la transición, o SystemActor para las
	// derivadas del motor.
	ActorID   string
	ActorRole string
	Detail    string
	CreatedAt time.Time
}
