package policy

import "github.com/clawops/clawfleet-api/internal/domain/stocklevel"

// Role rol de personal del operador. Coincide con el claim "role" del token.
type Role string

const (
	RoleCrew    Role = "crew"
	RoleTech    Role = "tech"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Privileged indica si el rol puede saltarse restricciones de stock y de
// democión. Un rol desconocido o ambiguo nunca es privilegiado (fail closed).
func (r Role) Privileged() bool {
	return r == RoleManager || r == RoleAdmin
}

// Action transición que el actor intenta ejecutar sobre una ranura.
type Action string

const (
	ActionAssignActive Action = "assign_active"
	ActionAssignQueued Action = "assign_queued"
	// ActionDemote cubre retirar un artículo activo de su ranura: "clear",
	// "downgrade" a la cola, o el primer paso de una reasignación.
	ActionDemote Action = "demote"
)

// Decision resultado de la autorización.
type Decision int

const (
	Allow Decision = iota
	Warn
	Deny
)

// Verdict decisión con su motivo (vacío en Allow).
type Verdict struct {
	Decision Decision
	Reason   string
}

// Authorize evalúa si el actor puede ejecutar la acción dado el nivel de stock
// del artículo. overrideGranted es la prueba (verificada fuera de banda por el
// llamador) de que una credencial secundaria o el reconocimiento de una
// advertencia fue otorgado. Función total: nunca falla; las acciones o roles
// desconocidos se tratan como no privilegiados y se deniegan.
func Authorize(role Role, action Action, level stocklevel.Status, overrideGranted bool) Verdict {
	switch action {
	case ActionAssignActive, ActionAssignQueued:
		return authorizeAssign(role, level, overrideGranted)
	case ActionDemote:
		if role.Privileged() || overrideGranted {
			return Verdict{Decision: Allow}
		}
		return Verdict{
			Decision: Deny,
			Reason:   "retirar un artículo activo requiere rol de supervisor o autorización secundaria",
		}
	}
	return Verdict{Decision: Deny, Reason: "acción desconocida"}
}

func authorizeAssign(role Role, level stocklevel.Status, overrideGranted bool) Verdict {
	switch level {
	case stocklevel.OutOfStock:
		if !role.Privileged() {
			return Verdict{Decision: Deny, Reason: "el artículo está agotado"}
		}
		if overrideGranted {
			return Verdict{Decision: Allow}
		}
		return Verdict{Decision: Warn, Reason: "el artículo está agotado; confirme para continuar"}
	case stocklevel.LowStock:
		if overrideGranted {
			return Verdict{Decision: Allow}
		}
		return Verdict{Decision: Warn, Reason: "el artículo tiene stock bajo; confirme para continuar"}
	}
	return Verdict{Decision: Allow}
}
