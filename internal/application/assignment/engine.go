package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clawops/clawfleet-api/internal/domain"
	"github.com/clawops/clawfleet-api/internal/domain/entity"
	"github.com/clawops/clawfleet-api/internal/domain/policy"
	"github.com/clawops/clawfleet-api/internal/domain/repository"
	"github.com/clawops/clawfleet-api/pkg/logger"
)

// Mode modo de asignación solicitado.
type Mode string

const (
	ModeActive Mode = "Active"
	ModeQueued Mode = "Queued"
)

// Actor contexto del actor que solicita la transición. OverrideGranted es el
// booleano producido por la verificación de credencial fuera de banda del
// host (el motor nunca implementa autenticación ni lee estado ambiente).
type Actor struct {
	ID              string
	Role            policy.Role
	OverrideGranted bool
}

// AssignInput entrada de Assign / ConfirmReplace / Reassign.
type AssignInput struct {
	ItemID    string
	MachineID string
	SlotID    string
	Mode      Mode
	Actor     Actor
	// ConfirmReplace autoriza desplazar al artículo activo actual de la
	// ranura (respuesta del llamador a un ConflictError previo).
	ConfirmReplace bool
}

// Result estado resultante de una transición: el artículo y la ranura ya
// actualizados, más los efectos secundarios que el llamador debe reflejar.
type Result struct {
	Item    *entity.StockItem
	Machine *entity.Machine
	Slot    *entity.Slot
	// Promoted artículo auto-promovido de la cola al quedar libre la ranura.
	Promoted *entity.StockItem
	// Displaced artículo activo anterior desplazado por un reemplazo confirmado.
	Displaced *entity.StockItem
	// NoOp la operación ya cumplía su postcondición; no se escribió nada.
	NoOp bool
}

// Engine motor de asignación de ranuras: único escritor del descriptor de
// asignación de los artículos y de los campos activo/cola de las ranuras.
// Cada transición corre dentro de una transacción (TxRunner) bajo las claves
// de bloqueo de la ranura y el artículo implicados, de modo que dos Assign
// concurrentes sobre la misma ranura no puedan observar ambos un activo vacío.
type Engine struct {
	tx       TxRunner
	items    repository.StockItemRepository
	machines repository.MachineRepository
	locker   SlotLocker
	log      *logger.Logger
}

// NewEngine construye el motor. items y machines son lectores fuera de
// transacción (validación y derivación de claves de bloqueo); las escrituras
// siempre pasan por los repositorios atados a la tx.
func NewEngine(
	tx TxRunner,
	items repository.StockItemRepository,
	machines repository.MachineRepository,
	locker SlotLocker,
	log *logger.Logger,
) *Engine {
	return &Engine{tx: tx, items: items, machines: machines, locker: locker, log: log}
}

// Assign asigna el artículo a la ranura como activo o encolado. Transiciones
// cubiertas: Unassigned→Active, Unassigned→Queued, Queued→Active (promoción
// manual) y Active→Queued en la misma ranura (democión con rotación).
// Idempotente contra su propia postcondición: si el estado ya coincide con el
// objetivo devuelve éxito NoOp sin escribir.
func (e *Engine) Assign(ctx context.Context, in AssignInput) (*Result, error) {
	if in.ItemID == "" || in.MachineID == "" || in.SlotID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Mode != ModeActive && in.Mode != ModeQueued {
		return nil, domain.ErrInvalidInput
	}

	release, err := e.locker.Acquire(ctx, itemKey(in.ItemID), slotKey(in.MachineID, in.SlotID))
	if err != nil {
		return nil, err
	}
	defer release()

	var res *Result
	err = e.tx.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		machineRepo repository.MachineRepository,
		logRepo repository.AssignmentLogRepository,
	) error {
		res, err = e.assignTx(in, itemRepo, machineRepo, logRepo)
		return err
	})
	if err != nil {
		return nil, e.report(err, "assign", in.ItemID, in.MachineID, in.SlotID)
	}
	e.logApplied("assign", in, res)
	return res, nil
}

// ConfirmReplace reejecuta Assign en modo activo con el reemplazo
// preautorizado. El conflicto se recalcula desde cero: el motor no guarda
// estado provisional entre el ConflictError y esta confirmación.
func (e *Engine) ConfirmReplace(ctx context.Context, in AssignInput) (*Result, error) {
	in.Mode = ModeActive
	in.ConfirmReplace = true
	return e.Assign(ctx, in)
}

// Unassign pasa el artículo a no asignado desde activo o encolado. Retirar un
// activo exige rol privilegiado u override y dispara la auto-promoción de la
// cabeza de la cola dentro de la misma transacción. Idempotente: un artículo
// ya sin asignar devuelve éxito NoOp.
func (e *Engine) Unassign(ctx context.Context, itemID string, actor Actor) (*Result, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	pre, err := e.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if pre == nil {
		return nil, domain.ErrNotFound
	}
	if pre.Assignment == nil {
		return &Result{Item: pre, NoOp: true}, nil
	}

	target := *pre.Assignment
	release, err := e.locker.Acquire(ctx, itemKey(itemID), slotKey(target.MachineID, target.SlotID))
	if err != nil {
		return nil, err
	}
	defer release()

	var res *Result
	err = e.tx.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		machineRepo repository.MachineRepository,
		logRepo repository.AssignmentLogRepository,
	) error {
		res, err = e.unassignTx(itemID, actor, target, itemRepo, machineRepo, logRepo)
		return err
	})
	if err != nil {
		return nil, e.report(err, "unassign", itemID, target.MachineID, target.SlotID)
	}
	e.logApplied("unassign", AssignInput{ItemID: itemID, MachineID: target.MachineID, SlotID: target.SlotID, Actor: actor}, res)
	return res, nil
}

// RemoveFromQueue retira el artículo de su cola de reemplazo sin tocar el
// activo de la ranura ni disparar promoción. Si el artículo no está encolado
// devuelve ErrNotQueued.
func (e *Engine) RemoveFromQueue(ctx context.Context, itemID string, actor Actor) (*Result, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	pre, err := e.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if pre == nil {
		return nil, domain.ErrNotFound
	}
	if pre.Assignment == nil || pre.Assignment.Role != entity.RoleQueued {
		return nil, ErrNotQueued
	}

	target := *pre.Assignment
	release, err := e.locker.Acquire(ctx, itemKey(itemID), slotKey(target.MachineID, target.SlotID))
	if err != nil {
		return nil, err
	}
	defer release()

	var res *Result
	err = e.tx.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		machineRepo repository.MachineRepository,
		logRepo repository.AssignmentLogRepository,
	) error {
		res, err = e.removeFromQueueTx(itemID, actor, target, itemRepo, machineRepo, logRepo)
		return err
	})
	if err != nil {
		return nil, e.report(err, "remove_from_queue", itemID, target.MachineID, target.SlotID)
	}
	e.logApplied("remove_from_queue", AssignInput{ItemID: itemID, MachineID: target.MachineID, SlotID: target.SlotID, Actor: actor}, res)
	return res, nil
}

// Reassign mueve un artículo asignado a otra ranura: se modela como dos
// transiciones explícitas (liberar y asignar), no atómicas entre máquinas.
// Si la segunda mitad falla el artículo queda sin asignar y el llamador debe
// reenviar la asignación; el error lo indica. Limitación documentada, no se
// reintenta en silencio.
func (e *Engine) Reassign(ctx context.Context, in AssignInput) (*Result, error) {
	if in.ItemID == "" || in.MachineID == "" || in.SlotID == "" {
		return nil, domain.ErrInvalidInput
	}
	pre, err := e.items.GetByID(in.ItemID)
	if err != nil {
		return nil, err
	}
	if pre == nil {
		return nil, domain.ErrNotFound
	}
	if pre.Assignment != nil && !(pre.Assignment.MachineID == in.MachineID && pre.Assignment.SlotID == in.SlotID) {
		if _, err := e.Unassign(ctx, in.ItemID, in.Actor); err != nil {
			return nil, err
		}
	}
	res, err := e.Assign(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("reasignación: la liberación se aplicó pero la asignación destino falló (el artículo quedó sin asignar): %w", err)
	}
	return res, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones dentro de la transacción
// ──────────────────────────────────────────────────────────────────────────────

func (e *Engine) assignTx(
	in AssignInput,
	itemRepo repository.StockItemRepository,
	machineRepo repository.MachineRepository,
	logRepo repository.AssignmentLogRepository,
) (*Result, error) {
	item, err := itemRepo.GetForUpdate(in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	machine, err := machineRepo.GetForUpdate(in.MachineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, domain.ErrNotFound
	}
	slot := machine.FindSlot(in.SlotID)
	if slot == nil {
		return nil, domain.ErrNotFound
	}
	if err := checkSlotInvariants(slot); err != nil {
		return nil, err
	}

	targetRole := entity.RoleActive
	if in.Mode == ModeQueued {
		targetRole = entity.RoleQueued
	}
	// Idempotencia: el estado ya coincide con el objetivo.
	if item.AssignedTo(in.MachineID, in.SlotID, targetRole) {
		return &Result{Item: item, Machine: machine, Slot: slot, NoOp: true}, nil
	}

	// La transición solo existe desde Unassigned, o dentro de la misma ranura
	// (Queued→Active = promoción manual, Active→Queued = democión).
	downgrade := false
	if cur := item.Assignment; cur != nil {
		sameSlot := cur.MachineID == in.MachineID && cur.SlotID == in.SlotID
		switch {
		case sameSlot && cur.Role == entity.RoleQueued && in.Mode == ModeActive:
			// promoción manual
		case sameSlot && cur.Role == entity.RoleActive && in.Mode == ModeQueued:
			downgrade = true
		default:
			return nil, &DeniedError{Reason: "el artículo ya está asignado a otra ranura; libérelo primero"}
		}
		// Deriva entre el libro de stock y la ranura.
		if cur.Role == entity.RoleActive && slot.ActiveItemID != item.ID {
			return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s dice ser activo de %s/%s pero la ranura registra %q", item.ID, cur.MachineID, cur.SlotID, slot.ActiveItemID)}
		}
		if cur.Role == entity.RoleQueued && !slot.InQueue(item.ID) {
			return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s dice estar encolado en %s/%s pero no aparece en la cola", item.ID, cur.MachineID, cur.SlotID)}
		}
	}

	action := policy.ActionAssignActive
	if in.Mode == ModeQueued {
		action = policy.ActionAssignQueued
	}
	if downgrade {
		action = policy.ActionDemote
	}
	verdict := policy.Authorize(in.Actor.Role, action, item.StockLevel(), in.Actor.OverrideGranted)
	switch verdict.Decision {
	case policy.Deny:
		return nil, &DeniedError{Reason: verdict.Reason}
	case policy.Warn:
		return nil, &ConfirmationRequiredError{Reason: verdict.Reason}
	}

	now := time.Now()
	res := &Result{Item: item, Machine: machine, Slot: slot}

	// Regla de conflicto: la ranura admite un solo activo. Sin confirmación se
	// devuelve el conflicto para que el llamador decida; con confirmación el
	// activo anterior pasa a Unassigned sin encadenar promoción (el hueco lo
	// llena inmediatamente el artículo entrante).
	if in.Mode == ModeActive && slot.ActiveItemID != "" && slot.ActiveItemID != item.ID {
		if !in.ConfirmReplace {
			return nil, &ConflictError{CurrentActiveItemID: slot.ActiveItemID}
		}
		prev, err := itemRepo.GetForUpdate(slot.ActiveItemID)
		if err != nil {
			return nil, err
		}
		if prev == nil {
			return nil, &InvariantError{Detail: fmt.Sprintf("la ranura %s/%s registra como activo un artículo inexistente %q", in.MachineID, in.SlotID, slot.ActiveItemID)}
		}
		prev.Assignment = nil
		prev.UpdatedAt = now
		if err := itemRepo.UpdateAssignment(prev); err != nil {
			return nil, err
		}
		if err := logRepo.Insert(newLog(prev.ID, in.MachineID, in.SlotID, entity.LogAutoUnassigned, Actor{ID: entity.SystemActor, Role: policy.Role(entity.SystemActor)}, "desplazado por reemplazo confirmado de "+item.ID, now)); err != nil {
			return nil, err
		}
		res.Displaced = prev
	}

	var logAction entity.LogAction
	switch in.Mode {
	case ModeActive:
		logAction = entity.LogAssigned
		if item.Assignment != nil && item.Assignment.Role == entity.RoleQueued {
			slot.RemoveFromQueue(item.ID)
			logAction = entity.LogPromoted
		}
		slot.ActiveItemID = item.ID
		item.Assignment = &entity.Assignment{MachineID: in.MachineID, SlotID: in.SlotID, Role: entity.RoleActive, AssignedAt: now}
	case ModeQueued:
		if downgrade {
			// Democión con rotación: el activo pasa a la cola de la cola y la
			// cabeza (el encolado más antiguo) sube a activo. Con la cola vacía
			// el propio artículo vuelve a ser promovido: la democión del único
			// artículo de la ranura es un no-op neto.
			logAction = entity.LogDowngraded
			slot.ActiveItemID = ""
		} else {
			// Deriva inversa a la cubierta arriba: el artículo figura en la
			// cola sin portar descriptor. Encolarlo crearía un duplicado.
			if slot.InQueue(item.ID) {
				return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s aparece en la cola de %s/%s sin descriptor de asignación", item.ID, in.MachineID, in.SlotID)}
			}
			logAction = entity.LogQueued
		}
		slot.Queue = append(slot.Queue, item.ID)
		item.Assignment = &entity.Assignment{MachineID: in.MachineID, SlotID: in.SlotID, Role: entity.RoleQueued, AssignedAt: now}
	}
	item.UpdatedAt = now
	if err := itemRepo.UpdateAssignment(item); err != nil {
		return nil, err
	}
	if err := logRepo.Insert(newLog(item.ID, in.MachineID, in.SlotID, logAction, in.Actor, "", now)); err != nil {
		return nil, err
	}

	if downgrade {
		promoted, err := e.autoPromote(machine, slot, itemRepo, logRepo, now)
		if err != nil {
			return nil, err
		}
		res.Promoted = promoted
		if promoted != nil && promoted.ID == item.ID {
			// El artículo degradado volvió a activo (cola vacía); reflejarlo.
			res.Item = promoted
		}
	}

	machine.UpdatedAt = now
	if err := machineRepo.UpdateSlots(machine); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) unassignTx(
	itemID string,
	actor Actor,
	target entity.Assignment,
	itemRepo repository.StockItemRepository,
	machineRepo repository.MachineRepository,
	logRepo repository.AssignmentLogRepository,
) (*Result, error) {
	item, err := itemRepo.GetForUpdate(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.Assignment == nil {
		return &Result{Item: item, NoOp: true}, nil
	}
	// La asignación cambió entre la lectura previa y el bloqueo: las claves
	// adquiridas ya no cubren la ranura correcta. El llamador reintenta.
	if item.Assignment.MachineID != target.MachineID || item.Assignment.SlotID != target.SlotID {
		return nil, ErrBusy
	}

	machine, err := machineRepo.GetForUpdate(target.MachineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s está asignado a la máquina inexistente %q", itemID, target.MachineID)}
	}
	slot := machine.FindSlot(target.SlotID)
	if slot == nil {
		return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s está asignado a la ranura inexistente %s/%s", itemID, target.MachineID, target.SlotID)}
	}
	if err := checkSlotInvariants(slot); err != nil {
		return nil, err
	}

	now := time.Now()
	res := &Result{Item: item, Machine: machine, Slot: slot}

	switch item.Assignment.Role {
	case entity.RoleActive:
		if slot.ActiveItemID != item.ID {
			return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s dice ser activo de %s/%s pero la ranura registra %q", itemID, target.MachineID, target.SlotID, slot.ActiveItemID)}
		}
		verdict := policy.Authorize(actor.Role, policy.ActionDemote, item.StockLevel(), actor.OverrideGranted)
		if verdict.Decision == policy.Deny {
			return nil, &DeniedError{Reason: verdict.Reason}
		}
		slot.ActiveItemID = ""
		item.Assignment = nil
		item.UpdatedAt = now
		if err := itemRepo.UpdateAssignment(item); err != nil {
			return nil, err
		}
		if err := logRepo.Insert(newLog(itemID, target.MachineID, target.SlotID, entity.LogUnassigned, actor, "", now)); err != nil {
			return nil, err
		}
		promoted, err := e.autoPromote(machine, slot, itemRepo, logRepo, now)
		if err != nil {
			return nil, err
		}
		res.Promoted = promoted
	case entity.RoleQueued:
		if !slot.InQueue(item.ID) {
			return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s dice estar encolado en %s/%s pero no aparece en la cola", itemID, target.MachineID, target.SlotID)}
		}
		// Quitar de la cola no exige privilegio ni dispara promoción: el
		// activo de la ranura, si lo hay, no se toca.
		slot.RemoveFromQueue(item.ID)
		item.Assignment = nil
		item.UpdatedAt = now
		if err := itemRepo.UpdateAssignment(item); err != nil {
			return nil, err
		}
		if err := logRepo.Insert(newLog(itemID, target.MachineID, target.SlotID, entity.LogUnassigned, actor, "", now)); err != nil {
			return nil, err
		}
	default:
		return nil, &InvariantError{Detail: fmt.Sprintf("rol de asignación desconocido %q en el artículo %s", item.Assignment.Role, itemID)}
	}

	machine.UpdatedAt = now
	if err := machineRepo.UpdateSlots(machine); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) removeFromQueueTx(
	itemID string,
	actor Actor,
	target entity.Assignment,
	itemRepo repository.StockItemRepository,
	machineRepo repository.MachineRepository,
	logRepo repository.AssignmentLogRepository,
) (*Result, error) {
	item, err := itemRepo.GetForUpdate(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if item.Assignment == nil || item.Assignment.Role != entity.RoleQueued {
		return nil, ErrNotQueued
	}
	if item.Assignment.MachineID != target.MachineID || item.Assignment.SlotID != target.SlotID {
		return nil, ErrBusy
	}

	machine, err := machineRepo.GetForUpdate(target.MachineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s está encolado en la máquina inexistente %q", itemID, target.MachineID)}
	}
	slot := machine.FindSlot(target.SlotID)
	if slot == nil {
		return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s está encolado en la ranura inexistente %s/%s", itemID, target.MachineID, target.SlotID)}
	}
	if err := checkSlotInvariants(slot); err != nil {
		return nil, err
	}
	if !slot.InQueue(item.ID) {
		return nil, &InvariantError{Detail: fmt.Sprintf("el artículo %s dice estar encolado en %s/%s pero no aparece en la cola", itemID, target.MachineID, target.SlotID)}
	}

	now := time.Now()
	slot.RemoveFromQueue(item.ID)
	item.Assignment = nil
	item.UpdatedAt = now
	if err := itemRepo.UpdateAssignment(item); err != nil {
		return nil, err
	}
	if err := logRepo.Insert(newLog(itemID, target.MachineID, target.SlotID, entity.LogQueueRemoved, actor, "", now)); err != nil {
		return nil, err
	}
	machine.UpdatedAt = now
	if err := machineRepo.UpdateSlots(machine); err != nil {
		return nil, err
	}
	return &Result{Item: item, Machine: machine, Slot: slot}, nil
}

// autoPromote sube la cabeza de la cola (el encolado más antiguo) a activo.
// Única transición que el motor inicia sin disparador externo; corre dentro de
// la misma transacción que la liberación que la provocó, de modo que nunca se
// observa una ranura con activo vacío y cola no vacía.
func (e *Engine) autoPromote(
	machine *entity.Machine,
	slot *entity.Slot,
	itemRepo repository.StockItemRepository,
	logRepo repository.AssignmentLogRepository,
	now time.Time,
) (*entity.StockItem, error) {
	if len(slot.Queue) == 0 {
		return nil, nil
	}
	head := slot.Queue[0]
	promoted, err := itemRepo.GetForUpdate(head)
	if err != nil {
		return nil, err
	}
	if promoted == nil {
		return nil, &InvariantError{Detail: fmt.Sprintf("la cola de %s/%s referencia un artículo inexistente %q", machine.ID, slot.ID, head)}
	}
	slot.Queue = slot.Queue[1:]
	slot.ActiveItemID = head
	promoted.Assignment = &entity.Assignment{MachineID: machine.ID, SlotID: slot.ID, Role: entity.RoleActive, AssignedAt: now}
	promoted.UpdatedAt = now
	if err := itemRepo.UpdateAssignment(promoted); err != nil {
		return nil, err
	}
	sys := Actor{ID: entity.SystemActor, Role: policy.Role(entity.SystemActor)}
	if err := logRepo.Insert(newLog(head, machine.ID, slot.ID, entity.LogAutoPromoted, sys, "promovido de la cola al liberarse la ranura", now)); err != nil {
		return nil, err
	}
	return promoted, nil
}

// checkSlotInvariants chequeos defensivos previos a cualquier escritura: la
// cola no contiene duplicados ni al artículo activo. Si fallan, la operación
// se aborta con el estado intacto.
func checkSlotInvariants(slot *entity.Slot) error {
	if slot.QueueHasDuplicates() {
		return &InvariantError{Detail: fmt.Sprintf("la cola de la ranura %s contiene duplicados", slot.ID)}
	}
	if slot.ActiveItemID != "" && slot.InQueue(slot.ActiveItemID) {
		return &InvariantError{Detail: fmt.Sprintf("la cola de la ranura %s contiene al artículo activo %s", slot.ID, slot.ActiveItemID)}
	}
	return nil
}

func newLog(itemID, machineID, slotID string, action entity.LogAction, actor Actor, detail string, now time.Time) *entity.AssignmentLog {
	return &entity.AssignmentLog{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		MachineID: machineID,
		SlotID:    slotID,
		Action:    action,
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Detail:    detail,
		CreatedAt: now,
	}
}

// report registra violaciones de invariante (estado corrupto: nivel error) y
// deja pasar el resto de errores tal cual.
func (e *Engine) report(err error, op, itemID, machineID, slotID string) error {
	var inv *InvariantError
	if errors.As(err, &inv) {
		e.log.Error().
			Str("op", op).
			Str("item_id", itemID).
			Str("machine_id", machineID).
			Str("slot_id", slotID).
			Str("detail", inv.Detail).
			Msg("violación de invariante detectada; operación abortada sin escribir")
	}
	return err
}

func (e *Engine) logApplied(op string, in AssignInput, res *Result) {
	ev := e.log.Info().
		Str("op", op).
		Str("item_id", in.ItemID).
		Str("machine_id", in.MachineID).
		Str("slot_id", in.SlotID).
		Str("actor_role", string(in.Actor.Role)).
		Bool("no_op", res.NoOp)
	if res.Promoted != nil {
		ev = ev.Str("promoted_item_id", res.Promoted.ID)
	}
	if res.Displaced != nil {
		ev = ev.Str("displaced_item_id", res.Displaced.ID)
	}
	ev.Msg("transición de asignación")
}
