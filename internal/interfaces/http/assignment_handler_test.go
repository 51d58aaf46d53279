package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawops/clawfleet-api/internal/application/assignment"
	"github.com/clawops/clawfleet-api/internal/application/stock"
	"github.com/clawops/clawfleet-api/internal/domain/entity"
	"github.com/clawops/clawfleet-api/internal/domain/repository"
	apphttp "github.com/clawops/clawfleet-api/internal/interfaces/http"
	"github.com/clawops/clawfleet-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria (misma semántica de rollback que la transacción real: los
// cambios solo se publican si el callback termina sin error)
// ──────────────────────────────────────────────────────────────────────────────

type fleetStore struct {
	mu       sync.Mutex
	items    map[string]*entity.StockItem
	machines map[string]*entity.Machine
	logs     []entity.AssignmentLog
}

func newFleetStore() *fleetStore {
	return &fleetStore{
		items:    make(map[string]*entity.StockItem),
		machines: make(map[string]*entity.Machine),
	}
}

func copyItem(i *entity.StockItem) *entity.StockItem {
	if i == nil {
		return nil
	}
	c := *i
	c.Quantities = append([]entity.LocationQuantity(nil), i.Quantities...)
	if i.ManualStockStatus != nil {
		s := *i.ManualStockStatus
		c.ManualStockStatus = &s
	}
	if i.Assignment != nil {
		a := *i.Assignment
		c.Assignment = &a
	}
	return &c
}

func copyMachine(m *entity.Machine) *entity.Machine {
	if m == nil {
		return nil
	}
	c := *m
	c.Slots = make([]entity.Slot, len(m.Slots))
	for i, s := range m.Slots {
		cs := s
		cs.Queue = append([]string(nil), s.Queue...)
		c.Slots[i] = cs
	}
	return &c
}

func (s *fleetStore) snapshot() *fleetStore {
	w := newFleetStore()
	for id, it := range s.items {
		w.items[id] = copyItem(it)
	}
	for id, m := range s.machines {
		w.machines[id] = copyMachine(m)
	}
	w.logs = append([]entity.AssignmentLog(nil), s.logs...)
	return w
}

type fakeItemRepo struct{ s *fleetStore }

func (r *fakeItemRepo) GetByID(id string) (*entity.StockItem, error) {
	return copyItem(r.s.items[id]), nil
}
func (r *fakeItemRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	return copyItem(r.s.items[id]), nil
}
func (r *fakeItemRepo) UpdateAssignment(item *entity.StockItem) error {
	r.s.items[item.ID] = copyItem(item)
	return nil
}
func (r *fakeItemRepo) UpdateManualStatus(item *entity.StockItem) error {
	r.s.items[item.ID] = copyItem(item)
	return nil
}

type fakeMachineRepo struct{ s *fleetStore }

func (r *fakeMachineRepo) GetByID(id string) (*entity.Machine, error) {
	return copyMachine(r.s.machines[id]), nil
}
func (r *fakeMachineRepo) GetForUpdate(id string) (*entity.Machine, error) {
	return copyMachine(r.s.machines[id]), nil
}
func (r *fakeMachineRepo) UpdateSlots(m *entity.Machine) error {
	r.s.machines[m.ID] = copyMachine(m)
	return nil
}

type fakeLogRepo struct{ s *fleetStore }

func (r *fakeLogRepo) Insert(l *entity.AssignmentLog) error {
	r.s.logs = append(r.s.logs, *l)
	return nil
}
func (r *fakeLogRepo) ListByItem(itemID string, limit int) ([]entity.AssignmentLog, error) {
	var out []entity.AssignmentLog
	for i := len(r.s.logs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.s.logs[i].ItemID == itemID {
			out = append(out, r.s.logs[i])
		}
	}
	return out, nil
}

type fakeTxRunner struct{ s *fleetStore }

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	machineRepo repository.MachineRepository,
	logRepo repository.AssignmentLogRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	work := r.s.snapshot()
	if err := fn(&fakeItemRepo{work}, &fakeMachineRepo{work}, &fakeLogRepo{work}); err != nil {
		return err
	}
	r.s.items = work.items
	r.s.machines = work.machines
	r.s.logs = work.logs
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// buildFleetApp levanta la API completa (router + middlewares) sobre los fakes.
func buildFleetApp(s *fleetStore) *fiber.App {
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	engine := assignment.NewEngine(
		&fakeTxRunner{s},
		&fakeItemRepo{s},
		&fakeMachineRepo{s},
		assignment.NewKeyedLock(500*time.Millisecond),
		log,
	)
	stockUC := stock.NewUseCase(&fakeItemRepo{s}, &fakeMachineRepo{s}, &fakeLogRepo{s})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Engine:    engine,
		StockUC:   stockUC,
		JWTSecret: testJWTSecret,
	})
	return app
}

func seedFleet(qty int) *fleetStore {
	s := newFleetStore()
	s.items["plush-1"] = &entity.StockItem{
		ID:   "plush-1",
		Name: "Oso de peluche",
		Quantities: []entity.LocationQuantity{
			{LocationID: "almacen", Quantity: qty},
		},
		LowStockThreshold: 11,
	}
	s.items["plush-2"] = &entity.StockItem{
		ID:   "plush-2",
		Name: "Dino de peluche",
		Quantities: []entity.LocationQuantity{
			{LocationID: "almacen", Quantity: 80},
		},
		LowStockThreshold: 11,
	}
	s.machines["m-1"] = &entity.Machine{
		ID:    "m-1",
		Name:  "Garra lobby",
		Slots: []entity.Slot{{ID: "s-1", SizeTag: "L"}, {ID: "s-2", SizeTag: "M"}},
	}
	return s
}

// doJSON lanza una petición JSON autenticada y devuelve la respuesta.
func doJSON(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de los endpoints de asignación
// ──────────────────────────────────────────────────────────────────────────────

func TestAssignEndpoint_AsignaActivo(t *testing.T) {
	s := seedFleet(80)
	app := buildFleetApp(s)

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["no_op"])
	slot := body["slot"].(map[string]any)
	assert.Equal(t, "plush-1", slot["active_item_id"])
}

func TestAssignEndpoint_SinToken_Retorna401(t *testing.T) {
	app := buildFleetApp(seedFleet(80))

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssignEndpoint_ItemInexistente_Retorna404(t *testing.T) {
	app := buildFleetApp(seedFleet(80))

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", map[string]any{
		"item_id": "no-existe", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAssignEndpoint_SinStock_CrewDenegado(t *testing.T) {
	app := buildFleetApp(seedFleet(0))

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "DENIED", body["code"])
}

func TestAssignEndpoint_StockBajo_AdvertenciaYOverride(t *testing.T) {
	app := buildFleetApp(seedFleet(5)) // 5 <= umbral 11 → Low Stock

	// Sin override: advertencia que exige confirmación
	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "manager", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "CONFIRMATION_REQUIRED", body["code"])

	// Reenvío con override: procede
	resp = doJSON(t, app, http.MethodPost, "/api/assignments/", "manager", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
		"override_granted": true,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAssignEndpoint_ConflictoYConfirmReplace(t *testing.T) {
	s := seedFleet(80)
	app := buildFleetApp(s)

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Segundo artículo sobre la misma ranura: conflicto con el activo actual
	resp = doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", map[string]any{
		"item_id": "plush-2", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "CONFLICT", body["code"])
	assert.Equal(t, "plush-1", body["current_active_item_id"])

	// Confirmación de reemplazo: desplaza al anterior
	resp = doJSON(t, app, http.MethodPost, "/api/assignments/confirm-replace", "crew", map[string]any{
		"item_id": "plush-2", "machine_id": "m-1", "slot_id": "s-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "plush-1", body["displaced_item_id"])

	// El desplazado quedó sin asignar
	assert.Nil(t, s.items["plush-1"].Assignment)
}

func TestUnassignEndpoint_PromueveCabezaDeCola(t *testing.T) {
	s := seedFleet(80)
	app := buildFleetApp(s)

	for _, req := range []map[string]any{
		{"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active"},
		{"item_id": "plush-2", "machine_id": "m-1", "slot_id": "s-1", "mode": "Queued"},
	} {
		resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// Retirar un activo exige rol de gestión
	resp := doJSON(t, app, http.MethodPost, "/api/assignments/unassign", "crew", map[string]any{
		"item_id": "plush-1",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/assignments/unassign", "manager", map[string]any{
		"item_id": "plush-1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "plush-2", body["promoted_item_id"],
		"la cabeza de la cola debe auto-promoverse al liberar el activo")
}

func TestQueueRemoveEndpoint_NoEncolado_Retorna422(t *testing.T) {
	app := buildFleetApp(seedFleet(80))

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/queue-remove", "crew", map[string]any{
		"item_id": "plush-1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "NOT_QUEUED", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de los endpoints de stock y máquinas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetItemEndpoint_NivelCalculado(t *testing.T) {
	app := buildFleetApp(seedFleet(5))

	resp := doJSON(t, app, http.MethodGet, "/api/items/plush-1", "crew", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Low Stock", body["stock_level"])
	assert.Equal(t, float64(5), body["total_quantity"])
}

func TestSetStockStatusEndpoint_SoloGestion(t *testing.T) {
	app := buildFleetApp(seedFleet(80))

	// crew no puede fijar el override manual
	resp := doJSON(t, app, http.MethodPatch, "/api/items/plush-1/stock-status", "crew", map[string]any{
		"status": "Out of Stock",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// manager sí; el override gana sobre el nivel calculado
	resp = doJSON(t, app, http.MethodPatch, "/api/items/plush-1/stock-status", "manager", map[string]any{
		"status": "Out of Stock",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Out of Stock", body["stock_level"],
		"el override manual debe ganar aunque haya 80 unidades")

	// status desconocido → 400
	resp = doJSON(t, app, http.MethodPatch, "/api/items/plush-1/stock-status", "manager", map[string]any{
		"status": "Muy Poco",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// status vacío borra el override y vuelve al cálculo automático
	resp = doJSON(t, app, http.MethodPatch, "/api/items/plush-1/stock-status", "manager", map[string]any{
		"status": "",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "In Stock", body["stock_level"])
}

func TestGetMachineEndpoint_EstadoDeRanuras(t *testing.T) {
	s := seedFleet(80)
	app := buildFleetApp(s)

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/machines/m-1", "crew", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	slots := body["slots"].([]any)
	require.Len(t, slots, 2)
	assert.Equal(t, "plush-1", slots[0].(map[string]any)["active_item_id"])
}

func TestGetItemHistoryEndpoint_RegistraTransiciones(t *testing.T) {
	app := buildFleetApp(seedFleet(80))

	resp := doJSON(t, app, http.MethodPost, "/api/assignments/", "crew", map[string]any{
		"item_id": "plush-1", "machine_id": "m-1", "slot_id": "s-1", "mode": "Active",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/items/plush-1/history", "crew", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var logs []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.NotEmpty(t, logs)
	assert.Equal(t, "ASSIGNED", logs[0]["action"])
}
