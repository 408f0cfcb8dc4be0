package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/application/engine/enginetest"
	"github.com/tu-usuario/stock-ledger/internal/application/idempotency"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/refs"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	apphttp "github.com/tu-usuario/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/tu-usuario/stock-ledger/pkg/jwt"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "stock-ledger-test"
	testExpMin    = 60
)

// buildAuthApp construye una aplicación Fiber mínima con AuthMiddleware,
// RequireRole y un handler dummy que devuelve 200 si pasa los middlewares.
func buildAuthApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":     true,
				"role":   apphttp.GetRole(c),
				"tenant": apphttp.GetTenantID(c),
				"actor":  apphttp.GetActor(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTenantID, "Usuario Test", role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doGet lanza una petición GET /protected y devuelve la respuesta.
func doGet(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinTokenRechazado(t *testing.T) {
	app := buildAuthApp(entity.RoleAdmin)
	resp := doGet(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenMalFirmadoRechazado(t *testing.T) {
	app := buildAuthApp(entity.RoleAdmin)
	otro, err := pkgjwt.Generate("otro-secret", testUserID, testTenantID, "x", entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doGet(t, app, "Bearer "+otro)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_FormatoInvalidoRechazado(t *testing.T) {
	app := buildAuthApp(entity.RoleAdmin)
	resp := doGet(t, app, "Basic abc123")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ClaimsQuedanEnLocals(t *testing.T) {
	app := buildAuthApp(entity.RoleOperator)
	resp := doGet(t, app, tokenForRole(t, entity.RoleOperator))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testTenantID, body["tenant"], "el tenant del token debe quedar en locals")
	assert.Equal(t, "Usuario Test", body["actor"], "el actor debe ser el nombre del usuario")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_OperadorAccedeRutaDeEscritura(t *testing.T) {
	app := buildAuthApp(entity.RoleAdmin, entity.RoleOperator)
	resp := doGet(t, app, tokenForRole(t, entity.RoleOperator))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"operator debe poder acceder a ruta que permite admin u operator")
}

func TestRequireRole_ViewerBloqueadoEnMutaciones(t *testing.T) {
	app := buildAuthApp(entity.RoleAdmin, entity.RoleOperator)
	resp := doGet(t, app, tokenForRole(t, entity.RoleViewer))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"viewer no debe poder ejecutar mutaciones")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests IdempotencyMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// memIdempotencyRepo repositorio mínimo en memoria para el guard.
type memIdempotencyRepo struct {
	mu      sync.Mutex
	records map[string]entity.IdempotencyRecord
}

func (r *memIdempotencyRepo) Get(_ context.Context, tenantID, key string, now time.Time) (*entity.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[tenantID+"|"+key]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, nil
	}
	return &rec, nil
}

func (r *memIdempotencyRepo) Save(_ context.Context, record *entity.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records == nil {
		r.records = make(map[string]entity.IdempotencyRecord)
	}
	k := record.TenantID + "|" + record.Key
	// Como el upsert real: la fila vigente gana, la vencida se sobreescribe.
	if existing, ok := r.records[k]; ok && existing.ExpiresAt.After(record.CreatedAt) {
		return nil
	}
	r.records[k] = *record
	return nil
}

func (r *memIdempotencyRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// buildIdempotencyApp app con auth + idempotencia y un handler que cuenta
// cuántas veces se ejecuta de verdad.
func buildIdempotencyApp(t *testing.T, executions *int) *fiber.App {
	t.Helper()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	guard := idempotency.NewGuard(&memIdempotencyRepo{}, time.Hour, engine.NopMetrics{}, log.Component("idempotency"))

	app := fiber.New()
	app.Post("/mutate",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.IdempotencyMiddleware(guard),
		func(c *fiber.Ctx) error {
			*executions++
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movement_id": "mov-1", "n": *executions})
		},
	)
	return app
}

func doPost(t *testing.T, app *fiber.App, body, idemKey string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mutate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleOperator))
	if idemKey != "" {
		req.Header.Set(apphttp.HeaderIdempotencyKey, idemKey)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestIdempotency_ReplayDevuelveLaMismaRespuestaSinReejecutar(t *testing.T) {
	executions := 0
	app := buildIdempotencyApp(t, &executions)

	resp1 := doPost(t, app, `{"quantity":"10"}`, "key-1")
	first, _ := io.ReadAll(resp1.Body)
	resp1.Body.Close()
	require.Equal(t, http.StatusCreated, resp1.StatusCode)
	require.Equal(t, 1, executions)

	resp2 := doPost(t, app, `{"quantity":"10"}`, "key-1")
	second, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	assert.Equal(t, http.StatusCreated, resp2.StatusCode)
	assert.Equal(t, string(first), string(second), "el replay debe devolver el cuerpo guardado byte a byte")
	assert.Equal(t, 1, executions, "el handler no debe re-ejecutarse en un replay")
}

func TestIdempotency_MismaClaveConOtroCuerpoConflicto(t *testing.T) {
	executions := 0
	app := buildIdempotencyApp(t, &executions)

	resp1 := doPost(t, app, `{"quantity":"10"}`, "key-1")
	resp1.Body.Close()
	require.Equal(t, http.StatusCreated, resp1.StatusCode)

	resp2 := doPost(t, app, `{"quantity":"999"}`, "key-1")
	defer resp2.Body.Close()

	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
	body, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(body), "IDEMPOTENCY_MISMATCH")
	assert.Equal(t, 1, executions)
}

func TestIdempotency_SinHeaderPasaDeLargo(t *testing.T) {
	executions := 0
	app := buildIdempotencyApp(t, &executions)

	resp1 := doPost(t, app, `{}`, "")
	resp1.Body.Close()
	resp2 := doPost(t, app, `{}`, "")
	resp2.Body.Close()

	assert.Equal(t, 2, executions, "sin Idempotency-Key cada request ejecuta la mutación")
}

// buildReceiptApp app con auth + idempotencia sobre el handler real de
// entradas, respaldado por repositorios en memoria.
func buildReceiptApp(t *testing.T) (*fiber.App, *enginetest.Store) {
	t.Helper()
	store := enginetest.NewStore()
	store.SeedItem(testTenantID, "item-1", "SKU-001")
	store.SeedWarehouse(testTenantID, "wh-1", "BOD-01")

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	eng := engine.New(false, 3, log.Component("engine"), engine.WithBackoff(time.Millisecond))
	validator := refs.NewValidator(&enginetest.ItemRepo{Store: store}, &enginetest.WarehouseRepo{Store: store}, &enginetest.LocationRepo{Store: store})
	repos := store.Repos()
	uc := inventory.NewUseCase(eng, store.Runner(), validator, repos.Balances, repos.Movements, engine.NopPublisher{})
	guard := idempotency.NewGuard(&memIdempotencyRepo{}, time.Hour, engine.NopMetrics{}, log.Component("idempotency"))

	app := fiber.New()
	handler := apphttp.NewInventoryHandler(uc)
	app.Post("/api/inventory/receipts",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.IdempotencyMiddleware(guard),
		handler.Receipt,
	)
	return app, store
}

// Dos entradas con la misma clave contra el handler real: misma respuesta
// byte a byte (mismo movement_id) y un único asiento en el ledger.
func TestIdempotency_ReceiptRepetidoNoDuplicaAsientos(t *testing.T) {
	app, store := buildReceiptApp(t)
	body := `{"item_id":"item-1","warehouse_id":"wh-1","quantity":"25"}`

	req1 := httptest.NewRequest(http.MethodPost, "/api/inventory/receipts", bytes.NewBufferString(body))
	req1.Header.Set("Content-Type", "application/json")
	req1.Header.Set("Authorization", tokenForRole(t, entity.RoleOperator))
	req1.Header.Set(apphttp.HeaderIdempotencyKey, "receipt-key-1")
	resp1, err := app.Test(req1, -1)
	require.NoError(t, err)
	first, _ := io.ReadAll(resp1.Body)
	resp1.Body.Close()
	require.Equal(t, http.StatusCreated, resp1.StatusCode)

	req2 := httptest.NewRequest(http.MethodPost, "/api/inventory/receipts", bytes.NewBufferString(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("Authorization", tokenForRole(t, entity.RoleOperator))
	req2.Header.Set(apphttp.HeaderIdempotencyKey, "receipt-key-1")
	resp2, err := app.Test(req2, -1)
	require.NoError(t, err)
	second, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	assert.Equal(t, http.StatusCreated, resp2.StatusCode)
	assert.Equal(t, string(first), string(second), "el replay debe devolver el mismo movement_id")

	movs := store.Movements()
	require.Len(t, movs, 1, "la entrada repetida no debe asentar dos veces")
	assert.Equal(t, entity.MovementReceipt, movs[0].Kind)

	b := store.Balance(testTenantID, entity.BalanceKey{ItemID: "item-1", WarehouseID: "wh-1"})
	require.NotNil(t, b)
	assert.Equal(t, "25", b.OnHand.String())
}
