package idempotency_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/idempotency"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

const tenant = "tenant-1"

// fakeRepo repositorio de idempotencia en memoria con la misma semántica de
// vencimiento que la tabla real.
type fakeRepo struct {
	mu      sync.Mutex
	records map[string]entity.IdempotencyRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]entity.IdempotencyRecord)}
}

func (r *fakeRepo) Get(_ context.Context, tenantID, key string, now time.Time) (*entity.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[tenantID+"|"+key]
	if !ok || !rec.ExpiresAt.After(now) {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeRepo) Save(_ context.Context, record *entity.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := record.TenantID + "|" + record.Key
	// Misma semántica que el upsert real: una fila vigente gana, una fila
	// vencida se sobreescribe.
	if existing, ok := r.records[k]; ok && existing.ExpiresAt.After(record.CreatedAt) {
		return nil
	}
	r.records[k] = *record
	return nil
}

// expire fuerza el vencimiento del registro de una clave.
func (r *fakeRepo) expire(tenantID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := tenantID + "|" + key
	rec := r.records[k]
	rec.ExpiresAt = time.Now().Add(-time.Minute)
	r.records[k] = rec
}

func (r *fakeRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, rec := range r.records {
		if !rec.ExpiresAt.After(now) {
			delete(r.records, k)
			n++
		}
	}
	return n, nil
}

type countingMetrics struct {
	replays int
}

func (m *countingMetrics) MovementApplied(string)      {}
func (m *countingMetrics) ConcurrencyConflict()        {}
func (m *countingMetrics) IdempotencyReplay()          { m.replays++ }
func (m *countingMetrics) ApplyDuration(time.Duration) {}

func newGuard(t *testing.T, repo *fakeRepo, metrics *countingMetrics) *idempotency.Guard {
	t.Helper()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return idempotency.NewGuard(repo, time.Hour, metrics, log.Component("idempotency"))
}

func TestGuard_MissGuardaYReplayDevuelveLoGuardado(t *testing.T) {
	repo := newFakeRepo()
	metrics := &countingMetrics{}
	guard := newGuard(t, repo, metrics)
	ctx := context.Background()
	body := []byte(`{"quantity":"10"}`)
	response := []byte(`{"movement_id":"mov-1"}`)

	// Primer request: miss.
	rec, err := guard.Before(ctx, tenant, "key-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 0, metrics.replays)

	guard.After(ctx, tenant, "key-1", body, 201, response)

	// Replay: devuelve status y cuerpo guardados tal cual.
	rec, err = guard.Before(ctx, tenant, "key-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 201, rec.StatusCode)
	assert.Equal(t, string(response), rec.ResponseBody)
	assert.Equal(t, idempotency.HashBody(body), rec.RequestHash)
	assert.Equal(t, 1, metrics.replays)
}

func TestGuard_NoCacheaRespuestasFallidas(t *testing.T) {
	repo := newFakeRepo()
	guard := newGuard(t, repo, &countingMetrics{})
	ctx := context.Background()

	guard.After(ctx, tenant, "key-1", []byte(`{}`), 409, []byte(`{"code":"INSUFFICIENT_STOCK"}`))

	// El fallo no consumió la clave: el retry vuelve a ejecutar la mutación.
	rec, err := guard.Before(ctx, tenant, "key-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGuard_RegistroVencidoEsInvisible(t *testing.T) {
	repo := newFakeRepo()
	guard := newGuard(t, repo, &countingMetrics{})
	ctx := context.Background()

	expired := entity.IdempotencyRecord{
		ID:        "rec-1",
		TenantID:  tenant,
		Key:       "key-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.Save(ctx, &expired))

	rec, err := guard.Before(ctx, tenant, "key-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Sweep limpia el registro vencido.
	n, err := guard.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// Una clave re-usada después de vencer su registro debe volver a quedar
// protegida: la fila vieja no puede bloquear el guardado del nuevo resultado.
func TestGuard_ClaveReusadaTrasVencerVuelveACachearse(t *testing.T) {
	repo := newFakeRepo()
	guard := newGuard(t, repo, &countingMetrics{})
	ctx := context.Background()

	guard.After(ctx, tenant, "key-1", []byte(`{"quantity":"10"}`), 201, []byte(`{"movement_id":"mov-1"}`))
	repo.expire(tenant, "key-1")

	// El registro vencido es invisible: el caller re-ejecuta la mutación.
	rec, err := guard.Before(ctx, tenant, "key-1")
	require.NoError(t, err)
	require.Nil(t, rec)

	guard.After(ctx, tenant, "key-1", []byte(`{"quantity":"10"}`), 201, []byte(`{"movement_id":"mov-2"}`))

	// El nuevo resultado sobreescribió la fila vencida: replay protegido otra vez.
	rec, err = guard.Before(ctx, tenant, "key-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, `{"movement_id":"mov-2"}`, rec.ResponseBody)
}

func TestGuard_ClavesAisladasPorTenant(t *testing.T) {
	repo := newFakeRepo()
	guard := newGuard(t, repo, &countingMetrics{})
	ctx := context.Background()

	guard.After(ctx, "tenant-a", "key-1", []byte(`{}`), 200, []byte(`ok`))

	rec, err := guard.Before(ctx, "tenant-b", "key-1")
	require.NoError(t, err)
	assert.Nil(t, rec, "la clave de un tenant no debe verse desde otro")
}

func TestHashBody_DetectaPayloadDistinto(t *testing.T) {
	a := idempotency.HashBody([]byte(`{"quantity":"10"}`))
	b := idempotency.HashBody([]byte(`{"quantity":"20"}`))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}
