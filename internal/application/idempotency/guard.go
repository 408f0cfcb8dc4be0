package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

// Guard cache de respuestas por (tenant, Idempotency-Key). Un hit devuelve la
// respuesta guardada verbatim sin re-ejecutar la mutación; solo se cachean
// respuestas 2xx, de modo que un request fallido puede reintentarse con la
// misma clave.
type Guard struct {
	repo    repository.IdempotencyRepository
	ttl     time.Duration
	clock   func() time.Time
	metrics engine.Metrics
	log     *logger.Logger
}

// NewGuard construye el guard con el TTL de retención de claves.
func NewGuard(repo repository.IdempotencyRepository, ttl time.Duration, metrics engine.Metrics, log *logger.Logger) *Guard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if metrics == nil {
		metrics = engine.NopMetrics{}
	}
	return &Guard{repo: repo, ttl: ttl, clock: time.Now, metrics: metrics, log: log}
}

// Before busca un registro vigente para la clave. Nil significa miss: el
// caller debe ejecutar la mutación y luego llamar After.
func (g *Guard) Before(ctx context.Context, tenantID, key string) (*entity.IdempotencyRecord, error) {
	record, err := g.repo.Get(ctx, tenantID, key, g.clock())
	if err != nil {
		return nil, err
	}
	if record != nil {
		g.metrics.IdempotencyReplay()
		g.log.Debug().Str("idempotency_key", key).Msg("replay de idempotencia, devolviendo respuesta cacheada")
	}
	return record, nil
}

// After guarda la respuesta de una mutación exitosa. Es best effort y corre
// fuera de la transacción de negocio: si el guardado falla, la operación ya
// quedó aplicada y solo se pierde la protección de replay para esa clave.
func (g *Guard) After(ctx context.Context, tenantID, key string, requestBody []byte, statusCode int, responseBody []byte) {
	if statusCode < 200 || statusCode >= 300 {
		return
	}
	now := g.clock()
	record := &entity.IdempotencyRecord{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		Key:          key,
		RequestHash:  HashBody(requestBody),
		StatusCode:   statusCode,
		ResponseBody: string(responseBody),
		CreatedAt:    now,
		ExpiresAt:    now.Add(g.ttl),
	}
	if err := g.repo.Save(ctx, record); err != nil {
		g.log.Warn().Err(err).Str("idempotency_key", key).Msg("no se pudo guardar el registro de idempotencia")
	}
}

// Sweep borra registros vencidos; pensado para correr periódicamente.
func (g *Guard) Sweep(ctx context.Context) (int64, error) {
	return g.repo.DeleteExpired(ctx, g.clock())
}

// SweepEvery ejecuta Sweep cada interval hasta que el contexto se cancele.
// Pensado para correr en una goroutine desde el arranque.
func (g *Guard) SweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := g.Sweep(ctx)
			if err != nil {
				g.log.Warn().Err(err).Msg("barrido de claves de idempotencia")
				continue
			}
			if n > 0 {
				g.log.Debug().Int64("eliminadas", n).Msg("claves de idempotencia vencidas eliminadas")
			}
		}
	}
}

// HashBody hash SHA-256 hex del cuerpo del request, para detectar reuso de
// clave con payload distinto.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
