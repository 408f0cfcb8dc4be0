package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo implementación de IdempotencyRepository sobre PostgreSQL.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador de idempotencia. Pasar pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get devuelve el registro vigente para (tenant, key), o nil si no existe o
// ya venció. Un registro vencido es invisible: la clave vuelve a ser utilizable.
func (r *IdempotencyRepo) Get(ctx context.Context, tenantID, key string, now time.Time) (*entity.IdempotencyRecord, error) {
	query := `
		SELECT id, tenant_id, idempotency_key, request_hash, status_code, response_body, created_at, expires_at
		FROM idempotency_keys
		WHERE tenant_id = $1 AND idempotency_key = $2 AND expires_at > $3`
	var rec entity.IdempotencyRecord
	err := r.q.QueryRow(ctx, query, tenantID, key, now).Scan(
		&rec.ID, &rec.TenantID, &rec.Key, &rec.RequestHash,
		&rec.StatusCode, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return &rec, nil
}

// Save guarda un registro. Ante carrera con la misma clave vigente gana el
// primero (el duplicado no es error porque ambos guardan la misma respuesta);
// una fila vencida se sobreescribe, así una clave re-usada tras el TTL vuelve
// a quedar protegida contra replays.
func (r *IdempotencyRepo) Save(ctx context.Context, rec *entity.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_keys (id, tenant_id, idempotency_key, request_hash, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, idempotency_key) DO UPDATE SET
			id = EXCLUDED.id,
			request_hash = EXCLUDED.request_hash,
			status_code = EXCLUDED.status_code,
			response_body = EXCLUDED.response_body,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= EXCLUDED.created_at`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.TenantID, rec.Key, rec.RequestHash,
		rec.StatusCode, rec.ResponseBody, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save idempotency record: %w", err)
	}
	return nil
}

// DeleteExpired borra registros vencidos y devuelve cuántos eliminó.
func (r *IdempotencyRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency records: %w", err)
	}
	return tag.RowsAffected(), nil
}
