package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// IdempotencyRepository puerto de persistencia de registros de idempotencia.
// Se escribe fuera de la transacción de negocio (best effort).
type IdempotencyRepository interface {
	// Get devuelve el registro vigente para (tenant, key), o nil si no existe
	// o ya venció.
	Get(ctx context.Context, tenantID, key string, now time.Time) (*entity.IdempotencyRecord, error)
	Save(ctx context.Context, record *entity.IdempotencyRecord) error
	// DeleteExpired limpia registros vencidos; pensado para un barrido periódico.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
