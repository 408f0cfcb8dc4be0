package engine

import (
	"context"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción de BD. Todo lo que un
// workflow toca dentro de Run comparte atomicidad: o persiste todo o nada.
type Repos struct {
	Balances     repository.BalanceRepository
	Movements    repository.MovementRepository
	Reservations repository.ReservationRepository
	Transfers    repository.TransferRepository
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados
// a esa tx, con Commit si fn retorna nil y Rollback en cualquier otro caso
// (incluida cancelación del contexto antes del commit).
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Metrics contadores de observabilidad del motor. La implementación vive en
// infraestructura; NopMetrics para tests y wiring sin métricas.
type Metrics interface {
	MovementApplied(kind string)
	ConcurrencyConflict()
	IdempotencyReplay()
	ApplyDuration(d time.Duration)
}

// NopMetrics implementación vacía de Metrics.
type NopMetrics struct{}

func (NopMetrics) MovementApplied(string)      {}
func (NopMetrics) ConcurrencyConflict()        {}
func (NopMetrics) IdempotencyReplay()          {}
func (NopMetrics) ApplyDuration(time.Duration) {}

// Publisher publica eventos de movimientos aplicados, después del commit y a
// título best-effort: un fallo de publicación nunca afecta la operación.
type Publisher interface {
	MovementApplied(ctx context.Context, movement *entity.Movement)
}

// NopPublisher implementación vacía de Publisher.
type NopPublisher struct{}

func (NopPublisher) MovementApplied(context.Context, *entity.Movement) {}
