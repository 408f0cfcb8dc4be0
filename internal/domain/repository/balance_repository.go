package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// BalanceFilter filtros de listado de saldos.
type BalanceFilter struct {
	ItemID      string
	WarehouseID string
	Page        int
	PageSize    int
}

// BalanceRepository puerto de persistencia de saldos (DIP).
// Las filas se mutan solo vía el motor de saldos, con CAS sobre RowVersion.
type BalanceRepository interface {
	// Get devuelve la fila de saldo para la clave, o nil si nunca existió.
	Get(ctx context.Context, tenantID string, key entity.BalanceKey) (*entity.Balance, error)
	// Insert crea la fila (creación perezosa al primer movimiento). Una
	// inserción concurrente duplicada debe reportarse como
	// domain.ErrConcurrencyConflict para que el caller reintente con lectura fresca.
	Insert(ctx context.Context, balance *entity.Balance) error
	// UpdateVersioned escribe la fila solo si row_version == expectedVersion,
	// incrementándola en exactamente uno; si no coincide devuelve
	// domain.ErrConcurrencyConflict.
	UpdateVersioned(ctx context.Context, balance *entity.Balance, expectedVersion int64) error
	// List lista saldos paginados del tenant.
	List(ctx context.Context, tenantID string, filter BalanceFilter) ([]*entity.Balance, int, error)
}
