package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros de consulta del ledger.
type MovementFilter struct {
	ItemID      string
	WarehouseID string
	Kind        string
	From        *time.Time
	To          *time.Time
	Page        int
	PageSize    int
}

// MovementRepository puerto del ledger append-only. Los movimientos jamás se
// actualizan ni se borran.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Movement, error)
	List(ctx context.Context, tenantID string, filter MovementFilter) ([]*entity.Movement, int, error)
}
