package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// TransferFilter filtros de listado de traslados.
type TransferFilter struct {
	Status                 string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Page                   int
	PageSize               int
}

// TransferRepository puerto de persistencia de traslados y sus líneas.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Transfer, error)
	// UpdateVersioned persiste estado, timestamps y cantidades de línea solo si
	// row_version == expectedVersion; si no, domain.ErrConcurrencyConflict.
	UpdateVersioned(ctx context.Context, transfer *entity.Transfer, expectedVersion int64) error
	// NextSequence devuelve el siguiente consecutivo para el prefijo diario del
	// tenant. Debe serializar la asignación por (tenant, prefijo): dos creaciones
	// concurrentes no pueden obtener el mismo número. Solo tiene sentido dentro
	// de una transacción.
	NextSequence(ctx context.Context, tenantID, prefix string) (int, error)
	List(ctx context.Context, tenantID string, filter TransferFilter) ([]*entity.Transfer, int, error)
}
