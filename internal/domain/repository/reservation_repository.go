package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// ReservationFilter filtros de listado de reservas.
type ReservationFilter struct {
	ItemID      string
	WarehouseID string
	Status      string
	Page        int
	PageSize    int
}

// ReservationRepository puerto de persistencia de reservas.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Reservation, error)
	// UpdateStatus persiste la transición de estado y los campos de auditoría.
	UpdateStatus(ctx context.Context, reservation *entity.Reservation) error
	List(ctx context.Context, tenantID string, filter ReservationFilter) ([]*entity.Reservation, int, error)
}
