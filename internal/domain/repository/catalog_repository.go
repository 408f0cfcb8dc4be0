package repository

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

// ItemRepository puerto de persistencia de ítems (datos maestros mínimos).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Item, error)
}

// WarehouseRepository puerto de persistencia de bodegas.
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Warehouse, error)
}

// LocationRepository puerto de persistencia de ubicaciones.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Location, error)
}

// UserRepository puerto de persistencia de usuarios (autenticación).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailAndTenant(ctx context.Context, email, tenantID string) (*entity.User, error)
}
