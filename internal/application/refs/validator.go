package refs

import (
	"context"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// Validator confirma que ítem, bodega y ubicación existen y pertenecen al
// tenant antes de intentar un movimiento. Movimientos contra referencias
// desconocidas fallan ITEM_NOT_FOUND / WAREHOUSE_NOT_FOUND / LOCATION_NOT_FOUND.
type Validator struct {
	items      repository.ItemRepository
	warehouses repository.WarehouseRepository
	locations  repository.LocationRepository
}

// NewValidator construye el validador de referencias.
func NewValidator(items repository.ItemRepository, warehouses repository.WarehouseRepository, locations repository.LocationRepository) *Validator {
	return &Validator{items: items, warehouses: warehouses, locations: locations}
}

// Item valida que el ítem exista y sea del tenant.
func (v *Validator) Item(ctx context.Context, tenantID, itemID string) error {
	item, err := v.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil || item.TenantID != tenantID {
		return domain.ErrItemNotFound
	}
	return nil
}

// Warehouse valida que la bodega exista y sea del tenant.
func (v *Validator) Warehouse(ctx context.Context, tenantID, warehouseID string) error {
	wh, err := v.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.TenantID != tenantID {
		return domain.ErrWarehouseNotFound
	}
	return nil
}

// Location valida la ubicación (si se dio) y que cuelgue de la bodega indicada.
func (v *Validator) Location(ctx context.Context, tenantID, warehouseID string, locationID *string) error {
	if locationID == nil {
		return nil
	}
	loc, err := v.locations.GetByID(ctx, *locationID)
	if err != nil {
		return err
	}
	if loc == nil || loc.TenantID != tenantID || loc.WarehouseID != warehouseID {
		return domain.ErrLocationNotFound
	}
	return nil
}

// MovementKey valida las tres referencias de una clave de saldo.
func (v *Validator) MovementKey(ctx context.Context, tenantID, itemID, warehouseID string, locationID *string) error {
	if err := v.Item(ctx, tenantID, itemID); err != nil {
		return err
	}
	if err := v.Warehouse(ctx, tenantID, warehouseID); err != nil {
		return err
	}
	return v.Location(ctx, tenantID, warehouseID, locationID)
}
