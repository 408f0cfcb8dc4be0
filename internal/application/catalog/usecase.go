package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// UseCase datos maestros mínimos: los ítems, bodegas y ubicaciones contra los
// que el ledger valida referencias. No es un catálogo completo de producto.
type UseCase struct {
	items      repository.ItemRepository
	warehouses repository.WarehouseRepository
	locations  repository.LocationRepository
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(items repository.ItemRepository, warehouses repository.WarehouseRepository, locations repository.LocationRepository) *UseCase {
	return &UseCase{items: items, warehouses: warehouses, locations: locations}
}

// CreateItem da de alta un ítem.
func (uc *UseCase) CreateItem(ctx context.Context, tenantID, actor string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.NewError(domain.CodeValidation, "sku y name son obligatorios")
	}
	now := time.Now()
	item := &entity.Item{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		SKU:      in.SKU,
		Name:     in.Name,
		Audit:    entity.Audit{CreatedAt: now, CreatedBy: actor, UpdatedAt: now},
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// ListItems lista ítems del tenant con paginación por limit/offset.
func (uc *UseCase) ListItems(ctx context.Context, tenantID string, page dto.PageRequest) ([]dto.ItemResponse, error) {
	page.DefaultPage()
	rows, err := uc.items.ListByTenant(ctx, tenantID, page.PageSize, (page.Page-1)*page.PageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(rows))
	for _, it := range rows {
		out = append(out, *toItemResponse(it))
	}
	return out, nil
}

// CreateWarehouse da de alta una bodega.
func (uc *UseCase) CreateWarehouse(ctx context.Context, tenantID, actor string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.NewError(domain.CodeValidation, "code y name son obligatorios")
	}
	now := time.Now()
	wh := &entity.Warehouse{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Code:     in.Code,
		Name:     in.Name,
		Audit:    entity.Audit{CreatedAt: now, CreatedBy: actor, UpdatedAt: now},
	}
	if err := uc.warehouses.Create(ctx, wh); err != nil {
		return nil, err
	}
	return toWarehouseResponse(wh), nil
}

// ListWarehouses lista bodegas del tenant.
func (uc *UseCase) ListWarehouses(ctx context.Context, tenantID string, page dto.PageRequest) ([]dto.WarehouseResponse, error) {
	page.DefaultPage()
	rows, err := uc.warehouses.ListByTenant(ctx, tenantID, page.PageSize, (page.Page-1)*page.PageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WarehouseResponse, 0, len(rows))
	for _, wh := range rows {
		out = append(out, *toWarehouseResponse(wh))
	}
	return out, nil
}

// CreateLocation da de alta una ubicación dentro de una bodega del tenant.
func (uc *UseCase) CreateLocation(ctx context.Context, tenantID, actor string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.WarehouseID == "" || in.Code == "" {
		return nil, domain.NewError(domain.CodeValidation, "warehouse_id y code son obligatorios")
	}
	wh, err := uc.warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.TenantID != tenantID {
		return nil, domain.ErrWarehouseNotFound
	}
	now := time.Now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		WarehouseID: in.WarehouseID,
		Code:        in.Code,
		Audit:       entity.Audit{CreatedAt: now, CreatedBy: actor, UpdatedAt: now},
	}
	if err := uc.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista las ubicaciones de una bodega del tenant.
func (uc *UseCase) ListLocations(ctx context.Context, tenantID, warehouseID string) ([]dto.LocationResponse, error) {
	wh, err := uc.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || wh.TenantID != tenantID {
		return nil, domain.ErrWarehouseNotFound
	}
	rows, err := uc.locations.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(rows))
	for _, loc := range rows {
		out = append(out, *toLocationResponse(loc))
	}
	return out, nil
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{ID: i.ID, SKU: i.SKU, Name: i.Name, CreatedAt: i.CreatedAt}
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{ID: w.ID, Code: w.Code, Name: w.Name, CreatedAt: w.CreatedAt}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{ID: l.ID, WarehouseID: l.WarehouseID, Code: l.Code, CreatedAt: l.CreatedAt}
}
