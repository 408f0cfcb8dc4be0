package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una ubicación. Código duplicado dentro de la bodega es DUPLICATE.
func (r *LocationRepo) Create(ctx context.Context, loc *entity.Location) error {
	query := `
		INSERT INTO locations (id, tenant_id, warehouse_id, code, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		loc.ID, loc.TenantID, loc.WarehouseID, loc.Code,
		loc.CreatedAt, loc.CreatedBy, loc.UpdatedAt, loc.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID devuelve una ubicación por id, o nil si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `
		SELECT id, tenant_id, warehouse_id, code, created_at, created_by, updated_at, updated_by
		FROM locations WHERE id = $1`
	var loc entity.Location
	err := r.q.QueryRow(ctx, query, id).Scan(
		&loc.ID, &loc.TenantID, &loc.WarehouseID, &loc.Code,
		&loc.CreatedAt, &loc.CreatedBy, &loc.UpdatedAt, &loc.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &loc, nil
}

// ListByWarehouse lista las ubicaciones de una bodega ordenadas por código.
func (r *LocationRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.Location, error) {
	query := `
		SELECT id, tenant_id, warehouse_id, code, created_at, created_by, updated_at, updated_by
		FROM locations WHERE warehouse_id = $1
		ORDER BY code`
	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var loc entity.Location
		if err := rows.Scan(
			&loc.ID, &loc.TenantID, &loc.WarehouseID, &loc.Code,
			&loc.CreatedAt, &loc.CreatedBy, &loc.UpdatedAt, &loc.UpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &loc)
	}
	return list, rows.Err()
}
