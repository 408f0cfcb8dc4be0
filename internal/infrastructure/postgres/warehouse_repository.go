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

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación de WarehouseRepository sobre PostgreSQL (usable con pool o tx).
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de bodegas. Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una bodega. Código duplicado dentro del tenant es DUPLICATE.
func (r *WarehouseRepo) Create(ctx context.Context, wh *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, tenant_id, code, name, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		wh.ID, wh.TenantID, wh.Code, wh.Name,
		wh.CreatedAt, wh.CreatedBy, wh.UpdatedAt, wh.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID devuelve una bodega por id, o nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, tenant_id, code, name, created_at, created_by, updated_at, updated_by
		FROM warehouses WHERE id = $1`
	var wh entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(
		&wh.ID, &wh.TenantID, &wh.Code, &wh.Name,
		&wh.CreatedAt, &wh.CreatedBy, &wh.UpdatedAt, &wh.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &wh, nil
}

// ListByTenant lista bodegas del tenant ordenadas por código.
func (r *WarehouseRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, tenant_id, code, name, created_at, created_by, updated_at, updated_by
		FROM warehouses WHERE tenant_id = $1
		ORDER BY code LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var wh entity.Warehouse
		if err := rows.Scan(
			&wh.ID, &wh.TenantID, &wh.Code, &wh.Name,
			&wh.CreatedAt, &wh.CreatedBy, &wh.UpdatedAt, &wh.UpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &wh)
	}
	return list, rows.Err()
}
