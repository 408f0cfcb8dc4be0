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

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un ítem. SKU duplicado dentro del tenant es DUPLICATE.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (id, tenant_id, sku, name, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.TenantID, item.SKU, item.Name,
		item.CreatedAt, item.CreatedBy, item.UpdatedAt, item.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID devuelve un ítem por id, o nil si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	query := `
		SELECT id, tenant_id, sku, name, created_at, created_by, updated_at, updated_by
		FROM items WHERE id = $1`
	var item entity.Item
	err := r.q.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.TenantID, &item.SKU, &item.Name,
		&item.CreatedAt, &item.CreatedBy, &item.UpdatedAt, &item.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// ListByTenant lista ítems del tenant ordenados por SKU.
func (r *ItemRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Item, error) {
	query := `
		SELECT id, tenant_id, sku, name, created_at, created_by, updated_at, updated_by
		FROM items WHERE tenant_id = $1
		ORDER BY sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var item entity.Item
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.SKU, &item.Name,
			&item.CreatedAt, &item.CreatedBy, &item.UpdatedAt, &item.UpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}
