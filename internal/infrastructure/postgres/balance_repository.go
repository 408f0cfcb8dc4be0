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

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de BalanceRepository sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `id, tenant_id, item_id, warehouse_id, location_id,
		on_hand, reserved, in_transit, last_movement_id, last_movement_at,
		row_version, updated_at`

// Get devuelve la fila de saldo para la clave, o nil si nunca existió.
// IS NOT DISTINCT FROM matchea también location_id NULL.
func (r *BalanceRepo) Get(ctx context.Context, tenantID string, key entity.BalanceKey) (*entity.Balance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM balances
		WHERE tenant_id = $1 AND item_id = $2 AND warehouse_id = $3
		  AND location_id IS NOT DISTINCT FROM $4`
	var b entity.Balance
	err := r.q.QueryRow(ctx, query, tenantID, key.ItemID, key.WarehouseID, key.LocationID).Scan(
		&b.ID, &b.TenantID, &b.ItemID, &b.WarehouseID, &b.LocationID,
		&b.OnHand, &b.Reserved, &b.InTransit, &b.LastMovementID, &b.LastMovementAt,
		&b.RowVersion, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

// Insert crea la fila de saldo (creación perezosa al primer movimiento).
// Un duplicado concurrente se reporta como conflicto de concurrencia para que
// el caller reintente la transacción con lectura fresca.
func (r *BalanceRepo) Insert(ctx context.Context, b *entity.Balance) error {
	query := `
		INSERT INTO balances (` + balanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.TenantID, b.ItemID, b.WarehouseID, b.LocationID,
		b.OnHand, b.Reserved, b.InTransit, b.LastMovementID, b.LastMovementAt,
		b.RowVersion, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

// UpdateVersioned escribe la fila solo si row_version sigue siendo la leída,
// incrementándola en uno en el mismo UPDATE. Cero filas afectadas significa
// que otro escritor ganó: conflicto de concurrencia.
func (r *BalanceRepo) UpdateVersioned(ctx context.Context, b *entity.Balance, expectedVersion int64) error {
	query := `
		UPDATE balances
		SET on_hand = $1, reserved = $2, in_transit = $3,
		    last_movement_id = $4, last_movement_at = $5,
		    row_version = row_version + 1, updated_at = $6
		WHERE id = $7 AND tenant_id = $8 AND row_version = $9`
	tag, err := r.q.Exec(ctx, query,
		b.OnHand, b.Reserved, b.InTransit,
		b.LastMovementID, b.LastMovementAt, b.UpdatedAt,
		b.ID, b.TenantID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// List lista saldos paginados del tenant con filtros opcionales.
func (r *BalanceRepo) List(ctx context.Context, tenantID string, filter repository.BalanceFilter) ([]*entity.Balance, int, error) {
	where := "WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.ItemID != "" {
		args = append(args, filter.ItemID)
		where += fmt.Sprintf(" AND item_id = $%d", len(args))
	}
	if filter.WarehouseID != "" {
		args = append(args, filter.WarehouseID)
		where += fmt.Sprintf(" AND warehouse_id = $%d", len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM balances "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count balances: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT `+balanceColumns+`
		FROM balances %s
		ORDER BY item_id, warehouse_id, location_id NULLS FIRST
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var list []*entity.Balance
	for rows.Next() {
		var b entity.Balance
		if err := rows.Scan(
			&b.ID, &b.TenantID, &b.ItemID, &b.WarehouseID, &b.LocationID,
			&b.OnHand, &b.Reserved, &b.InTransit, &b.LastMovementID, &b.LastMovementAt,
			&b.RowVersion, &b.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, total, rows.Err()
}
