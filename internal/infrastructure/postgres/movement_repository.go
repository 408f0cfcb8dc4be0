package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: los movimientos jamás se actualizan ni se borran.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, tenant_id, item_id, warehouse_id, location_id,
		kind, quantity, unit_cost, total_cost,
		reference_type, reference_id, reason_code, reason_description,
		lot_number, serial_number, expiration_date,
		transaction_date, created_at, created_by,
		correlation_id, idempotency_key`

// Create persiste un asiento del ledger.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		        $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.ItemID, m.WarehouseID, m.LocationID,
		m.Kind, m.Quantity, m.UnitCost, m.TotalCost,
		m.ReferenceType, m.ReferenceID, m.ReasonCode, m.ReasonDescription,
		m.LotNumber, m.SerialNumber, m.ExpirationDate,
		m.TransactionDate, m.CreatedAt, m.CreatedBy,
		m.CorrelationID, m.IdempotencyKey,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID devuelve un asiento por id, o nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE tenant_id = $1 AND id = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List lista asientos paginados del tenant, con filtros por ítem, bodega,
// tipo y rango de fechas de negocio. Orden: más reciente primero.
func (r *MovementRepo) List(ctx context.Context, tenantID string, filter repository.MovementFilter) ([]*entity.Movement, int, error) {
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
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND transaction_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND transaction_date <= $%d", len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM movements "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT `+movementColumns+`
		FROM movements %s
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.TenantID, &m.ItemID, &m.WarehouseID, &m.LocationID,
		&m.Kind, &m.Quantity, &m.UnitCost, &m.TotalCost,
		&m.ReferenceType, &m.ReferenceID, &m.ReasonCode, &m.ReasonDescription,
		&m.LotNumber, &m.SerialNumber, &m.ExpirationDate,
		&m.TransactionDate, &m.CreatedAt, &m.CreatedBy,
		&m.CorrelationID, &m.IdempotencyKey,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
