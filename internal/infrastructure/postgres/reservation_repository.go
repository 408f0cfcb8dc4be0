package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador de reservas. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, tenant_id, item_id, warehouse_id, location_id,
		quantity, order_type, order_id, status, expires_at, correlation_id,
		created_at, created_by, updated_at, updated_by`

// Create persiste una reserva nueva.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.TenantID, res.ItemID, res.WarehouseID, res.LocationID,
		res.Quantity, res.OrderType, res.OrderID, res.Status, res.ExpiresAt, res.CorrelationID,
		res.CreatedAt, res.CreatedBy, res.UpdatedAt, res.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetByID devuelve una reserva por id, o nil si no existe.
func (r *ReservationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE tenant_id = $1 AND id = $2`
	res, err := scanReservation(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// UpdateStatus persiste la transición de estado y los campos de auditoría.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, res *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = $2, updated_by = $3
		WHERE tenant_id = $4 AND id = $5`
	tag, err := r.q.Exec(ctx, query, res.Status, res.UpdatedAt, res.UpdatedBy, res.TenantID, res.ID)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update reservation: no existe %s", res.ID)
	}
	return nil
}

// List lista reservas paginadas del tenant con filtros opcionales.
func (r *ReservationRepo) List(ctx context.Context, tenantID string, filter repository.ReservationFilter) ([]*entity.Reservation, int, error) {
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
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM reservations "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT `+reservationColumns+`
		FROM reservations %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, total, rows.Err()
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID, &res.TenantID, &res.ItemID, &res.WarehouseID, &res.LocationID,
		&res.Quantity, &res.OrderType, &res.OrderID, &res.Status, &res.ExpiresAt, &res.CorrelationID,
		&res.CreatedAt, &res.CreatedBy, &res.UpdatedAt, &res.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
