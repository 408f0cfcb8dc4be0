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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, tenant_id, transfer_number,
		source_warehouse_id, source_location_id,
		destination_warehouse_id, destination_location_id,
		status, notes, committed_at, shipped_at, received_at, cancelled_at,
		row_version, created_at, created_by, updated_at, updated_by`

const transferLineColumns = `id, transfer_id, item_id,
		requested_quantity, shipped_quantity, received_quantity,
		lot_number, serial_number`

// NextSequence devuelve el siguiente consecutivo del prefijo diario del
// tenant. Un advisory lock transaccional serializa la asignación por
// (tenant, prefijo): dos creaciones concurrentes del mismo día esperan en el
// lock en vez de leer el mismo MAX. El lock se suelta solo al terminar la tx.
func (r *TransferRepo) NextSequence(ctx context.Context, tenantID, prefix string) (int, error) {
	lockKey := tenantID + "/" + prefix
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return 0, fmt.Errorf("advisory lock secuencia de traslados: %w", err)
	}
	query := `
		SELECT COALESCE(MAX(CAST(SUBSTRING(transfer_number FROM '[0-9]+$') AS INTEGER)), 0)
		FROM transfers
		WHERE tenant_id = $1 AND transfer_number LIKE $2`
	var last int
	if err := r.q.QueryRow(ctx, query, tenantID, prefix+"-%").Scan(&last); err != nil {
		return 0, fmt.Errorf("max secuencia de traslados: %w", err)
	}
	return last + 1, nil
}

// Create persiste el traslado y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TenantID, t.TransferNumber,
		t.SourceWarehouseID, t.SourceLocationID,
		t.DestinationWarehouseID, t.DestinationLocationID,
		t.Status, t.Notes, t.CommittedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt,
		t.RowVersion, t.CreatedAt, t.CreatedBy, t.UpdatedAt, t.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	for i := range t.Lines {
		if err := r.insertLine(ctx, &t.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *TransferRepo) insertLine(ctx context.Context, l *entity.TransferLine) error {
	query := `
		INSERT INTO transfer_lines (` + transferLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.TransferID, l.ItemID,
		l.RequestedQuantity, l.ShippedQuantity, l.ReceivedQuantity,
		l.LotNumber, l.SerialNumber,
	)
	if err != nil {
		return fmt.Errorf("insert transfer line: %w", err)
	}
	return nil
}

// GetByID devuelve un traslado con sus líneas, o nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE tenant_id = $1 AND id = $2`
	t, err := scanTransfer(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadLines(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) loadLines(ctx context.Context, t *entity.Transfer) error {
	query := `
		SELECT ` + transferLineColumns + `
		FROM transfer_lines
		WHERE transfer_id = $1
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(
			&l.ID, &l.TransferID, &l.ItemID,
			&l.RequestedQuantity, &l.ShippedQuantity, &l.ReceivedQuantity,
			&l.LotNumber, &l.SerialNumber,
		); err != nil {
			return fmt.Errorf("scan transfer line: %w", err)
		}
		t.Lines = append(t.Lines, l)
	}
	return rows.Err()
}

// UpdateVersioned persiste cabecera y cantidades de línea solo si row_version
// sigue siendo la leída, incrementándola en uno. Cero filas afectadas:
// conflicto de concurrencia, nada queda escrito.
func (r *TransferRepo) UpdateVersioned(ctx context.Context, t *entity.Transfer, expectedVersion int64) error {
	query := `
		UPDATE transfers
		SET status = $1, notes = $2,
		    committed_at = $3, shipped_at = $4, received_at = $5, cancelled_at = $6,
		    row_version = row_version + 1, updated_at = $7, updated_by = $8
		WHERE tenant_id = $9 AND id = $10 AND row_version = $11`
	tag, err := r.q.Exec(ctx, query,
		t.Status, t.Notes,
		t.CommittedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt,
		t.UpdatedAt, t.UpdatedBy,
		t.TenantID, t.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	t.RowVersion = expectedVersion + 1

	for i := range t.Lines {
		l := &t.Lines[i]
		lineQuery := `
			UPDATE transfer_lines
			SET shipped_quantity = $1, received_quantity = $2
			WHERE id = $3 AND transfer_id = $4`
		if _, err := r.q.Exec(ctx, lineQuery, l.ShippedQuantity, l.ReceivedQuantity, l.ID, t.ID); err != nil {
			return fmt.Errorf("update transfer line: %w", err)
		}
	}
	return nil
}

// List lista traslados paginados del tenant (cabeceras con líneas).
func (r *TransferRepo) List(ctx context.Context, tenantID string, filter repository.TransferFilter) ([]*entity.Transfer, int, error) {
	where := "WHERE tenant_id = $1"
	args := []any{tenantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.SourceWarehouseID != "" {
		args = append(args, filter.SourceWarehouseID)
		where += fmt.Sprintf(" AND source_warehouse_id = $%d", len(args))
	}
	if filter.DestinationWarehouseID != "" {
		args = append(args, filter.DestinationWarehouseID)
		where += fmt.Sprintf(" AND destination_warehouse_id = $%d", len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM transfers "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT `+transferColumns+`
		FROM transfers %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, t := range list {
		if err := r.loadLines(ctx, t); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(
		&t.ID, &t.TenantID, &t.TransferNumber,
		&t.SourceWarehouseID, &t.SourceLocationID,
		&t.DestinationWarehouseID, &t.DestinationLocationID,
		&t.Status, &t.Notes, &t.CommittedAt, &t.ShippedAt, &t.ReceivedAt, &t.CancelledAt,
		&t.RowVersion, &t.CreatedAt, &t.CreatedBy, &t.UpdatedAt, &t.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
