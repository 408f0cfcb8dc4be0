package transfer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/application/refs"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// numberPrefix prefijo del consecutivo de traslados, con secuencia diaria.
const numberPrefix = "TRF"

// UseCase traslados multi-línea entre bodegas:
// Draft -> Committed -> InTransit -> Received, Cancel desde cualquier estado
// no terminal. Cada transición es atómica sobre todas sus líneas: si una
// línea falla, ninguna queda aplicada.
type UseCase struct {
	eng       *engine.Engine
	runner    engine.TxRunner
	validator *refs.Validator
	transfers repository.TransferRepository
	publisher engine.Publisher
}

// NewUseCase construye el caso de uso de traslados.
func NewUseCase(
	eng *engine.Engine,
	runner engine.TxRunner,
	validator *refs.Validator,
	transfers repository.TransferRepository,
	publisher engine.Publisher,
) *UseCase {
	return &UseCase{
		eng:       eng,
		runner:    runner,
		validator: validator,
		transfers: transfers,
		publisher: publisher,
	}
}

// Create crea el traslado en Draft con su número TRF-YYYYMMDD-NNNN. La
// secuencia diaria se asigna serializada por (tenant, prefijo del día) para
// que dos creaciones concurrentes nunca dupliquen número.
func (uc *UseCase) Create(ctx context.Context, tenantID, actor string, in dto.CreateTransferRequest) (*dto.TransferDTO, error) {
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return nil, domain.ErrSelfTransfer
	}
	if err := uc.validator.Warehouse(ctx, tenantID, in.SourceWarehouseID); err != nil {
		return nil, err
	}
	if err := uc.validator.Warehouse(ctx, tenantID, in.DestinationWarehouseID); err != nil {
		return nil, err
	}
	if err := uc.validator.Location(ctx, tenantID, in.SourceWarehouseID, in.SourceLocationID); err != nil {
		return nil, err
	}
	if err := uc.validator.Location(ctx, tenantID, in.DestinationWarehouseID, in.DestinationLocationID); err != nil {
		return nil, err
	}
	for _, line := range in.Lines {
		if !line.RequestedQuantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
		if err := uc.validator.Item(ctx, tenantID, line.ItemID); err != nil {
			return nil, err
		}
	}

	now := uc.eng.Now()
	t := &entity.Transfer{
		ID:                     uuid.New().String(),
		TenantID:               tenantID,
		SourceWarehouseID:      in.SourceWarehouseID,
		SourceLocationID:       in.SourceLocationID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		DestinationLocationID:  in.DestinationLocationID,
		Status:                 entity.TransferDraft,
		Notes:                  in.Notes,
		RowVersion:             1,
		Audit:                  entity.Audit{CreatedAt: now, CreatedBy: actor, UpdatedAt: now},
	}
	for _, line := range in.Lines {
		t.Lines = append(t.Lines, entity.TransferLine{
			ID:                uuid.New().String(),
			TransferID:        t.ID,
			ItemID:            line.ItemID,
			RequestedQuantity: line.RequestedQuantity,
			LotNumber:         line.LotNumber,
			SerialNumber:      line.SerialNumber,
		})
	}

	err := uc.runner.Run(ctx, func(r engine.Repos) error {
		prefix := fmt.Sprintf("%s-%s", numberPrefix, now.UTC().Format("20060102"))
		seq, err := r.Transfers.NextSequence(ctx, tenantID, prefix)
		if err != nil {
			return err
		}
		t.TransferNumber = fmt.Sprintf("%s-%04d", prefix, seq)
		return r.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	d := toDTO(t)
	return &d, nil
}

// Commit pasa a Committed y reserva la cantidad solicitada de cada línea en
// el origen, asentando RESERVE por línea. Si alguna línea no tiene available
// suficiente, toda la transición se revierte.
func (uc *UseCase) Commit(ctx context.Context, tenantID, actor string, id string) (*dto.TransferDTO, error) {
	return uc.transition(ctx, tenantID, id, func(r engine.Repos, t *entity.Transfer) ([]*entity.Movement, error) {
		if err := t.Commit(uc.eng.Now()); err != nil {
			return nil, err
		}
		var movements []*entity.Movement
		for i := range t.Lines {
			line := &t.Lines[i]
			meta := engine.MovementMeta{
				Kind:          entity.MovementReserve,
				ReferenceType: "Transfer",
				ReferenceID:   t.TransferNumber,
				LotNumber:     line.LotNumber,
				SerialNumber:  line.SerialNumber,
				Actor:         actor,
			}
			_, mov, err := uc.eng.Apply(ctx, r, tenantID, engine.Single(t.SourceKey(line.ItemID), engine.Reserve, line.RequestedQuantity, meta))
			if err != nil {
				return nil, err
			}
			movements = append(movements, mov)
		}
		t.UpdatedAt = uc.eng.Now()
		t.UpdatedBy = actor
		return movements, nil
	})
}

// Ship pasa a InTransit. Por línea despachada: libera la reserva por lo
// solicitado, retira del on-hand lo realmente enviado (asiento TRANSFER_OUT
// en el origen) y suma ese envío al tránsito del destino. El envío puede ser
// parcial.
func (uc *UseCase) Ship(ctx context.Context, tenantID, actor string, id string, in dto.ShipTransferRequest) (*dto.TransferDTO, error) {
	for _, l := range in.Lines {
		if !l.ShippedQuantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
	}
	return uc.transition(ctx, tenantID, id, func(r engine.Repos, t *entity.Transfer) ([]*entity.Movement, error) {
		if err := t.Ship(uc.eng.Now()); err != nil {
			return nil, err
		}
		var movements []*entity.Movement
		for _, shipLine := range in.Lines {
			line := t.Line(shipLine.LineID)
			if line == nil {
				return nil, domain.NewError(domain.CodeNotFound, "línea de traslado no encontrada: "+shipLine.LineID)
			}
			shipped := shipLine.ShippedQuantity
			line.ShippedQuantity = &shipped

			outMeta := engine.MovementMeta{
				Kind:          entity.MovementTransferOut,
				ReferenceType: "Transfer",
				ReferenceID:   t.TransferNumber,
				LotNumber:     line.LotNumber,
				SerialNumber:  line.SerialNumber,
				Actor:         actor,
			}
			// Origen: liberar lo reservado al comprometer y retirar lo enviado,
			// en un solo asiento TRANSFER_OUT.
			sourceDelta := engine.Delta{
				Key: t.SourceKey(line.ItemID),
				Mutations: []engine.Mutation{
					{Kind: engine.Unreserve, Quantity: line.RequestedQuantity},
					{Kind: engine.RemoveOnHand, Quantity: shipped},
				},
				Meta: &outMeta,
			}
			_, mov, err := uc.eng.Apply(ctx, r, tenantID, sourceDelta)
			if err != nil {
				return nil, err
			}
			movements = append(movements, mov)

			// Destino: la mercancía queda en tránsito; el asiento de entrada se
			// escribe al recibir (TRANSFER_IN), no aquí.
			inTransit := engine.Delta{
				Key:       t.DestinationKey(line.ItemID),
				Mutations: []engine.Mutation{{Kind: engine.AddInTransit, Quantity: shipped}},
			}
			if _, _, err := uc.eng.Apply(ctx, r, tenantID, inTransit); err != nil {
				return nil, err
			}
		}
		t.UpdatedAt = uc.eng.Now()
		t.UpdatedBy = actor
		return movements, nil
	})
}

// Receive pasa a Received. Por línea recibida: descuenta del tránsito del
// destino lo enviado (o lo recibido si nunca se registró envío) y suma al
// on-hand lo realmente recibido, en un asiento TRANSFER_IN. La merma queda
// tolerada por el clamp a cero del tránsito.
func (uc *UseCase) Receive(ctx context.Context, tenantID, actor string, id string, in dto.ReceiveTransferRequest) (*dto.TransferDTO, error) {
	for _, l := range in.Lines {
		if !l.ReceivedQuantity.IsPositive() {
			return nil, domain.ErrInvalidQuantity
		}
	}
	return uc.transition(ctx, tenantID, id, func(r engine.Repos, t *entity.Transfer) ([]*entity.Movement, error) {
		if err := t.Receive(uc.eng.Now()); err != nil {
			return nil, err
		}
		var movements []*entity.Movement
		for _, recvLine := range in.Lines {
			line := t.Line(recvLine.LineID)
			if line == nil {
				return nil, domain.NewError(domain.CodeNotFound, "línea de traslado no encontrada: "+recvLine.LineID)
			}
			received := recvLine.ReceivedQuantity
			line.ReceivedQuantity = &received

			inTransitQty := received
			if line.ShippedQuantity != nil {
				inTransitQty = *line.ShippedQuantity
			}
			inMeta := engine.MovementMeta{
				Kind:          entity.MovementTransferIn,
				ReferenceType: "Transfer",
				ReferenceID:   t.TransferNumber,
				LotNumber:     line.LotNumber,
				SerialNumber:  line.SerialNumber,
				Actor:         actor,
			}
			destDelta := engine.Delta{
				Key: t.DestinationKey(line.ItemID),
				Mutations: []engine.Mutation{
					{Kind: engine.RemoveInTransit, Quantity: inTransitQty},
					{Kind: engine.AddOnHand, Quantity: received},
				},
				Meta: &inMeta,
			}
			_, mov, err := uc.eng.Apply(ctx, r, tenantID, destDelta)
			if err != nil {
				return nil, err
			}
			movements = append(movements, mov)
		}
		t.UpdatedAt = uc.eng.Now()
		t.UpdatedBy = actor
		return movements, nil
	})
}

// Cancel cancela el traslado desde cualquier estado no terminal. Si estaba
// Committed, libera la reserva de cada línea con asiento UNRESERVE. Desde
// InTransit no se compensa el stock ya despachado: la mercancía está en
// camino y su regularización es un recibo o ajuste posterior del operador.
func (uc *UseCase) Cancel(ctx context.Context, tenantID, actor string, id string) (*dto.TransferDTO, error) {
	return uc.transition(ctx, tenantID, id, func(r engine.Repos, t *entity.Transfer) ([]*entity.Movement, error) {
		wasCommitted := t.Status == entity.TransferCommitted
		if err := t.Cancel(uc.eng.Now()); err != nil {
			return nil, err
		}
		var movements []*entity.Movement
		if wasCommitted {
			for i := range t.Lines {
				line := &t.Lines[i]
				meta := engine.MovementMeta{
					Kind:          entity.MovementUnreserve,
					ReferenceType: "Transfer",
					ReferenceID:   t.TransferNumber,
					Actor:         actor,
				}
				_, mov, err := uc.eng.Apply(ctx, r, tenantID, engine.Single(t.SourceKey(line.ItemID), engine.Unreserve, line.RequestedQuantity, meta))
				if err != nil {
					return nil, err
				}
				movements = append(movements, mov)
			}
		}
		t.UpdatedAt = uc.eng.Now()
		t.UpdatedBy = actor
		return movements, nil
	})
}

// transition ejecuta una transición completa (lectura del traslado, cambios
// de saldo por línea, escritura versionada del traslado) con reintento ante
// conflictos de versión y publicación de eventos tras el commit.
func (uc *UseCase) transition(ctx context.Context, tenantID, id string, fn func(r engine.Repos, t *entity.Transfer) ([]*entity.Movement, error)) (*dto.TransferDTO, error) {
	var result *dto.TransferDTO
	var applied []*entity.Movement
	err := uc.eng.RunWithRetry(ctx, uc.runner, func(r engine.Repos) error {
		t, err := r.Transfers.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		expectedVersion := t.RowVersion
		movements, err := fn(r, t)
		if err != nil {
			return err
		}
		if err := r.Transfers.UpdateVersioned(ctx, t, expectedVersion); err != nil {
			return err
		}
		d := toDTO(t)
		result = &d
		applied = movements
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, mov := range applied {
		uc.publisher.MovementApplied(ctx, mov)
	}
	return result, nil
}

// Get devuelve un traslado con sus líneas.
func (uc *UseCase) Get(ctx context.Context, tenantID, id string) (*dto.TransferDTO, error) {
	t, err := uc.transfers.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	d := toDTO(t)
	return &d, nil
}

// List lista traslados paginados con filtros.
func (uc *UseCase) List(ctx context.Context, tenantID string, filter repository.TransferFilter) (dto.PagedResponse[dto.TransferDTO], error) {
	rows, total, err := uc.transfers.List(ctx, tenantID, filter)
	if err != nil {
		return dto.PagedResponse[dto.TransferDTO]{}, err
	}
	items := make([]dto.TransferDTO, 0, len(rows))
	for _, t := range rows {
		items = append(items, toDTO(t))
	}
	return dto.NewPagedResponse(items, filter.Page, filter.PageSize, total), nil
}

func toDTO(t *entity.Transfer) dto.TransferDTO {
	lines := make([]dto.TransferLineDTO, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, dto.TransferLineDTO{
			ID:                l.ID,
			ItemID:            l.ItemID,
			RequestedQuantity: l.RequestedQuantity,
			ShippedQuantity:   copyDecimal(l.ShippedQuantity),
			ReceivedQuantity:  copyDecimal(l.ReceivedQuantity),
			LotNumber:         l.LotNumber,
			SerialNumber:      l.SerialNumber,
		})
	}
	return dto.TransferDTO{
		ID:                     t.ID,
		TransferNumber:         t.TransferNumber,
		SourceWarehouseID:      t.SourceWarehouseID,
		SourceLocationID:       t.SourceLocationID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		DestinationLocationID:  t.DestinationLocationID,
		Status:                 t.Status,
		Notes:                  t.Notes,
		CommittedAt:            t.CommittedAt,
		ShippedAt:              t.ShippedAt,
		ReceivedAt:             t.ReceivedAt,
		CancelledAt:            t.CancelledAt,
		CreatedAt:              t.CreatedAt,
		Lines:                  lines,
	}
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
