package reservation

import (
	"context"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/application/refs"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// UseCase ciclo de vida de reservas: Active -> Confirmed | Released | Cancelled.
// Toda transición fuera de Active es terminal.
type UseCase struct {
	eng          *engine.Engine
	runner       engine.TxRunner
	validator    *refs.Validator
	reservations repository.ReservationRepository
	publisher    engine.Publisher
}

// NewUseCase construye el caso de uso de reservas.
func NewUseCase(
	eng *engine.Engine,
	runner engine.TxRunner,
	validator *refs.Validator,
	reservations repository.ReservationRepository,
	publisher engine.Publisher,
) *UseCase {
	return &UseCase{
		eng:          eng,
		runner:       runner,
		validator:    validator,
		reservations: reservations,
		publisher:    publisher,
	}
}

// Create aparta cantidad contra una orden: exige available >= cantidad (jamás
// flexibilizado por la política de stock negativo), asienta RESERVE en el
// ledger y deja la reserva en Active. Todo en una transacción.
func (uc *UseCase) Create(ctx context.Context, tenantID, actor string, in dto.CreateReservationRequest, idempotencyKey string) (*dto.ReservationResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if err := uc.validator.MovementKey(ctx, tenantID, in.ItemID, in.WarehouseID, in.LocationID); err != nil {
		return nil, err
	}

	now := uc.eng.Now()
	res := &entity.Reservation{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		LocationID:  in.LocationID,
		Quantity:    in.Quantity,
		OrderType:   in.OrderType,
		OrderID:     in.OrderID,
		Status:      entity.ReservationActive,
		ExpiresAt:   in.ExpiresAt,
		Audit:       entity.Audit{CreatedAt: now, CreatedBy: actor, UpdatedAt: now},
	}
	meta := engine.MovementMeta{
		Kind:           entity.MovementReserve,
		ReferenceType:  in.OrderType,
		ReferenceID:    in.OrderID,
		IdempotencyKey: idempotencyKey,
		Actor:          actor,
	}

	var result *dto.ReservationResult
	var applied *entity.Movement
	err := uc.eng.RunWithRetry(ctx, uc.runner, func(r engine.Repos) error {
		balance, movement, err := uc.eng.Apply(ctx, r, tenantID, engine.Single(res.Key(), engine.Reserve, in.Quantity, meta))
		if err != nil {
			return err
		}
		if err := r.Reservations.Create(ctx, res); err != nil {
			return err
		}
		result = &dto.ReservationResult{Reservation: toDTO(res), Balance: dto.SnapshotOf(balance)}
		applied = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.MovementApplied(ctx, applied)
	return result, nil
}

// Confirm consume la reserva: libera lo reservado y retira esa cantidad del
// on-hand en un único asiento ISSUE. La disponibilidad se re-valida aquí: si
// el saldo se achicó entre reservar y confirmar (p.ej. ajuste negativo
// manual), la confirmación falla INSUFFICIENT_STOCK en vez de dejar
// reserved > on-hand.
func (uc *UseCase) Confirm(ctx context.Context, tenantID, actor string, id string) (*dto.ReservationResult, error) {
	var result *dto.ReservationResult
	var applied *entity.Movement
	err := uc.eng.RunWithRetry(ctx, uc.runner, func(r engine.Repos) error {
		res, err := r.Reservations.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if err := res.Confirm(); err != nil {
			return err
		}
		delta := engine.Delta{
			Key: res.Key(),
			Mutations: []engine.Mutation{
				{Kind: engine.Unreserve, Quantity: res.Quantity},
				{Kind: engine.RemoveOnHand, Quantity: res.Quantity},
			},
			Meta: &engine.MovementMeta{
				Kind:          entity.MovementIssue,
				ReferenceType: res.OrderType,
				ReferenceID:   res.OrderID,
				Actor:         actor,
			},
		}
		balance, movement, err := uc.eng.Apply(ctx, r, tenantID, delta)
		if err != nil {
			return err
		}
		res.UpdatedAt = uc.eng.Now()
		res.UpdatedBy = actor
		if err := r.Reservations.UpdateStatus(ctx, res); err != nil {
			return err
		}
		result = &dto.ReservationResult{Reservation: toDTO(res), Balance: dto.SnapshotOf(balance)}
		applied = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.MovementApplied(ctx, applied)
	return result, nil
}

// Release libera la reserva sin retirar stock y asienta UNRESERVE.
func (uc *UseCase) Release(ctx context.Context, tenantID, actor string, id string) (*dto.ReservationResult, error) {
	return uc.terminate(ctx, tenantID, actor, id, false)
}

// Cancel cancela la reserva; mismo efecto sobre el saldo que Release, estado
// final distinto.
func (uc *UseCase) Cancel(ctx context.Context, tenantID, actor string, id string) (*dto.ReservationResult, error) {
	return uc.terminate(ctx, tenantID, actor, id, true)
}

func (uc *UseCase) terminate(ctx context.Context, tenantID, actor, id string, cancel bool) (*dto.ReservationResult, error) {
	var result *dto.ReservationResult
	var applied *entity.Movement
	err := uc.eng.RunWithRetry(ctx, uc.runner, func(r engine.Repos) error {
		res, err := r.Reservations.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if cancel {
			err = res.Cancel()
		} else {
			err = res.Release()
		}
		if err != nil {
			return err
		}
		meta := engine.MovementMeta{
			Kind:          entity.MovementUnreserve,
			ReferenceType: res.OrderType,
			ReferenceID:   res.OrderID,
			Actor:         actor,
		}
		balance, movement, err := uc.eng.Apply(ctx, r, tenantID, engine.Single(res.Key(), engine.Unreserve, res.Quantity, meta))
		if err != nil {
			return err
		}
		res.UpdatedAt = uc.eng.Now()
		res.UpdatedBy = actor
		if err := r.Reservations.UpdateStatus(ctx, res); err != nil {
			return err
		}
		result = &dto.ReservationResult{Reservation: toDTO(res), Balance: dto.SnapshotOf(balance)}
		applied = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.MovementApplied(ctx, applied)
	return result, nil
}

// Get devuelve una reserva por id.
func (uc *UseCase) Get(ctx context.Context, tenantID, id string) (*dto.ReservationDTO, error) {
	res, err := uc.reservations.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.ErrNotFound
	}
	d := toDTO(res)
	return &d, nil
}

// List lista reservas paginadas con filtros.
func (uc *UseCase) List(ctx context.Context, tenantID string, filter repository.ReservationFilter) (dto.PagedResponse[dto.ReservationDTO], error) {
	rows, total, err := uc.reservations.List(ctx, tenantID, filter)
	if err != nil {
		return dto.PagedResponse[dto.ReservationDTO]{}, err
	}
	items := make([]dto.ReservationDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, toDTO(r))
	}
	return dto.NewPagedResponse(items, filter.Page, filter.PageSize, total), nil
}

func toDTO(r *entity.Reservation) dto.ReservationDTO {
	return dto.ReservationDTO{
		ID:          r.ID,
		ItemID:      r.ItemID,
		WarehouseID: r.WarehouseID,
		LocationID:  r.LocationID,
		Quantity:    r.Quantity,
		OrderType:   r.OrderType,
		OrderID:     r.OrderID,
		Status:      r.Status,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
}
