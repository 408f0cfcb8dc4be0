package inventory

import (
	"context"
	"time"

	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/application/refs"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
)

// UseCase operaciones directas contra el ledger: entradas, salidas y ajustes,
// más las rutas de lectura de saldos y movimientos.
type UseCase struct {
	eng       *engine.Engine
	runner    engine.TxRunner
	validator *refs.Validator
	balances  repository.BalanceRepository
	movements repository.MovementRepository
	publisher engine.Publisher
}

// NewUseCase construye el caso de uso de inventario.
func NewUseCase(
	eng *engine.Engine,
	runner engine.TxRunner,
	validator *refs.Validator,
	balances repository.BalanceRepository,
	movements repository.MovementRepository,
	publisher engine.Publisher,
) *UseCase {
	return &UseCase{
		eng:       eng,
		runner:    runner,
		validator: validator,
		balances:  balances,
		movements: movements,
		publisher: publisher,
	}
}

// Receipt registra una entrada de stock: crea el saldo si es la primera vez
// que se mueve la clave, suma on-hand y asienta RECEIPT en el ledger, todo en
// una transacción.
func (uc *UseCase) Receipt(ctx context.Context, tenantID, actor string, in dto.ReceiptRequest, idempotencyKey string) (*dto.OperationResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if err := uc.validator.MovementKey(ctx, tenantID, in.ItemID, in.WarehouseID, in.LocationID); err != nil {
		return nil, err
	}

	key := entity.BalanceKey{ItemID: in.ItemID, WarehouseID: in.WarehouseID, LocationID: in.LocationID}
	meta := engine.MovementMeta{
		Kind:            entity.MovementReceipt,
		UnitCost:        in.UnitCost,
		ReferenceType:   in.ReferenceType,
		ReferenceID:     in.ReferenceID,
		LotNumber:       in.LotNumber,
		SerialNumber:    in.SerialNumber,
		ExpirationDate:  in.ExpirationDate,
		TransactionDate: valueOrZero(in.TransactionDate),
		IdempotencyKey:  idempotencyKey,
		Actor:           actor,
	}

	var result *dto.OperationResult
	var applied *entity.Movement
	err := uc.eng.RunWithRetry(ctx, uc.runner, func(r engine.Repos) error {
		balance, movement, err := uc.eng.Apply(ctx, r, tenantID, engine.Single(key, engine.AddOnHand, in.Quantity, meta))
		if err != nil {
			return err
		}
		result = operationResult(balance, movement)
		applied = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.MovementApplied(ctx, applied)
	return result, nil
}

// Issue registra una salida directa. Exige que la clave tenga saldo existente
// (NO_STOCK si nunca se movió) y available suficiente salvo que la política
// de stock negativo lo permita.
func (uc *UseCase) Issue(ctx context.Context, tenantID, actor string, in dto.IssueRequest, idempotencyKey string) (*dto.OperationResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if err := uc.validator.MovementKey(ctx, tenantID, in.ItemID, in.WarehouseID, in.LocationID); err != nil {
		return nil, err
	}

	key := entity.BalanceKey{ItemID: in.ItemID, WarehouseID: in.WarehouseID, LocationID: in.LocationID}
	meta := engine.MovementMeta{
		Kind:            entity.MovementIssue,
		ReferenceType:   in.ReferenceType,
		ReferenceID:     in.ReferenceID,
		TransactionDate: valueOrZero(in.TransactionDate),
		IdempotencyKey:  idempotencyKey,
		Actor:           actor,
	}

	var result *dto.OperationResult
	var applied *entity.Movement
	err := uc.eng.RunWithRetry(ctx, uc.runner, func(r engine.Repos) error {
		existing, err := r.Balances.Get(ctx, tenantID, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNoStock
		}
		balance, movement, err := uc.eng.Apply(ctx, r, tenantID, engine.Single(key, engine.RemoveOnHand, in.Quantity, meta))
		if err != nil {
			return err
		}
		result = operationResult(balance, movement)
		applied = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.MovementApplied(ctx, applied)
	return result, nil
}

// Adjust registra un ajuste con motivo: "increase" suma como una entrada,
// "decrease" resta como una salida (sujeto a la política de stock negativo).
func (uc *UseCase) Adjust(ctx context.Context, tenantID, actor string, in dto.AdjustmentRequest, idempotencyKey string) (*dto.OperationResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	var kind engine.DeltaKind
	var movementKind string
	switch in.AdjustmentType {
	case "increase":
		kind, movementKind = engine.AddOnHand, entity.MovementPositiveAdjustment
	case "decrease":
		kind, movementKind = engine.RemoveOnHand, entity.MovementNegativeAdjustment
	default:
		return nil, domain.NewError(domain.CodeValidation, "adjustment_type debe ser increase o decrease")
	}
	if err := uc.validator.MovementKey(ctx, tenantID, in.ItemID, in.WarehouseID, in.LocationID); err != nil {
		return nil, err
	}

	key := entity.BalanceKey{ItemID: in.ItemID, WarehouseID: in.WarehouseID, LocationID: in.LocationID}
	meta := engine.MovementMeta{
		Kind:              movementKind,
		ReasonCode:        in.ReasonCode,
		ReasonDescription: in.ReasonDescription,
		TransactionDate:   valueOrZero(in.TransactionDate),
		IdempotencyKey:    idempotencyKey,
		Actor:             actor,
	}

	var result *dto.OperationResult
	var applied *entity.Movement
	err := uc.eng.RunWithRetry(ctx, uc.runner, func(r engine.Repos) error {
		balance, movement, err := uc.eng.Apply(ctx, r, tenantID, engine.Single(key, kind, in.Quantity, meta))
		if err != nil {
			return err
		}
		result = operationResult(balance, movement)
		applied = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.MovementApplied(ctx, applied)
	return result, nil
}

// Balances lista saldos paginados del tenant.
func (uc *UseCase) Balances(ctx context.Context, tenantID string, filter repository.BalanceFilter) (dto.PagedResponse[dto.BalanceDTO], error) {
	rows, total, err := uc.balances.List(ctx, tenantID, filter)
	if err != nil {
		return dto.PagedResponse[dto.BalanceDTO]{}, err
	}
	items := make([]dto.BalanceDTO, 0, len(rows))
	for _, b := range rows {
		items = append(items, dto.BalanceDTO{
			ItemID:         b.ItemID,
			WarehouseID:    b.WarehouseID,
			LocationID:     b.LocationID,
			OnHand:         b.OnHand,
			Reserved:       b.Reserved,
			Available:      b.Available(),
			InTransit:      b.InTransit,
			LastMovementAt: b.LastMovementAt,
		})
	}
	return dto.NewPagedResponse(items, filter.Page, filter.PageSize, total), nil
}

// Movements lista asientos del ledger paginados, con filtros por ítem, bodega,
// tipo y rango de fechas de negocio.
func (uc *UseCase) Movements(ctx context.Context, tenantID string, filter repository.MovementFilter) (dto.PagedResponse[dto.MovementDTO], error) {
	rows, total, err := uc.movements.List(ctx, tenantID, filter)
	if err != nil {
		return dto.PagedResponse[dto.MovementDTO]{}, err
	}
	items := make([]dto.MovementDTO, 0, len(rows))
	for _, m := range rows {
		items = append(items, dto.MovementDTO{
			ID:              m.ID,
			ItemID:          m.ItemID,
			WarehouseID:     m.WarehouseID,
			LocationID:      m.LocationID,
			Kind:            m.Kind,
			Quantity:        m.Quantity,
			UnitCost:        m.UnitCost,
			TotalCost:       m.TotalCost,
			ReferenceType:   m.ReferenceType,
			ReferenceID:     m.ReferenceID,
			ReasonCode:      m.ReasonCode,
			TransactionDate: m.TransactionDate,
			CreatedAt:       m.CreatedAt,
			CreatedBy:       m.CreatedBy,
		})
	}
	return dto.NewPagedResponse(items, filter.Page, filter.PageSize, total), nil
}

func operationResult(b *entity.Balance, m *entity.Movement) *dto.OperationResult {
	return &dto.OperationResult{
		MovementID: m.ID,
		Balance:    dto.SnapshotOf(b),
	}
}

func valueOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
