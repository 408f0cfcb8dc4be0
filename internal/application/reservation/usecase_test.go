package reservation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/application/engine/enginetest"
	"github.com/tu-usuario/stock-ledger/internal/application/refs"
	"github.com/tu-usuario/stock-ledger/internal/application/reservation"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

const (
	tenant = "tenant-1"
	actor  = "tester"
)

var key = entity.BalanceKey{ItemID: "item-1", WarehouseID: "wh-1"}

func setup(t *testing.T) (*reservation.UseCase, *engine.Engine, *enginetest.Store) {
	t.Helper()
	store := enginetest.NewStore()
	store.SeedItem(tenant, "item-1", "SKU-001")
	store.SeedWarehouse(tenant, "wh-1", "BOD-01")

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	eng := engine.New(false, 3, log.Component("engine"), engine.WithBackoff(time.Millisecond))
	validator := refs.NewValidator(&enginetest.ItemRepo{Store: store}, &enginetest.WarehouseRepo{Store: store}, &enginetest.LocationRepo{Store: store})
	uc := reservation.NewUseCase(eng, store.Runner(), validator, store.Repos().Reservations, engine.NopPublisher{})
	return uc, eng, store
}

func seedStock(t *testing.T, eng *engine.Engine, store *enginetest.Store, qty int64) {
	t.Helper()
	err := eng.RunWithRetry(context.Background(), store.Runner(), func(r engine.Repos) error {
		_, _, err := eng.Apply(context.Background(), r, tenant, engine.Single(key, engine.AddOnHand, decimal.NewFromInt(qty), engine.MovementMeta{Kind: entity.MovementReceipt}))
		return err
	})
	require.NoError(t, err)
}

// Flujo completo: entran 100, se reservan 40 (available 60) y al confirmar el
// on-hand baja a 60 con reservado en cero, dejando un único asiento ISSUE.
func TestReservation_FlujoReservarYConfirmar(t *testing.T) {
	uc, eng, store := setup(t)
	seedStock(t, eng, store, 100)

	created, err := uc.Create(context.Background(), tenant, actor, dto.CreateReservationRequest{
		ItemID:      "item-1",
		WarehouseID: "wh-1",
		Quantity:    decimal.NewFromInt(40),
		OrderType:   "SalesOrder",
		OrderID:     "SO-001",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationActive, created.Reservation.Status)
	assert.True(t, created.Balance.OnHand.Equal(decimal.NewFromInt(100)))
	assert.True(t, created.Balance.Reserved.Equal(decimal.NewFromInt(40)))
	assert.True(t, created.Balance.Available.Equal(decimal.NewFromInt(60)))

	confirmed, err := uc.Confirm(context.Background(), tenant, actor, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationConfirmed, confirmed.Reservation.Status)
	assert.True(t, confirmed.Balance.OnHand.Equal(decimal.NewFromInt(60)))
	assert.True(t, confirmed.Balance.Reserved.IsZero())

	// La confirmación asienta un solo ISSUE: liberar+retirar es un único asiento.
	var issues, reserves int
	for _, m := range store.Movements() {
		switch m.Kind {
		case entity.MovementIssue:
			issues++
		case entity.MovementReserve:
			reserves++
		}
	}
	assert.Equal(t, 1, issues)
	assert.Equal(t, 1, reserves)
}

func TestReservation_NoSobrepasaAvailable(t *testing.T) {
	uc, eng, store := setup(t)
	seedStock(t, eng, store, 10)

	_, err := uc.Create(context.Background(), tenant, actor, dto.CreateReservationRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(11),
	}, "")
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))

	// Nada quedó persistido: ni reserva ni asiento RESERVE.
	list, _, lerr := store.Repos().Reservations.List(context.Background(), tenant, repository.ReservationFilter{})
	require.NoError(t, lerr)
	assert.Empty(t, list)
}

func TestReservation_ConfirmarDosVeces(t *testing.T) {
	uc, eng, store := setup(t)
	seedStock(t, eng, store, 10)

	created, err := uc.Create(context.Background(), tenant, actor, dto.CreateReservationRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(4),
	}, "")
	require.NoError(t, err)

	_, err = uc.Confirm(context.Background(), tenant, actor, created.Reservation.ID)
	require.NoError(t, err)

	_, err = uc.Confirm(context.Background(), tenant, actor, created.Reservation.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestReservation_ReleaseDevuelveElAvailable(t *testing.T) {
	uc, eng, store := setup(t)
	seedStock(t, eng, store, 10)

	created, err := uc.Create(context.Background(), tenant, actor, dto.CreateReservationRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(6),
	}, "")
	require.NoError(t, err)

	released, err := uc.Release(context.Background(), tenant, actor, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationReleased, released.Reservation.Status)
	// El on-hand no cambia: liberar una reserva nunca mueve stock.
	assert.True(t, released.Balance.OnHand.Equal(decimal.NewFromInt(10)))
	assert.True(t, released.Balance.Available.Equal(decimal.NewFromInt(10)))

	// Después de liberar ya no hay transiciones válidas.
	_, err = uc.Release(context.Background(), tenant, actor, created.Reservation.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestReservation_CancelMismoEfectoQueRelease(t *testing.T) {
	uc, eng, store := setup(t)
	seedStock(t, eng, store, 10)

	created, err := uc.Create(context.Background(), tenant, actor, dto.CreateReservationRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(2),
	}, "")
	require.NoError(t, err)

	cancelled, err := uc.Cancel(context.Background(), tenant, actor, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationCancelled, cancelled.Reservation.Status)
	assert.True(t, cancelled.Balance.Reserved.IsZero())
}

func TestReservation_NoEncontrada(t *testing.T) {
	uc, _, _ := setup(t)
	_, err := uc.Confirm(context.Background(), tenant, actor, "res-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
