package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

func activeReservation() *entity.Reservation {
	return &entity.Reservation{
		ID:          "res-1",
		TenantID:    "t1",
		ItemID:      "item-1",
		WarehouseID: "wh-1",
		Quantity:    decimal.NewFromInt(5),
		Status:      entity.ReservationActive,
	}
}

func TestReservation_TransicionesDesdeActive(t *testing.T) {
	r := activeReservation()
	require.NoError(t, r.Confirm())
	assert.Equal(t, entity.ReservationConfirmed, r.Status)

	r = activeReservation()
	require.NoError(t, r.Release())
	assert.Equal(t, entity.ReservationReleased, r.Status)

	r = activeReservation()
	require.NoError(t, r.Cancel())
	assert.Equal(t, entity.ReservationCancelled, r.Status)
}

func TestReservation_EstadosTerminalesNoTransicionan(t *testing.T) {
	r := activeReservation()
	require.NoError(t, r.Confirm())

	assert.ErrorIs(t, r.Confirm(), domain.ErrInvalidStatus)
	assert.ErrorIs(t, r.Release(), domain.ErrInvalidStatus)
	assert.ErrorIs(t, r.Cancel(), domain.ErrInvalidStatus)
}

func TestReservation_IsExpiredSoloEnActive(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	r := activeReservation()
	r.ExpiresAt = &past
	assert.True(t, r.IsExpired(time.Now()))

	// Una reserva confirmada no se considera vencida.
	require.NoError(t, r.Confirm())
	assert.False(t, r.IsExpired(time.Now()))

	// Sin vencimiento configurado, nunca vence.
	r2 := activeReservation()
	assert.False(t, r2.IsExpired(time.Now()))
}
