package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
)

func qty(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newBalance(onHand, reserved string) *entity.Balance {
	return &entity.Balance{
		ID:          "bal-1",
		TenantID:    "t1",
		ItemID:      "item-1",
		WarehouseID: "wh-1",
		OnHand:      qty(onHand),
		Reserved:    qty(reserved),
		InTransit:   decimal.Zero,
		RowVersion:  1,
	}
}

func TestBalance_AvailableSeRecalcula(t *testing.T) {
	b := newBalance("100", "40")
	assert.True(t, b.Available().Equal(qty("60")))
}

func TestBalance_RemoveStockInsuficiente(t *testing.T) {
	b := newBalance("100", "40")
	// available = 60: retirar 100 debe fallar aunque on-hand alcance.
	err := b.RemoveStock(qty("100"), "mov-1", time.Now(), false)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(qty("60")))
	assert.True(t, ise.Requested.Equal(qty("100")))
	// Sin efectos sobre el saldo.
	assert.True(t, b.OnHand.Equal(qty("100")))
}

func TestBalance_RemoveStockConPoliticaNegativa(t *testing.T) {
	b := newBalance("10", "0")
	err := b.RemoveStock(qty("25"), "mov-1", time.Now(), true)
	require.NoError(t, err)
	assert.True(t, b.OnHand.Equal(qty("-15")))
}

func TestBalance_ReserveNuncaSobrepasaAvailable(t *testing.T) {
	b := newBalance("10", "0")
	// La política de stock negativo no aplica a reservas: esto falla siempre.
	err := b.Reserve(qty("11"), "mov-1", time.Now())
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, b.Reserved.IsZero())
}

func TestBalance_UnreserveMasDeLoReservado(t *testing.T) {
	b := newBalance("100", "5")
	err := b.Unreserve(qty("6"), "mov-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidUnreserve)
}

func TestBalance_RemoveInTransitClampEnCero(t *testing.T) {
	b := newBalance("0", "0")
	require.NoError(t, b.AddInTransit(qty("8"), "mov-1", time.Now()))
	// Llega más de lo registrado en tránsito: el saldo no queda negativo.
	require.NoError(t, b.RemoveInTransit(qty("10"), "mov-2", time.Now()))
	assert.True(t, b.InTransit.IsZero())
}

func TestBalance_CantidadNoPositivaRechazada(t *testing.T) {
	b := newBalance("10", "0")
	assert.ErrorIs(t, b.AddStock(decimal.Zero, "m", time.Now()), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, b.RemoveStock(qty("-1"), "m", time.Now(), true), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, b.Reserve(decimal.Zero, "m", time.Now()), domain.ErrInvalidQuantity)
}

func TestBalance_TouchRegistraUltimoMovimiento(t *testing.T) {
	b := newBalance("0", "0")
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, b.AddStock(qty("1"), "mov-99", at))
	require.NotNil(t, b.LastMovementID)
	assert.Equal(t, "mov-99", *b.LastMovementID)
	require.NotNil(t, b.LastMovementAt)
	assert.True(t, b.LastMovementAt.Equal(at))
}
