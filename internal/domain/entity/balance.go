package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain"
)

// BalanceKey identifica una fila de saldo: ítem + bodega + ubicación opcional.
type BalanceKey struct {
	ItemID      string
	WarehouseID string
	LocationID  *string // nil = sin ubicación
}

// Balance saldo actual de stock para una clave ítem/bodega/ubicación.
// Proyección derivada del ledger de movimientos; se muta únicamente a través
// del motor de saldos, bajo CAS sobre RowVersion.
type Balance struct {
	ID          string
	TenantID    string
	ItemID      string
	WarehouseID string
	LocationID  *string

	OnHand    decimal.Decimal
	Reserved  decimal.Decimal
	InTransit decimal.Decimal

	LastMovementID *string
	LastMovementAt *time.Time

	RowVersion int64 // contador monotónico para concurrencia optimista
	UpdatedAt  time.Time
}

// Key devuelve la clave de la fila.
func (b *Balance) Key() BalanceKey {
	return BalanceKey{ItemID: b.ItemID, WarehouseID: b.WarehouseID, LocationID: b.LocationID}
}

// Available es on-hand menos reservado. Nunca se persiste; siempre se recalcula.
func (b *Balance) Available() decimal.Decimal {
	return b.OnHand.Sub(b.Reserved)
}

// AddStock suma cantidad al on-hand y registra el último movimiento aplicado.
func (b *Balance) AddStock(quantity decimal.Decimal, movementID string, at time.Time) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	b.OnHand = b.OnHand.Add(quantity)
	b.touch(movementID, at)
	return nil
}

// RemoveStock resta cantidad del on-hand. Con allowNegative=false exige
// available >= cantidad; si no, InsufficientStockError con lo disponible.
func (b *Balance) RemoveStock(quantity decimal.Decimal, movementID string, at time.Time, allowNegative bool) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if !allowNegative && b.Available().LessThan(quantity) {
		return domain.NewInsufficientStock(b.ItemID, quantity, b.Available())
	}
	b.OnHand = b.OnHand.Sub(quantity)
	b.touch(movementID, at)
	return nil
}

// Reserve aparta cantidad contra el available. Nunca admite sobre-reserva:
// una reserva jamás puede llevar el on-hand efectivo a negativo.
func (b *Balance) Reserve(quantity decimal.Decimal, movementID string, at time.Time) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if b.Available().LessThan(quantity) {
		return domain.NewInsufficientStock(b.ItemID, quantity, b.Available())
	}
	b.Reserved = b.Reserved.Add(quantity)
	b.touch(movementID, at)
	return nil
}

// Unreserve libera cantidad reservada. Falla INVALID_UNRESERVE si se intenta
// liberar más de lo reservado.
func (b *Balance) Unreserve(quantity decimal.Decimal, movementID string, at time.Time) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if b.Reserved.LessThan(quantity) {
		return domain.ErrInvalidUnreserve
	}
	b.Reserved = b.Reserved.Sub(quantity)
	b.touch(movementID, at)
	return nil
}

// AddInTransit suma cantidad en tránsito (mercancía despachada hacia esta clave).
func (b *Balance) AddInTransit(quantity decimal.Decimal, movementID string, at time.Time) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	b.InTransit = b.InTransit.Add(quantity)
	b.touch(movementID, at)
	return nil
}

// RemoveInTransit resta cantidad en tránsito, con clamp en cero
// (tolerancia a merma: recibir más de lo registrado no deja negativo).
func (b *Balance) RemoveInTransit(quantity decimal.Decimal, movementID string, at time.Time) error {
	if !quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	b.InTransit = b.InTransit.Sub(quantity)
	if b.InTransit.IsNegative() {
		b.InTransit = decimal.Zero
	}
	b.touch(movementID, at)
	return nil
}

func (b *Balance) touch(movementID string, at time.Time) {
	if movementID != "" {
		id := movementID
		b.LastMovementID = &id
		ts := at
		b.LastMovementAt = &ts
	}
	b.UpdatedAt = at
}
