package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain"
)

// Estados de una reserva. Todos los estados distintos de Active son terminales.
const (
	ReservationActive    = "ACTIVE"
	ReservationConfirmed = "CONFIRMED"
	ReservationReleased  = "RELEASED"
	ReservationCancelled = "CANCELLED"
)

// Reservation apartado de cantidad contra una orden, sin retirarla del on-hand.
type Reservation struct {
	ID          string
	TenantID    string
	ItemID      string
	WarehouseID string
	LocationID  *string

	Quantity decimal.Decimal

	OrderType string
	OrderID   string

	Status    string
	ExpiresAt *time.Time

	CorrelationID string
	Audit
}

// Key devuelve la clave de saldo sobre la que pesa la reserva.
func (r *Reservation) Key() BalanceKey {
	return BalanceKey{ItemID: r.ItemID, WarehouseID: r.WarehouseID, LocationID: r.LocationID}
}

// Confirm marca la reserva como consumida (el stock sale del on-hand vía un
// movimiento de salida). Solo válido desde Active.
func (r *Reservation) Confirm() error {
	if r.Status != ReservationActive {
		return domain.InvalidStatusf("no se puede confirmar una reserva en estado %s; debe estar %s", r.Status, ReservationActive)
	}
	r.Status = ReservationConfirmed
	return nil
}

// Release libera la reserva sin retirar stock. Solo válido desde Active.
func (r *Reservation) Release() error {
	if r.Status != ReservationActive {
		return domain.InvalidStatusf("no se puede liberar una reserva en estado %s; debe estar %s", r.Status, ReservationActive)
	}
	r.Status = ReservationReleased
	return nil
}

// Cancel cancela la reserva sin retirar stock. Solo válido desde Active.
func (r *Reservation) Cancel() error {
	if r.Status != ReservationActive {
		return domain.InvalidStatusf("no se puede cancelar una reserva en estado %s; debe estar %s", r.Status, ReservationActive)
	}
	r.Status = ReservationCancelled
	return nil
}

// IsExpired indica si una reserva Active ya venció. El vencimiento es
// consultivo: el motor no auto-expira, un colaborador debe liberarla.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now) && r.Status == ReservationActive
}
