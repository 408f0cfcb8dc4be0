package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReservationRequest body para POST /api/reservations.
type CreateReservationRequest struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	LocationID  *string         `json:"location_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	OrderType   string          `json:"order_type"`
	OrderID     string          `json:"order_id"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// ReservationDTO una reserva en respuestas.
type ReservationDTO struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	LocationID  *string         `json:"location_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	OrderType   string          `json:"order_type"`
	OrderID     string          `json:"order_id"`
	Status      string          `json:"status"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReservationResult reserva + saldo resultante.
type ReservationResult struct {
	Reservation ReservationDTO  `json:"reservation"`
	Balance     BalanceSnapshot `json:"balance"`
}
