package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptRequest body para POST /api/inventory/receipts.
type ReceiptRequest struct {
	ItemID          string           `json:"item_id"`
	WarehouseID     string           `json:"warehouse_id"`
	LocationID      *string          `json:"location_id,omitempty"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	LotNumber       string           `json:"lot_number,omitempty"`
	SerialNumber    string           `json:"serial_number,omitempty"`
	ExpirationDate  *time.Time       `json:"expiration_date,omitempty"`
	TransactionDate *time.Time       `json:"transaction_date,omitempty"` // tiempo de negocio, puede retro-fecharse
}

// IssueRequest body para POST /api/inventory/issues.
type IssueRequest struct {
	ItemID          string          `json:"item_id"`
	WarehouseID     string          `json:"warehouse_id"`
	LocationID      *string         `json:"location_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments.
// AdjustmentType: "increase" | "decrease".
type AdjustmentRequest struct {
	ItemID            string          `json:"item_id"`
	WarehouseID       string          `json:"warehouse_id"`
	LocationID        *string         `json:"location_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	AdjustmentType    string          `json:"adjustment_type"`
	ReasonCode        string          `json:"reason_code,omitempty"`
	ReasonDescription string          `json:"reason_description,omitempty"`
	TransactionDate   *time.Time      `json:"transaction_date,omitempty"`
}

// BalanceDTO una fila de saldo en listados.
type BalanceDTO struct {
	ItemID         string          `json:"item_id"`
	WarehouseID    string          `json:"warehouse_id"`
	LocationID     *string         `json:"location_id,omitempty"`
	OnHand         decimal.Decimal `json:"on_hand"`
	Reserved       decimal.Decimal `json:"reserved"`
	Available      decimal.Decimal `json:"available"`
	InTransit      decimal.Decimal `json:"in_transit"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
}

// MovementDTO un asiento del ledger en listados.
type MovementDTO struct {
	ID              string           `json:"id"`
	ItemID          string           `json:"item_id"`
	WarehouseID     string           `json:"warehouse_id"`
	LocationID      *string          `json:"location_id,omitempty"`
	Kind            string           `json:"kind"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	TotalCost       *decimal.Decimal `json:"total_cost,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty"`
	ReferenceID     string           `json:"reference_id,omitempty"`
	ReasonCode      string           `json:"reason_code,omitempty"`
	TransactionDate time.Time        `json:"transaction_date"`
	CreatedAt       time.Time        `json:"created_at"`
	CreatedBy       string           `json:"created_by"`
}
