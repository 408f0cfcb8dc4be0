package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceWarehouseID      string                      `json:"source_warehouse_id"`
	SourceLocationID       *string                     `json:"source_location_id,omitempty"`
	DestinationWarehouseID string                      `json:"destination_warehouse_id"`
	DestinationLocationID  *string                     `json:"destination_location_id,omitempty"`
	Notes                  string                      `json:"notes,omitempty"`
	Lines                  []CreateTransferLineRequest `json:"lines"`
}

// CreateTransferLineRequest una línea solicitada.
type CreateTransferLineRequest struct {
	ItemID            string          `json:"item_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	LotNumber         string          `json:"lot_number,omitempty"`
	SerialNumber      string          `json:"serial_number,omitempty"`
}

// ShipTransferRequest body para POST /api/transfers/:id/ship.
// Las cantidades enviadas pueden diferir de las solicitadas (envío parcial).
type ShipTransferRequest struct {
	Lines []ShipTransferLineRequest `json:"lines"`
}

// ShipTransferLineRequest cantidad despachada de una línea.
type ShipTransferLineRequest struct {
	LineID          string          `json:"line_id"`
	ShippedQuantity decimal.Decimal `json:"shipped_quantity"`
}

// ReceiveTransferRequest body para POST /api/transfers/:id/receive.
// Las cantidades recibidas pueden diferir de las enviadas (merma/sobrante).
type ReceiveTransferRequest struct {
	Lines []ReceiveTransferLineRequest `json:"lines"`
}

// ReceiveTransferLineRequest cantidad recibida de una línea.
type ReceiveTransferLineRequest struct {
	LineID           string          `json:"line_id"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// TransferDTO un traslado en respuestas.
type TransferDTO struct {
	ID                     string            `json:"id"`
	TransferNumber         string            `json:"transfer_number"`
	SourceWarehouseID      string            `json:"source_warehouse_id"`
	SourceLocationID       *string           `json:"source_location_id,omitempty"`
	DestinationWarehouseID string            `json:"destination_warehouse_id"`
	DestinationLocationID  *string           `json:"destination_location_id,omitempty"`
	Status                 string            `json:"status"`
	Notes                  string            `json:"notes,omitempty"`
	CommittedAt            *time.Time        `json:"committed_at,omitempty"`
	ShippedAt              *time.Time        `json:"shipped_at,omitempty"`
	ReceivedAt             *time.Time        `json:"received_at,omitempty"`
	CancelledAt            *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	Lines                  []TransferLineDTO `json:"lines"`
}

// TransferLineDTO una línea de traslado en respuestas.
type TransferLineDTO struct {
	ID                string           `json:"id"`
	ItemID            string           `json:"item_id"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	ShippedQuantity   *decimal.Decimal `json:"shipped_quantity,omitempty"`
	ReceivedQuantity  *decimal.Decimal `json:"received_quantity,omitempty"`
	LotNumber         string           `json:"lot_number,omitempty"`
	SerialNumber      string           `json:"serial_number,omitempty"`
}
