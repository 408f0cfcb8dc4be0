package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger. La cantidad siempre se guarda positiva;
// el tipo determina la semántica del signo.
const (
	MovementReceipt            = "RECEIPT"
	MovementIssue              = "ISSUE"
	MovementPositiveAdjustment = "POSITIVE_ADJUSTMENT"
	MovementNegativeAdjustment = "NEGATIVE_ADJUSTMENT"
	MovementTransferOut        = "TRANSFER_OUT"
	MovementTransferIn         = "TRANSFER_IN"
	MovementReserve            = "RESERVE"
	MovementUnreserve          = "UNRESERVE"
)

// Movement registro inmutable del ledger: un evento que afecta stock.
// Una vez escrito nunca se actualiza ni se borra; es la pista de auditoría y
// la única fuente desde la que un saldo podría reconstruirse.
type Movement struct {
	ID          string
	TenantID    string
	ItemID      string
	WarehouseID string
	LocationID  *string

	Kind     string
	Quantity decimal.Decimal // siempre positiva

	UnitCost  *decimal.Decimal
	TotalCost *decimal.Decimal

	ReferenceType     string // p.ej. "Order", "Transfer"
	ReferenceID       string
	ReasonCode        string // ajustes
	ReasonDescription string

	LotNumber      string
	SerialNumber   string
	ExpirationDate *time.Time

	// TransactionDate es tiempo de negocio (puede venir retro-fechado);
	// CreatedAt es tiempo de sistema.
	TransactionDate time.Time
	CreatedAt       time.Time
	CreatedBy       string

	CorrelationID  string
	IdempotencyKey string
}

// SignedQuantity devuelve la cantidad con el signo que el tipo implica sobre
// el on-hand (reservas y tránsito no afectan on-hand: devuelven cero).
func (m *Movement) SignedQuantity() decimal.Decimal {
	switch m.Kind {
	case MovementReceipt, MovementPositiveAdjustment, MovementTransferIn:
		return m.Quantity
	case MovementIssue, MovementNegativeAdjustment, MovementTransferOut:
		return m.Quantity.Neg()
	}
	return decimal.Zero
}
