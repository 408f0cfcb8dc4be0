package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/stock-ledger/internal/domain"
)

// Estados de un traslado.
const (
	TransferDraft     = "DRAFT"
	TransferCommitted = "COMMITTED"
	TransferInTransit = "IN_TRANSIT"
	TransferReceived  = "RECEIVED"
	TransferCancelled = "CANCELLED"
)

// Transfer traslado multi-línea entre dos bodegas.
// Máquina de estados: Draft -> Committed -> InTransit -> Received;
// Cancel válido desde cualquier estado no terminal.
type Transfer struct {
	ID             string
	TenantID       string
	TransferNumber string // TRF-YYYYMMDD-NNNN, secuencia diaria por tenant

	SourceWarehouseID      string
	SourceLocationID       *string
	DestinationWarehouseID string
	DestinationLocationID  *string

	Status string
	Notes  string

	CommittedAt *time.Time
	ShippedAt   *time.Time
	ReceivedAt  *time.Time
	CancelledAt *time.Time

	RowVersion int64
	Lines      []TransferLine
	Audit
}

// TransferLine una línea (ítem + cantidades) de un traslado.
type TransferLine struct {
	ID         string
	TransferID string
	ItemID     string

	RequestedQuantity decimal.Decimal
	ShippedQuantity   *decimal.Decimal // puede diferir de lo solicitado (envío parcial)
	ReceivedQuantity  *decimal.Decimal // puede diferir de lo enviado (merma/sobrante)

	LotNumber    string
	SerialNumber string
}

// SourceKey clave de saldo en la bodega origen para una línea.
func (t *Transfer) SourceKey(itemID string) BalanceKey {
	return BalanceKey{ItemID: itemID, WarehouseID: t.SourceWarehouseID, LocationID: t.SourceLocationID}
}

// DestinationKey clave de saldo en la bodega destino para una línea.
func (t *Transfer) DestinationKey(itemID string) BalanceKey {
	return BalanceKey{ItemID: itemID, WarehouseID: t.DestinationWarehouseID, LocationID: t.DestinationLocationID}
}

// Line busca una línea por id; nil si no existe.
func (t *Transfer) Line(lineID string) *TransferLine {
	for i := range t.Lines {
		if t.Lines[i].ID == lineID {
			return &t.Lines[i]
		}
	}
	return nil
}

// Commit pasa de Draft a Committed. Exige al menos una línea.
func (t *Transfer) Commit(at time.Time) error {
	if t.Status != TransferDraft {
		return domain.InvalidStatusf("no se puede confirmar un traslado en estado %s; debe estar %s", t.Status, TransferDraft)
	}
	if len(t.Lines) == 0 {
		return domain.ErrEmptyTransfer
	}
	t.Status = TransferCommitted
	t.CommittedAt = &at
	return nil
}

// Ship pasa de Committed a InTransit.
func (t *Transfer) Ship(at time.Time) error {
	if t.Status != TransferCommitted {
		return domain.InvalidStatusf("no se puede despachar un traslado en estado %s; debe estar %s", t.Status, TransferCommitted)
	}
	t.Status = TransferInTransit
	t.ShippedAt = &at
	return nil
}

// Receive pasa de InTransit a Received.
func (t *Transfer) Receive(at time.Time) error {
	if t.Status != TransferInTransit {
		return domain.InvalidStatusf("no se puede recibir un traslado en estado %s; debe estar %s", t.Status, TransferInTransit)
	}
	t.Status = TransferReceived
	t.ReceivedAt = &at
	return nil
}

// Cancel cancela el traslado. Rechazado desde Received o Cancelled.
func (t *Transfer) Cancel(at time.Time) error {
	if t.Status == TransferReceived || t.Status == TransferCancelled {
		return domain.InvalidStatusf("no se puede cancelar un traslado en estado %s", t.Status)
	}
	t.Status = TransferCancelled
	t.CancelledAt = &at
	return nil
}
