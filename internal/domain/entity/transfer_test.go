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

func draftTransfer() *entity.Transfer {
	return &entity.Transfer{
		ID:                     "trf-1",
		TenantID:               "t1",
		SourceWarehouseID:      "wh-a",
		DestinationWarehouseID: "wh-b",
		Status:                 entity.TransferDraft,
		Lines: []entity.TransferLine{
			{ID: "line-1", TransferID: "trf-1", ItemID: "item-1", RequestedQuantity: decimal.NewFromInt(10)},
		},
	}
}

func TestTransfer_FlujoCompleto(t *testing.T) {
	tr := draftTransfer()
	now := time.Now()

	require.NoError(t, tr.Commit(now))
	assert.Equal(t, entity.TransferCommitted, tr.Status)
	require.NotNil(t, tr.CommittedAt)

	require.NoError(t, tr.Ship(now))
	assert.Equal(t, entity.TransferInTransit, tr.Status)

	require.NoError(t, tr.Receive(now))
	assert.Equal(t, entity.TransferReceived, tr.Status)
}

func TestTransfer_CommitSinLineas(t *testing.T) {
	tr := draftTransfer()
	tr.Lines = nil
	assert.ErrorIs(t, tr.Commit(time.Now()), domain.ErrEmptyTransfer)
	assert.Equal(t, entity.TransferDraft, tr.Status)
}

func TestTransfer_TransicionesInvalidas(t *testing.T) {
	now := time.Now()

	// Despachar sin comprometer.
	tr := draftTransfer()
	assert.ErrorIs(t, tr.Ship(now), domain.ErrInvalidStatus)

	// Recibir sin despachar.
	tr = draftTransfer()
	require.NoError(t, tr.Commit(now))
	assert.ErrorIs(t, tr.Receive(now), domain.ErrInvalidStatus)

	// Comprometer dos veces.
	assert.ErrorIs(t, tr.Commit(now), domain.ErrInvalidStatus)
}

func TestTransfer_CancelDesdeEstadosNoTerminales(t *testing.T) {
	now := time.Now()
	for _, setup := range []func(*entity.Transfer){
		func(*entity.Transfer) {}, // Draft
		func(tr *entity.Transfer) { _ = tr.Commit(now) },
		func(tr *entity.Transfer) { _ = tr.Commit(now); _ = tr.Ship(now) },
	} {
		tr := draftTransfer()
		setup(tr)
		require.NoError(t, tr.Cancel(now))
		assert.Equal(t, entity.TransferCancelled, tr.Status)
	}
}

func TestTransfer_CancelRechazadoEnTerminales(t *testing.T) {
	now := time.Now()

	tr := draftTransfer()
	require.NoError(t, tr.Commit(now))
	require.NoError(t, tr.Ship(now))
	require.NoError(t, tr.Receive(now))
	assert.ErrorIs(t, tr.Cancel(now), domain.ErrInvalidStatus)

	tr = draftTransfer()
	require.NoError(t, tr.Cancel(now))
	assert.ErrorIs(t, tr.Cancel(now), domain.ErrInvalidStatus)
}

func TestTransfer_LineBuscaPorID(t *testing.T) {
	tr := draftTransfer()
	require.NotNil(t, tr.Line("line-1"))
	assert.Nil(t, tr.Line("line-404"))
}
