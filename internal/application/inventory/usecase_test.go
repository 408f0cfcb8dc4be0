package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/application/engine"
	"github.com/tu-usuario/stock-ledger/internal/application/engine/enginetest"
	"github.com/tu-usuario/stock-ledger/internal/application/inventory"
	"github.com/tu-usuario/stock-ledger/internal/application/refs"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/internal/domain/repository"
	"github.com/tu-usuario/stock-ledger/pkg/logger"
)

const (
	tenant = "tenant-1"
	actor  = "tester"
)

func setup(t *testing.T) (*inventory.UseCase, *enginetest.Store) {
	t.Helper()
	store := enginetest.NewStore()
	store.SeedItem(tenant, "item-1", "SKU-001")
	store.SeedWarehouse(tenant, "wh-1", "BOD-01")
	store.SeedLocation(tenant, "loc-1", "wh-1", "A-01")

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	eng := engine.New(false, 3, log.Component("engine"), engine.WithBackoff(time.Millisecond))
	validator := refs.NewValidator(&enginetest.ItemRepo{Store: store}, &enginetest.WarehouseRepo{Store: store}, &enginetest.LocationRepo{Store: store})
	repos := store.Repos()
	uc := inventory.NewUseCase(eng, store.Runner(), validator, repos.Balances, repos.Movements, engine.NopPublisher{})
	return uc, store
}

func TestReceipt_CreaSaldoYAsienta(t *testing.T) {
	uc, store := setup(t)
	cost := decimal.NewFromFloat(2.5)

	res, err := uc.Receipt(context.Background(), tenant, actor, dto.ReceiptRequest{
		ItemID:      "item-1",
		WarehouseID: "wh-1",
		Quantity:    decimal.NewFromInt(100),
		UnitCost:    &cost,
	}, "")
	require.NoError(t, err)

	assert.True(t, res.Balance.OnHand.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Balance.Available.Equal(decimal.NewFromInt(100)))

	movs := store.Movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementReceipt, movs[0].Kind)
	assert.Equal(t, res.MovementID, movs[0].ID)
	require.NotNil(t, movs[0].TotalCost)
	assert.True(t, movs[0].TotalCost.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, actor, movs[0].CreatedBy)
}

func TestReceipt_ItemDesconocido(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Receipt(context.Background(), tenant, actor, dto.ReceiptRequest{
		ItemID:      "item-404",
		WarehouseID: "wh-1",
		Quantity:    decimal.NewFromInt(1),
	}, "")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestReceipt_UbicacionDeOtraBodega(t *testing.T) {
	uc, store := setup(t)
	store.SeedWarehouse(tenant, "wh-2", "BOD-02")
	loc := "loc-1" // cuelga de wh-1, no de wh-2
	_, err := uc.Receipt(context.Background(), tenant, actor, dto.ReceiptRequest{
		ItemID:      "item-1",
		WarehouseID: "wh-2",
		LocationID:  &loc,
		Quantity:    decimal.NewFromInt(1),
	}, "")
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestIssue_SinSaldoPrevio(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Issue(context.Background(), tenant, actor, dto.IssueRequest{
		ItemID:      "item-1",
		WarehouseID: "wh-1",
		Quantity:    decimal.NewFromInt(5),
	}, "")
	// La clave nunca se ha movido: NO_STOCK, no INSUFFICIENT_STOCK.
	assert.ErrorIs(t, err, domain.ErrNoStock)
}

func TestIssue_StockInsuficiente(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Receipt(context.Background(), tenant, actor, dto.ReceiptRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(3),
	}, "")
	require.NoError(t, err)

	_, err = uc.Issue(context.Background(), tenant, actor, dto.IssueRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(10),
	}, "")
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Available.Equal(decimal.NewFromInt(3)))
}

func TestIssue_Exitoso(t *testing.T) {
	uc, store := setup(t)
	_, err := uc.Receipt(context.Background(), tenant, actor, dto.ReceiptRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(10),
	}, "")
	require.NoError(t, err)

	res, err := uc.Issue(context.Background(), tenant, actor, dto.IssueRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(4),
	}, "")
	require.NoError(t, err)
	assert.True(t, res.Balance.OnHand.Equal(decimal.NewFromInt(6)))

	b := store.Balance(tenant, entity.BalanceKey{ItemID: "item-1", WarehouseID: "wh-1"})
	require.NotNil(t, b)
	assert.Equal(t, int64(2), b.RowVersion)
}

func TestAdjust_TipoInvalido(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Adjust(context.Background(), tenant, actor, dto.AdjustmentRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(1), AdjustmentType: "subtract",
	}, "")
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestAdjust_IncrementoYDecremento(t *testing.T) {
	uc, store := setup(t)

	_, err := uc.Adjust(context.Background(), tenant, actor, dto.AdjustmentRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(8),
		AdjustmentType: "increase", ReasonCode: "conteo",
	}, "")
	require.NoError(t, err)

	res, err := uc.Adjust(context.Background(), tenant, actor, dto.AdjustmentRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(3),
		AdjustmentType: "decrease", ReasonCode: "merma",
	}, "")
	require.NoError(t, err)
	assert.True(t, res.Balance.OnHand.Equal(decimal.NewFromInt(5)))

	movs := store.Movements()
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementPositiveAdjustment, movs[0].Kind)
	assert.Equal(t, entity.MovementNegativeAdjustment, movs[1].Kind)
	assert.Equal(t, "merma", movs[1].ReasonCode)
}

func TestBalances_AvailableRecalculado(t *testing.T) {
	uc, _ := setup(t)
	_, err := uc.Receipt(context.Background(), tenant, actor, dto.ReceiptRequest{
		ItemID: "item-1", WarehouseID: "wh-1", Quantity: decimal.NewFromInt(50),
	}, "")
	require.NoError(t, err)

	page, err := uc.Balances(context.Background(), tenant, repository.BalanceFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Available.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 1, page.Total)
}
