package service

import (
	"context"
	"strings"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sellTo creates a CASH sale of qty units and returns its response.
func (e *testEnv) sellTo(t *testing.T, customer string, itemID string, qty int, amountPaid float64) SalesResponse {
	t.Helper()
	resp, err := e.sales.Create(context.Background(), e.userID, CreateSalesRequest{
		CustomerName: customer,
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: itemID, Quantity: qty, AmountPaid: amountPaid}},
	})
	require.NoError(t, err)
	require.Len(t, resp, 1)
	return resp[0]
}

func TestSubmitSalesReturn(t *testing.T) {
	env := newTestEnv(t)

	item := env.convertedItem(t, 100, 2, 4)
	sale := env.sellTo(t, "Returning Customer", item.ID.String(), 10, 40)

	resp, err := env.salesReturns.Submit(context.Background(), env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 4,
		Reason:         "wrong item",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ReferenceNumber, "SR-"))
	assert.Equal(t, string(model.SalesReturnPending), resp.Status)
	assert.True(t, resp.Restockable) // defaults to true

	// Submission moves no stock.
	assert.Equal(t, 90, env.reloadInventoryItem(t, item.ID).CurrentQuantity)
}

func TestSubmitSalesReturnExceedsSoldQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)
	sale := env.sellTo(t, "Small Buyer", item.ID.String(), 10, 40)

	_, err := env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 11,
		Reason:         "too many",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Cumulative across returns: 6 reserved leaves only 4 returnable.
	_, err = env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 6,
		Reason:         "first batch",
	})
	require.NoError(t, err)

	_, err = env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 5,
		Reason:         "second batch",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestProcessRestockableSalesReturn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)
	sale := env.sellTo(t, "Partial Returner", item.ID.String(), 10, 40)

	ret, err := env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 4,
		Reason:         "unopened",
	})
	require.NoError(t, err)

	processed, err := env.salesReturns.SetStatus(ctx, env.userID, ret.ID, SetSalesReturnStatusRequest{
		Status: string(model.SalesReturnProcessed),
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.SalesReturnProcessed), processed.Status)
	require.NotNil(t, processed.ProcessedAt)
	require.NotNil(t, processed.ProcessedBy)

	// Stock came back and the sale advanced to PARTIALLY_RETURNED.
	assert.Equal(t, 94, env.reloadInventoryItem(t, item.ID).CurrentQuantity)

	var reloaded model.Sales
	require.NoError(t, env.db.First(&reloaded, "reference_number = ?", sale.ReferenceNumber).Error)
	assert.Equal(t, model.SaleStatusPartiallyReturned, reloaded.Status)

	txs := env.productTransactions(t, model.ProductTxSalesReturn)
	require.Len(t, txs, 1)
	assert.Equal(t, 4, txs[0].QuantityIn)

	var movements []model.InventoryMovement
	require.NoError(t, env.db.Where("item_id = ? AND movement_type = ?",
		item.ID, model.MovementReturn).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, 4, movements[0].Quantity)
}

func TestProcessFullReturnMarksSaleReturned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 20, 2, 4)
	sale := env.sellTo(t, "Full Returner", item.ID.String(), 20, 80)

	// The sale depleted the item; the restock flips it back to ACTIVE.
	require.Equal(t, model.ItemStatusSoldOut, env.reloadInventoryItem(t, item.ID).Status)

	ret, err := env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 20,
		Reason:         "order cancelled",
	})
	require.NoError(t, err)

	_, err = env.salesReturns.SetStatus(ctx, env.userID, ret.ID, SetSalesReturnStatusRequest{
		Status: string(model.SalesReturnProcessed),
	})
	require.NoError(t, err)

	restocked := env.reloadInventoryItem(t, item.ID)
	assert.Equal(t, 20, restocked.CurrentQuantity)
	assert.Equal(t, model.ItemStatusActive, restocked.Status)

	var reloaded model.Sales
	require.NoError(t, env.db.First(&reloaded, "reference_number = ?", sale.ReferenceNumber).Error)
	assert.Equal(t, model.SaleStatusReturned, reloaded.Status)
}

func TestProcessNonRestockableSalesReturn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)
	sale := env.sellTo(t, "Damaged Goods", item.ID.String(), 10, 40)

	restockable := false
	ret, err := env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 10,
		Reason:         "broken seal",
		Restockable:    &restockable,
	})
	require.NoError(t, err)

	_, err = env.salesReturns.SetStatus(ctx, env.userID, ret.ID, SetSalesReturnStatusRequest{
		Status: string(model.SalesReturnProcessed),
	})
	require.NoError(t, err)

	// No stock increment, but the write-off lands in the product trail and
	// the sale still advances.
	assert.Equal(t, 90, env.reloadInventoryItem(t, item.ID).CurrentQuantity)

	txs := env.productTransactions(t, model.ProductTxWriteOff)
	require.Len(t, txs, 1)
	assert.Equal(t, 10, txs[0].QuantityOut)

	var reloaded model.Sales
	require.NoError(t, env.db.First(&reloaded, "reference_number = ?", sale.ReferenceNumber).Error)
	assert.Equal(t, model.SaleStatusReturned, reloaded.Status)
}

func TestCancelledSalesReturnIsFrozenAndReleasesQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)
	sale := env.sellTo(t, "Undecided", item.ID.String(), 10, 40)

	ret, err := env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 10,
		Reason:         "changed mind",
	})
	require.NoError(t, err)

	_, err = env.salesReturns.SetStatus(ctx, env.userID, ret.ID, SetSalesReturnStatusRequest{
		Status: string(model.SalesReturnCancelled),
	})
	require.NoError(t, err)

	// Terminal: no further edits.
	_, err = env.salesReturns.SetStatus(ctx, env.userID, ret.ID, SetSalesReturnStatusRequest{
		Status: string(model.SalesReturnProcessed),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	// A cancelled return stops counting, so the full quantity is returnable
	// again.
	_, err = env.salesReturns.Submit(ctx, env.userID, SubmitSalesReturnRequest{
		SalesID:        sale.ID,
		ReturnQuantity: 10,
		Reason:         "changed mind back",
	})
	assert.NoError(t, err)
}

func TestSalesReturnUnknownSale(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.salesReturns.Submit(context.Background(), env.userID, SubmitSalesReturnRequest{
		SalesID:        "2f9c8a31-0000-4000-8000-000000000000",
		ReturnQuantity: 1,
		Reason:         "ghost sale",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
