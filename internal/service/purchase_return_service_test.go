package service

import (
	"context"
	"strings"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPurchaseReturnPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	purchase := env.createPurchase(t, 100, 2, 4)
	itemID := purchase.Items[0].ID

	resp, err := env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: itemID,
		ReturnQuantity: 30,
		Reason:         "damaged on arrival",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ReferenceNumber, "PR-"))
	assert.Equal(t, string(model.PurchaseReturnPending), resp.Status)
	assert.Equal(t, decimal.NewFromInt(60).String(), resp.ReturnPrice) // 2 x 30

	// Submission reserves quota but moves no stock.
	item := env.reloadPurchaseItem(t, itemID)
	assert.Equal(t, 100, item.CurrentQuantity)
}

func TestSubmitPurchaseReturnInsufficientStock(t *testing.T) {
	env := newTestEnv(t)

	purchase := env.createPurchase(t, 50, 2, 4)
	_, err := env.purchaseReturns.Submit(context.Background(), env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: purchase.Items[0].ID,
		ReturnQuantity: 51,
		Reason:         "over-return",
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
}

func TestSubmitPurchaseReturnQuotaExceeded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	purchase := env.createPurchase(t, 100, 2, 4)
	itemID := purchase.Items[0].ID

	_, err := env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: itemID,
		ReturnQuantity: 60,
		Reason:         "short shelf life",
	})
	require.NoError(t, err)

	// 60 pending + 50 requested exceeds the 100 initial units even though
	// nothing has been deducted yet.
	_, err = env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: itemID,
		ReturnQuantity: 50,
		Reason:         "wrong strength",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSubmitPurchaseReturnDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	purchase := env.createPurchase(t, 100, 2, 4)
	req := SubmitPurchaseReturnRequest{
		PurchaseItemID: purchase.Items[0].ID,
		ReturnQuantity: 10,
		Reason:         "double click",
	}

	_, err := env.purchaseReturns.Submit(ctx, env.userID, req)
	require.NoError(t, err)

	_, err = env.purchaseReturns.Submit(ctx, env.userID, req)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)
}

func TestSubmitPurchaseReturnDirectApprovedMovesNothing(t *testing.T) {
	env := newTestEnv(t)

	purchase := env.createPurchase(t, 100, 2, 4)
	itemID := purchase.Items[0].ID

	resp, err := env.purchaseReturns.Submit(context.Background(), env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: itemID,
		ReturnQuantity: 20,
		Reason:         "trusted submitter",
		Status:         string(model.PurchaseReturnApproved),
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.PurchaseReturnApproved), resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	require.NotNil(t, resp.ApprovedAt)

	// Quantity effects fire only on the transition into APPROVED, which a
	// direct-APPROVED submission never makes.
	item := env.reloadPurchaseItem(t, itemID)
	assert.Equal(t, 100, item.CurrentQuantity)
}

func TestApprovePurchaseReturnDeductsItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	purchase := env.createPurchase(t, 100, 2, 4)
	itemID := purchase.Items[0].ID

	ret, err := env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: itemID,
		ReturnQuantity: 40,
		Reason:         "recall notice",
	})
	require.NoError(t, err)

	approved, err := env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnApproved),
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.PurchaseReturnApproved), approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	item := env.reloadPurchaseItem(t, itemID)
	assert.Equal(t, 60, item.CurrentQuantity)
	assert.Equal(t, 100, item.InitialQuantity)

	txs := env.productTransactions(t, model.ProductTxReturnToSupplier)
	require.Len(t, txs, 1)
	assert.Equal(t, 40, txs[0].QuantityOut)
	assert.Equal(t, approved.ReturnPrice, txs[0].TotalAmount.String())
}

func TestApprovePurchaseReturnMirrorsConvertedInventory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	purchase := env.createPurchase(t, 50, 2, 4)
	_, err := env.purchases.Verify(ctx, env.userID, purchase.ID)
	require.NoError(t, err)
	converted, err := env.purchases.ConvertToInventory(ctx, env.userID, purchase.ID)
	require.NoError(t, err)

	var invItem model.InventoryItem
	require.NoError(t, env.db.First(&invItem, "batch_id = ?", *converted.InventoryBatchID).Error)

	ret, err := env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: purchase.Items[0].ID,
		ReturnQuantity: 50,
		Reason:         "full recall",
	})
	require.NoError(t, err)

	_, err = env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnApproved),
	})
	require.NoError(t, err)

	// Both sides deducted; full depletion cascades RECALLED and RETURNED.
	purchaseItem := env.reloadPurchaseItem(t, purchase.Items[0].ID)
	assert.Equal(t, 0, purchaseItem.CurrentQuantity)

	mirrored := env.reloadInventoryItem(t, invItem.ID)
	assert.Equal(t, 0, mirrored.CurrentQuantity)
	assert.Equal(t, model.ItemStatusRecalled, mirrored.Status)

	var batch model.InventoryBatch
	require.NoError(t, env.db.First(&batch, "id = ?", *converted.InventoryBatchID).Error)
	assert.Equal(t, model.BatchStatusRecalled, batch.Status)

	var reloaded model.Purchase
	require.NoError(t, env.db.First(&reloaded, "id = ?", uuid.MustParse(purchase.ID)).Error)
	assert.Equal(t, model.PurchaseStatusReturned, reloaded.Status)

	// The movement trail carries the deduction with snapshots.
	var movements []model.InventoryMovement
	require.NoError(t, env.db.Where("item_id = ?", invItem.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementReturn, movements[0].MovementType)
	assert.Equal(t, -50, movements[0].Quantity)
}

func TestPurchaseReturnInvalidTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	purchase := env.createPurchase(t, 100, 2, 4)
	ret, err := env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: purchase.Items[0].ID,
		ReturnQuantity: 10,
		Reason:         "testing transitions",
	})
	require.NoError(t, err)

	// PENDING cannot jump straight to PROCESSED.
	_, err = env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnProcessed),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnApproved),
	})
	require.NoError(t, err)

	// APPROVED can no longer be rejected.
	_, err = env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnRejected),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	processed, err := env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnProcessed),
	})
	require.NoError(t, err)
	require.NotNil(t, processed.ProcessedAt)

	// Terminal.
	_, err = env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnCancelled),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestRejectedPurchaseReturnReleasesQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	purchase := env.createPurchase(t, 100, 2, 4)
	itemID := purchase.Items[0].ID

	ret, err := env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: itemID,
		ReturnQuantity: 100,
		Reason:         "first attempt",
	})
	require.NoError(t, err)

	_, err = env.purchaseReturns.SetStatus(ctx, env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: string(model.PurchaseReturnRejected),
	})
	require.NoError(t, err)

	// The rejected reservation no longer counts, so the full quantity is
	// available again.
	_, err = env.purchaseReturns.Submit(ctx, env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: itemID,
		ReturnQuantity: 100,
		Reason:         "second attempt",
	})
	assert.NoError(t, err)
}

func TestPurchaseReturnUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	purchase := env.createPurchase(t, 100, 2, 4)
	ret, err := env.purchaseReturns.Submit(context.Background(), env.userID, SubmitPurchaseReturnRequest{
		PurchaseItemID: purchase.Items[0].ID,
		ReturnQuantity: 5,
		Reason:         "status check",
	})
	require.NoError(t, err)

	_, err = env.purchaseReturns.SetStatus(context.Background(), env.userID, ret.ID, SetPurchaseReturnStatusRequest{
		Status: "SHIPPED",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
