package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSaleCash(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)

	resp, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Walk-in Customer",
		PaymentTerms: model.PaymentTermsCash,
		Lines: []SaleLineRequest{
			{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 40},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.True(t, strings.HasPrefix(resp[0].ReferenceNumber, "SALE-"))
	assert.Equal(t, model.SaleStatusActive, resp[0].Status)
	assert.Equal(t, "40", resp[0].UnitFinalPrice) // 4 x 10
	assert.Equal(t, "0", resp[0].Balance)

	reloaded := env.reloadInventoryItem(t, item.ID)
	assert.Equal(t, 90, reloaded.CurrentQuantity)

	var movements []model.InventoryMovement
	require.NoError(t, env.db.Where("item_id = ? AND movement_type = ?",
		item.ID, model.MovementOutbound).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, -10, movements[0].Quantity)

	txs := env.productTransactions(t, model.ProductTxSale)
	require.Len(t, txs, 1)
	assert.Equal(t, 10, txs[0].QuantityOut)
}

func TestCreateSaleCustomerAutoCreateAndReuse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)

	first, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Nguyen Van A",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 5, AmountPaid: 20}},
	})
	require.NoError(t, err)

	// Case-insensitive match reuses the customer instead of creating a twin.
	second, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "NGUYEN VAN A",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 3, AmountPaid: 12}},
	})
	require.NoError(t, err)
	assert.Equal(t, first[0].CustomerID, second[0].CustomerID)

	var count int64
	require.NoError(t, env.db.Model(&model.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateSaleCustomerXOR(t *testing.T) {
	env := newTestEnv(t)
	item := env.convertedItem(t, 10, 2, 4)
	line := []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 1, AmountPaid: 4}}

	_, err := env.sales.Create(context.Background(), env.userID, CreateSalesRequest{
		PaymentTerms: model.PaymentTermsCash,
		Lines:        line,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.sales.Create(context.Background(), env.userID, CreateSalesRequest{
		CustomerID:   env.userID,
		CustomerName: "Both Given",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        line,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateSaleDuplicateLineInRequest(t *testing.T) {
	env := newTestEnv(t)
	item := env.convertedItem(t, 100, 2, 4)

	// Only an exact repeat of a line is a duplicate.
	_, err := env.sales.Create(context.Background(), env.userID, CreateSalesRequest{
		CustomerName: "Dup Lines",
		PaymentTerms: model.PaymentTermsCash,
		Lines: []SaleLineRequest{
			{InventoryItemID: item.ID.String(), Quantity: 2, AmountPaid: 8},
			{InventoryItemID: item.ID.String(), Quantity: 2, AmountPaid: 8},
		},
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)
}

func TestCreateSaleSharedItemLinesValidatedCumulatively(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 15, 2, 4)

	// 10 + 10 against 15 units: each line fits alone, the sum does not.
	_, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Split Order",
		PaymentTerms: model.PaymentTermsCash,
		Lines: []SaleLineRequest{
			{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 40},
			{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 40},
		},
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 15, env.reloadInventoryItem(t, item.ID).CurrentQuantity)

	// 10 + 5 fits exactly; the item depletes on the second line.
	resp, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Split Order",
		PaymentTerms: model.PaymentTermsCash,
		Lines: []SaleLineRequest{
			{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 40},
			{InventoryItemID: item.ID.String(), Quantity: 5, AmountPaid: 20},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp, 2)

	reloaded := env.reloadInventoryItem(t, item.ID)
	assert.Equal(t, 0, reloaded.CurrentQuantity)
	assert.Equal(t, model.ItemStatusSoldOut, reloaded.Status)
}

func TestCreateSaleIdempotencyWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)
	req := CreateSalesRequest{
		CustomerName: "Repeat Buyer",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 2, AmountPaid: 8}},
	}

	_, err := env.sales.Create(ctx, env.userID, req)
	require.NoError(t, err)

	// The identical payload from the same user inside the window is an
	// accidental resubmission.
	_, err = env.sales.Create(ctx, env.userID, req)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)

	// Stock only moved once.
	reloaded := env.reloadInventoryItem(t, item.ID)
	assert.Equal(t, 98, reloaded.CurrentQuantity)
}

func TestCreateSalePaymentTermsConsistency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.convertedItem(t, 100, 2, 4)

	// CASH with an outstanding balance is rejected.
	_, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Part Payer",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 30}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// CREDIT fully paid should have been CASH.
	_, err = env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Full Payer",
		PaymentTerms: model.PaymentTermsCredit,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 40}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// CREDIT with a balance goes through.
	resp, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Credit Buyer",
		PaymentTerms: model.PaymentTermsCredit,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 25}},
	})
	require.NoError(t, err)
	assert.Equal(t, "15", resp[0].Balance)
}

func TestCreateSaleDiscountAndOverpaymentBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.convertedItem(t, 100, 2, 4)

	_, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Discount Hunter",
		PaymentTerms: model.PaymentTermsCash,
		Lines: []SaleLineRequest{
			{InventoryItemID: item.ID.String(), Quantity: 2, Discount: 9, AmountPaid: 0},
		},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Over Payer",
		PaymentTerms: model.PaymentTermsCash,
		Lines: []SaleLineRequest{
			{InventoryItemID: item.ID.String(), Quantity: 2, AmountPaid: 10},
		},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateSaleInsufficientStockRollsBackWholeRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	itemA := env.convertedItem(t, 100, 2, 4)
	itemB := env.convertedItem(t, 5, 2, 4)

	_, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Bulk Buyer",
		PaymentTerms: model.PaymentTermsCash,
		Lines: []SaleLineRequest{
			{InventoryItemID: itemA.ID.String(), Quantity: 10, AmountPaid: 40},
			{InventoryItemID: itemB.ID.String(), Quantity: 6, AmountPaid: 24},
		},
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// The failing second line rolled back the first line too.
	assert.Equal(t, 100, env.reloadInventoryItem(t, itemA.ID).CurrentQuantity)
	assert.Equal(t, 5, env.reloadInventoryItem(t, itemB.ID).CurrentQuantity)

	var count int64
	require.NoError(t, env.db.Model(&model.Sales{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateSaleExpiredBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 100, 2, 4)
	require.NoError(t, env.db.Model(&model.InventoryBatch{}).
		Where("id = ?", item.BatchID).
		Update("expiry_date", time.Now().Add(-24*time.Hour)).Error)

	_, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Late Buyer",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 1, AmountPaid: 4}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestCreateSaleDepletesItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	item := env.convertedItem(t, 10, 2, 4)
	_, err := env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Last Buyer",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 10, AmountPaid: 40}},
	})
	require.NoError(t, err)

	reloaded := env.reloadInventoryItem(t, item.ID)
	assert.Equal(t, 0, reloaded.CurrentQuantity)
	assert.Equal(t, model.ItemStatusSoldOut, reloaded.Status)

	// A sold-out item cannot be sold again.
	_, err = env.sales.Create(ctx, env.userID, CreateSalesRequest{
		CustomerName: "Too Late",
		PaymentTerms: model.PaymentTermsCash,
		Lines:        []SaleLineRequest{{InventoryItemID: item.ID.String(), Quantity: 1, AmountPaid: 4}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}
