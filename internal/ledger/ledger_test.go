package ledger

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"backend/internal/database"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type capturedEvent struct {
	event   string
	payload interface{}
}

type captureNotifier struct {
	events []capturedEvent
}

func (n *captureNotifier) Notify(event string, payload interface{}) {
	n.events = append(n.events, capturedEvent{event: event, payload: payload})
}

type ledgerFixture struct {
	db       *gorm.DB
	ledger   *Ledger
	notifier *captureNotifier
	item     *model.InventoryItem
}

func newFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	batches := repository.NewBatchRepository(db)
	movements := repository.NewMovementRepository(db)
	purchases := repository.NewPurchaseRepository(db)
	notifier := &captureNotifier{}

	f := &ledgerFixture{
		db:       db,
		ledger:   New(batches, movements, purchases, notifier, log),
		notifier: notifier,
	}
	f.item = f.seedItem(t, 100)
	return f
}

func (f *ledgerFixture) seedItem(t *testing.T, qty int) *model.InventoryItem {
	t.Helper()

	supplier := model.Supplier{Name: "Acme Pharma"}
	require.NoError(t, f.db.Create(&supplier).Error)

	product := model.Product{Code: "PARA-" + uuid.NewString()[:8], Name: "Paracetamol 500mg"}
	require.NoError(t, f.db.Create(&product).Error)

	batch := model.InventoryBatch{
		ReferenceNumber: "INV-20260101-" + uuid.NewString()[:5],
		BatchNumber:     "BN-" + uuid.NewString()[:8],
		SupplierID:      supplier.ID,
		Status:          model.BatchStatusActive,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
	}
	require.NoError(t, f.db.Create(&batch).Error)

	item := model.InventoryItem{
		BatchID:         batch.ID,
		ProductID:       product.ID,
		InitialQuantity: qty,
		CurrentQuantity: qty,
		Status:          model.ItemStatusActive,
	}
	require.NoError(t, f.db.Create(&item).Error)
	return &item
}

func TestApplyOutboundAppendsMovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -30,
		MovementType: model.MovementOutbound,
		Reason:       "sold",
	})
	require.NoError(t, err)
	assert.Equal(t, 70, item.CurrentQuantity)
	assert.Equal(t, model.ItemStatusActive, item.Status)

	var movements []model.InventoryMovement
	require.NoError(t, f.db.Where("item_id = ?", f.item.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, -30, movements[0].Quantity)
	assert.Equal(t, 100, movements[0].PreviousQuantity)
	assert.Equal(t, 70, movements[0].NewQuantity)
	assert.Equal(t, model.MovementOutbound, movements[0].MovementType)
}

func TestApplyRejectsZeroDelta(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Apply(context.Background(), ApplyInput{
		ItemID:       f.item.ID,
		MovementType: model.MovementAdjustment,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyInsufficientStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Apply(context.Background(), ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -101,
		MovementType: model.MovementOutbound,
	})
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// Nothing written on failure.
	var count int64
	require.NoError(t, f.db.Model(&model.InventoryMovement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyCannotExceedInitialQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -40,
		MovementType: model.MovementOutbound,
	})
	require.NoError(t, err)

	_, err = f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        41,
		MovementType: model.MovementReturn,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApplyUnknownItem(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Apply(context.Background(), ApplyInput{
		ItemID:       uuid.New(),
		Delta:        -1,
		MovementType: model.MovementOutbound,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApplyDepletionDefaultsToSoldOut(t *testing.T) {
	f := newFixture(t)

	item, err := f.ledger.Apply(context.Background(), ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -100,
		MovementType: model.MovementOutbound,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, item.CurrentQuantity)
	assert.Equal(t, model.ItemStatusSoldOut, item.Status)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, EventItemDepleted, f.notifier.events[0].event)
}

func TestApplyDepletionHonoursCallerStatus(t *testing.T) {
	f := newFixture(t)

	item, err := f.ledger.Apply(context.Background(), ApplyInput{
		ItemID:          f.item.ID,
		Delta:           -100,
		MovementType:    model.MovementReturn,
		DepletionStatus: model.ItemStatusRecalled,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusRecalled, item.Status)
}

func TestApplyRestoresSoldOutItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -100,
		MovementType: model.MovementOutbound,
	})
	require.NoError(t, err)

	item, err := f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        25,
		MovementType: model.MovementReturn,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, item.CurrentQuantity)
	assert.Equal(t, model.ItemStatusActive, item.Status)

	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, EventItemRestored, f.notifier.events[1].event)
}

func TestApplySoldOutItemRejectsOutbound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -100,
		MovementType: model.MovementOutbound,
	})
	require.NoError(t, err)

	_, err = f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -1,
		MovementType: model.MovementOutbound,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestApplyExpiredItemOnlyAcceptsExpiredWriteOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&model.InventoryItem{}).
		Where("id = ?", f.item.ID).
		Update("status", model.ItemStatusExpired).Error)

	_, err := f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -10,
		MovementType: model.MovementOutbound,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        10,
		MovementType: model.MovementExpired,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	item, err := f.ledger.Apply(ctx, ApplyInput{
		ItemID:       f.item.ID,
		Delta:        -100,
		MovementType: model.MovementExpired,
		Reason:       "expired stock written off",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, item.CurrentQuantity)
}

func TestApplyRecalledItemRejectsEverything(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(&model.InventoryItem{}).
		Where("id = ?", f.item.ID).
		Update("status", model.ItemStatusRecalled).Error)

	for _, delta := range []int{-1, 1} {
		_, err := f.ledger.Apply(context.Background(), ApplyInput{
			ItemID:       f.item.ID,
			Delta:        delta,
			MovementType: model.MovementAdjustment,
		})
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	}
}

func TestMovementTrailReconstructsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deltas := []int{-20, -30, 15, -5}
	for _, delta := range deltas {
		mt := model.MovementOutbound
		if delta > 0 {
			mt = model.MovementReturn
		}
		_, err := f.ledger.Apply(ctx, ApplyInput{
			ItemID:       f.item.ID,
			Delta:        delta,
			MovementType: mt,
		})
		require.NoError(t, err)
	}

	var item model.InventoryItem
	require.NoError(t, f.db.First(&item, "id = ?", f.item.ID).Error)

	var sum int64
	require.NoError(t, f.db.Model(&model.InventoryMovement{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("item_id = ?", f.item.ID).
		Scan(&sum).Error)

	assert.Equal(t, int64(item.CurrentQuantity), int64(item.InitialQuantity)+sum)
	assert.Equal(t, 60, item.CurrentQuantity)

	// The snapshot chain is contiguous: each movement starts where the
	// previous one ended, from the initial quantity down to the live value.
	var movements []model.InventoryMovement
	require.NoError(t, f.db.Where("item_id = ?", f.item.ID).
		Order("created_at asc").Find(&movements).Error)
	require.Len(t, movements, len(deltas))

	assert.Equal(t, item.InitialQuantity, movements[0].PreviousQuantity)
	for i := 1; i < len(movements); i++ {
		assert.Equal(t, movements[i-1].NewQuantity, movements[i].PreviousQuantity)
	}
	assert.Equal(t, item.CurrentQuantity, movements[len(movements)-1].NewQuantity)
}

func TestApplyPurchaseBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	supplier := model.Supplier{Name: "Beta Pharma"}
	require.NoError(t, f.db.Create(&supplier).Error)
	product := model.Product{Code: "AMOX-" + uuid.NewString()[:8], Name: "Amoxicillin"}
	require.NoError(t, f.db.Create(&product).Error)
	purchase := model.Purchase{
		ReferenceNumber: "PUR-20260101-" + uuid.NewString()[:5],
		BatchNumber:     "BN-" + uuid.NewString()[:8],
		SupplierID:      supplier.ID,
		Status:          model.PurchaseStatusActive,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
	}
	require.NoError(t, f.db.Create(&purchase).Error)
	item := model.PurchaseItem{
		PurchaseID:      purchase.ID,
		ProductID:       product.ID,
		InitialQuantity: 50,
		CurrentQuantity: 50,
	}
	require.NoError(t, f.db.Create(&item).Error)

	updated, err := f.ledger.ApplyPurchase(ctx, item.ID, -20)
	require.NoError(t, err)
	assert.Equal(t, 30, updated.CurrentQuantity)

	_, err = f.ledger.ApplyPurchase(ctx, item.ID, -31)
	assert.ErrorIs(t, err, apperr.ErrInsufficientStock)

	_, err = f.ledger.ApplyPurchase(ctx, item.ID, 21)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.ledger.ApplyPurchase(ctx, item.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Purchase items never land in the movement trail.
	var count int64
	require.NoError(t, f.db.Model(&model.InventoryMovement{}).Count(&count).Error)
	assert.Zero(t, count)
}
