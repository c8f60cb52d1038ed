package refnum

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/database"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestGenerateSequencesPerDay(t *testing.T) {
	db := newTestDB(t)
	gen := NewGenerator(db)
	ctx := context.Background()
	today := time.Now().Format("20060102")

	ref, err := gen.Generate(ctx, &model.Purchase{}, "reference_number", PrefixPurchase, DefaultDigits)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("PUR-%s-00001", today), ref)

	// The sequence only advances once a row with the reference exists.
	require.NoError(t, db.Create(&model.Purchase{
		ReferenceNumber: ref,
		BatchNumber:     "BN-1",
		SupplierID:      mustUUID(t, db),
		Status:          model.PurchaseStatusActive,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
	}).Error)

	ref2, err := gen.Generate(ctx, &model.Purchase{}, "reference_number", PrefixPurchase, DefaultDigits)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("PUR-%s-00002", today), ref2)
}

func TestGenerateIsPerPrefix(t *testing.T) {
	db := newTestDB(t)
	gen := NewGenerator(db)
	ctx := context.Background()
	today := time.Now().Format("20060102")

	supplierID := mustUUID(t, db)
	require.NoError(t, db.Create(&model.Purchase{
		ReferenceNumber: fmt.Sprintf("PUR-%s-00001", today),
		BatchNumber:     "BN-1",
		SupplierID:      supplierID,
		Status:          model.PurchaseStatusActive,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
	}).Error)

	// A PUR row does not advance the INV sequence.
	ref, err := gen.Generate(ctx, &model.InventoryBatch{}, "reference_number", PrefixInventoryBatch, DefaultDigits)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("INV-%s-00001", today), ref)
}

func TestGenerateDefaultsDigits(t *testing.T) {
	db := newTestDB(t)
	gen := NewGenerator(db)

	ref, err := gen.Generate(context.Background(), &model.Sales{}, "reference_number", PrefixSale, 0)
	require.NoError(t, err)
	require.Len(t, ref, len("SALE-20060102-00001"))
}

func mustUUID(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	supplier := model.Supplier{Name: "Test Supplier"}
	require.NoError(t, db.Create(&supplier).Error)
	return supplier.ID
}
