package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"backend/internal/database"
	"backend/internal/ledger"
	"backend/internal/model"
	"backend/internal/refnum"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database, the
// same way cmd/api does against postgres.
type testEnv struct {
	db *gorm.DB

	batchRepo    repository.BatchRepository
	purchaseRepo repository.PurchaseRepository
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository

	purchases       PurchaseService
	purchaseReturns PurchaseReturnService
	sales           SalesService
	salesReturns    SalesReturnService
	inventory       InventoryService

	supplier model.Supplier
	product  model.Product
	userID   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	batchRepo := repository.NewBatchRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	productRepo := repository.NewProductRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	purchaseReturnRepo := repository.NewPurchaseReturnRepository(db)
	salesRepo := repository.NewSalesRepository(db)
	salesReturnRepo := repository.NewSalesReturnRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	txManager := repository.NewTransactionManager(db)
	refs := refnum.NewGenerator(db)
	ldg := ledger.New(batchRepo, movementRepo, purchaseRepo, nil, log)
	activity := NewActivityService(activityRepo, log)

	env := &testEnv{
		db:           db,
		batchRepo:    batchRepo,
		purchaseRepo: purchaseRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		purchases: NewPurchaseService(purchaseRepo, batchRepo, productRepo, supplierRepo,
			ldg, refs, activity, txManager, log),
		purchaseReturns: NewPurchaseReturnService(purchaseReturnRepo, purchaseRepo, batchRepo, productRepo,
			ldg, refs, activity, txManager, log),
		sales: NewSalesService(salesRepo, batchRepo, productRepo, customerRepo,
			ldg, refs, activity, txManager, log),
		salesReturns: NewSalesReturnService(salesReturnRepo, salesRepo, batchRepo, productRepo,
			ldg, refs, activity, txManager, log),
		inventory: NewInventoryService(batchRepo, movementRepo, ldg, activity, txManager, nil, log),
		userID:    uuid.NewString(),
	}

	env.supplier = model.Supplier{Name: "MedSupply Co"}
	require.NoError(t, db.Create(&env.supplier).Error)

	env.product = model.Product{Code: "PARA-500", Name: "Paracetamol 500mg", Unit: "tablet"}
	require.NoError(t, db.Create(&env.product).Error)

	return env
}

// createPurchase runs the service path with one line of qty units.
func (e *testEnv) createPurchase(t *testing.T, qty int, cost, retail float64) PurchaseResponse {
	t.Helper()

	resp, err := e.purchases.Create(context.Background(), e.userID, CreatePurchaseRequest{
		SupplierID:  e.supplier.ID.String(),
		BatchNumber: "BN-" + uuid.NewString()[:8],
		ExpiryDate:  time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
		Items: []PurchaseItemRequest{
			{ProductID: e.product.ID.String(), Quantity: qty, CostPrice: cost, RetailPrice: retail},
		},
	})
	require.NoError(t, err)
	return resp
}

// convertedItem drives create -> verify -> convert and returns the resulting
// inventory item.
func (e *testEnv) convertedItem(t *testing.T, qty int, cost, retail float64) model.InventoryItem {
	t.Helper()
	ctx := context.Background()

	purchase := e.createPurchase(t, qty, cost, retail)
	_, err := e.purchases.Verify(ctx, e.userID, purchase.ID)
	require.NoError(t, err)
	converted, err := e.purchases.ConvertToInventory(ctx, e.userID, purchase.ID)
	require.NoError(t, err)
	require.NotNil(t, converted.InventoryBatchID)

	var item model.InventoryItem
	require.NoError(t, e.db.First(&item, "batch_id = ?", *converted.InventoryBatchID).Error)
	return item
}

func (e *testEnv) reloadPurchaseItem(t *testing.T, id string) model.PurchaseItem {
	t.Helper()
	var item model.PurchaseItem
	require.NoError(t, e.db.First(&item, "id = ?", id).Error)
	return item
}

func (e *testEnv) reloadInventoryItem(t *testing.T, id uuid.UUID) model.InventoryItem {
	t.Helper()
	var item model.InventoryItem
	require.NoError(t, e.db.First(&item, "id = ?", id).Error)
	return item
}

func (e *testEnv) productTransactions(t *testing.T, txType string) []model.ProductTransaction {
	t.Helper()
	var txs []model.ProductTransaction
	require.NoError(t, e.db.Where("transaction_type = ?", txType).Find(&txs).Error)
	return txs
}
