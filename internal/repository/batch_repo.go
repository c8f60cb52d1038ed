package repository

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchFilter narrows batch listings.
type BatchFilter struct {
	Status     string
	SupplierID *uuid.UUID
}

type BatchRepository interface {
	Create(ctx context.Context, batch *model.InventoryBatch) error
	Update(ctx context.Context, batch *model.InventoryBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryBatch, error)
	FindBySupplierAndBatchNumber(ctx context.Context, supplierID uuid.UUID, batchNumber string) (*model.InventoryBatch, error)
	List(ctx context.Context, params pagination.Params, filter BatchFilter) ([]model.InventoryBatch, int64, error)
	FindExpired(ctx context.Context, asOf time.Time) ([]model.InventoryBatch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	CreateItem(ctx context.Context, item *model.InventoryItem) error
	UpdateItem(ctx context.Context, item *model.InventoryItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindItemsByBatch(ctx context.Context, batchID uuid.UUID) ([]model.InventoryItem, error)
	FindItemByBatchAndProduct(ctx context.Context, batchID, productID uuid.UUID) (*model.InventoryItem, error)
	FindActiveItemsByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error)
}

type batchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Create(ctx context.Context, batch *model.InventoryBatch) error {
	return GetDB(ctx, r.db).Create(batch).Error
}

func (r *batchRepository) Update(ctx context.Context, batch *model.InventoryBatch) error {
	return GetDB(ctx, r.db).Save(batch).Error
}

func (r *batchRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryBatch, error) {
	var batch model.InventoryBatch
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Items.Product").Preload("Supplier").
		First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) FindBySupplierAndBatchNumber(ctx context.Context, supplierID uuid.UUID, batchNumber string) (*model.InventoryBatch, error) {
	var batch model.InventoryBatch
	if err := GetDB(ctx, r.db).Where("supplier_id = ? AND batch_number = ?", supplierID, batchNumber).
		First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepository) List(ctx context.Context, params pagination.Params, filter BatchFilter) ([]model.InventoryBatch, int64, error) {
	var batches []model.InventoryBatch
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryBatch{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		db = db.Where("supplier_id = ?", *filter.SupplierID)
	}
	if params.DateFrom != nil {
		db = db.Where("created_at >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		db = db.Where("created_at <= ?", *params.DateTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := params.OrderClause("created_at desc", "created_at", "expiry_date", "batch_number", "status")
	if err := db.Preload("Items").Preload("Supplier").
		Order(order).Offset(params.Offset).Limit(params.Limit).Find(&batches).Error; err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

func (r *batchRepository) FindExpired(ctx context.Context, asOf time.Time) ([]model.InventoryBatch, error) {
	var batches []model.InventoryBatch
	if err := GetDB(ctx, r.db).Preload("Items").
		Where("expiry_date < ? AND status = ?", asOf, model.BatchStatusActive).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *batchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.InventoryBatch{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *batchRepository) CreateItem(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *batchRepository) UpdateItem(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *batchRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Preload("Batch").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *batchRepository) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := lockForUpdate(GetDB(ctx, r.db)).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *batchRepository) FindItemsByBatch(ctx context.Context, batchID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := GetDB(ctx, r.db).Where("batch_id = ?", batchID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *batchRepository) FindItemByBatchAndProduct(ctx context.Context, batchID, productID uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).Where("batch_id = ? AND product_id = ?", batchID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *batchRepository) FindActiveItemsByProduct(ctx context.Context, productID uuid.UUID) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := GetDB(ctx, r.db).Where("product_id = ? AND status = ?", productID, model.ItemStatusActive).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
