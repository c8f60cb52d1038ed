package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseFilter narrows purchase listings.
type PurchaseFilter struct {
	Status     string
	SupplierID *uuid.UUID
	Verified   *bool
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	Update(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindBySupplierAndBatchNumber(ctx context.Context, supplierID uuid.UUID, batchNumber string) (*model.Purchase, error)
	List(ctx context.Context, params pagination.Params, filter PurchaseFilter) ([]model.Purchase, int64, error)

	CreateItem(ctx context.Context, item *model.PurchaseItem) error
	UpdateItem(ctx context.Context, item *model.PurchaseItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseItem, error)
	FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseItem, error)
	FindItemsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.PurchaseItem, error)

	CreateEdit(ctx context.Context, edit *model.PurchaseEdit) error
	ListEditsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.PurchaseEdit, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Save(purchase).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Items.Product").Preload("Supplier").
		First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := lockForUpdate(GetDB(ctx, r.db)).
		First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindBySupplierAndBatchNumber(ctx context.Context, supplierID uuid.UUID, batchNumber string) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Where("supplier_id = ? AND batch_number = ?", supplierID, batchNumber).
		First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, params pagination.Params, filter PurchaseFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Purchase{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		db = db.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Verified != nil {
		if *filter.Verified {
			db = db.Where("verified_by IS NOT NULL AND verification_date IS NOT NULL")
		} else {
			db = db.Where("verified_by IS NULL OR verification_date IS NULL")
		}
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
		Order(order).Offset(params.Offset).Limit(params.Limit).Find(&purchases).Error; err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (r *purchaseRepository) CreateItem(ctx context.Context, item *model.PurchaseItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *purchaseRepository) UpdateItem(ctx context.Context, item *model.PurchaseItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *purchaseRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseItem, error) {
	var item model.PurchaseItem
	if err := GetDB(ctx, r.db).Preload("Purchase").Preload("Product").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *purchaseRepository) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseItem, error) {
	var item model.PurchaseItem
	if err := lockForUpdate(GetDB(ctx, r.db)).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *purchaseRepository) FindItemsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.PurchaseItem, error) {
	var items []model.PurchaseItem
	if err := GetDB(ctx, r.db).Where("purchase_id = ?", purchaseID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *purchaseRepository) CreateEdit(ctx context.Context, edit *model.PurchaseEdit) error {
	return GetDB(ctx, r.db).Create(edit).Error
}

func (r *purchaseRepository) ListEditsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.PurchaseEdit, error) {
	var edits []model.PurchaseEdit
	if err := GetDB(ctx, r.db).Where("purchase_id = ?", purchaseID).
		Order("created_at asc").Find(&edits).Error; err != nil {
		return nil, err
	}
	return edits, nil
}
