package repository

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseReturnRepository interface {
	Create(ctx context.Context, ret *model.PurchaseReturn) error
	Update(ctx context.Context, ret *model.PurchaseReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseReturn, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseReturn, error)
	// FindRecentDuplicate looks for an identical submission (same item,
	// quantity, reason and submitter) created at or after since.
	FindRecentDuplicate(ctx context.Context, itemID uuid.UUID, quantity int, reason string, submittedBy uuid.UUID, since time.Time) (*model.PurchaseReturn, error)
	// SumQuotaByItem totals ReturnQuantity over returns still reserving
	// quota for the item (REJECTED and CANCELLED excluded).
	SumQuotaByItem(ctx context.Context, itemID uuid.UUID) (int64, error)
	List(ctx context.Context, params pagination.Params, status string) ([]model.PurchaseReturn, int64, error)
}

type purchaseReturnRepository struct {
	db *gorm.DB
}

func NewPurchaseReturnRepository(db *gorm.DB) PurchaseReturnRepository {
	return &purchaseReturnRepository{db: db}
}

func (r *purchaseReturnRepository) Create(ctx context.Context, ret *model.PurchaseReturn) error {
	return GetDB(ctx, r.db).Create(ret).Error
}

func (r *purchaseReturnRepository) Update(ctx context.Context, ret *model.PurchaseReturn) error {
	return GetDB(ctx, r.db).Save(ret).Error
}

func (r *purchaseReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseReturn, error) {
	var ret model.PurchaseReturn
	if err := GetDB(ctx, r.db).Preload("PurchaseItem").Preload("PurchaseItem.Product").
		First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *purchaseReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseReturn, error) {
	var ret model.PurchaseReturn
	if err := lockForUpdate(GetDB(ctx, r.db)).
		First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *purchaseReturnRepository) FindRecentDuplicate(ctx context.Context, itemID uuid.UUID, quantity int, reason string, submittedBy uuid.UUID, since time.Time) (*model.PurchaseReturn, error) {
	var ret model.PurchaseReturn
	err := GetDB(ctx, r.db).
		Where("purchase_item_id = ? AND return_quantity = ? AND reason = ? AND submitted_by = ? AND created_at >= ?",
			itemID, quantity, reason, submittedBy, since).
		First(&ret).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *purchaseReturnRepository) SumQuotaByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var sum struct {
		Total int64
	}
	err := GetDB(ctx, r.db).Model(&model.PurchaseReturn{}).
		Select("COALESCE(SUM(return_quantity), 0) as total").
		Where("purchase_item_id = ? AND status NOT IN ?", itemID,
			[]string{string(model.PurchaseReturnRejected), string(model.PurchaseReturnCancelled)}).
		Scan(&sum).Error
	return sum.Total, err
}

func (r *purchaseReturnRepository) List(ctx context.Context, params pagination.Params, status string) ([]model.PurchaseReturn, int64, error) {
	var returns []model.PurchaseReturn
	var total int64

	db := GetDB(ctx, r.db).Model(&model.PurchaseReturn{})
	if status != "" {
		db = db.Where("status = ?", status)
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

	order := params.OrderClause("created_at desc", "created_at", "status", "return_quantity")
	if err := db.Preload("PurchaseItem").Preload("PurchaseItem.Product").
		Order(order).Offset(params.Offset).Limit(params.Limit).Find(&returns).Error; err != nil {
		return nil, 0, err
	}

	return returns, total, nil
}
