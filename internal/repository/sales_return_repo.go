package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalesReturnRepository interface {
	Create(ctx context.Context, ret *model.SalesReturn) error
	Update(ctx context.Context, ret *model.SalesReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesReturn, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SalesReturn, error)
	// SumReturnedBySale totals ReturnQuantity over the sale's non-cancelled
	// returns.
	SumReturnedBySale(ctx context.Context, salesID uuid.UUID) (int64, error)
	List(ctx context.Context, params pagination.Params, status string) ([]model.SalesReturn, int64, error)
}

type salesReturnRepository struct {
	db *gorm.DB
}

func NewSalesReturnRepository(db *gorm.DB) SalesReturnRepository {
	return &salesReturnRepository{db: db}
}

func (r *salesReturnRepository) Create(ctx context.Context, ret *model.SalesReturn) error {
	return GetDB(ctx, r.db).Create(ret).Error
}

func (r *salesReturnRepository) Update(ctx context.Context, ret *model.SalesReturn) error {
	return GetDB(ctx, r.db).Save(ret).Error
}

func (r *salesReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesReturn, error) {
	var ret model.SalesReturn
	if err := GetDB(ctx, r.db).Preload("Sales").Preload("Sales.InventoryItem").
		First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *salesReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.SalesReturn, error) {
	var ret model.SalesReturn
	if err := lockForUpdate(GetDB(ctx, r.db)).
		First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *salesReturnRepository) SumReturnedBySale(ctx context.Context, salesID uuid.UUID) (int64, error) {
	var sum struct {
		Total int64
	}
	err := GetDB(ctx, r.db).Model(&model.SalesReturn{}).
		Select("COALESCE(SUM(return_quantity), 0) as total").
		Where("sales_id = ? AND status != ?", salesID, string(model.SalesReturnCancelled)).
		Scan(&sum).Error
	return sum.Total, err
}

func (r *salesReturnRepository) List(ctx context.Context, params pagination.Params, status string) ([]model.SalesReturn, int64, error) {
	var returns []model.SalesReturn
	var total int64

	db := GetDB(ctx, r.db).Model(&model.SalesReturn{})
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
	if err := db.Preload("Sales").
		Order(order).Offset(params.Offset).Limit(params.Limit).Find(&returns).Error; err != nil {
		return nil, 0, err
	}

	return returns, total, nil
}
