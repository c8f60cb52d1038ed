package repository

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesFilter narrows sales listings.
type SalesFilter struct {
	Status     string
	CustomerID *uuid.UUID
}

type SalesRepository interface {
	Create(ctx context.Context, sale *model.Sales) error
	Update(ctx context.Context, sale *model.Sales) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sales, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sales, error)
	// FindByHashSince returns a sale with the same idempotency hash created
	// at or after since, if any.
	FindByHashSince(ctx context.Context, hash string, since time.Time) (*model.Sales, error)
	List(ctx context.Context, params pagination.Params, filter SalesFilter) ([]model.Sales, int64, error)
}

type salesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Create(ctx context.Context, sale *model.Sales) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *salesRepository) Update(ctx context.Context, sale *model.Sales) error {
	return GetDB(ctx, r.db).Save(sale).Error
}

func (r *salesRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sales, error) {
	var sale model.Sales
	if err := GetDB(ctx, r.db).Preload("InventoryItem").Preload("Customer").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *salesRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Sales, error) {
	var sale model.Sales
	if err := lockForUpdate(GetDB(ctx, r.db)).
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *salesRepository) FindByHashSince(ctx context.Context, hash string, since time.Time) (*model.Sales, error) {
	var sale model.Sales
	err := GetDB(ctx, r.db).Where("request_hash = ? AND created_at >= ?", hash, since).
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *salesRepository) List(ctx context.Context, params pagination.Params, filter SalesFilter) ([]model.Sales, int64, error) {
	var sales []model.Sales
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Sales{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
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

	order := params.OrderClause("created_at desc", "created_at", "status", "quantity")
	if err := db.Preload("InventoryItem").Preload("Customer").
		Order(order).Offset(params.Offset).Limit(params.Limit).Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}
