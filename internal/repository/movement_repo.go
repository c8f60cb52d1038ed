package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRepository appends and reads InventoryMovement rows. There is
// deliberately no Update or Delete: the movement log is append-only.
type MovementRepository interface {
	Create(ctx context.Context, movement *model.InventoryMovement) error
	SumByItem(ctx context.Context, itemID uuid.UUID) (int64, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]model.InventoryMovement, int64, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *model.InventoryMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *movementRepository) SumByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	var sum struct {
		Total int64
	}
	err := GetDB(ctx, r.db).Model(&model.InventoryMovement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("item_id = ?", itemID).
		Scan(&sum).Error
	return sum.Total, err
}

func (r *movementRepository) ListByItem(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]model.InventoryMovement, int64, error) {
	var movements []model.InventoryMovement
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryMovement{}).Where("item_id = ?", itemID)
	if params.DateFrom != nil {
		db = db.Where("created_at >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		db = db.Where("created_at <= ?", *params.DateTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at asc").Offset(params.Offset).Limit(params.Limit).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
