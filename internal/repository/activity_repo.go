package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"gorm.io/gorm"
)

// ActivityFilter narrows activity log listings.
type ActivityFilter struct {
	Model  string
	Action string
}

type ActivityRepository interface {
	Log(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, params pagination.Params, filter ActivityFilter) ([]model.ActivityLog, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Log(ctx context.Context, entry *model.ActivityLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *activityRepository) List(ctx context.Context, params pagination.Params, filter ActivityFilter) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ActivityLog{})
	if filter.Model != "" {
		db = db.Where("model = ?", filter.Model)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
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

	if err := db.Preload("User").Order("created_at desc").
		Offset(params.Offset).Limit(params.Limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
