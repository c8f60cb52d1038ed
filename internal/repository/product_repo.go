package repository

import (
	"context"

	"backend/internal/model"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context, params pagination.Params, search string) ([]model.Product, int64, error)
	UpdateAveragePrices(ctx context.Context, id uuid.UUID, cost, retail decimal.Decimal) error

	CreateTransaction(ctx context.Context, tx *model.ProductTransaction) error
	ListTransactions(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]model.ProductTransaction, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return GetDB(ctx, r.db).Save(product).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, params pagination.Params, search string) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{})
	if search != "" {
		db = db.Where("name LIKE ? OR code LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := params.OrderClause("created_at desc", "created_at", "name", "code", "category")
	if err := db.Order(order).Offset(params.Offset).Limit(params.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) UpdateAveragePrices(ctx context.Context, id uuid.UUID, cost, retail decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_cost_price":   cost,
			"average_retail_price": retail,
		}).Error
}

func (r *productRepository) CreateTransaction(ctx context.Context, tx *model.ProductTransaction) error {
	return GetDB(ctx, r.db).Create(tx).Error
}

func (r *productRepository) ListTransactions(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]model.ProductTransaction, int64, error) {
	var txs []model.ProductTransaction
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ProductTransaction{}).Where("product_id = ?", productID)
	if params.DateFrom != nil {
		db = db.Where("created_at >= ?", *params.DateFrom)
	}
	if params.DateTo != nil {
		db = db.Where("created_at <= ?", *params.DateTo)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at desc").Offset(params.Offset).Limit(params.Limit).
		Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}
