package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	GenericName string `json:"generic_name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
}

type UpdateProductRequest struct {
	Name        string `json:"name"`
	GenericName string `json:"generic_name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
}

type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
}

// CatalogService manages the master data the transaction flows reference:
// products, suppliers and customers.
type CatalogService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, params pagination.Params, search string) ([]model.Product, int64, error)
	ListProductTransactions(ctx context.Context, productID string, params pagination.Params) ([]model.ProductTransaction, int64, error)

	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error)
	ListSuppliers(ctx context.Context, params pagination.Params, search string) ([]model.Supplier, int64, error)

	ListCustomers(ctx context.Context, params pagination.Params, search string) ([]model.Customer, int64, error)
}

type catalogService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	customers repository.CustomerRepository
}

func NewCatalogService(
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	customers repository.CustomerRepository,
) CatalogService {
	return &catalogService{products: products, suppliers: suppliers, customers: customers}
}

func (s *catalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	if _, err := s.products.FindByCode(ctx, req.Code); err == nil {
		return nil, apperr.Validation("product code %q already exists", req.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check product code: %w", err)
	}

	product := &model.Product{
		Code:        req.Code,
		Name:        req.Name,
		GenericName: req.GenericName,
		Category:    req.Category,
		Unit:        req.Unit,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid product id: %v", err)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", productID)
		}
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.GenericName != "" {
		product.GenericName = req.GenericName
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid product id: %v", err)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", productID)
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, params pagination.Params, search string) ([]model.Product, int64, error) {
	return s.products.List(ctx, params, search)
}

func (s *catalogService) ListProductTransactions(ctx context.Context, productID string, params pagination.Params) ([]model.ProductTransaction, int64, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, 0, apperr.Validation("invalid product id: %v", err)
	}
	return s.products.ListTransactions(ctx, id, params)
}

func (s *catalogService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*model.Supplier, error) {
	supplier := &model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		IsActive:      true,
	}
	if err := s.suppliers.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context, params pagination.Params, search string) ([]model.Supplier, int64, error) {
	return s.suppliers.List(ctx, params, search)
}

func (s *catalogService) ListCustomers(ctx context.Context, params pagination.Params, search string) ([]model.Customer, int64, error) {
	return s.customers.List(ctx, params, search)
}
