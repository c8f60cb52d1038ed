package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/ledger"
	"backend/internal/model"
	"backend/internal/refnum"
	"backend/internal/repository"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type PurchaseItemRequest struct {
	ProductID   string  `json:"product_id" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	CostPrice   float64 `json:"cost_price" binding:"required,gt=0"`
	RetailPrice float64 `json:"retail_price" binding:"required,gt=0"`
}

type CreatePurchaseRequest struct {
	SupplierID       string                `json:"supplier_id" binding:"required"`
	BatchNumber      string                `json:"batch_number" binding:"required"`
	InvoiceDate      string                `json:"invoice_date"`      // YYYY-MM-DD
	ManufacturedDate string                `json:"manufactured_date"` // YYYY-MM-DD
	ExpiryDate       string                `json:"expiry_date" binding:"required"`
	Items            []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdatePurchaseItemRequest struct {
	ItemID      string   `json:"item_id" binding:"required"`
	Quantity    *int     `json:"quantity"`
	CostPrice   *float64 `json:"cost_price"`
	RetailPrice *float64 `json:"retail_price"`
}

type UpdatePurchaseRequest struct {
	BatchNumber string                      `json:"batch_number"`
	InvoiceDate string                      `json:"invoice_date"`
	ExpiryDate  string                      `json:"expiry_date"`
	Reason      string                      `json:"reason" binding:"required"`
	Items       []UpdatePurchaseItemRequest `json:"items,omitempty" binding:"omitempty,dive"`
}

type PurchaseItemResponse struct {
	ID              string  `json:"id"`
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name,omitempty"`
	InitialQuantity int     `json:"initial_quantity"`
	CurrentQuantity int     `json:"current_quantity"`
	CostPrice       string  `json:"cost_price"`
	RetailPrice     string  `json:"retail_price"`
}

type PurchaseResponse struct {
	ID               string                 `json:"id"`
	ReferenceNumber  string                 `json:"reference_number"`
	BatchNumber      string                 `json:"batch_number"`
	SupplierID       string                 `json:"supplier_id"`
	SupplierName     string                 `json:"supplier_name,omitempty"`
	Status           string                 `json:"status"`
	ExpiryDate       string                 `json:"expiry_date"`
	VerifiedBy       *string                `json:"verified_by"`
	VerificationDate *string                `json:"verification_date"`
	InventoryBatchID *string                `json:"inventory_batch_id"`
	Items            []PurchaseItemResponse `json:"items"`
	CreatedAt        string                 `json:"created_at"`
}

type PurchaseService interface {
	Create(ctx context.Context, userID string, req CreatePurchaseRequest) (PurchaseResponse, error)
	Update(ctx context.Context, userID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error)
	Verify(ctx context.Context, userID, id string) (PurchaseResponse, error)
	ConvertToInventory(ctx context.Context, userID, id string) (PurchaseResponse, error)
	Get(ctx context.Context, id string) (PurchaseResponse, error)
	List(ctx context.Context, params pagination.Params, filter repository.PurchaseFilter) ([]PurchaseResponse, int64, error)
	ListEdits(ctx context.Context, id string) ([]model.PurchaseEdit, error)
}

type purchaseService struct {
	purchases repository.PurchaseRepository
	batches   repository.BatchRepository
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	ledger    *ledger.Ledger
	refs      *refnum.Generator
	activity  ActivityService
	txManager repository.TransactionManager
	log       logrus.FieldLogger
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	batches repository.BatchRepository,
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	ldg *ledger.Ledger,
	refs *refnum.Generator,
	activity ActivityService,
	txManager repository.TransactionManager,
	log logrus.FieldLogger,
) PurchaseService {
	return &purchaseService{
		purchases: purchases,
		batches:   batches,
		products:  products,
		suppliers: suppliers,
		ledger:    ldg,
		refs:      refs,
		activity:  activity,
		txManager: txManager,
		log:       log,
	}
}

func (s *purchaseService) Create(ctx context.Context, userID string, req CreatePurchaseRequest) (PurchaseResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return PurchaseResponse{}, apperr.Validation("invalid supplier_id: %v", err)
	}

	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return PurchaseResponse{}, apperr.Validation("invalid expiry_date: %v", err)
	}

	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseResponse{}, apperr.NotFound("supplier %s not found", supplierID)
		}
		return PurchaseResponse{}, fmt.Errorf("failed to find supplier: %w", err)
	}

	// Cheap per-item validation before the transaction opens
	for i, itemReq := range req.Items {
		cost := decimal.NewFromFloat(itemReq.CostPrice)
		retail := decimal.NewFromFloat(itemReq.RetailPrice)
		if retail.LessThan(cost) {
			return PurchaseResponse{}, apperr.Validation(
				"item %d: retail price %s is below cost price %s", i, retail, cost)
		}
	}

	actorID := parseActor(userID)
	var purchase model.Purchase

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Duplicate detection re-checked inside the transaction
		if _, findErr := s.purchases.FindBySupplierAndBatchNumber(txCtx, supplierID, req.BatchNumber); findErr == nil {
			return apperr.Validation("batch number %q already exists for this supplier", req.BatchNumber)
		} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check batch number: %w", findErr)
		}

		ref, refErr := s.refs.Generate(txCtx, &model.Purchase{}, "reference_number", refnum.PrefixPurchase, refnum.DefaultDigits)
		if refErr != nil {
			return fmt.Errorf("failed to generate reference number: %w", refErr)
		}

		purchase = model.Purchase{
			ReferenceNumber: ref,
			BatchNumber:     req.BatchNumber,
			SupplierID:      supplierID,
			Status:          model.PurchaseStatusActive,
			ExpiryDate:      expiry,
			CreatedBy:       actorID,
		}
		if req.InvoiceDate != "" {
			if t, parseErr := time.Parse("2006-01-02", req.InvoiceDate); parseErr == nil {
				purchase.InvoiceDate = &t
			}
		}
		if req.ManufacturedDate != "" {
			if t, parseErr := time.Parse("2006-01-02", req.ManufacturedDate); parseErr == nil {
				purchase.ManufacturedDate = &t
			}
		}

		if createErr := s.purchases.Create(txCtx, &purchase); createErr != nil {
			return fmt.Errorf("failed to create purchase: %w", createErr)
		}

		for _, itemReq := range req.Items {
			productID, parseErr := uuid.Parse(itemReq.ProductID)
			if parseErr != nil {
				return apperr.Validation("invalid product_id: %v", parseErr)
			}
			if _, findErr := s.products.FindByID(txCtx, productID); findErr != nil {
				if errors.Is(findErr, gorm.ErrRecordNotFound) {
					return apperr.NotFound("product %s not found", productID)
				}
				return fmt.Errorf("failed to find product %s: %w", productID, findErr)
			}

			item := model.PurchaseItem{
				PurchaseID:      purchase.ID,
				ProductID:       productID,
				InitialQuantity: itemReq.Quantity,
				CurrentQuantity: itemReq.Quantity,
				CostPrice:       decimal.NewFromFloat(itemReq.CostPrice),
				RetailPrice:     decimal.NewFromFloat(itemReq.RetailPrice),
			}
			if createErr := s.purchases.CreateItem(txCtx, &item); createErr != nil {
				return fmt.Errorf("failed to create purchase item: %w", createErr)
			}

			edit := model.PurchaseEdit{
				PurchaseID: purchase.ID,
				ItemID:     &item.ID,
				Action:     model.EditActionInsert,
				FieldName:  "quantity",
				NewValue:   fmt.Sprintf("%d", itemReq.Quantity),
				Reason:     "purchase created",
				EditedBy:   actorID,
			}
			if editErr := s.purchases.CreateEdit(txCtx, &edit); editErr != nil {
				return fmt.Errorf("failed to record purchase edit: %w", editErr)
			}
		}

		return s.activity.Record(txCtx, actorID, "Purchase", purchase.ID.String(),
			model.ActionCreatePurchase, "Created purchase "+purchase.ReferenceNumber, req)
	})

	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.Get(ctx, purchase.ID.String())
}

func (s *purchaseService) Update(ctx context.Context, userID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseResponse{}, apperr.Validation("invalid purchase id: %v", err)
	}

	actorID := parseActor(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchases.FindByIDForUpdate(txCtx, purchaseID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("purchase %s not found", purchaseID)
			}
			return fmt.Errorf("failed to find purchase: %w", findErr)
		}

		if purchase.Status != model.PurchaseStatusActive {
			return apperr.InvalidState("purchase %s is %s and can no longer be edited",
				purchase.ReferenceNumber, purchase.Status)
		}

		recordEdit := func(itemID *uuid.UUID, field, oldVal, newVal string) error {
			if oldVal == newVal {
				return nil
			}
			edit := model.PurchaseEdit{
				PurchaseID: purchase.ID,
				ItemID:     itemID,
				Action:     model.EditActionUpdate,
				FieldName:  field,
				OldValue:   oldVal,
				NewValue:   newVal,
				Reason:     req.Reason,
				EditedBy:   actorID,
			}
			return s.purchases.CreateEdit(txCtx, &edit)
		}

		if req.BatchNumber != "" && req.BatchNumber != purchase.BatchNumber {
			if _, dupErr := s.purchases.FindBySupplierAndBatchNumber(txCtx, purchase.SupplierID, req.BatchNumber); dupErr == nil {
				return apperr.Validation("batch number %q already exists for this supplier", req.BatchNumber)
			} else if !errors.Is(dupErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check batch number: %w", dupErr)
			}
			if editErr := recordEdit(nil, "batch_number", purchase.BatchNumber, req.BatchNumber); editErr != nil {
				return editErr
			}
			purchase.BatchNumber = req.BatchNumber
		}

		if req.ExpiryDate != "" {
			expiry, parseErr := time.Parse("2006-01-02", req.ExpiryDate)
			if parseErr != nil {
				return apperr.Validation("invalid expiry_date: %v", parseErr)
			}
			if editErr := recordEdit(nil, "expiry_date",
				purchase.ExpiryDate.Format("2006-01-02"), req.ExpiryDate); editErr != nil {
				return editErr
			}
			purchase.ExpiryDate = expiry
		}

		if req.InvoiceDate != "" {
			invoice, parseErr := time.Parse("2006-01-02", req.InvoiceDate)
			if parseErr != nil {
				return apperr.Validation("invalid invoice_date: %v", parseErr)
			}
			oldVal := ""
			if purchase.InvoiceDate != nil {
				oldVal = purchase.InvoiceDate.Format("2006-01-02")
			}
			if editErr := recordEdit(nil, "invoice_date", oldVal, req.InvoiceDate); editErr != nil {
				return editErr
			}
			purchase.InvoiceDate = &invoice
		}

		if saveErr := s.purchases.Update(txCtx, purchase); saveErr != nil {
			return fmt.Errorf("failed to update purchase: %w", saveErr)
		}

		for _, itemReq := range req.Items {
			itemID, parseErr := uuid.Parse(itemReq.ItemID)
			if parseErr != nil {
				return apperr.Validation("invalid item_id: %v", parseErr)
			}
			item, itemErr := s.purchases.FindItemByIDForUpdate(txCtx, itemID)
			if itemErr != nil {
				if errors.Is(itemErr, gorm.ErrRecordNotFound) {
					return apperr.NotFound("purchase item %s not found", itemID)
				}
				return fmt.Errorf("failed to find purchase item: %w", itemErr)
			}
			if item.PurchaseID != purchase.ID {
				return apperr.Validation("item %s does not belong to purchase %s", itemID, purchase.ID)
			}

			if itemReq.Quantity != nil {
				newQty := *itemReq.Quantity
				consumed := item.InitialQuantity - item.CurrentQuantity
				if newQty <= 0 {
					return apperr.Validation("item %s: quantity must be positive", itemID)
				}
				if newQty < consumed {
					return apperr.Validation(
						"item %s: quantity %d is below the %d units already consumed", itemID, newQty, consumed)
				}
				if editErr := recordEdit(&item.ID, "quantity",
					fmt.Sprintf("%d", item.InitialQuantity), fmt.Sprintf("%d", newQty)); editErr != nil {
					return editErr
				}
				item.InitialQuantity = newQty
				item.CurrentQuantity = newQty - consumed
			}
			if itemReq.CostPrice != nil {
				cost := decimal.NewFromFloat(*itemReq.CostPrice)
				if editErr := recordEdit(&item.ID, "cost_price", item.CostPrice.String(), cost.String()); editErr != nil {
					return editErr
				}
				item.CostPrice = cost
			}
			if itemReq.RetailPrice != nil {
				retail := decimal.NewFromFloat(*itemReq.RetailPrice)
				if editErr := recordEdit(&item.ID, "retail_price", item.RetailPrice.String(), retail.String()); editErr != nil {
					return editErr
				}
				item.RetailPrice = retail
			}

			if item.RetailPrice.LessThan(item.CostPrice) {
				return apperr.Validation("item %s: retail price %s is below cost price %s",
					itemID, item.RetailPrice, item.CostPrice)
			}

			if saveErr := s.purchases.UpdateItem(txCtx, item); saveErr != nil {
				return fmt.Errorf("failed to update purchase item: %w", saveErr)
			}
		}

		return s.activity.Record(txCtx, actorID, "Purchase", purchase.ID.String(),
			model.ActionUpdatePurchase, "Updated purchase "+purchase.ReferenceNumber, req)
	})

	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *purchaseService) Verify(ctx context.Context, userID, id string) (PurchaseResponse, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseResponse{}, apperr.Validation("invalid purchase id: %v", err)
	}

	verifierID, err := uuid.Parse(userID)
	if err != nil {
		return PurchaseResponse{}, apperr.Validation("invalid user id: %v", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchases.FindByIDForUpdate(txCtx, purchaseID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("purchase %s not found", purchaseID)
			}
			return fmt.Errorf("failed to find purchase: %w", findErr)
		}

		if purchase.Status != model.PurchaseStatusActive {
			return apperr.InvalidState("purchase %s is %s", purchase.ReferenceNumber, purchase.Status)
		}
		if purchase.VerifiedBy != nil && purchase.VerificationDate != nil {
			return apperr.InvalidState("purchase %s is already verified", purchase.ReferenceNumber)
		}

		now := time.Now()
		purchase.VerifiedBy = &verifierID
		purchase.VerificationDate = &now

		if saveErr := s.purchases.Update(txCtx, purchase); saveErr != nil {
			return fmt.Errorf("failed to verify purchase: %w", saveErr)
		}

		return s.activity.Record(txCtx, &verifierID, "Purchase", purchase.ID.String(),
			model.ActionVerifyPurchase, "Verified purchase "+purchase.ReferenceNumber, nil)
	})

	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.Get(ctx, id)
}

// ConvertToInventory turns a verified purchase into an InventoryBatch with
// one InventoryItem per purchase item. Items are stocked at the purchase
// item's current quantity so supplier returns approved before conversion
// are respected.
func (s *purchaseService) ConvertToInventory(ctx context.Context, userID, id string) (PurchaseResponse, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseResponse{}, apperr.Validation("invalid purchase id: %v", err)
	}

	actorID := parseActor(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchases.FindByIDForUpdate(txCtx, purchaseID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("purchase %s not found", purchaseID)
			}
			return fmt.Errorf("failed to find purchase: %w", findErr)
		}

		if purchase.Status != model.PurchaseStatusActive {
			return apperr.InvalidState("purchase %s is %s", purchase.ReferenceNumber, purchase.Status)
		}
		if purchase.VerifiedBy == nil || purchase.VerificationDate == nil {
			return apperr.InvalidState("purchase %s must be verified before conversion", purchase.ReferenceNumber)
		}

		if _, dupErr := s.batches.FindBySupplierAndBatchNumber(txCtx, purchase.SupplierID, purchase.BatchNumber); dupErr == nil {
			return apperr.Validation("inventory batch %q already exists for this supplier", purchase.BatchNumber)
		} else if !errors.Is(dupErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check inventory batch: %w", dupErr)
		}

		ref, refErr := s.refs.Generate(txCtx, &model.InventoryBatch{}, "reference_number", refnum.PrefixInventoryBatch, refnum.DefaultDigits)
		if refErr != nil {
			return fmt.Errorf("failed to generate reference number: %w", refErr)
		}

		batch := model.InventoryBatch{
			ReferenceNumber:  ref,
			BatchNumber:      purchase.BatchNumber,
			SupplierID:       purchase.SupplierID,
			PurchaseID:       &purchase.ID,
			Status:           model.BatchStatusActive,
			InvoiceDate:      purchase.InvoiceDate,
			ManufacturedDate: purchase.ManufacturedDate,
			ExpiryDate:       purchase.ExpiryDate,
			VerifiedBy:       purchase.VerifiedBy,
			VerificationDate: purchase.VerificationDate,
		}
		if createErr := s.batches.Create(txCtx, &batch); createErr != nil {
			return fmt.Errorf("failed to create inventory batch: %w", createErr)
		}

		items, itemsErr := s.purchases.FindItemsByPurchase(txCtx, purchase.ID)
		if itemsErr != nil {
			return fmt.Errorf("failed to load purchase items: %w", itemsErr)
		}

		for _, purchaseItem := range items {
			if purchaseItem.CurrentQuantity == 0 {
				continue // fully returned to supplier before conversion
			}

			invItem := model.InventoryItem{
				BatchID:         batch.ID,
				ProductID:       purchaseItem.ProductID,
				InitialQuantity: purchaseItem.CurrentQuantity,
				CurrentQuantity: purchaseItem.CurrentQuantity,
				CostPrice:       purchaseItem.CostPrice,
				RetailPrice:     purchaseItem.RetailPrice,
				Status:          model.ItemStatusActive,
			}
			if createErr := s.batches.CreateItem(txCtx, &invItem); createErr != nil {
				return fmt.Errorf("failed to create inventory item: %w", createErr)
			}

			productTx := model.ProductTransaction{
				ProductID:       purchaseItem.ProductID,
				TransactionType: model.ProductTxPurchase,
				QuantityIn:      purchaseItem.CurrentQuantity,
				UnitPrice:       purchaseItem.CostPrice,
				TotalAmount:     purchaseItem.CostPrice.Mul(decimal.NewFromInt(int64(purchaseItem.CurrentQuantity))),
				ReferenceNumber: batch.ReferenceNumber,
				Description:     "Stock received from purchase " + purchase.ReferenceNumber,
				CreatedBy:       actorID,
			}
			if txErr := s.products.CreateTransaction(txCtx, &productTx); txErr != nil {
				return fmt.Errorf("failed to record product transaction: %w", txErr)
			}

			if avgErr := recomputeProductAverages(txCtx, s.batches, s.products, purchaseItem.ProductID); avgErr != nil {
				return avgErr
			}
		}

		purchase.InventoryBatchID = &batch.ID
		purchase.Status = model.PurchaseStatusConverted
		if saveErr := s.purchases.Update(txCtx, purchase); saveErr != nil {
			return fmt.Errorf("failed to update purchase: %w", saveErr)
		}

		return s.activity.Record(txCtx, actorID, "Purchase", purchase.ID.String(),
			model.ActionConvertPurchase,
			"Converted purchase "+purchase.ReferenceNumber+" to inventory batch "+batch.ReferenceNumber, nil)
	})

	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.Get(ctx, id)
}

func (s *purchaseService) Get(ctx context.Context, id string) (PurchaseResponse, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseResponse{}, apperr.Validation("invalid purchase id: %v", err)
	}

	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseResponse{}, apperr.NotFound("purchase %s not found", purchaseID)
		}
		return PurchaseResponse{}, fmt.Errorf("failed to find purchase: %w", err)
	}

	return toPurchaseResponse(*purchase), nil
}

func (s *purchaseService) List(ctx context.Context, params pagination.Params, filter repository.PurchaseFilter) ([]PurchaseResponse, int64, error) {
	purchases, total, err := s.purchases.List(ctx, params, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		res = append(res, toPurchaseResponse(p))
	}

	return res, total, nil
}

func (s *purchaseService) ListEdits(ctx context.Context, id string) ([]model.PurchaseEdit, error) {
	purchaseID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid purchase id: %v", err)
	}
	return s.purchases.ListEditsByPurchase(ctx, purchaseID)
}

// --- Helpers ---

func parseActor(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}

func toPurchaseResponse(p model.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:              p.ID.String(),
		ReferenceNumber: p.ReferenceNumber,
		BatchNumber:     p.BatchNumber,
		SupplierID:      p.SupplierID.String(),
		Status:          p.Status,
		ExpiryDate:      p.ExpiryDate.Format("2006-01-02"),
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
	if p.Supplier != nil {
		resp.SupplierName = p.Supplier.Name
	}
	if p.VerifiedBy != nil {
		v := p.VerifiedBy.String()
		resp.VerifiedBy = &v
	}
	if p.VerificationDate != nil {
		v := p.VerificationDate.Format(time.RFC3339)
		resp.VerificationDate = &v
	}
	if p.InventoryBatchID != nil {
		v := p.InventoryBatchID.String()
		resp.InventoryBatchID = &v
	}
	for _, item := range p.Items {
		itemResp := PurchaseItemResponse{
			ID:              item.ID.String(),
			ProductID:       item.ProductID.String(),
			InitialQuantity: item.InitialQuantity,
			CurrentQuantity: item.CurrentQuantity,
			CostPrice:       item.CostPrice.String(),
			RetailPrice:     item.RetailPrice.String(),
		}
		if item.Product != nil {
			itemResp.ProductName = item.Product.Name
		}
		resp.Items = append(resp.Items, itemResp)
	}
	return resp
}
