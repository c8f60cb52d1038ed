package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/ledger"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperr"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EventBatchExpired is pushed to the notifier for every batch the expiry
// sweep marks.
const EventBatchExpired = "batch.expired"

type UpdateBatchRequest struct {
	Status     string `json:"status" binding:"omitempty,oneof=ACTIVE EXPIRED DAMAGED RECALLED RETURNED SOLD_OUT"`
	ExpiryDate string `json:"expiry_date"` // YYYY-MM-DD
}

type AdjustInventoryRequest struct {
	InventoryItemID string `json:"inventory_item_id" binding:"required"`
	Delta           int    `json:"delta" binding:"required"`
	MovementType    string `json:"movement_type" binding:"required,oneof=ADJUSTMENT INBOUND EXPIRED"`
	Reason          string `json:"reason" binding:"required"`
}

type InventoryItemResponse struct {
	ID              string `json:"id"`
	BatchID         string `json:"batch_id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name,omitempty"`
	InitialQuantity int    `json:"initial_quantity"`
	CurrentQuantity int    `json:"current_quantity"`
	CostPrice       string `json:"cost_price"`
	RetailPrice     string `json:"retail_price"`
	Status          string `json:"status"`
}

type BatchResponse struct {
	ID              string                  `json:"id"`
	ReferenceNumber string                  `json:"reference_number"`
	BatchNumber     string                  `json:"batch_number"`
	SupplierID      string                  `json:"supplier_id"`
	SupplierName    string                  `json:"supplier_name,omitempty"`
	PurchaseID      *string                 `json:"purchase_id"`
	Status          string                  `json:"status"`
	ExpiryDate      string                  `json:"expiry_date"`
	Items           []InventoryItemResponse `json:"items"`
	CreatedAt       string                  `json:"created_at"`
}

type InventoryService interface {
	ListBatches(ctx context.Context, params pagination.Params, filter repository.BatchFilter) ([]BatchResponse, int64, error)
	GetBatch(ctx context.Context, id string) (BatchResponse, error)
	UpdateBatch(ctx context.Context, userID, id string, req UpdateBatchRequest) (BatchResponse, error)
	GetItem(ctx context.Context, id string) (InventoryItemResponse, error)
	ListItemMovements(ctx context.Context, itemID string, params pagination.Params) ([]model.InventoryMovement, int64, error)
	Adjust(ctx context.Context, userID string, req AdjustInventoryRequest) (InventoryItemResponse, error)
	// ExpirySweep marks every ACTIVE batch past asOf as EXPIRED along with
	// its items. Status-only: quantities and the movement trail are
	// untouched, so remaining stock stays visible for write-off.
	ExpirySweep(ctx context.Context, asOf time.Time) (int, error)
}

type inventoryService struct {
	batches   repository.BatchRepository
	movements repository.MovementRepository
	ledger    *ledger.Ledger
	activity  ActivityService
	txManager repository.TransactionManager
	notifier  ledger.Notifier
	log       logrus.FieldLogger
}

func NewInventoryService(
	batches repository.BatchRepository,
	movements repository.MovementRepository,
	ldg *ledger.Ledger,
	activity ActivityService,
	txManager repository.TransactionManager,
	notifier ledger.Notifier,
	log logrus.FieldLogger,
) InventoryService {
	return &inventoryService{
		batches:   batches,
		movements: movements,
		ledger:    ldg,
		activity:  activity,
		txManager: txManager,
		notifier:  notifier,
		log:       log,
	}
}

func (s *inventoryService) ListBatches(ctx context.Context, params pagination.Params, filter repository.BatchFilter) ([]BatchResponse, int64, error) {
	batches, total, err := s.batches.List(ctx, params, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]BatchResponse, 0, len(batches))
	for _, batch := range batches {
		res = append(res, toBatchResponse(batch))
	}
	return res, total, nil
}

func (s *inventoryService) GetBatch(ctx context.Context, id string) (BatchResponse, error) {
	batchID, err := uuid.Parse(id)
	if err != nil {
		return BatchResponse{}, apperr.Validation("invalid batch id: %v", err)
	}

	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BatchResponse{}, apperr.NotFound("inventory batch %s not found", batchID)
		}
		return BatchResponse{}, fmt.Errorf("failed to find batch: %w", err)
	}

	return toBatchResponse(*batch), nil
}

func (s *inventoryService) UpdateBatch(ctx context.Context, userID, id string, req UpdateBatchRequest) (BatchResponse, error) {
	batchID, err := uuid.Parse(id)
	if err != nil {
		return BatchResponse{}, apperr.Validation("invalid batch id: %v", err)
	}

	actorID := parseActor(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		batch, findErr := s.batches.FindByID(txCtx, batchID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("inventory batch %s not found", batchID)
			}
			return fmt.Errorf("failed to find batch: %w", findErr)
		}

		if req.Status != "" {
			batch.Status = req.Status
		}
		if req.ExpiryDate != "" {
			expiry, parseErr := time.Parse("2006-01-02", req.ExpiryDate)
			if parseErr != nil {
				return apperr.Validation("invalid expiry_date: %v", parseErr)
			}
			batch.ExpiryDate = expiry
		}

		if saveErr := s.batches.Update(txCtx, batch); saveErr != nil {
			return fmt.Errorf("failed to update batch: %w", saveErr)
		}

		return s.activity.Record(txCtx, actorID, "InventoryBatch", batch.ID.String(),
			model.ActionUpdateInventoryBatch, "Updated inventory batch "+batch.ReferenceNumber, req)
	})

	if err != nil {
		return BatchResponse{}, err
	}

	return s.GetBatch(ctx, id)
}

func (s *inventoryService) GetItem(ctx context.Context, id string) (InventoryItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return InventoryItemResponse{}, apperr.Validation("invalid item id: %v", err)
	}

	item, err := s.batches.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InventoryItemResponse{}, apperr.NotFound("inventory item %s not found", itemID)
		}
		return InventoryItemResponse{}, fmt.Errorf("failed to find item: %w", err)
	}

	return toItemResponse(*item), nil
}

func (s *inventoryService) ListItemMovements(ctx context.Context, itemID string, params pagination.Params) ([]model.InventoryMovement, int64, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, 0, apperr.Validation("invalid item id: %v", err)
	}
	return s.movements.ListByItem(ctx, id, params)
}

// Adjust applies a manual quantity correction through the ledger, so the
// same bounds and status gates hold as for sales and returns.
func (s *inventoryService) Adjust(ctx context.Context, userID string, req AdjustInventoryRequest) (InventoryItemResponse, error) {
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		return InventoryItemResponse{}, apperr.Validation("invalid inventory_item_id: %v", err)
	}

	actorID := parseActor(userID)
	var updated *model.InventoryItem

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, applyErr := s.ledger.Apply(txCtx, ledger.ApplyInput{
			ItemID:       itemID,
			Delta:        req.Delta,
			MovementType: req.MovementType,
			Reason:       req.Reason,
			ActorID:      actorID,
		})
		if applyErr != nil {
			return applyErr
		}
		updated = item

		return s.activity.Record(txCtx, actorID, "InventoryItem", item.ID.String(),
			model.ActionInventoryAdjustment,
			fmt.Sprintf("Adjusted inventory item by %+d (%s)", req.Delta, req.MovementType), req)
	})

	if err != nil {
		return InventoryItemResponse{}, err
	}

	return toItemResponse(*updated), nil
}

func (s *inventoryService) ExpirySweep(ctx context.Context, asOf time.Time) (int, error) {
	var swept int
	var expired []BatchResponse

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		batches, findErr := s.batches.FindExpired(txCtx, asOf)
		if findErr != nil {
			return fmt.Errorf("failed to find expired batches: %w", findErr)
		}

		for i := range batches {
			batch := &batches[i]
			if statusErr := s.batches.UpdateStatus(txCtx, batch.ID, model.BatchStatusExpired); statusErr != nil {
				return fmt.Errorf("failed to expire batch %s: %w", batch.ReferenceNumber, statusErr)
			}
			for j := range batch.Items {
				item := &batch.Items[j]
				if item.Status == model.ItemStatusActive || item.Status == model.ItemStatusSoldOut {
					item.Status = model.ItemStatusExpired
					if itemErr := s.batches.UpdateItem(txCtx, item); itemErr != nil {
						return fmt.Errorf("failed to expire item %s: %w", item.ID, itemErr)
					}
				}
			}

			// System-triggered: no actor on the audit row.
			if actErr := s.activity.Record(txCtx, nil, "InventoryBatch", batch.ID.String(),
				model.ActionInventoryExpirySweep, "Expired batch "+batch.ReferenceNumber, nil); actErr != nil {
				return actErr
			}
			expired = append(expired, toBatchResponse(*batch))
			swept++
		}
		return nil
	})

	if err != nil {
		return 0, err
	}

	if s.notifier != nil {
		for _, batch := range expired {
			s.notifier.Notify(EventBatchExpired, batch)
		}
	}
	if swept > 0 {
		s.log.WithField("batches", swept).Info("expiry sweep marked batches expired")
	}
	return swept, nil
}

func toItemResponse(item model.InventoryItem) InventoryItemResponse {
	resp := InventoryItemResponse{
		ID:              item.ID.String(),
		BatchID:         item.BatchID.String(),
		ProductID:       item.ProductID.String(),
		InitialQuantity: item.InitialQuantity,
		CurrentQuantity: item.CurrentQuantity,
		CostPrice:       item.CostPrice.String(),
		RetailPrice:     item.RetailPrice.String(),
		Status:          item.Status,
	}
	if item.Product != nil {
		resp.ProductName = item.Product.Name
	}
	return resp
}

func toBatchResponse(batch model.InventoryBatch) BatchResponse {
	resp := BatchResponse{
		ID:              batch.ID.String(),
		ReferenceNumber: batch.ReferenceNumber,
		BatchNumber:     batch.BatchNumber,
		SupplierID:      batch.SupplierID.String(),
		Status:          batch.Status,
		ExpiryDate:      batch.ExpiryDate.Format("2006-01-02"),
		CreatedAt:       batch.CreatedAt.Format(time.RFC3339),
	}
	if batch.Supplier != nil {
		resp.SupplierName = batch.Supplier.Name
	}
	if batch.PurchaseID != nil {
		v := batch.PurchaseID.String()
		resp.PurchaseID = &v
	}
	for _, item := range batch.Items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	return resp
}
