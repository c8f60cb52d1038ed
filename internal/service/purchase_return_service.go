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

// duplicateWindow is how far back identical submissions are treated as
// accidental double-clicks rather than new intent.
const duplicateWindow = 5 * time.Minute

type SubmitPurchaseReturnRequest struct {
	PurchaseItemID string `json:"purchase_item_id" binding:"required"`
	ReturnQuantity int    `json:"return_quantity" binding:"required,gt=0"`
	Reason         string `json:"reason" binding:"required"`
	// Status may be PENDING (default) or APPROVED for trusted submitters.
	Status string `json:"status" binding:"omitempty,oneof=PENDING APPROVED"`
}

type SetPurchaseReturnStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PurchaseReturnResponse struct {
	ID              string  `json:"id"`
	ReferenceNumber string  `json:"reference_number"`
	PurchaseItemID  string  `json:"purchase_item_id"`
	ProductName     string  `json:"product_name,omitempty"`
	ReturnQuantity  int     `json:"return_quantity"`
	ReturnPrice     string  `json:"return_price"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	SubmittedBy     *string `json:"submitted_by"`
	ApprovedBy      *string `json:"approved_by"`
	ApprovedAt      *string `json:"approved_at"`
	ProcessedAt     *string `json:"processed_at"`
	CreatedAt       string  `json:"created_at"`
}

type PurchaseReturnService interface {
	Submit(ctx context.Context, userID string, req SubmitPurchaseReturnRequest) (PurchaseReturnResponse, error)
	SetStatus(ctx context.Context, userID, id string, req SetPurchaseReturnStatusRequest) (PurchaseReturnResponse, error)
	Get(ctx context.Context, id string) (PurchaseReturnResponse, error)
	List(ctx context.Context, params pagination.Params, status string) ([]PurchaseReturnResponse, int64, error)
}

type purchaseReturnService struct {
	returns   repository.PurchaseReturnRepository
	purchases repository.PurchaseRepository
	batches   repository.BatchRepository
	products  repository.ProductRepository
	ledger    *ledger.Ledger
	refs      *refnum.Generator
	activity  ActivityService
	txManager repository.TransactionManager
	log       logrus.FieldLogger
}

func NewPurchaseReturnService(
	returns repository.PurchaseReturnRepository,
	purchases repository.PurchaseRepository,
	batches repository.BatchRepository,
	products repository.ProductRepository,
	ldg *ledger.Ledger,
	refs *refnum.Generator,
	activity ActivityService,
	txManager repository.TransactionManager,
	log logrus.FieldLogger,
) PurchaseReturnService {
	return &purchaseReturnService{
		returns:   returns,
		purchases: purchases,
		batches:   batches,
		products:  products,
		ledger:    ldg,
		refs:      refs,
		activity:  activity,
		txManager: txManager,
		log:       log,
	}
}

// Submit creates the return request. No quantity moves here, even for a
// direct-APPROVED submission: stock effects fire only on the transition
// into APPROVED through SetStatus.
func (s *purchaseReturnService) Submit(ctx context.Context, userID string, req SubmitPurchaseReturnRequest) (PurchaseReturnResponse, error) {
	itemID, err := uuid.Parse(req.PurchaseItemID)
	if err != nil {
		return PurchaseReturnResponse{}, apperr.Validation("invalid purchase_item_id: %v", err)
	}

	submitterID, err := uuid.Parse(userID)
	if err != nil {
		return PurchaseReturnResponse{}, apperr.Validation("invalid user id: %v", err)
	}

	status := model.PurchaseReturnStatus(req.Status)
	if req.Status == "" {
		status = model.PurchaseReturnPending
	}
	if status != model.PurchaseReturnPending && status != model.PurchaseReturnApproved {
		return PurchaseReturnResponse{}, apperr.Validation("submission status must be PENDING or APPROVED")
	}

	var ret model.PurchaseReturn

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, findErr := s.purchases.FindItemByIDForUpdate(txCtx, itemID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("purchase item %s not found", itemID)
			}
			return fmt.Errorf("failed to find purchase item: %w", findErr)
		}

		purchase, purchaseErr := s.purchases.FindByIDForUpdate(txCtx, item.PurchaseID)
		if purchaseErr != nil {
			return fmt.Errorf("failed to find purchase: %w", purchaseErr)
		}
		if purchase.Status == model.PurchaseStatusReturned {
			return apperr.InvalidState("purchase %s is fully returned", purchase.ReferenceNumber)
		}

		if req.ReturnQuantity > item.CurrentQuantity {
			return apperr.InsufficientStock(
				"purchase item has %d units, requested %d", item.CurrentQuantity, req.ReturnQuantity)
		}

		quota, quotaErr := s.returns.SumQuotaByItem(txCtx, itemID)
		if quotaErr != nil {
			return fmt.Errorf("failed to sum return quota: %w", quotaErr)
		}
		if quota+int64(req.ReturnQuantity) > int64(item.InitialQuantity) {
			return apperr.Validation(
				"return quantity %d exceeds remaining quota (%d of %d already reserved)",
				req.ReturnQuantity, quota, item.InitialQuantity)
		}

		since := time.Now().Add(-duplicateWindow)
		if dup, dupErr := s.returns.FindRecentDuplicate(txCtx, itemID, req.ReturnQuantity, req.Reason, submitterID, since); dupErr == nil {
			return apperr.DuplicateRequest("identical return %s submitted within the last %s", dup.ReferenceNumber, duplicateWindow)
		} else if !errors.Is(dupErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check duplicate submission: %w", dupErr)
		}

		ref, refErr := s.refs.Generate(txCtx, &model.PurchaseReturn{}, "reference_number", refnum.PrefixPurchaseReturn, refnum.DefaultDigits)
		if refErr != nil {
			return fmt.Errorf("failed to generate reference number: %w", refErr)
		}

		ret = model.PurchaseReturn{
			ReferenceNumber: ref,
			PurchaseItemID:  itemID,
			ReturnQuantity:  req.ReturnQuantity,
			ReturnPrice:     item.CostPrice.Mul(decimal.NewFromInt(int64(req.ReturnQuantity))),
			Reason:          req.Reason,
			Status:          string(status),
			SubmittedBy:     &submitterID,
		}
		if status == model.PurchaseReturnApproved {
			now := time.Now()
			ret.ApprovedBy = &submitterID
			ret.ApprovedAt = &now
		}
		if createErr := s.returns.Create(txCtx, &ret); createErr != nil {
			return fmt.Errorf("failed to create purchase return: %w", createErr)
		}

		return s.activity.Record(txCtx, &submitterID, "PurchaseReturn", ret.ID.String(),
			model.ActionSubmitPurchaseReturn, "Submitted purchase return "+ret.ReferenceNumber, req)
	})

	if err != nil {
		return PurchaseReturnResponse{}, err
	}

	return s.Get(ctx, ret.ID.String())
}

// SetStatus drives the return through its state machine. The transition
// into APPROVED re-validates stock and quota under lock, then applies the
// quantity effects to both the purchase item and its converted inventory
// mirror.
func (s *purchaseReturnService) SetStatus(ctx context.Context, userID, id string, req SetPurchaseReturnStatusRequest) (PurchaseReturnResponse, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseReturnResponse{}, apperr.Validation("invalid return id: %v", err)
	}

	target := model.PurchaseReturnStatus(req.Status)
	if !target.Valid() {
		return PurchaseReturnResponse{}, apperr.Validation("unknown status %q", req.Status)
	}

	actorID := parseActor(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ret, findErr := s.returns.FindByIDForUpdate(txCtx, returnID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("purchase return %s not found", returnID)
			}
			return fmt.Errorf("failed to find purchase return: %w", findErr)
		}

		current := model.PurchaseReturnStatus(ret.Status)
		if !current.CanTransitionTo(target) {
			return apperr.InvalidTransition("cannot move purchase return from %s to %s", current, target)
		}

		now := time.Now()
		switch target {
		case model.PurchaseReturnApproved:
			if applyErr := s.applyApproval(txCtx, ret, actorID); applyErr != nil {
				return applyErr
			}
			ret.ApprovedBy = actorID
			ret.ApprovedAt = &now
		case model.PurchaseReturnProcessed:
			ret.ProcessedAt = &now
		}

		ret.Status = string(target)
		if saveErr := s.returns.Update(txCtx, ret); saveErr != nil {
			return fmt.Errorf("failed to update purchase return: %w", saveErr)
		}

		return s.activity.Record(txCtx, actorID, "PurchaseReturn", ret.ID.String(),
			model.ActionPurchaseReturnStatus,
			fmt.Sprintf("Purchase return %s moved %s -> %s", ret.ReferenceNumber, current, target), nil)
	})

	if err != nil {
		return PurchaseReturnResponse{}, err
	}

	return s.Get(ctx, id)
}

// applyApproval performs the quantity effects of an approval: deduct the
// purchase item, mirror the deduction on the converted inventory item if
// the purchase has been converted, and cascade the RECALLED / RETURNED
// statuses when everything hits zero.
func (s *purchaseReturnService) applyApproval(ctx context.Context, ret *model.PurchaseReturn, actorID *uuid.UUID) error {
	item, err := s.purchases.FindItemByIDForUpdate(ctx, ret.PurchaseItemID)
	if err != nil {
		return fmt.Errorf("failed to find purchase item: %w", err)
	}

	// Re-validate under lock: state may have moved since submission.
	if ret.ReturnQuantity > item.CurrentQuantity {
		return apperr.InsufficientStock(
			"purchase item has %d units, return needs %d", item.CurrentQuantity, ret.ReturnQuantity)
	}
	quota, err := s.returns.SumQuotaByItem(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to sum return quota: %w", err)
	}
	if quota > int64(item.InitialQuantity) {
		return apperr.Validation("return quota for item %s exceeds its initial quantity", item.ID)
	}

	item, err = s.ledger.ApplyPurchase(ctx, item.ID, -ret.ReturnQuantity)
	if err != nil {
		return err
	}

	productTx := model.ProductTransaction{
		ProductID:       item.ProductID,
		TransactionType: model.ProductTxReturnToSupplier,
		QuantityOut:     ret.ReturnQuantity,
		UnitPrice:       item.CostPrice,
		TotalAmount:     ret.ReturnPrice,
		ReferenceNumber: ret.ReferenceNumber,
		Description:     "Returned to supplier",
		CreatedBy:       actorID,
	}
	if err := s.products.CreateTransaction(ctx, &productTx); err != nil {
		return fmt.Errorf("failed to record product transaction: %w", err)
	}

	purchase, err := s.purchases.FindByIDForUpdate(ctx, item.PurchaseID)
	if err != nil {
		return fmt.Errorf("failed to find purchase: %w", err)
	}

	if purchase.Status == model.PurchaseStatusConverted && purchase.InventoryBatchID != nil {
		if err := s.mirrorInventoryDeduction(ctx, purchase, item, ret, actorID); err != nil {
			return err
		}
	}

	items, err := s.purchases.FindItemsByPurchase(ctx, purchase.ID)
	if err != nil {
		return fmt.Errorf("failed to load purchase items: %w", err)
	}
	allZero := true
	for _, pi := range items {
		if pi.CurrentQuantity > 0 {
			allZero = false
			break
		}
	}
	if allZero {
		purchase.Status = model.PurchaseStatusReturned
		if err := s.purchases.Update(ctx, purchase); err != nil {
			return fmt.Errorf("failed to update purchase: %w", err)
		}
	}

	return nil
}

func (s *purchaseReturnService) mirrorInventoryDeduction(ctx context.Context, purchase *model.Purchase, purchaseItem *model.PurchaseItem, ret *model.PurchaseReturn, actorID *uuid.UUID) error {
	invItem, err := s.batches.FindItemByBatchAndProduct(ctx, *purchase.InventoryBatchID, purchaseItem.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Conversion skipped fully-returned lines; nothing to mirror.
			return nil
		}
		return fmt.Errorf("failed to find mirrored inventory item: %w", err)
	}

	_, err = s.ledger.Apply(ctx, ledger.ApplyInput{
		ItemID:          invItem.ID,
		Delta:           -ret.ReturnQuantity,
		MovementType:    model.MovementReturn,
		Reason:          "Returned to supplier under " + ret.ReferenceNumber,
		ActorID:         actorID,
		DepletionStatus: model.ItemStatusRecalled,
	})
	if err != nil {
		return err
	}

	if err := recomputeProductAverages(ctx, s.batches, s.products, purchaseItem.ProductID); err != nil {
		return err
	}

	items, err := s.batches.FindItemsByBatch(ctx, *purchase.InventoryBatchID)
	if err != nil {
		return fmt.Errorf("failed to load batch items: %w", err)
	}
	for _, bi := range items {
		if bi.CurrentQuantity > 0 {
			return nil
		}
	}
	return s.batches.UpdateStatus(ctx, *purchase.InventoryBatchID, model.BatchStatusRecalled)
}

func (s *purchaseReturnService) Get(ctx context.Context, id string) (PurchaseReturnResponse, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return PurchaseReturnResponse{}, apperr.Validation("invalid return id: %v", err)
	}

	ret, err := s.returns.FindByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PurchaseReturnResponse{}, apperr.NotFound("purchase return %s not found", returnID)
		}
		return PurchaseReturnResponse{}, fmt.Errorf("failed to find purchase return: %w", err)
	}

	return toPurchaseReturnResponse(*ret), nil
}

func (s *purchaseReturnService) List(ctx context.Context, params pagination.Params, status string) ([]PurchaseReturnResponse, int64, error) {
	if status != "" && !model.PurchaseReturnStatus(status).Valid() {
		return nil, 0, apperr.Validation("unknown status %q", status)
	}

	returns, total, err := s.returns.List(ctx, params, status)
	if err != nil {
		return nil, 0, err
	}

	res := make([]PurchaseReturnResponse, 0, len(returns))
	for _, ret := range returns {
		res = append(res, toPurchaseReturnResponse(ret))
	}
	return res, total, nil
}

func toPurchaseReturnResponse(ret model.PurchaseReturn) PurchaseReturnResponse {
	resp := PurchaseReturnResponse{
		ID:              ret.ID.String(),
		ReferenceNumber: ret.ReferenceNumber,
		PurchaseItemID:  ret.PurchaseItemID.String(),
		ReturnQuantity:  ret.ReturnQuantity,
		ReturnPrice:     ret.ReturnPrice.String(),
		Reason:          ret.Reason,
		Status:          ret.Status,
		CreatedAt:       ret.CreatedAt.Format(time.RFC3339),
	}
	if ret.PurchaseItem != nil && ret.PurchaseItem.Product != nil {
		resp.ProductName = ret.PurchaseItem.Product.Name
	}
	if ret.SubmittedBy != nil {
		v := ret.SubmittedBy.String()
		resp.SubmittedBy = &v
	}
	if ret.ApprovedBy != nil {
		v := ret.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if ret.ApprovedAt != nil {
		v := ret.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if ret.ProcessedAt != nil {
		v := ret.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &v
	}
	return resp
}
