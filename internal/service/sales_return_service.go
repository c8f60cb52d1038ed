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
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SubmitSalesReturnRequest struct {
	SalesID        string `json:"sales_id" binding:"required"`
	ReturnQuantity int    `json:"return_quantity" binding:"required,gt=0"`
	Reason         string `json:"reason" binding:"required"`
	Restockable    *bool  `json:"restockable"` // Defaults to true
}

type SetSalesReturnStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SalesReturnResponse struct {
	ID              string  `json:"id"`
	ReferenceNumber string  `json:"reference_number"`
	SalesID         string  `json:"sales_id"`
	SalesReference  string  `json:"sales_reference,omitempty"`
	ReturnQuantity  int     `json:"return_quantity"`
	Reason          string  `json:"reason"`
	Restockable     bool    `json:"restockable"`
	Status          string  `json:"status"`
	SubmittedBy     *string `json:"submitted_by"`
	ProcessedBy     *string `json:"processed_by"`
	ProcessedAt     *string `json:"processed_at"`
	CreatedAt       string  `json:"created_at"`
}

type SalesReturnService interface {
	Submit(ctx context.Context, userID string, req SubmitSalesReturnRequest) (SalesReturnResponse, error)
	SetStatus(ctx context.Context, userID, id string, req SetSalesReturnStatusRequest) (SalesReturnResponse, error)
	Get(ctx context.Context, id string) (SalesReturnResponse, error)
	List(ctx context.Context, params pagination.Params, status string) ([]SalesReturnResponse, int64, error)
}

type salesReturnService struct {
	returns   repository.SalesReturnRepository
	sales     repository.SalesRepository
	batches   repository.BatchRepository
	products  repository.ProductRepository
	ledger    *ledger.Ledger
	refs      *refnum.Generator
	activity  ActivityService
	txManager repository.TransactionManager
	log       logrus.FieldLogger
}

func NewSalesReturnService(
	returns repository.SalesReturnRepository,
	sales repository.SalesRepository,
	batches repository.BatchRepository,
	products repository.ProductRepository,
	ldg *ledger.Ledger,
	refs *refnum.Generator,
	activity ActivityService,
	txManager repository.TransactionManager,
	log logrus.FieldLogger,
) SalesReturnService {
	return &salesReturnService{
		returns:   returns,
		sales:     sales,
		batches:   batches,
		products:  products,
		ledger:    ldg,
		refs:      refs,
		activity:  activity,
		txManager: txManager,
		log:       log,
	}
}

// Submit creates the return request in PENDING. Stock does not move until
// the transition into PROCESSED.
func (s *salesReturnService) Submit(ctx context.Context, userID string, req SubmitSalesReturnRequest) (SalesReturnResponse, error) {
	salesID, err := uuid.Parse(req.SalesID)
	if err != nil {
		return SalesReturnResponse{}, apperr.Validation("invalid sales_id: %v", err)
	}

	submitterID := parseActor(userID)
	restockable := true
	if req.Restockable != nil {
		restockable = *req.Restockable
	}

	var ret model.SalesReturn

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, findErr := s.sales.FindByIDForUpdate(txCtx, salesID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("sale %s not found", salesID)
			}
			return fmt.Errorf("failed to find sale: %w", findErr)
		}

		returned, sumErr := s.returns.SumReturnedBySale(txCtx, sale.ID)
		if sumErr != nil {
			return fmt.Errorf("failed to sum returned quantity: %w", sumErr)
		}
		remaining := int64(sale.Quantity) - returned
		if int64(req.ReturnQuantity) > remaining {
			return apperr.Validation(
				"return quantity %d exceeds the %d units still returnable on sale %s",
				req.ReturnQuantity, remaining, sale.ReferenceNumber)
		}

		ref, refErr := s.refs.Generate(txCtx, &model.SalesReturn{}, "reference_number", refnum.PrefixSalesReturn, refnum.DefaultDigits)
		if refErr != nil {
			return fmt.Errorf("failed to generate reference number: %w", refErr)
		}

		ret = model.SalesReturn{
			ReferenceNumber: ref,
			SalesID:         sale.ID,
			ReturnQuantity:  req.ReturnQuantity,
			Reason:          req.Reason,
			Restockable:     restockable,
			Status:          string(model.SalesReturnPending),
			SubmittedBy:     submitterID,
		}
		if createErr := s.returns.Create(txCtx, &ret); createErr != nil {
			return fmt.Errorf("failed to create sales return: %w", createErr)
		}

		return s.activity.Record(txCtx, submitterID, "SalesReturn", ret.ID.String(),
			model.ActionSubmitSalesReturn, "Submitted sales return "+ret.ReferenceNumber, req)
	})

	if err != nil {
		return SalesReturnResponse{}, err
	}

	return s.Get(ctx, ret.ID.String())
}

// SetStatus moves the return between states. PROCESSED and CANCELLED
// freeze the return; the transition into PROCESSED fires the quantity
// effects and rolls the sale's status forward.
func (s *salesReturnService) SetStatus(ctx context.Context, userID, id string, req SetSalesReturnStatusRequest) (SalesReturnResponse, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return SalesReturnResponse{}, apperr.Validation("invalid return id: %v", err)
	}

	target := model.SalesReturnStatus(req.Status)
	if !target.Valid() {
		return SalesReturnResponse{}, apperr.Validation("unknown status %q", req.Status)
	}

	actorID := parseActor(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		ret, findErr := s.returns.FindByIDForUpdate(txCtx, returnID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("sales return %s not found", returnID)
			}
			return fmt.Errorf("failed to find sales return: %w", findErr)
		}

		current := model.SalesReturnStatus(ret.Status)
		if current.Terminal() {
			return apperr.InvalidState("sales return %s is already %s", ret.ReferenceNumber, current)
		}
		if !current.CanTransitionTo(target) {
			return apperr.InvalidTransition("cannot move sales return from %s to %s", current, target)
		}

		if target == model.SalesReturnProcessed {
			if processErr := s.applyProcessing(txCtx, ret, actorID); processErr != nil {
				return processErr
			}
			now := time.Now()
			ret.ProcessedBy = actorID
			ret.ProcessedAt = &now
		}

		ret.Status = string(target)
		if saveErr := s.returns.Update(txCtx, ret); saveErr != nil {
			return fmt.Errorf("failed to update sales return: %w", saveErr)
		}

		return s.activity.Record(txCtx, actorID, "SalesReturn", ret.ID.String(),
			model.ActionSalesReturnStatus,
			fmt.Sprintf("Sales return %s moved %s -> %s", ret.ReferenceNumber, current, target), nil)
	})

	if err != nil {
		return SalesReturnResponse{}, err
	}

	return s.Get(ctx, id)
}

// applyProcessing restocks the inventory item when the return is
// restockable, records the product-level trail either way, and advances
// the sale to PARTIALLY_RETURNED or RETURNED.
func (s *salesReturnService) applyProcessing(ctx context.Context, ret *model.SalesReturn, actorID *uuid.UUID) error {
	sale, err := s.sales.FindByIDForUpdate(ctx, ret.SalesID)
	if err != nil {
		return fmt.Errorf("failed to find sale: %w", err)
	}

	item, err := s.batches.FindItemByID(ctx, sale.InventoryItemID)
	if err != nil {
		return fmt.Errorf("failed to find inventory item: %w", err)
	}

	if ret.Restockable {
		if _, applyErr := s.ledger.Apply(ctx, ledger.ApplyInput{
			ItemID:       item.ID,
			Delta:        ret.ReturnQuantity,
			MovementType: model.MovementReturn,
			Reason:       "Customer return " + ret.ReferenceNumber,
			ActorID:      actorID,
		}); applyErr != nil {
			return applyErr
		}

		productTx := model.ProductTransaction{
			ProductID:       item.ProductID,
			TransactionType: model.ProductTxSalesReturn,
			QuantityIn:      ret.ReturnQuantity,
			UnitPrice:       sale.RetailPrice,
			ReferenceNumber: ret.ReferenceNumber,
			Description:     "Restocked from sale " + sale.ReferenceNumber,
			CreatedBy:       actorID,
		}
		if txErr := s.products.CreateTransaction(ctx, &productTx); txErr != nil {
			return fmt.Errorf("failed to record product transaction: %w", txErr)
		}

		if avgErr := recomputeProductAverages(ctx, s.batches, s.products, item.ProductID); avgErr != nil {
			return avgErr
		}
	} else {
		// Goods came back unsellable: no stock increment, only a write-off
		// entry in the product trail.
		productTx := model.ProductTransaction{
			ProductID:       item.ProductID,
			TransactionType: model.ProductTxWriteOff,
			QuantityOut:     ret.ReturnQuantity,
			UnitPrice:       sale.RetailPrice,
			ReferenceNumber: ret.ReferenceNumber,
			Description:     "Non-restockable return from sale " + sale.ReferenceNumber,
			CreatedBy:       actorID,
		}
		if txErr := s.products.CreateTransaction(ctx, &productTx); txErr != nil {
			return fmt.Errorf("failed to record product transaction: %w", txErr)
		}
	}

	// This return is still counted by SumReturnedBySale (it is not
	// cancelled), so the sum already includes ret.ReturnQuantity.
	returned, err := s.returns.SumReturnedBySale(ctx, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to sum returned quantity: %w", err)
	}
	switch {
	case returned >= int64(sale.Quantity):
		sale.Status = model.SaleStatusReturned
	case returned > 0:
		sale.Status = model.SaleStatusPartiallyReturned
	}
	if err := s.sales.Update(ctx, sale); err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	return nil
}

func (s *salesReturnService) Get(ctx context.Context, id string) (SalesReturnResponse, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return SalesReturnResponse{}, apperr.Validation("invalid return id: %v", err)
	}

	ret, err := s.returns.FindByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalesReturnResponse{}, apperr.NotFound("sales return %s not found", returnID)
		}
		return SalesReturnResponse{}, fmt.Errorf("failed to find sales return: %w", err)
	}

	return toSalesReturnResponse(*ret), nil
}

func (s *salesReturnService) List(ctx context.Context, params pagination.Params, status string) ([]SalesReturnResponse, int64, error) {
	if status != "" && !model.SalesReturnStatus(status).Valid() {
		return nil, 0, apperr.Validation("unknown status %q", status)
	}

	returns, total, err := s.returns.List(ctx, params, status)
	if err != nil {
		return nil, 0, err
	}

	res := make([]SalesReturnResponse, 0, len(returns))
	for _, ret := range returns {
		res = append(res, toSalesReturnResponse(ret))
	}
	return res, total, nil
}

func toSalesReturnResponse(ret model.SalesReturn) SalesReturnResponse {
	resp := SalesReturnResponse{
		ID:              ret.ID.String(),
		ReferenceNumber: ret.ReferenceNumber,
		SalesID:         ret.SalesID.String(),
		ReturnQuantity:  ret.ReturnQuantity,
		Reason:          ret.Reason,
		Restockable:     ret.Restockable,
		Status:          ret.Status,
		CreatedAt:       ret.CreatedAt.Format(time.RFC3339),
	}
	if ret.Sales != nil {
		resp.SalesReference = ret.Sales.ReferenceNumber
	}
	if ret.SubmittedBy != nil {
		v := ret.SubmittedBy.String()
		resp.SubmittedBy = &v
	}
	if ret.ProcessedBy != nil {
		v := ret.ProcessedBy.String()
		resp.ProcessedBy = &v
	}
	if ret.ProcessedAt != nil {
		v := ret.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &v
	}
	return resp
}
