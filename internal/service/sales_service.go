package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
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

type SaleLineRequest struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required"`
	Quantity        int     `json:"quantity" binding:"required,gt=0"`
	Discount        float64 `json:"discount" binding:"gte=0"`
	AmountPaid      float64 `json:"amount_paid" binding:"gte=0"`
}

type CreateSalesRequest struct {
	// Exactly one of CustomerID / CustomerName is required. A name that does
	// not match an existing customer (case-insensitive) auto-creates one.
	CustomerID   string            `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	PaymentTerms string            `json:"payment_terms" binding:"required,oneof=CASH CREDIT"`
	Lines        []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type SalesResponse struct {
	ID              string `json:"id"`
	ReferenceNumber string `json:"reference_number"`
	InventoryItemID string `json:"inventory_item_id"`
	ProductName     string `json:"product_name,omitempty"`
	CustomerID      string `json:"customer_id"`
	CustomerName    string `json:"customer_name,omitempty"`
	Quantity        int    `json:"quantity"`
	RetailPrice     string `json:"retail_price"`
	Discount        string `json:"discount"`
	UnitFinalPrice  string `json:"unit_final_price"`
	AmountPaid      string `json:"amount_paid"`
	Balance         string `json:"balance"`
	PaymentTerms    string `json:"payment_terms"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

type SalesService interface {
	Create(ctx context.Context, userID string, req CreateSalesRequest) ([]SalesResponse, error)
	Get(ctx context.Context, id string) (SalesResponse, error)
	List(ctx context.Context, params pagination.Params, filter repository.SalesFilter) ([]SalesResponse, int64, error)
}

type salesService struct {
	sales     repository.SalesRepository
	batches   repository.BatchRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	ledger    *ledger.Ledger
	refs      *refnum.Generator
	activity  ActivityService
	txManager repository.TransactionManager
	log       logrus.FieldLogger
}

func NewSalesService(
	sales repository.SalesRepository,
	batches repository.BatchRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	ldg *ledger.Ledger,
	refs *refnum.Generator,
	activity ActivityService,
	txManager repository.TransactionManager,
	log logrus.FieldLogger,
) SalesService {
	return &salesService{
		sales:     sales,
		batches:   batches,
		products:  products,
		customers: customers,
		ledger:    ldg,
		refs:      refs,
		activity:  activity,
		txManager: txManager,
		log:       log,
	}
}

// Create validates every line against live stock before any write, so a
// failing line rolls the whole request back. Stock is decremented
// immediately; sales are never staged.
func (s *salesService) Create(ctx context.Context, userID string, req CreateSalesRequest) ([]SalesResponse, error) {
	if (req.CustomerID == "") == (req.CustomerName == "") {
		return nil, apperr.Validation("exactly one of customer_id or customer_name is required")
	}

	sellerID := parseActor(userID)
	hash := requestHash(userID, req)

	// Lines may share an item (validated cumulatively below); only an exact
	// repeat of a line is a duplicate.
	seen := make(map[SaleLineRequest]bool, len(req.Lines))
	for _, line := range req.Lines {
		if seen[line] {
			return nil, apperr.DuplicateRequest("identical line for inventory item %s appears more than once in the request", line.InventoryItemID)
		}
		seen[line] = true
	}

	var created []uuid.UUID

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		since := time.Now().Add(-duplicateWindow)
		if dup, dupErr := s.sales.FindByHashSince(txCtx, hash, since); dupErr == nil {
			return apperr.DuplicateRequest("identical sale %s submitted within the last %s", dup.ReferenceNumber, duplicateWindow)
		} else if !errors.Is(dupErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check duplicate submission: %w", dupErr)
		}

		// Validation pass: lock every line's item and check stock, status and
		// expiry before the first write. Lines sharing an item are summed so
		// the cumulative quantity is checked against the live stock.
		now := time.Now()
		items := make([]*model.InventoryItem, len(req.Lines))
		loaded := make(map[uuid.UUID]*model.InventoryItem, len(req.Lines))
		requested := make(map[uuid.UUID]int, len(req.Lines))
		for i, line := range req.Lines {
			itemID, parseErr := uuid.Parse(line.InventoryItemID)
			if parseErr != nil {
				return apperr.Validation("invalid inventory_item_id: %v", parseErr)
			}

			item, ok := loaded[itemID]
			if !ok {
				var findErr error
				item, findErr = s.batches.FindItemByIDForUpdate(txCtx, itemID)
				if findErr != nil {
					if errors.Is(findErr, gorm.ErrRecordNotFound) {
						return apperr.NotFound("inventory item %s not found", itemID)
					}
					return fmt.Errorf("failed to find inventory item: %w", findErr)
				}

				if item.Status != model.ItemStatusActive {
					return apperr.InvalidState("inventory item %s is %s", item.ID, item.Status)
				}

				batch, batchErr := s.batches.FindByID(txCtx, item.BatchID)
				if batchErr != nil {
					return fmt.Errorf("failed to find batch for item %s: %w", item.ID, batchErr)
				}
				if batch.ExpiryDate.Before(now) {
					return apperr.InvalidState("inventory item %s belongs to expired batch %s", item.ID, batch.BatchNumber)
				}

				loaded[itemID] = item
			}

			requested[itemID] += line.Quantity
			if requested[itemID] > item.CurrentQuantity {
				return apperr.InsufficientStock(
					"inventory item %s has %d units, requested %d", item.ID, item.CurrentQuantity, requested[itemID])
			}

			items[i] = item
		}

		customer, custErr := s.resolveCustomer(txCtx, sellerID, req)
		if custErr != nil {
			return custErr
		}

		for i, line := range req.Lines {
			item := items[i]

			qty := decimal.NewFromInt(int64(line.Quantity))
			discount := decimal.NewFromFloat(line.Discount)
			amountPaid := decimal.NewFromFloat(line.AmountPaid)

			unitFinal := item.RetailPrice.Mul(qty).Sub(discount)
			if unitFinal.IsNegative() {
				return apperr.Validation("discount %s exceeds the line total for item %s", discount, item.ID)
			}
			balance := unitFinal.Sub(amountPaid)
			if balance.IsNegative() {
				return apperr.Validation("amount paid %s exceeds the final price %s", amountPaid, unitFinal)
			}
			if req.PaymentTerms == model.PaymentTermsCash && !balance.IsZero() {
				return apperr.Validation("cash sales must be fully paid (balance %s)", balance)
			}
			if req.PaymentTerms == model.PaymentTermsCredit && balance.IsZero() {
				return apperr.Validation("fully paid sales must use CASH payment terms")
			}

			ref, refErr := s.refs.Generate(txCtx, &model.Sales{}, "reference_number", refnum.PrefixSale, refnum.DefaultDigits)
			if refErr != nil {
				return fmt.Errorf("failed to generate reference number: %w", refErr)
			}

			sale := model.Sales{
				ReferenceNumber: ref,
				InventoryItemID: item.ID,
				CustomerID:      customer.ID,
				Quantity:        line.Quantity,
				RetailPrice:     item.RetailPrice,
				Discount:        discount,
				UnitFinalPrice:  unitFinal,
				AmountPaid:      amountPaid,
				Balance:         balance,
				PaymentTerms:    req.PaymentTerms,
				Status:          model.SaleStatusActive,
				RequestHash:     hash,
				SoldBy:          sellerID,
			}
			if createErr := s.sales.Create(txCtx, &sale); createErr != nil {
				return fmt.Errorf("failed to create sale: %w", createErr)
			}
			created = append(created, sale.ID)

			if _, applyErr := s.ledger.Apply(txCtx, ledger.ApplyInput{
				ItemID:          item.ID,
				Delta:           -line.Quantity,
				MovementType:    model.MovementOutbound,
				Reason:          "Sold under " + ref,
				ActorID:         sellerID,
				DepletionStatus: model.ItemStatusSoldOut,
			}); applyErr != nil {
				return applyErr
			}

			productTx := model.ProductTransaction{
				ProductID:       item.ProductID,
				TransactionType: model.ProductTxSale,
				QuantityOut:     line.Quantity,
				UnitPrice:       item.RetailPrice,
				TotalAmount:     unitFinal,
				ReferenceNumber: ref,
				Description:     "Sold to " + customer.Name,
				CreatedBy:       sellerID,
			}
			if txErr := s.products.CreateTransaction(txCtx, &productTx); txErr != nil {
				return fmt.Errorf("failed to record product transaction: %w", txErr)
			}

			if avgErr := recomputeProductAverages(txCtx, s.batches, s.products, item.ProductID); avgErr != nil {
				return avgErr
			}

			if actErr := s.activity.Record(txCtx, sellerID, "Sales", sale.ID.String(),
				model.ActionCreateSale, "Created sale "+ref, line); actErr != nil {
				return actErr
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	res := make([]SalesResponse, 0, len(created))
	for _, id := range created {
		resp, getErr := s.Get(ctx, id.String())
		if getErr != nil {
			return nil, getErr
		}
		res = append(res, resp)
	}
	return res, nil
}

func (s *salesService) resolveCustomer(ctx context.Context, actorID *uuid.UUID, req CreateSalesRequest) (*model.Customer, error) {
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, apperr.Validation("invalid customer_id: %v", err)
		}
		customer, err := s.customers.FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("customer %s not found", customerID)
			}
			return nil, fmt.Errorf("failed to find customer: %w", err)
		}
		return customer, nil
	}

	customer, err := s.customers.FindByName(ctx, req.CustomerName)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find customer by name: %w", err)
	}

	customer = &model.Customer{Name: req.CustomerName}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	if err := s.activity.Record(ctx, actorID, "Customer", customer.ID.String(),
		model.ActionCreateCustomer, "Auto-created customer "+customer.Name+" during sale", nil); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *salesService) Get(ctx context.Context, id string) (SalesResponse, error) {
	salesID, err := uuid.Parse(id)
	if err != nil {
		return SalesResponse{}, apperr.Validation("invalid sale id: %v", err)
	}

	sale, err := s.sales.FindByID(ctx, salesID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SalesResponse{}, apperr.NotFound("sale %s not found", salesID)
		}
		return SalesResponse{}, fmt.Errorf("failed to find sale: %w", err)
	}

	return toSalesResponse(*sale), nil
}

func (s *salesService) List(ctx context.Context, params pagination.Params, filter repository.SalesFilter) ([]SalesResponse, int64, error) {
	sales, total, err := s.sales.List(ctx, params, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]SalesResponse, 0, len(sales))
	for _, sale := range sales {
		res = append(res, toSalesResponse(sale))
	}
	return res, total, nil
}

// requestHash is the idempotency key: the submitting user plus the
// canonical JSON of the payload.
func requestHash(userID string, req CreateSalesRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(append([]byte(userID+"|"), raw...))
	return hex.EncodeToString(sum[:])
}

func toSalesResponse(sale model.Sales) SalesResponse {
	resp := SalesResponse{
		ID:              sale.ID.String(),
		ReferenceNumber: sale.ReferenceNumber,
		InventoryItemID: sale.InventoryItemID.String(),
		CustomerID:      sale.CustomerID.String(),
		Quantity:        sale.Quantity,
		RetailPrice:     sale.RetailPrice.String(),
		Discount:        sale.Discount.String(),
		UnitFinalPrice:  sale.UnitFinalPrice.String(),
		AmountPaid:      sale.AmountPaid.String(),
		Balance:         sale.Balance.String(),
		PaymentTerms:    sale.PaymentTerms,
		Status:          sale.Status,
		CreatedAt:       sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.InventoryItem != nil && sale.InventoryItem.Product != nil {
		resp.ProductName = sale.InventoryItem.Product.Name
	}
	if sale.Customer != nil {
		resp.CustomerName = sale.Customer.Name
	}
	return resp
}
