package service

import (
	"context"
	"fmt"

	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// recomputeProductAverages refreshes a product's average cost and retail
// prices from its ACTIVE inventory items, weighted by remaining quantity.
// With no stock left the last-known averages are kept for reporting.
func recomputeProductAverages(ctx context.Context, batches repository.BatchRepository, products repository.ProductRepository, productID uuid.UUID) error {
	items, err := batches.FindActiveItemsByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load active items for product %s: %w", productID, err)
	}

	totalQty := decimal.Zero
	costSum := decimal.Zero
	retailSum := decimal.Zero
	for _, item := range items {
		if item.CurrentQuantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(item.CurrentQuantity))
		totalQty = totalQty.Add(qty)
		costSum = costSum.Add(item.CostPrice.Mul(qty))
		retailSum = retailSum.Add(item.RetailPrice.Mul(qty))
	}

	if totalQty.IsZero() {
		return nil
	}

	avgCost := costSum.DivRound(totalQty, 4)
	avgRetail := retailSum.DivRound(totalQty, 4)

	if err := products.UpdateAveragePrices(ctx, productID, avgCost, avgRetail); err != nil {
		return fmt.Errorf("failed to update averages for product %s: %w", productID, err)
	}
	return nil
}
