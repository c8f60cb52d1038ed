package model

import "time"

// InventorySummaryRow is one product line of the inventory valuation report.
type InventorySummaryRow struct {
	ProductID       string  `json:"product_id"`
	ProductCode     string  `json:"product_code"`
	ProductName     string  `json:"product_name"`
	BatchCount      int64   `json:"batch_count"`
	QuantityOnHand  int64   `json:"quantity_on_hand"`
	StockCostValue  float64 `json:"stock_cost_value"`
	StockRetailValue float64 `json:"stock_retail_value"`
}

// ProductRanking is one entry of a top-products listing.
type ProductRanking struct {
	ProductID     string  `json:"product_id"`
	ProductCode   string  `json:"product_code"`
	ProductName   string  `json:"product_name"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

// SalesSummaryResponse aggregates sales metrics over a date range.
type SalesSummaryResponse struct {
	TimeRangeStartDate time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time        `json:"time_range_end_date"`
	TotalSalesValue    float64          `json:"total_sales_value"`
	TotalSalesCount    int64            `json:"total_sales_count"`
	TotalReturnedValue float64          `json:"total_returned_value"`
	OutstandingBalance float64          `json:"outstanding_balance"`
	TopSoldProducts    []ProductRanking `json:"top_sold_products"`
}

// ReturnRateRow reports return volume against sold volume per product.
type ReturnRateRow struct {
	ProductID        string `json:"product_id"`
	ProductName      string `json:"product_name"`
	QuantitySold     int64  `json:"quantity_sold"`
	QuantityReturned int64  `json:"quantity_returned"`
}
