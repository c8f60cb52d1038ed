package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const topProductsLimit = 10

type ReportService interface {
	InventorySummary(ctx context.Context) ([]model.InventorySummaryRow, error)
	SalesSummary(ctx context.Context, from, to time.Time) (model.SalesSummaryResponse, error)
	ReturnRates(ctx context.Context, from, to time.Time) ([]model.ReturnRateRow, error)
	// ExportSalesSummary renders the sales summary as an xlsx workbook.
	ExportSalesSummary(ctx context.Context, from, to time.Time) ([]byte, error)
}

// reportService queries across tables directly; aggregations do not fit the
// per-entity repositories.
type reportService struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewReportService(db *gorm.DB, log logrus.FieldLogger) ReportService {
	return &reportService{db: db, log: log}
}

func (s *reportService) InventorySummary(ctx context.Context) ([]model.InventorySummaryRow, error) {
	var rows []model.InventorySummaryRow

	err := repository.GetDB(ctx, s.db).
		Table("inventory_items").
		Select(`products.id as product_id,
			products.code as product_code,
			products.name as product_name,
			COUNT(DISTINCT inventory_items.batch_id) as batch_count,
			COALESCE(SUM(inventory_items.current_quantity), 0) as quantity_on_hand,
			COALESCE(SUM(inventory_items.current_quantity * inventory_items.cost_price), 0) as stock_cost_value,
			COALESCE(SUM(inventory_items.current_quantity * inventory_items.retail_price), 0) as stock_retail_value`).
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Where("inventory_items.status = ?", model.ItemStatusActive).
		Group("products.id, products.code, products.name").
		Order("stock_cost_value desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory summary: %w", err)
	}

	return rows, nil
}

func (s *reportService) SalesSummary(ctx context.Context, from, to time.Time) (model.SalesSummaryResponse, error) {
	db := repository.GetDB(ctx, s.db)
	summary := model.SalesSummaryResponse{
		TimeRangeStartDate: from,
		TimeRangeEndDate:   to,
	}

	var totals struct {
		TotalValue  float64
		TotalCount  int64
		TotalUnpaid float64
	}
	err := db.Table("sales").
		Select(`COALESCE(SUM(unit_final_price), 0) as total_value,
			COUNT(*) as total_count,
			COALESCE(SUM(balance), 0) as total_unpaid`).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Scan(&totals).Error
	if err != nil {
		return summary, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	summary.TotalSalesValue = totals.TotalValue
	summary.TotalSalesCount = totals.TotalCount
	summary.OutstandingBalance = totals.TotalUnpaid

	var returned struct {
		Total float64
	}
	err = db.Table("sales_returns").
		Select("COALESCE(SUM(sales_returns.return_quantity * sales.retail_price), 0) as total").
		Joins("JOIN sales ON sales.id = sales_returns.sales_id").
		Where("sales_returns.status = ? AND sales_returns.processed_at >= ? AND sales_returns.processed_at <= ?",
			string(model.SalesReturnProcessed), from, to).
		Scan(&returned).Error
	if err != nil {
		return summary, fmt.Errorf("failed to aggregate returns: %w", err)
	}
	summary.TotalReturnedValue = returned.Total

	var top []model.ProductRanking
	err = db.Table("sales").
		Select(`products.id as product_id,
			products.code as product_code,
			products.name as product_name,
			COALESCE(SUM(sales.quantity), 0) as total_quantity,
			COALESCE(SUM(sales.unit_final_price), 0) as total_value`).
		Joins("JOIN inventory_items ON inventory_items.id = sales.inventory_item_id").
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Where("sales.created_at >= ? AND sales.created_at <= ?", from, to).
		Group("products.id, products.code, products.name").
		Order("total_quantity desc").
		Limit(topProductsLimit).
		Scan(&top).Error
	if err != nil {
		return summary, fmt.Errorf("failed to rank products: %w", err)
	}
	summary.TopSoldProducts = top

	return summary, nil
}

func (s *reportService) ReturnRates(ctx context.Context, from, to time.Time) ([]model.ReturnRateRow, error) {
	var rows []model.ReturnRateRow

	err := repository.GetDB(ctx, s.db).
		Table("sales").
		Select(`products.id as product_id,
			products.name as product_name,
			COALESCE(SUM(sales.quantity), 0) as quantity_sold,
			COALESCE((SELECT SUM(sr.return_quantity)
				FROM sales_returns sr
				JOIN sales s2 ON s2.id = sr.sales_id
				JOIN inventory_items ii2 ON ii2.id = s2.inventory_item_id
				WHERE ii2.product_id = products.id
				AND sr.status != ?
				AND sr.created_at >= ? AND sr.created_at <= ?), 0) as quantity_returned`,
			string(model.SalesReturnCancelled), from, to).
		Joins("JOIN inventory_items ON inventory_items.id = sales.inventory_item_id").
		Joins("JOIN products ON products.id = inventory_items.product_id").
		Where("sales.created_at >= ? AND sales.created_at <= ?", from, to).
		Group("products.id, products.name").
		Order("quantity_returned desc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build return rates: %w", err)
	}

	return rows, nil
}

func (s *reportService) ExportSalesSummary(ctx context.Context, from, to time.Time) ([]byte, error) {
	summary, err := s.SalesSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.log.WithError(closeErr).Warn("failed to close xlsx file")
		}
	}()

	sheet := "Sales Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := [][]interface{}{
		{"Period", from.Format("2006-01-02") + " to " + to.Format("2006-01-02")},
		{"Total Sales Value", summary.TotalSalesValue},
		{"Total Sales Count", summary.TotalSalesCount},
		{"Total Returned Value", summary.TotalReturnedValue},
		{"Outstanding Balance", summary.OutstandingBalance},
		{},
		{"Product Code", "Product Name", "Quantity Sold", "Sales Value"},
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	for i, rank := range summary.TopSoldProducts {
		cell, _ := excelize.CoordinatesToCellName(1, len(header)+i+1)
		row := []interface{}{rank.ProductCode, rank.ProductName, rank.TotalQuantity, rank.TotalValue}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write product row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
