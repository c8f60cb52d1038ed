package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/inventory-summary", middleware.RequireRole(RoleAdmin, RoleManager), h.InventorySummary)
		reports.GET("/sales-summary", middleware.RequireRole(RoleAdmin, RoleManager), h.SalesSummary)
		reports.GET("/sales-summary/export", middleware.RequireRole(RoleAdmin, RoleManager), h.ExportSalesSummary)
		reports.GET("/return-rates", middleware.RequireRole(RoleAdmin, RoleManager), h.ReturnRates)
	}
}

// parseRange reads from/to query params, defaulting to the last 30 days.
func parseRange(c *gin.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			from = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			to = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return from, to
}

// InventorySummary returns the stock valuation per product
// @Summary      Inventory summary
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.InventorySummaryRow}
// @Router       /api/reports/inventory-summary [get]
func (h *ReportHandler) InventorySummary(c *gin.Context) {
	rows, err := h.reportService.InventorySummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

// SalesSummary aggregates sales metrics over a date range
// @Summary      Sales summary
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        from  query  string  false  "Start date (YYYY-MM-DD, default 30 days ago)"
// @Param        to    query  string  false  "End date (YYYY-MM-DD, default today)"
// @Success      200   {object}  response.Response{data=model.SalesSummaryResponse}
// @Router       /api/reports/sales-summary [get]
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	from, to := parseRange(c)

	summary, err := h.reportService.SalesSummary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ExportSalesSummary downloads the sales summary as an xlsx workbook
func (h *ReportHandler) ExportSalesSummary(c *gin.Context) {
	from, to := parseRange(c)

	data, err := h.reportService.ExportSalesSummary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := "sales-summary-" + from.Format("20060102") + "-" + to.Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *ReportHandler) ReturnRates(c *gin.Context) {
	from, to := parseRange(c)

	rows, err := h.reportService.ReturnRates(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}
