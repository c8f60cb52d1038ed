package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SalesHandler struct {
	salesService service.SalesService
}

func NewSalesHandler(salesService service.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

func (h *SalesHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/api/sales")
	{
		sales.GET("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListSales)
		sales.POST("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.CreateSales)
		sales.GET("/:id", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.GetSale)
	}
}

// CreateSales records a multi-line sale
// @Summary      Create sale
// @Description  Sells one or more inventory item lines to a customer; stock is decremented immediately and the whole request commits or rolls back together
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSalesRequest  true  "Create Sales Payload"
// @Success      201      {object}  response.Response{data=[]service.SalesResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/sales [post]
func (h *SalesHandler) CreateSales(c *gin.Context) {
	var req service.CreateSalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sales, err := h.salesService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sales))
}

func (h *SalesHandler) GetSale(c *gin.Context) {
	sale, err := h.salesService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

func (h *SalesHandler) ListSales(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.SalesFilter{Status: c.Query("status")}
	if raw := c.Query("customer"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.CustomerID = &id
		}
	}

	sales, total, err := h.salesService.List(c.Request.Context(), params, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "sales", sales, total, params.Page, params.Limit))
}
