package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	inventory := router.Group("/api/inventory")
	{
		inventory.GET("/batches", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListBatches)
		inventory.GET("/batches/:id", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.GetBatch)
		inventory.PUT("/batches/:id", middleware.RequireRole(RoleAdmin, RoleManager), h.UpdateBatch)
		inventory.GET("/items/:id", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.GetItem)
		inventory.GET("/items/:id/movements", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListItemMovements)
		inventory.POST("/adjustments", middleware.RequireRole(RoleAdmin, RoleManager), h.Adjust)
		inventory.POST("/expiry-sweep", middleware.RequireRole(RoleAdmin, RoleManager), h.ExpirySweep)
	}
}

// ListBatches returns paginated inventory batches
// @Summary      List inventory batches
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        limit     query  int     false  "Items per page (default 20)"
// @Param        status    query  string  false  "Filter by status"
// @Param        supplier  query  string  false  "Filter by supplier ID"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/inventory/batches [get]
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.BatchFilter{Status: c.Query("status")}
	if raw := c.Query("supplier"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.SupplierID = &id
		}
	}

	batches, total, err := h.inventoryService.ListBatches(c.Request.Context(), params, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "batches", batches, total, params.Page, params.Limit))
}

func (h *InventoryHandler) GetBatch(c *gin.Context) {
	batch, err := h.inventoryService.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, batch))
}

func (h *InventoryHandler) UpdateBatch(c *gin.Context) {
	var req service.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	batch, err := h.inventoryService.UpdateBatch(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, batch))
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.inventoryService.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ListItemMovements returns the append-only movement trail of one item
// @Summary      List item movements
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Inventory Item ID"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListItemMovements(c *gin.Context) {
	params := pagination.Parse(c)

	movements, total, err := h.inventoryService.ListItemMovements(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "movements", movements, total, params.Page, params.Limit))
}

// Adjust applies a manual quantity correction to one item
// @Summary      Adjust inventory item
// @Description  Applies a signed quantity delta through the stock ledger
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.AdjustInventoryRequest  true  "Adjustment Payload"
// @Success      200      {object}  response.Response{data=service.InventoryItemResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req service.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.Adjust(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ExpirySweep marks every batch past its expiry date as EXPIRED
func (h *InventoryHandler) ExpirySweep(c *gin.Context) {
	swept, err := h.inventoryService.ExpirySweep(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"expired_batches": swept}))
}
