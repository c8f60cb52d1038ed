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

type PurchaseHandler struct {
	purchaseService service.PurchaseService
}

func NewPurchaseHandler(purchaseService service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchases")
	{
		purchases.GET("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListPurchases)
		purchases.POST("", middleware.RequireRole(RoleAdmin, RoleManager), h.CreatePurchase)
		purchases.GET("/:id", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.GetPurchase)
		purchases.PUT("/:id", middleware.RequireRole(RoleAdmin, RoleManager), h.UpdatePurchase)
		purchases.POST("/:id/verify", middleware.RequireRole(RoleAdmin, RoleManager), h.VerifyPurchase)
		purchases.POST("/:id/convert", middleware.RequireRole(RoleAdmin, RoleManager), h.ConvertPurchase)
		purchases.GET("/:id/edits", middleware.RequireRole(RoleAdmin, RoleManager), h.ListPurchaseEdits)
	}
}

// CreatePurchase records a new purchase with its items
// @Summary      Create purchase
// @Description  Records a purchase from a supplier with one or more product lines
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseRequest  true  "Create Purchase Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/purchases [post]
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req service.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

// ListPurchases returns paginated purchases with optional filters
// @Summary      List purchases
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        limit     query  int     false  "Items per page (default 20)"
// @Param        status    query  string  false  "Filter by status"
// @Param        supplier  query  string  false  "Filter by supplier ID"
// @Param        verified  query  bool    false  "Filter by verification state"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.PurchaseFilter{Status: c.Query("status")}
	if raw := c.Query("supplier"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.SupplierID = &id
		}
	}
	if raw := c.Query("verified"); raw != "" {
		verified := raw == "true"
		filter.Verified = &verified
	}

	purchases, total, err := h.purchaseService.List(c.Request.Context(), params, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "purchases", purchases, total, params.Page, params.Limit))
}

func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// UpdatePurchase edits a purchase before conversion
// @Summary      Update purchase
// @Description  Edits header fields or item lines; every change lands in the edit log with the given reason
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Purchase ID"
// @Param        payload  body      service.UpdatePurchaseRequest  true  "Update Purchase Payload"
// @Success      200      {object}  response.Response{data=service.PurchaseResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/purchases/{id} [put]
func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	var req service.UpdatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	purchase, err := h.purchaseService.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

func (h *PurchaseHandler) VerifyPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.Verify(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

// ConvertPurchase converts a verified purchase into an inventory batch
// @Summary      Convert purchase to inventory
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path      string  true  "Purchase ID"
// @Success      200  {object}  response.Response{data=service.PurchaseResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/purchases/{id}/convert [post]
func (h *PurchaseHandler) ConvertPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.ConvertToInventory(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, purchase))
}

func (h *PurchaseHandler) ListPurchaseEdits(c *gin.Context) {
	edits, err := h.purchaseService.ListEdits(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, edits))
}
