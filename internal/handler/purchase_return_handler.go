package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseReturnHandler struct {
	returnService service.PurchaseReturnService
}

func NewPurchaseReturnHandler(returnService service.PurchaseReturnService) *PurchaseReturnHandler {
	return &PurchaseReturnHandler{returnService: returnService}
}

func (h *PurchaseReturnHandler) RegisterRoutes(router *gin.RouterGroup) {
	returns := router.Group("/api/purchase-returns")
	{
		returns.GET("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListReturns)
		returns.POST("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.SubmitReturn)
		returns.GET("/:id", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.GetReturn)
		returns.PATCH("/:id/status", middleware.RequireRole(RoleAdmin, RoleManager), h.SetStatus)
	}
}

// SubmitReturn submits a return-to-supplier request
// @Summary      Submit purchase return
// @Description  Requests the return of units from a purchase item; quantity moves when the return is approved
// @Tags         purchase-returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SubmitPurchaseReturnRequest  true  "Submit Return Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseReturnResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/purchase-returns [post]
func (h *PurchaseReturnHandler) SubmitReturn(c *gin.Context) {
	var req service.SubmitPurchaseReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ret, err := h.returnService.Submit(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, ret))
}

// SetStatus moves a purchase return through its state machine
// @Summary      Set purchase return status
// @Tags         purchase-returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                                  true  "Return ID"
// @Param        payload  body      service.SetPurchaseReturnStatusRequest  true  "Target Status"
// @Success      200      {object}  response.Response{data=service.PurchaseReturnResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/purchase-returns/{id}/status [patch]
func (h *PurchaseReturnHandler) SetStatus(c *gin.Context) {
	var req service.SetPurchaseReturnStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ret, err := h.returnService.SetStatus(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

func (h *PurchaseReturnHandler) GetReturn(c *gin.Context) {
	ret, err := h.returnService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

func (h *PurchaseReturnHandler) ListReturns(c *gin.Context) {
	params := pagination.Parse(c)

	returns, total, err := h.returnService.List(c.Request.Context(), params, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "returns", returns, total, params.Page, params.Limit))
}
