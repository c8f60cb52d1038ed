package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SalesReturnHandler struct {
	returnService service.SalesReturnService
}

func NewSalesReturnHandler(returnService service.SalesReturnService) *SalesReturnHandler {
	return &SalesReturnHandler{returnService: returnService}
}

func (h *SalesReturnHandler) RegisterRoutes(router *gin.RouterGroup) {
	returns := router.Group("/api/sales-returns")
	{
		returns.GET("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListReturns)
		returns.POST("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.SubmitReturn)
		returns.GET("/:id", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.GetReturn)
		returns.PATCH("/:id/status", middleware.RequireRole(RoleAdmin, RoleManager), h.SetStatus)
	}
}

// SubmitReturn submits a customer return request
// @Summary      Submit sales return
// @Description  Requests the return of units from a sale; stock moves when the return is processed
// @Tags         sales-returns
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SubmitSalesReturnRequest  true  "Submit Return Payload"
// @Success      201      {object}  response.Response{data=service.SalesReturnResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/sales-returns [post]
func (h *SalesReturnHandler) SubmitReturn(c *gin.Context) {
	var req service.SubmitSalesReturnRequest
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

func (h *SalesReturnHandler) SetStatus(c *gin.Context) {
	var req service.SetSalesReturnStatusRequest
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

func (h *SalesReturnHandler) GetReturn(c *gin.Context) {
	ret, err := h.returnService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, ret))
}

func (h *SalesReturnHandler) ListReturns(c *gin.Context) {
	params := pagination.Parse(c)

	returns, total, err := h.returnService.List(c.Request.Context(), params, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "returns", returns, total, params.Page, params.Limit))
}
