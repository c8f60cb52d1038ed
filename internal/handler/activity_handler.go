package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/activity-logs", middleware.RequireRole(RoleAdmin, RoleManager), h.ListActivityLogs)
}

// ListActivityLogs returns the audit trail, newest first
// @Summary      List activity logs
// @Tags         activity
// @Security     BearerAuth
// @Produce      json
// @Param        model   query  string  false  "Filter by entity name"
// @Param        action  query  string  false  "Filter by action"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/activity-logs [get]
func (h *ActivityHandler) ListActivityLogs(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.ActivityFilter{
		Model:  c.Query("model"),
		Action: c.Query("action"),
	}

	logs, total, err := h.activityService.List(c.Request.Context(), params, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "logs", logs, total, params.Page, params.Limit))
}
