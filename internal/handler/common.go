package handler

import (
	"backend/pkg/apperr"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status via the apperr kind.
func respondError(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// Role names used in route guards.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RolePharmacist = "pharmacist"
)
