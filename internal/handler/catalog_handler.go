package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		products.GET("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListProducts)
		products.POST("", middleware.RequireRole(RoleAdmin, RoleManager), h.CreateProduct)
		products.GET("/:id", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.GetProduct)
		products.PUT("/:id", middleware.RequireRole(RoleAdmin, RoleManager), h.UpdateProduct)
		products.GET("/:id/transactions", middleware.RequireRole(RoleAdmin, RoleManager), h.ListProductTransactions)
	}

	suppliers := router.Group("/api/suppliers")
	{
		suppliers.GET("", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListSuppliers)
		suppliers.POST("", middleware.RequireRole(RoleAdmin, RoleManager), h.CreateSupplier)
	}

	router.GET("/api/customers", middleware.RequireRole(RoleAdmin, RoleManager, RolePharmacist), h.ListCustomers)
}

// CreateProduct creates a product master record
// @Summary      Create product
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /api/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	params := pagination.Parse(c)

	products, total, err := h.catalogService.ListProducts(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "products", products, total, params.Page, params.Limit))
}

// ListProductTransactions returns the product-level financial trail
func (h *CatalogHandler) ListProductTransactions(c *gin.Context) {
	params := pagination.Parse(c)

	txs, total, err := h.catalogService.ListProductTransactions(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "transactions", txs, total, params.Page, params.Limit))
}

func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	supplier, err := h.catalogService.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, supplier))
}

func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	params := pagination.Parse(c)

	suppliers, total, err := h.catalogService.ListSuppliers(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "suppliers", suppliers, total, params.Page, params.Limit))
}

func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	params := pagination.Parse(c)

	customers, total, err := h.catalogService.ListCustomers(c.Request.Context(), params, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "customers", customers, total, params.Page, params.Limit))
}
