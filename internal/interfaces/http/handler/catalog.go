package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// CatalogHandler handles catalog maintenance endpoints: products, attributes
// and variations
type CatalogHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{productService: productService}
}

// CreateProduct handles POST /admin/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetProduct handles GET /admin/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateProduct handles PATCH /admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ActivateProduct handles POST /admin/products/:id/activate
func (h *CatalogHandler) ActivateProduct(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DeactivateProduct handles POST /admin/products/:id/deactivate
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DefineAttribute handles POST /admin/attributes. Posting an existing key
// replaces its values.
func (h *CatalogHandler) DefineAttribute(c *gin.Context) {
	var req catalogapp.DefineAttributeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	attr, err := h.productService.DefineAttribute(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attr)
}

// GetAttribute handles GET /admin/attributes/:key
func (h *CatalogHandler) GetAttribute(c *gin.Context) {
	attr, err := h.productService.GetAttribute(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attr)
}

// AddVariation handles POST /admin/products/:id/variations
func (h *CatalogHandler) AddVariation(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AddVariationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	variation, err := h.productService.AddVariation(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variation)
}

// ListVariations handles GET /admin/products/:id/variations
func (h *CatalogHandler) ListVariations(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	variations, err := h.productService.ListVariations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variations)
}

// UpdateVariation handles PATCH /admin/variations/:id
func (h *CatalogHandler) UpdateVariation(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateVariationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	variation, err := h.productService.UpdateVariation(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variation)
}
