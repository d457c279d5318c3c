package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// AttributeFormHandler serves the add-to-cart form of a product
type AttributeFormHandler struct {
	BaseHandler
	formService *catalogapp.AttributeFormService
}

// NewAttributeFormHandler creates a new AttributeFormHandler
func NewAttributeFormHandler(formService *catalogapp.AttributeFormService) *AttributeFormHandler {
	return &AttributeFormHandler{formService: formService}
}

// GetForm handles GET /products/:id/form. The current selection is passed
// as attr[key]=value query parameters, e.g. ?attr[color]=red&attr[size]=8.
func (h *AttributeFormHandler) GetForm(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	form, err := h.formService.BuildForm(c.Request.Context(), id, c.QueryMap("attr"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// ChangeAttribute handles POST /products/:id/form, sent when the customer
// picks another value for one attribute
func (h *AttributeFormHandler) ChangeAttribute(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ChangeAttributeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	form, err := h.formService.ChangeAttribute(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}
