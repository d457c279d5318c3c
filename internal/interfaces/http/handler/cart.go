package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// CreateCart handles POST /carts. A signed-in customer owns the new cart;
// the customer_id of the body is ignored.
func (h *CartHandler) CreateCart(c *gin.Context) {
	var req cartapp.CreateCartRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	customerID, email := middleware.GetCustomer(c)
	req.CustomerID = customerID
	if customerID != nil && req.Email == "" {
		req.Email = email
	}

	cart, err := h.cartService.CreateCart(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cart)
}

// GetCart handles GET /carts/:id
func (h *CartHandler) GetCart(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	customerID, _ := middleware.GetCustomer(c)
	cart, err := h.cartService.GetCart(c.Request.Context(), id, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem handles POST /carts/:id/items
func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req cartapp.AddToCartRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.CustomerID, _ = middleware.GetCustomer(c)

	resp, err := h.cartService.AddToCart(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
