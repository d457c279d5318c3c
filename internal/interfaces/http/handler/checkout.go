package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout steps of a cart
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func customerInfo(c *gin.Context) checkoutapp.CustomerInfo {
	id, email := middleware.GetCustomer(c)
	return checkoutapp.CustomerInfo{CustomerID: id, Email: email}
}

// GetStep handles GET /carts/:id/checkout and GET /carts/:id/checkout/:step.
// Without a step the cart's current step is shown.
func (h *CheckoutHandler) GetStep(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	step, err := h.checkoutService.GetStep(c.Request.Context(), id, c.Param("step"), customerInfo(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, step)
}

// Submit handles POST /carts/:id/checkout/:step
func (h *CheckoutHandler) Submit(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req checkoutapp.SubmitStepRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	step, err := h.checkoutService.Submit(c.Request.Context(), id, c.Param("step"), customerInfo(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, step)
}

// Back handles POST /carts/:id/checkout/:step/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	step, err := h.checkoutService.Back(c.Request.Context(), id, c.Param("step"), customerInfo(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, step)
}
