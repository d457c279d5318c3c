package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// CreateCartRequest represents a request to start a new cart
type CreateCartRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Email      string     `json:"email" binding:"omitempty,email"`
}

// AddToCartRequest represents a submitted add-to-cart form
type AddToCartRequest struct {
	ProductID uuid.UUID         `json:"product_id" binding:"required"`
	Selection map[string]string `json:"selection" binding:"omitempty,dive,keys,attribute_key,endkeys"`
	Quantity  decimal.Decimal   `json:"quantity"`
	// Data is opaque line item data, e.g. an engraving text. It is stored
	// verbatim and decides together with the variation whether lines merge.
	Data map[string]any `json:"data"`
	// CustomerID is the signed-in customer; set by the handler, never from the body
	CustomerID *uuid.UUID `json:"-"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	PurchasedEntityID uuid.UUID       `json:"purchased_entity_id"`
	PurchasableType   string          `json:"purchasable_type"`
	Title             string          `json:"title"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Amount            decimal.Decimal `json:"amount"`
	Data              map[string]any  `json:"data"`
	// Available is false when the variation was withdrawn after it was added
	Available bool `json:"available"`
}

// CartResponse represents a cart (an order that is not placed yet, or a
// placed order) in API responses
type CartResponse struct {
	ID           uuid.UUID          `json:"id"`
	Status       string             `json:"status"`
	Email        string             `json:"email,omitempty"`
	CustomerID   *uuid.UUID         `json:"customer_id,omitempty"`
	CheckoutStep string             `json:"checkout_step,omitempty"`
	LineItems    []LineItemResponse `json:"line_items"`
	ItemCount    decimal.Decimal    `json:"item_count"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Version      int                `json:"version"`
	PlacedAt     *time.Time         `json:"placed_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AddToCartResponse reports the affected line item and the updated cart
type AddToCartResponse struct {
	Cart     CartResponse     `json:"cart"`
	LineItem LineItemResponse `json:"line_item"`
	// Merged is true when an existing line item's quantity was increased
	Merged bool `json:"merged"`
}

// ToCartResponse converts a domain Order to CartResponse. Every line item is
// reported as available.
func ToCartResponse(o *order.Order) CartResponse {
	resp := CartResponse{
		ID:           o.ID,
		Status:       o.Status.String(),
		Email:        o.Email,
		CustomerID:   o.CustomerID,
		CheckoutStep: o.CheckoutStep,
		LineItems:    make([]LineItemResponse, len(o.LineItems)),
		ItemCount:    o.ItemCount(),
		TotalAmount:  o.TotalAmount,
		Version:      o.Version,
		PlacedAt:     o.PlacedAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for i := range o.LineItems {
		resp.LineItems[i] = ToLineItemResponse(&o.LineItems[i])
	}
	return resp
}

// ToLineItemResponse converts a domain LineItem to LineItemResponse
func ToLineItemResponse(item *order.LineItem) LineItemResponse {
	data := item.Data
	if data == nil {
		data = map[string]any{}
	}
	return LineItemResponse{
		ID:                item.ID,
		PurchasedEntityID: item.PurchasedEntityID,
		PurchasableType:   item.PurchasableType,
		Title:             item.Title,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
		Amount:            item.Amount(),
		Data:              data,
		Available:         true,
	}
}
