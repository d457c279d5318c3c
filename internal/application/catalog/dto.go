package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code          string   `json:"code" binding:"required,min=1,max=50"`
	Title         string   `json:"title" binding:"required,min=1,max=200"`
	Description   string   `json:"description" binding:"max=2000"`
	AttributeKeys []string `json:"attribute_keys" binding:"dive,attribute_key"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Title         *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string  `json:"description" binding:"omitempty,max=2000"`
	AttributeKeys []string `json:"attribute_keys" binding:"omitempty,dive,attribute_key"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	AttributeKeys []string  `json:"attribute_keys"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Code:          p.Code,
		Title:         p.Title,
		Description:   p.Description,
		Status:        string(p.Status),
		AttributeKeys: append([]string(nil), p.AttributeKeys...),
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// AttributeValueRequest is one value of a DefineAttributeRequest
type AttributeValueRequest struct {
	ID     string `json:"id" binding:"required,attribute_key"`
	Label  string `json:"label" binding:"required,max=100"`
	Weight int    `json:"weight"`
}

// DefineAttributeRequest creates or replaces an attribute and its values
type DefineAttributeRequest struct {
	Key    string                  `json:"key" binding:"required,attribute_key"`
	Label  string                  `json:"label" binding:"required,max=100"`
	Values []AttributeValueRequest `json:"values" binding:"required,min=1,dive"`
}

// AttributeResponse represents an attribute in API responses
type AttributeResponse struct {
	Key    string                  `json:"key"`
	Label  string                  `json:"label"`
	Values []AttributeValueRequest `json:"values"`
}

// ToAttributeResponse converts a domain Attribute to AttributeResponse,
// values in presentation order
func ToAttributeResponse(a *catalog.Attribute) AttributeResponse {
	values := a.SortedValues()
	resp := AttributeResponse{
		Key:    a.Key,
		Label:  a.Label,
		Values: make([]AttributeValueRequest, len(values)),
	}
	for i, v := range values {
		resp.Values[i] = AttributeValueRequest{ID: v.ID, Label: v.Label, Weight: v.Weight}
	}
	return resp
}

// AddVariationRequest adds a variation to a product
type AddVariationRequest struct {
	SKU        string            `json:"sku" binding:"required,max=64"`
	Attributes map[string]string `json:"attributes"`
	Price      decimal.Decimal   `json:"price"`
}

// UpdateVariationRequest changes the price or sale status of a variation
type UpdateVariationRequest struct {
	Price  *decimal.Decimal `json:"price"`
	Active *bool            `json:"active"`
}

// VariationResponse represents a variation in API responses
type VariationResponse struct {
	ID         uuid.UUID         `json:"id"`
	ProductID  uuid.UUID         `json:"product_id"`
	SKU        string            `json:"sku"`
	Attributes map[string]string `json:"attributes"`
	Price      decimal.Decimal   `json:"price"`
	Status     string            `json:"status"`
	Position   int               `json:"position"`
}

// ToVariationResponse converts a domain ProductVariation to VariationResponse
func ToVariationResponse(v *catalog.ProductVariation) VariationResponse {
	attrs := make(map[string]string, len(v.Attributes))
	for k, val := range v.Attributes {
		attrs[k] = val
	}
	return VariationResponse{
		ID:         v.ID,
		ProductID:  v.ProductID,
		SKU:        v.SKU,
		Attributes: attrs,
		Price:      v.Price,
		Status:     string(v.Status),
		Position:   v.Position,
	}
}

// ChangeAttributeRequest is sent when the customer picks another value for
// one attribute of the add-to-cart form
type ChangeAttributeRequest struct {
	Selection map[string]string `json:"selection"`
	Key       string            `json:"key" binding:"required,attribute_key"`
	Value     string            `json:"value" binding:"required,attribute_key"`
}

// AttributeOption is one choosable value of an attribute field
type AttributeOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// AttributeField describes the control of one attribute. Fields that are not
// interactive have a single option and are shown read-only.
type AttributeField struct {
	Key         string            `json:"key"`
	Label       string            `json:"label"`
	Options     []AttributeOption `json:"options"`
	Selected    string            `json:"selected"`
	Interactive bool              `json:"interactive"`
}

// VariationSummary is the variation the current selection resolves to
type VariationSummary struct {
	ID    uuid.UUID       `json:"id"`
	SKU   string          `json:"sku"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// AttributeFormResponse is everything needed to render an add-to-cart form
type AttributeFormResponse struct {
	ProductID    uuid.UUID         `json:"product_id"`
	ProductTitle string            `json:"product_title"`
	Available    bool              `json:"available"`
	Selection    map[string]string `json:"selection"`
	Attributes   []AttributeField  `json:"attributes"`
	Variation    *VariationSummary `json:"variation,omitempty"`
}
