package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// VariationStatus represents whether a variation is offered for sale
type VariationStatus string

const (
	VariationStatusActive   VariationStatus = "active"
	VariationStatusInactive VariationStatus = "inactive"
)

// ProductVariation is the concrete purchasable unit of a product.
// Attributes assigns exactly one value id to every attribute of the product.
type ProductVariation struct {
	shared.BaseEntity
	ProductID  uuid.UUID
	SKU        string
	Attributes map[string]string
	Price      decimal.Decimal
	Status     VariationStatus
	Position   int
}

// NewProductVariation creates a new active variation
func NewProductVariation(productID uuid.UUID, sku string, attributes map[string]string, price decimal.Decimal) (*ProductVariation, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Variation must belong to a product")
	}
	if strings.TrimSpace(sku) == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Variation SKU cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Variation price cannot be negative")
	}

	attrs := make(map[string]string, len(attributes))
	for k, v := range attributes {
		attrs[k] = v
	}

	return &ProductVariation{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		SKU:        sku,
		Attributes: attrs,
		Price:      price,
		Status:     VariationStatusActive,
	}, nil
}

// SetPrice changes the current price. Line items already in carts keep theirs.
func (v *ProductVariation) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Variation price cannot be negative")
	}
	v.Price = price
	v.UpdatedAt = time.Now()
	return nil
}

// Activate puts the variation on sale
func (v *ProductVariation) Activate() {
	v.Status = VariationStatusActive
	v.UpdatedAt = time.Now()
}

// Deactivate withdraws the variation from sale
func (v *ProductVariation) Deactivate() {
	v.Status = VariationStatusInactive
	v.UpdatedAt = time.Now()
}

// IsActive returns true if the variation is on sale
func (v *ProductVariation) IsActive() bool {
	return v.Status == VariationStatusActive
}

// AttributeValue returns the value id assigned for the given attribute
func (v *ProductVariation) AttributeValue(key string) (string, bool) {
	val, ok := v.Attributes[key]
	return val, ok
}

// Title builds the line item title: the product title followed by the
// labels of the variation's attribute values in attribute order.
func (v *ProductVariation) Title(productTitle string, attributes []Attribute) string {
	labels := make([]string, 0, len(attributes))
	for i := range attributes {
		id, ok := v.Attributes[attributes[i].Key]
		if !ok {
			continue
		}
		if value, found := attributes[i].Value(id); found {
			labels = append(labels, value.Label)
		}
	}
	if len(labels) == 0 {
		return productTitle
	}
	return productTitle + " - " + strings.Join(labels, ", ")
}
