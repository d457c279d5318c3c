package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Code          string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_code"`
	Title         string                `gorm:"type:varchar(200);not null"`
	Description   string                `gorm:"type:text"`
	Status        catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
	AttributeKeys []string              `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	keys := make([]string, len(m.AttributeKeys))
	copy(keys, m.AttributeKeys)
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Title:             m.Title,
		Description:       m.Description,
		Status:            m.Status,
		AttributeKeys:     keys,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Title = p.Title
	m.Description = p.Description
	m.Status = p.Status
	m.AttributeKeys = append([]string(nil), p.AttributeKeys...)
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// AttributeModel is the persistence model for an attribute and its values
type AttributeModel struct {
	Key    string                `gorm:"column:attribute_key;type:varchar(64);primaryKey"`
	Label  string                `gorm:"type:varchar(100);not null"`
	Values []AttributeValueModel `gorm:"foreignKey:AttributeKey;references:Key"`
}

// TableName returns the table name for GORM
func (AttributeModel) TableName() string {
	return "attributes"
}

// AttributeValueModel is one value row of an attribute. Position keeps the
// order values were added in, which breaks weight ties.
type AttributeValueModel struct {
	AttributeKey string `gorm:"type:varchar(64);primaryKey"`
	ValueID      string `gorm:"type:varchar(64);primaryKey"`
	Label        string `gorm:"type:varchar(100);not null"`
	Weight       int    `gorm:"not null;default:0"`
	Position     int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AttributeValueModel) TableName() string {
	return "attribute_values"
}

// ToDomain converts the persistence model to a domain Attribute.
// Values must already be sorted by position.
func (m *AttributeModel) ToDomain() *catalog.Attribute {
	values := make([]catalog.AttributeValue, len(m.Values))
	for i, v := range m.Values {
		values[i] = catalog.AttributeValue{ID: v.ValueID, Label: v.Label, Weight: v.Weight}
	}
	return &catalog.Attribute{
		Key:    m.Key,
		Label:  m.Label,
		Values: values,
	}
}

// AttributeModelFromDomain creates a new persistence model from a domain Attribute.
func AttributeModelFromDomain(a *catalog.Attribute) *AttributeModel {
	m := &AttributeModel{
		Key:    a.Key,
		Label:  a.Label,
		Values: make([]AttributeValueModel, len(a.Values)),
	}
	for i, v := range a.Values {
		m.Values[i] = AttributeValueModel{
			AttributeKey: a.Key,
			ValueID:      v.ID,
			Label:        v.Label,
			Weight:       v.Weight,
			Position:     i,
		}
	}
	return m
}

// ProductVariationModel is the persistence model for a product variation.
// Attributes is stored as a JSON object of attribute key to value id.
type ProductVariationModel struct {
	BaseModel
	ProductID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	SKU        string                  `gorm:"column:sku;type:varchar(100);not null;uniqueIndex"`
	Attributes map[string]string       `gorm:"type:text;serializer:json"`
	Price      decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Status     catalog.VariationStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Position   int                     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductVariationModel) TableName() string {
	return "product_variations"
}

// ToDomain converts the persistence model to a domain ProductVariation.
func (m *ProductVariationModel) ToDomain() *catalog.ProductVariation {
	attrs := make(map[string]string, len(m.Attributes))
	for k, v := range m.Attributes {
		attrs[k] = v
	}
	return &catalog.ProductVariation{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		SKU:        m.SKU,
		Attributes: attrs,
		Price:      m.Price,
		Status:     m.Status,
		Position:   m.Position,
	}
}

// FromDomain populates the persistence model from a domain ProductVariation.
func (m *ProductVariationModel) FromDomain(v *catalog.ProductVariation) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.ProductID = v.ProductID
	m.SKU = v.SKU
	m.Attributes = make(map[string]string, len(v.Attributes))
	for k, val := range v.Attributes {
		m.Attributes[k] = val
	}
	m.Price = v.Price
	m.Status = v.Status
	m.Position = v.Position
}

// ProductVariationModelFromDomain creates a new persistence model from a domain ProductVariation.
func ProductVariationModelFromDomain(v *catalog.ProductVariation) *ProductVariationModel {
	m := &ProductVariationModel{}
	m.FromDomain(v)
	return m
}
