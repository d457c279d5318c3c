package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	Status       order.OrderStatus `gorm:"type:varchar(20);not null;default:'CART';index"`
	Email        string            `gorm:"type:varchar(254)"`
	CustomerID   *uuid.UUID        `gorm:"type:uuid;index"`
	CheckoutStep string            `gorm:"type:varchar(64)"`
	TotalAmount  decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	PlacedAt     *time.Time
	LineItems    []LineItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
// LineItems must already be sorted by position.
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.LineItem, len(m.LineItems))
	for i := range m.LineItems {
		items[i] = m.LineItems[i].ToDomain()
	}
	return &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Status:            m.Status,
		Email:             m.Email,
		CustomerID:        m.CustomerID,
		CheckoutStep:      m.CheckoutStep,
		LineItems:         items,
		TotalAmount:       m.TotalAmount,
		PlacedAt:          m.PlacedAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order.
// Line item positions follow their index in the order.
func OrderModelFromDomain(o *order.Order) (*OrderModel, error) {
	m := &OrderModel{
		Status:       o.Status,
		Email:        o.Email,
		CustomerID:   o.CustomerID,
		CheckoutStep: o.CheckoutStep,
		TotalAmount:  o.TotalAmount,
		PlacedAt:     o.PlacedAt,
		LineItems:    make([]LineItemModel, len(o.LineItems)),
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	for i := range o.LineItems {
		item, err := LineItemModelFromDomain(&o.LineItems[i], i)
		if err != nil {
			return nil, err
		}
		item.OrderID = o.ID
		m.LineItems[i] = *item
	}
	return m, nil
}

// LineItemModel is the persistence model for a line item. DataFingerprint is
// a digest of the canonical JSON of Data, indexed so stored lines can be
// matched without decoding Data.
type LineItemModel struct {
	BaseModel
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_line_items_order_position,priority:1"`
	Position          int             `gorm:"not null;index:idx_line_items_order_position,priority:2"`
	PurchasedEntityID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchasableType   string          `gorm:"type:varchar(64);not null"`
	Title             string          `gorm:"type:varchar(255);not null"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Data              map[string]any  `gorm:"type:text;serializer:json"`
	DataFingerprint   string          `gorm:"type:char(64);not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *LineItemModel) ToDomain() order.LineItem {
	data := m.Data
	if data == nil {
		data = map[string]any{}
	}
	return order.LineItem{
		ID:                m.ID,
		OrderID:           m.OrderID,
		PurchasedEntityID: m.PurchasedEntityID,
		PurchasableType:   m.PurchasableType,
		Title:             m.Title,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		Data:              data,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// LineItemModelFromDomain creates a persistence model from a domain LineItem
// stored at the given position.
func LineItemModelFromDomain(item *order.LineItem, position int) (*LineItemModel, error) {
	fingerprint, err := order.DataFingerprint(item.Data)
	if err != nil {
		return nil, err
	}
	return &LineItemModel{
		BaseModel: BaseModel{
			ID:        item.ID,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		},
		OrderID:           item.OrderID,
		Position:          position,
		PurchasedEntityID: item.PurchasedEntityID,
		PurchasableType:   item.PurchasableType,
		Title:             item.Title,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
		Data:              item.Data,
		DataFingerprint:   fingerprint,
	}, nil
}
