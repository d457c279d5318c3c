package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeCartCreated               = "CartCreated"
	EventTypeLineItemAdded             = "LineItemAdded"
	EventTypeLineItemQuantityIncreased = "LineItemQuantityIncreased"
	EventTypeOrderPlaced               = "OrderPlaced"
)

// CartCreatedEvent is raised when a new cart is created
type CartCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID  `json:"order_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
}

// NewCartCreatedEvent creates a new CartCreatedEvent
func NewCartCreatedEvent(o *Order) *CartCreatedEvent {
	return &CartCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
	}
}

// LineItemAddedEvent is raised when a new line item is appended
type LineItemAddedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID       `json:"order_id"`
	LineItemID        uuid.UUID       `json:"line_item_id"`
	PurchasedEntityID uuid.UUID       `json:"purchased_entity_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
}

// NewLineItemAddedEvent creates a new LineItemAddedEvent
func NewLineItemAddedEvent(o *Order, item *LineItem) *LineItemAddedEvent {
	return &LineItemAddedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeLineItemAdded, AggregateTypeOrder, o.ID),
		OrderID:           o.ID,
		LineItemID:        item.ID,
		PurchasedEntityID: item.PurchasedEntityID,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice,
	}
}

// LineItemQuantityIncreasedEvent is raised when an add was merged into an existing line item
type LineItemQuantityIncreasedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID       `json:"order_id"`
	LineItemID        uuid.UUID       `json:"line_item_id"`
	PurchasedEntityID uuid.UUID       `json:"purchased_entity_id"`
	Added             decimal.Decimal `json:"added"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// NewLineItemQuantityIncreasedEvent creates a new LineItemQuantityIncreasedEvent
func NewLineItemQuantityIncreasedEvent(o *Order, item *LineItem, added decimal.Decimal) *LineItemQuantityIncreasedEvent {
	return &LineItemQuantityIncreasedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeLineItemQuantityIncreased, AggregateTypeOrder, o.ID),
		OrderID:           o.ID,
		LineItemID:        item.ID,
		PurchasedEntityID: item.PurchasedEntityID,
		Added:             added,
		Quantity:          item.Quantity,
	}
}

// OrderPlacedEvent is raised when checkout completes
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	Email       string          `json:"email"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Email:           o.Email,
		TotalAmount:     o.TotalAmount,
	}
}
