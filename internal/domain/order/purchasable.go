package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchasable is anything that can be added to an order as a line item
type Purchasable interface {
	// PurchasableID identifies the purchased entity; line items merge only
	// when it is equal
	PurchasableID() uuid.UUID
	// PurchasableType selects the combinability policy
	PurchasableType() string
	// OrderItemTitle is copied onto new line items
	OrderItemTitle() string
	// UnitPrice is the current price, fixed onto new line items
	UnitPrice() decimal.Decimal
	// IsPurchasable reports whether the entity is currently offered for sale
	IsPurchasable() bool
}
