package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// LineItem is one row of an order: a purchasable, how many of it, and the
// unit price fixed when it was first added. Data holds caller supplied
// options that only affect identity through the combinability policy.
type LineItem struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	PurchasedEntityID uuid.UUID
	PurchasableType   string
	Title             string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	Data              map[string]any
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewLineItem creates a line item for the purchasable at its current price
func NewLineItem(orderID uuid.UUID, p Purchasable, quantity decimal.Decimal, data map[string]any) (*LineItem, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if p.PurchasableID() == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PURCHASABLE", "Purchasable ID cannot be empty")
	}
	price := p.UnitPrice()
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:                uuid.New(),
		OrderID:           orderID,
		PurchasedEntityID: p.PurchasableID(),
		PurchasableType:   p.PurchasableType(),
		Title:             p.OrderItemTitle(),
		Quantity:          quantity,
		UnitPrice:         price,
		Data:              cloneData(data),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Amount returns quantity times unit price
func (i *LineItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// IncreaseQuantity adds to the quantity. The unit price is left untouched.
func (i *LineItem) IncreaseQuantity(quantity decimal.Decimal) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	i.Quantity = i.Quantity.Add(quantity)
	i.UpdatedAt = time.Now()
	return nil
}

// ValidateQuantity checks that quantity is a positive whole number
func ValidateQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	if !quantity.IsInteger() {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be a whole number")
	}
	return nil
}

func cloneLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i := range items {
		out[i] = items[i]
		out[i].Data = cloneData(items[i].Data)
	}
	return out
}

// cloneData deep copies JSON-like data so merges never alias caller maps
func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneData(t)
	case []any:
		s := make([]any, len(t))
		for i := range t {
			s[i] = cloneValue(t[i])
		}
		return s
	default:
		return v
	}
}
