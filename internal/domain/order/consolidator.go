package order

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Consolidation is the outcome of LineConsolidator.AddOrMerge. It holds the
// proposed order state; the original order is untouched until Apply.
type Consolidation struct {
	original *Order
	// Order is a copy of the original order with the line item change applied
	Order *Order
	// LineItem is the added or merged line item within Order
	LineItem *LineItem
	// Merged is true if an existing line item's quantity was increased
	Merged bool
	// Quantity is the quantity that was requested
	Quantity decimal.Decimal
}

// Apply copies the proposed state onto the original order, including the
// pending domain events. Call it only after the proposed order was persisted.
func (c *Consolidation) Apply() {
	events := c.Order.GetDomainEvents()
	c.original.ReplaceLineItems(cloneLineItems(c.Order.LineItems))
	c.original.Version = c.Order.Version
	c.original.UpdatedAt = c.Order.UpdatedAt
	for _, e := range events {
		c.original.AddDomainEvent(e)
	}
}

// LineConsolidator adds a purchasable to an order, merging it into an
// existing line item when the purchased entity is the same and the line
// item data is combinable under the purchasable type's policy.
type LineConsolidator struct {
	policies *PolicyRegistry
}

// NewLineConsolidator creates a consolidator; a nil registry uses strict equality for every type
func NewLineConsolidator(policies *PolicyRegistry) *LineConsolidator {
	if policies == nil {
		policies = NewPolicyRegistry(nil)
	}
	return &LineConsolidator{policies: policies}
}

// AddOrMerge computes the effect of adding quantity of p with data to the
// order. The first combinable line item in stored order gets its quantity
// increased and keeps its unit price; otherwise a new line item is appended
// at the current price. The order itself is not modified.
func (c *LineConsolidator) AddOrMerge(o *Order, p Purchasable, quantity decimal.Decimal, data map[string]any) (*Consolidation, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if !p.IsPurchasable() {
		return nil, shared.ErrPurchasableUnavailable
	}
	if !o.IsCart() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Cannot add items to a placed order")
	}

	proposed := o.Clone()
	items := proposed.LineItems
	policy := c.policies.For(p.PurchasableType())

	result := &Consolidation{
		original: o,
		Order:    proposed,
		Quantity: quantity,
	}

	idx := -1
	for i := range items {
		if items[i].PurchasedEntityID != p.PurchasableID() {
			continue
		}
		if policy.Combinable(items[i].Data, data) {
			idx = i
			break
		}
	}

	if idx >= 0 {
		if err := items[idx].IncreaseQuantity(quantity); err != nil {
			return nil, err
		}
		result.Merged = true
	} else {
		item, err := NewLineItem(o.ID, p, quantity, data)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
		idx = len(items) - 1
	}

	proposed.ReplaceLineItems(items)
	result.LineItem = &proposed.LineItems[idx]

	if result.Merged {
		proposed.AddDomainEvent(NewLineItemQuantityIncreasedEvent(proposed, result.LineItem, quantity))
	} else {
		proposed.AddDomainEvent(NewLineItemAddedEvent(proposed, result.LineItem))
	}

	return result, nil
}
