package order

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusCart   OrderStatus = "CART"
	OrderStatusPlaced OrderStatus = "PLACED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusCart, OrderStatusPlaced:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return s == OrderStatusCart && target == OrderStatusPlaced
}

// Order is the aggregate root for a shopping cart and, once placed, the order.
// LineItems keep their insertion order, which is what the customer sees.
type Order struct {
	shared.BaseAggregateRoot
	Status       OrderStatus
	Email        string
	CustomerID   *uuid.UUID
	CheckoutStep string
	LineItems    []LineItem
	TotalAmount  decimal.Decimal
	PlacedAt     *time.Time
}

// NewCart creates an empty cart order
func NewCart(customerID *uuid.UUID) *Order {
	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            OrderStatusCart,
		CustomerID:        customerID,
		LineItems:         make([]LineItem, 0),
		TotalAmount:       decimal.Zero,
	}
	o.AddDomainEvent(NewCartCreatedEvent(o))
	return o
}

// IsCart returns true while the order can still be modified by the customer
func (o *Order) IsCart() bool {
	return o.Status == OrderStatusCart
}

// IsAnonymous returns true if no customer account owns the order
func (o *Order) IsAnonymous() bool {
	return o.CustomerID == nil || *o.CustomerID == uuid.Nil
}

// GetLineItem returns the line item with the given ID
func (o *Order) GetLineItem(id uuid.UUID) *LineItem {
	for i := range o.LineItems {
		if o.LineItems[i].ID == id {
			return &o.LineItems[i]
		}
	}
	return nil
}

// ItemCount returns the sum of all line item quantities
func (o *Order) ItemCount() decimal.Decimal {
	count := decimal.Zero
	for _, item := range o.LineItems {
		count = count.Add(item.Quantity)
	}
	return count
}

// SetEmail sets the contact email of the order
func (o *Order) SetEmail(email string) error {
	if !o.IsCart() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot change a placed order")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	o.Email = email
	o.touch()
	return nil
}

// AssignCustomer makes the order owned by a customer account
func (o *Order) AssignCustomer(customerID uuid.UUID, email string) error {
	if !o.IsCart() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot change a placed order")
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	o.CustomerID = &customerID
	if email != "" {
		o.Email = email
	}
	o.touch()
	return nil
}

// SetCheckoutStep records the checkout step the customer is on
func (o *Order) SetCheckoutStep(step string) {
	o.CheckoutStep = step
	o.touch()
}

// Place finalizes the cart into an order
func (o *Order) Place() error {
	if !o.Status.CanTransitionTo(OrderStatusPlaced) {
		return shared.NewDomainError(shared.CodeInvalidState, "Order has already been placed")
	}
	if len(o.LineItems) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot place an order without line items")
	}
	if o.Email == "" {
		return shared.NewDomainError("MISSING_EMAIL", "An email address is required to place the order")
	}

	now := time.Now()
	o.Status = OrderStatusPlaced
	o.PlacedAt = &now
	o.touch()

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return nil
}

// ReplaceLineItems installs a new set of line items and recalculates totals
func (o *Order) ReplaceLineItems(items []LineItem) {
	o.LineItems = items
	o.recalculateTotals()
	o.touch()
}

// Clone returns a deep copy of the order without pending domain events
func (o *Order) Clone() *Order {
	c := *o
	c.ClearDomainEvents()
	c.LineItems = cloneLineItems(o.LineItems)
	if o.CustomerID != nil {
		id := *o.CustomerID
		c.CustomerID = &id
	}
	if o.PlacedAt != nil {
		t := *o.PlacedAt
		c.PlacedAt = &t
	}
	return &c
}

// touch leaves Version alone; it is the stored version and only Save advances it
func (o *Order) touch() {
	o.UpdatedAt = time.Now()
}

func (o *Order) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.LineItems {
		total = total.Add(item.Amount())
	}
	o.TotalAmount = total
}
