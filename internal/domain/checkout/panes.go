package checkout

import (
	"strings"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Pane identifiers
const (
	PaneLogin    = "login"
	PaneReview   = "review"
	PaneComplete = "complete"
)

// LoginPane lets anonymous visitors continue as guest by giving an email address
type LoginPane struct{}

// ID implements Pane
func (LoginPane) ID() string { return PaneLogin }

// IsVisible implements Pane. Only anonymous visitors see the login pane.
func (LoginPane) IsVisible(c Customer, _ *order.Order) bool {
	return c.IsAnonymous()
}

// Submit implements Pane
func (LoginPane) Submit(_ Customer, o *order.Order, input PaneInput) error {
	email := strings.TrimSpace(input["email"])
	if email == "" {
		return shared.NewDomainError("MISSING_EMAIL", "Email address is required to continue as guest")
	}
	return o.SetEmail(email)
}

// ReviewPane shows the order summary before it is placed
type ReviewPane struct{}

// ID implements Pane
func (ReviewPane) ID() string { return PaneReview }

// IsVisible implements Pane
func (ReviewPane) IsVisible(Customer, *order.Order) bool { return true }

// Submit implements Pane
func (ReviewPane) Submit(_ Customer, o *order.Order, _ PaneInput) error {
	if len(o.LineItems) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Your cart is empty")
	}
	if o.Email == "" {
		return shared.NewDomainError("MISSING_EMAIL", "An email address is required to place the order")
	}
	return nil
}

// CompletePane is the confirmation shown once the order is placed
type CompletePane struct{}

// ID implements Pane
func (CompletePane) ID() string { return PaneComplete }

// IsVisible implements Pane
func (CompletePane) IsVisible(Customer, *order.Order) bool { return true }

// Submit implements Pane. The terminal step accepts no input.
func (CompletePane) Submit(Customer, *order.Order, PaneInput) error {
	return shared.NewDomainError(shared.CodeInvalidState, "Checkout is already complete")
}

// DefaultFlowID identifies the flow returned by DefaultFlow
const DefaultFlowID = "default"

// DefaultFlow is login, review, complete
func DefaultFlow() *Flow {
	f, err := NewFlow(DefaultFlowID,
		Step{ID: "login", Label: "Login", Panes: []Pane{LoginPane{}}},
		Step{ID: "review", Label: "Review", Panes: []Pane{ReviewPane{}}},
		Step{ID: "complete", Label: "Complete", Panes: []Pane{CompletePane{}}},
	)
	if err != nil {
		panic(err)
	}
	return f
}
