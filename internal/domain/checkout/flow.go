package checkout

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Customer is the visitor going through checkout
type Customer struct {
	ID    *uuid.UUID
	Email string
}

// IsAnonymous returns true for visitors without an account session
func (c Customer) IsAnonymous() bool {
	return c.ID == nil || *c.ID == uuid.Nil
}

// PaneInput holds the submitted form values of a pane
type PaneInput map[string]string

// Pane is one block of a checkout step, e.g. the login form or the order review
type Pane interface {
	ID() string
	IsVisible(c Customer, o *order.Order) bool
	// Submit validates input and applies it to the order
	Submit(c Customer, o *order.Order, input PaneInput) error
}

// Step is a named page of the checkout flow
type Step struct {
	ID    string
	Label string
	Panes []Pane
}

// Actions tells which navigation buttons a step offers
type Actions struct {
	Previous bool
	Next     bool
}

// Flow is an ordered list of checkout steps. The last step is terminal.
type Flow struct {
	id       string
	steps    []Step
	position map[string]int
}

// NewFlow creates a flow from at least one step with unique IDs
func NewFlow(id string, steps ...Step) (*Flow, error) {
	if id == "" {
		return nil, shared.NewDomainError("INVALID_FLOW", "Checkout flow ID cannot be empty")
	}
	if len(steps) == 0 {
		return nil, shared.NewDomainError("INVALID_FLOW", "Checkout flow needs at least one step")
	}
	f := &Flow{
		id:       id,
		steps:    make([]Step, len(steps)),
		position: make(map[string]int, len(steps)),
	}
	for i, s := range steps {
		if s.ID == "" {
			return nil, shared.NewDomainError("INVALID_FLOW", "Checkout step ID cannot be empty")
		}
		if _, dup := f.position[s.ID]; dup {
			return nil, shared.NewDomainError("INVALID_FLOW", "Checkout step "+s.ID+" is defined twice")
		}
		f.steps[i] = s
		f.position[s.ID] = i
	}
	return f, nil
}

// ID returns the flow identifier
func (f *Flow) ID() string {
	return f.id
}

// Steps returns the steps in order
func (f *Flow) Steps() []Step {
	out := make([]Step, len(f.steps))
	copy(out, f.steps)
	return out
}

// Step returns the step with the given ID
func (f *Flow) Step(id string) (Step, bool) {
	i, ok := f.position[id]
	if !ok {
		return Step{}, false
	}
	return f.steps[i], true
}

// Index returns the position of step id, or -1 for an unknown step
func (f *Flow) Index(id string) int {
	if i, ok := f.position[id]; ok {
		return i
	}
	return -1
}

// FirstStep returns the first step
func (f *Flow) FirstStep() Step {
	return f.steps[0]
}

// LastStep returns the terminal step
func (f *Flow) LastStep() Step {
	return f.steps[len(f.steps)-1]
}

// IsLast reports whether id is the terminal step
func (f *Flow) IsLast(id string) bool {
	return f.LastStep().ID == id
}

// NextStep returns the step after id. ok is false on the last or an unknown step.
func (f *Flow) NextStep(id string) (Step, bool) {
	i, ok := f.position[id]
	if !ok || i == len(f.steps)-1 {
		return Step{}, false
	}
	return f.steps[i+1], true
}

// PreviousStep returns the step before id. ok is false on the first or an unknown step.
func (f *Flow) PreviousStep(id string) (Step, bool) {
	i, ok := f.position[id]
	if !ok || i == 0 {
		return Step{}, false
	}
	return f.steps[i-1], true
}

// Actions returns the navigation offered on a step. The terminal step has
// none, and the first step cannot go back.
func (f *Flow) Actions(id string) Actions {
	i, ok := f.position[id]
	if !ok {
		return Actions{}
	}
	last := len(f.steps) - 1
	return Actions{
		Previous: i != 0 && i != last,
		Next:     i != last,
	}
}

// VisiblePanes returns the panes of the step shown to the customer
func (f *Flow) VisiblePanes(step Step, c Customer, o *order.Order) []Pane {
	var panes []Pane
	for _, p := range step.Panes {
		if p.IsVisible(c, o) {
			panes = append(panes, p)
		}
	}
	return panes
}

// ResolveStep returns the first step at or after id that has visible panes,
// together with those panes. If no later step has any, the terminal step is
// returned.
func (f *Flow) ResolveStep(id string, c Customer, o *order.Order) (Step, []Pane, error) {
	start, ok := f.position[id]
	if !ok {
		return Step{}, nil, shared.NewDomainError(shared.CodeNotFound, "Unknown checkout step "+id)
	}
	for i := start; i < len(f.steps); i++ {
		if panes := f.VisiblePanes(f.steps[i], c, o); len(panes) > 0 {
			return f.steps[i], panes, nil
		}
	}
	last := f.LastStep()
	return last, f.VisiblePanes(last, c, o), nil
}

// ResolvePreviousStep returns the nearest step before id that has visible
// panes, or the first step when there is none.
func (f *Flow) ResolvePreviousStep(id string, c Customer, o *order.Order) (Step, error) {
	start, ok := f.position[id]
	if !ok {
		return Step{}, shared.NewDomainError(shared.CodeNotFound, "Unknown checkout step "+id)
	}
	for i := start - 1; i >= 0; i-- {
		if len(f.VisiblePanes(f.steps[i], c, o)) > 0 {
			return f.steps[i], nil
		}
	}
	return f.FirstStep(), nil
}
