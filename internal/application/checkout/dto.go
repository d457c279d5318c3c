package checkout

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/checkout"
)

// CustomerInfo identifies the visitor; an empty CustomerID means anonymous
type CustomerInfo struct {
	CustomerID *uuid.UUID
	Email      string
}

func (c CustomerInfo) toDomain() checkout.Customer {
	return checkout.Customer{ID: c.CustomerID, Email: c.Email}
}

// SubmitStepRequest holds the form values posted to a checkout step
type SubmitStepRequest struct {
	Input map[string]string `json:"input"`
}

// ActionsResponse tells which navigation buttons the step offers
type ActionsResponse struct {
	Previous bool `json:"previous"`
	Next     bool `json:"next"`
}

// StepResponse describes the checkout step to render
type StepResponse struct {
	FlowID  string            `json:"flow_id"`
	Step    string            `json:"step"`
	Label   string            `json:"label"`
	Panes   []string          `json:"panes"`
	Actions ActionsResponse   `json:"actions"`
	Order   cart.CartResponse `json:"order"`
}

func toStepResponse(flow *checkout.Flow, step checkout.Step, panes []checkout.Pane, resp cart.CartResponse) *StepResponse {
	ids := make([]string, len(panes))
	for i, p := range panes {
		ids[i] = p.ID()
	}
	actions := flow.Actions(step.ID)
	return &StepResponse{
		FlowID:  flow.ID(),
		Step:    step.ID,
		Label:   step.Label,
		Panes:   ids,
		Actions: ActionsResponse{Previous: actions.Previous, Next: actions.Next},
		Order:   resp,
	}
}
