package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/metrics"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrEmptyCart is returned when checkout is entered without line items
var ErrEmptyCart = shared.NewDomainError("EMPTY_ORDER", "Your cart is empty")

// CheckoutService moves a cart through the steps of a checkout flow.
// Every call runs under the order's lock; the order is saved at most once.
type CheckoutService struct {
	flow           *checkout.Flow
	orderRepo      order.OrderRepository
	locker         order.Locker
	eventPublisher shared.EventPublisher
	metrics        *metrics.Metrics
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(flow *checkout.Flow, orderRepo order.OrderRepository, locker order.Locker) *CheckoutService {
	return &CheckoutService{
		flow:      flow,
		orderRepo: orderRepo,
		locker:    locker,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *CheckoutService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// GetStep returns the step to render. An empty stepID means the step the
// order is on. Steps ahead of the one the order has reached, and steps
// without visible panes, resolve to the next step that can be shown. A placed
// order always shows the terminal step.
func (s *CheckoutService) GetStep(ctx context.Context, orderID uuid.UUID, stepID string, customer CustomerInfo) (*StepResponse, error) {
	ctx = logger.WithOrderID(ctx, orderID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "get_step",
		telemetry.AttrOrderID.String(orderID.String()),
		telemetry.AttrStep.String(stepID),
	)
	defer span.End()

	var resp *StepResponse
	err := s.withOrder(ctx, orderID, customer, func(o *order.Order) (bool, error) {
		c := customer.toDomain()
		id, err := s.accessibleStep(o, stepID)
		if err != nil {
			return false, err
		}
		step, panes, err := s.flow.ResolveStep(id, c, o)
		if err != nil {
			return false, err
		}
		changed := o.IsCart() && o.CheckoutStep != step.ID
		if changed {
			o.SetCheckoutStep(step.ID)
		}
		resp = toStepResponse(s.flow, step, panes, cart.ToCartResponse(o))
		return changed, nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// Submit applies the form values to every visible pane of the step and
// advances to the next step that has something to show. Advancing into the
// terminal step places the order.
func (s *CheckoutService) Submit(ctx context.Context, orderID uuid.UUID, stepID string, customer CustomerInfo, req SubmitStepRequest) (*StepResponse, error) {
	ctx = logger.WithOrderID(ctx, orderID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "submit",
		telemetry.AttrOrderID.String(orderID.String()),
		telemetry.AttrStep.String(stepID),
	)
	defer span.End()

	var resp *StepResponse
	err := s.withOrder(ctx, orderID, customer, func(o *order.Order) (bool, error) {
		if !o.IsCart() {
			return false, shared.NewDomainError(shared.CodeInvalidState, "Order has already been placed")
		}
		c := customer.toDomain()
		id, err := s.accessibleStep(o, stepID)
		if err != nil {
			return false, err
		}
		if id != stepID {
			return false, shared.NewDomainError(shared.CodeInvalidState, "Checkout step "+stepID+" is not available yet")
		}

		step, panes, err := s.flow.ResolveStep(stepID, c, o)
		if err != nil {
			return false, err
		}
		if step.ID != stepID {
			return false, shared.NewDomainError(shared.CodeInvalidState, "Checkout step "+stepID+" has nothing to submit")
		}
		for _, pane := range panes {
			if err := pane.Submit(c, o, checkout.PaneInput(req.Input)); err != nil {
				return false, err
			}
		}

		next, ok := s.flow.NextStep(step.ID)
		if !ok {
			return false, shared.NewDomainError(shared.CodeInvalidState, "Checkout is already complete")
		}
		next, nextPanes, err := s.flow.ResolveStep(next.ID, c, o)
		if err != nil {
			return false, err
		}
		if s.flow.IsLast(next.ID) {
			if err := o.Place(); err != nil {
				return false, err
			}
		}
		o.SetCheckoutStep(next.ID)

		resp = toStepResponse(s.flow, next, nextPanes, cart.ToCartResponse(o))
		return true, nil
	})

	s.metrics.IncCheckoutSubmission(stepID, err == nil)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Info("checkout step rejected", zap.String("step", stepID), zap.Error(err))
		return nil, err
	}

	logger.L(ctx).Info("checkout step submitted",
		zap.String("step", stepID),
		zap.String("next_step", resp.Step),
		zap.String("status", resp.Order.Status))
	return resp, nil
}

// Back returns to the nearest earlier step that has visible panes
func (s *CheckoutService) Back(ctx context.Context, orderID uuid.UUID, stepID string, customer CustomerInfo) (*StepResponse, error) {
	ctx = logger.WithOrderID(ctx, orderID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "back",
		telemetry.AttrOrderID.String(orderID.String()),
		telemetry.AttrStep.String(stepID),
	)
	defer span.End()

	var resp *StepResponse
	err := s.withOrder(ctx, orderID, customer, func(o *order.Order) (bool, error) {
		if !o.IsCart() {
			return false, shared.NewDomainError(shared.CodeInvalidState, "Order has already been placed")
		}
		c := customer.toDomain()
		id, err := s.accessibleStep(o, stepID)
		if err != nil {
			return false, err
		}
		prev, err := s.flow.ResolvePreviousStep(id, c, o)
		if err != nil {
			return false, err
		}
		step, panes, err := s.flow.ResolveStep(prev.ID, c, o)
		if err != nil {
			return false, err
		}
		changed := o.CheckoutStep != step.ID
		if changed {
			o.SetCheckoutStep(step.ID)
		}
		resp = toStepResponse(s.flow, step, panes, cart.ToCartResponse(o))
		return changed, nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// withOrder loads the order under its lock, attaches an authenticated
// customer to an anonymous cart and runs fn on a copy. The copy is saved when
// fn or the customer assignment changed it.
func (s *CheckoutService) withOrder(ctx context.Context, orderID uuid.UUID, customer CustomerInfo, fn func(o *order.Order) (bool, error)) error {
	unlock, err := s.locker.Lock(ctx, orderID)
	if err != nil {
		return err
	}
	defer unlock()

	stored, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if stored.IsCart() && len(stored.LineItems) == 0 {
		return ErrEmptyCart
	}

	o := stored.Clone()
	assigned, err := assignCustomer(o, customer)
	if err != nil {
		return err
	}
	changed, err := fn(o)
	if err != nil {
		return err
	}
	if !changed && !assigned {
		return nil
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		return shared.ErrPersistenceFailure.WithCause(err)
	}

	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		// The bus logs handler failures; the order is already stored
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	return nil
}

// assignCustomer makes an anonymous cart owned by the signed-in customer.
// Orders of another customer are reported as not found.
func assignCustomer(o *order.Order, customer CustomerInfo) (bool, error) {
	c := customer.toDomain()
	if c.IsAnonymous() {
		return false, nil
	}
	if !o.IsAnonymous() {
		if *o.CustomerID != *c.ID {
			return false, shared.ErrNotFound
		}
		return false, nil
	}
	if !o.IsCart() {
		return false, nil
	}
	if err := o.AssignCustomer(*c.ID, c.Email); err != nil {
		return false, err
	}
	return true, nil
}

// accessibleStep maps the requested step to one the order may show: a
// placed order shows the terminal step, and a cart cannot skip ahead of the
// step it has reached.
func (s *CheckoutService) accessibleStep(o *order.Order, requested string) (string, error) {
	if !o.IsCart() {
		return s.flow.LastStep().ID, nil
	}

	reached := s.flow.Index(o.CheckoutStep)
	if reached < 0 {
		reached = 0
	}
	if requested == "" {
		return s.flow.Steps()[reached].ID, nil
	}

	idx := s.flow.Index(requested)
	if idx < 0 {
		return "", shared.NewDomainError(shared.CodeNotFound, "Unknown checkout step "+requested)
	}
	if idx > reached {
		return s.flow.Steps()[reached].ID, nil
	}
	return requested, nil
}
