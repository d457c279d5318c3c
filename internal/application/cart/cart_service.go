package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/catalog"
	domaincatalog "github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/metrics"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CartService handles carts: creating them, showing them and adding
// product variations to them
type CartService struct {
	loader         *catalog.MatrixLoader
	orderRepo      order.OrderRepository
	locker         order.Locker
	consolidator   *order.LineConsolidator
	saleValidator  *catalog.ProductSaleValidator
	eventPublisher shared.EventPublisher
	metrics        *metrics.Metrics
}

// NewCartService creates a new CartService
func NewCartService(
	loader *catalog.MatrixLoader,
	orderRepo order.OrderRepository,
	locker order.Locker,
	consolidator *order.LineConsolidator,
) *CartService {
	return &CartService{
		loader:       loader,
		orderRepo:    orderRepo,
		locker:       locker,
		consolidator: consolidator,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CartService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *CartService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// SetSaleValidator enables availability flags on line items in GetCart and
// makes AddToCart take sale status and price from storage instead of the
// cached resolver
func (s *CartService) SetSaleValidator(validator *catalog.ProductSaleValidator) {
	s.saleValidator = validator
}

// NewPolicyRegistry builds the combinability policies of line item data.
// Keys in ignoredKeys never split line items, for every purchasable type.
func NewPolicyRegistry(ignoredKeys []string) *order.PolicyRegistry {
	if len(ignoredKeys) == 0 {
		return order.NewPolicyRegistry(nil)
	}
	return order.NewPolicyRegistry(order.IgnoringKeys(ignoredKeys...))
}

// CreateCart starts a new empty cart
func (s *CartService) CreateCart(ctx context.Context, req CreateCartRequest) (*CartResponse, error) {
	cart := order.NewCart(req.CustomerID)
	if req.Email != "" {
		if err := cart.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, cart); err != nil {
		return nil, shared.ErrPersistenceFailure.WithCause(err)
	}
	s.publish(ctx, cart)

	logger.L(ctx).Info("cart created", zap.String("order_id", cart.ID.String()))

	resp := ToCartResponse(cart)
	return &resp, nil
}

// GetCart returns a cart with its line items in the order they were added.
// A signed-in customer gets NOT_FOUND for carts owned by someone else.
func (s *CartService) GetCart(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID) (*CartResponse, error) {
	cart, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(cart, customerID); err != nil {
		return nil, err
	}

	resp := ToCartResponse(cart)
	if s.saleValidator != nil && cart.IsCart() {
		s.markUnavailable(ctx, &resp)
	}
	return &resp, nil
}

func (s *CartService) markUnavailable(ctx context.Context, resp *CartResponse) {
	ids := make([]uuid.UUID, 0, len(resp.LineItems))
	for _, item := range resp.LineItems {
		if item.PurchasableType == PurchasableTypeVariation {
			ids = append(ids, item.PurchasedEntityID)
		}
	}
	if len(ids) == 0 {
		return
	}

	available, err := s.saleValidator.CanBePurchasedBatch(ctx, ids)
	if err != nil {
		logger.L(ctx).Warn("failed to check line item availability", zap.Error(err))
		return
	}
	for i := range resp.LineItems {
		item := &resp.LineItems[i]
		if ok, checked := available[item.PurchasedEntityID]; checked {
			item.Available = ok
		}
	}
}

// AddToCart resolves the selection to a variation and adds it to the cart.
// When the cart already has a line item for the same variation with
// combinable data, its quantity grows and its unit price stays; otherwise a
// new line item is appended at the current price.
//
// Loading, merging and saving run under the cart's lock and the cart is saved
// exactly once. If saving fails the stored cart is unchanged and the error is
// returned as PERSISTENCE_FAILURE without a retry.
func (s *CartService) AddToCart(ctx context.Context, orderID uuid.UUID, req AddToCartRequest) (*AddToCartResponse, error) {
	ctx = logger.WithOrderID(ctx, orderID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add_to_cart",
		telemetry.AttrOrderID.String(orderID.String()),
		telemetry.AttrProductID.String(req.ProductID.String()),
		telemetry.AttrQuantity.String(req.Quantity.String()),
	)
	defer span.End()

	resp, err := s.addToCart(ctx, orderID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Info("add to cart rejected",
			zap.String("product_id", req.ProductID.String()),
			zap.Error(err))
		return nil, err
	}

	outcome := metrics.OutcomeAppended
	if resp.Merged {
		outcome = metrics.OutcomeMerged
	}
	span.SetAttributes(
		telemetry.AttrVariationID.String(resp.LineItem.PurchasedEntityID.String()),
		telemetry.AttrOutcome.String(outcome),
	)
	s.metrics.IncConsolidation(outcome)

	logger.L(ctx).Info("line item added",
		zap.String("line_item_id", resp.LineItem.ID.String()),
		zap.String("title", resp.LineItem.Title),
		zap.String("quantity", resp.LineItem.Quantity.String()),
		zap.Bool("merged", resp.Merged))

	return resp, nil
}

func (s *CartService) addToCart(ctx context.Context, orderID uuid.UUID, req AddToCartRequest) (*AddToCartResponse, error) {
	matrix, err := s.loader.Load(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	variation, err := s.resolve(matrix, req.Selection)
	if err != nil {
		s.metrics.IncConsolidation(metrics.OutcomeRejected)
		return nil, err
	}
	purchasable := newVariationPurchasable(matrix, variation)

	start := time.Now()
	unlock, err := s.locker.Lock(ctx, orderID)
	s.metrics.ObserveLockWait(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, shared.ErrLockTimeout) {
			s.metrics.IncConsolidation(metrics.OutcomeLockTimed)
		}
		return nil, err
	}
	defer unlock()

	cart, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(cart, req.CustomerID); err != nil {
		return nil, err
	}

	if s.saleValidator != nil {
		product, current, err := s.saleValidator.Current(ctx, variation.ID)
		if err != nil {
			if errors.Is(err, shared.ErrPurchasableUnavailable) {
				s.metrics.IncConsolidation(metrics.OutcomeRejected)
			}
			return nil, err
		}
		purchasable.refresh(product, current)
	}

	result, err := s.consolidator.AddOrMerge(cart, purchasable, req.Quantity, req.Data)
	if err != nil {
		s.metrics.IncConsolidation(metrics.OutcomeRejected)
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, result.Order); err != nil {
		s.metrics.IncConsolidation(metrics.OutcomePersist)
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		return nil, shared.ErrPersistenceFailure.WithCause(err)
	}
	result.Apply()
	s.publish(ctx, cart)

	return &AddToCartResponse{
		Cart:     ToCartResponse(cart),
		LineItem: ToLineItemResponse(result.LineItem),
		Merged:   result.Merged,
	}, nil
}

// resolve maps the submitted selection to exactly one variation
func (s *CartService) resolve(matrix *catalog.ProductMatrix, selection map[string]string) (*domaincatalog.ProductVariation, error) {
	resolution, err := matrix.Resolver.Resolve(domaincatalog.Selection(selection))
	if err != nil {
		return nil, err
	}
	s.metrics.IncResolution(string(resolution.Kind))

	switch resolution.Kind {
	case domaincatalog.ResolutionMatched:
		return resolution.Variation, nil
	case domaincatalog.ResolutionAmbiguous:
		return nil, shared.NewDomainError(shared.CodeIncompleteSelection,
			"Choose a value for "+strings.Join(resolution.Missing, ", "))
	default:
		return nil, shared.ErrNoMatchingVariation
	}
}

// checkOwner reports orders of another customer as not found
func checkOwner(o *order.Order, customerID *uuid.UUID) error {
	if customerID == nil || o.CustomerID == nil || *o.CustomerID == *customerID {
		return nil
	}
	return shared.ErrNotFound
}

func (s *CartService) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// The bus logs handler failures; the cart is already stored
	_ = s.eventPublisher.Publish(ctx, events...)
}
