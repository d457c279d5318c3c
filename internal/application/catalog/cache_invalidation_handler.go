package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InvalidationPublisher tells other instances that cached resolvers are stale
type InvalidationPublisher interface {
	PublishProduct(ctx context.Context, productID uuid.UUID) error
	PublishAll(ctx context.Context) error
}

// CacheInvalidationHandler drops cached resolvers when a product or its
// variations change, and forwards the invalidation to other instances when
// a publisher is set
type CacheInvalidationHandler struct {
	loader    *MatrixLoader
	publisher InvalidationPublisher
}

// NewCacheInvalidationHandler creates a new handler for catalog change events
func NewCacheInvalidationHandler(loader *MatrixLoader) *CacheInvalidationHandler {
	return &CacheInvalidationHandler{loader: loader}
}

// WithPublisher sets the publisher used to reach other instances
func (h *CacheInvalidationHandler) WithPublisher(publisher InvalidationPublisher) *CacheInvalidationHandler {
	h.publisher = publisher
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductStatusChanged,
		catalog.EventTypeVariationsChanged,
	}
}

// Handle invalidates the resolver of the event's product
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	productID := event.AggregateID()
	h.loader.Invalidate(productID)

	logger.L(ctx).Debug("resolver invalidated",
		zap.String("event_type", event.EventType()),
		zap.String("product_id", productID.String()))

	if h.publisher == nil {
		return nil
	}
	return h.publisher.PublishProduct(ctx, productID)
}

// InvalidateAll implements Invalidator
func (h *CacheInvalidationHandler) InvalidateAll(ctx context.Context) {
	h.loader.InvalidateAll()
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishAll(ctx); err != nil {
		logger.L(ctx).Warn("failed to broadcast cache purge", zap.Error(err))
	}
}
