package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ResolverCache keeps built resolvers per product version
type ResolverCache interface {
	Get(productID uuid.UUID, version int) (*catalog.VariationResolver, bool)
	Set(productID uuid.UUID, version int, resolver *catalog.VariationResolver)
	Invalidate(productID uuid.UUID)
	Purge()
}

// ProductMatrix is a product together with the resolver over its variations
// that are on sale
type ProductMatrix struct {
	Product  *catalog.Product
	Resolver *catalog.VariationResolver
}

// MatrixLoader loads products with their attributes and variations and
// builds variation resolvers for them
type MatrixLoader struct {
	products   catalog.ProductRepository
	attributes catalog.AttributeRepository
	variations catalog.VariationRepository
	cache      ResolverCache
	metrics    *metrics.Metrics
}

// NewMatrixLoader creates a new MatrixLoader. cache and m may be nil.
func NewMatrixLoader(
	products catalog.ProductRepository,
	attributes catalog.AttributeRepository,
	variations catalog.VariationRepository,
	cache ResolverCache,
	m *metrics.Metrics,
) *MatrixLoader {
	return &MatrixLoader{
		products:   products,
		attributes: attributes,
		variations: variations,
		cache:      cache,
		metrics:    m,
	}
}

// Load returns the product and a resolver over its active variations.
// A product without any active variation yields PURCHASABLE_UNAVAILABLE.
func (l *MatrixLoader) Load(ctx context.Context, productID uuid.UUID) (*ProductMatrix, error) {
	product, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if resolver, ok := l.cache.Get(product.ID, product.Version); ok {
			l.metrics.IncResolverCache(true)
			return &ProductMatrix{Product: product, Resolver: resolver}, nil
		}
		l.metrics.IncResolverCache(false)
	}

	var (
		attributes []catalog.Attribute
		variations []catalog.ProductVariation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attributes, err = l.attributes.FindByKeys(gctx, product.AttributeKeys)
		return err
	})
	g.Go(func() error {
		var err error
		variations, err = l.variations.FindByProduct(gctx, product.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	active := make([]catalog.ProductVariation, 0, len(variations))
	for i := range variations {
		if variations[i].IsActive() {
			active = append(active, variations[i])
		}
	}

	resolver, err := catalog.NewVariationResolver(attributes, active)
	if err != nil {
		// Broken variation data is a catalog configuration problem, not a customer error
		if errors.Is(err, shared.ErrDuplicateVariation) || errors.Is(err, shared.ErrInvalidVariation) {
			logger.L(ctx).Error("product has inconsistent variations",
				zap.String("product_id", product.ID.String()),
				zap.Error(err))
		}
		return nil, err
	}

	if l.cache != nil {
		l.cache.Set(product.ID, product.Version, resolver)
	}
	return &ProductMatrix{Product: product, Resolver: resolver}, nil
}

// Invalidate drops the cached resolver of a product
func (l *MatrixLoader) Invalidate(productID uuid.UUID) {
	if l.cache != nil {
		l.cache.Invalidate(productID)
	}
}

// InvalidateAll drops every cached resolver
func (l *MatrixLoader) InvalidateAll() {
	if l.cache != nil {
		l.cache.Purge()
	}
}
