package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockAttributeRepository is a mock implementation of catalog.AttributeRepository
type MockAttributeRepository struct {
	mock.Mock
}

func (m *MockAttributeRepository) FindByKey(ctx context.Context, key string) (*catalog.Attribute, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Attribute), args.Error(1)
}

func (m *MockAttributeRepository) FindByKeys(ctx context.Context, keys []string) ([]catalog.Attribute, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Attribute), args.Error(1)
}

func (m *MockAttributeRepository) Save(ctx context.Context, attribute *catalog.Attribute) error {
	args := m.Called(ctx, attribute)
	return args.Error(0)
}

// MockVariationRepository is a mock implementation of catalog.VariationRepository
type MockVariationRepository struct {
	mock.Mock
}

func (m *MockVariationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductVariation), args.Error(1)
}

func (m *MockVariationRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductVariation, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductVariation), args.Error(1)
}

func (m *MockVariationRepository) Save(ctx context.Context, variation *catalog.ProductVariation) error {
	args := m.Called(ctx, variation)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// mapCache is a ResolverCache without eviction
type mapCache struct {
	entries map[uuid.UUID]cached
}

type cached struct {
	version  int
	resolver *catalog.VariationResolver
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[uuid.UUID]cached)}
}

func (c *mapCache) Get(id uuid.UUID, version int) (*catalog.VariationResolver, bool) {
	e, ok := c.entries[id]
	if !ok || e.version != version {
		return nil, false
	}
	return e.resolver, true
}

func (c *mapCache) Set(id uuid.UUID, version int, r *catalog.VariationResolver) {
	c.entries[id] = cached{version: version, resolver: r}
}

func (c *mapCache) Invalidate(id uuid.UUID) { delete(c.entries, id) }

func (c *mapCache) Purge() { c.entries = make(map[uuid.UUID]cached) }

// tshirt is a product offered in sizes 6-10 in red and sizes 8-10 in green
type tshirt struct {
	product    *catalog.Product
	attributes []catalog.Attribute
	variations []catalog.ProductVariation
}

func newTShirt(t *testing.T) *tshirt {
	t.Helper()
	product, err := catalog.NewProduct("TSHIRT", "T-Shirt", []string{"color", "size"})
	require.NoError(t, err)
	product.ClearDomainEvents()

	color, err := catalog.NewAttribute("color", "Color")
	require.NoError(t, err)
	require.NoError(t, color.AddValue("red", "Red", 0))
	require.NoError(t, color.AddValue("green", "Green", 0))

	size, err := catalog.NewAttribute("size", "Size")
	require.NoError(t, err)
	for _, s := range []string{"6", "7", "8", "9", "10"} {
		require.NoError(t, size.AddValue(s, s, 0))
	}

	var variations []catalog.ProductVariation
	add := func(c, s string) {
		v, err := catalog.NewProductVariation(product.ID, c+"-"+s,
			map[string]string{"color": c, "size": s}, decimal.NewFromInt(15))
		require.NoError(t, err)
		v.Position = len(variations)
		variations = append(variations, *v)
	}
	for _, s := range []string{"6", "7", "8", "9", "10"} {
		add("red", s)
	}
	for _, s := range []string{"8", "9", "10"} {
		add("green", s)
	}

	return &tshirt{
		product:    product,
		attributes: []catalog.Attribute{*color, *size},
		variations: variations,
	}
}

// expect registers the repository calls of one resolver build
func (ts *tshirt) expect(products *MockProductRepository, attributes *MockAttributeRepository, variations *MockVariationRepository) {
	products.On("FindByID", mock.Anything, ts.product.ID).Return(ts.product, nil)
	attributes.On("FindByKeys", mock.Anything, ts.product.AttributeKeys).Return(ts.attributes, nil)
	variations.On("FindByProduct", mock.Anything, ts.product.ID).Return(ts.variations, nil)
}
