package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) InvalidateAll(context.Context) { r.calls++ }

func newProductService() (*ProductService, *MockProductRepository, *MockAttributeRepository, *MockVariationRepository, *MockEventPublisher) {
	products := new(MockProductRepository)
	attributes := new(MockAttributeRepository)
	variations := new(MockVariationRepository)
	publisher := new(MockEventPublisher)
	svc := NewProductService(products, attributes, variations)
	svc.SetEventPublisher(publisher)
	return svc, products, attributes, variations, publisher
}

func eventTypes(events []shared.DomainEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product and publishes event", func(t *testing.T) {
		svc, products, attributes, _, publisher := newProductService()
		attributes.On("FindByKeys", ctx, []string{"color"}).Return([]catalog.Attribute{}, nil)
		products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return assert.ObjectsAreEqual([]string{catalog.EventTypeProductCreated}, eventTypes(events))
		})).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			Code:          "tshirt",
			Title:         "T-Shirt",
			Description:   "Cotton",
			AttributeKeys: []string{"color"},
		})
		require.NoError(t, err)
		assert.Equal(t, "TSHIRT", resp.Code)
		assert.Equal(t, "Cotton", resp.Description)
		assert.Equal(t, "active", resp.Status)
		publisher.AssertExpectations(t)
	})

	t.Run("undefined attribute", func(t *testing.T) {
		svc, products, attributes, _, _ := newProductService()
		attributes.On("FindByKeys", ctx, []string{"fit"}).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, CreateProductRequest{Code: "X", Title: "X", AttributeKeys: []string{"fit"}})
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_ATTRIBUTE", domainErr.Code)
		products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_Deactivate(t *testing.T) {
	ctx := context.Background()
	svc, products, _, _, publisher := newProductService()
	product, err := catalog.NewProduct("MUG", "Mug", nil)
	require.NoError(t, err)
	product.ClearDomainEvents()

	products.On("FindByID", ctx, product.ID).Return(product, nil)
	products.On("Save", ctx, product).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := svc.Deactivate(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
	assert.Empty(t, product.GetDomainEvents())

	_, err = svc.Deactivate(ctx, product.ID)
	require.Error(t, err)
	products.AssertNumberOfCalls(t, "Save", 1)
}

func TestProductService_DefineAttribute(t *testing.T) {
	ctx := context.Background()
	svc, _, attributes, _, _ := newProductService()
	invalidator := &recordingInvalidator{}
	svc.SetInvalidator(invalidator)
	attributes.On("Save", ctx, mock.AnythingOfType("*catalog.Attribute")).Return(nil)

	resp, err := svc.DefineAttribute(ctx, DefineAttributeRequest{
		Key:   "size",
		Label: "Size",
		Values: []AttributeValueRequest{
			{ID: "l", Label: "L", Weight: 3},
			{ID: "s", Label: "S", Weight: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "s", resp.Values[0].ID)
	assert.Equal(t, 1, invalidator.calls)

	t.Run("duplicate value", func(t *testing.T) {
		_, err := svc.DefineAttribute(ctx, DefineAttributeRequest{
			Key:    "size",
			Label:  "Size",
			Values: []AttributeValueRequest{{ID: "s", Label: "S"}, {ID: "s", Label: "Small"}},
		})
		require.Error(t, err)
		assert.Equal(t, 1, invalidator.calls)
	})
}

func TestProductService_AddVariation(t *testing.T) {
	ctx := context.Background()
	ts := newTShirt(t)

	t.Run("appends at the next position", func(t *testing.T) {
		svc, products, attributes, variations, publisher := newProductService()
		ts.expect(products, attributes, variations)
		variations.On("Save", ctx, mock.AnythingOfType("*catalog.ProductVariation")).Return(nil)
		products.On("Save", ctx, ts.product).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == catalog.EventTypeVariationsChanged
		})).Return(nil)
		version := ts.product.GetVersion()

		resp, err := svc.AddVariation(ctx, ts.product.ID, AddVariationRequest{
			SKU:        "green-7",
			Attributes: map[string]string{"color": "green", "size": "7"},
			Price:      decimal.NewFromInt(16),
		})
		require.NoError(t, err)
		assert.Equal(t, len(ts.variations), resp.Position)
		assert.Equal(t, version+1, ts.product.GetVersion())
		products.AssertCalled(t, "Save", ctx, ts.product)
		publisher.AssertExpectations(t)
	})

	t.Run("duplicate assignment is rejected", func(t *testing.T) {
		svc, products, attributes, variations, _ := newProductService()
		ts.expect(products, attributes, variations)

		_, err := svc.AddVariation(ctx, ts.product.ID, AddVariationRequest{
			SKU:        "red-6-again",
			Attributes: map[string]string{"color": "red", "size": "6"},
			Price:      decimal.NewFromInt(15),
		})
		assert.True(t, errors.Is(err, shared.ErrDuplicateVariation))
		variations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("partial assignment is rejected", func(t *testing.T) {
		svc, products, attributes, variations, _ := newProductService()
		ts.expect(products, attributes, variations)

		_, err := svc.AddVariation(ctx, ts.product.ID, AddVariationRequest{
			SKU:        "green",
			Attributes: map[string]string{"color": "green"},
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidVariation))
	})
}

func TestProductService_UpdateVariation(t *testing.T) {
	ctx := context.Background()
	svc, products, _, variations, publisher := newProductService()
	product, err := catalog.NewProduct("MUG", "Mug", nil)
	require.NoError(t, err)
	v, err := catalog.NewProductVariation(product.ID, "SKU", nil, decimal.NewFromInt(10))
	require.NoError(t, err)
	variations.On("FindByID", ctx, v.ID).Return(v, nil)
	variations.On("Save", ctx, v).Return(nil)
	products.On("FindByID", ctx, product.ID).Return(product, nil)
	products.On("Save", ctx, product).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	price := decimal.NewFromInt(12)
	inactive := false
	resp, err := svc.UpdateVariation(ctx, v.ID, UpdateVariationRequest{Price: &price, Active: &inactive})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(price))
	assert.Equal(t, "inactive", resp.Status)
	// cached resolvers are keyed by product version
	assert.Equal(t, 2, product.GetVersion())

	t.Run("negative price", func(t *testing.T) {
		negative := decimal.NewFromInt(-1)
		_, err := svc.UpdateVariation(ctx, v.ID, UpdateVariationRequest{Price: &negative})
		require.Error(t, err)
	})
}
