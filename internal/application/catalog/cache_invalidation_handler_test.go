package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvalidationPublisher struct {
	products []uuid.UUID
	all      int
	err      error
}

func (p *fakeInvalidationPublisher) PublishProduct(_ context.Context, id uuid.UUID) error {
	p.products = append(p.products, id)
	return p.err
}

func (p *fakeInvalidationPublisher) PublishAll(context.Context) error {
	p.all++
	return p.err
}

func TestCacheInvalidationHandler(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	loader := NewMatrixLoader(nil, nil, nil, cache, nil)
	ts := newTShirt(t)
	other := uuid.New()

	r, err := catalog.NewVariationResolver(ts.attributes, ts.variations)
	require.NoError(t, err)
	cache.Set(ts.product.ID, ts.product.Version, r)
	cache.Set(other, 1, r)

	publisher := &fakeInvalidationPublisher{}
	h := NewCacheInvalidationHandler(loader).WithPublisher(publisher)

	assert.ElementsMatch(t, []string{
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductStatusChanged,
		catalog.EventTypeVariationsChanged,
	}, h.EventTypes())

	require.NoError(t, h.Handle(ctx, catalog.NewVariationsChangedEvent(ts.product.ID)))
	_, ok := cache.Get(ts.product.ID, ts.product.Version)
	assert.False(t, ok)
	_, ok = cache.Get(other, 1)
	assert.True(t, ok)
	assert.Equal(t, []uuid.UUID{ts.product.ID}, publisher.products)

	t.Run("publisher failure is reported after the local invalidation", func(t *testing.T) {
		publisher.err = errors.New("redis down")
		err := h.Handle(ctx, catalog.NewVariationsChangedEvent(other))
		require.Error(t, err)
		_, ok := cache.Get(other, 1)
		assert.False(t, ok)
	})

	t.Run("invalidate all", func(t *testing.T) {
		cache.Set(other, 1, r)
		h.InvalidateAll(ctx)
		_, ok := cache.Get(other, 1)
		assert.False(t, ok)
		assert.Equal(t, 1, publisher.all)
	})
}
