package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDB(t))

	p, err := catalog.NewProduct("tee", "T-Shirt", []string{"size", "color"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "TEE", found.Code)
	assert.Equal(t, []string{"size", "color"}, found.AttributeKeys)
	assert.True(t, found.IsActive())

	t.Run("update", func(t *testing.T) {
		require.NoError(t, found.Update("Tee", "Cotton"))
		require.NoError(t, found.Deactivate())
		require.NoError(t, repo.Save(ctx, found))

		again, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cotton", again.Description)
		assert.False(t, again.IsActive())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestGormAttributeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAttributeRepository(newTestDB(t))

	size, err := catalog.NewAttribute("size", "Size")
	require.NoError(t, err)
	for _, v := range []string{"10", "6", "8"} {
		require.NoError(t, size.AddValue(v, v, 0))
	}
	color, err := catalog.NewAttribute("color", "Color")
	require.NoError(t, err)
	require.NoError(t, color.AddValue("red", "Red", 0))

	require.NoError(t, repo.Save(ctx, size))
	require.NoError(t, repo.Save(ctx, color))

	t.Run("values keep their order", func(t *testing.T) {
		found, err := repo.FindByKey(ctx, "size")
		require.NoError(t, err)
		require.Len(t, found.Values, 3)
		assert.Equal(t, "10", found.Values[0].ID)
		assert.Equal(t, "8", found.Values[2].ID)
	})

	t.Run("find by keys follows key order", func(t *testing.T) {
		attrs, err := repo.FindByKeys(ctx, []string{"color", "size"})
		require.NoError(t, err)
		require.Len(t, attrs, 2)
		assert.Equal(t, "color", attrs[0].Key)
		assert.Equal(t, "size", attrs[1].Key)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := repo.FindByKeys(ctx, []string{"size", "material"})
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		_, err = repo.FindByKey(ctx, "material")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("save replaces values", func(t *testing.T) {
		require.NoError(t, size.RemoveValue("6"))
		require.NoError(t, repo.Save(ctx, size))

		found, err := repo.FindByKey(ctx, "size")
		require.NoError(t, err)
		assert.Len(t, found.Values, 2)
		assert.False(t, found.HasValue("6"))
	})
}

func TestGormVariationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormVariationRepository(newTestDB(t))
	productID := uuid.New()

	skus := []string{"RED-8", "RED-6", "GREEN-8"}
	for i, sku := range skus {
		v, err := catalog.NewProductVariation(productID, sku, map[string]string{"sku": sku}, decimal.RequireFromString("15.50"))
		require.NoError(t, err)
		v.Position = i
		require.NoError(t, repo.Save(ctx, v))
	}
	other, err := catalog.NewProductVariation(uuid.New(), "OTHER", map[string]string{}, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	variations, err := repo.FindByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, variations, 3)
	for i, v := range variations {
		assert.Equal(t, skus[i], v.SKU)
		assert.Equal(t, skus[i], v.Attributes["sku"])
		assert.True(t, v.Price.Equal(decimal.RequireFromString("15.50")))
	}

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, "OTHER", found.SKU)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("deactivate", func(t *testing.T) {
		v := variations[1]
		v.Deactivate()
		require.NoError(t, repo.Save(ctx, &v))

		found, err := repo.FindByID(ctx, v.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive())
	})
}
