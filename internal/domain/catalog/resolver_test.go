package catalog

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAttribute(t *testing.T, key string, values ...string) Attribute {
	t.Helper()
	attr, err := NewAttribute(key, key)
	require.NoError(t, err)
	for i, v := range values {
		require.NoError(t, attr.AddValue(v, v, i))
	}
	return *attr
}

func newTestVariation(t *testing.T, productID uuid.UUID, sku string, attrs map[string]string) ProductVariation {
	t.Helper()
	v, err := NewProductVariation(productID, sku, attrs, decimal.NewFromInt(10))
	require.NoError(t, err)
	return *v
}

// unevenMatrix builds sizes 6-10 in red and sizes 8-10 in green
func unevenMatrix(t *testing.T) *VariationResolver {
	t.Helper()
	productID := uuid.New()
	size := newTestAttribute(t, "size", "6", "7", "8", "9", "10")
	color := newTestAttribute(t, "color", "red", "green")

	var variations []ProductVariation
	for _, s := range []string{"6", "7", "8", "9", "10"} {
		variations = append(variations, newTestVariation(t, productID, "RED-"+s, map[string]string{"size": s, "color": "red"}))
	}
	for _, s := range []string{"8", "9", "10"} {
		variations = append(variations, newTestVariation(t, productID, "GREEN-"+s, map[string]string{"size": s, "color": "green"}))
	}

	r, err := NewVariationResolver([]Attribute{size, color}, variations)
	require.NoError(t, err)
	return r
}

func TestVariationResolver_UnevenMatrix(t *testing.T) {
	r := unevenMatrix(t)

	t.Run("changing size keeps a still valid color", func(t *testing.T) {
		sel, err := r.Refresh(Selection{"size": "8", "color": "red"}, "size", "9")
		require.NoError(t, err)
		assert.Equal(t, Selection{"size": "9", "color": "red"}, sel)

		res, err := r.Resolve(sel)
		require.NoError(t, err)
		require.True(t, res.IsMatched())
		assert.Equal(t, "RED-9", res.Variation.SKU)
	})

	t.Run("green is not offered for size 7", func(t *testing.T) {
		values, err := r.AvailableValues(Selection{"size": "7"}, "color")
		require.NoError(t, err)
		assert.Equal(t, []string{"red"}, values)
	})

	t.Run("all sizes are offered for red", func(t *testing.T) {
		values, err := r.AvailableValues(Selection{"size": "7", "color": "red"}, "size")
		require.NoError(t, err)
		assert.Equal(t, []string{"6", "7", "8", "9", "10"}, values)
	})

	t.Run("only large sizes are offered for green", func(t *testing.T) {
		values, err := r.AvailableValues(Selection{"color": "green"}, "size")
		require.NoError(t, err)
		assert.Equal(t, []string{"8", "9", "10"}, values)
	})

	t.Run("choosing green snaps size to the first green variation", func(t *testing.T) {
		sel, err := r.Refresh(Selection{"size": "7", "color": "red"}, "color", "green")
		require.NoError(t, err)
		assert.Equal(t, "green", sel["color"])
		assert.Contains(t, []string{"8", "9", "10"}, sel["size"])
		assert.Equal(t, "8", sel["size"])

		res, err := r.Resolve(sel)
		require.NoError(t, err)
		require.True(t, res.IsMatched())
		assert.Equal(t, "GREEN-8", res.Variation.SKU)
	})

	t.Run("choosing green keeps a size that has green", func(t *testing.T) {
		sel, err := r.Refresh(Selection{"size": "10", "color": "red"}, "color", "green")
		require.NoError(t, err)
		assert.Equal(t, Selection{"size": "10", "color": "green"}, sel)
	})

	t.Run("complete selection without variation is no match", func(t *testing.T) {
		res, err := r.Resolve(Selection{"size": "6", "color": "green"})
		require.NoError(t, err)
		assert.Equal(t, ResolutionNoMatch, res.Kind)
		assert.Nil(t, res.Variation)
	})

	t.Run("partial selection is ambiguous", func(t *testing.T) {
		res, err := r.Resolve(Selection{"color": "green"})
		require.NoError(t, err)
		assert.Equal(t, ResolutionAmbiguous, res.Kind)
		assert.Equal(t, []string{"size"}, res.Missing)
	})

	t.Run("empty values count as unassigned", func(t *testing.T) {
		res, err := r.Resolve(Selection{"size": "", "color": ""})
		require.NoError(t, err)
		assert.Equal(t, ResolutionAmbiguous, res.Kind)
		assert.Equal(t, []string{"size", "color"}, res.Missing)
	})
}

func TestVariationResolver_AvailableValuesFallback(t *testing.T) {
	productID := uuid.New()
	size := newTestAttribute(t, "size", "s", "m", "l")
	color := newTestAttribute(t, "color", "red", "blue")
	fabric := newTestAttribute(t, "fabric", "cotton", "wool")

	r, err := NewVariationResolver([]Attribute{size, color, fabric}, []ProductVariation{
		newTestVariation(t, productID, "A", map[string]string{"size": "s", "color": "red", "fabric": "cotton"}),
		newTestVariation(t, productID, "B", map[string]string{"size": "m", "color": "blue", "fabric": "wool"}),
	})
	require.NoError(t, err)

	// No variation is small and wool, so color falls back to every declared value
	values, err := r.AvailableValues(Selection{"size": "s", "fabric": "wool"}, "color")
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue"}, values)

	values, err = r.AvailableValues(Selection{"size": "s"}, "color")
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, values)
}

func TestVariationResolver_AvailableValuesOrdering(t *testing.T) {
	productID := uuid.New()
	color, err := NewAttribute("color", "Color")
	require.NoError(t, err)
	require.NoError(t, color.AddValue("red", "Red", 5))
	require.NoError(t, color.AddValue("blue", "Blue", -1))
	require.NoError(t, color.AddValue("green", "Green", 5))

	r, err := NewVariationResolver([]Attribute{*color}, []ProductVariation{
		newTestVariation(t, productID, "G", map[string]string{"color": "green"}),
		newTestVariation(t, productID, "R", map[string]string{"color": "red"}),
		newTestVariation(t, productID, "B", map[string]string{"color": "blue"}),
	})
	require.NoError(t, err)

	values, err := r.AvailableValues(nil, "color")
	require.NoError(t, err)
	assert.Equal(t, []string{"blue", "red", "green"}, values)
}

func TestVariationResolver_SingleValueAttribute(t *testing.T) {
	productID := uuid.New()
	color := newTestAttribute(t, "color", "red", "blue")
	size := newTestAttribute(t, "size", "small", "medium", "large")

	r, err := NewVariationResolver([]Attribute{color, size}, []ProductVariation{
		newTestVariation(t, productID, "RS", map[string]string{"color": "red", "size": "small"}),
		newTestVariation(t, productID, "RM", map[string]string{"color": "red", "size": "medium"}),
	})
	require.NoError(t, err)

	assert.False(t, r.IsInteractive("color"))
	assert.True(t, r.IsInteractive("size"))
	assert.Equal(t, 1, r.Cardinality("color"))
	assert.False(t, r.IsInteractive("unknown"))

	t.Run("default pins the single value", func(t *testing.T) {
		sel := r.Default(Selection{"color": "blue", "size": "medium"})
		assert.Equal(t, Selection{"color": "red", "size": "medium"}, sel)
	})

	t.Run("resolve fills the pinned attribute", func(t *testing.T) {
		res, err := r.Resolve(Selection{"size": "medium"})
		require.NoError(t, err)
		require.True(t, res.IsMatched())
		assert.Equal(t, "RM", res.Variation.SKU)
	})
}

func TestVariationResolver_Default(t *testing.T) {
	r := unevenMatrix(t)

	t.Run("without previous selection uses the first variation", func(t *testing.T) {
		assert.Equal(t, Selection{"size": "6", "color": "red"}, r.Default(nil))
	})

	t.Run("keeps a fully valid previous selection", func(t *testing.T) {
		assert.Equal(t, Selection{"size": "9", "color": "green"}, r.Default(Selection{"size": "9", "color": "green"}))
	})

	t.Run("earlier attributes take precedence", func(t *testing.T) {
		// size comes first, so size 7 is kept and green is dropped
		assert.Equal(t, Selection{"size": "7", "color": "red"}, r.Default(Selection{"size": "7", "color": "green"}))
	})

	t.Run("ignores unknown keys and values", func(t *testing.T) {
		sel := r.Default(Selection{"size": "99", "material": "silk", "color": "green"})
		assert.Equal(t, Selection{"size": "8", "color": "green"}, sel)
	})
}

func TestVariationResolver_Refresh(t *testing.T) {
	r := unevenMatrix(t)

	t.Run("rejects unknown attribute", func(t *testing.T) {
		_, err := r.Refresh(nil, "material", "silk")
		assert.True(t, errors.Is(err, shared.ErrInvalidSelection))
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		_, err := r.Refresh(nil, "color", "purple")
		assert.True(t, errors.Is(err, shared.ErrInvalidSelection))
	})
}

func TestVariationResolver_InvalidSelection(t *testing.T) {
	r := unevenMatrix(t)

	_, err := r.Resolve(Selection{"material": "silk"})
	assert.True(t, errors.Is(err, shared.ErrInvalidSelection))

	_, err = r.Resolve(Selection{"color": "purple"})
	assert.True(t, errors.Is(err, shared.ErrInvalidSelection))

	_, err = r.AvailableValues(nil, "material")
	assert.True(t, errors.Is(err, shared.ErrInvalidSelection))

	_, err = r.AvailableValues(Selection{"size": "12"}, "color")
	assert.True(t, errors.Is(err, shared.ErrInvalidSelection))
}

func TestNewVariationResolver_Integrity(t *testing.T) {
	productID := uuid.New()
	color := newTestAttribute(t, "color", "red", "blue")

	t.Run("duplicate assignment", func(t *testing.T) {
		_, err := NewVariationResolver([]Attribute{color}, []ProductVariation{
			newTestVariation(t, productID, "A", map[string]string{"color": "red"}),
			newTestVariation(t, productID, "B", map[string]string{"color": "red"}),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrDuplicateVariation))
		assert.Contains(t, err.Error(), "A and B")
	})

	t.Run("missing attribute value", func(t *testing.T) {
		_, err := NewVariationResolver([]Attribute{color}, []ProductVariation{
			newTestVariation(t, productID, "A", map[string]string{}),
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidVariation))
	})

	t.Run("undeclared value", func(t *testing.T) {
		_, err := NewVariationResolver([]Attribute{color}, []ProductVariation{
			newTestVariation(t, productID, "A", map[string]string{"color": "purple"}),
		})
		assert.True(t, errors.Is(err, shared.ErrInvalidVariation))
	})

	t.Run("no variations", func(t *testing.T) {
		_, err := NewVariationResolver([]Attribute{color}, nil)
		assert.True(t, errors.Is(err, shared.ErrPurchasableUnavailable))
	})

	t.Run("product without attributes has a single variation", func(t *testing.T) {
		r, err := NewVariationResolver(nil, []ProductVariation{
			newTestVariation(t, productID, "ONLY", map[string]string{}),
		})
		require.NoError(t, err)
		res, err := r.Resolve(nil)
		require.NoError(t, err)
		require.True(t, res.IsMatched())
		assert.Equal(t, "ONLY", res.Variation.SKU)
	})
}

func TestVariationResolver_TieBreakIsDeclaredOrder(t *testing.T) {
	productID := uuid.New()
	color := newTestAttribute(t, "color", "red", "blue")
	size := newTestAttribute(t, "size", "s", "m")

	variations := []ProductVariation{
		newTestVariation(t, productID, "BLUE-M", map[string]string{"color": "blue", "size": "m"}),
		newTestVariation(t, productID, "RED-S", map[string]string{"color": "red", "size": "s"}),
		newTestVariation(t, productID, "BLUE-S", map[string]string{"color": "blue", "size": "s"}),
	}
	variations[0].Price = decimal.NewFromInt(99)

	r, err := NewVariationResolver([]Attribute{color, size}, variations)
	require.NoError(t, err)

	assert.Equal(t, Selection{"color": "blue", "size": "m"}, r.Default(nil))
	assert.Equal(t, Selection{"color": "blue", "size": "s"}, r.Default(Selection{"size": "s", "color": "blue"}))
}

func TestVariationResolver_Title(t *testing.T) {
	productID := uuid.New()
	color, err := NewAttribute("color", "Color")
	require.NoError(t, err)
	require.NoError(t, color.AddValue("red", "Red", 0))
	size, err := NewAttribute("size", "Size")
	require.NoError(t, err)
	require.NoError(t, size.AddValue("l", "Large", 0))

	v := newTestVariation(t, productID, "RL", map[string]string{"color": "red", "size": "l"})
	r, err := NewVariationResolver([]Attribute{*color, *size}, []ProductVariation{v})
	require.NoError(t, err)

	assert.Equal(t, "T-Shirt - Red, Large", r.Title("T-Shirt", &v))
}

func TestVariationResolver_DoesNotAliasInput(t *testing.T) {
	productID := uuid.New()
	color := newTestAttribute(t, "color", "red", "blue")
	variations := []ProductVariation{
		newTestVariation(t, productID, "R", map[string]string{"color": "red"}),
		newTestVariation(t, productID, "B", map[string]string{"color": "blue"}),
	}

	r, err := NewVariationResolver([]Attribute{color}, variations)
	require.NoError(t, err)

	variations[0].Attributes["color"] = "blue"
	res, err := r.Resolve(Selection{"color": "red"})
	require.NoError(t, err)
	require.True(t, res.IsMatched())
	assert.Equal(t, "R", res.Variation.SKU)
}

func BenchmarkVariationResolver_Refresh(b *testing.B) {
	productID := uuid.New()
	size, _ := NewAttribute("size", "Size")
	color, _ := NewAttribute("color", "Color")
	for i := 0; i < 20; i++ {
		_ = size.AddValue("s"+strconv.Itoa(i), strconv.Itoa(i), i)
		_ = color.AddValue("c"+strconv.Itoa(i), strconv.Itoa(i), i)
	}
	var variations []ProductVariation
	for i := 0; i < 20; i++ {
		for j := 0; j <= i; j++ {
			v, _ := NewProductVariation(productID, strconv.Itoa(i)+"-"+strconv.Itoa(j),
				map[string]string{"size": "s" + strconv.Itoa(i), "color": "c" + strconv.Itoa(j)}, decimal.NewFromInt(1))
			variations = append(variations, *v)
		}
	}
	r, err := NewVariationResolver([]Attribute{*size, *color}, variations)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.Refresh(Selection{"size": "s3", "color": "c2"}, "color", "c15")
	}
}
