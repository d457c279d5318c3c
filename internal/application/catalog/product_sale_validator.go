package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductSaleValidator checks whether variations can still be purchased.
// The cart context uses it to flag line items whose variation was withdrawn
// after it was added.
type ProductSaleValidator struct {
	productRepo   catalog.ProductRepository
	variationRepo catalog.VariationRepository
}

// NewProductSaleValidator creates a new ProductSaleValidator
func NewProductSaleValidator(productRepo catalog.ProductRepository, variationRepo catalog.VariationRepository) *ProductSaleValidator {
	return &ProductSaleValidator{
		productRepo:   productRepo,
		variationRepo: variationRepo,
	}
}

// CanBePurchased reports whether the variation and its product are both on sale.
// Returns an error if the variation is not found.
func (v *ProductSaleValidator) CanBePurchased(ctx context.Context, variationID uuid.UUID) (bool, error) {
	variation, err := v.variationRepo.FindByID(ctx, variationID)
	if err != nil {
		return false, err
	}
	if !variation.IsActive() {
		return false, nil
	}

	product, err := v.productRepo.FindByID(ctx, variation.ProductID)
	if err != nil {
		return false, err
	}
	return product.IsActive(), nil
}

// Current reloads a variation and its product from storage. A variation that
// is gone or withdrawn, or whose product is withdrawn, yields
// PURCHASABLE_UNAVAILABLE.
func (v *ProductSaleValidator) Current(ctx context.Context, variationID uuid.UUID) (*catalog.Product, *catalog.ProductVariation, error) {
	variation, err := v.variationRepo.FindByID(ctx, variationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.ErrPurchasableUnavailable
		}
		return nil, nil, err
	}
	product, err := v.productRepo.FindByID(ctx, variation.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.ErrPurchasableUnavailable
		}
		return nil, nil, err
	}
	if !product.IsActive() || !variation.IsActive() {
		return nil, nil, shared.ErrPurchasableUnavailable
	}
	return product, variation, nil
}

// CanBePurchasedBatch checks several variations. Variations that no longer
// exist are reported as not purchasable.
func (v *ProductSaleValidator) CanBePurchasedBatch(ctx context.Context, variationIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(variationIDs))
	products := make(map[uuid.UUID]bool)

	for _, id := range variationIDs {
		if _, done := result[id]; done {
			continue
		}
		variation, err := v.variationRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				result[id] = false
				continue
			}
			return nil, err
		}

		active, seen := products[variation.ProductID]
		if !seen {
			product, err := v.productRepo.FindByID(ctx, variation.ProductID)
			switch {
			case errors.Is(err, shared.ErrNotFound):
				active = false
			case err != nil:
				return nil, err
			default:
				active = product.IsActive()
			}
			products[variation.ProductID] = active
		}
		result[id] = active && variation.IsActive()
	}

	return result, nil
}
