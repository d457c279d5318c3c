package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}

// AttributeRepository defines the interface for attribute persistence
type AttributeRepository interface {
	// FindByKey finds an attribute with its values
	FindByKey(ctx context.Context, key string) (*Attribute, error)

	// FindByKeys returns the attributes in the order of keys.
	// A missing key is reported as shared.ErrNotFound.
	FindByKeys(ctx context.Context, keys []string) ([]Attribute, error)

	// Save creates or updates an attribute and replaces its values
	Save(ctx context.Context, attribute *Attribute) error
}

// VariationRepository defines the interface for variation persistence
type VariationRepository interface {
	// FindByID finds a variation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductVariation, error)

	// FindByProduct returns the variations of a product in declared order
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductVariation, error)

	// Save creates or updates a variation
	Save(ctx context.Context, variation *ProductVariation) error
}
