package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductService handles catalog maintenance: products, attributes and
// variations. Every change that affects variation resolution publishes a
// domain event.
type ProductService struct {
	productRepo    catalog.ProductRepository
	attributeRepo  catalog.AttributeRepository
	variationRepo  catalog.VariationRepository
	eventPublisher shared.EventPublisher
	invalidator    Invalidator
}

// Invalidator drops cached resolvers when attribute data changes.
// Attributes are shared across products so the whole cache goes.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	attributeRepo catalog.AttributeRepository,
	variationRepo catalog.VariationRepository,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		attributeRepo: attributeRepo,
		variationRepo: variationRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetInvalidator sets the cache invalidator used on attribute changes
func (s *ProductService) SetInvalidator(invalidator Invalidator) {
	s.invalidator = invalidator
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Code, req.Title, req.AttributeKeys)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := s.requireAttributes(ctx, product.AttributeKeys); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update updates a product's title, description or attribute keys
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil || req.Description != nil {
		title := product.Title
		if req.Title != nil {
			title = *req.Title
		}
		description := product.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(title, description); err != nil {
			return nil, err
		}
	}

	if req.AttributeKeys != nil {
		if err := s.requireAttributes(ctx, req.AttributeKeys); err != nil {
			return nil, err
		}
		if err := product.SetAttributeKeys(req.AttributeKeys); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// Activate puts a product on sale
func (s *ProductService) Activate(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, productID, (*catalog.Product).Activate)
}

// Deactivate withdraws a product from sale
func (s *ProductService) Deactivate(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, productID, (*catalog.Product).Deactivate)
}

func (s *ProductService) changeStatus(ctx context.Context, productID uuid.UUID, change func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := change(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	resp := ToProductResponse(product)
	return &resp, nil
}

// DefineAttribute creates an attribute or replaces its label and values
func (s *ProductService) DefineAttribute(ctx context.Context, req DefineAttributeRequest) (*AttributeResponse, error) {
	attribute, err := catalog.NewAttribute(req.Key, req.Label)
	if err != nil {
		return nil, err
	}
	for _, v := range req.Values {
		if err := attribute.AddValue(v.ID, v.Label, v.Weight); err != nil {
			return nil, err
		}
	}

	if err := s.attributeRepo.Save(ctx, attribute); err != nil {
		return nil, err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateAll(ctx)
	}

	resp := ToAttributeResponse(attribute)
	return &resp, nil
}

// GetAttribute retrieves an attribute with its values
func (s *ProductService) GetAttribute(ctx context.Context, key string) (*AttributeResponse, error) {
	attribute, err := s.attributeRepo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	resp := ToAttributeResponse(attribute)
	return &resp, nil
}

// AddVariation appends a variation to a product. The variation must assign
// one declared value to every attribute of the product and must not repeat
// the assignment of another variation.
func (s *ProductService) AddVariation(ctx context.Context, productID uuid.UUID, req AddVariationRequest) (*VariationResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	variation, err := catalog.NewProductVariation(product.ID, req.SKU, req.Attributes, req.Price)
	if err != nil {
		return nil, err
	}

	existing, err := s.variationRepo.FindByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	variation.Position = len(existing)

	attributes, err := s.attributeRepo.FindByKeys(ctx, product.AttributeKeys)
	if err != nil {
		return nil, err
	}
	// Build a resolver over all variations to reject incomplete or duplicate assignments
	candidates := append(append([]catalog.ProductVariation(nil), existing...), *variation)
	if _, err := catalog.NewVariationResolver(attributes, candidates); err != nil {
		return nil, err
	}

	if err := s.variationRepo.Save(ctx, variation); err != nil {
		return nil, err
	}
	if err := s.touchProduct(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, catalog.NewVariationsChangedEvent(product.ID))

	resp := ToVariationResponse(variation)
	return &resp, nil
}

// UpdateVariation changes the price or sale status of a variation. Line
// items already in carts keep the price they were added at.
func (s *ProductService) UpdateVariation(ctx context.Context, variationID uuid.UUID, req UpdateVariationRequest) (*VariationResponse, error) {
	variation, err := s.variationRepo.FindByID(ctx, variationID)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		if err := variation.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		if *req.Active {
			variation.Activate()
		} else {
			variation.Deactivate()
		}
	}

	if err := s.variationRepo.Save(ctx, variation); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, variation.ProductID)
	if err != nil {
		return nil, err
	}
	if err := s.touchProduct(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, catalog.NewVariationsChangedEvent(variation.ProductID))

	resp := ToVariationResponse(variation)
	return &resp, nil
}

// ListVariations returns the variations of a product in declared order
func (s *ProductService) ListVariations(ctx context.Context, productID uuid.UUID) ([]VariationResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	variations, err := s.variationRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := make([]VariationResponse, len(variations))
	for i := range variations {
		resp[i] = ToVariationResponse(&variations[i])
	}
	return resp, nil
}

// touchProduct stores a new product version after a variation change. The
// variation is saved first, so a loader that sees the new version also sees
// the changed variation.
func (s *ProductService) touchProduct(ctx context.Context, product *catalog.Product) error {
	product.TouchVariations()
	return s.productRepo.Save(ctx, product)
}

// requireAttributes fails with INVALID_ATTRIBUTE when a key is not defined
func (s *ProductService) requireAttributes(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.attributeRepo.FindByKeys(ctx, keys); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_ATTRIBUTE", "Product references an undefined attribute").WithCause(err)
		}
		return err
	}
	return nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	s.publishEvents(ctx, product.GetDomainEvents()...)
	product.ClearDomainEvents()
}

func (s *ProductService) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// The bus logs handler failures; the change itself is already stored
	_ = s.eventPublisher.Publish(ctx, events...)
}
