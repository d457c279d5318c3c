package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// AttributeFormService answers the questions an add-to-cart form asks while
// the customer picks attribute values
type AttributeFormService struct {
	loader *MatrixLoader
}

// NewAttributeFormService creates a new AttributeFormService
func NewAttributeFormService(loader *MatrixLoader) *AttributeFormService {
	return &AttributeFormService{loader: loader}
}

// BuildForm returns the form for a product. The given selection seeds it:
// values that can still be combined into a variation are kept, the rest is
// filled from the first matching variation. Unknown keys and values are
// dropped.
func (s *AttributeFormService) BuildForm(ctx context.Context, productID uuid.UUID, selection map[string]string) (*AttributeFormResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "build_form",
		telemetry.AttrProductID.String(productID.String()))
	defer span.End()

	matrix, err := s.loader.Load(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp, err := s.form(matrix, matrix.Resolver.Default(catalog.Selection(selection)))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// ChangeAttribute returns the form after the customer set key to value. The
// new value always sticks; other attributes keep their value when it still
// combines with it.
func (s *AttributeFormService) ChangeAttribute(ctx context.Context, productID uuid.UUID, req ChangeAttributeRequest) (*AttributeFormResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "change_attribute",
		telemetry.AttrProductID.String(productID.String()))
	defer span.End()

	matrix, err := s.loader.Load(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	selection, err := matrix.Resolver.Refresh(catalog.Selection(req.Selection), req.Key, req.Value)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp, err := s.form(matrix, selection)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

func (s *AttributeFormService) form(matrix *ProductMatrix, selection catalog.Selection) (*AttributeFormResponse, error) {
	r := matrix.Resolver
	resp := &AttributeFormResponse{
		ProductID:    matrix.Product.ID,
		ProductTitle: matrix.Product.Title,
		Available:    matrix.Product.IsActive(),
		Selection:    selection.Clone(),
	}

	for _, attr := range r.Attributes() {
		ids, err := r.AvailableValues(selection, attr.Key)
		if err != nil {
			return nil, err
		}
		field := AttributeField{
			Key:         attr.Key,
			Label:       attr.Label,
			Options:     make([]AttributeOption, 0, len(ids)),
			Selected:    selection[attr.Key],
			Interactive: r.IsInteractive(attr.Key),
		}
		for _, id := range ids {
			value, _ := attr.Value(id)
			field.Options = append(field.Options, AttributeOption{ID: id, Label: value.Label})
		}
		resp.Attributes = append(resp.Attributes, field)
	}

	resolution, err := r.Resolve(selection)
	if err != nil {
		return nil, err
	}
	if resolution.IsMatched() {
		v := resolution.Variation
		resp.Variation = &VariationSummary{
			ID:    v.ID,
			SKU:   v.SKU,
			Title: r.Title(matrix.Product.Title, v),
			Price: v.Price,
		}
	}
	return resp, nil
}
