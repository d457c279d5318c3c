package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// GormAttributeRepository implements catalog.AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

func orderedValues(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByKey finds an attribute with its values
func (r *GormAttributeRepository) FindByKey(ctx context.Context, key string) (*catalog.Attribute, error) {
	var model models.AttributeModel
	if err := r.db.WithContext(ctx).
		Preload("Values", orderedValues).
		First(&model, "attribute_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKeys returns the attributes in the order of keys
func (r *GormAttributeRepository) FindByKeys(ctx context.Context, keys []string) ([]catalog.Attribute, error) {
	if len(keys) == 0 {
		return []catalog.Attribute{}, nil
	}

	var rows []models.AttributeModel
	if err := r.db.WithContext(ctx).
		Preload("Values", orderedValues).
		Where("attribute_key IN ?", keys).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.AttributeModel, len(rows))
	for i := range rows {
		byKey[rows[i].Key] = &rows[i]
	}

	attributes := make([]catalog.Attribute, 0, len(keys))
	for _, key := range keys {
		model, ok := byKey[key]
		if !ok {
			return nil, shared.ErrNotFound.WithCause(errors.New("attribute " + key))
		}
		attributes = append(attributes, *model.ToDomain())
	}
	return attributes, nil
}

// Save creates or updates an attribute and replaces its values
func (r *GormAttributeRepository) Save(ctx context.Context, attribute *catalog.Attribute) error {
	model := models.AttributeModelFromDomain(attribute)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Values").Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_key = ?", model.Key).
			Delete(&models.AttributeValueModel{}).Error; err != nil {
			return err
		}
		if len(model.Values) == 0 {
			return nil
		}
		return tx.Create(&model.Values).Error
	})
}

// GormVariationRepository implements catalog.VariationRepository using GORM
type GormVariationRepository struct {
	db *gorm.DB
}

// NewGormVariationRepository creates a new GormVariationRepository
func NewGormVariationRepository(db *gorm.DB) *GormVariationRepository {
	return &GormVariationRepository{db: db}
}

// FindByID finds a variation by its ID
func (r *GormVariationRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariation, error) {
	var model models.ProductVariationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProduct returns the variations of a product in declared order
func (r *GormVariationRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductVariation, error) {
	var rows []models.ProductVariationModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "position"}},
			{Column: clause.Column{Name: "created_at"}},
		}}).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	variations := make([]catalog.ProductVariation, len(rows))
	for i := range rows {
		variations[i] = *rows[i].ToDomain()
	}
	return variations, nil
}

// Save creates or updates a variation
func (r *GormVariationRepository) Save(ctx context.Context, variation *catalog.ProductVariation) error {
	return r.db.WithContext(ctx).Save(models.ProductVariationModelFromDomain(variation)).Error
}
