package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its line items in stored order
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an order and replaces its line items in one
// transaction. The update only applies when the stored version still equals
// the version the order was loaded with, otherwise shared.ErrConcurrencyConflict
// is returned. A successful update advances o.Version by exactly one.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model, err := models.OrderModelFromDomain(o)
	if err != nil {
		return err
	}

	updated := false
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]interface{}{
				"status":        model.Status,
				"email":         model.Email,
				"customer_id":   model.CustomerID,
				"checkout_step": model.CheckoutStep,
				"total_amount":  model.TotalAmount,
				"placed_at":     model.PlacedAt,
				"version":       gorm.Expr("version + 1"),
				"updated_at":    model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.OrderModel{}).Where("id = ?", model.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return shared.ErrConcurrencyConflict
			}
			if err := tx.Omit("LineItems").Create(model).Error; err != nil {
				return err
			}
		} else {
			updated = true
		}

		// Line items are rewritten so stored positions always match the order's sequence
		if err := tx.Where("order_id = ?", model.ID).Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
		if len(model.LineItems) == 0 {
			return nil
		}
		return tx.Create(&model.LineItems).Error
	})
	if err != nil {
		return err
	}
	if updated {
		o.IncrementVersion()
	}
	return nil
}
