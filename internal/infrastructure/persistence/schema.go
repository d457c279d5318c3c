package persistence

import (
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the storefront tables from the GORM models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ProductModel{},
		&models.AttributeModel{},
		&models.AttributeValueModel{},
		&models.ProductVariationModel{},
		&models.OrderModel{},
		&models.LineItemModel{},
	)
}
