package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/catalog"
	domaincatalog "github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
)

// PurchasableTypeVariation is the purchasable type of product variations
const PurchasableTypeVariation = "product_variation"

// variationPurchasable adapts a resolved product variation to order.Purchasable
type variationPurchasable struct {
	product   *domaincatalog.Product
	variation *domaincatalog.ProductVariation
	title     string
}

func newVariationPurchasable(matrix *catalog.ProductMatrix, variation *domaincatalog.ProductVariation) *variationPurchasable {
	return &variationPurchasable{
		product:   matrix.Product,
		variation: variation,
		title:     matrix.Resolver.Title(matrix.Product.Title, variation),
	}
}

// refresh replaces the resolved variation with its stored state; the title
// keeps the labels of the resolver
func (p *variationPurchasable) refresh(product *domaincatalog.Product, variation *domaincatalog.ProductVariation) {
	p.product = product
	p.variation = variation
}

func (p *variationPurchasable) PurchasableID() uuid.UUID   { return p.variation.ID }
func (p *variationPurchasable) PurchasableType() string    { return PurchasableTypeVariation }
func (p *variationPurchasable) OrderItemTitle() string     { return p.title }
func (p *variationPurchasable) UnitPrice() decimal.Decimal { return p.variation.Price }

// IsPurchasable is false when the product or the variation is withdrawn from sale
func (p *variationPurchasable) IsPurchasable() bool {
	return p.product.IsActive() && p.variation.IsActive()
}

var _ order.Purchasable = (*variationPurchasable)(nil)
